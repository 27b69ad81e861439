package telegram

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"evgate/internal"
	"evgate/models"
)

// offline alerts for the same station are suppressed within this window
const offlineAlertCooldown = 15 * time.Minute

// TgBot implements EventHandler
type TgBot struct {
	api              *tgbotapi.BotAPI
	database         internal.Database
	logger           internal.LogHandler
	subscribers      map[int]string
	subscribersMutex sync.Mutex
	event            chan MessageContent
	send             chan MessageContent
	lastOffline      map[string]time.Time
	offlineMutex     sync.Mutex
}

type MessageContent struct {
	ChatID int64
	Text   string
}

func NewBot(apiKey string) (*TgBot, error) {
	tgBot := &TgBot{
		subscribers: make(map[int]string),
		event:       make(chan MessageContent, 100),
		send:        make(chan MessageContent, 100),
		lastOffline: make(map[string]time.Time),
	}
	api, err := tgbotapi.NewBotAPI(apiKey)
	if err != nil {
		return nil, err
	}
	tgBot.api = api
	return tgBot, nil
}

func (b *TgBot) SetDatabase(database internal.Database) {
	b.database = database
}

func (b *TgBot) SetLogger(logger internal.LogHandler) {
	b.logger = logger
}

func (b *TgBot) Start() {
	b.loadSubscriptions()
	go b.sendPump()
	go b.eventPump()
	go b.updatesPump()
}

// loadSubscriptions restores subscribers persisted across restarts
func (b *TgBot) loadSubscriptions() {
	if b.database == nil {
		return
	}
	subscriptions, err := b.database.GetSubscriptions()
	if err != nil {
		b.logError("bot: error loading subscriptions", err)
		return
	}
	b.subscribersMutex.Lock()
	defer b.subscribersMutex.Unlock()
	for _, s := range subscriptions {
		b.subscribers[s.UserID] = s.User
	}
}

func (b *TgBot) subscribe(userId int, userName string) {
	b.subscribersMutex.Lock()
	b.subscribers[userId] = userName
	b.subscribersMutex.Unlock()
	if b.database != nil {
		err := b.database.AddSubscription(&models.UserSubscription{UserID: userId, User: userName})
		if err != nil {
			b.logError("bot: error saving subscription", err)
		}
	}
}

func (b *TgBot) unsubscribe(userId int) {
	b.subscribersMutex.Lock()
	delete(b.subscribers, userId)
	b.subscribersMutex.Unlock()
	if b.database != nil {
		err := b.database.DeleteSubscription(&models.UserSubscription{UserID: userId})
		if err != nil {
			b.logError("bot: error deleting subscription", err)
		}
	}
}

func (b *TgBot) subscriberIds() []int {
	b.subscribersMutex.Lock()
	defer b.subscribersMutex.Unlock()
	ids := make([]int, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	return ids
}

func (b *TgBot) subscriberCount() int {
	b.subscribersMutex.Lock()
	defer b.subscribersMutex.Unlock()
	return len(b.subscribers)
}

func (b *TgBot) updatesPump() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		b.logError("bot: error getting updates", err)
		return
	}
	for update := range updates {
		if update.Message == nil {
			continue
		}
		if !update.Message.IsCommand() {
			continue
		}
		switch update.Message.Command() {
		case "start":
			b.subscribe(update.Message.From.ID, update.Message.From.UserName)
			msg := fmt.Sprintf("Hello *%v*, you are now subscribed to updates", update.Message.From.UserName)
			b.send <- MessageContent{ChatID: update.Message.Chat.ID, Text: msg}
		case "stop":
			b.unsubscribe(update.Message.From.ID)
			b.send <- MessageContent{ChatID: update.Message.Chat.ID, Text: "Your subscription has been removed"}
		case "status":
			b.send <- MessageContent{ChatID: update.Message.Chat.ID, Text: b.composeStatusMessage()}
		}
	}
}

// eventPump sending events to all subscribers
func (b *TgBot) eventPump() {
	for {
		if event, ok := <-b.event; ok {
			for _, id := range b.subscriberIds() {
				b.sendMessage(int64(id), event.Text)
			}
		}
	}
}

// sendPump sending messages to users
func (b *TgBot) sendPump() {
	for {
		if event, ok := <-b.send; ok {
			b.sendMessage(event.ChatID, event.Text)
		}
	}
}

func (b *TgBot) sendMessage(id int64, text string) {
	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = "MarkdownV2"
	_, err := b.api.Send(msg)
	if err != nil {
		// maybe error was while parsing, so send it plain
		msg = tgbotapi.NewMessage(id, fmt.Sprintf("Error: %v", err))
		_, err = b.api.Send(msg)
		if err != nil {
			b.logError("bot: error sending message", err)
		}
	}
}

func (b *TgBot) OnStatusNotification(event *internal.EventMessage) {
	if event.ConnectorId == 0 {
		// status updates only for connectors, not for the station itself
		return
	}
	msg := fmt.Sprintf("*%v*: Connector %v: `%v`\n", event.StationId, event.ConnectorId, event.Status)
	if event.Info != "" {
		msg += fmt.Sprintf("%v\n", sanitize(event.Info))
	}
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnTransactionStart(event *internal.EventMessage) {
	msg := fmt.Sprintf("*%v*: Connector %v: `%v`\n", event.StationId, event.ConnectorId, event.Status)
	msg += fmt.Sprintf("Transaction %v START\n", sanitize(event.TransactionId))
	msg += fmt.Sprintf("User: %v\n", sanitize(event.Username))
	msg += fmt.Sprintf("ID Tag: %v\n", sanitize(event.IdTag))
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnTransactionStop(event *internal.EventMessage) {
	msg := fmt.Sprintf("*%v*: Connector %v: `%v`\n", event.StationId, event.ConnectorId, event.Status)
	msg += fmt.Sprintf("Transaction %v STOP\n", sanitize(event.TransactionId))
	msg += fmt.Sprintf("ID Tag: %v\n", sanitize(event.IdTag))
	msg += fmt.Sprintf("Info: %v\n", sanitize(event.Info))
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnAuthorize(event *internal.EventMessage) {
	msg := fmt.Sprintf("*%v*: user: `%v`\n", event.StationId, sanitize(event.IdTag))
	msg += fmt.Sprintf("Auth status: %v\n", event.Status)
	b.event <- MessageContent{Text: msg}
}

func (b *TgBot) OnStationOffline(event *internal.EventMessage) {
	b.offlineMutex.Lock()
	last, ok := b.lastOffline[event.StationId]
	if ok && time.Since(last) < offlineAlertCooldown {
		b.offlineMutex.Unlock()
		return
	}
	b.lastOffline[event.StationId] = time.Now()
	b.offlineMutex.Unlock()
	b.event <- MessageContent{Text: fmt.Sprintf("*%v* went OFFLINE\n", event.StationId)}
}

func (b *TgBot) OnStationOnline(event *internal.EventMessage) {
	b.event <- MessageContent{Text: fmt.Sprintf("*%v* is back online\n", event.StationId)}
}

func (b *TgBot) composeStatusMessage() string {
	msg := "Status info:\n\n"
	if b.database != nil {
		stations, err := b.database.GetStations()
		if err != nil {
			b.logError("bot: error getting stations", err)
			msg += fmt.Sprintf("Error getting stations:\n `%v`", err)
		} else {
			for _, s := range stations {
				state := "offline"
				if s.IsOnline {
					state = "online"
				}
				msg += fmt.Sprintf("*%v*: `%v`\n", s.Id, state)
			}
			msg += "\n"
		}
	}
	msg += fmt.Sprintf("Active subscriptions: %v", b.subscriberCount())
	return msg
}

func (b *TgBot) logError(text string, err error) {
	if b.logger != nil {
		b.logger.Error(text, err)
	}
}

func sanitize(input string) string {
	reservedChars := "\\`*_{}[]()#+-.!|"
	sanitized := ""
	for _, char := range input {
		if strings.ContainsRune(reservedChars, char) {
			sanitized += "\\"
		}
		sanitized += string(char)
	}
	return sanitized
}
