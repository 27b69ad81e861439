package telegram

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evgate/internal"
	"evgate/models"
)

type subscriptionStore struct {
	internal.Database
	mux     sync.Mutex
	stored  []models.UserSubscription
	deleted []int
}

func (s *subscriptionStore) GetSubscriptions() ([]models.UserSubscription, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]models.UserSubscription{}, s.stored...), nil
}

func (s *subscriptionStore) AddSubscription(subscription *models.UserSubscription) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.stored = append(s.stored, *subscription)
	return nil
}

func (s *subscriptionStore) DeleteSubscription(subscription *models.UserSubscription) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.deleted = append(s.deleted, subscription.UserID)
	return nil
}

func newTestBot(store *subscriptionStore) *TgBot {
	bot := &TgBot{
		subscribers: make(map[int]string),
		event:       make(chan MessageContent, 100),
		send:        make(chan MessageContent, 100),
		lastOffline: make(map[string]time.Time),
	}
	if store != nil {
		bot.SetDatabase(store)
	}
	return bot
}

func TestSubscriptionsPersisted(t *testing.T) {
	store := &subscriptionStore{}
	bot := newTestBot(store)

	bot.subscribe(7, "ada")
	bot.subscribe(9, "grace")
	assert.Equal(t, 2, bot.subscriberCount())
	require.Len(t, store.stored, 2)
	assert.Equal(t, models.UserSubscription{UserID: 7, User: "ada"}, store.stored[0])

	bot.unsubscribe(7)
	assert.Equal(t, 1, bot.subscriberCount())
	assert.Equal(t, []int{7}, store.deleted)
}

func TestSubscriptionsRestoredOnLoad(t *testing.T) {
	store := &subscriptionStore{stored: []models.UserSubscription{
		{UserID: 7, User: "ada"},
		{UserID: 9, User: "grace"},
	}}
	bot := newTestBot(store)

	bot.loadSubscriptions()
	assert.Equal(t, 2, bot.subscriberCount())
	assert.ElementsMatch(t, []int{7, 9}, bot.subscriberIds())
}

func TestSubscriberBookkeepingIsConcurrencySafe(t *testing.T) {
	bot := newTestBot(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			bot.subscribe(i, fmt.Sprintf("user-%d", i))
		}(i)
		go func(i int) {
			defer wg.Done()
			for range bot.subscriberIds() {
			}
			bot.unsubscribe(i)
		}(i)
	}
	wg.Wait()

	count := bot.subscriberCount()
	assert.GreaterOrEqual(t, count, 0)
	assert.LessOrEqual(t, count, 20)
}
