package server

import (
	"fmt"
	"log"
	"strings"
	"time"

	"evgate/billing"
	"evgate/internal"
	"evgate/internal/config"
	"evgate/ocpp"
	"evgate/ocpp/v16"
	"evgate/ocpp/v201"
	"evgate/pusher"
	"evgate/telegram"
	"evgate/utility"
)

type CentralSystem struct {
	server        *Server
	api           *Api
	logger        internal.LogHandler
	systemHandler *SystemHandler
	dispatcher    *Dispatcher
	correlations  *Correlations
	maxViolations int
}

func (cs *CentralSystem) handleIncomingMessage(ws *WebSocket, data []byte) error {
	stationId := ws.ID()
	fields, err := utility.ParseJson(data)
	if err != nil {
		return cs.handleMalformed(ws, "", err)
	}
	message, err := ocpp.ParseMessage(fields)
	if err != nil {
		uniqueId := ""
		if malformed, ok := err.(*ocpp.MalformedError); ok {
			uniqueId = malformed.UniqueId
		}
		return cs.handleMalformed(ws, uniqueId, err)
	}

	switch message.Type {
	case ocpp.CallTypeResult:
		if !cs.correlations.Resolve(message.UniqueId, CallOutcome{Payload: message.Payload}) {
			cs.logger.Warn(fmt.Sprintf("unexpected call result from %s, message id %s", stationId, message.UniqueId))
		}
		return nil
	case ocpp.CallTypeError:
		err = fmt.Errorf("station error %s: %s", message.ErrorCode, message.ErrorDescription)
		if !cs.correlations.Resolve(message.UniqueId, CallOutcome{Err: err}) {
			cs.logger.Warn(fmt.Sprintf("unexpected call error from %s: %s", stationId, err))
		}
		return nil
	}

	event, err := ws.Dialect().DecodeRequest(message.Action, message.Payload)
	if err != nil {
		if _, ok := err.(*ocpp.UnknownActionError); ok {
			cs.logger.Warn(fmt.Sprintf("unknown action %s from %s", message.Action, stationId))
			return cs.sendCallError(ws, message.UniqueId, ocpp.ErrorNotImplemented, err.Error())
		}
		return cs.handleMalformed(ws, message.UniqueId, err)
	}

	reply, err := cs.systemHandler.HandleEvent(stationId, event)
	if err != nil {
		cs.logger.Error(fmt.Sprintf("handling %s from %s", message.Action, stationId), err)
		return cs.sendCallError(ws, message.UniqueId, ocpp.ErrorInternalError, "internal error")
	}

	payload := ws.Dialect().EncodeReply(event, reply)
	data, err = ocpp.CreateCallResult(message.UniqueId, payload)
	if err != nil {
		cs.logger.Error("error encoding response", err)
		return err
	}
	return cs.server.SendTo(ws, data)
}

// handleMalformed answers with a CALLERROR and keeps the connection open
// until the station exceeds its violation allowance.
func (cs *CentralSystem) handleMalformed(ws *WebSocket, uniqueId string, cause error) error {
	cs.logger.Warn(fmt.Sprintf("malformed frame from %s: %s", ws.ID(), cause))
	observeMalformed(ws.ID())
	if uniqueId != "" {
		if err := cs.sendCallError(ws, uniqueId, ocpp.ErrorProtocolError, cause.Error()); err != nil {
			return err
		}
	}
	if ws.Violate(cs.maxViolations) {
		cs.logger.Warn(fmt.Sprintf("closing connection of %s after repeated protocol violations", ws.ID()))
		cs.systemHandler.MarkOffline(ws.ID())
		return ws.Close()
	}
	return nil
}

func (cs *CentralSystem) sendCallError(ws *WebSocket, uniqueId string, code ocpp.ErrorCode, description string) error {
	data, err := ocpp.CreateCallError(uniqueId, code, description)
	if err != nil {
		return err
	}
	return cs.server.SendTo(ws, data)
}

func (cs *CentralSystem) handleApiCommand(cmd ApiCommand) (interface{}, error) {
	switch cmd.FeatureName {
	case "RemoteStart":
		return nil, cs.dispatcher.RemoteStart(cmd.StationId, cmd.ConnectorId, cmd.IdTag)
	case "RemoteStop":
		return nil, cs.dispatcher.RemoteStop(cmd.StationId, cmd.TransactionId)
	case "ReserveNow":
		expiry := time.Now().Add(time.Hour)
		if cmd.Expiry != "" {
			parsed, err := time.Parse(time.RFC3339, cmd.Expiry)
			if err != nil {
				return nil, fmt.Errorf("invalid expiry: %s", err)
			}
			expiry = parsed
		}
		return nil, cs.dispatcher.ReserveNow(cmd.StationId, cmd.ConnectorId, cmd.ReservationId, expiry, cmd.IdTag)
	case "CancelReservation":
		return nil, cs.dispatcher.CancelReservation(cmd.StationId, cmd.ReservationId)
	case "Reset":
		return nil, cs.dispatcher.Reset(cmd.StationId, cmd.Type)
	case "UnlockConnector":
		return nil, cs.dispatcher.UnlockConnector(cmd.StationId, cmd.ConnectorId)
	}
	return nil, fmt.Errorf("feature not supported: %s", cmd.FeatureName)
}

func (cs *CentralSystem) handleApiRead(resource, id string) (interface{}, error) {
	switch resource {
	case "stations":
		return cs.systemHandler.Stations(), nil
	case "transactions":
		transaction := cs.systemHandler.GetTransaction(id)
		if transaction == nil {
			return nil, nil
		}
		return transaction, nil
	}
	return nil, fmt.Errorf("unknown resource: %s", resource)
}

func (cs *CentralSystem) Start() {
	go func() {
		if err := cs.server.Start(); err != nil {
			cs.logger.Error("websocket server failed", err)
		}
	}()

	go func() {
		if err := cs.api.Start(); err != nil {
			cs.logger.Error("api server failed", err)
		}
	}()

	select {}
}

func NewCentralSystem(conf *config.Config) (CentralSystem, error) {
	cs := CentralSystem{
		maxViolations: conf.Ocpp.MaxViolations,
	}

	log.Println("set time zone to " + conf.TimeZone)
	location, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return cs, fmt.Errorf("time zone initialization failed: %s", err)
	}

	var database internal.Database
	if conf.Mongo.Enabled {
		mongo, err := internal.NewMongoClient(conf)
		if err != nil {
			return cs, fmt.Errorf("mongodb setup failed: %s", err)
		}
		database = mongo
		log.Println("mongodb is configured and enabled")
	} else {
		log.Println("database is disabled")
	}

	var messageService internal.MessageService
	var pushListener internal.EventHandler
	if conf.Pusher.Enabled {
		push, err := pusher.NewPusher(conf)
		if err != nil {
			return cs, fmt.Errorf("pusher setup failed: %s", err)
		}
		messageService = push
		pushListener = push
		log.Println("pusher service is configured and enabled")
	} else {
		log.Println("message pushing service is disabled")
	}

	logService := internal.NewLogger(location)
	logService.SetDebugMode(conf.IsDebug)
	logService.SetDatabase(database)
	logService.SetMessageService(messageService)
	cs.logger = logService

	pricing := billing.NewDynamicPricing(location, conf.Ocpp.PlatformFeePct)
	pricing.SetDatabase(database)
	pricing.SetLogger(logService)

	systemHandler := NewSystemHandler(location)
	systemHandler.SetDatabase(database)
	systemHandler.SetLogger(logService)
	systemHandler.SetPricingService(pricing)
	systemHandler.SetParameters(conf.IsDebug, conf.Ocpp.HeartbeatInterval, conf.Ocpp.MinSessionWh, conf.Ocpp.PlatformFeePct)

	if conf.Wallet.Enabled {
		wallet := billing.NewWalletClient(conf.Wallet.Url, conf.Wallet.ApiKey)
		wallet.SetLogger(logService)
		systemHandler.SetWalletService(wallet)
		log.Println("wallet service is configured and enabled")
	}

	listeners := internal.NewEventRouter()
	if pushListener != nil {
		listeners.AddListener(pushListener)
	}
	if conf.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(conf.Telegram.ApiKey)
		if err != nil {
			return cs, fmt.Errorf("telegram bot setup failed: %s", err)
		}
		telegramBot.SetDatabase(database)
		telegramBot.SetLogger(logService)
		telegramBot.Start()
		listeners.AddListener(telegramBot)
		log.Println("telegram bot is configured and enabled")
	}
	systemHandler.SetEventHandler(listeners)

	wsServer := NewServer(conf, logService)
	legacy := v16.NewAdapter()
	modern := v201.NewAdapter()
	wsServer.SetDialectFactory(func(proto string) ocpp.Dialect {
		if strings.Contains(proto, "2.0") {
			return modern
		}
		return legacy
	})
	wsServer.SetMessageHandler(cs.handleIncomingMessage)
	wsServer.SetConnectHandler(func(ws *WebSocket) {
		systemHandler.OnReconnect(ws.ID())
	})
	cs.server = wsServer

	cs.correlations = NewCorrelations(time.Duration(conf.Ocpp.CommandTimeout) * time.Second)
	wsServer.SetDisconnectHandler(func(ws *WebSocket) {
		cs.correlations.FailStation(ws.ID(), ErrStationOffline)
		systemHandler.OnConnectionLost(ws.ID())
	})

	cs.dispatcher = NewDispatcher(wsServer, cs.correlations, systemHandler, logService)
	cs.systemHandler = systemHandler

	watchdog := NewWatchdog(wsServer, systemHandler, logService, conf.Ocpp.HeartbeatInterval, conf.Ocpp.OfflineGraceFactor)
	watchdog.Start()

	if err = systemHandler.OnStart(); err != nil {
		return cs, err
	}

	apiServer := NewServerApi(conf, logService)
	apiServer.SetCommandHandler(cs.handleApiCommand)
	apiServer.SetReadHandler(cs.handleApiRead)
	cs.api = apiServer

	return cs, nil
}
