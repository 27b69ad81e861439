package server

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"evgate/billing"
	"evgate/internal"
	"evgate/models"
	"evgate/ocpp"
	"evgate/types"
	"evgate/utility"
)

const defaultHeartbeatInterval = 60

// credentialPattern gates every authorization before any collaborator is
// consulted. The alphabet excludes the visually ambiguous I, O, 0 and 1.
var credentialPattern = regexp.MustCompile(`^EV-[A-HJ-NP-Z2-9]{6}$`)

var newOcppId = 0

// StationState serializes one station's traffic behind its own mutex so a
// slow collaborator call for one station never stalls another station's
// messages.
type StationState struct {
	mux          sync.Mutex
	connectors   map[int]*models.Connector
	transactions map[string]*models.Transaction
	model        models.Station
}

// SystemHandler owns station, connector and transaction state. It consumes
// dialect-neutral events and produces dialect-neutral replies; wire shapes
// never reach it. The handler mutex guards only the station and id maps;
// wallet, pricing and database calls run under the per-station lock at most.
type SystemHandler struct {
	stations          map[string]*StationState
	ocppIds           map[int]string
	database          internal.Database
	logger            internal.LogHandler
	eventHandler      internal.EventHandler
	wallet            internal.WalletService
	pricing           internal.PricingService
	location          *time.Location
	debug             bool
	heartbeatInterval int
	minSessionWh      int64
	platformFeePct    int64
	activeTx          int32
	mux               sync.Mutex
}

func NewSystemHandler(location *time.Location) *SystemHandler {
	return &SystemHandler{
		stations:          make(map[string]*StationState),
		ocppIds:           make(map[int]string),
		location:          location,
		heartbeatInterval: defaultHeartbeatInterval,
	}
}

func (h *SystemHandler) SetDatabase(database internal.Database) {
	h.database = database
}

func (h *SystemHandler) SetLogger(logger internal.LogHandler) {
	h.logger = logger
}

func (h *SystemHandler) SetEventHandler(eventHandler internal.EventHandler) {
	h.eventHandler = eventHandler
}

func (h *SystemHandler) SetWalletService(wallet internal.WalletService) {
	h.wallet = wallet
}

func (h *SystemHandler) SetPricingService(pricing internal.PricingService) {
	h.pricing = pricing
}

// SetParameters applies the ocpp section of the configuration. Debug mode
// auto-registers unknown stations.
func (h *SystemHandler) SetParameters(debug bool, heartbeatInterval int, minSessionWh, platformFeePct int64) {
	h.debug = debug
	if heartbeatInterval > 0 {
		h.heartbeatInterval = heartbeatInterval
	}
	h.minSessionWh = minSessionWh
	h.platformFeePct = platformFeePct
}

func (h *SystemHandler) OnStart() error {
	if h.database == nil {
		return nil
	}
	stations, err := h.database.GetStations()
	if err != nil {
		return fmt.Errorf("failed to load stations from database: %s", err)
	}
	connectors, err := h.database.GetConnectors()
	if err != nil {
		return fmt.Errorf("failed to load connectors from database: %s", err)
	}
	for i := range stations {
		state := &StationState{
			connectors:   make(map[int]*models.Connector),
			transactions: make(map[string]*models.Transaction),
			model:        stations[i],
		}
		for _, c := range connectors {
			if c.StationId == stations[i].Id {
				c.Init()
				state.connectors[c.Id] = c
			}
		}
		h.stations[stations[i].Id] = state
	}
	h.logger.Debug(fmt.Sprintf("loaded %d stations, %d connectors from database", len(stations), len(connectors)))
	return nil
}

// HandleEvent is the single entry point for inbound station traffic.
// Events for the same station serialize on its state mutex; different
// stations proceed in parallel.
func (h *SystemHandler) HandleEvent(stationId string, event ocpp.Event) (*ocpp.Reply, error) {
	switch evt := event.(type) {
	case *ocpp.BootEvent:
		return h.onBoot(stationId, evt)
	case *ocpp.HeartbeatEvent:
		return h.onHeartbeat(stationId)
	case *ocpp.AuthorizeEvent:
		return h.onAuthorize(stationId, evt)
	case *ocpp.StatusEvent:
		return h.onStatus(stationId, evt)
	case *ocpp.StartEvent:
		return h.onStart(stationId, evt)
	case *ocpp.SampleEvent:
		return h.onSample(stationId, evt)
	case *ocpp.StopEvent:
		return h.onStop(stationId, evt)
	case *ocpp.AckEvent:
		h.logger.FeatureEvent(evt.Action, stationId, "acknowledged")
		return ocpp.Accepted(), nil
	}
	return nil, utility.Err("unsupported event: " + event.EventType())
}

// addStation registers a fresh station state; the database write happens
// after the map insert so the handler mutex is never held across I/O.
func (h *SystemHandler) addStation(stationId string) *StationState {
	state := &StationState{
		connectors:   make(map[int]*models.Connector),
		transactions: make(map[string]*models.Transaction),
		model: models.Station{
			Id:        stationId,
			IsEnabled: true,
		},
	}
	h.mux.Lock()
	if existing, ok := h.stations[stationId]; ok {
		h.mux.Unlock()
		return existing
	}
	h.stations[stationId] = state
	h.mux.Unlock()
	if h.database != nil {
		err := h.database.UpdateStation(&state.model)
		if err != nil {
			h.logger.Error("failed to add station to database", err)
		}
	}
	return state
}

func (h *SystemHandler) getStation(stationId string) (*StationState, bool) {
	h.mux.Lock()
	state, ok := h.stations[stationId]
	h.mux.Unlock()
	if ok {
		return state, true
	}
	h.logger.Warn(fmt.Sprintf("unknown station: %s", stationId))
	if h.debug {
		h.logger.Debug("registering new station in debug mode")
		return h.addStation(stationId), true
	}
	return nil, false
}

// getConnector requires the caller to hold the station mutex.
func (h *SystemHandler) getConnector(state *StationState, id int) *models.Connector {
	connector, ok := state.connectors[id]
	if !ok {
		connector = models.NewConnector(id, state.model.Id)
		state.connectors[id] = connector
		if h.database != nil {
			err := h.database.AddConnector(connector)
			if err != nil {
				h.logger.Error("failed to add connector to database", err)
			}
		}
	}
	return connector
}

func (h *SystemHandler) onBoot(stationId string, event *ocpp.BootEvent) (*ocpp.Reply, error) {
	regStatus := types.RegistrationStatusAccepted
	state, ok := h.getStation(stationId)
	if ok {
		state.mux.Lock()
		state.model.Vendor = event.Vendor
		state.model.Model = event.Model
		if event.SerialNumber != "" {
			state.model.SerialNumber = event.SerialNumber
		}
		if event.FirmwareVersion != "" {
			state.model.FirmwareVersion = event.FirmwareVersion
		}
		state.model.IsOnline = true
		state.model.LastBoot = h.now()
		if h.database != nil {
			err := h.database.UpdateStation(&state.model)
			if err != nil {
				h.logger.Error("update station", err)
			}
		}
		state.mux.Unlock()
	} else {
		// unknown stations are told to stand by rather than turned away;
		// the operator can register them while they keep retrying
		regStatus = types.RegistrationStatusPending
		h.logger.Debug(fmt.Sprintf("station %s not registered", stationId))
	}
	h.logger.FeatureEvent("BootNotification", stationId, string(regStatus))
	return &ocpp.Reply{
		Registration: regStatus,
		CurrentTime:  types.NewDateTime(h.now()),
		Interval:     h.heartbeatInterval,
	}, nil
}

func (h *SystemHandler) onHeartbeat(stationId string) (*ocpp.Reply, error) {
	_, _ = h.getStation(stationId)
	return &ocpp.Reply{CurrentTime: types.NewDateTime(h.now())}, nil
}

func (h *SystemHandler) onAuthorize(stationId string, event *ocpp.AuthorizeEvent) (*ocpp.Reply, error) {
	state, _ := h.getStation(stationId)
	if state != nil {
		state.mux.Lock()
	}
	status, _, username := h.authorize(state, stationId, event.IdTag, nil)
	if state != nil {
		state.mux.Unlock()
	}
	if h.eventHandler != nil {
		h.eventHandler.OnAuthorize(&internal.EventMessage{
			Type:      internal.EventAuthorize,
			StationId: stationId,
			Time:      h.now(),
			Username:  username,
			IdTag:     event.IdTag,
			Status:    string(status),
		})
	}
	h.logger.FeatureEvent("Authorize", stationId, fmt.Sprintf("id tag: %s; authorization status: %s", event.IdTag, status))
	return &ocpp.Reply{Status: status}, nil
}

// authorize runs the full gate: credential shape, station and tag checks,
// then the wallet reservation. The pattern check runs first so malformed
// credentials never reach a collaborator. A non-nil tariff prices the
// wallet reservation with the pinned rate. The caller holds the station
// mutex when state is not nil; the handler mutex is never involved, so a
// slow wallet or pricing call stalls this station only.
func (h *SystemHandler) authorize(state *StationState, stationId, idTag string, tariff *models.Tariff) (types.AuthorizationStatus, string, string) {
	if !credentialPattern.MatchString(idTag) {
		return types.AuthorizationStatusInvalid, "", ""
	}
	if state != nil && !state.model.IsEnabled {
		return types.AuthorizationStatusBlocked, "", ""
	}
	userId, username := "", ""
	if h.database != nil {
		userTag, err := h.database.GetUserTag(idTag)
		if err != nil {
			h.logger.Error("failed to get user tag from database", err)
		}
		if userTag == nil {
			userTag = &models.UserTag{
				IdTag:     idTag,
				IsEnabled: h.debug,
			}
			err = h.database.AddUserTag(userTag)
			if err != nil {
				h.logger.Error("failed to add user tag to database", err)
			}
		}
		if !userTag.IsEnabled {
			return types.AuthorizationStatusBlocked, "", userTag.Username
		}
		userId = userTag.UserId
		username = userTag.Username
	}
	if h.wallet != nil {
		pricePerKwh := int64(0)
		if tariff != nil {
			pricePerKwh = tariff.PricePerKwh
		} else if h.pricing != nil {
			if t, err := h.pricing.GetTariff(stationId); err == nil && t != nil {
				pricePerKwh = t.PricePerKwh
			}
		}
		auth, err := h.wallet.AuthorizeAndReserve(idTag, billing.EstimateCost(h.minSessionWh, pricePerKwh))
		if err != nil {
			if err == internal.ErrInsufficientBalance {
				return types.AuthorizationStatusNoCredit, userId, username
			}
			h.logger.Error("wallet authorization", err)
			return types.AuthorizationStatusInvalid, userId, username
		}
		if auth != nil {
			userId = auth.UserId
			if auth.Username != "" {
				username = auth.Username
			}
		}
	}
	return types.AuthorizationStatusAccepted, userId, username
}

func (h *SystemHandler) onStatus(stationId string, event *ocpp.StatusEvent) (*ocpp.Reply, error) {
	state, ok := h.getStation(stationId)
	if !ok {
		return ocpp.Accepted(), nil
	}
	if event.ConnectorId == 0 {
		// connector 0 addresses the station controller itself
		h.logger.FeatureEvent("StatusNotification", stationId, fmt.Sprintf("station status: %s (%s)", event.Status, event.RawStatus))
		return ocpp.Accepted(), nil
	}
	state.mux.Lock()
	connector := h.getConnector(state, event.ConnectorId)
	connector.Status = string(event.Status)
	connector.Info = event.Info
	connector.ErrorCode = event.ErrorCode
	if h.database != nil {
		err := h.database.UpdateConnector(connector)
		if err != nil {
			h.logger.Error("update connector", err)
		}
	}
	state.mux.Unlock()
	if h.eventHandler != nil {
		h.eventHandler.OnStatusNotification(&internal.EventMessage{
			Type:        internal.EventStatus,
			StationId:   stationId,
			ConnectorId: event.ConnectorId,
			Time:        h.now(),
			Status:      string(event.Status),
			Info:        event.Info,
		})
	}
	h.logger.FeatureEvent("StatusNotification", stationId, fmt.Sprintf("connector %d: %s (%s)", event.ConnectorId, event.Status, event.RawStatus))
	return ocpp.Accepted(), nil
}

func (h *SystemHandler) onStart(stationId string, event *ocpp.StartEvent) (*ocpp.Reply, error) {
	state, ok := h.getStation(stationId)
	if !ok {
		return &ocpp.Reply{Status: types.AuthorizationStatusBlocked}, nil
	}
	state.mux.Lock()
	defer state.mux.Unlock()

	connector := h.getConnector(state, event.ConnectorId)
	if connector.Busy() {
		current := state.transactions[connector.CurrentTransactionId]
		reply := &ocpp.Reply{Status: types.AuthorizationStatusConcurrentTx}
		if current != nil {
			reply.OcppId = current.OcppId
		}
		h.logger.Warn(fmt.Sprintf("connector %s@%d is busy with transaction %s", stationId, event.ConnectorId, connector.CurrentTransactionId))
		return reply, nil
	}

	var tariff *models.Tariff
	if h.pricing != nil {
		t, err := h.pricing.GetTariff(stationId)
		if err != nil {
			h.logger.Error("get tariff", err)
		}
		tariff = t
	}

	status, userId, username := h.authorize(state, stationId, event.IdTag, tariff)
	if status != types.AuthorizationStatusAccepted {
		rejected := h.newTransaction(stationId, event)
		rejected.State = models.TransactionRejected
		rejected.UserId = userId
		if h.database != nil {
			if err := h.database.AddTransaction(rejected); err != nil {
				h.logger.Error("add transaction", err)
			}
		}
		h.logger.FeatureEvent("StartTransaction", stationId, fmt.Sprintf("rejected for id tag %s: %s", event.IdTag, status))
		return &ocpp.Reply{Status: status, OcppId: rejected.OcppId}, nil
	}

	transaction := h.newTransaction(stationId, event)
	transaction.State = models.TransactionActive
	transaction.UserId = userId
	if tariff != nil {
		transaction.PricePerKwh = tariff.PricePerKwh
		transaction.Demand = tariff.Demand
	}

	connector.CurrentTransactionId = transaction.Id
	state.transactions[transaction.Id] = transaction
	h.mux.Lock()
	h.ocppIds[transaction.OcppId] = transaction.Id
	h.mux.Unlock()

	if h.database != nil {
		if err := h.database.UpdateConnector(connector); err != nil {
			h.logger.Error("update connector", err)
		}
		if err := h.database.AddTransaction(transaction); err != nil {
			h.logger.Error("add transaction", err)
		}
	}

	if h.eventHandler != nil {
		h.eventHandler.OnTransactionStart(&internal.EventMessage{
			Type:          internal.EventTransactionStart,
			StationId:     stationId,
			ConnectorId:   transaction.ConnectorId,
			Time:          transaction.TimeStart,
			Username:      username,
			IdTag:         transaction.IdTag,
			TransactionId: transaction.Id,
			Status:        string(transaction.State),
		})
	}
	observeTransactions(int(atomic.AddInt32(&h.activeTx, 1)))

	h.logger.FeatureEvent("StartTransaction", stationId, fmt.Sprintf("started transaction %s (#%d) on connector %d", transaction.Id, transaction.OcppId, transaction.ConnectorId))
	return &ocpp.Reply{Status: types.AuthorizationStatusAccepted, OcppId: transaction.OcppId}, nil
}

// newTransaction builds the record with both identifiers populated: the
// station-issued string id when the modern dialect provides one, otherwise
// a fresh uuid; plus a gateway-issued numeric id for the legacy dialect.
func (h *SystemHandler) newTransaction(stationId string, event *ocpp.StartEvent) *models.Transaction {
	id := event.StationTxId
	if id == "" {
		id = utility.NewUUID()
	}
	h.mux.Lock()
	newOcppId += 1
	ocppId := newOcppId
	h.mux.Unlock()
	timeStart := event.Timestamp
	if timeStart.IsZero() {
		timeStart = h.now()
	}
	transaction := &models.Transaction{
		Id:          id,
		OcppId:      ocppId,
		StationId:   stationId,
		ConnectorId: event.ConnectorId,
		IdTag:       event.IdTag,
		State:       models.TransactionAuthorizing,
		MeterStart:  event.MeterStart,
		LastMeter:   event.MeterStart,
		TimeStart:   timeStart,
	}
	transaction.Init()
	return transaction
}

// findTransaction requires the caller to hold the station mutex.
func (h *SystemHandler) findTransaction(state *StationState, ocppId int, stationTxId string) *models.Transaction {
	if stationTxId != "" {
		if transaction, ok := state.transactions[stationTxId]; ok {
			return transaction
		}
	}
	if ocppId > 0 {
		h.mux.Lock()
		id, ok := h.ocppIds[ocppId]
		h.mux.Unlock()
		if ok {
			if transaction, ok := state.transactions[id]; ok {
				return transaction
			}
		}
	}
	if h.database != nil && stationTxId != "" {
		transaction, err := h.database.GetTransaction(stationTxId)
		if err != nil {
			h.logger.Error("get transaction", err)
		}
		if transaction != nil {
			state.transactions[transaction.Id] = transaction
			h.mux.Lock()
			h.ocppIds[transaction.OcppId] = transaction.Id
			h.mux.Unlock()
			if transaction.IsActive() {
				atomic.AddInt32(&h.activeTx, 1)
			}
			return transaction
		}
	}
	return nil
}

func (h *SystemHandler) onSample(stationId string, event *ocpp.SampleEvent) (*ocpp.Reply, error) {
	state, ok := h.getStation(stationId)
	if !ok {
		return ocpp.Accepted(), nil
	}
	state.mux.Lock()
	defer state.mux.Unlock()
	transaction := h.findTransaction(state, event.OcppId, event.StationTxId)
	if transaction == nil {
		h.logger.Warn(fmt.Sprintf("meter sample for unknown transaction on %s@%d", stationId, event.ConnectorId))
		return ocpp.Accepted(), nil
	}
	transaction.Lock()
	defer transaction.Unlock()
	for _, reading := range event.Readings {
		if reading.ValueWh < transaction.LastMeter {
			h.logger.Warn(fmt.Sprintf("non-monotonic meter sample dropped: %d < %d on transaction %s", reading.ValueWh, transaction.LastMeter, transaction.Id))
			continue
		}
		transaction.LastMeter = reading.ValueWh
		sample := &models.MeterSample{
			TransactionId: transaction.Id,
			StationId:     stationId,
			ConnectorId:   transaction.ConnectorId,
			Time:          reading.Time,
			ValueWh:       reading.ValueWh,
			Measurand:     reading.Measurand,
			Context:       reading.Context,
		}
		if sample.Time.IsZero() {
			sample.Time = h.now()
		}
		if h.database != nil {
			if err := h.database.AddMeterSample(sample); err != nil {
				h.logger.Error("add meter sample", err)
			}
		}
	}
	if h.database != nil {
		if err := h.database.UpdateTransaction(transaction); err != nil {
			h.logger.Error("update transaction", err)
		}
	}
	return ocpp.Accepted(), nil
}

func (h *SystemHandler) onStop(stationId string, event *ocpp.StopEvent) (*ocpp.Reply, error) {
	state, ok := h.getStation(stationId)
	if !ok {
		return ocpp.Accepted(), nil
	}
	state.mux.Lock()
	defer state.mux.Unlock()
	transaction := h.findTransaction(state, event.OcppId, event.StationTxId)
	if transaction == nil {
		h.logger.Warn(fmt.Sprintf("stop for unknown transaction on %s", stationId))
		return ocpp.Accepted(), nil
	}
	transaction.Lock()
	defer transaction.Unlock()
	if transaction.State == models.TransactionSettled {
		h.logger.Warn(fmt.Sprintf("transaction %s already settled", transaction.Id))
		return ocpp.Accepted(), nil
	}
	transaction.State = models.TransactionFinishing
	transaction.MeterStop = event.MeterStop
	transaction.TimeStop = event.Timestamp
	if transaction.TimeStop.IsZero() {
		transaction.TimeStop = h.now()
	}
	transaction.Reason = event.Reason

	// Transaction.Begin/End readings are authoritative over the recorded
	// boundaries when the station supplies them
	if event.BeginWh != nil {
		transaction.MeterStart = *event.BeginWh
	}
	if event.BeginTime != nil {
		transaction.TimeStart = *event.BeginTime
	}
	if event.EndWh != nil {
		transaction.MeterStop = *event.EndWh
	}
	if event.EndTime != nil {
		transaction.TimeStop = *event.EndTime
	}

	feePct := h.platformFeePct
	settlement := billing.Settle(transaction.MeterStart, transaction.MeterStop, transaction.PricePerKwh, feePct)
	settlement.Apply(transaction)
	transaction.State = models.TransactionSettled
	transaction.ConnectionLost = false

	h.releaseConnector(state, transaction)
	delete(state.transactions, transaction.Id)
	h.mux.Lock()
	delete(h.ocppIds, transaction.OcppId)
	h.mux.Unlock()

	if h.database != nil {
		if err := h.database.UpdateTransaction(transaction); err != nil {
			h.logger.Error("update transaction", err)
		}
	}
	if h.eventHandler != nil {
		h.eventHandler.OnTransactionStop(&internal.EventMessage{
			Type:          internal.EventTransactionStop,
			StationId:     stationId,
			ConnectorId:   transaction.ConnectorId,
			Time:          transaction.TimeStop,
			IdTag:         transaction.IdTag,
			TransactionId: transaction.Id,
			Status:        string(transaction.State),
			Info:          fmt.Sprintf("%s kWh, cost %s", utility.WhAsKwh(transaction.EnergyWh), utility.IntAsPrice(transaction.Cost)),
		})
	}
	observeTransactions(int(atomic.AddInt32(&h.activeTx, -1)))
	observeSettledEnergy(transaction.EnergyWh)

	h.logger.FeatureEvent("StopTransaction", stationId, fmt.Sprintf("settled transaction %s: %s kWh, cost %s (fee %s, owner %s)",
		transaction.Id, utility.WhAsKwh(transaction.EnergyWh), utility.IntAsPrice(transaction.Cost),
		utility.IntAsPrice(transaction.PlatformFee), utility.IntAsPrice(transaction.OwnerShare)))
	return &ocpp.Reply{Status: types.AuthorizationStatusAccepted}, nil
}

// releaseConnector requires the caller to hold the station mutex.
func (h *SystemHandler) releaseConnector(state *StationState, transaction *models.Transaction) {
	connector, ok := state.connectors[transaction.ConnectorId]
	if !ok {
		return
	}
	if connector.CurrentTransactionId == transaction.Id {
		connector.CurrentTransactionId = ""
	}
	if h.database != nil {
		if err := h.database.UpdateConnector(connector); err != nil {
			h.logger.Error("update connector", err)
		}
	}
}

func (h *SystemHandler) lookupStation(stationId string) *StationState {
	h.mux.Lock()
	defer h.mux.Unlock()
	return h.stations[stationId]
}

// OnConnectionLost flags every active transaction for the station instead
// of closing them: charging may continue while signaling is down.
func (h *SystemHandler) OnConnectionLost(stationId string) {
	state := h.lookupStation(stationId)
	if state == nil {
		return
	}
	state.mux.Lock()
	defer state.mux.Unlock()
	for _, transaction := range state.transactions {
		if transaction.IsActive() && !transaction.ConnectionLost {
			transaction.ConnectionLost = true
			if h.database != nil {
				if err := h.database.UpdateTransaction(transaction); err != nil {
					h.logger.Error("update transaction", err)
				}
			}
			h.logger.Warn(fmt.Sprintf("transaction %s lost its connection on %s", transaction.Id, stationId))
		}
	}
}

// OnReconnect resumes flagged transactions; the reconciliation policy is
// to trust the station's meter and continue accruing, not to force-settle.
func (h *SystemHandler) OnReconnect(stationId string) {
	state := h.lookupStation(stationId)
	if state == nil {
		return
	}
	state.mux.Lock()
	for _, transaction := range state.transactions {
		if transaction.ConnectionLost {
			transaction.ConnectionLost = false
			if h.database != nil {
				if err := h.database.UpdateTransaction(transaction); err != nil {
					h.logger.Error("update transaction", err)
				}
			}
			h.logger.FeatureEvent("Reconnect", stationId, fmt.Sprintf("transaction %s resumed", transaction.Id))
		}
	}
	wasOffline := !state.model.IsOnline
	if wasOffline {
		state.model.IsOnline = true
		if h.database != nil {
			if err := h.database.UpdateStation(&state.model); err != nil {
				h.logger.Error("update station", err)
			}
		}
	}
	state.mux.Unlock()
	if wasOffline && h.eventHandler != nil {
		h.eventHandler.OnStationOnline(&internal.EventMessage{
			Type:      internal.EventStationOnline,
			StationId: stationId,
			Time:      h.now(),
		})
	}
}

// MarkOffline is idempotent; repeated watchdog ticks for a dead station
// produce a single offline event.
func (h *SystemHandler) MarkOffline(stationId string) {
	state := h.lookupStation(stationId)
	if state == nil {
		return
	}
	state.mux.Lock()
	if !state.model.IsOnline {
		state.mux.Unlock()
		return
	}
	state.model.IsOnline = false
	if h.database != nil {
		if err := h.database.UpdateStation(&state.model); err != nil {
			h.logger.Error("update station", err)
		}
	}
	state.mux.Unlock()

	h.OnConnectionLost(stationId)
	if h.eventHandler != nil {
		h.eventHandler.OnStationOffline(&internal.EventMessage{
			Type:      internal.EventStationOffline,
			StationId: stationId,
			Time:      h.now(),
		})
	}
	h.logger.FeatureEvent("Offline", stationId, "station marked offline")
}

// FindOcppId resolves a transaction's legacy numeric id for the remote
// stop command on the 1.6 dialect.
func (h *SystemHandler) FindOcppId(transactionId string) (int, bool) {
	h.mux.Lock()
	defer h.mux.Unlock()
	for ocppId, id := range h.ocppIds {
		if id == transactionId {
			return ocppId, true
		}
	}
	return 0, false
}

func (h *SystemHandler) GetTransaction(transactionId string) *models.Transaction {
	for _, state := range h.stationStates() {
		state.mux.Lock()
		transaction, ok := state.transactions[transactionId]
		state.mux.Unlock()
		if ok {
			return transaction
		}
	}
	return nil
}

// Stations lists the known stations for the operator API.
func (h *SystemHandler) Stations() []models.Station {
	states := h.stationStates()
	stations := make([]models.Station, 0, len(states))
	for _, state := range states {
		state.mux.Lock()
		stations = append(stations, state.model)
		state.mux.Unlock()
	}
	return stations
}

func (h *SystemHandler) stationStates() []*StationState {
	h.mux.Lock()
	defer h.mux.Unlock()
	states := make([]*StationState, 0, len(h.stations))
	for _, state := range h.stations {
		states = append(states, state)
	}
	return states
}

func (h *SystemHandler) now() time.Time {
	if h.location != nil {
		return time.Now().In(h.location)
	}
	return time.Now()
}
