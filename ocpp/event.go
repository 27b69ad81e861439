package ocpp

import (
	"time"

	"evgate/models"
	"evgate/types"
)

// Events are the dialect-neutral form of inbound station traffic. The
// adapters translate dialect payloads into these; the system handler never
// sees dialect-specific field names.

type Event interface {
	EventType() string
}

const (
	EventBoot      = "Boot"
	EventHeartbeat = "Heartbeat"
	EventAuthorize = "Authorize"
	EventStatus    = "Status"
	EventStart     = "Start"
	EventSample    = "Sample"
	EventStop      = "Stop"
	EventAck       = "Ack"
)

type BootEvent struct {
	Vendor          string
	Model           string
	SerialNumber    string
	FirmwareVersion string
}

func (e *BootEvent) EventType() string { return EventBoot }

type HeartbeatEvent struct {
}

func (e *HeartbeatEvent) EventType() string { return EventHeartbeat }

type AuthorizeEvent struct {
	IdTag string
}

func (e *AuthorizeEvent) EventType() string { return EventAuthorize }

// StatusEvent carries a connector status report already mapped through the
// dialect's status table. ConnectorId 0 addresses the station controller.
type StatusEvent struct {
	ConnectorId int
	Status      models.ConnectorStatus
	RawStatus   string
	ErrorCode   string
	Info        string
}

func (e *StatusEvent) EventType() string { return EventStatus }

// StartEvent opens a charging transaction. StationTxId is set by the modern
// dialect, where the station generates the transaction identifier; the
// legacy dialect leaves it empty and the gateway assigns one.
type StartEvent struct {
	ConnectorId int
	IdTag       string
	MeterStart  int64
	Timestamp   time.Time
	StationTxId string
}

func (e *StartEvent) EventType() string { return EventStart }

type MeterReading struct {
	Time      time.Time
	ValueWh   int64
	Measurand string
	Context   string
}

// SampleEvent appends periodic meter readings to an open transaction. The
// transaction is addressed by OcppId (legacy numeric id) or StationTxId
// (modern string id), whichever the dialect carries.
type SampleEvent struct {
	ConnectorId int
	OcppId      int
	StationTxId string
	Readings    []MeterReading
}

func (e *SampleEvent) EventType() string { return EventSample }

type StopEvent struct {
	OcppId      int
	StationTxId string
	IdTag       string
	MeterStop   int64
	Timestamp   time.Time
	Reason      string
	// Transaction.Begin/Transaction.End context readings override the
	// recorded meter boundaries when present.
	BeginWh   *int64
	BeginTime *time.Time
	EndWh     *int64
	EndTime   *time.Time
}

func (e *StopEvent) EventType() string { return EventStop }

// AckEvent covers housekeeping actions that only need an empty confirmation
// (DataTransfer, NotifyReport, LogStatusNotification and friends).
type AckEvent struct {
	Action string
}

func (e *AckEvent) EventType() string { return EventAck }

// Reply is the dialect-neutral answer built by the system handler; the
// adapter renders it into the dialect's confirmation payload.
type Reply struct {
	Status       types.AuthorizationStatus
	Registration types.RegistrationStatus
	CurrentTime  *types.DateTime
	Interval     int
	OcppId       int
}

func Accepted() *Reply {
	return &Reply{Status: types.AuthorizationStatusAccepted}
}
