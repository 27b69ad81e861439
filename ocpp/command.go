package ocpp

import "time"

// Commands are operator-initiated actions sent to a station. Each dialect
// encodes them with its own action names and payload shapes.

type Command interface {
	CommandType() string
}

const (
	CommandRemoteStart       = "RemoteStart"
	CommandRemoteStop        = "RemoteStop"
	CommandReserveNow        = "ReserveNow"
	CommandCancelReservation = "CancelReservation"
	CommandReset             = "Reset"
	CommandUnlockConnector   = "UnlockConnector"
)

type RemoteStartCommand struct {
	ConnectorId int
	IdTag       string
}

func (c *RemoteStartCommand) CommandType() string { return CommandRemoteStart }

// RemoteStopCommand addresses the transaction by whichever identifier the
// dialect understands: the numeric legacy id or the string transaction id.
type RemoteStopCommand struct {
	OcppId        int
	TransactionId string
}

func (c *RemoteStopCommand) CommandType() string { return CommandRemoteStop }

type ReserveNowCommand struct {
	ConnectorId   int
	ReservationId int
	Expiry        time.Time
	IdTag         string
}

func (c *ReserveNowCommand) CommandType() string { return CommandReserveNow }

type CancelReservationCommand struct {
	ReservationId int
}

func (c *CancelReservationCommand) CommandType() string { return CommandCancelReservation }

// ResetCommand carries the operator-requested type; the dialect maps it to
// its own vocabulary through the reset table.
type ResetCommand struct {
	Type string
}

func (c *ResetCommand) CommandType() string { return CommandReset }

type UnlockConnectorCommand struct {
	ConnectorId int
}

func (c *UnlockConnectorCommand) CommandType() string { return CommandUnlockConnector }

// ResultAccepted checks the status field both dialects use in command
// confirmations. A payload without a status field counts as accepted.
func ResultAccepted(payload interface{}) bool {
	fields, ok := payload.(map[string]interface{})
	if !ok {
		return true
	}
	status, ok := fields["status"]
	if !ok {
		return true
	}
	return status == "Accepted"
}
