package ocpp

import (
	"evgate/models"
	"evgate/types"
	"evgate/utility"
)

// Dialect is the per-connection strategy translating one protocol version
// to and from the neutral event model. An implementation is selected once
// at negotiation time, never per message.
type Dialect interface {
	Proto() string
	DecodeRequest(action string, payload interface{}) (Event, error)
	EncodeReply(event Event, reply *Reply) interface{}
	EncodeCommand(command Command) (string, interface{}, error)
	ConnectorStatus(status string) models.ConnectorStatus
	ResetType(requested string) string
}

// protocolPriority orders the supported subprotocol tokens, newest first.
var protocolPriority = []string{
	types.SubProtocol201,
	types.SubProtocol20,
	types.SubProtocol16,
}

// SelectProtocol picks the subprotocol for a connection from the client's
// offer. Stations with a missing or unknown offer still get serviced on the
// legacy dialect rather than being refused.
func SelectProtocol(offered []string) string {
	for _, proto := range protocolPriority {
		if utility.Contains(offered, proto) {
			return proto
		}
	}
	return types.SubProtocol16
}
