package ocpp

import (
	"encoding/json"
	"fmt"
)

type CallType int

const (
	CallTypeRequest CallType = 2
	CallTypeResult  CallType = 3
	CallTypeError   CallType = 4
)

// Message is a decoded OCPP-J wire envelope. The codec validates only the
// array shape and the call type tag; action semantics belong to the dialect.
type Message struct {
	Type             CallType
	UniqueId         string
	Action           string
	Payload          interface{}
	ErrorCode        string
	ErrorDescription string
	Details          interface{}
}

// MalformedError reports an envelope that failed shape validation. UniqueId
// holds the message id when one could be recovered, so the caller can reply
// with a CALLERROR instead of dropping the connection.
type MalformedError struct {
	UniqueId string
	Reason   string
}

func (e *MalformedError) Error() string {
	return e.Reason
}

func malformed(uniqueId, format string, args ...interface{}) *MalformedError {
	return &MalformedError{UniqueId: uniqueId, Reason: fmt.Sprintf(format, args...)}
}

// ParseMessage validates an envelope parsed from a JSON array:
// [2, id, action, payload], [3, id, payload] or [4, id, code, description, details].
func ParseMessage(fields []interface{}) (*Message, error) {
	if len(fields) < 3 {
		return nil, malformed("", "incompatible message structure; got %d elements", len(fields))
	}
	rawType, ok := fields[0].(float64)
	if !ok {
		return nil, malformed("", "invalid message type tag")
	}
	uniqueId, ok := fields[1].(string)
	if !ok || uniqueId == "" {
		return nil, malformed("", "invalid message unique id")
	}
	message := &Message{
		Type:     CallType(rawType),
		UniqueId: uniqueId,
	}
	switch message.Type {
	case CallTypeRequest:
		if len(fields) != 4 {
			return nil, malformed(uniqueId, "call expects 4 elements; got %d", len(fields))
		}
		action, ok := fields[2].(string)
		if !ok || action == "" {
			return nil, malformed(uniqueId, "invalid action in call")
		}
		message.Action = action
		message.Payload = fields[3]
	case CallTypeResult:
		if len(fields) != 3 {
			return nil, malformed(uniqueId, "call result expects 3 elements; got %d", len(fields))
		}
		message.Payload = fields[2]
	case CallTypeError:
		if len(fields) < 4 {
			return nil, malformed(uniqueId, "call error expects at least 4 elements; got %d", len(fields))
		}
		code, ok := fields[2].(string)
		if !ok {
			return nil, malformed(uniqueId, "invalid error code in call error")
		}
		message.ErrorCode = code
		if description, ok := fields[3].(string); ok {
			message.ErrorDescription = description
		}
		if len(fields) > 4 {
			message.Details = fields[4]
		}
	default:
		return nil, malformed(uniqueId, "unsupported message type tag: %v", rawType)
	}
	return message, nil
}

func CreateCall(uniqueId, action string, payload interface{}) ([]byte, error) {
	if payload == nil {
		payload = struct{}{}
	}
	return json.Marshal([]interface{}{int(CallTypeRequest), uniqueId, action, payload})
}

func CreateCallResult(uniqueId string, payload interface{}) ([]byte, error) {
	if payload == nil {
		payload = struct{}{}
	}
	return json.Marshal([]interface{}{int(CallTypeResult), uniqueId, payload})
}

func CreateCallError(uniqueId string, code ErrorCode, description string) ([]byte, error) {
	return json.Marshal([]interface{}{int(CallTypeError), uniqueId, string(code), description, struct{}{}})
}
