package ocpp

import "fmt"

// ErrorCode is a CALLERROR code defined by the protocol.
type ErrorCode string

const (
	ErrorNotImplemented     ErrorCode = "NotImplemented"
	ErrorProtocolError      ErrorCode = "ProtocolError"
	ErrorFormationViolation ErrorCode = "FormationViolation"
	ErrorInternalError      ErrorCode = "InternalError"
)

// UnknownActionError reports a call whose action neither dialect handler
// recognizes; the caller replies CALLERROR NotImplemented.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unsupported action requested: %s", e.Action)
}
