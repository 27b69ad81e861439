package ocpp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evgate/utility"
)

func TestParseMessageCall(t *testing.T) {
	fields, err := utility.ParseJson([]byte(`[2,"msg-1","Heartbeat",{}]`))
	require.NoError(t, err)
	message, err := ParseMessage(fields)
	require.NoError(t, err)
	assert.Equal(t, CallTypeRequest, message.Type)
	assert.Equal(t, "msg-1", message.UniqueId)
	assert.Equal(t, "Heartbeat", message.Action)
}

func TestParseMessageCallResult(t *testing.T) {
	fields, err := utility.ParseJson([]byte(`[3,"msg-2",{"status":"Accepted"}]`))
	require.NoError(t, err)
	message, err := ParseMessage(fields)
	require.NoError(t, err)
	assert.Equal(t, CallTypeResult, message.Type)
	payload, ok := message.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Accepted", payload["status"])
}

func TestParseMessageCallError(t *testing.T) {
	fields, err := utility.ParseJson([]byte(`[4,"msg-3","InternalError","something broke",{}]`))
	require.NoError(t, err)
	message, err := ParseMessage(fields)
	require.NoError(t, err)
	assert.Equal(t, CallTypeError, message.Type)
	assert.Equal(t, "InternalError", message.ErrorCode)
	assert.Equal(t, "something broke", message.ErrorDescription)
}

func TestParseMessageMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"too short", `[2,"msg-4"]`},
		{"call with wrong arity", `[2,"msg-5","Heartbeat"]`},
		{"non numeric type tag", `["2","msg-6","Heartbeat",{}]`},
		{"empty unique id", `[2,"","Heartbeat",{}]`},
		{"unknown type tag", `[9,"msg-7","Heartbeat",{}]`},
		{"empty action", `[2,"msg-8","",{}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := utility.ParseJson([]byte(tc.data))
			require.NoError(t, err)
			_, err = ParseMessage(fields)
			require.Error(t, err)
			_, ok := err.(*MalformedError)
			assert.True(t, ok)
		})
	}
}

func TestMalformedErrorKeepsUniqueId(t *testing.T) {
	fields, err := utility.ParseJson([]byte(`[2,"msg-9","Heartbeat"]`))
	require.NoError(t, err)
	_, err = ParseMessage(fields)
	require.Error(t, err)
	malformed, ok := err.(*MalformedError)
	require.True(t, ok)
	assert.Equal(t, "msg-9", malformed.UniqueId)
}

func TestCreateCallResult(t *testing.T) {
	data, err := CreateCallResult("msg-10", map[string]string{"status": "Accepted"})
	require.NoError(t, err)
	assert.JSONEq(t, `[3,"msg-10",{"status":"Accepted"}]`, string(data))
}

func TestCreateCallErrorShape(t *testing.T) {
	data, err := CreateCallError("msg-11", ErrorNotImplemented, "no such action")
	require.NoError(t, err)
	assert.JSONEq(t, `[4,"msg-11","NotImplemented","no such action",{}]`, string(data))
}
