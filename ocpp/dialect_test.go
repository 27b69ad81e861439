package ocpp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"evgate/types"
)

func TestSelectProtocolPrefersNewest(t *testing.T) {
	proto := SelectProtocol([]string{types.SubProtocol16, types.SubProtocol201})
	assert.Equal(t, types.SubProtocol201, proto)
}

func TestSelectProtocolOrderIndependent(t *testing.T) {
	a := SelectProtocol([]string{types.SubProtocol16, types.SubProtocol20, types.SubProtocol201})
	b := SelectProtocol([]string{types.SubProtocol201, types.SubProtocol20, types.SubProtocol16})
	assert.Equal(t, a, b)
}

func TestSelectProtocolIntermediate(t *testing.T) {
	proto := SelectProtocol([]string{types.SubProtocol20, types.SubProtocol16})
	assert.Equal(t, types.SubProtocol20, proto)
}

func TestSelectProtocolFallback(t *testing.T) {
	assert.Equal(t, types.SubProtocol16, SelectProtocol(nil))
	assert.Equal(t, types.SubProtocol16, SelectProtocol([]string{}))
	assert.Equal(t, types.SubProtocol16, SelectProtocol([]string{"ocpp9.9"}))
}

func TestResultAccepted(t *testing.T) {
	assert.True(t, ResultAccepted(map[string]interface{}{"status": "Accepted"}))
	assert.False(t, ResultAccepted(map[string]interface{}{"status": "Rejected"}))
	// a confirmation without a status field counts as accepted
	assert.True(t, ResultAccepted(map[string]interface{}{}))
	assert.True(t, ResultAccepted(nil))
}
