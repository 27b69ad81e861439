package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evgate/internal"
	"evgate/internal/config"
	"evgate/models"
	"evgate/ocpp"
	"evgate/types"
)

type stubDialect struct {
	proto string
}

func (d *stubDialect) Proto() string { return d.proto }
func (d *stubDialect) DecodeRequest(action string, payload interface{}) (ocpp.Event, error) {
	return nil, nil
}
func (d *stubDialect) EncodeReply(event ocpp.Event, reply *ocpp.Reply) interface{} { return nil }
func (d *stubDialect) EncodeCommand(command ocpp.Command) (string, interface{}, error) {
	return "", nil, nil
}
func (d *stubDialect) ConnectorStatus(status string) models.ConnectorStatus {
	return models.ConnectorStatus(status)
}
func (d *stubDialect) ResetType(requested string) string { return requested }

func newWsTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	server := NewServer(&config.Config{}, internal.NewLogger(time.UTC))
	server.SetDialectFactory(func(proto string) ocpp.Dialect {
		return &stubDialect{proto: proto}
	})
	router := httprouter.New()
	router.GET("/ws/:id", server.handleWsRequest)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return server, ts
}

func TestSubprotocolNegotiation(t *testing.T) {
	tests := []struct {
		name    string
		offered []string
		want    string
	}{
		{"newest wins over legacy", []string{types.SubProtocol16, types.SubProtocol201}, types.SubProtocol201},
		{"intermediate accepted", []string{types.SubProtocol20}, types.SubProtocol20},
		{"legacy only", []string{types.SubProtocol16}, types.SubProtocol16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, ts := newWsTestServer(t)

			dialer := websocket.Dialer{Subprotocols: tt.offered}
			url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/st-1"
			conn, resp, err := dialer.Dial(url, nil)
			require.NoError(t, err)
			defer func() { _ = conn.Close() }()

			// the negotiated token travels in the handshake response
			assert.Equal(t, tt.want, resp.Header.Get("Sec-WebSocket-Protocol"))

			// registration completes after the handshake response is written
			require.Eventually(t, func() bool {
				_, ok := server.Registry().Get("st-1")
				return ok
			}, time.Second, 10*time.Millisecond)
			ws, _ := server.Registry().Get("st-1")
			assert.Equal(t, tt.want, ws.Proto())
			assert.Equal(t, tt.want, ws.Dialect().Proto())
		})
	}
}

func TestNegotiationFallsBackToLegacy(t *testing.T) {
	// an empty or unknown offer is serviced on the legacy dialect
	assert.Equal(t, types.SubProtocol16, ocpp.SelectProtocol(nil))
	assert.Equal(t, types.SubProtocol16, ocpp.SelectProtocol([]string{"mqtt"}))
}
