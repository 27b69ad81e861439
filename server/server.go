package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"evgate/internal"
	"evgate/internal/config"
	"evgate/ocpp"
	"evgate/utility"
)

const (
	wsEndpoint = "/ws/:id"
)

type Server struct {
	conf              *config.Config
	httpServer        *http.Server
	upgrader          websocket.Upgrader
	messageHandler    func(ws *WebSocket, data []byte) error
	disconnectHandler func(ws *WebSocket)
	connectHandler    func(ws *WebSocket)
	dialectFactory    func(proto string) ocpp.Dialect
	registry          *Registry
	logger            internal.LogHandler
}

// WebSocket is one station connection with the dialect fixed at upgrade
// time. Writes are serialized; gorilla connections do not allow concurrent
// writers.
type WebSocket struct {
	conn       *websocket.Conn
	id         string
	proto      string
	dialect    ocpp.Dialect
	writeMutex sync.Mutex
	lastSeen   time.Time
	seenMutex  sync.Mutex
	violations int
	closeOnce  sync.Once
}

func (ws *WebSocket) ID() string {
	return ws.id
}

func (ws *WebSocket) Proto() string {
	return ws.proto
}

func (ws *WebSocket) Dialect() ocpp.Dialect {
	return ws.dialect
}

func (ws *WebSocket) Touch() {
	ws.seenMutex.Lock()
	ws.lastSeen = time.Now()
	ws.seenMutex.Unlock()
}

func (ws *WebSocket) LastSeen() time.Time {
	ws.seenMutex.Lock()
	defer ws.seenMutex.Unlock()
	return ws.lastSeen
}

// Violate counts one malformed frame and reports whether the connection
// exceeded its allowance.
func (ws *WebSocket) Violate(max int) bool {
	ws.violations++
	return ws.violations >= max
}

func (ws *WebSocket) Write(data []byte) error {
	ws.writeMutex.Lock()
	defer ws.writeMutex.Unlock()
	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

func (ws *WebSocket) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		err = ws.conn.Close()
	})
	return err
}

func NewServer(conf *config.Config, logger internal.LogHandler) *Server {
	// Subprotocols stays unset on the upgrader: the dialect is picked with
	// SelectProtocol and echoed through the response header, so the fallback
	// to the legacy dialect survives an offer the upgrader would not match.
	server := Server{
		conf:     conf,
		logger:   logger,
		registry: NewRegistry(),
	}
	router := httprouter.New()
	router.GET(wsEndpoint, server.handleWsRequest)
	server.httpServer = &http.Server{
		Handler: router,
	}
	return &server
}

func (s *Server) Registry() *Registry {
	return s.registry
}

func (s *Server) SetMessageHandler(handler func(ws *WebSocket, data []byte) error) {
	s.messageHandler = handler
}

func (s *Server) SetConnectHandler(handler func(ws *WebSocket)) {
	s.connectHandler = handler
}

func (s *Server) SetDisconnectHandler(handler func(ws *WebSocket)) {
	s.disconnectHandler = handler
}

// SetDialectFactory installs the mapping from a negotiated subprotocol
// token to an adapter. Both 2.0 tokens run on the modern adapter.
func (s *Server) SetDialectFactory(factory func(proto string) ocpp.Dialect) {
	s.dialectFactory = factory
}

func (s *Server) handleWsRequest(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	id := params.ByName("id")
	s.logger.Debug(fmt.Sprintf("connection initiated from remote %s", r.RemoteAddr))

	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}

	// negotiation never refuses a station; an empty or unknown offer is
	// serviced on the legacy dialect
	proto := ocpp.SelectProtocol(websocket.Subprotocols(r))
	responseHeader := http.Header{}
	responseHeader.Add("Sec-WebSocket-Protocol", proto)

	conn, err := s.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		s.logger.Error("upgrade failed", err)
		return
	}

	s.logger.Debug(fmt.Sprintf("upgraded socket for %s on %s", id, proto))
	ws := &WebSocket{
		conn:    conn,
		id:      id,
		proto:   proto,
		dialect: s.dialectFactory(proto),
	}
	ws.Touch()

	if previous := s.registry.Register(ws); previous != nil {
		s.logger.Debug(fmt.Sprintf("superseding connection for %s", id))
		_ = previous.Close()
	}
	observeConnections(s.registry.Count())

	if s.connectHandler != nil {
		s.connectHandler(ws)
	}

	go s.messageReader(ws)
}

func (s *Server) messageReader(ws *WebSocket) {
	conn := ws.conn
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, 3001) {
				s.logger.Debug(fmt.Sprintf("id %s leaving session", ws.id))
			} else {
				s.logger.Debug(fmt.Sprintf("id %s is closing session %s", ws.id, err))
			}
			_ = ws.Close()
			if s.registry.Unregister(ws) {
				observeConnections(s.registry.Count())
				if s.disconnectHandler != nil {
					s.disconnectHandler(ws)
				}
			}
			return
		}
		ws.Touch()
		s.logger.RawDataEvent("IN", string(message))
		if s.messageHandler != nil {
			err = s.messageHandler(ws, message)
			if err != nil {
				s.logger.Error(fmt.Sprintf("handling message from %s", ws.id), err)
				continue
			}
		}
	}
}

func (s *Server) Start() error {
	if s.conf == nil {
		return utility.Err("configuration not loaded")
	}
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	s.logger.Debug(fmt.Sprintf("starting server on %s", serverAddress))
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}
	if s.conf.Listen.TLS {
		s.logger.Debug("starting https TLS server")
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Debug("starting http server")
		err = s.httpServer.Serve(listener)
	}
	return err
}

// Send writes a raw frame to the station's current connection.
func (s *Server) Send(stationId string, data []byte) error {
	ws, ok := s.registry.Get(stationId)
	if !ok {
		return ErrStationOffline
	}
	s.logger.RawDataEvent("OUT", string(data))
	return ws.Write(data)
}

// SendTo writes to a specific connection, bypassing the registry. Used for
// replies so a superseded socket never receives its successor's traffic.
func (s *Server) SendTo(ws *WebSocket, data []byte) error {
	s.logger.RawDataEvent("OUT", string(data))
	return ws.Write(data)
}
