package server

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"evgate/internal"
	"evgate/internal/config"
)

// ApiCommand is an operator request against a connected station.
type ApiCommand struct {
	StationId     string `json:"station_id"`
	ConnectorId   int    `json:"connector_id"`
	FeatureName   string `json:"feature_name"`
	IdTag         string `json:"id_tag,omitempty"`
	TransactionId string `json:"transaction_id,omitempty"`
	ReservationId int    `json:"reservation_id,omitempty"`
	Expiry        string `json:"expiry,omitempty"`
	Type          string `json:"type,omitempty"`
}

type Api struct {
	conf           *config.Config
	httpServer     *http.Server
	commandHandler func(cmd ApiCommand) (interface{}, error)
	readHandler    func(resource, id string) (interface{}, error)
	logger         internal.LogHandler
}

func NewServerApi(conf *config.Config, logger internal.LogHandler) *Api {
	server := Api{
		conf:   conf,
		logger: logger,
	}
	router := httprouter.New()
	router.POST("/api/command", server.handleCommand)
	router.GET("/api/stations", server.handleRead("stations"))
	router.GET("/api/transactions/:id", server.handleRead("transactions"))
	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", conf.Api.BindIP, conf.Api.Port),
		Handler: router,
	}
	return &server
}

func (s *Api) Start() error {
	if s.conf.Api.TLS {
		cert, err := tls.LoadX509KeyPair(s.conf.Api.CertFile, s.conf.Api.KeyFile)
		if err != nil {
			return fmt.Errorf("api: failed to load certificate: %v", err)
		}
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Api) SetCommandHandler(handler func(cmd ApiCommand) (interface{}, error)) {
	s.commandHandler = handler
}

func (s *Api) SetReadHandler(handler func(resource, id string) (interface{}, error)) {
	s.readHandler = handler
}

func (s *Api) handleCommand(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var cmd ApiCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		s.logger.Warn(fmt.Sprintf("api: error parsing command from %s: %s", r.RemoteAddr, err))
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if cmd.FeatureName == "" || cmd.StationId == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("station_id and feature_name are required"))
		return
	}
	result, err := s.commandHandler(cmd)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("api: command %s to %s failed: %s", cmd.FeatureName, cmd.StationId, err))
		status := http.StatusInternalServerError
		switch err {
		case ErrStationOffline:
			status = http.StatusServiceUnavailable
		case ErrCommandTimeout:
			status = http.StatusGatewayTimeout
		case ErrCommandRejected:
			status = http.StatusConflict
		case ErrUnknownTransaction:
			status = http.StatusNotFound
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJson(w, result)
}

func (s *Api) handleRead(resource string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		if s.readHandler == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		result, err := s.readHandler(resource, params.ByName("id"))
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		if result == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.writeJson(w, result)
	}
}

func (s *Api) writeJson(w http.ResponseWriter, result interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("api: encoding response", err)
	}
}

func (s *Api) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
