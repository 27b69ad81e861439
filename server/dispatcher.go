package server

import (
	"fmt"
	"time"

	"evgate/internal"
	"evgate/ocpp"
	"evgate/utility"
)

var (
	ErrCommandRejected    = utility.Err("command rejected by station")
	ErrUnknownTransaction = utility.Err("unknown transaction")
)

// Dispatcher sends operator commands to stations and waits for the
// confirmation through the correlation table. Each failure mode is a
// distinct error: ErrStationOffline, ErrCommandTimeout, ErrCommandRejected.
type Dispatcher struct {
	server       *Server
	correlations *Correlations
	handler      *SystemHandler
	logger       internal.LogHandler
	timeout      time.Duration
}

func NewDispatcher(server *Server, correlations *Correlations, handler *SystemHandler, logger internal.LogHandler) *Dispatcher {
	return &Dispatcher{
		server:       server,
		correlations: correlations,
		handler:      handler,
		logger:       logger,
		timeout:      correlations.ttl,
	}
}

// Dispatch encodes the command in the station's dialect, issues a call and
// blocks until the confirmation, a rejection, a timeout or a disconnect.
func (d *Dispatcher) Dispatch(stationId string, command ocpp.Command) (interface{}, error) {
	ws, ok := d.server.Registry().Get(stationId)
	if !ok {
		observeCommand(command.CommandType(), "offline")
		return nil, ErrStationOffline
	}
	action, payload, err := ws.Dialect().EncodeCommand(command)
	if err != nil {
		return nil, err
	}
	id, outcome := d.correlations.Issue(stationId)
	data, err := ocpp.CreateCall(id, action, payload)
	if err != nil {
		d.correlations.Resolve(id, CallOutcome{Err: err})
		<-outcome
		return nil, err
	}
	if err = d.server.SendTo(ws, data); err != nil {
		d.correlations.Resolve(id, CallOutcome{Err: err})
		<-outcome
		observeCommand(command.CommandType(), "send_failed")
		return nil, err
	}
	d.logger.FeatureEvent(action, stationId, fmt.Sprintf("command sent, message id %s", id))

	result := <-outcome
	if result.Err != nil {
		observeCommand(command.CommandType(), outcomeLabel(result.Err))
		return nil, result.Err
	}
	if !ocpp.ResultAccepted(result.Payload) {
		observeCommand(command.CommandType(), "rejected")
		return result.Payload, ErrCommandRejected
	}
	observeCommand(command.CommandType(), "accepted")
	return result.Payload, nil
}

func outcomeLabel(err error) string {
	switch err {
	case ErrCommandTimeout:
		return "timeout"
	case ErrStationOffline:
		return "offline"
	}
	return "error"
}

func (d *Dispatcher) RemoteStart(stationId string, connectorId int, idTag string) error {
	_, err := d.Dispatch(stationId, &ocpp.RemoteStartCommand{
		ConnectorId: connectorId,
		IdTag:       idTag,
	})
	return err
}

// RemoteStop addresses the transaction by its gateway id; the dialect picks
// whichever identifier it needs. An id that resolves to no known
// transaction fails before anything goes on the wire.
func (d *Dispatcher) RemoteStop(stationId string, transactionId string) error {
	ocppId, ok := d.handler.FindOcppId(transactionId)
	if !ok {
		return ErrUnknownTransaction
	}
	_, err := d.Dispatch(stationId, &ocpp.RemoteStopCommand{
		OcppId:        ocppId,
		TransactionId: transactionId,
	})
	return err
}

func (d *Dispatcher) ReserveNow(stationId string, connectorId, reservationId int, expiry time.Time, idTag string) error {
	_, err := d.Dispatch(stationId, &ocpp.ReserveNowCommand{
		ConnectorId:   connectorId,
		ReservationId: reservationId,
		Expiry:        expiry,
		IdTag:         idTag,
	})
	return err
}

func (d *Dispatcher) CancelReservation(stationId string, reservationId int) error {
	_, err := d.Dispatch(stationId, &ocpp.CancelReservationCommand{ReservationId: reservationId})
	return err
}

func (d *Dispatcher) Reset(stationId string, resetType string) error {
	_, err := d.Dispatch(stationId, &ocpp.ResetCommand{Type: resetType})
	return err
}

func (d *Dispatcher) UnlockConnector(stationId string, connectorId int) error {
	_, err := d.Dispatch(stationId, &ocpp.UnlockConnectorCommand{ConnectorId: connectorId})
	return err
}
