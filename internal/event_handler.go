package internal

import "time"

const (
	EventAuthorize        = "Authorize"
	EventStatus           = "Status"
	EventTransactionStart = "TransactionStart"
	EventTransactionStop  = "TransactionStop"
	EventStationOffline   = "StationOffline"
	EventStationOnline    = "StationOnline"
)

type EventHandler interface {
	OnStatusNotification(event *EventMessage)
	OnTransactionStart(event *EventMessage)
	OnTransactionStop(event *EventMessage)
	OnAuthorize(event *EventMessage)
	OnStationOffline(event *EventMessage)
	OnStationOnline(event *EventMessage)
}

type EventMessage struct {
	Type          string      `json:"type" bson:"type"`
	StationId     string      `json:"station_id" bson:"station_id"`
	ConnectorId   int         `json:"connector_id" bson:"connector_id"`
	Time          time.Time   `json:"time" bson:"time"`
	Username      string      `json:"username" bson:"username"`
	IdTag         string      `json:"id_tag" bson:"id_tag"`
	TransactionId string      `json:"transaction_id" bson:"transaction_id"`
	Status        string      `json:"status" bson:"status"`
	Info          string      `json:"info" bson:"info"`
	Payload       interface{} `json:"payload" bson:"payload"`
}
