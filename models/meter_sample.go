package models

import "time"

// MeterSample is a cumulative energy register reading reported during an
// active transaction. Values are watt-hours and never decrease within one
// transaction.
type MeterSample struct {
	TransactionId string    `json:"transaction_id" bson:"transaction_id"`
	StationId     string    `json:"station_id" bson:"station_id"`
	ConnectorId   int       `json:"connector_id" bson:"connector_id"`
	Time          time.Time `json:"time" bson:"time"`
	ValueWh       int64     `json:"value_wh" bson:"value_wh"`
	Measurand     string    `json:"measurand" bson:"measurand"`
	Context       string    `json:"context" bson:"context"`
}
