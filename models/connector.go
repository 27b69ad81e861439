package models

import "sync"

type ConnectorStatus string

const (
	ConnectorStatusAvailable   ConnectorStatus = "Available"
	ConnectorStatusPreparing   ConnectorStatus = "Preparing"
	ConnectorStatusCharging    ConnectorStatus = "Charging"
	ConnectorStatusReserved    ConnectorStatus = "Reserved"
	ConnectorStatusUnavailable ConnectorStatus = "Unavailable"
	ConnectorStatusFaulted     ConnectorStatus = "Faulted"
)

type Connector struct {
	Id                   int    `json:"connector_id" bson:"connector_id"`
	StationId            string `json:"station_id" bson:"station_id"`
	IsEnabled            bool   `json:"is_enabled" bson:"is_enabled"`
	Status               string `json:"status" bson:"status"`
	Info                 string `json:"info" bson:"info"`
	ErrorCode            string `json:"error_code" bson:"error_code"`
	CurrentTransactionId string `json:"current_transaction_id" bson:"current_transaction_id"`
	mutex                *sync.Mutex
}

func NewConnector(id int, stationId string) *Connector {
	connector := &Connector{
		Id:                   id,
		StationId:            stationId,
		IsEnabled:            true,
		Status:               string(ConnectorStatusAvailable),
		CurrentTransactionId: "",
	}
	connector.Init()
	return connector
}

func (c *Connector) Init() {
	if c.mutex == nil {
		c.mutex = &sync.Mutex{}
	}
}

func (c *Connector) Lock() {
	c.mutex.Lock()
}

func (c *Connector) Unlock() {
	c.mutex.Unlock()
}

// Busy reports whether a transaction currently owns this connector.
func (c *Connector) Busy() bool {
	return c.CurrentTransactionId != ""
}
