package models

import (
	"sync"
	"time"
)

type TransactionState string

const (
	TransactionAuthorizing TransactionState = "Authorizing"
	TransactionActive      TransactionState = "Active"
	TransactionFinishing   TransactionState = "Finishing"
	TransactionSettled     TransactionState = "Settled"
	TransactionRejected    TransactionState = "Rejected"
)

type Transaction struct {
	Id             string           `json:"transaction_id" bson:"transaction_id"`
	OcppId         int              `json:"ocpp_id" bson:"ocpp_id"`
	StationId      string           `json:"station_id" bson:"station_id"`
	ConnectorId    int              `json:"connector_id" bson:"connector_id"`
	IdTag          string           `json:"id_tag" bson:"id_tag"`
	UserId         string           `json:"user_id" bson:"user_id"`
	State          TransactionState `json:"state" bson:"state"`
	ConnectionLost bool             `json:"connection_lost" bson:"connection_lost"`
	MeterStart     int64            `json:"meter_start" bson:"meter_start"`
	MeterStop      int64            `json:"meter_stop" bson:"meter_stop"`
	LastMeter      int64            `json:"last_meter" bson:"last_meter"`
	TimeStart      time.Time        `json:"time_start" bson:"time_start"`
	TimeStop       time.Time        `json:"time_stop" bson:"time_stop"`
	Reason         string           `json:"reason" bson:"reason"`
	PricePerKwh    int64            `json:"price_per_kwh" bson:"price_per_kwh"`
	Demand         string           `json:"demand" bson:"demand"`
	EnergyWh       int64            `json:"energy_wh" bson:"energy_wh"`
	Cost           int64            `json:"cost" bson:"cost"`
	PlatformFee    int64            `json:"platform_fee" bson:"platform_fee"`
	OwnerShare     int64            `json:"owner_share" bson:"owner_share"`
	Anomalous      bool             `json:"anomalous" bson:"anomalous"`
	mutex          *sync.Mutex
}

func (t *Transaction) Init() {
	if t.mutex == nil {
		t.mutex = &sync.Mutex{}
	}
}

func (t *Transaction) Lock() {
	t.mutex.Lock()
}

func (t *Transaction) Unlock() {
	t.mutex.Unlock()
}

func (t *Transaction) IsActive() bool {
	return t.State == TransactionActive
}
