package internal

import "evgate/models"

type Database interface {
	Write(table string, data Data) error
	WriteLogMessage(data Data) error
	GetStations() ([]models.Station, error)
	GetStation(stationId string) (*models.Station, error)
	UpdateStation(station *models.Station) error
	GetConnectors() ([]*models.Connector, error)
	AddConnector(connector *models.Connector) error
	UpdateConnector(connector *models.Connector) error
	GetUserTag(idTag string) (*models.UserTag, error)
	AddUserTag(userTag *models.UserTag) error
	GetTariff(stationId string) (*models.Tariff, error)
	AddTransaction(transaction *models.Transaction) error
	UpdateTransaction(transaction *models.Transaction) error
	GetTransaction(id string) (*models.Transaction, error)
	AddMeterSample(sample *models.MeterSample) error
	GetSubscriptions() ([]models.UserSubscription, error)
	AddSubscription(subscription *models.UserSubscription) error
	DeleteSubscription(subscription *models.UserSubscription) error
}

type Data interface {
	DataType() string
}
