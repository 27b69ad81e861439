package models

import "time"

type Station struct {
	Id              string    `json:"station_id" bson:"station_id"`
	IsEnabled       bool      `json:"is_enabled" bson:"is_enabled"`
	Title           string    `json:"title" bson:"title"`
	Description     string    `json:"description" bson:"description"`
	Model           string    `json:"model" bson:"model"`
	SerialNumber    string    `json:"serial_number" bson:"serial_number"`
	Vendor          string    `json:"vendor" bson:"vendor"`
	FirmwareVersion string    `json:"firmware_version" bson:"firmware_version"`
	IsOnline        bool      `json:"is_online" bson:"is_online"`
	LastBoot        time.Time `json:"last_boot" bson:"last_boot"`
	OwnerId         string    `json:"owner_id" bson:"owner_id"`
}
