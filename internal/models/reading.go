package models

import "time"

type Reading struct {
	ID           string    `json:"_id,omitempty"`
	Date         time.Time `json:"date"`
	KmReadings   int       `json:"km_readings"`
	FuelAdded    float64   `json:"fuel_added"`
	FuelReadings float64   `json:"fuel_readings"`
	Destination  string    `json:"destination"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
