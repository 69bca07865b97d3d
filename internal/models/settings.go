package models

import "time"

const (
	UnitKm   = "km"
	UnitMile = "mile"
)

// Settings is a singleton record: at most one document ever exists.
type Settings struct {
	ID              string    `json:"_id,omitempty"`
	KmMile          string    `json:"km_mile"`
	MaxFuelCapacity int       `json:"max_fuel_capacity"`
	UpdatedAt       time.Time `json:"updated_at"`
}
