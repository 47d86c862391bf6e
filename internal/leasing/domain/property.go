package leasing

import "time"

// Property is a building holding rentable units.
// A light/water rate of zero means no override; billing falls back to configured rates.
type Property struct {
	ID               string
	Name             string
	Address          string
	LightRatePerUnit float64
	WaterRatePerUnit float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
