package metering

import (
	"errors"
	"time"
)

var (
	// ErrNegativeReading is returned for readings below zero.
	ErrNegativeReading = errors.New("metering: negative reading value")
	// ErrInvalidReadingDate is returned when a reading carries no date.
	ErrInvalidReadingDate = errors.New("metering: invalid reading date")
	// ErrMeterNotFound is returned when appending to an unknown meter.
	ErrMeterNotFound = errors.New("metering: meter not found")
)

// Reading is an immutable meter reading. Consumption is always derived from
// reading pairs, never stored.
type Reading struct {
	ID        string    `json:"id"`
	MeterID   string    `json:"meter_id"`
	Value     float64   `json:"value"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks reading invariants before persistence.
func (r Reading) Validate() error {
	if r.Value < 0 {
		return ErrNegativeReading
	}
	if r.Date.IsZero() {
		return ErrInvalidReadingDate
	}
	return nil
}
