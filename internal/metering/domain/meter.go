package metering

import (
	"errors"
	"time"
)

const (
	MeterTypeLight = "light"
	MeterTypeWater = "water"
)

// ErrInvalidMeterType is returned for types outside {light, water}.
var ErrInvalidMeterType = errors.New("metering: invalid meter type")

// Meter is a utility measuring device attached to a unit.
type Meter struct {
	ID        string
	UnitID    string
	Type      string
	CreatedAt time.Time
}

// ParseMeterType validates a meter type string.
func ParseMeterType(t string) (string, error) {
	switch t {
	case MeterTypeLight, MeterTypeWater:
		return t, nil
	}
	return "", ErrInvalidMeterType
}
