package application

import (
	"context"
	"errors"
	"time"

	metering "rentdesk/internal/metering/domain"
	"rentdesk/internal/observability/metrics"
)

// MeterSource resolves a unit's meter of a given type. Absent meters yield nil, not errors.
type MeterSource interface {
	FindByUnitAndType(ctx context.Context, unitID, meterType string) (*metering.Meter, error)
}

// ReadingSource reads the ordered reading history of a meter.
type ReadingSource interface {
	ListInPeriod(ctx context.Context, meterID string, start, end time.Time) ([]metering.Reading, error)
	ListLatest(ctx context.Context, meterID string, limit int) ([]metering.Reading, error)
}

// RateSource resolves the property-level rate override for a unit.
// Zero values mean no override is configured.
type RateSource interface {
	RatesForUnit(ctx context.Context, unitID string) (light, water float64, err error)
}

// FallbackRates are used when a unit's property carries no rate override.
type FallbackRates struct {
	LightPerUnit float64
	WaterPerUnit float64
}

// PeriodResult is the billed consumption of a unit's meter over a period.
type PeriodResult struct {
	Consumption float64 `json:"consumption"`
	Cost        float64 `json:"cost"`
}

// MeterSnapshot is the live consumption view for one meter type.
type MeterSnapshot struct {
	Consumption float64           `json:"consumption"`
	Cost        float64           `json:"cost"`
	LastReading *metering.Reading `json:"last_reading"`
	PrevReading *metering.Reading `json:"prev_reading"`
}

// CurrentResult is the live consumption view for a unit.
type CurrentResult struct {
	Light MeterSnapshot `json:"light"`
	Water MeterSnapshot `json:"water"`
}

// ConsumptionCalculator derives consumption and cost from reading pairs.
type ConsumptionCalculator struct {
	meters   MeterSource
	readings ReadingSource
	rates    RateSource
	fallback FallbackRates
}

// NewConsumptionCalculator constructs a calculator. Fallback rates are injected,
// never read from package state.
func NewConsumptionCalculator(meters MeterSource, readings ReadingSource, rates RateSource, fallback FallbackRates) (*ConsumptionCalculator, error) {
	if meters == nil {
		return nil, errors.New("consumption calculator: nil meter source")
	}
	if readings == nil {
		return nil, errors.New("consumption calculator: nil reading source")
	}
	if rates == nil {
		return nil, errors.New("consumption calculator: nil rate source")
	}
	if fallback.LightPerUnit < 0 || fallback.WaterPerUnit < 0 {
		return nil, errors.New("consumption calculator: negative fallback rate")
	}
	return &ConsumptionCalculator{meters: meters, readings: readings, rates: rates, fallback: fallback}, nil
}

// PeriodConsumption diffs the first and last in-period readings of the unit's
// meter of the given type. Missing meters and fewer than two readings yield a
// zero result. A decreasing sequence yields a negative consumption; the value
// is surfaced, not clamped.
func (c *ConsumptionCalculator) PeriodConsumption(ctx context.Context, unitID, meterType string, start, end time.Time) (PeriodResult, error) {
	began := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveConsumptionQuery(result, time.Since(began))
	}()

	parsed, err := metering.ParseMeterType(meterType)
	if err != nil {
		result = metrics.ResultError
		return PeriodResult{}, err
	}
	meter, err := c.meters.FindByUnitAndType(ctx, unitID, parsed)
	if err != nil {
		result = metrics.ResultError
		return PeriodResult{}, err
	}
	if meter == nil {
		return PeriodResult{}, nil
	}
	readings, err := c.readings.ListInPeriod(ctx, meter.ID, start, end)
	if err != nil {
		result = metrics.ResultError
		return PeriodResult{}, err
	}
	if len(readings) < 2 {
		return PeriodResult{}, nil
	}

	consumption := readings[len(readings)-1].Value - readings[0].Value
	rate, err := c.rateFor(ctx, unitID, parsed)
	if err != nil {
		result = metrics.ResultError
		return PeriodResult{}, err
	}
	return PeriodResult{Consumption: consumption, Cost: consumption * rate}, nil
}

// Current returns the live view built from the two most recent readings of each
// meter type, independent of any calendar period.
func (c *ConsumptionCalculator) Current(ctx context.Context, unitID string) (CurrentResult, error) {
	light, err := c.currentForType(ctx, unitID, metering.MeterTypeLight)
	if err != nil {
		return CurrentResult{}, err
	}
	water, err := c.currentForType(ctx, unitID, metering.MeterTypeWater)
	if err != nil {
		return CurrentResult{}, err
	}
	return CurrentResult{Light: light, Water: water}, nil
}

func (c *ConsumptionCalculator) currentForType(ctx context.Context, unitID, meterType string) (MeterSnapshot, error) {
	meter, err := c.meters.FindByUnitAndType(ctx, unitID, meterType)
	if err != nil {
		return MeterSnapshot{}, err
	}
	if meter == nil {
		return MeterSnapshot{}, nil
	}
	latest, err := c.readings.ListLatest(ctx, meter.ID, 2)
	if err != nil {
		return MeterSnapshot{}, err
	}

	var snapshot MeterSnapshot
	if len(latest) >= 1 {
		last := latest[0]
		snapshot.LastReading = &last
	}
	if len(latest) >= 2 {
		prev := latest[1]
		snapshot.PrevReading = &prev
		rate, err := c.rateFor(ctx, unitID, meterType)
		if err != nil {
			return MeterSnapshot{}, err
		}
		snapshot.Consumption = latest[0].Value - latest[1].Value
		snapshot.Cost = snapshot.Consumption * rate
	}
	return snapshot, nil
}

// rateFor resolves the rate for a meter type. The property override wins; the
// injected fallback applies only when the property carries none.
func (c *ConsumptionCalculator) rateFor(ctx context.Context, unitID, meterType string) (float64, error) {
	light, water, err := c.rates.RatesForUnit(ctx, unitID)
	if err != nil {
		return 0, err
	}
	switch meterType {
	case metering.MeterTypeLight:
		if light > 0 {
			return light, nil
		}
		return c.fallback.LightPerUnit, nil
	case metering.MeterTypeWater:
		if water > 0 {
			return water, nil
		}
		return c.fallback.WaterPerUnit, nil
	}
	return 0, metering.ErrInvalidMeterType
}
