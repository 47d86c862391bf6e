package application

import (
	"context"
	"errors"
	"testing"
	"time"

	metering "rentdesk/internal/metering/domain"
	"rentdesk/internal/metering/infrastructure/memory"
)

type stubRates struct {
	light float64
	water float64
	err   error
}

func (s stubRates) RatesForUnit(ctx context.Context, unitID string) (float64, float64, error) {
	_ = ctx
	_ = unitID
	return s.light, s.water, s.err
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func newCalculator(t *testing.T, meters *memory.MeterStore, readings *memory.ReadingStore, rates stubRates) *ConsumptionCalculator {
	t.Helper()
	calc, err := NewConsumptionCalculator(meters, readings, rates, FallbackRates{LightPerUnit: 0.25, WaterPerUnit: 0.15})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func TestPeriodConsumptionDiffsFirstAndLast(t *testing.T) {
	meters := memory.NewMeterStore()
	readings := memory.NewReadingStore()
	meters.Put(metering.Meter{ID: "m-1", UnitID: "u-1", Type: metering.MeterTypeLight})
	readings.Append(metering.Reading{ID: "r1", MeterID: "m-1", Value: 100, Date: day(1)})
	readings.Append(metering.Reading{ID: "r2", MeterID: "m-1", Value: 120, Date: day(10)})
	readings.Append(metering.Reading{ID: "r3", MeterID: "m-1", Value: 140, Date: day(20)})

	calc := newCalculator(t, meters, readings, stubRates{})
	result, err := calc.PeriodConsumption(context.Background(), "u-1", metering.MeterTypeLight, day(1), day(31))
	if err != nil {
		t.Fatalf("period consumption: %v", err)
	}
	if result.Consumption != 40 {
		t.Fatalf("consumption = %v, want 40", result.Consumption)
	}
	// No property override, so the fallback light rate applies.
	if result.Cost != 10 {
		t.Fatalf("cost = %v, want 10", result.Cost)
	}
}

func TestPeriodConsumptionPropertyOverrideWins(t *testing.T) {
	meters := memory.NewMeterStore()
	readings := memory.NewReadingStore()
	meters.Put(metering.Meter{ID: "m-1", UnitID: "u-1", Type: metering.MeterTypeLight})
	readings.Append(metering.Reading{ID: "r1", MeterID: "m-1", Value: 100, Date: day(1)})
	readings.Append(metering.Reading{ID: "r2", MeterID: "m-1", Value: 140, Date: day(20)})

	calc := newCalculator(t, meters, readings, stubRates{light: 0.5})
	result, err := calc.PeriodConsumption(context.Background(), "u-1", metering.MeterTypeLight, day(1), day(31))
	if err != nil {
		t.Fatalf("period consumption: %v", err)
	}
	if result.Cost != 20 {
		t.Fatalf("cost = %v, want 20 at override rate", result.Cost)
	}
}

func TestPeriodConsumptionDegradesToZero(t *testing.T) {
	meters := memory.NewMeterStore()
	readings := memory.NewReadingStore()
	calc := newCalculator(t, meters, readings, stubRates{})

	// No meter on the unit.
	result, err := calc.PeriodConsumption(context.Background(), "u-1", metering.MeterTypeWater, day(1), day(31))
	if err != nil {
		t.Fatalf("no meter: %v", err)
	}
	if result.Consumption != 0 || result.Cost != 0 {
		t.Fatalf("no meter: got %+v, want zeros", result)
	}

	// A single reading cannot be diffed.
	meters.Put(metering.Meter{ID: "m-1", UnitID: "u-1", Type: metering.MeterTypeWater})
	readings.Append(metering.Reading{ID: "r1", MeterID: "m-1", Value: 50, Date: day(5)})
	result, err = calc.PeriodConsumption(context.Background(), "u-1", metering.MeterTypeWater, day(1), day(31))
	if err != nil {
		t.Fatalf("single reading: %v", err)
	}
	if result.Consumption != 0 || result.Cost != 0 {
		t.Fatalf("single reading: got %+v, want zeros", result)
	}
}

func TestPeriodConsumptionSurfacesNegative(t *testing.T) {
	meters := memory.NewMeterStore()
	readings := memory.NewReadingStore()
	meters.Put(metering.Meter{ID: "m-1", UnitID: "u-1", Type: metering.MeterTypeLight})
	// Meter swap: counter restarted below the first reading.
	readings.Append(metering.Reading{ID: "r1", MeterID: "m-1", Value: 900, Date: day(1)})
	readings.Append(metering.Reading{ID: "r2", MeterID: "m-1", Value: 40, Date: day(25)})

	calc := newCalculator(t, meters, readings, stubRates{})
	result, err := calc.PeriodConsumption(context.Background(), "u-1", metering.MeterTypeLight, day(1), day(31))
	if err != nil {
		t.Fatalf("period consumption: %v", err)
	}
	if result.Consumption != -860 {
		t.Fatalf("consumption = %v, want -860 surfaced unclamped", result.Consumption)
	}
}

func TestPeriodConsumptionInvalidType(t *testing.T) {
	calc := newCalculator(t, memory.NewMeterStore(), memory.NewReadingStore(), stubRates{})
	if _, err := calc.PeriodConsumption(context.Background(), "u-1", "gas", day(1), day(31)); !errors.Is(err, metering.ErrInvalidMeterType) {
		t.Fatalf("err = %v, want ErrInvalidMeterType", err)
	}
}

func TestCurrentUsesLatestPair(t *testing.T) {
	meters := memory.NewMeterStore()
	readings := memory.NewReadingStore()
	meters.Put(metering.Meter{ID: "m-l", UnitID: "u-1", Type: metering.MeterTypeLight})
	meters.Put(metering.Meter{ID: "m-w", UnitID: "u-1", Type: metering.MeterTypeWater})
	readings.Append(metering.Reading{ID: "r1", MeterID: "m-l", Value: 100, Date: day(1)})
	readings.Append(metering.Reading{ID: "r2", MeterID: "m-l", Value: 130, Date: day(15)})
	readings.Append(metering.Reading{ID: "r3", MeterID: "m-l", Value: 150, Date: day(28)})
	readings.Append(metering.Reading{ID: "r4", MeterID: "m-w", Value: 10, Date: day(12)})

	calc := newCalculator(t, meters, readings, stubRates{})
	result, err := calc.Current(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	// Light diffs the newest two readings only.
	if result.Light.Consumption != 20 {
		t.Fatalf("light consumption = %v, want 20", result.Light.Consumption)
	}
	if result.Light.Cost != 5 {
		t.Fatalf("light cost = %v, want 5", result.Light.Cost)
	}
	if result.Light.LastReading == nil || result.Light.LastReading.ID != "r3" {
		t.Fatalf("light last reading = %+v, want r3", result.Light.LastReading)
	}
	if result.Light.PrevReading == nil || result.Light.PrevReading.ID != "r2" {
		t.Fatalf("light prev reading = %+v, want r2", result.Light.PrevReading)
	}
	// Water has a single reading: snapshot carries it, consumption stays zero.
	if result.Water.LastReading == nil || result.Water.LastReading.ID != "r4" {
		t.Fatalf("water last reading = %+v, want r4", result.Water.LastReading)
	}
	if result.Water.PrevReading != nil || result.Water.Consumption != 0 {
		t.Fatalf("water snapshot = %+v, want single-reading zeros", result.Water)
	}
}

func TestLowestMeterIDWinsOnDuplicates(t *testing.T) {
	meters := memory.NewMeterStore()
	readings := memory.NewReadingStore()
	meters.Put(metering.Meter{ID: "m-9", UnitID: "u-1", Type: metering.MeterTypeLight})
	meters.Put(metering.Meter{ID: "m-2", UnitID: "u-1", Type: metering.MeterTypeLight})
	readings.Append(metering.Reading{ID: "r1", MeterID: "m-2", Value: 10, Date: day(1)})
	readings.Append(metering.Reading{ID: "r2", MeterID: "m-2", Value: 30, Date: day(20)})
	readings.Append(metering.Reading{ID: "r3", MeterID: "m-9", Value: 500, Date: day(1)})
	readings.Append(metering.Reading{ID: "r4", MeterID: "m-9", Value: 900, Date: day(20)})

	calc := newCalculator(t, meters, readings, stubRates{})
	result, err := calc.PeriodConsumption(context.Background(), "u-1", metering.MeterTypeLight, day(1), day(31))
	if err != nil {
		t.Fatalf("period consumption: %v", err)
	}
	if result.Consumption != 20 {
		t.Fatalf("consumption = %v, want 20 from the lowest meter id", result.Consumption)
	}
}
