package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	metering "rentdesk/internal/metering/domain"
)

// MeterStore is an in-memory meter source for tests.
type MeterStore struct {
	mu   sync.RWMutex
	data []metering.Meter
}

// NewMeterStore constructs a store.
func NewMeterStore() *MeterStore {
	return &MeterStore{}
}

// Put adds a meter.
func (s *MeterStore) Put(meter metering.Meter) {
	s.mu.Lock()
	s.data = append(s.data, meter)
	s.mu.Unlock()
}

// FindByUnitAndType returns the first matching meter by id order, or nil.
func (s *MeterStore) FindByUnitAndType(ctx context.Context, unitID, meterType string) (*metering.Meter, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *metering.Meter
	for i := range s.data {
		m := s.data[i]
		if m.UnitID != unitID || m.Type != meterType {
			continue
		}
		if found == nil || m.ID < found.ID {
			copy := m
			found = &copy
		}
	}
	return found, nil
}

// ReadingStore is an in-memory reading store for tests.
type ReadingStore struct {
	mu   sync.RWMutex
	data []metering.Reading
}

// NewReadingStore constructs a store.
func NewReadingStore() *ReadingStore {
	return &ReadingStore{}
}

// Append adds a reading.
func (s *ReadingStore) Append(reading metering.Reading) {
	s.mu.Lock()
	s.data = append(s.data, reading)
	s.mu.Unlock()
}

// ListInPeriod returns readings with date in [start, end], ascending by date.
func (s *ReadingStore) ListInPeriod(ctx context.Context, meterID string, start, end time.Time) ([]metering.Reading, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []metering.Reading
	for _, reading := range s.data {
		if reading.MeterID != meterID {
			continue
		}
		if reading.Date.Before(start) || reading.Date.After(end) {
			continue
		}
		result = append(result, reading)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// ListLatest returns the most recent limit readings, descending by date.
func (s *ReadingStore) ListLatest(ctx context.Context, meterID string, limit int) ([]metering.Reading, error) {
	_ = ctx
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []metering.Reading
	for _, reading := range s.data {
		if reading.MeterID == meterID {
			result = append(result, reading)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
