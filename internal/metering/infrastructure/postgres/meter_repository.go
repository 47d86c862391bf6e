package postgres

import (
	"context"
	"database/sql"
	"errors"

	metering "rentdesk/internal/metering/domain"
)

// MeterRepository reads meters.
type MeterRepository struct {
	db *sql.DB
}

// NewMeterRepository constructs a repository.
func NewMeterRepository(db *sql.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

// FindByUnitAndType returns the unit's meter of the given type, or nil.
// When a unit carries several meters of one type the lowest id wins, so the
// choice is deterministic across calls.
func (r *MeterRepository) FindByUnitAndType(ctx context.Context, unitID, meterType string) (*metering.Meter, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("meter repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, unit_id, type, created_at
FROM meters
WHERE unit_id = $1 AND type = $2
ORDER BY id ASC
LIMIT 1`, unitID, meterType)

	var m metering.Meter
	err := row.Scan(&m.ID, &m.UnitID, &m.Type, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

// Get fetches a meter by id, or nil.
func (r *MeterRepository) Get(ctx context.Context, id string) (*metering.Meter, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("meter repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, unit_id, type, created_at
FROM meters
WHERE id = $1
LIMIT 1`, id)

	var m metering.Meter
	err := row.Scan(&m.ID, &m.UnitID, &m.Type, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}
