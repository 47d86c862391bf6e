package postgres

import (
	"context"
	"database/sql"
	"errors"

	leasing "rentdesk/internal/leasing/domain"
)

// UnitRepository reads units and their property rate overrides.
type UnitRepository struct {
	db *sql.DB
}

// NewUnitRepository constructs a repository.
func NewUnitRepository(db *sql.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// Get fetches a unit. Returns nil when absent.
func (r *UnitRepository) Get(ctx context.Context, id string) (*leasing.Unit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("unit repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, property_id, name, available, created_at, updated_at
FROM units
WHERE id = $1
LIMIT 1`, id)

	var u leasing.Unit
	err := row.Scan(&u.ID, &u.PropertyID, &u.Name, &u.Available, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// RatesForUnit returns the owning property's light/water rates.
// Zero values mean no override is configured; absent units yield zeros, not errors.
func (r *UnitRepository) RatesForUnit(ctx context.Context, unitID string) (light, water float64, err error) {
	if r == nil || r.db == nil {
		return 0, 0, errors.New("unit repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT p.light_rate_per_unit, p.water_rate_per_unit
FROM units u
JOIN properties p ON p.id = u.property_id
WHERE u.id = $1
LIMIT 1`, unitID)

	var lightRate, waterRate sql.NullFloat64
	if err := row.Scan(&lightRate, &waterRate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	return lightRate.Float64, waterRate.Float64, nil
}
