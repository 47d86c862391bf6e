package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	metering "rentdesk/internal/metering/domain"
)

// ReadingRepository persists meter readings.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// ListInPeriod returns readings for a meter with date in [start, end], ascending by date.
func (r *ReadingRepository) ListInPeriod(ctx context.Context, meterID string, start, end time.Time) ([]metering.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, meter_id, value, date, created_at
FROM meter_readings
WHERE meter_id = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC, id ASC`, meterID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

// ListLatest returns the most recent limit readings for a meter, descending by date.
func (r *ReadingRepository) ListLatest(ctx context.Context, meterID string, limit int) ([]metering.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, meter_id, value, date, created_at
FROM meter_readings
WHERE meter_id = $1
ORDER BY date DESC, id DESC
LIMIT $2`, meterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

// Append inserts a reading after validation.
func (r *ReadingRepository) Append(ctx context.Context, reading *metering.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil {
		return errors.New("reading repo: nil reading")
	}
	if err := reading.Validate(); err != nil {
		return err
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO meter_readings (id, meter_id, value, date, created_at)
VALUES ($1,$2,$3,$4,$5)`,
		reading.ID, reading.MeterID, reading.Value, reading.Date, reading.CreatedAt)
	return err
}

func collectReadings(rows *sql.Rows) ([]metering.Reading, error) {
	var result []metering.Reading
	for rows.Next() {
		var reading metering.Reading
		if err := rows.Scan(&reading.ID, &reading.MeterID, &reading.Value, &reading.Date, &reading.CreatedAt); err != nil {
			return nil, err
		}
		reading.Date = reading.Date.UTC()
		reading.CreatedAt = reading.CreatedAt.UTC()
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
