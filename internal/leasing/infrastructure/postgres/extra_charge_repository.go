package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leasing "rentdesk/internal/leasing/domain"
)

// ExtraChargeRepository stores one-off charges scoped to a contract month.
type ExtraChargeRepository struct {
	db *sql.DB
}

// NewExtraChargeRepository constructs a repository.
func NewExtraChargeRepository(db *sql.DB) *ExtraChargeRepository {
	return &ExtraChargeRepository{db: db}
}

// ListForMonth returns charges for a contract and calendar month, insertion-ordered.
func (r *ExtraChargeRepository) ListForMonth(ctx context.Context, contractID string, month, year int) ([]leasing.ExtraCharge, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("extra charge repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, contract_id, description, amount, month, year, created_at
FROM extra_charges
WHERE contract_id = $1 AND month = $2 AND year = $3
ORDER BY created_at ASC, id ASC`, contractID, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leasing.ExtraCharge
	for rows.Next() {
		var c leasing.ExtraCharge
		if err := rows.Scan(&c.ID, &c.ContractID, &c.Description, &c.Amount, &c.Month, &c.Year, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Append inserts a charge.
func (r *ExtraChargeRepository) Append(ctx context.Context, charge *leasing.ExtraCharge) error {
	if r == nil || r.db == nil {
		return errors.New("extra charge repo: nil db")
	}
	if charge == nil {
		return errors.New("extra charge repo: nil charge")
	}
	if charge.CreatedAt.IsZero() {
		charge.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO extra_charges (id, contract_id, description, amount, month, year, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		charge.ID, charge.ContractID, charge.Description, charge.Amount, charge.Month, charge.Year, charge.CreatedAt)
	return err
}
