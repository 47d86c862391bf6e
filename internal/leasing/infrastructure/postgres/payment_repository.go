package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leasing "rentdesk/internal/leasing/domain"
)

// PaymentRepository reads and appends the payment ledger.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository constructs a repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListInPeriod returns payments for a contract with date in [start, end], ordered by date.
func (r *PaymentRepository) ListInPeriod(ctx context.Context, contractID string, start, end time.Time) ([]leasing.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, contract_id, amount, date, type, created_at
FROM payments
WHERE contract_id = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC, id ASC`, contractID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListAll returns every payment ever made on a contract, ordered by date.
func (r *PaymentRepository) ListAll(ctx context.Context, contractID string) ([]leasing.Payment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("payment repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, contract_id, amount, date, type, created_at
FROM payments
WHERE contract_id = $1
ORDER BY date ASC, id ASC`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// Append inserts a payment. The ledger is append-only.
func (r *PaymentRepository) Append(ctx context.Context, payment *leasing.Payment) error {
	if r == nil || r.db == nil {
		return errors.New("payment repo: nil db")
	}
	if payment == nil {
		return errors.New("payment repo: nil payment")
	}
	if !leasing.ValidPaymentType(payment.Type) {
		return leasing.ErrInvalidPaymentType
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO payments (id, contract_id, amount, date, type, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		payment.ID, payment.ContractID, payment.Amount, payment.Date, payment.Type, payment.CreatedAt)
	return err
}

func collectPayments(rows *sql.Rows) ([]leasing.Payment, error) {
	var result []leasing.Payment
	for rows.Next() {
		var p leasing.Payment
		if err := rows.Scan(&p.ID, &p.ContractID, &p.Amount, &p.Date, &p.Type, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Date = p.Date.UTC()
		p.CreatedAt = p.CreatedAt.UTC()
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
