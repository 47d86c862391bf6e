package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	billing "rentdesk/internal/billing/domain"
)

const uniqueViolationCode = "23505"

// ReceiptRepository persists receipts, one row per (contract, month, year).
// Items are stored as an explicit JSON-encoded ordered list.
type ReceiptRepository struct {
	db *sql.DB
}

// NewReceiptRepository constructs a repository.
func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// FindByKey fetches the receipt for a contract month, or nil.
func (r *ReceiptRepository) FindByKey(ctx context.Context, contractID string, month, year int) (*billing.Receipt, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("receipt repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, contract_id, month, year, tenant_name, unit_name, property_address,
	period, items, total_due, total_payments, balance, status, created_at, updated_at
FROM receipts
WHERE contract_id = $1 AND month = $2 AND year = $3
LIMIT 1`, contractID, month, year)
	return scanReceipt(row)
}

// Insert creates a receipt. A concurrent insert of the same key surfaces as
// ErrDuplicateReceipt; the unique index is the correctness backstop and the
// caller decides whether to retry.
func (r *ReceiptRepository) Insert(ctx context.Context, receipt *billing.Receipt) error {
	if r == nil || r.db == nil {
		return errors.New("receipt repo: nil db")
	}
	if receipt == nil {
		return billing.ErrNilReceipt
	}
	items, err := billing.EncodeItems(receipt.Items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO receipts (
	id, contract_id, month, year, tenant_name, unit_name, property_address,
	period, items, total_due, total_payments, balance, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		receipt.ID, receipt.ContractID, receipt.Month, receipt.Year,
		receipt.TenantName, receipt.UnitName, receipt.PropertyAddress,
		receipt.Period, items, receipt.TotalDue, receipt.TotalPayments,
		receipt.Balance, receipt.Status, receipt.CreatedAt, receipt.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return billing.ErrDuplicateReceipt
		}
		return err
	}
	return nil
}

// UpdateDerived overwrites the computed fields in place, leaving status alone.
func (r *ReceiptRepository) UpdateDerived(ctx context.Context, receipt *billing.Receipt) error {
	if r == nil || r.db == nil {
		return errors.New("receipt repo: nil db")
	}
	if receipt == nil {
		return billing.ErrNilReceipt
	}
	items, err := billing.EncodeItems(receipt.Items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE receipts
SET tenant_name = $1, unit_name = $2, property_address = $3, period = $4,
	items = $5, total_due = $6, total_payments = $7, balance = $8, updated_at = $9
WHERE contract_id = $10 AND month = $11 AND year = $12`,
		receipt.TenantName, receipt.UnitName, receipt.PropertyAddress, receipt.Period,
		items, receipt.TotalDue, receipt.TotalPayments, receipt.Balance, receipt.UpdatedAt,
		receipt.ContractID, receipt.Month, receipt.Year)
	return err
}

// UpdateStatus sets the workflow status of an issued receipt.
func (r *ReceiptRepository) UpdateStatus(ctx context.Context, contractID string, month, year int, status string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("receipt repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE receipts
SET status = $1, updated_at = $2
WHERE contract_id = $3 AND month = $4 AND year = $5`,
		status, at, contractID, month, year)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return billing.ErrReceiptNotFound
	}
	return nil
}

// ListApprovedOwing returns approved receipts with balance < 0, newest period first.
func (r *ReceiptRepository) ListApprovedOwing(ctx context.Context) ([]billing.Receipt, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("receipt repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, contract_id, month, year, tenant_name, unit_name, property_address,
	period, items, total_due, total_payments, balance, status, created_at, updated_at
FROM receipts
WHERE status = $1 AND balance < 0
ORDER BY year DESC, month DESC`, billing.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			result = append(result, *receipt)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*billing.Receipt, error) {
	var receipt billing.Receipt
	var items []byte
	err := row.Scan(
		&receipt.ID, &receipt.ContractID, &receipt.Month, &receipt.Year,
		&receipt.TenantName, &receipt.UnitName, &receipt.PropertyAddress,
		&receipt.Period, &items, &receipt.TotalDue, &receipt.TotalPayments,
		&receipt.Balance, &receipt.Status, &receipt.CreatedAt, &receipt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	decoded, err := billing.DecodeItems(items)
	if err != nil {
		return nil, err
	}
	receipt.Items = decoded
	receipt.CreatedAt = receipt.CreatedAt.UTC()
	receipt.UpdatedAt = receipt.UpdatedAt.UTC()
	return &receipt, nil
}
