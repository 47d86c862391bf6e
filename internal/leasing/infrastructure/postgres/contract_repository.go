package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leasing "rentdesk/internal/leasing/domain"
)

// ContractRepository persists contracts and resolves them with related records.
type ContractRepository struct {
	db *sql.DB
}

// NewContractRepository constructs a repository.
func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// GetByID fetches a contract. Returns nil when absent.
func (r *ContractRepository) GetByID(ctx context.Context, id string) (*leasing.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, unit_id, tenant_id, start_date, end_date, rent_amount,
	advance_payment, guarantee_deposit, active, created_at, updated_at
FROM contracts
WHERE id = $1
LIMIT 1`, id)
	return scanContract(row)
}

// GetDetails resolves a contract with its tenant, unit and owning property.
func (r *ContractRepository) GetDetails(ctx context.Context, id string) (*leasing.ContractDetails, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT c.id, c.unit_id, c.tenant_id, c.start_date, c.end_date, c.rent_amount,
	c.advance_payment, c.guarantee_deposit, c.active, c.created_at, c.updated_at,
	t.id, t.full_name, t.email, t.phone,
	u.id, u.property_id, u.name, u.available,
	p.id, p.name, p.address, p.light_rate_per_unit, p.water_rate_per_unit
FROM contracts c
JOIN tenants t ON t.id = c.tenant_id
JOIN units u ON u.id = c.unit_id
JOIN properties p ON p.id = u.property_id
WHERE c.id = $1
LIMIT 1`, id)

	var d leasing.ContractDetails
	var email, phone sql.NullString
	var lightRate, waterRate sql.NullFloat64
	err := row.Scan(
		&d.Contract.ID, &d.Contract.UnitID, &d.Contract.TenantID,
		&d.Contract.StartDate, &d.Contract.EndDate, &d.Contract.RentAmount,
		&d.Contract.AdvancePayment, &d.Contract.GuaranteeDeposit, &d.Contract.Active,
		&d.Contract.CreatedAt, &d.Contract.UpdatedAt,
		&d.Tenant.ID, &d.Tenant.FullName, &email, &phone,
		&d.Unit.ID, &d.Unit.PropertyID, &d.Unit.Name, &d.Unit.Available,
		&d.Property.ID, &d.Property.Name, &d.Property.Address, &lightRate, &waterRate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if email.Valid {
		d.Tenant.Email = email.String
	}
	if phone.Valid {
		d.Tenant.Phone = phone.String
	}
	if lightRate.Valid {
		d.Property.LightRatePerUnit = lightRate.Float64
	}
	if waterRate.Valid {
		d.Property.WaterRatePerUnit = waterRate.Float64
	}
	d.Contract.StartDate = d.Contract.StartDate.UTC()
	d.Contract.EndDate = d.Contract.EndDate.UTC()
	d.Contract.CreatedAt = d.Contract.CreatedAt.UTC()
	d.Contract.UpdatedAt = d.Contract.UpdatedAt.UTC()
	return &d, nil
}

// Open inserts a contract and flips its unit to unavailable in one transaction.
// The unit availability check and flip commit together with the insert or not at all.
func (r *ContractRepository) Open(ctx context.Context, contract *leasing.Contract) error {
	if r == nil || r.db == nil {
		return errors.New("contract repo: nil db")
	}
	if contract == nil {
		return errors.New("contract repo: nil contract")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var available bool
	err = tx.QueryRowContext(ctx, `
SELECT available FROM units WHERE id = $1 FOR UPDATE`, contract.UnitID).Scan(&available)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return leasing.ErrUnitNotFound
		}
		return err
	}
	if !available {
		_ = tx.Rollback()
		return leasing.ErrUnitUnavailable
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
INSERT INTO contracts (
	id, unit_id, tenant_id, start_date, end_date, rent_amount,
	advance_payment, guarantee_deposit, active, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,TRUE,$9,$9)`,
		contract.ID, contract.UnitID, contract.TenantID,
		contract.StartDate, contract.EndDate, contract.RentAmount,
		contract.AdvancePayment, contract.GuaranteeDeposit, now)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	_, err = tx.ExecContext(ctx, `
UPDATE units SET available = FALSE, updated_at = $1 WHERE id = $2`, now, contract.UnitID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close deactivates a contract and flips its unit back to available in one transaction.
func (r *ContractRepository) Close(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("contract repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var unitID string
	err = tx.QueryRowContext(ctx, `
SELECT unit_id FROM contracts WHERE id = $1 AND active FOR UPDATE`, id).Scan(&unitID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return leasing.ErrContractNotFound
		}
		return err
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
UPDATE contracts SET active = FALSE, updated_at = $1 WHERE id = $2`, now, id)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	_, err = tx.ExecContext(ctx, `
UPDATE units SET available = TRUE, updated_at = $1 WHERE id = $2`, now, unitID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*leasing.Contract, error) {
	var c leasing.Contract
	err := row.Scan(
		&c.ID, &c.UnitID, &c.TenantID, &c.StartDate, &c.EndDate,
		&c.RentAmount, &c.AdvancePayment, &c.GuaranteeDeposit, &c.Active,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
