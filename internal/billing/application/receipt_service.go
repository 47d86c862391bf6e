package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	billing "rentdesk/internal/billing/domain"
	leasing "rentdesk/internal/leasing/domain"
	meteringapp "rentdesk/internal/metering/application"
	metering "rentdesk/internal/metering/domain"
	"rentdesk/internal/observability/metrics"
)

// ReceiptStore persists receipts keyed by (contract, month, year).
type ReceiptStore interface {
	FindByKey(ctx context.Context, contractID string, month, year int) (*billing.Receipt, error)
	Insert(ctx context.Context, receipt *billing.Receipt) error
	// UpdateDerived overwrites items, totals and snapshot fields, leaving status untouched.
	UpdateDerived(ctx context.Context, receipt *billing.Receipt) error
	UpdateStatus(ctx context.Context, contractID string, month, year int, status string, at time.Time) error
	// ListApprovedOwing returns approved receipts with balance < 0, year desc then month desc.
	ListApprovedOwing(ctx context.Context) ([]billing.Receipt, error)
}

// ContractSource resolves contracts with their related records.
type ContractSource interface {
	GetDetails(ctx context.Context, id string) (*leasing.ContractDetails, error)
}

// PaymentSource lists payments on a contract within a period.
type PaymentSource interface {
	ListInPeriod(ctx context.Context, contractID string, start, end time.Time) ([]leasing.Payment, error)
}

// ExtraChargeSource lists one-off charges for a contract month.
type ExtraChargeSource interface {
	ListForMonth(ctx context.Context, contractID string, month, year int) ([]leasing.ExtraCharge, error)
}

// ConsumptionSource prices utility consumption over a period.
type ConsumptionSource interface {
	PeriodConsumption(ctx context.Context, unitID, meterType string, start, end time.Time) (meteringapp.PeriodResult, error)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// ReceiptService composes rent, utility consumption, extra charges and payments
// into monthly receipts with an approval workflow.
type ReceiptService struct {
	receipts     ReceiptStore
	contracts    ContractSource
	payments     PaymentSource
	extraCharges ExtraChargeSource
	consumption  ConsumptionSource
	clock        Clock
}

// NewReceiptService constructs a service.
func NewReceiptService(receipts ReceiptStore, contracts ContractSource, payments PaymentSource, extraCharges ExtraChargeSource, consumption ConsumptionSource, clock Clock) (*ReceiptService, error) {
	if receipts == nil {
		return nil, errors.New("receipt service: nil receipt store")
	}
	if contracts == nil {
		return nil, errors.New("receipt service: nil contract source")
	}
	if payments == nil {
		return nil, errors.New("receipt service: nil payment source")
	}
	if extraCharges == nil {
		return nil, errors.New("receipt service: nil extra charge source")
	}
	if consumption == nil {
		return nil, errors.New("receipt service: nil consumption source")
	}
	if clock == nil {
		return nil, errors.New("receipt service: nil clock")
	}
	return &ReceiptService{
		receipts:     receipts,
		contracts:    contracts,
		payments:     payments,
		extraCharges: extraCharges,
		consumption:  consumption,
		clock:        clock,
	}, nil
}

// Preview returns the persisted receipt verbatim when one exists, so a
// reviewed receipt never silently drifts. Otherwise it computes a fresh
// pending receipt without persisting anything.
func (s *ReceiptService) Preview(ctx context.Context, contractID string, month, year int) (*billing.Receipt, error) {
	began := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReceiptPreview(result, time.Since(began))
	}()

	if err := validateMonth(month, year); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	existing, err := s.receipts.FindByKey(ctx, contractID, month, year)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	receipt, err := s.calculate(ctx, contractID, month, year)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return receipt, nil
}

// Issue recomputes the receipt from current data and persists it. An existing
// row keeps its identity and status: re-issuing an approved receipt refreshes
// the numbers without losing the approval. A new row starts pending review.
func (s *ReceiptService) Issue(ctx context.Context, contractID string, month, year int) (*billing.Receipt, error) {
	began := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReceiptIssue(result, time.Since(began))
	}()

	if err := validateMonth(month, year); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	receipt, err := s.calculate(ctx, contractID, month, year)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	existing, err := s.receipts.FindByKey(ctx, contractID, month, year)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := s.clock.Now().UTC()
	if existing != nil {
		receipt.ID = existing.ID
		receipt.Status = existing.Status
		receipt.CreatedAt = existing.CreatedAt
		receipt.UpdatedAt = now
		if err := s.receipts.UpdateDerived(ctx, receipt); err != nil {
			result = metrics.ResultError
			return nil, err
		}
		return receipt, nil
	}

	receipt.CreatedAt = now
	receipt.UpdatedAt = now
	if err := s.receipts.Insert(ctx, receipt); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return receipt, nil
}

// UpdateStatus moves an issued receipt through the approval workflow.
// Never-issued receipts are not found; no other field changes.
func (s *ReceiptService) UpdateStatus(ctx context.Context, contractID string, month, year int, status string) (*billing.Receipt, error) {
	began := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReceiptStatusUpdate(result, time.Since(began))
	}()

	parsed, err := billing.ParseStatus(status)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := validateMonth(month, year); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	existing, err := s.receipts.FindByKey(ctx, contractID, month, year)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if existing == nil {
		result = metrics.ResultError
		return nil, billing.ErrReceiptNotFound
	}
	now := s.clock.Now().UTC()
	if err := s.receipts.UpdateStatus(ctx, contractID, month, year, parsed, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	existing.Status = parsed
	existing.UpdatedAt = now
	return existing, nil
}

// ListPendingPayable returns approved receipts on which the tenant still owes
// money (balance < 0), newest period first. Pending and denied receipts are
// excluded, as are receipts with nothing owed.
func (s *ReceiptService) ListPendingPayable(ctx context.Context) ([]billing.Receipt, error) {
	return s.receipts.ListApprovedOwing(ctx)
}

// calculate builds the priced receipt for a contract month. Zero billing data
// (no meter, no readings, no payments, no charges) degrades to zero-valued
// fields so partial data never breaks the pipeline.
func (s *ReceiptService) calculate(ctx context.Context, contractID string, month, year int) (*billing.Receipt, error) {
	details, err := s.contracts.GetDetails(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, leasing.ErrContractNotFound
	}

	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)

	payments, err := s.payments.ListInPeriod(ctx, contractID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	light, err := s.consumption.PeriodConsumption(ctx, details.Unit.ID, metering.MeterTypeLight, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	water, err := s.consumption.PeriodConsumption(ctx, details.Unit.ID, metering.MeterTypeWater, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	charges, err := s.extraCharges.ListForMonth(ctx, contractID, month, year)
	if err != nil {
		return nil, err
	}

	items := []billing.LineItem{{Description: "Rent", Amount: details.Contract.RentAmount}}
	totalDue := details.Contract.RentAmount
	// Utility lines appear only for strictly positive consumption; zero or
	// negative consumption contributes nothing, not even a zero line.
	if light.Consumption > 0 {
		items = append(items, billing.LineItem{
			Description: fmt.Sprintf("Electricity (%.1f units)", light.Consumption),
			Amount:      light.Cost,
		})
		totalDue += light.Cost
	}
	if water.Consumption > 0 {
		items = append(items, billing.LineItem{
			Description: fmt.Sprintf("Water (%.1f units)", water.Consumption),
			Amount:      water.Cost,
		})
		totalDue += water.Cost
	}
	for _, charge := range charges {
		items = append(items, billing.LineItem{Description: charge.Description, Amount: charge.Amount})
		totalDue += charge.Amount
	}

	var totalPayments float64
	for _, payment := range payments {
		totalPayments += payment.Amount
		items = append(items, billing.LineItem{
			Description: fmt.Sprintf("Payment %s (%s)", payment.Date.Format("2006-01-02"), payment.Type),
			Amount:      -payment.Amount,
		})
	}

	return &billing.Receipt{
		ID:              buildReceiptID(contractID, month, year),
		ContractID:      contractID,
		Month:           month,
		Year:            year,
		TenantName:      details.Tenant.FullName,
		UnitName:        details.Unit.Name,
		PropertyAddress: details.Property.Address,
		Period:          periodStart.Format("January 2006"),
		Items:           items,
		TotalDue:        totalDue,
		TotalPayments:   totalPayments,
		Balance:         totalPayments - totalDue,
		Status:          billing.StatusPendingReview,
	}, nil
}

func validateMonth(month, year int) error {
	if month < 1 || month > 12 || year < 1 {
		return billing.ErrInvalidMonth
	}
	return nil
}

func buildReceiptID(contractID string, month, year int) string {
	base := contractID + "|" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
	hash := sha256.Sum256([]byte(base))
	return "rcpt-" + hex.EncodeToString(hash[:8])
}
