package application

import (
	"context"
	"errors"
	"time"

	leasing "rentdesk/internal/leasing/domain"
	"rentdesk/internal/observability/metrics"
	settlement "rentdesk/internal/settlement/domain"
)

// ContractSource resolves contracts with their related records.
type ContractSource interface {
	GetDetails(ctx context.Context, id string) (*leasing.ContractDetails, error)
}

// PaymentSource lists the full payment history of a contract.
type PaymentSource interface {
	ListAll(ctx context.Context, contractID string) ([]leasing.Payment, error)
}

// SettlementService computes the final balance due when a contract ends.
type SettlementService struct {
	contracts       ContractSource
	payments        PaymentSource
	overstayDivisor float64
}

// NewSettlementService constructs a service. The overstay divisor is the fixed
// month-length approximation used to derive the daily rent (conventionally 30).
func NewSettlementService(contracts ContractSource, payments PaymentSource, overstayDivisor float64) (*SettlementService, error) {
	if contracts == nil {
		return nil, errors.New("settlement service: nil contract source")
	}
	if payments == nil {
		return nil, errors.New("settlement service: nil payment source")
	}
	if overstayDivisor <= 0 {
		return nil, errors.New("settlement service: overstay divisor must be positive")
	}
	return &SettlementService{contracts: contracts, payments: payments, overstayDivisor: overstayDivisor}, nil
}

// CalculateFinal computes the end-of-contract settlement against actualEndDate.
// Rent accrues per calendar month touched through max(actualEndDate, contract
// end); overstay days are deducted from the guarantee deposit, capped at the
// deposit. Missing contracts propagate NotFound with no partial result.
func (s *SettlementService) CalculateFinal(ctx context.Context, contractID string, actualEndDate time.Time) (settlement.Result, error) {
	began := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSettlementCalculate(result, time.Since(began))
	}()

	if actualEndDate.IsZero() {
		result = metrics.ResultError
		return settlement.Result{}, errors.New("settlement service: actual end date required")
	}
	details, err := s.contracts.GetDetails(ctx, contractID)
	if err != nil {
		result = metrics.ResultError
		return settlement.Result{}, err
	}
	if details == nil {
		result = metrics.ResultError
		return settlement.Result{}, leasing.ErrContractNotFound
	}
	contract := details.Contract

	effectiveEnd := actualEndDate
	if contract.EndDate.After(effectiveEnd) {
		effectiveEnd = contract.EndDate
	}
	totalCharges := float64(settlement.MonthsCharged(contract.StartDate, effectiveEnd)) * contract.RentAmount

	payments, err := s.payments.ListAll(ctx, contractID)
	if err != nil {
		result = metrics.ResultError
		return settlement.Result{}, err
	}
	var totalPayments float64
	for _, payment := range payments {
		totalPayments += payment.Amount
	}

	days := settlement.OverstayDays(contract.EndDate, actualEndDate)
	deduction := settlement.GuaranteeDeduction(days, contract.RentAmount, s.overstayDivisor, contract.GuaranteeDeposit)
	totalCharges += deduction

	return settlement.Result{
		TotalCharges:       totalCharges,
		TotalPayments:      totalPayments,
		GuaranteeDeduction: deduction,
		DaysOverstayed:     days,
		FinalBalance:       totalPayments - totalCharges,
		AdvancePaymentUsed: false,
	}, nil
}
