package application

import (
	"context"
	"errors"

	leasing "rentdesk/internal/leasing/domain"
)

// ContractLifecycle persists contract open/close together with the unit availability flip.
type ContractLifecycle interface {
	Open(ctx context.Context, contract *leasing.Contract) error
	Close(ctx context.Context, id string) error
}

// ContractService guards the contract lifecycle.
type ContractService struct {
	repo ContractLifecycle
}

// NewContractService constructs a service.
func NewContractService(repo ContractLifecycle) (*ContractService, error) {
	if repo == nil {
		return nil, errors.New("contract service: nil repo")
	}
	return &ContractService{repo: repo}, nil
}

// Open validates and opens a contract on an available unit.
func (s *ContractService) Open(ctx context.Context, contract *leasing.Contract) error {
	if contract == nil {
		return errors.New("contract service: nil contract")
	}
	if contract.ID == "" || contract.UnitID == "" || contract.TenantID == "" {
		return errors.New("contract service: missing identifiers")
	}
	if contract.StartDate.IsZero() || contract.EndDate.IsZero() || contract.EndDate.Before(contract.StartDate) {
		return leasing.ErrInvalidPeriod
	}
	if contract.RentAmount < 0 || contract.AdvancePayment < 0 || contract.GuaranteeDeposit < 0 {
		return errors.New("contract service: negative amount")
	}
	return s.repo.Open(ctx, contract)
}

// Close deactivates a contract, releasing its unit.
func (s *ContractService) Close(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("contract service: empty contract id")
	}
	return s.repo.Close(ctx, id)
}
