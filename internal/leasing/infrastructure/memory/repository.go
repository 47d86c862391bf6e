package memory

import (
	"context"
	"sync"
	"time"

	leasing "rentdesk/internal/leasing/domain"
)

// ContractStore is an in-memory contract source for tests.
type ContractStore struct {
	mu   sync.RWMutex
	data map[string]*leasing.ContractDetails
}

// NewContractStore constructs a store.
func NewContractStore() *ContractStore {
	return &ContractStore{data: make(map[string]*leasing.ContractDetails)}
}

// Put stores contract details under the contract id.
func (s *ContractStore) Put(details *leasing.ContractDetails) {
	if details == nil {
		return
	}
	s.mu.Lock()
	s.data[details.Contract.ID] = details
	s.mu.Unlock()
}

// GetDetails returns a stored contract with related records, or nil.
func (s *ContractStore) GetDetails(ctx context.Context, id string) (*leasing.ContractDetails, error) {
	_ = ctx
	s.mu.RLock()
	details := s.data[id]
	s.mu.RUnlock()
	if details == nil {
		return nil, nil
	}
	copy := *details
	return &copy, nil
}

// PaymentStore is an in-memory payment ledger for tests.
type PaymentStore struct {
	mu   sync.RWMutex
	data []leasing.Payment
}

// NewPaymentStore constructs a store.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{}
}

// Append adds a payment.
func (s *PaymentStore) Append(payment leasing.Payment) {
	s.mu.Lock()
	s.data = append(s.data, payment)
	s.mu.Unlock()
}

// ListInPeriod returns payments for a contract with date in [start, end].
func (s *PaymentStore) ListInPeriod(ctx context.Context, contractID string, start, end time.Time) ([]leasing.Payment, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []leasing.Payment
	for _, p := range s.data {
		if p.ContractID != contractID {
			continue
		}
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// ListAll returns every payment on a contract.
func (s *PaymentStore) ListAll(ctx context.Context, contractID string) ([]leasing.Payment, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []leasing.Payment
	for _, p := range s.data {
		if p.ContractID == contractID {
			result = append(result, p)
		}
	}
	return result, nil
}

// ExtraChargeStore is an in-memory extra charge store for tests.
type ExtraChargeStore struct {
	mu   sync.RWMutex
	data []leasing.ExtraCharge
}

// NewExtraChargeStore constructs a store.
func NewExtraChargeStore() *ExtraChargeStore {
	return &ExtraChargeStore{}
}

// Append adds a charge.
func (s *ExtraChargeStore) Append(charge leasing.ExtraCharge) {
	s.mu.Lock()
	s.data = append(s.data, charge)
	s.mu.Unlock()
}

// ListForMonth returns charges for a contract and calendar month.
func (s *ExtraChargeStore) ListForMonth(ctx context.Context, contractID string, month, year int) ([]leasing.ExtraCharge, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []leasing.ExtraCharge
	for _, c := range s.data {
		if c.ContractID == contractID && c.Month == month && c.Year == year {
			result = append(result, c)
		}
	}
	return result, nil
}
