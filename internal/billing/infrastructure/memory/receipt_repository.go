package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	billing "rentdesk/internal/billing/domain"
)

type key struct {
	contractID string
	month      int
	year       int
}

// ReceiptRepository is an in-memory receipt store for tests.
type ReceiptRepository struct {
	mu   sync.RWMutex
	data map[key]*billing.Receipt
}

// NewReceiptRepository constructs a repository.
func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{data: make(map[key]*billing.Receipt)}
}

// FindByKey returns the receipt for a contract month, or nil.
func (r *ReceiptRepository) FindByKey(ctx context.Context, contractID string, month, year int) (*billing.Receipt, error) {
	_ = ctx
	r.mu.RLock()
	receipt := r.data[key{contractID, month, year}]
	r.mu.RUnlock()
	return receipt.Clone(), nil
}

// Insert creates a receipt; a second insert of the same key is a duplicate.
func (r *ReceiptRepository) Insert(ctx context.Context, receipt *billing.Receipt) error {
	_ = ctx
	if receipt == nil {
		return billing.ErrNilReceipt
	}
	k := key{receipt.ContractID, receipt.Month, receipt.Year}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data[k] != nil {
		return billing.ErrDuplicateReceipt
	}
	r.data[k] = receipt.Clone()
	return nil
}

// UpdateDerived overwrites computed fields, leaving status alone.
func (r *ReceiptRepository) UpdateDerived(ctx context.Context, receipt *billing.Receipt) error {
	_ = ctx
	if receipt == nil {
		return billing.ErrNilReceipt
	}
	k := key{receipt.ContractID, receipt.Month, receipt.Year}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.data[k]
	if existing == nil {
		return billing.ErrReceiptNotFound
	}
	updated := receipt.Clone()
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt
	r.data[k] = updated
	return nil
}

// UpdateStatus sets the workflow status.
func (r *ReceiptRepository) UpdateStatus(ctx context.Context, contractID string, month, year int, status string, at time.Time) error {
	_ = ctx
	k := key{contractID, month, year}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.data[k]
	if existing == nil {
		return billing.ErrReceiptNotFound
	}
	existing.Status = status
	existing.UpdatedAt = at
	return nil
}

// ListApprovedOwing returns approved receipts with balance < 0, newest period first.
func (r *ReceiptRepository) ListApprovedOwing(ctx context.Context) ([]billing.Receipt, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []billing.Receipt
	for _, receipt := range r.data {
		if receipt.Status == billing.StatusApproved && receipt.Balance < 0 {
			result = append(result, *receipt.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result, nil
}
