package billing

import "time"

const (
	StatusPendingReview = "pending_review"
	StatusApproved      = "approved"
	StatusDenied        = "denied"
)

// ParseStatus validates a receipt workflow status.
func ParseStatus(s string) (string, error) {
	switch s {
	case StatusPendingReview, StatusApproved, StatusDenied:
		return s, nil
	}
	return "", ErrInvalidStatus
}

// LineItem is one priced line on a receipt. Payment lines carry negative
// amounts for display and never feed the totals.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Receipt is the monthly itemized bill for a contract, unique per
// (contract, month, year). The snapshot fields (tenant name, unit name,
// property address, period label) are taken at issue time and never updated
// retroactively: an issued receipt is a point-in-time document.
// Invariant: Balance = TotalPayments - TotalDue.
type Receipt struct {
	ID              string     `json:"id"`
	ContractID      string     `json:"contract_id"`
	Month           int        `json:"month"`
	Year            int        `json:"year"`
	TenantName      string     `json:"tenant_name"`
	UnitName        string     `json:"unit_name"`
	PropertyAddress string     `json:"property_address"`
	Period          string     `json:"period"`
	Items           []LineItem `json:"items"`
	TotalDue        float64    `json:"total_due"`
	TotalPayments   float64    `json:"total_payments"`
	Balance         float64    `json:"balance"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Clone returns a detached copy with its own items slice.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	copy := *r
	copy.Items = append([]LineItem(nil), r.Items...)
	return &copy
}
