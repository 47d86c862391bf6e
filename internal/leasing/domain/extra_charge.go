package leasing

import "time"

// ExtraCharge is a one-off charge scoped to a contract and calendar month.
type ExtraCharge struct {
	ID          string
	ContractID  string
	Description string
	Amount      float64
	Month       int
	Year        int
	CreatedAt   time.Time
}
