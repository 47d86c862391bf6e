package leasing

import "time"

const (
	PaymentTypeRent      = "rent"
	PaymentTypeWater     = "water"
	PaymentTypeLight     = "light"
	PaymentTypeAdvance   = "advance"
	PaymentTypeGuarantee = "guarantee"
	PaymentTypeRefund    = "refund"
)

// Payment is an append-only ledger entry against a contract.
type Payment struct {
	ID         string
	ContractID string
	Amount     float64
	Date       time.Time
	Type       string
	CreatedAt  time.Time
}

// ValidPaymentType reports whether t is a known payment type.
func ValidPaymentType(t string) bool {
	switch t {
	case PaymentTypeRent, PaymentTypeWater, PaymentTypeLight,
		PaymentTypeAdvance, PaymentTypeGuarantee, PaymentTypeRefund:
		return true
	}
	return false
}
