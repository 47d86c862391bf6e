package settlement

// Result is the final balance calculation performed when a contract ends.
// It is computed on demand and never persisted.
//
// Sign convention: FinalBalance = TotalPayments - TotalCharges, so a positive
// balance means the tenant is owed a refund and a negative one means the
// tenant still owes. This is the opposite of the receipt convention and is
// preserved deliberately.
type Result struct {
	TotalCharges       float64 `json:"total_charges"`
	TotalPayments      float64 `json:"total_payments"`
	GuaranteeDeduction float64 `json:"guarantee_deduction"`
	DaysOverstayed     int     `json:"days_overstayed"`
	FinalBalance       float64 `json:"final_balance"`
	// AdvancePaymentUsed is tracked but never computed; it stays false until
	// product intent for advance payment consumption is settled.
	AdvancePaymentUsed bool `json:"advance_payment_used"`
}
