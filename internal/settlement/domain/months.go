package settlement

import (
	"math"
	"time"
)

// MonthsCharged counts the monthly rent accruals between start and end:
// one charge at start, then one per calendar-month anniversary while the
// anniversary is on or before end. Partial first and last months are charged
// in full. Month stepping follows time.AddDate normalization, so a Jan 31
// start accrues on Mar 2/3 rather than Feb 28.
func MonthsCharged(start, end time.Time) int {
	if start.IsZero() || end.Before(start) {
		return 0
	}
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	// Normalization can push an anniversary past end; walk back to the last
	// one inside the range.
	for months >= 0 && start.AddDate(0, months, 0).After(end) {
		months--
	}
	return months + 1
}

// OverstayDays is the number of days a tenant stayed past the contractual end,
// rounded up. Zero when the tenant left on time or early.
func OverstayDays(contractEnd, actualEnd time.Time) int {
	if !actualEnd.After(contractEnd) {
		return 0
	}
	return int(math.Ceil(actualEnd.Sub(contractEnd).Hours() / 24))
}

// GuaranteeDeduction prices overstay days at rent divided by the configured
// divisor, capped at the posted deposit: the landlord cannot deduct more than
// what was posted.
func GuaranteeDeduction(days int, rentAmount, divisorDays, deposit float64) float64 {
	if days <= 0 || divisorDays <= 0 {
		return 0
	}
	deduction := float64(days) * (rentAmount / divisorDays)
	if deduction > deposit {
		return deposit
	}
	return deduction
}
