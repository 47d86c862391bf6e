package leasing

import "time"

// Unit is a rentable department within a property.
type Unit struct {
	ID         string
	PropertyID string
	Name       string
	Available  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
