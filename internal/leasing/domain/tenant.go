package leasing

import "time"

// Tenant is a renter bound to units through contracts.
type Tenant struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
