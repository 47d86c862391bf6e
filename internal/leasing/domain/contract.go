package leasing

import "time"

// Contract binds a tenant to a unit for a period at a monthly rent.
type Contract struct {
	ID               string
	UnitID           string
	TenantID         string
	StartDate        time.Time
	EndDate          time.Time
	RentAmount       float64
	AdvancePayment   float64
	GuaranteeDeposit float64
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ContractDetails is a contract resolved with its tenant, unit and owning property.
type ContractDetails struct {
	Contract Contract
	Tenant   Tenant
	Unit     Unit
	Property Property
}
