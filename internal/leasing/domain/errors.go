package leasing

import "errors"

var (
	// ErrContractNotFound is returned when a referenced contract does not exist.
	ErrContractNotFound = errors.New("leasing: contract not found")
	// ErrUnitNotFound is returned when a referenced unit does not exist.
	ErrUnitNotFound = errors.New("leasing: unit not found")
	// ErrUnitUnavailable is returned when opening a contract on an occupied unit.
	ErrUnitUnavailable = errors.New("leasing: unit not available")
	// ErrInvalidPaymentType is returned for payment types outside the known set.
	ErrInvalidPaymentType = errors.New("leasing: invalid payment type")
	// ErrInvalidPeriod is returned when a contract period is inverted or zero.
	ErrInvalidPeriod = errors.New("leasing: invalid contract period")
)
