package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when tenant does not exist in the meta-database.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantNotActive is returned when tenant exists but is not active.
	ErrTenantNotActive = errors.New("tenant is not active")

	// ErrMaxPoolLimit is returned when the pool manager reached its pool limit.
	ErrMaxPoolLimit = errors.New("max tenant pool limit reached")
)
