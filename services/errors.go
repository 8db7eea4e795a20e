package services

import "errors"

// Sentinel errors shared by the services. Handlers translate them to HTTP
// statuses; anything else is treated as a storage error and surfaced as 500.
var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateLicense = errors.New("license already registered")
	ErrNotFound         = errors.New("not found")
)
