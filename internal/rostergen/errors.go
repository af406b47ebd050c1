package rostergen

import "errors"

// Sentinel errors for this package.
var (
	ErrInvalidOption = errors.New("invalid generator option")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrUnexpected    = errors.New("unexpected response")
	ErrVerification  = errors.New("verification failed")
)
