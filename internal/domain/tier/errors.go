package tier

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrMalformedRecord marks a signup that was recovered with a fail-safe
	// classification or a synthetic ID.
	ErrMalformedRecord   = errors.New("malformed participant record")
	ErrInvalidThresholds = errors.New("invalid tier thresholds")
)
