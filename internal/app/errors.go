package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrBusy       = errors.New("allocation queue unavailable")
)
