package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrRosterFull    = errors.New("roster full")
	ErrInvalidSignup = errors.New("invalid signup")
	ErrDuplicateJob  = errors.New("duplicate job")
	ErrNoResult      = errors.New("no allocation has completed")
)
