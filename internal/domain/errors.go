package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrInvalidSample = errors.New("invalid geolocation sample")
	ErrInvalidText   = errors.New("announcement text must not be empty")
	ErrNilObserver   = errors.New("observer is nil")
	ErrOutOfRange    = errors.New("configuration value out of range")
	ErrNoAddress     = errors.New("no address resolved for position")
	ErrUnknownField  = errors.New("unknown address field")
)
