package entities

import "errors"

// Domain errors
var (
	// Status errors
	ErrUnknownStatus  = errors.New("unknown meeting status")
	ErrTerminalStatus = errors.New("meeting status is terminal")
	ErrNoTransition   = errors.New("status transition not allowed")
)
