package model

import "errors"

// Sentinel kinds for domain validation errors.
var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidTarget = errors.New("invalid target")
)
