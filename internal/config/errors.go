package config

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrNoCredentials means no credential source is configured. It is
	// non-retryable and pins the session to the local fallback store.
	ErrNoCredentials = errors.New("no credentials configured")
)
