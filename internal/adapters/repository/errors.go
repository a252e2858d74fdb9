package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrBackendUnavailable wraps any unrecoverable backend failure a
	// sheet-backed operation gives up on. The failover layer redirects
	// the operation to the local store on this class of error.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrFallbackCorrupt marks an unreadable local fallback file. The
	// store restarts with fresh state; the error is only logged.
	ErrFallbackCorrupt = errors.New("fallback file corrupt")
)
