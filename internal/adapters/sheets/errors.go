package sheets

import "errors"

// Sentinel kinds for backend errors.
var (
	// ErrNoCredentials is a configuration-class failure: nothing to
	// authenticate with. Non-retryable; the session degrades to the
	// local fallback store.
	ErrNoCredentials = errors.New("no backend credentials")

	// ErrNoWorkbook is a configuration-class failure: no workbook
	// locator, or the locator does not parse.
	ErrNoWorkbook = errors.New("no workbook configured")

	ErrWorksheetNotFound = errors.New("worksheet not found")
)

// IsConfiguration reports whether err is a non-retryable configuration
// failure that should pin the session to the fallback store.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrNoCredentials) || errors.Is(err, ErrNoWorkbook)
}
