package sheets

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"

	"github.com/okian/tally/pkg/metrics"
)

// Retry defaults. BaseDelay doubles on every attempt.
const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 600 * time.Millisecond
)

// Retryer wraps a single remote call with bounded retry, classifying
// failures as transient or permanent. Transient means worth retrying:
// rate limiting, server-side errors, or errors with no discernible
// status. Everything else re-raises immediately.
type Retryer struct {
	maxRetries uint64
	baseDelay  time.Duration
}

// RetryOption applies a configuration option to the Retryer.
type RetryOption func(*Retryer)

// WithMaxRetries bounds the number of retry attempts.
func WithMaxRetries(n int) RetryOption {
	return func(r *Retryer) {
		if n >= 0 {
			r.maxRetries = uint64(n)
		}
	}
}

// WithBaseDelay sets the initial backoff delay.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(r *Retryer) {
		if d > 0 {
			r.baseDelay = d
		}
	}
}

// NewRetryer creates a Retryer with the given options.
func NewRetryer(opts ...RetryOption) *Retryer {
	r := &Retryer{
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs fn, retrying transient failures with exponential backoff until
// the attempt budget is exhausted. The op label feeds the backend
// metrics. Returns the last error on exhaustion.
func (r *Retryer) Do(ctx context.Context, op string, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempt := 0
	wrapped := func() error {
		err := fn()
		if err == nil {
			metrics.RecordBackendCall(op, "ok")
			return nil
		}
		if Transient(err) {
			metrics.RecordBackendCall(op, "transient")
			if attempt < int(r.maxRetries) {
				attempt++
				metrics.RecordBackendRetry(op)
			}
			return err
		}
		metrics.RecordBackendCall(op, "permanent")
		return backoff.Permanent(err)
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx))
}

// Transient classifies err as worth retrying. Rate limiting (429) and
// server errors (5xx) retry; an error carrying no googleapi status is
// treated conservatively as transient.
func Transient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	return true
}
