package crates

import (
	"context"
	"errors"
	"time"
)

// retryAttempts bounds how often a transient registry failure is retried.
const retryAttempts = 3

// retryBaseDelay is the wait before the first retry. Tests shorten it.
var retryBaseDelay = time.Second

// transientError marks a failure worth retrying, such as a connection
// error or a 5xx response.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient wraps err so retryTransient will try again.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// isTransient reports whether err was marked with transient.
func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// retryTransient runs fn until it succeeds, fails permanently, or the
// attempt budget runs out. The wait doubles after each failed attempt,
// starting at one second.
func retryTransient(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = fn(); err == nil || !isTransient(err) {
			return err
		}
		if attempt == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
