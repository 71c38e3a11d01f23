// internal/app/payments/errors.go
package payments

import (
	"errors"
	"fmt"
)

// Category buckets authority-specific failures into the three classes the
// lifecycle engine understands. The engine treats Rejected and Fatal
// identically (abort, surface to caller); Retryable is surfaced as-is so the
// invoking edge can decide on retry/backoff — the engine itself never
// retries.
type Category string

const (
	// Retryable covers network failures, timeouts, 429s and 5xx responses.
	Retryable Category = "retryable"
	// Rejected covers business declines: insufficient funds, expired or
	// already-captured authorizations.
	Rejected Category = "rejected"
	// Fatal covers configuration and credential errors. Retrying cannot
	// help until an operator intervenes.
	Fatal Category = "fatal"
)

// Error is a payment authority failure translated into engine terms.
type Error struct {
	Category Category
	Op       string // authorize | capture | cancel | query
	Status   int    // HTTP status, 0 for transport errors
	Code     string // authority error code, if any
	Message  string
	Err      error // underlying transport error, if any
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment %s: %s (%s)", e.Op, e.Message, e.Code)
	}
	if e.Message != "" {
		return fmt.Sprintf("payment %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("payment %s failed", e.Op)
}

func (e *Error) Unwrap() error { return e.Err }

func category(err error) (Category, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category, true
	}
	return "", false
}

// IsRetryable reports whether err is a transient payment authority failure.
func IsRetryable(err error) bool {
	c, ok := category(err)
	return ok && c == Retryable
}

// IsRejected reports whether the payment authority declined the operation.
func IsRejected(err error) bool {
	c, ok := category(err)
	return ok && c == Rejected
}

// IsFatal reports whether err is a configuration or credential failure.
func IsFatal(err error) bool {
	c, ok := category(err)
	return ok && c == Fatal
}
