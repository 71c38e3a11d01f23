// internal/app/lifecycle/errors.go
package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStateTransition means the assignment is not in the source
	// state the requested transition needs. This is the idempotency guard:
	// duplicate accept/reject/cancel calls and stale clients land here.
	ErrInvalidStateTransition = errors.New("assignment is not in the required state for this transition")

	// ErrNoMentor means the opportunity exists but has no mentor assigned,
	// so there is nobody to apply to.
	ErrNoMentor = errors.New("opportunity has no mentor assigned")

	// ErrInvalidFee means the supplied fee snapshot is negative.
	ErrInvalidFee = errors.New("fee snapshot must not be negative")
)

// CompensationError reports that a compensating cancel of a dangling payment
// authorization failed after the local write already failed. It wraps both
// legs: Primary is what the caller ultimately acts on, CancelErr is why the
// cleanup failed. This condition means real money is held with no matching
// local record and requires operator reconciliation, so it is never silently
// swallowed.
type CompensationError struct {
	AuthorizationID string
	Primary         error
	CancelErr       error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("operation failed (%v) and compensating cancel of authorization %s also failed: %v",
		e.Primary, e.AuthorizationID, e.CancelErr)
}

// Unwrap exposes both legs to errors.Is/As.
func (e *CompensationError) Unwrap() []error {
	return []error{e.Primary, e.CancelErr}
}
