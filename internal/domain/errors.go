package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Error kinds. Concrete error types match them through errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrAuthorization   = errors.New("not authorized")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream failure")
	ErrPaymentDeclined = errors.New("payment declined")
)

// Conflict reasons
var (
	ErrSlotUnavailable   = errors.New("slot is no longer available")
	ErrBookingFinalized  = errors.New("booking already finalized")
	ErrHasActiveBookings = errors.New("has active bookings")
	ErrServiceInactive   = errors.New("service is not active")
	ErrStatusChanged     = errors.New("booking status changed concurrently")
	ErrFlowBusy          = errors.New("booking flow has an operation in flight")
)

// Not found
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrFlowNotFound    = errors.New("booking flow not found")
)

// Violation is a single failed field rule
type Violation struct {
	Field   string
	Message string
}

// ValidationError lists every violated rule of the input
type ValidationError struct {
	Violations []Violation
}

func NewValidationError(v ...Violation) *ValidationError {
	return &ValidationError{Violations: v}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthorizationError names who tried what
type AuthorizationError struct {
	ActorID uuid.UUID
	Role    Role
	Action  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s with role %q is not allowed to perform %q", e.ActorID, e.Role, e.Action)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrAuthorization }

// ConflictError is a collision with current state. Reason is one of the conflict sentinels.
type ConflictError struct {
	Reason error
	Detail string
}

func NewConflictError(reason error, detail string) *ConflictError {
	return &ConflictError{Reason: reason, Detail: detail}
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return "conflict: " + e.Reason.Error()
	}
	return "conflict: " + e.Reason.Error() + ": " + e.Detail
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConflictError) Unwrap() error { return e.Reason }

// UpstreamFailure is a failed call to persistence, payment, cache or broker.
// The only retryable kind.
type UpstreamFailure struct {
	Upstream string
	Err      error
}

func NewUpstreamFailure(upstream string, err error) *UpstreamFailure {
	return &UpstreamFailure{Upstream: upstream, Err: err}
}

func (e *UpstreamFailure) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Upstream, e.Err)
}

func (e *UpstreamFailure) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamFailure) Unwrap() error { return e.Err }

// PaymentDeclinedError the processor answered and refused the charge
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

func (e *PaymentDeclinedError) Is(target error) bool { return target == ErrPaymentDeclined }

// IsRetryable reports whether the caller may retry the operation unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstream)
}
