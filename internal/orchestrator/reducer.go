package orchestrator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

var (
	// ErrInvalidStep the operation is not accepted at the current step
	ErrInvalidStep = errors.New("orchestrator: operation not allowed at current step")

	// ErrFlowFinished the flow is confirmed or exited
	ErrFlowFinished = errors.New("orchestrator: flow is finished")
)

// CanProceed evaluates the gate for leaving the current step forward.
// At details: TIME_BASED needs a selected slot, PROJECT_BASED needs
// trimmed requirements of at least MinProjectRequirementsLength characters.
func CanProceed(s State) bool {
	switch s.Step {
	case StepService:
		return s.Service.ID != uuid.Nil
	case StepDetails:
		return detailsViolation(s) == nil
	}
	return false
}

// GoodDetail is the soft indicator for project requirements: at least GoodDetailWords words.
// It never gates the flow.
func GoodDetail(text string) bool {
	return len(strings.Fields(text)) >= domain.GoodDetailWords
}

// Next advances one step. Payment is left only through Confirmed.
func Next(s State) (State, error) {
	if err := guard(s); err != nil {
		return s, err
	}

	switch s.Step {
	case StepService:
		if !CanProceed(s) {
			return s, domain.NewValidationError(domain.Violation{Field: "service", Message: "is required"})
		}
	case StepDetails:
		if v := detailsViolation(s); v != nil {
			return s, domain.NewValidationError(*v)
		}
	default:
		return s, fmt.Errorf("%w: next from %s", ErrInvalidStep, s.Step)
	}

	s.Step = order[s.Step.index()+1]
	s.LastError = nil
	return s, nil
}

// Prev goes back one step. From service it exits the flow without side effects.
func Prev(s State) (State, error) {
	if err := guard(s); err != nil {
		return s, err
	}

	if s.Step == StepService {
		s.Exited = true
		return s, nil
	}

	s.Step = order[s.Step.index()-1]
	s.LastError = nil
	return s, nil
}

// WithDetails replaces the form data. Accepted at details only.
func WithDetails(s State, d Details) (State, error) {
	if err := guard(s); err != nil {
		return s, err
	}
	if s.Step != StepDetails {
		return s, fmt.Errorf("%w: details can be edited at %s only", ErrInvalidStep, StepDetails)
	}

	s.Details = d
	return s, nil
}

// BeginInFlight marks a blocking call (slot fetch, payment, create) as running
func BeginInFlight(s State) (State, error) {
	if err := guard(s); err != nil {
		return s, err
	}
	s.InFlight = true
	return s, nil
}

// EndInFlight clears the in-flight mark without changing the step
func EndInFlight(s State) State {
	s.InFlight = false
	return s
}

// BeginConfirm marks the payment+create call as in flight. Accepted at payment only.
func BeginConfirm(s State) (State, error) {
	if err := guard(s); err != nil {
		return s, err
	}
	if s.Step != StepPayment {
		return s, fmt.Errorf("%w: confirm from %s", ErrInvalidStep, s.Step)
	}
	s.InFlight = true
	s.LastError = nil
	return s, nil
}

// Confirmed moves to the terminal confirmation step with the new booking
func Confirmed(s State, bookingID uuid.UUID) State {
	s.InFlight = false
	s.Step = StepConfirmation
	s.BookingID = &bookingID
	s.LastError = nil
	return s
}

// ConfirmFailed keeps the flow on payment and records why
func ConfirmFailed(s State, err error) State {
	s.InFlight = false
	s.LastError = &FlowError{Kind: FailureKind(err), Message: err.Error()}
	return s
}

// IsRecoverable reports whether a confirm failure keeps the client on payment.
// Validation and authorization errors are caller bugs and propagate.
func IsRecoverable(err error) bool {
	return errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrUpstream) ||
		errors.Is(err, domain.ErrPaymentDeclined)
}

// FailureKind classifies a recoverable confirm error
func FailureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrPaymentDeclined):
		return FailurePaymentDeclined
	case errors.Is(err, domain.ErrConflict):
		return FailureConflict
	}
	return FailureUpstream
}

func guard(s State) error {
	if s.IsFinished() {
		return ErrFlowFinished
	}
	if s.InFlight {
		return domain.NewConflictError(domain.ErrFlowBusy, s.FlowID.String())
	}
	return nil
}

func detailsViolation(s State) *domain.Violation {
	switch s.Service.Type {
	case domain.ServiceTypeTimeBased:
		if s.Details.BookingDateTime == nil {
			return &domain.Violation{Field: "bookingDateTime", Message: "select a time slot"}
		}
	case domain.ServiceTypeProjectBased:
		if utf8.RuneCountInString(strings.TrimSpace(s.Details.ProjectRequirements)) < domain.MinProjectRequirementsLength {
			return &domain.Violation{
				Field:   "projectRequirements",
				Message: fmt.Sprintf("must be at least %d characters", domain.MinProjectRequirementsLength),
			}
		}
	default:
		return &domain.Violation{Field: "serviceType", Message: "unknown service type"}
	}
	return nil
}
