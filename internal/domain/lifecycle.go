package domain

import "fmt"

// Transition is one edge of the booking lifecycle, driven by an actor role
type Transition struct {
	From BookingStatus
	To   BookingStatus
	Role Role
}

func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

// transitions is the complete set of legal lifecycle edges.
// Anything absent is rejected.
var transitions = map[Transition]struct{}{
	{From: StatusPendingConfirmation, To: StatusConfirmed, Role: RoleProfessional}: {},
	{From: StatusPendingConfirmation, To: StatusDeclined, Role: RoleProfessional}:  {},
	{From: StatusPendingConfirmation, To: StatusCancelled, Role: RoleClient}:       {},
	{From: StatusConfirmed, To: StatusCompleted, Role: RoleProfessional}:           {},
	{From: StatusConfirmed, To: StatusCancelled, Role: RoleClient}:                 {},
}

// IsAllowedTransition looks up (from, role, to) in the transition table
func IsAllowedTransition(from BookingStatus, role Role, to BookingStatus) bool {
	_, ok := transitions[Transition{From: from, To: to, Role: role}]
	return ok
}

// CheckTransition validates a status change of b requested by actor.
// Order: unknown target, finalized booking, non-party actor, table lookup.
func CheckTransition(b *Booking, actor Actor, to BookingStatus) error {
	if !to.IsValid() {
		return NewValidationError(Violation{Field: "status", Message: fmt.Sprintf("unknown booking status %q", to)})
	}

	if b.Status.IsTerminal() {
		return NewConflictError(ErrBookingFinalized, fmt.Sprintf("booking %s is %s", b.ID, b.Status))
	}

	action := Transition{From: b.Status, To: to}.String()

	if !actor.IsPartyTo(b) {
		return &AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: action}
	}

	if !IsAllowedTransition(b.Status, actor.Role, to) {
		return &AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: action}
	}

	return nil
}
