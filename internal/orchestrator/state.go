// Package orchestrator models the client booking flow
// service -> details -> payment -> confirmation as an explicit State value.
// Every function here is pure: it takes a State and returns a new one.
package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Step of the booking flow
type Step string

const (
	StepService      Step = "service"
	StepDetails      Step = "details"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var order = []Step{StepService, StepDetails, StepPayment, StepConfirmation}

func (s Step) index() int {
	for i, st := range order {
		if st == s {
			return i
		}
	}
	return -1
}

// ServiceSummary is the part of the selected service the flow needs
type ServiceSummary struct {
	ID             uuid.UUID          `json:"id"`
	ProfessionalID uuid.UUID          `json:"professionalId"`
	Title          string             `json:"title"`
	Type           domain.ServiceType `json:"serviceType"`
	PriceInCents   int64              `json:"priceInCents"`
}

// Details is the form data captured at the details step
type Details struct {
	BookingDateTime     *time.Time `json:"bookingDateTime,omitempty"`
	ProjectRequirements string     `json:"projectRequirements,omitempty"`
	SpecialRequests     string     `json:"specialRequests,omitempty"`
	ClientNotes         string     `json:"clientNotes,omitempty"`
}

// FlowError is the reason the last confirm attempt failed
type FlowError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Failure kinds surfaced on the payment step
const (
	FailureConflict        = "conflict"
	FailureUpstream        = "upstream"
	FailurePaymentDeclined = "payment_declined"
)

// State of one client's booking flow
type State struct {
	FlowID    uuid.UUID      `json:"flowId"`
	ClientID  uuid.UUID      `json:"clientId"`
	Step      Step           `json:"step"`
	Service   ServiceSummary `json:"service"`
	Details   Details        `json:"details"`
	BookingID *uuid.UUID     `json:"bookingId,omitempty"`
	LastError *FlowError     `json:"lastError,omitempty"`
	InFlight  bool           `json:"inFlight"`
	Exited    bool           `json:"exited"`
}

// New starts a flow at the service step
func New(flowID, clientID uuid.UUID, service ServiceSummary) State {
	return State{
		FlowID:   flowID,
		ClientID: clientID,
		Step:     StepService,
		Service:  service,
	}
}

// IsFinished is true once the flow reached confirmation or was exited
func (s State) IsFinished() bool {
	return s.Exited || s.Step == StepConfirmation
}
