package booking_flow

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
)

// StartFlowRequest HTTP request model
type StartFlowRequest struct {
	ServiceID uuid.UUID `json:"serviceId" validate:"required"`
}

// DetailsRequest данные формы шага details
type DetailsRequest struct {
	BookingDateTime     *time.Time `json:"bookingDateTime,omitempty"`
	ProjectRequirements string     `json:"projectRequirements,omitempty"`
	SpecialRequests     string     `json:"specialRequests,omitempty" validate:"max=2000"`
	ClientNotes         string     `json:"clientNotes,omitempty" validate:"max=2000"`
}

func (r *DetailsRequest) toDetails() orchestrator.Details {
	return orchestrator.Details{
		BookingDateTime:     r.BookingDateTime,
		ProjectRequirements: r.ProjectRequirements,
		SpecialRequests:     r.SpecialRequests,
		ClientNotes:         r.ClientNotes,
	}
}

// ConfirmRequest HTTP request model
type ConfirmRequest struct {
	PaymentToken string `json:"paymentToken" validate:"required"`
}
