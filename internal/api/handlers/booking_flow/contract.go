package booking_flow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
	bookingFlow "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/booking_flow"
	getAvailableSlots "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
)

type BookingFlowUseCase interface {
	Start(ctx context.Context, actor domain.Actor, serviceID uuid.UUID) (*bookingFlow.View, error)
	Get(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*bookingFlow.View, error)
	UpdateDetails(ctx context.Context, actor domain.Actor, flowID uuid.UUID, details orchestrator.Details) (*bookingFlow.View, error)
	Next(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*bookingFlow.View, error)
	Prev(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*bookingFlow.View, error)
	Slots(ctx context.Context, actor domain.Actor, flowID uuid.UUID, date time.Time) (*getAvailableSlots.Response, error)
	Confirm(ctx context.Context, actor domain.Actor, flowID uuid.UUID, paymentToken string) (*bookingFlow.View, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
