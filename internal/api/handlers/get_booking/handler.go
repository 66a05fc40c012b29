package get_booking

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
)

const msgUnauthorized = "требуется авторизация"

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	bookingID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid booking ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, bookingID)
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /bookings/{id} - Failed to get booking: booking_id=%s, error=%v", bookingID, err)
		} else {
			h.logger.Warn("GET /bookings/{id} - Rejected: booking_id=%s, user_id=%s, status=%d", bookingID, actor.ID, status)
		}
		return
	}

	h.logger.Info("GET /bookings/{id} - Booking retrieved: booking_id=%s", bookingID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
