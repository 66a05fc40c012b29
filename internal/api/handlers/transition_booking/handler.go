package transition_booking

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
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

// Handle PATCH /api/v1/bookings/{bookingId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	bookingID, err := handlers.PathUUID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid booking ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	var req TransitionRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/{id}/status - Invalid request body: booking_id=%s, error=%v", bookingID, err)
		handlers.RespondError(w, err)
		return
	}

	booking, err := h.service.Transition(r.Context(), &models.TransitionRequest{
		Actor:     actor,
		BookingID: bookingID,
		Status:    req.Status,
	})
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("PATCH /bookings/{id}/status - Failed to change status: booking_id=%s, to=%s, error=%v",
				bookingID, req.Status, err)
		} else {
			h.logger.Warn("PATCH /bookings/{id}/status - Transition rejected: booking_id=%s, user_id=%s, role=%s, to=%s, error=%v",
				bookingID, actor.ID, actor.Role, req.Status, err)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/status - Status changed: booking_id=%s, status=%s", bookingID, booking.Status)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
