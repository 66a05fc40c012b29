package get_user_bookings

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

// Handle GET /api/v1/users/me/bookings
// Query params: status (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	req := &models.GetUserBookingsRequest{Actor: actor}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetUserBookings(r.Context(), req)
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /users/me/bookings - Failed to get bookings: user_id=%s, error=%v", actor.ID, err)
		} else {
			h.logger.Warn("GET /users/me/bookings - Invalid filter: user_id=%s, error=%v", actor.ID, err)
		}
		return
	}

	h.logger.Info("GET /users/me/bookings - Bookings retrieved: user_id=%s, count=%d", actor.ID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
