package has_active_bookings

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
)

// ActiveBookingsResponse HTTP response model
type ActiveBookingsResponse struct {
	ServiceID         uuid.UUID `json:"serviceId"`
	HasActiveBookings bool      `json:"hasActiveBookings"`
}

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/active-bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathUUID(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /services/{id}/active-bookings - Invalid service ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	has, err := h.service.HasActiveBookings(r.Context(), serviceID)
	if err != nil {
		h.logger.Error("GET /services/{id}/active-bookings - Failed: service_id=%s, error=%v", serviceID, err)
		handlers.RespondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ActiveBookingsResponse{ServiceID: serviceID, HasActiveBookings: has})
}
