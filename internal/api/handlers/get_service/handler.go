package get_service

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
)

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

// Handle GET /api/v1/services/{serviceId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathUUID(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /services/{id} - Invalid service ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	service, err := h.service.GetByID(r.Context(), serviceID)
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /services/{id} - Failed to get service: service_id=%s, error=%v", serviceID, err)
		} else {
			h.logger.Warn("GET /services/{id} - Service not found: service_id=%s", serviceID)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, service)
}
