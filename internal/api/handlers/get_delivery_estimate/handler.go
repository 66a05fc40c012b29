package get_delivery_estimate

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
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

// Handle GET /api/v1/services/{serviceId}/delivery-estimate
// Query params: from (optional, RFC3339; по умолчанию текущее время)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathUUID(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /services/{id}/delivery-estimate - Invalid service ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	var from *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.logger.Warn("GET /services/{id}/delivery-estimate - Invalid from: %s", raw)
			handlers.RespondError(w, domain.NewValidationError(domain.Violation{Field: "from", Message: "expected RFC3339 timestamp"}))
			return
		}
		from = &parsed
	}

	estimate, err := h.service.DeliveryEstimate(r.Context(), serviceID, from)
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /services/{id}/delivery-estimate - Failed: service_id=%s, error=%v", serviceID, err)
		} else {
			h.logger.Warn("GET /services/{id}/delivery-estimate - Rejected: service_id=%s, error=%v", serviceID, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, estimate)
}
