package update_service

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/catalog/models"
)

const msgUnauthorized = "требуется авторизация"

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

// Handle PUT /api/v1/services/{serviceId}
// Обновляются только переданные поля
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	serviceID, err := handlers.PathUUID(r, "serviceId")
	if err != nil {
		h.logger.Warn("PUT /services/{id} - Invalid service ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	var req models.UpdateServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /services/{id} - Invalid request body: service_id=%s, error=%v", serviceID, err)
		handlers.RespondError(w, domain.NewValidationError(domain.Violation{Field: "body", Message: "malformed JSON"}))
		return
	}

	service, err := h.service.Update(r.Context(), actor, serviceID, &req)
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("PUT /services/{id} - Failed to update service: service_id=%s, error=%v", serviceID, err)
		} else {
			h.logger.Warn("PUT /services/{id} - Update rejected: service_id=%s, user_id=%s, error=%v", serviceID, actor.ID, err)
		}
		return
	}

	h.logger.Info("PUT /services/{id} - Service updated: service_id=%s", serviceID)
	handlers.RespondJSON(w, http.StatusOK, service)
}
