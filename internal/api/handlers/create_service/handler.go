package create_service

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

// Handle POST /api/v1/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.CreateServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /services - Invalid request body: %v", err)
		handlers.RespondError(w, domain.NewValidationError(domain.Violation{Field: "body", Message: "malformed JSON"}))
		return
	}

	service, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /services - Failed to create service: professional_id=%s, error=%v", actor.ID, err)
		} else {
			h.logger.Warn("POST /services - Service rejected: professional_id=%s, error=%v", actor.ID, err)
		}
		return
	}

	h.logger.Info("POST /services - Service created: service_id=%s, professional_id=%s", service.ID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, service)
}
