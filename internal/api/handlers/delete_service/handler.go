package delete_service

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
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

// Handle DELETE /api/v1/services/{serviceId}
// 204 - услуга удалена, 200 с archived=true - деактивирована из-за истории бронирований
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	serviceID, err := handlers.PathUUID(r, "serviceId")
	if err != nil {
		h.logger.Warn("DELETE /services/{id} - Invalid service ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	result, err := h.service.Delete(r.Context(), actor, serviceID)
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("DELETE /services/{id} - Failed to delete service: service_id=%s, error=%v", serviceID, err)
		} else {
			h.logger.Warn("DELETE /services/{id} - Delete rejected: service_id=%s, user_id=%s, error=%v", serviceID, actor.ID, err)
		}
		return
	}

	if result.Archived {
		h.logger.Info("DELETE /services/{id} - Service archived: service_id=%s", serviceID)
		handlers.RespondJSON(w, http.StatusOK, result)
		return
	}

	h.logger.Info("DELETE /services/{id} - Service deleted: service_id=%s", serviceID)
	handlers.RespondNoContent(w)
}
