package check_professional_deletion

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

// Handle POST /api/v1/professionals/{professionalId}/deletion-check
// 204 - профиль можно удалять, 409 - есть активные бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	professionalID, err := handlers.PathUUID(r, "professionalId")
	if err != nil {
		h.logger.Warn("POST /professionals/{id}/deletion-check - Invalid professional ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	if err := h.service.EnsureProfessionalDeletable(r.Context(), actor, professionalID); err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /professionals/{id}/deletion-check - Failed: professional_id=%s, error=%v", professionalID, err)
		} else {
			h.logger.Warn("POST /professionals/{id}/deletion-check - Deletion vetoed: professional_id=%s, error=%v", professionalID, err)
		}
		return
	}

	h.logger.Info("POST /professionals/{id}/deletion-check - Deletion allowed: professional_id=%s", professionalID)
	handlers.RespondNoContent(w)
}
