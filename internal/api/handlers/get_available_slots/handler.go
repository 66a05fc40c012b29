package get_available_slots

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/professionals/{professionalId}/services/{serviceId}/available-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	professionalID, err := handlers.PathUUID(r, "professionalId")
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/services/{id}/available-slots - Invalid professional ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	serviceID, err := handlers.PathUUID(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/services/{id}/available-slots - Invalid service ID: %v", err)
		handlers.RespondError(w, err)
		return
	}

	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		h.logger.Warn("GET /professionals/{id}/services/{id}/available-slots - Invalid date: %v", err)
		handlers.RespondError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		ProfessionalID: professionalID,
		ServiceID:      serviceID,
		Date:           date,
	})
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /professionals/{id}/services/{id}/available-slots - Failed to get slots: professional_id=%s, service_id=%s, error=%v",
				professionalID, serviceID, err)
		} else {
			h.logger.Warn("GET /professionals/{id}/services/{id}/available-slots - Rejected: professional_id=%s, service_id=%s, error=%v",
				professionalID, serviceID, err)
		}
		return
	}

	h.logger.Info("GET /professionals/{id}/services/{id}/available-slots - Slots retrieved successfully: professional_id=%s, service_id=%s, slots_count=%d",
		professionalID, serviceID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
