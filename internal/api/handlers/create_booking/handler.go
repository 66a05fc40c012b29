package create_booking

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
)

const msgUnauthorized = "требуется авторизация"

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: user_id=%s, error=%v", actor.ID, err)
		handlers.RespondError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor))
	if err != nil {
		if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%s, service_id=%s, error=%v",
				actor.ID, req.ServiceID, err)
		} else {
			h.logger.Warn("POST /bookings - Booking rejected: user_id=%s, service_id=%s, status=%d, error=%v",
				actor.ID, req.ServiceID, status, err)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, user_id=%s, service_id=%s",
		result.ID, actor.ID, req.ServiceID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
