package booking_flow

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers"
	slotsHandler "github.com/m04kA/SMC-MarketplaceBooking/internal/api/handlers/get_available_slots"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	bookingFlow "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/booking_flow"
)

const msgUnauthorized = "требуется авторизация"

// Handler HTTP обработчики пошагового бронирования
type Handler struct {
	useCase BookingFlowUseCase
	logger  Logger
}

func NewHandler(useCase BookingFlowUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Start POST /api/v1/booking-flows
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req StartFlowRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /booking-flows - Invalid request body: %v", err)
		handlers.RespondError(w, err)
		return
	}

	view, err := h.useCase.Start(r.Context(), actor, req.ServiceID)
	if err != nil {
		h.fail(w, "POST /booking-flows", uuid.Nil, err)
		return
	}

	h.logger.Info("POST /booking-flows - Flow started: flow_id=%s, service_id=%s, user_id=%s", view.FlowID, req.ServiceID, actor.ID)
	handlers.RespondJSON(w, http.StatusCreated, view)
}

// Get GET /api/v1/booking-flows/{flowId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "GET /booking-flows/{id}", h.useCase.Get)
}

// UpdateDetails PUT /api/v1/booking-flows/{flowId}/details
func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req DetailsRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PUT /booking-flows/{id}/details - Invalid request body: %v", err)
		handlers.RespondError(w, err)
		return
	}

	h.step(w, r, "PUT /booking-flows/{id}/details", func(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*bookingFlow.View, error) {
		return h.useCase.UpdateDetails(ctx, actor, flowID, req.toDetails())
	})
}

// Next POST /api/v1/booking-flows/{flowId}/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "POST /booking-flows/{id}/next", h.useCase.Next)
}

// Prev POST /api/v1/booking-flows/{flowId}/prev
func (h *Handler) Prev(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "POST /booking-flows/{id}/prev", h.useCase.Prev)
}

// Confirm POST /api/v1/booking-flows/{flowId}/confirm
// 200 и в случае отказа платежа или конфликта: причина лежит в lastError, сессия остается на шаге payment.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /booking-flows/{id}/confirm - Invalid request body: %v", err)
		handlers.RespondError(w, err)
		return
	}

	h.step(w, r, "POST /booking-flows/{id}/confirm", func(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*bookingFlow.View, error) {
		return h.useCase.Confirm(ctx, actor, flowID, req.PaymentToken)
	})
}

// Slots GET /api/v1/booking-flows/{flowId}/slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	const route = "GET /booking-flows/{id}/slots"

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	flowID, err := handlers.PathUUID(r, "flowId")
	if err != nil {
		h.logger.Warn("%s - Invalid flow ID: %v", route, err)
		handlers.RespondError(w, err)
		return
	}

	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		h.logger.Warn("%s - Invalid date: %v", route, err)
		handlers.RespondError(w, err)
		return
	}

	result, err := h.useCase.Slots(r.Context(), actor, flowID, date)
	if err != nil {
		h.fail(w, route, flowID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, slotsHandler.FromUseCaseResponse(result))
}

func (h *Handler) step(
	w http.ResponseWriter,
	r *http.Request,
	route string,
	fn func(ctx context.Context, actor domain.Actor, flowID uuid.UUID) (*bookingFlow.View, error),
) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	flowID, err := handlers.PathUUID(r, "flowId")
	if err != nil {
		h.logger.Warn("%s - Invalid flow ID: %v", route, err)
		handlers.RespondError(w, err)
		return
	}

	view, err := fn(r.Context(), actor, flowID)
	if err != nil {
		h.fail(w, route, flowID, err)
		return
	}

	h.logger.Info("%s - OK: flow_id=%s, step=%s", route, flowID, view.Step)
	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) fail(w http.ResponseWriter, route string, flowID uuid.UUID, err error) {
	if status := handlers.RespondError(w, err); status >= http.StatusInternalServerError {
		h.logger.Error("%s - Failed: flow_id=%s, error=%v", route, flowID, err)
	} else {
		h.logger.Warn("%s - Rejected: flow_id=%s, status=%d, error=%v", route, flowID, status, err)
	}
}
