package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
)

const (
	msgInternalError   = "внутренняя ошибка сервера"
	msgValidation      = "некорректные данные"
	msgForbidden       = "доступ запрещен"
	msgBookingNotFound = "бронирование не найдено"
	msgServiceNotFound = "услуга не найдена"
	msgFlowNotFound    = "сессия бронирования не найдена"
	msgConflict        = "конфликт с текущим состоянием"
	msgPaymentDeclined = "платеж отклонен"
	msgUpstream        = "внешний сервис недоступен, повторите попытку"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error      string              `json:"error"`
	Code       string              `json:"code,omitempty"`
	Reason     string              `json:"reason,omitempty"`
	Violations []ViolationResponse `json:"violations,omitempty"`
	Retryable  bool                `json:"retryable,omitempty"`
}

// ViolationResponse нарушенное правило поля
type ViolationResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var conflictCodes = []struct {
	reason error
	code   string
}{
	{domain.ErrSlotUnavailable, "slot_unavailable"},
	{domain.ErrBookingFinalized, "booking_finalized"},
	{domain.ErrHasActiveBookings, "has_active_bookings"},
	{domain.ErrServiceInactive, "service_inactive"},
	{domain.ErrStatusChanged, "status_changed"},
	{domain.ErrFlowBusy, "flow_busy"},
	{orchestrator.ErrInvalidStep, "invalid_step"},
	{orchestrator.ErrFlowFinished, "flow_finished"},
}

// DecodeJSON декодирует тело запроса
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// DecodeAndValidate декодирует тело и проверяет validate-теги.
// Ошибка - всегда *domain.ValidationError.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return domain.NewValidationError(domain.Violation{Field: "body", Message: "malformed JSON: " + err.Error()})
	}
	if violations := domain.ValidateStruct(v); len(violations) > 0 {
		return domain.NewValidationError(violations...)
	}
	return nil
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// RespondNoContent отвечает 204
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondUnauthorized отправляет 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: message, Code: "unauthorized"})
}

// RespondError отвечает статусом, соответствующим классу доменной ошибки.
// Возвращает отправленный статус, чтобы обработчик выбрал уровень логирования.
func RespondError(w http.ResponseWriter, err error) int {
	status, body := errorBody(err)
	RespondJSON(w, status, body)
	return status
}

func errorBody(err error) (int, ErrorResponse) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		declinedErr   *domain.PaymentDeclinedError
	)

	switch {
	case errors.As(err, &validationErr):
		resp := ErrorResponse{Error: msgValidation, Code: "validation_failed"}
		for _, v := range validationErr.Violations {
			resp.Violations = append(resp.Violations, ViolationResponse{Field: v.Field, Message: v.Message})
		}
		return http.StatusBadRequest, resp

	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden, ErrorResponse{Error: msgForbidden, Code: "forbidden", Reason: err.Error()}

	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, ErrorResponse{Error: msgBookingNotFound, Code: "not_found"}
	case errors.Is(err, domain.ErrServiceNotFound):
		return http.StatusNotFound, ErrorResponse{Error: msgServiceNotFound, Code: "not_found"}
	case errors.Is(err, domain.ErrFlowNotFound):
		return http.StatusNotFound, ErrorResponse{Error: msgFlowNotFound, Code: "not_found"}

	case errors.As(err, &declinedErr):
		return http.StatusPaymentRequired, ErrorResponse{Error: msgPaymentDeclined, Code: "payment_declined", Reason: declinedErr.Reason}

	case errors.As(err, &conflictErr):
		return http.StatusConflict, ErrorResponse{Error: msgConflict, Code: conflictCode(conflictErr), Reason: conflictErr.Error()}

	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, ErrorResponse{Error: msgUpstream, Code: "upstream_failure", Retryable: true}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: msgInternalError, Code: "internal"}
}

func conflictCode(err *domain.ConflictError) string {
	for _, c := range conflictCodes {
		if errors.Is(err.Reason, c.reason) {
			return c.code
		}
	}
	return "conflict"
}
