package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// PathUUID читает UUID из переменной маршрута
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, domain.NewValidationError(domain.Violation{Field: name, Message: "must be a UUID"})
	}
	return id, nil
}

// QueryDate читает обязательную дату YYYY-MM-DD из query параметра в локальной зоне сервера
func QueryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, domain.NewValidationError(domain.Violation{Field: name, Message: "is required"})
	}

	date, err := time.ParseInLocation(domain.DateFormat, raw, time.Local)
	if err != nil {
		return time.Time{}, domain.NewValidationError(domain.Violation{Field: name, Message: "expected YYYY-MM-DD"})
	}
	return date, nil
}
