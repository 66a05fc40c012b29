package has_active_bookings

import (
	"context"

	"github.com/google/uuid"
)

type CatalogService interface {
	HasActiveBookings(ctx context.Context, serviceID uuid.UUID) (bool, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
