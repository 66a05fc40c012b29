package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByParticipant(ctx context.Context, filter domain.ParticipantBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error
}

// EventPublisher публикация доменных событий
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

// Metrics доменные счетчики
type Metrics interface {
	BookingTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time { return time.Now() }
