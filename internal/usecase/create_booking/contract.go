package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/payment"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.Booking, error)
	GetByProfessionalWithFilter(ctx context.Context, filter domain.ProfessionalBookingsFilter) ([]*domain.Booking, error)
	LockProfessionalCalendar(ctx context.Context, professionalID uuid.UUID) error
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceDescriptor, error)
}

// PaymentAuthorizer авторизация платежа (без списания)
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, amountInCents int64, token string) (*payment.Authorization, error)
	Void(ctx context.Context, reference string) error
}

// EventPublisher публикация доменных событий
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

// Metrics доменные счетчики
type Metrics interface {
	BookingCreated(serviceType string)
	BookingConflict(reason string)
	PaymentAuthorization(outcome string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
