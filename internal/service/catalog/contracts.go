package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	Create(ctx context.Context, s *domain.ServiceDescriptor) (*domain.ServiceDescriptor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceDescriptor, error)
	Update(ctx context.Context, s *domain.ServiceDescriptor) (*domain.ServiceDescriptor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActiveBookingsChecker проверка наличия активных бронирований
type ActiveBookingsChecker interface {
	HasActiveByService(ctx context.Context, serviceID uuid.UUID) (bool, error)
	HasActiveByProfessional(ctx context.Context, professionalID uuid.UUID) (bool, error)
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
