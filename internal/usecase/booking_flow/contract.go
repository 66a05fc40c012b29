package booking_flow

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
)

// FlowStore хранилище сессий booking flow
type FlowStore interface {
	Save(ctx context.Context, state orchestrator.State) error
	Load(ctx context.Context, flowID uuid.UUID) (orchestrator.State, error)
	Delete(ctx context.Context, flowID uuid.UUID) error
	Lock(ctx context.Context, flowID uuid.UUID) (func(), error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceDescriptor, error)
}

// BookingCreator создание бронирования (авторизация платежа + запись)
type BookingCreator interface {
	Execute(ctx context.Context, req *create_booking.Request) (*create_booking.Response, error)
}

// SlotsProvider получение слотов на день
type SlotsProvider interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
