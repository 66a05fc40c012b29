package get_available_slots

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	servicesRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/services"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/scheduling"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	hours        domain.WorkingHours
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	hours domain.WorkingHours,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		hours:        hours,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Слоты вычисляются заново на каждый запрос и нигде не кешируются.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: professional=%s, service=%s, date=%s",
		req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, servicesRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%s not found", req.ServiceID)
			return nil, domain.ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	// 4. Проверяем владельца, тип и активность услуги
	if err := validateService(service, req.ProfessionalID); err != nil {
		uc.logger.Warn("GetAvailableSlots: service id=%s rejected: %v", req.ServiceID, err)
		return nil, err
	}

	// 5. Получаем активные бронирования специалиста на этот день
	from, to := dayWindow(req.Date)
	bookings, err := uc.bookingRepo.GetByProfessionalWithFilter(ctx, domain.ProfessionalBookingsFilter{
		ProfessionalID: req.ProfessionalID,
		From:           &from,
		To:             &to,
		Statuses:       domain.ActiveStatuses,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	// 6. Генерируем слоты рабочего окна и вычитаем занятые интервалы
	resolved := scheduling.ResolveAvailability(scheduling.GenerateDaySlots(req.Date, uc.hours), bookings)
	slots := toSlots(resolved, now)

	uc.logger.Info("GetAvailableSlots: generated %d slots for professional=%s, service=%s, date=%s",
		len(slots), req.ProfessionalID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:           from,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		Slots:          slots,
	}, nil
}
