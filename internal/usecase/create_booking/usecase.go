package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/messaging"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	servicesRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/services"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/integrations/payment"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/scheduling"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	payments     PaymentAuthorizer
	publisher    EventPublisher
	metrics      Metrics
	txManager    TransactionManager
	hours        domain.WorkingHours
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	payments PaymentAuthorizer,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	hours domain.WorkingHours,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		payments:     payments,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		hours:        hours,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Платеж авторизуется до записи. Вставка идет в сериализуемой транзакции:
// advisory-блокировка выстраивает писателей специалиста в очередь, повторная
// проверка отсекает уже видимые пересечения, а гонку с только что закоммиченной
// записью ловят exclusion constraint (23P01) и откат сериализации (40001).
// Обе ошибки возвращаются как конфликт слота, авторизация при этом снимается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%s, service=%s, start=%v",
		req.Actor.ID, req.ServiceID, req.BookingDateTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Бронировать может только клиент
	if req.Actor.Role != domain.RoleClient {
		uc.logger.Warn("CreateBooking: actor=%s with role=%s is not a client", req.Actor.ID, req.Actor.Role)
		return nil, &domain.AuthorizationError{ActorID: req.Actor.ID, Role: req.Actor.Role, Action: "create booking"}
	}

	// 3. Повторный запрос с тем же ключом возвращает уже созданное бронирование
	if req.IdempotencyKey != nil {
		existing, err := uc.findByIdempotencyKey(ctx, req)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			uc.logger.Info("CreateBooking: key=%s already used by booking=%s", *req.IdempotencyKey, existing.ID)
			return toResponse(existing), nil
		}
	}

	// 4. Получаем текущее время и услугу
	now := uc.timeProvider.Now()

	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, servicesRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%s not found", req.ServiceID)
			return nil, domain.ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%s is inactive", req.ServiceID)
		uc.metrics.BookingConflict(conflictServiceInactive)
		return nil, domain.NewConflictError(domain.ErrServiceInactive, service.ID.String())
	}

	// 5. Вычисляем интервал бронирования
	start, end, err := scheduleFor(service, req, now, uc.hours)
	if err != nil {
		uc.logger.Warn("CreateBooking: schedule validation failed: %v", err)
		return nil, err
	}

	// 6. Предварительная проверка слота, чтобы не авторизовать платеж за занятое время
	if end != nil {
		if err := uc.checkSlotFree(ctx, service, start, *end); err != nil {
			return nil, err
		}
	}

	// 7. Авторизуем платеж на текущую цену услуги
	auth, err := uc.authorize(ctx, service.PriceInCents, req.PaymentToken)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ClientID:          req.Actor.ID,
		ProfessionalID:    service.ProfessionalID,
		ServiceID:         service.ID,
		BookingStartTime:  start,
		BookingEndTime:    end,
		Status:            domain.StatusPendingConfirmation,
		AmountPaidInCents: service.PriceInCents,
		PaymentReference:  ptr.Ptr(auth.Reference),
		IdempotencyKey:    req.IdempotencyKey,
	}
	if notes := composeNotes(req); notes != "" {
		booking.Notes = ptr.Ptr(notes)
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 8. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if end != nil {
			// 8.1. Блокируем календарь специалиста до конца транзакции.
			// Коммит предыдущего владельца блокировки в снимок не попадет.
			if err := uc.bookingRepo.LockProfessionalCalendar(txCtx, service.ProfessionalID); err != nil {
				return err
			}

			// 8.2. Перечитываем пересекающиеся бронирования из снимка транзакции
			if err := uc.checkSlotFree(txCtx, service, start, *end); err != nil {
				return err
			}
		}

		// 8.3. Сохраняем бронирование
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return err
		}

		result = created
		return nil
	})

	if err != nil {
		uc.voidAuthorization(ctx, auth.Reference)
		if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) {
			return uc.replayDuplicate(ctx, req)
		}
		return nil, uc.mapWriteError(err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%s", result.ID)
	uc.metrics.BookingCreated(string(service.ServiceType))

	// 9. Публикуем событие после фиксации транзакции
	event := messaging.NewBookingCreatedEvent(result, uc.timeProvider.Now())
	if err := uc.publisher.PublishJSON(ctx, messaging.RoutingKeyBookingCreated, event); err != nil {
		uc.logger.Error("CreateBooking: failed to publish event for booking=%s: %v", result.ID, err)
	}

	return toResponse(result), nil
}

// findByIdempotencyKey ищет бронирование, уже созданное с ключом запроса. nil - не найдено.
func (uc *UseCase) findByIdempotencyKey(ctx context.Context, req *Request) (*domain.Booking, error) {
	existing, err := uc.bookingRepo.GetByIdempotencyKey(ctx, *req.IdempotencyKey)
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		return nil, nil
	}
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get booking by key=%s: %v", *req.IdempotencyKey, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	if existing.ClientID != req.Actor.ID {
		uc.logger.Warn("CreateBooking: key=%s belongs to another client", *req.IdempotencyKey)
		return nil, &domain.AuthorizationError{ActorID: req.Actor.ID, Role: req.Actor.Role, Action: "create booking"}
	}

	return existing, nil
}

// replayDuplicate отдает бронирование, вставленное параллельным запросом с тем же ключом
func (uc *UseCase) replayDuplicate(ctx context.Context, req *Request) (*Response, error) {
	existing, err := uc.findByIdempotencyKey(ctx, req)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		uc.logger.Error("CreateBooking: key=%s rejected as duplicate but booking not found", *req.IdempotencyKey)
		return nil, domain.NewUpstreamFailure("database", bookingRepo.ErrDuplicateIdempotencyKey)
	}

	uc.logger.Info("CreateBooking: key=%s already used by booking=%s", *req.IdempotencyKey, existing.ID)
	return toResponse(existing), nil
}

// checkSlotFree ищет активное бронирование специалиста, пересекающее [start, end)
func (uc *UseCase) checkSlotFree(ctx context.Context, service *domain.ServiceDescriptor, start, end time.Time) error {
	bookings, err := uc.bookingRepo.GetByProfessionalWithFilter(ctx, domain.ProfessionalBookingsFilter{
		ProfessionalID: service.ProfessionalID,
		From:           &start,
		To:             &end,
		Statuses:       domain.ActiveStatuses,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
		return domain.NewUpstreamFailure("database", err)
	}

	if conflict := scheduling.FindConflict(start, end, bookings); conflict != nil {
		uc.logger.Warn("CreateBooking: slot %s is taken by booking=%s", start.Format(time.RFC3339), conflict.ID)
		uc.metrics.BookingConflict(conflictSlotUnavailable)
		return domain.NewConflictError(domain.ErrSlotUnavailable, start.Format(time.RFC3339))
	}

	return nil
}

func (uc *UseCase) authorize(ctx context.Context, amountInCents int64, token string) (*payment.Authorization, error) {
	auth, err := uc.payments.Authorize(ctx, amountInCents, token)
	if err != nil {
		uc.logger.Error("CreateBooking: payment authorization failed: %v", err)
		uc.metrics.PaymentAuthorization(payment.OutcomeError)
		return nil, domain.NewUpstreamFailure("payment", err)
	}

	uc.metrics.PaymentAuthorization(auth.Outcome())
	if !auth.Approved {
		uc.logger.Warn("CreateBooking: payment declined: %s", auth.Reason)
		return nil, &domain.PaymentDeclinedError{Reason: auth.Reason}
	}

	return auth, nil
}

// mapWriteError переводит ошибки транзакции в доменную таксономию
func (uc *UseCase) mapWriteError(err error) error {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return err
	case errors.Is(err, bookingRepo.ErrSlotNotAvailable),
		errors.Is(err, bookingRepo.ErrSerialization),
		errors.Is(err, txmanager.ErrSerializationFailure):
		uc.logger.Warn("CreateBooking: lost concurrent write: %v", err)
		uc.metrics.BookingConflict(conflictSlotUnavailable)
		return domain.NewConflictError(domain.ErrSlotUnavailable, "slot was taken concurrently")
	case errors.Is(err, domain.ErrUpstream):
		return err
	}

	uc.logger.Error("CreateBooking: failed to create booking: %v", err)
	return domain.NewUpstreamFailure("database", fmt.Errorf("create booking: %w", err))
}

// voidAuthorization снимает авторизацию, если бронирование не сохранилось
func (uc *UseCase) voidAuthorization(ctx context.Context, reference string) {
	if err := uc.payments.Void(context.WithoutCancel(ctx), reference); err != nil {
		uc.logger.Error("CreateBooking: failed to void payment %s: %v", reference, err)
		return
	}
	uc.logger.Info("CreateBooking: payment %s voided", reference)
}
