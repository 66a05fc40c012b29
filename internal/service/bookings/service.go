package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/messaging"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
)

// Service сервис чтения бронирований и переходов жизненного цикла
type Service struct {
	bookingRepo  BookingRepository
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование могут только его участники.
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for actor=%s", id, actor.ID)

	booking, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !actor.IsParticipant(booking) {
		s.logger.Warn("GetByID: actor=%s is not a participant of booking id=%s", actor.ID, id)
		return nil, &domain.AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: "view booking"}
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает бронирования, где актор клиент или специалист.
// Опционально фильтрует по статусу.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for actor=%s, status=%v", req.Actor.ID, req.Status)

	filter := domain.ParticipantBookingsFilter{UserID: req.Actor.ID}
	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s", *req.Status)
			return nil, err
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByParticipant(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for actor=%s: %v", req.Actor.ID, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	s.logger.Info("GetUserBookings: fetched %d bookings for actor=%s", len(bookings), req.Actor.ID)
	return models.FromDomainBookingList(bookings), nil
}

// Transition переводит бронирование в новый статус.
// Порядок проверок: неизвестный статус, не найдено, финальный статус,
// не участник, нет в таблице переходов, compare-and-set.
func (s *Service) Transition(ctx context.Context, req *models.TransitionRequest) (*models.BookingResponse, error) {
	s.logger.Info("TransitionBooking: booking=%s actor=%s role=%s target=%s",
		req.BookingID, req.Actor.ID, req.Actor.Role, req.Status)

	target, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("TransitionBooking: %v", err)
		return nil, err
	}

	booking, err := s.load(ctx, "TransitionBooking", req.BookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckTransition(booking, req.Actor, target); err != nil {
		s.logger.Warn("TransitionBooking: rejected booking=%s: %v", req.BookingID, err)
		return nil, err
	}

	from := booking.Status
	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, from, target); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusChanged) {
			s.logger.Warn("TransitionBooking: booking=%s lost status race from=%s", req.BookingID, from)
			return nil, domain.NewConflictError(domain.ErrStatusChanged, fmt.Sprintf("booking %s is no longer %s", booking.ID, from))
		}
		s.logger.Error("TransitionBooking: failed to update booking=%s: %v", req.BookingID, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	now := s.timeProvider.Now()
	booking.Status = target
	booking.UpdatedAt = now

	s.metrics.BookingTransition(string(from), string(target))

	event := messaging.NewBookingStatusChangedEvent(booking, from, req.Actor, now)
	if err := s.publisher.PublishJSON(ctx, messaging.RoutingKeyBookingStatusChanged, event); err != nil {
		s.logger.Error("TransitionBooking: failed to publish event for booking=%s: %v", booking.ID, err)
	}

	s.logger.Info("TransitionBooking: booking=%s %s -> %s", booking.ID, from, target)
	return models.FromDomainBooking(booking), nil
}

func (s *Service) load(ctx context.Context, op string, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, domain.ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}
	return booking, nil
}
