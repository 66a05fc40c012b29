package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	servicesRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/services"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/scheduling"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/catalog/models"
)

// Service сервис каталога услуг специалистов
type Service struct {
	serviceRepo  ServiceRepository
	bookings     ActiveBookingsChecker
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(
	serviceRepo ServiceRepository,
	bookings ActiveBookingsChecker,
	logger Logger,
) *Service {
	return &Service{
		serviceRepo:  serviceRepo,
		bookings:     bookings,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// Create создает услугу от имени специалиста.
// Возвращает ValidationError со всеми нарушенными правилами.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("CreateService: professional=%s title=%q type=%s", actor.ID, req.Title, req.ServiceType)

	if actor.Role != domain.RoleProfessional {
		s.logger.Warn("CreateService: actor=%s with role=%s is not a professional", actor.ID, actor.Role)
		return nil, &domain.AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: "create service"}
	}

	descriptor := &domain.ServiceDescriptor{
		ProfessionalID:    actor.ID,
		Title:             req.Title,
		Description:       req.Description,
		ServiceType:       domain.ServiceType(req.ServiceType),
		PricingType:       domain.PricingType(req.PricingType),
		DeliveryTimeValue: req.DeliveryTimeValue,
		DeliveryTimeUnit:  domain.DeliveryTimeUnit(req.DeliveryTimeUnit),
		PriceInCents:      req.PriceInCents,
		IsActive:          req.IsActive == nil || *req.IsActive,
	}

	if err := descriptor.Validate(); err != nil {
		s.logger.Warn("CreateService: validation failed: %v", err)
		return nil, err
	}

	created, err := s.serviceRepo.Create(ctx, descriptor)
	if err != nil {
		s.logger.Error("CreateService: failed to save service: %v", err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	s.logger.Info("CreateService: created service id=%s", created.ID)
	return models.FromDomainService(created), nil
}

// GetByID получает услугу по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceResponse, error) {
	descriptor, err := s.load(ctx, "GetService", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainService(descriptor), nil
}

// Update обновляет услугу. Доступно только владельцу.
// Изменение цены не затрагивает существующие бронирования.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *models.UpdateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("UpdateService: service=%s by actor=%s", id, actor.ID)

	descriptor, err := s.load(ctx, "UpdateService", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwner(actor, descriptor, "update service"); err != nil {
		s.logger.Warn("UpdateService: %v", err)
		return nil, err
	}

	req.Apply(descriptor)
	if err := descriptor.Validate(); err != nil {
		s.logger.Warn("UpdateService: validation failed: %v", err)
		return nil, err
	}

	updated, err := s.serviceRepo.Update(ctx, descriptor)
	if err != nil {
		if errors.Is(err, servicesRepo.ErrServiceNotFound) {
			return nil, domain.ErrServiceNotFound
		}
		s.logger.Error("UpdateService: failed to update service=%s: %v", id, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}

	return models.FromDomainService(updated), nil
}

// Delete удаляет услугу. Доступно только владельцу.
// Активные бронирования блокируют удаление; при наличии только завершенной
// истории услуга деактивируется.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.DeleteServiceResponse, error) {
	s.logger.Info("DeleteService: service=%s by actor=%s", id, actor.ID)

	descriptor, err := s.load(ctx, "DeleteService", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkOwner(actor, descriptor, "delete service"); err != nil {
		s.logger.Warn("DeleteService: %v", err)
		return nil, err
	}

	hasActive, err := s.HasActiveBookings(ctx, id)
	if err != nil {
		return nil, err
	}
	if hasActive {
		s.logger.Warn("DeleteService: service=%s has active bookings", id)
		return nil, domain.NewConflictError(domain.ErrHasActiveBookings, fmt.Sprintf("service %s", id))
	}

	err = s.serviceRepo.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("DeleteService: deleted service=%s", id)
		return &models.DeleteServiceResponse{}, nil
	case errors.Is(err, servicesRepo.ErrServiceNotFound):
		return nil, domain.ErrServiceNotFound
	case errors.Is(err, servicesRepo.ErrHasBookings):
		descriptor.IsActive = false
		if _, err := s.serviceRepo.Update(ctx, descriptor); err != nil {
			s.logger.Error("DeleteService: failed to archive service=%s: %v", id, err)
			return nil, domain.NewUpstreamFailure("database", err)
		}
		s.logger.Info("DeleteService: service=%s has booking history, archived", id)
		return &models.DeleteServiceResponse{Archived: true}, nil
	default:
		s.logger.Error("DeleteService: failed to delete service=%s: %v", id, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}
}

// DeliveryEstimate расчетная дата сдачи работы от момента from
func (s *Service) DeliveryEstimate(ctx context.Context, id uuid.UUID, from *time.Time) (*models.DeliveryEstimateResponse, error) {
	descriptor, err := s.load(ctx, "DeliveryEstimate", id)
	if err != nil {
		return nil, err
	}

	start := s.timeProvider.Now()
	if from != nil {
		start = *from
	}

	estimate, err := scheduling.ComputeDeliveryDate(start, descriptor.DeliveryTimeValue, descriptor.DeliveryTimeUnit)
	if err != nil {
		s.logger.Warn("DeliveryEstimate: service=%s: %v", id, err)
		return nil, err
	}

	return &models.DeliveryEstimateResponse{
		ServiceID:         id,
		From:              start,
		EstimatedDelivery: estimate,
	}, nil
}

// HasActiveBookings есть ли у услуги бронирования в статусах PENDING_CONFIRMATION или CONFIRMED
func (s *Service) HasActiveBookings(ctx context.Context, serviceID uuid.UUID) (bool, error) {
	has, err := s.bookings.HasActiveByService(ctx, serviceID)
	if err != nil {
		s.logger.Error("HasActiveBookings: service=%s: %v", serviceID, err)
		return false, domain.NewUpstreamFailure("database", err)
	}
	return has, nil
}

// EnsureProfessionalDeletable проверяет, что профиль специалиста можно удалить
func (s *Service) EnsureProfessionalDeletable(ctx context.Context, actor domain.Actor, professionalID uuid.UUID) error {
	s.logger.Info("EnsureProfessionalDeletable: professional=%s by actor=%s", professionalID, actor.ID)

	if actor.Role != domain.RoleProfessional || actor.ID != professionalID {
		return &domain.AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: "delete professional profile"}
	}

	has, err := s.bookings.HasActiveByProfessional(ctx, professionalID)
	if err != nil {
		s.logger.Error("EnsureProfessionalDeletable: professional=%s: %v", professionalID, err)
		return domain.NewUpstreamFailure("database", err)
	}
	if has {
		s.logger.Warn("EnsureProfessionalDeletable: professional=%s has active bookings", professionalID)
		return domain.NewConflictError(domain.ErrHasActiveBookings, fmt.Sprintf("professional %s", professionalID))
	}
	return nil
}

func (s *Service) load(ctx context.Context, op string, id uuid.UUID) (*domain.ServiceDescriptor, error) {
	descriptor, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, servicesRepo.ErrServiceNotFound) {
			s.logger.Warn("%s: service id=%s not found", op, id)
			return nil, domain.ErrServiceNotFound
		}
		s.logger.Error("%s: failed to get service id=%s: %v", op, id, err)
		return nil, domain.NewUpstreamFailure("database", err)
	}
	return descriptor, nil
}

func (s *Service) checkOwner(actor domain.Actor, descriptor *domain.ServiceDescriptor, action string) error {
	if actor.Role != domain.RoleProfessional || actor.ID != descriptor.ProfessionalID {
		return &domain.AuthorizationError{ActorID: actor.ID, Role: actor.Role, Action: action}
	}
	return nil
}
