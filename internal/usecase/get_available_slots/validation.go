package get_available_slots

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	var violations []domain.Violation

	if req.ProfessionalID == uuid.Nil {
		violations = append(violations, domain.Violation{Field: "professionalId", Message: "is required"})
	}

	if req.ServiceID == uuid.Nil {
		violations = append(violations, domain.Violation{Field: "serviceId", Message: "is required"})
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		violations = append(violations, domain.Violation{Field: "date", Message: "is required"})
	}

	if len(violations) > 0 {
		return domain.NewValidationError(violations...)
	}
	return nil
}

// validateService проверяет, что по услуге можно выбирать слоты
func validateService(service *domain.ServiceDescriptor, professionalID uuid.UUID) error {
	// Услуга другого специалиста для этого пути не существует
	if service.ProfessionalID != professionalID {
		return domain.ErrServiceNotFound
	}

	if !service.IsTimeBased() {
		return domain.NewValidationError(domain.Violation{
			Field:   "serviceId",
			Message: "slots exist only for TIME_BASED services",
		})
	}

	if !service.IsActive {
		return domain.NewConflictError(domain.ErrServiceInactive, service.ID.String())
	}

	return nil
}
