package check_professional_deletion

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

type CatalogService interface {
	EnsureProfessionalDeletable(ctx context.Context, actor domain.Actor, professionalID uuid.UUID) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
