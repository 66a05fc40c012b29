package delete_service

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/catalog/models"
)

type CatalogService interface {
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) (*models.DeleteServiceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
