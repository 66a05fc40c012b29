package get_delivery_estimate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/catalog/models"
)

type CatalogService interface {
	DeliveryEstimate(ctx context.Context, id uuid.UUID, from *time.Time) (*models.DeliveryEstimateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
