package booking_flow

import (
	"errors"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/cache/flows"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
)

// mapError переводит ошибки хранилища и редьюсера в доменную таксономию
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flows.ErrFlowNotFound):
		return domain.ErrFlowNotFound
	case errors.Is(err, flows.ErrFlowLocked):
		return domain.NewConflictError(domain.ErrFlowBusy, "")
	case errors.Is(err, orchestrator.ErrInvalidStep), errors.Is(err, orchestrator.ErrFlowFinished):
		return domain.NewConflictError(err, "")
	case errors.Is(err, flows.ErrRedis), errors.Is(err, flows.ErrDecode):
		return domain.NewUpstreamFailure("cache", err)
	}
	return err
}
