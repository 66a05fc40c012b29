// Package scheduling holds the pure calendar arithmetic of the booking engine:
// delivery estimates, slot generation and availability resolution. Nothing here does I/O.
package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// ComputeDeliveryDate adds value units to now.
// DAYS, WEEKS and MONTHS move the calendar date through time.AddDate, so
// month overflow normalises forward: 2024-01-31 + 1 MONTH = 2024-03-02.
// MINUTES and HOURS add a fixed duration.
func ComputeDeliveryDate(now time.Time, value int, unit domain.DeliveryTimeUnit) (time.Time, error) {
	if value < domain.MinDeliveryTimeValue {
		return time.Time{}, domain.NewValidationError(domain.Violation{
			Field:   "deliveryTimeValue",
			Message: fmt.Sprintf("must be at least %d", domain.MinDeliveryTimeValue),
		})
	}

	switch unit {
	case domain.DeliveryMinutes:
		return now.Add(time.Duration(value) * time.Minute), nil
	case domain.DeliveryHours:
		return now.Add(time.Duration(value) * time.Hour), nil
	case domain.DeliveryDays:
		return now.AddDate(0, 0, value), nil
	case domain.DeliveryWeeks:
		return now.AddDate(0, 0, 7*value), nil
	case domain.DeliveryMonths:
		return now.AddDate(0, value, 0), nil
	}

	return time.Time{}, domain.NewValidationError(domain.Violation{
		Field:   "deliveryTimeUnit",
		Message: fmt.Sprintf("unknown unit %q", unit),
	})
}
