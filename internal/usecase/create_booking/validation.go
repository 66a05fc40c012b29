package create_booking

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/scheduling"
)

// validateRequest валидирует входные данные запроса.
// Возвращает все нарушения сразу.
func validateRequest(req *Request) error {
	var violations []domain.Violation

	if req.ServiceID == uuid.Nil {
		violations = append(violations, domain.Violation{Field: "serviceId", Message: "is required"})
	}

	if strings.TrimSpace(req.PaymentToken) == "" {
		violations = append(violations, domain.Violation{Field: "paymentToken", Message: "is required"})
	}

	if n := utf8.RuneCountInString(composeNotes(req)); n > domain.MaxNotesLength {
		violations = append(violations, domain.Violation{
			Field:   "notes",
			Message: fmt.Sprintf("must be at most %d characters in total", domain.MaxNotesLength),
		})
	}

	if len(violations) > 0 {
		return domain.NewValidationError(violations...)
	}
	return nil
}

// scheduleFor вычисляет интервал бронирования по типу услуги.
// TIME_BASED: начало совпадает с началом слота рабочего окна и лежит в будущем, конец = начало + длина слота.
// Рабочее окно задано в локальной зоне сервиса, поэтому начало приводится к time.Local до проверок.
// PROJECT_BASED: начало = now, конца нет.
func scheduleFor(service *domain.ServiceDescriptor, req *Request, now time.Time, hours domain.WorkingHours) (time.Time, *time.Time, error) {
	if !service.IsTimeBased() {
		if utf8.RuneCountInString(strings.TrimSpace(req.ProjectRequirements)) < domain.MinProjectRequirementsLength {
			return time.Time{}, nil, domain.NewValidationError(domain.Violation{
				Field:   "projectRequirements",
				Message: fmt.Sprintf("must be at least %d characters", domain.MinProjectRequirementsLength),
			})
		}
		return now, nil, nil
	}

	if req.BookingDateTime == nil {
		return time.Time{}, nil, domain.NewValidationError(domain.Violation{
			Field: "bookingDateTime", Message: "is required for TIME_BASED services",
		})
	}

	start := req.BookingDateTime.In(time.Local)
	var violations []domain.Violation

	if !start.After(now) {
		violations = append(violations, domain.Violation{Field: "bookingDateTime", Message: "must be in the future"})
	}

	if !scheduling.IsSlotStart(start, hours) {
		violations = append(violations, domain.Violation{
			Field: "bookingDateTime",
			Message: fmt.Sprintf("must start a %s slot between %02d:00 and %02d:00",
				hours.SlotLength, hours.StartHour, hours.EndHour),
		})
	}

	if len(violations) > 0 {
		return time.Time{}, nil, domain.NewValidationError(violations...)
	}

	end := start.Add(hours.SlotLength)
	return start, &end, nil
}

// composeNotes склеивает требования, пожелания и заметки клиента
func composeNotes(req *Request) string {
	parts := make([]string, 0, 3)
	for _, p := range []struct{ label, text string }{
		{"Project requirements", req.ProjectRequirements},
		{"Special requests", req.SpecialRequests},
		{"Client notes", req.ClientNotes},
	} {
		if text := strings.TrimSpace(p.text); text != "" {
			parts = append(parts, p.label+": "+text)
		}
	}
	return strings.Join(parts, "\n\n")
}
