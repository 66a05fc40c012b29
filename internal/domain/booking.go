package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPendingConfirmation BookingStatus = "PENDING_CONFIRMATION"
	StatusConfirmed           BookingStatus = "CONFIRMED"
	StatusCompleted           BookingStatus = "COMPLETED"
	StatusCancelled           BookingStatus = "CANCELLED"
	StatusDeclined            BookingStatus = "DECLINED"
)

// ParseBookingStatus converts a raw string into a known status.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(s)
	if !st.IsValid() {
		return "", NewValidationError(Violation{Field: "status", Message: fmt.Sprintf("unknown booking status %q", s)})
	}
	return st, nil
}

// IsValid reports whether s is one of the five lifecycle states
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPendingConfirmation, StatusConfirmed, StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	}
	return false
}

// IsActive returns true for statuses that occupy the professional's calendar
func (s BookingStatus) IsActive() bool {
	return s == StatusPendingConfirmation || s == StatusConfirmed
}

// IsTerminal returns true when no further transitions are accepted
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusDeclined
}

// Booking represents a reservation of a professional's service by a client
type Booking struct {
	ID             uuid.UUID
	ClientID       uuid.UUID
	ProfessionalID uuid.UUID
	ServiceID      uuid.UUID

	BookingStartTime time.Time
	BookingEndTime   *time.Time // nil for project-based bookings
	Status           BookingStatus

	// Snapshot of the service price at creation, never recalculated
	AmountPaidInCents int64
	Notes             *string
	PaymentReference  *string

	// Set for bookings created from a booking flow; unique across bookings
	IdempotencyKey *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking blocks the professional's calendar
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// IsTerminal returns true if the booking is finalized
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// Interval returns the half-open [start, end) interval of the booking.
// Bookings without an end are a zero-length instant at the start.
func (b *Booking) Interval() (time.Time, time.Time) {
	if b.BookingEndTime == nil {
		return b.BookingStartTime, b.BookingStartTime
	}
	return b.BookingStartTime, *b.BookingEndTime
}

// ProfessionalBookingsFilter фильтр для получения бронирований специалиста
type ProfessionalBookingsFilter struct {
	ProfessionalID uuid.UUID       // Обязательный параметр
	From           *time.Time      // Начало периода (включительно), nil - без ограничения
	To             *time.Time      // Конец периода (не включительно), nil - без ограничения
	Statuses       []BookingStatus // Пустой список = только активные
}

// ParticipantBookingsFilter фильтр бронирований, где пользователь клиент или специалист
type ParticipantBookingsFilter struct {
	UserID uuid.UUID
	Status *BookingStatus
}
