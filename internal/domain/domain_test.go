package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDescriptor() *ServiceDescriptor {
	return &ServiceDescriptor{
		ID:                uuid.New(),
		ProfessionalID:    uuid.New(),
		Title:             "Logo design",
		Description:       "A vector logo with three revision rounds.",
		ServiceType:       ServiceTypeProjectBased,
		PricingType:       PricingFixed,
		DeliveryTimeValue: 2,
		DeliveryTimeUnit:  DeliveryWeeks,
		PriceInCents:      15000,
		IsActive:          true,
	}
}

func TestServiceDescriptor_Validate_OK(t *testing.T) {
	assert.NoError(t, validDescriptor().Validate())
}

func TestServiceDescriptor_Validate_ReportsEveryViolation(t *testing.T) {
	s := validDescriptor()
	s.ProfessionalID = uuid.Nil
	s.Title = "ab"
	s.Description = "too short"
	s.ServiceType = "HYBRID"
	s.PricingType = "DAILY"
	s.DeliveryTimeValue = 0
	s.DeliveryTimeUnit = "YEARS"
	s.PriceInCents = 499

	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{
		"professionalId", "title", "description", "serviceType",
		"pricingType", "deliveryTimeValue", "deliveryTimeUnit", "priceInCents",
	}, fields)
}

func TestServiceDescriptor_Validate_Boundaries(t *testing.T) {
	s := validDescriptor()
	s.Title = "abc"
	s.Description = strings.Repeat("d", 20)
	s.PriceInCents = 500
	s.DeliveryTimeValue = 1
	assert.NoError(t, s.Validate())

	s.Title = strings.Repeat("t", 101)
	s.Description = strings.Repeat("d", 1001)
	err := s.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 2)
}

func TestBooking_Interval(t *testing.T) {
	start := time.Date(2024, 5, 10, 10, 0, 0, 0, time.Local)
	end := start.Add(time.Hour)

	b := &Booking{BookingStartTime: start, BookingEndTime: &end}
	s, e := b.Interval()
	assert.Equal(t, start, s)
	assert.Equal(t, end, e)

	b.BookingEndTime = nil
	s, e = b.Interval()
	assert.Equal(t, start, s)
	assert.Equal(t, start, e)
}

func TestParseBookingStatus(t *testing.T) {
	st, err := ParseBookingStatus("CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	_, err = ParseBookingStatus("confirmed")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorKinds_AreDistinct(t *testing.T) {
	conflict := NewConflictError(ErrSlotUnavailable, "")
	auth := &AuthorizationError{ActorID: uuid.New(), Role: RoleClient, Action: "x"}
	upstream := NewUpstreamFailure("payment", errors.New("timeout"))
	declined := &PaymentDeclinedError{Reason: "insufficient funds"}

	assert.ErrorIs(t, conflict, ErrConflict)
	assert.ErrorIs(t, conflict, ErrSlotUnavailable)
	assert.NotErrorIs(t, conflict, ErrAuthorization)

	assert.ErrorIs(t, auth, ErrAuthorization)
	assert.NotErrorIs(t, auth, ErrConflict)

	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", upstream), ErrUpstream)
	assert.True(t, IsRetryable(upstream))
	assert.False(t, IsRetryable(conflict))

	assert.ErrorIs(t, declined, ErrPaymentDeclined)
	assert.NotErrorIs(t, declined, ErrUpstream)
}

func TestCheckTransition_Table(t *testing.T) {
	clientID := uuid.New()
	proID := uuid.New()
	client := Actor{ID: clientID, Role: RoleClient}
	pro := Actor{ID: proID, Role: RoleProfessional}

	allowed := map[Transition]bool{
		{From: StatusPendingConfirmation, To: StatusConfirmed, Role: RoleProfessional}: true,
		{From: StatusPendingConfirmation, To: StatusDeclined, Role: RoleProfessional}:  true,
		{From: StatusPendingConfirmation, To: StatusCancelled, Role: RoleClient}:       true,
		{From: StatusConfirmed, To: StatusCompleted, Role: RoleProfessional}:           true,
		{From: StatusConfirmed, To: StatusCancelled, Role: RoleClient}:                 true,
	}

	all := []BookingStatus{StatusPendingConfirmation, StatusConfirmed, StatusCompleted, StatusCancelled, StatusDeclined}
	for _, from := range all {
		for _, to := range all {
			for _, actor := range []Actor{client, pro} {
				name := fmt.Sprintf("%s_%s_%s", actor.Role, from, to)
				t.Run(name, func(t *testing.T) {
					b := &Booking{ID: uuid.New(), ClientID: clientID, ProfessionalID: proID, Status: from}
					err := CheckTransition(b, actor, to)

					switch {
					case from.IsTerminal():
						assert.ErrorIs(t, err, ErrConflict)
						assert.ErrorIs(t, err, ErrBookingFinalized)
					case allowed[Transition{From: from, To: to, Role: actor.Role}]:
						assert.NoError(t, err)
					default:
						var aerr *AuthorizationError
						require.True(t, errors.As(err, &aerr))
						assert.Equal(t, actor.ID, aerr.ActorID)
						assert.Equal(t, actor.Role, aerr.Role)
						assert.Contains(t, aerr.Action, string(to))
					}
				})
			}
		}
	}
}

func TestCheckTransition_NonParty(t *testing.T) {
	b := &Booking{ID: uuid.New(), ClientID: uuid.New(), ProfessionalID: uuid.New(), Status: StatusPendingConfirmation}
	stranger := Actor{ID: uuid.New(), Role: RoleProfessional}

	err := CheckTransition(b, stranger, StatusConfirmed)
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestCheckTransition_UnknownTargetFirst(t *testing.T) {
	b := &Booking{ID: uuid.New(), Status: StatusCompleted}
	err := CheckTransition(b, Actor{ID: uuid.New(), Role: RoleClient}, "ARCHIVED")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckTransition_FinalizedBeatsAuthorization(t *testing.T) {
	b := &Booking{ID: uuid.New(), ClientID: uuid.New(), ProfessionalID: uuid.New(), Status: StatusCancelled}
	stranger := Actor{ID: uuid.New(), Role: RoleClient}

	err := CheckTransition(b, stranger, StatusConfirmed)
	assert.ErrorIs(t, err, ErrBookingFinalized)
	assert.NotErrorIs(t, err, ErrAuthorization)
}
