package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/messaging"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

type repoMock struct{ mock.Mock }

func (m *repoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *repoMock) GetByParticipant(ctx context.Context, filter domain.ParticipantBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]*domain.Booking)
	return b, args.Error(1)
}

func (m *repoMock) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishJSON(ctx context.Context, key string, v interface{}) error {
	return m.Called(ctx, key, v).Error(0)
}

type metricsStub struct{ transitions []string }

func (m *metricsStub) BookingTransition(from, to string) {
	m.transitions = append(m.transitions, from+" -> "+to)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *repoMock, *publisherMock, *metricsStub) {
	repo := &repoMock{}
	pub := &publisherMock{}
	met := &metricsStub{}
	svc := NewService(repo, pub, met, logger.NewNop())
	svc.timeProvider = fixedTime{t: now}
	return svc, repo, pub, met
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:               uuid.New(),
		ClientID:         uuid.New(),
		ProfessionalID:   uuid.New(),
		ServiceID:        uuid.New(),
		BookingStartTime: now.Add(24 * time.Hour),
		BookingEndTime:   ptr.Ptr(now.Add(25 * time.Hour)),
		Status:           domain.StatusPendingConfirmation,
	}
}

func TestTransition_ProfessionalConfirms(t *testing.T) {
	svc, repo, pub, met := newTestService()
	b := pendingBooking()
	actor := domain.Actor{ID: b.ProfessionalID, Role: domain.RoleProfessional}

	repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	repo.On("UpdateStatus", mock.Anything, b.ID, domain.StatusPendingConfirmation, domain.StatusConfirmed).Return(nil)
	pub.On("PublishJSON", mock.Anything, messaging.RoutingKeyBookingStatusChanged, mock.Anything).Return(nil)

	resp, err := svc.Transition(context.Background(), &models.TransitionRequest{
		Actor: actor, BookingID: b.ID, Status: "CONFIRMED",
	})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, now, resp.UpdatedAt)
	assert.Equal(t, []string{"PENDING_CONFIRMATION -> CONFIRMED"}, met.transitions)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestTransition_ClientCannotConfirm(t *testing.T) {
	svc, repo, _, _ := newTestService()
	b := pendingBooking()

	repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	_, err := svc.Transition(context.Background(), &models.TransitionRequest{
		Actor:     domain.Actor{ID: b.ClientID, Role: domain.RoleClient},
		BookingID: b.ID,
		Status:    "CONFIRMED",
	})
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_UnknownStatusIsValidation(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.Transition(context.Background(), &models.TransitionRequest{
		Actor:     domain.Actor{ID: uuid.New(), Role: domain.RoleClient},
		BookingID: uuid.New(),
		Status:    "ARCHIVED",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestTransition_NotFound(t *testing.T) {
	svc, repo, _, _ := newTestService()
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, bookingRepo.ErrBookingNotFound)

	_, err := svc.Transition(context.Background(), &models.TransitionRequest{
		Actor: domain.Actor{ID: uuid.New(), Role: domain.RoleClient}, BookingID: id, Status: "CANCELLED",
	})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestTransition_FinalizedBooking(t *testing.T) {
	svc, repo, _, _ := newTestService()
	b := pendingBooking()
	b.Status = domain.StatusCancelled
	repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	_, err := svc.Transition(context.Background(), &models.TransitionRequest{
		Actor: domain.Actor{ID: b.ClientID, Role: domain.RoleClient}, BookingID: b.ID, Status: "CANCELLED",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrBookingFinalized)
}

func TestTransition_LostRace(t *testing.T) {
	svc, repo, pub, met := newTestService()
	b := pendingBooking()
	repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	repo.On("UpdateStatus", mock.Anything, b.ID, domain.StatusPendingConfirmation, domain.StatusCancelled).
		Return(bookingRepo.ErrStatusChanged)

	_, err := svc.Transition(context.Background(), &models.TransitionRequest{
		Actor: domain.Actor{ID: b.ClientID, Role: domain.RoleClient}, BookingID: b.ID, Status: "CANCELLED",
	})
	assert.ErrorIs(t, err, domain.ErrStatusChanged)
	assert.Empty(t, met.transitions)
	pub.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransition_PublishFailureIsNotFatal(t *testing.T) {
	svc, repo, pub, _ := newTestService()
	b := pendingBooking()
	repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)
	repo.On("UpdateStatus", mock.Anything, b.ID, domain.StatusPendingConfirmation, domain.StatusCancelled).Return(nil)
	pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).Return(messaging.ErrPublish)

	resp, err := svc.Transition(context.Background(), &models.TransitionRequest{
		Actor: domain.Actor{ID: b.ClientID, Role: domain.RoleClient}, BookingID: b.ID, Status: "CANCELLED",
	})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
}

func TestGetByID_OnlyParticipants(t *testing.T) {
	svc, repo, _, _ := newTestService()
	b := pendingBooking()
	repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)

	resp, err := svc.GetByID(context.Background(), domain.Actor{ID: b.ProfessionalID, Role: domain.RoleProfessional}, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, resp.ID)

	_, err = svc.GetByID(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleClient}, b.ID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}

func TestGetUserBookings_StatusFilter(t *testing.T) {
	svc, repo, _, _ := newTestService()
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleClient}
	status := domain.StatusConfirmed

	repo.On("GetByParticipant", mock.Anything, domain.ParticipantBookingsFilter{UserID: actor.ID, Status: &status}).
		Return([]*domain.Booking{pendingBooking()}, nil)

	resp, err := svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		Actor: actor, Status: ptr.Ptr("CONFIRMED"),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)

	_, err = svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{
		Actor: actor, Status: ptr.Ptr("bogus"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
