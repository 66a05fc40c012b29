package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	servicesRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/services"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/service/catalog/models"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/ptr"
)

type serviceRepoMock struct{ mock.Mock }

func (m *serviceRepoMock) Create(ctx context.Context, s *domain.ServiceDescriptor) (*domain.ServiceDescriptor, error) {
	args := m.Called(ctx, s)
	out, _ := args.Get(0).(*domain.ServiceDescriptor)
	return out, args.Error(1)
}

func (m *serviceRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceDescriptor, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*domain.ServiceDescriptor)
	return out, args.Error(1)
}

func (m *serviceRepoMock) Update(ctx context.Context, s *domain.ServiceDescriptor) (*domain.ServiceDescriptor, error) {
	args := m.Called(ctx, s)
	out, _ := args.Get(0).(*domain.ServiceDescriptor)
	return out, args.Error(1)
}

func (m *serviceRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type bookingsMock struct{ mock.Mock }

func (m *bookingsMock) HasActiveByService(ctx context.Context, serviceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, serviceID)
	return args.Bool(0), args.Error(1)
}

func (m *bookingsMock) HasActiveByProfessional(ctx context.Context, professionalID uuid.UUID) (bool, error) {
	args := m.Called(ctx, professionalID)
	return args.Bool(0), args.Error(1)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func newTestService() (*Service, *serviceRepoMock, *bookingsMock) {
	repo := &serviceRepoMock{}
	bookings := &bookingsMock{}
	return NewService(repo, bookings, logger.NewNop()), repo, bookings
}

func validDescriptor(owner uuid.UUID) *domain.ServiceDescriptor {
	return &domain.ServiceDescriptor{
		ID:                uuid.New(),
		ProfessionalID:    owner,
		Title:             "Logo design",
		Description:       "A complete logo package with three concepts",
		ServiceType:       domain.ServiceTypeTimeBased,
		PricingType:       domain.PricingFixed,
		DeliveryTimeValue: 1,
		DeliveryTimeUnit:  domain.DeliveryHours,
		PriceInCents:      5000,
		IsActive:          true,
	}
}

func TestCreate_ReportsEveryViolation(t *testing.T) {
	svc, repo, _ := newTestService()
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleProfessional}

	_, err := svc.Create(context.Background(), actor, &models.CreateServiceRequest{
		Title:             "ab",
		Description:       "too short",
		ServiceType:       "TIME_BASED",
		PricingType:       "FIXED",
		DeliveryTimeValue: 0,
		DeliveryTimeUnit:  "HOURS",
		PriceInCents:      499,
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"title", "description", "deliveryTimeValue", "priceInCents"}, fields)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_OnlyProfessionals(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleClient}, &models.CreateServiceRequest{})
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}

func TestCreate_DefaultsToActive(t *testing.T) {
	svc, repo, _ := newTestService()
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleProfessional}

	repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.ServiceDescriptor) bool {
		return s.IsActive && s.ProfessionalID == actor.ID
	})).Return(validDescriptor(actor.ID), nil)

	resp, err := svc.Create(context.Background(), actor, &models.CreateServiceRequest{
		Title:             "Logo design",
		Description:       "A complete logo package with three concepts",
		ServiceType:       "PROJECT_BASED",
		PricingType:       "FIXED",
		DeliveryTimeValue: 2,
		DeliveryTimeUnit:  "WEEKS",
		PriceInCents:      500,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	repo.AssertExpectations(t)
}

func TestUpdate_NonOwnerRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	d := validDescriptor(uuid.New())
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)

	_, err := svc.Update(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleProfessional}, d.ID,
		&models.UpdateServiceRequest{PriceInCents: ptr.Ptr(int64(9000))})
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_PriceBelowMinimum(t *testing.T) {
	svc, repo, _ := newTestService()
	owner := uuid.New()
	d := validDescriptor(owner)
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)

	_, err := svc.Update(context.Background(), domain.Actor{ID: owner, Role: domain.RoleProfessional}, d.ID,
		&models.UpdateServiceRequest{PriceInCents: ptr.Ptr(int64(100))})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDelete_VetoedByActiveBookings(t *testing.T) {
	svc, repo, bookings := newTestService()
	owner := uuid.New()
	d := validDescriptor(owner)
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)
	bookings.On("HasActiveByService", mock.Anything, d.ID).Return(true, nil)

	_, err := svc.Delete(context.Background(), domain.Actor{ID: owner, Role: domain.RoleProfessional}, d.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrHasActiveBookings)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDelete_ArchivesWhenHistoryExists(t *testing.T) {
	svc, repo, bookings := newTestService()
	owner := uuid.New()
	d := validDescriptor(owner)
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)
	bookings.On("HasActiveByService", mock.Anything, d.ID).Return(false, nil)
	repo.On("Delete", mock.Anything, d.ID).Return(servicesRepo.ErrHasBookings)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.ServiceDescriptor) bool {
		return !s.IsActive
	})).Return(d, nil)

	resp, err := svc.Delete(context.Background(), domain.Actor{ID: owner, Role: domain.RoleProfessional}, d.ID)
	require.NoError(t, err)
	assert.True(t, resp.Archived)
	repo.AssertExpectations(t)
}

func TestDelete_HardDelete(t *testing.T) {
	svc, repo, bookings := newTestService()
	owner := uuid.New()
	d := validDescriptor(owner)
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)
	bookings.On("HasActiveByService", mock.Anything, d.ID).Return(false, nil)
	repo.On("Delete", mock.Anything, d.ID).Return(nil)

	resp, err := svc.Delete(context.Background(), domain.Actor{ID: owner, Role: domain.RoleProfessional}, d.ID)
	require.NoError(t, err)
	assert.False(t, resp.Archived)
}

func TestDeliveryEstimate_MonthOverflow(t *testing.T) {
	svc, repo, _ := newTestService()
	d := validDescriptor(uuid.New())
	d.DeliveryTimeUnit = domain.DeliveryMonths
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)

	from := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	resp, err := svc.DeliveryEstimate(context.Background(), d.ID, &from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), resp.EstimatedDelivery)
}

func TestDeliveryEstimate_DefaultsToNow(t *testing.T) {
	svc, repo, _ := newTestService()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.timeProvider = fixedTime{t: now}
	d := validDescriptor(uuid.New())
	d.DeliveryTimeValue = 3
	d.DeliveryTimeUnit = domain.DeliveryDays
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)

	resp, err := svc.DeliveryEstimate(context.Background(), d.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 3), resp.EstimatedDelivery)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, servicesRepo.ErrServiceNotFound)

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestEnsureProfessionalDeletable(t *testing.T) {
	svc, _, bookings := newTestService()
	pro := uuid.New()
	actor := domain.Actor{ID: pro, Role: domain.RoleProfessional}

	bookings.On("HasActiveByProfessional", mock.Anything, pro).Return(true, nil).Once()
	assert.ErrorIs(t, svc.EnsureProfessionalDeletable(context.Background(), actor, pro), domain.ErrHasActiveBookings)

	bookings.On("HasActiveByProfessional", mock.Anything, pro).Return(false, nil).Once()
	assert.NoError(t, svc.EnsureProfessionalDeletable(context.Background(), actor, pro))

	other := domain.Actor{ID: uuid.New(), Role: domain.RoleProfessional}
	assert.ErrorIs(t, svc.EnsureProfessionalDeletable(context.Background(), other, pro), domain.ErrAuthorization)
}
