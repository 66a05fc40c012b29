package booking_flow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/infra/cache/flows"
	servicesRepo "github.com/m04kA/SMC-MarketplaceBooking/internal/infra/storage/services"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/logger"
)

type servicesStub map[uuid.UUID]*domain.ServiceDescriptor

func (s servicesStub) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceDescriptor, error) {
	d, ok := s[id]
	if !ok {
		return nil, servicesRepo.ErrServiceNotFound
	}
	return d, nil
}

type creatorStub struct {
	calls []*create_booking.Request
	fn    func(req *create_booking.Request) (*create_booking.Response, error)
}

func (c *creatorStub) Execute(ctx context.Context, req *create_booking.Request) (*create_booking.Response, error) {
	c.calls = append(c.calls, req)
	return c.fn(req)
}

// flakyStore роняет сохранение состояния шага confirmation
type flakyStore struct {
	*flows.Store
	failConfirmed int
}

func (s *flakyStore) Save(ctx context.Context, state orchestrator.State) error {
	if state.Step == orchestrator.StepConfirmation && s.failConfirmed > 0 {
		s.failConfirmed--
		return fmt.Errorf("%w: connection reset", flows.ErrRedis)
	}
	return s.Store.Save(ctx, state)
}

type slotsStub struct{ calls int }

func (s *slotsStub) Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error) {
	s.calls++
	start := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 9, 0, 0, 0, time.UTC)
	return &get_available_slots.Response{
		Date:           req.Date,
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		Slots:          []get_available_slots.Slot{{Start: start, End: start.Add(time.Hour), Available: true}},
	}, nil
}

type fixture struct {
	uc      *UseCase
	store   *flows.Store
	creator *creatorStub
	slots   *slotsStub
	timed   *domain.ServiceDescriptor
	project *domain.ServiceDescriptor
	client  domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := flows.NewStore(rdb, 30*time.Minute, 30*time.Second)
	professional := uuid.New()
	timed := &domain.ServiceDescriptor{
		ID: uuid.New(), ProfessionalID: professional, Title: "Consultation",
		ServiceType: domain.ServiceTypeTimeBased, PriceInCents: 5000, IsActive: true,
	}
	project := &domain.ServiceDescriptor{
		ID: uuid.New(), ProfessionalID: professional, Title: "Website",
		ServiceType: domain.ServiceTypeProjectBased, PriceInCents: 90000, IsActive: true,
	}

	creator := &creatorStub{fn: func(req *create_booking.Request) (*create_booking.Response, error) {
		return &create_booking.Response{ID: uuid.New(), Status: string(domain.StatusPendingConfirmation)}, nil
	}}
	slots := &slotsStub{}

	uc := NewUseCase(store, servicesStub{timed.ID: timed, project.ID: project}, creator, slots, logger.NewNop())
	return &fixture{
		uc: uc, store: store, creator: creator, slots: slots,
		timed: timed, project: project,
		client: domain.Actor{ID: uuid.New(), Role: domain.RoleClient},
	}
}

// toPayment проводит сессию TIME_BASED услуги до шага payment
func (f *fixture) toPayment(t *testing.T) *View {
	t.Helper()
	ctx := context.Background()

	view, err := f.uc.Start(ctx, f.client, f.timed.ID)
	require.NoError(t, err)
	_, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)

	slot := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	_, err = f.uc.UpdateDetails(ctx, f.client, view.FlowID, orchestrator.Details{BookingDateTime: &slot})
	require.NoError(t, err)

	view, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	require.Equal(t, orchestrator.StepPayment, view.Step)
	return view
}

func TestFlow_TimeBasedHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.uc.Start(ctx, f.client, f.timed.ID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepService, view.Step)
	assert.True(t, view.CanProceed)

	view, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepDetails, view.Step)
	assert.False(t, view.CanProceed)

	_, err = f.uc.Next(ctx, f.client, view.FlowID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	slots, err := f.uc.Slots(ctx, f.client, view.FlowID, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, slots.Slots, 1)
	assert.Equal(t, f.timed.ProfessionalID, slots.ProfessionalID)

	start := slots.Slots[0].Start
	view, err = f.uc.UpdateDetails(ctx, f.client, view.FlowID, orchestrator.Details{BookingDateTime: &start, ClientNotes: "hi"})
	require.NoError(t, err)
	assert.True(t, view.CanProceed)
	assert.False(t, view.InFlight)

	view, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepPayment, view.Step)

	view, err = f.uc.Confirm(ctx, f.client, view.FlowID, "tok_visa")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepConfirmation, view.Step)
	require.NotNil(t, view.BookingID)
	assert.Nil(t, view.LastError)

	require.Len(t, f.creator.calls, 1)
	req := f.creator.calls[0]
	assert.Equal(t, f.timed.ID, req.ServiceID)
	assert.Equal(t, "hi", req.ClientNotes)
	assert.Equal(t, "tok_visa", req.PaymentToken)
	assert.True(t, start.Equal(*req.BookingDateTime))
	require.NotNil(t, req.IdempotencyKey)
	assert.Equal(t, view.FlowID, *req.IdempotencyKey)

	_, err = f.uc.Prev(ctx, f.client, view.FlowID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, orchestrator.ErrFlowFinished)
}

func TestFlow_ConfirmConflictStaysOnPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.toPayment(t)

	f.creator.fn = func(*create_booking.Request) (*create_booking.Response, error) {
		return nil, domain.NewConflictError(domain.ErrSlotUnavailable, "09:00")
	}

	view, err := f.uc.Confirm(ctx, f.client, view.FlowID, "tok_visa")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepPayment, view.Step)
	assert.False(t, view.InFlight)
	require.NotNil(t, view.LastError)
	assert.Equal(t, orchestrator.FailureConflict, view.LastError.Kind)

	f.creator.fn = func(*create_booking.Request) (*create_booking.Response, error) {
		return nil, &domain.PaymentDeclinedError{Reason: "insufficient_funds"}
	}
	view, err = f.uc.Confirm(ctx, f.client, view.FlowID, "tok_decline")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.FailurePaymentDeclined, view.LastError.Kind)

	stored, err := f.uc.Get(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepPayment, stored.Step)
	require.NotNil(t, stored.LastError)
}

func TestFlow_ConfirmValidationPropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.toPayment(t)

	f.creator.fn = func(*create_booking.Request) (*create_booking.Response, error) {
		return nil, domain.NewValidationError(domain.Violation{Field: "paymentToken", Message: "is required"})
	}

	_, err := f.uc.Confirm(ctx, f.client, view.FlowID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.uc.Get(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepPayment, stored.Step)
	assert.False(t, stored.InFlight)
}

func TestFlow_ConfirmRetryAfterLostSaveReusesBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	store := &flakyStore{Store: f.store, failConfirmed: 1}
	f.uc = NewUseCase(store, servicesStub{f.timed.ID: f.timed, f.project.ID: f.project}, f.creator, f.slots, logger.NewNop())

	// Создатель бронирований идемпотентен по ключу, как create_booking на уникальном idempotency_key
	created := map[uuid.UUID]uuid.UUID{}
	charges := 0
	f.creator.fn = func(req *create_booking.Request) (*create_booking.Response, error) {
		if id, ok := created[*req.IdempotencyKey]; ok {
			return &create_booking.Response{ID: id}, nil
		}
		charges++
		created[*req.IdempotencyKey] = uuid.New()
		return &create_booking.Response{ID: created[*req.IdempotencyKey]}, nil
	}

	view, err := f.uc.Start(ctx, f.client, f.project.ID)
	require.NoError(t, err)
	_, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	_, err = f.uc.UpdateDetails(ctx, f.client, view.FlowID,
		orchestrator.Details{ProjectRequirements: strings.Repeat("word ", domain.GoodDetailWords)})
	require.NoError(t, err)
	_, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)

	_, err = f.uc.Confirm(ctx, f.client, view.FlowID, "tok_visa")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	stored, err := f.uc.Get(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepPayment, stored.Step)

	confirmed, err := f.uc.Confirm(ctx, f.client, view.FlowID, "tok_visa")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepConfirmation, confirmed.Step)
	require.NotNil(t, confirmed.BookingID)

	require.Len(t, f.creator.calls, 2)
	assert.Equal(t, *f.creator.calls[0].IdempotencyKey, *f.creator.calls[1].IdempotencyKey)
	assert.Equal(t, 1, charges)
	assert.Equal(t, created[view.FlowID], *confirmed.BookingID)
}

func TestFlow_BusyWhileLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.toPayment(t)

	release, err := f.store.Lock(ctx, view.FlowID)
	require.NoError(t, err)

	_, err = f.uc.Confirm(ctx, f.client, view.FlowID, "tok_visa")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrFlowBusy)
	assert.Empty(t, f.creator.calls)

	release()
	_, err = f.uc.Confirm(ctx, f.client, view.FlowID, "tok_visa")
	require.NoError(t, err)
}

func TestFlow_StaleInFlightMarkIsCleared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	view := f.toPayment(t)

	state := view.State
	state.InFlight = true
	require.NoError(t, f.store.Save(ctx, state))

	view, err := f.uc.Prev(ctx, f.client, state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepDetails, view.Step)
	assert.False(t, view.InFlight)
}

func TestFlow_PrevFromServiceExits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.uc.Start(ctx, f.client, f.timed.ID)
	require.NoError(t, err)

	view, err = f.uc.Prev(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	assert.True(t, view.Exited)

	_, err = f.uc.Get(ctx, f.client, view.FlowID)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	assert.Empty(t, f.creator.calls)
}

func TestFlow_ProjectBasedGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.uc.Start(ctx, f.client, f.project.ID)
	require.NoError(t, err)
	_, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)

	view, err = f.uc.UpdateDetails(ctx, f.client, view.FlowID, orchestrator.Details{ProjectRequirements: "   too short   "})
	require.NoError(t, err)
	assert.False(t, view.CanProceed)
	_, err = f.uc.Next(ctx, f.client, view.FlowID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	detailed := strings.Repeat("word ", domain.GoodDetailWords)
	view, err = f.uc.UpdateDetails(ctx, f.client, view.FlowID, orchestrator.Details{ProjectRequirements: detailed})
	require.NoError(t, err)
	assert.True(t, view.CanProceed)
	assert.True(t, view.GoodDetail)

	view, err = f.uc.Next(ctx, f.client, view.FlowID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StepPayment, view.Step)

	_, err = f.uc.Slots(ctx, f.client, view.FlowID, time.Now())
	assert.ErrorIs(t, err, orchestrator.ErrInvalidStep)
}

func TestFlow_ForeignFlowIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.uc.Start(ctx, f.client, f.timed.ID)
	require.NoError(t, err)

	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleClient}
	_, err = f.uc.Get(ctx, stranger, view.FlowID)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	_, err = f.uc.Next(ctx, stranger, view.FlowID)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestFlow_StartChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Start(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleProfessional}, f.timed.ID)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = f.uc.Start(ctx, f.client, uuid.New())
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)

	f.timed.IsActive = false
	_, err = f.uc.Start(ctx, f.client, f.timed.ID)
	assert.ErrorIs(t, err, domain.ErrServiceInactive)
}
