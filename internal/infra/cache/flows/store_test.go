package flows

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, 30*time.Minute, 30*time.Second), mr
}

func TestStore_SaveLoad(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	slot := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	state := orchestrator.New(uuid.New(), uuid.New(), orchestrator.ServiceSummary{
		ID:   uuid.New(),
		Type: domain.ServiceTypeTimeBased,
	})
	state.Step = orchestrator.StepDetails
	state.Details.BookingDateTime = &slot

	require.NoError(t, store.Save(ctx, state))
	assert.Equal(t, 30*time.Minute, mr.TTL(stateKey(state.FlowID)))

	loaded, err := store.Load(ctx, state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, state.FlowID, loaded.FlowID)
	assert.Equal(t, orchestrator.StepDetails, loaded.Step)
	require.NotNil(t, loaded.Details.BookingDateTime)
	assert.True(t, slot.Equal(*loaded.Details.BookingDateTime))
}

func TestStore_LoadSlidesTTL(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	state := orchestrator.New(uuid.New(), uuid.New(), orchestrator.ServiceSummary{ID: uuid.New()})

	require.NoError(t, store.Save(ctx, state))
	mr.FastForward(20 * time.Minute)

	_, err := store.Load(ctx, state.FlowID)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL(stateKey(state.FlowID)))
}

func TestStore_Expired(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	state := orchestrator.New(uuid.New(), uuid.New(), orchestrator.ServiceSummary{ID: uuid.New()})

	require.NoError(t, store.Save(ctx, state))
	mr.FastForward(31 * time.Minute)

	_, err := store.Load(ctx, state.FlowID)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	state := orchestrator.New(uuid.New(), uuid.New(), orchestrator.ServiceSummary{ID: uuid.New()})

	require.NoError(t, store.Save(ctx, state))
	require.NoError(t, store.Delete(ctx, state.FlowID))

	_, err := store.Load(ctx, state.FlowID)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestStore_Lock(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	flowID := uuid.New()

	release, err := store.Lock(ctx, flowID)
	require.NoError(t, err)

	_, err = store.Lock(ctx, flowID)
	assert.ErrorIs(t, err, ErrFlowLocked)

	release()
	assert.False(t, mr.Exists(lockKey(flowID)))

	release2, err := store.Lock(ctx, flowID)
	require.NoError(t, err)
	release2()
}

func TestStore_StaleReleaseKeepsForeignLock(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	flowID := uuid.New()

	release, err := store.Lock(ctx, flowID)
	require.NoError(t, err)

	// lock expired and another request took it
	mr.FastForward(31 * time.Second)
	_, err = store.Lock(ctx, flowID)
	require.NoError(t, err)

	release()
	assert.True(t, mr.Exists(lockKey(flowID)))
}
