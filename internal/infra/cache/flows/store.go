package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/orchestrator"
)

const keyPrefix = "booking_flow:"

// unlockScript удаляет ключ блокировки только если он принадлежит вызывающему
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store хранит состояние booking flow в redis в виде JSON со скользящим TTL
type Store struct {
	client  redis.UniversalClient
	ttl     time.Duration
	lockTTL time.Duration
}

// NewStore создает хранилище. lockTTL ограничивает жизнь блокировки, если процесс упал, не сняв её.
func NewStore(client redis.UniversalClient, ttl, lockTTL time.Duration) *Store {
	return &Store{client: client, ttl: ttl, lockTTL: lockTTL}
}

func stateKey(flowID uuid.UUID) string {
	return keyPrefix + flowID.String()
}

func lockKey(flowID uuid.UUID) string {
	return keyPrefix + flowID.String() + ":lock"
}

// Save записывает состояние и продлевает TTL
func (s *Store) Save(ctx context.Context, state orchestrator.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: Save - marshal: %v", ErrDecode, err)
	}

	if err := s.client.Set(ctx, stateKey(state.FlowID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Save - set %s: %v", ErrRedis, state.FlowID, err)
	}
	return nil
}

// Load читает состояние и продлевает TTL
func (s *Store) Load(ctx context.Context, flowID uuid.UUID) (orchestrator.State, error) {
	var state orchestrator.State

	data, err := s.client.GetEx(ctx, stateKey(flowID), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return state, ErrFlowNotFound
	}
	if err != nil {
		return state, fmt.Errorf("%w: Load - get %s: %v", ErrRedis, flowID, err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("%w: Load - %s: %v", ErrDecode, flowID, err)
	}
	return state, nil
}

// Delete удаляет сессию
func (s *Store) Delete(ctx context.Context, flowID uuid.UUID) error {
	if err := s.client.Del(ctx, stateKey(flowID)).Err(); err != nil {
		return fmt.Errorf("%w: Delete - del %s: %v", ErrRedis, flowID, err)
	}
	return nil
}

// Lock берет блокировку сессии на время блокирующей операции (SETNX).
// Возвращает функцию снятия блокировки. Занятая блокировка - ErrFlowLocked.
func (s *Store) Lock(ctx context.Context, flowID uuid.UUID) (func(), error) {
	token := uuid.NewString()
	key := lockKey(flowID)

	ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: Lock - setnx %s: %v", ErrRedis, flowID, err)
	}
	if !ok {
		return nil, ErrFlowLocked
	}

	release := func() {
		// Снимаем блокировку даже если контекст запроса уже отменен
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = unlockScript.Run(releaseCtx, s.client, []string{key}, token).Err()
	}
	return release, nil
}
