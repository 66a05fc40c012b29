package flows

import "errors"

var (
	// ErrFlowNotFound сессия не найдена или истек TTL
	ErrFlowNotFound = errors.New("flows.store: flow not found")

	// ErrFlowLocked по сессии уже выполняется операция
	ErrFlowLocked = errors.New("flows.store: flow is locked")

	// ErrRedis ошибка обращения к redis
	ErrRedis = errors.New("flows.store: redis error")

	// ErrDecode сохраненное состояние не читается
	ErrDecode = errors.New("flows.store: failed to decode state")
)
