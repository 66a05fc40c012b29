package payment

import "errors"

var (
	// ErrUpstream платежный провайдер недоступен или ответил ошибкой, не связанной с картой
	ErrUpstream = errors.New("payment: provider failure")

	// ErrUnknownProvider в конфигурации указан неизвестный провайдер
	ErrUnknownProvider = errors.New("payment: unknown provider")
)
