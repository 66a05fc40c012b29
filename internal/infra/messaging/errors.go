package messaging

import "errors"

var (
	// ErrConnect ошибка подключения к брокеру
	ErrConnect = errors.New("messaging: failed to connect")

	// ErrPublish ошибка публикации события
	ErrPublish = errors.New("messaging: failed to publish")
)
