package payment

import (
	"context"
	"time"
)

// Authorizer общий контракт провайдеров
type Authorizer interface {
	Authorize(ctx context.Context, amountInCents int64, token string) (*Authorization, error)
	Void(ctx context.Context, reference string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Провайдеры
const (
	ProviderStripe  = "stripe"
	ProviderSandbox = "sandbox"
)

// New выбирает провайдера по имени из конфигурации
func New(provider, stripeKey, currency string, timeout time.Duration, log Logger) (Authorizer, error) {
	switch provider {
	case ProviderStripe:
		return NewStripeClient(stripeKey, currency, timeout, log), nil
	case ProviderSandbox, "":
		return NewSandboxClient(log), nil
	}
	return nil, ErrUnknownProvider
}
