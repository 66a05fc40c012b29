package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Тестовые токены sandbox-провайдера
const (
	SandboxTokenDecline = "tok_decline"
	SandboxTokenError   = "tok_error"
)

// SandboxClient локальный провайдер без сети: одобряет всё, кроме тестовых токенов
type SandboxClient struct {
	log Logger
}

func NewSandboxClient(log Logger) *SandboxClient {
	return &SandboxClient{log: log}
}

func (c *SandboxClient) Authorize(ctx context.Context, amountInCents int64, token string) (*Authorization, error) {
	switch token {
	case SandboxTokenDecline:
		return &Authorization{Approved: false, Reason: "card declined"}, nil
	case SandboxTokenError:
		return nil, fmt.Errorf("%w: sandbox simulated outage", ErrUpstream)
	}

	ref := "sbx_" + uuid.NewString()
	c.log.Info("Sandbox: authorized amount=%d ref=%s", amountInCents, ref)
	return &Authorization{Approved: true, Reference: ref}, nil
}

func (c *SandboxClient) Void(ctx context.Context, reference string) error {
	c.log.Info("Sandbox: voided ref=%s", reference)
	return nil
}
