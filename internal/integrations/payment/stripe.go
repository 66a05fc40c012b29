package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// intentAPI подмножество stripe PaymentIntents, которое нам нужно
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Cancel(id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
}

// StripeClient авторизует платежи через PaymentIntent с ручным списанием (capture_method=manual).
// Деньги только блокируются на карте, списание вне этого сервиса.
type StripeClient struct {
	intents  intentAPI
	currency string
	timeout  time.Duration
	log      Logger
}

// NewStripeClient создает клиента stripe с секретным ключом key.
// timeout ограничивает каждый вызов API, 0 - без ограничения.
func NewStripeClient(key, currency string, timeout time.Duration, log Logger) *StripeClient {
	sc := client.New(key, nil)
	c := newStripeClient(sc.PaymentIntents, currency, log)
	c.timeout = timeout
	return c
}

func newStripeClient(intents intentAPI, currency string, log Logger) *StripeClient {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeClient{intents: intents, currency: strings.ToLower(currency), log: log}
}

func (c *StripeClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Authorize блокирует amountInCents на платежном методе token
func (c *StripeClient) Authorize(ctx context.Context, amountInCents int64, token string) (*Authorization, error) {
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountInCents),
		Currency:           stripe.String(c.currency),
		PaymentMethod:      stripe.String(token),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:            stripe.Bool(true),
	}
	params.Context = callCtx

	intent, err := c.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			c.log.Warn("Stripe: card declined amount=%d code=%s decline_code=%s", amountInCents, stripeErr.Code, stripeErr.DeclineCode)
			return &Authorization{Approved: false, Reason: stripeErr.Msg}, nil
		}
		return nil, fmt.Errorf("%w: create payment intent: %v", ErrUpstream, err)
	}

	if intent.Status != stripe.PaymentIntentStatusRequiresCapture {
		// 3DS и прочие сценарии с действием клиента не поддерживаются: снимаем блок
		c.log.Warn("Stripe: payment intent id=%s ended in status=%s, cancelling", intent.ID, intent.Status)
		if err := c.Void(ctx, intent.ID); err != nil {
			c.log.Error("Stripe: failed to cancel payment intent id=%s: %v", intent.ID, err)
		}
		return &Authorization{Approved: false, Reason: fmt.Sprintf("payment requires %s", intent.Status)}, nil
	}

	c.log.Info("Stripe: authorized amount=%d intent=%s", amountInCents, intent.ID)
	return &Authorization{Approved: true, Reference: intent.ID}, nil
}

// Void отменяет авторизацию reference
func (c *StripeClient) Void(ctx context.Context, reference string) error {
	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.PaymentIntentCancelParams{}
	params.Context = callCtx

	if _, err := c.intents.Cancel(reference, params); err != nil {
		return fmt.Errorf("%w: cancel payment intent %s: %v", ErrUpstream, reference, err)
	}
	return nil
}
