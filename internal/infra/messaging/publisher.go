package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher публикует JSON-события в topic exchange RabbitMQ
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewPublisher подключается к брокеру и объявляет durable topic exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial rabbitmq: %v", ErrConnect, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrConnect, exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishJSON сериализует v и публикует с ключом маршрутизации key.
// amqp.Channel не потокобезопасен для публикации, поэтому вызовы сериализуются.
func (p *Publisher) PublishJSON(ctx context.Context, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPublish, key, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, key, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher используется, когда брокер не настроен
type NopPublisher struct{}

func (NopPublisher) PublishJSON(ctx context.Context, key string, v interface{}) error { return nil }

func (NopPublisher) Close() error { return nil }
