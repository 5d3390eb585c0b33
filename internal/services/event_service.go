// internal/services/event_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Routing keys for domain events.
const (
	EventProductCreated = "products.created"
	EventProductUpdated = "products.updated"
	EventProductDeleted = "products.deleted"
	EventTicketIssued   = "tickets.issued"
)

// EventPublisher fans domain events out to whoever listens, for example a
// realtime product feed.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close()
}

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// RabbitPublisher publishes JSON events to a durable topic exchange.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbitPublisher(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(Event{Type: routingKey, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// LogPublisher only logs events; used when no broker is configured.
type LogPublisher struct {
	log *logrus.Logger
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.log.WithField("event", routingKey).Debug("event published")
	return nil
}

func (p *LogPublisher) Close() {}

// publish sends an event and only logs failures; events never fail the
// operation that produced them.
func publish(ctx context.Context, events EventPublisher, log *logrus.Logger, routingKey string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, routingKey, payload); err != nil {
		log.WithError(err).WithField("event", routingKey).Warn("Failed to publish event")
	}
}
