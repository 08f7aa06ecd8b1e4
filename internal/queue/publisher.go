package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkordes/roombook/internal/domain"
)

// publishChannel is the subset of *amqp.Channel the Publisher uses.
type publishChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends reservation.created events to a durable queue through the
// default exchange. It is safe for concurrent use.
type Publisher struct {
	mu    sync.Mutex
	ch    publishChannel
	conn  *amqp.Connection // nil when built with NewPublisher
	queue string
}

// Dial connects to the broker at url and returns a Publisher for queue.
func Dial(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue.Dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue.Dial: channel: %w", err)
	}
	p, err := NewPublisher(ch, queue)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher declares queue on ch and returns a Publisher for it.
func NewPublisher(ch publishChannel, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue.NewPublisher: declare %s: %w", queue, err)
	}
	return &Publisher{ch: ch, queue: queue}, nil
}

// PublishReservationCreated publishes one persistent JSON message for b.
func (p *Publisher) PublishReservationCreated(ctx context.Context, b domain.Booking) error {
	body, err := json.Marshal(NewReservationCreated(b))
	if err != nil {
		return fmt.Errorf("queue.Publisher.PublishReservationCreated: marshal: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    b.ID.String(),
		Type:         EventType,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("queue.Publisher.PublishReservationCreated: %w", err)
	}
	return nil
}

// Close closes the channel and, for a dialed Publisher, the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
