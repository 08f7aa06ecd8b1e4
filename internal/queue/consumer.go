package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// consumeChannel is the subset of *amqp.Channel the Consumer uses.
type consumeChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Handler processes one decoded event. A returned error rejects the message.
type Handler func(ctx context.Context, ev ReservationCreated) error

// ErrDeliveriesClosed is returned by Run when the broker closes the stream.
var ErrDeliveriesClosed = errors.New("deliveries channel closed")

// Consumer reads reservation.created messages and hands them to a Handler.
// Messages are acked on success and rejected without requeue otherwise, so a
// poison message cannot loop.
type Consumer struct {
	ch      consumeChannel
	queue   string
	handler Handler
	log     *slog.Logger
}

// NewConsumer returns a Consumer for queue. A nil log uses slog.Default.
func NewConsumer(ch consumeChannel, queue string, h Handler, log *slog.Logger) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{ch: ch, queue: queue, handler: h, log: log}
}

// Run consumes until ctx is cancelled or the broker closes the delivery stream.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("queue.Consumer.Run: qos: %w", err)
	}
	if _, err := c.ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue.Consumer.Run: declare %s: %w", c.queue, err)
	}
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue.Consumer.Run: consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("queue.Consumer.Run: %w", ErrDeliveriesClosed)
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev ReservationCreated
	err := json.Unmarshal(d.Body, &ev)
	if err != nil {
		err = fmt.Errorf("decode: %w", err)
	} else {
		err = c.handler(ctx, ev)
	}

	if err != nil {
		c.log.ErrorContext(ctx, "reject reservation event",
			slog.String("message_id", d.MessageId),
			slog.Any("error", err),
		)
		if nerr := d.Nack(false, false); nerr != nil {
			c.log.ErrorContext(ctx, "nack", slog.Any("error", nerr))
		}
		return
	}
	if aerr := d.Ack(false); aerr != nil {
		c.log.ErrorContext(ctx, "ack", slog.Any("error", aerr))
	}
}
