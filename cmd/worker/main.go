// Package main runs the reservation event worker. It consumes
// reservation.created messages from RabbitMQ and records each admission in
// the structured log, where downstream notification hooks attach.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkordes/roombook/internal/config"
	"github.com/pkordes/roombook/internal/queue"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// The worker only needs the broker settings, not the full API config.
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	url := os.Getenv("AMQP_URL")
	if url == "" {
		return errors.New("required environment variables not set: AMQP_URL")
	}
	queueName := os.Getenv("EVENTS_QUEUE")

	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := queue.NewConsumer(ch, queueName, func(ctx context.Context, ev queue.ReservationCreated) error {
		logger.InfoContext(ctx, "reservation created",
			"reservation_id", ev.ReservationID,
			"room_id", ev.RoomID,
			"room_number", ev.RoomNumber,
			"user_id", ev.UserID,
			"start_time", ev.StartTime,
			"end_time", ev.EndTime,
			"duration", ev.Duration,
		)
		return nil
	}, logger)

	slog.Info("worker starting", "queue", queueName)
	if err := consumer.Run(ctx); err != nil {
		return err
	}
	slog.Info("worker stopped")
	return nil
}
