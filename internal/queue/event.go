// Package queue publishes and consumes reservation events over RabbitMQ.
// The API publishes one reservation.created message per admission; the
// worker binary consumes them. Neither side is part of the admission path.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
)

// DefaultQueue is the queue reservation.created events are routed to.
const DefaultQueue = "reservation.created"

// EventType is stamped on every message as the AMQP type property.
const EventType = "reservation.created"

// ReservationCreated is the JSON body of a reservation.created message.
type ReservationCreated struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	RoomID        uuid.UUID `json:"room_id"`
	RoomNumber    string    `json:"room_number"`
	UserID        uuid.UUID `json:"user_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Duration      string    `json:"duration"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReservationCreated builds the event for an admitted booking.
func NewReservationCreated(b domain.Booking) ReservationCreated {
	return ReservationCreated{
		ReservationID: b.ID,
		RoomID:        b.RoomID,
		RoomNumber:    b.Room.RoomNumber,
		UserID:        b.UserID,
		StartTime:     b.Interval.Start(),
		EndTime:       b.Interval.End(),
		Duration:      b.Duration,
		CreatedAt:     b.CreatedAt,
	}
}
