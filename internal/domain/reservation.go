package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is an admitted booking of one room for one interval.
// It is created only by the admission path and never mutated afterwards.
type Reservation struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	UserID    uuid.UUID
	Interval  Interval
	CreatedAt time.Time
}

// Booking is a Reservation enriched for presentation: the room it occupies
// and a human-readable duration label.
type Booking struct {
	Reservation
	Room     Room
	Duration string
}

// ReservationRequest is the raw admission input. Times are kept as strings so
// that parse failures can be reported against the field that caused them.
type ReservationRequest struct {
	RoomID    uuid.UUID
	StartTime string
	EndTime   string
}

// ReservationFilter narrows a reservation listing. A nil UserID lists everyone's.
type ReservationFilter struct {
	UserID *uuid.UUID
}
