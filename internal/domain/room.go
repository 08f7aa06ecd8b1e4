// Package domain contains the core data types for the room reservation service.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Room is a bookable space. RoomNumber is unique across all rooms.
// Reservations may only be admitted while IsActive is true; deactivating a
// room does not affect reservations that already exist.
type Room struct {
	ID         uuid.UUID `json:"id"`
	RoomNumber string    `json:"room_number"`
	Beds       int       `json:"beds"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RoomPatch carries a partial room update. Nil fields are left unchanged.
type RoomPatch struct {
	RoomNumber *string
	Beds       *int
	IsActive   *bool
}

// Apply returns a copy of r with the non-nil patch fields applied.
func (p RoomPatch) Apply(r Room) Room {
	if p.RoomNumber != nil {
		r.RoomNumber = *p.RoomNumber
	}
	if p.Beds != nil {
		r.Beds = *p.Beds
	}
	if p.IsActive != nil {
		r.IsActive = *p.IsActive
	}
	return r
}
