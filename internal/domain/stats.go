package domain

import "github.com/google/uuid"

// DailyCount is the number of reservations created on one UTC calendar day.
type DailyCount struct {
	Date  string `json:"date"`  // "2006-01-02"
	Label string `json:"label"` // "Jan 02"
	Count int    `json:"count"`
}

// RoomCount is the number of reservations held by one room.
type RoomCount struct {
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Count      int       `json:"count"`
}

// Statistics bundles both dashboard rollups.
type Statistics struct {
	Daily []DailyCount
	Rooms []RoomCount
}
