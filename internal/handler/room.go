package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
)

type roomResponse struct {
	ID         uuid.UUID `json:"id"`
	RoomNumber string    `json:"room_number"`
	Beds       int       `json:"beds"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type createRoomRequest struct {
	RoomNumber string `json:"room_number"`
	Beds       int    `json:"beds"`
	IsActive   *bool  `json:"is_active"`
}

type updateRoomRequest struct {
	RoomNumber *string `json:"room_number"`
	Beds       *int    `json:"beds"`
	IsActive   *bool   `json:"is_active"`
}

type roomListResponse struct {
	Data []roomResponse `json:"data"`
}

// ListRooms handles GET /rooms. Non-admin callers only see active rooms.
func (s *Server) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.List(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := make([]roomResponse, len(rooms))
	for i, room := range rooms {
		data[i] = roomToResponse(room)
	}
	writeJSON(w, http.StatusOK, roomListResponse{Data: data})
}

// GetRoom handles GET /rooms/{id}.
func (s *Server) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	room, err := s.rooms.GetByID(r.Context(), currentUser(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomToResponse(room))
}

// CreateRoom handles POST /rooms. New rooms are active unless is_active is false.
func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomRequest
	if !decodeBody(w, r, &body) {
		return
	}
	room := domain.Room{RoomNumber: body.RoomNumber, Beds: body.Beds, IsActive: true}
	if body.IsActive != nil {
		room.IsActive = *body.IsActive
	}

	created, err := s.rooms.Create(r.Context(), room)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/rooms/"+created.ID.String())
	writeJSON(w, http.StatusCreated, roomToResponse(created))
}

// UpdateRoom handles PATCH /rooms/{id}. Omitted fields keep their values.
func (s *Server) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body updateRoomRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.rooms.Update(r.Context(), id, domain.RoomPatch{
		RoomNumber: body.RoomNumber,
		Beds:       body.Beds,
		IsActive:   body.IsActive,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roomToResponse(updated))
}

// DeleteRoom handles DELETE /rooms/{id}. The room's reservations go with it.
func (s *Server) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.rooms.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func roomToResponse(r domain.Room) roomResponse {
	return roomResponse{
		ID:         r.ID,
		RoomNumber: r.RoomNumber,
		Beds:       r.Beds,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
