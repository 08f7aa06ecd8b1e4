package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
)

type createReservationRequest struct {
	RoomID    string `json:"room_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type reservationRoom struct {
	ID         uuid.UUID `json:"id"`
	RoomNumber string    `json:"room_number"`
	Beds       int       `json:"beds"`
	IsActive   bool      `json:"is_active"`
}

type reservationResponse struct {
	ID        uuid.UUID       `json:"id"`
	Room      reservationRoom `json:"room"`
	UserID    uuid.UUID       `json:"user_id"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Duration  string          `json:"duration"`
	CreatedAt time.Time       `json:"created_at"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type reservationListResponse struct {
	Data       []reservationResponse `json:"data"`
	Pagination pagination            `json:"pagination"`
}

// CreateReservation handles POST /reservations.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var body createReservationRequest
	if !decodeBody(w, r, &body) {
		return
	}
	roomID, err := uuid.Parse(strings.TrimSpace(body.RoomID))
	if err != nil {
		badRequest(w, "room_id must be a valid uuid")
		return
	}

	booking, err := s.reservations.Create(r.Context(), currentUser(r), domain.ReservationRequest{
		RoomID:    roomID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingToResponse(booking))
}

// ListMyReservations handles GET /reservations.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	params, ok := paginationParams(w, r)
	if !ok {
		return
	}
	page, err := s.reservations.ListMine(r.Context(), currentUser(r), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page, params))
}

// ListAllReservations handles GET /admin/reservations.
func (s *Server) ListAllReservations(w http.ResponseWriter, r *http.Request) {
	params, ok := paginationParams(w, r)
	if !ok {
		return
	}
	page, err := s.reservations.ListAll(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page, params))
}

func paginationParams(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return domain.PaginationParams{}, false
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

func pageToResponse(page domain.Page[domain.Booking], p domain.PaginationParams) reservationListResponse {
	data := make([]reservationResponse, len(page.Items))
	for i, b := range page.Items {
		data[i] = bookingToResponse(b)
	}
	return reservationListResponse{
		Data:       data,
		Pagination: pagination{Page: p.Page, Limit: p.Limit, Total: int(page.Total)},
	}
}

func bookingToResponse(b domain.Booking) reservationResponse {
	return reservationResponse{
		ID: b.ID,
		Room: reservationRoom{
			ID:         b.Room.ID,
			RoomNumber: b.Room.RoomNumber,
			Beds:       b.Room.Beds,
			IsActive:   b.Room.IsActive,
		},
		UserID:    b.UserID,
		StartTime: b.Interval.Start(),
		EndTime:   b.Interval.End(),
		Duration:  b.Duration,
		CreatedAt: b.CreatedAt,
	}
}
