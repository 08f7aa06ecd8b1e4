package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/roombook/internal/domain"
	"github.com/pkordes/roombook/internal/handler"
	"github.com/pkordes/roombook/internal/middleware"
)

func bookingFixture() domain.Booking {
	start := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)
	iv := domain.MustInterval(start, start.Add(90*time.Minute))
	return domain.Booking{
		Reservation: domain.Reservation{
			ID: uuid.New(), RoomID: uuid.New(), UserID: userCaller.ID,
			Interval: iv, CreatedAt: start.Add(-24 * time.Hour),
		},
		Room:     domain.Room{RoomNumber: "101", Beds: 2, IsActive: true},
		Duration: "1 hour, 30 minutes",
	}
}

func TestCreateReservation_201(t *testing.T) {
	fixture := bookingFixture()
	roomID := uuid.New()
	var gotUser domain.UserContext
	var gotReq domain.ReservationRequest
	h := newHTTPHandler(services{reservations: &mockReservationServicer{
		create: func(_ context.Context, u domain.UserContext, req domain.ReservationRequest) (domain.Booking, error) {
			gotUser, gotReq = u, req
			return fixture, nil
		},
	}})

	rec := do(t, h, &userCaller, http.MethodPost, "/reservations", map[string]any{
		"room_id":    roomID.String(),
		"start_time": "2030-06-01T10:00:00Z",
		"end_time":   "2030-06-01T11:30:00Z",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userCaller, gotUser, "caller comes from the token")
	assert.Equal(t, roomID, gotReq.RoomID)
	assert.Equal(t, "2030-06-01T10:00:00Z", gotReq.StartTime)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID.String(), resp["id"])
	assert.Equal(t, "1 hour, 30 minutes", resp["duration"])
	assert.Equal(t, "2030-06-01T10:00:00Z", resp["start_time"])
	assert.Equal(t, "2030-06-01T11:30:00Z", resp["end_time"])
	room, ok := resp["room"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "101", room["room_number"])
}

func TestCreateReservation_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"invalid interval", &domain.IntervalError{Field: "end_time", Reason: "must be after start_time"}, http.StatusUnprocessableEntity, "invalid_interval", "end_time"},
		{"room not found", fmt.Errorf("svc: %w", domain.ErrRoomNotFound), http.StatusNotFound, "not_found", ""},
		{"room inactive", fmt.Errorf("svc: %w", domain.ErrRoomInactive), http.StatusBadRequest, "room_inactive", ""},
		{"overlap", fmt.Errorf("svc: %w", domain.ErrOverlap), http.StatusConflict, "overlap", ""},
		{"storage", fmt.Errorf("svc: %w: %w", domain.ErrStorage, errors.New("conn reset")), http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHTTPHandler(services{reservations: &mockReservationServicer{
				create: func(context.Context, domain.UserContext, domain.ReservationRequest) (domain.Booking, error) {
					return domain.Booking{}, tt.err
				},
			}})

			rec := do(t, h, &userCaller, http.MethodPost, "/reservations", map[string]any{
				"room_id": uuid.NewString(), "start_time": "2030-06-01T10:00:00Z", "end_time": "2030-06-01T11:00:00Z",
			})

			require.Equal(t, tt.status, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, tt.code, e.Error.Code)
			assert.Equal(t, tt.field, e.Error.Field)
			assert.NotEmpty(t, e.Error.Message)
		})
	}
}

func TestCreateReservation_OverlapMessage(t *testing.T) {
	h := newHTTPHandler(services{reservations: &mockReservationServicer{
		create: func(context.Context, domain.UserContext, domain.ReservationRequest) (domain.Booking, error) {
			return domain.Booking{}, domain.ErrOverlap
		},
	}})

	rec := do(t, h, &userCaller, http.MethodPost, "/reservations", map[string]any{
		"room_id": uuid.NewString(), "start_time": "x", "end_time": "y",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "room is already booked for the selected time period", decodeError(t, rec).Error.Message)
}

func TestCreateReservation_InternalErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	h := newHTTPHandler(services{
		log: slog.New(slog.NewJSONHandler(&buf, nil)),
		reservations: &mockReservationServicer{
			create: func(context.Context, domain.UserContext, domain.ReservationRequest) (domain.Booking, error) {
				return domain.Booking{}, errors.New("disk on fire")
			},
		},
	})

	rec := do(t, h, &userCaller, http.MethodPost, "/reservations", map[string]any{
		"room_id": uuid.NewString(), "start_time": "x", "end_time": "y",
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire", "internal detail is not leaked")
	assert.Contains(t, buf.String(), "disk on fire")
}

func TestCreateReservation_422_BadBody(t *testing.T) {
	h := newHTTPHandler(services{})
	tests := []struct {
		name string
		body any
	}{
		{"missing body", nil},
		{"bad room id", map[string]any{"room_id": "101", "start_time": "a", "end_time": "b"}},
		{"unknown field", map[string]any{"room_id": uuid.NewString(), "price": 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, &userCaller, http.MethodPost, "/reservations", tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "validation_error", decodeError(t, rec).Error.Code)
		})
	}
}

func TestCreateReservation_RateLimited(t *testing.T) {
	var calls int
	srv := handler.NewServer(&mockRoomServicer{}, &mockReservationServicer{
		create: func(context.Context, domain.UserContext, domain.ReservationRequest) (domain.Booking, error) {
			calls++
			return bookingFixture(), nil
		},
		listMine: func(context.Context, domain.UserContext, domain.PaginationParams) (domain.Page[domain.Booking], error) {
			return domain.Page[domain.Booking]{}, nil
		},
	}, &mockStatsServicer{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	h := srv.Routes(handler.Middlewares{Authenticate: middleware.NewAuthenticator(testSecret), RateLimit: deny})

	rec := do(t, h, &userCaller, http.MethodPost, "/reservations", map[string]any{
		"room_id": uuid.NewString(), "start_time": "a", "end_time": "b",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Zero(t, calls)

	rec = do(t, h, &userCaller, http.MethodGet, "/reservations", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "listing is not rate limited")
}

func TestListMyReservations_200(t *testing.T) {
	var gotUser domain.UserContext
	var gotParams domain.PaginationParams
	h := newHTTPHandler(services{reservations: &mockReservationServicer{
		listMine: func(_ context.Context, u domain.UserContext, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
			gotUser, gotParams = u, p
			return domain.Page[domain.Booking]{Items: []domain.Booking{bookingFixture()}, Total: 41}, nil
		},
	}})

	rec := do(t, h, &userCaller, http.MethodGet, "/reservations?page=3&limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userCaller.ID, gotUser.ID)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 100}, gotParams)

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Page, Limit, Total int
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 41, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.Page)
}

func TestListMyReservations_422_BadQuery(t *testing.T) {
	rec := do(t, newHTTPHandler(services{}), &userCaller, http.MethodGet, "/reservations?page=abc", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListAllReservations_200(t *testing.T) {
	h := newHTTPHandler(services{reservations: &mockReservationServicer{
		listAll: func(_ context.Context, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
			return domain.Page[domain.Booking]{Items: []domain.Booking{}, Total: 0}, nil
		},
	}})

	rec := do(t, h, &adminCaller, http.MethodGet, "/admin/reservations", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":20,"total":0}}`, rec.Body.String())
}
