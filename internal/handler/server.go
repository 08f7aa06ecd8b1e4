// Package handler implements the HTTP handlers for the room reservation API.
// All handlers are methods on Server. They are split into resource files
// (room.go, reservation.go, stats.go) but share the same Server struct and
// the JSON and error helpers in respond.go and errors.go.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
	"github.com/pkordes/roombook/internal/middleware"
)

// RoomServicer defines the room registry operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the service or repo layers.
type RoomServicer interface {
	Create(ctx context.Context, room domain.Room) (domain.Room, error)
	GetByID(ctx context.Context, user domain.UserContext, id uuid.UUID) (domain.Room, error)
	List(ctx context.Context, user domain.UserContext) ([]domain.Room, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.RoomPatch) (domain.Room, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReservationServicer defines the admission and listing operations.
type ReservationServicer interface {
	Create(ctx context.Context, user domain.UserContext, req domain.ReservationRequest) (domain.Booking, error)
	ListMine(ctx context.Context, user domain.UserContext, p domain.PaginationParams) (domain.Page[domain.Booking], error)
	ListAll(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Booking], error)
}

// StatsServicer defines the dashboard rollups.
type StatsServicer interface {
	Summary(ctx context.Context, days, limit int) (domain.Statistics, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	rooms        RoomServicer
	reservations ReservationServicer
	stats        StatsServicer
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies. A nil log uses
// slog.Default.
func NewServer(rooms RoomServicer, reservations ReservationServicer, stats StatsServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{rooms: rooms, reservations: reservations, stats: stats, log: log}
}

// Middlewares are the request guards Routes installs around the API.
// Authenticate is required; RateLimit may be nil to disable rate limiting.
type Middlewares struct {
	Authenticate func(http.Handler) http.Handler
	RateLimit    func(http.Handler) http.Handler
}

// Routes returns a chi router serving every endpoint. /healthz and
// /openapi.yaml are public; everything else requires authentication, and
// room mutations and /admin routes additionally require the admin role.
func (s *Server) Routes(mw Middlewares) chi.Router {
	rateLimit := mw.RateLimit
	if rateLimit == nil {
		rateLimit = func(next http.Handler) http.Handler { return next }
	}
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.ListRooms)
			r.Get("/{id}", s.GetRoom)
			r.With(adminOnly).Post("/", s.CreateRoom)
			r.With(adminOnly).Patch("/{id}", s.UpdateRoom)
			r.With(adminOnly).Delete("/{id}", s.DeleteRoom)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", s.ListMyReservations)
			r.With(rateLimit).Post("/", s.CreateReservation)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/reservations", s.ListAllReservations)
			r.Get("/statistics", s.GetStatistics)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "route not found", ""))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed", ""))
	})
	return r
}

// currentUser returns the caller placed in the context by the authentication
// middleware. Routes guarantees it is present on authenticated routes.
func currentUser(r *http.Request) domain.UserContext {
	u, _ := middleware.UserFrom(r.Context())
	return u
}
