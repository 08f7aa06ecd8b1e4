package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/roombook/internal/domain"
	"github.com/pkordes/roombook/internal/repo"
)

// DefaultStoreTimeout bounds the admission critical section when no timeout
// is configured.
const DefaultStoreTimeout = 5 * time.Second

// EventPublisher announces admitted reservations to other systems.
// It is called after the reservation is stored; failures never undo it.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, b domain.Booking) error
}

// ReservationService admits new reservations and lists existing ones.
type ReservationService struct {
	rooms        repo.RoomRepo
	reservations repo.ReservationRepo
	clock        Clock
	timeout      time.Duration
	events       EventPublisher
	log          *slog.Logger
}

// ReservationOption customises a ReservationService.
type ReservationOption func(*ReservationService)

// WithStoreTimeout bounds each InsertIfFree call. Non-positive values keep
// DefaultStoreTimeout.
func WithStoreTimeout(d time.Duration) ReservationOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithEvents publishes a reservation.created event for every admission.
// Publish failures are written to log.
func WithEvents(p EventPublisher, log *slog.Logger) ReservationOption {
	return func(s *ReservationService) {
		s.events = p
		if log != nil {
			s.log = log
		}
	}
}

// NewReservationService constructs a ReservationService backed by the provided repos.
func NewReservationService(rooms repo.RoomRepo, reservations repo.ReservationRepo, clock Clock, opts ...ReservationOption) *ReservationService {
	s := &ReservationService{
		rooms:        rooms,
		reservations: reservations,
		clock:        clock,
		timeout:      DefaultStoreTimeout,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create runs the admission pipeline for one request.
//
// Errors, checked with errors.Is:
//   - domain.ErrInvalidInterval (the concrete error is *domain.IntervalError)
//   - domain.ErrRoomNotFound
//   - domain.ErrRoomInactive
//   - domain.ErrOverlap
//   - domain.ErrStorage for any other failure
//
// Overlap is never retried here.
func (s *ReservationService) Create(ctx context.Context, user domain.UserContext, req domain.ReservationRequest) (domain.Booking, error) {
	iv, err := domain.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		return domain.Booking{}, err
	}
	if !iv.StartsAfter(s.clock.Now()) {
		return domain.Booking{}, &domain.IntervalError{Field: "start_time", Reason: "must be in the future"}
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Booking{}, fmt.Errorf("service.ReservationService.Create: %w", domain.ErrRoomNotFound)
	case err != nil:
		return domain.Booking{}, fmt.Errorf("service.ReservationService.Create: %w: %w", domain.ErrStorage, err)
	case !room.IsActive:
		return domain.Booking{}, fmt.Errorf("service.ReservationService.Create: %w", domain.ErrRoomInactive)
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.reservations.InsertIfFree(insertCtx, room.ID, user.ID, iv)
	switch {
	case errors.Is(err, domain.ErrOverlap), errors.Is(err, domain.ErrRoomNotFound):
		// The room can be deleted between lookup and insert.
		return domain.Booking{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	case err != nil:
		return domain.Booking{}, fmt.Errorf("service.ReservationService.Create: %w: %w", domain.ErrStorage, err)
	}

	booking := domain.Booking{
		Reservation: res,
		Room:        room,
		Duration:    domain.DurationLabel(res.Interval),
	}

	if s.events != nil {
		if err := s.events.PublishReservationCreated(ctx, booking); err != nil {
			s.log.ErrorContext(ctx, "publish reservation.created",
				slog.String("reservation_id", res.ID.String()),
				slog.Any("error", err),
			)
		}
	}
	return booking, nil
}

// ListMine returns the caller's own reservations, newest start first.
func (s *ReservationService) ListMine(ctx context.Context, user domain.UserContext, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
	page, err := s.list(ctx, domain.ReservationFilter{UserID: &user.ID}, p)
	if err != nil {
		return domain.Page[domain.Booking]{}, fmt.Errorf("service.ReservationService.ListMine: %w", err)
	}
	return page, nil
}

// ListAll returns every user's reservations, newest start first.
func (s *ReservationService) ListAll(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
	page, err := s.list(ctx, domain.ReservationFilter{}, p)
	if err != nil {
		return domain.Page[domain.Booking]{}, fmt.Errorf("service.ReservationService.ListAll: %w", err)
	}
	return page, nil
}

func (s *ReservationService) list(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) (domain.Page[domain.Booking], error) {
	items, total, err := s.reservations.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Booking]{}, err
	}
	if items == nil {
		items = []domain.Booking{}
	}
	for i := range items {
		items[i].Duration = domain.DurationLabel(items[i].Interval)
	}
	return domain.Page[domain.Booking]{Items: items, Total: total}, nil
}
