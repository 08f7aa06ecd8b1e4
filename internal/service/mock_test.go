package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
	"github.com/pkordes/roombook/internal/repo"
	"github.com/pkordes/roombook/internal/service"
)

// mockRoomRepo is a hand-written test double for repo.RoomRepo.
type mockRoomRepo struct {
	create  func(ctx context.Context, room domain.Room) (domain.Room, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Room, error)
	list    func(ctx context.Context, activeOnly bool) ([]domain.Room, error)
	update  func(ctx context.Context, room domain.Room) (domain.Room, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockRoomRepo) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	return m.create(ctx, room)
}
func (m *mockRoomRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Room, error) {
	return m.getByID(ctx, id)
}
func (m *mockRoomRepo) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	return m.list(ctx, activeOnly)
}
func (m *mockRoomRepo) Update(ctx context.Context, room domain.Room) (domain.Room, error) {
	return m.update(ctx, room)
}
func (m *mockRoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockRoomRepo must satisfy repo.RoomRepo.
var _ repo.RoomRepo = (*mockRoomRepo)(nil)

// mockReservationRepo is a hand-written test double for repo.ReservationRepo.
type mockReservationRepo struct {
	listByRoom        func(ctx context.Context, roomID uuid.UUID) ([]domain.Reservation, error)
	insertIfFree      func(ctx context.Context, roomID, userID uuid.UUID, iv domain.Interval) (domain.Reservation, error)
	list              func(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) ([]domain.Booking, int64, error)
	countCreatedByDay func(ctx context.Context, from, to time.Time) (map[string]int, error)
	topRooms          func(ctx context.Context, limit int) ([]domain.RoomCount, error)
}

func (m *mockReservationRepo) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Reservation, error) {
	return m.listByRoom(ctx, roomID)
}
func (m *mockReservationRepo) InsertIfFree(ctx context.Context, roomID, userID uuid.UUID, iv domain.Interval) (domain.Reservation, error) {
	return m.insertIfFree(ctx, roomID, userID, iv)
}
func (m *mockReservationRepo) List(ctx context.Context, f domain.ReservationFilter, p domain.PaginationParams) ([]domain.Booking, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockReservationRepo) CountCreatedByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	return m.countCreatedByDay(ctx, from, to)
}
func (m *mockReservationRepo) TopRooms(ctx context.Context, limit int) ([]domain.RoomCount, error) {
	return m.topRooms(ctx, limit)
}

// compile-time check: mockReservationRepo must satisfy repo.ReservationRepo.
var _ repo.ReservationRepo = (*mockReservationRepo)(nil)

// mockPublisher records published bookings and returns err.
type mockPublisher struct {
	published []domain.Booking
	err       error
}

func (m *mockPublisher) PublishReservationCreated(_ context.Context, b domain.Booking) error {
	m.published = append(m.published, b)
	return m.err
}

var _ service.EventPublisher = (*mockPublisher)(nil)

// fixedClock is a service.Clock pinned to one instant.
func fixedClock(t time.Time) service.Clock {
	return service.ClockFunc(func() time.Time { return t })
}
