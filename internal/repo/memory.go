package repo

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
)

// MemStore keeps rooms and reservations in process memory. It backs both
// MemStore.Rooms and MemStore.Reservations so that room deletion can cascade.
//
// Locking: mu guards the maps. Each room also owns a mutex that is held for
// the whole check-then-append of an admission and for the room's deletion,
// so admissions to one room are serialized while other rooms proceed.
type MemStore struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]domain.Room
	byRoom map[uuid.UUID][]domain.Reservation // sorted by start
	locks  map[uuid.UUID]*sync.Mutex
	now    func() time.Time
}

// NewMemStore returns an empty store. now stamps created_at and updated_at;
// pass nil to use the wall clock.
func NewMemStore(now func() time.Time) *MemStore {
	if now == nil {
		now = time.Now
	}
	return &MemStore{
		rooms:  map[uuid.UUID]domain.Room{},
		byRoom: map[uuid.UUID][]domain.Reservation{},
		locks:  map[uuid.UUID]*sync.Mutex{},
		now:    func() time.Time { return now().UTC() },
	}
}

// Rooms returns a RoomRepo view of the store.
func (s *MemStore) Rooms() RoomRepo { return memRoomRepo{s} }

// Reservations returns a ReservationRepo view of the store.
func (s *MemStore) Reservations() ReservationRepo { return memReservationRepo{s} }

// roomLock returns the admission mutex of a room, or nil if the room is unknown.
func (s *MemStore) roomLock(id uuid.UUID) *sync.Mutex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locks[id]
}

// numberTaken reports whether another room already uses number. Callers hold mu.
func (s *MemStore) numberTaken(number string, except uuid.UUID) bool {
	for id, r := range s.rooms {
		if id != except && r.RoomNumber == number {
			return true
		}
	}
	return false
}

type memRoomRepo struct{ s *MemStore }

func (r memRoomRepo) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, fmt.Errorf("repo.MemRoomRepo.Create: %w", err)
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.numberTaken(room.RoomNumber, uuid.Nil) {
		return domain.Room{}, fmt.Errorf("repo.MemRoomRepo.Create: %w: room number already exists", domain.ErrConflict)
	}
	now := s.now()
	room.ID = uuid.New()
	room.CreatedAt = now
	room.UpdatedAt = now
	s.rooms[room.ID] = room
	s.locks[room.ID] = &sync.Mutex{}
	return room, nil
}

func (r memRoomRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, fmt.Errorf("repo.MemRoomRepo.GetByID: %w", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return domain.Room{}, fmt.Errorf("repo.MemRoomRepo.GetByID: %w", domain.ErrNotFound)
	}
	return room, nil
}

func (r memRoomRepo) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemRoomRepo.List: %w", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		if activeOnly && !room.IsActive {
			continue
		}
		rooms = append(rooms, room)
	}
	slices.SortFunc(rooms, func(a, b domain.Room) int {
		return strings.Compare(a.RoomNumber, b.RoomNumber)
	})
	return rooms, nil
}

func (r memRoomRepo) Update(ctx context.Context, room domain.Room) (domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return domain.Room{}, fmt.Errorf("repo.MemRoomRepo.Update: %w", err)
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.ID]
	if !ok {
		return domain.Room{}, fmt.Errorf("repo.MemRoomRepo.Update: %w", domain.ErrNotFound)
	}
	if s.numberTaken(room.RoomNumber, room.ID) {
		return domain.Room{}, fmt.Errorf("repo.MemRoomRepo.Update: %w: room number already exists", domain.ErrConflict)
	}
	existing.RoomNumber = room.RoomNumber
	existing.Beds = room.Beds
	existing.IsActive = room.IsActive
	existing.UpdatedAt = s.now()
	s.rooms[room.ID] = existing
	return existing, nil
}

// Delete waits for any in-flight admission on the room before removing it
// together with its reservations.
func (r memRoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repo.MemRoomRepo.Delete: %w", err)
	}
	s := r.s
	lock := s.roomLock(id)
	if lock == nil {
		return fmt.Errorf("repo.MemRoomRepo.Delete: %w", domain.ErrNotFound)
	}
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return fmt.Errorf("repo.MemRoomRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(s.rooms, id)
	delete(s.byRoom, id)
	delete(s.locks, id)
	return nil
}

type memReservationRepo struct{ s *MemStore }

func (r memReservationRepo) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemReservationRepo.ListByRoom: %w", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.byRoom[roomID]), nil
}

func (r memReservationRepo) InsertIfFree(ctx context.Context, roomID, userID uuid.UUID, iv domain.Interval) (domain.Reservation, error) {
	s := r.s
	lock := s.roomLock(roomID)
	if lock == nil {
		return domain.Reservation{}, fmt.Errorf("repo.MemReservationRepo.InsertIfFree: %w", domain.ErrRoomNotFound)
	}
	lock.Lock()
	defer lock.Unlock()

	// The room may have been deleted while this call waited for its lock.
	s.mu.RLock()
	_, ok := s.rooms[roomID]
	existing := s.byRoom[roomID]
	s.mu.RUnlock()
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.MemReservationRepo.InsertIfFree: %w", domain.ErrRoomNotFound)
	}

	if _, conflict := domain.FirstConflict(iv, existing); conflict {
		return domain.Reservation{}, fmt.Errorf("repo.MemReservationRepo.InsertIfFree: %w", domain.ErrOverlap)
	}
	if err := ctx.Err(); err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.MemReservationRepo.InsertIfFree: %w", err)
	}

	res := domain.Reservation{
		ID:        uuid.New(),
		RoomID:    roomID,
		UserID:    userID,
		Interval:  iv,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byRoom[roomID]
	i, _ := slices.BinarySearchFunc(list, res, func(a, b domain.Reservation) int {
		return a.Interval.Start().Compare(b.Interval.Start())
	})
	s.byRoom[roomID] = slices.Insert(list, i, res)
	return res, nil
}

func (r memReservationRepo) List(ctx context.Context, filter domain.ReservationFilter, page domain.PaginationParams) ([]domain.Booking, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.MemReservationRepo.List: %w", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []domain.Booking
	for roomID, list := range r.s.byRoom {
		room := r.s.rooms[roomID]
		for _, res := range list {
			if filter.UserID != nil && res.UserID != *filter.UserID {
				continue
			}
			all = append(all, domain.Booking{Reservation: res, Room: room})
		}
	}
	slices.SortFunc(all, func(a, b domain.Booking) int {
		if c := b.Interval.Start().Compare(a.Interval.Start()); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	lo, hi := page.Bounds(len(all))
	items := make([]domain.Booking, hi-lo)
	copy(items, all[lo:hi])
	return items, int64(len(all)), nil
}

func (r memReservationRepo) CountCreatedByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemReservationRepo.CountCreatedByDay: %w", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[string]int{}
	for _, list := range r.s.byRoom {
		for _, res := range list {
			if res.CreatedAt.Before(from) || !res.CreatedAt.Before(to) {
				continue
			}
			counts[res.CreatedAt.UTC().Format(dayLayout)]++
		}
	}
	return counts, nil
}

func (r memReservationRepo) TopRooms(ctx context.Context, limit int) ([]domain.RoomCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.MemReservationRepo.TopRooms: %w", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.RoomCount{}
	for roomID, list := range r.s.byRoom {
		if len(list) == 0 {
			continue
		}
		result = append(result, domain.RoomCount{
			RoomID:     roomID,
			RoomNumber: r.s.rooms[roomID].RoomNumber,
			Count:      len(list),
		})
	}
	slices.SortFunc(result, func(a, b domain.RoomCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return bytes.Compare(a.RoomID[:], b.RoomID[:])
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
