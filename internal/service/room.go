package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/roombook/internal/domain"
	"github.com/pkordes/roombook/internal/repo"
)

const maxRoomNumberLen = 50

// RoomService implements business logic for the room registry.
type RoomService struct {
	rooms repo.RoomRepo
}

// NewRoomService constructs a RoomService backed by the provided repo.
func NewRoomService(rooms repo.RoomRepo) *RoomService {
	return &RoomService{rooms: rooms}
}

// Create validates and persists a new room.
// Returns domain.ErrValidation or domain.ErrConflict for a duplicate number.
func (s *RoomService) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if err := validateRoom(room); err != nil {
		return domain.Room{}, err
	}
	result, err := s.rooms.Create(ctx, room)
	if err != nil {
		return domain.Room{}, fmt.Errorf("service.RoomService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns one room. Inactive rooms are reported as not found to
// callers who are not admins.
func (s *RoomService) GetByID(ctx context.Context, user domain.UserContext, id uuid.UUID) (domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return domain.Room{}, fmt.Errorf("service.RoomService.GetByID: %w", err)
	}
	if !room.IsActive && !user.IsAdmin() {
		return domain.Room{}, fmt.Errorf("service.RoomService.GetByID: %w", domain.ErrNotFound)
	}
	return room, nil
}

// List returns all rooms for admins and only active rooms for everyone else.
func (s *RoomService) List(ctx context.Context, user domain.UserContext) ([]domain.Room, error) {
	rooms, err := s.rooms.List(ctx, !user.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("service.RoomService.List: %w", err)
	}
	if rooms == nil {
		return []domain.Room{}, nil
	}
	return rooms, nil
}

// Update applies a partial patch to an existing room.
// Deactivating a room leaves its existing reservations in place.
func (s *RoomService) Update(ctx context.Context, id uuid.UUID, patch domain.RoomPatch) (domain.Room, error) {
	current, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return domain.Room{}, fmt.Errorf("service.RoomService.Update: %w", err)
	}
	updated := patch.Apply(current)
	updated.RoomNumber = strings.TrimSpace(updated.RoomNumber)
	if err := validateRoom(updated); err != nil {
		return domain.Room{}, err
	}
	result, err := s.rooms.Update(ctx, updated)
	if err != nil {
		return domain.Room{}, fmt.Errorf("service.RoomService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a room and all of its reservations.
func (s *RoomService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rooms.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.RoomService.Delete: %w", err)
	}
	return nil
}

// validateRoom enforces the rules shared by Create and Update.
func validateRoom(room domain.Room) error {
	if room.RoomNumber == "" {
		return fmt.Errorf("%w: room_number is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(room.RoomNumber) > maxRoomNumberLen {
		return fmt.Errorf("%w: room_number must be at most %d characters", domain.ErrValidation, maxRoomNumberLen)
	}
	if room.Beds < 1 {
		return fmt.Errorf("%w: beds must be at least 1", domain.ErrValidation)
	}
	return nil
}
