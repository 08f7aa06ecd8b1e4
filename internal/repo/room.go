package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/roombook/internal/domain"
)

// RoomRepo defines the persistence operations for Rooms.
// The service layer depends on this interface, not the concrete implementation,
// which allows the service to be unit-tested with a mock.
type RoomRepo interface {
	// Create inserts a new room and returns the persisted record.
	// Returns domain.ErrConflict if the room number is already taken.
	Create(ctx context.Context, room domain.Room) (domain.Room, error)

	// GetByID retrieves a single room. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Room, error)

	// List returns rooms ordered by room number. When activeOnly is set,
	// inactive rooms are omitted.
	List(ctx context.Context, activeOnly bool) ([]domain.Room, error)

	// Update overwrites the mutable fields of a room.
	// Returns domain.ErrNotFound or domain.ErrConflict.
	Update(ctx context.Context, room domain.Room) (domain.Room, error)

	// Delete removes a room and, by cascade, all of its reservations.
	// Returns domain.ErrNotFound if the room does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgRoomRepo is the Postgres implementation of RoomRepo.
type pgRoomRepo struct {
	db db
}

// NewRoomRepo constructs a RoomRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRoomRepo(db db) RoomRepo {
	return &pgRoomRepo{db: db}
}

const roomColumns = `id, room_number, beds, is_active, created_at, updated_at`

func (r *pgRoomRepo) Create(ctx context.Context, room domain.Room) (domain.Room, error) {
	const q = `
		INSERT INTO rooms (room_number, beds, is_active)
		VALUES (@room_number, @beds, @is_active)
		RETURNING ` + roomColumns

	args := pgx.NamedArgs{
		"room_number": room.RoomNumber,
		"beds":        room.Beds,
		"is_active":   room.IsActive,
	}

	result, err := scanRoom(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Create: %w", mapRoomWriteErr(err))
	}
	return result, nil
}

func (r *pgRoomRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = @id`

	result, err := scanRoom(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgRoomRepo) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	const q = `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE is_active OR NOT @active_only
		ORDER BY room_number`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"active_only": activeOnly})
	if err != nil {
		return nil, fmt.Errorf("repo.RoomRepo.List: %w", err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RoomRepo.List: scan: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RoomRepo.List: rows: %w", err)
	}
	return rooms, nil
}

func (r *pgRoomRepo) Update(ctx context.Context, room domain.Room) (domain.Room, error) {
	const q = `
		UPDATE rooms
		SET room_number = @room_number,
		    beds        = @beds,
		    is_active   = @is_active,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + roomColumns

	args := pgx.NamedArgs{
		"id":          room.ID,
		"room_number": room.RoomNumber,
		"beds":        room.Beds,
		"is_active":   room.IsActive,
	}

	result, err := scanRoom(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.Update: %w", mapRoomWriteErr(err))
	}
	return result, nil
}

func (r *pgRoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RoomRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RoomRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// mapRoomWriteErr turns a unique violation on room_number into domain.ErrConflict.
func mapRoomWriteErr(err error) error {
	if pgErrCode(err) == pgUniqueViolation {
		return fmt.Errorf("%w: room number already exists", domain.ErrConflict)
	}
	return err
}

// scanRoom maps a single database row into a domain.Room.
func scanRoom(s scanner) (domain.Room, error) {
	var (
		room domain.Room
		id   pgtype.UUID
	)
	err := s.Scan(&id, &room.RoomNumber, &room.Beds, &room.IsActive, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}
	room.ID = uuid.UUID(id.Bytes)
	room.CreatedAt = room.CreatedAt.UTC()
	room.UpdatedAt = room.UpdatedAt.UTC()
	return room, nil
}
