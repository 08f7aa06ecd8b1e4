package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/roombook/internal/domain"
)

// dayLayout is the key format for per-day statistics buckets.
const dayLayout = "2006-01-02"

// ReservationRepo defines the persistence operations for Reservations.
// InsertIfFree is the only write path; reservations are never updated and are
// removed only when their room is deleted.
type ReservationRepo interface {
	// ListByRoom returns the reservations held by one room ordered by start time.
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Reservation, error)

	// InsertIfFree atomically checks the room for an overlapping reservation
	// and inserts a new one if there is none. Concurrent calls for the same
	// room are serialized; calls for different rooms are not.
	// Returns domain.ErrOverlap without writing anything on conflict, and
	// domain.ErrRoomNotFound if the room does not exist.
	InsertIfFree(ctx context.Context, roomID, userID uuid.UUID, iv domain.Interval) (domain.Reservation, error)

	// List returns one page of bookings ordered by start time descending,
	// plus the total number matching the filter. Duration labels are left empty.
	List(ctx context.Context, filter domain.ReservationFilter, page domain.PaginationParams) ([]domain.Booking, int64, error)

	// CountCreatedByDay counts reservations created in [from, to), keyed by
	// UTC calendar day ("2006-01-02"). Days with no reservations are absent.
	CountCreatedByDay(ctx context.Context, from, to time.Time) (map[string]int, error)

	// TopRooms returns up to limit rooms with at least one reservation,
	// ordered by reservation count descending and then room id ascending.
	TopRooms(ctx context.Context, limit int) ([]domain.RoomCount, error)
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db connection.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

func (r *pgReservationRepo) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]domain.Reservation, error) {
	const q = `
		SELECT id, room_id, user_id, start_time, end_time, created_at
		FROM reservations
		WHERE room_id = @room_id
		ORDER BY start_time`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"room_id": roomID})
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByRoom: %w", err)
	}
	defer rows.Close()

	reservations := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.ListByRoom: scan: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByRoom: rows: %w", err)
	}
	return reservations, nil
}

// InsertIfFree runs lock, check and insert in one transaction. The room row
// lock serializes writers for that room only. The exclusion constraint on the
// table rejects anything that slips past the check.
func (r *pgReservationRepo) InsertIfFree(ctx context.Context, roomID, userID uuid.UUID, iv domain.Interval) (domain.Reservation, error) {
	const (
		lockRoom = `SELECT id FROM rooms WHERE id = @room_id FOR UPDATE`

		overlapExists = `
			SELECT EXISTS (
				SELECT 1 FROM reservations
				WHERE room_id = @room_id
				  AND start_time < @end_time
				  AND @start_time < end_time
			)`

		insert = `
			INSERT INTO reservations (room_id, user_id, start_time, end_time)
			VALUES (@room_id, @user_id, @start_time, @end_time)
			RETURNING id, room_id, user_id, start_time, end_time, created_at`
	)

	args := pgx.NamedArgs{
		"room_id":    roomID,
		"user_id":    userID,
		"start_time": iv.Start(),
		"end_time":   iv.End(),
	}

	var result domain.Reservation
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var locked pgtype.UUID
		if err := tx.QueryRow(ctx, lockRoom, args).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRoomNotFound
			}
			return fmt.Errorf("lock room: %w", err)
		}

		var taken bool
		if err := tx.QueryRow(ctx, overlapExists, args).Scan(&taken); err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if taken {
			return domain.ErrOverlap
		}

		res, err := scanReservation(tx.QueryRow(ctx, insert, args))
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		result = res
		return nil
	})
	if err != nil {
		switch pgErrCode(err) {
		case pgExclusionViolation:
			err = domain.ErrOverlap
		case pgForeignKeyViolation:
			err = domain.ErrRoomNotFound
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.InsertIfFree: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) List(ctx context.Context, filter domain.ReservationFilter, page domain.PaginationParams) ([]domain.Booking, int64, error) {
	const q = `
		SELECT rv.id, rv.room_id, rv.user_id, rv.start_time, rv.end_time, rv.created_at,
		       rm.id, rm.room_number, rm.beds, rm.is_active, rm.created_at, rm.updated_at,
		       COUNT(*) OVER() AS total
		FROM reservations rv
		JOIN rooms rm ON rm.id = rv.room_id
		WHERE @user_id::uuid IS NULL OR rv.user_id = @user_id
		ORDER BY rv.start_time DESC, rv.id
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"user_id": filter.UserID, // nil lists every user's reservations
		"limit":   page.Limit,
		"offset":  page.Offset(),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.List: %w", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	var total int64
	for rows.Next() {
		var (
			b      domain.Booking
			res    reservationRow
			roomID pgtype.UUID
		)
		err := rows.Scan(
			&res.id, &res.roomID, &res.userID, &res.start, &res.end, &res.createdAt,
			&roomID, &b.Room.RoomNumber, &b.Room.Beds, &b.Room.IsActive, &b.Room.CreatedAt, &b.Room.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ReservationRepo.List: scan: %w", err)
		}
		b.Reservation, err = res.toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ReservationRepo.List: %w", err)
		}
		b.Room.ID = uuid.UUID(roomID.Bytes)
		b.Room.CreatedAt = b.Room.CreatedAt.UTC()
		b.Room.UpdatedAt = b.Room.UpdatedAt.UTC()
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.List: rows: %w", err)
	}

	// A page past the end returns no rows, so the window total is unavailable.
	if len(bookings) == 0 && page.Offset() > 0 {
		const countQ = `SELECT COUNT(*) FROM reservations WHERE @user_id::uuid IS NULL OR user_id = @user_id`
		if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.ReservationRepo.List: count: %w", err)
		}
	}
	return bookings, total, nil
}

func (r *pgReservationRepo) CountCreatedByDay(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const q = `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM reservations
		WHERE created_at >= @from AND created_at < @to
		GROUP BY day`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.CountCreatedByDay: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.CountCreatedByDay: scan: %w", err)
		}
		counts[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.CountCreatedByDay: rows: %w", err)
	}
	return counts, nil
}

func (r *pgReservationRepo) TopRooms(ctx context.Context, limit int) ([]domain.RoomCount, error) {
	const q = `
		SELECT rm.id, rm.room_number, COUNT(*) AS n
		FROM reservations rv
		JOIN rooms rm ON rm.id = rv.room_id
		GROUP BY rm.id, rm.room_number
		ORDER BY n DESC, rm.id ASC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.TopRooms: %w", err)
	}
	defer rows.Close()

	result := []domain.RoomCount{}
	for rows.Next() {
		var (
			rc domain.RoomCount
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &rc.RoomNumber, &rc.Count); err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.TopRooms: scan: %w", err)
		}
		rc.RoomID = uuid.UUID(id.Bytes)
		result = append(result, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.TopRooms: rows: %w", err)
	}
	return result, nil
}

// reservationRow holds the raw column values of a reservations row.
type reservationRow struct {
	id, roomID, userID pgtype.UUID
	start, end         time.Time
	createdAt          time.Time
}

// toDomain rebuilds the Interval through its constructor so a row can never
// produce an invalid value.
func (row reservationRow) toDomain() (domain.Reservation, error) {
	iv, err := domain.NewInterval(row.start, row.end)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("stored interval: %w", err)
	}
	return domain.Reservation{
		ID:        uuid.UUID(row.id.Bytes),
		RoomID:    uuid.UUID(row.roomID.Bytes),
		UserID:    uuid.UUID(row.userID.Bytes),
		Interval:  iv,
		CreatedAt: row.createdAt.UTC(),
	}, nil
}

// scanReservation maps a single database row into a domain.Reservation.
func scanReservation(s scanner) (domain.Reservation, error) {
	var row reservationRow
	err := s.Scan(&row.id, &row.roomID, &row.userID, &row.start, &row.end, &row.createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	return row.toDomain()
}
