package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/roombook/internal/domain"
	"github.com/pkordes/roombook/internal/repo"
	"github.com/pkordes/roombook/testutil"
)

// base is a fixed day far in the future so admissions never collide with
// real data and the interval rules stay deterministic.
var base = time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)

// hours builds an interval on the base day from hour from to hour to.
func hours(from, to int) domain.Interval {
	return domain.MustInterval(base.Add(time.Duration(from)*time.Hour), base.Add(time.Duration(to)*time.Hour))
}

func TestReservationRepo_InsertIfFree(t *testing.T) {
	tx := testutil.NewTx(t)
	rooms := repo.NewRoomRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	room, err := rooms.Create(ctx, roomFixture("101"))
	require.NoError(t, err)
	user := uuid.New()

	got, err := r.InsertIfFree(ctx, room.ID, user, hours(10, 12))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, room.ID, got.RoomID)
	assert.Equal(t, user, got.UserID)
	assert.True(t, got.Interval.Start().Equal(hours(10, 12).Start()))
	assert.Equal(t, time.UTC, got.Interval.Start().Location())
	assert.False(t, got.CreatedAt.IsZero())
}

func TestReservationRepo_InsertIfFree_Overlap(t *testing.T) {
	tx := testutil.NewTx(t)
	rooms := repo.NewRoomRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	room, err := rooms.Create(ctx, roomFixture("101"))
	require.NoError(t, err)
	_, err = r.InsertIfFree(ctx, room.ID, uuid.New(), hours(10, 12))
	require.NoError(t, err)

	_, err = r.InsertIfFree(ctx, room.ID, uuid.New(), hours(11, 13))
	assert.ErrorIs(t, err, domain.ErrOverlap)

	// Touching endpoints do not overlap.
	_, err = r.InsertIfFree(ctx, room.ID, uuid.New(), hours(12, 14))
	assert.NoError(t, err)

	list, err := r.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Interval.Start().Before(list[1].Interval.Start()), "ordered by start")
}

func TestReservationRepo_InsertIfFree_OtherRoomDoesNotConflict(t *testing.T) {
	tx := testutil.NewTx(t)
	rooms := repo.NewRoomRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	a, err := rooms.Create(ctx, roomFixture("101"))
	require.NoError(t, err)
	b, err := rooms.Create(ctx, roomFixture("102"))
	require.NoError(t, err)

	_, err = r.InsertIfFree(ctx, a.ID, uuid.New(), hours(10, 12))
	require.NoError(t, err)
	_, err = r.InsertIfFree(ctx, b.ID, uuid.New(), hours(10, 12))
	assert.NoError(t, err)
}

func TestReservationRepo_InsertIfFree_UnknownRoom(t *testing.T) {
	r := repo.NewReservationRepo(testutil.NewTx(t))

	_, err := r.InsertIfFree(context.Background(), uuid.New(), uuid.New(), hours(10, 12))
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestReservationRepo_ExclusionConstraint(t *testing.T) {
	tx := testutil.NewTx(t)
	rooms := repo.NewRoomRepo(tx)
	ctx := context.Background()

	room, err := rooms.Create(ctx, roomFixture("101"))
	require.NoError(t, err)

	const q = `INSERT INTO reservations (room_id, user_id, start_time, end_time) VALUES ($1, $2, $3, $4)`
	_, err = tx.Exec(ctx, q, room.ID, uuid.New(), hours(10, 12).Start(), hours(10, 12).End())
	require.NoError(t, err)

	_, err = tx.Exec(ctx, q, room.ID, uuid.New(), hours(11, 13).Start(), hours(11, 13).End())
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23P01", pgErr.Code)
}

func TestReservationRepo_List(t *testing.T) {
	tx := testutil.NewTx(t)
	rooms := repo.NewRoomRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	room, err := rooms.Create(ctx, roomFixture("101"))
	require.NoError(t, err)
	alice, bob := uuid.New(), uuid.New()
	for _, iv := range []domain.Interval{hours(1, 2), hours(3, 4), hours(5, 6)} {
		_, err := r.InsertIfFree(ctx, room.ID, alice, iv)
		require.NoError(t, err)
	}
	_, err = r.InsertIfFree(ctx, room.ID, bob, hours(7, 8))
	require.NoError(t, err)

	page := domain.NewPaginationParams(nil, ptr(2))
	got, total, err := r.List(ctx, domain.ReservationFilter{UserID: &alice}, page)

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, got, 2)
	assert.True(t, got[0].Interval.Start().Equal(hours(5, 6).Start()), "newest start first")
	assert.Equal(t, "101", got[0].Room.RoomNumber)

	all, total, err := r.List(ctx, domain.ReservationFilter{}, domain.NewPaginationParams(ptr(5), nil))
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, int64(4), total, "total is reported past the last page")
}

func TestReservationRepo_Statistics(t *testing.T) {
	tx := testutil.NewTx(t)
	rooms := repo.NewRoomRepo(tx)
	r := repo.NewReservationRepo(tx)
	ctx := context.Background()

	busy, err := rooms.Create(ctx, roomFixture("101"))
	require.NoError(t, err)
	quiet, err := rooms.Create(ctx, roomFixture("102"))
	require.NoError(t, err)
	_, err = rooms.Create(ctx, roomFixture("103"))
	require.NoError(t, err)

	for _, iv := range []domain.Interval{hours(1, 2), hours(3, 4)} {
		_, err := r.InsertIfFree(ctx, busy.ID, uuid.New(), iv)
		require.NoError(t, err)
	}
	_, err = r.InsertIfFree(ctx, quiet.ID, uuid.New(), hours(1, 2))
	require.NoError(t, err)

	top, err := r.TopRooms(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2, "rooms without reservations are omitted")
	assert.Equal(t, busy.ID, top[0].RoomID)
	assert.Equal(t, 2, top[0].Count)
	assert.Equal(t, "102", top[1].RoomNumber)

	// created_at is now() for every row in this transaction.
	now := time.Now().UTC()
	counts, err := r.CountCreatedByDay(ctx, now.Add(-24*time.Hour), now.Add(24*time.Hour))
	require.NoError(t, err)
	sum := 0
	for _, n := range counts {
		sum += n
	}
	assert.Equal(t, 3, sum)
}

func ptr[T any](v T) *T { return &v }
