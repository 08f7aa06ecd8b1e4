package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/roombook/internal/domain"
	"github.com/pkordes/roombook/internal/repo"
)

const (
	DefaultStatsDays  = 7
	MaxStatsDays      = 90
	DefaultStatsRooms = 10
	MaxStatsRooms     = 100
)

// StatsService computes the read-only dashboard rollups.
type StatsService struct {
	reservations repo.ReservationRepo
	clock        Clock
}

// NewStatsService constructs a StatsService backed by the provided repo.
func NewStatsService(reservations repo.ReservationRepo, clock Clock) *StatsService {
	return &StatsService{reservations: reservations, clock: clock}
}

// DailyCounts returns one entry per UTC calendar day for the last days days,
// ending today, oldest first. Days without reservations have a zero count.
// days == 0 means DefaultStatsDays; values outside 1..MaxStatsDays are rejected.
func (s *StatsService) DailyCounts(ctx context.Context, days int) ([]domain.DailyCount, error) {
	if days == 0 {
		days = DefaultStatsDays
	}
	if days < 1 || days > MaxStatsDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrValidation, MaxStatsDays)
	}

	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	counts, err := s.reservations.CountCreatedByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("service.StatsService.DailyCounts: %w", err)
	}

	result := make([]domain.DailyCount, 0, days)
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		result = append(result, domain.DailyCount{
			Date:  key,
			Label: d.Format("Jan 02"),
			Count: counts[key],
		})
	}
	return result, nil
}

// TopRooms returns the most reserved rooms, busiest first. Rooms with equal
// counts are ordered by ascending room id.
// limit == 0 means DefaultStatsRooms; values outside 1..MaxStatsRooms are rejected.
func (s *StatsService) TopRooms(ctx context.Context, limit int) ([]domain.RoomCount, error) {
	if limit == 0 {
		limit = DefaultStatsRooms
	}
	if limit < 1 || limit > MaxStatsRooms {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, MaxStatsRooms)
	}
	rooms, err := s.reservations.TopRooms(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service.StatsService.TopRooms: %w", err)
	}
	if rooms == nil {
		rooms = []domain.RoomCount{}
	}
	return rooms, nil
}

// Summary fetches both rollups concurrently.
func (s *StatsService) Summary(ctx context.Context, days, limit int) (domain.Statistics, error) {
	var stats domain.Statistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		daily, err := s.DailyCounts(gctx, days)
		stats.Daily = daily
		return err
	})
	g.Go(func() error {
		rooms, err := s.TopRooms(gctx, limit)
		stats.Rooms = rooms
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Statistics{}, err
	}
	return stats, nil
}
