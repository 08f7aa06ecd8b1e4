package handler

import (
	"net/http"

	"github.com/pkordes/roombook/internal/domain"
)

type statisticsResponse struct {
	Daily []domain.DailyCount `json:"daily"`
	Rooms []domain.RoomCount  `json:"rooms"`
}

// GetStatistics handles GET /admin/statistics.
// ?days= sets the daily window (default 7) and ?limit= the room count (default 10).
func (s *Server) GetStatistics(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	stats, err := s.stats.Summary(r.Context(), deref(days), deref(limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statisticsResponse{Daily: stats.Daily, Rooms: stats.Rooms})
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
