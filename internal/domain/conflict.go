package domain

// FirstConflict returns the first reservation in existing whose interval
// overlaps candidate. The second result is false when the candidate is free.
func FirstConflict(candidate Interval, existing []Reservation) (Reservation, bool) {
	for _, r := range existing {
		if Overlaps(candidate, r.Interval) {
			return r, true
		}
	}
	return Reservation{}, false
}
