package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing room number, beds below one).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write collides with a uniqueness rule,
// such as a duplicate room number. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// Admission errors. Each one is a distinct outcome of ReservationService.Create
// so callers can tell a business rejection apart from a failure.
var (
	// ErrInvalidInterval marks a malformed or logically invalid time range.
	// The concrete error is an *IntervalError carrying the offending field.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomInactive is returned when the room exists but is not bookable.
	ErrRoomInactive = errors.New("room is not available for booking")

	// ErrOverlap is returned when the candidate interval intersects an
	// already admitted reservation for the same room.
	ErrOverlap = errors.New("room is already booked for the selected time period")

	// ErrStorage wraps persistence failures unrelated to overlap.
	// Retrying the whole admission is safe because it re-runs the check.
	ErrStorage = errors.New("storage failure")
)

// IntervalError describes why a time range was rejected.
// Field is the request field at fault ("start_time" or "end_time").
type IntervalError struct {
	Field  string
	Reason string
}

func (e *IntervalError) Error() string {
	return e.Field + ": " + e.Reason
}

// Unwrap lets errors.Is(err, ErrInvalidInterval) match.
func (e *IntervalError) Unwrap() error {
	return ErrInvalidInterval
}
