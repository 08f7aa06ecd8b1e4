// Package service contains the business logic of the room reservation API.
// Services sit between the HTTP handlers and the repos: they validate input,
// enforce admission rules, and translate repo errors into domain errors.
package service

import "time"

// Clock supplies the current instant. Admission uses it for the "starts in
// the future" rule and statistics use it to find today.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
