package domain

import "errors"

var (
	// ErrNotFound is returned when a stop or route name is unknown.
	ErrNotFound = errors.New("not found")

	// ErrStopNotFound is returned by itinerary planning when either endpoint is unknown.
	ErrStopNotFound = errors.New("stop not found")

	// ErrNoRoute is returned when both stops exist but no path connects them.
	ErrNoRoute = errors.New("no route")

	// ErrInvalidNetwork wraps every load-time rejection of a network document.
	ErrInvalidNetwork = errors.New("invalid network")
)
