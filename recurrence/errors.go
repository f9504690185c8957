package recurrence

import "errors"

var (
	// ErrInvalidType is returned when a rule is built with a type code
	// outside the defined set.
	ErrInvalidType = errors.New("recurrence: invalid recurrence type")

	// ErrInvalidInterval is returned when a rule is built with an interval
	// below 1.
	ErrInvalidInterval = errors.New("recurrence: interval must be at least 1")

	// ErrUnknownTimezone is returned by FromEvent when the event record
	// declares a timezone name the zone database cannot resolve.
	ErrUnknownTimezone = errors.New("recurrence: unknown event timezone")
)
