// Package event holds the calendar application's plain event record. The
// record carries recurrence settings as raw persisted values (type code,
// interval, weekday bits, exception timestamps); building something that can
// actually iterate from them is the recurrence package's job.
package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Recurrence is the durable recurrence field set of an event record, stored
// field-for-field. Type is the raw pattern code, Weekdays the raw 7-bit day
// set; both are deliberately untyped here so the record round-trips whatever
// the store holds.
type Recurrence struct {
	Type       int
	Interval   int
	End        mo.Option[time.Time]
	Weekdays   int
	Exceptions []time.Time
}

// Event is one calendar entry as the application passes it around.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string

	Start time.Time
	End   time.Time

	// Timezone is the IANA name of the zone the event was entered in. All
	// recurrence comparisons happen in this zone. Empty means "use Start's
	// location as-is".
	Timezone string

	Recurrence Recurrence
}

// New creates a non-recurring event with a fresh UID, capturing start's zone
// as the event timezone.
func New(summary string, start, end time.Time) *Event {
	return &Event{
		UID:        uuid.NewString(),
		Summary:    summary,
		Start:      start,
		End:        end,
		Timezone:   start.Location().String(),
		Recurrence: Recurrence{Interval: 1},
	}
}

// Duration returns the length of a single occurrence.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
