package recurrence

import (
	"fmt"
	"time"

	"github.com/priya-anand/egroupware/event"
)

// FromEvent builds the rule an event record describes. The record's declared
// timezone wins: the start is converted into it before construction, and with
// it every comparison the rule will ever make. A record timezone that the
// zone database cannot resolve fails with ErrUnknownTimezone; a zero interval
// is read as the stored default of 1.
func FromEvent(ev *event.Event) (*Rule, error) {
	loc := ev.Start.Location()
	if ev.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(ev.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, ev.Timezone)
		}
	}

	interval := ev.Recurrence.Interval
	if interval == 0 {
		interval = 1
	}

	return New(
		ev.Start.In(loc),
		Type(ev.Recurrence.Type),
		interval,
		ev.Recurrence.End,
		Weekdays(ev.Recurrence.Weekdays),
		ev.Recurrence.Exceptions,
	)
}

// EventFields projects the rule back into the durable record shape, for the
// caller to merge into its event. Exception timestamps are reconstructed at
// the series' own wall-clock time in the rule's zone; their dates round-trip
// exactly, which is all the date-keyed exception model preserves.
func (r *Rule) EventFields() event.Recurrence {
	fields := event.Recurrence{
		Type:     int(r.typ),
		Interval: r.interval,
		Weekdays: int(r.weekdays),
		End:      r.End(),
	}
	if len(r.exceptionKeys) > 0 {
		hour, min, sec := r.start.Clock()
		fields.Exceptions = make([]time.Time, len(r.exceptionKeys))
		for i, key := range r.exceptionKeys {
			year, month, day := key.Date()
			fields.Exceptions[i] = time.Date(year, month, day, hour, min, sec, 0, r.start.Location())
		}
	}
	return fields
}
