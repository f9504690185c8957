package recurrence

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/mo"
)

// unboundedYears caps iteration of series that have no end date. The cap is
// applied while iterating and is never written back into the stored record.
const unboundedYears = 5

// Rule is the immutable description of a repeating series: pattern type,
// interval, end condition, weekday set and exception dates, all anchored at a
// timezone-aware start instant. Every timestamp handed in is converted to the
// start's location before any comparison, so a rule has exactly one frame of
// reference.
//
// A Rule never changes after New returns and may be shared by any number of
// concurrent cursors.
type Rule struct {
	start    time.Time
	typ      Type
	interval int

	end    time.Time
	endKey DateKey
	hasEnd bool

	weekdays Weekdays

	// Derived once from start, never recomputed while stepping.
	monthlyOrdinal int // MonthlyByWeekday: 1..5, or -1 for the month's last
	monthlyDay     int // MonthlyByDate: day of month, or -1 for the last day

	exceptions    map[DateKey]struct{}
	exceptionKeys []DateKey // sorted, for stable round-trips
}

// New builds a rule. typ must be one of the defined type codes and interval
// must be at least 1.
//
// Derivations applied here, once:
//   - MonthlyByWeekday: the ordinal of start's weekday within its month,
//     where a day in the month's final week counts as "last" (-1).
//   - MonthlyByDate: start's day of month, or -1 when start is the last day.
//   - End: a missing end date is capped at start+5 years; None series end
//     iteration the day they start, though a stored end date is kept for
//     round-tripping. An explicit end is converted to start's location before
//     being reduced to a date key.
//   - Weekdays: Weekly and MonthlyByWeekday rules with an empty set default
//     to start's own weekday.
//   - Exceptions: reduced to date keys in start's location; time-of-day in
//     exception timestamps is ignored.
func New(start time.Time, typ Type, interval int, end mo.Option[time.Time], weekdays Weekdays, exceptions []time.Time) (*Rule, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, typ)
	}
	if interval < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, interval)
	}

	r := &Rule{
		start:    start,
		typ:      typ,
		interval: interval,
	}

	switch typ {
	case MonthlyByWeekday:
		day := start.Day()
		if day >= 21 && day > daysInMonth(start.Year(), start.Month())-7 {
			r.monthlyOrdinal = -1
		} else {
			r.monthlyOrdinal = 1 + (day-1)/7
		}
	case MonthlyByDate:
		r.monthlyDay = start.Day()
		if r.monthlyDay >= 28 && start.AddDate(0, 0, 1).Month() != start.Month() {
			r.monthlyDay = -1
		}
	}

	switch {
	case end.IsPresent():
		r.end = end.MustGet().In(start.Location())
		r.hasEnd = true
	case typ == None:
		r.end = start
	default:
		r.end = start.AddDate(unboundedYears, 0, 0)
	}
	r.endKey = DateKeyOf(r.end)
	if typ == None {
		// Self-terminating: one occurrence, ending the day it starts. A
		// stored end date survives in the accessors but never extends
		// iteration.
		r.endKey = DateKeyOf(start)
	}

	// Only the low seven bits of the set are meaningful.
	r.weekdays = weekdays & AllDays
	if r.weekdays == 0 && (typ == Weekly || typ == MonthlyByWeekday) {
		r.weekdays = 1 << start.Weekday()
	}

	if len(exceptions) > 0 {
		r.exceptions = make(map[DateKey]struct{}, len(exceptions))
		for _, ex := range exceptions {
			key := DateKeyOf(ex.In(start.Location()))
			if _, dup := r.exceptions[key]; dup {
				continue
			}
			r.exceptions[key] = struct{}{}
			r.exceptionKeys = append(r.exceptionKeys, key)
		}
		sort.Slice(r.exceptionKeys, func(i, j int) bool {
			return r.exceptionKeys[i] < r.exceptionKeys[j]
		})
	}

	return r, nil
}

// Start returns the series' reference instant.
func (r *Rule) Start() time.Time { return r.start }

// Type returns the repetition pattern.
func (r *Rule) Type() Type { return r.typ }

// Interval returns the step multiplier (every Nth day/week/month/year).
func (r *Rule) Interval() int { return r.interval }

// End returns the explicit end date, if one was given. The internal 5-year
// iteration cap of open-ended series is not an end date and is not reported
// here.
func (r *Rule) End() mo.Option[time.Time] {
	if !r.hasEnd {
		return mo.None[time.Time]()
	}
	return mo.Some(r.end)
}

// EndKey returns the date key iteration stops after, whether it comes from an
// explicit end date, the open-ended cap, or a None series' own start day.
func (r *Rule) EndKey() DateKey { return r.endKey }

// Weekdays returns the weekday set. For Weekly and MonthlyByWeekday rules it
// is never empty.
func (r *Rule) Weekdays() Weekdays { return r.weekdays }

// MonthlyOrdinal returns which occurrence of the weekday within a month the
// rule repeats on (1..5, -1 for the last). Zero for other rule types.
func (r *Rule) MonthlyOrdinal() int { return r.monthlyOrdinal }

// MonthlyDay returns the day of month a MonthlyByDate rule repeats on, -1 for
// the last day of the month. Zero for other rule types.
func (r *Rule) MonthlyDay() int { return r.monthlyDay }

// Exceptions returns the excluded date keys in ascending order.
func (r *Rule) Exceptions() []DateKey {
	keys := make([]DateKey, len(r.exceptionKeys))
	copy(keys, r.exceptionKeys)
	return keys
}

func (r *Rule) isException(key DateKey) bool {
	_, ok := r.exceptions[key]
	return ok
}
