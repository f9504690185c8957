package recurrence

import (
	"fmt"
	"time"
)

// Cursor is a forward-only position within a rule's occurrence sequence. It
// holds the only mutable state of an iteration; the rule it references stays
// read-only. A cursor belongs to a single goroutine, but any number of
// cursors may walk the same rule at once.
//
// The canonical loop:
//
//	for c := rule.Cursor(); c.Valid(); c.Next() {
//		use(c.Current())
//	}
type Cursor struct {
	rule    *Rule
	current time.Time
}

// Cursor returns a new cursor positioned at the series' first occurrence.
func (r *Rule) Cursor() *Cursor {
	c := &Cursor{rule: r}
	c.Reset()
	return c
}

// Current returns the occurrence the cursor points at. Callers must check
// Valid first; past the end the returned value is meaningless.
func (c *Cursor) Current() time.Time { return c.current }

// Key returns the current position as a date key.
func (c *Cursor) Key() DateKey { return DateKeyOf(c.current) }

// Valid reports whether the current position is still within the series.
func (c *Cursor) Valid() bool { return c.Key() <= c.rule.endKey }

// Reset rewinds to the series start. If the start date itself is excepted the
// cursor moves forward to the first non-excepted occurrence, so a fresh or
// reset cursor never points at an exception.
func (c *Cursor) Reset() {
	c.current = c.rule.start
	c.skipExceptions()
}

// Next advances to the following occurrence, skipping exception dates. An
// exception on what would have been the final occurrence simply ends the
// sequence; excluded dates are never substituted.
func (c *Cursor) Next() {
	c.step()
	c.skipExceptions()
}

// skipExceptions steps until the position is not an excepted date. The Valid
// guard is what terminates the walk when every remaining candidate up to the
// end is excepted.
func (c *Cursor) skipExceptions() {
	for c.Valid() && c.rule.isException(c.Key()) {
		c.step()
	}
}

// step advances by exactly one pattern iteration, ignoring exceptions. All
// arithmetic is wall-clock in the start's location: the time-of-day carries
// over unchanged, and out-of-range month or day values normalize the way
// calendars roll (day zero is the previous month's last day).
func (c *Cursor) step() {
	cur := c.current
	r := c.rule

	switch r.typ {
	case None:
		// One iteration only; a single step ends the series.
		c.current = cur.AddDate(0, 0, 1)

	case Daily:
		c.current = cur.AddDate(0, 0, r.interval)

	case Weekly:
		// Walk day by day within the week; the extra interval weeks are
		// inserted only at the Saturday boundary, so all selected days
		// of one week are produced before the skip.
		for {
			if r.interval > 1 && cur.Weekday() == time.Saturday {
				cur = cur.AddDate(0, 0, 7*(r.interval-1))
			}
			cur = cur.AddDate(0, 0, 1)
			if r.weekdays.Contains(cur.Weekday()) {
				break
			}
		}
		c.current = cur

	case MonthlyByWeekday:
		// Land on the target month's first day, or on the last day of
		// the target month for "last weekday" rules, then walk to the
		// wanted weekday.
		day, carry := 1, 0
		if r.monthlyOrdinal < 0 {
			day, carry = 0, 1
		}
		cur = setDate(cur, cur.Year(), int(cur.Month())+r.interval+carry, day)
		if r.monthlyOrdinal > 1 {
			cur = cur.AddDate(0, 0, 7*(r.monthlyOrdinal-1))
		}
		dir := 1
		if r.monthlyOrdinal < 0 {
			dir = -1
		}
		for !r.weekdays.Contains(cur.Weekday()) {
			cur = cur.AddDate(0, 0, dir)
		}
		c.current = cur

	case MonthlyByDate:
		day, carry := r.monthlyDay, 0
		if r.monthlyDay < 0 {
			// Day zero rolls back to the previous month's last day.
			day, carry = r.monthlyDay+1, 1
		}
		c.current = setDate(cur, cur.Year(), int(cur.Month())+r.interval+carry, day)

	case Yearly:
		c.current = cur.AddDate(r.interval, 0, 0)

	default:
		panic(fmt.Sprintf("recurrence: no step rule for type %d", r.typ))
	}
}

// setDate rebuilds t on the given calendar date, keeping its time-of-day and
// location. Month and day may be out of range; time.Date normalizes them.
func setDate(t time.Time, year, month, day int) time.Time {
	hour, min, sec := t.Clock()
	return time.Date(year, time.Month(month), day, hour, min, sec, t.Nanosecond(), t.Location())
}
