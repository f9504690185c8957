/*
Package recurrence computes the occurrence dates of repeating calendar events.

A rule is the immutable description of a series (pattern type, interval, end
condition, weekday set, exception dates); a cursor is a forward-only position
inside that series. Rules are built once and shared; each iteration owns its
own cursor.

# Basic Usage

	start := time.Date(2021, 6, 7, 9, 0, 0, 0, berlin) // a Monday
	rule, err := recurrence.New(start, recurrence.Weekly, 1,
		mo.None[time.Time](),
		recurrence.Monday|recurrence.Wednesday|recurrence.Friday,
		nil)
	if err != nil {
		log.Fatal(err)
	}
	for c := rule.Cursor(); c.Valid(); c.Next() {
		fmt.Println(c.Current())
	}

Series without an explicit end date stop iterating five years after the
start.

# Patterns

Six pattern types are modeled: none (a single occurrence), daily, weekly on a
set of weekdays, monthly on a day of the month, monthly on the nth or last
weekday, and yearly. Monthly rules derive their position from the start date:
starting on 2021-01-31 repeats on each month's last day, starting on the
second Tuesday repeats on second Tuesdays. That position is fixed at
construction and never drifts, no matter how short the months in between are.

# Event Records

FromEvent builds a rule from the application's event record, converting all
timestamps into the record's declared timezone; EventFields projects a rule
back into the durable field set. These two functions are the package's whole
surface towards the rest of the calendar:

	rule, err := recurrence.FromEvent(ev)
	...
	ev.Recurrence = rule.EventFields()

All comparisons inside a rule are date-based: end dates and exceptions are
reduced to year-month-day keys in the series' timezone, so time-of-day never
decides whether an occurrence exists.
*/
package recurrence
