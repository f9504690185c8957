package recurrence

import (
	"strings"
	"time"
)

// Type identifies the repetition pattern of a series. The numeric values are
// the persisted type codes of the calendar store and must not be reordered.
type Type int

const (
	// None is a non-recurring event; the series has exactly one occurrence.
	None Type = iota
	// Daily repeats every interval days.
	Daily
	// Weekly repeats on the weekdays of the rule's weekday set, every
	// interval weeks.
	Weekly
	// MonthlyByDate repeats on the same day of the month (the 15th, the
	// last day, ...).
	MonthlyByDate
	// MonthlyByWeekday repeats on the same ordinal weekday of the month
	// (the second Tuesday, the last Friday, ...).
	MonthlyByWeekday
	// Yearly repeats on the same date every interval years.
	Yearly
)

// Valid reports whether t is one of the defined type codes.
func (t Type) Valid() bool {
	return t >= None && t <= Yearly
}

var typeLabels = map[Type]string{
	None:             "Not recurring",
	Daily:            "Daily",
	Weekly:           "Weekly",
	MonthlyByDate:    "Monthly (by date)",
	MonthlyByWeekday: "Monthly (by day)",
	Yearly:           "Yearly",
}

// String returns the display label for the type, as used in rule descriptions.
func (t Type) String() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return "Unknown"
}

// Weekdays is a 7-bit set of days of the week. Bit positions follow
// time.Weekday, so Sunday is bit 0 and Saturday is bit 6.
type Weekdays int

const (
	Sunday    Weekdays = 1 << time.Sunday
	Monday    Weekdays = 1 << time.Monday
	Tuesday   Weekdays = 1 << time.Tuesday
	Wednesday Weekdays = 1 << time.Wednesday
	Thursday  Weekdays = 1 << time.Thursday
	Friday    Weekdays = 1 << time.Friday
	Saturday  Weekdays = 1 << time.Saturday

	// AllDays selects every day of the week.
	AllDays = Sunday | Monday | Tuesday | Wednesday | Thursday | Friday | Saturday
	// Workdays selects Monday through Friday.
	Workdays = Monday | Tuesday | Wednesday | Thursday | Friday
)

// WeekdaysOf builds a set from individual days.
func WeekdaysOf(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << d
	}
	return w
}

// Contains reports whether the set includes the given day.
func (w Weekdays) Contains(d time.Weekday) bool {
	return w&(1<<d) != 0
}

// Days lists the selected days in time.Weekday order (Sunday first).
func (w Weekdays) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String names the selected days, collapsing the two common sets.
func (w Weekdays) String() string {
	switch {
	case w&AllDays == AllDays:
		return "all days"
	case w == Workdays:
		return "workdays"
	}
	names := make([]string, 0, 7)
	for _, d := range w.Days() {
		names = append(names, d.String())
	}
	return strings.Join(names, ", ")
}

// DateKey is a calendar date reduced to a single comparable integer of the
// form year*10000 + month*100 + day. Time-of-day and timezone are gone once a
// key is made, so keys from different instants compare purely by local date.
type DateKey int

// DateKeyOf reduces t to its date key in t's own location.
func DateKeyOf(t time.Time) DateKey {
	year, month, day := t.Date()
	return DateKey(year*10000 + int(month)*100 + day)
}

// Date returns the key's calendar components.
func (k DateKey) Date() (year int, month time.Month, day int) {
	return int(k) / 10000, time.Month(int(k) / 100 % 100), int(k) % 100
}

// daysInMonth returns the number of days in the given month. Day zero of the
// following month normalizes to the last day of this one, which makes leap
// years come out right without any divisibility rules here.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
