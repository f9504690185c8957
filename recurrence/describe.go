package recurrence

import (
	"fmt"
	"strings"
)

var ordinalNames = map[int]string{
	1:  "first",
	2:  "second",
	3:  "third",
	4:  "fourth",
	5:  "fifth",
	-1: "last",
}

// Describe renders the rule for display: the pattern name, the repeated
// weekdays or monthly position, the interval when above 1 and the end date
// when one was given. It derives everything from the rule's fields and never
// iterates.
func (r *Rule) Describe() string {
	var b strings.Builder
	b.WriteString(r.typ.String())

	switch r.typ {
	case Weekly:
		b.WriteString(", on ")
		b.WriteString(r.weekdays.String())
	case MonthlyByWeekday:
		b.WriteString(", on the ")
		b.WriteString(ordinalNames[r.monthlyOrdinal])
		b.WriteString(" ")
		names := make([]string, 0, 7)
		for _, d := range r.weekdays.Days() {
			names = append(names, d.String())
		}
		b.WriteString(strings.Join(names, ", "))
	case MonthlyByDate:
		if r.monthlyDay < 0 {
			b.WriteString(", on the last day")
		} else {
			fmt.Fprintf(&b, ", on day %d", r.monthlyDay)
		}
	}

	if r.typ != None && r.interval > 1 {
		fmt.Fprintf(&b, ", every %d %s", r.interval, intervalUnits[r.typ])
	}
	if r.typ != None && r.hasEnd {
		b.WriteString(", until ")
		b.WriteString(r.end.Format("2006-01-02"))
	}
	return b.String()
}

var intervalUnits = map[Type]string{
	Daily:            "days",
	Weekly:           "weeks",
	MonthlyByDate:    "months",
	MonthlyByWeekday: "months",
	Yearly:           "years",
}

// String is Describe, so rules print readably.
func (r *Rule) String() string { return r.Describe() }
