// Package ics projects event records to and from iCalendar. Only the
// recurrence subset the calendar data model can store survives the trip: one
// frequency, one interval, one weekday set, one ordinal, an end date and
// exception dates. RRULEs outside that subset are rejected with
// ErrUnsupportedRule rather than silently narrowed.
package ics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/priya-anand/egroupware/event"
	"github.com/priya-anand/egroupware/recurrence"
)

const prodID = "-//EGroupware//NONSGML EGroupware Calendar//EN"

// ErrUnsupportedRule is returned when an imported RRULE uses features the
// recurrence model cannot represent (COUNT, BYSETPOS, sub-daily frequencies,
// mixed BYDAY ordinals and so on).
var ErrUnsupportedRule = errors.New("ics: unsupported recurrence rule")

// ToVEvent renders the event record as a VEVENT. The recurrence fields are
// validated by building the actual rule first, so the exported RRULE carries
// the derived values (a last-day series exports BYMONTHDAY=-1 no matter which
// day number the record was created from) and a record that cannot form a
// rule does not export at all.
func ToVEvent(ev *event.Event) (*ical.Event, error) {
	rule, err := recurrence.FromEvent(ev)
	if err != nil {
		return nil, err
	}

	ve := ical.NewEvent()

	uid := ev.UID
	if uid == "" {
		uid = uuid.NewString()
	}
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetText(ical.PropSummary, ev.Summary)
	if ev.Description != "" {
		ve.Props.SetText(ical.PropDescription, ev.Description)
	}
	if ev.Location != "" {
		ve.Props.SetText(ical.PropLocation, ev.Location)
	}

	// The rule's start is already converted into the record's declared
	// timezone; writing it keeps DTSTART and RRULE in one frame.
	start := rule.Start()
	ve.Props.SetDateTime(ical.PropDateTimeStart, start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(ev.Duration()))

	if rule.Type() != recurrence.None {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = rruleString(rule)
		ve.Props.Set(prop)

		if keys := rule.Exceptions(); len(keys) > 0 {
			prop := ical.NewProp(ical.PropExceptionDates)
			prop.Params.Set(ical.ParamValue, "DATE")
			prop.Value = joinDateKeys(keys)
			ve.Props.Set(prop)
		}
	}

	return ve, nil
}

// FromVEvent reads a VEVENT back into an event record. DTSTART decides the
// event timezone; EXDATE values are interpreted in that zone when they are
// date-only.
func FromVEvent(ve *ical.Event) (*event.Event, error) {
	ev := &event.Event{Recurrence: event.Recurrence{Interval: 1}}

	ev.UID = propValue(ve.Props, ical.PropUID)
	if ev.UID == "" {
		ev.UID = uuid.NewString()
	}
	ev.Summary = propValue(ve.Props, ical.PropSummary)
	ev.Description = propValue(ve.Props, ical.PropDescription)
	ev.Location = propValue(ve.Props, ical.PropLocation)

	startProp := ve.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return nil, fmt.Errorf("ics: event %q has no DTSTART", ev.UID)
	}
	start, err := startProp.DateTime(nil)
	if err != nil {
		return nil, fmt.Errorf("ics: read DTSTART: %w", err)
	}
	ev.Start = start
	ev.Timezone = timezoneName(startProp, start)

	if endProp := ve.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		end, err := endProp.DateTime(nil)
		if err != nil {
			return nil, fmt.Errorf("ics: read DTEND: %w", err)
		}
		ev.End = end
	} else if durProp := ve.Props.Get(ical.PropDuration); durProp != nil {
		dur, err := durProp.Duration()
		if err != nil {
			return nil, fmt.Errorf("ics: read DURATION: %w", err)
		}
		ev.End = start.Add(dur)
	} else {
		ev.End = start
	}

	if prop := ve.Props.Get(ical.PropRecurrenceRule); prop != nil && prop.Value != "" {
		rec, err := parseRule(prop.Value)
		if err != nil {
			return nil, err
		}
		ev.Recurrence = rec
	}

	for _, prop := range ve.Props.Values(ical.PropExceptionDates) {
		dates, err := parseDates(prop.Value, prop.Params, start.Location())
		if err != nil {
			return nil, fmt.Errorf("ics: read EXDATE: %w", err)
		}
		ev.Recurrence.Exceptions = append(ev.Recurrence.Exceptions, dates...)
	}

	return ev, nil
}

// Encode writes the events as one VCALENDAR stream.
func Encode(w io.Writer, events ...*event.Event) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	for _, ev := range events {
		ve, err := ToVEvent(ev)
		if err != nil {
			return fmt.Errorf("ics: export event %q: %w", ev.UID, err)
		}
		cal.Children = append(cal.Children, ve.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("ics: encode calendar: %w", err)
	}
	return nil
}

// Decode reads a VCALENDAR stream and returns its events.
func Decode(r io.Reader) ([]*event.Event, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("ics: decode calendar: %w", err)
	}

	ves := cal.Events()
	if len(ves) == 0 {
		return nil, fmt.Errorf("ics: no events in calendar")
	}

	events := make([]*event.Event, 0, len(ves))
	for _, ve := range ves {
		ev, err := FromVEvent(&ve)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func propValue(props ical.Props, name string) string {
	if prop := props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}

// timezoneName recovers the IANA zone name an imported event was written in.
func timezoneName(prop *ical.Prop, start time.Time) string {
	if prop != nil {
		if tzid := prop.Params.Get(ical.ParamTimezoneID); tzid != "" {
			return tzid
		}
	}
	if start.Location() == time.UTC {
		return "UTC"
	}
	return start.Location().String()
}
