package xcal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/priya-anand/egroupware/recurrence"
)

// xCal keeps iCalendar's value syntax but in extended ISO form.
const (
	dateTimeLayout    = "2006-01-02T15:04:05"
	dateTimeUTCLayout = "2006-01-02T15:04:05Z"
	dateLayout        = "2006-01-02"
)

// Text is a property with a single text value, like uid or summary.
type Text struct {
	Name  string
	Value string
}

func (p Text) Encode() *etree.Element {
	elem := createElement(p.Name)
	value := createElement("text")
	value.SetText(p.Value)
	elem.AddChild(value)
	return elem
}

func (p *Text) Decode(elem *etree.Element) error {
	p.Name = elem.Tag
	if value := elem.FindElement("text"); value != nil {
		p.Value = value.Text()
	}
	return nil
}

// DateTime is a date-time property such as dtstart or dtend. A non-empty
// TZID is emitted as the tzid parameter; without one the value is written
// in UTC form with a trailing Z.
type DateTime struct {
	Name  string
	Value time.Time
	TZID  string
}

func (p DateTime) Encode() *etree.Element {
	elem := createElement(p.Name)
	if p.TZID != "" {
		params := createElement("parameters")
		tzid := createElement("tzid")
		text := createElement("text")
		text.SetText(p.TZID)
		tzid.AddChild(text)
		params.AddChild(tzid)
		elem.AddChild(params)
	}
	value := createElement("date-time")
	if p.TZID == "" {
		value.SetText(p.Value.UTC().Format(dateTimeUTCLayout))
	} else {
		value.SetText(p.Value.Format(dateTimeLayout))
	}
	elem.AddChild(value)
	return elem
}

func (p *DateTime) Decode(elem *etree.Element) error {
	p.Name = elem.Tag
	if tzid := elem.FindElement("parameters/tzid/text"); tzid != nil {
		p.TZID = tzid.Text()
	}
	value := elem.FindElement("date-time")
	if value == nil {
		return fmt.Errorf("xcal: property %s has no date-time value", elem.Tag)
	}
	raw := value.Text()
	if strings.HasSuffix(raw, "Z") {
		t, err := time.Parse(dateTimeUTCLayout, raw)
		if err != nil {
			return fmt.Errorf("xcal: parse date-time %q: %w", raw, err)
		}
		p.Value = t
		return nil
	}
	loc := time.UTC
	if p.TZID != "" {
		var err error
		loc, err = time.LoadLocation(p.TZID)
		if err != nil {
			return fmt.Errorf("xcal: load timezone %q: %w", p.TZID, err)
		}
	}
	t, err := time.ParseInLocation(dateTimeLayout, raw, loc)
	if err != nil {
		return fmt.Errorf("xcal: parse date-time %q: %w", raw, err)
	}
	p.Value = t
	return nil
}

// ExDate carries the excluded days of a series as date values.
type ExDate struct {
	Keys []recurrence.DateKey
}

func (p ExDate) Encode() *etree.Element {
	elem := createElement("exdate")
	for _, key := range p.Keys {
		year, month, day := key.Date()
		value := createElement("date")
		value.SetText(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
		elem.AddChild(value)
	}
	return elem
}

func (p *ExDate) Decode(elem *etree.Element) error {
	p.Keys = nil
	for _, value := range elem.FindElements("date") {
		t, err := time.Parse(dateLayout, value.Text())
		if err != nil {
			return fmt.Errorf("xcal: parse exdate %q: %w", value.Text(), err)
		}
		p.Keys = append(p.Keys, recurrence.DateKeyOf(t))
	}
	return nil
}

// Recur is the recur value of an rrule property.
type Recur struct {
	Freq       string
	Interval   int
	Until      time.Time
	ByDay      []string
	ByMonthDay []int
}

func (p Recur) Encode() *etree.Element {
	elem := createElement("rrule")
	value := createElement("recur")
	freq := createElement("freq")
	freq.SetText(p.Freq)
	value.AddChild(freq)
	if p.Interval > 1 {
		interval := createElement("interval")
		interval.SetText(strconv.Itoa(p.Interval))
		value.AddChild(interval)
	}
	for _, code := range p.ByDay {
		byday := createElement("byday")
		byday.SetText(code)
		value.AddChild(byday)
	}
	for _, day := range p.ByMonthDay {
		bymonthday := createElement("bymonthday")
		bymonthday.SetText(strconv.Itoa(day))
		value.AddChild(bymonthday)
	}
	if !p.Until.IsZero() {
		until := createElement("until")
		until.SetText(p.Until.UTC().Format(dateTimeUTCLayout))
		value.AddChild(until)
	}
	elem.AddChild(value)
	return elem
}

func (p *Recur) Decode(elem *etree.Element) error {
	value := elem.FindElement("recur")
	if value == nil {
		return fmt.Errorf("xcal: rrule has no recur value")
	}
	*p = Recur{}
	for _, child := range value.ChildElements() {
		switch child.Tag {
		case "freq":
			p.Freq = child.Text()
		case "interval":
			n, err := strconv.Atoi(child.Text())
			if err != nil {
				return fmt.Errorf("xcal: parse interval %q: %w", child.Text(), err)
			}
			p.Interval = n
		case "byday":
			p.ByDay = append(p.ByDay, child.Text())
		case "bymonthday":
			n, err := strconv.Atoi(child.Text())
			if err != nil {
				return fmt.Errorf("xcal: parse bymonthday %q: %w", child.Text(), err)
			}
			p.ByMonthDay = append(p.ByMonthDay, n)
		case "until":
			t, err := time.Parse(dateTimeUTCLayout, child.Text())
			if err != nil {
				return fmt.Errorf("xcal: parse until %q: %w", child.Text(), err)
			}
			p.Until = t
		}
	}
	return nil
}

var dayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// FromRule projects a recurrence rule onto its recur value. A non-recurring
// rule yields an empty Freq; callers skip the rrule property in that case.
func FromRule(r *recurrence.Rule) Recur {
	rec := Recur{Interval: r.Interval()}
	switch r.Type() {
	case recurrence.Daily:
		rec.Freq = "DAILY"
	case recurrence.Weekly:
		rec.Freq = "WEEKLY"
		rec.ByDay = byDayCodes(r.Weekdays(), 0)
	case recurrence.MonthlyByDate:
		rec.Freq = "MONTHLY"
		rec.ByMonthDay = []int{r.MonthlyDay()}
	case recurrence.MonthlyByWeekday:
		rec.Freq = "MONTHLY"
		rec.ByDay = byDayCodes(r.Weekdays(), r.MonthlyOrdinal())
	case recurrence.Yearly:
		rec.Freq = "YEARLY"
	}
	if end, ok := r.End().Get(); ok {
		rec.Until = end
	}
	return rec
}

func byDayCodes(w recurrence.Weekdays, ordinal int) []string {
	days := w.Days()
	codes := make([]string, 0, len(days))
	for _, day := range days {
		code := dayCodes[day]
		if ordinal != 0 {
			code = strconv.Itoa(ordinal) + code
		}
		codes = append(codes, code)
	}
	return codes
}
