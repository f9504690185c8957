// Package xcal renders event records as xCal (RFC 6321), the XML form of
// iCalendar. Property values are built as etree elements so callers embedding
// them in larger documents can graft the elements directly.
package xcal

import (
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"

	"github.com/priya-anand/egroupware/event"
	"github.com/priya-anand/egroupware/recurrence"
)

// Namespace is the xCal XML namespace, declared on the document root.
const Namespace = "urn:ietf:params:xml:ns:icalendar-2.0"

const prodID = "-//EGroupware//NONSGML EGroupware Calendar//EN"

// Property interface for all xCal property types (use pointer for Decode!)
type Property interface {
	Encode() *etree.Element
	Decode(element *etree.Element) error
}

// createElement creates an unprefixed element; xCal puts everything in one
// default namespace on the root.
func createElement(name string) *etree.Element {
	return etree.NewElement(name)
}

// Document builds a complete icalendar document for one event. The
// recurrence fields are validated by building the rule, exactly as the ICS
// projection does, so the emitted rrule carries derived values.
func Document(ev *event.Event) (*etree.Document, error) {
	rule, err := recurrence.FromEvent(ev)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	icalendar := doc.CreateElement("icalendar")
	icalendar.CreateAttr("xmlns", Namespace)
	vcalendar := icalendar.CreateElement("vcalendar")

	calProps := vcalendar.CreateElement("properties")
	calProps.AddChild(Text{Name: "version", Value: "2.0"}.Encode())
	calProps.AddChild(Text{Name: "prodid", Value: prodID}.Encode())

	vevent := vcalendar.CreateElement("components").CreateElement("vevent")
	props := vevent.CreateElement("properties")

	props.AddChild(Text{Name: "uid", Value: ev.UID}.Encode())
	props.AddChild(Text{Name: "summary", Value: ev.Summary}.Encode())
	if ev.Description != "" {
		props.AddChild(Text{Name: "description", Value: ev.Description}.Encode())
	}
	if ev.Location != "" {
		props.AddChild(Text{Name: "location", Value: ev.Location}.Encode())
	}

	start := rule.Start()
	tzid := ""
	if start.Location() != time.UTC {
		tzid = start.Location().String()
	}
	props.AddChild(DateTime{Name: "dtstart", Value: start, TZID: tzid}.Encode())
	props.AddChild(DateTime{Name: "dtend", Value: start.Add(ev.Duration()), TZID: tzid}.Encode())

	if rule.Type() != recurrence.None {
		props.AddChild(FromRule(rule).Encode())
		if keys := rule.Exceptions(); len(keys) > 0 {
			props.AddChild(ExDate{Keys: keys}.Encode())
		}
	}

	return doc, nil
}

// Encode writes the event's xCal document, indented.
func Encode(w io.Writer, ev *event.Event) error {
	doc, err := Document(ev)
	if err != nil {
		return err
	}
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("xcal: write document: %w", err)
	}
	return nil
}
