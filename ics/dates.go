package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/priya-anand/egroupware/recurrence"
)

const (
	dateFormat        = "20060102"
	dateTimeFormat    = "20060102T150405"
	dateTimeUTCFormat = "20060102T150405Z"
)

// parseDates reads a comma-separated EXDATE value. Date-only entries (the
// VALUE=DATE form this package itself writes) are placed at midnight in the
// event's zone so they name the calendar day they look like; date-time
// entries resolve through their TZID parameter, UTC suffix or, floating, the
// event's zone.
func parseDates(value string, params ical.Params, loc *time.Location) ([]time.Time, error) {
	if value == "" {
		return nil, nil
	}

	dateOnly := strings.EqualFold(params.Get(ical.ParamValue), "DATE")

	entryLoc := loc
	if tzid := params.Get(ical.ParamTimezoneID); tzid != "" {
		var err error
		entryLoc, err = time.LoadLocation(tzid)
		if err != nil {
			return nil, fmt.Errorf("load TZID %q: %w", tzid, err)
		}
	}

	var dates []time.Time
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		var t time.Time
		var err error
		switch {
		case dateOnly:
			t, err = time.ParseInLocation(dateFormat, entry, loc)
		case strings.HasSuffix(entry, "Z"):
			t, err = time.Parse(dateTimeUTCFormat, entry)
		default:
			t, err = time.ParseInLocation(dateTimeFormat, entry, entryLoc)
			if err != nil {
				// Some producers mix date-only entries into a
				// date-time EXDATE.
				t, err = time.ParseInLocation(dateFormat, entry, loc)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", entry, err)
		}
		dates = append(dates, t)
	}

	return dates, nil
}

func joinDateKeys(keys []recurrence.DateKey) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		year, month, day := key.Date()
		parts[i] = fmt.Sprintf("%04d%02d%02d", year, int(month), day)
	}
	return strings.Join(parts, ",")
}
