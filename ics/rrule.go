package ics

import (
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/priya-anand/egroupware/event"
	"github.com/priya-anand/egroupware/recurrence"
)

// rruleWeekdays maps time.Weekday to the RRULE day codes, indexed Sunday
// first like time.Weekday itself.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

func weekdayFromRRule(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

// rruleString renders a validated rule as an RRULE value. The derived fields
// carry the semantics: last-day rules come out as BYMONTHDAY=-1, ordinal
// weekday rules as prefixed BYDAY entries.
func rruleString(r *recurrence.Rule) string {
	opt := rrule.ROption{}

	switch r.Type() {
	case recurrence.Daily:
		opt.Freq = rrule.DAILY
	case recurrence.Weekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = byweekday(r.Weekdays(), 0)
	case recurrence.MonthlyByDate:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{r.MonthlyDay()}
	case recurrence.MonthlyByWeekday:
		opt.Freq = rrule.MONTHLY
		opt.Byweekday = byweekday(r.Weekdays(), r.MonthlyOrdinal())
	case recurrence.Yearly:
		opt.Freq = rrule.YEARLY
	}

	if r.Interval() > 1 {
		opt.Interval = r.Interval()
	}
	if end, ok := r.End().Get(); ok {
		opt.Until = end
	}

	return opt.RRuleString()
}

func byweekday(w recurrence.Weekdays, ordinal int) []rrule.Weekday {
	var days []rrule.Weekday
	for _, d := range w.Days() {
		wd := rruleWeekdays[d]
		if ordinal != 0 {
			wd = wd.Nth(ordinal)
		}
		days = append(days, wd)
	}
	return days
}

// parseRule maps an RRULE value onto the stored recurrence fields. Anything
// the single-frequency, single-ordinal model cannot hold is refused; the
// caller's DTSTART later decides derived values like the monthly ordinal, so
// here only the shape is checked.
func parseRule(value string) (event.Recurrence, error) {
	rec := event.Recurrence{Interval: 1}

	opt, err := rrule.StrToROption(value)
	if err != nil {
		return rec, fmt.Errorf("ics: parse RRULE %q: %w", value, err)
	}

	if opt.Count != 0 {
		return rec, fmt.Errorf("%w: COUNT", ErrUnsupportedRule)
	}
	if len(opt.Bysetpos) > 0 {
		return rec, fmt.Errorf("%w: BYSETPOS", ErrUnsupportedRule)
	}
	if len(opt.Byhour)+len(opt.Byminute)+len(opt.Bysecond) > 0 {
		return rec, fmt.Errorf("%w: sub-daily BY parts", ErrUnsupportedRule)
	}
	if len(opt.Bymonth)+len(opt.Byyearday)+len(opt.Byweekno)+len(opt.Byeaster) > 0 {
		return rec, fmt.Errorf("%w: yearly BY parts", ErrUnsupportedRule)
	}

	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 {
			return rec, fmt.Errorf("%w: DAILY with BY rules", ErrUnsupportedRule)
		}
		rec.Type = int(recurrence.Daily)

	case rrule.WEEKLY:
		if len(opt.Bymonthday) > 0 {
			return rec, fmt.Errorf("%w: WEEKLY with BYMONTHDAY", ErrUnsupportedRule)
		}
		mask, err := weekdayMask(opt.Byweekday, false)
		if err != nil {
			return rec, err
		}
		rec.Type = int(recurrence.Weekly)
		rec.Weekdays = int(mask)

	case rrule.MONTHLY:
		switch {
		case len(opt.Byweekday) > 0 && len(opt.Bymonthday) > 0:
			return rec, fmt.Errorf("%w: MONTHLY with both BYDAY and BYMONTHDAY", ErrUnsupportedRule)
		case len(opt.Byweekday) > 0:
			mask, err := weekdayMask(opt.Byweekday, true)
			if err != nil {
				return rec, err
			}
			rec.Type = int(recurrence.MonthlyByWeekday)
			rec.Weekdays = int(mask)
		case len(opt.Bymonthday) > 1:
			return rec, fmt.Errorf("%w: multiple BYMONTHDAY values", ErrUnsupportedRule)
		case len(opt.Bymonthday) == 1:
			day := opt.Bymonthday[0]
			if day == 0 || day < -1 || day > 31 {
				return rec, fmt.Errorf("%w: BYMONTHDAY=%d", ErrUnsupportedRule, day)
			}
			rec.Type = int(recurrence.MonthlyByDate)
		default:
			// Plain FREQ=MONTHLY repeats on the start's day of month.
			rec.Type = int(recurrence.MonthlyByDate)
		}

	case rrule.YEARLY:
		if len(opt.Byweekday) > 0 || len(opt.Bymonthday) > 0 {
			return rec, fmt.Errorf("%w: YEARLY with BY rules", ErrUnsupportedRule)
		}
		rec.Type = int(recurrence.Yearly)

	default:
		return rec, fmt.Errorf("%w: FREQ=%v", ErrUnsupportedRule, opt.Freq)
	}

	if opt.Interval > 0 {
		rec.Interval = opt.Interval
	}
	if !opt.Until.IsZero() {
		rec.End = mo.Some(opt.Until)
	}

	return rec, nil
}

// weekdayMask folds BYDAY entries into the stored bitmask. For monthly rules
// every entry must carry the same non-zero ordinal; for weekly rules none may
// carry one.
func weekdayMask(days []rrule.Weekday, monthly bool) (recurrence.Weekdays, error) {
	var mask recurrence.Weekdays
	ordinal := 0

	for i, wd := range days {
		n := wd.N()
		switch {
		case !monthly && n != 0:
			return 0, fmt.Errorf("%w: ordinal BYDAY in WEEKLY", ErrUnsupportedRule)
		case monthly && n == 0:
			return 0, fmt.Errorf("%w: MONTHLY BYDAY without ordinal", ErrUnsupportedRule)
		case monthly && i > 0 && n != ordinal:
			return 0, fmt.Errorf("%w: mixed BYDAY ordinals", ErrUnsupportedRule)
		}
		ordinal = n
		mask |= recurrence.WeekdaysOf(weekdayFromRRule(wd))
	}

	return mask, nil
}
