// api/analytics/daterange.go
package analytics

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange marks date-range validation failures: malformed dates,
// end before start, or any supplied date after today. Never retried.
var ErrInvalidRange = errors.New("invalid date range")

// DateFormat is the only accepted calendar-date format.
const DateFormat = "2006-01-02"

// defaultWindowDays is the span of the default reporting window, inclusive of
// both endpoints (today plus the six preceding days).
const defaultWindowDays = 6

// DateRange is a concrete inclusive [Start, End] window in calendar-date form.
// Both bounds are UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) StartString() string { return r.Start.Format(DateFormat) }
func (r DateRange) EndString() string   { return r.End.Format(DateFormat) }

// ResolveDateRange normalizes an optional startDate/endDate pair into a
// concrete inclusive range relative to today (UTC midnight). Rules, in
// priority order:
//
//  1. Both given: validate format, end >= start, neither after today.
//  2. Only startDate: validate not-future; end = start + 6 days, clamped to today.
//  3. Only endDate: validate not-future; start = end - 6 days.
//  4. Neither: end = today, start = today - 6 days.
func ResolveDateRange(startDate, endDate string, today time.Time) (DateRange, error) {
	today = midnightUTC(today)

	switch {
	case startDate != "" && endDate != "":
		start, err := parseDate("startDate", startDate)
		if err != nil {
			return DateRange{}, err
		}
		end, err := parseDate("endDate", endDate)
		if err != nil {
			return DateRange{}, err
		}
		if end.Before(start) {
			return DateRange{}, fmt.Errorf("%w: endDate %s is before startDate %s", ErrInvalidRange, endDate, startDate)
		}
		if err := notFuture("startDate", start, today); err != nil {
			return DateRange{}, err
		}
		if err := notFuture("endDate", end, today); err != nil {
			return DateRange{}, err
		}
		return DateRange{Start: start, End: end}, nil

	case startDate != "":
		start, err := parseDate("startDate", startDate)
		if err != nil {
			return DateRange{}, err
		}
		if err := notFuture("startDate", start, today); err != nil {
			return DateRange{}, err
		}
		end := start.AddDate(0, 0, defaultWindowDays)
		if end.After(today) {
			end = today
		}
		return DateRange{Start: start, End: end}, nil

	case endDate != "":
		end, err := parseDate("endDate", endDate)
		if err != nil {
			return DateRange{}, err
		}
		if err := notFuture("endDate", end, today); err != nil {
			return DateRange{}, err
		}
		return DateRange{Start: end.AddDate(0, 0, -defaultWindowDays), End: end}, nil

	default:
		return DateRange{Start: today.AddDate(0, 0, -defaultWindowDays), End: today}, nil
	}
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q is not a valid YYYY-MM-DD date", ErrInvalidRange, field, value)
	}
	return t, nil
}

func notFuture(field string, date, today time.Time) error {
	if date.After(today) {
		return fmt.Errorf("%w: %s %s is after today (%s)", ErrInvalidRange, field, date.Format(DateFormat), today.Format(DateFormat))
	}
	return nil
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
