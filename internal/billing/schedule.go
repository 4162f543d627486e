package billing

import (
	"fmt"
	"time"

	"billbook/internal/model"
)

// NextOccurrence computes the next generation date after anchor for the given
// frequency. It returns nil for FreqNone. Month and year steps keep the
// day-of-month, clamping to the target month's last day when it is shorter
// (Jan 31 + monthly -> Feb 28/29). Pure function of its inputs; callers supply
// "today" themselves when anchoring schedules.
func NextOccurrence(anchor time.Time, freq model.RecurrenceFrequency) (*time.Time, error) {
	var next time.Time

	switch freq {
	case model.FreqNone:
		return nil, nil
	case model.FreqWeekly:
		next = anchor.AddDate(0, 0, 7)
	case model.FreqFortnightly:
		next = anchor.AddDate(0, 0, 14)
	case model.FreqMonthly:
		next = addMonthsClamped(anchor, 1)
	case model.FreqBimonthly:
		next = addMonthsClamped(anchor, 2)
	case model.FreqQuarterly:
		next = addMonthsClamped(anchor, 3)
	case model.FreqAnnually:
		next = addMonthsClamped(anchor, 12)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}

	return &next, nil
}

// addMonthsClamped adds months without the day-overflow normalization of
// time.AddDate (which would turn Jan 31 + 1 month into Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// First of the target month; time.Date normalizes month overflow.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
