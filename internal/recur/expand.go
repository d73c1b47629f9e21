// Package recur turns reminder templates into concrete occurrences for a
// bounded time window.
package recur

import (
	"time"

	"remindd/internal/model"
)

// DefaultWindow bounds how far forward occurrences are generated for display.
// A policy value, not an architectural limit.
const DefaultWindow = 365 * 24 * time.Hour

// Expand generates the occurrences of r inside [start, end], ascending.
// Stepping always begins at the anchor DueAt and is never re-anchored, so a
// monthly reminder due on the 3rd stays on the 3rd. Excluded calendar days
// are skipped; malformed recurrence state degrades to non-recurring.
func Expand(r model.Reminder, start, end time.Time) []model.Occurrence {
	if end.Before(start) {
		return nil
	}
	r = r.Normalized()

	if !r.IsRecurring() {
		if r.DueAt.Before(start) || r.DueAt.After(end) {
			return nil
		}
		return []model.Occurrence{model.OccurrenceOf(r, r.DueAt, false)}
	}

	out := make([]model.Occurrence, 0, 8)
	for step := 0; ; step++ {
		candidate := stepFromAnchor(r.DueAt, r.Frequency, step)
		if candidate.After(end) {
			break
		}
		if candidate.Before(start) {
			continue
		}
		if r.IsExcluded(candidate) {
			continue
		}
		out = append(out, model.OccurrenceOf(r, candidate, step > 0))
	}
	return out
}

// stepFromAnchor computes the nth candidate of a series. Monthly and yearly
// steps clamp to the end of short months; later months return to the anchor
// day.
func stepFromAnchor(anchor time.Time, freq model.Frequency, n int) time.Time {
	if n == 0 {
		return anchor
	}
	switch freq {
	case model.FrequencyDaily:
		return anchor.AddDate(0, 0, n)
	case model.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case model.FrequencyMonthly:
		return addMonthsClamped(anchor, n)
	case model.FrequencyYearly:
		return addYearsClamped(anchor, n)
	default:
		return anchor
	}
}

func addMonthsClamped(anchor time.Time, months int) time.Time {
	y, m, d := anchor.Date()
	// Normalize the target month before clamping the day; AddDate would
	// overflow Jan 31 + 1 month into March.
	total := int(m) - 1 + months
	year := y + total/12
	month := time.Month(total%12 + 1)
	day := min(d, daysIn(year, month))
	return time.Date(year, month, day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}

func addYearsClamped(anchor time.Time, years int) time.Time {
	y, m, d := anchor.Date()
	year := y + years
	day := min(d, daysIn(year, m))
	return time.Date(year, m, day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), anchor.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
