// Package query derives view-ready partitions and filters from an expanded
// occurrence set.
package query

import (
	"sort"
	"strings"
	"time"

	"remindd/internal/model"
)

// Partitions holds the four display buckets. Exactly one bucket holds each
// occurrence: completed wins outright, then same-calendar-day counts as
// today even when its time has passed.
type Partitions struct {
	Overdue   []model.Occurrence
	Today     []model.Occurrence
	Upcoming  []model.Occurrence
	Completed []model.Occurrence
}

// Partition buckets occurrences against now, each bucket ascending by
// effective time.
func Partition(occs []model.Occurrence, now time.Time) Partitions {
	sorted := SortByTime(occs)
	var p Partitions
	for _, occ := range sorted {
		switch {
		case occ.Completed:
			p.Completed = append(p.Completed, occ)
		case model.SameDay(occ.At, now):
			p.Today = append(p.Today, occ)
		case occ.At.Before(now):
			p.Overdue = append(p.Overdue, occ)
		default:
			p.Upcoming = append(p.Upcoming, occ)
		}
	}
	return p
}

// Filter narrows an occurrence set. Zero-valued fields match everything;
// set fields compose by conjunction.
type Filter struct {
	// Text matches a case-insensitive substring of title or notes.
	Text       string
	CategoryID string
	Priority   model.Priority
}

func (f Filter) Match(occ model.Occurrence) bool {
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		title := strings.ToLower(occ.Title)
		notes := strings.ToLower(occ.Notes)
		if !strings.Contains(title, needle) && !strings.Contains(notes, needle) {
			return false
		}
	}
	if f.CategoryID != "" && occ.CategoryID != f.CategoryID {
		return false
	}
	if f.Priority != "" && occ.Priority != f.Priority {
		return false
	}
	return true
}

// Apply returns the occurrences matching f, in input order.
func Apply(occs []model.Occurrence, f Filter) []model.Occurrence {
	out := make([]model.Occurrence, 0, len(occs))
	for _, occ := range occs {
		if f.Match(occ) {
			out = append(out, occ)
		}
	}
	return out
}

// SortByTime returns a fresh slice in ascending order by effective time,
// tie-broken by reminder id for stability.
func SortByTime(occs []model.Occurrence) []model.Occurrence {
	out := make([]model.Occurrence, len(occs))
	copy(out, occs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].ReminderID < out[j].ReminderID
	})
	return out
}
