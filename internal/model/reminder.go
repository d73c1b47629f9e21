package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidFrequency       = errors.New("model: invalid repeat frequency")
	ErrInvalidPriority        = errors.New("model: invalid priority")
	ErrInvalidRecurrenceState = errors.New("model: invalid recurrence state")
)

type Frequency string

const (
	FrequencyNever   Frequency = "never"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyNever, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Reminder is the persisted template record. A recurring reminder is the
// anchor of its series: DueAt fixes the recurrence phase, GroupID names the
// series, and ExcludedDays suppresses individual generated occurrences.
type Reminder struct {
	ID             string
	Title          string
	Notes          string
	DueAt          time.Time
	Completed      bool
	Priority       Priority
	CategoryID     string
	Frequency      Frequency
	ExcludedDays   []time.Time
	GroupID        string
	NotificationID string
	CreatedAt      time.Time
}

func (r Reminder) IsRecurring() bool {
	return r.Frequency != FrequencyNever && r.Frequency != ""
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: reminder id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("model: reminder title is required")
	}
	if r.DueAt.IsZero() {
		return errors.New("model: reminder due time is required")
	}
	if !r.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, r.Frequency)
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, r.Priority)
	}
	if r.CreatedAt.IsZero() {
		return errors.New("model: reminder created_at is required")
	}
	if err := r.checkRecurrenceState(); err != nil {
		return err
	}
	return nil
}

func (r Reminder) checkRecurrenceState() error {
	if r.IsRecurring() {
		if strings.TrimSpace(r.GroupID) == "" {
			return fmt.Errorf("%w: recurring reminder %s has no group id", ErrInvalidRecurrenceState, r.ID)
		}
		return nil
	}
	if len(r.ExcludedDays) > 0 {
		return fmt.Errorf("%w: non-recurring reminder %s has excluded days", ErrInvalidRecurrenceState, r.ID)
	}
	if strings.TrimSpace(r.GroupID) != "" {
		return fmt.Errorf("%w: non-recurring reminder %s has a group id", ErrInvalidRecurrenceState, r.ID)
	}
	return nil
}

// Normalized degrades a reminder with inconsistent recurrence state, or a
// frequency outside the known set, to a plain non-recurring reminder.
func (r Reminder) Normalized() Reminder {
	if r.Frequency.IsValid() && r.checkRecurrenceState() == nil {
		return r
	}
	out := r
	out.Frequency = FrequencyNever
	out.ExcludedDays = nil
	out.GroupID = ""
	return out
}

// IsExcluded reports whether the calendar day of t is on the exclusion list.
func (r Reminder) IsExcluded(t time.Time) bool {
	for _, day := range r.ExcludedDays {
		if SameDay(day, t) {
			return true
		}
	}
	return false
}

// DayOf truncates t to midnight of its calendar day, keeping the location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day. Matching is
// by date components, not timestamp equality.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
