package model

import (
	"errors"
	"testing"
	"time"
)

func validReminder() Reminder {
	return Reminder{
		ID:        "rem-1",
		Title:     "Water the plants",
		DueAt:     time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		Priority:  PriorityMedium,
		Frequency: FrequencyNever,
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestValidateRejectsUnknownFrequency(t *testing.T) {
	r := validReminder()
	r.Frequency = "fortnightly"
	if err := r.Validate(); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
}

func TestValidateRejectsUnknownPriority(t *testing.T) {
	r := validReminder()
	r.Priority = "urgent"
	if err := r.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestValidateRecurringRequiresGroupID(t *testing.T) {
	r := validReminder()
	r.Frequency = FrequencyWeekly
	if err := r.Validate(); !errors.Is(err, ErrInvalidRecurrenceState) {
		t.Fatalf("expected ErrInvalidRecurrenceState, got %v", err)
	}
	r.GroupID = "series-1"
	if err := r.Validate(); err != nil {
		t.Fatalf("expected valid recurring reminder, got %v", err)
	}
}

func TestValidateNonRecurringRejectsExclusions(t *testing.T) {
	r := validReminder()
	r.ExcludedDays = []time.Time{time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	if err := r.Validate(); !errors.Is(err, ErrInvalidRecurrenceState) {
		t.Fatalf("expected ErrInvalidRecurrenceState, got %v", err)
	}
}

func TestNormalizedDegradesToNonRecurring(t *testing.T) {
	r := validReminder()
	r.Frequency = FrequencyMonthly // missing group id
	got := r.Normalized()
	if got.IsRecurring() || got.GroupID != "" || len(got.ExcludedDays) != 0 {
		t.Fatalf("expected degraded non-recurring reminder, got %+v", got)
	}

	ok := validReminder()
	if normalized := ok.Normalized(); normalized.Frequency != ok.Frequency {
		t.Fatalf("valid reminder must be unchanged, got %+v", normalized)
	}
}

func TestNormalizedDegradesUnknownFrequency(t *testing.T) {
	r := validReminder()
	r.Frequency = "fortnightly"
	r.GroupID = "series-1"

	got := r.Normalized()
	if got.IsRecurring() || got.Frequency != FrequencyNever || got.GroupID != "" {
		t.Fatalf("expected unknown frequency to degrade, got %+v", got)
	}
}

func TestIsExcludedMatchesByCalendarDay(t *testing.T) {
	r := validReminder()
	r.Frequency = FrequencyDaily
	r.GroupID = "series-1"
	r.ExcludedDays = []time.Time{time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)}

	if !r.IsExcluded(time.Date(2026, 3, 5, 17, 45, 0, 0, time.UTC)) {
		t.Fatalf("expected exclusion to match regardless of clock time")
	}
	if r.IsExcluded(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected exclusion match on neighboring day")
	}
}

func TestSameDayAndDayOf(t *testing.T) {
	a := time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 2, 28, 0, 1, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatalf("expected same calendar day")
	}
	if SameDay(a, a.Add(2*time.Minute)) {
		t.Fatalf("expected day rollover to break equality")
	}
	if day := DayOf(a); day.Hour() != 0 || day.Day() != 28 {
		t.Fatalf("unexpected truncation: %s", day)
	}
}
