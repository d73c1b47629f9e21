package query

import (
	"testing"
	"time"

	"remindd/internal/model"
)

func occ(id string, at time.Time) model.Occurrence {
	return model.Occurrence{ReminderID: id, At: at, Title: "Task " + id}
}

func TestPartitionIsMutuallyExclusiveAndExhaustive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	occs := []model.Occurrence{
		occ("overdue", now.AddDate(0, 0, -3)),
		occ("this-morning", now.Add(-3*time.Hour)), // same day, already past
		occ("tonight", now.Add(6*time.Hour)),
		occ("next-week", now.AddDate(0, 0, 7)),
		{ReminderID: "done", At: now.AddDate(0, 0, -1), Completed: true},
	}

	p := Partition(occs, now)
	total := len(p.Overdue) + len(p.Today) + len(p.Upcoming) + len(p.Completed)
	if total != len(occs) {
		t.Fatalf("partition dropped or duplicated occurrences: %d vs %d", total, len(occs))
	}
	if len(p.Overdue) != 1 || p.Overdue[0].ReminderID != "overdue" {
		t.Fatalf("unexpected overdue: %+v", p.Overdue)
	}
	if len(p.Today) != 2 {
		t.Fatalf("expected both same-day occurrences in today, got %+v", p.Today)
	}
	if len(p.Upcoming) != 1 || p.Upcoming[0].ReminderID != "next-week" {
		t.Fatalf("unexpected upcoming: %+v", p.Upcoming)
	}
	if len(p.Completed) != 1 || p.Completed[0].ReminderID != "done" {
		t.Fatalf("unexpected completed: %+v", p.Completed)
	}
}

func TestPartitionKeepsAscendingOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	occs := []model.Occurrence{
		occ("c", now.AddDate(0, 0, 9)),
		occ("a", now.AddDate(0, 0, 2)),
		occ("b", now.AddDate(0, 0, 5)),
	}
	p := Partition(occs, now)
	if len(p.Upcoming) != 3 {
		t.Fatalf("expected 3 upcoming, got %d", len(p.Upcoming))
	}
	for i := 1; i < len(p.Upcoming); i++ {
		if p.Upcoming[i].At.Before(p.Upcoming[i-1].At) {
			t.Fatalf("upcoming out of order: %+v", p.Upcoming)
		}
	}
}

func TestFilterTextIsCaseInsensitiveOverTitleAndNotes(t *testing.T) {
	occs := []model.Occurrence{
		{ReminderID: "a", Title: "Buy Groceries"},
		{ReminderID: "b", Title: "Call mom", Notes: "about GROCERY list"},
		{ReminderID: "c", Title: "Ship release"},
	}
	got := Apply(occs, Filter{Text: "grocer"})
	if len(got) != 2 || got[0].ReminderID != "a" || got[1].ReminderID != "b" {
		t.Fatalf("unexpected text filter result: %+v", got)
	}
}

func TestFiltersComposeByConjunction(t *testing.T) {
	occs := []model.Occurrence{
		{ReminderID: "a", Title: "Pay rent", CategoryID: "home", Priority: model.PriorityHigh},
		{ReminderID: "b", Title: "Pay gym", CategoryID: "health", Priority: model.PriorityHigh},
		{ReminderID: "c", Title: "Pay rent late fee", CategoryID: "home", Priority: model.PriorityLow},
	}
	got := Apply(occs, Filter{Text: "pay", CategoryID: "home", Priority: model.PriorityHigh})
	if len(got) != 1 || got[0].ReminderID != "a" {
		t.Fatalf("unexpected conjunction result: %+v", got)
	}
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	occs := []model.Occurrence{
		{ReminderID: "a"},
		{ReminderID: "b"},
	}
	if got := Apply(occs, Filter{}); len(got) != len(occs) {
		t.Fatalf("empty filter must match all, got %d", len(got))
	}
}
