package reminders

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"remindd/internal/model"
	"remindd/internal/scheduler"
	"remindd/internal/storage"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// stubNotifier implements scheduler.Notifier without timers.
type stubNotifier struct {
	pending  map[string]scheduler.Trigger
	failNext bool
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{pending: make(map[string]scheduler.Trigger)}
}

func (s *stubNotifier) RequestAuthorization() error { return nil }

func (s *stubNotifier) Schedule(tr scheduler.Trigger) error {
	if s.failNext {
		return errors.New("permission revoked")
	}
	s.pending[tr.ID] = tr
	return nil
}

func (s *stubNotifier) Cancel(id string) { delete(s.pending, id) }

func (s *stubNotifier) CancelAll() { s.pending = make(map[string]scheduler.Trigger) }

func (s *stubNotifier) ListPending() []string {
	out := make([]string, 0, len(s.pending))
	for id := range s.pending {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func setupService(t *testing.T, now time.Time) (*Service, *stubNotifier) {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "remindd-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	notifier := newStubNotifier()
	svc := NewService(repo, scheduler.NewReconciler(notifier), fixedClock{now: now}, Config{
		Window:  90 * 24 * time.Hour,
		Horizon: 14 * 24 * time.Hour,
	})
	return svc, notifier
}

func TestCreateSchedulesAnchorTrigger(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, notifier := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{
		Title: "Dentist",
		DueAt: now.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rem.Priority != model.PriorityMedium || rem.Frequency != model.FrequencyNever {
		t.Fatalf("defaults not applied: %+v", rem)
	}
	if rem.GroupID != "" {
		t.Fatalf("non-recurring reminder must not have a group id")
	}

	want := scheduler.TriggerKey(rem.ID, rem.DueAt)
	pending := notifier.ListPending()
	if len(pending) != 1 || pending[0] != want {
		t.Fatalf("expected trigger %s, got %v", want, pending)
	}
	if rem.NotificationID != want {
		t.Fatalf("notification id mismatch: %s vs %s", rem.NotificationID, want)
	}
}

func TestCreateRecurringAssignsSeriesIdentity(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)

	rem, err := svc.Create(context.Background(), CreateInput{
		Title:     "Standup",
		DueAt:     now.Add(24 * time.Hour),
		Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rem.GroupID == "" {
		t.Fatalf("recurring reminder must carry a group id")
	}

	got, err := svc.Reminder(context.Background(), rem.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.GroupID != rem.GroupID {
		t.Fatalf("group id not persisted: %q vs %q", got.GroupID, rem.GroupID)
	}
}

func TestDeleteSingleOccurrenceExcludesOnlyThatDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, notifier := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{
		Title:     "Water plants",
		DueAt:     now.Add(24 * time.Hour),
		Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	skipped := rem.DueAt.AddDate(0, 0, 2)
	if err := svc.DeleteOccurrence(ctx, rem.ID, skipped, ScopeSingleOccurrence); err != nil {
		t.Fatalf("delete occurrence: %v", err)
	}

	occs, err := svc.Occurrences(ctx)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(occs) == 0 {
		t.Fatalf("expected surviving occurrences")
	}
	for _, occ := range occs {
		if model.SameDay(occ.At, skipped) {
			t.Fatalf("excluded occurrence still produced: %s", occ.At)
		}
	}

	for _, id := range notifier.ListPending() {
		if id == scheduler.TriggerKey(rem.ID, skipped) {
			t.Fatalf("trigger for excluded day still pending")
		}
	}
}

func TestDeleteSingleOccurrenceRejectsNonGeneratedDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{
		Title:     "Gym",
		DueAt:     now.Add(24 * time.Hour),
		Frequency: model.FrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A weekly series never produces the day after its anchor.
	offDay := rem.DueAt.AddDate(0, 0, 1)
	if err := svc.DeleteOccurrence(ctx, rem.ID, offDay, ScopeSingleOccurrence); !errors.Is(err, ErrNoOccurrence) {
		t.Fatalf("expected ErrNoOccurrence, got %v", err)
	}

	got, err := svc.Reminder(ctx, rem.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got.ExcludedDays) != 0 {
		t.Fatalf("rejected skip must not store an exclusion: %+v", got.ExcludedDays)
	}
}

func TestDeleteEntireSeriesRemovesTemplateAndTriggers(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, notifier := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{
		Title:     "Standup",
		DueAt:     now.Add(24 * time.Hour),
		Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteOccurrence(ctx, rem.ID, rem.DueAt, ScopeEntireSeries); err != nil {
		t.Fatalf("delete series: %v", err)
	}

	if _, err := svc.Reminder(ctx, rem.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	occs, err := svc.Occurrences(ctx)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(occs) != 0 {
		t.Fatalf("expected no occurrences after series delete, got %d", len(occs))
	}
	if pending := notifier.ListPending(); len(pending) != 0 {
		t.Fatalf("expected no pending triggers, got %v", pending)
	}
}

func TestDeleteNonRecurringIgnoresScope(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{Title: "One-off", DueAt: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteOccurrence(ctx, rem.ID, rem.DueAt, ScopeSingleOccurrence); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Reminder(ctx, rem.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected whole-record deletion, got %v", err)
	}
}

func TestToggleCompleteStopsAndRestoresSeries(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, notifier := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{
		Title:     "Review inbox",
		DueAt:     now.Add(24 * time.Hour),
		Frequency: model.FrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ToggleComplete(ctx, rem.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	occs, err := svc.Occurrences(ctx)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(occs) != 1 || !occs[0].Completed || occs[0].Virtual {
		t.Fatalf("completed series must contribute its anchor only, got %+v", occs)
	}
	if pending := notifier.ListPending(); len(pending) != 0 {
		t.Fatalf("expected triggers cancelled on completion, got %v", pending)
	}

	if _, err := svc.ToggleComplete(ctx, rem.ID); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if pending := notifier.ListPending(); len(pending) == 0 {
		t.Fatalf("expected triggers rescheduled after reopening")
	}
}

func TestUpdateOccurrenceRejectsRecurringSeries(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{
		Title:     "Standup",
		DueAt:     now.Add(24 * time.Hour),
		Frequency: model.FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Moved standup"
	_, err = svc.UpdateOccurrence(ctx, rem.ID, rem.DueAt.AddDate(0, 0, 3), UpdateInput{Title: &title})
	if !errors.Is(err, ErrSeriesOnly) {
		t.Fatalf("expected ErrSeriesOnly, got %v", err)
	}
}

func TestUpdateSeriesSwitchingOffRecurrenceClearsSeriesState(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)
	ctx := context.Background()

	rem, err := svc.Create(ctx, CreateInput{
		Title:     "Gym",
		DueAt:     now.Add(24 * time.Hour),
		Frequency: model.FrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteOccurrence(ctx, rem.ID, rem.DueAt.AddDate(0, 0, 7), ScopeSingleOccurrence); err != nil {
		t.Fatalf("exclude: %v", err)
	}

	never := model.FrequencyNever
	updated, err := svc.UpdateSeries(ctx, rem.ID, UpdateInput{Frequency: &never})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsRecurring() || updated.GroupID != "" || len(updated.ExcludedDays) != 0 {
		t.Fatalf("series state not cleared: %+v", updated)
	}
}

func TestPauseCancelsAndResumeReschedules(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, notifier := setupService(t, now)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: "Meds", DueAt: now.Add(6 * time.Hour), Frequency: model.FrequencyDaily}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(notifier.ListPending()) == 0 {
		t.Fatalf("expected seeded triggers")
	}

	if err := svc.Pause(ctx, now.Add(48*time.Hour)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if pending := notifier.ListPending(); len(pending) != 0 {
		t.Fatalf("expected pause to cancel all triggers, got %v", pending)
	}

	if err := svc.Resume(ctx); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if pending := notifier.ListPending(); len(pending) == 0 {
		t.Fatalf("expected resume to rebuild triggers from the store")
	}
}

func TestSchedulingFailureDoesNotRollBackStore(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, notifier := setupService(t, now)
	ctx := context.Background()

	notifier.failNext = true
	rem, err := svc.Create(ctx, CreateInput{Title: "Dentist", DueAt: now.Add(time.Hour)})
	if !errors.Is(err, scheduler.ErrScheduleFailed) {
		t.Fatalf("expected ErrScheduleFailed warning, got %v", err)
	}

	// The template write stands; only the proactive alert is missing.
	notifier.failNext = false
	got, err := svc.Reminder(ctx, rem.ID)
	if err != nil {
		t.Fatalf("reminder not persisted after scheduling failure: %v", err)
	}
	if got.Title != "Dentist" {
		t.Fatalf("unexpected reminder: %+v", got)
	}
}

func TestOccurrencesAreAscendingAndReadYourWrites(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, now)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Title: "B", DueAt: now.Add(72 * time.Hour)}); err != nil {
		t.Fatalf("create B: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Title: "A", DueAt: now.Add(24 * time.Hour), Frequency: model.FrequencyDaily}); err != nil {
		t.Fatalf("create A: %v", err)
	}

	occs, err := svc.Occurrences(ctx)
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(occs) < 3 {
		t.Fatalf("expected expanded occurrences, got %d", len(occs))
	}
	for i := 1; i < len(occs); i++ {
		if occs[i].At.Before(occs[i-1].At) {
			t.Fatalf("occurrences out of order at %d: %s before %s", i, occs[i].At, occs[i-1].At)
		}
	}
}
