// Package reminders is the mutation engine over the template store. Every
// mutation writes the store first, then reconciles notification triggers; a
// failed reconcile is a non-fatal warning and the store state stands.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"remindd/internal/model"
	"remindd/internal/recur"
	"remindd/internal/scheduler"
	"remindd/internal/storage"
)

var (
	// ErrStoreWrite marks a failed persistence call. The mutation did not
	// happen and no notification state was touched.
	ErrStoreWrite = errors.New("reminders: store write failed")
	// ErrSeriesOnly rejects per-occurrence edits of a recurring reminder.
	// The model supports skipping one occurrence via exclusion, never a
	// detached occurrence with its own fields.
	ErrSeriesOnly = errors.New("reminders: recurring reminders are edited as a whole series")
	// ErrNoOccurrence rejects excluding a day the series never generates.
	ErrNoOccurrence = errors.New("reminders: series has no occurrence on that day")
)

type Scope string

const (
	ScopeSingleOccurrence Scope = "single_occurrence"
	ScopeEntireSeries     Scope = "entire_series"
)

type Config struct {
	// Window bounds the display expansion forward from now.
	Window time.Duration
	// Horizon bounds how far ahead OS triggers are kept live.
	Horizon time.Duration
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = recur.DefaultWindow
	}
	if c.Horizon <= 0 {
		c.Horizon = scheduler.DefaultHorizon
	}
	return c
}

// Service serializes all template mutations and notification reconciliation
// behind one mutex.
type Service struct {
	mu    sync.Mutex
	repo  storage.Repository
	rec   *scheduler.Reconciler
	clock Clock
	cfg   Config
}

func NewService(repo storage.Repository, rec *scheduler.Reconciler, clock Clock, cfg Config) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{repo: repo, rec: rec, clock: clock, cfg: cfg.withDefaults()}
}

type CreateInput struct {
	Title      string
	Notes      string
	DueAt      time.Time
	Priority   model.Priority
	CategoryID string
	Frequency  model.Frequency
}

// UpdateInput carries series-level field changes; nil fields are untouched.
type UpdateInput struct {
	Title      *string
	Notes      *string
	DueAt      *time.Time
	Priority   *model.Priority
	CategoryID *string
	Frequency  *model.Frequency
}

// Create persists a new template and schedules its triggers. On
// scheduler.ErrScheduleFailed the reminder was still created and is visible.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	rem := model.Reminder{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Notes:      in.Notes,
		DueAt:      in.DueAt,
		Priority:   in.Priority,
		CategoryID: in.CategoryID,
		Frequency:  in.Frequency,
		CreatedAt:  now,
	}
	if rem.Priority == "" {
		rem.Priority = model.PriorityMedium
	}
	if rem.Frequency == "" {
		rem.Frequency = model.FrequencyNever
	}
	if rem.IsRecurring() {
		rem.GroupID = uuid.NewString()
	}
	rem.NotificationID = scheduler.TriggerKey(rem.ID, rem.DueAt)

	if err := rem.Validate(); err != nil {
		return model.Reminder{}, err
	}
	if err := s.repo.CreateReminder(ctx, toRecord(rem)); err != nil {
		return model.Reminder{}, errors.Join(ErrStoreWrite, err)
	}
	return rem, s.reconcile(ctx)
}

// UpdateSeries edits the anchor fields of a template. For a recurring
// reminder this is the only supported edit: it changes every occurrence.
func (s *Service) UpdateSeries(ctx context.Context, id string, in UpdateInput) (model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, id, in)
}

// UpdateOccurrence edits a single occurrence. Only valid for non-recurring
// templates, where the occurrence is the template; recurring series reject
// it with ErrSeriesOnly.
func (s *Service) UpdateOccurrence(ctx context.Context, id string, occurrenceAt time.Time, in UpdateInput) (model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, err := s.get(ctx, id)
	if err != nil {
		return model.Reminder{}, err
	}
	if rem.IsRecurring() {
		return model.Reminder{}, fmt.Errorf("%w: %s at %s", ErrSeriesOnly, id, occurrenceAt.Format(time.RFC3339))
	}
	return s.updateLocked(ctx, id, in)
}

func (s *Service) updateLocked(ctx context.Context, id string, in UpdateInput) (model.Reminder, error) {
	rem, err := s.get(ctx, id)
	if err != nil {
		return model.Reminder{}, err
	}

	if in.Title != nil {
		rem.Title = *in.Title
	}
	if in.Notes != nil {
		rem.Notes = *in.Notes
	}
	if in.DueAt != nil {
		rem.DueAt = *in.DueAt
		rem.NotificationID = scheduler.TriggerKey(rem.ID, rem.DueAt)
	}
	if in.Priority != nil {
		rem.Priority = *in.Priority
	}
	if in.CategoryID != nil {
		rem.CategoryID = *in.CategoryID
	}
	if in.Frequency != nil {
		rem.Frequency = *in.Frequency
		if rem.IsRecurring() && rem.GroupID == "" {
			rem.GroupID = uuid.NewString()
		}
		if !rem.IsRecurring() {
			rem.GroupID = ""
			rem.ExcludedDays = nil
		}
	}

	if err := rem.Validate(); err != nil {
		return model.Reminder{}, err
	}
	if err := s.repo.UpdateReminder(ctx, toRecord(rem)); err != nil {
		return model.Reminder{}, errors.Join(ErrStoreWrite, err)
	}
	return rem, s.reconcile(ctx)
}

// DeleteOccurrence removes one occurrence or the whole series. A single
// occurrence of a recurring series is suppressed by excluding its calendar
// day; the template persists. Non-recurring templates are always deleted
// whole, regardless of scope.
func (s *Service) DeleteOccurrence(ctx context.Context, id string, occurrenceAt time.Time, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if !rem.IsRecurring() || scope == ScopeEntireSeries {
		if err := s.repo.DeleteReminder(ctx, id); err != nil {
			return errors.Join(ErrStoreWrite, err)
		}
		s.rec.CancelSeries(id)
		return s.reconcile(ctx)
	}

	// Exclusions may only name days the rule actually produces.
	day := model.DayOf(occurrenceAt)
	if len(recur.Expand(rem, day, day.AddDate(0, 0, 1).Add(-time.Nanosecond))) == 0 {
		return fmt.Errorf("%w: %s on %s", ErrNoOccurrence, id, day.Format("2006-01-02"))
	}

	if err := s.repo.AddExclusion(ctx, id, day); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	s.rec.CancelOccurrence(id, occurrenceAt)
	return s.reconcile(ctx)
}

// ToggleComplete flips the template's completed flag. For a recurring
// reminder this completes or reopens the entire series.
func (s *Service) ToggleComplete(ctx context.Context, id string) (model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rem, err := s.get(ctx, id)
	if err != nil {
		return model.Reminder{}, err
	}
	rem.Completed = !rem.Completed
	if err := s.repo.UpdateReminder(ctx, toRecord(rem)); err != nil {
		return model.Reminder{}, errors.Join(ErrStoreWrite, err)
	}
	return rem, s.reconcile(ctx)
}

// Pause cancels every pending trigger until the given time. Triggers are not
// remembered: Resume rebuilds them from the template store.
func (s *Service) Pause(ctx context.Context, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	settings.PausedUntil = &until
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	s.rec.CancelAll()
	return nil
}

// Resume clears the pause and re-derives all triggers from current template
// state as of now.
func (s *Service) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	settings.PausedUntil = nil
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return s.reconcile(ctx)
}

func (s *Service) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	settings.NotificationsEnabled = enabled
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return s.reconcile(ctx)
}

// Reminder returns one template by id.
func (s *Service) Reminder(ctx context.Context, id string) (model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx, id)
}

// Occurrences expands every template over the display window into one
// ascending sequence. Completed templates contribute their anchor only.
func (s *Service) Occurrences(ctx context.Context) ([]model.Occurrence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOccurrences(ctx)
}

func (s *Service) loadOccurrences(ctx context.Context) ([]model.Occurrence, error) {
	records, err := s.repo.ListReminders(ctx, storage.ReminderListFilter{})
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	end := now.Add(s.cfg.Window)

	out := make([]model.Occurrence, 0, len(records))
	for _, record := range records {
		rem := fromRecord(record)
		if rem.Completed {
			out = append(out, model.OccurrenceOf(rem, rem.DueAt, false))
			continue
		}
		start := now
		if rem.DueAt.Before(start) {
			start = rem.DueAt
		}
		out = append(out, recur.Expand(rem, start, end)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].ReminderID < out[j].ReminderID
	})
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, name, color string) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := model.Category{ID: uuid.NewString(), Name: name, Color: color, CreatedAt: s.clock.Now()}
	if err := cat.Validate(); err != nil {
		return model.Category{}, err
	}
	record := storage.Category{ID: cat.ID, Name: cat.Name, Color: cat.Color, CreatedAt: cat.CreatedAt}
	if err := s.repo.CreateCategory(ctx, record); err != nil {
		return model.Category{}, errors.Join(ErrStoreWrite, err)
	}
	return cat, nil
}

// DeleteCategory removes the category; reminders referencing it keep living
// with the reference nulled by the store.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return errors.Join(ErrStoreWrite, err)
	}
	return nil
}

func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.ListCategories(ctx, storage.CategoryListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(records))
	for _, record := range records {
		out = append(out, model.Category{ID: record.ID, Name: record.Name, Color: record.Color, CreatedAt: record.CreatedAt})
	}
	return out, nil
}

// Templates returns all stored reminder templates.
func (s *Service) Templates(ctx context.Context) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.ListReminders(ctx, storage.ReminderListFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]model.Reminder, 0, len(records))
	for _, record := range records {
		out = append(out, fromRecord(record))
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, id string) (model.Reminder, error) {
	record, err := s.repo.GetReminder(ctx, id)
	if err != nil {
		return model.Reminder{}, err
	}
	return fromRecord(record), nil
}

// reconcile rebuilds the trigger set from store truth. Called strictly after
// a successful store write.
func (s *Service) reconcile(ctx context.Context) error {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	occs, err := s.loadOccurrences(ctx)
	if err != nil {
		return err
	}
	opts := scheduler.Options{
		Enabled: settings.NotificationsEnabled,
		Horizon: s.cfg.Horizon,
		Now:     s.clock.Now(),
	}
	if settings.PausedUntil != nil {
		opts.PausedUntil = *settings.PausedUntil
	}
	return s.rec.Reconcile(occs, opts)
}

func toRecord(r model.Reminder) storage.Reminder {
	return storage.Reminder{
		ID:             r.ID,
		Title:          r.Title,
		Notes:          r.Notes,
		DueAt:          r.DueAt,
		Completed:      r.Completed,
		Priority:       string(r.Priority),
		CategoryID:     r.CategoryID,
		Frequency:      string(r.Frequency),
		ExcludedDays:   r.ExcludedDays,
		GroupID:        r.GroupID,
		NotificationID: r.NotificationID,
		CreatedAt:      r.CreatedAt,
	}
}

func fromRecord(record storage.Reminder) model.Reminder {
	return model.Reminder{
		ID:             record.ID,
		Title:          record.Title,
		Notes:          record.Notes,
		DueAt:          record.DueAt,
		Completed:      record.Completed,
		Priority:       model.Priority(record.Priority),
		CategoryID:     record.CategoryID,
		Frequency:      model.Frequency(record.Frequency),
		ExcludedDays:   record.ExcludedDays,
		GroupID:        record.GroupID,
		NotificationID: record.NotificationID,
		CreatedAt:      record.CreatedAt,
	}
}
