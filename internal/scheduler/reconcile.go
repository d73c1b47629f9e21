package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"remindd/internal/model"
)

// DefaultHorizon bounds how far ahead live OS triggers are kept. Far shorter
// than the display window: only imminent occurrences need a trigger.
const DefaultHorizon = 14 * 24 * time.Hour

var ErrScheduleFailed = errors.New("scheduler: trigger scheduling failed")

// TriggerKey derives the stable trigger identifier for one occurrence,
// keyed by template and calendar day.
func TriggerKey(reminderID string, at time.Time) string {
	return reminderID + "@" + model.DayOf(at).Format("2006-01-02")
}

// SeriesPrefix matches every trigger key belonging to one template.
func SeriesPrefix(reminderID string) string {
	return reminderID + "@"
}

type Options struct {
	Enabled     bool
	PausedUntil time.Time
	Horizon     time.Duration
	Now         time.Time
}

func (o Options) paused() bool {
	if !o.Enabled {
		return true
	}
	return !o.PausedUntil.IsZero() && o.Now.Before(o.PausedUntil)
}

// Reconciler keeps the notifier's pending trigger set consistent with the
// active occurrence set. The template store is the source of truth.
type Reconciler struct {
	notifier Notifier
}

func NewReconciler(notifier Notifier) *Reconciler {
	return &Reconciler{notifier: notifier}
}

// Reconcile ensures exactly one trigger per active, future, non-completed
// occurrence inside the horizon, and cancels everything else. Scheduling
// failures are collected into a single ErrScheduleFailed warning and never
// roll back the mutation that led here.
func (r *Reconciler) Reconcile(occs []model.Occurrence, opts Options) error {
	if opts.paused() {
		r.notifier.CancelAll()
		return nil
	}
	horizon := opts.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	limit := opts.Now.Add(horizon)

	desired := make(map[string]Trigger)
	for _, occ := range occs {
		if occ.Completed {
			continue
		}
		if !occ.At.After(opts.Now) || occ.At.After(limit) {
			continue
		}
		key := TriggerKey(occ.ReminderID, occ.At)
		desired[key] = Trigger{
			ID:     key,
			FireAt: occ.At,
			Title:  occ.Title,
			Body:   occ.Notes,
		}
	}

	for _, id := range r.notifier.ListPending() {
		if _, keep := desired[id]; !keep {
			r.notifier.Cancel(id)
		}
	}

	var failed []string
	for _, tr := range desired {
		if err := r.notifier.Schedule(tr); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", tr.ID, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrScheduleFailed, strings.Join(failed, "; "))
	}
	return nil
}

// CancelOccurrence drops the trigger for a single excluded occurrence.
func (r *Reconciler) CancelOccurrence(reminderID string, at time.Time) {
	r.notifier.Cancel(TriggerKey(reminderID, at))
}

// CancelSeries drops every pending trigger belonging to one template.
func (r *Reconciler) CancelSeries(reminderID string) {
	prefix := SeriesPrefix(reminderID)
	for _, id := range r.notifier.ListPending() {
		if strings.HasPrefix(id, prefix) {
			r.notifier.Cancel(id)
		}
	}
}

// CancelAll clears the whole pending set, including anything delivered but
// unseen. Used by global pause.
func (r *Reconciler) CancelAll() {
	r.notifier.CancelAll()
}
