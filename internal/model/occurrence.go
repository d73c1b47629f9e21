package model

import "time"

// Occurrence is one concrete instance derived from a reminder template for a
// given time. Occurrences are recomputed on demand and never persisted;
// edits and deletes always go through the template.
type Occurrence struct {
	ReminderID string
	At         time.Time
	Title      string
	Notes      string
	Priority   Priority
	CategoryID string
	Completed  bool
	Frequency  Frequency
	// Virtual is true for every generated instance except the anchor itself.
	Virtual bool
}

// OccurrenceOf projects a template onto a concrete time.
func OccurrenceOf(r Reminder, at time.Time, virtual bool) Occurrence {
	return Occurrence{
		ReminderID: r.ID,
		At:         at,
		Title:      r.Title,
		Notes:      r.Notes,
		Priority:   r.Priority,
		CategoryID: r.CategoryID,
		Completed:  r.Completed,
		Frequency:  r.Frequency,
		Virtual:    virtual,
	}
}
