package storage

import "time"

type Reminder struct {
	ID             string
	Title          string
	Notes          string
	DueAt          time.Time
	Completed      bool
	Priority       string
	CategoryID     string
	Frequency      string
	ExcludedDays   []time.Time
	GroupID        string
	NotificationID string
	CreatedAt      time.Time
}

type Category struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}

// Settings is the singleton notification configuration row. PausedUntil is
// nil when notifications are not paused.
type Settings struct {
	NotificationsEnabled bool
	PausedUntil          *time.Time
}

type ReminderListFilter struct {
	CategoryID string
	Completed  *bool
	Frequency  string
	Limit      int
	Offset     int
}

type CategoryListFilter struct {
	Limit  int
	Offset int
}
