package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the template store, the single source of truth for reminder
// state. The OS trigger list is a disposable cache derived from it.
type Repository interface {
	CreateReminder(ctx context.Context, in Reminder) error
	GetReminder(ctx context.Context, id string) (Reminder, error)
	UpdateReminder(ctx context.Context, in Reminder) error
	DeleteReminder(ctx context.Context, id string) error
	ListReminders(ctx context.Context, filter ReminderListFilter) ([]Reminder, error)

	AddExclusion(ctx context.Context, reminderID string, day time.Time) error

	CreateCategory(ctx context.Context, in Category) error
	GetCategory(ctx context.Context, id string) (Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, filter CategoryListFilter) ([]Category, error)

	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, in Settings) error
}
