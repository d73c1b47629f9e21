package model

import (
	"errors"
	"strings"
	"time"
)

// Category is a weak grouping target. Reminders reference it by id; deleting
// a category nullifies those references rather than cascading.
type Category struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("model: category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("model: category name is required")
	}
	return nil
}
