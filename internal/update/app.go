package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"remindd/internal/model"
	"remindd/internal/query"
	"remindd/internal/reminders"
)

func NewModel(svc *reminders.Service, cfg RuntimeConfig) Model {
	quickAdd := textinput.New()
	quickAdd.Placeholder = "reminder title"
	quickAdd.CharLimit = 200

	command := textinput.New()
	command.Placeholder = "add | done | skip | delete | pause | resume | show"
	command.CharLimit = 200

	return Model{
		Service:       svc,
		Config:        cfg,
		CurrentView:   ViewAgenda,
		Mode:          ModeBrowse,
		Keys:          defaultKeyMap(),
		Status:        StatusBar{Text: "ready"},
		quickAddInput: quickAdd,
		commandInput:  command,
	}
}

// refreshCmd re-reads the store and re-expands every series, so the screen
// always reflects store truth.
func (m Model) refreshCmd() tea.Cmd {
	svc := m.Service
	return func() tea.Msg {
		if svc == nil {
			return RefreshedMsg{}
		}
		ctx := context.Background()
		occs, err := svc.Occurrences(ctx)
		if err != nil {
			return RefreshedMsg{Err: err}
		}
		templates, err := svc.Templates(ctx)
		if err != nil {
			return RefreshedMsg{Err: err}
		}
		return RefreshedMsg{Occurrences: occs, Templates: templates}
	}
}

func (m *Model) applyRefresh(msg RefreshedMsg) {
	if msg.Err != nil {
		m.Status = StatusBar{Text: "load failed: " + msg.Err.Error(), IsError: true}
		return
	}
	now := time.Now()
	m.Partitions = query.Partition(query.Apply(msg.Occurrences, m.Filter), now)
	m.Templates = msg.Templates
	m.clampCursor()
}

// agendaRows flattens the visible partitions in display order. A focused
// partition narrows the list to that bucket alone.
func (m Model) agendaRows() []model.Occurrence {
	switch m.FocusPartition {
	case "overdue":
		return m.Partitions.Overdue
	case "today":
		return m.Partitions.Today
	case "upcoming":
		return m.Partitions.Upcoming
	case "completed":
		return m.Partitions.Completed
	}
	rows := make([]model.Occurrence, 0,
		len(m.Partitions.Overdue)+len(m.Partitions.Today)+len(m.Partitions.Upcoming)+len(m.Partitions.Completed))
	rows = append(rows, m.Partitions.Overdue...)
	rows = append(rows, m.Partitions.Today...)
	rows = append(rows, m.Partitions.Upcoming...)
	rows = append(rows, m.Partitions.Completed...)
	return rows
}

func (m Model) selectedOccurrence() (model.Occurrence, bool) {
	rows := m.agendaRows()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return model.Occurrence{}, false
	}
	return rows[m.Cursor], true
}

func (m *Model) clampCursor() {
	max := len(m.agendaRows()) - 1
	if m.CurrentView == ViewTemplates {
		max = len(m.Templates) - 1
	}
	if m.Cursor > max {
		m.Cursor = max
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
