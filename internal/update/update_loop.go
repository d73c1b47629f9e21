package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case RefreshedMsg:
		m.applyRefresh(typed)
		return m, nil
	case SwitchViewMsg:
		switch typed.View {
		case ViewAgenda, ViewTemplates:
			m.CurrentView = typed.View
			m.Cursor = 0
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := key.String()

	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.Mode {
	case ModeQuickAdd:
		return m.handleQuickAddKey(key)
	case ModeCommand:
		return m.handleCommandKey(key)
	}

	switch keyStr {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case m.Keys.Agenda:
		m.CurrentView = ViewAgenda
		m.Cursor = 0
		return m, nil
	case m.Keys.Templates:
		m.CurrentView = ViewTemplates
		m.Cursor = 0
		return m, nil
	case m.Keys.QuickAdd:
		m.Mode = ModeQuickAdd
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		m.Status = StatusBar{Text: "quick add: type a title, enter to save"}
		return m, nil
	case m.Keys.Command:
		m.Mode = ModeCommand
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command mode"}
		return m, nil
	case m.Keys.Down, "down":
		m.Cursor++
		m.clampCursor()
		return m, nil
	case m.Keys.Up, "up":
		m.Cursor--
		m.clampCursor()
		return m, nil
	case m.Keys.Toggle, "enter":
		return m.toggleSelected()
	case m.Keys.Refresh:
		return m, m.refreshCmd()
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	}
	return m, nil
}

func (m Model) handleQuickAddKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.Mode = ModeBrowse
		m.quickAddInput.Blur()
		m.Status = StatusBar{Text: "quick add cancelled"}
		return m, nil
	case "enter":
		title := m.quickAddInput.Value()
		m.Mode = ModeBrowse
		m.quickAddInput.Blur()
		cmd := m.runCommand("add " + title)
		return m, cmd
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(key)
	return m, cmd
}

func (m Model) handleCommandKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.Mode = ModeBrowse
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command cancelled"}
		return m, nil
	case "enter":
		input := m.commandInput.Value()
		m.Mode = ModeBrowse
		m.commandInput.Blur()
		cmd := m.runCommand(input)
		return m, cmd
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(key)
	return m, cmd
}

func (m Model) toggleSelected() (tea.Model, tea.Cmd) {
	if m.Service == nil {
		return m, nil
	}

	var id string
	if m.CurrentView == ViewTemplates {
		if m.Cursor < 0 || m.Cursor >= len(m.Templates) {
			return m, nil
		}
		id = m.Templates[m.Cursor].ID
	} else {
		occ, ok := m.selectedOccurrence()
		if !ok {
			return m, nil
		}
		id = occ.ReminderID
	}

	rem, err := m.Service.ToggleComplete(context.Background(), id)
	if err != nil {
		m.Status = statusFromErr(err)
		return m, nil
	}
	state := "reopened"
	if rem.Completed {
		state = "completed"
	}
	m.Status = StatusBar{Text: state + " " + rem.Title}
	return m, m.refreshCmd()
}
