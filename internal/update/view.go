package update

import (
	"fmt"
	"time"

	"remindd/internal/model"
	"remindd/internal/views"
)

const whenLayout = "Mon Jan 2 15:04"

func (m Model) View() string {
	if m.Quitting {
		return "bye\n"
	}

	data := views.AppData{
		Header:     m.header(),
		StatusLine: m.Status.Text,
		IsError:    m.Status.IsError,
		Footer:     "1 agenda · 2 reminders · a add · / command · x done · ? help · q quit",
	}

	switch m.Mode {
	case ModeQuickAdd:
		data.InputLine = "add> " + m.quickAddInput.View()
	case ModeCommand:
		data.InputLine = "/" + m.commandInput.View()
	}

	if m.CurrentView == ViewTemplates {
		data.LeftPane = views.RenderTemplatesPanel(m.templateItems())
	} else {
		data.LeftPane = views.RenderAgendaPanel(m.agendaSections())
	}

	if m.HelpVisible {
		data.RightPane = views.RenderHelpPanel(m.helpBindings())
	} else {
		data.RightPane = views.RenderDetailPanel(m.detailData())
	}

	return views.RenderApp(data)
}

func (m Model) header() string {
	title := "remindd · " + string(m.CurrentView)
	if m.FocusPartition != "" {
		title += " · " + m.FocusPartition
	}
	if m.Filter.Text != "" || m.Filter.CategoryID != "" || m.Filter.Priority != "" {
		title += " · filtered"
	}
	return title
}

func (m Model) agendaSections() []views.AgendaSectionData {
	rows := m.agendaRows()
	selected := ""
	if m.Cursor >= 0 && m.Cursor < len(rows) {
		selected = rowKey(rows[m.Cursor])
	}

	section := func(name string, occs []model.Occurrence) views.AgendaSectionData {
		out := views.AgendaSectionData{Name: name}
		for _, occ := range occs {
			out.Items = append(out.Items, views.AgendaItemData{
				ID:        occ.ReminderID,
				Title:     occ.Title,
				When:      occ.At.Format(whenLayout),
				Priority:  string(occ.Priority),
				Recurring: occ.Frequency != model.FrequencyNever,
				Completed: occ.Completed,
				Selected:  selected == rowKey(occ),
			})
		}
		return out
	}

	switch m.FocusPartition {
	case "overdue":
		return []views.AgendaSectionData{section("Overdue", m.Partitions.Overdue)}
	case "today":
		return []views.AgendaSectionData{section("Today", m.Partitions.Today)}
	case "upcoming":
		return []views.AgendaSectionData{section("Upcoming", m.Partitions.Upcoming)}
	case "completed":
		return []views.AgendaSectionData{section("Completed", m.Partitions.Completed)}
	}
	return []views.AgendaSectionData{
		section("Overdue", m.Partitions.Overdue),
		section("Today", m.Partitions.Today),
		section("Upcoming", m.Partitions.Upcoming),
		section("Completed", m.Partitions.Completed),
	}
}

func (m Model) templateItems() []views.TemplateItemData {
	items := make([]views.TemplateItemData, 0, len(m.Templates))
	for i, rem := range m.Templates {
		items = append(items, views.TemplateItemData{
			ID:        rem.ID,
			Title:     rem.Title,
			Frequency: string(rem.Frequency),
			NextDue:   rem.DueAt.Format(whenLayout),
			Completed: rem.Completed,
			Selected:  m.CurrentView == ViewTemplates && i == m.Cursor,
		})
	}
	return items
}

func (m Model) detailData() views.DetailData {
	if m.CurrentView == ViewTemplates {
		if m.Cursor < 0 || m.Cursor >= len(m.Templates) {
			return views.DetailData{}
		}
		return templateDetail(m.Templates[m.Cursor])
	}

	occ, ok := m.selectedOccurrence()
	if !ok {
		return views.DetailData{}
	}
	for _, rem := range m.Templates {
		if rem.ID == occ.ReminderID {
			detail := templateDetail(rem)
			detail.When = occ.At.Format(whenLayout)
			return detail
		}
	}
	return views.DetailData{
		Title:     occ.Title,
		When:      occ.At.Format(whenLayout),
		Priority:  string(occ.Priority),
		Frequency: string(occ.Frequency),
		Notes:     occ.Notes,
	}
}

func templateDetail(rem model.Reminder) views.DetailData {
	excluded := make([]string, 0, len(rem.ExcludedDays))
	for _, day := range rem.ExcludedDays {
		excluded = append(excluded, day.Format("2006-01-02"))
	}
	return views.DetailData{
		Title:     rem.Title,
		When:      rem.DueAt.Format(whenLayout),
		Priority:  string(rem.Priority),
		Frequency: string(rem.Frequency),
		Category:  rem.CategoryID,
		Notes:     rem.Notes,
		Excluded:  excluded,
	}
}

func (m Model) helpBindings() []string {
	k := m.Keys
	return []string{
		fmt.Sprintf("%s/%s  agenda / reminder list", k.Agenda, k.Templates),
		fmt.Sprintf("%s/%s  move selection", k.Down, k.Up),
		fmt.Sprintf("%s      quick add", k.QuickAdd),
		fmt.Sprintf("%s      command line", k.Command),
		fmt.Sprintf("%s      toggle done", k.Toggle),
		fmt.Sprintf("%s      reload", k.Refresh),
		"commands: add <title> · done <id> · skip <id> <date>",
		"          delete <id> [date|series] · pause <dur> · resume",
		"          show <all|overdue|today|upcoming|completed> [cat:..] [prio:..]",
	}
}

func rowKey(occ model.Occurrence) string {
	return occ.ReminderID + "@" + occ.At.Format(time.RFC3339)
}
