package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type AgendaItemData struct {
	ID        string
	Title     string
	When      string
	Priority  string
	Recurring bool
	Completed bool
	Selected  bool
}

type AgendaSectionData struct {
	Name  string
	Items []AgendaItemData
}

type DetailData struct {
	Title     string
	When      string
	Priority  string
	Frequency string
	Category  string
	Notes     string
	Excluded  []string
}

type TemplateItemData struct {
	ID        string
	Title     string
	Frequency string
	NextDue   string
	Completed bool
	Selected  bool
}

var (
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func RenderAgendaPanel(sections []AgendaSectionData) string {
	var b strings.Builder
	empty := true
	for _, section := range sections {
		if len(section.Items) == 0 {
			continue
		}
		empty = false
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%d)", section.Name, len(section.Items))))
		b.WriteString("\n")
		for _, item := range section.Items {
			b.WriteString(renderAgendaItem(item))
			b.WriteString("\n")
		}
	}
	if empty {
		return dimStyle.Render("nothing here, press a to add a reminder")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAgendaItem(item AgendaItemData) string {
	marker := "[ ]"
	if item.Completed {
		marker = "[x]"
	}
	repeat := ""
	if item.Recurring {
		repeat = " ↻"
	}
	line := fmt.Sprintf("%s %s  %s%s (%s)", marker, item.When, item.Title, repeat, item.Priority)
	switch {
	case item.Selected:
		return selectedStyle.Render("> " + line)
	case item.Completed:
		return "  " + completedStyle.Render(line)
	default:
		return "  " + line
	}
}

func RenderDetailPanel(data DetailData) string {
	if data.Title == "" {
		return dimStyle.Render("select a reminder to see details")
	}
	lines := []string{
		sectionStyle.Render(data.Title),
		"due      " + data.When,
		"priority " + data.Priority,
		"repeats  " + data.Frequency,
	}
	if data.Category != "" {
		lines = append(lines, "category "+data.Category)
	}
	if len(data.Excluded) > 0 {
		lines = append(lines, "skipped  "+strings.Join(data.Excluded, ", "))
	}
	if md := RenderMarkdown(data.Notes); md != "" {
		lines = append(lines, "", md)
	}
	return strings.Join(lines, "\n")
}

func RenderTemplatesPanel(items []TemplateItemData) string {
	if len(items) == 0 {
		return dimStyle.Render("no reminders yet")
	}
	var b strings.Builder
	for _, item := range items {
		marker := "[ ]"
		if item.Completed {
			marker = "[x]"
		}
		short := item.ID
		if len(short) > 8 {
			short = short[:8]
		}
		line := fmt.Sprintf("%s %-8s %s (%s, next %s)", marker, short, item.Title, item.Frequency, item.NextDue)
		if item.Selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderHelpPanel(bindings []string) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("keys"))
	b.WriteString("\n")
	for _, binding := range bindings {
		b.WriteString("  " + binding + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
