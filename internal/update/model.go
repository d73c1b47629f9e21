package update

import (
	"github.com/charmbracelet/bubbles/textinput"

	"remindd/internal/model"
	"remindd/internal/query"
	"remindd/internal/reminders"
)

type View string

const (
	ViewAgenda    View = "Agenda"
	ViewTemplates View = "Templates"
)

// InputMode is the keyboard focus: list navigation, quick-add capture, or
// the command line.
type InputMode string

const (
	ModeBrowse   InputMode = "browse"
	ModeQuickAdd InputMode = "quick_add"
	ModeCommand  InputMode = "command"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Agenda    string
	Templates string
	QuickAdd  string
	Command   string
	Down      string
	Up        string
	Toggle    string
	Refresh   string
	Help      string
	Quit      string
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// RefreshedMsg carries a freshly expanded occurrence set and the current
// template list back into the update loop.
type RefreshedMsg struct {
	Occurrences []model.Occurrence
	Templates   []model.Reminder
	Err         error
}

type Model struct {
	Service     *reminders.Service
	Config      RuntimeConfig
	CurrentView View
	Mode        InputMode
	Partitions  query.Partitions
	Templates   []model.Reminder
	Filter      query.Filter
	// FocusPartition narrows the agenda to one bucket; empty shows all.
	FocusPartition string
	Cursor         int
	HelpVisible    bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool

	quickAddInput textinput.Model
	commandInput  textinput.Model
}

func defaultKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Agenda:    "1",
		Templates: "2",
		QuickAdd:  "a",
		Command:   "/",
		Down:      "j",
		Up:        "k",
		Toggle:    "x",
		Refresh:   "r",
		Help:      "?",
		Quit:      "q",
	}
}
