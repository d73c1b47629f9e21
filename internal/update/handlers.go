package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"remindd/internal/commands"
	"remindd/internal/model"
	"remindd/internal/query"
	"remindd/internal/reminders"
	"remindd/internal/scheduler"
)

const dayLayout = "2006-01-02"

// runCommand parses and executes one command line against the service.
// Mutating commands trigger a reload; a scheduling failure is reported but
// the reload still runs.
func (m *Model) runCommand(input string) tea.Cmd {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = statusFromErr(err)
		return nil
	}

	res, err := commands.Execute(cmd, m.handlers())
	if err != nil {
		if errors.Is(err, scheduler.ErrScheduleFailed) {
			m.Status = StatusBar{Text: "saved, but some notifications failed to schedule", IsError: true}
			return m.refreshCmd()
		}
		m.Status = statusFromErr(err)
		return nil
	}

	m.Status = StatusBar{Text: res.Message}
	if cmd.Type == commands.TypeShow {
		return nil
	}
	return m.refreshCmd()
}

func (m *Model) handlers() commands.Handlers {
	ctx := context.Background()
	return commands.Handlers{
		Add: func(args commands.AddArgs) (commands.Result, error) {
			rem, err := m.Service.Create(ctx, reminders.CreateInput{
				Title: args.Title,
				DueAt: time.Now().Add(time.Hour).Truncate(time.Minute),
			})
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added %q due %s", rem.Title, rem.DueAt.Format("Jan 2 15:04"))}, nil
		},
		Done: func(args commands.DoneArgs) (commands.Result, error) {
			rem, err := m.resolveTarget(ctx, args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			rem, err = m.Service.ToggleComplete(ctx, rem.ID)
			if err != nil {
				return commands.Result{}, err
			}
			state := "reopened"
			if rem.Completed {
				state = "completed"
			}
			return commands.Result{Message: fmt.Sprintf("%s %q", state, rem.Title)}, nil
		},
		Skip: func(args commands.SkipArgs) (commands.Result, error) {
			rem, err := m.resolveTarget(ctx, args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			day, err := parseDay(args.On)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.Service.DeleteOccurrence(ctx, rem.ID, day, reminders.ScopeSingleOccurrence); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("skipped %q on %s", rem.Title, args.On)}, nil
		},
		Delete: func(args commands.DeleteArgs) (commands.Result, error) {
			rem, err := m.resolveTarget(ctx, args.Target)
			if err != nil {
				return commands.Result{}, err
			}
			scope := reminders.ScopeEntireSeries
			at := rem.DueAt
			if !args.Series && args.On != "" && rem.IsRecurring() {
				scope = reminders.ScopeSingleOccurrence
				if at, err = parseDay(args.On); err != nil {
					return commands.Result{}, err
				}
			}
			if err := m.Service.DeleteOccurrence(ctx, rem.ID, at, scope); err != nil {
				return commands.Result{}, err
			}
			if scope == reminders.ScopeSingleOccurrence {
				return commands.Result{Message: fmt.Sprintf("removed one occurrence of %q", rem.Title)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("deleted %q", rem.Title)}, nil
		},
		Pause: func(args commands.PauseArgs) (commands.Result, error) {
			d, err := time.ParseDuration(strings.TrimSpace(args.For))
			if err != nil {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: fmt.Sprintf("pause duration %q: use forms like 2h or 30m", args.For),
				}
			}
			until := time.Now().Add(d)
			if err := m.Service.Pause(ctx, until); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "notifications paused until " + until.Format("Jan 2 15:04")}, nil
		},
		Resume: func() (commands.Result, error) {
			if err := m.Service.Resume(ctx); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "notifications resumed"}, nil
		},
		Show: func(args commands.ShowArgs) (commands.Result, error) {
			return m.applyShow(ctx, args)
		},
	}
}

func (m *Model) applyShow(ctx context.Context, args commands.ShowArgs) (commands.Result, error) {
	switch args.Partition {
	case "all", "overdue", "today", "upcoming", "completed":
	default:
		return commands.Result{}, &commands.CommandError{
			Code:    commands.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("unknown partition %q", args.Partition),
		}
	}

	filter := query.Filter{}
	if args.Priority != "" {
		prio := model.Priority(args.Priority)
		if !prio.IsValid() {
			return commands.Result{}, &commands.CommandError{
				Code:    commands.ErrCodeInvalidArgument,
				Message: fmt.Sprintf("unknown priority %q", args.Priority),
			}
		}
		filter.Priority = prio
	}
	if args.Category != "" {
		cat, err := m.findCategory(ctx, args.Category)
		if err != nil {
			return commands.Result{}, err
		}
		filter.CategoryID = cat.ID
	}

	m.Filter = filter
	if args.Partition == "all" {
		m.FocusPartition = ""
	} else {
		m.FocusPartition = args.Partition
	}
	m.CurrentView = ViewAgenda
	m.Cursor = 0
	return commands.Result{Message: "showing " + args.Partition}, nil
}

// resolveTarget accepts a full reminder ID or a unique prefix of one.
func (m *Model) resolveTarget(ctx context.Context, target string) (model.Reminder, error) {
	templates, err := m.Service.Templates(ctx)
	if err != nil {
		return model.Reminder{}, err
	}
	var matches []model.Reminder
	for _, rem := range templates {
		if rem.ID == target {
			return rem, nil
		}
		if strings.HasPrefix(rem.ID, target) {
			matches = append(matches, rem)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Reminder{}, &commands.CommandError{
			Code:    commands.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("no reminder matches %q", target),
		}
	default:
		return model.Reminder{}, &commands.CommandError{
			Code:    commands.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("%q is ambiguous (%d matches)", target, len(matches)),
		}
	}
}

func (m *Model) findCategory(ctx context.Context, name string) (model.Category, error) {
	cats, err := m.Service.Categories(ctx)
	if err != nil {
		return model.Category{}, err
	}
	for _, cat := range cats {
		if strings.EqualFold(cat.Name, name) || cat.ID == name {
			return cat, nil
		}
	}
	return model.Category{}, &commands.CommandError{
		Code:    commands.ErrCodeInvalidArgument,
		Message: fmt.Sprintf("no category named %q", name),
	}
}

func parseDay(raw string) (time.Time, error) {
	day, err := time.ParseInLocation(dayLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, &commands.CommandError{
			Code:    commands.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("date %q: want YYYY-MM-DD", raw),
		}
	}
	return day, nil
}

func statusFromErr(err error) StatusBar {
	var cmdErr *commands.CommandError
	if errors.As(err, &cmdErr) {
		return StatusBar{Text: cmdErr.Message, IsError: true}
	}
	return StatusBar{Text: err.Error(), IsError: true}
}
