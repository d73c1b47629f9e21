package commands

import (
	"errors"
	"testing"
)

func TestParseAdd(t *testing.T) {
	cmd, err := Parse("/add Pay the rent")
	if err != nil {
		t.Fatalf("parse add: %v", err)
	}
	if cmd.Type != TypeAdd || cmd.Add == nil || cmd.Add.Title != "Pay the rent" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseSkipRequiresDate(t *testing.T) {
	_, err := Parse("skip rem-1")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeInvalidArgument {
		t.Fatalf("expected invalid_argument, got %v", err)
	}

	cmd, err := Parse("skip REM-1 2026-03-05")
	if err != nil {
		t.Fatalf("parse skip: %v", err)
	}
	if cmd.Skip.Target != "rem-1" || cmd.Skip.On != "2026-03-05" {
		t.Fatalf("unexpected skip args: %+v", cmd.Skip)
	}
}

func TestParseDeleteSeriesFlag(t *testing.T) {
	cmd, err := Parse("delete rem-1 series")
	if err != nil {
		t.Fatalf("parse delete: %v", err)
	}
	if !cmd.Delete.Series {
		t.Fatalf("expected series delete, got %+v", cmd.Delete)
	}

	cmd, err = Parse("delete rem-1 2026-03-05")
	if err != nil {
		t.Fatalf("parse delete occurrence: %v", err)
	}
	if cmd.Delete.Series || cmd.Delete.On != "2026-03-05" {
		t.Fatalf("unexpected delete args: %+v", cmd.Delete)
	}
}

func TestParseShowFilters(t *testing.T) {
	cmd, err := Parse("show upcoming cat:home prio:HIGH")
	if err != nil {
		t.Fatalf("parse show: %v", err)
	}
	if cmd.Show.Partition != "upcoming" || cmd.Show.Category != "home" || cmd.Show.Priority != "high" {
		t.Fatalf("unexpected show args: %+v", cmd.Show)
	}
}

func TestParseRejectsUnknownAndEmpty(t *testing.T) {
	var cmdErr *CommandError
	if _, err := Parse("   "); !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty_input, got %v", err)
	}
	if _, err := Parse("frobnicate now"); !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown_command, got %v", err)
	}
}

func TestExecuteRoutesToHandlers(t *testing.T) {
	called := ""
	handlers := Handlers{
		Resume: func() (Result, error) {
			called = "resume"
			return Result{Message: "notifications resumed"}, nil
		},
	}

	cmd, err := Parse("resume")
	if err != nil {
		t.Fatalf("parse resume: %v", err)
	}
	res, err := Execute(cmd, handlers)
	if err != nil {
		t.Fatalf("execute resume: %v", err)
	}
	if called != "resume" || res.Message == "" {
		t.Fatalf("handler not invoked: called=%q result=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("pause 2h")
	if err != nil {
		t.Fatalf("parse pause: %v", err)
	}
	var cmdErr *CommandError
	if _, err := Execute(cmd, Handlers{}); !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected handler_missing, got %v", err)
	}
}
