package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeSkip   Type = "skip"
	TypeDelete Type = "delete"
	TypePause  Type = "pause"
	TypeResume Type = "resume"
	TypeShow   Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

type DoneArgs struct {
	Target string
}

type SkipArgs struct {
	Target string
	On     string
}

type DeleteArgs struct {
	Target string
	On     string
	// Series deletes the whole series instead of one occurrence.
	Series bool
}

type PauseArgs struct {
	For string
}

type ShowArgs struct {
	Partition string
	Category  string
	Priority  string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *DoneArgs
	Skip   *SkipArgs
	Delete *DeleteArgs
	Pause  *PauseArgs
	Show   *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeSkip:
		return parseSkip(input, args)
	case TypeDelete:
		return parseDelete(input, args)
	case TypePause:
		return parsePause(input, args)
	case TypeResume:
		return Command{Type: TypeResume, Raw: input}, nil
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a reminder"}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Target: strings.ToLower(args[0])}}, nil
}

func parseSkip(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "skip requires a reminder and a date"}
	}
	return Command{Type: TypeSkip, Raw: raw, Skip: &SkipArgs{Target: strings.ToLower(args[0]), On: args[1]}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delete requires a reminder"}
	}
	out := DeleteArgs{Target: strings.ToLower(args[0])}
	for _, arg := range args[1:] {
		switch strings.ToLower(arg) {
		case "series", "all":
			out.Series = true
		default:
			out.On = arg
		}
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &out}, nil
}

func parsePause(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "pause requires a duration"}
	}
	return Command{Type: TypePause, Raw: raw, Pause: &PauseArgs{For: strings.Join(args, " ")}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a partition"}
	}
	out := ShowArgs{Partition: strings.ToLower(args[0])}
	for _, arg := range args[1:] {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "cat:"):
			out.Category = strings.TrimSpace(strings.TrimPrefix(arg, "cat:"))
		case strings.HasPrefix(lower, "prio:"):
			out.Priority = strings.TrimSpace(strings.TrimPrefix(lower, "prio:"))
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &out}, nil
}
