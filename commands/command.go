// Package commands implements the line-oriented command format that drives a
// [dirtree.Manager]: `ACTION arg1[ arg2]` with ACTION one of CREATE, MOVE,
// DELETE, LIST.
package commands

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/dirtree"
)

// Action valid values are ActionCreate "CREATE", ActionMove "MOVE",
// ActionDelete "DELETE", ActionList "LIST"
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionMove   Action = "MOVE"
	ActionDelete Action = "DELETE"
	ActionList   Action = "LIST"
)

// Command is one parsed command
type Command struct {
	Action Action
	Path   string // CREATE, DELETE
	Source string // MOVE
	Dest   string // MOVE
}

// CommandError reports a command that could not be parsed or executed as written
type CommandError struct {
	Line  string
	Cause string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Line, e.Cause)
}

func (e *CommandError) Unwrap() error {
	return dirtree.ErrInvalidCommand
}

// Parse parses a single command line.
//
// Tokens are separated by whitespace. CREATE and DELETE accept the path either
// pre-joined or as separate segment tokens, which are rejoined with "/". MOVE
// uses the first two tokens as source and destination. LIST ignores arguments.
// Action keywords are case-sensitive.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, &CommandError{Line: line, Cause: "empty command"}
	}

	action, params := Action(fields[0]), fields[1:]
	cmd := Command{Action: action}
	switch action {
	case ActionCreate, ActionDelete:
		cmd.Path = strings.Join(params, "/")
	case ActionMove:
		if len(params) >= 2 {
			cmd.Source, cmd.Dest = params[0], params[1]
		}
	case ActionList:
	default:
		return Command{}, &CommandError{Line: line, Cause: fmt.Sprintf("unknown action %q", fields[0])}
	}

	if err := cmd.Validate(); err != nil {
		return Command{}, &CommandError{Line: line, Cause: err.Error()}
	}
	return cmd, nil
}

// Validate checks that the command carries the arguments its action needs.
// CREATE without a path is valid and creates nothing.
func (c Command) Validate() error {
	switch c.Action {
	case ActionCreate:
	case ActionDelete:
		if c.Path == "" {
			return fmt.Errorf("%s requires a path", c.Action)
		}
	case ActionMove:
		if c.Source == "" || c.Dest == "" {
			return fmt.Errorf("%s requires a source and a destination", c.Action)
		}
	case ActionList:
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
	return nil
}

// String renders the command back into its line form
func (c Command) String() string {
	switch c.Action {
	case ActionCreate, ActionDelete:
		if c.Path == "" {
			return string(c.Action)
		}
		return string(c.Action) + " " + c.Path
	case ActionMove:
		return string(c.Action) + " " + c.Source + " " + c.Dest
	default:
		return string(c.Action)
	}
}
