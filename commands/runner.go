package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/brettbedarf/dirtree"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/google/uuid"
)

// Result counts the outcome of a batch run
type Result struct {
	Executed int // commands that ran without error
	Failed   int // malformed commands and failed moves
}

// Runner executes scripts against a [dirtree.Manager]. LIST output goes to
// out; diagnostics go to the logger.
type Runner struct {
	mgr dirtree.Manager
	out io.Writer
	// ContinueOnError keeps the batch going after a failed command. When
	// false the first failure stops the run and is returned.
	ContinueOnError bool
	runID           string
	logger          util.Logger
}

func NewRunner(mgr dirtree.Manager, out io.Writer, continueOnError bool) *Runner {
	runID := uuid.NewString()
	logger := util.GetLogger("Runner")
	return &Runner{
		mgr:             mgr,
		out:             out,
		ContinueOnError: continueOnError,
		runID:           runID,
		logger:          logger.With().Str("run", runID).Logger(),
	}
}

// RunID returns the unique ID tagging this runner's log lines
func (r *Runner) RunID() string {
	return r.runID
}

// Exec runs a single command.
//
// Only MOVE can fail against the manager. A DELETE of a missing path is
// logged by the manager and is not an error here.
func (r *Runner) Exec(cmd Command) error {
	switch cmd.Action {
	case ActionCreate:
		r.mgr.CreateDirectory(cmd.Path)
	case ActionMove:
		return r.mgr.MoveDirectory(cmd.Source, cmd.Dest)
	case ActionDelete:
		r.mgr.DeleteDirectory(cmd.Path)
	case ActionList:
		if _, err := fmt.Fprintln(r.out, r.mgr.ListDirectories()); err != nil {
			return fmt.Errorf("failed to write listing: %w", err)
		}
	default:
		return &CommandError{Line: cmd.String(), Cause: fmt.Sprintf("unknown action %q", cmd.Action)}
	}
	return nil
}

// Run executes steps in order. Cancelling ctx stops the run between commands.
func (r *Runner) Run(ctx context.Context, steps []Step) (Result, error) {
	var res Result
	r.logger.Debug().Int("commands", len(steps)).Msg("Run started")

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			r.logger.Warn().Err(err).Msg("Run cancelled")
			return res, err
		}

		err := step.Err
		if err == nil {
			err = r.Exec(step.Command)
		}
		if err != nil {
			res.Failed++
			r.logger.Error().Err(err).Str("command", step.Text).Msg("Command failed")
			if !r.ContinueOnError {
				return res, err
			}
			continue
		}
		res.Executed++
		r.logger.Trace().Str("command", step.Text).Msg("Command executed")
	}

	r.logger.Debug().Int("executed", res.Executed).Int("failed", res.Failed).Msg("Run finished")
	return res, nil
}
