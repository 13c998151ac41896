package shell

import (
	"context"
	"errors"
	"os/exec"
	"strconv"

	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Invoker = (*Invoker)(nil)

// Invoker runs phase actions through the system shell.
type Invoker struct{}

// NewInvoker creates a new Invoker.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Invoke runs a single action with sh -c, streaming combined output into
// the invocation's log writer.
func (i *Invoker) Invoke(ctx context.Context, inv ports.Invocation) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", inv.Action) //nolint:gosec // actions come from loaded specifications
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.Stdout = inv.Log
	cmd.Stderr = inv.Log

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return zerr.With(zerr.Wrap(err, "action exited with non-zero status"), "exit_code", strconv.Itoa(exitErr.ExitCode()))
		}
		return zerr.Wrap(err, "failed to run action")
	}
	return nil
}
