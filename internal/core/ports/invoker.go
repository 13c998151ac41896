package ports

import (
	"context"
	"io"
)

// Invocation describes one external process invocation for a build phase.
type Invocation struct {
	// Action is the shell action to run.
	Action string
	// Dir is the working directory for the invocation.
	Dir string
	// Env is the environment in "KEY=VALUE" form.
	Env []string
	// Log receives the combined output of the invocation.
	Log io.Writer
}

// Invoker executes external processes on behalf of the build executor.
// Each build phase maps to exactly one invocation with a captured exit
// status. Retry policy for transient failures belongs to implementations,
// not to the core.
//
//go:generate go run go.uber.org/mock/mockgen -source=invoker.go -destination=mocks/mock_invoker.go -package=mocks
type Invoker interface {
	// Invoke runs the invocation and returns an error if the process could
	// not be started or exited non-zero.
	Invoke(ctx context.Context, inv Invocation) error
}
