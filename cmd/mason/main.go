// Package main is the entry point for the mason build tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/cmd/mason/commands"
	"go.trai.ch/mason/internal/app"
	_ "go.trai.ch/mason/internal/wiring"
)

const envStateDir = "MASON_STATE_DIR"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The store and executor roots are fixed at wiring time, so the
	// state-dir flag has to be applied before the nodes are constructed.
	applyStateDir(os.Args[1:])

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = components.Tracer.Close()
	}()

	cli := commands.New(components.App)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}

func applyStateDir(args []string) {
	for i, arg := range args {
		switch {
		case arg == "--state-dir" && i+1 < len(args):
			_ = os.Setenv(envStateDir, args[i+1])
		case strings.HasPrefix(arg, "--state-dir="):
			_ = os.Setenv(envStateDir, strings.TrimPrefix(arg, "--state-dir="))
		}
	}
}
