// Package app implements the application layer for mason.
package app

import (
	"context"
	"fmt"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/planner"
	"go.trai.ch/mason/internal/engine/scheduler"
	"go.trai.ch/mason/internal/registry"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader    ports.SpecLoader
	scheduler *scheduler.Scheduler
	logger    ports.Logger
}

// New creates a new App instance.
func New(loader ports.SpecLoader, sched *scheduler.Scheduler, logger ports.Logger) *App {
	return &App{
		loader:    loader,
		scheduler: sched,
		logger:    logger,
	}
}

// RunOptions configures a single build run.
type RunOptions struct {
	// SpecPath is the specification file or directory to load.
	SpecPath string
	// Jobs is the maximum number of concurrently building packages.
	// Zero means one per CPU.
	Jobs int
	// Force rebuilds every package even when a cached result exists.
	Force bool
	// HardKill terminates running phases on interruption instead of
	// letting them finish.
	HardKill bool
}

// Run builds the given target packages and everything they depend on.
func (a *App) Run(ctx context.Context, targets []string, opts RunOptions) error {
	if len(targets) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	specs, err := a.loader.Load(opts.SpecPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load specifications")
	}

	reg := registry.New()
	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}

	graph, err := planner.New(reg).Build(targets)
	if err != nil {
		return err
	}

	report, runErr := a.scheduler.Run(ctx, graph, scheduler.Options{
		Parallelism: opts.Jobs,
		Force:       opts.Force,
		HardKill:    opts.HardKill,
	})
	a.logReport(report)

	return runErr
}

func (a *App) logReport(report *scheduler.RunReport) {
	if report == nil {
		return
	}
	for _, n := range report.Nodes {
		switch n.Status {
		case scheduler.StatusFailed:
			a.logger.Warn(fmt.Sprintf("%-10s %s (%s)", n.Status, n.Name, n.Fingerprint))
		case scheduler.StatusBlocked:
			a.logger.Warn(fmt.Sprintf("%-10s %s (blocked by %s)", n.Status, n.Name, n.BlockedBy))
		default:
			a.logger.Info(fmt.Sprintf("%-10s %s (%s)", n.Status, n.Name, n.Fingerprint))
		}
	}
}
