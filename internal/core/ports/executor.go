// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/mason/internal/core/domain"
)

// Executor runs the ordered phase sequence of one node in an isolated
// working area and produces a build result tagged with the node's
// fingerprint.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs all phases of the node against the resolved input
	// results. The inputs map is keyed by input package name.
	//
	// The first failing phase aborts the remaining ones; the returned error
	// wraps domain.ErrPhaseFailed with the phase name attached.
	Execute(ctx context.Context, node *domain.Node, inputs map[string]domain.BuildResult) (domain.BuildResult, error)
}
