package ports

import (
	"context"
	"io"
)

//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer records build progress, one vertex per node.
type Tracer interface {
	// Start creates a new vertex for a unit of work.
	Start(ctx context.Context, name string) (context.Context, Vertex)
	// EmitPlan signals that a set of nodes is planned for execution.
	EmitPlan(ctx context.Context, names []string)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one recorded unit of work.
type Vertex interface {
	io.Writer
	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)
	// Cached marks the vertex as a cache hit.
	Cached()
}
