package telemetry

import (
	"context"

	"go.trai.ch/mason/internal/core/ports"
)

// NoOpTracer is a no-op implementation of ports.Tracer.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start creates a new no-op vertex.
func (t *NoOpTracer) Start(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, &NoOpVertex{}
}

// EmitPlan does nothing.
func (t *NoOpTracer) EmitPlan(_ context.Context, _ []string) {}

// Close does nothing.
func (t *NoOpTracer) Close() error { return nil }

// NoOpVertex is a no-op implementation of ports.Vertex.
type NoOpVertex struct{}

// Write does nothing and returns the length of p.
func (v *NoOpVertex) Write(p []byte) (int, error) { return len(p), nil }

// Complete does nothing.
func (v *NoOpVertex) Complete(_ error) {}

// Cached does nothing.
func (v *NoOpVertex) Cached() {}
