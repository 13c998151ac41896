// Package telemetry provides the Progrock implementation of the build
// progress tracer.
package telemetry

import (
	"context"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/mason/internal/core/ports"
)

// Recorder implements ports.Tracer using the progrock library.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() ports.Tracer {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start begins recording a new vertex for one node.
func (r *Recorder) Start(ctx context.Context, name string) (context.Context, ports.Vertex) {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return ctx, &Vertex{vertex: v}
}

// EmitPlan is a no-op for the tape: vertices surface as they start.
func (r *Recorder) EmitPlan(_ context.Context, _ []string) {}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Vertex implements ports.Vertex wrapping *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Write captures output on the vertex's stdout stream.
func (v *Vertex) Write(p []byte) (int, error) {
	return v.vertex.Stdout().Write(p)
}

// Complete marks the vertex as finished, successfully or with an error.
func (v *Vertex) Complete(err error) {
	v.vertex.Done(err)
}

// Cached marks the vertex as a cache hit.
func (v *Vertex) Cached() {
	v.vertex.Cached()
}
