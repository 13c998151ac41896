package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the telemetry adapter Graft node.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			return New(), nil
		},
	})
}
