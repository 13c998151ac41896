package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/cas"
	"go.trai.ch/mason/internal/adapters/shell"
	"go.trai.ch/mason/internal/adapters/telemetry"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, cas.NodeID, telemetry.NodeID},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.ResultStore](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewScheduler(executor, store, tracer), nil
		},
	})
}
