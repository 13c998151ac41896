package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/logger"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the spec loader Graft node.
const NodeID graft.ID = "adapter.spec_loader"

func init() {
	graft.Register(graft.Node[ports.SpecLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SpecLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
