package shell

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/adapters/logger"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the executor Graft node.
const NodeID graft.ID = "adapter.executor"

// InvokerNodeID is the unique identifier for the shell invoker Graft node.
const InvokerNodeID graft.ID = "adapter.invoker"

const envStateDir = "MASON_STATE_DIR"

func init() {
	graft.Register(graft.Node[ports.Invoker]{
		ID:        InvokerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Invoker, error) {
			return NewInvoker(), nil
		},
	})

	graft.Register(graft.Node[ports.Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{InvokerNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Executor, error) {
			invoker, err := graft.Dep[ports.Invoker](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			stateDir := os.Getenv(envStateDir)
			if stateDir == "" {
				stateDir = ".mason"
			}
			return NewExecutor(
				invoker,
				log,
				filepath.Join(stateDir, "work"),
				filepath.Join(stateDir, "out"),
			), nil
		},
	})
}
