package cas

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/internal/core/ports"
)

// NodeID is the unique identifier for the result store Graft node.
const NodeID graft.ID = "adapter.result_store"

// DefaultRoot is the store location relative to the state directory.
const DefaultRoot = "store"

// envStateDir overrides the state directory, set by the CLI before wiring.
const envStateDir = "MASON_STATE_DIR"

func init() {
	graft.Register(graft.Node[ports.ResultStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ResultStore, error) {
			stateDir := os.Getenv(envStateDir)
			if stateDir == "" {
				stateDir = ".mason"
			}
			store, err := NewStore(filepath.Join(stateDir, DefaultRoot))
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
