package settings

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/draft/internal/core/ports"
)

// NodeID is the unique identifier for the settings resolver Graft node.
const NodeID graft.ID = "adapter.settings"

func init() {
	graft.Register(graft.Node[ports.ScopeResolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ScopeResolver, error) {
			return NewResolver()
		},
	})
}
