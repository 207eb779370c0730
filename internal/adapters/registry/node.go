package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/draft/internal/core/ports"
)

// NodeID is the unique identifier for the tool registry Graft node.
const NodeID graft.ID = "adapter.registry"

func init() {
	graft.Register(graft.Node[ports.ToolSpecRegistry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ToolSpecRegistry, error) {
			return New()
		},
	})
}
