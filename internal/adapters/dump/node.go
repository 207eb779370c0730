package dump

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/draft/internal/core/ports"
)

// NodeID is the unique identifier for the plan dumper Graft node.
const NodeID graft.ID = "adapter.plan_dumper"

func init() {
	graft.Register(graft.Node[ports.PlanDumper]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PlanDumper, error) {
			return New(), nil
		},
	})
}
