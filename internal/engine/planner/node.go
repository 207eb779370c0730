package planner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/draft/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/draft/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/draft/internal/adapters/registry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/draft/internal/adapters/settings"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/draft/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/draft/internal/core/ports"
)

// NodeID is the unique identifier for the planner Graft node.
const NodeID graft.ID = "engine.planner"

func init() {
	graft.Register(graft.Node[*Planner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			settings.NodeID,
			registry.NodeID,
			fs.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Planner, error) {
			resolver, err := graft.Dep[ports.ScopeResolver](ctx)
			if err != nil {
				return nil, err
			}

			reg, err := graft.Dep[ports.ToolSpecRegistry](ctx)
			if err != nil {
				return nil, err
			}

			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return New(resolver, reg, fsys, log, tel), nil
		},
	})
}
