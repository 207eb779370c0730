package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/draft/internal/adapters/fs"
	"go.trai.ch/draft/internal/adapters/logger"
	"go.trai.ch/draft/internal/core/ports"
)

// NodeID is the unique identifier for the project loader Graft node.
const NodeID graft.ID = "adapter.config_loader"

func init() {
	graft.Register(graft.Node[ports.ProjectLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ProjectLoader, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(fsys, log), nil
		},
	})
}
