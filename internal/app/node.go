package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/draft/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/draft/internal/adapters/dump"      //nolint:depguard // Wired in app layer
	"go.trai.ch/draft/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/draft/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/draft/internal/engine/planner"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI layer needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			planner.NodeID,
			dump.NodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ProjectLoader](ctx)
	if err != nil {
		return nil, err
	}

	p, err := graft.Dep[*planner.Planner](ctx)
	if err != nil {
		return nil, err
	}

	dumper, err := graft.Dep[ports.PlanDumper](ctx)
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

	return New(loader, p, dumper, log, tel), nil
}
