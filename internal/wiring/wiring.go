// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/draft/internal/adapters/config"
	_ "go.trai.ch/draft/internal/adapters/dump"
	_ "go.trai.ch/draft/internal/adapters/fs"
	_ "go.trai.ch/draft/internal/adapters/logger"
	_ "go.trai.ch/draft/internal/adapters/registry"
	_ "go.trai.ch/draft/internal/adapters/settings"
	_ "go.trai.ch/draft/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/draft/internal/app"
	_ "go.trai.ch/draft/internal/engine/planner"
)
