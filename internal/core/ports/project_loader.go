package ports

import "go.trai.ch/draft/internal/core/domain"

// ProjectLoader defines the interface for loading the project model.
//
//go:generate mockgen -source=project_loader.go -destination=mocks/mock_project_loader.go -package=mocks
type ProjectLoader interface {
	// Load discovers the workspace or project file from cwd and returns the resolved model.
	Load(cwd string) (*domain.Workspace, error)
}
