package ports

import "go.trai.ch/draft/internal/core/domain"

// ToolSpecRegistry maps file types and tool identifiers to tool descriptors.
//
//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type ToolSpecRegistry interface {
	// FileType infers the type of a file from its name.
	FileType(path string) domain.FileType
	// ToolForFileType returns the default producing tool for ft.
	ToolForFileType(ft domain.FileType) (*domain.ToolSpec, bool)
	// Tool returns the tool with the given identifier.
	Tool(id string) (*domain.ToolSpec, bool)
}
