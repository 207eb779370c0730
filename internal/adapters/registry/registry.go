// Package registry provides the built-in tool specification registry.
package registry

import (
	_ "embed"
	"path/filepath"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Registry maps file extensions to file types and file types to tool specifications.
type Registry struct {
	extensions map[string]domain.FileType
	tools      map[string]*domain.ToolSpec
	order      []*domain.ToolSpec
}

var _ ports.ToolSpecRegistry = (*Registry)(nil)

// New returns the registry of built-in tools.
func New() (*Registry, error) {
	return Parse(builtinYAML)
}

// Parse builds a registry from a YAML document with the layout of the built-in specifications.
func Parse(data []byte) (*Registry, error) {
	var dto registryDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, zerr.Wrap(err, domain.ErrToolSpecParseFailed.Error())
	}

	r := &Registry{
		extensions: make(map[string]domain.FileType, len(dto.FileTypes)),
		tools:      make(map[string]*domain.ToolSpec, len(dto.Tools)),
	}
	for ext, ft := range dto.FileTypes {
		r.extensions[strings.ToLower(ext)] = domain.FileType(ft)
	}

	for i := range dto.Tools {
		spec, err := dto.Tools[i].toDomain()
		if err != nil {
			return nil, err
		}
		if _, ok := r.tools[spec.ID]; ok {
			return nil, zerr.With(zerr.With(domain.ErrToolSpecParseFailed, "tool", spec.ID), "reason", "duplicate id")
		}
		r.tools[spec.ID] = spec
		r.order = append(r.order, spec)
	}
	return r, nil
}

// FileType infers the type of path from its extension.
func (r *Registry) FileType(path string) domain.FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ft, ok := r.extensions[ext]; ok {
		return ft
	}
	return domain.FileTypeUnknown
}

// ToolForFileType returns the tool whose most specific input type ft conforms to.
// Ties go to the tool declared first.
func (r *Registry) ToolForFileType(ft domain.FileType) (*domain.ToolSpec, bool) {
	var best *domain.ToolSpec
	bestLen := -1
	for _, spec := range r.order {
		for _, in := range spec.InputTypes {
			if ft.ConformsTo(in) && len(in) > bestLen {
				best, bestLen = spec, len(in)
			}
		}
	}
	return best, best != nil
}

// Tool returns the tool with the given identifier.
func (r *Registry) Tool(id string) (*domain.ToolSpec, bool) {
	spec, ok := r.tools[id]
	return spec, ok
}
