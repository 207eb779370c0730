package registry

import (
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/zerr"
)

type registryDTO struct {
	FileTypes map[string]string `yaml:"fileTypes"`
	Tools     []toolDTO         `yaml:"tools"`
}

type toolDTO struct {
	ID              string            `yaml:"id"`
	RuleType        string            `yaml:"ruleType"`
	Kind            string            `yaml:"kind"`
	InputTypes      []string          `yaml:"inputTypes"`
	Command         []string          `yaml:"command"`
	OutputExtension string            `yaml:"outputExtension"`
	OutputFileType  string            `yaml:"outputFileType"`
	Dialects        map[string]string `yaml:"dialects"`
	DependencyInfo  bool              `yaml:"dependencyInfo"`
	Module          bool              `yaml:"module"`
	GeneratedHeader string            `yaml:"generatedHeader"`
	Env             map[string]string `yaml:"env"`
}

func (t *toolDTO) toDomain() (*domain.ToolSpec, error) {
	if t.ID == "" || t.RuleType == "" {
		return nil, zerr.With(zerr.With(domain.ErrToolSpecParseFailed, "tool", t.ID), "reason", "missing id or rule type")
	}

	kind := domain.ToolKind(t.Kind)
	switch kind {
	case domain.ToolKindCompiler, domain.ToolKindGenerator, domain.ToolKindResource, domain.ToolKindUtility:
	default:
		return nil, zerr.With(zerr.With(domain.ErrToolSpecParseFailed, "tool", t.ID), "kind", t.Kind)
	}

	spec := &domain.ToolSpec{
		ID:              t.ID,
		RuleType:        t.RuleType,
		Kind:            kind,
		Command:         t.Command,
		OutputExtension: t.OutputExtension,
		OutputFileType:  domain.FileType(t.OutputFileType),
		DependencyInfo:  t.DependencyInfo,
		Module:          t.Module,
		GeneratedHeader: t.GeneratedHeader,
		Env:             t.Env,
	}
	for _, in := range t.InputTypes {
		spec.InputTypes = append(spec.InputTypes, domain.FileType(in))
	}
	if len(t.Dialects) > 0 {
		spec.Dialects = make(map[domain.FileType]string, len(t.Dialects))
		for ft, dialect := range t.Dialects {
			spec.Dialects[domain.FileType(ft)] = dialect
		}
	}
	return spec, nil
}
