package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// SettingTable is one layer of raw build settings.
// Keys may carry conditions, e.g. "OTHER_CFLAGS[arch=arm64]".
type SettingTable map[string]string

// Workspace is the fully loaded project model handed to the planner.
type Workspace struct {
	Root     string
	Settings SettingTable
	Projects []*Project
}

// Project groups targets that share a source root and project-level settings.
type Project struct {
	Name           string
	Dir            string
	Settings       SettingTable
	Configurations map[string]SettingTable
	Targets        []*Target
}

// Target returns the target with the given name.
func (p *Project) Target(name string) (*Target, bool) {
	for _, t := range p.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TargetRef names a target across projects.
type TargetRef struct {
	Project string
	Name    string
}

// String renders the reference as "Project/Name".
func (r TargetRef) String() string {
	if r.Project == "" {
		return r.Name
	}
	return r.Project + "/" + r.Name
}

// ParseTargetRef parses "Name" or "Project/Name", defaulting the project to defaultProject.
func ParseTargetRef(s, defaultProject string) TargetRef {
	if project, name, ok := strings.Cut(s, "/"); ok {
		return TargetRef{Project: project, Name: name}
	}
	return TargetRef{Project: defaultProject, Name: s}
}

// ExternalTool describes the build tool invoked by an external target.
type ExternalTool struct {
	Tool       string
	Args       string
	WorkingDir string
	PassEnv    bool
}

// Target is a named build unit. It is immutable once planning starts.
type Target struct {
	Name           string
	ProductType    ProductType
	Phases         []*BuildPhase
	Rules          []*BuildRule
	Settings       SettingTable
	Configurations map[string]SettingTable
	Dependencies   []TargetRef
	External       *ExternalTool
}

// Lookup resolves a target reference.
func (w *Workspace) Lookup(ref TargetRef) (*Project, *Target, bool) {
	for _, p := range w.Projects {
		if p.Name != ref.Project {
			continue
		}
		if t, ok := p.Target(ref.Name); ok {
			return p, t, true
		}
	}
	return nil, nil, false
}

// Project returns the project with the given name.
func (w *Workspace) Project(name string) (*Project, bool) {
	for _, p := range w.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// AllTargets returns every target reference in declaration order.
func (w *Workspace) AllTargets() []TargetRef {
	var refs []TargetRef
	for _, p := range w.Projects {
		for _, t := range p.Targets {
			refs = append(refs, TargetRef{Project: p.Name, Name: t.Name})
		}
	}
	return refs
}

// DependencyClosure returns the requested targets plus everything they depend on,
// ordered so that every target appears after its dependencies.
func (w *Workspace) DependencyClosure(roots []TargetRef) ([]TargetRef, error) {
	order := make([]TargetRef, 0, len(roots))
	state := make(map[TargetRef]int) // 0: unvisited, 1: visiting, 2: visited
	var path []TargetRef

	var visit func(ref TargetRef) error
	visit = func(ref TargetRef) error {
		_, target, ok := w.Lookup(ref)
		if !ok {
			return zerr.With(ErrTargetNotFound, "target", ref.String())
		}
		state[ref] = 1
		path = append(path, ref)

		for _, dep := range target.Dependencies {
			switch state[dep] {
			case 1:
				return buildCycleError(path, dep)
			case 0:
				if _, _, ok := w.Lookup(dep); !ok {
					return zerr.With(zerr.With(ErrUnresolvedDependency, "target", ref.String()), "dependency", dep.String())
				}
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[ref] = 2
		path = path[:len(path)-1]
		order = append(order, ref)
		return nil
	}

	for _, ref := range roots {
		if state[ref] == 0 {
			if err := visit(ref); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

func buildCycleError(path []TargetRef, dep TargetRef) error {
	start := slices.Index(path, dep)
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, len(path)-start+1)
	for _, ref := range path[start:] {
		parts = append(parts, ref.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}
