package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Action is the top-level build action.
type Action string

const (
	// ActionBuild builds products into the build directory.
	ActionBuild Action = "build"
	// ActionInstall builds and installs products into the destination root with deployment postprocessing.
	ActionInstall Action = "install"
)

// ParseAction validates s as a build action. An empty value selects ActionBuild.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case "":
		return ActionBuild, nil
	case ActionBuild, ActionInstall:
		return a, nil
	default:
		return "", zerr.With(ErrInvalidAction, "action", s)
	}
}

// IsInstall reports whether deployment postprocessing applies.
func (a Action) IsInstall() bool {
	return a == ActionInstall
}

// Parameters are the resolved top-level inputs of a build.
type Parameters struct {
	Configuration string
	Action        Action
	Platform      string
	// Archs overrides ARCHS when non-empty.
	Archs []string
	// Variants overrides BUILD_VARIANTS when non-empty.
	Variants []string
	// ArenaRoot overrides the root under which SYMROOT, OBJROOT and DSTROOT are derived.
	ArenaRoot string
	// Overrides are command-line settings with the highest precedence.
	Overrides SettingTable
}

// Clone returns a deep copy of p.
func (p Parameters) Clone() Parameters {
	out := p
	out.Archs = slices.Clone(p.Archs)
	out.Variants = slices.Clone(p.Variants)
	if p.Overrides != nil {
		out.Overrides = make(SettingTable, len(p.Overrides))
		for k, v := range p.Overrides {
			out.Overrides[k] = v
		}
	}
	return out
}

// BuildTargetInfo is one target of a build request with its parameters.
type BuildTargetInfo struct {
	Project    *Project
	Target     *Target
	Parameters Parameters
}

// Ref returns the reference naming this target.
func (i BuildTargetInfo) Ref() TargetRef {
	return TargetRef{Project: i.Project.Name, Name: i.Target.Name}
}

// BuildRequest is the input of a single planning pass.
type BuildRequest struct {
	Workspace *Workspace
	Targets   []BuildTargetInfo
	// ContinueAfterErrors keeps planning the remaining targets after a target fails.
	ContinueAfterErrors bool
}
