package domain

import (
	"path/filepath"

	"go.trai.ch/zerr"
)

// PhaseType selects default tool selection and ordering for a build phase.
type PhaseType string

const (
	// PhaseSources compiles source files and links the product binary.
	PhaseSources PhaseType = "sources"
	// PhaseHeaders copies public and private headers into the product.
	PhaseHeaders PhaseType = "headers"
	// PhaseResources copies or compiles resources into the product.
	PhaseResources PhaseType = "resources"
	// PhaseFrameworks supplies libraries and frameworks to the linker.
	PhaseFrameworks PhaseType = "frameworks"
	// PhaseCopyFiles copies files to an explicit destination.
	PhaseCopyFiles PhaseType = "copy-files"
	// PhaseShellScript runs a user script.
	PhaseShellScript PhaseType = "shell-script"
	// PhaseRez compiles Carbon resource files.
	PhaseRez PhaseType = "rez"
)

// ParsePhaseType validates s as a phase type.
func ParsePhaseType(s string) (PhaseType, error) {
	switch pt := PhaseType(s); pt {
	case PhaseSources, PhaseHeaders, PhaseResources, PhaseFrameworks, PhaseCopyFiles, PhaseShellScript, PhaseRez:
		return pt, nil
	default:
		return "", zerr.With(ErrInvalidPhaseType, "phase_type", s)
	}
}

// CopyDestination is the folder a copy-files phase copies into.
type CopyDestination string

const (
	// CopyToAbsolutePath copies to the subpath as an absolute path.
	CopyToAbsolutePath CopyDestination = "absolute"
	// CopyToWrapper copies into the product wrapper root.
	CopyToWrapper CopyDestination = "wrapper"
	// CopyToExecutables copies next to the product executable.
	CopyToExecutables CopyDestination = "executables"
	// CopyToResources copies into the product resources folder.
	CopyToResources CopyDestination = "resources"
	// CopyToFrameworks copies into the product frameworks folder.
	CopyToFrameworks CopyDestination = "frameworks"
	// CopyToPlugIns copies into the product plug-ins folder.
	CopyToPlugIns CopyDestination = "plugins"
	// CopyToSharedSupport copies into the product shared support folder.
	CopyToSharedSupport CopyDestination = "shared-support"
	// CopyToProducts copies into the built products directory.
	CopyToProducts CopyDestination = "products"
)

// ParseCopyDestination validates s as a copy destination. An empty value selects the resources folder.
func ParseCopyDestination(s string) (CopyDestination, error) {
	if s == "" {
		return CopyToResources, nil
	}
	switch d := CopyDestination(s); d {
	case CopyToAbsolutePath, CopyToWrapper, CopyToExecutables, CopyToResources,
		CopyToFrameworks, CopyToPlugIns, CopyToSharedSupport, CopyToProducts:
		return d, nil
	default:
		return "", zerr.With(ErrInvalidCopyDestination, "destination", s)
	}
}

// HeaderVisibility controls where a header in a headers phase is installed.
type HeaderVisibility string

const (
	// HeaderProject headers are not copied.
	HeaderProject HeaderVisibility = "project"
	// HeaderPublic headers are copied to the public headers folder.
	HeaderPublic HeaderVisibility = "public"
	// HeaderPrivate headers are copied to the private headers folder.
	HeaderPrivate HeaderVisibility = "private"
)

// BuildFile references a file or link item processed by a phase.
type BuildFile struct {
	// Path is absolute once loaded. Empty for named link items.
	Path string
	// LinkName is a library or framework linked by name, e.g. "z" or "Cocoa.framework".
	LinkName string
	// FileType overrides the type inferred from the extension.
	FileType FileType
	// CompilerFlags are appended to the compile command line.
	CompilerFlags []string
	// Settings are per-file overrides layered on top of the target scope.
	Settings       SettingTable
	WeakLink       bool
	CodeSignOnCopy bool
	Visibility     HeaderVisibility
	DeploymentOnly bool
	// ProductOf names the target whose product this file is. Such files are not checked on disk.
	ProductOf *TargetRef
}

// Name returns the display name of the file.
func (f *BuildFile) Name() string {
	if f.Path == "" {
		return f.LinkName
	}
	return filepath.Base(f.Path)
}

// BuildPhase is a typed, ordered list of build files.
type BuildPhase struct {
	Type           PhaseType
	Name           string
	Files          []*BuildFile
	DeploymentOnly bool

	// CopyFiles
	Destination CopyDestination
	Subpath     string

	// ShellScript
	Shell           string
	Script          string
	InputPaths      []string
	OutputPaths     []string
	AlwaysOutOfDate bool
}

// DisplayName returns the phase name, falling back to its type.
func (p *BuildPhase) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.Type)
}
