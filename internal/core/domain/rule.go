package domain

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// BuildRule maps input files to a producing tool and its outputs.
type BuildRule struct {
	Name string
	// FilePatterns are globs matched against the input file name.
	FilePatterns []string
	// FileType matches inputs of this type when no pattern is given.
	FileType FileType
	// Script is a shell script run for each matched input. Ignored when ToolID is set.
	Script string
	// ToolID names a registry tool used instead of a script.
	ToolID string
	// Outputs are path templates expanded per input.
	Outputs []string
	// InputFiles are extra inputs expanded per input.
	InputFiles []string
	// OutputFileType overrides the type inferred from the first output's extension.
	OutputFileType FileType
	// RunOncePerArch runs the rule once for every architecture instead of once per file.
	RunOncePerArch bool
}

// Matches reports whether the rule applies to a file with the given path and type.
func (r *BuildRule) Matches(path string, ft FileType) bool {
	if len(r.FilePatterns) > 0 {
		name := filepath.Base(path)
		for _, pattern := range r.FilePatterns {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}
	return r.FileType != "" && ft.ConformsTo(r.FileType)
}

// DisplayName returns the rule name, falling back to its first pattern or type.
func (r *BuildRule) DisplayName() string {
	switch {
	case r.Name != "":
		return r.Name
	case len(r.FilePatterns) > 0:
		return r.FilePatterns[0]
	default:
		return string(r.FileType)
	}
}
