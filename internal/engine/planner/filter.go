package planner

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
)

// sourceFilter applies EXCLUDED_SOURCE_FILE_NAMES and INCLUDED_SOURCE_FILE_NAMES as
// resolved for one variant and architecture.
type sourceFilter struct {
	excluded []string
	included []string
}

func newSourceFilter(scope ports.Scope) sourceFilter {
	return sourceFilter{
		excluded: scope.LookupList(domain.SettingExcludedSourceFileNames),
		included: scope.LookupList(domain.SettingIncludedSourceFileNames),
	}
}

// skips reports whether path is excluded and not explicitly included again.
func (f sourceFilter) skips(path string) bool {
	return matchesAny(f.excluded, path) && !matchesAny(f.included, path)
}

// matchesAny matches patterns against the file name and the full path.
func matchesAny(patterns []string, path string) bool {
	name := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
