package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// objectNames returns the object file stem for every source path. Sources whose stems
// collide case-insensitively with another source, or with a stem already in taken,
// get a suffix derived from their full path, so the result does not depend on the
// order of paths. Assigned stems are added to taken.
func objectNames(paths []string, taken map[string]bool) []string {
	distinct := make(map[string]map[string]bool)
	for _, p := range paths {
		key := strings.ToLower(stem(p))
		if distinct[key] == nil {
			distinct[key] = make(map[string]bool)
		}
		distinct[key][filepath.Clean(p)] = true
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		name := stem(p)
		key := strings.ToLower(name)
		if len(distinct[key]) > 1 || taken[key] {
			name += "-" + pathSuffix(p)
		}
		names[i] = name
	}
	for _, name := range names {
		taken[strings.ToLower(name)] = true
	}
	return names
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// pathSuffix is the first eight hex digits of the xxhash of the cleaned path.
func pathSuffix(path string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(filepath.Clean(path)))[:8]
}
