package settings

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/draft/internal/core/domain"
)

// condition restricts an assignment to contexts whose binding for name matches pattern.
type condition struct {
	name    string
	pattern string
}

type assignment struct {
	conds []condition
	value string
}

// layer is one level of the settings stack, e.g. the project or a configuration.
type layer struct {
	values map[string][]assignment
}

func newLayer(table domain.SettingTable) *layer {
	l := &layer{values: make(map[string][]assignment, len(table))}

	raws := make([]string, 0, len(table))
	for raw := range table {
		raws = append(raws, raw)
	}
	slices.Sort(raws)

	for _, raw := range raws {
		key, conds := parseKey(raw)
		if key == "" {
			continue
		}
		l.values[key] = append(l.values[key], assignment{conds: conds, value: table[raw]})
	}
	return l
}

// parseKey splits "KEY[arch=x86_64][variant=debug]" or "KEY[arch=x86_64,variant=debug]"
// into the key and its conditions.
func parseKey(raw string) (string, []condition) {
	key, rest, found := strings.Cut(raw, "[")
	key = strings.TrimSpace(key)
	if !found {
		return key, nil
	}

	var conds []condition
	for _, group := range strings.Split("["+rest, "[") {
		group = strings.TrimSuffix(strings.TrimSpace(group), "]")
		if group == "" {
			continue
		}
		for _, part := range strings.Split(group, ",") {
			name, pattern, ok := strings.Cut(part, "=")
			if !ok {
				continue
			}
			conds = append(conds, condition{name: strings.TrimSpace(name), pattern: strings.TrimSpace(pattern)})
		}
	}
	return key, conds
}

// lookup returns the most specific assignment of key whose conditions all match bindings.
// Among equally specific assignments the last one in key order wins.
func (l *layer) lookup(key string, bindings map[string]string) (string, bool) {
	best := -1
	var value string
	for _, a := range l.values[key] {
		if !matches(a.conds, bindings) {
			continue
		}
		if len(a.conds) >= best {
			best = len(a.conds)
			value = a.value
		}
	}
	return value, best >= 0
}

func matches(conds []condition, bindings map[string]string) bool {
	for _, c := range conds {
		bound, ok := bindings[c.name]
		if !ok {
			return false
		}
		if ok, _ := doublestar.Match(c.pattern, bound); !ok {
			return false
		}
	}
	return true
}
