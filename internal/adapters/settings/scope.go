package settings

import (
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
)

const maxExpansionDepth = 64

var singleReference = regexp.MustCompile(`^\$[({]([A-Za-z_][A-Za-z0-9_]*)[)}]$`)

// Scope implements ports.Scope over an ordered stack of layers, lowest precedence first.
type Scope struct {
	layers   []*layer
	bindings map[string]string
}

var _ ports.Scope = (*Scope)(nil)

// NewScope builds a scope from tables ordered from lowest to highest precedence.
func NewScope(bindings map[string]string, tables ...domain.SettingTable) *Scope {
	s := &Scope{bindings: maps.Clone(bindings)}
	if s.bindings == nil {
		s.bindings = make(map[string]string)
	}
	for _, table := range tables {
		s.layers = append(s.layers, newLayer(table))
	}
	return s
}

// frame identifies the definition currently being expanded, for $(inherited) and cycle detection.
type frame struct {
	key   string
	layer int
}

// Lookup returns the fully expanded value of key.
func (s *Scope) Lookup(key string) string {
	return strings.TrimSpace(s.resolve(key, len(s.layers), 0, nil))
}

// LookupList returns the expanded value of key split into shell words.
func (s *Scope) LookupList(key string) []string {
	return splitWords(s.Lookup(key))
}

// LookupBool reports whether key expands to YES, TRUE or 1.
func (s *Scope) LookupBool(key string) bool {
	switch strings.ToUpper(s.Lookup(key)) {
	case "YES", "TRUE", "1":
		return true
	default:
		return false
	}
}

// Expand substitutes $(KEY) and ${KEY} references in str.
func (s *Scope) Expand(str string) string {
	return s.expand(str, frame{layer: len(s.layers)}, 0, nil)
}

// ExpandList expands a command-line template.
func (s *Scope) ExpandList(template []string) []string {
	out := make([]string, 0, len(template))
	for _, elem := range template {
		if m := singleReference.FindStringSubmatch(elem); m != nil {
			for _, word := range s.LookupList(m[1]) {
				if word != "" {
					out = append(out, word)
				}
			}
			continue
		}
		if v := s.Expand(elem); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Condition returns the value bound to a condition parameter.
func (s *Scope) Condition(name string) string {
	return s.bindings[name]
}

// WithCondition returns a scope with an additional condition binding.
func (s *Scope) WithCondition(name, value string) ports.Scope {
	bindings := maps.Clone(s.bindings)
	bindings[name] = value
	return &Scope{layers: s.layers, bindings: bindings}
}

// WithOverrides returns a scope with a new highest-precedence layer.
func (s *Scope) WithOverrides(overrides domain.SettingTable) ports.Scope {
	if len(overrides) == 0 {
		return s
	}
	layers := make([]*layer, len(s.layers), len(s.layers)+1)
	copy(layers, s.layers)
	layers = append(layers, newLayer(overrides))
	return &Scope{layers: layers, bindings: s.bindings}
}

func (s *Scope) resolve(key string, below, depth int, stack []frame) string {
	if depth > maxExpansionDepth {
		return ""
	}
	for i := below - 1; i >= 0; i-- {
		v, ok := s.layers[i].lookup(key, s.bindings)
		if !ok {
			continue
		}
		cur := frame{key: key, layer: i}
		if slices.Contains(stack, cur) {
			return ""
		}
		return s.expand(v, cur, depth+1, append(stack[:len(stack):len(stack)], cur))
	}
	return ""
}

func (s *Scope) expand(str string, cur frame, depth int, stack []frame) string {
	if !strings.Contains(str, "$") {
		return str
	}

	var b strings.Builder
	for i := 0; i < len(str); {
		c := str[i]
		if c != '$' || i+1 >= len(str) {
			b.WriteByte(c)
			i++
			continue
		}

		var closer byte
		switch str[i+1] {
		case '$':
			b.WriteByte('$')
			i += 2
			continue
		case '(':
			closer = ')'
		case '{':
			closer = '}'
		default:
			b.WriteByte(c)
			i++
			continue
		}

		end := matchClose(str, i+2, str[i+1], closer)
		if end < 0 {
			b.WriteString(str[i:])
			break
		}
		inner := s.expand(str[i+2:end], cur, depth+1, stack)
		b.WriteString(s.reference(inner, cur, depth, stack))
		i = end + 1
	}
	return b.String()
}

func matchClose(str string, start int, opener, closer byte) int {
	nesting := 0
	for j := start; j < len(str); j++ {
		switch str[j] {
		case opener:
			nesting++
		case closer:
			if nesting == 0 {
				return j
			}
			nesting--
		}
	}
	return -1
}

func (s *Scope) reference(inner string, cur frame, depth int, stack []frame) string {
	parts := strings.Split(inner, ":")
	name := strings.TrimSpace(parts[0])

	var v string
	if name == "inherited" {
		v = s.resolve(cur.key, cur.layer, depth+1, stack)
	} else {
		v = s.resolve(name, len(s.layers), depth+1, stack)
	}

	for _, op := range parts[1:] {
		v = applyOperator(op, v)
	}
	return v
}

func applyOperator(op, v string) string {
	if def, ok := strings.CutPrefix(op, "default="); ok {
		if v == "" {
			return def
		}
		return v
	}
	switch op {
	case "base":
		if v == "" {
			return ""
		}
		base := filepath.Base(v)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case "dir":
		if v == "" {
			return ""
		}
		return filepath.Dir(v)
	case "file":
		if v == "" {
			return ""
		}
		return filepath.Base(v)
	case "suffix":
		return filepath.Ext(v)
	case "upper":
		return strings.ToUpper(v)
	case "lower":
		return strings.ToLower(v)
	case "identifier":
		return identifier(v)
	case "quote":
		return shellquote.Join(v)
	case "standardizepath":
		if v == "" {
			return ""
		}
		return filepath.Clean(v)
	default:
		return v
	}
}

// identifier maps v to a C identifier: invalid characters become underscores and a
// leading digit is prefixed with one.
func identifier(v string) string {
	if v == "" {
		return ""
	}
	out := []rune(v)
	for i, r := range out {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			out[i] = '_'
		}
	}
	if unicode.IsDigit(out[0]) {
		return "_" + string(out)
	}
	return string(out)
}

func splitWords(v string) []string {
	if v == "" {
		return nil
	}
	words, err := shellquote.Split(v)
	if err != nil {
		return strings.Fields(v)
	}
	return words
}
