package ports

import "go.trai.ch/draft/internal/core/domain"

// Scope is an immutable view of build settings for one context. Narrowing returns a
// new Scope and never changes the receiver.
//
//go:generate mockgen -source=scope.go -destination=mocks/mock_scope.go -package=mocks
type Scope interface {
	// Lookup returns the fully expanded value of key.
	Lookup(key string) string
	// LookupList returns the expanded value of key split into shell words.
	LookupList(key string) []string
	// LookupBool reports whether key expands to YES, TRUE or 1.
	LookupBool(key string) bool
	// Expand substitutes $(KEY) and ${KEY} references in s.
	Expand(s string) string
	// ExpandList expands a command-line template. An element that is a single
	// reference to a list-valued setting expands to its words; empty words are dropped.
	ExpandList(template []string) []string
	// Condition returns the value bound to a condition parameter such as "arch".
	Condition(name string) string
	// WithCondition returns a scope with an additional condition binding.
	WithCondition(name, value string) Scope
	// WithOverrides returns a scope with a new highest-precedence layer.
	WithOverrides(overrides domain.SettingTable) Scope
}

// ScopeResolver builds the scope of a target for a set of build parameters.
type ScopeResolver interface {
	Resolve(workspace *domain.Workspace, project *domain.Project, target *domain.Target,
		params domain.Parameters) (Scope, error)
}
