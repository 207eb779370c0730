package domain

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Ordering is a one-directional must-precede edge between two tasks that is not
// expressed through their inputs and outputs.
type Ordering struct {
	Before *Task
	After  *Task
}

// BuildPlan is the task and gate graph of one build request.
// Nodes and identity tuples are shared by every target planned in parallel, so all
// mutation goes through a single mutex. The plan is read-only after Finalize.
type BuildPlan struct {
	mu          sync.RWMutex
	nodes       map[nodeKey]*Node
	identities  map[string]*Task
	tasks       []*Task
	targets     []TargetRef
	targetIndex map[TargetRef]int
	targetDeps  map[TargetRef][]TargetRef
	orderings   []Ordering
	diagnostics []Diagnostic
	producers   map[*Node]*Task
	finalized   bool
	seq         int
}

// NewBuildPlan creates an empty plan.
func NewBuildPlan() *BuildPlan {
	return &BuildPlan{
		nodes:       make(map[nodeKey]*Node),
		identities:  make(map[string]*Task),
		targetIndex: make(map[TargetRef]int),
		targetDeps:  make(map[TargetRef][]TargetRef),
	}
}

// PathNode returns the interned node for an absolute path.
func (p *BuildPlan) PathNode(path string) *Node {
	return p.node(NodeKindPath, filepath.Clean(path))
}

// VirtualNode returns the interned virtual node with the given name.
func (p *BuildPlan) VirtualNode(name string) *Node {
	return p.node(NodeKindVirtual, name)
}

func (p *BuildPlan) node(kind NodeKind, name string) *Node {
	key := nodeKey{kind: kind, name: NewInternedString(name)}

	p.mu.RLock()
	n, ok := p.nodes[key]
	p.mu.RUnlock()
	if ok {
		return n
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := p.nodes[key]; ok {
		return n
	}
	n = &Node{kind: kind, name: key.name}
	p.nodes[key] = n
	return n
}

// LookupNode returns an already interned node.
func (p *BuildPlan) LookupNode(kind NodeKind, name string) (*Node, bool) {
	if kind == NodeKindPath {
		name = filepath.Clean(name)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.nodes[nodeKey{kind: kind, name: NewInternedString(name)}]
	return n, ok
}

// RegisterTarget records a target of the request, its position and its dependencies.
func (p *BuildPlan) RegisterTarget(ref TargetRef, deps []TargetRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.targetIndex[ref]; !ok {
		p.targetIndex[ref] = len(p.targets)
		p.targets = append(p.targets, ref)
	}
	p.targetDeps[ref] = slices.Clone(deps)
}

// AddTasks adds every task of a batch, or none of them when an identity tuple is
// already present in the plan or repeated within the batch.
func (p *BuildPlan) AddTasks(tasks ...*Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return ErrPlanFinalized
	}

	batch := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		key := t.Identity()
		existing, ok := p.identities[key]
		if !ok {
			existing, ok = batch[key]
		}
		if ok {
			return duplicateTaskError(existing, t)
		}
		batch[key] = t
	}

	for _, t := range tasks {
		p.seq++
		t.seq = p.seq
		p.identities[t.Identity()] = t
		p.tasks = append(p.tasks, t)
	}
	return nil
}

// AddSharedTask inserts a plan-global task, or returns the task already registered
// under the same identity tuple.
func (p *BuildPlan) AddSharedTask(t *Task) (*Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return nil, ErrPlanFinalized
	}
	if existing, ok := p.identities[t.Identity()]; ok {
		return existing, nil
	}
	p.seq++
	t.seq = p.seq
	p.identities[t.Identity()] = t
	p.tasks = append(p.tasks, t)
	return t, nil
}

func duplicateTaskError(a, b *Task) error {
	first, second := a, b
	if targetLess(second.Target, first.Target) {
		first, second = second, first
	}
	err := zerr.With(ErrDuplicateTask, "identity", b.String())
	err = zerr.With(err, "first_target", first.Target.Name)
	err = zerr.With(err, "first_project", first.Target.Project)
	err = zerr.With(err, "first_rule", first.RuleType())
	err = zerr.With(err, "second_target", second.Target.Name)
	err = zerr.With(err, "second_project", second.Target.Project)
	return zerr.With(err, "second_rule", second.RuleType())
}

func targetLess(a, b TargetRef) bool {
	return cmp.Or(strings.Compare(a.Project, b.Project), strings.Compare(a.Name, b.Name)) < 0
}

// AddOrdering records that before must complete before after starts.
func (p *BuildPlan) AddOrdering(before, after *Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orderings = append(p.orderings, Ordering{Before: before, After: after})
}

// AddDiagnostic records a diagnostic.
func (p *BuildPlan) AddDiagnostic(d Diagnostic) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.diagnostics = append(p.diagnostics, d)
}

// Finalize orders the plan deterministically, indexes producers and verifies that
// producer edges and must-precede edges form no cycle. The plan is read-only afterwards.
func (p *BuildPlan) Finalize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return nil
	}

	slices.SortStableFunc(p.tasks, p.compareTasks)
	slices.SortStableFunc(p.diagnostics, p.compareDiagnostics)

	p.producers = make(map[*Node]*Task)
	for _, t := range p.tasks {
		for _, out := range t.Outputs {
			if _, ok := p.producers[out]; !ok {
				p.producers[out] = t
			}
		}
	}

	if err := p.checkAcyclic(); err != nil {
		return err
	}
	p.finalized = true
	return nil
}

func (p *BuildPlan) compareTasks(a, b *Task) int {
	ga, gb := a.IsGlobal(), b.IsGlobal()
	switch {
	case ga && gb:
		return strings.Compare(a.Identity(), b.Identity())
	case ga:
		return -1
	case gb:
		return 1
	}
	if c := cmp.Compare(p.targetIndex[a.Target], p.targetIndex[b.Target]); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

func (p *BuildPlan) compareDiagnostics(a, b Diagnostic) int {
	ia, oka := p.targetIndex[a.Target]
	ib, okb := p.targetIndex[b.Target]
	if !oka {
		ia = -1
	}
	if !okb {
		ib = -1
	}
	return cmp.Compare(ia, ib)
}

func (p *BuildPlan) checkAcyclic() error {
	succ := make(map[*Task][]*Task, len(p.tasks))
	for _, t := range p.tasks {
		for _, in := range t.Inputs {
			if producer, ok := p.producers[in]; ok && producer != t {
				succ[producer] = append(succ[producer], t)
			}
		}
	}
	for _, o := range p.orderings {
		succ[o.Before] = append(succ[o.Before], o.After)
	}

	state := make(map[*Task]int, len(p.tasks)) // 0: unvisited, 1: visiting, 2: visited
	var path []*Task

	var visit func(t *Task) error
	visit = func(t *Task) error {
		state[t] = 1
		path = append(path, t)
		for _, next := range succ[t] {
			switch state[next] {
			case 1:
				return taskCycleError(path, next)
			case 0:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		state[t] = 2
		path = path[:len(path)-1]
		return nil
	}

	for _, t := range p.tasks {
		if state[t] == 0 {
			if err := visit(t); err != nil {
				return err
			}
		}
	}
	return nil
}

func taskCycleError(path []*Task, next *Task) error {
	start := slices.Index(path, next)
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, len(path)-start+1)
	for _, t := range path[start:] {
		parts = append(parts, t.String())
	}
	parts = append(parts, next.String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// Tasks returns every task in plan order.
func (p *BuildPlan) Tasks() []*Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.tasks)
}

// TasksByRuleType returns the tasks whose identity tuple starts with ruleType.
func (p *BuildPlan) TasksByRuleType(ruleType string) []*Task {
	return p.filter(func(t *Task) bool { return t.RuleType() == ruleType })
}

// TasksForTarget returns the tasks owned by target.
func (p *BuildPlan) TasksForTarget(target TargetRef) []*Task {
	return p.filter(func(t *Task) bool { return t.Target == target })
}

func (p *BuildPlan) filter(keep func(*Task) bool) []*Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*Task
	for _, t := range p.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// TaskByIdentity returns the task registered under the identity tuple.
func (p *BuildPlan) TaskByIdentity(ruleInfo ...string) (*Task, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.identities[identityKey(ruleInfo)]
	return t, ok
}

// Producer returns the task producing node. It is only populated after Finalize.
func (p *BuildPlan) Producer(n *Node) (*Task, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.producers[n]
	return t, ok
}

// Targets returns the registered targets in request order.
func (p *BuildPlan) Targets() []TargetRef {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.targets)
}

// TargetDependencies returns the targets target depends on.
func (p *BuildPlan) TargetDependencies(target TargetRef) []TargetRef {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.targetDeps[target])
}

// Orderings returns the must-precede edges.
func (p *BuildPlan) Orderings() []Ordering {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.orderings)
}

// Diagnostics returns every recorded diagnostic in target order.
func (p *BuildPlan) Diagnostics() []Diagnostic {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := slices.Clone(p.diagnostics)
	slices.SortStableFunc(out, p.compareDiagnostics)
	return out
}

// HasErrors reports whether an error diagnostic was recorded.
func (p *BuildPlan) HasErrors() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.ContainsFunc(p.diagnostics, func(d Diagnostic) bool {
		return d.Severity == SeverityError
	})
}
