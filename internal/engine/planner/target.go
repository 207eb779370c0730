package planner

import (
	"context"
	"path/filepath"
	"slices"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/zerr"
)

// targetBuilder plans a single target. Tasks are buffered and committed to the plan in
// one batch, so a failing target leaves no tasks behind.
type targetBuilder struct {
	pass    *pass
	ctx     context.Context
	info    domain.BuildTargetInfo
	ref     domain.TargetRef
	project *domain.Project
	target  *domain.Target
	product domain.ProductType
	scope   ports.Scope
	action  domain.Action

	archs    []string
	variants []string
	contexts []*archContext

	tasks     []*domain.Task
	orderings []domain.Ordering
	diags     []domain.Diagnostic
	warned    map[string]bool

	gates targetGates
	// sink collects the completion nodes of tasks emitted by the current phase.
	sink *[]*domain.Node

	phaseNodes   []*domain.Node
	contentNodes []*domain.Node
	headerNodes  []*domain.Node
	swiftHeaders []*domain.Node
	hasSwift     bool

	linkItems   []linkItem
	generated   map[string][]workItem
	ruleScripts map[int]string
	binaries    map[string]string
	embedded    []string
}

func (ps *pass) newTargetBuilder(ctx context.Context, info domain.BuildTargetInfo) (*targetBuilder, error) {
	scope, err := ps.planner.resolver.Resolve(ps.request.Workspace, info.Project, info.Target, info.Parameters)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve build settings")
	}

	b := &targetBuilder{
		pass:        ps,
		ctx:         ctx,
		info:        info,
		ref:         info.Ref(),
		project:     info.Project,
		target:      info.Target,
		product:     info.Target.ProductType,
		scope:       scope,
		action:      domain.Action(scope.Condition(domain.ConditionAction)),
		warned:      make(map[string]bool),
		generated:   make(map[string][]workItem),
		ruleScripts: make(map[int]string),
		binaries:    make(map[string]string),
	}
	if b.action == "" {
		b.action = info.Parameters.Action
	}

	b.archs = uniqueWords(scope.LookupList(domain.SettingArchs))
	b.variants = uniqueWords(scope.LookupList(domain.SettingBuildVariants))
	if len(b.variants) == 0 {
		b.variants = []string{domain.DefaultVariant}
	}
	for _, variant := range b.variants {
		for _, arch := range b.archs {
			b.contexts = append(b.contexts, b.newArchContext(variant, arch))
		}
	}

	b.gates = newTargetGates(ps.plan, b.ref)
	b.hasSwift = b.compilesSwift()
	return b, nil
}

func uniqueWords(words []string) []string {
	var out []string
	for _, w := range words {
		if w != "" && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

// build emits every task of the target into the buffer.
func (b *targetBuilder) build() error {
	if err := b.checkCancelled(); err != nil {
		return err
	}
	if err := b.checkDependencies(); err != nil {
		return err
	}

	entryInputs, err := b.createDirectories()
	if err != nil {
		return err
	}
	entryInputs = append(entryInputs, b.dependencyGates()...)
	entry := b.emitGate(gateEntry, entryInputs)

	if len(b.target.Phases) == 0 && b.product != domain.ProductTypeExternal {
		b.emitGate(gateEnd, []*domain.Node{entry})
		return nil
	}

	begin := b.emitGate(gateBeginCompiling, []*domain.Node{entry})

	b.sink = &b.contentNodes
	if err := b.planExternal(); err != nil {
		return err
	}
	if err := b.planProductContent(); err != nil {
		return err
	}

	phaseEnds, err := b.walkPhases(begin)
	if err != nil {
		return err
	}

	b.emitGate(gateGeneratedHeaders, append([]*domain.Node{begin}, b.headerNodes...))
	if b.hasSwift {
		b.emitGate(gateSwiftHeaders, append([]*domain.Node{begin}, b.swiftHeaders...))
	}

	b.sink = nil
	post, err := b.postprocess(append(slices.Clone(phaseEnds), b.contentNodes...))
	if err != nil {
		return err
	}

	endInputs := []*domain.Node{entry}
	endInputs = append(endInputs, phaseEnds...)
	endInputs = append(endInputs, b.contentNodes...)
	endInputs = append(endInputs, post...)
	b.emitGate(gateEnd, endInputs)
	return nil
}

// walkPhases processes the build phases in declaration order and returns the end
// gates of the phases that produced a gate.
func (b *targetBuilder) walkPhases(begin *domain.Node) ([]*domain.Node, error) {
	lastBinaryPhase := -1
	for i, phase := range b.target.Phases {
		if b.skipPhase(phase) {
			continue
		}
		if phase.Type == domain.PhaseSources || phase.Type == domain.PhaseFrameworks {
			lastBinaryPhase = i
		}
	}

	var ends []*domain.Node
	start := []*domain.Node{begin}
	for i, phase := range b.target.Phases {
		if err := b.checkCancelled(); err != nil {
			return nil, err
		}
		if b.skipPhase(phase) {
			continue
		}

		phaseStart := start
		if phase.Type == domain.PhaseShellScript {
			phaseStart = append([]*domain.Node{begin}, ends...)
		}

		b.phaseNodes = nil
		b.sink = &b.phaseNodes
		if err := b.planPhase(i, phase, phaseStart); err != nil {
			return nil, err
		}
		if i == lastBinaryPhase {
			if err := b.emitSwiftCompiles(); err != nil {
				return nil, err
			}
			if err := b.planBinary(phaseStart); err != nil {
				return nil, err
			}
		}

		end := b.emitGate(phaseGateName(i, phase), append(slices.Clone(phaseStart), b.phaseNodes...))
		ends = append(ends, end)
		if phase.Type == domain.PhaseShellScript {
			start = []*domain.Node{end}
		}
	}
	return ends, nil
}

// skipPhase reports whether a deployment-only phase is skipped for the current action.
func (b *targetBuilder) skipPhase(phase *domain.BuildPhase) bool {
	return phase.DeploymentOnly && !b.action.IsInstall()
}

func (b *targetBuilder) skipFile(phase *domain.BuildPhase, f *domain.BuildFile) bool {
	return (phase.DeploymentOnly || f.DeploymentOnly) && !b.action.IsInstall()
}

func (b *targetBuilder) planPhase(index int, phase *domain.BuildPhase, start []*domain.Node) error {
	switch phase.Type {
	case domain.PhaseSources:
		return b.planSources(phase, start)
	case domain.PhaseFrameworks:
		return b.collectLinkItems(phase)
	case domain.PhaseHeaders:
		return b.planHeaders(index, phase)
	case domain.PhaseResources:
		return b.planResources(index, phase, start)
	case domain.PhaseCopyFiles:
		return b.planCopyFiles(index, phase, start)
	case domain.PhaseShellScript:
		return b.planScriptPhase(index, phase, start)
	case domain.PhaseRez:
		return b.planRez(phase, start)
	default:
		return zerr.With(domain.ErrInvalidPhaseType, "phase_type", string(phase.Type))
	}
}

// checkDependencies verifies that every declared dependency names a target of the workspace.
func (b *targetBuilder) checkDependencies() error {
	for _, dep := range b.target.Dependencies {
		if _, _, ok := b.workspace().Lookup(dep); !ok {
			return zerr.With(domain.ErrUnresolvedDependency, "dependency", dep.String())
		}
	}
	return nil
}

// dependencyGates returns the end gates of the requested targets this target depends on.
func (b *targetBuilder) dependencyGates() []*domain.Node {
	var nodes []*domain.Node
	for _, dep := range b.target.Dependencies {
		if _, ok := b.pass.requested[dep]; ok {
			nodes = append(nodes, endGateNode(b.pass.plan, dep))
		}
	}
	return nodes
}

func (b *targetBuilder) workspace() *domain.Workspace {
	if b.pass.request.Workspace != nil {
		return b.pass.request.Workspace
	}
	return &domain.Workspace{Root: b.project.Dir, Projects: []*domain.Project{b.project}}
}

// compilesSwift reports whether a sources phase declares a Swift file.
func (b *targetBuilder) compilesSwift() bool {
	for _, phase := range b.target.Phases {
		if phase.Type != domain.PhaseSources {
			continue
		}
		for _, f := range phase.Files {
			if f.Path != "" && b.fileType(f).ConformsTo(domain.FileTypeSwift) {
				return true
			}
		}
	}
	return false
}

func (b *targetBuilder) fileType(f *domain.BuildFile) domain.FileType {
	if f.FileType != "" {
		return f.FileType
	}
	return b.pass.planner.registry.FileType(f.Path)
}

// setting returns an expanded setting.
func (b *targetBuilder) setting(key string) string {
	return b.scope.Lookup(key)
}

// sourcePath returns a path-valued setting resolved against the project directory.
func (b *targetBuilder) sourcePath(key string) string {
	return b.scopedSourcePath(b.scope, key)
}

func (b *targetBuilder) scopedSourcePath(scope ports.Scope, key string) string {
	v := scope.Lookup(key)
	if v == "" {
		return ""
	}
	if !filepath.IsAbs(v) {
		v = filepath.Join(b.project.Dir, v)
	}
	return filepath.Clean(v)
}

// productPath joins a folder setting below TARGET_BUILD_DIR.
func (b *targetBuilder) productPath(keys ...string) string {
	parts := []string{b.setting(domain.SettingTargetBuildDir)}
	for _, k := range keys {
		parts = append(parts, b.setting(k))
	}
	return filepath.Clean(filepath.Join(parts...))
}

func (b *targetBuilder) tool(id string) (*domain.ToolSpec, error) {
	t, ok := b.pass.planner.registry.Tool(id)
	if !ok {
		return nil, zerr.With(domain.ErrUnknownTool, "tool", id)
	}
	return t, nil
}

func (b *targetBuilder) checkCancelled() error {
	if err := b.ctx.Err(); err != nil {
		return cancelled(err)
	}
	return nil
}

// emit buffers t and records its completion in the current sink.
func (b *targetBuilder) emit(t *domain.Task) error {
	if err := b.checkCancelled(); err != nil {
		return err
	}
	b.tasks = append(b.tasks, t)
	if b.sink != nil {
		*b.sink = append(*b.sink, completion(t))
	}
	return nil
}

// warn records a warning once per target.
func (b *targetBuilder) warn(format string, args ...any) {
	d := domain.Warningf(b.ref, format, args...)
	if b.warned[d.Message] {
		return
	}
	b.warned[d.Message] = true
	b.diags = append(b.diags, d)
}

// commit adds the buffered tasks, orderings and diagnostics to the plan.
func (b *targetBuilder) commit() error {
	if err := b.pass.plan.AddTasks(b.tasks...); err != nil {
		return err
	}
	for _, o := range b.orderings {
		b.pass.plan.AddOrdering(o.Before, o.After)
	}
	for _, d := range b.diags {
		b.pass.plan.AddDiagnostic(d)
	}
	return nil
}
