package planner

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
)

// archContext is one (variant, architecture) pair of a target.
type archContext struct {
	variant string
	arch    string
	scope   ports.Scope
	filter  sourceFilter
	// objDir is $(OBJECT_FILE_DIR)-<variant>/<arch>.
	objDir string

	// units are the compile units of the sources phase being planned.
	units []compileUnit
	swift []compileUnit
	// swiftUnits collects the Swift sources of every sources phase; they share one
	// module compilation emitted with the binary.
	swiftUnits   []compileUnit
	swiftObjects []string
	swiftAfter   []*domain.Node
	// objects are the object files of every planned sources phase, in link order.
	objects   []string
	linkables []string
	taken     map[string]bool
}

// compileUnit is a source file waiting for its compile task.
type compileUnit struct {
	path     string
	fileType domain.FileType
	file     *domain.BuildFile
	tool     *domain.ToolSpec
}

func (b *targetBuilder) newArchContext(variant, arch string) *archContext {
	scope := b.scope.
		WithCondition(domain.ConditionVariant, variant).
		WithCondition(domain.ConditionArch, arch).
		WithOverrides(domain.SettingTable{
			domain.VarCurrentVariant: variant,
			domain.VarCurrentArch:    arch,
		})
	return &archContext{
		variant: variant,
		arch:    arch,
		scope:   scope,
		filter:  newSourceFilter(scope),
		objDir:  filepath.Join(scope.Lookup(domain.SettingObjectFileDir)+"-"+variant, arch),
		taken:   make(map[string]bool),
	}
}

// planSources runs the work list of a sources phase for every context and emits the
// compile tasks of the phase.
func (b *targetBuilder) planSources(phase *domain.BuildPhase, start []*domain.Node) error {
	files := b.declaredFiles(phase)
	for _, c := range b.contexts {
		var wl worklist
		for _, f := range files {
			if c.filter.skips(f.Path) {
				continue
			}
			wl.push(workItem{path: f.Path, fileType: b.fileType(f), file: f})
		}
		for {
			if err := b.checkCancelled(); err != nil {
				return err
			}
			item, ok := wl.pop()
			if !ok {
				break
			}
			out, err := b.process(c, item, start)
			if err != nil {
				return err
			}
			wl.push(out...)
		}

		if err := b.emitCompiles(c, start); err != nil {
			return err
		}
	}
	return nil
}

// declaredFiles returns the path-based files of a phase with duplicates and
// deployment-only files removed.
func (b *targetBuilder) declaredFiles(phase *domain.BuildPhase) []*domain.BuildFile {
	seen := make(map[string]bool)
	var files []*domain.BuildFile
	for _, f := range phase.Files {
		if f.Path == "" || b.skipFile(phase, f) {
			continue
		}
		if seen[f.Path] {
			b.warn("skipping duplicate build file in %s phase: %s", phase.DisplayName(), f.Path)
			continue
		}
		seen[f.Path] = true
		files = append(files, f)
	}
	return files
}

// process handles one work item and returns the generated files to process next.
func (b *targetBuilder) process(c *archContext, item workItem, start []*domain.Node) ([]workItem, error) {
	ft := item.fileType
	switch {
	case ft.IsHeader():
		return nil, nil
	case ft.IsLinkable():
		c.linkables = append(c.linkables, item.path)
		return nil, nil
	}

	p, ok, err := b.match(item.path, ft)
	if err != nil {
		return nil, err
	}
	if !ok || item.producedBy(p) {
		b.warnNoRule(item, c)
		return nil, nil
	}

	switch {
	case p.tool == nil:
		return b.runRuleScript(c, item, p, start)
	case p.tool.Kind == domain.ToolKindGenerator:
		return b.runGenerator(c, item, p, start)
	case p.tool.Kind == domain.ToolKindCompiler && p.tool.OutputFileType.ConformsTo(domain.FileTypeObject):
		unit := compileUnit{path: item.path, fileType: ft, file: item.file, tool: p.tool}
		if p.tool.Module {
			c.swift = append(c.swift, unit)
		} else {
			c.units = append(c.units, unit)
		}
		return nil, nil
	default:
		b.warnNoRule(item, c)
		return nil, nil
	}
}

func (b *targetBuilder) warnNoRule(item workItem, c *archContext) {
	b.warn("no rule to process file '%s' of type '%s' for architecture '%s'", item.path, item.fileType, c.arch)
}

// emitCompiles names the object files of the context's pending units and emits one
// compile task per C-family unit. Swift units are deferred to emitSwiftCompiles.
func (b *targetBuilder) emitCompiles(c *archContext, start []*domain.Node) error {
	units := append(c.units, c.swift...)
	c.units, c.swift = nil, nil
	if len(units) == 0 {
		return nil
	}

	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.path
	}
	names := objectNames(paths, c.taken)

	for i, u := range units {
		object := filepath.Join(c.objDir, names[i]+u.tool.OutputExtension)
		c.objects = append(c.objects, object)
		if u.tool.Module {
			c.swiftUnits = append(c.swiftUnits, u)
			c.swiftObjects = append(c.swiftObjects, object)
			for _, n := range start {
				if !slices.Contains(c.swiftAfter, n) {
					c.swiftAfter = append(c.swiftAfter, n)
				}
			}
			continue
		}
		if err := b.emitCompile(c, u, object, filepath.Join(c.objDir, names[i]+".d"), start); err != nil {
			return err
		}
	}
	return nil
}

// emitSwiftCompiles emits the module compilation of every context that collected
// Swift sources.
func (b *targetBuilder) emitSwiftCompiles() error {
	for _, c := range b.contexts {
		if len(c.swiftUnits) == 0 {
			continue
		}
		err := b.emitSwiftCompile(c, c.swiftUnits, c.swiftObjects, c.swiftAfter)
		c.swiftUnits, c.swiftObjects, c.swiftAfter = nil, nil, nil
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *targetBuilder) emitCompile(c *archContext, u compileUnit, object, depFile string, start []*domain.Node) error {
	scope := c.scope
	if u.file != nil && len(u.file.Settings) > 0 {
		scope = scope.WithOverrides(u.file.Settings)
	}
	dialect := u.tool.Dialect(u.fileType)

	var flags []string
	if u.file != nil {
		flags = u.file.CompilerFlags
	}
	prefix, prefixFlags, err := b.prefixHeader(c, scope, dialect)
	if err != nil {
		return err
	}

	vars := withVars(inputVars(u.path), domain.SettingTable{
		domain.VarOutputFilePath:    quoteWord(object),
		domain.VarDialect:           dialect,
		domain.SettingCompilerFlags: joinArgs(flags...),
		domain.VarPrefixHeaderFlags: joinArgs(prefixFlags...),
	})
	if u.tool.DependencyInfo {
		vars[domain.VarDependencyInfoFile] = quoteWord(depFile)
	} else {
		depFile = ""
	}
	scope = invocation(scope, vars)

	after := []*domain.Node{b.gates.node(gateGeneratedHeaders)}
	if b.hasSwift {
		after = append(after, b.gates.node(gateSwiftHeaders))
	}
	after = append(after, start...)

	return b.emit(b.newTask(taskSpec{
		ruleInfo: []string{u.tool.RuleType, object, u.path, c.variant, c.arch, dialect},
		command:  scope.ExpandList(u.tool.Command),
		env:      u.tool.Env,
		inputs:   []string{u.path, prefix},
		outputs:  []string{object},
		after:    after,
		depInfo:  depFile,
	}))
}

// emitSwiftCompile compiles every Swift source of a context in one invocation. The
// generated Objective-C header feeds the swift-generated-headers gate.
func (b *targetBuilder) emitSwiftCompile(c *archContext, units []compileUnit, objects []string, start []*domain.Node) error {
	tool := units[0].tool
	module := c.scope.Lookup(domain.SettingProductModuleName)
	fileList := filepath.Join(c.objDir, module+".SwiftFileList")
	moduleOut := filepath.Join(c.objDir, module+".swiftmodule")

	sources := make([]string, len(units))
	for i, u := range units {
		sources[i] = u.path
	}
	if err := b.writeAuxiliaryFile(fileList, []byte(strings.Join(sources, "\n")+"\n")); err != nil {
		return err
	}

	scope := invocation(c.scope, domain.SettingTable{
		domain.VarModuleName:    module,
		domain.VarModuleOutput:  quoteWord(moduleOut),
		domain.VarInputFileList: quoteWord(fileList),
		domain.VarInputFiles:    joinArgs(sources...),
	})
	header := scope.Expand(tool.GeneratedHeader)
	scope = invocation(scope, domain.SettingTable{domain.VarGeneratedHeader: quoteWord(header)})

	outputs := append([]string{}, objects...)
	if header != "" {
		outputs = append(outputs, header)
		b.swiftHeaders = append(b.swiftHeaders, b.pass.plan.PathNode(header))
	}
	outputs = append(outputs, moduleOut)

	return b.emit(b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, c.variant, c.arch, moduleOut},
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   append(sources, fileList),
		outputs:  outputs,
		after:    append([]*domain.Node{b.gates.node(gateGeneratedHeaders)}, start...),
	}))
}
