package planner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
)

// undefinedArch is bound to CURRENT_ARCH for rules that run once per file.
const undefinedArch = "undefined_arch"

// runGenerator runs a generator tool once per input file and feeds its output back
// into the work list of every context.
func (b *targetBuilder) runGenerator(c *archContext, item workItem, p producer, start []*domain.Node) ([]workItem, error) {
	key := "tool\x00" + p.tool.ID + "\x00" + item.path
	if items, ok := b.generated[key]; ok {
		return slices.Clone(items), nil
	}

	vars := inputVars(item.path)
	scope := invocation(c.scope, vars)
	var outputs []string
	if p.rule != nil && len(p.rule.Outputs) > 0 {
		outputs = b.expandPaths(scope, p.rule.Outputs)
	} else {
		outputs = []string{filepath.Join(b.setting(domain.SettingDerivedFileDir), stem(item.path)+p.tool.OutputExtension)}
	}
	vars[domain.VarOutputFilePath] = quoteWord(outputs[0])
	scope = invocation(c.scope, vars)

	items := b.generatedItems(item, p, outputs, p.tool.OutputFileType)
	t := b.newTask(taskSpec{
		ruleInfo: append([]string{p.tool.RuleType}, append(slices.Clone(outputs), item.path)...),
		command:  scope.ExpandList(p.tool.Command),
		env:      p.tool.Env,
		inputs:   []string{item.path},
		outputs:  outputs,
		after:    b.producerAfter(items, start),
	})
	if err := b.emitProducer(t, items); err != nil {
		return nil, err
	}
	b.generated[key] = items
	return slices.Clone(items), nil
}

// runRuleScript runs a script rule for one input. Rules that do not run once per
// architecture are planned in the first context and their outputs reused by the others.
func (b *targetBuilder) runRuleScript(c *archContext, item workItem, p producer, start []*domain.Node) ([]workItem, error) {
	rule := p.rule
	key := fmt.Sprintf("rule\x00%d\x00%s", p.ruleIndex, item.path)
	if !rule.RunOncePerArch {
		if items, ok := b.generated[key]; ok {
			return slices.Clone(items), nil
		}
	}

	arch, variant := c.arch, c.variant
	if !rule.RunOncePerArch {
		arch = undefinedArch
	}
	scope := invocation(c.scope, withVars(inputVars(item.path), domain.SettingTable{domain.VarCurrentArch: arch}))
	outputs := b.expandPaths(scope, rule.Outputs)
	extra := b.expandPaths(scope, rule.InputFiles)

	scriptFile, err := b.ruleScriptFile(p)
	if err != nil {
		return nil, err
	}
	tool, err := b.tool(domain.ToolRuleScript)
	if err != nil {
		return nil, err
	}

	env := b.exportedEnv(scope)
	base := filepath.Base(item.path)
	env[domain.VarInputFilePath] = item.path
	env[domain.VarInputFileName] = base
	env[domain.VarInputFileBase] = stem(item.path)
	env[domain.VarInputFileSuffix] = filepath.Ext(base)
	env[domain.VarInputFileDir] = filepath.Dir(item.path)
	env[domain.VarCurrentArch] = arch
	env[domain.VarCurrentVariant] = variant
	addFileListEnv(env, "SCRIPT_INPUT_FILE", extra)
	addFileListEnv(env, "SCRIPT_OUTPUT_FILE", outputs)

	ruleInfo := append([]string{tool.RuleType}, outputs...)
	ruleInfo = append(ruleInfo, item.path)
	if rule.RunOncePerArch {
		ruleInfo = append(ruleInfo, variant, arch)
	}

	items := b.generatedItems(item, p, outputs, rule.OutputFileType)
	scope = invocation(scope, domain.SettingTable{domain.VarScriptFile: quoteWord(scriptFile)})
	t := b.newTask(taskSpec{
		ruleInfo: ruleInfo,
		command:  scope.ExpandList(tool.Command),
		env:      env,
		inputs:   append([]string{item.path, scriptFile}, extra...),
		outputs:  outputs,
		after:    b.producerAfter(items, start),
	})
	if err := b.emitProducer(t, items); err != nil {
		return nil, err
	}
	if !rule.RunOncePerArch {
		b.generated[key] = items
	}
	return slices.Clone(items), nil
}

// generatedItems turns the outputs p produced from input into work items. firstType
// overrides the inferred type of the first output.
func (b *targetBuilder) generatedItems(input workItem, p producer, outputs []string, firstType domain.FileType) []workItem {
	chain := append(slices.Clone(input.chain), p)
	items := make([]workItem, len(outputs))
	for i, out := range outputs {
		ft := b.pass.planner.registry.FileType(out)
		if i == 0 && firstType != "" {
			ft = firstType
		}
		items[i] = workItem{path: out, fileType: ft, chain: chain}
	}
	return items
}

func producesHeaders(items []workItem) bool {
	return slices.ContainsFunc(items, func(i workItem) bool { return i.fileType.IsHeader() })
}

// producerAfter returns the ordering inputs of a producer. Header producers only wait
// for begin-compiling so that every compile can wait for them.
func (b *targetBuilder) producerAfter(items []workItem, start []*domain.Node) []*domain.Node {
	if producesHeaders(items) {
		return []*domain.Node{b.gates.node(gateBeginCompiling)}
	}
	return start
}

func (b *targetBuilder) emitProducer(t *domain.Task, items []workItem) error {
	if err := b.emit(t); err != nil {
		return err
	}
	if producesHeaders(items) {
		b.headerNodes = append(b.headerNodes, completion(t))
	}
	return nil
}

// ruleScriptFile writes the script of a rule once per target.
func (b *targetBuilder) ruleScriptFile(p producer) (string, error) {
	if path, ok := b.ruleScripts[p.ruleIndex]; ok {
		return path, nil
	}
	path := filepath.Join(b.setting(domain.SettingTargetTempDir), "Script-Rule"+strconv.Itoa(p.ruleIndex)+".sh")
	if err := b.writeAuxiliaryFile(path, scriptContents("", p.rule.Script)); err != nil {
		return "", err
	}
	b.ruleScripts[p.ruleIndex] = path
	return path, nil
}

// expandPaths expands path templates, resolving relative results against the project directory.
func (b *targetBuilder) expandPaths(scope ports.Scope, templates []string) []string {
	var out []string
	for _, tmpl := range templates {
		v := scope.Expand(tmpl)
		if v == "" {
			continue
		}
		if !filepath.IsAbs(v) {
			v = filepath.Join(b.project.Dir, v)
		}
		out = append(out, filepath.Clean(v))
	}
	return out
}

func addFileListEnv(env map[string]string, prefix string, paths []string) {
	env[prefix+"_COUNT"] = strconv.Itoa(len(paths))
	for i, p := range paths {
		env[prefix+"_"+strconv.Itoa(i)] = p
	}
}
