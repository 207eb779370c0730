package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
)

// planExternal delegates an external target to its build tool. The invocation is
// always out of date because its outputs are unknown.
func (b *targetBuilder) planExternal() error {
	if b.product != domain.ProductTypeExternal || b.target.External == nil {
		return nil
	}
	tool, err := b.tool(domain.ToolExternal)
	if err != nil {
		return err
	}
	ext := b.target.External

	var env map[string]string
	if ext.PassEnv {
		env = b.exportedEnv(b.scope)
	}
	scope := invocation(b.scope, domain.SettingTable{
		domain.VarExternalTool: quoteWord(b.scope.Expand(ext.Tool)),
		domain.VarExternalArgs: b.scope.Expand(ext.Args),
	})
	t := b.newTask(taskSpec{
		ruleInfo:        []string{tool.RuleType, b.ref.String()},
		command:         scope.ExpandList(tool.Command),
		env:             env,
		after:           []*domain.Node{b.gates.node(gateBeginCompiling)},
		alwaysOutOfDate: true,
		unsafeToSkip:    true,
	})
	if ext.WorkingDir != "" {
		t.WorkingDir = ext.WorkingDir
	}
	return b.emit(t)
}

// planProductContent emits the product files that are not listed in any phase: the
// processed Info.plist and the framework module map.
func (b *targetBuilder) planProductContent() error {
	if !b.product.IsWrapper() {
		return nil
	}
	if err := b.planInfoPlist(); err != nil {
		return err
	}
	return b.planModuleMap()
}

func (b *targetBuilder) planInfoPlist() error {
	src := b.sourcePath(domain.SettingInfoPlistFile)
	if src == "" {
		return nil
	}
	tool, err := b.tool(domain.ToolInfoPlist)
	if err != nil {
		return err
	}
	dest := b.productPath(domain.SettingInfoPlistPath)
	scope := invocation(b.scope, withVars(inputVars(src), domain.SettingTable{domain.VarOutputFilePath: quoteWord(dest)}))
	return b.emit(b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, dest, src},
		command:  scope.ExpandList(tool.Command),
		env:      tool.Env,
		inputs:   []string{src},
		outputs:  []string{dest},
		after:    []*domain.Node{b.gates.node(gateBeginCompiling)},
	}))
}

// planModuleMap installs the module map of a framework that defines a module, copying
// MODULEMAP_FILE or synthesizing an umbrella module.
func (b *targetBuilder) planModuleMap() error {
	if b.product != domain.ProductTypeFramework || !b.scope.LookupBool(domain.SettingDefinesModule) {
		return nil
	}
	dest := filepath.Join(b.productPath(domain.SettingModulesFolderPath), "module.modulemap")
	after := []*domain.Node{b.gates.node(gateBeginCompiling)}

	var t *domain.Task
	if src := b.sourcePath(domain.SettingModuleMapFile); src != "" {
		tool, err := b.tool(domain.ToolCopy)
		if err != nil {
			return err
		}
		scope := invocation(b.scope, withVars(inputVars(src), domain.SettingTable{domain.VarOutputFilePath: quoteWord(dest)}))
		t = b.newTask(taskSpec{
			ruleInfo: []string{tool.RuleType, dest, src},
			command:  scope.ExpandList(tool.Command),
			inputs:   []string{src},
			outputs:  []string{dest},
			after:    after,
		})
	} else {
		tool, err := b.tool(domain.ToolWriteAuxiliary)
		if err != nil {
			return err
		}
		t = b.newTask(taskSpec{
			ruleInfo: []string{tool.RuleType, dest},
			outputs:  []string{dest},
			after:    after,
			contents: b.moduleMapContents(),
		})
	}
	if err := b.emit(t); err != nil {
		return err
	}
	b.headerNodes = append(b.headerNodes, completion(t))
	return nil
}

func (b *targetBuilder) moduleMapContents() []byte {
	module := b.setting(domain.SettingProductModuleName)
	var sb strings.Builder
	fmt.Fprintf(&sb, "framework module %s {\n", module)
	fmt.Fprintf(&sb, "  umbrella header \"%s.h\"\n\n", b.setting(domain.SettingProductName))
	sb.WriteString("  export *\n  module * { export * }\n}\n")
	if b.hasSwift {
		fmt.Fprintf(&sb, "\nmodule %s.Swift {\n  header \"%s-Swift.h\"\n  requires objc\n}\n", module, module)
	}
	return []byte(sb.String())
}
