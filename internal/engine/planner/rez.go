package planner

import (
	"path/filepath"

	"go.trai.ch/draft/internal/core/domain"
)

// planRez compiles Carbon resources once per architecture and merges them into a
// single resource file in the product.
func (b *targetBuilder) planRez(phase *domain.BuildPhase, start []*domain.Node) error {
	rez, err := b.tool(domain.ToolRez)
	if err != nil {
		return err
	}

	files := b.declaredFiles(phase)
	var compiled []string
	for _, c := range b.contexts {
		if c.variant != b.variants[0] {
			continue
		}
		for _, f := range files {
			out := filepath.Join(c.objDir, "ResourceManagerResources", stem(f.Path)+rez.OutputExtension)
			scope := invocation(c.scope, withVars(inputVars(f.Path), domain.SettingTable{domain.VarOutputFilePath: quoteWord(out)}))
			if err := b.emit(b.newTask(taskSpec{
				ruleInfo: []string{rez.RuleType, out, f.Path, c.arch},
				command:  scope.ExpandList(rez.Command),
				env:      rez.Env,
				inputs:   []string{f.Path},
				outputs:  []string{out},
				after:    start,
			})); err != nil {
				return err
			}
			compiled = append(compiled, out)
		}
	}
	if len(compiled) == 0 {
		return nil
	}

	merger, err := b.tool(domain.ToolResMerger)
	if err != nil {
		return err
	}
	dir := b.setting(domain.SettingTargetBuildDir)
	if b.product.IsWrapper() {
		dir = b.productPath(domain.SettingResourcesFolderPath)
	}
	out := filepath.Join(dir, b.setting(domain.SettingProductName)+rez.OutputExtension)
	scope := invocation(b.scope, domain.SettingTable{
		domain.VarOutputFilePath: quoteWord(out),
		domain.VarInputFiles:     joinArgs(compiled...),
	})
	return b.emit(b.newTask(taskSpec{
		ruleInfo: []string{merger.RuleType, out},
		command:  scope.ExpandList(merger.Command),
		env:      merger.Env,
		inputs:   compiled,
		outputs:  []string{out},
		after:    start,
	}))
}
