package planner

import (
	"path/filepath"
	"strconv"

	"go.trai.ch/draft/internal/core/domain"
)

const defaultShell = "/bin/sh"

func scriptContents(shell, script string) []byte {
	if shell == "" {
		shell = defaultShell
	}
	return []byte("#!" + shell + "\n" + script + "\n")
}

// writeAuxiliaryFile emits a task writing contents to path. The bytes are part of the
// task, so the same inputs always yield the same file.
func (b *targetBuilder) writeAuxiliaryFile(path string, contents []byte) error {
	tool, err := b.tool(domain.ToolWriteAuxiliary)
	if err != nil {
		return err
	}
	return b.emit(b.newTask(taskSpec{
		ruleInfo: []string{tool.RuleType, path},
		outputs:  []string{path},
		after:    []*domain.Node{b.gates.node(gateBeginCompiling)},
		contents: contents,
	}))
}

// planScriptPhase writes the phase script to an auxiliary file and runs it. A script
// without declared outputs runs on every build.
func (b *targetBuilder) planScriptPhase(index int, phase *domain.BuildPhase, start []*domain.Node) error {
	tool, err := b.tool(domain.ToolScript)
	if err != nil {
		return err
	}

	shell := phase.Shell
	if shell == "" {
		shell = defaultShell
	}
	scriptFile := filepath.Join(b.setting(domain.SettingTargetTempDir), "Script-Phase"+strconv.Itoa(index)+".sh")
	if err := b.writeAuxiliaryFile(scriptFile, scriptContents(shell, phase.Script)); err != nil {
		return err
	}

	inputs := b.expandPaths(b.scope, phase.InputPaths)
	outputs := b.expandPaths(b.scope, phase.OutputPaths)

	env := b.exportedEnv(b.scope)
	addFileListEnv(env, "SCRIPT_INPUT_FILE", inputs)
	addFileListEnv(env, "SCRIPT_OUTPUT_FILE", outputs)

	always := len(outputs) == 0
	if always && !phase.AlwaysOutOfDate {
		b.warn("run script phase '%s' will run during every build because it does not declare any outputs", phase.DisplayName())
	}

	scope := invocation(b.scope, domain.SettingTable{
		domain.VarScriptFile:  quoteWord(scriptFile),
		domain.VarScriptShell: quoteWord(shell),
	})
	return b.emit(b.newTask(taskSpec{
		ruleInfo:        []string{tool.RuleType, phase.DisplayName(), scriptFile},
		command:         scope.ExpandList(tool.Command),
		env:             env,
		inputs:          append([]string{scriptFile}, inputs...),
		outputs:         outputs,
		after:           start,
		alwaysOutOfDate: always || phase.AlwaysOutOfDate,
		unsafeToSkip:    always,
	}))
}
