package planner

import (
	"maps"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
)

// taskSpec describes a task before its nodes are interned.
type taskSpec struct {
	ruleInfo []string
	command  []string
	env      map[string]string
	// inputs and outputs are file-system paths; the first output is the primary one.
	inputs  []string
	outputs []string
	// after lists ordering nodes such as gates and completions of other tasks.
	after           []*domain.Node
	depInfo         string
	alwaysOutOfDate bool
	unsafeToSkip    bool
	contents        []byte
	// global tasks are shared by the whole plan and owned by no target.
	global bool
}

// newTask interns the nodes of spec. Every task gets a virtual completion node as
// its last regular output so gates and later steps can depend on it.
func (b *targetBuilder) newTask(spec taskSpec) *domain.Task {
	plan := b.pass.plan
	t := &domain.Task{
		RuleInfo:        spec.ruleInfo,
		Command:         spec.command,
		WorkingDir:      b.project.Dir,
		Env:             spec.env,
		AlwaysOutOfDate: spec.alwaysOutOfDate,
		UnsafeToSkip:    spec.unsafeToSkip,
		Contents:        spec.contents,
	}
	if spec.global {
		t.WorkingDir = b.workspace().Root
	} else {
		t.Target = b.ref
	}

	inputs := make([]*domain.Node, 0, len(spec.inputs)+len(spec.after))
	for _, in := range spec.inputs {
		if in != "" {
			inputs = append(inputs, plan.PathNode(in))
		}
	}
	t.Inputs = dedupeNodes(append(inputs, spec.after...))

	for _, out := range spec.outputs {
		t.Outputs = append(t.Outputs, plan.PathNode(out))
	}
	t.Outputs = append(t.Outputs, plan.VirtualNode(completionName(spec)))
	if spec.depInfo != "" {
		t.Outputs = append(t.Outputs, plan.PathNode(spec.depInfo))
	}
	return t
}

// completionName is "<rule type> <primary output>", or the identity tuple for tasks
// that write no file.
func completionName(spec taskSpec) string {
	if len(spec.outputs) > 0 {
		return spec.ruleInfo[0] + " " + filepath.Clean(spec.outputs[0])
	}
	return strings.Join(spec.ruleInfo, " ")
}

// completion returns the virtual completion node of t.
func completion(t *domain.Task) *domain.Node {
	for _, out := range t.Outputs {
		if out.IsVirtual() {
			return out
		}
	}
	return t.PrimaryOutput()
}

func completions(tasks []*domain.Task) []*domain.Node {
	nodes := make([]*domain.Node, 0, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, completion(t))
	}
	return nodes
}

// invocation narrows scope with the per-invocation variables of one tool run.
func invocation(scope ports.Scope, vars domain.SettingTable) ports.Scope {
	if len(vars) == 0 {
		return scope
	}
	return scope.WithOverrides(vars)
}

// inputVars binds the INPUT_FILE_* variables for path.
func inputVars(path string) domain.SettingTable {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return domain.SettingTable{
		domain.VarInputFilePath:   quoteWord(path),
		domain.VarInputFileName:   quoteWord(base),
		domain.VarInputFileBase:   quoteWord(strings.TrimSuffix(base, ext)),
		domain.VarInputFileSuffix: ext,
		domain.VarInputFileDir:    quoteWord(filepath.Dir(path)),
	}
}

func withVars(tables ...domain.SettingTable) domain.SettingTable {
	out := make(domain.SettingTable)
	for _, t := range tables {
		maps.Copy(out, t)
	}
	return out
}

// quoteWord quotes a single value so it survives word splitting as one word.
func quoteWord(w string) string {
	if w != "" && !strings.ContainsAny(w, " \t\n'\"\\$") {
		return w
	}
	return shellquote.Join(w)
}

// joinArgs renders words as a setting value that splits back into the same words.
func joinArgs(words ...string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = quoteWord(w)
	}
	return strings.Join(quoted, " ")
}

// exportedEnv returns the settings scripts see in their environment.
func (b *targetBuilder) exportedEnv(scope ports.Scope) map[string]string {
	env := make(map[string]string)
	for _, key := range b.scope.LookupList(domain.SettingScriptExportedSettings) {
		env[key] = scope.Lookup(key)
	}
	return env
}
