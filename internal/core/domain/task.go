package domain

import "strings"

// Task is a planned unit of work. It is never mutated after it has been added to a plan.
type Task struct {
	// RuleInfo is the rule-identity tuple; RuleInfo[0] is the rule type.
	RuleInfo   []string
	Command    []string
	WorkingDir string
	Env        map[string]string
	Inputs     []*Node
	Outputs    []*Node
	// AlwaysOutOfDate tasks run on every build.
	AlwaysOutOfDate bool
	// UnsafeToSkip tasks have side effects beyond their declared outputs.
	UnsafeToSkip bool
	// Gate tasks carry no command and exist only to order other tasks.
	Gate bool
	// Target owns the task. It is zero for plan-global tasks.
	Target TargetRef
	// Contents is the payload of auxiliary file writers.
	Contents []byte

	seq int
}

// RuleType returns the first element of the identity tuple.
func (t *Task) RuleType() string {
	if len(t.RuleInfo) == 0 {
		return ""
	}
	return t.RuleInfo[0]
}

// Identity returns the identity tuple as a single comparable key.
func (t *Task) Identity() string {
	return identityKey(t.RuleInfo)
}

// PrimaryOutput returns the first output, or nil.
func (t *Task) PrimaryOutput() *Node {
	if len(t.Outputs) == 0 {
		return nil
	}
	return t.Outputs[0]
}

// IsGlobal reports whether the task is shared by the whole plan rather than owned by a target.
func (t *Task) IsGlobal() bool {
	return t.Target == (TargetRef{})
}

// String renders the identity tuple separated by spaces.
func (t *Task) String() string {
	return strings.Join(t.RuleInfo, " ")
}

func identityKey(ruleInfo []string) string {
	return strings.Join(ruleInfo, "\x00")
}
