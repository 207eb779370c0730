package planner

import (
	"fmt"

	"go.trai.ch/draft/internal/core/domain"
)

// Gate names. Each target owns one gate of every kind.
const (
	gateEntry            = "entry"
	gateBeginCompiling   = "begin-compiling"
	gateGeneratedHeaders = "generated-headers"
	gateSwiftHeaders     = "swift-generated-headers"
	gateEnd              = "end"
)

// gateRuleType is the rule type of gate tasks.
const gateRuleType = "Gate"

// targetGates interns the virtual nodes of a target's gates so tasks can depend on a
// gate before the gate task itself is emitted.
type targetGates struct {
	plan *domain.BuildPlan
	ref  domain.TargetRef
}

func newTargetGates(plan *domain.BuildPlan, ref domain.TargetRef) targetGates {
	return targetGates{plan: plan, ref: ref}
}

func (g targetGates) node(name string) *domain.Node {
	return g.plan.VirtualNode(gateNodeName(g.ref, name))
}

func gateNodeName(ref domain.TargetRef, name string) string {
	return ref.String() + " " + name
}

func endGateNode(plan *domain.BuildPlan, ref domain.TargetRef) *domain.Node {
	return plan.VirtualNode(gateNodeName(ref, gateEnd))
}

func phaseGateName(index int, phase *domain.BuildPhase) string {
	return fmt.Sprintf("phase%d-%s-end", index, phase.Type)
}

// emitGate buffers a gate task and returns its node.
func (b *targetBuilder) emitGate(name string, inputs []*domain.Node) *domain.Node {
	out := b.gates.node(name)
	b.tasks = append(b.tasks, &domain.Task{
		RuleInfo: []string{gateRuleType, out.Name()},
		Inputs:   dedupeNodes(inputs),
		Outputs:  []*domain.Node{out},
		Gate:     true,
		Target:   b.ref,
	})
	return out
}

func dedupeNodes(nodes []*domain.Node) []*domain.Node {
	seen := make(map[*domain.Node]bool, len(nodes))
	out := make([]*domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
