package planner

import (
	"slices"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
)

// CheckSharedOutputs warns about every file written by more than one task. Tasks are
// visited in identity order, so the task reported as the second producer does not
// depend on planning order.
func CheckSharedOutputs(plan *domain.BuildPlan) {
	tasks := plan.Tasks()
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return strings.Compare(a.Identity(), b.Identity())
	})

	producers := make(map[*domain.Node]*domain.Task)
	for _, t := range tasks {
		if t.Gate {
			continue
		}
		for _, out := range t.Outputs {
			if out.IsVirtual() {
				continue
			}
			first, ok := producers[out]
			if !ok {
				producers[out] = t
				continue
			}
			if first == t {
				continue
			}
			plan.AddDiagnostic(domain.Warningf(t.Target,
				"multiple tasks produce '%s': '%s' and '%s'", out.Name(), first, t))
		}
	}
}
