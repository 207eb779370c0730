package ports

import "go.trai.ch/draft/internal/core/domain"

// PlanDumper writes a human-readable rendition of a plan.
//
//go:generate mockgen -source=plan_dumper.go -destination=mocks/mock_plan_dumper.go -package=mocks
type PlanDumper interface {
	// Dump writes the plan below dir as one directory per project and target.
	Dump(plan *domain.BuildPlan, dir string) error
}
