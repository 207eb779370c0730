// Package planner turns a build request into a dependency-ordered plan of tasks and gates.
package planner

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Planner constructs build plans. A Planner is safe for concurrent use; every call to
// Plan runs an independent planning pass.
type Planner struct {
	resolver    ports.ScopeResolver
	registry    ports.ToolSpecRegistry
	fs          ports.FileSystem
	logger      ports.Logger
	telemetry   ports.Telemetry
	parallelism int
}

// New creates a Planner that plans up to runtime.NumCPU() targets at once.
func New(
	resolver ports.ScopeResolver,
	registry ports.ToolSpecRegistry,
	fsys ports.FileSystem,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Planner {
	return &Planner{
		resolver:    resolver,
		registry:    registry,
		fs:          fsys,
		logger:      logger,
		telemetry:   telemetry,
		parallelism: runtime.NumCPU(),
	}
}

// SetParallelism limits the number of targets planned concurrently.
func (p *Planner) SetParallelism(n int) {
	if n > 0 {
		p.parallelism = n
	}
}

// pass holds the state shared by every target of one planning pass.
type pass struct {
	planner *Planner
	plan    *domain.BuildPlan
	request domain.BuildRequest
	cache   *Cache
	// requested maps every requested target to its request entry.
	requested map[domain.TargetRef]domain.BuildTargetInfo

	mu     sync.Mutex
	failed map[domain.TargetRef]bool
}

// Plan constructs the plan for req. Targets are planned in parallel; the result does
// not depend on scheduling. A target that fails to plan contributes no tasks. Unless
// req.ContinueAfterErrors is set, the first failure aborts the request; the unfinished
// plan is then returned with the error so that its diagnostics can still be reported.
func (p *Planner) Plan(ctx context.Context, req domain.BuildRequest) (*domain.BuildPlan, error) {
	if len(req.Targets) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	ps := &pass{
		planner:   p,
		plan:      domain.NewBuildPlan(),
		request:   req,
		cache:     NewCache(),
		requested: make(map[domain.TargetRef]domain.BuildTargetInfo, len(req.Targets)),
		failed:    make(map[domain.TargetRef]bool),
	}

	var infos []domain.BuildTargetInfo
	for _, info := range req.Targets {
		ref := info.Ref()
		if _, ok := ps.requested[ref]; ok {
			continue
		}
		ps.requested[ref] = info
		ps.plan.RegisterTarget(ref, info.Target.Dependencies)
		infos = append(infos, info)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for _, info := range infos {
		g.Go(func() error {
			return ps.planTarget(gctx, info)
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		if errors.Is(err, domain.ErrPlanningFailed) {
			return ps.plan, err
		}
		return nil, err
	}

	ps.reportFailedDependencies(infos)
	CheckSharedOutputs(ps.plan)
	if err := ps.plan.Finalize(); err != nil {
		return nil, err
	}
	return ps.plan, nil
}

func (ps *pass) planTarget(ctx context.Context, info domain.BuildTargetInfo) error {
	ref := info.Ref()
	ctx, vertex := ps.planner.telemetry.Record(ctx, "plan "+ref.String())

	b, err := ps.newTargetBuilder(ctx, info)
	if err == nil {
		err = b.build()
	}
	if err == nil {
		err = b.commit()
		if err != nil {
			// Identity collisions abort the whole request.
			vertex.Complete(err)
			return err
		}
		_, _ = fmt.Fprintf(vertex.Stdout(), "%d tasks\n", len(b.tasks))
		ps.planner.logger.Info("planned target", "target", ref.String(), "tasks", len(b.tasks))
		vertex.Complete(nil)
		return nil
	}
	vertex.Complete(err)

	if errors.Is(err, domain.ErrPlanningCancelled) {
		return err
	}

	ps.mu.Lock()
	ps.failed[ref] = true
	ps.mu.Unlock()

	if b != nil {
		for _, d := range b.diags {
			ps.plan.AddDiagnostic(d)
		}
	}
	ps.plan.AddDiagnostic(domain.Errorf(ref, "%s", describe(err)))
	if ps.request.ContinueAfterErrors {
		return nil
	}
	return errors.Join(domain.ErrPlanningFailed, zerr.With(zerr.Wrap(err, "failed to plan target"), "target", ref.String()))
}

// reportFailedDependencies flags targets whose entry gate waits on the end gate of a
// target that failed to plan. That gate has no producer.
func (ps *pass) reportFailedDependencies(infos []domain.BuildTargetInfo) {
	for _, info := range infos {
		ref := info.Ref()
		if ps.failed[ref] {
			continue
		}
		for _, dep := range info.Target.Dependencies {
			if ps.failed[dep] {
				ps.plan.AddDiagnostic(domain.Errorf(ref, "dependency '%s' failed to plan; its products will be missing", dep))
			}
		}
	}
}

func cancelled(err error) error {
	return errors.Join(domain.ErrPlanningCancelled, err)
}

// describe renders err with the metadata attached along its wrap chain.
func describe(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		z, ok := e.(*zerr.Error)
		if !ok {
			continue
		}
		meta := z.Metadata()
		for _, k := range slices.Sorted(maps.Keys(meta)) {
			parts = append(parts, fmt.Sprintf("%s=%v", k, meta[k]))
		}
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return fmt.Sprintf("%s (%s)", err.Error(), strings.Join(parts, ", "))
}
