// Package app implements the application layer for draft.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/draft/internal/engine/planner"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader    ports.ProjectLoader
	planner   *planner.Planner
	dumper    ports.PlanDumper
	logger    ports.Logger
	telemetry ports.Telemetry
}

// New creates a new App instance.
func New(
	loader ports.ProjectLoader,
	p *planner.Planner,
	dumper ports.PlanDumper,
	log ports.Logger,
	telemetry ports.Telemetry,
) *App {
	return &App{
		loader:    loader,
		planner:   p,
		dumper:    dumper,
		logger:    log,
		telemetry: telemetry,
	}
}

// PlanOptions configuration for the Plan method.
type PlanOptions struct {
	// Dir is where project discovery starts. It defaults to the working directory.
	Dir                 string
	Targets             []string
	Configuration       string
	Action              string
	Platform            string
	Archs               []string
	Variants            []string
	ArenaRoot           string
	Overrides           []string
	DumpDir             string
	ContinueAfterErrors bool
}

// Plan loads the project model, constructs the plan for the requested targets and
// their dependencies, reports its diagnostics and optionally dumps it.
func (a *App) Plan(ctx context.Context, opts PlanOptions) (*domain.BuildPlan, error) {
	if len(opts.Targets) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	dir, err := workingDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	ws, err := a.loader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load project model")
	}

	params, err := parameters(opts)
	if err != nil {
		return nil, err
	}

	req, err := buildRequest(ws, opts.Targets, params)
	if err != nil {
		return nil, err
	}
	req.ContinueAfterErrors = opts.ContinueAfterErrors

	plan, err := a.planner.Plan(ctx, req)
	if err != nil {
		if plan != nil {
			a.reportDiagnostics(plan)
		}
		return nil, err
	}
	a.reportDiagnostics(plan)
	a.logger.Info("plan complete", "targets", len(plan.Targets()), "tasks", len(plan.Tasks()))

	if opts.DumpDir != "" {
		_, vertex := a.telemetry.Record(ctx, "dump plan")
		err := a.dumper.Dump(plan, opts.DumpDir)
		vertex.Complete(err)
		if err != nil {
			return nil, err
		}
		a.logger.Info("dumped plan", "dir", opts.DumpDir)
	}
	return plan, nil
}

// Close flushes telemetry.
func (a *App) Close() error {
	return a.telemetry.Close()
}

func (a *App) reportDiagnostics(plan *domain.BuildPlan) {
	for _, d := range plan.Diagnostics() {
		attrs := []any{"target", d.Target.Name, "project", d.Target.Project}
		switch d.Severity {
		case domain.SeverityError:
			err := zerr.With(zerr.New(d.Message), "target", d.Target.Name)
			a.logger.Error(zerr.With(err, "project", d.Target.Project))
		case domain.SeverityWarning:
			a.logger.Warn(d.Message, attrs...)
		default:
			a.logger.Info(d.Message, attrs...)
		}
	}
}

func workingDir(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to get working directory")
		}
		return cwd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", dir)
	}
	return abs, nil
}

func parameters(opts PlanOptions) (domain.Parameters, error) {
	action, err := domain.ParseAction(opts.Action)
	if err != nil {
		return domain.Parameters{}, err
	}
	overrides, err := parseOverrides(opts.Overrides)
	if err != nil {
		return domain.Parameters{}, err
	}
	return domain.Parameters{
		Configuration: opts.Configuration,
		Action:        action,
		Platform:      opts.Platform,
		Archs:         splitList(opts.Archs),
		Variants:      splitList(opts.Variants),
		ArenaRoot:     opts.ArenaRoot,
		Overrides:     overrides,
	}, nil
}

// parseOverrides turns KEY=VALUE pairs into a setting table. Later pairs win.
func parseOverrides(pairs []string) (domain.SettingTable, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	table := make(domain.SettingTable, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, zerr.With(domain.ErrInvalidOverride, "override", pair)
		}
		table[key] = value
	}
	return table, nil
}

// splitList accepts repeated flags as well as comma or space separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' '
		})...)
	}
	return out
}

// buildRequest resolves target names and adds every dependency of the named targets.
func buildRequest(ws *domain.Workspace, names []string, params domain.Parameters) (domain.BuildRequest, error) {
	roots := make([]domain.TargetRef, 0, len(names))
	for _, name := range names {
		ref, err := resolveTarget(ws, name)
		if err != nil {
			return domain.BuildRequest{}, err
		}
		roots = append(roots, ref)
	}

	closure, err := ws.DependencyClosure(roots)
	if err != nil {
		return domain.BuildRequest{}, err
	}

	req := domain.BuildRequest{Workspace: ws}
	for _, ref := range closure {
		project, target, _ := ws.Lookup(ref)
		req.Targets = append(req.Targets, domain.BuildTargetInfo{
			Project:    project,
			Target:     target,
			Parameters: params.Clone(),
		})
	}
	return req, nil
}

// resolveTarget accepts "Project/Target" or a target name that is unique across
// the workspace.
func resolveTarget(ws *domain.Workspace, name string) (domain.TargetRef, error) {
	if strings.Contains(name, "/") {
		ref := domain.ParseTargetRef(name, "")
		if _, _, ok := ws.Lookup(ref); !ok {
			return domain.TargetRef{}, zerr.With(domain.ErrTargetNotFound, "target", name)
		}
		return ref, nil
	}

	var matches []domain.TargetRef
	for _, ref := range ws.AllTargets() {
		if ref.Name == name {
			matches = append(matches, ref)
		}
	}
	switch len(matches) {
	case 0:
		return domain.TargetRef{}, zerr.With(domain.ErrTargetNotFound, "target", name)
	case 1:
		return matches[0], nil
	default:
		projects := make([]string, len(matches))
		for i, m := range matches {
			projects[i] = m.Project
		}
		err := zerr.With(domain.ErrAmbiguousTarget, "target", name)
		return domain.TargetRef{}, zerr.With(err, "projects", fmt.Sprint(projects))
	}
}
