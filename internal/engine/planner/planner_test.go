package planner_test

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/draft/internal/adapters/fs"
	"go.trai.ch/draft/internal/adapters/logger"
	"go.trai.ch/draft/internal/adapters/registry"
	"go.trai.ch/draft/internal/adapters/settings"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/draft/internal/core/ports/mocks"
	"go.trai.ch/draft/internal/engine/planner"
	"go.uber.org/mock/gomock"
)

const (
	wsRoot      = "/ws"
	projectDir  = "/ws/App"
	productsDir = "/ws/build/Products/Debug"
	installRoot = "/ws/build/Install"
)

func tempDir(target string) string {
	return "/ws/build/Intermediates/App.build/Debug/" + target + ".build"
}

func objDir(target, variant, arch string) string {
	return tempDir(target) + "/Objects-" + variant + "/" + arch
}

func src(name string) string {
	return filepath.Join(projectDir, name)
}

func sources(names ...string) *domain.BuildPhase {
	phase := &domain.BuildPhase{Type: domain.PhaseSources}
	for _, n := range names {
		phase.Files = append(phase.Files, &domain.BuildFile{Path: src(n)})
	}
	return phase
}

// setupPlanner creates a planner backed by the built-in settings and tools and an
// in-memory file system mounted at the workspace root.
func setupPlanner(t *testing.T, files fstest.MapFS) *planner.Planner {
	t.Helper()
	ctrl := gomock.NewController(t)

	resolver, err := settings.NewResolver()
	require.NoError(t, err)
	reg, err := registry.New()
	require.NoError(t, err)

	log := logger.New()
	log.SetOutput(io.Discard)

	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Stdout().Return(io.Discard).AnyTimes()
	vertex.EXPECT().Complete(gomock.Any()).AnyTimes()
	tel := mocks.NewMockTelemetry(ctrl)
	tel.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		},
	).AnyTimes()

	if files == nil {
		files = fstest.MapFS{}
	}
	p := planner.New(resolver, reg, fs.NewMapFS(wsRoot, files), log, tel)
	p.SetParallelism(4)
	return p
}

func workspace(targets ...*domain.Target) *domain.Workspace {
	return &domain.Workspace{
		Root: wsRoot,
		Projects: []*domain.Project{{
			Name:    "App",
			Dir:     projectDir,
			Targets: targets,
		}},
	}
}

func request(ws *domain.Workspace, params domain.Parameters, names ...string) domain.BuildRequest {
	req := domain.BuildRequest{Workspace: ws}
	project := ws.Projects[0]
	for _, name := range names {
		target, ok := project.Target(name)
		if !ok {
			panic("unknown target " + name)
		}
		req.Targets = append(req.Targets, domain.BuildTargetInfo{
			Project:    project,
			Target:     target,
			Parameters: params,
		})
	}
	return req
}

func ref(name string) domain.TargetRef {
	return domain.TargetRef{Project: "App", Name: name}
}

func identities(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.String()
	}
	return out
}

func hasInput(t *domain.Task, name string) bool {
	for _, in := range t.Inputs {
		if in.Name() == name {
			return true
		}
	}
	return false
}

func mustTask(t *testing.T, plan *domain.BuildPlan, ruleInfo ...string) *domain.Task {
	t.Helper()
	task, ok := plan.TaskByIdentity(ruleInfo...)
	require.True(t, ok, "missing task %q in\n%s", strings.Join(ruleInfo, " "), strings.Join(identities(plan.Tasks()), "\n"))
	return task
}

func warnings(plan *domain.BuildPlan) []string {
	var out []string
	for _, d := range plan.Diagnostics() {
		if d.Severity == domain.SeverityWarning {
			out = append(out, d.Message)
		}
	}
	return out
}

func TestPlan_NoTargets(t *testing.T) {
	p := setupPlanner(t, nil)

	_, err := p.Plan(context.Background(), domain.BuildRequest{Workspace: workspace()})
	assert.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestPlan_EmptyTarget(t *testing.T) {
	p := setupPlanner(t, nil)
	ws := workspace(&domain.Target{Name: "Empty", ProductType: domain.ProductTypeAggregate})

	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Empty"))
	require.NoError(t, err)

	tasks := plan.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, []string{"Gate App/Empty entry", "Gate App/Empty end"}, identities(tasks))

	end := tasks[1]
	require.Len(t, end.Inputs, 1)
	assert.Equal(t, "App/Empty entry", end.Inputs[0].Name())
}

func TestPlan_FanOutAcrossVariantsAndArchs(t *testing.T) {
	p := setupPlanner(t, nil)
	ws := workspace(&domain.Target{
		Name:        "Hello",
		ProductType: domain.ProductTypeTool,
		Phases:      []*domain.BuildPhase{sources("a.c", "b.c")},
	})
	params := domain.Parameters{Archs: []string{"arm64", "x86_64"}, Variants: []string{"normal", "profile"}}

	plan, err := p.Plan(context.Background(), request(ws, params, "Hello"))
	require.NoError(t, err)

	assert.Len(t, plan.TasksByRuleType("CompileC"), 8)
	assert.Len(t, plan.TasksByRuleType("Ld"), 4)
	assert.Len(t, plan.TasksByRuleType("CreateUniversalBinary"), 2)

	mustTask(t, plan, "CompileC", objDir("Hello", "profile", "x86_64")+"/b.o", src("b.c"), "profile", "x86_64", "c")

	binary := productsDir + "/Hello"
	lipo := mustTask(t, plan, "CreateUniversalBinary", binary, "normal", "arm64 x86_64")
	assert.True(t, hasInput(lipo, objDir("Hello", "normal", "arm64")+"/Binary/Hello"))
	assert.True(t, hasInput(lipo, objDir("Hello", "normal", "x86_64")+"/Binary/Hello"))
	mustTask(t, plan, "CreateUniversalBinary", binary+"_profile", "profile", "arm64 x86_64")

	variantSign := mustTask(t, plan, "CodeSign", binary+"_profile")
	productSign := mustTask(t, plan, "CodeSign", binary)
	assert.True(t, hasInput(productSign, variantSign.String()))
	assert.Len(t, plan.TasksByRuleType("CodeSign"), 2)
	assert.Empty(t, plan.Diagnostics())
}

func TestPlan_SourceFileFilters(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Hello",
		ProductType: domain.ProductTypeTool,
		Phases:      []*domain.BuildPhase{sources("a.c", "b_x86.c", "keep_x86.c")},
		Settings: domain.SettingTable{
			domain.SettingExcludedSourceFileNames + "[arch=arm64]": "*_x86.c",
			domain.SettingIncludedSourceFileNames + "[arch=arm64]": "keep_x86.c",
		},
	})
	params := domain.Parameters{Archs: []string{"arm64", "x86_64"}}

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, params, "Hello"))
	require.NoError(t, err)

	assert.Len(t, plan.TasksByRuleType("CompileC"), 5)

	tests := []struct {
		arch     string
		source   string
		compiled bool
	}{
		{arch: "arm64", source: "a.c", compiled: true},
		{arch: "arm64", source: "b_x86.c", compiled: false},
		{arch: "arm64", source: "keep_x86.c", compiled: true},
		{arch: "x86_64", source: "a.c", compiled: true},
		{arch: "x86_64", source: "b_x86.c", compiled: true},
		{arch: "x86_64", source: "keep_x86.c", compiled: true},
	}
	for _, tt := range tests {
		t.Run(tt.arch+"/"+tt.source, func(t *testing.T) {
			object := objDir("Hello", "normal", tt.arch) + "/" + strings.TrimSuffix(tt.source, ".c") + ".o"
			_, ok := plan.TaskByIdentity("CompileC", object, src(tt.source), "normal", tt.arch, "c")
			assert.Equal(t, tt.compiled, ok)
		})
	}
}

func TestPlan_UniversalStaticLibrary(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Lib",
		ProductType: domain.ProductTypeStaticLibrary,
		Phases:      []*domain.BuildPhase{sources("lib.c")},
	})
	params := domain.Parameters{Archs: []string{"x86_64", "arm64"}}

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, params, "Lib"))
	require.NoError(t, err)

	assert.Empty(t, plan.TasksByRuleType("CreateUniversalBinary"))
	intel := objDir("Lib", "normal", "x86_64") + "/Binary/libLib.a"
	arm := objDir("Lib", "normal", "arm64") + "/Binary/libLib.a"
	mustTask(t, plan, "Libtool", intel, "normal", "x86_64")
	mustTask(t, plan, "Libtool", arm, "normal", "arm64")

	merge := mustTask(t, plan, "MergeArchives", productsDir+"/libLib.a", "normal")
	require.GreaterOrEqual(t, len(merge.Inputs), 2)
	assert.Equal(t, []string{intel, arm}, []string{merge.Inputs[0].Name(), merge.Inputs[1].Name()})
}

func TestPlan_FrameworkVariantSigning(t *testing.T) {
	p := setupPlanner(t, nil)
	ws := workspace(&domain.Target{
		Name:        "Kit",
		ProductType: domain.ProductTypeFramework,
		Phases:      []*domain.BuildPhase{sources("Kit.m")},
	})
	params := domain.Parameters{Variants: []string{"normal", "debug"}}

	plan, err := p.Plan(context.Background(), request(ws, params, "Kit"))
	require.NoError(t, err)

	assert.Len(t, plan.TasksByRuleType("CompileC"), 2)
	assert.Len(t, plan.TasksByRuleType("Ld"), 2)
	assert.Empty(t, plan.TasksByRuleType("CreateUniversalBinary"))

	wrapper := productsDir + "/Kit.framework"
	debugSign := mustTask(t, plan, "CodeSign", wrapper+"/Versions/A/Kit_debug")
	bundleSign := mustTask(t, plan, "CodeSign", wrapper)
	assert.Len(t, plan.TasksByRuleType("CodeSign"), 2)
	assert.True(t, hasInput(bundleSign, debugSign.String()), "bundle signing must wait for the debug binary")

	mustTask(t, plan, "Ld", wrapper+"/Versions/A/Kit_debug", "debug", "arm64")
	assert.True(t, hasInput(debugSign, wrapper+"/Versions/A/Kit_debug"))
}

func TestPlan_NonUniqueSourceNames(t *testing.T) {
	target := func(names ...string) *domain.Target {
		return &domain.Target{
			Name:        "Combined",
			ProductType: domain.ProductTypeTool,
			Phases:      []*domain.BuildPhase{sources(names...)},
			Settings:    domain.SettingTable{domain.SettingGenerateMasterObject: "YES"},
		}
	}
	objects := func(plan *domain.BuildPlan) map[string]string {
		out := make(map[string]string)
		for _, task := range plan.TasksByRuleType("CompileC") {
			out[task.RuleInfo[2]] = task.RuleInfo[1]
		}
		return out
	}

	p := setupPlanner(t, nil)
	ws := workspace(target("NonUnique.m", "NonUnique.mm"))
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Combined"))
	require.NoError(t, err)

	forward := objects(plan)
	require.Len(t, forward, 2)
	m, mm := forward[src("NonUnique.m")], forward[src("NonUnique.mm")]
	assert.NotEqual(t, m, mm)
	assert.True(t, strings.HasPrefix(filepath.Base(m), "NonUnique-"), m)
	assert.True(t, strings.HasPrefix(filepath.Base(mm), "NonUnique-"), mm)

	master := mustTask(t, plan, "MasterObjectLink", objDir("Combined", "normal", "arm64")+"/Combined-master.o")
	require.GreaterOrEqual(t, len(master.Inputs), 2)
	assert.Equal(t, m, master.Inputs[0].Name())
	assert.Equal(t, mm, master.Inputs[1].Name())

	ws = workspace(target("NonUnique.mm", "NonUnique.m"))
	plan, err = p.Plan(context.Background(), request(ws, domain.Parameters{}, "Combined"))
	require.NoError(t, err)
	if diff := cmp.Diff(forward, objects(plan)); diff != "" {
		t.Errorf("object paths depend on declaration order (-forward +reversed):\n%s", diff)
	}
}

func TestPlan_TargetOrderIndependence(t *testing.T) {
	ws := workspace(
		&domain.Target{Name: "A", ProductType: domain.ProductTypeTool, Phases: []*domain.BuildPhase{sources("a.c")}},
		&domain.Target{Name: "B", ProductType: domain.ProductTypeTool, Phases: []*domain.BuildPhase{sources("b.c", "c.c")}},
	)
	auxFiles := func(plan *domain.BuildPlan) map[string]string {
		out := make(map[string]string)
		for _, task := range plan.TasksByRuleType("WriteAuxiliaryFile") {
			out[task.String()] = string(task.Contents)
		}
		return out
	}
	taskSet := func(plan *domain.BuildPlan) map[string]bool {
		out := make(map[string]bool)
		for _, id := range identities(plan.Tasks()) {
			out[id] = true
		}
		return out
	}

	p := setupPlanner(t, nil)
	forward, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "A", "B"))
	require.NoError(t, err)
	reversed, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "B", "A"))
	require.NoError(t, err)

	assert.NotEmpty(t, auxFiles(forward))
	if diff := cmp.Diff(auxFiles(forward), auxFiles(reversed)); diff != "" {
		t.Errorf("auxiliary files differ (-forward +reversed):\n%s", diff)
	}
	if diff := cmp.Diff(taskSet(forward), taskSet(reversed)); diff != "" {
		t.Errorf("tasks differ (-forward +reversed):\n%s", diff)
	}
}

func TestPlan_DuplicateTaskAbortsRequest(t *testing.T) {
	files := fstest.MapFS{"App/data.txt": {Data: []byte("data")}}
	copyPhase := func() *domain.BuildPhase {
		return &domain.BuildPhase{
			Type:        domain.PhaseCopyFiles,
			Destination: domain.CopyToAbsolutePath,
			Subpath:     "/usr/share/app",
			Files:       []*domain.BuildFile{{Path: src("data.txt")}},
		}
	}
	ws := workspace(
		&domain.Target{Name: "One", ProductType: domain.ProductTypeAggregate, Phases: []*domain.BuildPhase{copyPhase()}},
		&domain.Target{Name: "Two", ProductType: domain.ProductTypeAggregate, Phases: []*domain.BuildPhase{copyPhase()}},
	)

	p := setupPlanner(t, files)
	_, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "One", "Two"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrDuplicateTask.Error())
}

func TestPlan_SharedOutputWarning(t *testing.T) {
	files := fstest.MapFS{
		"App/one/data.txt": {Data: []byte("one")},
		"App/two/data.txt": {Data: []byte("two")},
	}
	copyPhase := func(dir string) *domain.BuildPhase {
		return &domain.BuildPhase{
			Type:        domain.PhaseCopyFiles,
			Destination: domain.CopyToAbsolutePath,
			Subpath:     "/usr/share/app",
			Files:       []*domain.BuildFile{{Path: src(dir + "/data.txt")}},
		}
	}
	ws := workspace(
		&domain.Target{Name: "One", ProductType: domain.ProductTypeAggregate, Phases: []*domain.BuildPhase{copyPhase("one")}},
		&domain.Target{Name: "Two", ProductType: domain.ProductTypeAggregate, Phases: []*domain.BuildPhase{copyPhase("two")}},
	)

	p := setupPlanner(t, files)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "One", "Two"))
	require.NoError(t, err)

	got := warnings(plan)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "multiple tasks produce '"+installRoot+"/usr/share/app/data.txt'")
}

func TestPlan_RulePrecedence(t *testing.T) {
	rule := &domain.BuildRule{
		Name:         "Custom C",
		FilePatterns: []string{"*.c"},
		Script:       "cc -c \"$INPUT_FILE_PATH\" -o \"$SCRIPT_OUTPUT_FILE_0\"",
		Outputs:      []string{"$(DERIVED_FILE_DIR)/$(INPUT_FILE_BASE).o"},
	}
	ws := workspace(&domain.Target{
		Name:        "Tool",
		ProductType: domain.ProductTypeTool,
		Phases:      []*domain.BuildPhase{sources("main.c", "util.m")},
		Rules:       []*domain.BuildRule{rule},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Tool"))
	require.NoError(t, err)

	derived := tempDir("Tool") + "/DerivedSources/main.o"
	mustTask(t, plan, "RuleScriptExecution", derived, src("main.c"))

	compiles := plan.TasksByRuleType("CompileC")
	require.Len(t, compiles, 1)
	assert.Equal(t, src("util.m"), compiles[0].RuleInfo[2])

	link := mustTask(t, plan, "Ld", productsDir+"/Tool", "normal", "arm64")
	assert.True(t, hasInput(link, derived))
	assert.True(t, hasInput(link, objDir("Tool", "normal", "arm64")+"/util.o"))
}

func TestPlan_RuleNotReappliedToOwnOutput(t *testing.T) {
	rule := &domain.BuildRule{
		FilePatterns: []string{"*.gen"},
		Script:       "generate",
		Outputs:      []string{"$(DERIVED_FILE_DIR)/$(INPUT_FILE_BASE)-out.gen"},
	}
	ws := workspace(&domain.Target{
		Name:        "Gen",
		ProductType: domain.ProductTypeTool,
		Phases:      []*domain.BuildPhase{sources("model.gen")},
		Rules:       []*domain.BuildRule{rule},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Gen"))
	require.NoError(t, err)

	assert.Len(t, plan.TasksByRuleType("RuleScriptExecution"), 1)
	out := tempDir("Gen") + "/DerivedSources/model-out.gen"
	assert.Contains(t, warnings(plan),
		"no rule to process file '"+out+"' of type 'file' for architecture 'arm64'")
}

func TestPlan_MutuallyFeedingRules(t *testing.T) {
	tests := []struct {
		name        string
		oncePerArch bool
	}{
		{name: "once per file"},
		{name: "once per arch", oncePerArch: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := workspace(&domain.Target{
				Name:        "Gen",
				ProductType: domain.ProductTypeTool,
				Phases:      []*domain.BuildPhase{sources("a.x")},
				Rules: []*domain.BuildRule{
					{
						FilePatterns:   []string{"*.x"},
						Script:         "to-y",
						Outputs:        []string{"$(DERIVED_FILE_DIR)/$(INPUT_FILE_BASE).y"},
						RunOncePerArch: tt.oncePerArch,
					},
					{
						FilePatterns:   []string{"*.y"},
						Script:         "to-x",
						Outputs:        []string{"$(DERIVED_FILE_DIR)/$(INPUT_FILE_BASE).x"},
						RunOncePerArch: tt.oncePerArch,
					},
				},
			})

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			p := setupPlanner(t, nil)
			plan, err := p.Plan(ctx, request(ws, domain.Parameters{}, "Gen"))
			require.NoError(t, err)

			assert.Len(t, plan.TasksByRuleType("RuleScriptExecution"), 2)
			derived := tempDir("Gen") + "/DerivedSources/a.x"
			assert.Contains(t, warnings(plan),
				"no rule to process file '"+derived+"' of type 'file' for architecture 'arm64'")
		})
	}
}

func TestPlan_DeploymentOnlyCopy(t *testing.T) {
	files := fstest.MapFS{"App/data.txt": {Data: []byte("data")}}
	ws := workspace(&domain.Target{
		Name:        "Docs",
		ProductType: domain.ProductTypeAggregate,
		Phases: []*domain.BuildPhase{{
			Type:        domain.PhaseCopyFiles,
			Destination: domain.CopyToAbsolutePath,
			Subpath:     "/usr/share/docs",
			Files: []*domain.BuildFile{{
				Path:           src("data.txt"),
				DeploymentOnly: true,
				CodeSignOnCopy: true,
			}},
		}},
	})
	p := setupPlanner(t, files)

	t.Run("build", func(t *testing.T) {
		plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{Action: domain.ActionBuild}, "Docs"))
		require.NoError(t, err)
		assert.Empty(t, plan.TasksByRuleType("Copy"))
		assert.Empty(t, plan.TasksByRuleType("CodeSign"))
	})

	t.Run("install", func(t *testing.T) {
		plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{Action: domain.ActionInstall}, "Docs"))
		require.NoError(t, err)

		dest := installRoot + "/usr/share/docs/data.txt"
		copied := mustTask(t, plan, "Copy", dest, src("data.txt"))
		assert.Len(t, plan.TasksByRuleType("Copy"), 1)

		sign := mustTask(t, plan, "CodeSign", dest)
		assert.Len(t, plan.TasksByRuleType("CodeSign"), 1)
		assert.True(t, hasInput(sign, "Copy "+dest))
		assert.Equal(t, ref("Docs"), copied.Target)
	})
}

func TestPlan_MissingCopyFile(t *testing.T) {
	ws := workspace(
		&domain.Target{
			Name:        "Broken",
			ProductType: domain.ProductTypeAggregate,
			Phases: []*domain.BuildPhase{{
				Type:  domain.PhaseCopyFiles,
				Name:  "Copy Data",
				Files: []*domain.BuildFile{{Path: src("missing.txt")}},
			}},
		},
		&domain.Target{Name: "Fine", ProductType: domain.ProductTypeAggregate},
	)
	p := setupPlanner(t, nil)

	t.Run("abort", func(t *testing.T) {
		_, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Broken", "Fine"))
		require.ErrorIs(t, err, domain.ErrPlanningFailed)
		assert.ErrorContains(t, err, domain.ErrMissingCopyFile.Error())
	})

	t.Run("continue", func(t *testing.T) {
		req := request(ws, domain.Parameters{}, "Broken", "Fine")
		req.ContinueAfterErrors = true

		plan, err := p.Plan(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, plan.HasErrors())
		assert.Empty(t, plan.TasksForTarget(ref("Broken")))
		assert.Len(t, plan.TasksForTarget(ref("Fine")), 2)

		diags := plan.Diagnostics()
		require.NotEmpty(t, diags)
		assert.Equal(t, ref("Broken"), diags[0].Target)
		assert.Contains(t, diags[0].Message, "path=missing.txt")
		assert.Contains(t, diags[0].Message, "phase=Copy Data")
	})
}

func TestPlan_DependentOfFailedTarget(t *testing.T) {
	ws := workspace(
		&domain.Target{
			Name:         "Tool",
			ProductType:  domain.ProductTypeTool,
			Phases:       []*domain.BuildPhase{sources("main.c")},
			Dependencies: []domain.TargetRef{ref("Broken")},
		},
		&domain.Target{
			Name:        "Broken",
			ProductType: domain.ProductTypeAggregate,
			Phases: []*domain.BuildPhase{{
				Type:  domain.PhaseCopyFiles,
				Files: []*domain.BuildFile{{Path: src("missing.txt")}},
			}},
		},
	)
	p := setupPlanner(t, nil)
	req := request(ws, domain.Parameters{}, "Broken", "Tool")
	req.ContinueAfterErrors = true

	plan, err := p.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, plan.TasksForTarget(ref("Broken")))
	assert.NotEmpty(t, plan.TasksForTarget(ref("Tool")))

	var messages []string
	for _, d := range plan.Diagnostics() {
		if d.Target == ref("Tool") && d.Severity == domain.SeverityError {
			messages = append(messages, d.Message)
		}
	}
	assert.Equal(t, []string{"dependency 'App/Broken' failed to plan; its products will be missing"}, messages)
}

func TestPlan_FailureKeepsDiagnostics(t *testing.T) {
	ws := workspace(
		&domain.Target{
			Name:        "Stamp",
			ProductType: domain.ProductTypeAggregate,
			Phases:      []*domain.BuildPhase{{Type: domain.PhaseShellScript, Name: "Stamp", Script: "date > stamp"}},
		},
		&domain.Target{
			Name:        "Broken",
			ProductType: domain.ProductTypeAggregate,
			Phases: []*domain.BuildPhase{{
				Type:  domain.PhaseCopyFiles,
				Files: []*domain.BuildFile{{Path: src("missing.txt")}},
			}},
		},
	)
	p := setupPlanner(t, nil)
	p.SetParallelism(1)

	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Stamp", "Broken"))
	require.ErrorIs(t, err, domain.ErrPlanningFailed)
	require.NotNil(t, plan)

	assert.True(t, plan.HasErrors())
	assert.Contains(t, warnings(plan),
		"run script phase 'Stamp' will run during every build because it does not declare any outputs")
	diags := plan.Diagnostics()
	require.NotEmpty(t, diags)
	assert.Equal(t, ref("Stamp"), diags[0].Target)
}

func TestPlan_Cancelled(t *testing.T) {
	p := setupPlanner(t, nil)
	ws := workspace(&domain.Target{Name: "Hello", ProductType: domain.ProductTypeTool, Phases: []*domain.BuildPhase{sources("a.c")}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Plan(ctx, request(ws, domain.Parameters{}, "Hello"))
	require.ErrorIs(t, err, domain.ErrPlanningCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_HeaderAndSwiftGates(t *testing.T) {
	headers := &domain.BuildPhase{
		Type:  domain.PhaseHeaders,
		Files: []*domain.BuildFile{{Path: src("Kit.h"), Visibility: domain.HeaderPublic}},
	}
	ws := workspace(&domain.Target{
		Name:        "Kit",
		ProductType: domain.ProductTypeFramework,
		Phases:      []*domain.BuildPhase{headers, sources("Kit.m", "Bridge.swift")},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Kit"))
	require.NoError(t, err)

	header := productsDir + "/Kit.framework/Versions/A/Headers/Kit.h"
	copyHeader := mustTask(t, plan, "CpHeader", header, src("Kit.h"))
	assert.True(t, hasInput(copyHeader, "App/Kit begin-compiling"))

	generated := mustTask(t, plan, "Gate", "App/Kit generated-headers")
	assert.True(t, hasInput(generated, "CpHeader "+header))

	compile := mustTask(t, plan, "CompileC", objDir("Kit", "normal", "arm64")+"/Kit.o", src("Kit.m"), "normal", "arm64", "objective-c")
	assert.True(t, hasInput(compile, "App/Kit generated-headers"))
	assert.True(t, hasInput(compile, "App/Kit swift-generated-headers"))

	swift := plan.TasksByRuleType("CompileSwiftSources")
	require.Len(t, swift, 1)
	assert.False(t, hasInput(swift[0], "App/Kit swift-generated-headers"))
}

func TestPlan_SwiftAcrossSourcesPhases(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Tool",
		ProductType: domain.ProductTypeTool,
		Phases:      []*domain.BuildPhase{sources("a.swift"), sources("b.swift")},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Tool"))
	require.NoError(t, err)

	swift := plan.TasksByRuleType("CompileSwiftSources")
	require.Len(t, swift, 1)
	assert.True(t, hasInput(swift[0], src("a.swift")))
	assert.True(t, hasInput(swift[0], src("b.swift")))
	assert.True(t, hasInput(swift[0], objDir("Tool", "normal", "arm64")+"/Tool.SwiftFileList"))
}

func TestPlan_DependencyOrdering(t *testing.T) {
	ws := workspace(
		&domain.Target{
			Name:         "App",
			ProductType:  domain.ProductTypeTool,
			Phases:       []*domain.BuildPhase{sources("main.c")},
			Dependencies: []domain.TargetRef{ref("Lib")},
		},
		&domain.Target{Name: "Lib", ProductType: domain.ProductTypeStaticLibrary, Phases: []*domain.BuildPhase{sources("lib.c")}},
	)

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Lib", "App"))
	require.NoError(t, err)

	entry := mustTask(t, plan, "Gate", "App/App entry")
	assert.True(t, hasInput(entry, "App/Lib end"))
	assert.Equal(t, []domain.TargetRef{ref("Lib")}, plan.TargetDependencies(ref("App")))

	archive := mustTask(t, plan, "Libtool", productsDir+"/libLib.a", "normal", "arm64")
	assert.Equal(t, ref("Lib"), archive.Target)
	signs := plan.TasksByRuleType("CodeSign")
	require.Len(t, signs, 1, "only the tool is signed")
	assert.Equal(t, ref("App"), signs[0].Target)
}

func TestPlan_UnresolvedDependency(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:         "App",
		ProductType:  domain.ProductTypeAggregate,
		Dependencies: []domain.TargetRef{ref("Ghost")},
	})

	p := setupPlanner(t, nil)
	_, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "App"))
	require.ErrorIs(t, err, domain.ErrPlanningFailed)
	assert.ErrorContains(t, err, domain.ErrUnresolvedDependency.Error())
}

func TestPlan_ScriptPhaseWithoutOutputs(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Tool",
		ProductType: domain.ProductTypeTool,
		Phases: []*domain.BuildPhase{
			sources("main.c"),
			{Type: domain.PhaseShellScript, Name: "Stamp", Script: "date > stamp"},
		},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Tool"))
	require.NoError(t, err)

	scriptFile := tempDir("Tool") + "/Script-Phase1.sh"
	script := mustTask(t, plan, "PhaseScriptExecution", "Stamp", scriptFile)
	assert.True(t, script.AlwaysOutOfDate)
	assert.True(t, hasInput(script, "App/Tool phase0-sources-end"))

	aux := mustTask(t, plan, "WriteAuxiliaryFile", scriptFile)
	assert.Equal(t, "#!/bin/sh\ndate > stamp\n", string(aux.Contents))

	assert.Contains(t, warnings(plan),
		"run script phase 'Stamp' will run during every build because it does not declare any outputs")
}

func TestPlan_SharedPrecompiledHeader(t *testing.T) {
	prefixed := func(name string) *domain.Target {
		return &domain.Target{
			Name:        name,
			ProductType: domain.ProductTypeTool,
			Phases:      []*domain.BuildPhase{sources(strings.ToLower(name) + ".c")},
			Settings: domain.SettingTable{
				domain.SettingPrefixHeader:           "Prefix.h",
				domain.SettingPrecompilePrefixHeader: "YES",
			},
		}
	}
	ws := workspace(prefixed("One"), prefixed("Two"))

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "One", "Two"))
	require.NoError(t, err)

	pchs := plan.TasksByRuleType("ProcessPCH")
	require.Len(t, pchs, 1)
	pch := pchs[0]
	assert.True(t, pch.IsGlobal())
	assert.Equal(t, src("Prefix.h"), pch.RuleInfo[2])

	pchPath := pch.RuleInfo[1]
	assert.True(t, strings.HasPrefix(pchPath, "/ws/build/Intermediates/PrecompiledHeaders/Prefix-"), pchPath)

	for _, compile := range plan.TasksByRuleType("CompileC") {
		assert.True(t, hasInput(compile, pchPath), compile.String())
		assert.Contains(t, compile.Command, "-include-pch")
	}
}

func TestPlan_InstallPostprocessing(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Hello",
		ProductType: domain.ProductTypeTool,
		Phases:      []*domain.BuildPhase{sources("main.c")},
		Settings:    domain.SettingTable{"ALTERNATE_PERMISSIONS_FILES": "share/hello.conf", "ALTERNATE_MODE": "0600"},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{Action: domain.ActionInstall}, "Hello"))
	require.NoError(t, err)

	binary := installRoot + "/usr/local/bin/Hello"
	sign := mustTask(t, plan, "CodeSign", binary)
	strip := mustTask(t, plan, "Strip", binary)
	chown := mustTask(t, plan, "SetOwnerAndGroup", "root:wheel", binary)
	chmod := mustTask(t, plan, "SetMode", "u+w,go-w,a+rX", binary)

	assert.True(t, hasInput(strip, sign.String()))
	assert.True(t, hasInput(chown, strip.String()))
	assert.True(t, hasInput(chmod, chown.String()))

	alt := installRoot + "/usr/local/bin/share/hello.conf"
	altChown := mustTask(t, plan, "SetOwnerAndGroup", "root:wheel", alt)
	altChmod := mustTask(t, plan, "SetMode", "0600", alt)
	assert.True(t, hasInput(altChown, chmod.String()))
	assert.Contains(t, altChmod.Command, "0600")

	end := mustTask(t, plan, "Gate", "App/Hello end")
	assert.True(t, hasInput(end, altChmod.String()))
}

func TestPlan_EmbeddedValidationFollowsSigning(t *testing.T) {
	ext := ref("Ext")
	ws := workspace(
		&domain.Target{
			Name:        "Host",
			ProductType: domain.ProductTypeApplication,
			Phases: []*domain.BuildPhase{{
				Type:        domain.PhaseCopyFiles,
				Destination: domain.CopyToPlugIns,
				Files:       []*domain.BuildFile{{ProductOf: &ext, CodeSignOnCopy: true}},
			}},
			Dependencies: []domain.TargetRef{ext},
		},
		&domain.Target{Name: "Ext", ProductType: domain.ProductTypeAppExtension, Phases: []*domain.BuildPhase{sources("main.m")}},
	)

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Ext", "Host"))
	require.NoError(t, err)

	wrapper := productsDir + "/Host.app"
	embedded := wrapper + "/Contents/PlugIns/Ext.appex"
	mustTask(t, plan, "Copy", embedded, productsDir+"/Ext.appex")
	mustTask(t, plan, "CodeSign", embedded)

	containerSign := mustTask(t, plan, "CodeSign", wrapper)
	validate := mustTask(t, plan, "ValidateEmbeddedBinary", embedded)
	assert.True(t, hasInput(validate, containerSign.String()))
	assert.False(t, hasInput(containerSign, validate.String()))

	var ordered bool
	for _, o := range plan.Orderings() {
		if o.Before == containerSign && o.After == validate {
			ordered = true
		}
	}
	assert.True(t, ordered, "validation must be ordered after the container signature")
}

func TestPlan_DirectoryCreationOrdering(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Hello",
		ProductType: domain.ProductTypeTool,
		Phases:      []*domain.BuildPhase{sources("main.c")},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Hello"))
	require.NoError(t, err)

	objRoot := mustTask(t, plan, "CreateBuildDirectory", "/ws/build/Intermediates")
	symRoot := mustTask(t, plan, "CreateBuildDirectory", "/ws/build/Products")
	assert.True(t, objRoot.IsGlobal())
	assert.Empty(t, objRoot.Inputs)

	temp := mustTask(t, plan, "MkDir", tempDir("Hello"))
	assert.True(t, hasInput(temp, objRoot.String()))
	products := mustTask(t, plan, "MkDir", productsDir)
	assert.True(t, hasInput(products, symRoot.String()))

	entry := mustTask(t, plan, "Gate", "App/Hello entry")
	assert.True(t, hasInput(entry, temp.String()))
	assert.True(t, hasInput(entry, products.String()))

	// Global tasks come first in plan order.
	tasks := plan.Tasks()
	assert.True(t, tasks[0].IsGlobal())
	assert.False(t, tasks[len(tasks)-1].IsGlobal())
}

func TestPlan_ProductContent(t *testing.T) {
	files := fstest.MapFS{
		"App/Info.plist": {Data: []byte("<plist/>")},
		"App/Icon.png":   {Data: []byte("png")},
	}
	ws := workspace(
		&domain.Target{
			Name:        "Viewer",
			ProductType: domain.ProductTypeApplication,
			Settings:    domain.SettingTable{domain.SettingInfoPlistFile: "Info.plist"},
			Phases: []*domain.BuildPhase{
				sources("main.m"),
				{Type: domain.PhaseResources, Files: []*domain.BuildFile{{Path: src("Info.plist")}, {Path: src("Icon.png")}}},
			},
		},
		&domain.Target{
			Name:        "Kit",
			ProductType: domain.ProductTypeFramework,
			Settings:    domain.SettingTable{domain.SettingDefinesModule: "YES"},
			Phases:      []*domain.BuildPhase{sources("Kit.m")},
		},
	)

	p := setupPlanner(t, files)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Viewer", "Kit"))
	require.NoError(t, err)

	plistPath := productsDir + "/Viewer.app/Contents/Info.plist"
	plist := mustTask(t, plan, "ProcessInfoPlistFile", plistPath, src("Info.plist"))
	assert.True(t, hasInput(plist, "App/Viewer begin-compiling"))
	var readers []string
	for _, task := range plan.Tasks() {
		if hasInput(task, src("Info.plist")) {
			readers = append(readers, task.RuleType())
		}
	}
	assert.Equal(t, []string{"ProcessInfoPlistFile"}, readers, "the Info.plist is not copied as a resource")

	var misplaced []string
	for _, w := range warnings(plan) {
		if strings.Contains(w, "should not be a member of") {
			misplaced = append(misplaced, w)
		}
	}
	require.Len(t, misplaced, 1)
	assert.Contains(t, misplaced[0], "Info.plist file '"+src("Info.plist")+"'")

	end := mustTask(t, plan, "Gate", "App/Viewer end")
	assert.True(t, hasInput(end, "ProcessInfoPlistFile "+plistPath))

	modulemap := productsDir + "/Kit.framework/Versions/A/Modules/module.modulemap"
	writer := mustTask(t, plan, "WriteAuxiliaryFile", modulemap)
	assert.Equal(t, "framework module Kit {\n  umbrella header \"Kit.h\"\n\n  export *\n  module * { export * }\n}\n",
		string(writer.Contents))
	headers := mustTask(t, plan, "Gate", "App/Kit generated-headers")
	assert.True(t, hasInput(headers, "WriteAuxiliaryFile "+modulemap))
}

func TestPlan_ExternalTarget(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Legacy",
		ProductType: domain.ProductTypeExternal,
		External:    &domain.ExternalTool{Tool: "make", Args: "all", WorkingDir: "/ws/App/legacy"},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Legacy"))
	require.NoError(t, err)

	ext := mustTask(t, plan, "ExternalBuildToolExecution", "App/Legacy")
	assert.True(t, ext.AlwaysOutOfDate)
	assert.True(t, ext.UnsafeToSkip)
	assert.Equal(t, []string{"make", "all"}, ext.Command)
	assert.Equal(t, "/ws/App/legacy", ext.WorkingDir)
	assert.Nil(t, ext.Env)

	end := mustTask(t, plan, "Gate", "App/Legacy end")
	assert.True(t, hasInput(end, ext.String()))
}

func TestPlan_RezPhase(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Hello",
		ProductType: domain.ProductTypeTool,
		Phases: []*domain.BuildPhase{
			sources("main.c"),
			{Type: domain.PhaseRez, Files: []*domain.BuildFile{{Path: src("Menu.r")}}},
		},
	})
	params := domain.Parameters{Archs: []string{"arm64", "x86_64"}, Variants: []string{"normal", "profile"}}

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, params, "Hello"))
	require.NoError(t, err)

	assert.Len(t, plan.TasksByRuleType("Rez"), 2, "resources are compiled once per arch for the first variant")
	arm := objDir("Hello", "normal", "arm64") + "/ResourceManagerResources/Menu.rsrc"
	intel := objDir("Hello", "normal", "x86_64") + "/ResourceManagerResources/Menu.rsrc"
	mustTask(t, plan, "Rez", arm, src("Menu.r"), "arm64")
	mustTask(t, plan, "Rez", intel, src("Menu.r"), "x86_64")

	merge := mustTask(t, plan, "ResMergerProduct", productsDir+"/Hello.rsrc")
	assert.True(t, hasInput(merge, arm))
	assert.True(t, hasInput(merge, intel))
}

func TestPlan_DebugSymbols(t *testing.T) {
	ws := workspace(&domain.Target{
		Name:        "Hello",
		ProductType: domain.ProductTypeTool,
		Settings:    domain.SettingTable{domain.SettingDebugInformationFormat: "dwarf-with-dsym"},
		Phases:      []*domain.BuildPhase{sources("main.c")},
	})

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Hello"))
	require.NoError(t, err)

	binary := productsDir + "/Hello"
	sign := mustTask(t, plan, "CodeSign", binary)
	dsym := mustTask(t, plan, "GenerateDSYMFile", productsDir+"/Hello.dSYM", binary)
	assert.True(t, hasInput(dsym, sign.String()), "symbols are extracted from the signed binary")
	assert.True(t, hasInput(dsym, binary))
	assert.Empty(t, plan.TasksByRuleType("Strip"), "only installed products are stripped")

	end := mustTask(t, plan, "Gate", "App/Hello end")
	assert.True(t, hasInput(end, "GenerateDSYMFile "+productsDir+"/Hello.dSYM"))
}

func TestPlan_WeakStaticLibrary(t *testing.T) {
	ws := workspace(
		&domain.Target{
			Name:        "Tool",
			ProductType: domain.ProductTypeTool,
			Phases: []*domain.BuildPhase{
				sources("main.c"),
				{Type: domain.PhaseFrameworks, Files: []*domain.BuildFile{{ProductOf: &domain.TargetRef{Project: "App", Name: "Lib"}, WeakLink: true}}},
			},
			Dependencies: []domain.TargetRef{ref("Lib")},
		},
		&domain.Target{Name: "Lib", ProductType: domain.ProductTypeStaticLibrary, Phases: []*domain.BuildPhase{sources("lib.c")}},
	)

	p := setupPlanner(t, nil)
	plan, err := p.Plan(context.Background(), request(ws, domain.Parameters{}, "Lib", "Tool"))
	require.NoError(t, err)

	assert.Contains(t, strings.Join(warnings(plan), "\n"),
		"product 'App/Lib' of type 'static-library' cannot be weakly linked and is linked normally")

	link := mustTask(t, plan, "Ld", productsDir+"/Tool", "normal", "arm64")
	assert.Contains(t, link.Command, productsDir+"/libLib.a")
	assert.NotContains(t, link.Command, "-weak_library")
}
