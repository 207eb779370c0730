package config_test

import (
	"testing"
	"testing/fstest"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/draft/internal/adapters/config"
	"go.trai.ch/draft/internal/adapters/fs"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const viewerProject = `
version: "1"
project: App
settings:
  OTHER_CFLAGS: [-Wall, "$(inherited)", "-DNAME=two words"]
configurations:
  Release:
    GCC_OPTIMIZATION_LEVEL: s
targets:
  - name: Viewer
    type: application
    dependencies: [Core, Shared/Util]
    settings:
      INFOPLIST_FILE: Info.plist
    rules:
      - name: Protobuf
        patterns: ["*.proto"]
        script: protoc --c_out=$(DERIVED_FILE_DIR) $(INPUT_FILE_PATH)
        outputs: ["$(DERIVED_FILE_DIR)/$(INPUT_FILE_BASE).pb.c"]
        runOncePerArch: false
    phases:
      - type: sources
        files:
          - Sources/main.m
          - path: Sources/fast.c
            flags: [-O3]
            settings:
              GCC_OPTIMIZATION_LEVEL: "3"
      - type: frameworks
        files:
          - link: z
          - product: Core
            weak: true
      - type: copy-files
        destination: plugins
        deploymentOnly: true
        files:
          - path: PlugIns/Extra.appex
            signOnCopy: true
      - type: shell-script
        name: Stamp
        script: date > $(DERIVED_FILE_DIR)/stamp
        outputs: ["$(DERIVED_FILE_DIR)/stamp"]
  - name: Core
    type: static-library
    phases:
      - type: headers
        files:
          - path: include/core.h
            visibility: public
`

func newLoader(t *testing.T, files fstest.MapFS) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(fs.NewMapFS("/ws", files), log)
}

func TestLoad_Standalone(t *testing.T) {
	loader := newLoader(t, fstest.MapFS{
		"app/draft.yaml":     {Data: []byte(viewerProject)},
		"app/Sources/main.m": {Data: []byte("int main(void) { return 0; }\n")},
	})

	ws, err := loader.Load("/ws/app/Sources")
	require.NoError(t, err)

	assert.Equal(t, "/ws/app", ws.Root)
	require.Len(t, ws.Projects, 1)
	project := ws.Projects[0]
	assert.Equal(t, "App", project.Name)
	assert.Equal(t, "/ws/app", project.Dir)
	words, err := shellquote.Split(project.Settings["OTHER_CFLAGS"])
	require.NoError(t, err)
	assert.Equal(t, []string{"-Wall", "$(inherited)", "-DNAME=two words"}, words)
	assert.Equal(t, "s", project.Configurations["Release"]["GCC_OPTIMIZATION_LEVEL"])

	require.Len(t, project.Targets, 2)
	viewer := project.Targets[0]
	assert.Equal(t, domain.ProductTypeApplication, viewer.ProductType)
	assert.Equal(t, []domain.TargetRef{
		{Project: "App", Name: "Core"},
		{Project: "Shared", Name: "Util"},
	}, viewer.Dependencies)

	require.Len(t, viewer.Rules, 1)
	rule := viewer.Rules[0]
	assert.Equal(t, []string{"*.proto"}, rule.FilePatterns)
	assert.False(t, rule.RunOncePerArch)
	assert.True(t, rule.Matches("/ws/app/msg.proto", domain.FileTypeUnknown))

	require.Len(t, viewer.Phases, 4)
	sources := viewer.Phases[0]
	assert.Equal(t, domain.PhaseSources, sources.Type)
	require.Len(t, sources.Files, 2)
	assert.Equal(t, "/ws/app/Sources/main.m", sources.Files[0].Path)
	assert.Equal(t, domain.HeaderProject, sources.Files[0].Visibility)
	assert.Equal(t, []string{"-O3"}, sources.Files[1].CompilerFlags)
	assert.Equal(t, "3", sources.Files[1].Settings["GCC_OPTIMIZATION_LEVEL"])

	frameworks := viewer.Phases[1]
	assert.Equal(t, "z", frameworks.Files[0].LinkName)
	require.NotNil(t, frameworks.Files[1].ProductOf)
	assert.Equal(t, domain.TargetRef{Project: "App", Name: "Core"}, *frameworks.Files[1].ProductOf)
	assert.True(t, frameworks.Files[1].WeakLink)

	copyFiles := viewer.Phases[2]
	assert.Equal(t, domain.CopyToPlugIns, copyFiles.Destination)
	assert.True(t, copyFiles.DeploymentOnly)
	assert.True(t, copyFiles.Files[0].CodeSignOnCopy)

	script := viewer.Phases[3]
	assert.Equal(t, "Stamp", script.DisplayName())
	assert.Equal(t, []string{"$(DERIVED_FILE_DIR)/stamp"}, script.OutputPaths)

	core := project.Targets[1]
	assert.Equal(t, domain.HeaderPublic, core.Phases[0].Files[0].Visibility)
}

func TestLoad_StandaloneDefaultsProjectName(t *testing.T) {
	loader := newLoader(t, fstest.MapFS{
		"tool/draft.yaml": {Data: []byte("targets:\n  - name: tool\n    type: tool\n")},
	})

	ws, err := loader.Load("/ws/tool")
	require.NoError(t, err)
	assert.Equal(t, "tool", ws.Projects[0].Name)
}

func TestLoad_Workspace(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("draft.yaml missing in project libs/empty, skipping").Times(1)

	loader := config.NewLoader(fs.NewMapFS("/ws", fstest.MapFS{
		"draft.work.yaml": {Data: []byte(`
projects: ["libs/*", "app"]
settings:
  ARCHS: [arm64, x86_64]
`)},
		"app/draft.yaml":       {Data: []byte(viewerProject)},
		"libs/core/draft.yaml": {Data: []byte("project: Core\ntargets:\n  - name: Core\n    type: framework\n")},
		"libs/empty/README":    {Data: []byte("nothing here\n")},
	}), log)

	ws, err := loader.Load("/ws/libs/core")
	require.NoError(t, err)

	assert.Equal(t, "/ws", ws.Root)
	assert.Equal(t, "arm64 x86_64", ws.Settings["ARCHS"])
	require.Len(t, ws.Projects, 2)
	assert.Equal(t, "App", ws.Projects[0].Name)
	assert.Equal(t, "Core", ws.Projects[1].Name)

	_, target, ok := ws.Lookup(domain.TargetRef{Project: "Core", Name: "Core"})
	require.True(t, ok)
	assert.Equal(t, domain.ProductTypeFramework, target.ProductType)
}

func TestLoad_DuplicateProjectName(t *testing.T) {
	loader := newLoader(t, fstest.MapFS{
		"draft.work.yaml":       {Data: []byte("projects: [\"packages/*\"]\n")},
		"packages/a/draft.yaml": {Data: []byte("project: myapp\n")},
		"packages/b/draft.yaml": {Data: []byte("project: myapp\n")},
	})

	_, err := loader.Load("/ws")
	require.Error(t, err)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T: %v", err, err)
	assert.Contains(t, err.Error(), "duplicate project name")
	meta := zErr.Metadata()
	assert.Equal(t, "myapp", meta["project_name"])
	assert.Equal(t, "packages/a", meta["first_occurrence"])
	assert.Equal(t, "packages/b", meta["duplicate_at"])
}

func TestLoad_NotFound(t *testing.T) {
	loader := newLoader(t, fstest.MapFS{"src/main.c": {Data: []byte("")}})

	_, err := loader.Load("/ws/src")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find draft.yaml or draft.work.yaml")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		project string
		want    string
	}{
		{
			name:    "malformed yaml",
			project: "targets: [",
			want:    "failed to parse config file",
		},
		{
			name:    "unknown product type",
			project: "targets:\n  - name: A\n    type: kext\n",
			want:    "invalid product type",
		},
		{
			name:    "unknown phase type",
			project: "targets:\n  - name: A\n    type: tool\n    phases:\n      - type: compile\n",
			want:    "invalid build phase type",
		},
		{
			name:    "unknown copy destination",
			project: "targets:\n  - name: A\n    type: tool\n    phases:\n      - type: copy-files\n        destination: moon\n",
			want:    "invalid copy destination",
		},
		{
			name:    "rule without matcher",
			project: "targets:\n  - name: A\n    type: tool\n    rules:\n      - script: echo hi\n        outputs: [x]\n",
			want:    "invalid build rule",
		},
		{
			name:    "script rule without outputs",
			project: "targets:\n  - name: A\n    type: tool\n    rules:\n      - patterns: [\"*.x\"]\n        script: echo hi\n",
			want:    "invalid build rule",
		},
		{
			name:    "duplicate target",
			project: "targets:\n  - name: A\n    type: tool\n  - name: A\n    type: tool\n",
			want:    "duplicate target name",
		},
		{
			name:    "invalid target name",
			project: "targets:\n  - name: A/B\n    type: tool\n",
			want:    "target name can only contain",
		},
		{
			name:    "setting map value",
			project: "settings:\n  A: {b: c}\n",
			want:    "failed to parse config file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newLoader(t, fstest.MapFS{"p/draft.yaml": {Data: []byte(tt.project)}})

			_, err := loader.Load("/ws/p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ExternalTarget(t *testing.T) {
	loader := newLoader(t, fstest.MapFS{
		"ext/draft.yaml": {Data: []byte(`
project: Ext
targets:
  - name: Make
    type: external
    external:
      tool: /usr/bin/make
      args: $(ACTION)
      workingDir: native
      passEnv: false
`)},
	})

	ws, err := loader.Load("/ws/ext")
	require.NoError(t, err)

	ext := ws.Projects[0].Targets[0].External
	require.NotNil(t, ext)
	assert.Equal(t, "/usr/bin/make", ext.Tool)
	assert.Equal(t, "$(ACTION)", ext.Args)
	assert.Equal(t, "/ws/ext/native", ext.WorkingDir)
	assert.False(t, ext.PassEnv)
}
