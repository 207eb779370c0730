// Package config provides the YAML project model loader for draft.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ProjectLoader over YAML files.
type Loader struct {
	FS     ports.FileSystem
	Logger ports.Logger
}

var _ ports.ProjectLoader = (*Loader)(nil)

// NewLoader creates a new Loader reading through fsys.
func NewLoader(fsys ports.FileSystem, logger ports.Logger) *Loader {
	return &Loader{FS: fsys, Logger: logger}
}

// Mode represents how the project model was discovered.
type Mode string

const (
	// ModeWorkspace indicates that a draft.work.yaml was found.
	ModeWorkspace Mode = "workspace"
	// ModeStandalone indicates that only a single draft.yaml was found.
	ModeStandalone Mode = "standalone"
)

var (
	validProjectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	validTargetNameRegex  = regexp.MustCompile(`^[a-zA-Z0-9 _.-]+$`)
)

// Load discovers the configuration from cwd upwards and returns the workspace.
func (l *Loader) Load(cwd string) (*domain.Workspace, error) {
	configPath, mode, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeStandalone:
		return l.loadStandalone(configPath)
	case ModeWorkspace:
		return l.loadWorkfile(configPath)
	default:
		return nil, zerr.With(domain.ErrConfigNotFound, "mode", mode)
	}
}

func (l *Loader) findConfiguration(cwd string) (string, Mode, error) {
	currentDir := filepath.Clean(cwd)
	var standaloneCandidate string

	for {
		workfilePath := filepath.Join(currentDir, domain.WorkFileName)
		if l.FS.Exists(workfilePath) {
			return workfilePath, ModeWorkspace, nil
		}

		if standaloneCandidate == "" {
			projectPath := filepath.Join(currentDir, domain.ProjectFileName)
			if l.FS.Exists(projectPath) {
				standaloneCandidate = projectPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	if standaloneCandidate != "" {
		return standaloneCandidate, ModeStandalone, nil
	}
	return "", "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) loadStandalone(configPath string) (*domain.Workspace, error) {
	dir := filepath.Dir(configPath)
	project, err := l.loadProject(configPath, filepath.Base(dir))
	if err != nil {
		return nil, err
	}
	return &domain.Workspace{Root: dir, Projects: []*domain.Project{project}}, nil
}

func (l *Loader) loadWorkfile(configPath string) (*domain.Workspace, error) {
	var workfile Workfile
	if err := l.readAndUnmarshalYAML(configPath, &workfile); err != nil {
		return nil, err
	}

	ws := &domain.Workspace{
		Root:     resolveRoot(configPath, workfile.Root),
		Settings: settingTable(workfile.Settings),
	}

	projectPaths, err := l.resolveProjectPaths(ws.Root, workfile.Projects)
	if err != nil {
		return nil, err
	}

	projectNames := make(map[string]string)
	for _, projectPath := range projectPaths {
		relPath, _ := filepath.Rel(ws.Root, projectPath)

		projectFile := filepath.Join(projectPath, domain.ProjectFileName)
		if !l.FS.Exists(projectFile) {
			l.Logger.Warn(fmt.Sprintf("%s missing in project %s, skipping", domain.ProjectFileName, relPath))
			continue
		}

		project, err := l.loadProject(projectFile, "")
		if err != nil {
			return nil, zerr.With(err, "directory", relPath)
		}

		if existingPath, exists := projectNames[project.Name]; exists {
			err := zerr.With(domain.ErrDuplicateProjectName, "project_name", project.Name)
			err = zerr.With(err, "first_occurrence", existingPath)
			return nil, zerr.With(err, "duplicate_at", relPath)
		}
		projectNames[project.Name] = relPath
		ws.Projects = append(ws.Projects, project)
	}

	return ws, nil
}

func (l *Loader) resolveProjectPaths(workspaceRoot string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	for _, pattern := range patterns {
		matches, err := l.FS.Glob(filepath.Join(workspaceRoot, pattern))
		if err != nil {
			return nil, zerr.Wrap(err, "glob pattern failed: "+pattern)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			paths = append(paths, match)
		}
	}

	slices.Sort(paths)
	return paths, nil
}

// loadProject reads a project file. defaultName is used when the file declares no
// project name; an empty defaultName makes the name mandatory.
func (l *Loader) loadProject(configPath, defaultName string) (*domain.Project, error) {
	var pf Projectfile
	if err := l.readAndUnmarshalYAML(configPath, &pf); err != nil {
		return nil, err
	}

	name := pf.Project
	if name == "" {
		name = defaultName
	}
	if name == "" {
		return nil, zerr.With(domain.ErrMissingProjectName, "path", configPath)
	}
	if !validProjectNameRegex.MatchString(name) {
		return nil, zerr.With(zerr.With(domain.ErrInvalidProjectName, "project_name", name), "path", configPath)
	}

	dir := filepath.Dir(configPath)
	project := &domain.Project{
		Name:           name,
		Dir:            dir,
		Settings:       settingTable(pf.Settings),
		Configurations: configurationTables(pf.Configurations),
	}

	seen := make(map[string]bool, len(pf.Targets))
	for _, dto := range pf.Targets {
		if dto == nil {
			continue
		}
		if seen[dto.Name] {
			err := zerr.With(domain.ErrDuplicateTargetName, "target", dto.Name)
			return nil, zerr.With(err, "project", name)
		}
		seen[dto.Name] = true

		target, err := buildTarget(name, dir, dto)
		if err != nil {
			return nil, zerr.With(err, "project", name)
		}
		project.Targets = append(project.Targets, target)
	}

	return project, nil
}

func buildTarget(projectName, dir string, dto *TargetDTO) (*domain.Target, error) {
	if !validTargetNameRegex.MatchString(dto.Name) {
		return nil, zerr.With(domain.ErrInvalidTargetName, "target", dto.Name)
	}

	productType, err := domain.ParseProductType(dto.Type)
	if err != nil {
		return nil, zerr.With(err, "target", dto.Name)
	}

	target := &domain.Target{
		Name:           dto.Name,
		ProductType:    productType,
		Settings:       settingTable(dto.Settings),
		Configurations: configurationTables(dto.Configurations),
	}

	for _, dep := range dto.Dependencies {
		target.Dependencies = append(target.Dependencies, domain.ParseTargetRef(dep, projectName))
	}

	for i, r := range dto.Rules {
		rule, err := buildRule(r)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "target", dto.Name), "rule", i)
		}
		target.Rules = append(target.Rules, rule)
	}

	for i, p := range dto.Phases {
		phase, err := buildPhase(projectName, dir, p)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "target", dto.Name), "phase", i)
		}
		target.Phases = append(target.Phases, phase)
	}

	if dto.External != nil {
		passEnv := true
		if dto.External.PassEnv != nil {
			passEnv = *dto.External.PassEnv
		}
		target.External = &domain.ExternalTool{
			Tool:       dto.External.Tool,
			Args:       dto.External.Args,
			WorkingDir: resolvePath(dir, dto.External.WorkingDir),
			PassEnv:    passEnv,
		}
		if target.External.WorkingDir == "" {
			target.External.WorkingDir = dir
		}
	}

	return target, nil
}

func buildRule(dto *RuleDTO) (*domain.BuildRule, error) {
	if len(dto.Patterns) == 0 && dto.FileType == "" {
		return nil, zerr.With(domain.ErrInvalidBuildRule, "reason", "rule needs patterns or a file type")
	}
	if dto.Tool == "" && len(dto.Outputs) == 0 {
		return nil, zerr.With(domain.ErrInvalidBuildRule, "reason", "script rule declares no outputs")
	}

	rule := &domain.BuildRule{
		Name:           dto.Name,
		FilePatterns:   dto.Patterns,
		FileType:       domain.FileType(dto.FileType),
		Script:         dto.Script,
		ToolID:         dto.Tool,
		Outputs:        dto.Outputs,
		InputFiles:     dto.Inputs,
		OutputFileType: domain.FileType(dto.OutputFileType),
		RunOncePerArch: true,
	}
	if dto.RunOncePerArch != nil {
		rule.RunOncePerArch = *dto.RunOncePerArch
	}
	return rule, nil
}

func buildPhase(projectName, dir string, dto *PhaseDTO) (*domain.BuildPhase, error) {
	phaseType, err := domain.ParsePhaseType(dto.Type)
	if err != nil {
		return nil, err
	}

	phase := &domain.BuildPhase{
		Type:            phaseType,
		Name:            dto.Name,
		DeploymentOnly:  dto.DeploymentOnly,
		Subpath:         dto.Subpath,
		Shell:           dto.Shell,
		Script:          dto.Script,
		InputPaths:      dto.Inputs,
		OutputPaths:     dto.Outputs,
		AlwaysOutOfDate: dto.AlwaysOutOfDate,
	}

	if phaseType == domain.PhaseCopyFiles {
		dest, err := domain.ParseCopyDestination(dto.Destination)
		if err != nil {
			return nil, err
		}
		phase.Destination = dest
	}

	for _, f := range dto.Files {
		if f == nil {
			continue
		}
		file, err := buildFile(projectName, dir, f)
		if err != nil {
			return nil, err
		}
		phase.Files = append(phase.Files, file)
	}
	return phase, nil
}

func buildFile(projectName, dir string, dto *FileDTO) (*domain.BuildFile, error) {
	file := &domain.BuildFile{
		FileType:       domain.FileType(dto.FileType),
		CompilerFlags:  dto.Flags,
		Settings:       settingTable(dto.Settings),
		WeakLink:       dto.Weak,
		CodeSignOnCopy: dto.SignOnCopy,
		Visibility:     domain.HeaderVisibility(dto.Visibility),
		DeploymentOnly: dto.DeploymentOnly,
	}

	switch {
	case dto.Product != "":
		ref := domain.ParseTargetRef(dto.Product, projectName)
		file.ProductOf = &ref
		file.LinkName = ref.Name
	case dto.Link != "":
		file.LinkName = dto.Link
	case dto.Path != "":
		file.Path = resolvePath(dir, dto.Path)
	default:
		return nil, zerr.New("build file needs a path, link or product")
	}

	switch file.Visibility {
	case "":
		file.Visibility = domain.HeaderProject
	case domain.HeaderProject, domain.HeaderPublic, domain.HeaderPrivate:
	default:
		return nil, zerr.With(zerr.New("invalid header visibility"), "visibility", dto.Visibility)
	}
	return file, nil
}

// resolvePath makes p absolute relative to dir. Paths starting with a setting
// reference are left for the planner to expand.
func resolvePath(dir, p string) string {
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "$"), filepath.IsAbs(p):
		return p
	default:
		return filepath.Join(dir, p)
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func settingTable(values map[string]SettingValue) domain.SettingTable {
	if len(values) == 0 {
		return nil
	}
	table := make(domain.SettingTable, len(values))
	for k, v := range values {
		table[k] = string(v)
	}
	return table
}

func configurationTables(configs map[string]map[string]SettingValue) map[string]domain.SettingTable {
	if len(configs) == 0 {
		return nil
	}
	out := make(map[string]domain.SettingTable, len(configs))
	for name, values := range configs {
		out[name] = settingTable(values)
	}
	return out
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func (l *Loader) readAndUnmarshalYAML(configPath string, target any) error {
	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}
	return nil
}
