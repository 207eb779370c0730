package settings

import (
	_ "embed"
	"maps"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"go.trai.ch/draft/internal/core/domain"
	"go.trai.ch/draft/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type defaultsFile struct {
	Settings     domain.SettingTable            `yaml:"settings"`
	ProductTypes map[string]domain.SettingTable `yaml:"productTypes"`
}

// Resolver builds target scopes from the built-in defaults and the project model.
type Resolver struct {
	base         domain.SettingTable
	productTypes map[domain.ProductType]domain.SettingTable
}

var _ ports.ScopeResolver = (*Resolver)(nil)

// NewResolver creates a resolver seeded with the built-in defaults.
func NewResolver() (*Resolver, error) {
	return newResolver(defaultsYAML)
}

func newResolver(data []byte) (*Resolver, error) {
	var f defaultsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, zerr.Wrap(err, domain.ErrSettingsParseFailed.Error())
	}
	r := &Resolver{
		base:         f.Settings,
		productTypes: make(map[domain.ProductType]domain.SettingTable, len(f.ProductTypes)),
	}
	for name, table := range f.ProductTypes {
		pt, err := domain.ParseProductType(name)
		if err != nil {
			return nil, zerr.With(domain.ErrSettingsParseFailed, "product_type", name)
		}
		r.productTypes[pt] = table
	}
	return r, nil
}

// Resolve stacks, from lowest to highest precedence: the defaults, the product type
// defaults, the request context, the workspace, the project, the project configuration,
// the target, the target configuration and finally the request overrides.
func (r *Resolver) Resolve(
	ws *domain.Workspace, project *domain.Project, target *domain.Target, params domain.Parameters,
) (ports.Scope, error) {
	if project == nil || target == nil {
		return nil, domain.ErrTargetNotFound
	}

	configuration := params.Configuration
	if configuration == "" {
		configuration = domain.DefaultConfiguration
	}
	platform := params.Platform
	if platform == "" {
		platform = domain.DefaultPlatform
	}
	action := params.Action
	if action == "" {
		action = domain.ActionBuild
	}

	request := domain.SettingTable{
		domain.SettingAction:        string(action),
		domain.SettingConfiguration: configuration,
		domain.SettingPlatformName:  platform,
		domain.SettingProjectName:   project.Name,
		domain.SettingProjectDir:    project.Dir,
		domain.SettingSrcRoot:       project.Dir,
		domain.SettingTargetName:    target.Name,
		domain.SettingProductType:   string(target.ProductType),
		domain.SettingArenaRoot:     arenaRoot(ws, project, params),
	}

	overrides := domain.SettingTable{}
	if len(params.Archs) > 0 {
		overrides[domain.SettingArchs] = shellquote.Join(params.Archs...)
	}
	if len(params.Variants) > 0 {
		overrides[domain.SettingBuildVariants] = shellquote.Join(params.Variants...)
	}
	maps.Copy(overrides, params.Overrides)

	var workspaceSettings domain.SettingTable
	if ws != nil {
		workspaceSettings = ws.Settings
	}

	bindings := map[string]string{
		domain.ConditionPlatform: platform,
		domain.ConditionConfig:   configuration,
		domain.ConditionAction:   string(action),
	}

	return NewScope(bindings,
		r.base,
		r.productTypes[target.ProductType],
		request,
		workspaceSettings,
		project.Settings,
		project.Configurations[configuration],
		target.Settings,
		target.Configurations[configuration],
		overrides,
	), nil
}

func arenaRoot(ws *domain.Workspace, project *domain.Project, params domain.Parameters) string {
	if params.ArenaRoot != "" {
		return filepath.Clean(params.ArenaRoot)
	}
	if ws != nil && ws.Root != "" {
		return filepath.Join(ws.Root, domain.DefaultArenaDirName)
	}
	return filepath.Join(project.Dir, domain.DefaultArenaDirName)
}
