package config

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Workfile represents the structure of the draft.work.yaml configuration file.
type Workfile struct {
	Version  string                  `yaml:"version"`
	Root     string                  `yaml:"root"`
	Settings map[string]SettingValue `yaml:"settings"`
	Projects []string                `yaml:"projects"`
}

// Projectfile represents the structure of the draft.yaml configuration file.
type Projectfile struct {
	Version        string                             `yaml:"version"`
	Project        string                             `yaml:"project"`
	Settings       map[string]SettingValue            `yaml:"settings"`
	Configurations map[string]map[string]SettingValue `yaml:"configurations"`
	Targets        []*TargetDTO                       `yaml:"targets"`
}

// TargetDTO represents a target definition in the configuration.
type TargetDTO struct {
	Name           string                             `yaml:"name"`
	Type           string                             `yaml:"type"`
	Settings       map[string]SettingValue            `yaml:"settings"`
	Configurations map[string]map[string]SettingValue `yaml:"configurations"`
	Dependencies   []string                           `yaml:"dependencies"`
	Rules          []*RuleDTO                         `yaml:"rules"`
	Phases         []*PhaseDTO                        `yaml:"phases"`
	External       *ExternalDTO                       `yaml:"external"`
}

// RuleDTO represents a build rule.
type RuleDTO struct {
	Name           string   `yaml:"name"`
	Patterns       []string `yaml:"patterns"`
	FileType       string   `yaml:"fileType"`
	Script         string   `yaml:"script"`
	Tool           string   `yaml:"tool"`
	Outputs        []string `yaml:"outputs"`
	Inputs         []string `yaml:"inputs"`
	OutputFileType string   `yaml:"outputFileType"`
	RunOncePerArch *bool    `yaml:"runOncePerArch"`
}

// PhaseDTO represents a build phase. Fields other than type, name, files and
// deploymentOnly only apply to copy-files and shell-script phases.
type PhaseDTO struct {
	Type            string     `yaml:"type"`
	Name            string     `yaml:"name"`
	Files           []*FileDTO `yaml:"files"`
	DeploymentOnly  bool       `yaml:"deploymentOnly"`
	Destination     string     `yaml:"destination"`
	Subpath         string     `yaml:"subpath"`
	Shell           string     `yaml:"shell"`
	Script          string     `yaml:"script"`
	Inputs          []string   `yaml:"inputs"`
	Outputs         []string   `yaml:"outputs"`
	AlwaysOutOfDate bool       `yaml:"alwaysOutOfDate"`
}

// FileDTO represents a build file. A plain scalar is shorthand for {path: ...}.
type FileDTO struct {
	Path           string                  `yaml:"path"`
	Link           string                  `yaml:"link"`
	Product        string                  `yaml:"product"`
	FileType       string                  `yaml:"fileType"`
	Flags          []string                `yaml:"flags"`
	Settings       map[string]SettingValue `yaml:"settings"`
	Weak           bool                    `yaml:"weak"`
	SignOnCopy     bool                    `yaml:"signOnCopy"`
	Visibility     string                  `yaml:"visibility"`
	DeploymentOnly bool                    `yaml:"deploymentOnly"`
}

// UnmarshalYAML accepts either a path scalar or a mapping.
func (f *FileDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}
	type plain FileDTO
	return node.Decode((*plain)(f))
}

// ExternalDTO represents the build tool of an external target.
type ExternalDTO struct {
	Tool       string `yaml:"tool"`
	Args       string `yaml:"args"`
	WorkingDir string `yaml:"workingDir"`
	PassEnv    *bool  `yaml:"passEnv"`
}

// SettingValue is a build setting written either as a scalar or as a list of words.
// List words containing blanks or quotes are shell quoted so that they survive splitting;
// other words are kept verbatim so that $(...) references still expand.
type SettingValue string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (v *SettingValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = SettingValue(strings.TrimSpace(node.Value))
		return nil
	case yaml.SequenceNode:
		var words []string
		if err := node.Decode(&words); err != nil {
			return err
		}
		*v = SettingValue(joinWords(words))
		return nil
	default:
		return zerr.With(zerr.New("setting value must be a scalar or a list"), "line", node.Line)
	}
}

func joinWords(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		if w == "" || strings.ContainsAny(w, " \t\n'\"\\") {
			quoted[i] = shellquote.Join(w)
		} else {
			quoted[i] = w
		}
	}
	return strings.Join(quoted, " ")
}
