package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models govline.yml, the per-project governance settings.
type Config struct {
	Project struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"project"`
	Methodology struct {
		// Preset names a built-in methodology; File points at a project
		// methodology document. File wins when both are set.
		Preset string `yaml:"preset"`
		File   string `yaml:"file"`
	} `yaml:"methodology"`
	Actors struct {
		Default string              `yaml:"default"`
		Roles   map[string][]string `yaml:"roles"`
	} `yaml:"actors"`
	Server struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"server"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Project.ID == "" {
		return fmt.Errorf("config.project.id is required")
	}
	if c.Methodology.Preset == "" && c.Methodology.File == "" {
		return fmt.Errorf("config.methodology requires a preset or a file")
	}
	if c.Methodology.Preset != "" && c.Methodology.Preset != "default" && c.Methodology.Preset != "scrum" {
		return fmt.Errorf("unknown methodology preset %q", c.Methodology.Preset)
	}
	for actorID, roles := range c.Actors.Roles {
		if actorID == "" {
			return fmt.Errorf("config.actors.roles contains an empty actor id")
		}
		for _, role := range roles {
			if role == "" {
				return fmt.Errorf("actor %s has an empty capability role", actorID)
			}
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "govline.yml")
}

// Load reads and validates config from a workspace.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; run gv init first", Path(workspace))
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the default Config struct for a project.
func Default(projectID string) *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(GenerateDefault(projectID)), &cfg)
	cfg.Project.ID = projectID
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault(projectID string) string {
	return fmt.Sprintf(defaultTemplate, projectID)
}

const defaultTemplate = `project:
  id: %s
  name: ""

methodology:
  preset: default

actors:
  default: human:local-user
  roles:
    human:local-user: [author, "approver:product", "approver:quality"]
`
