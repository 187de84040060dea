package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".souschef"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .souschef configuration file.
// All fields are optional; set fields override built-in defaults but are
// in turn overridden by CLI flags.
type File struct {
	// Endpoint is the OpenAI-compatible inference base URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Model is the inference model identifier.
	Model string `yaml:"model,omitempty"`

	// APIKey authenticates against the inference endpoint. Prefer the
	// SOUSCHEF_API_KEY environment variable for shared machines.
	APIKey string `yaml:"apiKey,omitempty"`

	// Style is the default rendering style.
	Style string `yaml:"style,omitempty"`

	// OutputDir is where rendered recipes are written.
	OutputDir string `yaml:"outputDir,omitempty"`

	// BlockedDomains are hosts excluded from search results, in
	// addition to the built-in list.
	BlockedDomains []string `yaml:"blockedDomains,omitempty"`

	// Constraints are dietary tags applied to every run.
	Constraints []string `yaml:"constraints,omitempty"`
}

// LoadConfigFile loads settings from a YAML file. If the file does not
// exist it returns ErrConfigNotFound; callers decide whether that matters
// based on whether the path was explicitly given by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .souschef in the current directory
// 3. config.yaml in the XDG config directory
// 4. .souschef in the user's home directory
//
// Returns the path if found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// Apply copies the file's set fields onto the config. CLI flags are
// applied after this, so flags always win.
func (cf *File) Apply(c *Config) {
	if cf.Endpoint != "" {
		c.Endpoint = cf.Endpoint
	}
	if cf.Model != "" {
		c.Model = cf.Model
	}
	if cf.APIKey != "" {
		c.APIKey = cf.APIKey
	}
	if cf.Style != "" {
		c.Style = cf.Style
	}
	if cf.OutputDir != "" {
		c.OutputDir = cf.OutputDir
	}
	if len(cf.BlockedDomains) > 0 {
		c.BlockedDomains = append(c.BlockedDomains, cf.BlockedDomains...)
	}
	if len(cf.Constraints) > 0 {
		c.Constraints = append(c.Constraints, cf.Constraints...)
	}
}
