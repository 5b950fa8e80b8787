// Package config provides configuration loading and management for isoresample.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FSL locates the registration tool and fixes the options passed to it
type FSL struct {
	// Dir is the installation root (normally taken from FSLDIR)
	Dir string `yaml:"dir"`

	// Tool is the executable name under <Dir>/bin
	Tool string `yaml:"tool"`

	// Identity is the identity transform path under <Dir>/etc
	Identity string `yaml:"identity"`

	// Interp is the interpolation method
	Interp string `yaml:"interp"`

	// SincWindow is the window applied to the sinc kernel
	SincWindow string `yaml:"sincWindow"`
}

// ToolPath returns the absolute path of the registration executable
func (f FSL) ToolPath() string {
	return f.Dir + "/bin/" + f.Tool
}

// IdentityPath returns the absolute path of the identity matrix file
func (f FSL) IdentityPath() string {
	return f.Dir + "/etc/" + f.Identity
}

// Config represents the application configuration loaded from YAML
type Config struct {
	FSL FSL `yaml:"fsl"`

	// Exit status handling
	Exit struct {
		// Propagate makes the wrapper return the tool's exit status
		Propagate bool `yaml:"propagate"`

		// UsageStatus is returned when too few arguments are given
		UsageStatus int `yaml:"usageStatus"`
	} `yaml:"exit"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// Format is text or json
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Preview parameters
	Preview struct {
		// Enabled logs the predicted output grid before running the tool
		Enabled bool `yaml:"enabled"`
	} `yaml:"preview"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.FSL.Tool = "flirt"
	cfg.FSL.Identity = "flirtsch/ident.mat"
	cfg.FSL.Interp = "sinc"
	cfg.FSL.SincWindow = "hanning"

	cfg.Exit.Propagate = true
	cfg.Exit.UsageStatus = 0

	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "text"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the fields the command line is built from are usable.
// An empty FSL.Dir is allowed; the invocation then fails the way an unset FSLDIR does.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.FSL.Tool) == "" {
		errs = append(errs, errors.New("fsl.tool must not be empty"))
	}
	if strings.TrimSpace(c.FSL.Identity) == "" {
		errs = append(errs, errors.New("fsl.identity must not be empty"))
	}
	if strings.TrimSpace(c.FSL.Interp) == "" {
		errs = append(errs, errors.New("fsl.interp must not be empty"))
	}
	if strings.TrimSpace(c.FSL.SincWindow) == "" {
		errs = append(errs, errors.New("fsl.sincWindow must not be empty"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format))
	}

	if c.Exit.UsageStatus < 0 || c.Exit.UsageStatus > 255 {
		errs = append(errs, fmt.Errorf("exit.usageStatus %d out of range 0-255", c.Exit.UsageStatus))
	}

	return errors.Join(errs...)
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
