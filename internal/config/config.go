// Package config loads minithonc settings from TOML or YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete compiler configuration
type Config struct {
	Lexer  LexerConfig  `toml:"lexer" yaml:"lexer"`
	ICG    ICGConfig    `toml:"icg" yaml:"icg"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Output OutputConfig `toml:"output" yaml:"output"`
}

// LexerConfig holds tokenizer settings
type LexerConfig struct {
	StopOnError bool `toml:"stop_on_error" yaml:"stop_on_error"`
}

// ICGConfig holds code generation settings
type ICGConfig struct {
	ReuseRegisters  bool `toml:"reuse_registers" yaml:"reuse_registers"`
	StackLoopLabels bool `toml:"stack_loop_labels" yaml:"stack_loop_labels"`
	GuardBranches   bool `toml:"guard_branches" yaml:"guard_branches"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // text or json
}

// OutputConfig holds terminal output settings
type OutputConfig struct {
	Color string `toml:"color" yaml:"color"` // auto, always or never
}

// Format is a configuration file format.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration file at path. The format is chosen by the
// file extension; anything but .yaml and .yml is read as TOML.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(content, detectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes content in the given format and applies defaults.
func Parse(content []byte, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// detectFormat determines the configuration format from file extension
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}
	switch strings.ToLower(c.Output.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode: %q", c.Output.Color)
	}
	return nil
}
