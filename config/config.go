package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/dirtree/internal/util"
	"gopkg.in/yaml.v3"
)

// CLI style verbosity values accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// DefaultIndent is prepended once per depth level when listing
	DefaultIndent = "  "

	// DefaultContinueOnError keeps a command batch running past failed commands
	DefaultContinueOnError = true

	// DefaultHTTPAddr is empty so the HTTP API stays off unless requested
	DefaultHTTPAddr = ""

	DefaultFsName = "dirtree"
	DefaultName   = "dirtree"

	// DefaultAttrTimeout is the attribute cache timeout in seconds
	DefaultAttrTimeout = 1.0

	// DefaultEntryTimeout is the directory entry cache timeout in seconds
	DefaultEntryTimeout = 1.0
)

// Config contains runtime configuration values for the directory namespace.
type Config struct {
	MountOptions
	LogLvl          util.LogLevel // Internal log level (Default info)
	Indent          string        // Indentation unit per depth level in listings (Default two spaces)
	ContinueOnError bool          // Keep running a command batch after a failed command (Default true)
	HTTPAddr        string        // Listen address for the HTTP API; empty disables it

	// NOTE: FUSE kernel cache settings for the read-only mount
	AttrTimeout  float64 // Attribute cache timeout in seconds (Default 1.0)
	EntryTimeout float64 // Directory entry cache timeout in seconds (Default 1.0)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a verbosity between 1 (error) and 5 (trace); out of range values are clamped
	LogLvl          *int     `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	Indent          *string  `yaml:"indent,omitempty" json:"indent,omitempty"`
	ContinueOnError *bool    `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`
	HTTPAddr        *string  `yaml:"http_addr,omitempty" json:"http_addr,omitempty"`
	Debug           *bool    `yaml:"fuse_debug,omitempty" json:"fuse_debug,omitempty"`
	FsName          *string  `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name            *string  `yaml:"name,omitempty" json:"name,omitempty"`
	AttrTimeout     *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout    *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName: DefaultFsName,
			Name:   DefaultName,
		},
		LogLvl:          DefaultLogLvl,
		Indent:          DefaultIndent,
		ContinueOnError: DefaultContinueOnError,
		HTTPAddr:        DefaultHTTPAddr,
		AttrTimeout:     DefaultAttrTimeout,
		EntryTimeout:    DefaultEntryTimeout,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = VerboseToLogLevel(*override.LogLvl)
	}
	if override.Indent != nil {
		c.Indent = *override.Indent
	}
	if override.ContinueOnError != nil {
		c.ContinueOnError = *override.ContinueOnError
	}
	if override.HTTPAddr != nil {
		c.HTTPAddr = *override.HTTPAddr
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
}

// VerboseToLogLevel maps a CLI verbosity between 1 (error) and 5 (trace)
// to a [util.LogLevel], clamping out of range values
func VerboseToLogLevel(verbose int) util.LogLevel {
	verbose = max(ErrorVerbose, min(verbose, TraceVerbose))
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
