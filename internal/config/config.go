// Package config loads the tool configuration from a YAML file with
// .env and NUSKHA_ environment overrides.
package config

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	cerrors "github.com/nuskha/nuskha/internal/errors"
	"github.com/nuskha/nuskha/internal/mdown"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "nuskha.yaml"

// Config represents the application configuration.
type Config struct {
	Convert ConvertConfig `yaml:"convert"`
	Preview PreviewConfig `yaml:"preview"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ConvertConfig controls the conversion pipeline.
type ConvertConfig struct {
	DestFolder      string   `yaml:"dest_folder,omitempty"`
	Overwrite       bool     `yaml:"overwrite"`
	ReflowWidth     int      `yaml:"reflow_width,omitempty"`
	MilestoneLength int      `yaml:"milestone_length,omitempty"`
	MilestoneLetter string   `yaml:"milestone_letter,omitempty"`
	Extensions      []string `yaml:"extensions,omitempty"`
	MetadataFile    string   `yaml:"metadata_file,omitempty"` // external metadata for publisher presets
}

// PreviewConfig controls preview rendering.
type PreviewConfig struct {
	// Template is an HTML file with a {{content}} placeholder that
	// replaces the built-in page chrome.
	Template  string `yaml:"template,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_ms,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Overwrite:       false,
			ReflowWidth:     mdown.DefaultMaxLineLen,
			MilestoneLength: mdown.DefaultChunkLength,
		},
		Watch: WatchConfig{DebounceMillis: 500},
	}
}

// Load reads the configuration file at path. A missing file at the
// default path yields the defaults; an explicitly named missing file is
// an error. Unknown options in the file are fatal.
func Load(path string) (*Config, error) {
	// .env values never override the process environment
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		return nil, cerrors.ConfigNotFound(path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, cerrors.ConfigInvalid(path, err.Error())
	}
	applyEnv(cfg)
	if cfg.Convert.ReflowWidth == 0 {
		cfg.Convert.ReflowWidth = mdown.DefaultMaxLineLen
	}
	if cfg.Watch.DebounceMillis == 0 {
		cfg.Watch.DebounceMillis = 500
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides config fields from NUSKHA_ environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("NUSKHA_DEST_FOLDER"); v != "" {
		cfg.Convert.DestFolder = v
	}
	if v := os.Getenv("NUSKHA_OVERWRITE"); v != "" {
		cfg.Convert.Overwrite = v == "1" || v == "true"
	}
	if v := os.Getenv("NUSKHA_REFLOW_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Convert.ReflowWidth = n
		}
	}
	if v := os.Getenv("NUSKHA_MILESTONE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Convert.MilestoneLength = n
		}
	}
}

// Validate checks field ranges. Violations are fatal configuration
// errors.
func (c *Config) Validate() error {
	if c.Convert.ReflowWidth < 0 {
		return cerrors.ConfigInvalid("convert.reflow_width", "must not be negative")
	}
	if c.Convert.MilestoneLength < 0 {
		return cerrors.ConfigInvalid("convert.milestone_length", "must not be negative")
	}
	if c.Watch.DebounceMillis < 0 {
		return cerrors.ConfigInvalid("watch.debounce_ms", "must not be negative")
	}
	return nil
}

// Init writes a default configuration file. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return cerrors.ConfigInvalid(path, "configuration file already exists")
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return cerrors.Wrap(err, cerrors.CategoryInternal, cerrors.SeverityFatal,
			"encoding default configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cerrors.WriteFailed(path, err)
	}
	return nil
}
