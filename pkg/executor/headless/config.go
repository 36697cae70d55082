package headless

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/trainer/pkg/workout"
)

// Config represents one headless plan request.
type Config struct {
	// Request parameters
	Activity    string `yaml:"activity" json:"activity"`
	Goal        string `yaml:"goal" json:"goal"`
	Duration    int    `yaml:"duration" json:"duration"`
	FocusArea   string `yaml:"focus_area" json:"focus_area"`
	OutputStyle string `yaml:"output_style" json:"output_style"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// DefaultConfig returns the defaults applied before a file is decoded.
func DefaultConfig() *Config {
	return &Config{
		Duration:    workout.DefaultDurationMinutes,
		OutputStyle: string(workout.StyleFullSession),
		Artifacts: ArtifactConfig{
			OutputDir: ".trainer/artifacts",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// LoadConfig reads a YAML request file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML request.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that are not request parameters. Missing
// request parameters are reported by the pipeline as rejected input.
func (c *Config) Validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}

	if c.OutputStyle != "" && !slices.Contains(workout.OutputStyles, workout.OutputStyle(c.OutputStyle)) {
		return fmt.Errorf("invalid output_style %q (must be one of %q)", c.OutputStyle, workout.OutputStyles)
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts require an output_dir")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	if _, ok := parseLogLevel(c.Logging.Verbosity); !ok {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', or 'verbose')", c.Logging.Verbosity)
	}

	return nil
}

// Request converts the file to a pipeline request.
func (c *Config) Request() workout.Request {
	return workout.Request{
		ActivityCategory: c.Activity,
		Goal:             c.Goal,
		DurationMinutes:  c.Duration,
		FocusArea:        c.FocusArea,
		OutputStyle:      workout.OutputStyle(c.OutputStyle),
	}
}
