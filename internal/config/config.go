package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/fiber/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "fiber.yaml"

	// DefaultFrameBudget is the time one idle frame grants to render work.
	DefaultFrameBudget = 16 * time.Millisecond

	// DefaultIdleTimeout is the timeout hint of each idle request.
	DefaultIdleTimeout = 500 * time.Millisecond

	// DefaultYieldThreshold is the remaining time below which a pass yields.
	DefaultYieldThreshold = time.Millisecond

	// DefaultNamespace is the Prometheus namespace.
	DefaultNamespace = "fiber"

	// DefaultInspectAddr is the inspector listen address.
	DefaultInspectAddr = ":7070"
)

// Config represents the complete fiber.yaml configuration.
type Config struct {
	// Scheduler contains render scheduling configuration.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Log contains logging configuration.
	Log LogConfig `yaml:"log"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Inspect contains inspector server configuration.
	Inspect InspectConfig `yaml:"inspect"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig contains render scheduling configuration.
type SchedulerConfig struct {
	// FrameBudget is the time one idle frame grants to render work.
	FrameBudget time.Duration `yaml:"frameBudget"`

	// IdleTimeout is the timeout hint passed with every idle request.
	IdleTimeout time.Duration `yaml:"idleTimeout"`

	// YieldThreshold is the remaining time below which a pass yields.
	YieldThreshold time.Duration `yaml:"yieldThreshold"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`
}

// InspectConfig contains inspector server configuration.
type InspectConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			FrameBudget:    DefaultFrameBudget,
			IdleTimeout:    DefaultIdleTimeout,
			YieldThreshold: DefaultYieldThreshold,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Inspect: InspectConfig{
			Addr: DefaultInspectAddr,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for fiber.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.CodeInvalidConfig, "no %s found in %s", ConfigFileName, filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New(errors.CodeInvalidConfig).WithPath(path).Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithPath(path)
		}
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a YAML document on top of the defaults and validates the
// result. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check for typos in field names; durations are written like 16ms")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Scheduler.FrameBudget == 0 {
		c.Scheduler.FrameBudget = DefaultFrameBudget
	}
	if c.Scheduler.IdleTimeout == 0 {
		c.Scheduler.IdleTimeout = DefaultIdleTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch {
	case c.Scheduler.FrameBudget < 0:
		return errors.Newf(errors.CodeInvalidConfig, "scheduler.frameBudget must be positive, got %s", c.Scheduler.FrameBudget)
	case c.Scheduler.IdleTimeout < 0:
		return errors.Newf(errors.CodeInvalidConfig, "scheduler.idleTimeout must be positive, got %s", c.Scheduler.IdleTimeout)
	case c.Scheduler.YieldThreshold < 0:
		return errors.Newf(errors.CodeInvalidConfig, "scheduler.yieldThreshold cannot be negative, got %s", c.Scheduler.YieldThreshold)
	case c.Scheduler.YieldThreshold >= c.Scheduler.FrameBudget:
		return errors.Newf(errors.CodeInvalidConfig, "scheduler.yieldThreshold (%s) must be below scheduler.frameBudget (%s)",
			c.Scheduler.YieldThreshold, c.Scheduler.FrameBudget).
			WithSuggestion("A pass would yield before running its second unit of every frame")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return errors.Newf(errors.CodeInvalidConfig, "log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel returns the slog level named by Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Newf(errors.CodeInvalidConfig, "log.level %q is not one of debug, info, warn, error", l.Level)
	}
	return level, nil
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}
	return buf.Bytes(), nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the nearest fiber.yaml.
// It returns the directory containing it, or an error if there is none.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Newf(errors.CodeInvalidConfig, "no %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest fiber.yaml above the working
// directory, or the defaults if there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return Default(), nil
	}
	return Load(root)
}
