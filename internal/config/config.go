// Package config loads pkiviz settings from a YAML file, applies defaults and
// command-line overrides, and validates the result.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/pkiviz/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no --config flag is given. A missing file is not an error.
const DefaultFile = "pkiviz.yaml"

// Config holds every tunable of the viewer and its surfaces.
type Config struct {
	Catalog       string        `yaml:"catalog" mapstructure:"catalog"`
	Dark          bool          `yaml:"dark" mapstructure:"dark"`
	StepInterval  time.Duration `yaml:"step_interval" mapstructure:"step_interval" validate:"gt=0"`
	CopyConfirm   time.Duration `yaml:"copy_confirm" mapstructure:"copy_confirm" validate:"gt=0"`
	CooldownTicks int           `yaml:"cooldown_ticks" mapstructure:"cooldown_ticks" validate:"gte=0"`
	Window        Window        `yaml:"window" mapstructure:"window"`
	HTTP          HTTP          `yaml:"http" mapstructure:"http"`
	MCP           MCP           `yaml:"mcp" mapstructure:"mcp"`
	Log           Log           `yaml:"log" mapstructure:"log"`
}

// Window is the initial terminal or browser window size in pixels.
type Window struct {
	Width  int `yaml:"width" mapstructure:"width" validate:"gt=0"`
	Height int `yaml:"height" mapstructure:"height" validate:"gt=0"`
}

// HTTP configures `pkiviz serve`.
type HTTP struct {
	Addr         string `yaml:"addr" mapstructure:"addr" validate:"required"`
	StreamBuffer int    `yaml:"stream_buffer" mapstructure:"stream_buffer" validate:"gt=0"`
}

// MCP configures `pkiviz mcp`.
type MCP struct {
	Transport string `yaml:"transport" mapstructure:"transport" validate:"oneof=stdio sse"`
	Addr      string `yaml:"addr" mapstructure:"addr" validate:"required_if=Transport sse"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		StepInterval:  2 * time.Second,
		CopyConfirm:   2 * time.Second,
		CooldownTicks: 100,
		Window:        Window{Width: 1280, Height: 800},
		HTTP:          HTTP{Addr: ":8080", StreamBuffer: 10},
		MCP:           MCP{Transport: "stdio", Addr: ":8081"},
		Log:           Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. When path is empty DefaultFile is tried
// and silently skipped if it does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Apply merges overrides into the config. Keys follow the YAML layout
// ("log": {"level": "debug"}); durations may be given as strings.
func (c *Config) Apply(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("invalid config override: %w", err)
	}
	return c.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Logger builds the application logger from the Log section.
func (c *Config) Logger() *slog.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level, logging.Format(c.Log.Format))
}
