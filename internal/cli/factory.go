package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/pkiviz/internal/config"
	"github.com/aretw0/pkiviz/internal/logging"
	"github.com/aretw0/pkiviz/internal/metrics"
	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/session"
)

// Env carries what every command needs: settings, the catalog and the logger.
type Env struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Logger  *slog.Logger
	// Metrics is optional; when set its hooks are bound to new viewers.
	Metrics *metrics.Metrics
}

// LoadCatalog returns the embedded catalog, or the one at path when path is set.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog: %w", err)
	}
	return c, nil
}

// NewEnv loads the config and catalog with standard CLI conventions.
// Debug forces the debug log level.
func NewEnv(configPath string, overrides map[string]any, debug bool) (*Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(overrides); err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	c, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger()
	for _, id := range c.Isolated() {
		logger.Warn("Catalog node has no links", "node_id", id)
	}
	return &Env{Config: cfg, Catalog: c, Logger: logger}, nil
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}

// NewViewer creates a viewer configured from env. Extra options are applied last.
func NewViewer(env *Env, extra ...session.Option) (*session.Viewer, error) {
	logger := env.logger()
	cfg := env.Config
	if cfg == nil {
		cfg = config.Default()
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithLifecycleHooks(logging.Hooks(logger)),
		session.WithStepInterval(cfg.StepInterval),
		session.WithCopyConfirmation(cfg.CopyConfirm),
		session.WithWindow(float64(cfg.Window.Width), float64(cfg.Window.Height)),
		session.WithDarkMode(cfg.Dark),
		session.WithStreamBuffer(cfg.HTTP.StreamBuffer),
		session.WithCooldownTicks(cfg.CooldownTicks),
	}
	if env.Metrics != nil {
		opts = append(opts, session.WithLifecycleHooks(env.Metrics.Hooks()))
	}
	opts = append(opts, extra...)

	v, err := session.New(env.Catalog, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing viewer: %w", err)
	}
	return v, nil
}
