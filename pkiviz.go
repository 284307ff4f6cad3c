package pkiviz

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/pkiviz/internal/logging"
	"github.com/aretw0/pkiviz/internal/presentation/graph"
	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/render"
	"github.com/aretw0/pkiviz/pkg/session"
)

// Visualizer is the high-level entry point of the library.
// It pairs a catalog with the interactive viewer built over it.
type Visualizer struct {
	catalog *catalog.Catalog
	viewer  *session.Viewer
	logger  *slog.Logger
}

type options struct {
	catalog     *catalog.Catalog
	catalogPath string
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	viewerOpts  []session.Option
}

// Option defines a functional option for configuring the Visualizer.
type Option func(*options)

// WithCatalog uses c instead of the built-in catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// WithCatalogFile loads the catalog from a YAML file.
func WithCatalogFile(path string) Option {
	return func(o *options) {
		o.catalogPath = path
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = o.hooks.Merge(hooks)
	}
}

// WithViewerOptions passes options straight to the viewer.
func WithViewerOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.viewerOpts = append(o.viewerOpts, opts...)
	}
}

// New creates a Visualizer. Without options it shows the built-in catalog
// in full mode with nothing selected.
func New(opts ...Option) (*Visualizer, error) {
	o := &options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	c := o.catalog
	if c == nil {
		c = catalog.Default()
		if o.catalogPath != "" {
			loaded, err := catalog.LoadFile(o.catalogPath)
			if err != nil {
				return nil, err
			}
			c = loaded
		}
	}

	viewerOpts := append([]session.Option{
		session.WithLogger(o.logger),
		session.WithLifecycleHooks(o.hooks),
	}, o.viewerOpts...)
	v, err := session.New(c, viewerOpts...)
	if err != nil {
		return nil, err
	}
	return &Visualizer{catalog: c, viewer: v, logger: o.logger}, nil
}

// Catalog returns the catalog being shown.
func (z *Visualizer) Catalog() *catalog.Catalog {
	return z.catalog
}

// Viewer returns the interactive viewer.
func (z *Visualizer) Viewer() *session.Viewer {
	return z.viewer
}

// Mermaid exports what the viewer shows as a Mermaid diagram.
func (z *Visualizer) Mermaid() string {
	return graph.ViewMermaid(z.catalog, z.viewer.Snapshot())
}

// WriteSVG writes the current frame as a standalone SVG document.
func (z *Visualizer) WriteSVG(w io.Writer) error {
	return render.SVG(w, z.viewer.Scene(time.Now()), render.SVGOptions{Standalone: true})
}

// Close stops autoplay and releases the viewer.
func (z *Visualizer) Close() error {
	return z.viewer.Close()
}
