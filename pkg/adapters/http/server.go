package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/pkiviz"
	"github.com/aretw0/pkiviz/internal/logging"
	"github.com/aretw0/pkiviz/internal/presentation/graph"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/highlight"
	"github.com/aretw0/pkiviz/pkg/layout"
	"github.com/aretw0/pkiviz/pkg/panel"
	"github.com/aretw0/pkiviz/pkg/render"
	"github.com/aretw0/pkiviz/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes one viewer over HTTP.
type Server struct {
	Viewer  *session.Viewer
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the HTTP handler.
type Option func(*Server)

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the viewer.
func NewHandler(v *session.Viewer, opts ...Option) http.Handler {
	s := &Server{
		Viewer: v,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/nodes", s.ListNodes)
		r.Get("/nodes/{id}", s.GetNode)
		r.Post("/nodes/{id}/commands/{n}/copy", s.CopyCommand)
		r.Get("/links", s.ListLinks)
		r.Get("/categories", s.ListCategories)
		r.Get("/flows", s.ListFlows)
		r.Get("/highlight", s.Highlight)

		r.Route("/view", func(r chi.Router) {
			r.Get("/", s.GetView)
			r.Post("/select", s.SelectNode)
			r.Post("/click", s.Click)
			r.Post("/clear", s.action(s.Viewer.ClearSelection))
			r.Post("/mode", s.action(s.Viewer.ToggleBeginnerMode))
			r.Post("/flow", s.SelectFlow)
			r.Post("/dark", s.action(s.Viewer.ToggleDarkMode))
			r.Post("/resize", s.Resize)
			r.Post("/output", s.ToggleOutput)
			r.Post("/play", s.action(s.Viewer.StartAutoPlay))
			r.Post("/stop", s.action(s.Viewer.StopAutoPlay))
		})
	})

	r.Get("/graph.svg", s.GetGraphSVG)
	r.Get("/graph.mmd", s.GetGraphMermaid)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>pkiviz API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ViewResponse is the body of every /api/view call.
type ViewResponse struct {
	State         *domain.ViewState `json:"state"`
	Panel         panel.View        `json:"panel"`
	StepIndicator string            `json:"step_indicator,omitempty"`
	Viewport      layout.Viewport   `json:"viewport"`
	// Hit is the node under the pointer for /api/view/click.
	Hit string `json:"hit,omitempty"`
}

// CopyResult is the body of a command copy. Copied is false when the
// clipboard refused the text; the command is returned either way.
type CopyResult struct {
	NodeID  string `json:"node_id"`
	Index   int    `json:"index"`
	Command string `json:"command"`
	Copied  bool   `json:"copied"`
	Error   string `json:"error,omitempty"`
}

type idRequest struct {
	ID string `json:"id"`
}

type indexRequest struct {
	Index *int `json:"index"`
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type sizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		badRequest(w, r, "invalid request body")
		return false
	}
	return true
}

func (s *Server) view(hit string) ViewResponse {
	return ViewResponse{
		State:         s.Viewer.Snapshot(),
		Panel:         s.Viewer.Panel(),
		StepIndicator: s.Viewer.StepIndicator(),
		Viewport:      s.Viewer.Viewport(),
		Hit:           hit,
	}
}

// action adapts a body-less viewer command into a handler returning the new view.
func (s *Server) action(fn func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context()); err != nil {
			handleError(w, r, s.logger, err)
			return
		}
		s.writeJSON(w, s.view(""))
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	s.writeJSON(w, map[string]string{
		"app":         "pkiviz-http",
		"version":     pkiviz.Version,
		"api_version": apiVersion,
		"session_id":  s.Viewer.ID(),
	})
}

// ListNodes handles the GET /api/nodes request.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Viewer.Catalog().Nodes())
}

// GetNode handles the GET /api/nodes/{id} request.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.Viewer.Catalog().Node(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, s.logger, err)
		return
	}
	s.writeJSON(w, n)
}

// ListLinks handles the GET /api/links request.
func (s *Server) ListLinks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Viewer.Catalog().Links())
}

// ListCategories handles the GET /api/categories request.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Viewer.Catalog().Categories())
}

// ListFlows handles the GET /api/flows request.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.Viewer.Catalog().Flows())
}

// Highlight handles the GET /api/highlight request.
func (s *Server) Highlight(w http.ResponseWriter, r *http.Request) {
	cmd := r.URL.Query().Get("cmd")
	if strings.TrimSpace(cmd) == "" {
		badRequest(w, r, "query parameter cmd is required")
		return
	}
	tokens := highlight.Highlight(cmd)
	s.writeJSON(w, map[string]any{
		"tokens": tokens,
		"html":   highlight.HTML(tokens),
	})
}

// CopyCommand handles the POST /api/nodes/{id}/commands/{n}/copy request.
func (s *Server) CopyCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 {
		badRequest(w, r, fmt.Sprintf("invalid command index %q", chi.URLParam(r, "n")))
		return
	}

	cmd, err := s.Viewer.CopyCommand(r.Context(), id, n)
	if errors.Is(err, domain.ErrNodeNotFound) || errors.Is(err, domain.ErrCommandNotFound) {
		handleError(w, r, s.logger, err)
		return
	}
	res := CopyResult{NodeID: id, Index: n, Command: cmd.Command, Copied: err == nil}
	if err != nil {
		res.Error = err.Error()
	}
	s.writeJSON(w, res)
}

// GetView handles the GET /api/view request.
func (s *Server) GetView(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.view(""))
}

// SelectNode handles the POST /api/view/select request.
func (s *Server) SelectNode(w http.ResponseWriter, r *http.Request) {
	var body idRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.ID == "" {
		badRequest(w, r, "id is required")
		return
	}
	if err := s.Viewer.SelectNode(r.Context(), body.ID); err != nil {
		handleError(w, r, s.logger, err)
		return
	}
	s.writeJSON(w, s.view(""))
}

// Click handles the POST /api/view/click request: a pointer press at screen coordinates.
func (s *Server) Click(w http.ResponseWriter, r *http.Request) {
	var body pointRequest
	if !s.decode(w, r, &body) {
		return
	}
	hit, err := s.Viewer.SelectAt(r.Context(), body.X, body.Y)
	if err != nil {
		handleError(w, r, s.logger, err)
		return
	}
	s.writeJSON(w, s.view(hit))
}

// SelectFlow handles the POST /api/view/flow request.
func (s *Server) SelectFlow(w http.ResponseWriter, r *http.Request) {
	var body idRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Viewer.SelectFlow(r.Context(), body.ID); err != nil {
		handleError(w, r, s.logger, err)
		return
	}
	s.writeJSON(w, s.view(""))
}

// Resize handles the POST /api/view/resize request.
func (s *Server) Resize(w http.ResponseWriter, r *http.Request) {
	var body sizeRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Viewer.Resize(r.Context(), body.Width, body.Height); err != nil {
		handleError(w, r, s.logger, err)
		return
	}
	s.writeJSON(w, s.view(""))
}

// ToggleOutput handles the POST /api/view/output request.
func (s *Server) ToggleOutput(w http.ResponseWriter, r *http.Request) {
	var body indexRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Index == nil {
		badRequest(w, r, "index is required")
		return
	}
	if _, err := s.Viewer.ToggleOutput(*body.Index); err != nil {
		handleError(w, r, s.logger, err)
		return
	}
	s.writeJSON(w, s.view(""))
}

// GetGraphSVG handles the GET /graph.svg request.
func (s *Server) GetGraphSVG(w http.ResponseWriter, r *http.Request) {
	scene := s.Viewer.Scene(time.Now())
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.SVG(w, scene, render.SVGOptions{Standalone: true}); err != nil {
		s.logger.Error("SVG render failed", "error", err)
	}
}

// GetGraphMermaid handles the GET /graph.mmd request.
func (s *Server) GetGraphMermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.ViewMermaid(s.Viewer.Catalog(), s.Viewer.Snapshot())))
}
