package render

import (
	"time"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/layout"
)

// SceneNode is a node ready to draw.
type SceneNode struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Category domain.Category `json:"category"`
	Color    string          `json:"color"`
	// FullID is the catalog node behind a flow step.
	FullID    string       `json:"full_id,omitempty"`
	StepIndex int          `json:"step_index"`
	Pos       layout.Point `json:"pos"`
	Style     NodeStyle    `json:"style"`
}

// SceneLink is a link ready to draw.
type SceneLink struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Label  string    `json:"label"`
	Color  string    `json:"color"`
	Style  LinkStyle `json:"style"`
}

// Scene is one frame of the graph.
type Scene struct {
	Beginner   bool            `json:"beginner"`
	Dark       bool            `json:"dark"`
	Background string          `json:"background"`
	Viewport   layout.Viewport `json:"viewport"`
	Nodes      []SceneNode     `json:"nodes"`
	Links      []SceneLink     `json:"links"`
}

// SceneOption tunes BuildScene.
type SceneOption func(*sceneConfig)

type sceneConfig struct {
	now      time.Time
	viewport *layout.Viewport
}

// AtTime fixes the clock used for the pulse animation.
func AtTime(t time.Time) SceneOption {
	return func(c *sceneConfig) {
		c.now = t
	}
}

// WithViewport sets the camera. Its zoom is the global scale that divides
// stroke widths and font sizes.
func WithViewport(v layout.Viewport) SceneOption {
	return func(c *sceneConfig) {
		c.viewport = &v
	}
}

// BuildScene assembles the frame for state. Nodes without a position are
// dropped along with their links.
func BuildScene(c *catalog.Catalog, state *domain.ViewState, positions map[string]layout.Point, opts ...SceneOption) *Scene {
	cfg := sceneConfig{now: time.Now()}
	for _, opt := range opts {
		opt(&cfg)
	}
	vp := layout.NewViewport(state.Width, state.Height)
	if cfg.viewport != nil {
		vp = cfg.viewport
	}
	scale := vp.Zoom
	if scale <= 0 {
		scale = 1
	}

	scene := &Scene{
		Beginner:   state.BeginnerMode,
		Dark:       state.DarkMode,
		Background: Background(state.DarkMode),
		Viewport:   *vp,
	}

	if state.BeginnerMode {
		flow, err := c.Flow(state.FlowID)
		if err == nil {
			buildFlow(scene, c, flow, state, positions, scale, cfg.now)
			return scene
		}
		// No active flow: fall through to the full graph.
	}
	buildFull(scene, c, state, positions, scale)
	return scene
}

func buildFlow(scene *Scene, c *catalog.Catalog, flow domain.Flow, state *domain.ViewState, positions map[string]layout.Point, scale float64, now time.Time) {
	color := flow.FlowColor()
	selected := state.SelectedID()
	steps := make(map[string]int, len(flow.Steps))

	for i := range flow.Steps {
		sel, err := c.ResolveStep(flow, i)
		if err != nil {
			continue
		}
		pos, ok := positions[sel.ID]
		if !ok {
			continue
		}
		steps[sel.ID] = i
		scene.Nodes = append(scene.Nodes, SceneNode{
			ID:        sel.ID,
			Label:     sel.Label,
			Category:  sel.Category,
			Color:     color,
			FullID:    sel.FullID,
			StepIndex: i,
			Pos:       pos,
			Style:     BeginnerNodeStyle(color, sel.Label, sel.ID == selected, ClassifyStep(i, state.CurrentStep), scale, now),
		})
	}

	for _, l := range flow.Links {
		si, okS := steps[l.Source]
		ti, okT := steps[l.Target]
		if !okS || !okT {
			continue
		}
		active := IsActiveLink(si, ti, state.CurrentStep)
		style, ok := BeginnerLinkStyle(positions[l.Source], positions[l.Target], color, active, state.DarkMode, scale)
		if !ok {
			continue
		}
		scene.Links = append(scene.Links, SceneLink{
			Source: l.Source,
			Target: l.Target,
			Label:  l.Label,
			Color:  color,
			Style:  style,
		})
	}
}

func buildFull(scene *Scene, c *catalog.Catalog, state *domain.ViewState, positions map[string]layout.Point, scale float64) {
	selected := state.SelectedID()
	for _, n := range c.Nodes() {
		pos, ok := positions[n.ID]
		if !ok {
			continue
		}
		color := c.CategoryColor(n.Category)
		scene.Nodes = append(scene.Nodes, SceneNode{
			ID:        n.ID,
			Label:     n.Label,
			Category:  n.Category,
			Color:     color,
			StepIndex: domain.NoStep,
			Pos:       pos,
			Style:     FullNodeStyle(color, n.Label, n.ID == selected, state.DarkMode, scale),
		})
	}

	linkColor := "#999"
	if state.DarkMode {
		linkColor = "#666"
	}
	for _, l := range c.Links() {
		a, okS := positions[l.Source]
		b, okT := positions[l.Target]
		if !okS || !okT {
			continue
		}
		style, ok := FullLinkStyle(a, b, state.DarkMode, scale)
		if !ok {
			continue
		}
		scene.Links = append(scene.Links, SceneLink{
			Source: l.Source,
			Target: l.Target,
			Label:  l.Label,
			Color:  linkColor,
			Style:  style,
		})
	}
}
