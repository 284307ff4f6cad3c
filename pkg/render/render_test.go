package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStep(t *testing.T) {
	tests := []struct {
		step, current int
		want          StepState
	}{
		{0, -1, StepIdle},
		{2, 1, StepFuture},
		{1, 1, StepCurrent},
		{0, 1, StepPast},
		{domain.NoStep, 2, StepIdle},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyStep(tt.step, tt.current), "step %d current %d", tt.step, tt.current)
	}
}

func TestSplitStepLabel(t *testing.T) {
	assert.Equal(t, []string{"1.", "Key"}, SplitStepLabel("1. Key"))
	assert.Equal(t, []string{"12.", "Root CA"}, SplitStepLabel("12. Root CA"))
	assert.Equal(t, []string{"Root CA"}, SplitStepLabel("Root CA"))
	assert.Equal(t, []string{". x"}, SplitStepLabel(". x"))
}

func TestBeginnerNodeStyle(t *testing.T) {
	at := time.UnixMilli(0)

	idle := BeginnerNodeStyle("#3498db", "1. Key", false, StepIdle, 1, at)
	assert.Equal(t, BeginnerRadius, idle.Radius)
	assert.Equal(t, "#3498db", idle.Fill)
	assert.Equal(t, 2.0, idle.StrokeWidth)
	assert.False(t, idle.Glow)

	selected := BeginnerNodeStyle("#3498db", "1. Key", true, StepIdle, 2, at)
	assert.Equal(t, BeginnerRadiusFocus, selected.Radius)
	assert.Equal(t, "#fff", selected.Stroke)
	assert.Equal(t, 2.0, selected.StrokeWidth, "width divides by scale")

	current := BeginnerNodeStyle("#3498db", "1. Key", false, StepCurrent, 1, at)
	// sin(0) = 0 so no pulse offset at t=0.
	assert.InDelta(t, BeginnerRadiusFocus, current.Radius, 1e-9)
	assert.True(t, current.Glow)
	assert.Equal(t, "#3498db44", current.GlowFill)
	assert.InDelta(t, BeginnerRadiusFocus+10, current.GlowRadius, 1e-9)

	past := BeginnerNodeStyle("#3498db", "1. Key", false, StepPast, 1, at)
	assert.Equal(t, "#3498dbaa", past.Fill)
	assert.True(t, past.Check)

	future := BeginnerNodeStyle("#3498db", "1. Key", false, StepFuture, 1, at)
	assert.Equal(t, "#3498db66", future.Fill)
	assert.Equal(t, "rgba(255,255,255,0.5)", future.LabelColor)
}

func TestPulseBounded(t *testing.T) {
	for ms := int64(0); ms < 2000; ms += 37 {
		p := Pulse(time.UnixMilli(ms))
		assert.LessOrEqual(t, p, 3.0)
		assert.GreaterOrEqual(t, p, -3.0)
	}
}

func TestFullNodeStyle(t *testing.T) {
	s := FullNodeStyle("#e74c3c", "Root CA", false, true, 1)
	assert.Equal(t, FullRadius, s.Radius)
	assert.Equal(t, "#eee", s.LabelColor)
	assert.Empty(t, s.Stroke)
	assert.True(t, s.LabelBelow)

	sel := FullNodeStyle("#e74c3c", "Root CA", true, false, 1)
	assert.Equal(t, FullRadiusSelected, sel.Radius)
	assert.Equal(t, "#333", sel.LabelColor)
	assert.Equal(t, 3.0, sel.StrokeWidth)
}

func TestLinkStyles(t *testing.T) {
	a, b := layout.Point{X: 0, Y: 0}, layout.Point{X: 200, Y: 0}

	s, ok := BeginnerLinkStyle(a, b, "#9b59b6", false, false, 1)
	require.True(t, ok)
	assert.InDelta(t, 40.0, s.Line[0].X, 1e-9)
	assert.InDelta(t, 160.0, s.Line[1].X, 1e-9)
	assert.Equal(t, "#9b59b688", s.LineColor)
	assert.Equal(t, 4.0, s.Width)
	assert.InDelta(t, -15.0, s.LabelAt.Y, 1e-9)

	s, ok = BeginnerLinkStyle(a, b, "#9b59b6", true, true, 1)
	require.True(t, ok)
	assert.Equal(t, "#9b59b6", s.LineColor)
	assert.Equal(t, 5.0, s.Width)
	assert.Equal(t, "rgba(30, 30, 30, 0.95)", s.LabelBackground)

	f, ok := FullLinkStyle(a, b, true, 1)
	require.True(t, ok)
	assert.Equal(t, a, f.Line[0])
	assert.InDelta(t, 188.0, f.Arrow[0].X, 1e-9)
	assert.Equal(t, "#555", f.LineColor)

	_, ok = FullLinkStyle(a, a, false, 1)
	assert.False(t, ok, "zero-length links are skipped")
}

func TestIsActiveLink(t *testing.T) {
	assert.False(t, IsActiveLink(0, 1, -1))
	assert.False(t, IsActiveLink(0, 1, 0))
	assert.True(t, IsActiveLink(0, 1, 1))
	assert.False(t, IsActiveLink(1, 2, 1))
	// A link leaving the last step never becomes active.
	assert.False(t, IsActiveLink(3, 0, 3))
}

func TestBuildScene_Beginner(t *testing.T) {
	c := catalog.Default()
	flow, err := c.Flow("cert-issuance")
	require.NoError(t, err)

	state := domain.NewViewState("s", flow.ID, 800, 600)
	state.BeginnerMode = true
	state.CurrentStep = 2
	state.Playing = true

	pos := layout.FlowPositionMap(flow, 800, 600)
	scene := BuildScene(c, state, pos, AtTime(time.UnixMilli(0)))

	require.Len(t, scene.Nodes, 4)
	assert.True(t, scene.Beginner)
	assert.Equal(t, BackgroundLight, scene.Background)
	assert.Equal(t, "step1", scene.Nodes[0].ID)
	assert.Equal(t, "private-key", scene.Nodes[0].FullID)
	assert.Equal(t, flow.FlowColor(), scene.Nodes[0].Color)
	assert.True(t, scene.Nodes[0].Style.Check)
	assert.True(t, scene.Nodes[2].Style.Glow)
	assert.Equal(t, flow.FlowColor()+"66", scene.Nodes[3].Style.Fill)

	require.Len(t, scene.Links, 3)
	assert.True(t, scene.Links[0].Style.Active)
	assert.True(t, scene.Links[1].Style.Active)
	assert.False(t, scene.Links[2].Style.Active)
}

func TestBuildScene_Full(t *testing.T) {
	c := catalog.Default()
	state := domain.NewViewState("s", "", 800, 600)
	state.DarkMode = true
	state.Selected = &domain.Selection{Node: domain.Node{ID: "root-ca"}, StepIndex: domain.NoStep}

	sim := layout.NewSimulation(c.Nodes(), c.Links())
	sim.Run(layout.DefaultCooldownTicks)

	scene := BuildScene(c, state, sim.Positions())
	assert.False(t, scene.Beginner)
	assert.Equal(t, BackgroundDark, scene.Background)
	assert.Len(t, scene.Nodes, 11)
	assert.Len(t, scene.Links, 16)
	for _, l := range scene.Links {
		assert.Equal(t, "#666", l.Color)
	}
	for _, n := range scene.Nodes {
		assert.Equal(t, c.CategoryColor(n.Category), n.Color)
		if n.ID == "root-ca" {
			assert.Equal(t, FullRadiusSelected, n.Style.Radius)
		}
	}
}

func TestBuildScene_BeginnerWithoutFlowFallsBack(t *testing.T) {
	c := catalog.Default()
	state := domain.NewViewState("s", "missing", 800, 600)
	state.BeginnerMode = true
	scene := BuildScene(c, state, map[string]layout.Point{"root-ca": {X: 1, Y: 1}})
	require.Len(t, scene.Nodes, 1)
	assert.Empty(t, scene.Links)
}

func TestSVG(t *testing.T) {
	c := catalog.Default()
	flow, _ := c.Flow("trust-chain")
	state := domain.NewViewState("s", flow.ID, 800, 600)
	state.BeginnerMode = true
	state.DarkMode = true

	vp := layout.NewViewport(800, 600)
	vp.CenterAt(400, 300)
	scene := BuildScene(c, state, layout.FlowPositionMap(flow, 800, 600), WithViewport(*vp))

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, scene, SVGOptions{Standalone: true}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `fill="#1a1a2e"`)
	assert.Equal(t, 4, strings.Count(out, `class="node"`))
	assert.Equal(t, 3, strings.Count(out, `class="link"`))
	assert.Contains(t, out, ">1.</text>")
	assert.Contains(t, out, ">Root CA</text>")
	assert.Contains(t, out, "translate(400 300) scale(1) translate(-400 -300)")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestNum(t *testing.T) {
	assert.Equal(t, "100", num(100))
	assert.Equal(t, "1.5", num(1.5))
	assert.Equal(t, "0", num(0))
	assert.Equal(t, "0.33", num(1.0/3))
}
