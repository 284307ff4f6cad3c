package render

import (
	"math"
	"strings"
	"time"

	"github.com/aretw0/pkiviz/pkg/layout"
)

// Palette constants.
const (
	BackgroundDark  = "#1a1a2e"
	BackgroundLight = "#fafafa"

	BeginnerRadius      = 40.0
	BeginnerRadiusFocus = 48.0
	FullRadius          = 10.0
	FullRadiusSelected  = 12.0
)

// Background returns the canvas colour for the theme.
func Background(dark bool) string {
	if dark {
		return BackgroundDark
	}
	return BackgroundLight
}

// StepState classifies a flow step relative to the autoplay cursor.
type StepState int

const (
	StepIdle StepState = iota
	StepPast
	StepCurrent
	StepFuture
)

// ClassifyStep places stepIndex relative to currentStep. Outside autoplay
// (currentStep < 0) every step is idle.
func ClassifyStep(stepIndex, currentStep int) StepState {
	switch {
	case currentStep < 0 || stepIndex < 0:
		return StepIdle
	case stepIndex < currentStep:
		return StepPast
	case stepIndex == currentStep:
		return StepCurrent
	default:
		return StepFuture
	}
}

// NodeStyle is the visual encoding of a node for one frame.
type NodeStyle struct {
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`

	Glow       bool    `json:"glow,omitempty"`
	GlowRadius float64 `json:"glow_radius,omitempty"`
	GlowFill   string  `json:"glow_fill,omitempty"`

	Check      bool    `json:"check,omitempty"`
	CheckSize  float64 `json:"check_size,omitempty"`
	CheckWidth float64 `json:"check_width,omitempty"`

	LabelLines []string `json:"label_lines"`
	LabelColor string   `json:"label_color"`
	FontSize   float64  `json:"font_size"`
	Bold       bool     `json:"bold,omitempty"`
	// LabelBelow places the label under the circle instead of inside it.
	LabelBelow bool `json:"label_below,omitempty"`
}

// Pulse returns the radius offset of the current step at time t.
func Pulse(t time.Time) float64 {
	return math.Sin(float64(t.UnixMilli())/200) * 3
}

// SplitStepLabel splits "N. Text" into its two display lines.
func SplitStepLabel(label string) []string {
	i := strings.Index(label, ". ")
	if i <= 0 {
		return []string{label}
	}
	return []string{label[:i+1], label[i+2:]}
}

// BeginnerNodeStyle encodes a flow step.
func BeginnerNodeStyle(color, label string, selected bool, state StepState, scale float64, t time.Time) NodeStyle {
	focus := selected || state == StepCurrent
	s := NodeStyle{
		Radius:     BeginnerRadius,
		Fill:       color,
		LabelLines: SplitStepLabel(label),
		LabelColor: "#fff",
		FontSize:   13 / scale,
		Bold:       true,
	}
	if focus {
		s.Radius = BeginnerRadiusFocus
		s.Stroke = "#fff"
		s.StrokeWidth = 4 / scale
	} else {
		s.Stroke = "rgba(255,255,255,0.5)"
		s.StrokeWidth = 2 / scale
	}

	switch state {
	case StepCurrent:
		s.Radius += Pulse(t)
		s.Glow = true
		s.GlowRadius = s.Radius + 10
		s.GlowFill = color + "44"
	case StepFuture:
		s.Fill = color + "66"
		s.LabelColor = "rgba(255,255,255,0.5)"
	case StepPast:
		s.Fill = color + "aa"
		s.Check = true
		s.CheckSize = 12 / scale
		s.CheckWidth = 3 / scale
	}
	return s
}

// FullNodeStyle encodes a catalog node in the full graph.
func FullNodeStyle(color, label string, selected, dark bool, scale float64) NodeStyle {
	s := NodeStyle{
		Radius:     FullRadius,
		Fill:       color,
		LabelLines: []string{label},
		LabelColor: "#333",
		FontSize:   14 / scale,
		LabelBelow: true,
	}
	if dark {
		s.LabelColor = "#eee"
	}
	if selected {
		s.Radius = FullRadiusSelected
		s.Stroke = "#fff"
		s.StrokeWidth = 3 / scale
	}
	return s
}

// LinkStyle is the resolved geometry and colours of a link for one frame.
type LinkStyle struct {
	Line  [2]layout.Point `json:"line"`
	Arrow [3]layout.Point `json:"arrow"`

	LineColor  string  `json:"line_color"`
	ArrowColor string  `json:"arrow_color"`
	Width      float64 `json:"width"`
	Active     bool    `json:"active,omitempty"`

	LabelAt         layout.Point `json:"label_at"`
	LabelFontSize   float64      `json:"label_font_size"`
	LabelBold       bool         `json:"label_bold,omitempty"`
	LabelColor      string       `json:"label_color"`
	LabelBackground string       `json:"label_background"`
	// LabelPadding is added to the measured text width of the label box.
	LabelPadding float64 `json:"label_padding"`
}

// IsActiveLink reports whether a beginner link has been walked by autoplay.
func IsActiveLink(sourceStep, targetStep, currentStep int) bool {
	return currentStep >= 0 && sourceStep < currentStep && targetStep <= currentStep
}

// trim returns the endpoints moved inwards by r along the segment, and the angle.
func trim(a, b layout.Point, r float64) (layout.Point, layout.Point, float64, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return a, b, 0, false
	}
	angle := math.Atan2(dy, dx)
	c, s := math.Cos(angle), math.Sin(angle)
	return layout.Point{X: a.X + r*c, Y: a.Y + r*s},
		layout.Point{X: b.X - r*c, Y: b.Y - r*s},
		angle, true
}

func arrowHead(tip layout.Point, angle, length float64) [3]layout.Point {
	return [3]layout.Point{
		tip,
		{X: tip.X - length*math.Cos(angle-math.Pi/6), Y: tip.Y - length*math.Sin(angle-math.Pi/6)},
		{X: tip.X - length*math.Cos(angle+math.Pi/6), Y: tip.Y - length*math.Sin(angle+math.Pi/6)},
	}
}

// BeginnerLinkStyle encodes a flow link. ok is false for zero-length links.
func BeginnerLinkStyle(a, b layout.Point, color string, active, dark bool, scale float64) (LinkStyle, bool) {
	start, end, angle, ok := trim(a, b, BeginnerRadius)
	if !ok {
		return LinkStyle{}, false
	}
	stroke := color + "88"
	width := 4 / scale
	if active {
		stroke = color
		width = 5 / scale
	}
	bg := "rgba(255, 255, 255, 0.95)"
	if dark {
		bg = "rgba(30, 30, 30, 0.95)"
	}
	return LinkStyle{
		Line:            [2]layout.Point{start, end},
		Arrow:           arrowHead(end, angle, 15/scale),
		LineColor:       stroke,
		ArrowColor:      stroke,
		Width:           width,
		Active:          active,
		LabelAt:         layout.Point{X: (start.X + end.X) / 2, Y: (start.Y+end.Y)/2 - 15/scale},
		LabelFontSize:   12 / scale,
		LabelBold:       true,
		LabelColor:      color,
		LabelBackground: bg,
		LabelPadding:    8,
	}, true
}

// FullLinkStyle encodes a catalog link. The line runs centre to centre while
// the arrow sits on the trimmed end.
func FullLinkStyle(a, b layout.Point, dark bool, scale float64) (LinkStyle, bool) {
	_, end, angle, ok := trim(a, b, FullRadiusSelected)
	if !ok {
		return LinkStyle{}, false
	}
	s := LinkStyle{
		Line:            [2]layout.Point{a, b},
		Arrow:           arrowHead(end, angle, 8/scale),
		LineColor:       "#ccc",
		ArrowColor:      "#999",
		Width:           1.5 / scale,
		LabelAt:         layout.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2},
		LabelFontSize:   10 / scale,
		LabelColor:      "#666",
		LabelBackground: "rgba(255, 255, 255, 0.9)",
		LabelPadding:    4,
	}
	if dark {
		s.LineColor = "#555"
		s.ArrowColor = "#666"
		s.LabelColor = "#aaa"
		s.LabelBackground = "rgba(30, 30, 30, 0.9)"
	}
	return s, true
}
