package layout

import "math"

// Viewport limits and interaction constants.
const (
	MinZoom = 0.1
	MaxZoom = 8.0

	BeginnerHitRadius = 50.0
	FullHitRadius     = 15.0

	BeginnerFocusZoom = 1.2
	FullFocusZoom     = 1.5
)

// Viewport maps graph coordinates onto a screen of Width x Height.
// The graph point (CenterX, CenterY) is drawn in the middle of the screen.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Zoom    float64 `json:"zoom"`
}

// NewViewport returns a viewport centred on the graph origin at zoom 1.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Width: width, Height: height, Zoom: 1}
}

// SetZoom clamps k to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(k float64) {
	v.Zoom = math.Min(MaxZoom, math.Max(MinZoom, k))
}

// CenterAt moves the camera so that (x, y) is in the middle of the screen.
func (v *Viewport) CenterAt(x, y float64) {
	v.CenterX, v.CenterY = x, y
}

// Pan shifts the camera by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.CenterX -= dx / v.Zoom
	v.CenterY -= dy / v.Zoom
}

// Focus centres on a point and zooms to the focus level of the mode.
func (v *Viewport) Focus(p Point, beginner bool) {
	v.CenterAt(p.X, p.Y)
	if beginner {
		v.SetZoom(BeginnerFocusZoom)
	} else {
		v.SetZoom(FullFocusZoom)
	}
}

// ToScreen converts graph coordinates to screen coordinates.
func (v *Viewport) ToScreen(p Point) Point {
	return Point{
		X: (p.X-v.CenterX)*v.Zoom + v.Width/2,
		Y: (p.Y-v.CenterY)*v.Zoom + v.Height/2,
	}
}

// ToGraph converts screen coordinates to graph coordinates.
func (v *Viewport) ToGraph(p Point) Point {
	return Point{
		X: (p.X-v.Width/2)/v.Zoom + v.CenterX,
		Y: (p.Y-v.Height/2)/v.Zoom + v.CenterY,
	}
}

// HitRadius is the pointer radius, in graph units, for the mode.
func HitRadius(beginner bool) float64 {
	if beginner {
		return BeginnerHitRadius
	}
	return FullHitRadius
}

// HitTest returns the ID of the node closest to the screen point within the
// mode's hit radius, or "" when nothing is under the pointer.
func (v *Viewport) HitTest(screen Point, positions map[string]Point, beginner bool) string {
	g := v.ToGraph(screen)
	r := HitRadius(beginner)
	best, bestD := "", math.Inf(1)
	for id, p := range positions {
		d := math.Hypot(p.X-g.X, p.Y-g.Y)
		if d <= r && (d < bestD || (d == bestD && id < best)) {
			best, bestD = id, d
		}
	}
	return best
}
