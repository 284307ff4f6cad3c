package layout

import (
	"math"

	"github.com/aretw0/pkiviz/pkg/domain"
)

// FlowPositions returns the fixed coordinates of each step of flow, in step
// order, for a viewport of the given size.
func FlowPositions(flow domain.Flow, width, height float64) []Point {
	n := len(flow.Steps)
	cx, cy := width/2, height/2
	out := make([]Point, n)

	row := func() []Point {
		for i := range out {
			out[i] = Point{X: cx - 150 + float64(i)*100, Y: cy}
		}
		return out
	}

	switch flow.Pattern() {
	case domain.LayoutVertical:
		for i := range out {
			out[i] = Point{X: cx, Y: cy - 120 + float64(i)*80}
		}
		return out

	case domain.LayoutBranching:
		if n != 4 {
			return row()
		}
		return []Point{
			{X: cx, Y: cy - 80},
			{X: cx - 100, Y: cy + 20},
			{X: cx + 100, Y: cy + 20},
			{X: cx, Y: cy + 120},
		}

	case domain.LayoutParallel:
		if n < 4 {
			return row()
		}
		for i := range out {
			out[i] = Point{
				X: cx - 100 + float64(i%2)*200,
				Y: cy - 60 + float64(i/2)*120,
			}
		}
		return out

	default:
		gaps := n - 1
		if gaps == 0 {
			gaps = 1
		}
		spacing := math.Min(130, (width-200)/float64(gaps))
		startX := cx - float64(n-1)*spacing/2
		for i := range out {
			out[i] = Point{X: startX + float64(i)*spacing, Y: cy}
		}
		return out
	}
}

// FlowPositionMap is FlowPositions keyed by step ID.
func FlowPositionMap(flow domain.Flow, width, height float64) map[string]Point {
	pts := FlowPositions(flow, width, height)
	out := make(map[string]Point, len(pts))
	for i, s := range flow.Steps {
		out[s.ID] = pts[i]
	}
	return out
}
