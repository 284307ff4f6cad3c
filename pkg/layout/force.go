package layout

import (
	"fmt"
	"math"

	"github.com/aretw0/pkiviz/pkg/domain"
)

// Simulation defaults for the full graph.
const (
	DefaultChargeStrength = -400.0
	DefaultLinkDistance   = 120.0
	DefaultCooldownTicks  = 100

	alphaMin      = 0.001
	velocityDecay = 0.4
	reheatAlpha   = 0.3

	initialRadius = 10.0
)

var (
	initialAngle = math.Pi * (3 - math.Sqrt(5))
	alphaDecay   = 1 - math.Pow(alphaMin, 1.0/300)
)

// Point is a position in graph coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type body struct {
	id     string
	x, y   float64
	vx, vy float64
	fixed  bool
	fx, fy float64
}

type spring struct {
	source, target int
	strength       float64
	bias           float64
}

// Simulation is a deterministic force-directed layout.
// It is not safe for concurrent use; callers serialise access.
type Simulation struct {
	bodies []*body
	index  map[string]int
	links  []spring

	charge   float64
	distance float64
	alpha    float64
	jiggle   uint32
}

// NewSimulation places nodes on a phyllotaxis spiral and wires link springs.
// Links whose endpoints are unknown are ignored.
func NewSimulation(nodes []domain.Node, links []domain.Link) *Simulation {
	s := &Simulation{
		index:    make(map[string]int, len(nodes)),
		charge:   DefaultChargeStrength,
		distance: DefaultLinkDistance,
		alpha:    1,
		jiggle:   1,
	}

	for i, n := range nodes {
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		s.index[n.ID] = i
		s.bodies = append(s.bodies, &body{id: n.ID, x: r * math.Cos(a), y: r * math.Sin(a)})
	}

	count := make([]int, len(nodes))
	for _, l := range links {
		src, okS := s.index[l.Source]
		dst, okT := s.index[l.Target]
		if !okS || !okT {
			continue
		}
		count[src]++
		count[dst]++
		s.links = append(s.links, spring{source: src, target: dst})
	}
	for i := range s.links {
		l := &s.links[i]
		l.strength = 1 / float64(min(count[l.source], count[l.target]))
		l.bias = float64(count[l.source]) / float64(count[l.source]+count[l.target])
	}
	return s
}

// Alpha returns the current simulation temperature.
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// Settled reports whether alpha dropped below the minimum.
func (s *Simulation) Settled() bool {
	return s.alpha < alphaMin
}

// Run advances the simulation by at most ticks steps, stopping early once
// settled. It returns the number of ticks performed.
func (s *Simulation) Run(ticks int) int {
	n := 0
	for ; n < ticks && !s.Settled(); n++ {
		s.Tick()
	}
	return n
}

// Tick advances the simulation by one step.
func (s *Simulation) Tick() {
	s.alpha += (0 - s.alpha) * alphaDecay

	s.applyLinks()
	s.applyCharge()

	for _, b := range s.bodies {
		if b.fixed {
			b.x, b.y = b.fx, b.fy
			b.vx, b.vy = 0, 0
			continue
		}
		b.vx *= 1 - velocityDecay
		b.vy *= 1 - velocityDecay
		b.x += b.vx
		b.y += b.vy
	}

	s.applyCenter()
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, dst := s.bodies[l.source], s.bodies[l.target]
		x := dst.x + dst.vx - src.x - src.vx
		y := dst.y + dst.vy - src.y - src.vy
		if x == 0 {
			x = s.nextJiggle()
		}
		if y == 0 {
			y = s.nextJiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - s.distance) / d * s.alpha * l.strength
		x *= k
		y *= k
		dst.vx -= x * l.bias
		dst.vy -= y * l.bias
		src.vx += x * (1 - l.bias)
		src.vy += y * (1 - l.bias)
	}
}

// applyCharge computes the exact pairwise many-body force. Catalog graphs are
// small enough that a Barnes-Hut tree gains nothing.
func (s *Simulation) applyCharge() {
	for i, b := range s.bodies {
		for j, o := range s.bodies {
			if i == j {
				continue
			}
			x := o.x - b.x
			y := o.y - b.y
			if x == 0 {
				x = s.nextJiggle()
			}
			if y == 0 {
				y = s.nextJiggle()
			}
			l := x*x + y*y
			if l < 1 {
				l = math.Sqrt(l)
			}
			w := s.charge * s.alpha / l
			b.vx += x * w
			b.vy += y * w
		}
	}
}

func (s *Simulation) applyCenter() {
	if len(s.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.x
		sy += b.y
	}
	sx /= float64(len(s.bodies))
	sy /= float64(len(s.bodies))
	for _, b := range s.bodies {
		if b.fixed {
			continue
		}
		b.x -= sx
		b.y -= sy
	}
}

// nextJiggle returns a tiny deterministic offset used to separate coincident nodes.
func (s *Simulation) nextJiggle() float64 {
	s.jiggle = s.jiggle*1664525 + 1013904223
	return (float64(s.jiggle)/math.MaxUint32 - 0.5) * 1e-6
}

// Pin fixes a node at (x, y) and reheats the simulation.
func (s *Simulation) Pin(id string, x, y float64) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	b := s.bodies[i]
	b.fixed, b.fx, b.fy = true, x, y
	b.x, b.y = x, y
	b.vx, b.vy = 0, 0
	s.alpha = math.Max(s.alpha, reheatAlpha)
	return nil
}

// Unpin releases a pinned node.
func (s *Simulation) Unpin(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	s.bodies[i].fixed = false
	return nil
}

// Positions returns the current coordinates keyed by node ID.
func (s *Simulation) Positions() map[string]Point {
	out := make(map[string]Point, len(s.bodies))
	for _, b := range s.bodies {
		out[b.id] = Point{X: b.x, Y: b.y}
	}
	return out
}
