// Package pathgraph collects the segments of an open path and orders them into subpaths.
package pathgraph

import (
	"math"
	"strconv"

	"github.com/akavel/polyclip-go"

	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/xy"
)

type SegmentType int

const (
	SegmentLine SegmentType = iota + 1
	SegmentArc
)

func (st SegmentType) String() string {
	switch st {
	case SegmentLine:
		return "line"
	case SegmentArc:
		return "arc"
	default:
	}
	return "unknown segment"
}

// Segment is a directed line or arc. Arc fields are zero for lines.
type Segment struct {
	Type   SegmentType
	Start  polyclip.Point
	End    polyclip.Point
	Center polyclip.Point
	Radius float64
	// swept angle in radians, always positive
	Sweep float64
	Dir   IPmode
}

// LargeArc reports whether the arc sweeps more than a half circle
func (s Segment) LargeArc() bool {
	return s.Type == SegmentArc && s.Sweep > math.Pi
}

// Reverse returns the segment drawn from its end to its start
func (s Segment) Reverse() Segment {
	retVal := s
	retVal.Start, retVal.End = s.End, s.Start
	if s.Type == SegmentArc {
		if s.Dir == IPModeCwC {
			retVal.Dir = IPModeCCwC
		} else {
			retVal.Dir = IPModeCwC
		}
	}
	return retVal
}

func (s Segment) String() string {
	retVal := s.Type.String() + " " + xy.PointString(s.Start) + " -> " + xy.PointString(s.End)
	if s.Type == SegmentArc {
		retVal = retVal + " center " + xy.PointString(s.Center) +
			" r=" + strconv.FormatFloat(s.Radius, 'f', 5, 64) + " " + s.Dir.String()
	}
	return retVal
}

// SubPath is a chain of connected segments. A closed subpath returns to its start,
// the closing line is implied.
type SubPath struct {
	Segments []Segment
	Closed   bool
}

func (sp SubPath) Start() polyclip.Point {
	if len(sp.Segments) == 0 {
		return polyclip.Point{}
	}
	return sp.Segments[0].Start
}

type Path []SubPath

// Graph buffers the segments of the path being plotted
type Graph struct {
	optimize bool
	epsilon  float64
	segments []Segment
}

// New creates the graph. With optimize set, Traverse joins segments sharing endpoints
// into chains, otherwise every segment stays its own subpath in the order added.
func New(optimize bool, epsilon float64) *Graph {
	return &Graph{optimize: optimize, epsilon: epsilon, segments: make([]Segment, 0)}
}

func (g *Graph) Add(s Segment) {
	g.segments = append(g.segments, s)
}

func (g *Graph) Len() int {
	return len(g.segments)
}

func (g *Graph) Optimize() bool {
	return g.optimize
}

// Traverse returns the buffered segments as subpaths. Chains keep the order of their
// first segments. The graph itself is not modified.
func (g *Graph) Traverse() Path {
	retVal := make(Path, 0)
	if !g.optimize {
		for _, s := range g.segments {
			retVal = append(retVal, SubPath{Segments: []Segment{s}})
		}
		return retVal
	}

	used := make([]bool, len(g.segments))
	for i := range g.segments {
		if used[i] {
			continue
		}
		used[i] = true
		retVal = append(retVal, g.finish(g.grow(i, used)))
	}
	return retVal
}

// grow extends the chain started by segment first at both ends until nothing matches
// or the chain is closed. It also returns the position of segment first in the chain.
func (g *Graph) grow(first int, used []bool) ([]Segment, int) {
	chain := []Segment{g.segments[first]}
	seed := 0
	for extended := true; extended; {
		extended = false
		for j, s := range g.segments {
			if used[j] {
				continue
			}
			head := chain[0].Start
			tail := chain[len(chain)-1].End
			if len(chain) > 1 && xy.Equals(tail, head, g.epsilon) {
				return chain, seed
			}
			switch {
			case xy.Equals(s.Start, tail, g.epsilon):
				chain = append(chain, s)
			case xy.Equals(s.End, tail, g.epsilon):
				chain = append(chain, s.Reverse())
			case xy.Equals(s.End, head, g.epsilon):
				chain = append([]Segment{s}, chain...)
				seed++
			case xy.Equals(s.Start, head, g.epsilon):
				chain = append([]Segment{s.Reverse()}, chain...)
				seed++
			default:
				continue
			}
			used[j] = true
			extended = true
		}
	}
	return chain, seed
}

// finish marks a closed chain and rotates it to start at its earliest added segment
func (g *Graph) finish(chain []Segment, seed int) SubPath {
	retVal := SubPath{Segments: chain}
	if len(chain) > 1 && xy.Equals(chain[len(chain)-1].End, chain[0].Start, g.epsilon) {
		retVal.Closed = true
		if seed > 0 {
			chain = append(append(make([]Segment, 0, len(chain)), chain[seed:]...), chain[:seed]...)
			retVal.Segments = chain
		}
		if chain[len(chain)-1].Type == SegmentLine {
			retVal.Segments = chain[:len(chain)-1]
		}
	}
	return retVal
}
