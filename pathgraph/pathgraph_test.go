package pathgraph

import (
	"math"
	"testing"

	"github.com/akavel/polyclip-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
)

const epsilon = 1e-6

func line(x1, y1, x2, y2 float64) Segment {
	return Segment{Type: SegmentLine, Start: polyclip.Point{X: x1, Y: y1}, End: polyclip.Point{X: x2, Y: y2}}
}

func TestTraverse_NotOptimized(t *testing.T) {
	g := New(false, epsilon)
	g.Add(line(0, 0, 1, 1))
	g.Add(line(1, 1, 2, 2))
	assert.Equal(t, 2, g.Len())

	path := g.Traverse()
	assert.Equal(t, Path{
		{Segments: []Segment{line(0, 0, 1, 1)}},
		{Segments: []Segment{line(1, 1, 2, 2)}},
	}, path)
	assert.Equal(t, 2, g.Len())
}

func TestTraverse_Optimized(t *testing.T) {
	g := New(true, epsilon)
	g.Add(line(0, 0, 1, 1))
	g.Add(line(1, 1, 2, 2))

	assert.Equal(t, Path{
		{Segments: []Segment{line(0, 0, 1, 1), line(1, 1, 2, 2)}},
	}, g.Traverse())
}

func TestTraverse_OptimizedOutOfOrder(t *testing.T) {
	g := New(true, epsilon)
	g.Add(line(1, 1, 2, 2))
	g.Add(line(5, 5, 6, 6))
	g.Add(line(0, 0, 1, 1))
	// reversed: only its end touches the chain's tail
	g.Add(line(3, 3, 2, 2))

	path := g.Traverse()
	require.Len(t, path, 2)
	assert.Equal(t, []Segment{line(0, 0, 1, 1), line(1, 1, 2, 2), line(2, 2, 3, 3)}, path[0].Segments)
	assert.False(t, path[0].Closed)
	assert.Equal(t, polyclip.Point{X: 0, Y: 0}, path[0].Start())
	assert.Equal(t, []Segment{line(5, 5, 6, 6)}, path[1].Segments)
}

func TestTraverse_ClosedSquare(t *testing.T) {
	g := New(true, epsilon)
	g.Add(line(0, 0, 1, 0))
	g.Add(line(1, 0, 1, 1))
	g.Add(line(1, 1, 0, 1))
	g.Add(line(0, 1, 0, 0))

	path := g.Traverse()
	require.Len(t, path, 1)
	assert.True(t, path[0].Closed)
	assert.Equal(t, []Segment{line(0, 0, 1, 0), line(1, 0, 1, 1), line(1, 1, 0, 1)}, path[0].Segments)
}

func TestTraverse_ClosedStartsAtFirstAdded(t *testing.T) {
	g := New(true, epsilon)
	g.Add(line(0, 0, 1, 0))
	g.Add(line(0, 1, 0, 0))
	g.Add(line(1, 1, 0, 1))
	g.Add(line(1, 0, 1, 1))

	// the second and third segments are prepended while growing
	path := g.Traverse()
	require.Len(t, path, 1)
	assert.True(t, path[0].Closed)
	assert.Equal(t, polyclip.Point{X: 0, Y: 0}, path[0].Start())
	assert.Equal(t, []Segment{line(0, 0, 1, 0), line(1, 0, 1, 1), line(1, 1, 0, 1)}, path[0].Segments)
}

func TestTraverse_ClosedChainStopsGrowing(t *testing.T) {
	g := New(true, epsilon)
	g.Add(line(0, 0, 1, 0))
	g.Add(line(1, 0, 0, 0.0000001))
	g.Add(line(0, 0, -1, 0))

	path := g.Traverse()
	require.Len(t, path, 2)
	assert.True(t, path[0].Closed)
	assert.Equal(t, []Segment{line(0, 0, -1, 0)}, path[1].Segments)
}

func TestTraverse_KeepsClosingArc(t *testing.T) {
	g := New(true, epsilon)
	g.Add(line(0, 0, 2, 0))
	g.Add(Segment{
		Type: SegmentArc, Start: polyclip.Point{X: 2, Y: 0}, End: polyclip.Point{X: 0, Y: 0},
		Center: polyclip.Point{X: 1, Y: 0}, Radius: 1, Sweep: math.Pi, Dir: IPModeCCwC,
	})
	path := g.Traverse()
	require.Len(t, path, 1)
	assert.True(t, path[0].Closed)
	assert.Len(t, path[0].Segments, 2)
}

func TestTraverse_EarliestChainWins(t *testing.T) {
	g := New(true, epsilon)
	g.Add(line(0, 0, 1, 0))
	g.Add(line(5, 0, 1, 0))
	g.Add(line(1, 0, 1, 1))

	// the second segment is taken first, the branch to (1,1) starts a new chain
	path := g.Traverse()
	require.Len(t, path, 2)
	assert.Equal(t, []Segment{line(0, 0, 1, 0), line(1, 0, 5, 0)}, path[0].Segments)
	assert.Equal(t, []Segment{line(1, 0, 1, 1)}, path[1].Segments)
}

func TestSegment_Reverse(t *testing.T) {
	arc := Segment{
		Type: SegmentArc, Start: polyclip.Point{X: 1, Y: 0}, End: polyclip.Point{X: 0, Y: 1},
		Radius: 1, Sweep: math.Pi / 2, Dir: IPModeCCwC,
	}
	r := arc.Reverse()
	assert.Equal(t, arc.End, r.Start)
	assert.Equal(t, arc.Start, r.End)
	assert.Equal(t, IPModeCwC, r.Dir)
	assert.Equal(t, arc, r.Reverse())
	assert.False(t, arc.LargeArc())
	arc.Sweep = 1.5 * math.Pi
	assert.True(t, arc.LargeArc())
	assert.Equal(t, line(1, 1, 0, 0), line(0, 0, 1, 1).Reverse())
}
