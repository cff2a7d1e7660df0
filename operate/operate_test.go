package operate

import (
	"errors"
	"math"
	"testing"

	"github.com/akavel/polyclip-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolteraInc/gerber-plotter/apertures"
	"github.com/VolteraInc/gerber-plotter/boundingbox"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/pathgraph"
)

const eps = 1e-6

func newTool(t *testing.T, shape string, params ...float64) *apertures.Tool {
	t.Helper()
	tool, err := apertures.NewEngine().NewTool("10", apertures.ToolDef{Shape: shape, Params: params}, nil)
	require.NoError(t, err)
	return tool
}

func pt(x, y float64) polyclip.Point {
	return polyclip.Point{X: x, Y: y}
}

func assertBox(t *testing.T, expected, actual boundingbox.Box) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], 1e-9, "box %v vs %v", expected, actual)
	}
}

func TestOperate_Move(t *testing.T) {
	g := pathgraph.New(false, eps)
	res, err := Operate(Params{Op: OpcodeD02_MOVE, Pos: pt(1, 1), Target: pt(3, 4), Graph: g, Epsilon: eps})
	require.NoError(t, err)
	assert.Equal(t, pt(3, 4), res.Pos)
	assert.True(t, res.Box.IsEmpty())
	assert.False(t, res.Flash)
	assert.Equal(t, 0, g.Len())
}

func TestOperate_Flash(t *testing.T) {
	g := pathgraph.New(false, eps)
	tool := newTool(t, "circle", 2)
	p := Params{Op: OpcodeD03_FLASH, Pos: pt(9, 4), Target: pt(1, 4), Tool: tool, Graph: g, Epsilon: eps}

	res, err := Operate(p)
	require.NoError(t, err)
	assert.True(t, res.Flash)
	assert.Equal(t, pt(1, 4), res.Pos)
	assert.Equal(t, boundingbox.Box{0, 3, 2, 5}, res.Box)
	assert.Equal(t, 0, g.Len())

	p.Silhouette = true
	res, err = Operate(p)
	assert.True(t, errors.Is(err, ErrFlashInRegion))
	assert.False(t, res.Flash)
	assert.True(t, res.Box.IsEmpty())

	p.Silhouette = false
	p.Tool = nil
	_, err = Operate(p)
	assert.True(t, errors.Is(err, ErrNoTool))
}

func TestOperate_Line(t *testing.T) {
	g := pathgraph.New(false, eps)
	p := Params{Op: OpcodeD01_DRAW, Mode: IPModeLinear, Pos: pt(1, 1), Target: pt(9, 4), Tool: newTool(t, "circle", 2), Graph: g, Epsilon: eps}

	res, err := Operate(p)
	require.NoError(t, err)
	assert.Equal(t, pt(9, 4), res.Pos)
	sin, cos := 3/math.Sqrt(73), 8/math.Sqrt(73)
	assertBox(t, boundingbox.Box{1 - sin, 1 - cos, 9 + sin, 4 + cos}, res.Box)
	require.Equal(t, 1, g.Len())
	assert.Equal(t, pathgraph.Path{{Segments: []pathgraph.Segment{
		{Type: pathgraph.SegmentLine, Start: pt(1, 1), End: pt(9, 4)},
	}}}, g.Traverse())

	p.Silhouette = true
	res, err = Operate(p)
	require.NoError(t, err)
	assert.Equal(t, boundingbox.Box{1, 1, 9, 4}, res.Box)

	p.Silhouette = false
	p.Tool = newTool(t, "rect", 2, 1)
	res, err = Operate(p)
	require.NoError(t, err)
	assert.Equal(t, boundingbox.Box{0, 0.5, 10, 4.5}, res.Box)

	p.Tool = nil
	res, err = Operate(p)
	assert.True(t, errors.Is(err, ErrNoTool))
	assert.Equal(t, boundingbox.Box{1, 1, 9, 4}, res.Box)
	assert.Equal(t, 4, g.Len())
}

func TestOperate_MultiQuadrantArc(t *testing.T) {
	g := pathgraph.New(false, eps)
	p := Params{
		Op: OpcodeD01_DRAW, Mode: IPModeCCwC, Quad: QuadModeMulti, Silhouette: true,
		Pos: pt(1, 0), Target: pt(0, 1), Offset: pt(-1, 0), Graph: g, Epsilon: eps,
	}
	res, err := Operate(p)
	require.NoError(t, err)
	assert.Equal(t, pt(0, 1), res.Pos)
	assertBox(t, boundingbox.Box{0, 0, 1, 1}, res.Box)

	p.Mode = IPModeCwC
	res, err = Operate(p)
	require.NoError(t, err)
	assertBox(t, boundingbox.Box{-1, -1, 1, 1}, res.Box)

	path := g.Traverse()
	require.Len(t, path, 2)
	ccw, cw := path[0].Segments[0], path[1].Segments[0]
	assert.Equal(t, pt(0, 0), ccw.Center)
	assert.InDelta(t, math.Pi/2, ccw.Sweep, 1e-12)
	assert.False(t, ccw.LargeArc())
	assert.InDelta(t, 1.5*math.Pi, cw.Sweep, 1e-12)
	assert.True(t, cw.LargeArc())
	assert.Equal(t, IPModeCwC, cw.Dir)
}

func TestOperate_FullCircle(t *testing.T) {
	g := pathgraph.New(false, eps)
	res, err := Operate(Params{
		Op: OpcodeD01_DRAW, Mode: IPModeCCwC, Quad: QuadModeMulti, Tool: newTool(t, "circle", 0.2),
		Pos: pt(1, 0), Target: pt(1, 0), Offset: pt(-1, 0), Graph: g, Epsilon: eps,
	})
	require.NoError(t, err)
	assert.Equal(t, pt(1, 0), res.Pos)
	assertBox(t, boundingbox.Box{-1.1, -1.1, 1.1, 1.1}, res.Box)

	require.Equal(t, 2, g.Len())
	path := g.Traverse()
	assert.Equal(t, pt(-1, 0), path[0].Segments[0].End)
	assert.Equal(t, pt(-1, 0), path[1].Segments[0].Start)
	assert.Equal(t, pt(1, 0), path[1].Segments[0].End)
	for _, sp := range path {
		assert.Equal(t, math.Pi, sp.Segments[0].Sweep)
		assert.Equal(t, 1.0, sp.Segments[0].Radius)
	}
}

func TestOperate_SingleQuadrantArc(t *testing.T) {
	g := pathgraph.New(false, eps)
	p := Params{
		Op: OpcodeD01_DRAW, Mode: IPModeCCwC, Quad: QuadModeSingle, Tool: newTool(t, "circle", 0.2),
		Pos: pt(1, 0), Target: pt(0, 1), Offset: pt(1, 0), Graph: g, Epsilon: eps,
	}
	res, err := Operate(p)
	require.NoError(t, err)
	assert.Equal(t, pt(0, 1), res.Pos)
	assertBox(t, boundingbox.Box{-0.1, -0.1, 1.1, 1.1}, res.Box)

	// clockwise needs the center at (1,1), which i=1, j=0 can not reach
	p.Mode = IPModeCwC
	res, err = Operate(p)
	assert.True(t, errors.Is(err, ErrImpossibleArc))
	assert.Equal(t, pt(1, 0), res.Pos)
	assert.True(t, res.Box.IsEmpty())

	p.Offset = pt(0, -1)
	res, err = Operate(p)
	require.NoError(t, err)
	assertBox(t, boundingbox.Box{-0.1, -0.1, 1.1, 1.1}, res.Box)

	path := g.Traverse()
	require.Len(t, path, 2)
	assert.Equal(t, pt(0, 0), path[0].Segments[0].Center)
	assert.Equal(t, pt(1, 1), path[1].Segments[0].Center)
}

func TestOperate_RadiusArc(t *testing.T) {
	g := pathgraph.New(false, eps)
	res, err := Operate(Params{
		Op: OpcodeD01_DRAW, Mode: IPModeCCwC, Silhouette: true, Radius: 1, HasRadius: true,
		Pos: pt(0, 0), Target: pt(1, 1), Graph: g, Epsilon: eps,
	})
	require.NoError(t, err)
	assertBox(t, boundingbox.Box{0, 0, 1, 1}, res.Box)
	s := g.Traverse()[0].Segments[0]
	assert.InDelta(t, 0, s.Center.X, 1e-9)
	assert.InDelta(t, 1, s.Center.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, s.Sweep, 1e-9)
}

func TestOperate_ArcNeedsStrokableTool(t *testing.T) {
	g := pathgraph.New(false, eps)
	p := Params{
		Op: OpcodeD01_DRAW, Mode: IPModeCCwC, Quad: QuadModeMulti, Tool: newTool(t, "rect", 1, 1),
		Pos: pt(1, 0), Target: pt(0, 1), Offset: pt(-1, 0), Graph: g, Epsilon: eps,
	}
	res, err := Operate(p)
	assert.True(t, errors.Is(err, ErrToolNotStrokable))
	assert.Equal(t, pt(0, 1), res.Pos)
	assert.Equal(t, 0, g.Len())

	// silhouette arcs do not stroke
	p.Silhouette = true
	_, err = Operate(p)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
}
