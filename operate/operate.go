/*
 Resolves one plotter operation (move, interpolate, flash) into the new position,
 the segments added to the open path and the bounding box the operation covers.
*/
package operate

import (
	"errors"
	"math"

	"github.com/akavel/polyclip-go"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/VolteraInc/gerber-plotter/apertures"
	"github.com/VolteraInc/gerber-plotter/boundingbox"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/pathgraph"
)

var (
	ErrImpossibleArc    = errors.New("impossible arc")
	ErrToolNotStrokable = errors.New("arc requires a strokable tool")
	ErrFlashInRegion    = errors.New("cannot flash while in region mode")
	ErrNoTool           = errors.New("no tool selected")
)

// axis extreme angles of a circle
var extremes = [4]float64{0, mgl64.DegToRad(90), mgl64.DegToRad(180), mgl64.DegToRad(270)}

type Params struct {
	Op ActType
	// resolved end point of the operation
	Target polyclip.Point
	// arc center offset (i, j)
	Offset    polyclip.Point
	Radius    float64
	HasRadius bool
	Pos       polyclip.Point
	Tool      *apertures.Tool
	Mode      IPmode
	Quad      QuadMode
	// region or outline mode: paths describe a silhouette and are never stroked
	Silhouette bool
	Graph      *pathgraph.Graph
	Epsilon    float64
}

type Result struct {
	Pos   polyclip.Point
	Box   boundingbox.Box
	Flash bool
}

// Operate executes the operation. The result is always usable; an error tells
// what had to be dropped: ErrImpossibleArc keeps the position, ErrToolNotStrokable
// moves to the target without drawing, ErrFlashInRegion and ErrNoTool move without
// a placement (a line drawn without a tool is still added to the path).
func Operate(p Params) (Result, error) {
	switch p.Op {
	case OpcodeD02_MOVE:
		return Result{Pos: p.Target, Box: boundingbox.New()}, nil
	case OpcodeD03_FLASH:
		return flash(p)
	case OpcodeD01_DRAW:
		if p.Mode.IsArc() {
			return arc(p)
		}
		return line(p)
	}
	return Result{Pos: p.Pos, Box: boundingbox.New()}, errors.New("unsupported operation " + p.Op.String())
}

func flash(p Params) (Result, error) {
	retVal := Result{Pos: p.Target, Box: boundingbox.New()}
	if p.Silhouette {
		return retVal, ErrFlashInRegion
	}
	if p.Tool == nil {
		return retVal, ErrNoTool
	}
	retVal.Box = boundingbox.Translate(p.Tool.Box, p.Target.X, p.Target.Y)
	retVal.Flash = true
	return retVal, nil
}

func line(p Params) (Result, error) {
	start, end := p.Pos, p.Target
	p.Graph.Add(pathgraph.Segment{Type: pathgraph.SegmentLine, Start: start, End: end})

	retVal := Result{Pos: end}
	switch {
	case p.Silhouette || p.Tool == nil:
		retVal.Box = boundingbox.FromPoints([]polyclip.Point{start, end})
	case p.Tool.Strokable():
		retVal.Box = apertures.VectorBox(start, end, p.Tool.Trace[0])
	default:
		retVal.Box = boundingbox.Union(
			boundingbox.Translate(p.Tool.Box, start.X, start.Y),
			boundingbox.Translate(p.Tool.Box, end.X, end.Y))
	}
	if p.Tool == nil && !p.Silhouette {
		return retVal, ErrNoTool
	}
	return retVal, nil
}

func arc(p Params) (Result, error) {
	start, end := p.Pos, p.Target
	if !p.Silhouette && !p.Tool.Strokable() {
		return Result{Pos: end, Box: boundingbox.New()}, ErrToolNotStrokable
	}

	var segments []pathgraph.Segment
	if p.Quad == QuadModeMulti && !p.HasRadius && math.Hypot(end.X-start.X, end.Y-start.Y) <= p.Epsilon {
		segments = fullCircle(p)
	} else if s, ok := bestArc(p); ok {
		segments = []pathgraph.Segment{s}
	}
	if len(segments) == 0 {
		return Result{Pos: p.Pos, Box: boundingbox.New()}, ErrImpossibleArc
	}

	box := boundingbox.New()
	for _, s := range segments {
		p.Graph.Add(s)
		box = boundingbox.Union(box, arcBox(s))
	}
	if !p.Silhouette {
		half := p.Tool.Trace[0] / 2
		box = boundingbox.Box{box[0] - half, box[1] - half, box[2] + half, box[3] + half}
	}
	return Result{Pos: end, Box: box}, nil
}

// fullCircle splits a closed multi quadrant arc into two half circles
func fullCircle(p Params) []pathgraph.Segment {
	c := polyclip.Point{X: p.Pos.X + p.Offset.X, Y: p.Pos.Y + p.Offset.Y}
	r := mgl64.Vec2{p.Offset.X, p.Offset.Y}.Len()
	if r <= p.Epsilon {
		return nil
	}
	mid := polyclip.Point{X: 2*c.X - p.Pos.X, Y: 2*c.Y - p.Pos.Y}
	first := pathgraph.Segment{
		Type: pathgraph.SegmentArc, Start: p.Pos, End: mid, Center: c, Radius: r, Sweep: math.Pi, Dir: p.Mode,
	}
	second := first
	second.Start, second.End = mid, p.Target
	return []pathgraph.Segment{first, second}
}

// centers lists the possible arc centers of the operation
func centers(p Params) []polyclip.Point {
	start, end := p.Pos, p.Target
	if p.HasRadius {
		return radiusCenters(start, end, math.Abs(p.Radius))
	}
	if p.Quad == QuadModeMulti {
		return []polyclip.Point{{X: start.X + p.Offset.X, Y: start.Y + p.Offset.Y}}
	}
	i, j := math.Abs(p.Offset.X), math.Abs(p.Offset.Y)
	return []polyclip.Point{
		{X: start.X + i, Y: start.Y + j},
		{X: start.X - i, Y: start.Y + j},
		{X: start.X - i, Y: start.Y - j},
		{X: start.X + i, Y: start.Y - j},
	}
}

// radiusCenters returns the centers of the circles of radius r through both points
func radiusCenters(start, end polyclip.Point, r float64) []polyclip.Point {
	chord := mgl64.Vec2{end.X - start.X, end.Y - start.Y}
	d := chord.Len()
	if d == 0 || d > 2*r {
		if d > 0 && d-2*r < 1e-9 {
			mid := polyclip.Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
			return []polyclip.Point{mid}
		}
		return nil
	}
	h := math.Sqrt(r*r - d*d/4)
	mid := mgl64.Vec2{(start.X + end.X) / 2, (start.Y + end.Y) / 2}
	normal := mgl64.Vec2{-chord.Y() / d, chord.X() / d}
	a := mid.Add(normal.Mul(h))
	b := mid.Sub(normal.Mul(h))
	return []polyclip.Point{{X: a.X(), Y: a.Y()}, {X: b.X(), Y: b.Y()}}
}

// bestArc picks the valid center with the smallest sweep
func bestArc(p Params) (pathgraph.Segment, bool) {
	var retVal pathgraph.Segment
	found := false
	for _, c := range centers(p) {
		r1 := math.Hypot(p.Pos.X-c.X, p.Pos.Y-c.Y)
		r2 := math.Hypot(p.Target.X-c.X, p.Target.Y-c.Y)
		if r1 <= p.Epsilon || math.Abs(r1-r2) > p.Epsilon {
			continue
		}
		sweep := sweepAngle(p.Pos, p.Target, c, p.Mode)
		if p.Quad == QuadModeSingle && sweep > math.Pi/2+p.Epsilon {
			continue
		}
		if found && sweep >= retVal.Sweep {
			continue
		}
		found = true
		retVal = pathgraph.Segment{
			Type:   pathgraph.SegmentArc,
			Start:  p.Pos,
			End:    p.Target,
			Center: c,
			Radius: (r1 + r2) / 2,
			Sweep:  sweep,
			Dir:    p.Mode,
		}
	}
	return retVal, found
}

// sweepAngle returns the angle swept from start to end around c in the direction, in [0, 2π)
func sweepAngle(start, end, c polyclip.Point, dir IPmode) float64 {
	a1 := math.Atan2(start.Y-c.Y, start.X-c.X)
	a2 := math.Atan2(end.Y-c.Y, end.X-c.X)
	if dir == IPModeCwC {
		return normalize(a1 - a2)
	}
	return normalize(a2 - a1)
}

func normalize(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// arcBox is the tight box of the swept arc
func arcBox(s pathgraph.Segment) boundingbox.Box {
	retVal := boundingbox.FromPoints([]polyclip.Point{s.Start, s.End})
	a1 := math.Atan2(s.Start.Y-s.Center.Y, s.Start.X-s.Center.X)
	for _, e := range extremes {
		var from float64
		if s.Dir == IPModeCwC {
			from = normalize(a1 - e)
		} else {
			from = normalize(e - a1)
		}
		if from <= s.Sweep {
			retVal = boundingbox.AddPoint(retVal, polyclip.Point{
				X: s.Center.X + s.Radius*math.Cos(e),
				Y: s.Center.Y + s.Radius*math.Sin(e),
			})
		}
	}
	return retVal
}
