package apertures

import (
	"fmt"
	"math"

	"github.com/akavel/polyclip-go"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/VolteraInc/gerber-plotter/boundingbox"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
)

const (
	// polygon vertex coordinates closer to zero are zero
	polySnap = 1e-9
	// vector box deltas below these are dropped
	vectorXSnap = 1e-9
	vectorYSnap = 1e-7
	// decimal places kept after a macro transform
	macroPrecision = 8
)

// PolygonPoints returns the n vertices of the regular polygon inscribed into the
// circle of diameter dia, the first one at startDeg degrees
func PolygonPoints(cx, cy, dia float64, n int, startDeg float64) ([]polyclip.Point, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidGeometry, n)
	}
	r := dia / 2
	start := mgl64.DegToRad(startDeg)
	step := 2 * math.Pi / float64(n)
	retVal := make([]polyclip.Point, n)
	for i := range retVal {
		theta := start + float64(i)*step
		x := r * math.Cos(theta)
		y := r * math.Sin(theta)
		if math.Abs(x) < polySnap {
			x = 0
		}
		if math.Abs(y) < polySnap {
			y = 0
		}
		retVal[i] = polyclip.Point{X: cx + x, Y: cy + y}
	}
	return retVal, nil
}

// VectorQuad returns the corners of the line of the given width from start to end
func VectorQuad(start, end polyclip.Point, width float64) []polyclip.Point {
	theta := math.Atan2(end.Y-start.Y, end.X-start.X)
	dx := width / 2 * math.Sin(theta)
	dy := width / 2 * math.Cos(theta)
	return []polyclip.Point{
		{X: start.X + dx, Y: start.Y - dy},
		{X: end.X + dx, Y: end.Y - dy},
		{X: end.X - dx, Y: end.Y + dy},
		{X: start.X - dx, Y: start.Y + dy},
	}
}

// VectorBox returns the box of the endpoints grown by the projections of the half width
// perpendicular to the line
func VectorBox(start, end polyclip.Point, width float64) boundingbox.Box {
	theta := 0.0
	if start.X != end.X || start.Y != end.Y {
		theta = math.Abs(math.Atan((end.Y - start.Y) / (end.X - start.X)))
	}
	xDelta := width / 2 * math.Sin(theta)
	if xDelta < vectorXSnap {
		xDelta = 0
	}
	yDelta := width / 2 * math.Cos(theta)
	if yDelta < vectorYSnap {
		yDelta = 0
	}
	return boundingbox.Box{
		math.Min(start.X, end.X) - xDelta,
		math.Min(start.Y, end.Y) - yDelta,
		math.Max(start.X, end.X) + xDelta,
		math.Max(start.Y, end.Y) + yDelta,
	}
}

func rectCorners(cx, cy, width, height float64) []polyclip.Point {
	return []polyclip.Point{
		{X: cx - width/2, Y: cy - height/2},
		{X: cx + width/2, Y: cy - height/2},
		{X: cx + width/2, Y: cy + height/2},
		{X: cx - width/2, Y: cy + height/2},
	}
}

// transform rotates the point counter-clockwise by rot degrees about the origin
func transform(p polyclip.Point, rot float64) polyclip.Point {
	if rot != 0 {
		v := mgl64.Rotate2D(mgl64.DegToRad(rot)).Mul2x1(mgl64.Vec2{p.X, p.Y})
		p = polyclip.Point{X: v.X(), Y: v.Y()}
	}
	return polyclip.Point{X: mgl64.Round(p.X, macroPrecision), Y: mgl64.Round(p.Y, macroPrecision)}
}

func transformAll(points []polyclip.Point, rot float64) []polyclip.Point {
	retVal := make([]polyclip.Point, len(points))
	for i := range points {
		retVal[i] = transform(points[i], rot)
	}
	return retVal
}

// rotatedRect is a rect shape when not rotated, a polygon otherwise
func rotatedRect(cx, cy, width, height, rot float64) Shape {
	if rot == 0 {
		c := transform(polyclip.Point{X: cx, Y: cy}, 0)
		return RectShape(c.X, c.Y, width, height, 0)
	}
	return PolyShape(transformAll(rectCorners(cx, cy, width, height), rot))
}

// moireShapes returns crosshair bars, rings from the outside in and maybe the central disc
func moireShapes(cx, cy, outerDia, ringThx, ringGap float64, maxRings int, crossThx, crossLen, rot float64) []Shape {
	retVal := []Shape{
		rotatedRect(cx, cy, crossLen, crossThx, rot),
		rotatedRect(cx, cy, crossThx, crossLen, rot),
	}
	c := transform(polyclip.Point{X: cx, Y: cy}, rot)
	rings := 0
	r := (outerDia - ringThx) / 2
	for r >= ringThx && rings < maxRings {
		retVal = append(retVal, RingShape(c.X, c.Y, r, ringThx))
		rings++
		r -= ringThx + ringGap
	}
	r += 0.5 * ringThx
	if r > 0 && rings < maxRings {
		retVal = append(retVal, CircleShape(c.X, c.Y, r))
	}
	return retVal
}

// thermalShape is a ring clipped by a disc with the horizontal and vertical gap bars cut out
func (e *Engine) thermalShape(cx, cy, outerDia, innerDia, gap, rot float64) (Shape, error) {
	thx := (outerDia - innerDia) / 2
	if thx <= 0 {
		return Shape{}, fmt.Errorf("%w: thermal outer diameter %v must exceed inner diameter %v",
			ErrInvalidGeometry, outerDia, innerDia)
	}
	outerR := outerDia / 2
	c := transform(polyclip.Point{X: cx, Y: cy}, rot)
	box := boundingbox.Box{c.X - outerR, c.Y - outerR, c.X + outerR, c.Y + outerR}
	clip := &Clip{
		MaskID: e.nextMaskID(),
		Shapes: []Shape{RingShape(c.X, c.Y, outerR-thx/2, thx)},
		Mask: []Shape{
			CircleShape(c.X, c.Y, outerR),
			LayerShape(PolTypeClear, box),
			rotatedRect(cx, cy, outerDia, gap, rot),
			rotatedRect(cx, cy, gap, outerDia, rot),
		},
	}
	return Shape{Type: ShapeClip, Clip: clip, Box: box}, nil
}
