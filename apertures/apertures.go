// Package apertures resolves tool definitions and aperture macros into pad shapes and their bounding boxes.
package apertures

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/akavel/polyclip-go"

	"github.com/VolteraInc/gerber-plotter/boundingbox"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
)

var (
	ErrMissingParameter  = errors.New("missing parameter")
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrInvalidExpression = errors.New("invalid modifier expression")
	ErrUnknownMacro      = errors.New("unknown aperture macro")
)

type ShapeType int

const (
	ShapeCircle ShapeType = iota + 1
	ShapeRect
	ShapePoly
	ShapeRing
	ShapeLayer
	ShapeClip
)

func (st ShapeType) String() string {
	switch st {
	case ShapeCircle:
		return "circle"
	case ShapeRect:
		return "rect"
	case ShapePoly:
		return "poly"
	case ShapeRing:
		return "ring"
	case ShapeLayer:
		return "layer"
	case ShapeClip:
		return "clip"
	default:
	}
	return "unknown shape"
}

// Shape is one drawing primitive of a pad. Which fields are meaningful depends on Type:
//
//	circle: Cx, Cy, R
//	rect:   Cx, Cy, Width, Height and the corner radius R
//	poly:   Points
//	ring:   Cx, Cy, R (mean radius), Width (stroke width)
//	layer:  Polarity, Box - the following shapes are drawn with the polarity
//	clip:   Clip
type Shape struct {
	Type     ShapeType
	Cx       float64
	Cy       float64
	R        float64
	Width    float64
	Height   float64
	Points   []polyclip.Point
	Polarity PolType
	Box      boundingbox.Box
	Clip     *Clip
}

// Clip draws Shapes through the mask. Mask is a shape list of its own, layers included.
type Clip struct {
	MaskID string
	Shapes []Shape
	Mask   []Shape
}

func CircleShape(cx, cy, r float64) Shape {
	return Shape{Type: ShapeCircle, Cx: cx, Cy: cy, R: r}
}

func RectShape(cx, cy, width, height, r float64) Shape {
	return Shape{Type: ShapeRect, Cx: cx, Cy: cy, Width: width, Height: height, R: r}
}

func PolyShape(points []polyclip.Point) Shape {
	return Shape{Type: ShapePoly, Points: points}
}

func RingShape(cx, cy, r, width float64) Shape {
	return Shape{Type: ShapeRing, Cx: cx, Cy: cy, R: r, Width: width}
}

func LayerShape(polarity PolType, box boundingbox.Box) Shape {
	return Shape{Type: ShapeLayer, Polarity: polarity, Box: box}
}

// Bounds returns the extent of the shape. Layers have none.
func (s Shape) Bounds() boundingbox.Box {
	switch s.Type {
	case ShapeCircle:
		return boundingbox.Box{s.Cx - s.R, s.Cy - s.R, s.Cx + s.R, s.Cy + s.R}
	case ShapeRect:
		return boundingbox.Box{s.Cx - s.Width/2, s.Cy - s.Height/2, s.Cx + s.Width/2, s.Cy + s.Height/2}
	case ShapePoly:
		return boundingbox.FromPoints(s.Points)
	case ShapeRing:
		r := s.R + s.Width/2
		return boundingbox.Box{s.Cx - r, s.Cy - r, s.Cx + r, s.Cy + r}
	case ShapeClip:
		retVal := boundingbox.New()
		if s.Clip != nil {
			for _, m := range s.Clip.Shapes {
				retVal = boundingbox.Union(retVal, m.Bounds())
			}
		}
		return retVal
	}
	return boundingbox.New()
}

func (s Shape) String() string {
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 5, 64)
	}
	switch s.Type {
	case ShapeCircle:
		return "circle (" + f(s.Cx) + "," + f(s.Cy) + ") r=" + f(s.R)
	case ShapeRect:
		return "rect (" + f(s.Cx) + "," + f(s.Cy) + ") " + f(s.Width) + "x" + f(s.Height) + " r=" + f(s.R)
	case ShapePoly:
		return "poly of " + strconv.Itoa(len(s.Points)) + " points"
	case ShapeRing:
		return "ring (" + f(s.Cx) + "," + f(s.Cy) + ") r=" + f(s.R) + " width=" + f(s.Width)
	case ShapeLayer:
		return "layer " + s.Polarity.String() + " " + s.Box.String()
	case ShapeClip:
		if s.Clip == nil {
			return "clip <nil>"
		}
		return "clip " + s.Clip.MaskID
	}
	return s.Type.String()
}

// ToolDef is the definition of a tool as it comes from the command stream.
// Shape is "circle", "rect", "obround", "poly" or the name of a macro.
type ToolDef struct {
	Shape  string
	Params []float64
	Hole   []float64
}

type Tool struct {
	Code   string
	Shapes []Shape
	Box    boundingbox.Box
	// widths a path drawn by the tool is stroked with, empty if the tool can not trace
	Trace []float64
	// set once the shape of the tool has been emitted
	Flashed bool
}

func (t *Tool) String() string {
	if t == nil {
		return "<nil>"
	}
	return "Tool " + t.Code + ": " + strconv.Itoa(len(t.Shapes)) + " shape(s), box " + t.Box.String() +
		", trace widths " + fmt.Sprint(t.Trace)
}

// Strokable reports whether the tool draws with a single round width
func (t *Tool) Strokable() bool {
	return t != nil && len(t.Trace) == 1
}

// Engine builds tools. It owns the counter thermal mask ids are taken from,
// so every mask it creates gets a distinct id.
type Engine struct {
	maskSeed int
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) nextMaskID() string {
	e.maskSeed++
	return "mask-" + strconv.Itoa(e.maskSeed)
}

// NewTool builds the tool. Circles and hole-less rectangles can trace paths with their
// defining dimensions as the widths.
func (e *Engine) NewTool(code string, def ToolDef, macros map[string][]Block) (*Tool, error) {
	shapes, box, err := e.Build(def, macros)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", code, err)
	}
	retVal := &Tool{Code: code, Shapes: shapes, Box: box}
	if len(def.Hole) == 0 {
		switch ParseApType(def.Shape) {
		case AptypeCircle:
			retVal.Trace = []float64{def.Params[0]}
		case AptypeRectangle:
			retVal.Trace = []float64{def.Params[0], def.Params[1]}
		}
	}
	return retVal, nil
}

// Build returns the shapes of the tool and their box
func (e *Engine) Build(def ToolDef, macros map[string][]Block) ([]Shape, boundingbox.Box, error) {
	apType := ParseApType(def.Shape)
	if apType == AptypeMacro {
		return e.replayMacro(def.Shape, def.Params, macros)
	}

	var base Shape
	switch apType {
	case AptypeCircle:
		if len(def.Params) < 1 {
			return nil, boundingbox.New(), missing("circle diameter")
		}
		base = CircleShape(0, 0, def.Params[0]/2)
	case AptypeRectangle, AptypeObround:
		if len(def.Params) < 2 {
			return nil, boundingbox.New(), missing(apType.String() + " width and height")
		}
		w, h := def.Params[0], def.Params[1]
		r := 0.0
		if apType == AptypeObround {
			r = 0.5 * math.Min(w, h)
		}
		base = RectShape(0, 0, w, h, r)
	case AptypePoly:
		if len(def.Params) < 2 {
			return nil, boundingbox.New(), missing("polygon diameter and number of vertices")
		}
		rot := 0.0
		if len(def.Params) > 2 {
			rot = def.Params[2]
		}
		points, err := PolygonPoints(0, 0, def.Params[0], int(math.Round(def.Params[1])), rot)
		if err != nil {
			return nil, boundingbox.New(), err
		}
		base = PolyShape(points)
	}

	box := base.Bounds()
	shapes := []Shape{base}
	switch len(def.Hole) {
	case 0:
	case 1:
		shapes = append(shapes, LayerShape(PolTypeClear, box), CircleShape(0, 0, def.Hole[0]/2))
	case 2:
		shapes = append(shapes, LayerShape(PolTypeClear, box), RectShape(0, 0, def.Hole[0], def.Hole[1], 0))
	default:
		return nil, boundingbox.New(), fmt.Errorf("%w: hole takes 1 or 2 values, got %d", ErrInvalidGeometry, len(def.Hole))
	}
	return shapes, box, nil
}

func missing(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, what)
}
