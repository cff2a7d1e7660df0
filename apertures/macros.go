//Aperture Macros support
package apertures

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/akavel/polyclip-go"

	"github.com/VolteraInc/gerber-plotter/boundingbox"
	"github.com/VolteraInc/gerber-plotter/calculator"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
)

type AMPrimitiveType int

const (
	AMPrimitive_Variable     AMPrimitiveType = -1
	AMPrimitive_Comment      AMPrimitiveType = 0
	AMPrimitive_Circle       AMPrimitiveType = 1
	AMPrimitive_VectLine     AMPrimitiveType = 20
	AMPrimitive_CenterLine   AMPrimitiveType = 21
	AMPrimitive_LowerLeftBox AMPrimitiveType = 22
	AMPRimitive_OutLine      AMPrimitiveType = 4
	AMPrimitive_Polygon      AMPrimitiveType = 5
	AMPrimitive_Moire        AMPrimitiveType = 6
	AMPrimitive_Thermal      AMPrimitiveType = 7
)

func (amp AMPrimitiveType) String() string {
	var retVal string
	switch amp {
	case AMPrimitive_Variable:
		retVal = "variable"
	case AMPrimitive_Comment:
		retVal = "comment"
	case AMPrimitive_Circle:
		retVal = "circle"
	case AMPrimitive_VectLine:
		retVal = "vector line"
	case AMPrimitive_CenterLine:
		retVal = "center line"
	case AMPrimitive_LowerLeftBox:
		retVal = "lower left line"
	case AMPRimitive_OutLine:
		retVal = "outline"
	case AMPrimitive_Polygon:
		retVal = "polygon"
	case AMPrimitive_Moire:
		retVal = "moire"
	case AMPrimitive_Thermal:
		retVal = "thermal"
	default:
		retVal = "unknown"
	}
	return retVal
}

var primitiveNames = map[string]AMPrimitiveType{
	"variable":      AMPrimitive_Variable,
	"comment":       AMPrimitive_Comment,
	"circle":        AMPrimitive_Circle,
	"vect":          AMPrimitive_VectLine,
	"rect":          AMPrimitive_CenterLine,
	"rectLowerLeft": AMPrimitive_LowerLeftBox,
	"outline":       AMPRimitive_OutLine,
	"poly":          AMPrimitive_Polygon,
	"moire":         AMPrimitive_Moire,
	"thermal":       AMPrimitive_Thermal,
}

// ParsePrimitiveType maps block type names of the command stream to primitive types
func ParsePrimitiveType(s string) (AMPrimitiveType, error) {
	if amp, ok := primitiveNames[s]; ok {
		return amp, nil
	}
	return 0, fmt.Errorf("%w: unknown primitive %q", ErrInvalidGeometry, s)
}

// Block is one primitive of an aperture macro. Modifiers maps field names
// ("exp", "rot", "dia", "cx", ...) to expressions over the macro variables $1, $2 ...
// Variable blocks assign Modifiers["value"] to the variable named by Variable.
type Block struct {
	Type      AMPrimitiveType
	Modifiers map[string]string
	Points    [][2]string
	Variable  string
}

func (b Block) String() string {
	return "Aperture macro primitive:\t" + b.Type.String() + " " + fmt.Sprint(b.Modifiers)
}

// blockEval evaluates fields of one block
type blockEval struct {
	block Block
	mods  map[string]float64
}

func (be blockEval) eval(name, expr string) (float64, error) {
	retVal, err := calculator.CalcExpression(expr, be.mods)
	if err == nil {
		return retVal, nil
	}
	if errors.Is(err, calculator.ErrUndefinedVariable) {
		return 0, fmt.Errorf("%w: %s %s: %v", ErrMissingParameter, be.block.Type, name, err)
	}
	return 0, fmt.Errorf("%w: %s %s: %v", ErrInvalidExpression, be.block.Type, name, err)
}

func (be blockEval) required(name string) (float64, error) {
	expr, ok := be.block.Modifiers[name]
	if !ok || len(strings.TrimSpace(expr)) == 0 {
		return 0, fmt.Errorf("%w: %s requires %s", ErrMissingParameter, be.block.Type, name)
	}
	return be.eval(name, expr)
}

func (be blockEval) optional(name string, def float64) (float64, error) {
	expr, ok := be.block.Modifiers[name]
	if !ok || len(strings.TrimSpace(expr)) == 0 {
		return def, nil
	}
	return be.eval(name, expr)
}

// all returns the required fields in the order of names
func (be blockEval) all(names ...string) ([]float64, error) {
	retVal := make([]float64, len(names))
	for i, name := range names {
		v, err := be.required(name)
		if err != nil {
			return nil, err
		}
		retVal[i] = v
	}
	return retVal, nil
}

func (be blockEval) exposure() (PolType, error) {
	exp, err := be.required("exp")
	if err != nil {
		return 0, err
	}
	if exp == 0 {
		return PolTypeClear, nil
	}
	return PolTypeDark, nil
}

func variableName(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "$") {
		s = "$" + s
	}
	return s
}

// replayMacro instantiates the macro with the parameters as $1..$n.
// A change of exposure inserts a layer carrying the box accumulated so far.
func (e *Engine) replayMacro(name string, params []float64, macros map[string][]Block) ([]Shape, boundingbox.Box, error) {
	blocks, ok := macros[name]
	if !ok {
		return nil, boundingbox.New(), fmt.Errorf("%w: %s", ErrUnknownMacro, name)
	}
	mods := make(map[string]float64, len(params))
	for i, p := range params {
		mods["$"+strconv.Itoa(i+1)] = p
	}

	shapes := make([]Shape, 0, len(blocks))
	box := boundingbox.New()
	polarity := PolTypeDark
	for _, block := range blocks {
		be := blockEval{block: block, mods: mods}
		switch block.Type {
		case AMPrimitive_Comment:
			continue
		case AMPrimitive_Variable:
			v, err := be.required("value")
			if err != nil {
				return nil, boundingbox.New(), err
			}
			mods[variableName(block.Variable)] = v
			continue
		}

		exposure := PolTypeDark
		if block.Type != AMPrimitive_Moire && block.Type != AMPrimitive_Thermal {
			var err error
			if exposure, err = be.exposure(); err != nil {
				return nil, boundingbox.New(), err
			}
		}
		if exposure != polarity {
			shapes = append(shapes, LayerShape(exposure, box))
			polarity = exposure
		}

		blockShapes, blockBox, err := e.primitive(be)
		if err != nil {
			return nil, boundingbox.New(), err
		}
		shapes = append(shapes, blockShapes...)
		box = boundingbox.Union(box, blockBox)
	}
	return shapes, box, nil
}

// primitive returns the shapes of one block and their box
func (e *Engine) primitive(be blockEval) ([]Shape, boundingbox.Box, error) {
	empty := boundingbox.New()
	rot, err := be.optional("rot", 0)
	if err != nil {
		return nil, empty, err
	}

	switch be.block.Type {
	case AMPrimitive_Circle:
		v, err := be.all("dia", "cx", "cy")
		if err != nil {
			return nil, empty, err
		}
		r := v[0] / 2
		c := transform(polyclip.Point{X: v[1], Y: v[2]}, rot)
		s := CircleShape(c.X, c.Y, r)
		return []Shape{s}, s.Bounds(), nil

	case AMPrimitive_VectLine:
		v, err := be.all("width", "x1", "y1", "x2", "y2")
		if err != nil {
			return nil, empty, err
		}
		start := polyclip.Point{X: v[1], Y: v[2]}
		end := polyclip.Point{X: v[3], Y: v[4]}
		s := PolyShape(transformAll(VectorQuad(start, end, v[0]), rot))
		if rot == 0 {
			return []Shape{s}, VectorBox(start, end, v[0]), nil
		}
		return []Shape{s}, s.Bounds(), nil

	case AMPrimitive_CenterLine, AMPrimitive_LowerLeftBox:
		var v []float64
		if be.block.Type == AMPrimitive_CenterLine {
			v, err = be.all("width", "height", "cx", "cy")
		} else {
			v, err = be.all("width", "height", "x", "y")
			if err == nil {
				v[2] += v[0] / 2
				v[3] += v[1] / 2
			}
		}
		if err != nil {
			return nil, empty, err
		}
		s := rotatedRect(v[2], v[3], v[0], v[1], rot)
		return []Shape{s}, s.Bounds(), nil

	case AMPRimitive_OutLine:
		points := be.block.Points
		if len(points) < 2 {
			return nil, empty, fmt.Errorf("%w: outline needs at least 2 points, got %d", ErrInvalidGeometry, len(points))
		}
		contour := make([]polyclip.Point, len(points))
		for i, p := range points {
			x, err := be.eval("point x", p[0])
			if err != nil {
				return nil, empty, err
			}
			y, err := be.eval("point y", p[1])
			if err != nil {
				return nil, empty, err
			}
			contour[i] = polyclip.Point{X: x, Y: y}
		}
		if contour[0] != contour[len(contour)-1] {
			return nil, empty, fmt.Errorf("%w: last point must match first point", ErrInvalidGeometry)
		}
		s := PolyShape(transformAll(contour[:len(contour)-1], rot))
		return []Shape{s}, s.Bounds(), nil

	case AMPrimitive_Polygon:
		v, err := be.all("vertices", "cx", "cy", "dia")
		if err != nil {
			return nil, empty, err
		}
		points, err := PolygonPoints(v[1], v[2], v[3], int(math.Round(v[0])), 0)
		if err != nil {
			return nil, empty, err
		}
		s := PolyShape(transformAll(points, rot))
		return []Shape{s}, s.Bounds(), nil

	case AMPrimitive_Moire:
		v, err := be.all("cx", "cy", "outerDia", "ringThx", "ringGap", "maxRings", "crossThx", "crossLen")
		if err != nil {
			return nil, empty, err
		}
		shapes := moireShapes(v[0], v[1], v[2], v[3], v[4], int(math.Round(v[5])), v[6], v[7], rot)
		c := transform(polyclip.Point{X: v[0], Y: v[1]}, rot)
		box := boundingbox.Box{c.X - v[2]/2, c.Y - v[2]/2, c.X + v[2]/2, c.Y + v[2]/2}
		for _, s := range shapes {
			box = boundingbox.Union(box, s.Bounds())
		}
		return shapes, box, nil

	case AMPrimitive_Thermal:
		v, err := be.all("cx", "cy", "outerDia", "innerDia", "gap")
		if err != nil {
			return nil, empty, err
		}
		s, err := e.thermalShape(v[0], v[1], v[2], v[3], v[4], rot)
		if err != nil {
			return nil, empty, err
		}
		return []Shape{s}, s.Box, nil
	}
	return nil, empty, fmt.Errorf("%w: unsupported primitive %v", ErrInvalidGeometry, be.block.Type)
}
