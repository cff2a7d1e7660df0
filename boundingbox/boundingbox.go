// Package boundingbox implements the box algebra used for extents of pads, paths and the whole image.
package boundingbox

import (
	"math"
	"strconv"

	"github.com/akavel/polyclip-go"
)

// Box is [xMin, yMin, xMax, yMax]
type Box [4]float64

// New returns the empty box, the identity of Union
func New() Box {
	return Box{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

// FromRectangle converts a polyclip rectangle, such as the result of Contour.BoundingBox
func FromRectangle(r polyclip.Rectangle) Box {
	return Box{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y}
}

// FromPoints returns the tight box around the points
func FromPoints(points []polyclip.Point) Box {
	if len(points) == 0 {
		return New()
	}
	return FromRectangle(polyclip.Contour(points).BoundingBox())
}

func (b Box) IsEmpty() bool {
	return b[0] > b[2] || b[1] > b[3]
}

func (b Box) Width() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b[2] - b[0]
}

func (b Box) Height() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b[3] - b[1]
}

func (b Box) String() string {
	if b.IsEmpty() {
		return "[empty]"
	}
	return "[" + strconv.FormatFloat(b[0], 'f', 5, 64) +
		", " + strconv.FormatFloat(b[1], 'f', 5, 64) +
		", " + strconv.FormatFloat(b[2], 'f', 5, 64) +
		", " + strconv.FormatFloat(b[3], 'f', 5, 64) + "]"
}

func Union(a, b Box) Box {
	return Box{
		math.Min(a[0], b[0]),
		math.Min(a[1], b[1]),
		math.Max(a[2], b[2]),
		math.Max(a[3], b[3]),
	}
}

func AddPoint(b Box, p polyclip.Point) Box {
	return Union(b, Box{p.X, p.Y, p.X, p.Y})
}

// Translate moves the box, the empty box stays empty
func Translate(b Box, dx, dy float64) Box {
	return Box{b[0] + dx, b[1] + dy, b[2] + dx, b[3] + dy}
}

// TranslateAndUnion replicates the box at every offset and returns the union of the copies
func TranslateAndUnion(b Box, offsets []polyclip.Point) Box {
	retVal := New()
	for _, o := range offsets {
		retVal = Union(retVal, Translate(b, o.X, o.Y))
	}
	return retVal
}
