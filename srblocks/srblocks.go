/*
Step and repeat blocks: the image plotted while a block is active is replicated over a grid of offsets
*/
package srblocks

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/akavel/polyclip-go"
)

var ErrBadCount = errors.New("step and repeat count < 1")

/*
############################## step and repeat blocks #################################
*/
type SRBlock struct {
	numX int
	numY int
	dX   float64
	dY   float64
}

// NewSRBlock creates the block of x columns and y rows, i and j are the pitches
func NewSRBlock(x, y int, i, j float64) (*SRBlock, error) {
	if x < 1 {
		return nil, fmt.Errorf("SRBlock: X %w", ErrBadCount)
	}
	if y < 1 {
		return nil, fmt.Errorf("SRBlock: Y %w", ErrBadCount)
	}
	return &SRBlock{numX: x, numY: y, dX: i, dY: j}, nil
}

func (srblock *SRBlock) String() string {
	if srblock == nil {
		return "<nil>"
	}
	return "Step and repeat block:\n" +
		"\tcontains " + strconv.Itoa(srblock.numX) + " repeats along X axis and " + strconv.Itoa(srblock.numY) + " repeats along Y axis\n" +
		"\tdX=" + strconv.FormatFloat(srblock.dX, 'f', 5, 64) +
		", dY=" + strconv.FormatFloat(srblock.dY, 'f', 5, 64) + "\n"
}

func (srblock *SRBlock) NumX() int {
	return srblock.numX
}

func (srblock *SRBlock) NumY() int {
	return srblock.numY
}

func (srblock *SRBlock) DX() float64 {
	return srblock.dX
}

func (srblock *SRBlock) DY() float64 {
	return srblock.dY
}

// Offsets returns every (col*dX, row*dY) of the grid, column after column
func (srblock *SRBlock) Offsets() []polyclip.Point {
	retVal := make([]polyclip.Point, 0, srblock.numX*srblock.numY)
	for i := 0; i < srblock.numX; i++ {
		addX := float64(i) * srblock.dX
		for j := 0; j < srblock.numY; j++ {
			retVal = append(retVal, polyclip.Point{X: addX, Y: float64(j) * srblock.dY})
		}
	}
	return retVal
}
