// Base types for Gerber plotting
package gerberbasetypes

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownToken = errors.New("unknown token")

type GerberApType int

const (
	AptypeCircle GerberApType = iota + 1
	AptypeRectangle
	AptypeObround
	AptypePoly
	AptypeMacro
)

func (ga GerberApType) String() string {
	switch ga {
	case AptypeCircle:
		return "circle aperture"
	case AptypeRectangle:
		return "rectangle aperture"
	case AptypeObround:
		return "obround (box) aperture"
	case AptypePoly:
		return "polygon aperture"
	case AptypeMacro:
		return "macro aperture"
	default:
	}
	return "Unknown aperture type"
}

// anything not named as a standard shape is a macro name
func ParseApType(s string) GerberApType {
	switch s {
	case "circle", "C":
		return AptypeCircle
	case "rect", "R":
		return AptypeRectangle
	case "obround", "O":
		return AptypeObround
	case "poly", "P":
		return AptypePoly
	}
	return AptypeMacro
}

type PolType int

const (
	PolTypeDark PolType = iota + 1
	PolTypeClear
)

// String returns the value written into polarity records
func (p PolType) String() string {
	switch p {
	case PolTypeDark:
		return "dark"
	case PolTypeClear:
		return "clear"
	default:

	}
	return "Unknown polarity"
}

// "C" is clear, everything else is dark
func ParsePolarity(s string) PolType {
	if s == "C" {
		return PolTypeClear
	}
	return PolTypeDark
}

type ActType int

const (
	OpcodeD01_DRAW ActType = iota + 1
	OpcodeD02_MOVE
	OpcodeD03_FLASH
	OpcodeLast
)

func (act ActType) String() string {
	switch act {
	case OpcodeD01_DRAW:
		return "Opcode D01 (DRAW)"
	case OpcodeD02_MOVE:
		return "Opcode D02 (MOVE)"
	case OpcodeD03_FLASH:
		return "Opcode D03 (FLASH)"
	case OpcodeLast:
		return "Opcode (repeat last)"
	default:

	}
	return "Unknown OpCode"
}

func ParseActType(s string) (ActType, error) {
	switch s {
	case "int":
		return OpcodeD01_DRAW, nil
	case "move":
		return OpcodeD02_MOVE, nil
	case "flash":
		return OpcodeD03_FLASH, nil
	case "last":
		return OpcodeLast, nil
	}
	return 0, errUnknown("operation", s)
}

type QuadMode int

const (
	QuadModeSingle QuadMode = iota + 1
	QuadModeMulti
)

func (q QuadMode) String() string {
	switch q {
	case QuadModeSingle:
		return "QuadMode: Single"
	case QuadModeMulti:
		return "QuadMode: Multi"
	default:

	}
	return "Unknown QuadMode"
}

func ParseQuadMode(s string) (QuadMode, error) {
	switch s {
	case "s":
		return QuadModeSingle, nil
	case "m":
		return QuadModeMulti, nil
	}
	return 0, errUnknown("quadrant mode", s)
}

type IPmode int

const (
	IPModeLinear IPmode = iota + 1
	IPModeCwC
	IPModeCCwC
)

func (ipm IPmode) String() string {
	switch ipm {
	case IPModeLinear:
		return "Linear interpolation"
	case IPModeCwC:
		return "Clockwise interpolation"
	case IPModeCCwC:
		return "Counter-clockwise interpolation"
	default:

	}
	return "Unknown interpolation"
}

func (ipm IPmode) IsArc() bool {
	return ipm == IPModeCwC || ipm == IPModeCCwC
}

func ParseIPmode(s string) (IPmode, error) {
	switch s {
	case "i":
		return IPModeLinear, nil
	case "cw":
		return IPModeCwC, nil
	case "ccw":
		return IPModeCCwC, nil
	}
	return 0, errUnknown("interpolation mode", s)
}

type Units int

const (
	UnitsInch Units = iota + 1
	UnitsMM
)

// String returns the value written into size records
func (u Units) String() string {
	switch u {
	case UnitsInch:
		return "in"
	case UnitsMM:
		return "mm"
	default:
	}
	return "Unknown units"
}

func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(s) {
	case "in":
		return UnitsInch, nil
	case "mm":
		return UnitsMM, nil
	}
	return 0, errUnknown("units", s)
}

type Notation int

const (
	NotationAbsolute Notation = iota + 1
	NotationIncremental
)

func (n Notation) String() string {
	switch n {
	case NotationAbsolute:
		return "A"
	case NotationIncremental:
		return "I"
	default:
	}
	return "Unknown notation"
}

func ParseNotation(s string) (Notation, error) {
	switch s {
	case "A":
		return NotationAbsolute, nil
	case "I":
		return NotationIncremental, nil
	}
	return 0, errUnknown("notation", s)
}

func errUnknown(what, s string) error {
	return fmt.Errorf("%s %q: %w", what, s, ErrUnknownToken)
}
