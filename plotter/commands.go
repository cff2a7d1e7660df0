package plotter

import (
	"strconv"

	"github.com/VolteraInc/gerber-plotter/apertures"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/xy"
)

// properties of the set command
const (
	PropUnits       = xy.FormatUnits
	PropBackupUnits = xy.FormatBackupUnits
	PropNota        = xy.FormatNota
	PropBackupNota  = xy.FormatBackupNota
	PropTool        = "tool"
	PropRegion      = "region"
	PropMode        = "mode"
	PropQuad        = "quad"
	PropEpsilon     = "epsilon"
)

// Command is one decoded record of the command stream
type Command interface {
	SourceLine() int
	command()
}

// OpCommand moves, interpolates or flashes. Op may be OpcodeLast to repeat the previous operation.
type OpCommand struct {
	Line  int
	Op    ActType
	Coord xy.Coord
}

// SetCommand changes one property of the plotter. Value is a string for the format keys,
// tool codes, mode ("i", "cw", "ccw") and quad ("s", "m"), a bool for region and
// a float64 for epsilon. Mode and quad also take IPmode and QuadMode values.
type SetCommand struct {
	Line  int
	Prop  string
	Value interface{}
}

// ToolCommand defines the tool with the code
type ToolCommand struct {
	Line int
	Code string
	Tool apertures.ToolDef
}

type MacroCommand struct {
	Line   int
	Name   string
	Blocks []apertures.Block
}

type LevelType int

const (
	LevelPolarity LevelType = iota + 1
	LevelStepRepeat
)

func (lt LevelType) String() string {
	switch lt {
	case LevelPolarity:
		return "polarity"
	case LevelStepRepeat:
		return "step repeat"
	default:
	}
	return "unknown level"
}

type StepRepeat struct {
	X, Y int
	I, J float64
}

func (sr StepRepeat) String() string {
	return "SR: X=" + strconv.Itoa(sr.X) + " Y=" + strconv.Itoa(sr.Y) +
		" I=" + strconv.FormatFloat(sr.I, 'f', 5, 64) + " J=" + strconv.FormatFloat(sr.J, 'f', 5, 64)
}

// LevelCommand starts a new layer. Polarity is used for LevelPolarity, StepRepeat for LevelStepRepeat.
type LevelCommand struct {
	Line       int
	Level      LevelType
	Polarity   PolType
	StepRepeat StepRepeat
}

// DoneCommand ends the job
type DoneCommand struct {
	Line int
}

func (c OpCommand) SourceLine() int    { return c.Line }
func (c SetCommand) SourceLine() int   { return c.Line }
func (c ToolCommand) SourceLine() int  { return c.Line }
func (c MacroCommand) SourceLine() int { return c.Line }
func (c LevelCommand) SourceLine() int { return c.Line }
func (c DoneCommand) SourceLine() int  { return c.Line }

func (OpCommand) command()    {}
func (SetCommand) command()   {}
func (ToolCommand) command()  {}
func (MacroCommand) command() {}
func (LevelCommand) command() {}
func (DoneCommand) command()  {}
