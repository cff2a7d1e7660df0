/*
 Interprets the command stream and generates the stream of drawing records
*/
package plotter

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/akavel/polyclip-go"
	"github.com/golang/glog"

	"github.com/VolteraInc/gerber-plotter/apertures"
	"github.com/VolteraInc/gerber-plotter/boundingbox"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/operate"
	"github.com/VolteraInc/gerber-plotter/pathgraph"
	"github.com/VolteraInc/gerber-plotter/srblocks"
	"github.com/VolteraInc/gerber-plotter/xy"
)

// DefaultEpsilon is the distance below which two points are the same
const DefaultEpsilon = 0.0001

var ErrBadOption = errors.New("bad plotter option")

// Options of the job. Zero units and notations are unset, a set value can not be
// changed by the command stream.
type Options struct {
	Units       Units
	BackupUnits Units
	Nota        Notation
	BackupNota  Notation
	// join segments into chains before a path is emitted
	OptimizePaths bool
	// fill every path, implies OptimizePaths
	PlotAsOutline bool
	Epsilon       float64
}

type Option func(*Plotter)

func WithReporter(r Reporter) Option {
	return func(p *Plotter) {
		p.reporter = r
	}
}

/*
	Plotter state. Not safe for concurrent use.
*/
type Plotter struct {
	format        *xy.FormatSpec
	optimize      bool
	plotAsOutline bool
	epsilon       float64

	consumer Consumer
	reporter Reporter
	engine   *apertures.Engine

	tools  map[string]*apertures.Tool
	macros map[string][]apertures.Block
	tool   *apertures.Tool

	pos     polyclip.Point
	box     boundingbox.Box
	mode    IPmode
	quad    QuadMode
	region  bool
	graph   *pathgraph.Graph
	lastOp  ActType
	stepRep []polyclip.Point
	done    bool
	flushed bool

	line int
	diag Diagnostics
	stat Statistic
}

func New(opts Options, consumer Consumer, options ...Option) (*Plotter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	retVal := new(Plotter)
	retVal.format = xy.NewFormatSpec(opts.Units, opts.BackupUnits, opts.Nota, opts.BackupNota)
	retVal.plotAsOutline = opts.PlotAsOutline
	retVal.optimize = opts.OptimizePaths || opts.PlotAsOutline
	retVal.epsilon = opts.Epsilon
	if retVal.epsilon == 0 {
		retVal.epsilon = DefaultEpsilon
	}
	retVal.consumer = consumer
	retVal.engine = apertures.NewEngine()
	retVal.tools = make(map[string]*apertures.Tool)
	retVal.macros = make(map[string][]apertures.Block)
	retVal.box = boundingbox.New()
	retVal.graph = pathgraph.New(retVal.optimize, retVal.epsilon)
	retVal.stepRep = make([]polyclip.Point, 0)
	for _, o := range options {
		o(retVal)
	}
	return retVal, nil
}

func (opts Options) validate() error {
	switch opts.Units {
	case 0, UnitsInch, UnitsMM:
	default:
		return fmt.Errorf("%w: units %d", ErrBadOption, opts.Units)
	}
	switch opts.BackupUnits {
	case 0, UnitsInch, UnitsMM:
	default:
		return fmt.Errorf("%w: backup units %d", ErrBadOption, opts.BackupUnits)
	}
	switch opts.Nota {
	case 0, NotationAbsolute, NotationIncremental:
	default:
		return fmt.Errorf("%w: notation %d", ErrBadOption, opts.Nota)
	}
	switch opts.BackupNota {
	case 0, NotationAbsolute, NotationIncremental:
	default:
		return fmt.Errorf("%w: backup notation %d", ErrBadOption, opts.BackupNota)
	}
	if opts.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon %v", ErrBadOption, opts.Epsilon)
	}
	return nil
}

// Write processes one command to completion
func (p *Plotter) Write(cmd Command) {
	p.line = cmd.SourceLine()
	p.stat.Commands++
	if p.done || p.flushed {
		p.warn("ignoring extra command received after done command")
		return
	}

	switch c := cmd.(type) {
	case OpCommand:
		p.operate(c)
	case SetCommand:
		p.set(c)
	case ToolCommand:
		p.defineTool(c)
	case MacroCommand:
		p.finishPath()
		p.macros[c.Name] = c.Blocks
	case LevelCommand:
		p.level(c)
	case DoneCommand:
		p.done = true
	default:
		p.warn(fmt.Sprintf("unknown command %T", cmd))
	}
}

// Flush ends the job: the open path is emitted, then the size of the image.
// Calling it again does nothing.
func (p *Plotter) Flush() {
	if p.flushed {
		return
	}
	p.finishPath()
	p.emit(Record{Type: RecordSize, Box: p.box, Units: p.format.EffectiveUnits()})
	p.flushed = true
	glog.V(1).Infoln("plotter flushed,", p.stat.String())
}

func (p *Plotter) Diagnostics() Diagnostics {
	return p.diag
}

func (p *Plotter) Statistic() Statistic {
	return p.stat
}

// Done reports whether the done command was received
func (p *Plotter) Done() bool {
	return p.done
}

func (p *Plotter) Box() boundingbox.Box {
	return p.box
}

func (p *Plotter) Format() xy.FormatSpec {
	return *p.format
}

func (p *Plotter) Position() polyclip.Point {
	return p.pos
}

// CurrentTool returns the code of the current tool, empty if there is none
func (p *Plotter) CurrentTool() string {
	if p.tool == nil {
		return ""
	}
	return p.tool.Code
}

func (p *Plotter) Tool(code string) (*apertures.Tool, bool) {
	t, ok := p.tools[code]
	return t, ok
}

func (p *Plotter) Region() bool {
	return p.region
}

func (p *Plotter) Mode() IPmode {
	return p.mode
}

func (p *Plotter) Quad() QuadMode {
	return p.quad
}

func (p *Plotter) warn(message string) {
	w := Warning{Message: message, Line: p.line}
	p.diag.Warnings = append(p.diag.Warnings, w)
	if p.reporter != nil {
		p.reporter.Warn(w)
	}
}

func (p *Plotter) fault(err error) {
	f := Fault{Err: err, Line: p.line}
	p.diag.Faults = append(p.diag.Faults, f)
	if p.reporter != nil {
		p.reporter.Fault(f)
	}
}

func (p *Plotter) emit(r Record) {
	switch r.Type {
	case RecordStroke:
		p.stat.Strokes++
	case RecordFill:
		p.stat.Fills++
	case RecordPad:
		p.stat.Pads++
	case RecordShape:
		p.stat.Shapes++
	case RecordPolarity, RecordRepeat:
		p.stat.Layers++
	}
	glog.V(2).Infoln(r.String())
	if p.consumer != nil {
		p.consumer.Accept(r)
	}
}

// finishPath emits the open path and starts a new one
func (p *Plotter) finishPath() {
	if p.graph.Len() == 0 {
		return
	}
	path := p.graph.Traverse()
	p.graph = pathgraph.New(p.optimize, p.epsilon)

	if !p.region && !p.plotAsOutline && p.tool.Strokable() {
		p.emit(Record{Type: RecordStroke, Width: p.tool.Trace[0], Path: path})
	} else {
		p.emit(Record{Type: RecordFill, Path: path})
	}
}

// updateBox adds the box once for every step repeat offset
func (p *Plotter) updateBox(box boundingbox.Box) {
	if box.IsEmpty() {
		return
	}
	if len(p.stepRep) != 0 {
		box = boundingbox.TranslateAndUnion(box, p.stepRep)
	}
	p.box = boundingbox.Union(p.box, box)
}

func (p *Plotter) operate(c OpCommand) {
	for _, m := range p.format.Finalize() {
		p.warn(m)
	}
	p.stat.Ops++

	op := c.Op
	if op == OpcodeLast {
		p.warn("modal operation commands are deprecated")
		if p.lastOp == 0 {
			p.warn("no previous operation to repeat; ignoring")
			return
		}
		op = p.lastOp
	}

	target, offset := p.format.Resolve(c.Coord, p.pos)
	radius, hasRadius := c.Coord.Get("a")
	hasRadius = hasRadius && radius != 0

	if op == OpcodeD01_DRAW {
		if p.mode == 0 {
			p.warn("no interpolation mode specified; assuming linear")
			p.mode = IPModeLinear
		}
		if p.quad == 0 && p.mode.IsArc() && !hasRadius {
			p.warn("quadrant mode unspecified; assuming single quadrant")
			p.quad = QuadModeSingle
		}
	}

	silhouette := p.region || p.plotAsOutline
	if op == OpcodeD03_FLASH && !silhouette {
		p.finishPath()
	}

	from := p.pos
	result, err := operate.Operate(operate.Params{
		Op:         op,
		Target:     target,
		Offset:     offset,
		Radius:     radius,
		HasRadius:  hasRadius,
		Pos:        p.pos,
		Tool:       p.tool,
		Mode:       p.mode,
		Quad:       p.quad,
		Silhouette: silhouette,
		Graph:      p.graph,
		Epsilon:    p.epsilon,
	})
	p.lastOp = op
	p.pos = result.Pos
	p.updateBox(result.Box)

	switch {
	case err == nil:
	case errors.Is(err, operate.ErrToolNotStrokable):
		p.fault(fmt.Errorf("tool %s: %w", p.CurrentTool(), err))
	case errors.Is(err, operate.ErrImpossibleArc):
		p.warn(fmt.Sprintf("%v from %s to %s; ignoring", err, xy.PointString(from), xy.PointString(target)))
	default:
		p.warn(err.Error())
	}

	if result.Flash {
		if !p.tool.Flashed {
			p.tool.Flashed = true
			p.emit(Record{Type: RecordShape, Tool: p.tool.Code, Shapes: p.tool.Shapes, Box: p.tool.Box})
		}
		p.emit(Record{Type: RecordPad, Tool: p.tool.Code, Point: target})
	}
}

func (p *Plotter) set(c SetCommand) {
	switch {
	case c.Prop == PropRegion:
		region, ok := c.Value.(bool)
		if !ok {
			p.warn(fmt.Sprintf("invalid region value %v; ignoring", c.Value))
			return
		}
		p.finishPath()
		p.region = region

	case xy.IsFormatKey(c.Prop):
		s, ok := c.Value.(string)
		if !ok {
			p.warn(fmt.Sprintf("invalid %s value %v; ignoring", c.Prop, c.Value))
			return
		}
		applied, err := p.format.Set(c.Prop, s)
		if err != nil {
			p.warn(err.Error())
		} else if !applied {
			glog.V(2).Infoln(c.Prop, "is locked, ignoring", s)
		}

	case c.Prop == PropTool:
		code := toolCode(c.Value)
		if p.region {
			p.warn("cannot change tool while region mode is on")
			return
		}
		t, ok := p.tools[code]
		if !ok {
			p.warn("tool " + code + " is not defined")
			return
		}
		p.finishPath()
		p.tool = t

	case c.Prop == PropMode:
		switch v := c.Value.(type) {
		case IPmode:
			p.mode = v
		case string:
			mode, err := ParseIPmode(v)
			if err != nil {
				p.warn(err.Error())
				return
			}
			p.mode = mode
		default:
			p.warn(fmt.Sprintf("invalid mode value %v; ignoring", c.Value))
		}

	case c.Prop == PropQuad:
		switch v := c.Value.(type) {
		case QuadMode:
			p.quad = v
		case string:
			quad, err := ParseQuadMode(v)
			if err != nil {
				p.warn(err.Error())
				return
			}
			p.quad = quad
		default:
			p.warn(fmt.Sprintf("invalid quadrant mode value %v; ignoring", c.Value))
		}

	case c.Prop == PropEpsilon:
		eps, ok := c.Value.(float64)
		if !ok || eps <= 0 {
			p.warn(fmt.Sprintf("invalid epsilon value %v; ignoring", c.Value))
			return
		}
		// the open path keeps the tolerance it was started with
		p.epsilon = eps
		if p.graph.Len() == 0 {
			p.graph = pathgraph.New(p.optimize, p.epsilon)
		}

	default:
		p.warn("unknown property " + c.Prop + "; ignoring")
	}
}

func toolCode(v interface{}) string {
	switch code := v.(type) {
	case string:
		return code
	case int:
		return strconv.Itoa(code)
	case float64:
		return strconv.FormatFloat(code, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (p *Plotter) defineTool(c ToolCommand) {
	if _, ok := p.tools[c.Code]; ok {
		p.warn("tool " + c.Code + " is already defined; ignoring new definition")
		return
	}
	tool, err := p.engine.NewTool(c.Code, c.Tool, p.macros)
	if err != nil {
		p.fault(err)
		return
	}
	glog.V(2).Infoln(tool.String())
	p.finishPath()
	p.tools[c.Code] = tool
	p.tool = tool
}

func (p *Plotter) level(c LevelCommand) {
	p.finishPath()

	switch c.Level {
	case LevelPolarity:
		p.emit(Record{Type: RecordPolarity, Polarity: c.Polarity, Box: p.box})
	case LevelStepRepeat:
		sr, err := srblocks.NewSRBlock(c.StepRepeat.X, c.StepRepeat.Y, c.StepRepeat.I, c.StepRepeat.J)
		if err != nil {
			p.warn(err.Error() + "; ignoring")
			return
		}
		glog.V(1).Infoln(sr.String(), "starts at line", p.line)
		p.stepRep = sr.Offsets()
		offsets := make([]polyclip.Point, len(p.stepRep))
		copy(offsets, p.stepRep)
		p.emit(Record{Type: RecordRepeat, Offsets: offsets, Box: p.box})
	default:
		p.warn("unknown level " + c.Level.String() + "; ignoring")
	}
}
