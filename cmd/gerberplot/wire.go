package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/akavel/polyclip-go"

	"github.com/VolteraInc/gerber-plotter/apertures"
	"github.com/VolteraInc/gerber-plotter/boundingbox"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/pathgraph"
	"github.com/VolteraInc/gerber-plotter/plotter"
	"github.com/VolteraInc/gerber-plotter/xy"
)

var ErrBadCommand = errors.New("bad command record")

/*
######################## command records (input) ###########################
*/

type wireCommand struct {
	Kind   string                       `json:"kind"`
	Line   int                          `json:"line"`
	Op     string                       `json:"op"`
	Coord  map[string]float64           `json:"coord"`
	Prop   string                       `json:"prop"`
	Value  json.RawMessage              `json:"value"`
	Code   json.RawMessage              `json:"code"`
	Tool   wireToolDef                  `json:"tool"`
	Name   string                       `json:"name"`
	Blocks []map[string]json.RawMessage `json:"blocks"`
	Level  string                       `json:"level"`
}

type wireToolDef struct {
	Shape  string    `json:"shape"`
	Params []float64 `json:"params"`
	Hole   []float64 `json:"hole"`
}

type wireStepRepeat struct {
	X int     `json:"x"`
	Y int     `json:"y"`
	I float64 `json:"i"`
	J float64 `json:"j"`
}

// Decoder reads command records, one JSON object per line
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Decoder{scanner: scanner}
}

// Next returns the next command, io.EOF at the end of the input
func (d *Decoder) Next() (plotter.Command, error) {
	for d.scanner.Scan() {
		d.line++
		raw := d.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var wc wireCommand
		if err := json.Unmarshal(raw, &wc); err != nil {
			return nil, fmt.Errorf("input line %d: %w: %v", d.line, ErrBadCommand, err)
		}
		cmd, err := wc.command()
		if err != nil {
			return nil, fmt.Errorf("input line %d: %w", d.line, err)
		}
		return cmd, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (wc wireCommand) command() (plotter.Command, error) {
	switch wc.Kind {
	case "op":
		op, err := ParseActType(wc.Op)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadCommand, err)
		}
		return plotter.OpCommand{Line: wc.Line, Op: op, Coord: xy.Coord(wc.Coord)}, nil

	case "set":
		var value interface{}
		if err := json.Unmarshal(wc.Value, &value); err != nil {
			return nil, fmt.Errorf("%w: set %s: %v", ErrBadCommand, wc.Prop, err)
		}
		return plotter.SetCommand{Line: wc.Line, Prop: wc.Prop, Value: value}, nil

	case "tool":
		code, err := scalar(wc.Code)
		if err != nil {
			return nil, fmt.Errorf("%w: tool code: %v", ErrBadCommand, err)
		}
		return plotter.ToolCommand{Line: wc.Line, Code: code, Tool: apertures.ToolDef{
			Shape:  wc.Tool.Shape,
			Params: wc.Tool.Params,
			Hole:   wc.Tool.Hole,
		}}, nil

	case "macro":
		blocks := make([]apertures.Block, 0, len(wc.Blocks))
		for _, wb := range wc.Blocks {
			b, err := block(wb)
			if err != nil {
				return nil, fmt.Errorf("%w: macro %s: %v", ErrBadCommand, wc.Name, err)
			}
			blocks = append(blocks, b)
		}
		return plotter.MacroCommand{Line: wc.Line, Name: wc.Name, Blocks: blocks}, nil

	case "level":
		switch wc.Level {
		case "polarity":
			s, err := scalar(wc.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: polarity: %v", ErrBadCommand, err)
			}
			return plotter.LevelCommand{Line: wc.Line, Level: plotter.LevelPolarity, Polarity: ParsePolarity(s)}, nil
		case "stepRepeat":
			var sr wireStepRepeat
			if err := json.Unmarshal(wc.Value, &sr); err != nil {
				return nil, fmt.Errorf("%w: step repeat: %v", ErrBadCommand, err)
			}
			return plotter.LevelCommand{Line: wc.Line, Level: plotter.LevelStepRepeat,
				StepRepeat: plotter.StepRepeat{X: sr.X, Y: sr.Y, I: sr.I, J: sr.J}}, nil
		}
		return nil, fmt.Errorf("%w: unknown level %q", ErrBadCommand, wc.Level)

	case "done":
		return plotter.DoneCommand{Line: wc.Line}, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrBadCommand, wc.Kind)
}

// scalar returns a JSON string or number as text
func scalar(raw json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unexpected value %s", string(raw))
}

// block decodes one macro block. Modifiers are expressions given as strings or numbers.
func block(wb map[string]json.RawMessage) (apertures.Block, error) {
	var retVal apertures.Block
	typ, err := scalar(wb["type"])
	if err != nil {
		return retVal, fmt.Errorf("block type: %v", err)
	}
	if retVal.Type, err = apertures.ParsePrimitiveType(typ); err != nil {
		return retVal, err
	}
	retVal.Modifiers = make(map[string]string)
	for key, raw := range wb {
		switch key {
		case "type":
		case "name":
			if retVal.Variable, err = scalar(raw); err != nil {
				return retVal, fmt.Errorf("variable name: %v", err)
			}
		case "points":
			var points [][]json.RawMessage
			if err = json.Unmarshal(raw, &points); err != nil {
				return retVal, fmt.Errorf("points: %v", err)
			}
			for _, p := range points {
				if len(p) != 2 {
					return retVal, fmt.Errorf("point of %d values", len(p))
				}
				x, errX := scalar(p[0])
				y, errY := scalar(p[1])
				if errX != nil || errY != nil {
					return retVal, fmt.Errorf("bad point %s", string(raw))
				}
				retVal.Points = append(retVal.Points, [2]string{x, y})
			}
		default:
			if retVal.Modifiers[key], err = scalar(raw); err != nil {
				return retVal, fmt.Errorf("%s: %v", key, err)
			}
		}
	}
	return retVal, nil
}

/*
######################## drawing records (output) ###########################
*/

// Encoder writes drawing records, one JSON object per line
type Encoder struct {
	w   *bufio.Writer
	enc *json.Encoder
	err error
}

func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	return &Encoder{w: bw, enc: json.NewEncoder(bw)}
}

// Accept encodes the record. The first write error stops the encoder, Flush returns it.
func (e *Encoder) Accept(r plotter.Record) {
	if e.err != nil {
		return
	}
	e.err = e.enc.Encode(recordMap(r))
}

func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func recordMap(r plotter.Record) map[string]interface{} {
	retVal := map[string]interface{}{"type": r.Type.String()}
	switch r.Type {
	case plotter.RecordStroke:
		retVal["width"] = r.Width
		retVal["path"] = pathList(r.Path)
	case plotter.RecordFill:
		retVal["path"] = pathList(r.Path)
	case plotter.RecordPolarity:
		retVal["polarity"] = r.Polarity.String()
		retVal["box"] = boxList(r.Box)
	case plotter.RecordRepeat:
		offsets := make([][2]float64, len(r.Offsets))
		for i, o := range r.Offsets {
			offsets[i] = point(o)
		}
		retVal["offsets"] = offsets
		retVal["box"] = boxList(r.Box)
	case plotter.RecordSize:
		retVal["box"] = boxList(r.Box)
		retVal["units"] = r.Units.String()
	case plotter.RecordShape:
		retVal["tool"] = r.Tool
		retVal["shape"] = shapeList(r.Shapes)
		retVal["box"] = boxList(r.Box)
	case plotter.RecordPad:
		retVal["tool"] = r.Tool
		retVal["x"] = r.Point.X
		retVal["y"] = r.Point.Y
	}
	return retVal
}

func point(p polyclip.Point) [2]float64 {
	return [2]float64{p.X, p.Y}
}

// boxList returns nil for the empty box, JSON has no infinity
func boxList(b boundingbox.Box) []float64 {
	if b.IsEmpty() {
		return nil
	}
	return []float64{b[0], b[1], b[2], b[3]}
}

func pathList(path pathgraph.Path) []interface{} {
	retVal := make([]interface{}, 0, len(path))
	for _, sp := range path {
		segments := make([]interface{}, 0, len(sp.Segments))
		for _, s := range sp.Segments {
			seg := map[string]interface{}{
				"type":  s.Type.String(),
				"start": point(s.Start),
				"end":   point(s.End),
			}
			if s.Type == pathgraph.SegmentArc {
				seg["center"] = point(s.Center)
				seg["radius"] = s.Radius
				seg["sweep"] = s.Sweep
				seg["largeArc"] = s.LargeArc()
				if s.Dir == IPModeCwC {
					seg["dir"] = "cw"
				} else {
					seg["dir"] = "ccw"
				}
			}
			segments = append(segments, seg)
		}
		retVal = append(retVal, map[string]interface{}{"closed": sp.Closed, "segments": segments})
	}
	return retVal
}

func shapeList(shapes []apertures.Shape) []interface{} {
	retVal := make([]interface{}, 0, len(shapes))
	for _, s := range shapes {
		m := map[string]interface{}{"type": s.Type.String()}
		switch s.Type {
		case apertures.ShapeCircle:
			m["cx"], m["cy"], m["r"] = s.Cx, s.Cy, s.R
		case apertures.ShapeRect:
			m["cx"], m["cy"], m["r"] = s.Cx, s.Cy, s.R
			m["width"], m["height"] = s.Width, s.Height
		case apertures.ShapePoly:
			points := make([][2]float64, len(s.Points))
			for i, p := range s.Points {
				points[i] = point(p)
			}
			m["points"] = points
		case apertures.ShapeRing:
			m["cx"], m["cy"], m["r"], m["width"] = s.Cx, s.Cy, s.R, s.Width
		case apertures.ShapeLayer:
			m["polarity"] = s.Polarity.String()
			m["box"] = boxList(s.Box)
		case apertures.ShapeClip:
			if s.Clip != nil {
				m["maskId"] = s.Clip.MaskID
				m["shape"] = shapeList(s.Clip.Shapes)
				m["mask"] = shapeList(s.Clip.Mask)
			}
		}
		retVal = append(retVal, m)
	}
	return retVal
}
