package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolteraInc/gerber-plotter/apertures"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/plotter"
	"github.com/VolteraInc/gerber-plotter/xy"
)

const e2eStream = `{"kind":"set","prop":"nota","value":"A","line":1}
{"kind":"set","prop":"mode","value":"i","line":2}
{"kind":"tool","code":"10","tool":{"shape":"circle","params":[2],"hole":[]},"line":3}
{"kind":"op","op":"move","coord":{"x":1,"y":1},"line":4}

{"kind":"op","op":"int","coord":{"x":9,"y":4},"line":5}
{"kind":"op","op":"flash","coord":{"x":1,"y":4},"line":6}
{"kind":"done","line":7}
`

func decodeAll(t *testing.T, s string) []plotter.Command {
	t.Helper()
	dec := NewDecoder(strings.NewReader(s))
	var retVal []plotter.Command
	for {
		cmd, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return retVal
		}
		require.NoError(t, err)
		retVal = append(retVal, cmd)
	}
}

func TestDecoder_Commands(t *testing.T) {
	cmds := decodeAll(t, e2eStream)
	require.Len(t, cmds, 7)
	assert.Equal(t, plotter.SetCommand{Line: 1, Prop: "nota", Value: "A"}, cmds[0])
	assert.Equal(t, plotter.ToolCommand{Line: 3, Code: "10", Tool: apertures.ToolDef{
		Shape: "circle", Params: []float64{2}, Hole: []float64{},
	}}, cmds[2])
	assert.Equal(t, plotter.OpCommand{Line: 5, Op: OpcodeD01_DRAW, Coord: xy.Coord{"x": 9, "y": 4}}, cmds[4])
	assert.Equal(t, plotter.DoneCommand{Line: 7}, cmds[6])
}

func TestDecoder_MacroAndLevels(t *testing.T) {
	cmds := decodeAll(t, `{"kind":"macro","name":"M","blocks":[`+
		`{"type":"variable","name":"$2","value":"$1x2"},`+
		`{"type":"circle","exp":1,"dia":"$2","cx":0,"cy":"0"},`+
		`{"type":"outline","exp":"1","points":[[0,0],["1","$1"],[0,0]]}],"line":1}
{"kind":"level","level":"polarity","value":"C","line":2}
{"kind":"level","level":"stepRepeat","value":{"x":2,"y":3,"i":1.5,"j":2},"line":3}
{"kind":"set","prop":"region","value":true,"line":4}
{"kind":"set","prop":"tool","value":11,"line":5}
`)
	require.Len(t, cmds, 5)
	macro := cmds[0].(plotter.MacroCommand)
	require.Len(t, macro.Blocks, 3)
	assert.Equal(t, apertures.Block{
		Type: apertures.AMPrimitive_Variable, Variable: "$2", Modifiers: map[string]string{"value": "$1x2"},
	}, macro.Blocks[0])
	assert.Equal(t, map[string]string{"exp": "1", "dia": "$2", "cx": "0", "cy": "0"}, macro.Blocks[1].Modifiers)
	assert.Equal(t, [][2]string{{"0", "0"}, {"1", "$1"}, {"0", "0"}}, macro.Blocks[2].Points)

	assert.Equal(t, plotter.LevelCommand{Line: 2, Level: plotter.LevelPolarity, Polarity: PolTypeClear}, cmds[1])
	assert.Equal(t, plotter.LevelCommand{Line: 3, Level: plotter.LevelStepRepeat,
		StepRepeat: plotter.StepRepeat{X: 2, Y: 3, I: 1.5, J: 2}}, cmds[2])
	assert.Equal(t, true, cmds[3].(plotter.SetCommand).Value)
	assert.Equal(t, 11.0, cmds[4].(plotter.SetCommand).Value)
}

func TestDecoder_Errors(t *testing.T) {
	for _, s := range []string{
		`{"kind":"op","op":"jump","line":1}`,
		`{"kind":"dance","line":1}`,
		`{"kind":"level","level":"mirror","value":"X","line":1}`,
		`{"kind":"macro","name":"M","blocks":[{"type":"star"}],"line":1}`,
		`not json`,
	} {
		_, err := NewDecoder(strings.NewReader(s)).Next()
		assert.True(t, errors.Is(err, ErrBadCommand), s)
		assert.Contains(t, err.Error(), "input line 1")
	}
}

func TestPlot_EndToEnd(t *testing.T) {
	var out bytes.Buffer
	stat, err := plot(plotter.Options{Units: UnitsInch}, NewDecoder(strings.NewReader(e2eStream)), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, stat.Strokes)
	assert.Equal(t, 1, stat.Pads)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	var records []map[string]interface{}
	for _, l := range lines {
		var r map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(l), &r))
		records = append(records, r)
	}

	assert.Equal(t, "stroke", records[0]["type"])
	assert.Equal(t, 2.0, records[0]["width"])
	path := records[0]["path"].([]interface{})
	require.Len(t, path, 1)
	segment := path[0].(map[string]interface{})["segments"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "line", segment["type"])
	assert.Equal(t, []interface{}{1.0, 1.0}, segment["start"])
	assert.Equal(t, []interface{}{9.0, 4.0}, segment["end"])

	assert.Equal(t, "shape", records[1]["type"])
	assert.Equal(t, []interface{}{map[string]interface{}{"type": "circle", "cx": 0.0, "cy": 0.0, "r": 1.0}}, records[1]["shape"])
	assert.Equal(t, map[string]interface{}{"type": "pad", "tool": "10", "x": 1.0, "y": 4.0}, records[2])
	assert.Equal(t, "size", records[3]["type"])
	assert.Equal(t, "in", records[3]["units"])
	assert.Len(t, records[3]["box"], 4)
}

func TestPlot_EmptyBox(t *testing.T) {
	var out bytes.Buffer
	_, err := plot(plotter.Options{}, NewDecoder(strings.NewReader("")), &out)
	require.NoError(t, err)
	assert.Equal(t, `{"box":null,"type":"size","units":"in"}`+"\n", out.String())
}
