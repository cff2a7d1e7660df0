package plotter

import (
	"strconv"

	"github.com/golang/glog"
)

// Warning is a recoverable problem, the plotter went on with a default
type Warning struct {
	Message string
	Line    int
}

func (w Warning) String() string {
	return "line " + strconv.Itoa(w.Line) + ": " + w.Message
}

// Fault is an error fatal to the definition or operation at Line only
type Fault struct {
	Err  error
	Line int
}

func (f Fault) Error() string {
	return "line " + strconv.Itoa(f.Line) + ": " + f.Err.Error()
}

func (f Fault) Unwrap() error {
	return f.Err
}

type Diagnostics struct {
	Warnings []Warning
	Faults   []Fault
}

// Reporter receives diagnostics as they happen
type Reporter interface {
	Warn(Warning)
	Fault(Fault)
}

// LogReporter writes diagnostics to the glog log
type LogReporter struct{}

func (LogReporter) Warn(w Warning) {
	glog.Warningln(w.String())
}

func (LogReporter) Fault(f Fault) {
	glog.Errorln(f.Error())
}

// Statistic counts what the plotter did
type Statistic struct {
	Commands int
	Ops      int
	Strokes  int
	Fills    int
	Pads     int
	Shapes   int
	Layers   int
}

func (s Statistic) String() string {
	return "commands=" + strconv.Itoa(s.Commands) +
		" ops=" + strconv.Itoa(s.Ops) +
		" strokes=" + strconv.Itoa(s.Strokes) +
		" fills=" + strconv.Itoa(s.Fills) +
		" pads=" + strconv.Itoa(s.Pads) +
		" shapes=" + strconv.Itoa(s.Shapes) +
		" layers=" + strconv.Itoa(s.Layers)
}
