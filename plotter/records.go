package plotter

import (
	"strconv"

	"github.com/akavel/polyclip-go"

	"github.com/VolteraInc/gerber-plotter/apertures"
	"github.com/VolteraInc/gerber-plotter/boundingbox"
	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
	"github.com/VolteraInc/gerber-plotter/pathgraph"
	"github.com/VolteraInc/gerber-plotter/xy"
)

type RecordType int

const (
	RecordStroke RecordType = iota + 1
	RecordFill
	RecordPolarity
	RecordRepeat
	RecordSize
	RecordShape
	RecordPad
)

func (rt RecordType) String() string {
	switch rt {
	case RecordStroke:
		return "stroke"
	case RecordFill:
		return "fill"
	case RecordPolarity:
		return "polarity"
	case RecordRepeat:
		return "repeat"
	case RecordSize:
		return "size"
	case RecordShape:
		return "shape"
	case RecordPad:
		return "pad"
	default:
	}
	return "unknown record"
}

// Record is one drawing record. Only the fields of its type are set:
//	stroke:   Width, Path
//	fill:     Path
//	polarity: Polarity, Box
//	repeat:   Offsets, Box
//	size:     Box, Units
//	shape:    Tool, Shapes, Box
//	pad:      Tool, Point
type Record struct {
	Type     RecordType
	Width    float64
	Path     pathgraph.Path
	Polarity PolType
	Box      boundingbox.Box
	Offsets  []polyclip.Point
	Units    Units
	Tool     string
	Shapes   []apertures.Shape
	Point    polyclip.Point
}

func (r Record) String() string {
	retVal := r.Type.String()
	switch r.Type {
	case RecordStroke:
		retVal = retVal + " width=" + strconv.FormatFloat(r.Width, 'f', 5, 64) +
			" subpaths=" + strconv.Itoa(len(r.Path))
	case RecordFill:
		retVal = retVal + " subpaths=" + strconv.Itoa(len(r.Path))
	case RecordPolarity:
		retVal = retVal + " " + r.Polarity.String() + " " + r.Box.String()
	case RecordRepeat:
		retVal = retVal + " offsets=" + strconv.Itoa(len(r.Offsets)) + " " + r.Box.String()
	case RecordSize:
		retVal = retVal + " " + r.Box.String() + " " + r.Units.String()
	case RecordShape:
		retVal = retVal + " tool " + r.Tool + " shapes=" + strconv.Itoa(len(r.Shapes)) + " " + r.Box.String()
	case RecordPad:
		retVal = retVal + " tool " + r.Tool + " at " + xy.PointString(r.Point)
	}
	return retVal
}

// Consumer receives the drawing records in order
type Consumer interface {
	Accept(Record)
}

// Storage keeps the records and supplies them back one by one
type Storage struct {
	index   int
	records []Record
}

func NewStorage() *Storage {
	retVal := new(Storage)
	retVal.records = make([]Record, 0)
	return retVal
}

func (storage *Storage) Accept(r Record) {
	storage.records = append(storage.records, r)
}

// Next returns the record at the read position and advances it
func (storage *Storage) Next() (Record, bool) {
	if storage.index >= len(storage.records) {
		// no more records in the storage
		return Record{}, false
	}
	index := storage.index
	storage.index++
	return storage.records[index], true
}

func (storage *Storage) Len() int {
	return len(storage.records)
}

func (storage *Storage) ResetPos() {
	storage.index = 0
}

func (storage *Storage) Empty() {
	storage.index = 0
	storage.records = storage.records[:0]
}

func (storage *Storage) PeekPos() int {
	return storage.index
}

func (storage *Storage) ToArray() []Record {
	retVal := make([]Record, len(storage.records))
	copy(retVal, storage.records)
	return retVal
}

// ConsumerFunc adapts a function to Consumer
type ConsumerFunc func(Record)

func (f ConsumerFunc) Accept(r Record) {
	f(r)
}
