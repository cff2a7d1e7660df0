package xy

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/akavel/polyclip-go"

	. "github.com/VolteraInc/gerber-plotter/gerberbasetypes"
)

/*
############################ format specification #####################
*/

// format keys accepted by Format.Set
const (
	FormatUnits       = "units"
	FormatBackupUnits = "backupUnits"
	FormatNota        = "nota"
	FormatBackupNota  = "backupNota"
)

var ErrBadFormatValue = errors.New("bad format value")

func IsFormatKey(key string) bool {
	switch key {
	case FormatUnits, FormatBackupUnits, FormatNota, FormatBackupNota:
		return true
	}
	return false
}

// FormatSpec holds units and coordinate notation of the job.
// Zero values mean "unset". A locked field can not be changed any more.
type FormatSpec struct {
	Units       Units
	BackupUnits Units
	Nota        Notation
	BackupNota  Notation
	locks       map[string]bool
}

// NewFormatSpec creates the format, every non-zero argument is locked
func NewFormatSpec(units, backupUnits Units, nota, backupNota Notation) *FormatSpec {
	retVal := new(FormatSpec)
	retVal.locks = make(map[string]bool)
	retVal.Units = units
	retVal.Nota = nota
	retVal.BackupUnits = UnitsInch
	retVal.BackupNota = NotationAbsolute
	if units != 0 {
		retVal.locks[FormatUnits] = true
	}
	if nota != 0 {
		retVal.locks[FormatNota] = true
	}
	if backupUnits != 0 {
		retVal.BackupUnits = backupUnits
		retVal.locks[FormatBackupUnits] = true
	}
	if backupNota != 0 {
		retVal.BackupNota = backupNota
		retVal.locks[FormatBackupNota] = true
	}
	return retVal
}

func (fs *FormatSpec) IsLocked(key string) bool {
	return fs.locks[key]
}

// Set applies the value to the field named by key.
// It returns false without error when the field is locked.
// Units and notation get locked once set, backups stay writable.
func (fs *FormatSpec) Set(key, value string) (bool, error) {
	if fs.locks[key] {
		return false, nil
	}
	var err error
	switch key {
	case FormatUnits, FormatBackupUnits:
		var u Units
		if u, err = ParseUnits(value); err != nil {
			return false, fmt.Errorf("%w: %v", ErrBadFormatValue, err)
		}
		if key == FormatUnits {
			fs.Units = u
			fs.locks[key] = true
		} else {
			fs.BackupUnits = u
		}
	case FormatNota, FormatBackupNota:
		var n Notation
		if n, err = ParseNotation(value); err != nil {
			return false, fmt.Errorf("%w: %v", ErrBadFormatValue, err)
		}
		if key == FormatNota {
			fs.Nota = n
			fs.locks[key] = true
		} else {
			fs.BackupNota = n
		}
	default:
		return false, fmt.Errorf("%w: unknown format key %s", ErrBadFormatValue, key)
	}
	return true, nil
}

// Finalize resolves unset units and notation to their backups.
// Returns a message for every field that had to fall back.
func (fs *FormatSpec) Finalize() []string {
	retVal := make([]string, 0)
	if fs.Units == 0 {
		fs.Units = fs.EffectiveUnits()
		retVal = append(retVal, "units not set; using backup units: "+fs.Units.String())
	}
	if fs.Nota == 0 {
		fs.Nota = fs.BackupNota
		if fs.Nota == 0 {
			fs.Nota = NotationAbsolute
		}
		retVal = append(retVal, "notation not set; using backup notation: "+fs.Nota.String())
	}
	return retVal
}

// EffectiveUnits returns the units the job is (or would be) plotted in
func (fs *FormatSpec) EffectiveUnits() Units {
	if fs.Units != 0 {
		return fs.Units
	}
	if fs.BackupUnits != 0 {
		return fs.BackupUnits
	}
	return UnitsInch
}

func (fs *FormatSpec) String() string {
	return "Format: units=" + fs.Units.String() + " (backup " + fs.BackupUnits.String() + ")" +
		", notation=" + fs.Nota.String() + " (backup " + fs.BackupNota.String() + ")"
}

/*
######################### coordinates #########################################
*/

// Coord holds the present fields of an operation: "x", "y", "i", "j", "a"
type Coord map[string]float64

func (c Coord) Get(key string) (float64, bool) {
	v, ok := c[key]
	return v, ok
}

func (c Coord) String() string {
	retVal := ""
	for _, k := range []string{"x", "y", "i", "j", "a"} {
		if v, ok := c[k]; ok {
			retVal = retVal + k + "=" + strconv.FormatFloat(v, 'f', 5, 64) + " "
		}
	}
	return "Coord: " + retVal
}

// Resolve returns the target point and the arc center offset of the coordinate.
// Absolute notation takes missing x and y from the current position,
// incremental notation adds them to it.
func (fs *FormatSpec) Resolve(c Coord, pos polyclip.Point) (target, offset polyclip.Point) {
	x, hasX := c["x"]
	y, hasY := c["y"]
	if fs.Nota == NotationIncremental {
		target = polyclip.Point{X: pos.X + x, Y: pos.Y + y}
	} else {
		target = pos
		if hasX {
			target.X = x
		}
		if hasY {
			target.Y = y
		}
	}
	// offsets are not modal
	offset = polyclip.Point{X: c["i"], Y: c["j"]}
	return target, offset
}

// tolerance is the radius of the circle around first point
// inside of which another point will be treated as equal to the first one
func Equals(p, another polyclip.Point, tolerance float64) bool {
	return math.Hypot(p.X-another.X, p.Y-another.Y) <= tolerance
}

func PointString(p polyclip.Point) string {
	return "(" + strconv.FormatFloat(p.X, 'f', 5, 64) + "," + strconv.FormatFloat(p.Y, 'f', 5, 64) + ")"
}
