// Package quantity parses attribute values that arrive either as bare numbers
// or as strings with a unit suffix, such as "5ns", "500ps", "3mm" or "40nm".
package quantity

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownUnit is returned when a value carries a suffix that is not a
// known unit.
var ErrUnknownUnit = errors.New("unknown unit")

// ErrNotAQuantity is returned when a value is neither a number nor a
// unit-suffixed string.
var ErrNotAQuantity = errors.New("not a quantity")

// Unit is the unit that a quantity was given in.
type Unit string

// The units that the parser recognizes. UnitNone marks a bare number.
const (
	UnitNone        Unit = ""
	UnitSecond      Unit = "s"
	UnitNanosecond  Unit = "ns"
	UnitPicosecond  Unit = "ps"
	UnitMeter       Unit = "m"
	UnitMillimeter  Unit = "mm"
	UnitMicrometer  Unit = "um"
	UnitNanometer   Unit = "nm"
	unitMicroSymbol Unit = "µm"
)

// Dimension groups units that measure the same thing.
type Dimension int

// Dimensions of the known units.
const (
	DimensionNone Dimension = iota
	DimensionTime
	DimensionLength
)

var unitDimensions = map[Unit]Dimension{
	UnitNone:       DimensionNone,
	UnitSecond:     DimensionTime,
	UnitNanosecond: DimensionTime,
	UnitPicosecond: DimensionTime,
	UnitMeter:      DimensionLength,
	UnitMillimeter: DimensionLength,
	UnitMicrometer: DimensionLength,
	UnitNanometer:  DimensionLength,
}

// Quantity is a numeric value with the unit that it was given in.
type Quantity struct {
	Value float64
	Unit  Unit
}

var quantityPattern = regexp.MustCompile(
	`^\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*([^\s\d]*)\s*$`)

// Parse converts a bare number or a unit-suffixed string into a Quantity.
// Numeric strings without a suffix are bare numbers.
func Parse(v any) (Quantity, error) {
	s, ok := v.(string)
	if !ok {
		f, err := toFloat(v)
		if err != nil {
			return Quantity{}, err
		}

		return Quantity{Value: f}, nil
	}

	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrNotAQuantity, s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrNotAQuantity, s)
	}

	unit := Unit(strings.ToLower(m[2]))
	if unit == unitMicroSymbol || unit == "u" {
		unit = UnitMicrometer
	}

	if _, known := unitDimensions[unit]; !known {
		return Quantity{}, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, m[2], s)
	}

	return Quantity{Value: value, Unit: unit}, nil
}

// Dimension returns what the quantity measures.
func (q Quantity) Dimension() Dimension {
	return unitDimensions[q.Unit]
}

// Nanoseconds converts a duration into ns. Bare numbers are taken as ns.
func (q Quantity) Nanoseconds() (float64, error) {
	switch q.Unit {
	case UnitNone, UnitNanosecond:
		return q.Value, nil
	case UnitPicosecond:
		return q.Value / 1000, nil
	case UnitSecond:
		return q.Value * 1e9, nil
	default:
		return 0, fmt.Errorf("%w: %s is not a duration", ErrUnknownUnit, q.Unit)
	}
}

// Meters converts a length into meters. Bare numbers are taken as meters.
func (q Quantity) Meters() (float64, error) {
	switch q.Unit {
	case UnitNone, UnitMeter:
		return q.Value, nil
	case UnitMillimeter:
		return q.Value * 1e-3, nil
	case UnitMicrometer:
		return q.Value * 1e-6, nil
	case UnitNanometer:
		return q.Value * 1e-9, nil
	default:
		return 0, fmt.Errorf("%w: %s is not a length", ErrUnknownUnit, q.Unit)
	}
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + string(q.Unit)
}

// CeilNanoseconds parses a duration and rounds it up to an integer number of
// nanoseconds.
func CeilNanoseconds(v any) (int, error) {
	q, err := Parse(v)
	if err != nil {
		return 0, err
	}

	ns, err := q.Nanoseconds()
	if err != nil {
		return 0, err
	}

	return int(math.Ceil(ns)), nil
}

// TechnologyNode parses a process technology node and returns it in
// nanometers. Bare numbers are taken as nanometers.
func TechnologyNode(v any) (int, error) {
	q, err := Parse(v)
	if err != nil {
		return 0, err
	}

	if q.Unit == UnitNone {
		return int(math.Round(q.Value)), nil
	}

	m, err := q.Meters()
	if err != nil {
		return 0, err
	}

	return int(math.Round(m * 1e9)), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrNotAQuantity, v, v)
	}
}
