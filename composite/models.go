package composite

import (
	"fmt"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/interpolation"
	"github.com/sarchlab/akitapower/latencytable"
)

const (
	nativeIntWidth = 32
	nativeSPWidth  = 32
	nativeDPWidth  = 64

	crossbarNativeOutputs = 4
	reuseDiscount         = 0.85
)

var (
	linear    = interpolation.Linear
	quadratic = interpolation.Quadratic
)

// scaledModel multiplies a table value by a factor that depends on the
// attributes.
type scaledModel struct {
	tables *latencytable.Set
	table  latencytable.ID
	scale  func(req estimation.Request) (float64, error)
}

func (m *scaledModel) energy(req estimation.Request) (float64, error) {
	v, err := m.tables.Energy(m.table, req)
	if err != nil {
		return 0, err
	}

	return m.scaled(req, v)
}

func (m *scaledModel) area(req estimation.Request) (float64, error) {
	v, err := m.tables.Area(m.table, req)
	if err != nil {
		return 0, err
	}

	return m.scaled(req, v)
}

func (m *scaledModel) scaled(req estimation.Request, v float64) (float64, error) {
	s, err := m.scale(req)
	if err != nil {
		return 0, err
	}

	return v * s, nil
}

func unscaled(estimation.Request) (float64, error) {
	return 1, nil
}

func perWidth(attr string) func(req estimation.Request) (float64, error) {
	return func(req estimation.Request) (float64, error) {
		w, err := req.Float(attr)
		if err != nil {
			return 0, err
		}

		return w / nativeIntWidth, nil
	}
}

// crossbarScale scales from the characterized crossbar, which has 4 outputs
// and 32-bit ports.
func crossbarScale(req estimation.Request) (float64, error) {
	nIn, err := req.Float("n_inputs")
	if err != nil {
		return 0, err
	}

	nOut, err := req.Float("n_outputs")
	if err != nil {
		return 0, err
	}

	width, err := req.Float("datawidth")
	if err != nil {
		return 0, err
	}

	return nIn * (nOut / crossbarNativeOutputs) * (width / nativeIntWidth), nil
}

// resolution tells which table describes a request and at which widths.
type resolution struct {
	table  latencytable.ID
	native float64
	width  float64
}

// widthModel interpolates a table value from the native width of the table
// to the requested width.
//
// With gating, mult_gated actions read the idle column and mult_reused
// actions are discounted.
type widthModel struct {
	tables      *latencytable.Set
	resolve     func(req estimation.Request) (resolution, error)
	interpolate func(x, native, value float64) float64
	gating      bool
}

func (m *widthModel) energy(req estimation.Request) (float64, error) {
	r, err := m.resolve(req)
	if err != nil {
		return 0, err
	}

	lookup := req
	if m.gating && req.ActionName == "mult_gated" {
		lookup = req.WithAction("idle")
	}

	v, err := m.tables.Energy(r.table, lookup)
	if err != nil {
		return 0, err
	}

	if r.width != r.native {
		v = m.interpolate(r.width, r.native, v)
	}

	if m.gating && req.ActionName == "mult_reused" {
		v *= reuseDiscount
	}

	return v, nil
}

func (m *widthModel) area(req estimation.Request) (float64, error) {
	r, err := m.resolve(req)
	if err != nil {
		return 0, err
	}

	v, err := m.tables.Area(r.table, req)
	if err != nil {
		return 0, err
	}

	if r.width != r.native {
		v = m.interpolate(r.width, r.native, v)
	}

	return v, nil
}

func intWidth(
	table latencytable.ID,
	optional bool,
) func(req estimation.Request) (resolution, error) {
	return func(req estimation.Request) (resolution, error) {
		r := resolution{table: table, native: nativeIntWidth}

		if optional && !req.Has("datawidth") {
			r.width = nativeIntWidth
			return r, nil
		}

		w, err := req.Float("datawidth")
		if err != nil {
			return resolution{}, err
		}

		r.width = w

		return r, nil
	}
}

// fpWidth uses the single-precision table for formats of up to 32 bits and
// the double-precision table for wider formats.
func fpWidth(
	sp, dp latencytable.ID,
) func(req estimation.Request) (resolution, error) {
	return func(req estimation.Request) (resolution, error) {
		exponent, err := req.Float("exponent")
		if err != nil {
			return resolution{}, err
		}

		mantissa, err := req.Float("mantissa")
		if err != nil {
			return resolution{}, err
		}

		width := exponent + mantissa
		if width <= nativeSPWidth {
			return resolution{table: sp, native: nativeSPWidth, width: width}, nil
		}

		return resolution{table: dp, native: nativeDPWidth, width: width}, nil
	}
}

// macModel is an adder plus a multiplier.
type macModel struct {
	adder      model
	multiplier model
}

// multiplierAction maps the action of a MAC to the action of its multiplier.
func multiplierAction(macAction string) string {
	switch macAction {
	case "mac_gated":
		return "mult_gated"
	case "mac_reused":
		return "mult_reused"
	case "idle":
		return "idle"
	default:
		return "mult_random"
	}
}

func (m *macModel) energy(req estimation.Request) (float64, error) {
	add, err := m.adder.energy(req)
	if err != nil {
		return 0, fmt.Errorf("adder: %w", err)
	}

	mult, err := m.multiplier.energy(
		req.WithAction(multiplierAction(req.ActionName)))
	if err != nil {
		return 0, fmt.Errorf("multiplier: %w", err)
	}

	return add + mult, nil
}

func (m *macModel) area(req estimation.Request) (float64, error) {
	add, err := m.adder.area(req)
	if err != nil {
		return 0, fmt.Errorf("adder: %w", err)
	}

	mult, err := m.multiplier.area(req)
	if err != nil {
		return 0, fmt.Errorf("multiplier: %w", err)
	}

	return add + mult, nil
}
