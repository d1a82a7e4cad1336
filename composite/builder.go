package composite

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/latencytable"
)

// DefaultName is the name of the estimator when it is registered with the
// command line tool and the server.
const DefaultName = "aladdin_table"

// Builder can build table-driven estimators.
type Builder struct {
	tables *latencytable.Set
	logger logrus.FieldLogger
}

// MakeBuilder creates a new Builder with the embedded tables.
func MakeBuilder() Builder {
	return Builder{}
}

// WithTables sets the reference tables to look up.
func (b Builder) WithTables(tables *latencytable.Set) Builder {
	b.tables = tables
	return b
}

// WithLogger sets the logger that receives the warnings.
func (b Builder) WithLogger(logger logrus.FieldLogger) Builder {
	b.logger = logger
	return b
}

// Build creates a new estimator.
func (b Builder) Build(name string) *Estimator {
	e := &Estimator{
		name:   name,
		tables: b.tables,
		log:    b.logger,
	}

	if e.tables == nil {
		e.tables = latencytable.Embedded()
	}

	if e.log == nil {
		e.log = logrus.StandardLogger().WithField("estimator", name)
	}

	e.models = e.buildModels()

	return e
}

func (e *Estimator) buildModels() map[estimation.Class]model {
	t := e.tables

	comparator := &scaledModel{
		tables: t,
		table:  latencytable.Comparator,
		scale:  perWidth("datawidth"),
	}
	intAdder := &widthModel{
		tables:      t,
		resolve:     intWidth(latencytable.Adder, false),
		interpolate: linear,
	}
	intMultiplier := &widthModel{
		tables:      t,
		resolve:     intWidth(latencytable.Multiplier, false),
		interpolate: quadratic,
		gating:      true,
	}
	fpAdder := &widthModel{
		tables: t,
		resolve: fpWidth(
			latencytable.FPSPAdder, latencytable.FPDPAdder),
		interpolate: linear,
	}
	fpMultiplier := &widthModel{
		tables: t,
		resolve: fpWidth(
			latencytable.FPSPMultiplier, latencytable.FPDPMultiplier),
		interpolate: quadratic,
		gating:      true,
	}

	return map[estimation.Class]model{
		estimation.ClassRegFile: &regFileModel{
			tables:     t,
			comparator: comparator,
		},
		estimation.ClassFIFO: &fifoModel{
			tables:     t,
			comparator: comparator,
		},
		estimation.ClassCrossbar: &scaledModel{
			tables: t,
			table:  latencytable.Crossbar,
			scale:  crossbarScale,
		},
		estimation.ClassCounter: &scaledModel{
			tables: t,
			table:  latencytable.Counter,
			scale:  perWidth("width"),
		},
		estimation.ClassComparator: comparator,
		estimation.ClassWire:       &wireModel{log: e.log},
		estimation.ClassBitwise: &scaledModel{
			tables: t,
			table:  latencytable.Bitwise,
			scale:  unscaled,
		},
		estimation.ClassShifter: &widthModel{
			tables:      t,
			resolve:     intWidth(latencytable.Shifter, true),
			interpolate: linear,
		},
		estimation.ClassIntAdder:      intAdder,
		estimation.ClassIntMultiplier: intMultiplier,
		estimation.ClassIntMAC: &macModel{
			adder:      intAdder,
			multiplier: intMultiplier,
		},
		estimation.ClassFPAdder:      fpAdder,
		estimation.ClassFPMultiplier: fpMultiplier,
		estimation.ClassFPMAC: &macModel{
			adder:      fpAdder,
			multiplier: fpMultiplier,
		},
	}
}
