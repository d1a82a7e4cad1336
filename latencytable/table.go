// Package latencytable provides the characterization tables of the simple
// primitives. Each table has one row per characterized latency, giving the
// idle energy, the dynamic energy, and the area at the native bit width of
// the primitive.
package latencytable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrRowNotFound is returned when a table has no row for a latency bucket.
var ErrRowNotFound = errors.New("no row for latency")

// ErrColumnNotFound is returned when a table does not carry the column that a
// lookup needs.
var ErrColumnNotFound = errors.New("no column")

// Column headers of the table files.
const (
	HeaderLatency       = "latency(ns)"
	HeaderIdleEnergy    = "idle energy(pJ)"
	HeaderDynamicEnergy = "dynamic energy(pJ)"
	HeaderArea          = "area(um^2)"
)

// ID identifies a table.
type ID int

// A list of all the tables.
const (
	Register ID = iota
	Crossbar
	Counter
	Comparator
	Adder
	Multiplier
	Bitwise
	Shifter
	FPSPAdder
	FPDPAdder
	FPSPMultiplier
	FPDPMultiplier
	numTables
)

var fileNames = [numTables]string{
	Register:       "reg.csv",
	Crossbar:       "crossbar.csv",
	Counter:        "counter.csv",
	Comparator:     "comparator.csv",
	Adder:          "adder.csv",
	Multiplier:     "multiplier.csv",
	Bitwise:        "bitwise.csv",
	Shifter:        "shifter.csv",
	FPSPAdder:      "fp_sp_adder.csv",
	FPDPAdder:      "fp_dp_adder.csv",
	FPSPMultiplier: "fp_sp_multiplier.csv",
	FPDPMultiplier: "fp_dp_multiplier.csv",
}

// IDs returns all the table IDs.
func IDs() []ID {
	ids := make([]ID, 0, numTables)
	for id := ID(0); id < numTables; id++ {
		ids = append(ids, id)
	}

	return ids
}

// FileName returns the name of the file that stores the table.
func (id ID) FileName() string {
	if id < 0 || id >= numTables {
		return ""
	}

	return fileNames[id]
}

func (id ID) String() string {
	return strings.TrimSuffix(id.FileName(), ".csv")
}

// Row is one characterized latency of a primitive.
type Row struct {
	Latency       int
	IdleEnergy    float64
	DynamicEnergy float64
	Area          float64
}

// Table is the list of rows of one primitive, in file order.
type Table struct {
	ID   ID
	Rows []Row

	HasEnergy bool
	HasArea   bool
}

// Row returns the first row of the given latency.
func (t *Table) Row(latency int) (Row, error) {
	for _, r := range t.Rows {
		if r.Latency == latency {
			return r, nil
		}
	}

	return Row{}, fmt.Errorf("%w: %s has no %dns row",
		ErrRowNotFound, t.ID, latency)
}

// Parse reads a table from CSV. The energy columns and the area column are
// optional, but at least one of them must be present. The idle and the
// dynamic energy columns come together.
func Parse(id ID, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id.FileName(), err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s empty or missing header", id.FileName())
	}

	columns := make(map[string]int)
	for i, h := range records[0] {
		columns[strings.TrimSpace(h)] = i
	}

	latencyCol, ok := columns[HeaderLatency]
	if !ok {
		return nil, fmt.Errorf("%s: missing column %q",
			id.FileName(), HeaderLatency)
	}

	_, hasIdle := columns[HeaderIdleEnergy]
	_, hasDynamic := columns[HeaderDynamicEnergy]
	_, hasArea := columns[HeaderArea]

	if hasIdle != hasDynamic {
		return nil, fmt.Errorf("%s: %q and %q must both be present",
			id.FileName(), HeaderIdleEnergy, HeaderDynamicEnergy)
	}

	if !hasIdle && !hasArea {
		return nil, fmt.Errorf("%s: no energy or area column", id.FileName())
	}

	t := &Table{ID: id, HasEnergy: hasIdle, HasArea: hasArea}

	for i, record := range records[1:] {
		row, err := parseRow(record, latencyCol, columns)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", id.FileName(), i+2, err)
		}

		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func parseRow(
	record []string,
	latencyCol int,
	columns map[string]int,
) (Row, error) {
	row := Row{}

	latency, err := strconv.Atoi(strings.TrimSpace(record[latencyCol]))
	if err != nil {
		return Row{}, fmt.Errorf("invalid latency: %w", err)
	}

	row.Latency = latency

	fields := []struct {
		header string
		dst    *float64
	}{
		{HeaderIdleEnergy, &row.IdleEnergy},
		{HeaderDynamicEnergy, &row.DynamicEnergy},
		{HeaderArea, &row.Area},
	}

	for _, f := range fields {
		col, ok := columns[f.header]
		if !ok {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid %s: %w", f.header, err)
		}

		*f.dst = v
	}

	return row, nil
}
