package memcompiler

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns of the tool output that the estimator reads.
const (
	ColumnReadEnergy  = "Dynamic read energy (nJ)"
	ColumnWriteEnergy = "Dynamic write energy (nJ)"
	ColumnLeakage     = "Standby leakage per bank(mW)"
	ColumnCycleTime   = "Random cycle time (ns)"
	ColumnArea        = "Area (mm2)"
)

// ToolOutput is the last row of a tool output file, in the units of the
// tool.
type ToolOutput struct {
	ReadEnergyNJ  float64
	WriteEnergyNJ float64
	LeakageMW     float64
	CycleTimeNS   float64
	AreaMM2       float64
}

// ParseToolOutput reads the last row of a tool output file.
func ParseToolOutput(r io.Reader) (ToolOutput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return ToolOutput{}, fmt.Errorf("%w: read output: %v", ErrToolFailed, err)
	}

	if len(records) < 2 {
		return ToolOutput{}, fmt.Errorf("%w: output has no result row",
			ErrToolFailed)
	}

	columns := make(map[string]int)
	for i, h := range records[0] {
		columns[strings.TrimSpace(h)] = i
	}

	row := records[len(records)-1]
	out := ToolOutput{}

	fields := []struct {
		column string
		dst    *float64
	}{
		{ColumnReadEnergy, &out.ReadEnergyNJ},
		{ColumnWriteEnergy, &out.WriteEnergyNJ},
		{ColumnLeakage, &out.LeakageMW},
		{ColumnCycleTime, &out.CycleTimeNS},
		{ColumnArea, &out.AreaMM2},
	}

	for _, f := range fields {
		i, ok := columns[f.column]
		if !ok || i >= len(row) {
			return ToolOutput{}, fmt.Errorf("%w: output has no %q column",
				ErrToolFailed, f.column)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return ToolOutput{}, fmt.Errorf("%w: %s: %v",
				ErrToolFailed, f.column, err)
		}

		*f.dst = v
	}

	return out, nil
}

// Record converts the output into pJ and um^2. The idle energy is the
// leakage of all the banks over one random cycle.
func (o ToolOutput) Record(banks int) Record {
	leakageW := o.LeakageMW * 1e-3
	cycleS := o.CycleTimeNS * 1e-9

	return Record{
		Read:  o.ReadEnergyNJ * 1e3,
		Write: o.WriteEnergyNJ * 1e3,
		Idle:  leakageW * cycleS * 1e12 * float64(banks),
		Area:  o.AreaMM2 * 1e6,
	}
}
