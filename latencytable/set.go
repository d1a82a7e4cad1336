package latencytable

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/quantity"
)

//go:embed data/*.csv
var embedded embed.FS

// DefaultLatency is the latency, in ns, of requests that do not give one.
const DefaultLatency = 5

// Bucket snaps a latency to a characterized row. Latencies above 10 use the
// 10ns row, and latencies from 7 to 10 use the 6ns row.
func Bucket(latency int) int {
	if latency > 10 {
		return 10
	}

	if latency > 6 {
		return 6
	}

	return latency
}

// Latency extracts the latency bucket of a request.
func Latency(req estimation.Request) (int, error) {
	v, ok := req.Attr("latency")
	if !ok {
		return Bucket(DefaultLatency), nil
	}

	ns, err := quantity.CeilNanoseconds(v)
	if err != nil {
		return 0, fmt.Errorf("latency: %w", err)
	}

	return Bucket(ns), nil
}

// Set holds one table per primitive.
type Set struct {
	tables [numTables]*Table
}

// Embedded returns a new set with the tables that ship with the package.
func Embedded() *Set {
	s := &Set{}

	for _, id := range IDs() {
		data, err := embedded.ReadFile("data/" + id.FileName())
		if err != nil {
			panic(err)
		}

		t, err := Parse(id, bytes.NewReader(data))
		if err != nil {
			panic(err)
		}

		s.tables[id] = t
	}

	return s
}

// LoadDir returns the embedded tables, overridden by the tables found in a
// directory. Files that are absent from the directory keep the embedded
// version.
func LoadDir(dir string) (*Set, error) {
	s := Embedded()

	for _, id := range IDs() {
		path := filepath.Join(dir, id.FileName())

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}

		t, err := Parse(id, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}

		s.tables[id] = t
	}

	return s, nil
}

// Table returns a table in the set.
func (s *Set) Table(id ID) *Table {
	return s.tables[id]
}

// Lookup returns the row that a request resolves to.
func (s *Set) Lookup(id ID, req estimation.Request) (Row, error) {
	latency, err := Latency(req)
	if err != nil {
		return Row{}, err
	}

	return s.tables[id].Row(latency)
}

// Energy returns the energy of the action of the request, at the native width
// of the table. Idle actions read the idle column and all other actions read
// the dynamic column.
func (s *Set) Energy(id ID, req estimation.Request) (float64, error) {
	if !s.tables[id].HasEnergy {
		return 0, fmt.Errorf("%w: %s has no energy columns",
			ErrColumnNotFound, id)
	}

	row, err := s.Lookup(id, req)
	if err != nil {
		return 0, err
	}

	if req.ActionName == "idle" {
		return row.IdleEnergy, nil
	}

	return row.DynamicEnergy, nil
}

// Area returns the area of the primitive, at the native width of the table.
func (s *Set) Area(id ID, req estimation.Request) (float64, error) {
	if !s.tables[id].HasArea {
		return 0, fmt.Errorf("%w: %s has no %q column",
			ErrColumnNotFound, id, HeaderArea)
	}

	row, err := s.Lookup(id, req)
	if err != nil {
		return 0, err
	}

	return row.Area, nil
}
