package composite

import (
	"math"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/latencytable"
)

// regFileModel is a vector of registers plus one address comparator per
// row.
type regFileModel struct {
	tables     *latencytable.Set
	comparator model
}

func (m *regFileModel) shape(req estimation.Request) (width, depth float64, err error) {
	width, err = req.Float("width")
	if err != nil {
		return 0, 0, err
	}

	depth, err = req.Float("depth")
	if err != nil {
		return 0, 0, err
	}

	return width, depth, nil
}

func addressComparator(depth float64, action string) estimation.Request {
	return estimation.Derive("comparator", action, map[string]any{
		"datawidth": math.Ceil(math.Log2(depth)),
	})
}

func (m *regFileModel) energy(req estimation.Request) (float64, error) {
	width, depth, err := m.shape(req)
	if err != nil {
		return 0, err
	}

	if depth == 0 {
		return 0, nil
	}

	regReq := req
	comparatorAction := "idle"

	if req.ActionName != "idle" {
		dataDelta, err := req.ArgumentOr("data_delta", 1)
		if err != nil {
			return 0, err
		}

		addressDelta, err := req.ArgumentOr("address_delta", 1)
		if err != nil {
			return 0, err
		}

		if dataDelta == 0 {
			regReq = req.WithAction("idle")
		}

		if addressDelta != 0 {
			comparatorAction = req.ActionName
		}
	}

	reg, err := m.tables.Energy(latencytable.Register, regReq)
	if err != nil {
		return 0, err
	}

	comparator, err := m.comparator.energy(
		addressComparator(depth, comparatorAction))
	if err != nil {
		return 0, err
	}

	return reg*width + comparator*depth, nil
}

func (m *regFileModel) area(req estimation.Request) (float64, error) {
	width, depth, err := m.shape(req)
	if err != nil {
		return 0, err
	}

	if depth == 0 {
		return 0, nil
	}

	reg, err := m.tables.Area(latencytable.Register, req)
	if err != nil {
		return 0, err
	}

	comparator, err := m.comparator.area(addressComparator(depth, ""))
	if err != nil {
		return 0, err
	}

	return reg*width + comparator*depth, nil
}

// fifoModel is a vector of registers plus a single pointer comparator.
type fifoModel struct {
	tables     *latencytable.Set
	comparator model
}

func (m *fifoModel) shape(req estimation.Request) (width, depth float64, err error) {
	width, err = req.Float("datawidth")
	if err != nil {
		return 0, 0, err
	}

	depth, err = req.Float("depth")
	if err != nil {
		return 0, 0, err
	}

	return width, depth, nil
}

func pointerComparator(depth float64, action string) estimation.Request {
	return estimation.Derive("comparator", action, map[string]any{
		"datawidth": math.Log2(depth),
	})
}

func (m *fifoModel) energy(req estimation.Request) (float64, error) {
	width, depth, err := m.shape(req)
	if err != nil {
		return 0, err
	}

	if depth == 0 {
		return 0, nil
	}

	reg, err := m.tables.Energy(latencytable.Register, req)
	if err != nil {
		return 0, err
	}

	comparatorAction := "access"
	if req.ActionName == "idle" {
		comparatorAction = "idle"
	}

	comparator, err := m.comparator.energy(
		pointerComparator(depth, comparatorAction))
	if err != nil {
		return 0, err
	}

	return reg*width + comparator, nil
}

func (m *fifoModel) area(req estimation.Request) (float64, error) {
	width, depth, err := m.shape(req)
	if err != nil {
		return 0, err
	}

	if depth == 0 {
		return 0, nil
	}

	reg, err := m.tables.Area(latencytable.Register, req)
	if err != nil {
		return 0, err
	}

	comparator, err := m.comparator.area(pointerComparator(depth, ""))
	if err != nil {
		return 0, err
	}

	return reg*width + comparator, nil
}
