package composite

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/quantity"
)

// Wire constants, per bit of a transfer.
const (
	wireCapacitance = 1.627e-15 // F/m
	wireActivity    = 0.2
	wireVDD         = 1.0
)

type wireModel struct {
	log logrus.FieldLogger
}

// energy charges the wire capacitance on transfers. Other actions are free.
func (m *wireModel) energy(req estimation.Request) (float64, error) {
	if req.ActionName != "transfer" {
		return 0, nil
	}

	raw, ok := req.Attr("length")
	if !ok {
		return 0, fmt.Errorf("%w: length", estimation.ErrMissingAttribute)
	}

	length, err := m.meters(raw)
	if err != nil {
		return 0, err
	}

	width, err := req.Float("datawidth")
	if err != nil {
		return 0, err
	}

	pJ := width * wireActivity * wireCapacitance * length *
		wireVDD * wireVDD * 1e12

	return pJ, nil
}

func (m *wireModel) meters(raw any) (float64, error) {
	q, err := quantity.Parse(raw)
	if err == nil {
		var length float64

		length, err = q.Meters()
		if err == nil {
			return length, nil
		}
	}

	if errors.Is(err, quantity.ErrUnknownUnit) {
		m.log.WithField("length", raw).
			Warn("not recognizing the unit of the wire length, 0 energy")

		return 0, nil
	}

	return 0, fmt.Errorf("length: %w", err)
}

func (m *wireModel) area(estimation.Request) (float64, error) {
	return 0, fmt.Errorf("%w: wire area", estimation.ErrUnsupported)
}
