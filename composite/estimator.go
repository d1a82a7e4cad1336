// Package composite provides a table-driven estimator. Simple primitives are
// looked up in characterization tables and scaled in bit width. Compound
// primitives are assembled from the simple ones.
package composite

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/akitapower/estimation"
	"github.com/sarchlab/akitapower/latencytable"
	"github.com/sarchlab/akitapower/quantity"
)

// Accuracy is the accuracy that the estimator reports for the primitives
// that it supports.
const Accuracy estimation.Accuracy = 70

type model interface {
	energy(req estimation.Request) (float64, error)
	area(req estimation.Request) (float64, error)
}

// Estimator answers queries with the 40nm/45nm characterization tables.
type Estimator struct {
	estimation.HookableBase

	name   string
	tables *latencytable.Set
	log    logrus.FieldLogger
	models map[estimation.Class]model
}

// Name returns the name of the estimator.
func (e *Estimator) Name() string {
	return e.name
}

// Tables returns the reference tables used by the estimator.
func (e *Estimator) Tables() *latencytable.Set {
	return e.tables
}

// SupportsAction returns the accuracy for primitives that have a model when
// the technology is 40nm or 45nm.
func (e *Estimator) SupportsAction(req estimation.Request) estimation.Accuracy {
	if !e.technologySupported(req) {
		return estimation.NotSupported
	}

	if _, ok := e.models[req.Class()]; !ok {
		return estimation.NotSupported
	}

	return Accuracy
}

// SupportsArea is the same as SupportsAction, except that wires have no
// area model.
func (e *Estimator) SupportsArea(req estimation.Request) estimation.Accuracy {
	if req.Class() == estimation.ClassWire {
		return estimation.NotSupported
	}

	return e.SupportsAction(req)
}

func (e *Estimator) technologySupported(req estimation.Request) bool {
	v, ok := req.Attr("technology")
	if !ok {
		e.log.WithField("class", req.ClassName).
			Warn("no technology specified in the request, cannot estimate")

		return false
	}

	nm, err := quantity.TechnologyNode(v)
	if err != nil {
		return false
	}

	return nm == 40 || nm == 45
}

// EstimateEnergy returns the energy of the action, in pJ.
func (e *Estimator) EstimateEnergy(
	ctx context.Context,
	req estimation.Request,
) (float64, error) {
	return e.estimate(ctx, req, estimation.QuantityEnergy)
}

// EstimateArea returns the area of the primitive, in um^2.
func (e *Estimator) EstimateArea(
	ctx context.Context,
	req estimation.Request,
) (float64, error) {
	return e.estimate(ctx, req, estimation.QuantityArea)
}

func (e *Estimator) estimate(
	ctx context.Context,
	req estimation.Request,
	q estimation.Quantity,
) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m, ok := e.models[req.Class()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", estimation.ErrUnsupported, req.ClassName)
	}

	start := time.Now()

	var (
		v   float64
		err error
		pos = estimation.HookPosEnergyEstimated
	)

	if q == estimation.QuantityArea {
		pos = estimation.HookPosAreaEstimated
		v, err = m.area(req)
	} else {
		v, err = m.energy(req)
	}

	if err != nil {
		return 0, fmt.Errorf("%s %s of %s: %w",
			e.name, q, req.ClassName, err)
	}

	if e.NumHooks() > 0 {
		e.InvokeHook(estimation.HookCtx{
			Domain: e,
			Pos:    pos,
			Item:   req,
			Detail: estimation.Estimate{
				Estimator: e.name,
				Quantity:  q,
				Request:   req,
				Value:     v,
				Accuracy:  Accuracy,
				Duration:  time.Since(start),
			},
		})
	}

	return v, nil
}
