package estimation

import (
	"context"
	"time"
)

// Accuracy is the self-reported confidence, from 0 to 100, that an estimator
// assigns to its answer for a request. Zero means the estimator cannot answer.
type Accuracy int

// NotSupported is the accuracy that tells the host not to select an estimator.
const NotSupported Accuracy = 0

// An Estimator answers energy and area queries about primitives.
//
// The Supports methods never fail. The Estimate methods are only called after
// the matching Supports method has returned a positive accuracy.
type Estimator interface {
	// Name returns the name of the estimator.
	Name() string

	// SupportsAction returns the accuracy of the energy estimation of the
	// action in the request.
	SupportsAction(req Request) Accuracy

	// EstimateEnergy returns the energy of one action, in pJ.
	EstimateEnergy(ctx context.Context, req Request) (float64, error)

	// SupportsArea returns the accuracy of the area estimation.
	SupportsArea(req Request) Accuracy

	// EstimateArea returns the area of the primitive, in um^2.
	EstimateArea(ctx context.Context, req Request) (float64, error)
}

// Quantity names what an Estimate measures.
type Quantity string

// The quantities that an estimator can produce.
const (
	QuantityEnergy Quantity = "energy"
	QuantityArea   Quantity = "area"
)

// Estimate is the detail of the hooks that are invoked after an estimator
// answers a query.
type Estimate struct {
	Estimator string
	Quantity  Quantity
	Request   Request
	Value     float64
	Accuracy  Accuracy
	Duration  time.Duration
}

// Hook positions of the estimators.
var (
	HookPosEnergyEstimated = &HookPos{Name: "EnergyEstimated"}
	HookPosAreaEstimated   = &HookPos{Name: "AreaEstimated"}
	HookPosToolInvoked     = &HookPos{Name: "ToolInvoked"}
)
