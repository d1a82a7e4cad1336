package estimation

import (
	"context"
	"fmt"
)

// Registry keeps a list of estimators and routes each request to the one
// that reports the highest accuracy. Ties go to the estimator registered
// first.
type Registry struct {
	estimators []Estimator
}

// NewRegistry creates a registry with the given estimators.
func NewRegistry(estimators ...Estimator) *Registry {
	r := &Registry{}
	for _, e := range estimators {
		r.Register(e)
	}

	return r
}

// Register adds an estimator. Registering two estimators with the same name
// panics.
func (r *Registry) Register(e Estimator) {
	for _, existing := range r.estimators {
		if existing.Name() == e.Name() {
			panic(fmt.Sprintf("estimator %s already registered", e.Name()))
		}
	}

	r.estimators = append(r.estimators, e)
}

// Estimators returns all the registered estimators.
func (r *Registry) Estimators() []Estimator {
	return r.estimators
}

// Find returns the estimator with the given name.
func (r *Registry) Find(name string) (Estimator, bool) {
	for _, e := range r.estimators {
		if e.Name() == name {
			return e, true
		}
	}

	return nil, false
}

// BestForEnergy selects the estimator for an energy query.
func (r *Registry) BestForEnergy(req Request) (Estimator, Accuracy, error) {
	return r.best(req, Estimator.SupportsAction)
}

// BestForArea selects the estimator for an area query.
func (r *Registry) BestForArea(req Request) (Estimator, Accuracy, error) {
	return r.best(req, Estimator.SupportsArea)
}

func (r *Registry) best(
	req Request,
	supports func(Estimator, Request) Accuracy,
) (Estimator, Accuracy, error) {
	var (
		best     Estimator
		bestAccu Accuracy
	)

	for _, e := range r.estimators {
		accuracy := supports(e, req)
		if accuracy > bestAccu {
			best = e
			bestAccu = accuracy
		}
	}

	if best == nil {
		return nil, NotSupported, fmt.Errorf("%w: %s.%s",
			ErrNoEstimator, req.ClassName, req.ActionName)
	}

	return best, bestAccu, nil
}

// Answer is the result of a query routed through a Registry.
type Answer struct {
	Estimator string   `json:"estimator"`
	Accuracy  Accuracy `json:"accuracy"`
	Value     float64  `json:"value"`
}

// EstimateEnergy routes an energy query to the most accurate estimator.
func (r *Registry) EstimateEnergy(
	ctx context.Context,
	req Request,
) (Answer, error) {
	e, accuracy, err := r.BestForEnergy(req)
	if err != nil {
		return Answer{}, err
	}

	v, err := e.EstimateEnergy(ctx, req)
	if err != nil {
		return Answer{}, fmt.Errorf("%s: %w", e.Name(), err)
	}

	return Answer{Estimator: e.Name(), Accuracy: accuracy, Value: v}, nil
}

// EstimateArea routes an area query to the most accurate estimator.
func (r *Registry) EstimateArea(
	ctx context.Context,
	req Request,
) (Answer, error) {
	e, accuracy, err := r.BestForArea(req)
	if err != nil {
		return Answer{}, err
	}

	v, err := e.EstimateArea(ctx, req)
	if err != nil {
		return Answer{}, fmt.Errorf("%s: %w", e.Name(), err)
	}

	return Answer{Estimator: e.Name(), Accuracy: accuracy, Value: v}, nil
}
