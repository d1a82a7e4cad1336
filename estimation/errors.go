package estimation

import "errors"

// ErrUnsupported is returned when an estimator is asked about a primitive or
// action that it cannot model.
var ErrUnsupported = errors.New("unsupported primitive")

// ErrMissingAttribute is returned when a request does not carry an attribute
// that the model of the primitive requires.
var ErrMissingAttribute = errors.New("missing attribute")

// ErrNoEstimator is returned by a Registry when no registered estimator
// reports a positive accuracy for a request.
var ErrNoEstimator = errors.New("no estimator supports the request")
