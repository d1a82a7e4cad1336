// Package estimation defines the query and response shapes shared by all the
// primitive estimators, together with the contract that every estimator
// implements.
package estimation

import (
	"fmt"
	"strconv"
	"strings"
)

// Request is one energy or area query against a primitive. Attributes describe
// the static configuration of the primitive instance (widths, depth, ports,
// technology) and Arguments describe the activity of one access.
type Request struct {
	ClassName  string         `json:"class_name" yaml:"class_name"`
	Attributes map[string]any `json:"attributes" yaml:"attributes"`
	ActionName string         `json:"action_name,omitempty" yaml:"action_name,omitempty"`
	Arguments  map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Class returns the primitive class that the request names.
func (r Request) Class() Class {
	return ParseClass(r.ClassName)
}

// WithAction returns a copy of the request that performs another action. The
// attribute and argument maps are shared with the original request.
func (r Request) WithAction(action string) Request {
	r.ActionName = action
	return r
}

// Derive creates a sub-query against another primitive. The new request owns
// its attributes and carries no arguments.
func Derive(className, action string, attributes map[string]any) Request {
	attrs := make(map[string]any, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}

	return Request{
		ClassName:  className,
		Attributes: attrs,
		ActionName: action,
	}
}

// Has checks if the attribute is given.
func (r Request) Has(name string) bool {
	_, ok := r.Attributes[name]
	return ok
}

// Attr returns the raw attribute value.
func (r Request) Attr(name string) (any, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Float returns a numeric attribute.
func (r Request) Float(name string) (float64, error) {
	v, ok := r.Attributes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}

	f, err := ToFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMissingAttribute, name, err)
	}

	return f, nil
}

// Int returns an integer attribute. Fractional values are truncated.
func (r Request) Int(name string) (int, error) {
	f, err := r.Float(name)
	if err != nil {
		return 0, err
	}

	return int(f), nil
}

// IntOr returns an integer attribute, or def if the attribute is not given.
func (r Request) IntOr(name string, def int) (int, error) {
	if !r.Has(name) {
		return def, nil
	}

	return r.Int(name)
}

// Text returns an attribute formatted as a string.
func (r Request) Text(name string) (string, error) {
	v, ok := r.Attributes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}

	return fmt.Sprint(v), nil
}

// Argument returns a numeric argument.
func (r Request) Argument(name string) (float64, bool, error) {
	v, ok := r.Arguments[name]
	if !ok {
		return 0, false, nil
	}

	f, err := ToFloat(v)
	if err != nil {
		return 0, true, fmt.Errorf("argument %s: %w", name, err)
	}

	return f, true, nil
}

// ArgumentOr returns a numeric argument, or def if the argument is not given.
func (r Request) ArgumentOr(name string, def float64) (float64, error) {
	v, ok, err := r.Argument(name)
	if err != nil {
		return 0, err
	}

	if !ok {
		return def, nil
	}

	return v, nil
}

// ToFloat converts the numeric kinds produced by YAML and JSON decoders, as
// well as numeric strings, into a float64.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}

		return f, nil
	case interface{ Float64() (float64, error) }:
		return n.Float64()
	default:
		return 0, fmt.Errorf("value %v of type %T is not a number", v, v)
	}
}

// IsPowerOfTwo checks if n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo rounds n up to the closest power of two.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
