package design

import "fmt"

// Error is the common error type for the design core. Op and Component add
// context as an error propagates; Err preserves the cause for errors.Is/As.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// baseError is an alias for Error used for embedding: embedding the alias
// gives the field a name other than "Error" so the promoted Error() method
// satisfies the error interface.
type baseError = Error

// FeasibilityError signals that a single candidate cannot be realized: no
// catalog core fits, a flux-density limit is exceeded, or the efficiency
// target is unmet. It is recovered locally by the optimizer, which drops the
// candidate; it never fails the whole run.
type FeasibilityError struct {
	baseError
}

// NewFeasibility creates a FeasibilityError with a formatted message.
func NewFeasibility(format string, args ...interface{}) *FeasibilityError {
	return &FeasibilityError{baseError{Message: fmt.Sprintf(format, args...)}}
}

// IsFeasibility reports whether err is (or wraps) a FeasibilityError.
func IsFeasibility(err error) bool {
	for err != nil {
		if _, ok := err.(*FeasibilityError); ok {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// InvalidSpecificationError reports malformed input, rejected before any
// candidate generation begins.
type InvalidSpecificationError struct {
	baseError
}

// NewInvalidSpecification creates an InvalidSpecificationError with a
// formatted message.
func NewInvalidSpecification(format string, args ...interface{}) *InvalidSpecificationError {
	return &InvalidSpecificationError{baseError{Message: fmt.Sprintf(format, args...), Component: "specification"}}
}

// EmptyDesignSpaceError is surfaced to the caller when zero feasible
// candidates remain after a full run. Distinct from per-candidate
// infeasibility: this one is fatal and user-visible.
type EmptyDesignSpaceError struct {
	baseError
	// Evaluated is the number of candidates that were examined.
	Evaluated int
}

// NewEmptyDesignSpace creates an EmptyDesignSpaceError for a run that
// examined n candidates.
func NewEmptyDesignSpace(n int) *EmptyDesignSpaceError {
	return &EmptyDesignSpaceError{
		baseError: Error{Message: fmt.Sprintf("no feasible candidate among %d evaluated", n), Component: "optimizer"},
		Evaluated: n,
	}
}

// ModelRangeWarning records that a computed physical quantity fell outside
// its valid range (for example a negative loss from an extrapolated
// temperature model) and was clamped. It is attached to the candidate, not
// raised as an error.
type ModelRangeWarning struct {
	Quantity  string  `json:"quantity"`
	Value     float64 `json:"value"`
	ClampedTo float64 `json:"clamped_to"`
}

func (w ModelRangeWarning) String() string {
	return fmt.Sprintf("%s=%g clamped to %g", w.Quantity, w.Value, w.ClampedTo)
}
