package termstructure

import (
	"fmt"

	"github.com/pkg/errors"
)

// Configuration errors. They are reported before any solving starts.
var (
	ErrNilCurve             = errors.New("nil curve")
	ErrNotEnoughInstruments = errors.New("not enough instruments")
	ErrDuplicateMaturity    = errors.New("more than one instrument with the same maturity")
	ErrUnsortedInstruments  = errors.New("instruments not sorted by maturity")
	ErrInvalidConfiguration = errors.New("invalid bootstrap configuration")
)

var (
	ErrInvalidQuote        = errors.New("invalid quote")
	ErrSolverFailed        = errors.New("solver failed")
	ErrInterpolationFailed = errors.New("interpolation failed")
	ErrNotConverged        = errors.New("convergence not reached")
	ErrCurveUnusable       = errors.New("curve unusable")
)

// NotConvergedError reports an outer loop that hit its iteration cap.
type NotConvergedError struct {
	Iterations  int
	Improvement float64
	Accuracy    float64
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("%s after %d iterations, last improvement %g, required accuracy %g",
		ErrNotConverged, e.Iterations, e.Improvement, e.Accuracy)
}

func (e *NotConvergedError) Unwrap() error { return ErrNotConverged }

type unusableError struct {
	cause error
}

func (e *unusableError) Error() string        { return ErrCurveUnusable.Error() + ": " + e.cause.Error() }
func (e *unusableError) Unwrap() error        { return e.cause }
func (e *unusableError) Is(target error) bool { return target == ErrCurveUnusable }

// ErrorClass groups bootstrap errors for reporting.
type ErrorClass string

const (
	ClassNone          ErrorClass = "none"
	ClassConfiguration ErrorClass = "configuration"
	ClassQuote         ErrorClass = "quote"
	ClassSolver        ErrorClass = "solver"
	ClassConvergence   ErrorClass = "convergence"
	ClassUnknown       ErrorClass = "unknown"
)

// Classify maps err onto its ErrorClass.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrNilCurve), errors.Is(err, ErrNotEnoughInstruments),
		errors.Is(err, ErrDuplicateMaturity), errors.Is(err, ErrUnsortedInstruments),
		errors.Is(err, ErrInvalidConfiguration):
		return ClassConfiguration
	case errors.Is(err, ErrInvalidQuote):
		return ClassQuote
	case errors.Is(err, ErrSolverFailed), errors.Is(err, ErrInterpolationFailed):
		return ClassSolver
	case errors.Is(err, ErrNotConverged):
		return ClassConvergence
	default:
		return ClassUnknown
	}
}
