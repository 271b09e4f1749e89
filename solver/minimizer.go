package solver

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
)

var ErrNotStationary = errors.New("minimizer did not reach a stationary point")

// EndCriteria bounds a minimization run.
type EndCriteria struct {
	MaxIterations int
	// MaxStationaryStateIterations is the number of iterations without an
	// improvement larger than FunctionEpsilon after which the run stops.
	MaxStationaryStateIterations int
	FunctionEpsilon              float64
}

// DefaultEndCriteria matches config defaults.
var DefaultEndCriteria = EndCriteria{
	MaxIterations:                10000,
	MaxStationaryStateIterations: 100,
	FunctionEpsilon:              1e-24,
}

// Constraint restricts the admissible parameter region.
type Constraint interface {
	Test(x []float64) bool
}

type NoConstraint struct{}

func (NoConstraint) Test([]float64) bool { return true }

// PositiveConstraint admits only strictly positive parameters.
type PositiveConstraint struct{}

func (PositiveConstraint) Test(x []float64) bool {
	for _, v := range x {
		if !(v > 0) {
			return false
		}
	}
	return true
}

// Result is the outcome of a successful minimization.
type Result struct {
	X           []float64
	Value       float64
	Iterations  int
	Evaluations int
	Status      string
}

// Minimizer runs a derivative-free Nelder-Mead search.
type Minimizer struct {
	EndCriteria EndCriteria
	Constraint  Constraint
	// SimplexSize is the initial simplex edge. Zero uses gonum's default.
	SimplexSize float64
}

// Minimize minimizes cost starting from x0. Points rejected by the constraint
// evaluate to +Inf, as do non-finite costs.
func (m Minimizer) Minimize(cost func(x []float64) float64, x0 []float64) (Result, error) {
	if len(x0) == 0 {
		return Result{}, errors.New("empty starting point")
	}
	constraint := m.Constraint
	if constraint == nil {
		constraint = NoConstraint{}
	}
	if !constraint.Test(x0) {
		return Result{}, errors.Errorf("starting point %v violates constraint", x0)
	}
	ec := m.EndCriteria
	if ec.MaxIterations <= 0 {
		ec.MaxIterations = DefaultEndCriteria.MaxIterations
	}
	if ec.MaxStationaryStateIterations <= 0 {
		ec.MaxStationaryStateIterations = DefaultEndCriteria.MaxStationaryStateIterations
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if !constraint.Test(x) {
				return math.Inf(1)
			}
			v := cost(x)
			if math.IsNaN(v) {
				return math.Inf(1)
			}
			return v
		},
	}
	settings := &optimize.Settings{
		MajorIterations: ec.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   ec.FunctionEpsilon,
			Iterations: ec.MaxStationaryStateIterations,
		},
	}
	method := &optimize.NelderMead{SimplexSize: m.SimplexSize}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if res == nil {
		return Result{}, errors.Wrap(ErrNotStationary, errString(err))
	}
	out := Result{
		X:           res.X,
		Value:       res.F,
		Iterations:  res.Stats.MajorIterations,
		Evaluations: res.Stats.FuncEvaluations,
		Status:      res.Status.String(),
	}
	switch res.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge:
		return out, nil
	}
	return out, errors.Wrapf(ErrNotStationary, "status %s after %d iterations: %s", out.Status, out.Iterations, errString(err))
}

func errString(err error) string {
	if err == nil {
		return "no error"
	}
	return err.Error()
}
