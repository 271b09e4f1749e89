package solver_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/solver"
)

func TestBrentFindsRoot(t *testing.T) {
	t.Parallel()

	var lastX float64
	f := func(x float64) float64 {
		lastX = x
		return x*x*x - 2*x - 5
	}
	root, err := solver.Brent{}.Solve(f, 1e-14, 2.0, 1.0, 3.0)
	require.NoError(t, err)
	assert.InDelta(t, 2.0945514815423265, root, 1e-12)
	assert.Equal(t, root, lastX, "last evaluation must be at the root")
}

func TestBrentDiscountLikeObjective(t *testing.T) {
	t.Parallel()

	target := math.Exp(-0.03 * 2)
	f := func(d float64) float64 { return -math.Log(d)/2 - 0.03 }
	root, err := solver.Brent{}.Solve(f, 1e-15, 0.99, 1e-10, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, target, root, 1e-13)
}

func TestBrentRootAtBound(t *testing.T) {
	t.Parallel()

	root, err := solver.Brent{}.Solve(func(x float64) float64 { return x - 1 }, 1e-12, 0.5, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, root)
}

func TestBrentErrors(t *testing.T) {
	t.Parallel()

	square := func(x float64) float64 { return x*x + 1 }
	_, err := solver.Brent{}.Solve(square, 1e-12, 0, -1, 1)
	assert.True(t, errors.Is(err, solver.ErrNotBracketed))

	_, err = solver.Brent{}.Solve(square, 1e-12, 2, -1, 1)
	assert.True(t, errors.Is(err, solver.ErrBadBracket))

	nan := func(x float64) float64 {
		if x > 0.2 && x < 0.8 {
			return math.NaN()
		}
		return x - 0.5
	}
	_, err = solver.Brent{}.Solve(nan, 1e-12, 0.5, 0, 1)
	assert.True(t, errors.Is(err, solver.ErrNotFinite))

	slow := func(x float64) float64 { return math.Cbrt(x - 0.3) }
	_, err = solver.Brent{MaxEvaluations: 4}.Solve(slow, 1e-15, 0.9, 0, 1)
	assert.True(t, errors.Is(err, solver.ErrMaxEvaluations))
}

func TestMinimizerLeastSquares(t *testing.T) {
	t.Parallel()

	cost := func(x []float64) float64 {
		a := x[0] - 0.97
		b := x[1] - 0.93
		return a*a + b*b
	}
	res, err := solver.Minimizer{Constraint: solver.PositiveConstraint{}, SimplexSize: 0.01}.Minimize(cost, []float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.97, res.X[0], 1e-8)
	assert.InDelta(t, 0.93, res.X[1], 1e-8)
	assert.Greater(t, res.Evaluations, 0)
}

func TestMinimizerRespectsConstraint(t *testing.T) {
	t.Parallel()

	// Unconstrained minimum at -1; the positive constraint keeps x near zero.
	cost := func(x []float64) float64 { return (x[0] + 1) * (x[0] + 1) }
	res, err := solver.Minimizer{Constraint: solver.PositiveConstraint{}}.Minimize(cost, []float64{0.5})
	require.NoError(t, err)
	assert.Greater(t, res.X[0], 0.0)
	assert.Less(t, res.X[0], 0.05)

	_, err = solver.Minimizer{Constraint: solver.PositiveConstraint{}}.Minimize(cost, []float64{-0.5})
	assert.Error(t, err)
}

func TestMinimizerIterationCap(t *testing.T) {
	t.Parallel()

	rosen := func(x []float64) float64 {
		a := 1 - x[0]
		b := x[1] - x[0]*x[0]
		return a*a + 100*b*b
	}
	m := solver.Minimizer{EndCriteria: solver.EndCriteria{MaxIterations: 3, MaxStationaryStateIterations: 100, FunctionEpsilon: 1e-24}}
	_, err := m.Minimize(rosen, []float64{-1.2, 1})
	assert.True(t, errors.Is(err, solver.ErrNotStationary))
}
