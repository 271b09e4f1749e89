package termstructure_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/interpolation"
	"github.com/meenmo/curvekit/solver"
	"github.com/meenmo/curvekit/termstructure"
)

func TestLocalBootstrapReprices(t *testing.T) {
	t.Parallel()

	for _, L := range []int{1, 2} {
		hs, _ := market(t)
		c := newCurve(t, termstructure.KindDiscount, settings(), interpolation.LogLinear)
		b, err := termstructure.NewLocalBootstrap(c, hs, L, true)
		require.NoError(t, err)
		assert.Equal(t, L, b.Localisation())

		require.NoError(t, b.Calculate(), "localisation %d", L)
		assert.True(t, b.Valid())
		assert.Positive(t, b.Iterations())
		requireReprices(t, b.Helpers(), 1e-7)

		for i, v := range c.Data() {
			assert.Positive(t, v, "pillar %d", i)
		}
	}
}

func TestLocalBootstrapMatchesIterative(t *testing.T) {
	t.Parallel()

	hs, _ := market(t)
	iterative := newCurve(t, termstructure.KindZeroYield, settings(), interpolation.Linear)
	ib, err := termstructure.NewIterativeBootstrap(iterative, hs)
	require.NoError(t, err)
	require.NoError(t, ib.Calculate())

	hs, _ = market(t)
	local := newCurve(t, termstructure.KindZeroYield, settings(), interpolation.Linear)
	lb, err := termstructure.NewLocalBootstrap(local, hs, 2, false)
	require.NoError(t, err)
	require.NoError(t, lb.Calculate())

	// Both fit every instrument with the same interpolation.
	for i := range iterative.Data() {
		assert.InDelta(t, iterative.Data()[i], local.Data()[i], 1e-6, "pillar %d", i)
	}
}

func TestLocalBootstrapRecalculatesWarm(t *testing.T) {
	t.Parallel()

	hs, quotes := market(t)
	c := newCurve(t, termstructure.KindDiscount, settings(), interpolation.LogLinear)
	b, err := termstructure.NewLocalBootstrap(c, hs, 2, true)
	require.NoError(t, err)
	require.NoError(t, b.Calculate())

	quotes[4].Set(quotes[4].Value() + 0.0001)
	require.NoError(t, b.Calculate())
	requireReprices(t, b.Helpers(), 1e-7)
}

func TestLocalBootstrapConfiguration(t *testing.T) {
	t.Parallel()

	hs, _ := market(t)

	for _, ip := range []interpolation.Interpolator{interpolation.NaturalCubic, interpolation.Akima, interpolation.FritschButland} {
		cubic := newCurve(t, termstructure.KindDiscount, settings(), ip)
		_, err := termstructure.NewLocalBootstrap(cubic, hs, 2, true)
		assert.True(t, errors.Is(err, termstructure.ErrInvalidConfiguration), ip.Name())
	}

	c := newCurve(t, termstructure.KindDiscount, settings(), interpolation.LogLinear)
	_, err := termstructure.NewLocalBootstrap(c, hs, 0, true)
	assert.True(t, errors.Is(err, termstructure.ErrInvalidConfiguration))

	_, err = termstructure.NewLocalBootstrap(c, hs[:3], 4, true)
	assert.True(t, errors.Is(err, termstructure.ErrNotEnoughInstruments))

	_, err = termstructure.NewLocalBootstrap(nil, hs, 2, true)
	assert.True(t, errors.Is(err, termstructure.ErrNilCurve))
}

func TestLocalBootstrapSolverFailure(t *testing.T) {
	t.Parallel()

	hs, _ := market(t)
	c := newCurve(t, termstructure.KindDiscount, settings(), interpolation.LogLinear)
	// One iteration is never enough to settle the simplex.
	b, err := termstructure.NewLocalBootstrap(c, hs, 2, true,
		termstructure.WithEndCriteria(solver.EndCriteria{MaxIterations: 1, MaxStationaryStateIterations: 100, FunctionEpsilon: 1e-24}))
	require.NoError(t, err)

	err = b.Calculate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, termstructure.ErrSolverFailed))
	assert.False(t, b.Valid())
}
