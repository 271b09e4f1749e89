package termstructure

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/interpolation"
	"github.com/meenmo/curvekit/solver"
)

type options struct {
	logger         zerolog.Logger
	maxEvaluations int
	endCriteria    solver.EndCriteria
}

// Option configures a bootstrapper.
type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSolverMaxEvaluations caps objective calls per pillar solve.
func WithSolverMaxEvaluations(n int) Option {
	return func(o *options) { o.maxEvaluations = n }
}

// WithEndCriteria sets the minimizer end criteria of a local bootstrap.
func WithEndCriteria(ec solver.EndCriteria) Option {
	return func(o *options) { o.endCriteria = ec }
}

func newOptions(opts []Option) options {
	cfg := config.GetConfig()
	o := options{
		logger:         zerolog.Nop(),
		maxEvaluations: cfg.Bootstrap.SolverMaxEvaluations,
		endCriteria: solver.EndCriteria{
			MaxIterations:                cfg.Local.MaxIterations,
			MaxStationaryStateIterations: cfg.Local.MaxStationaryIterations,
			FunctionEpsilon:              cfg.Local.FunctionEpsilon,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// checkQuotes binds the curve to every helper after checking the quotes.
func checkQuotes(c *Curve, helpers []RateHelper) error {
	for i, h := range helpers {
		if !h.QuoteIsValid() {
			return errors.Wrapf(ErrInvalidQuote, "instrument %d maturing %s", i, h.LatestDate().Format("2006-01-02"))
		}
	}
	for i, h := range helpers {
		if err := h.SetTermStructure(c); err != nil {
			return errors.Wrapf(err, "instrument %d", i)
		}
	}
	return nil
}

// setupPillars sizes the curve to n+1 pillars. Unless warm, every value is
// seeded with pillar 0's.
func setupPillars(c *Curve, helpers []RateHelper, warm bool) error {
	n := len(helpers)
	if n+1 < c.interpolator.RequiredPoints() {
		return errors.Wrapf(ErrInvalidConfiguration, "%s interpolation needs %d pillars, have %d",
			c.interpolator.Name(), c.interpolator.RequiredPoints(), n+1)
	}
	c.ResetDates(n + 1)
	c.ResetTimes(n + 1)
	c.ResetData(n + 1)

	c.dates[0] = c.traits.InitialDate(c)
	c.times[0] = 0
	c.data[0] = c.traits.InitialValue()
	for i := 1; i <= n; i++ {
		c.dates[i] = helpers[i-1].LatestDate()
		c.times[i] = c.TimeFromReference(c.dates[i])
		if !(c.times[i] > c.times[i-1]) {
			return errors.Wrapf(ErrInvalidConfiguration, "pillar %d at %s is not after %s",
				i, c.dates[i].Format("2006-01-02"), c.dates[i-1].Format("2006-01-02"))
		}
		if !warm {
			c.data[i] = c.data[0]
		}
	}
	return nil
}

// extendInterpolation builds the interpolation over the first k pillars.
// Below the interpolator's required points, or when a local interpolator
// fails to build, linear interpolation stands in.
func extendInterpolation(c *Curve, k int) error {
	xs, ys := c.times[:k], c.data[:k]
	if k < c.interpolator.RequiredPoints() {
		return setLinear(c, xs, ys)
	}
	in, err := c.interpolator.Interpolate(xs, ys)
	if err != nil {
		if c.interpolator.Global() {
			return errors.Wrapf(ErrInterpolationFailed, "%s over %d pillars: %v", c.interpolator.Name(), k, err)
		}
		return setLinear(c, xs, ys)
	}
	c.SetInterpolation(in)
	return nil
}

func setLinear(c *Curve, xs, ys []float64) error {
	in, err := interpolation.Linear.Interpolate(xs, ys)
	if err != nil {
		return errors.Wrapf(ErrInterpolationFailed, "linear over %d pillars: %v", len(xs), err)
	}
	c.SetInterpolation(in)
	return nil
}

// fullInterpolation rebuilds the target interpolation over every pillar.
func fullInterpolation(c *Curve) error {
	in, err := c.interpolator.Interpolate(c.times, c.data)
	if err != nil {
		return errors.Wrapf(ErrInterpolationFailed, "%s over %d pillars: %v", c.interpolator.Name(), len(c.times), err)
	}
	c.SetInterpolation(in)
	return nil
}
