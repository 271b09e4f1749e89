package termstructure

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/solver"
)

// LocalBootstrap fits a sliding window of pillars jointly to the window's
// instruments. It needs an interpolation where a pillar only moves its
// neighbourhood.
//
// For the last pillar k of each window, pillars k-L+1..k are free and
// instruments k-L..k-1 constrain them, L being the localisation.
type LocalBootstrap struct {
	curve         *Curve
	helpers       []RateHelper
	localisation  int
	forcePositive bool
	endCriteria   solver.EndCriteria
	logger        zerolog.Logger

	valid      bool
	iterations int
}

func NewLocalBootstrap(c *Curve, helpers []RateHelper, localisation int, forcePositive bool, opts ...Option) (*LocalBootstrap, error) {
	if c == nil {
		return nil, ErrNilCurve
	}
	if localisation < 1 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "localisation %d must be at least 1", localisation)
	}
	if c.interpolator.Global() {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "local bootstrap needs a local interpolation, got %s", c.interpolator.Name())
	}
	hs, err := prepareHelpers(helpers)
	if err != nil {
		return nil, err
	}
	if len(hs) < localisation {
		return nil, errors.Wrapf(ErrNotEnoughInstruments, "%d instruments for localisation %d", len(hs), localisation)
	}
	o := newOptions(opts)
	return &LocalBootstrap{
		curve:         c,
		helpers:       hs,
		localisation:  localisation,
		forcePositive: forcePositive,
		endCriteria:   o.endCriteria,
		logger:        o.logger,
	}, nil
}

// Iterations is the total minimizer iterations of the last Calculate.
func (b *LocalBootstrap) Iterations() int       { return b.iterations }
func (b *LocalBootstrap) Valid() bool           { return b.valid }
func (b *LocalBootstrap) Localisation() int     { return b.localisation }
func (b *LocalBootstrap) Helpers() []RateHelper { return b.helpers }

func (b *LocalBootstrap) Calculate() error {
	warm := b.valid
	b.valid = false
	b.iterations = 0

	if err := b.calculate(warm); err != nil {
		b.logger.Warn().Err(err).Str("kind", b.curve.Kind().String()).Msg("local bootstrap failed")
		return err
	}
	b.valid = true
	return nil
}

func (b *LocalBootstrap) calculate(warm bool) error {
	c := b.curve
	if err := checkQuotes(c, b.helpers); err != nil {
		return err
	}
	if err := setupPillars(c, b.helpers, warm); err != nil {
		return err
	}

	var constraint solver.Constraint = solver.NoConstraint{}
	if b.forcePositive {
		constraint = solver.PositiveConstraint{}
	}
	n, L := len(b.helpers), b.localisation

	for k := 1; k <= n; k++ {
		if !warm {
			guess := c.traits.InitialGuess()
			if k > 1 {
				guess = c.traits.Guess(c, c.dates[k])
			}
			if b.forcePositive && !(guess > 0) {
				guess = c.data[k-1]
			}
			c.traits.UpdateGuess(c.data, guess, k)
		}
		if err := extendInterpolation(c, k+1); err != nil {
			return err
		}
		if k < L {
			continue
		}
		if err := b.solveWindow(k-L+1, k, constraint); err != nil {
			return err
		}
	}
	return nil
}

// solveWindow fits pillars first..last to instruments first-1..last-1.
func (b *LocalBootstrap) solveWindow(first, last int, constraint solver.Constraint) error {
	c := b.curve
	p := &penalty{curve: c, helpers: b.helpers[first-1 : last], first: first}

	x0 := append([]float64(nil), c.data[first:last+1]...)
	size := 0.0
	for _, v := range x0 {
		size = math.Max(size, math.Abs(v))
	}
	m := solver.Minimizer{
		EndCriteria: b.endCriteria,
		Constraint:  constraint,
		SimplexSize: math.Max(1e-4, 0.01*size),
	}
	res, err := m.Minimize(p.SumOfSquares, x0)
	b.iterations += res.Iterations
	if err != nil {
		return errors.Wrapf(ErrSolverFailed, "window [%d, %d] (%s to %s): %v",
			first, last, c.dates[first].Format("2006-01-02"), c.dates[last].Format("2006-01-02"), err)
	}
	p.set(res.X)
	if err := c.interp.Update(); err != nil {
		return errors.Wrapf(ErrInterpolationFailed, "window [%d, %d]: %v", first, last, err)
	}
	b.logger.Debug().
		Int("first", first).
		Int("last", last).
		Float64("penalty", p.Value(res.X)).
		Str("status", res.Status).
		Msg("window solved")
	return nil
}

// penalty measures how far a window of pillar values is from repricing the
// window's instruments.
type penalty struct {
	curve   *Curve
	helpers []RateHelper
	first   int
}

func (p *penalty) set(x []float64) {
	for j, v := range x {
		p.curve.traits.UpdateGuess(p.curve.data, v, p.first+j)
	}
}

// Values are the absolute quote errors at x.
func (p *penalty) Values(x []float64) []float64 {
	p.set(x)
	out := make([]float64, len(p.helpers))
	if err := p.curve.interp.Update(); err != nil {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	for i, h := range p.helpers {
		out[i] = math.Abs(h.QuoteError())
	}
	return out
}

// Value is the sum of absolute quote errors.
func (p *penalty) Value(x []float64) float64 {
	sum := 0.0
	for _, v := range p.Values(x) {
		sum += v
	}
	return sum
}

// SumOfSquares is the least-squares form handed to the minimizer.
func (p *penalty) SumOfSquares(x []float64) float64 {
	sum := 0.0
	for _, v := range p.Values(x) {
		sum += v * v
	}
	return sum
}
