package termstructure

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/solver"
)

// IterativeBootstrap solves one pillar at a time so that each instrument
// reprices exactly. Global interpolations repeat full passes until the
// pillars stop moving.
type IterativeBootstrap struct {
	curve   *Curve
	helpers []RateHelper
	brent   solver.Brent
	logger  zerolog.Logger

	valid      bool
	iterations int
	previous   []float64
}

// NewIterativeBootstrap validates the instrument set. Helpers are sorted by
// maturity; duplicated maturities are rejected.
func NewIterativeBootstrap(c *Curve, helpers []RateHelper, opts ...Option) (*IterativeBootstrap, error) {
	if c == nil {
		return nil, ErrNilCurve
	}
	hs, err := prepareHelpers(helpers)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &IterativeBootstrap{
		curve:   c,
		helpers: hs,
		brent:   solver.Brent{MaxEvaluations: o.maxEvaluations},
		logger:  o.logger,
	}, nil
}

// Iterations is the number of outer passes made by the last Calculate.
func (b *IterativeBootstrap) Iterations() int { return b.iterations }

// Valid reports whether the last Calculate succeeded. A valid curve seeds the next run.
func (b *IterativeBootstrap) Valid() bool { return b.valid }

func (b *IterativeBootstrap) Helpers() []RateHelper { return b.helpers }

// Calculate runs the bootstrap. On failure the curve must not be read and the
// next run starts cold.
func (b *IterativeBootstrap) Calculate() error {
	warm := b.valid
	b.valid = false
	b.iterations = 0

	if err := b.calculate(warm); err != nil {
		b.logger.Warn().Err(err).Str("kind", b.curve.Kind().String()).Msg("bootstrap failed")
		return err
	}
	b.valid = true
	return nil
}

func (b *IterativeBootstrap) calculate(warm bool) error {
	c := b.curve
	if err := checkQuotes(c, b.helpers); err != nil {
		return err
	}
	if err := setupPillars(c, b.helpers, warm); err != nil {
		return err
	}

	n := len(b.helpers)
	accuracy := c.traits.Accuracy()
	maxIterations := c.traits.MaxIterations()
	global := c.interpolator.Global()
	b.previous = resize(b.previous, n+1)

	for iteration := 0; ; iteration++ {
		copy(b.previous, c.data)
		cold := !warm && iteration == 0
		if !cold {
			if err := fullInterpolation(c); err != nil {
				return err
			}
		}

		for i := 1; i <= n; i++ {
			if err := b.solvePillar(i, cold, iteration); err != nil {
				return err
			}
		}
		b.iterations = iteration + 1

		if !global {
			break
		}
		improvement := 0.0
		for i := 1; i <= n; i++ {
			improvement = math.Max(improvement, math.Abs(c.data[i]-b.previous[i]))
		}
		b.logger.Debug().
			Int("iteration", b.iterations).
			Float64("improvement", improvement).
			Msg("bootstrap pass")
		if !cold && improvement <= accuracy {
			break
		}
		if iteration+1 >= maxIterations {
			return &NotConvergedError{Iterations: b.iterations, Improvement: improvement, Accuracy: accuracy}
		}
	}
	return nil
}

func (b *IterativeBootstrap) solvePillar(i int, cold bool, iteration int) error {
	c := b.curve
	var guess float64
	switch {
	case !cold:
		guess = 0.99 * c.data[i]
	case i == 1:
		guess = c.traits.InitialGuess()
	default:
		guess = c.traits.Guess(c, c.dates[i])
	}
	if cold {
		if err := extendInterpolation(c, i+1); err != nil {
			return err
		}
	}

	lo := c.traits.MinValueAfter(i, c.data)
	hi := c.traits.MaxValueAfter(i, c.data)
	if math.IsNaN(guess) || guess < lo || guess > hi {
		guess = 0.5 * (lo + hi)
	}

	obj := NewObjective(c, b.helpers[i-1], i)
	root, err := b.brent.Solve(obj.Value, c.traits.Accuracy(), guess, lo, hi)
	if err != nil {
		return errors.Wrapf(ErrSolverFailed, "pillar %d (%s), iteration %d, bracket [%g, %g], guess %g: %v",
			i, c.dates[i].Format("2006-01-02"), iteration, lo, hi, guess, err)
	}
	c.traits.UpdateGuess(c.data, root, i)
	if err := c.interp.Update(); err != nil {
		return errors.Wrapf(ErrInterpolationFailed, "pillar %d: %v", i, err)
	}
	return nil
}
