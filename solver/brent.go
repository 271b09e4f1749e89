// Package solver holds the numerical drivers used by the bootstrappers: a
// bracketing one-dimensional root finder and a multi-dimensional minimizer.
package solver

import (
	"math"

	"github.com/pkg/errors"
)

var (
	ErrNotBracketed   = errors.New("root not bracketed")
	ErrMaxEvaluations = errors.New("maximum number of function evaluations exceeded")
	ErrNotFinite      = errors.New("objective returned a non-finite value")
	ErrBadBracket     = errors.New("invalid bracket")
)

const DefaultMaxEvaluations = 100

// Brent finds a root of a scalar function inside [min, max] combining
// bisection, secant and inverse quadratic interpolation steps.
type Brent struct {
	// MaxEvaluations caps the number of objective calls. Zero means DefaultMaxEvaluations.
	MaxEvaluations int
}

// Solve returns x in [min, max] with |f(x)| small or the bracket narrower than
// accuracy. The last call made to f is always at the returned root, so side
// effects of f reflect the solution.
func (b Brent) Solve(f func(float64) float64, accuracy, guess, min, max float64) (float64, error) {
	maxEval := b.MaxEvaluations
	if maxEval <= 0 {
		maxEval = DefaultMaxEvaluations
	}
	if !(min < max) {
		return 0, errors.Wrapf(ErrBadBracket, "min %g >= max %g", min, max)
	}
	if guess < min || guess > max {
		return 0, errors.Wrapf(ErrBadBracket, "guess %g outside [%g, %g]", guess, min, max)
	}
	accuracy = math.Max(accuracy, math.SmallestNonzeroFloat64)

	evals := 0
	eval := func(x float64) (float64, error) {
		evals++
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return y, errors.Wrapf(ErrNotFinite, "f(%g) = %g", x, y)
		}
		return y, nil
	}

	fmin, err := eval(min)
	if err != nil {
		return 0, err
	}
	if fmin == 0 {
		return min, nil
	}
	fmax, err := eval(max)
	if err != nil {
		return 0, err
	}
	if fmax == 0 {
		return max, nil
	}
	if (fmin > 0) == (fmax > 0) {
		return 0, errors.Wrapf(ErrNotBracketed, "f(%g) = %g, f(%g) = %g", min, fmin, max, fmax)
	}

	root, froot := guess, 0.0
	if froot, err = eval(root); err != nil {
		return 0, err
	}
	if froot == 0 {
		return root, nil
	}
	last := root

	// xMax is the contrapoint: f changes sign between root and xMax.
	xMax, fxMax := max, fmax
	if (froot > 0) == (fmax > 0) {
		xMax, fxMax = min, fmin
	}
	xMin, fxMin := xMax, fxMax
	d := root - xMax
	e := d

	for evals < maxEval {
		if (froot > 0 && fxMax > 0) || (froot < 0 && fxMax < 0) {
			xMax, fxMax = xMin, fxMin
			d = root - xMin
			e = d
		}
		if math.Abs(fxMax) < math.Abs(froot) {
			xMin, root, xMax = root, xMax, root
			fxMin, froot, fxMax = froot, fxMax, froot
		}

		tol1 := 2*epsilon*math.Abs(root) + 0.5*accuracy
		xMid := 0.5 * (xMax - root)
		if math.Abs(xMid) <= tol1 || froot == 0 {
			return b.settle(eval, root, last)
		}

		if math.Abs(e) >= tol1 && math.Abs(fxMin) > math.Abs(froot) {
			var p, q, r float64
			s := froot / fxMin
			if xMin == xMax {
				p = 2 * xMid * s
				q = 1 - s
			} else {
				q = fxMin / fxMax
				r = froot / fxMax
				p = s * (2*xMid*q*(q-r) - (root-xMin)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xMid*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xMid
				e = d
			}
		} else {
			d = xMid
			e = d
		}

		xMin, fxMin = root, froot
		if math.Abs(d) > tol1 {
			root += d
		} else {
			root += math.Copysign(tol1, xMid)
		}
		if froot, err = eval(root); err != nil {
			return 0, err
		}
		last = root
	}
	return 0, errors.Wrapf(ErrMaxEvaluations, "%d evaluations, best %g", maxEval, root)
}

// settle re-evaluates at root when the swaps above left the last evaluation elsewhere.
func (b Brent) settle(eval func(float64) (float64, error), root, last float64) (float64, error) {
	if root != last {
		if _, err := eval(root); err != nil {
			return 0, err
		}
	}
	return root, nil
}

const epsilon = 2.220446049250313e-16
