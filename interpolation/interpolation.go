// Package interpolation builds one-dimensional interpolations over curve
// pillars. Fitting is delegated to gonum's interp package; an Interpolation
// keeps referencing the caller's slices so Update picks up values written
// into them after construction.
package interpolation

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"
)

var (
	ErrTooFewPoints      = errors.New("too few points")
	ErrNotIncreasing     = errors.New("abscissae not strictly increasing")
	ErrNonFinite         = errors.New("non-finite ordinate")
	ErrNonPositive       = errors.New("non-positive ordinate for log interpolation")
	ErrUnknownInterpolor = errors.New("unknown interpolator")
)

// Interpolation is a fitted curve through (xs, ys).
type Interpolation interface {
	// Update refits from the current contents of the underlying slices.
	Update() error
	// Value evaluates the interpolation. Outside [XMin, XMax] the end values are held flat.
	Value(x float64) float64
	// Derivative is the first derivative with respect to x.
	Derivative(x float64) float64
	XMin() float64
	XMax() float64
	Size() int
}

// Interpolator builds interpolations of one kind.
type Interpolator interface {
	Interpolate(xs, ys []float64) (Interpolation, error)
	// Global reports whether moving one point changes the curve away from its
	// neighbouring segments.
	Global() bool
	RequiredPoints() int
	Name() string
}

type kind struct {
	name     string
	global   bool
	required int
	log      bool
	newFit   func() interp.FittablePredictor
}

func (k kind) Global() bool        { return k.global }
func (k kind) RequiredPoints() int { return k.required }
func (k kind) Name() string        { return k.name }

func (k kind) Interpolate(xs, ys []float64) (Interpolation, error) {
	if len(xs) != len(ys) {
		return nil, errors.Errorf("%s: %d abscissae, %d ordinates", k.name, len(xs), len(ys))
	}
	f := &fitted{kind: k, xs: xs, ys: ys, fp: k.newFit()}
	if k.log {
		f.scratch = make([]float64, len(ys))
	}
	if err := f.Update(); err != nil {
		return nil, err
	}
	return f, nil
}

var (
	// Linear interpolates values piecewise linearly.
	Linear Interpolator = kind{
		name: "linear", required: 2,
		newFit: func() interp.FittablePredictor { return &interp.PiecewiseLinear{} },
	}
	// LogLinear interpolates the logarithm of the values linearly.
	LogLinear Interpolator = kind{
		name: "loglinear", required: 2, log: true,
		newFit: func() interp.FittablePredictor { return &interp.PiecewiseLinear{} },
	}
	// NaturalCubic is a natural cubic spline; every pillar moves the whole curve.
	NaturalCubic Interpolator = kind{
		name: "naturalcubic", global: true, required: 3,
		newFit: func() interp.FittablePredictor { return &interp.NaturalCubic{} },
	}
	// Akima is Akima's spline. Node slopes depend on neighbouring pillars,
	// so solving a later pillar moves the segments behind it.
	Akima Interpolator = kind{
		name: "akima", global: true, required: 3,
		newFit: func() interp.FittablePredictor { return &interp.AkimaSpline{} },
	}
	// FritschButland is a monotone piecewise cubic; like Akima its node
	// slopes are shared with neighbouring segments.
	FritschButland Interpolator = kind{
		name: "fritschbutland", global: true, required: 3,
		newFit: func() interp.FittablePredictor { return &interp.FritschButland{} },
	}
)

var byName = map[string]Interpolator{}

func init() {
	for _, i := range []Interpolator{Linear, LogLinear, NaturalCubic, Akima, FritschButland} {
		byName[i.Name()] = i
	}
}

// ByName looks up an interpolator by its name, case-insensitively.
func ByName(name string) (Interpolator, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	if i, ok := byName[key]; ok {
		return i, nil
	}
	return nil, errors.Wrapf(ErrUnknownInterpolor, "%q", name)
}

type fitted struct {
	kind    kind
	xs, ys  []float64
	scratch []float64
	fp      interp.FittablePredictor
}

func (f *fitted) Size() int      { return len(f.xs) }
func (f *fitted) XMin() float64  { return f.xs[0] }
func (f *fitted) XMax() float64  { return f.xs[len(f.xs)-1] }
func (f *fitted) String() string { return fmt.Sprintf("%s(%d)", f.kind.name, len(f.xs)) }

func (f *fitted) Value(x float64) float64 {
	v := f.fp.Predict(x)
	if f.kind.log {
		return math.Exp(v)
	}
	return v
}

// Derivative uses a central difference, one-sided at the ends of the range.
func (f *fitted) Derivative(x float64) float64 {
	h := derivativeStep * math.Max(1, math.Abs(x))
	lo, hi := x-h, x+h
	if lo < f.XMin() {
		lo = x
	}
	if hi > f.XMax() {
		hi = x
	}
	if hi == lo {
		return 0
	}
	return (f.Value(hi) - f.Value(lo)) / (hi - lo)
}

const derivativeStep = 1e-6

func (f *fitted) Update() (err error) {
	n := len(f.xs)
	if n < f.kind.required {
		return errors.Wrapf(ErrTooFewPoints, "%s needs %d, got %d", f.kind.name, f.kind.required, n)
	}
	for i := 1; i < n; i++ {
		if !(f.xs[i] > f.xs[i-1]) {
			return errors.Wrapf(ErrNotIncreasing, "%s at index %d", f.kind.name, i)
		}
	}
	ys := f.ys
	if f.kind.log {
		for i, y := range f.ys {
			if !(y > 0) {
				return errors.Wrapf(ErrNonPositive, "%s at index %d: %g", f.kind.name, i, y)
			}
			f.scratch[i] = math.Log(y)
		}
		ys = f.scratch
	}
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return errors.Wrapf(ErrNonFinite, "%s at index %d", f.kind.name, i)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("%s: fit: %v", f.kind.name, r)
		}
	}()
	return f.fp.Fit(f.xs, ys)
}
