package termstructure

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/meenmo/curvekit/interpolation"
	"github.com/meenmo/curvekit/utils"
)

// Curve is the pillar representation of a yield curve under construction.
// The meaning of the pillar values is set by its Traits.
//
// dates, times and data are index aligned. The interpolation references
// times and data directly, so it must be refreshed after values are written.
type Curve struct {
	referenceDate time.Time
	dayCount      utils.DayCount
	traits        Traits
	interpolator  interpolation.Interpolator
	interp        interpolation.Interpolation

	dates []time.Time
	times []float64
	data  []float64
}

// Pillar is one node of a curve.
type Pillar struct {
	Date  time.Time
	Time  float64
	Value float64
}

// NewCurve returns an empty curve. The day count defines the time axis and
// defaults to ACT/365F.
func NewCurve(referenceDate time.Time, traits Traits, interpolator interpolation.Interpolator, dayCount utils.DayCount) (*Curve, error) {
	if traits == nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, "nil traits")
	}
	if interpolator == nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, "nil interpolator")
	}
	if referenceDate.IsZero() {
		return nil, errors.Wrap(ErrInvalidConfiguration, "zero reference date")
	}
	if dayCount == "" {
		dayCount = utils.Act365F
	}
	return &Curve{
		referenceDate: referenceDate,
		dayCount:      dayCount,
		traits:        traits,
		interpolator:  interpolator,
	}, nil
}

func (c *Curve) ReferenceDate() time.Time { return c.referenceDate }
func (c *Curve) DayCount() utils.DayCount { return c.dayCount }
func (c *Curve) Traits() Traits           { return c.traits }
func (c *Curve) Kind() Kind               { return c.traits.Kind() }

func (c *Curve) TimeFromReference(d time.Time) float64 {
	return c.dayCount.YearFraction(c.referenceDate, d)
}

// Bootstrapable state.

func (c *Curve) Data() []float64                            { return c.data }
func (c *Curve) Dates() []time.Time                         { return c.dates }
func (c *Curve) Times() []float64                           { return c.times }
func (c *Curve) ResetData(n int)                            { c.data = resize(c.data, n) }
func (c *Curve) ResetTimes(n int)                           { c.times = resize(c.times, n) }
func (c *Curve) ResetDates(n int)                           { c.dates = resize(c.dates, n) }
func (c *Curve) Interpolator() interpolation.Interpolator   { return c.interpolator }
func (c *Curve) Interpolation() interpolation.Interpolation { return c.interp }

func (c *Curve) SetInterpolation(in interpolation.Interpolation) { c.interp = in }

// resize keeps the existing prefix so a solved curve can seed the next run.
func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	out := make([]T, n)
	copy(out, s)
	return out
}

// Pillars returns a copy of the nodes.
func (c *Curve) Pillars() []Pillar {
	out := make([]Pillar, len(c.data))
	for i := range c.data {
		out[i] = Pillar{Date: c.dates[i], Time: c.times[i], Value: c.data[i]}
	}
	return out
}

// Discount returns the discount factor to d. It is NaN until an interpolation is set.
func (c *Curve) Discount(d time.Time) float64 {
	return c.DiscountAt(c.TimeFromReference(d))
}

func (c *Curve) DiscountAt(t float64) float64 {
	if c.interp == nil {
		return math.NaN()
	}
	if t <= 0 {
		return 1
	}
	return c.traits.discount(c, t)
}

// ZeroRate is the continuously compounded zero rate to d.
func (c *Curve) ZeroRate(d time.Time) float64 {
	return c.ZeroRateAt(c.TimeFromReference(d))
}

func (c *Curve) ZeroRateAt(t float64) float64 {
	if t < zeroTimeStep {
		t = zeroTimeStep
	}
	return -math.Log(c.DiscountAt(t)) / t
}

// ForwardRate is the continuously compounded forward rate between d1 and d2.
func (c *Curve) ForwardRate(d1, d2 time.Time) float64 {
	t1, t2 := c.TimeFromReference(d1), c.TimeFromReference(d2)
	if t2 == t1 {
		return c.InstantaneousForward(t1)
	}
	return math.Log(c.DiscountAt(t1)/c.DiscountAt(t2)) / (t2 - t1)
}

// InstantaneousForward is -d ln P(t) / dt.
func (c *Curve) InstantaneousForward(t float64) float64 {
	if c.interp == nil {
		return math.NaN()
	}
	if c.traits.Kind() == KindForwardRate {
		return c.interp.Value(math.Max(t, 0))
	}
	lo, hi := t-zeroTimeStep/2, t+zeroTimeStep/2
	if lo < 0 {
		lo, hi = 0, zeroTimeStep
	}
	return math.Log(c.DiscountAt(lo)/c.DiscountAt(hi)) / (hi - lo)
}

const zeroTimeStep = 1e-4

// segment returns the interpolated pillar times around t, or the boundary
// segment when t is outside the interpolated range.
func (c *Curve) segment(t float64) (t1, t2 float64, ok bool) {
	times := c.times[:c.interp.Size()]
	if len(times) < 2 {
		return 0, 0, false
	}
	i := segmentOrBoundary(times, t)
	return times[i], times[i+1], true
}

// discountFromDiscounts extrapolates beyond the last pillar at the flat
// forward rate of the last segment.
func discountFromDiscounts(c *Curve, t float64) float64 {
	tMax := c.interp.XMax()
	if t <= tMax {
		return c.interp.Value(t)
	}
	dMax := c.interp.Value(tMax)
	t1, t2, ok := c.segment(t)
	if !ok {
		return dMax
	}
	d1 := c.interp.Value(t1)
	if !(d1 > 0) || !(dMax > 0) {
		return dMax
	}
	f := math.Log(d1/dMax) / (t2 - t1)
	return dMax * math.Exp(-f*(t-tMax))
}

// discountFromZeros holds the last zero rate flat beyond the last pillar.
func discountFromZeros(c *Curve, t float64) float64 {
	z := c.interp.Value(math.Min(t, c.interp.XMax()))
	return math.Exp(-z * t)
}

// discountFromForwards integrates the forward curve node by node; beyond the
// last pillar the forward is held flat.
func discountFromForwards(c *Curve, t float64) float64 {
	tMax := c.interp.XMax()
	times := c.times[:c.interp.Size()]
	end := math.Min(t, tMax)

	integral := 0.0
	last := firstAtOrAfter(times, end)
	for i := 0; i < last && i+1 < len(times); i++ {
		a, b := times[i], math.Min(times[i+1], end)
		if b <= a {
			break
		}
		integral += quad.Fixed(c.interp.Value, a, b, quadraturePoints, nil, 0)
	}
	if t > tMax {
		integral += c.interp.Value(tMax) * (t - tMax)
	}
	return math.Exp(-integral)
}

const quadraturePoints = 4
