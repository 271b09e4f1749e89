package termstructure

import "math"

// Objective is the root-finding target for one pillar: the quote error of
// the instrument anchored there as a function of the pillar value.
type Objective struct {
	curve  *Curve
	helper RateHelper
	index  int
}

func NewObjective(c *Curve, h RateHelper, i int) *Objective {
	return &Objective{curve: c, helper: h, index: i}
}

// Value writes x into the pillar, refreshes the interpolation and returns the
// quote error. The pillar keeps x after the call.
func (o *Objective) Value(x float64) float64 {
	o.curve.traits.UpdateGuess(o.curve.data, x, o.index)
	if err := o.curve.interp.Update(); err != nil {
		return math.NaN()
	}
	return o.helper.QuoteError()
}
