package bond

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/curvekit/utils"
)

// AccruedInterest is the accrued part of the next coupon at settlement
// (ACT/ACT ICMA). cfs must be the cashflows remaining after settlement.
func AccruedInterest(settlement time.Time, cfs []Cashflow, frequency int) (float64, error) {
	if err := check(settlement, cfs, frequency); err != nil {
		return 0, err
	}
	next := cfs[0].Date
	prev := previousCoupon(next, frequency)
	if settlement.Before(prev) {
		return 0, nil
	}
	return cfs[0].Coupon * float64(daysBetween(prev, settlement)) / float64(daysBetween(prev, next)), nil
}

// DirtyPrice discounts cfs at the yield y compounded frequency times a year.
func DirtyPrice(y float64, settlement time.Time, cfs []Cashflow, frequency int) float64 {
	price, _ := dirtyPriceAndDeriv(y, settlement, cfs, frequency)
	return price
}

// ---------------------------------------------------------------------------
// Newton-Raphson solver
// ---------------------------------------------------------------------------

const (
	yieldTolerance = 1e-12
	yieldMaxIter   = 100
	yieldFloor     = -0.05
	yieldCeiling   = 0.50
)

// SolveYield finds y such that DirtyPrice(y) == target. It returns the yield
// and the number of Newton steps taken.
func SolveYield(target float64, settlement time.Time, cfs []Cashflow, frequency int) (float64, int, error) {
	if err := check(settlement, cfs, frequency); err != nil {
		return 0, 0, err
	}
	// Initial guess: mid-range (2.5 %).
	y := clamp(0.025, yieldFloor, yieldCeiling)

	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy := dirtyPriceAndDeriv(y, settlement, cfs, frequency)
		f := price - target

		if math.Abs(f) < yieldTolerance {
			return y, iter + 1, nil
		}
		if math.Abs(dPdy) < 1e-15 {
			return y, iter + 1, errors.Errorf("SolveYield: derivative too small at iter %d", iter)
		}

		y = clamp(y-f/dPdy, yieldFloor, yieldCeiling)
	}

	return y, yieldMaxIter, errors.Errorf("SolveYield: did not converge after %d iterations", yieldMaxIter)
}

// dirtyPriceAndDeriv returns (price, dPrice/dy) using ACT/ACT ICMA.
//
//	t_1  = days(settlement, cf[0]) / days(prevCoupon, cf[0])   (fractional first period)
//	t_k  = t_1 + (k − 1)                                       (coupon periods)
//	price = Σ CF_k / (1+y/f)^t_k
//	dP/dy = Σ −(t_k/f) · CF_k / (1+y/f)^(t_k+1)
func dirtyPriceAndDeriv(y float64, settlement time.Time, cfs []Cashflow, frequency int) (float64, float64) {
	if len(cfs) == 0 || frequency <= 0 {
		return 0, 0
	}
	f := float64(frequency)
	prev := previousCoupon(cfs[0].Date, frequency)
	t1 := float64(daysBetween(settlement, cfs[0].Date)) / float64(daysBetween(prev, cfs[0].Date))

	var price, deriv float64
	for i, cf := range cfs {
		t := t1 + float64(i)
		amt := cf.Amount()
		base := 1.0 + y/f
		price += amt / math.Pow(base, t)
		deriv += -t / f * amt / math.Pow(base, t+1)
	}

	return price, deriv
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func check(settlement time.Time, cfs []Cashflow, frequency int) error {
	if settlement.IsZero() {
		return errors.New("settlement date is required")
	}
	if len(cfs) == 0 {
		return errors.New("cashflows are required")
	}
	if frequency <= 0 || 12%frequency != 0 {
		return errors.Errorf("unsupported coupon frequency %d", frequency)
	}
	if !cfs[0].Date.After(settlement) {
		return errors.Errorf("first cashflow %s is not after settlement %s",
			utils.FormatDate(cfs[0].Date), utils.FormatDate(settlement))
	}
	return nil
}

func previousCoupon(next time.Time, frequency int) time.Time {
	return utils.AddMonth(next, -12/frequency)
}

// daysBetween returns the number of calendar days from start to end (ACT).
func daysBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours() / 24))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
