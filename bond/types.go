package bond

import (
	"time"

	"github.com/meenmo/curvekit/utils"
)

// Cashflow is a single dated cash payment for a bond.
//
// Amounts are per 100 face unless stated otherwise.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// Remaining returns the cashflows paid strictly after settlement.
func Remaining(cfs []Cashflow, settlement time.Time) []Cashflow {
	out := make([]Cashflow, 0, len(cfs))
	for _, cf := range cfs {
		if cf.Date.After(settlement) {
			out = append(out, cf)
		}
	}
	return out
}

// FixedRateCashflows builds the cashflows of a bullet bond paying
// couponRate (decimal) on 100 face, frequency times a year, with dates
// rolled back from maturity.
func FixedRateCashflows(issue, maturity time.Time, couponRate float64, frequency int) []Cashflow {
	if frequency <= 0 || !maturity.After(issue) {
		return nil
	}
	months := 12 / frequency
	coupon := 100 * couponRate / float64(frequency)
	dates := []time.Time{}
	for k := 0; ; k++ {
		d := utils.AddMonth(maturity, -k*months)
		if !d.After(issue) {
			break
		}
		dates = append([]time.Time{d}, dates...)
	}
	cfs := make([]Cashflow, len(dates))
	for i, d := range dates {
		cfs[i] = Cashflow{Date: d, Coupon: coupon}
	}
	cfs[len(cfs)-1].Principal = 100
	return cfs
}
