package helpers

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/curvekit/calendar"
	"github.com/meenmo/curvekit/quote"
	"github.com/meenmo/curvekit/termstructure"
	"github.com/meenmo/curvekit/utils"
)

// SwapConvention describes a fixed-vs-floating swap.
type SwapConvention struct {
	Calendar             calendar.CalendarID
	SettlementDays       int
	FixedFrequencyMonths int
	FixedDayCount        utils.DayCount
	FloatFrequencyMonths int
	FloatDayCount        utils.DayCount
	// PayDelay lags payments behind accrual ends, in business days.
	PayDelay int
}

// DefaultSwapConvention is an annual ACT/360 fixed leg against a
// semi-annual ACT/360 floating leg on a weekends-only calendar.
var DefaultSwapConvention = SwapConvention{
	Calendar:             calendar.WeekendsOnly,
	SettlementDays:       2,
	FixedFrequencyMonths: 12,
	FixedDayCount:        utils.Act360,
	FloatFrequencyMonths: 6,
	FloatDayCount:        utils.Act360,
}

type fixedCoupon struct {
	pay     time.Time
	accrual float64
}

// SwapHelper calibrates to a par swap rate.
//
// Without a discounting curve the swap is priced single-curve off the curve
// being bootstrapped. With one, floating forwards are projected from the
// bootstrapped curve and both legs are discounted on the exogenous curve.
type SwapHelper struct {
	termstructure.HelperBase
	start, maturity time.Time
	fixed           []fixedCoupon
	floating        []calendar.SchedulePeriod
	discount        termstructure.YieldTermStructure
}

// NewSwap builds a spot-starting swap of the given tenor.
func NewSwap(q quote.Quote, ref time.Time, tenor calendar.Period, conv SwapConvention) (*SwapHelper, error) {
	start := calendar.AddBusinessDays(conv.Calendar, calendar.AdjustFollowing(conv.Calendar, ref), conv.SettlementDays)
	maturity := calendar.Advance(conv.Calendar, start, tenor, calendar.Unadjusted)
	return NewSwapWithDates(q, start, maturity, conv)
}

// NewSwapWithDates builds a swap with an explicit unadjusted maturity.
// Schedules are rolled backward from maturity.
func NewSwapWithDates(q quote.Quote, start, maturity time.Time, conv SwapConvention) (*SwapHelper, error) {
	if q == nil {
		return nil, errors.Wrap(ErrInvalidInstrument, "swap: nil quote")
	}
	if conv.FixedFrequencyMonths <= 0 || conv.FloatFrequencyMonths <= 0 {
		return nil, errors.Wrapf(ErrInvalidInstrument, "swap: frequencies %d/%d months", conv.FixedFrequencyMonths, conv.FloatFrequencyMonths)
	}
	fixedPeriods := calendar.BackwardSchedule(conv.Calendar, start, maturity, conv.FixedFrequencyMonths, calendar.ModifiedFollowing, conv.PayDelay)
	floatPeriods := calendar.BackwardSchedule(conv.Calendar, start, maturity, conv.FloatFrequencyMonths, calendar.ModifiedFollowing, conv.PayDelay)
	if len(fixedPeriods) == 0 || len(floatPeriods) == 0 {
		return nil, errors.Wrapf(ErrInvalidInstrument, "swap: empty schedule from %s to %s", utils.FormatDate(start), utils.FormatDate(maturity))
	}

	fixed := make([]fixedCoupon, len(fixedPeriods))
	for i, p := range fixedPeriods {
		fixed[i] = fixedCoupon{pay: p.Pay, accrual: conv.FixedDayCount.YearFraction(p.Start, p.End)}
	}
	adjStart := fixedPeriods[0].Start
	latest := fixedPeriods[len(fixedPeriods)-1].Pay
	if end := floatPeriods[len(floatPeriods)-1].Pay; end.After(latest) {
		latest = end
	}

	return &SwapHelper{
		HelperBase: termstructure.NewHelperBase(q, adjStart, latest),
		start:      adjStart,
		maturity:   fixedPeriods[len(fixedPeriods)-1].End,
		fixed:      fixed,
		floating:   floatPeriods,
	}, nil
}

// WithDiscountCurve switches the swap to dual-curve pricing.
func (h *SwapHelper) WithDiscountCurve(ts termstructure.YieldTermStructure) *SwapHelper {
	h.discount = ts
	return h
}

func (h *SwapHelper) StartDate() time.Time    { return h.start }
func (h *SwapHelper) MaturityDate() time.Time { return h.maturity }
func (h *SwapHelper) QuoteError() float64     { return termstructure.QuoteError(h) }

// ImpliedQuote is the par fixed rate.
func (h *SwapHelper) ImpliedQuote() float64 {
	ts := h.TermStructure()
	if ts == nil {
		return math.NaN()
	}
	disc := h.discount
	if disc == nil {
		disc = ts
	}

	annuity := 0.0
	for _, c := range h.fixed {
		annuity += c.accrual * disc.Discount(c.pay)
	}
	if annuity == 0 {
		return math.NaN()
	}

	if h.discount == nil {
		// Single curve: the floating leg telescopes.
		return (ts.Discount(h.start) - ts.Discount(h.maturity)) / annuity
	}
	float := 0.0
	for _, p := range h.floating {
		float += (ts.Discount(p.Start)/ts.Discount(p.End) - 1) * disc.Discount(p.Pay)
	}
	return float / annuity
}
