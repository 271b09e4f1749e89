// Package helpers holds the calibrating instruments used to bootstrap curves.
// Every helper reads discount factors from the curve it is bound to and
// never caches them, since the curve changes between calls.
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

// ErrInvalidInstrument is returned by constructors given inconsistent terms.
var ErrInvalidInstrument = errors.New("invalid instrument")

// periodRate is a simply compounded rate over [start, end].
type periodRate struct {
	termstructure.HelperBase
	start, end time.Time
	tau        float64
}

func newPeriodRate(q quote.Quote, start, end time.Time, dc utils.DayCount) (periodRate, error) {
	if q == nil {
		return periodRate{}, errors.Wrap(ErrInvalidInstrument, "nil quote")
	}
	if !end.After(start) {
		return periodRate{}, errors.Wrapf(ErrInvalidInstrument, "end %s not after start %s", utils.FormatDate(end), utils.FormatDate(start))
	}
	return periodRate{
		HelperBase: termstructure.NewHelperBase(q, start, end),
		start:      start,
		end:        end,
		tau:        dc.YearFraction(start, end),
	}, nil
}

func (h *periodRate) StartDate() time.Time { return h.start }
func (h *periodRate) EndDate() time.Time   { return h.end }

// ImpliedQuote is (P(start)/P(end) - 1) / tau.
func (h *periodRate) ImpliedQuote() float64 {
	ts := h.TermStructure()
	if ts == nil {
		return math.NaN()
	}
	return (ts.Discount(h.start)/ts.Discount(h.end) - 1) / h.tau
}

// DepositHelper calibrates to a money-market deposit rate.
type DepositHelper struct {
	periodRate
}

// NewDeposit builds a deposit with explicit accrual dates.
func NewDeposit(q quote.Quote, start, end time.Time, dc utils.DayCount) (*DepositHelper, error) {
	p, err := newPeriodRate(q, start, end, dc)
	if err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return &DepositHelper{periodRate: p}, nil
}

// NewDepositFromTenor starts the deposit fixingDays business days after ref
// and ends tenor later.
func NewDepositFromTenor(q quote.Quote, ref time.Time, fixingDays int, tenor calendar.Period, cal calendar.CalendarID, dc utils.DayCount) (*DepositHelper, error) {
	start := calendar.AddBusinessDays(cal, calendar.AdjustFollowing(cal, ref), fixingDays)
	end := calendar.Advance(cal, start, tenor, calendar.ModifiedFollowing)
	return NewDeposit(q, start, end, dc)
}

func (h *DepositHelper) QuoteError() float64 { return termstructure.QuoteError(h) }

// FRAHelper calibrates to a forward rate agreement.
type FRAHelper struct {
	periodRate
}

// NewFRA builds a monthsToStart x monthsToEnd FRA settling fixingDays after ref.
func NewFRA(q quote.Quote, ref time.Time, monthsToStart, monthsToEnd, fixingDays int, cal calendar.CalendarID, dc utils.DayCount) (*FRAHelper, error) {
	if monthsToStart < 0 || monthsToEnd <= monthsToStart {
		return nil, errors.Wrapf(ErrInvalidInstrument, "fra %dx%d", monthsToStart, monthsToEnd)
	}
	spot := calendar.AddBusinessDays(cal, calendar.AdjustFollowing(cal, ref), fixingDays)
	start := calendar.Advance(cal, spot, calendar.Period{Length: monthsToStart, Unit: calendar.Months}, calendar.ModifiedFollowing)
	end := calendar.Advance(cal, spot, calendar.Period{Length: monthsToEnd, Unit: calendar.Months}, calendar.ModifiedFollowing)
	p, err := newPeriodRate(q, start, end, dc)
	if err != nil {
		return nil, errors.Wrap(err, "fra")
	}
	return &FRAHelper{periodRate: p}, nil
}

func (h *FRAHelper) QuoteError() float64 { return termstructure.QuoteError(h) }
