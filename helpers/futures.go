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

// FuturesHelper calibrates to a short-rate futures price, quoted as
// 100 x (1 - rate), over months months starting on an IMM date.
type FuturesHelper struct {
	periodRate
	convexity quote.Quote
}

// NewFutures builds a futures helper. convexity is the adjustment, in
// decimal, added to the curve forward; nil means none.
func NewFutures(price quote.Quote, imm time.Time, months int, cal calendar.CalendarID, dc utils.DayCount, convexity quote.Quote) (*FuturesHelper, error) {
	if !calendar.IsIMMDate(imm, false) {
		return nil, errors.Wrapf(ErrInvalidInstrument, "futures start %s is not an IMM date", utils.FormatDate(imm))
	}
	if months <= 0 {
		return nil, errors.Wrapf(ErrInvalidInstrument, "futures length %d months", months)
	}
	end := calendar.Advance(cal, imm, calendar.Period{Length: months, Unit: calendar.Months}, calendar.ModifiedFollowing)
	p, err := newPeriodRate(price, imm, end, dc)
	if err != nil {
		return nil, errors.Wrap(err, "futures")
	}
	return &FuturesHelper{periodRate: p, convexity: convexity}, nil
}

func (h *FuturesHelper) ConvexityAdjustment() float64 {
	if h.convexity == nil {
		return 0
	}
	return h.convexity.Value()
}

// ImpliedQuote is 100 x (1 - (forward + convexity adjustment)).
func (h *FuturesHelper) ImpliedQuote() float64 {
	fwd := h.periodRate.ImpliedQuote()
	if math.IsNaN(fwd) {
		return fwd
	}
	return 100 * (1 - fwd - h.ConvexityAdjustment())
}

func (h *FuturesHelper) QuoteError() float64 { return termstructure.QuoteError(h) }
