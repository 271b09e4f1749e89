package helpers

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/curvekit/bond"
	"github.com/meenmo/curvekit/quote"
	"github.com/meenmo/curvekit/termstructure"
)

// BondQuoteKind says how a bond quote is expressed.
type BondQuoteKind int

const (
	// QuoteCleanPrice is a clean price per 100 face.
	QuoteCleanPrice BondQuoteKind = iota
	// QuoteYield is a yield in decimal, compounded at the coupon frequency.
	QuoteYield
)

// BondHelper calibrates to a fixed-rate bond.
type BondHelper struct {
	termstructure.HelperBase
	settlement time.Time
	cashflows  []bond.Cashflow
	frequency  int
	kind       BondQuoteKind
	accrued    float64
}

// NewBondHelper keeps the cashflows paid after settlement. Amounts are per 100 face.
func NewBondHelper(q quote.Quote, settlement time.Time, cfs []bond.Cashflow, frequency int, kind BondQuoteKind) (*BondHelper, error) {
	if q == nil {
		return nil, errors.Wrap(ErrInvalidInstrument, "bond: nil quote")
	}
	remaining := bond.Remaining(cfs, settlement)
	if len(remaining) == 0 {
		return nil, errors.Wrap(ErrInvalidInstrument, "bond: no cashflows after settlement")
	}
	accrued, err := bond.AccruedInterest(settlement, remaining, frequency)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidInstrument, "bond: %v", err)
	}
	return &BondHelper{
		HelperBase: termstructure.NewHelperBase(q, settlement, remaining[len(remaining)-1].Date),
		settlement: settlement,
		cashflows:  remaining,
		frequency:  frequency,
		kind:       kind,
		accrued:    accrued,
	}, nil
}

func (h *BondHelper) AccruedInterest() float64 { return h.accrued }
func (h *BondHelper) QuoteError() float64      { return termstructure.QuoteError(h) }

// DirtyPrice is the curve value of the remaining cashflows at settlement.
func (h *BondHelper) DirtyPrice() float64 {
	ts := h.TermStructure()
	if ts == nil {
		return math.NaN()
	}
	pv := 0.0
	for _, cf := range h.cashflows {
		pv += cf.Amount() * ts.Discount(cf.Date)
	}
	return pv / ts.Discount(h.settlement)
}

func (h *BondHelper) ImpliedQuote() float64 {
	dirty := h.DirtyPrice()
	if h.kind == QuoteCleanPrice {
		return dirty - h.accrued
	}
	if math.IsNaN(dirty) {
		return dirty
	}
	// Outside the solver's range the clamped yield comes back with the error.
	y, _, _ := bond.SolveYield(dirty, h.settlement, h.cashflows, h.frequency)
	return y
}
