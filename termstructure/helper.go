package termstructure

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/curvekit/quote"
)

// YieldTermStructure is the read handle pricing code uses. Instruments keep
// this handle only; they never mutate the curve.
type YieldTermStructure interface {
	ReferenceDate() time.Time
	TimeFromReference(d time.Time) float64
	Discount(d time.Time) float64
}

// RateHelper is a calibrating instrument: a market quote plus the formula
// implying that quote from a curve.
type RateHelper interface {
	Quote() quote.Quote
	// ImpliedQuote prices off the bound curve as currently interpolated.
	ImpliedQuote() float64
	// QuoteError is Quote().Value() - ImpliedQuote().
	QuoteError() float64
	QuoteIsValid() bool
	EarliestDate() time.Time
	LatestDate() time.Time
	SetTermStructure(ts YieldTermStructure) error
}

// HelperBase carries the state shared by concrete helpers. Embedders provide
// ImpliedQuote and QuoteError.
type HelperBase struct {
	quote    quote.Quote
	ts       YieldTermStructure
	earliest time.Time
	latest   time.Time
}

func NewHelperBase(q quote.Quote, earliest, latest time.Time) HelperBase {
	return HelperBase{quote: q, earliest: earliest, latest: latest}
}

func (h *HelperBase) Quote() quote.Quote                { return h.quote }
func (h *HelperBase) EarliestDate() time.Time           { return h.earliest }
func (h *HelperBase) LatestDate() time.Time             { return h.latest }
func (h *HelperBase) TermStructure() YieldTermStructure { return h.ts }

func (h *HelperBase) QuoteIsValid() bool {
	return h.quote != nil && h.quote.IsValid()
}

func (h *HelperBase) SetTermStructure(ts YieldTermStructure) error {
	if ts == nil {
		return errors.Wrap(ErrNilCurve, "set term structure")
	}
	h.ts = ts
	return nil
}

// QuoteError is the shared QuoteError implementation.
func QuoteError(h RateHelper) float64 {
	return h.Quote().Value() - h.ImpliedQuote()
}

// SortHelpers orders helpers by latest date, in place.
func SortHelpers(helpers []RateHelper) {
	sort.SliceStable(helpers, func(i, j int) bool {
		return helpers[i].LatestDate().Before(helpers[j].LatestDate())
	})
}

// CheckHelpers validates a sorted instrument set.
func CheckHelpers(helpers []RateHelper) error {
	if len(helpers) < 2 {
		return errors.Wrapf(ErrNotEnoughInstruments, "%d instruments, at least 2 required", len(helpers))
	}
	for i, h := range helpers {
		if h == nil {
			return errors.Wrapf(ErrInvalidConfiguration, "nil instrument at %d", i)
		}
		if i == 0 {
			continue
		}
		prev, cur := helpers[i-1].LatestDate(), h.LatestDate()
		if cur.Equal(prev) {
			return errors.Wrapf(ErrDuplicateMaturity, "instruments %d and %d mature on %s", i-1, i, cur.Format("2006-01-02"))
		}
		if cur.Before(prev) {
			return errors.Wrapf(ErrUnsortedInstruments, "instrument %d matures %s before %s", i, cur.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
	}
	return nil
}

// prepareHelpers returns a sorted, validated copy.
func prepareHelpers(helpers []RateHelper) ([]RateHelper, error) {
	for i, h := range helpers {
		if h == nil {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "nil instrument at %d", i)
		}
	}
	out := append([]RateHelper(nil), helpers...)
	SortHelpers(out)
	if err := CheckHelpers(out); err != nil {
		return nil, err
	}
	return out, nil
}
