package termstructure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/calendar"
	"github.com/meenmo/curvekit/helpers"
	"github.com/meenmo/curvekit/interpolation"
	"github.com/meenmo/curvekit/quote"
	"github.com/meenmo/curvekit/termstructure"
	"github.com/meenmo/curvekit/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var ref = date(2025, 1, 2)

func settings() termstructure.Settings {
	return termstructure.Settings{Accuracy: 1e-12, MaxIterations: 100, AllowNegativeRates: true}
}

func newCurve(t *testing.T, kind termstructure.Kind, s termstructure.Settings, ip interpolation.Interpolator) *termstructure.Curve {
	t.Helper()
	traits, err := termstructure.NewTraits(kind, s)
	require.NoError(t, err)
	c, err := termstructure.NewCurve(ref, traits, ip, utils.Act365F)
	require.NoError(t, err)
	return c
}

type marketQuote struct {
	tenor string
	rate  float64
}

var depositQuotes = []marketQuote{{"1M", 0.0300}, {"3M", 0.0310}, {"6M", 0.0320}}

var swapQuotes = []marketQuote{
	{"1Y", 0.0330}, {"2Y", 0.0340}, {"3Y", 0.0350},
	{"5Y", 0.0360}, {"7Y", 0.0370}, {"10Y", 0.0380},
}

// market returns deposits and swaps on a weekends-only calendar, plus their
// quotes in the same order.
func market(t *testing.T) ([]termstructure.RateHelper, []*quote.SimpleQuote) {
	t.Helper()
	var (
		hs     []termstructure.RateHelper
		quotes []*quote.SimpleQuote
	)
	for _, mq := range depositQuotes {
		p, err := calendar.ParsePeriod(mq.tenor)
		require.NoError(t, err)
		q := quote.NewSimpleQuote(mq.rate)
		h, err := helpers.NewDepositFromTenor(q, ref, 2, p, calendar.WeekendsOnly, utils.Act360)
		require.NoError(t, err)
		hs = append(hs, h)
		quotes = append(quotes, q)
	}
	for _, mq := range swapQuotes {
		p, err := calendar.ParsePeriod(mq.tenor)
		require.NoError(t, err)
		q := quote.NewSimpleQuote(mq.rate)
		h, err := helpers.NewSwap(q, ref, p, helpers.DefaultSwapConvention)
		require.NoError(t, err)
		hs = append(hs, h)
		quotes = append(quotes, q)
	}
	return hs, quotes
}

func requireReprices(t *testing.T, hs []termstructure.RateHelper, tol float64) {
	t.Helper()
	for i, h := range hs {
		require.InDelta(t, 0, h.QuoteError(), tol, "instrument %d maturing %s", i, utils.FormatDate(h.LatestDate()))
	}
}

type recorded struct {
	curve, method, outcome string
	iterations             int
}

type fakeRecorder struct {
	runs []recorded
}

func (f *fakeRecorder) RecordBootstrap(curve, method, outcome string, iterations int, _ time.Duration) {
	f.runs = append(f.runs, recorded{curve: curve, method: method, outcome: outcome, iterations: iterations})
}
