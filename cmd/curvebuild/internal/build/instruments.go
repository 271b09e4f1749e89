package build

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/meenmo/curvekit/bond"
	"github.com/meenmo/curvekit/calendar"
	"github.com/meenmo/curvekit/helpers"
	"github.com/meenmo/curvekit/quote"
	"github.com/meenmo/curvekit/termstructure"
	"github.com/meenmo/curvekit/utils"
)

// Instrument is one calibrating instrument. Which fields apply depends on Type:
//
//	deposit: tenor (+ fixing_days) or start/maturity, day_count
//	fra:     start_months, end_months, fixing_days, day_count
//	futures: price quote, imm_date, months (default 3), convexity_adjustment, day_count
//	swap:    tenor or start/maturity, fixed/float frequencies and day counts, pay_delay
//	bond:    issue, maturity, coupon, frequency, quote_kind ("price" or "yield")
type Instrument struct {
	Type  string      `json:"type"`
	Quote interface{} `json:"quote"`

	Tenor      string `json:"tenor"`
	Start      string `json:"start"`
	Maturity   string `json:"maturity"`
	FixingDays *int   `json:"fixing_days"`
	DayCount   string `json:"day_count"`

	StartMonths int `json:"start_months"`
	EndMonths   int `json:"end_months"`

	SettlementDays       *int   `json:"settlement_days"`
	FixedFrequencyMonths int    `json:"fixed_frequency_months"`
	FixedDayCount        string `json:"fixed_day_count"`
	FloatFrequencyMonths int    `json:"float_frequency_months"`
	FloatDayCount        string `json:"float_day_count"`
	PayDelay             int    `json:"pay_delay"`

	IMMDate             string      `json:"imm_date"`
	Months              int         `json:"months"`
	ConvexityAdjustment interface{} `json:"convexity_adjustment"`

	Issue     string      `json:"issue"`
	Coupon    interface{} `json:"coupon"`
	Frequency int         `json:"frequency"`
	QuoteKind string      `json:"quote_kind"`
}

const defaultFixingDays = 2

func newHelpers(instruments []Instrument, ref time.Time, cal calendar.CalendarID, discount termstructure.YieldTermStructure) ([]termstructure.RateHelper, error) {
	hs := make([]termstructure.RateHelper, 0, len(instruments))
	for i, inst := range instruments {
		h, err := newHelper(inst, ref, cal, discount)
		if err != nil {
			return nil, errors.Wrapf(err, "instrument %d (%s)", i, inst.Type)
		}
		hs = append(hs, h)
	}
	return hs, nil
}

func newHelper(inst Instrument, ref time.Time, cal calendar.CalendarID, discount termstructure.YieldTermStructure) (termstructure.RateHelper, error) {
	if inst.Quote == nil {
		return nil, errors.Wrap(helpers.ErrInvalidInstrument, "missing quote")
	}
	value, err := cast.ToFloat64E(inst.Quote)
	if err != nil {
		return nil, errors.Wrap(err, "quote")
	}

	switch strings.ToLower(strings.TrimSpace(inst.Type)) {
	case "deposit", "depo":
		q := quote.NewSimpleQuote(value / 100)
		dc := utils.ParseDayCount(orDefault(inst.DayCount, string(utils.Act360)))
		if inst.Tenor != "" {
			p, err := calendar.ParsePeriod(inst.Tenor)
			if err != nil {
				return nil, err
			}
			return helpers.NewDepositFromTenor(q, ref, intOr(inst.FixingDays, defaultFixingDays), p, cal, dc)
		}
		start, end, err := dates(inst.Start, inst.Maturity, ref)
		if err != nil {
			return nil, err
		}
		return helpers.NewDeposit(q, start, end, dc)

	case "fra":
		q := quote.NewSimpleQuote(value / 100)
		dc := utils.ParseDayCount(orDefault(inst.DayCount, string(utils.Act360)))
		return helpers.NewFRA(q, ref, inst.StartMonths, inst.EndMonths, intOr(inst.FixingDays, defaultFixingDays), cal, dc)

	case "futures", "future":
		return newFutures(inst, value, cal)

	case "swap", "irs", "ois":
		q := quote.NewSimpleQuote(value / 100)
		conv := swapConvention(inst, cal)
		var (
			h   *helpers.SwapHelper
			err error
		)
		if inst.Tenor != "" {
			p, perr := calendar.ParsePeriod(inst.Tenor)
			if perr != nil {
				return nil, perr
			}
			h, err = helpers.NewSwap(q, ref, p, conv)
		} else {
			start, end, derr := dates(inst.Start, inst.Maturity, ref)
			if derr != nil {
				return nil, derr
			}
			h, err = helpers.NewSwapWithDates(q, start, end, conv)
		}
		if err != nil {
			return nil, err
		}
		if discount != nil {
			h.WithDiscountCurve(discount)
		}
		return h, nil

	case "bond":
		return newBond(inst, value, ref)
	}
	return nil, errors.Wrapf(helpers.ErrInvalidInstrument, "unknown instrument type %q", inst.Type)
}

// newFutures reads a price quote; the convexity adjustment is in percent.
func newFutures(inst Instrument, price float64, cal calendar.CalendarID) (termstructure.RateHelper, error) {
	imm, err := utils.ParseDate(inst.IMMDate)
	if err != nil {
		return nil, errors.Wrap(err, "imm_date")
	}
	months := inst.Months
	if months == 0 {
		months = 3
	}
	var convexity quote.Quote
	if inst.ConvexityAdjustment != nil {
		adj, err := cast.ToFloat64E(inst.ConvexityAdjustment)
		if err != nil {
			return nil, errors.Wrap(err, "convexity_adjustment")
		}
		convexity = quote.NewSimpleQuote(adj / 100)
	}
	dc := utils.ParseDayCount(orDefault(inst.DayCount, string(utils.Act360)))
	return helpers.NewFutures(quote.NewSimpleQuote(price), imm, months, cal, dc, convexity)
}

func swapConvention(inst Instrument, cal calendar.CalendarID) helpers.SwapConvention {
	conv := helpers.DefaultSwapConvention
	conv.Calendar = cal
	conv.SettlementDays = intOr(inst.SettlementDays, conv.SettlementDays)
	if inst.FixedFrequencyMonths > 0 {
		conv.FixedFrequencyMonths = inst.FixedFrequencyMonths
	}
	if inst.FloatFrequencyMonths > 0 {
		conv.FloatFrequencyMonths = inst.FloatFrequencyMonths
	}
	if inst.FixedDayCount != "" {
		conv.FixedDayCount = utils.ParseDayCount(inst.FixedDayCount)
	}
	if inst.FloatDayCount != "" {
		conv.FloatDayCount = utils.ParseDayCount(inst.FloatDayCount)
	}
	conv.PayDelay = inst.PayDelay
	return conv
}

func newBond(inst Instrument, value float64, ref time.Time) (termstructure.RateHelper, error) {
	issue, err := utils.ParseDate(inst.Issue)
	if err != nil {
		return nil, errors.Wrap(err, "issue")
	}
	maturity, err := utils.ParseDate(inst.Maturity)
	if err != nil {
		return nil, errors.Wrap(err, "maturity")
	}
	coupon, err := cast.ToFloat64E(inst.Coupon)
	if err != nil {
		return nil, errors.Wrap(err, "coupon")
	}
	frequency := inst.Frequency
	if frequency == 0 {
		frequency = 1
	}
	cfs := bond.FixedRateCashflows(issue, maturity, coupon/100, frequency)

	switch strings.ToLower(orDefault(inst.QuoteKind, "price")) {
	case "price", "clean", "clean_price":
		return helpers.NewBondHelper(quote.NewSimpleQuote(value), ref, cfs, frequency, helpers.QuoteCleanPrice)
	case "yield", "ytm":
		return helpers.NewBondHelper(quote.NewSimpleQuote(value/100), ref, cfs, frequency, helpers.QuoteYield)
	}
	return nil, errors.Wrapf(helpers.ErrInvalidInstrument, "unknown bond quote kind %q", inst.QuoteKind)
}

// dates parses start and maturity. An empty start means the reference date.
func dates(start, maturity string, ref time.Time) (time.Time, time.Time, error) {
	s := ref
	if start != "" {
		var err error
		if s, err = utils.ParseDate(start); err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(err, "start")
		}
	}
	m, err := utils.ParseDate(maturity)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "maturity")
	}
	return s, m, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
