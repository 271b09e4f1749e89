package build

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/meenmo/curvekit/bond"
	"github.com/meenmo/curvekit/utils"
)

// ASWInput prices asset swap spreads of fixed-rate bonds off a bootstrapped
// curve. Bond prices are clean per 100 face; coupons are in percent.
type ASWInput struct {
	Curve          Input     `json:"curve"`
	SettlementDate string    `json:"settlement_date"` // optional, defaults to the curve reference date
	FloatLeg       FloatLeg  `json:"float_leg"`
	Bonds          []ASWBond `json:"bonds"`
}

type FloatLeg struct {
	FrequencyMonths int    `json:"frequency_months"`
	DayCount        string `json:"day_count"`
	PayDelay        int    `json:"pay_delay"`
}

type ASWBond struct {
	ISIN       string      `json:"isin"`
	Issue      string      `json:"issue"`
	Maturity   string      `json:"maturity"`
	Coupon     interface{} `json:"coupon"`
	Frequency  int         `json:"frequency"`
	CleanPrice interface{} `json:"clean_price"`
}

type ASWRow struct {
	ISIN        string  `json:"isin"`
	Maturity    string  `json:"maturity"`
	DirtyPrice  float64 `json:"dirty_price"`
	PVCurve     float64 `json:"pv_curve"`
	PV01        float64 `json:"pv01"`
	ASWSpreadBP float64 `json:"asw_spread_bp"`
}

type ASWOutput struct {
	Curve          string   `json:"curve,omitempty"`
	SettlementDate string   `json:"settlement_date,omitempty"`
	Bonds          []ASWRow `json:"bonds,omitempty"`
	Error          string   `json:"error,omitempty"`
	ErrorClass     string   `json:"error_class,omitempty"`
}

func DecodeASW(b []byte) (ASWInput, error) {
	var in ASWInput
	if err := sonic.Unmarshal(b, &in); err != nil {
		return ASWInput{}, errors.Wrap(err, "failed to parse JSON input")
	}
	return in, nil
}

func EncodeASW(out ASWOutput) ([]byte, error) {
	return sonic.Marshal(out)
}

// RunASW bootstraps in.Curve and computes the par asset swap spread of each bond.
func RunASW(in ASWInput, opts Options) (ASWOutput, error) {
	p, err := newCurve(in.Curve, opts)
	if err != nil {
		return ASWOutput{}, err
	}
	c, err := p.Curve()
	if err != nil {
		return ASWOutput{}, err
	}

	settlement := c.ReferenceDate()
	if in.SettlementDate != "" {
		if settlement, err = utils.ParseDate(in.SettlementDate); err != nil {
			return ASWOutput{}, errors.Wrap(err, "settlement_date")
		}
	}
	leg := bond.FloatLeg{
		FrequencyMonths: in.FloatLeg.FrequencyMonths,
		DayCount:        utils.ParseDayCount(orDefault(in.FloatLeg.DayCount, string(utils.Act360))),
		Calendar:        parseCalendar(in.Curve.Calendar),
		PayDelay:        in.FloatLeg.PayDelay,
	}
	if leg.FrequencyMonths == 0 {
		leg.FrequencyMonths = 6
	}

	out := ASWOutput{Curve: p.Name(), SettlementDate: utils.FormatDate(settlement)}
	for _, b := range in.Bonds {
		row, err := assetSwap(b, settlement, leg, c)
		if err != nil {
			return ASWOutput{}, errors.Wrapf(err, "bond %s", b.ISIN)
		}
		out.Bonds = append(out.Bonds, row)
	}
	return out, nil
}

func assetSwap(b ASWBond, settlement time.Time, leg bond.FloatLeg, curve bond.DiscountCurve) (ASWRow, error) {
	issue, err := utils.ParseDate(b.Issue)
	if err != nil {
		return ASWRow{}, errors.Wrap(err, "issue")
	}
	maturity, err := utils.ParseDate(b.Maturity)
	if err != nil {
		return ASWRow{}, errors.Wrap(err, "maturity")
	}
	coupon, err := cast.ToFloat64E(b.Coupon)
	if err != nil {
		return ASWRow{}, errors.Wrap(err, "coupon")
	}
	clean, err := cast.ToFloat64E(b.CleanPrice)
	if err != nil {
		return ASWRow{}, errors.Wrap(err, "clean_price")
	}
	frequency := b.Frequency
	if frequency == 0 {
		frequency = 1
	}

	cfs := bond.Remaining(bond.FixedRateCashflows(issue, maturity, coupon/100, frequency), settlement)
	accrued, err := bond.AccruedInterest(settlement, cfs, frequency)
	if err != nil {
		return ASWRow{}, err
	}
	dirty := clean + accrued

	res, err := bond.ComputeASWSpread(bond.ASWInput{
		SettlementDate: settlement,
		DirtyPrice:     dirty,
		Notional:       100,
		Cashflows:      cfs,
		FloatLeg:       leg,
		DiscountCurve:  curve,
	})
	if err != nil {
		return ASWRow{}, err
	}
	return ASWRow{
		ISIN:        b.ISIN,
		Maturity:    utils.FormatDate(maturity),
		DirtyPrice:  utils.RoundTo(dirty, 8),
		PVCurve:     utils.RoundTo(res.PVBondRF, 8),
		PV01:        utils.RoundTo(res.PV01, 10),
		ASWSpreadBP: utils.RoundTo(res.SpreadBP, 6),
	}, nil
}
