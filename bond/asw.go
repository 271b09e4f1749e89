package bond

import (
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/curvekit/calendar"
	"github.com/meenmo/curvekit/utils"
)

// ErrInvalidASWInput is returned when an asset swap request is incomplete.
var ErrInvalidASWInput = errors.New("invalid asset swap input")

// DiscountCurve is any curve that returns discount factors by date.
type DiscountCurve interface {
	Discount(d time.Time) float64
}

// FloatLeg describes the floating leg the spread is quoted over.
type FloatLeg struct {
	FrequencyMonths int
	DayCount        utils.DayCount
	Calendar        calendar.CalendarID
	PayDelay        int
}

type ASWInput struct {
	SettlementDate time.Time
	DirtyPrice     float64
	Notional       float64
	Cashflows      []Cashflow
	FloatLeg       FloatLeg
	DiscountCurve  DiscountCurve
}

type ASWResult struct {
	SpreadBP float64
	PVBondRF float64
	PV01     float64
}

// ComputeASWSpread computes the par asset swap spread (in bp) using the approximation:
//
//	ASW ≈ (PV_bond^{rf} - P_dirty) / PV01
//
// where PV01 is the PV of receiving 1bp on the floating leg from settlement
// to the last bond cashflow.
func ComputeASWSpread(in ASWInput) (ASWResult, error) {
	maturity, err := in.validate()
	if err != nil {
		return ASWResult{}, err
	}

	pv := presentValue(in.Cashflows, in.SettlementDate, in.DiscountCurve)
	pv01 := floatLegPV01(in.FloatLeg, in.SettlementDate, maturity, in.Notional, in.DiscountCurve)
	if pv01 == 0 {
		return ASWResult{}, errors.Wrap(ErrInvalidASWInput, "float leg PV01 is zero")
	}
	return ASWResult{
		SpreadBP: (pv - in.DirtyPrice) / pv01,
		PVBondRF: pv,
		PV01:     pv01,
	}, nil
}

// validate returns the date of the last cashflow.
func (in ASWInput) validate() (time.Time, error) {
	switch {
	case in.SettlementDate.IsZero():
		return time.Time{}, errors.Wrap(ErrInvalidASWInput, "settlement date is required")
	case in.Notional <= 0:
		return time.Time{}, errors.Wrapf(ErrInvalidASWInput, "notional %v", in.Notional)
	case in.DiscountCurve == nil:
		return time.Time{}, errors.Wrap(ErrInvalidASWInput, "discount curve is required")
	case len(in.Cashflows) == 0:
		return time.Time{}, errors.Wrap(ErrInvalidASWInput, "no cashflows")
	case in.FloatLeg.FrequencyMonths <= 0:
		return time.Time{}, errors.Wrapf(ErrInvalidASWInput, "float leg frequency %d", in.FloatLeg.FrequencyMonths)
	}

	maturity := in.SettlementDate
	for _, cf := range in.Cashflows {
		if cf.Date.After(maturity) {
			maturity = cf.Date
		}
	}
	if !maturity.After(in.SettlementDate) {
		return time.Time{}, errors.Wrapf(ErrInvalidASWInput, "maturity %s is not after settlement %s",
			utils.FormatDate(maturity), utils.FormatDate(in.SettlementDate))
	}
	return maturity, nil
}

// presentValue discounts the cashflows paid on or after settlement.
func presentValue(cfs []Cashflow, settlement time.Time, curve DiscountCurve) float64 {
	pv := 0.0
	for _, cf := range cfs {
		if !cf.Date.Before(settlement) {
			pv += cf.Amount() * curve.Discount(cf.Date)
		}
	}
	return pv
}

func floatLegPV01(leg FloatLeg, settlement, maturity time.Time, notional float64, curve DiscountCurve) float64 {
	periods := calendar.BackwardSchedule(leg.Calendar, settlement, maturity, leg.FrequencyMonths, calendar.ModifiedFollowing, leg.PayDelay)
	pv01 := 0.0
	for _, p := range periods {
		if p.Pay.Before(settlement) {
			continue
		}
		pv01 += notional * leg.DayCount.YearFraction(p.Start, p.End) * 1e-4 * curve.Discount(p.Pay)
	}
	return pv01
}
