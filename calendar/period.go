package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/curvekit/utils"
)

// Unit is the time unit of a Period.
type Unit byte

const (
	Days   Unit = 'D'
	Weeks  Unit = 'W'
	Months Unit = 'M'
	Years  Unit = 'Y'
)

// Period is a tenor such as 3M or 10Y.
type Period struct {
	Length int
	Unit   Unit
}

func (p Period) String() string {
	return strconv.Itoa(p.Length) + string(p.Unit)
}

// Months returns the period length in months, or false for day/week periods.
func (p Period) Months() (int, bool) {
	switch p.Unit {
	case Months:
		return p.Length, true
	case Years:
		return 12 * p.Length, true
	default:
		return 0, false
	}
}

// ParsePeriod converts tenor strings like "1W", "3M", "10Y" to a Period.
func ParsePeriod(tenor string) (Period, error) {
	tenor = strings.TrimSpace(strings.ToUpper(tenor))
	if len(tenor) < 2 {
		return Period{}, errors.Errorf("invalid tenor %q", tenor)
	}
	unit := Unit(tenor[len(tenor)-1])
	switch unit {
	case Days, Weeks, Months, Years:
	default:
		return Period{}, errors.Errorf("invalid tenor unit in %q", tenor)
	}
	n, err := strconv.Atoi(tenor[:len(tenor)-1])
	if err != nil {
		return Period{}, errors.Wrapf(err, "invalid tenor %q", tenor)
	}
	return Period{Length: n, Unit: unit}, nil
}

// BusinessDayConvention selects how a date falling on a holiday is rolled.
type BusinessDayConvention int

const (
	ModifiedFollowing BusinessDayConvention = iota
	Following
	Preceding
	Unadjusted
)

// AdjustWith rolls t according to bdc.
func AdjustWith(cal CalendarID, t time.Time, bdc BusinessDayConvention) time.Time {
	switch bdc {
	case Following:
		return AdjustFollowing(cal, t)
	case Preceding:
		return AdjustPreceding(cal, t)
	case Unadjusted:
		return t
	default:
		return Adjust(cal, t)
	}
}

// Advance moves t by p and adjusts the result. Day periods count business days.
func Advance(cal CalendarID, t time.Time, p Period, bdc BusinessDayConvention) time.Time {
	switch p.Unit {
	case Days:
		return AddBusinessDays(cal, t, p.Length)
	case Weeks:
		return AdjustWith(cal, t.AddDate(0, 0, 7*p.Length), bdc)
	default:
		months, _ := p.Months()
		return AdjustWith(cal, utils.AddMonth(t, months), bdc)
	}
}
