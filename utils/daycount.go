package utils

import (
	"strings"
	"time"
)

// DayCount names a day count convention.
type DayCount string

const (
	Act360    DayCount = "ACT/360"
	Act365F   DayCount = "ACT/365F"
	Thirty360 DayCount = "30/360"
	// Thirty360E is the Eurobond basis (30E/360).
	Thirty360E DayCount = "30E/360"
)

// ParseDayCount normalises a convention name such as "act/360" or "ACT365F".
// Unknown names fall back to ACT/365F, the curve time basis.
func ParseDayCount(s string) DayCount {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "ACT/360", "ACT360", "A360":
		return Act360
	case "30/360", "30360", "30U/360":
		return Thirty360
	case "30E/360", "30E360":
		return Thirty360E
	default:
		return Act365F
	}
}

// YearFraction computes the year fraction between two dates.
func (dc DayCount) YearFraction(start, end time.Time) float64 {
	return YearFraction(start, end, dc)
}

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, 30E/360, 30/360
func YearFraction(start, end time.Time, convention DayCount) float64 {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Act365F:
		return Days(start, end) / 365.0
	case Thirty360:
		// 30/360 US: D1 capped at 30, D2 capped only when D1 was.
		d1, d2 := start.Day(), end.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	case Thirty360E:
		// D1 and D2 are capped at 30
		d1, d2 := start.Day(), end.Day()
		if d1 > 30 {
			d1 = 30
		}
		if d2 > 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	default:
		return Days(start, end) / 365.0
	}
}

func thirty360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}
