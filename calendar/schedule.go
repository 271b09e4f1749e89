package calendar

import (
	"time"

	"github.com/meenmo/curvekit/utils"
)

// Period of a generated schedule.
type SchedulePeriod struct {
	Start time.Time
	End   time.Time
	Pay   time.Time
}

// BackwardSchedule rolls unadjusted dates back from maturity in steps of
// months until start is reached, then adjusts each boundary with bdc. A short
// stub, if any, sits at the front. Payment dates lag accrual ends by payDelay
// business days.
func BackwardSchedule(cal CalendarID, start, maturity time.Time, months int, bdc BusinessDayConvention, payDelay int) []SchedulePeriod {
	if months <= 0 || !maturity.After(start) {
		return nil
	}
	unadjusted := []time.Time{}
	for current, k := maturity, 1; current.After(start); k++ {
		unadjusted = append([]time.Time{current}, unadjusted...)
		// Step from maturity each time to avoid end-of-month drift.
		current = utils.AddMonth(maturity, -k*months)
	}
	unadjusted = append([]time.Time{start}, unadjusted...)

	periods := make([]SchedulePeriod, 0, len(unadjusted)-1)
	for i := 0; i+1 < len(unadjusted); i++ {
		s := AdjustWith(cal, unadjusted[i], bdc)
		e := AdjustWith(cal, unadjusted[i+1], bdc)
		if !e.After(s) {
			continue
		}
		periods = append(periods, SchedulePeriod{
			Start: s,
			End:   e,
			Pay:   AddBusinessDays(cal, e, payDelay),
		})
	}
	return periods
}
