package calendar

import (
	"sync"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NullCalendar has no holidays and no weekends.
	NullCalendar CalendarID = "NONE"
	// WeekendsOnly treats Saturdays and Sundays as the only non-business days.
	WeekendsOnly CalendarID = "WEEKENDS"
	TARGET       CalendarID = "TARGET"
	JPN          CalendarID = "JPN"
	USD          CalendarID = "USD"
	KRW          CalendarID = "KRW"
)

var (
	holidaysMu sync.RWMutex
	holidays   = map[CalendarID]map[string]struct{}{}
)

func init() {
	// Fixed-date TARGET closing days.
	for y := 2000; y <= 2060; y++ {
		AddHolidays(TARGET,
			time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(y, time.May, 1, 0, 0, 0, 0, time.UTC),
			time.Date(y, time.December, 25, 0, 0, 0, 0, time.UTC),
			time.Date(y, time.December, 26, 0, 0, 0, 0, time.UTC),
		)
	}
}

// AddHolidays registers additional holidays for cal.
func AddHolidays(cal CalendarID, dates ...time.Time) {
	holidaysMu.Lock()
	defer holidaysMu.Unlock()
	set, ok := holidays[cal]
	if !ok {
		set = make(map[string]struct{}, len(dates))
		holidays[cal] = set
	}
	for _, d := range dates {
		set[d.Format("2006-01-02")] = struct{}{}
	}
}

func isHoliday(cal CalendarID, t time.Time) bool {
	holidaysMu.RLock()
	defer holidaysMu.RUnlock()
	_, ok := holidays[cal][t.Format("2006-01-02")]
	return ok
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NullCalendar {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AdjustPreceding rolls back to the previous business day.
func AdjustPreceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal CalendarID, t time.Time) time.Time {
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return AddBusinessDays(cal, nextMonth, -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal CalendarID, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}
