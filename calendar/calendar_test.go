package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdjustModifiedFollowing(t *testing.T) {
	t.Parallel()

	// Saturday 2025-05-31 would roll into June; modified following rolls back.
	assert.Equal(t, date(2025, 5, 30), calendar.Adjust(calendar.WeekendsOnly, date(2025, 5, 31)))
	assert.Equal(t, date(2025, 6, 2), calendar.AdjustFollowing(calendar.WeekendsOnly, date(2025, 5, 31)))
	assert.Equal(t, date(2025, 5, 30), calendar.AdjustPreceding(calendar.WeekendsOnly, date(2025, 6, 1)))
	assert.Equal(t, date(2025, 5, 31), calendar.Adjust(calendar.NullCalendar, date(2025, 5, 31)))
}

func TestTargetHolidays(t *testing.T) {
	t.Parallel()

	assert.False(t, calendar.IsBusinessDay(calendar.TARGET, date(2025, 12, 25)))
	assert.True(t, calendar.IsBusinessDay(calendar.TARGET, date(2025, 12, 24)))
	// Wed 2025-12-24 + 1 business day skips Christmas and Boxing day.
	assert.Equal(t, date(2025, 12, 29), calendar.AddBusinessDays(calendar.TARGET, date(2025, 12, 24), 1))
}

func TestAddHolidays(t *testing.T) {
	t.Parallel()

	cal := calendar.CalendarID("TEST-ADD")
	calendar.AddHolidays(cal, date(2025, 3, 3))
	assert.False(t, calendar.IsBusinessDay(cal, date(2025, 3, 3)))
	assert.Equal(t, date(2025, 3, 4), calendar.AddBusinessDays(cal, date(2025, 2, 28), 1))
}

func TestParsePeriodAndAdvance(t *testing.T) {
	t.Parallel()

	p, err := calendar.ParsePeriod(" 3m")
	require.NoError(t, err)
	assert.Equal(t, calendar.Period{Length: 3, Unit: calendar.Months}, p)
	assert.Equal(t, "3M", p.String())

	y, err := calendar.ParsePeriod("10Y")
	require.NoError(t, err)
	months, ok := y.Months()
	assert.True(t, ok)
	assert.Equal(t, 120, months)

	_, err = calendar.ParsePeriod("5Q")
	assert.Error(t, err)
	_, err = calendar.ParsePeriod("M")
	assert.Error(t, err)

	start := date(2025, 1, 31)
	assert.Equal(t, date(2025, 2, 28), calendar.Advance(calendar.WeekendsOnly, start, calendar.Period{Length: 1, Unit: calendar.Months}, calendar.ModifiedFollowing))
	assert.Equal(t, date(2025, 2, 4), calendar.Advance(calendar.WeekendsOnly, start, calendar.Period{Length: 2, Unit: calendar.Days}, calendar.Following))
	assert.Equal(t, date(2025, 2, 7), calendar.Advance(calendar.WeekendsOnly, start, calendar.Period{Length: 1, Unit: calendar.Weeks}, calendar.Following))
}

func TestEndOfMonth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, date(2025, 5, 30), calendar.LastBusinessDayOfMonth(calendar.WeekendsOnly, date(2025, 5, 10)))
	assert.True(t, calendar.IsEndOfMonth(calendar.WeekendsOnly, date(2025, 5, 30)))
	assert.False(t, calendar.IsEndOfMonth(calendar.WeekendsOnly, date(2025, 5, 29)))
}

func TestBackwardSchedule(t *testing.T) {
	t.Parallel()

	periods := calendar.BackwardSchedule(calendar.NullCalendar, date(2025, 1, 2), date(2026, 1, 2), 6, calendar.ModifiedFollowing, 0)
	require.Len(t, periods, 2)
	assert.Equal(t, date(2025, 7, 2), periods[0].End)
	assert.Equal(t, date(2026, 1, 2), periods[1].Pay)

	// Front stub; 2025-06-15 is a Sunday.
	stub := calendar.BackwardSchedule(calendar.WeekendsOnly, date(2025, 1, 2), date(2025, 12, 15), 6, calendar.ModifiedFollowing, 2)
	require.Len(t, stub, 2)
	assert.Equal(t, date(2025, 1, 2), stub[0].Start)
	assert.Equal(t, date(2025, 6, 16), stub[0].End)
	assert.Equal(t, date(2025, 12, 17), stub[1].Pay)

	assert.Empty(t, calendar.BackwardSchedule(calendar.NullCalendar, date(2025, 1, 2), date(2025, 1, 2), 6, calendar.Following, 0))
}

func TestIMMDates(t *testing.T) {
	t.Parallel()

	assert.True(t, calendar.IsIMMDate(date(2025, 3, 19), true))
	assert.True(t, calendar.IsIMMDate(date(2025, 1, 15), false))
	assert.False(t, calendar.IsIMMDate(date(2025, 1, 15), true))
	assert.False(t, calendar.IsIMMDate(date(2025, 3, 12), false))
	assert.False(t, calendar.IsIMMDate(date(2025, 3, 20), false))

	assert.Equal(t, date(2025, 3, 19), calendar.NextIMMDate(date(2025, 1, 2), true))
	assert.Equal(t, date(2025, 6, 18), calendar.NextIMMDate(date(2025, 3, 19), true))
	assert.Equal(t, date(2025, 1, 15), calendar.NextIMMDate(date(2025, 1, 2), false))
	assert.Equal(t, date(2026, 3, 18), calendar.NextIMMDate(date(2025, 12, 17), true))
}
