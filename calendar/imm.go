package calendar

import "time"

// IsIMMDate reports whether t is the third Wednesday of its month. With
// mainCycle only March, June, September and December qualify.
func IsIMMDate(t time.Time, mainCycle bool) bool {
	if t.Weekday() != time.Wednesday || t.Day() < 15 || t.Day() > 21 {
		return false
	}
	return !mainCycle || t.Month()%3 == 0
}

// NextIMMDate returns the first IMM date strictly after t.
func NextIMMDate(t time.Time, mainCycle bool) time.Time {
	y, m := t.Year(), t.Month()
	for {
		d := thirdWednesday(y, m, t.Location())
		if d.After(t) && (!mainCycle || m%3 == 0) {
			return d
		}
		if m == time.December {
			y, m = y+1, time.January
		} else {
			m++
		}
	}
}

func thirdWednesday(y int, m time.Month, loc *time.Location) time.Time {
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	offset := (int(time.Wednesday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+14)
}
