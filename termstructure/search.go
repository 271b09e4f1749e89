package termstructure

import "sort"

// firstAtOrAfter returns the index of the first time >= t, or len(times).
func firstAtOrAfter(times []float64, t float64) int {
	return sort.Search(len(times), func(i int) bool {
		return times[i] >= t
	})
}

// segmentOrBoundary returns i such that times[i] <= t <= times[i+1]. Targets
// outside the range map to the nearest boundary segment.
func segmentOrBoundary(times []float64, t float64) int {
	if len(times) < 2 {
		panic("segmentOrBoundary: need at least 2 times")
	}
	idx := firstAtOrAfter(times, t)
	if idx <= 0 {
		return 0
	}
	if idx >= len(times) {
		return len(times) - 2
	}
	return idx - 1
}
