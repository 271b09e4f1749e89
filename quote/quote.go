// Package quote holds observable market values used to calibrate curves.
//
// Change propagation is pull based: every SimpleQuote carries a version
// counter, and curve owners compare versions to decide whether a curve must
// be rebuilt.
package quote

import (
	"math"

	"go.uber.org/atomic"
)

// Quote is an observable scalar market value.
type Quote interface {
	Value() float64
	IsValid() bool
}

// Versioned is implemented by quotes that count their changes.
type Versioned interface {
	Version() uint64
}

// SimpleQuote is a settable quote. Value and version are stored atomically so
// a feed may update quotes while readers price off them.
type SimpleQuote struct {
	value   *atomic.Float64
	version *atomic.Uint64
}

// NewSimpleQuote returns a quote holding v.
func NewSimpleQuote(v float64) *SimpleQuote {
	return &SimpleQuote{
		value:   atomic.NewFloat64(v),
		version: atomic.NewUint64(0),
	}
}

func (q *SimpleQuote) Value() float64 {
	return q.value.Load()
}

// IsValid reports whether the quote holds a finite number.
func (q *SimpleQuote) IsValid() bool {
	v := q.value.Load()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Set stores v and returns the change. The version only moves when the value does.
func (q *SimpleQuote) Set(v float64) float64 {
	old := q.value.Swap(v)
	if old != v && !(math.IsNaN(old) && math.IsNaN(v)) {
		q.version.Inc()
	}
	return v - old
}

// Reset invalidates the quote.
func (q *SimpleQuote) Reset() {
	q.Set(math.NaN())
}

func (q *SimpleQuote) Version() uint64 {
	return q.version.Load()
}

// VersionOf returns q's version, or 0 for quotes that do not track changes.
func VersionOf(q Quote) uint64 {
	if v, ok := q.(Versioned); ok {
		return v.Version()
	}
	return 0
}
