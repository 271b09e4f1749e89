package quote_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/curvekit/quote"
)

type fixedQuote float64

func (f fixedQuote) Value() float64 { return float64(f) }
func (f fixedQuote) IsValid() bool  { return true }

func TestSimpleQuoteVersioning(t *testing.T) {
	t.Parallel()

	q := quote.NewSimpleQuote(0.03)
	assert.True(t, q.IsValid())
	assert.Equal(t, 0.03, q.Value())
	assert.Equal(t, uint64(0), q.Version())

	assert.InDelta(t, 0.001, q.Set(0.031), 1e-15)
	assert.Equal(t, uint64(1), q.Version())

	q.Set(0.031)
	assert.Equal(t, uint64(1), q.Version(), "unchanged value keeps the version")

	q.Reset()
	assert.False(t, q.IsValid())
	assert.True(t, math.IsNaN(q.Value()))
	assert.Equal(t, uint64(2), q.Version())

	q.Reset()
	assert.Equal(t, uint64(2), q.Version())

	q.Set(math.Inf(1))
	assert.False(t, q.IsValid())
}

func TestVersionOf(t *testing.T) {
	t.Parallel()

	q := quote.NewSimpleQuote(1)
	q.Set(2)
	assert.Equal(t, uint64(1), quote.VersionOf(q))
	assert.Equal(t, uint64(0), quote.VersionOf(fixedQuote(1)))
}
