package termstructure

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/curvekit/config"
)

// Kind selects what a pillar value means.
type Kind int

const (
	// KindDiscount pillars are discount factors.
	KindDiscount Kind = iota
	// KindForwardRate pillars are instantaneous forward rates.
	KindForwardRate
	// KindZeroYield pillars are continuously compounded zero rates.
	KindZeroYield
)

func (k Kind) String() string {
	switch k {
	case KindDiscount:
		return "discount"
	case KindForwardRate:
		return "forward"
	case KindZeroYield:
		return "zero"
	default:
		return "unknown"
	}
}

// ParseKind accepts "discount", "forward" or "zero".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discount", "df":
		return KindDiscount, nil
	case "forward", "forwardrate", "fwd":
		return KindForwardRate, nil
	case "zero", "zeroyield", "zeroyields":
		return KindZeroYield, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown curve kind %q", s)
}

// Settings configures a Traits value.
type Settings struct {
	Accuracy           float64
	MaxIterations      int
	AllowNegativeRates bool
}

// DefaultSettings reads the process configuration.
func DefaultSettings() Settings {
	b := config.GetConfig().Bootstrap
	return Settings{
		Accuracy:           b.Accuracy,
		MaxIterations:      b.MaxIterations,
		AllowNegativeRates: b.AllowNegativeRates,
	}
}

// Traits defines the pillar semantics of a curve: starting values, guesses,
// bounds, and how a solved value is written back. The set of implementations
// is closed; obtain one from NewTraits.
type Traits interface {
	Kind() Kind
	InitialDate(c *Curve) time.Time
	InitialValue() float64
	InitialGuess() float64
	// Guess extrapolates the curve built so far to d.
	Guess(c *Curve, d time.Time) float64
	MinValueAfter(i int, data []float64) float64
	MaxValueAfter(i int, data []float64) float64
	UpdateGuess(data []float64, value float64, i int)
	MaxIterations() int
	Accuracy() float64

	discount(c *Curve, t float64) float64
}

const (
	// maxRate bounds rate-valued pillars and the discount ceiling under negative rates.
	maxRate     = 3.0
	avgRate     = 0.05
	initialRate = 0.02
	epsilon     = 2.220446049250313e-16
)

var traitsTable = map[Kind]func(Settings) Traits{
	KindDiscount:    func(s Settings) Traits { return discountTraits{base{s}} },
	KindForwardRate: func(s Settings) Traits { return forwardTraits{base{s}} },
	KindZeroYield:   func(s Settings) Traits { return zeroTraits{base{s}} },
}

// NewTraits returns the traits for kind.
func NewTraits(kind Kind, s Settings) (Traits, error) {
	ctor, ok := traitsTable[kind]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "unknown curve kind %d", kind)
	}
	if !(s.Accuracy > 0) {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "accuracy %g must be positive", s.Accuracy)
	}
	if s.MaxIterations < 1 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "max iterations %d must be at least 1", s.MaxIterations)
	}
	return ctor(s), nil
}

// MustTraits is NewTraits for static configuration.
func MustTraits(kind Kind, s Settings) Traits {
	t, err := NewTraits(kind, s)
	if err != nil {
		panic(err)
	}
	return t
}

type base struct{ s Settings }

func (b base) MaxIterations() int             { return b.s.MaxIterations }
func (b base) Accuracy() float64              { return b.s.Accuracy }
func (b base) InitialDate(c *Curve) time.Time { return c.ReferenceDate() }

type discountTraits struct{ base }

func (discountTraits) Kind() Kind            { return KindDiscount }
func (discountTraits) InitialValue() float64 { return 1 }
func (discountTraits) InitialGuess() float64 { return 1 / (1 + avgRate*0.25) }

func (discountTraits) Guess(c *Curve, d time.Time) float64 {
	return c.Discount(d)
}

func (discountTraits) MinValueAfter(int, []float64) float64 {
	return epsilon
}

func (t discountTraits) MaxValueAfter(i int, data []float64) float64 {
	if t.s.AllowNegativeRates {
		return maxRate
	}
	return data[i-1]
}

func (discountTraits) UpdateGuess(data []float64, value float64, i int) {
	data[i] = value
}

func (discountTraits) discount(c *Curve, t float64) float64 {
	return discountFromDiscounts(c, t)
}

type forwardTraits struct{ base }

func (forwardTraits) Kind() Kind            { return KindForwardRate }
func (forwardTraits) InitialValue() float64 { return initialRate }
func (forwardTraits) InitialGuess() float64 { return initialRate }

func (forwardTraits) Guess(c *Curve, d time.Time) float64 {
	return c.InstantaneousForward(c.TimeFromReference(d))
}

func (t forwardTraits) MinValueAfter(int, []float64) float64 { return rateFloor(t.s) }
func (forwardTraits) MaxValueAfter(int, []float64) float64   { return maxRate }

// UpdateGuess also moves pillar 0, which has no earlier anchor.
func (forwardTraits) UpdateGuess(data []float64, value float64, i int) {
	data[i] = value
	if i == 1 {
		data[0] = value
	}
}

func (forwardTraits) discount(c *Curve, t float64) float64 {
	return discountFromForwards(c, t)
}

type zeroTraits struct{ base }

func (zeroTraits) Kind() Kind            { return KindZeroYield }
func (zeroTraits) InitialValue() float64 { return initialRate }
func (zeroTraits) InitialGuess() float64 { return initialRate }

func (zeroTraits) Guess(c *Curve, d time.Time) float64 {
	t := c.TimeFromReference(d)
	if c.Interpolation() == nil {
		return math.NaN()
	}
	return c.Interpolation().Value(math.Min(t, c.Interpolation().XMax()))
}

func (t zeroTraits) MinValueAfter(int, []float64) float64 { return rateFloor(t.s) }
func (zeroTraits) MaxValueAfter(int, []float64) float64   { return maxRate }

func (zeroTraits) UpdateGuess(data []float64, value float64, i int) {
	data[i] = value
	if i == 1 {
		data[0] = value
	}
}

func (zeroTraits) discount(c *Curve, t float64) float64 {
	return discountFromZeros(c, t)
}

func rateFloor(s Settings) float64 {
	if s.AllowNegativeRates {
		return -maxRate
	}
	return epsilon
}
