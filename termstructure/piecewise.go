package termstructure

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/quote"
)

// Method selects the bootstrap algorithm.
type Method string

const (
	MethodIterative Method = "iterative"
	MethodLocal     Method = "local"
)

// ParseMethod maps a name to a Method. Empty means iterative.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodIterative:
		return MethodIterative, nil
	case MethodLocal:
		return MethodLocal, nil
	}
	return "", errors.Wrapf(ErrInvalidConfiguration, "unknown bootstrap method %q", s)
}

// Recorder receives one call per bootstrap run.
type Recorder interface {
	RecordBootstrap(curve, method, outcome string, iterations int, elapsed time.Duration)
}

// Bootstrapper is implemented by IterativeBootstrap and LocalBootstrap.
type Bootstrapper interface {
	Calculate() error
	Iterations() int
	Helpers() []RateHelper
}

// PiecewiseCurve owns a curve, its instruments and its bootstrapper. Callers
// invalidate it explicitly or let quote versions mark it stale; reads
// recalculate on demand. It is not safe for concurrent use.
type PiecewiseCurve struct {
	name     string
	curve    *Curve
	boot     Bootstrapper
	method   Method
	recorder Recorder
	logger   zerolog.Logger

	dirty      bool
	calculated bool
	versions   []uint64
	err        error
}

type piecewiseOptions struct {
	method        Method
	localisation  int
	forcePositive bool
	recorder      Recorder
	logger        zerolog.Logger
	bootstrap     []Option
}

// PiecewiseOption configures a PiecewiseCurve.
type PiecewiseOption func(*piecewiseOptions)

// UseLocalBootstrap switches to windowed optimization.
func UseLocalBootstrap(localisation int, forcePositive bool) PiecewiseOption {
	return func(o *piecewiseOptions) {
		o.method = MethodLocal
		o.localisation = localisation
		o.forcePositive = forcePositive
	}
}

func WithRecorder(r Recorder) PiecewiseOption {
	return func(o *piecewiseOptions) { o.recorder = r }
}

// WithCurveLogger sets the logger of the curve and its bootstrapper.
func WithCurveLogger(l zerolog.Logger) PiecewiseOption {
	return func(o *piecewiseOptions) { o.logger = l }
}

func WithBootstrapOptions(opts ...Option) PiecewiseOption {
	return func(o *piecewiseOptions) { o.bootstrap = append(o.bootstrap, opts...) }
}

func NewPiecewiseCurve(name string, c *Curve, helpers []RateHelper, opts ...PiecewiseOption) (*PiecewiseCurve, error) {
	o := piecewiseOptions{method: MethodIterative, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	bopts := append([]Option{WithLogger(o.logger)}, o.bootstrap...)

	var (
		boot Bootstrapper
		err  error
	)
	switch o.method {
	case MethodLocal:
		boot, err = NewLocalBootstrap(c, helpers, o.localisation, o.forcePositive, bopts...)
	default:
		boot, err = NewIterativeBootstrap(c, helpers, bopts...)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "curve %s", name)
	}
	return &PiecewiseCurve{
		name:     name,
		curve:    c,
		boot:     boot,
		method:   o.method,
		recorder: o.recorder,
		logger:   o.logger.With().Str("curve", name).Logger(),
		dirty:    true,
	}, nil
}

func (p *PiecewiseCurve) Name() string             { return p.name }
func (p *PiecewiseCurve) Method() Method           { return p.method }
func (p *PiecewiseCurve) Kind() Kind               { return p.curve.Kind() }
func (p *PiecewiseCurve) ReferenceDate() time.Time { return p.curve.ReferenceDate() }
func (p *PiecewiseCurve) Helpers() []RateHelper    { return p.boot.Helpers() }
func (p *PiecewiseCurve) Iterations() int          { return p.boot.Iterations() }

// Err is the error of the last run, nil after a success.
func (p *PiecewiseCurve) Err() error { return p.err }

// Invalidate forces the next read or Recalculate to bootstrap again.
func (p *PiecewiseCurve) Invalidate() { p.dirty = true }

// Stale reports whether a bootstrap is due: never run, invalidated, or a
// quote changed since the last success.
func (p *PiecewiseCurve) Stale() bool {
	if p.dirty || !p.calculated {
		return true
	}
	for i, h := range p.boot.Helpers() {
		if quote.VersionOf(h.Quote()) != p.versions[i] {
			return true
		}
	}
	return false
}

// Recalculate bootstraps when stale. A failure leaves the curve unusable
// until a later call succeeds.
func (p *PiecewiseCurve) Recalculate() error {
	if !p.Stale() && p.err == nil {
		return nil
	}
	helpers := p.boot.Helpers()
	versions := make([]uint64, len(helpers))
	for i, h := range helpers {
		versions[i] = quote.VersionOf(h.Quote())
	}

	start := time.Now()
	err := p.boot.Calculate()
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = string(Classify(err))
	}
	if p.recorder != nil {
		p.recorder.RecordBootstrap(p.name, string(p.method), outcome, p.boot.Iterations(), elapsed)
	}

	if err != nil {
		p.err = err
		p.dirty = true
		p.calculated = false
		p.logger.Error().Err(err).Str("class", outcome).Msg("curve bootstrap failed")
		return err
	}
	p.err = nil
	p.dirty = false
	p.calculated = true
	p.versions = versions
	p.logger.Info().
		Str("method", string(p.method)).
		Int("pillars", len(p.curve.data)).
		Int("iterations", p.boot.Iterations()).
		Dur("elapsed", elapsed).
		Msg("curve bootstrapped")
	return nil
}

// usable returns the curve once it holds a successful bootstrap. After a
// failure it returns ErrCurveUnusable until Recalculate succeeds.
func (p *PiecewiseCurve) usable() (*Curve, error) {
	if p.err != nil {
		return nil, &unusableError{cause: p.err}
	}
	if p.Stale() {
		if err := p.Recalculate(); err != nil {
			return nil, &unusableError{cause: err}
		}
	}
	return p.curve, nil
}

// Curve returns the bootstrapped curve, recalculating when stale.
func (p *PiecewiseCurve) Curve() (*Curve, error) {
	return p.usable()
}

func (p *PiecewiseCurve) Discount(d time.Time) (float64, error) {
	c, err := p.usable()
	if err != nil {
		return 0, err
	}
	return c.Discount(d), nil
}

func (p *PiecewiseCurve) ZeroRate(d time.Time) (float64, error) {
	c, err := p.usable()
	if err != nil {
		return 0, err
	}
	return c.ZeroRate(d), nil
}

func (p *PiecewiseCurve) ForwardRate(d1, d2 time.Time) (float64, error) {
	c, err := p.usable()
	if err != nil {
		return 0, err
	}
	return c.ForwardRate(d1, d2), nil
}

func (p *PiecewiseCurve) Pillars() ([]Pillar, error) {
	c, err := p.usable()
	if err != nil {
		return nil, err
	}
	return c.Pillars(), nil
}
