package build

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/calendar"
	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/interpolation"
	"github.com/meenmo/curvekit/solver"
	"github.com/meenmo/curvekit/termstructure"
	"github.com/meenmo/curvekit/utils"
)

// Input defines the JSON input schema of a curve build.
//
// Conventions:
// - rates and yields are in percent (e.g., 3.25 means 3.25%)
// - bond prices are clean, per 100 face
// - quotes may be numbers or numeric strings
// - omitted curve settings fall back to the configuration file
type Input struct {
	Name          string `json:"name"`
	ReferenceDate string `json:"reference_date"` // "2025-01-02"
	Kind          string `json:"kind"`           // discount, forward, zero
	Interpolation string `json:"interpolation"`  // linear, loglinear, naturalcubic, akima, fritschbutland
	Method        string `json:"method"`         // iterative or local
	Localisation  int    `json:"localisation"`
	ForcePositive *bool  `json:"force_positive"`
	DayCount      string `json:"day_count"`
	Calendar      string `json:"calendar"` // NONE, WEEKENDS, TARGET, USD, JPN, KRW

	// DiscountCurve, when set, is bootstrapped first and discounts every
	// swap of this curve.
	DiscountCurve *Input `json:"discount_curve,omitempty"`

	Instruments []Instrument `json:"instruments"`
}

type Pillar struct {
	Date     string  `json:"date"`
	Time     float64 `json:"time"`
	Value    float64 `json:"value"`
	Discount float64 `json:"discount"`
	ZeroRate float64 `json:"zero_rate"` // percent, continuous compounding
}

type Output struct {
	Name          string    `json:"name,omitempty"`
	ReferenceDate string    `json:"reference_date,omitempty"`
	Kind          string    `json:"kind,omitempty"`
	Method        string    `json:"method,omitempty"`
	Iterations    int       `json:"iterations,omitempty"`
	Pillars       []Pillar  `json:"pillars,omitempty"`
	QuoteErrors   []float64 `json:"quote_errors,omitempty"`
	Error         string    `json:"error,omitempty"`
	ErrorClass    string    `json:"error_class,omitempty"`
}

const outputDecimals = 12

func Decode(b []byte) (Input, error) {
	var in Input
	if err := sonic.Unmarshal(b, &in); err != nil {
		return Input{}, errors.Wrap(err, "failed to parse JSON input")
	}
	return in, nil
}

func Encode(out Output) ([]byte, error) {
	return sonic.Marshal(out)
}

// Options carries what Run needs beyond the input.
type Options struct {
	Config   config.Config
	Logger   zerolog.Logger
	Recorder termstructure.Recorder
}

// Run bootstraps the curve described by in.
func Run(in Input, opts Options) (Output, error) {
	p, err := newCurve(in, opts)
	if err != nil {
		return Output{}, err
	}
	if err := p.Recalculate(); err != nil {
		return Output{}, err
	}
	c, err := p.Curve()
	if err != nil {
		return Output{}, err
	}

	out := Output{
		Name:          p.Name(),
		ReferenceDate: utils.FormatDate(p.ReferenceDate()),
		Kind:          p.Kind().String(),
		Method:        string(p.Method()),
		Iterations:    p.Iterations(),
	}
	for _, pl := range c.Pillars() {
		out.Pillars = append(out.Pillars, Pillar{
			Date:     utils.FormatDate(pl.Date),
			Time:     utils.RoundTo(pl.Time, outputDecimals),
			Value:    utils.RoundTo(pl.Value, outputDecimals),
			Discount: utils.RoundTo(c.DiscountAt(pl.Time), outputDecimals),
			ZeroRate: utils.RoundTo(100*c.ZeroRateAt(pl.Time), outputDecimals-2),
		})
	}
	for _, h := range p.Helpers() {
		out.QuoteErrors = append(out.QuoteErrors, h.QuoteError())
	}
	return out, nil
}

// newCurve assembles the PiecewiseCurve of in, bootstrapping its discount
// curve first when one is given.
func newCurve(in Input, opts Options) (*termstructure.PiecewiseCurve, error) {
	cfg := opts.Config
	ref, err := utils.ParseDate(in.ReferenceDate)
	if err != nil {
		return nil, errors.Wrap(err, "reference_date")
	}
	kind, err := termstructure.ParseKind(orDefault(in.Kind, cfg.Curve.Kind))
	if err != nil {
		return nil, err
	}
	ip, err := interpolation.ByName(orDefault(in.Interpolation, cfg.Curve.Interpolation))
	if err != nil {
		return nil, errors.Wrapf(termstructure.ErrInvalidConfiguration, "%v", err)
	}
	method, err := termstructure.ParseMethod(strings.ToLower(in.Method))
	if err != nil {
		return nil, err
	}
	dc := utils.ParseDayCount(orDefault(in.DayCount, cfg.Curve.DayCount))
	cal := parseCalendar(in.Calendar)

	traits, err := termstructure.NewTraits(kind, termstructure.Settings{
		Accuracy:           cfg.Bootstrap.Accuracy,
		MaxIterations:      cfg.Bootstrap.MaxIterations,
		AllowNegativeRates: cfg.Bootstrap.AllowNegativeRates,
	})
	if err != nil {
		return nil, err
	}
	c, err := termstructure.NewCurve(ref, traits, ip, dc)
	if err != nil {
		return nil, err
	}

	var discount termstructure.YieldTermStructure
	if in.DiscountCurve != nil {
		sub := *in.DiscountCurve
		if sub.ReferenceDate == "" {
			sub.ReferenceDate = in.ReferenceDate
		}
		if sub.Name == "" {
			sub.Name = name(in) + "-discount"
		}
		dp, err := newCurve(sub, opts)
		if err != nil {
			return nil, errors.Wrap(err, "discount_curve")
		}
		bootstrapped, err := dp.Curve()
		if err != nil {
			return nil, errors.Wrap(err, "discount_curve")
		}
		discount = bootstrapped
	}

	hs, err := newHelpers(in.Instruments, ref, cal, discount)
	if err != nil {
		return nil, err
	}

	popts := []termstructure.PiecewiseOption{
		termstructure.WithCurveLogger(opts.Logger),
		termstructure.WithBootstrapOptions(
			termstructure.WithLogger(opts.Logger),
			termstructure.WithSolverMaxEvaluations(cfg.Bootstrap.SolverMaxEvaluations),
			termstructure.WithEndCriteria(solver.EndCriteria{
				MaxIterations:                cfg.Local.MaxIterations,
				MaxStationaryStateIterations: cfg.Local.MaxStationaryIterations,
				FunctionEpsilon:              cfg.Local.FunctionEpsilon,
			}),
		),
	}
	if opts.Recorder != nil {
		popts = append(popts, termstructure.WithRecorder(opts.Recorder))
	}
	if method == termstructure.MethodLocal {
		localisation := in.Localisation
		if localisation == 0 {
			localisation = cfg.Local.Localisation
		}
		forcePositive := cfg.Local.ForcePositive
		if in.ForcePositive != nil {
			forcePositive = *in.ForcePositive
		}
		popts = append(popts, termstructure.UseLocalBootstrap(localisation, forcePositive))
	}
	return termstructure.NewPiecewiseCurve(name(in), c, hs, popts...)
}

func name(in Input) string {
	return orDefault(in.Name, "curve")
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// parseCalendar defaults to weekends only. Unknown ids behave the same way,
// having no registered holidays.
func parseCalendar(s string) calendar.CalendarID {
	if s = strings.ToUpper(strings.TrimSpace(s)); s == "" {
		return calendar.WeekendsOnly
	}
	return calendar.CalendarID(s)
}
