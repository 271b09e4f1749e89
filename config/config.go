package config

import (
	"os"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds solver and curve construction parameters.
type Config struct {
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Local     LocalConfig     `yaml:"local"`
	Curve     CurveConfig     `yaml:"curve"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
}

type BootstrapConfig struct {
	// Accuracy is the root-finding tolerance per pillar and the convergence
	// threshold of the outer loop for global interpolations.
	Accuracy float64 `yaml:"accuracy" default:"1e-12" validate:"gt=0,lt=1"`

	// MaxIterations caps the outer loop for global interpolations.
	MaxIterations int `yaml:"max_iterations" default:"100" validate:"gte=1"`

	// SolverMaxEvaluations caps objective calls per pillar.
	SolverMaxEvaluations int `yaml:"solver_max_evaluations" default:"100" validate:"gte=3"`

	AllowNegativeRates bool `yaml:"allow_negative_rates" default:"true"`
}

type LocalConfig struct {
	Localisation  int  `yaml:"localisation" default:"2" validate:"gte=1"`
	ForcePositive bool `yaml:"force_positive" default:"true"`

	MaxIterations           int     `yaml:"max_iterations" default:"10000" validate:"gte=1"`
	MaxStationaryIterations int     `yaml:"max_stationary_iterations" default:"100" validate:"gte=1"`
	FunctionEpsilon         float64 `yaml:"function_epsilon" default:"1e-24" validate:"gte=0"`
}

type CurveConfig struct {
	// DayCount is the curve time axis. ACT/365F follows market convention.
	DayCount      string `yaml:"day_count" default:"ACT/365F" validate:"oneof=ACT/360 ACT/365F 30/360 30E/360"`
	Interpolation string `yaml:"interpolation" default:"loglinear" validate:"required"`
	Kind          string `yaml:"kind" default:"discount" validate:"oneof=discount forward zero"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stderr" validate:"required"`
}

type StoreConfig struct {
	SnapshotTTL     time.Duration `yaml:"snapshot_ttl" default:"5m" validate:"gte=0"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" default:"10m" validate:"gte=0"`
}

var validate = validator.New()

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return c
}

// Load reads a YAML file. Missing keys take their defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "validate config")
	}
	return nil
}

var (
	mu  sync.RWMutex
	cfg = DefaultConfig()
)

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	mu.Lock()
	cfg = c
	mu.Unlock()
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
