// Package curvestore keeps named curves and caches their calibrated pillars.
package curvestore

import (
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/termstructure"
)

var (
	ErrUnknownCurve   = errors.New("unknown curve")
	ErrDuplicateCurve = errors.New("curve already registered")
)

// Snapshot is a calibrated curve frozen at build time.
type Snapshot struct {
	Name          string
	ReferenceDate time.Time
	Kind          termstructure.Kind
	Method        termstructure.Method
	Pillars       []termstructure.Pillar
	Iterations    int
	BuiltAt       time.Time
}

// Store serializes bootstraps: at most one curve calibrates at a time.
type Store struct {
	mu     sync.Mutex
	curves map[string]*termstructure.PiecewiseCurve
	cached *cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// New returns an empty store. A zero snapshot TTL keeps snapshots until the
// curve goes stale.
func New(cfg config.StoreConfig, logger zerolog.Logger) *Store {
	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Store{
		curves: make(map[string]*termstructure.PiecewiseCurve),
		cached: cache.New(ttl, cfg.CleanupInterval),
		ttl:    ttl,
		logger: logger.With().Str("component", "curvestore").Logger(),
	}
}

func (s *Store) Register(p *termstructure.PiecewiseCurve) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.curves[p.Name()]; ok {
		return errors.Wrap(ErrDuplicateCurve, p.Name())
	}
	s.curves[p.Name()] = p
	return nil
}

// Names lists registered curves in order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.curves))
	for name := range s.curves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the cached snapshot of name, bootstrapping first when the
// curve is stale or its last run failed.
func (s *Store) Snapshot(name string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.curve(name)
	if err != nil {
		return Snapshot{}, err
	}
	if !p.Stale() && p.Err() == nil {
		if v, ok := s.cached.Get(name); ok {
			return clone(v.(Snapshot)), nil
		}
	}
	s.cached.Delete(name)

	if err := p.Recalculate(); err != nil {
		return Snapshot{}, errors.Wrapf(err, "snapshot %s", name)
	}
	pillars, err := p.Pillars()
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "snapshot %s", name)
	}
	snap := Snapshot{
		Name:          name,
		ReferenceDate: p.ReferenceDate(),
		Kind:          p.Kind(),
		Method:        p.Method(),
		Pillars:       pillars,
		Iterations:    p.Iterations(),
		BuiltAt:       time.Now(),
	}
	s.cached.Set(name, snap, s.ttl)
	s.logger.Debug().Str("curve", name).Int("pillars", len(pillars)).Msg("snapshot cached")
	return clone(snap), nil
}

// Discount prices off the live curve of name.
func (s *Store) Discount(name string, d time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.curve(name)
	if err != nil {
		return 0, err
	}
	return p.Discount(d)
}

// Invalidate forces the next Snapshot of name to bootstrap again.
func (s *Store) Invalidate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.curve(name)
	if err != nil {
		return err
	}
	p.Invalidate()
	s.cached.Delete(name)
	return nil
}

// Cached reports whether a snapshot of name is held.
func (s *Store) Cached(name string) bool {
	_, ok := s.cached.Get(name)
	return ok
}

func (s *Store) curve(name string) (*termstructure.PiecewiseCurve, error) {
	p, ok := s.curves[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCurve, name)
	}
	return p, nil
}

func clone(s Snapshot) Snapshot {
	s.Pillars = append([]termstructure.Pillar(nil), s.Pillars...)
	return s
}
