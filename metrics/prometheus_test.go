package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/metrics"
	"github.com/meenmo/curvekit/termstructure"
)

var _ termstructure.Recorder = (*metrics.Recorder)(nil)

func TestRecordBootstrap(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r := metrics.New(reg)

	r.RecordBootstrap("USD-SOFR", "iterative", "success", 3, 2*time.Millisecond)
	r.RecordBootstrap("USD-SOFR", "iterative", "success", 2, time.Millisecond)
	r.RecordBootstrap("USD-SOFR", "iterative", "quote", 0, time.Microsecond)
	r.RecordBootstrap("EUR-ESTR", "local", "success", 140, 5*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"curvekit_bootstrap_total",
		"curvekit_bootstrap_iterations",
		"curvekit_bootstrap_duration_seconds",
	}, names)

	n, err := testutil.GatherAndCount(reg, "curvekit_bootstrap_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = testutil.GatherAndCount(reg, "curvekit_bootstrap_iterations")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, f := range families {
		if f.GetName() != "curvekit_bootstrap_total" {
			continue
		}
		total := 0.0
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		assert.Equal(t, 4.0, total)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
