package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	c := config.DefaultConfig()
	assert.Equal(t, 1e-12, c.Bootstrap.Accuracy)
	assert.Equal(t, 100, c.Bootstrap.MaxIterations)
	assert.True(t, c.Bootstrap.AllowNegativeRates)
	assert.Equal(t, 2, c.Local.Localisation)
	assert.Equal(t, 1e-24, c.Local.FunctionEpsilon)
	assert.Equal(t, "ACT/365F", c.Curve.DayCount)
	assert.Equal(t, 5*time.Minute, c.Store.SnapshotTTL)
	require.NoError(t, c.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "curvekit.yaml")
	yaml := []byte(`
bootstrap:
  accuracy: 1.0e-10
  allow_negative_rates: false
curve:
  kind: zero
  interpolation: naturalcubic
log:
  format: console
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-10, c.Bootstrap.Accuracy)
	assert.False(t, c.Bootstrap.AllowNegativeRates)
	assert.Equal(t, 100, c.Bootstrap.MaxIterations)
	assert.Equal(t, "zero", c.Curve.Kind)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "info", c.Log.Level)
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := config.Parse([]byte("bootstrap:\n  accuracy: -1\n"))
	assert.Error(t, err)

	_, err = config.Parse([]byte("curve:\n  kind: hazard\n"))
	assert.Error(t, err)

	_, err = config.Parse([]byte("bootstrap: ["))
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetGetConfig(t *testing.T) {
	orig := config.GetConfig()
	t.Cleanup(func() { config.SetConfig(orig) })

	c := config.DefaultConfig()
	c.Bootstrap.MaxIterations = 7
	config.SetConfig(c)
	assert.Equal(t, 7, config.GetConfig().Bootstrap.MaxIterations)
}
