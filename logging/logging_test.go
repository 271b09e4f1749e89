package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/logging"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := logging.New(config.LogConfig{Level: "loud", Format: "json", Output: "stderr"})
	assert.Error(t, err)
}

func TestNewWritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "curvekit.log")
	log, err := logging.New(config.LogConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("curve", "USD-SOFR").Int("pillars", 10).Msg("curve bootstrapped")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")

	var entry map[string]interface{}
	require.NoError(t, sonic.Unmarshal(bytes.TrimSpace(b), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "USD-SOFR", entry["curve"])
	assert.Equal(t, "curve bootstrapped", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestConsoleFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewWithWriter(config.LogConfig{Format: "console"}, &buf, zerolog.WarnLevel)
	log.Info().Msg("quiet")
	log.Warn().Str("kind", "discount").Msg("bootstrap failed")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "bootstrap failed")
	assert.Contains(t, out, "kind=discount")
}
