package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5051", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 4*time.Second, cfg.RecordWindow)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "arecord", cfg.RecorderPath)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("GEMA_BASE_URL", "http://tutor.example.com")
	t.Setenv("GEMA_POLL_INTERVAL", "500ms")
	t.Setenv("GEMA_LANGUAGE", "hi")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://tutor.example.com", cfg.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "hi", cfg.Language)
}

func TestLoadRejectsInvalidDurations(t *testing.T) {
	t.Setenv("GEMA_HTTP_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestStubAddress(t *testing.T) {
	assert.Equal(t, ":5051", Config{StubPort: "5051"}.StubAddress())
	assert.Equal(t, ":9000", Config{StubPort: ":9000"}.StubAddress())
}
