package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("PUSH_WORKERS", "")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "America/Los_Angeles", cfg.Timezone)
	assert.Equal(t, "2020-08-27", cfg.StripeAPIVersion)
	assert.Equal(t, 3, cfg.PushWorkers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("PUSH_WORKERS", "8")
	t.Setenv("GOOGLE_PROJECT_ID", "roadbuddy-test")

	cfg := Load()
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 8, cfg.PushWorkers)
	assert.True(t, cfg.FirebaseEnabled())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "soon")
	t.Setenv("PUSH_WORKERS", "-2")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 3, cfg.PushWorkers)
}
