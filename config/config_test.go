package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.FlushInterval)
	assert.Equal(t, 0.1, cfg.SampleRate)
	assert.Equal(t, 0.1, cfg.LatencyThreshold)
	assert.True(t, cfg.Recording)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "SmileRight Dental Clinic", cfg.Facility.Name)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frontdesk.yaml")
	content := []byte(`
batch_size: 25
flush_interval: 5s
sample_rate: 0.5
recording: false
facility:
  name: Northside Dental
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.FlushInterval)
	assert.Equal(t, 0.5, cfg.SampleRate)
	assert.False(t, cfg.Recording)
	assert.Equal(t, "Northside Dental", cfg.Facility.Name)
	// untouched keys keep their defaults
	assert.Equal(t, 0.1, cfg.LatencyThreshold)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero flush interval", func(c *Config) { c.FlushInterval = 0 }},
		{"negative sample rate", func(c *Config) { c.SampleRate = -0.1 }},
		{"sample rate above one", func(c *Config) { c.SampleRate = 1.5 }},
		{"negative latency threshold", func(c *Config) { c.LatencyThreshold = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
