package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[application]
name = "test"
width = 640
height = 480

[renderer]
frames_in_flight = 3
present_modes = ["fifo_relaxed", "immediate"]
msaa_samples = 1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Application.Name)
	assert.Equal(t, uint32(640), cfg.Application.Width)
	assert.Equal(t, uint32(100), cfg.Application.X)
	assert.Equal(t, uint32(3), cfg.Renderer.FramesInFlight)
	assert.Equal(t, []string{"fifo_relaxed", "immediate"}, cfg.Renderer.PresentModes)
	assert.Equal(t, uint32(1), cfg.Renderer.MSAASamples)
	assert.Equal(t, [4]float32{0.01, 0.01, 0.01, 1.0}, cfg.Renderer.ClearColor)
}

func TestLoadConfigKeepsDefaultPresentModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nframes_in_flight = 1\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"mailbox"}, cfg.Renderer.PresentModes)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer\nframes_in_flight = "), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer]\nframes = 2\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"single frame", func(c *Config) { c.Renderer.FramesInFlight = 1 }, true},
		{"zero frames", func(c *Config) { c.Renderer.FramesInFlight = 0 }, false},
		{"too many frames", func(c *Config) { c.Renderer.FramesInFlight = MaxFramesInFlight + 1 }, false},
		{"odd samples", func(c *Config) { c.Renderer.MSAASamples = 3 }, false},
		{"zero samples", func(c *Config) { c.Renderer.MSAASamples = 0 }, false},
		{"unknown present mode", func(c *Config) { c.Renderer.PresentModes = []string{"vsync"} }, false},
		{"zero width", func(c *Config) { c.Application.Width = 0 }, false},
		{"bad log level", func(c *Config) { c.Application.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Renderer.FramesInFlight = 3
	cfg.Renderer.PresentModes = []string{"immediate"}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestParseLogLevel(t *testing.T) {
	l, err := ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, l)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}
