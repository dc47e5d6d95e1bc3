package core

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const MaxFramesInFlight = 8

var knownPresentModes = map[string]bool{
	"immediate":                 true,
	"mailbox":                   true,
	"fifo":                      true,
	"fifo_relaxed":              true,
	"shared_demand_refresh":     true,
	"shared_continuous_refresh": true,
}

type ApplicationSection struct {
	Name        string `toml:"name"`
	X           uint32 `toml:"x"`
	Y           uint32 `toml:"y"`
	Width       uint32 `toml:"width"`
	Height      uint32 `toml:"height"`
	LogLevel    string `toml:"log_level"`
	WatchConfig bool   `toml:"watch_config"`
}

type RendererSection struct {
	FramesInFlight uint32     `toml:"frames_in_flight"`
	PresentModes   []string   `toml:"present_modes"`
	MSAASamples    uint32     `toml:"msaa_samples"`
	ClearColor     [4]float32 `toml:"clear_color"`
	Validation     bool       `toml:"validation"`
}

// Config is the on-disk engine configuration.
type Config struct {
	Application ApplicationSection `toml:"application"`
	Renderer    RendererSection    `toml:"renderer"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationSection{
			Name:     "Vulkan Engine",
			X:        100,
			Y:        100,
			Width:    1280,
			Height:   720,
			LogLevel: "info",
		},
		Renderer: RendererSection{
			FramesInFlight: 2,
			PresentModes:   []string{"mailbox"},
			MSAASamples:    4,
			ClearColor:     [4]float32{0.01, 0.01, 0.01, 1.0},
			Validation:     true,
		},
	}
}

// LoadConfig decodes path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			LogWarn("config file `%s` not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	cfg.Renderer.PresentModes = nil
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg); err != nil {
		err = fmt.Errorf("failed to decode config `%s`: %w", path, err)
		LogError(err.Error())
		return nil, err
	}
	if cfg.Renderer.PresentModes == nil {
		cfg.Renderer.PresentModes = DefaultConfig().Renderer.PresentModes
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Application.Width, c.Application.Height)
	}
	if _, err := ParseLogLevel(c.Application.LogLevel); err != nil {
		return err
	}
	if c.Renderer.FramesInFlight < 1 || c.Renderer.FramesInFlight > MaxFramesInFlight {
		return fmt.Errorf("frames_in_flight must be in [1, %d], got %d", MaxFramesInFlight, c.Renderer.FramesInFlight)
	}
	s := c.Renderer.MSAASamples
	if s < 1 || s > 64 || s&(s-1) != 0 {
		return fmt.Errorf("msaa_samples must be a power of two in [1, 64], got %d", s)
	}
	for _, m := range c.Renderer.PresentModes {
		if !knownPresentModes[m] {
			return fmt.Errorf("unknown present mode `%s`", m)
		}
	}
	return nil
}
