package engine

import (
	"fmt"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel core.LogLevel
	// ConfigPath is watched for changes when WatchConfig is set.
	ConfigPath  string
	WatchConfig bool
	Renderer    core.RendererSection
}

// NewApplicationConfig flattens a loaded config file into the values the
// engine starts with.
func NewApplicationConfig(path string, cfg *core.Config) (*ApplicationConfig, error) {
	level, err := core.ParseLogLevel(cfg.Application.LogLevel)
	if err != nil {
		return nil, err
	}
	return &ApplicationConfig{
		StartPosX:   cfg.Application.X,
		StartPosY:   cfg.Application.Y,
		StartWidth:  cfg.Application.Width,
		StartHeight: cfg.Application.Height,
		Name:        cfg.Application.Name,
		LogLevel:    level,
		ConfigPath:  path,
		WatchConfig: cfg.Application.WatchConfig,
		Renderer:    cfg.Renderer,
	}, nil
}

func presentModes(names []string) ([]metadata.PresentMode, error) {
	modes := make([]metadata.PresentMode, 0, len(names))
	for _, n := range names {
		m, ok := metadata.ParsePresentMode(n)
		if !ok {
			return nil, fmt.Errorf("unknown present mode `%s`", n)
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// SwapchainConfig maps the renderer section onto the swapchain settings.
func (c *ApplicationConfig) SwapchainConfig() (renderer.SwapchainConfig, error) {
	sc := renderer.DefaultSwapchainConfig()
	modes, err := presentModes(c.Renderer.PresentModes)
	if err != nil {
		return sc, err
	}
	if len(modes) > 0 {
		sc.PresentModes = modes
	}
	if c.Renderer.FramesInFlight > 0 {
		sc.FramesInFlight = c.Renderer.FramesInFlight
	}
	if c.Renderer.MSAASamples > 0 {
		sc.Samples = c.Renderer.MSAASamples
	}
	sc.ClearColor = c.Renderer.ClearColor
	return sc, nil
}
