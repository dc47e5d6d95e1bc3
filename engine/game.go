package engine

import (
	"github.com/vstokstad/vulkan-eng/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

// Initialize runs once the renderer and the global resources exist. It is
// where a game registers its render systems.
type Initialize func(engine *Engine) error
type Update func(deltaTime float64) error

// Render runs inside BeginFrame/EndFrame, before the render systems update.
type Render func(frame *systems.FrameInfo) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
