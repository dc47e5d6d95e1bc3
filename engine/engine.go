package engine

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/platform"
	"github.com/vstokstad/vulkan-eng/engine/renderer"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
	"github.com/vstokstad/vulkan-eng/engine/renderer/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// frame times above this are treated as a stall and clamped
const maxFrameTime = 0.25

const maxCameraCount = 16

type Engine struct {
	currentStage Stage
	gameInstance *Game
	// cleared from the event bus, which may run on a signal goroutine
	isRunning   atomic.Bool
	isSuspended bool
	width       uint32
	height      uint32

	events   *core.EventBus
	platform *platform.Platform
	context  *vulkan.Context

	device   renderer.Device
	window   renderer.Window
	renderer *renderer.Renderer

	globalSetLayout *renderer.DescriptorSetLayout
	globalPool      *renderer.DescriptorPool
	globalSets      []metadata.DescriptorSet
	uboBuffer       *renderer.Buffer
	ubo             *systems.GlobalUBO

	cameras       *systems.CameraSystem
	renderSystems systems.RenderSystems

	clock    *core.Clock
	metrics  *core.FrameMetrics
	watcher  *core.ConfigWatcher
	lastTime float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		err := fmt.Errorf("engine requires a game with an application config")
		core.LogError(err.Error())
		return nil, err
	}
	events := core.NewEventBus()
	e := newEngine(g, events)
	e.platform = platform.New(events)
	return e, nil
}

func newEngine(g *Game, events *core.EventBus) *Engine {
	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		events:       events,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		isSuspended:  false,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}
	e.isRunning.Store(true)
	return e
}

// Initialize opens the window, brings up the Vulkan context and then the
// renderer and everything that depends on it.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig
	core.SetLogLevel(config.LogLevel)

	e.registerEvents()

	if err := e.platform.Startup(config.Name, config.StartPosX, config.StartPosY, config.StartWidth, config.StartHeight); err != nil {
		return err
	}

	ctx, err := vulkan.NewContext(e.platform, vulkan.ContextConfig{
		ApplicationName:   config.Name,
		Validation:        config.Renderer.Validation,
		SamplerAnisotropy: true,
		DiscreteGPU:       true,
	})
	if err != nil {
		core.LogError("failed to create the Vulkan context: %s", err)
		_ = e.platform.Shutdown()
		return err
	}
	e.context = ctx

	if err := e.initialize(ctx, e.platform); err != nil {
		e.context.Destroy()
		e.context = nil
		_ = e.platform.Shutdown()
		return err
	}

	if config.WatchConfig && config.ConfigPath != "" {
		w, err := core.NewConfigWatcher(config.ConfigPath)
		if err != nil {
			// the engine runs fine without hot reload
			core.LogWarn("config watcher disabled: %s", err)
		} else {
			e.watcher = w
		}
	}
	return nil
}

func (e *Engine) registerEvents() {
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
}

// initialize builds the renderer and the per-frame global resources on
// device. It is split from Initialize so it can run without a window system.
func (e *Engine) initialize(device renderer.Device, window renderer.Window) error {
	sc, err := e.gameInstance.ApplicationConfig.SwapchainConfig()
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	e.device = device
	e.window = window

	r, err := renderer.NewRenderer(device, window, sc)
	if err != nil {
		return err
	}
	e.renderer = r

	if err := e.createGlobalResources(); err != nil {
		e.destroyGlobalResources()
		e.renderer.Destroy()
		e.renderer = nil
		return err
	}

	cs, err := systems.NewCameraSystem(maxCameraCount)
	if err != nil {
		e.destroyGlobalResources()
		e.renderer.Destroy()
		e.renderer = nil
		return err
	}
	e.cameras = cs
	e.cameras.SetAspect(e.renderer.AspectRatio())

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			e.teardown()
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			e.teardown()
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// createGlobalResources allocates one uniform buffer instance and one global
// descriptor set per frame slot.
func (e *Engine) createGlobalResources() error {
	frames := e.renderer.FramesInFlight()
	e.ubo = systems.NewGlobalUBO()

	buffer, err := renderer.NewBuffer(e.device, systems.GlobalUBOSize, frames,
		metadata.BUFFER_USAGE_UNIFORM_BUFFER,
		metadata.MEMORY_PROPERTY_HOST_VISIBLE,
		e.device.Limits().MinUniformBufferOffsetAlignment)
	if err != nil {
		return err
	}
	e.uboBuffer = buffer
	if err := e.uboBuffer.Map(metadata.WHOLE_SIZE, 0); err != nil {
		return err
	}

	layout, err := renderer.NewDescriptorSetLayoutBuilder(e.device).
		AddBinding(0, metadata.DESCRIPTOR_TYPE_UNIFORM_BUFFER, metadata.SHADER_STAGE_ALL_GRAPHICS, 1).
		Build()
	if err != nil {
		return err
	}
	e.globalSetLayout = layout

	pool, err := renderer.NewDescriptorPoolBuilder(e.device).
		SetMaxSets(frames).
		AddPoolSize(metadata.DESCRIPTOR_TYPE_UNIFORM_BUFFER, frames).
		Build()
	if err != nil {
		return err
	}
	e.globalPool = pool

	e.globalSets = make([]metadata.DescriptorSet, frames)
	for i := uint32(0); i < frames; i++ {
		info := e.uboBuffer.DescriptorInfoForIndex(i)
		set, err := renderer.NewDescriptorWriter(e.globalSetLayout, e.globalPool).
			WriteBuffer(0, &info).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build global descriptor set %d: %w", i, err)
		}
		e.globalSets[i] = set
	}
	return nil
}

func (e *Engine) destroyGlobalResources() {
	if e.globalPool != nil {
		e.globalPool.Destroy()
		e.globalPool = nil
	}
	e.globalSets = nil
	if e.globalSetLayout != nil {
		e.globalSetLayout.Destroy()
		e.globalSetLayout = nil
	}
	if e.uboBuffer != nil {
		e.uboBuffer.Destroy()
		e.uboBuffer = nil
	}
}

// Run ticks frames until the window closes or a quit event arrives.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runErr error
	for e.isRunning.Load() {
		if e.platform != nil && !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		e.pollConfig()

		if e.isSuspended {
			e.window.WaitEvents()
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		if err := e.tick(delta); err != nil {
			core.LogError("frame failed, shutting down: %s", err)
			runErr = err
			e.isRunning.Store(false)
			break
		}

		e.clock.Update()
		e.metrics.Update(e.clock.Elapsed() - currentTime)
	}
	return runErr
}

// tick advances the game by delta seconds and draws one frame.
func (e *Engine) tick(delta float64) error {
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return fmt.Errorf("game update failed: %w", err)
		}
	}
	return e.frame(delta)
}

func (e *Engine) frame(delta float64) error {
	frameTime := float32(math.Clamp(delta, 0, maxFrameTime))

	cmd, ok, err := e.renderer.BeginFrame()
	if err != nil {
		return err
	}
	if !ok {
		// the swapchain was rebuilt, try again next tick
		e.cameras.SetAspect(e.renderer.AspectRatio())
		return nil
	}

	slot := e.renderer.FrameIndex()
	aspect := e.renderer.AspectRatio()
	camera := e.cameras.GetDefault()
	camera.SetAspect(aspect)

	info := &systems.FrameInfo{
		FrameIndex:          slot,
		FrameTime:           frameTime,
		AspectRatio:         aspect,
		CommandBuffer:       cmd,
		GlobalDescriptorSet: e.globalSets[slot],
		UBO:                 e.ubo,
		Camera:              camera,
	}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(info); err != nil {
			return fmt.Errorf("game render failed: %w", err)
		}
	}

	e.ubo.SetCamera(camera)
	e.renderSystems.Update(info)
	if err := e.uboBuffer.WriteToIndex(e.ubo.Bytes(), slot); err != nil {
		return err
	}
	if err := e.uboBuffer.FlushIndex(slot); err != nil {
		return err
	}

	e.renderer.BeginSwapchainRenderPass(cmd)
	e.renderSystems.Render(info)
	e.renderer.EndSwapchainRenderPass(cmd)
	return e.renderer.EndFrame()
}

// pollConfig applies a reloaded config, if any, without blocking.
func (e *Engine) pollConfig() {
	if e.watcher == nil {
		return
	}
	select {
	case cfg, ok := <-e.watcher.Changes():
		if ok {
			e.applyConfig(cfg)
		}
	default:
	}
}

// applyConfig takes the settings that can change at runtime. Present
// modes take effect with a rebuild at the end of the next frame.
func (e *Engine) applyConfig(cfg *core.Config) {
	if level, err := core.ParseLogLevel(cfg.Application.LogLevel); err == nil {
		core.SetLogLevel(level)
	}

	current := &e.gameInstance.ApplicationConfig.Renderer
	if cfg.Renderer.FramesInFlight != current.FramesInFlight {
		core.LogWarn("frames_in_flight changed to %d, restart to apply", cfg.Renderer.FramesInFlight)
	}
	if cfg.Renderer.MSAASamples != current.MSAASamples {
		core.LogWarn("msaa_samples changed to %d, restart to apply", cfg.Renderer.MSAASamples)
	}
	if cfg.Renderer.ClearColor != current.ClearColor {
		e.renderer.SetClearColor(cfg.Renderer.ClearColor)
		current.ClearColor = cfg.Renderer.ClearColor
	}
	if !slices.Equal(cfg.Renderer.PresentModes, current.PresentModes) {
		modes, err := presentModes(cfg.Renderer.PresentModes)
		if err != nil {
			core.LogWarn("ignoring present modes: %s", err)
		} else {
			e.renderer.SetPresentModes(modes)
			e.renderer.RequestRebuild()
			current.PresentModes = cfg.Renderer.PresentModes
		}
	}

	ctx := core.EventContext{Payload: cfg}
	e.events.Fire(core.EVENT_CODE_CONFIG_RELOADED, e, ctx)
}

// AddRenderSystem appends rs; systems update and render in the order added.
func (e *Engine) AddRenderSystem(rs systems.RenderSystem) {
	e.renderSystems = append(e.renderSystems, rs)
}

func (e *Engine) Device() renderer.Device { return e.device }

// Context is nil when the engine was not started on a window system.
func (e *Engine) Context() *vulkan.Context { return e.context }

func (e *Engine) Renderer() *renderer.Renderer { return e.renderer }

func (e *Engine) Events() *core.EventBus { return e.events }

func (e *Engine) Cameras() *systems.CameraSystem { return e.cameras }

func (e *Engine) GlobalSetLayout() metadata.DescriptorSetLayout {
	return e.globalSetLayout.Handle()
}

func (e *Engine) Metrics() *core.FrameMetrics { return e.metrics }

func (e *Engine) Stage() Stage { return e.currentStage }

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// teardown releases everything initialize created, in reverse order.
func (e *Engine) teardown() {
	if e.device != nil {
		if err := e.device.WaitIdle(); err != nil {
			core.LogError("wait idle before shutdown: %s", err)
		}
	}
	e.renderSystems.Destroy()
	e.renderSystems = nil
	e.destroyGlobalResources()
	if e.renderer != nil {
		e.renderer.Destroy()
		e.renderer = nil
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)

	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			core.LogWarn(err.Error())
		}
		e.watcher = nil
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown: %s", err)
		}
	}
	e.teardown()
	if e.context != nil {
		e.context.Destroy()
		e.context = nil
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			return err
		}
	}
	e.events.Shutdown()
	e.currentStage = EngineStageUninitialized
	return nil
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	if core.Key(context.Data.U16[0]) == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, context core.EventContext) bool {
	width := context.Data.U32[0]
	height := context.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}
