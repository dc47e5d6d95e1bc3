package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
	"github.com/vstokstad/vulkan-eng/engine/renderer/mock"
	"github.com/vstokstad/vulkan-eng/engine/systems"
)

type recordingSystem struct {
	updates   []systems.FrameInfo
	renders   int
	destroyed bool
}

func (s *recordingSystem) Update(frame *systems.FrameInfo) {
	s.updates = append(s.updates, *frame)
	frame.UBO.NumLights = int32(len(s.updates))
}

func (s *recordingSystem) Render(frame *systems.FrameInfo) { s.renders++ }
func (s *recordingSystem) Destroy()                        { s.destroyed = true }

func newTestEngine(t *testing.T, game *Game) (*Engine, *mock.Device, *mock.Window) {
	t.Helper()
	appConfig, err := NewApplicationConfig("", core.DefaultConfig())
	require.NoError(t, err)
	game.ApplicationConfig = appConfig

	e := newEngine(game, core.NewEventBus())
	e.registerEvents()
	dev := mock.NewDevice()
	win := mock.NewWindow(appConfig.StartWidth, appConfig.StartHeight)
	require.NoError(t, e.initialize(dev, win))
	return e, dev, win
}

func TestEngineInitializeBuildsPerSlotResources(t *testing.T) {
	e, dev, _ := newTestEngine(t, &Game{})
	defer e.Shutdown()

	assert.Equal(t, EngineStageInitialized, e.Stage())
	require.Len(t, e.globalSets, 2)
	assert.NotEqual(t, e.globalSets[0], e.globalSets[1])
	assert.Equal(t, uint32(2), e.uboBuffer.InstanceCount())
	assert.Equal(t, uint64(768), e.uboBuffer.AlignmentSize())

	writes := dev.Writes()
	require.Len(t, writes, 2)
	for i, w := range writes {
		require.Len(t, w.BufferInfo, 1)
		assert.Equal(t, uint64(i)*768, w.BufferInfo[0].Offset)
		assert.Equal(t, e.uboBuffer.Handle(), w.BufferInfo[0].Buffer)
	}
}

func TestEngineFrameUploadsGlobalUBOToCurrentSlot(t *testing.T) {
	rs := &recordingSystem{}
	game := &Game{
		FnInitialize: func(engine *Engine) error {
			engine.AddRenderSystem(rs)
			return nil
		},
	}
	e, dev, _ := newTestEngine(t, game)
	defer e.Shutdown()

	for i := 0; i < 4; i++ {
		require.NoError(t, e.tick(0.016))
	}
	require.Len(t, rs.updates, 4)
	assert.Equal(t, 4, rs.renders)
	for i, frame := range rs.updates {
		slot := uint32(i % 2)
		assert.Equal(t, slot, frame.FrameIndex)
		assert.Equal(t, e.globalSets[slot], frame.GlobalDescriptorSet)
		assert.InDelta(t, 0.016, frame.FrameTime, 1e-6)
	}

	// the last frame used slot 1, the device must see exactly those bytes
	got := dev.ReadDevice(e.uboBuffer.Memory(), 768, systems.GlobalUBOSize)
	assert.Equal(t, e.ubo.Bytes(), got)
	assert.Equal(t, int32(4), e.ubo.NumLights)
	assert.Empty(t, dev.Violations())
}

func TestEngineClampsLongFrames(t *testing.T) {
	rs := &recordingSystem{}
	game := &Game{FnInitialize: func(engine *Engine) error {
		engine.AddRenderSystem(rs)
		return nil
	}}
	e, _, _ := newTestEngine(t, game)
	defer e.Shutdown()

	require.NoError(t, e.tick(3.0))
	require.Len(t, rs.updates, 1)
	assert.Equal(t, float32(0.25), rs.updates[0].FrameTime)
}

func TestEngineShutdownReleasesEverything(t *testing.T) {
	rs := &recordingSystem{}
	shutdown := false
	game := &Game{
		FnInitialize: func(engine *Engine) error {
			engine.AddRenderSystem(rs)
			return nil
		},
		FnShutdown: func() error {
			shutdown = true
			return nil
		},
	}
	e, dev, _ := newTestEngine(t, game)
	for i := 0; i < 3; i++ {
		require.NoError(t, e.tick(0.016))
	}
	require.NoError(t, e.Shutdown())

	assert.True(t, shutdown)
	assert.True(t, rs.destroyed)
	assert.Empty(t, dev.LiveCounts())
	assert.Empty(t, dev.Violations())
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	assert.False(t, e.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{}))
}

func TestEngineRunStopsOnQuitEvent(t *testing.T) {
	updates := 0
	var e *Engine
	game := &Game{
		FnUpdate: func(deltaTime float64) error {
			updates++
			if updates == 3 {
				e.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
			}
			return nil
		},
	}
	e, dev, _ := newTestEngine(t, game)
	defer e.Shutdown()

	require.NoError(t, e.Run())
	assert.Equal(t, 3, updates)
	assert.Equal(t, 3, dev.Presents())
}

func TestEngineEscapeFiresQuit(t *testing.T) {
	e, _, _ := newTestEngine(t, &Game{})
	defer e.Shutdown()

	quit := false
	e.Events().Register(core.EVENT_CODE_APPLICATION_QUIT, t, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		quit = true
		return false
	})

	ctx := core.EventContext{}
	ctx.Data.U16[0] = uint16(core.KEY_A)
	e.Events().Fire(core.EVENT_CODE_KEY_PRESSED, nil, ctx)
	assert.True(t, e.isRunning.Load())

	ctx.Data.U16[0] = uint16(core.KEY_ESCAPE)
	assert.True(t, e.Events().Fire(core.EVENT_CODE_KEY_PRESSED, nil, ctx))
	assert.False(t, e.isRunning.Load())
	assert.False(t, quit, "the engine handles quit before later listeners")
}

func TestEngineMinimizeSuspendsAndRestoreResumes(t *testing.T) {
	var sizes [][2]uint32
	game := &Game{FnOnResize: func(width, height uint32) error {
		sizes = append(sizes, [2]uint32{width, height})
		return nil
	}}
	e, _, _ := newTestEngine(t, game)
	defer e.Shutdown()

	resize := func(w, h uint32) {
		ctx := core.EventContext{}
		ctx.Data.U32[0] = w
		ctx.Data.U32[1] = h
		e.Events().Fire(core.EVENT_CODE_RESIZED, nil, ctx)
	}
	resize(0, 0)
	assert.True(t, e.isSuspended)
	resize(800, 600)
	assert.False(t, e.isSuspended)

	require.Len(t, sizes, 2)
	assert.Equal(t, [2]uint32{1280, 720}, sizes[0])
	assert.Equal(t, [2]uint32{800, 600}, sizes[1])
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
}

func TestEngineApplyConfigRebuildsWithNewPresentMode(t *testing.T) {
	e, dev, _ := newTestEngine(t, &Game{})
	defer e.Shutdown()

	require.NoError(t, e.tick(0.016))
	builds := len(dev.SwapchainInfos())
	assert.Equal(t, metadata.PRESENT_MODE_MAILBOX, dev.SwapchainInfos()[builds-1].PresentMode)

	reloaded := 0
	e.Events().Register(core.EVENT_CODE_CONFIG_RELOADED, t, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		_, ok := data.Payload.(*core.Config)
		assert.True(t, ok)
		reloaded++
		return true
	})

	cfg := core.DefaultConfig()
	cfg.Renderer.PresentModes = []string{"fifo"}
	cfg.Renderer.ClearColor = [4]float32{0.2, 0.3, 0.4, 1.0}
	cfg.Renderer.FramesInFlight = 3
	e.applyConfig(cfg)
	assert.Equal(t, 1, reloaded)
	assert.Equal(t, [4]float32{0.2, 0.3, 0.4, 1.0}, e.Renderer().ClearColor())

	// the rebuild happens at the end of the next frame
	assert.Len(t, dev.SwapchainInfos(), builds)
	require.NoError(t, e.tick(0.016))
	require.Len(t, dev.SwapchainInfos(), builds+1)
	assert.Equal(t, metadata.PRESENT_MODE_FIFO, dev.SwapchainInfos()[builds].PresentMode)
	assert.Equal(t, uint32(2), e.Renderer().FramesInFlight())
	assert.Empty(t, dev.Violations())
}

func TestInitializeFailureReleasesRenderer(t *testing.T) {
	appConfig, err := NewApplicationConfig("", core.DefaultConfig())
	require.NoError(t, err)
	game := &Game{
		ApplicationConfig: appConfig,
		FnInitialize: func(engine *Engine) error {
			return core.ErrUnknown
		},
	}
	e := newEngine(game, core.NewEventBus())
	dev := mock.NewDevice()
	err = e.initialize(dev, mock.NewWindow(1280, 720))
	assert.ErrorIs(t, err, core.ErrUnknown)
	assert.Empty(t, dev.LiveCounts())
}

func TestApplicationConfigSwapchainConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Renderer.PresentModes = []string{"immediate", "fifo_relaxed"}
	cfg.Renderer.FramesInFlight = 3
	cfg.Renderer.MSAASamples = 8
	appConfig, err := NewApplicationConfig("config.toml", cfg)
	require.NoError(t, err)

	sc, err := appConfig.SwapchainConfig()
	require.NoError(t, err)
	assert.Equal(t, []metadata.PresentMode{metadata.PRESENT_MODE_IMMEDIATE, metadata.PRESENT_MODE_FIFO_RELAXED}, sc.PresentModes)
	assert.Equal(t, uint32(3), sc.FramesInFlight)
	assert.Equal(t, uint32(8), sc.Samples)
	assert.Equal(t, cfg.Renderer.ClearColor, sc.ClearColor)

	appConfig.Renderer.PresentModes = []string{"vsync"}
	_, err = appConfig.SwapchainConfig()
	assert.Error(t, err)
}
