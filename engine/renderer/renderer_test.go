package renderer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
	"github.com/vstokstad/vulkan-eng/engine/renderer/mock"
)

// newTestRenderer builds a renderer whose surface follows the window size.
func newTestRenderer(t *testing.T, framesInFlight, images uint32) (*Renderer, *mock.Device, *mock.Window) {
	t.Helper()
	dev := mock.NewDevice()
	dev.Capabilities.CurrentExtent = metadata.Extent2D{Width: ^uint32(0), Height: ^uint32(0)}
	dev.Capabilities.MinImageCount = images - 1
	dev.Capabilities.MaxImageCount = images
	win := mock.NewWindow(1280, 720)

	cfg := DefaultSwapchainConfig()
	cfg.FramesInFlight = framesInFlight
	r, err := NewRenderer(dev, win, cfg)
	require.NoError(t, err)
	require.Equal(t, int(images), r.Swapchain().ImageCount())
	return r, dev, win
}

// runFrame drives one full frame and reports whether it was rendered.
func runFrame(t *testing.T, r *Renderer) bool {
	t.Helper()
	cmd, ok, err := r.BeginFrame()
	require.NoError(t, err)
	if !ok {
		return false
	}
	r.BeginSwapchainRenderPass(cmd)
	r.EndSwapchainRenderPass(cmd)
	require.NoError(t, r.EndFrame())
	return true
}

func TestBeginFrameNeverWaitsOnUnsubmittedFence(t *testing.T) {
	for n := uint32(1); n <= 3; n++ {
		for k := n; k <= 4; k++ {
			t.Run(fmt.Sprintf("frames=%d/images=%d", n, k), func(t *testing.T) {
				r, dev, _ := newTestRenderer(t, n, k)
				defer r.Destroy()
				for i := 0; i < 12; i++ {
					assert.True(t, runFrame(t, r))
				}
				assert.Empty(t, dev.Violations())
			})
		}
	}
}

func TestFramesFollowAcquisitionOrder(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()

	slot0 := r.Swapchain().FrameFence(0)
	var frames []uint32
	slot0Waits := 0
	for i := 0; i < 10; i++ {
		before := dev.FenceWaits(slot0)
		cmd, ok, err := r.BeginFrame()
		slot0Waits += dev.FenceWaits(slot0) - before
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, uint32(i%2), r.FrameIndex())

		frames = append(frames, r.ImageIndex())
		r.BeginSwapchainRenderPass(cmd)
		r.EndSwapchainRenderPass(cmd)
		require.NoError(t, r.EndFrame())
	}

	assert.Len(t, frames, 10)
	assert.Equal(t, dev.Acquired(), frames)
	// frames 2, 4, 6 and 8 wait for slot 0
	assert.Equal(t, 4, slot0Waits)
	assert.Equal(t, 10, dev.Presents())
	assert.Empty(t, dev.Violations())
}

func TestRebuildAfterOutOfDateAcquire(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()
	require.True(t, runFrame(t, r))
	require.True(t, runFrame(t, r))

	baseline := dev.LiveCounts()
	old := r.Swapchain()
	oldHandle, oldPass := old.Handle(), old.RenderPass()

	dev.AcquireScript = []metadata.Result{metadata.RESULT_ERROR_OUT_OF_DATE}
	cmd, ok, err := r.BeginFrame()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, cmd.IsNull())
	assert.False(t, r.IsFrameInProgress())

	assert.NotSame(t, old, r.Swapchain())
	assert.Equal(t, SwapchainDestroyed, old.State())
	assert.False(t, dev.IsLive(oldHandle))
	assert.False(t, dev.IsLive(oldPass))
	assert.Equal(t, baseline, dev.LiveCounts())

	assert.True(t, runFrame(t, r))
	assert.Empty(t, dev.Violations())
}

func TestSuboptimalAcquireDefersRebuild(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()

	first := r.Swapchain()
	dev.AcquireScript = []metadata.Result{metadata.RESULT_SUBOPTIMAL}
	cmd, ok, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, first, r.Swapchain())

	r.BeginSwapchainRenderPass(cmd)
	r.EndSwapchainRenderPass(cmd)
	require.NoError(t, r.EndFrame())
	assert.NotSame(t, first, r.Swapchain())
	assert.Equal(t, 1, dev.Presents())

	// the flag is cleared by the rebuild
	second := r.Swapchain()
	assert.True(t, runFrame(t, r))
	assert.Same(t, second, r.Swapchain())
	assert.Empty(t, dev.Violations())
}

func TestPresentOutOfDateRebuildsAfterPresent(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()

	first := r.Swapchain()
	dev.PresentScript = []metadata.Result{metadata.RESULT_ERROR_OUT_OF_DATE}
	assert.True(t, runFrame(t, r))
	assert.NotSame(t, first, r.Swapchain())
	assert.True(t, runFrame(t, r))
	assert.Empty(t, dev.Violations())
}

func TestResizeDuringFrameRebuildsAtEndFrame(t *testing.T) {
	r, dev, win := newTestRenderer(t, 2, 3)
	defer r.Destroy()

	cmd, ok, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
	win.Resize(800, 600)
	r.BeginSwapchainRenderPass(cmd)
	r.EndSwapchainRenderPass(cmd)
	require.NoError(t, r.EndFrame())

	assert.Equal(t, metadata.Extent2D{Width: 800, Height: 600}, r.Extent())
	assert.InDelta(t, 800.0/600.0, r.AspectRatio(), 1e-6)
	assert.True(t, runFrame(t, r))
	assert.Empty(t, dev.Violations())
}

func TestResizeBetweenFramesSkipsOneFrame(t *testing.T) {
	r, dev, win := newTestRenderer(t, 2, 3)
	defer r.Destroy()
	require.True(t, runFrame(t, r))

	win.Resize(1024, 768)
	assert.False(t, runFrame(t, r))
	assert.Equal(t, metadata.Extent2D{Width: 1024, Height: 768}, r.Extent())
	assert.True(t, runFrame(t, r))
	assert.Empty(t, dev.Violations())
}

func TestZeroExtentStallsUntilRestored(t *testing.T) {
	r, dev, win := newTestRenderer(t, 2, 3)
	defer r.Destroy()
	require.True(t, runFrame(t, r))

	win.Resize(0, 0)
	win.QueueEvent(func(w *mock.Window) {})
	win.QueueEvent(func(w *mock.Window) { w.Resize(640, 480) })

	assert.False(t, runFrame(t, r))
	assert.Equal(t, 2, win.Waits())
	assert.Equal(t, metadata.Extent2D{Width: 640, Height: 480}, r.Extent())
	assert.True(t, runFrame(t, r))
	assert.Empty(t, dev.Violations())
}

func TestNewRendererWaitsForNonZeroExtent(t *testing.T) {
	dev := mock.NewDevice()
	win := mock.NewWindow(0, 0)
	win.QueueEvent(func(w *mock.Window) { w.Resize(1280, 720) })

	r, err := NewRenderer(dev, win, DefaultSwapchainConfig())
	require.NoError(t, err)
	defer r.Destroy()
	assert.Equal(t, 1, win.Waits())
	assert.Equal(t, uint32(2), r.FramesInFlight())
}

func TestNewRendererFailureReleasesSwapchain(t *testing.T) {
	dev := mock.NewDevice()
	dev.FailOn("AllocateCommandBuffers", 1)
	_, err := NewRenderer(dev, mock.NewWindow(1280, 720), DefaultSwapchainConfig())
	assert.Error(t, err)
	assert.Empty(t, dev.LiveCounts())

	cfg := DefaultSwapchainConfig()
	cfg.FramesInFlight = core.MaxFramesInFlight + 1
	_, err = NewRenderer(dev, mock.NewWindow(1280, 720), cfg)
	assert.Error(t, err)
}

func TestFormatMismatchOnRebuildIsFatal(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()
	require.True(t, runFrame(t, r))

	current := r.Swapchain()
	dev.DepthFormats = []metadata.Format{metadata.FORMAT_D24_UNORM_S8_UINT}
	r.RequestRebuild()

	cmd, ok, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
	r.BeginSwapchainRenderPass(cmd)
	r.EndSwapchainRenderPass(cmd)
	err = r.EndFrame()
	assert.ErrorIs(t, err, core.ErrSwapchainFormatMismatch)
	assert.Same(t, current, r.Swapchain())
	assert.Equal(t, 1, dev.Live(mock.KindSwapchain))
}

func TestRequestRebuildAppliesPresentModes(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()
	assert.Equal(t, metadata.PRESENT_MODE_MAILBOX, r.Swapchain().PresentMode())

	r.SetPresentModes([]metadata.PresentMode{metadata.PRESENT_MODE_FIFO})
	r.RequestRebuild()
	assert.True(t, runFrame(t, r))
	assert.Equal(t, metadata.PRESENT_MODE_FIFO, r.Swapchain().PresentMode())
	assert.Equal(t, []metadata.PresentMode{metadata.PRESENT_MODE_FIFO}, r.PresentModes())
	assert.Empty(t, dev.Violations())
}

func TestSwapchainRenderPassRecording(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()
	r.SetClearColor([4]float32{0.1, 0.2, 0.3, 1})

	cmd, ok, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cmd, r.CurrentCommandBuffer())
	r.BeginSwapchainRenderPass(cmd)
	r.EndSwapchainRenderPass(cmd)
	require.NoError(t, r.EndFrame())

	cmds := dev.Commands()
	require.Len(t, cmds, 4)
	assert.Equal(t, "BeginRenderPass", cmds[0].Name)
	assert.Equal(t, "SetViewport", cmds[1].Name)
	assert.Equal(t, "SetScissor", cmds[2].Name)
	assert.Equal(t, "EndRenderPass", cmds[3].Name)

	begin := cmds[0].Args.(metadata.RenderPassBeginInfo)
	assert.Equal(t, r.RenderPass(), begin.RenderPass)
	assert.Equal(t, r.Swapchain().Framebuffer(int(r.ImageIndex())), begin.Framebuffer)
	assert.Equal(t, metadata.Rect2D{Extent: r.Extent()}, begin.RenderArea)
	require.Len(t, begin.ClearValues, 2)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, begin.ClearValues[0].Color)
	assert.True(t, begin.ClearValues[1].IsDepthStencil())
	assert.Equal(t, float32(1), begin.ClearValues[1].Depth)
	assert.Equal(t, uint32(0), begin.ClearValues[1].Stencil)

	vp := cmds[1].Args.(metadata.Viewport)
	assert.Equal(t, metadata.Viewport{Width: 1280, Height: 720, MinDepth: 0, MaxDepth: 1}, vp)
	assert.Equal(t, metadata.Rect2D{Extent: metadata.Extent2D{Width: 1280, Height: 720}}, cmds[2].Args)
}

func TestOutOfTurnCallsPanic(t *testing.T) {
	r, _, _ := newTestRenderer(t, 2, 3)
	defer r.Destroy()

	assert.Panics(t, func() { _ = r.EndFrame() })
	assert.Panics(t, func() { r.FrameIndex() })
	assert.Panics(t, func() { r.CurrentCommandBuffer() })

	cmd, ok, err := r.BeginFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Panics(t, func() { _, _, _ = r.BeginFrame() })
	assert.Panics(t, func() { r.BeginSwapchainRenderPass(cmd + 1000) })
	assert.Panics(t, func() { r.EndSwapchainRenderPass(cmd + 1000) })

	r.BeginSwapchainRenderPass(cmd)
	r.EndSwapchainRenderPass(cmd)
	require.NoError(t, r.EndFrame())
}

func TestRendererDestroyReleasesEverything(t *testing.T) {
	r, dev, _ := newTestRenderer(t, 3, 4)
	for i := 0; i < 5; i++ {
		require.True(t, runFrame(t, r))
	}
	r.Destroy()
	assert.Empty(t, dev.LiveCounts())
	assert.Empty(t, dev.Violations())
}
