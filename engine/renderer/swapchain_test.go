package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
	"github.com/vstokstad/vulkan-eng/engine/renderer/mock"
)

var windowExtent = metadata.Extent2D{Width: 1280, Height: 720}

func newTestSwapchain(t *testing.T, dev *mock.Device, config SwapchainConfig) *Swapchain {
	t.Helper()
	sc, err := NewSwapchain(dev, windowExtent, config, nil)
	require.NoError(t, err)
	t.Cleanup(sc.Destroy)
	return sc
}

// presentFrame records an empty command buffer and runs one acquire, submit
// and present on sc.
func presentFrame(t *testing.T, dev *mock.Device, sc *Swapchain, cb metadata.CommandBuffer) (uint32, Status) {
	t.Helper()
	index, status, err := sc.AcquireNextImage()
	require.NoError(t, err)
	if status == StatusOutOfDate {
		return index, status
	}
	require.NoError(t, dev.BeginCommandBuffer(cb))
	require.NoError(t, dev.EndCommandBuffer(cb))
	status, err = sc.SubmitCommandBuffers(cb, index)
	require.NoError(t, err)
	return index, status
}

func TestSwapchainDefaultSelection(t *testing.T) {
	dev := mock.NewDevice()
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())

	assert.Equal(t, SwapchainReady, sc.State())
	assert.Equal(t, metadata.FORMAT_B8G8R8A8_SRGB, sc.ImageFormat())
	assert.Equal(t, metadata.PRESENT_MODE_MAILBOX, sc.PresentMode())
	assert.Equal(t, metadata.FORMAT_D32_SFLOAT, sc.DepthFormat())
	assert.Equal(t, windowExtent, sc.Extent())
	assert.Equal(t, 3, sc.ImageCount())
	assert.Equal(t, uint32(2), sc.FramesInFlight())
	assert.Equal(t, metadata.SAMPLE_COUNT_1, sc.Samples())
	assert.InDelta(t, 1280.0/720.0, sc.ExtentAspectRatio(), 1e-6)

	infos := dev.SwapchainInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, metadata.SHARING_MODE_EXCLUSIVE, infos[0].SharingMode)
	assert.Empty(t, infos[0].QueueFamilies)
	assert.True(t, infos[0].OldSwapchain.IsNull())
	assert.True(t, infos[0].Clipped)
}

func TestSwapchainPresentModeFallsBackToFIFO(t *testing.T) {
	dev := mock.NewDevice()
	dev.PresentModes = []metadata.PresentMode{metadata.PRESENT_MODE_FIFO, metadata.PRESENT_MODE_IMMEDIATE}
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	assert.Equal(t, metadata.PRESENT_MODE_FIFO, sc.PresentMode())

	cfg := DefaultSwapchainConfig()
	cfg.PresentModes = []metadata.PresentMode{metadata.PRESENT_MODE_MAILBOX, metadata.PRESENT_MODE_IMMEDIATE}
	sc = newTestSwapchain(t, dev, cfg)
	assert.Equal(t, metadata.PRESENT_MODE_IMMEDIATE, sc.PresentMode())
}

func TestSwapchainFormatFallback(t *testing.T) {
	dev := mock.NewDevice()
	dev.Formats = []metadata.SurfaceFormat{
		{Format: metadata.FORMAT_R8G8B8A8_UNORM, ColorSpace: metadata.COLOR_SPACE_SRGB_NONLINEAR},
		{Format: metadata.FORMAT_B8G8R8A8_UNORM, ColorSpace: metadata.COLOR_SPACE_SRGB_NONLINEAR},
	}
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	assert.Equal(t, metadata.FORMAT_R8G8B8A8_UNORM, sc.ImageFormat())
}

func TestSwapchainNoFormats(t *testing.T) {
	dev := mock.NewDevice()
	dev.Formats = nil
	_, err := NewSwapchain(dev, windowExtent, DefaultSwapchainConfig(), nil)
	assert.ErrorIs(t, err, core.ErrNoSuitableFormat)
	assert.Empty(t, dev.LiveCounts())
}

func TestSwapchainExtentFromWindowWhenUndefined(t *testing.T) {
	dev := mock.NewDevice()
	dev.Capabilities.CurrentExtent = metadata.Extent2D{Width: ^uint32(0), Height: ^uint32(0)}
	dev.Capabilities.MinImageExtent = metadata.Extent2D{Width: 200, Height: 200}
	dev.Capabilities.MaxImageExtent = metadata.Extent2D{Width: 4096, Height: 4096}

	sc, err := NewSwapchain(dev, metadata.Extent2D{Width: 5000, Height: 100}, DefaultSwapchainConfig(), nil)
	require.NoError(t, err)
	defer sc.Destroy()
	assert.Equal(t, metadata.Extent2D{Width: 4096, Height: 200}, sc.Extent())
}

func TestImageCount(t *testing.T) {
	tests := []struct {
		min, max uint32
		want     uint32
	}{
		{2, 3, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 8, 2},
	}
	for _, tt := range tests {
		got := imageCount(metadata.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max})
		assert.Equal(t, tt.want, got, "min %d max %d", tt.min, tt.max)
	}
}

func TestSwapchainConcurrentSharingAcrossFamilies(t *testing.T) {
	dev := mock.NewDevice()
	dev.Families = metadata.QueueFamilies{Graphics: 0, Present: 2}
	newTestSwapchain(t, dev, DefaultSwapchainConfig())

	info := dev.SwapchainInfos()[0]
	assert.Equal(t, metadata.SHARING_MODE_CONCURRENT, info.SharingMode)
	assert.Equal(t, []uint32{0, 2}, info.QueueFamilies)
}

func TestSwapchainDepthFormatFallback(t *testing.T) {
	dev := mock.NewDevice()
	dev.DepthFormats = []metadata.Format{metadata.FORMAT_D24_UNORM_S8_UINT}
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	assert.Equal(t, metadata.FORMAT_D24_UNORM_S8_UINT, sc.DepthFormat())

	dev.DepthFormats = nil
	_, err := NewSwapchain(dev, windowExtent, DefaultSwapchainConfig(), nil)
	assert.ErrorIs(t, err, core.ErrNoSuitableFormat)
}

func TestSwapchainRenderPassWithoutMSAA(t *testing.T) {
	dev := mock.NewDevice()
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())

	passes := dev.RenderPassInfos()
	require.Len(t, passes, 1)
	rp := passes[0]
	require.Len(t, rp.Attachments, 2)
	assert.Equal(t, metadata.IMAGE_LAYOUT_PRESENT_SRC, rp.Attachments[0].FinalLayout)
	assert.Equal(t, metadata.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL, rp.Attachments[1].FinalLayout)
	require.Len(t, rp.Subpasses, 1)
	assert.Empty(t, rp.Subpasses[0].ResolveAttachments)

	require.Len(t, rp.Dependencies, 1)
	dep := rp.Dependencies[0]
	assert.Equal(t, metadata.SUBPASS_EXTERNAL, dep.SrcSubpass)
	assert.Equal(t, uint32(0), dep.DstSubpass)
	assert.Equal(t, metadata.ACCESS_COLOR_ATTACHMENT_WRITE|metadata.ACCESS_DEPTH_STENCIL_ATTACHMENT_WRITE, dep.DstAccessMask)

	fbs := dev.FramebufferInfos()
	require.Len(t, fbs, 3)
	for i, fb := range fbs {
		require.Len(t, fb.Attachments, 2)
		assert.Equal(t, sc.ImageView(i), fb.Attachments[0])
		assert.Equal(t, uint32(1280), fb.Width)
		assert.Equal(t, uint32(720), fb.Height)
	}
}

func TestSwapchainRenderPassWithMSAA(t *testing.T) {
	dev := mock.NewDevice()
	cfg := DefaultSwapchainConfig()
	cfg.Samples = 4
	sc := newTestSwapchain(t, dev, cfg)
	assert.Equal(t, metadata.SAMPLE_COUNT_4, sc.Samples())

	rp := dev.RenderPassInfos()[0]
	require.Len(t, rp.Attachments, 3)
	assert.Equal(t, metadata.SAMPLE_COUNT_4, rp.Attachments[0].Samples)
	assert.Equal(t, metadata.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL, rp.Attachments[0].FinalLayout)
	assert.Equal(t, metadata.SAMPLE_COUNT_4, rp.Attachments[1].Samples)
	assert.Equal(t, metadata.SAMPLE_COUNT_1, rp.Attachments[2].Samples)
	assert.Equal(t, metadata.ATTACHMENT_LOAD_OP_DONT_CARE, rp.Attachments[2].LoadOp)
	assert.Equal(t, metadata.ATTACHMENT_STORE_OP_STORE, rp.Attachments[2].StoreOp)
	assert.Equal(t, metadata.IMAGE_LAYOUT_PRESENT_SRC, rp.Attachments[2].FinalLayout)
	require.Len(t, rp.Subpasses[0].ResolveAttachments, 1)
	assert.Equal(t, uint32(2), rp.Subpasses[0].ResolveAttachments[0].Attachment)

	// one colour and one depth image per swapchain image
	assert.Len(t, dev.ImageInfos(), 6)
	for i, fb := range dev.FramebufferInfos() {
		require.Len(t, fb.Attachments, 3)
		assert.Equal(t, sc.ImageView(i), fb.Attachments[2])
	}
}

func TestSwapchainSamplesClampedToDevice(t *testing.T) {
	dev := mock.NewDevice()
	dev.DeviceLimits.FramebufferDepthSampleCounts = metadata.SAMPLE_COUNT_1 | metadata.SAMPLE_COUNT_2
	cfg := DefaultSwapchainConfig()
	cfg.Samples = 8
	sc := newTestSwapchain(t, dev, cfg)
	assert.Equal(t, metadata.SAMPLE_COUNT_2, sc.Samples())
}

func TestSwapchainConstructionFailureReleasesEverything(t *testing.T) {
	ops := []string{
		"CreateSwapchain",
		"CreateImageView",
		"CreateRenderPass",
		"CreateImage",
		"CreateFramebuffer",
		"CreateSemaphore",
		"CreateFence",
	}
	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			dev := mock.NewDevice()
			cfg := DefaultSwapchainConfig()
			cfg.Samples = 4
			dev.FailOn(op, 2)
			if op == "CreateSwapchain" || op == "CreateRenderPass" {
				dev.FailOn(op, 1)
			}
			sc, err := NewSwapchain(dev, windowExtent, cfg, nil)
			assert.Nil(t, sc)
			assert.ErrorIs(t, err, core.ErrDeviceObjectCreation)
			assert.Empty(t, dev.LiveCounts())
			assert.Empty(t, dev.Violations())
		})
	}
}

func TestSwapchainRejectsZeroFramesInFlight(t *testing.T) {
	dev := mock.NewDevice()
	cfg := DefaultSwapchainConfig()
	cfg.FramesInFlight = 0
	_, err := NewSwapchain(dev, windowExtent, cfg, nil)
	assert.Error(t, err)
}

func TestSwapchainFrameCycle(t *testing.T) {
	dev := mock.NewDevice()
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	cbs, err := dev.AllocateCommandBuffers(2)
	require.NoError(t, err)

	var images []uint32
	for i := 0; i < 6; i++ {
		assert.Equal(t, uint32(i%2), sc.CurrentFrame())
		index, status := presentFrame(t, dev, sc, cbs[i%2])
		assert.Equal(t, StatusSuccess, status)
		images = append(images, index)
	}
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 2}, images)
	assert.Equal(t, 6, dev.Submits())
	assert.Equal(t, 6, dev.Presents())
	assert.Empty(t, dev.Violations())
}

func TestSwapchainOutOfDateMarksStale(t *testing.T) {
	dev := mock.NewDevice()
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	dev.AcquireScript = []metadata.Result{metadata.RESULT_ERROR_OUT_OF_DATE}

	_, status, err := sc.AcquireNextImage()
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfDate, status)
	assert.Equal(t, SwapchainStale, sc.State())

	// stale instances never reach the device again
	calls := dev.Calls("AcquireNextImage")
	_, status, err = sc.AcquireNextImage()
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfDate, status)
	assert.Equal(t, calls, dev.Calls("AcquireNextImage"))
}

func TestSwapchainPresentResults(t *testing.T) {
	dev := mock.NewDevice()
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	cbs, err := dev.AllocateCommandBuffers(2)
	require.NoError(t, err)

	dev.PresentScript = []metadata.Result{metadata.RESULT_SUBOPTIMAL, metadata.RESULT_ERROR_OUT_OF_DATE}
	_, status := presentFrame(t, dev, sc, cbs[0])
	assert.Equal(t, StatusSuboptimal, status)
	assert.Equal(t, SwapchainReady, sc.State())

	_, status = presentFrame(t, dev, sc, cbs[1])
	assert.Equal(t, StatusOutOfDate, status)
	assert.Equal(t, SwapchainStale, sc.State())
	assert.Equal(t, uint32(0), sc.CurrentFrame())
}

func TestSwapchainAcquireErrorIsReported(t *testing.T) {
	dev := mock.NewDevice()
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	dev.AcquireScript = []metadata.Result{metadata.RESULT_ERROR_SURFACE_LOST}

	_, status, err := sc.AcquireNextImage()
	assert.Equal(t, StatusError, status)
	assert.ErrorIs(t, err, metadata.RESULT_ERROR_SURFACE_LOST)
}

func TestSwapchainSubmitFailure(t *testing.T) {
	dev := mock.NewDevice()
	sc := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	cbs, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)

	index, _, err := sc.AcquireNextImage()
	require.NoError(t, err)
	dev.FailOn("QueueSubmit", 1)
	status, err := sc.SubmitCommandBuffers(cbs[0], index)
	assert.Equal(t, StatusError, status)
	assert.ErrorIs(t, err, metadata.RESULT_ERROR_DEVICE_LOST)
}

func TestSwapchainFailedSubmitLeavesNoFenceToWaitOn(t *testing.T) {
	dev := mock.NewDevice()
	config := DefaultSwapchainConfig()
	config.FramesInFlight = 1
	sc := newTestSwapchain(t, dev, config)
	cbs, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)

	first, status := presentFrame(t, dev, sc, cbs[0])
	require.Equal(t, StatusSuccess, status)
	fence := sc.frames[0].inFlight
	require.True(t, fence.Submitted())
	assert.Same(t, fence, sc.imagesInFlight[first])

	index, _, err := sc.AcquireNextImage()
	require.NoError(t, err)
	require.NotEqual(t, first, index)
	require.NoError(t, dev.BeginCommandBuffer(cbs[0]))
	require.NoError(t, dev.EndCommandBuffer(cbs[0]))
	dev.FailOn("QueueSubmit", 1)
	status, err = sc.SubmitCommandBuffers(cbs[0], index)
	require.Error(t, err)
	assert.Equal(t, StatusError, status)

	// the reset fence is unsignaled with nothing pending, waiting would hang
	assert.False(t, fence.Submitted())
	assert.Nil(t, sc.imagesInFlight[index])
	waits := dev.FenceWaits(fence.Handle)
	require.NoError(t, fence.Wait(metadata.TIMEOUT_INFINITE))
	assert.Equal(t, waits, dev.FenceWaits(fence.Handle))
	assert.Empty(t, dev.Violations())
}

func TestSwapchainChainedRebuild(t *testing.T) {
	dev := mock.NewDevice()
	baseline := dev.LiveCounts()
	first, err := NewSwapchain(dev, windowExtent, DefaultSwapchainConfig(), nil)
	require.NoError(t, err)
	oldHandle := first.Handle()

	dev.Capabilities.CurrentExtent = metadata.Extent2D{Width: 800, Height: 600}
	second, err := NewSwapchain(dev, metadata.Extent2D{Width: 800, Height: 600}, DefaultSwapchainConfig(), first)
	require.NoError(t, err)
	assert.True(t, first.CompareSwapFormats(second))
	first.Destroy()

	assert.Equal(t, metadata.Extent2D{Width: 800, Height: 600}, second.Extent())
	assert.Equal(t, 2, dev.Calls("SurfaceCapabilities"))
	assert.Equal(t, 1, dev.Calls("SurfaceFormats"))
	assert.Equal(t, 1, dev.Calls("SurfacePresentModes"))
	assert.Equal(t, oldHandle, dev.SwapchainInfos()[1].OldSwapchain)
	assert.False(t, dev.IsLive(oldHandle))
	assert.NotEqual(t, first.ID(), second.ID())

	second.Destroy()
	assert.Equal(t, baseline, dev.LiveCounts())
	assert.Empty(t, dev.Violations())
}

func TestSwapchainCompareFormats(t *testing.T) {
	dev := mock.NewDevice()
	a := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	dev.DepthFormats = []metadata.Format{metadata.FORMAT_D24_UNORM_S8_UINT}
	b := newTestSwapchain(t, dev, DefaultSwapchainConfig())
	assert.False(t, a.CompareSwapFormats(b))
}

func TestSwapchainDestroyIsIdempotent(t *testing.T) {
	dev := mock.NewDevice()
	sc, err := NewSwapchain(dev, windowExtent, DefaultSwapchainConfig(), nil)
	require.NoError(t, err)
	cbs, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)
	presentFrame(t, dev, sc, cbs[0])

	sc.Destroy()
	sc.Destroy()
	assert.Equal(t, SwapchainDestroyed, sc.State())
	assert.Equal(t, map[mock.Kind]int{mock.KindCommandBuffer: 1}, dev.LiveCounts())
	assert.Empty(t, dev.Violations())
	assert.Panics(t, func() { _, _, _ = sc.AcquireNextImage() })
}
