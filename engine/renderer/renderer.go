package renderer

import (
	"fmt"
	"sync/atomic"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// Renderer drives the per-frame protocol on top of a Swapchain:
// BeginFrame, BeginSwapchainRenderPass, EndSwapchainRenderPass, EndFrame.
// It rebuilds the swapchain whenever the surface stops matching the window.
type Renderer struct {
	device    Device
	window    Window
	config    SwapchainConfig
	swapchain *Swapchain

	commandBuffers []metadata.CommandBuffer

	currentImageIndex uint32
	currentFrameIndex uint32
	isFrameStarted    bool

	// set when an acquire reported suboptimal
	rebuildPending bool
	// written from the window callback and from the config watcher
	resized          atomic.Bool
	rebuildRequested atomic.Bool
}

func NewRenderer(device Device, window Window, config SwapchainConfig) (*Renderer, error) {
	if config.FramesInFlight == 0 || config.FramesInFlight > core.MaxFramesInFlight {
		err := fmt.Errorf("frames in flight must be in [1, %d], got %d", core.MaxFramesInFlight, config.FramesInFlight)
		core.LogError(err.Error())
		return nil, err
	}
	r := &Renderer{
		device: device,
		window: window,
		config: config,
	}
	window.OnResize(func(width, height uint32) {
		core.LogDebug("window resized to %dx%d", width, height)
		r.resized.Store(true)
	})

	if err := r.recreateSwapchain(); err != nil {
		return nil, err
	}
	cbs, err := device.AllocateCommandBuffers(config.FramesInFlight)
	if err != nil {
		err = fmt.Errorf("failed to allocate command buffers: %w", err)
		core.LogError(err.Error())
		r.swapchain.Destroy()
		r.swapchain = nil
		return nil, err
	}
	r.commandBuffers = cbs
	return r, nil
}

func (r *Renderer) waitForExtent() metadata.Extent2D {
	extent := r.window.Extent()
	for extent.IsZero() {
		r.window.WaitEvents()
		extent = r.window.Extent()
	}
	return extent
}

func (r *Renderer) recreateSwapchain() error {
	extent := r.waitForExtent()
	if err := r.device.WaitIdle(); err != nil {
		err = fmt.Errorf("failed to wait for device idle: %w", err)
		core.LogError(err.Error())
		return err
	}

	old := r.swapchain
	sc, err := NewSwapchain(r.device, extent, r.config, old)
	if err != nil {
		return err
	}
	if old != nil {
		if !old.CompareSwapFormats(sc) {
			sc.Destroy()
			err := fmt.Errorf("swapchain image or depth format changed: %w", core.ErrSwapchainFormatMismatch)
			core.LogError(err.Error())
			return err
		}
		old.Destroy()
	}
	r.swapchain = sc
	r.resized.Store(false)
	return nil
}

// BeginFrame acquires the next image and begins recording into the current
// slot's command buffer. It returns ok == false when the frame was skipped
// because the swapchain had to be rebuilt.
func (r *Renderer) BeginFrame() (metadata.CommandBuffer, bool, error) {
	core.Assert(!r.isFrameStarted, "can't call BeginFrame while already in progress")

	if r.resized.Load() {
		r.swapchain.MarkStale()
	}
	imageIndex, status, err := r.swapchain.AcquireNextImage()
	switch status {
	case StatusOutOfDate:
		if err := r.recreateSwapchain(); err != nil {
			return metadata.NullHandle, false, err
		}
		r.rebuildPending = false
		return metadata.NullHandle, false, nil
	case StatusSuboptimal:
		r.rebuildPending = true
	case StatusError:
		return metadata.NullHandle, false, err
	}

	r.currentImageIndex = imageIndex
	r.currentFrameIndex = r.swapchain.CurrentFrame()
	r.isFrameStarted = true

	cmd := r.commandBuffers[r.currentFrameIndex]
	if err := r.device.BeginCommandBuffer(cmd); err != nil {
		err = fmt.Errorf("failed to begin recording command buffer: %w", err)
		core.LogError(err.Error())
		r.isFrameStarted = false
		return metadata.NullHandle, false, err
	}
	return cmd, true, nil
}

// EndFrame finishes recording, submits and presents. The swapchain is
// rebuilt afterwards when presentation or the window asked for it.
func (r *Renderer) EndFrame() error {
	core.Assert(r.isFrameStarted, "can't call EndFrame while frame is not in progress")

	cmd := r.CurrentCommandBuffer()
	r.isFrameStarted = false
	if err := r.device.EndCommandBuffer(cmd); err != nil {
		err = fmt.Errorf("failed to record command buffer: %w", err)
		core.LogError(err.Error())
		return err
	}

	status, err := r.swapchain.SubmitCommandBuffers(cmd, r.currentImageIndex)
	if status == StatusError {
		return err
	}

	resized := r.resized.Swap(false)
	requested := r.rebuildRequested.Swap(false)
	if status == StatusOutOfDate || status == StatusSuboptimal || resized || requested || r.rebuildPending {
		r.rebuildPending = false
		return r.recreateSwapchain()
	}
	return nil
}

func (r *Renderer) BeginSwapchainRenderPass(cmd metadata.CommandBuffer) {
	core.Assert(r.isFrameStarted, "can't call BeginSwapchainRenderPass if frame is not in progress")
	core.Assert(cmd == r.CurrentCommandBuffer(), "can't begin render pass on command buffer from a different frame")

	extent := r.swapchain.Extent()
	r.device.CmdBeginRenderPass(cmd, metadata.RenderPassBeginInfo{
		RenderPass:  r.swapchain.RenderPass(),
		Framebuffer: r.swapchain.Framebuffer(int(r.currentImageIndex)),
		RenderArea:  metadata.Rect2D{Extent: extent},
		ClearValues: []metadata.ClearValue{
			metadata.ClearColor(r.config.ClearColor[0], r.config.ClearColor[1], r.config.ClearColor[2], r.config.ClearColor[3]),
			metadata.ClearDepthStencil(r.config.ClearDepth, r.config.ClearStencil),
		},
	})
	r.device.CmdSetViewport(cmd, metadata.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	})
	r.device.CmdSetScissor(cmd, metadata.Rect2D{Extent: extent})
}

func (r *Renderer) EndSwapchainRenderPass(cmd metadata.CommandBuffer) {
	core.Assert(r.isFrameStarted, "can't call EndSwapchainRenderPass if frame is not in progress")
	core.Assert(cmd == r.CurrentCommandBuffer(), "can't end render pass on command buffer from a different frame")
	r.device.CmdEndRenderPass(cmd)
}

// RequestRebuild schedules a swapchain rebuild after the next present.
// It may be called from any goroutine.
func (r *Renderer) RequestRebuild() {
	r.rebuildRequested.Store(true)
}

// SetPresentModes replaces the present mode preference used by the next rebuild.
func (r *Renderer) SetPresentModes(modes []metadata.PresentMode) {
	r.config.PresentModes = modes
}

func (r *Renderer) SetClearColor(rgba [4]float32) {
	r.config.ClearColor = rgba
}

func (r *Renderer) FrameIndex() uint32 {
	core.Assert(r.isFrameStarted, "cannot get frame index when frame not in progress")
	return r.currentFrameIndex
}

func (r *Renderer) CurrentCommandBuffer() metadata.CommandBuffer {
	core.Assert(r.isFrameStarted, "cannot get command buffer when frame not in progress")
	return r.commandBuffers[r.currentFrameIndex]
}

func (r *Renderer) ImageIndex() uint32                   { return r.currentImageIndex }
func (r *Renderer) IsFrameInProgress() bool              { return r.isFrameStarted }
func (r *Renderer) RenderPass() metadata.RenderPass      { return r.swapchain.RenderPass() }
func (r *Renderer) AspectRatio() float32                 { return r.swapchain.ExtentAspectRatio() }
func (r *Renderer) ImageFormat() metadata.Format         { return r.swapchain.ImageFormat() }
func (r *Renderer) Extent() metadata.Extent2D            { return r.swapchain.Extent() }
func (r *Renderer) FramesInFlight() uint32               { return r.config.FramesInFlight }
func (r *Renderer) Swapchain() *Swapchain                { return r.swapchain }
func (r *Renderer) ClearColor() [4]float32               { return r.config.ClearColor }
func (r *Renderer) PresentModes() []metadata.PresentMode { return r.config.PresentModes }

func (r *Renderer) Destroy() {
	if err := r.device.WaitIdle(); err != nil {
		core.LogError("wait idle before destroying renderer: %s", err)
	}
	if len(r.commandBuffers) > 0 {
		r.device.FreeCommandBuffers(r.commandBuffers)
		r.commandBuffers = nil
	}
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
}
