package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type SwapchainState int

const (
	SwapchainBuilding SwapchainState = iota
	SwapchainReady
	SwapchainStale
	SwapchainDestroyed
)

func (s SwapchainState) String() string {
	switch s {
	case SwapchainBuilding:
		return "building"
	case SwapchainReady:
		return "ready"
	case SwapchainStale:
		return "stale"
	case SwapchainDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Status is the outcome of an acquire or a present.
type Status int

const (
	StatusSuccess Status = iota
	// StatusSuboptimal means the image was usable but the swapchain should be rebuilt.
	StatusSuboptimal
	// StatusOutOfDate means no image can be rendered and the swapchain must be rebuilt.
	StatusOutOfDate
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	}
	return "error"
}

type SwapchainConfig struct {
	// FramesInFlight is the number of frame slots N.
	FramesInFlight uint32
	// PresentModes in order of preference. FIFO is used when none is available.
	PresentModes []metadata.PresentMode
	// SurfaceFormats in order of preference. The first available format is
	// used when none is available.
	SurfaceFormats []metadata.SurfaceFormat
	// Samples is the requested MSAA sample count, clamped to the device maximum.
	Samples      uint32
	ClearColor   [4]float32
	ClearDepth   float32
	ClearStencil uint32
}

func DefaultSwapchainConfig() SwapchainConfig {
	return SwapchainConfig{
		FramesInFlight: 2,
		PresentModes:   []metadata.PresentMode{metadata.PRESENT_MODE_MAILBOX},
		SurfaceFormats: []metadata.SurfaceFormat{
			{Format: metadata.FORMAT_B8G8R8A8_SRGB, ColorSpace: metadata.COLOR_SPACE_SRGB_NONLINEAR},
		},
		Samples:    1,
		ClearColor: [4]float32{0.01, 0.01, 0.01, 1.0},
		ClearDepth: 1.0,
	}
}

type presentableImage struct {
	image metadata.Image
	view  metadata.ImageView

	depthImage  metadata.Image
	depthMemory metadata.DeviceMemory
	depthView   metadata.ImageView

	// multisampled colour target, resolved into image
	colorImage  metadata.Image
	colorMemory metadata.DeviceMemory
	colorView   metadata.ImageView

	framebuffer metadata.Framebuffer
}

type frameSync struct {
	imageAvailable metadata.Semaphore
	renderFinished metadata.Semaphore
	inFlight       *Fence
}

// Swapchain owns the presentable images, their attachments, the render pass
// and the synchronization objects of every frame slot.
type Swapchain struct {
	id     uuid.UUID
	device SwapchainDevice
	config SwapchainConfig
	state  SwapchainState

	handle       metadata.Swapchain
	windowExtent metadata.Extent2D
	extent       metadata.Extent2D
	imageFormat  metadata.SurfaceFormat
	depthFormat  metadata.Format
	presentMode  metadata.PresentMode
	samples      metadata.SampleCountFlags

	// surface queries kept for the next instance in the chain
	formats      []metadata.SurfaceFormat
	presentModes []metadata.PresentMode

	images     []*presentableImage
	renderPass metadata.RenderPass

	frames []*frameSync
	// fence of the frame slot that last rendered into each image
	imagesInFlight []*Fence
	currentFrame   uint32
}

// NewSwapchain builds a swapchain for windowExtent. When previous is not nil
// its surface queries are reused and its handle is passed as the old
// swapchain. The caller still owns previous and must destroy it.
func NewSwapchain(device SwapchainDevice, windowExtent metadata.Extent2D, config SwapchainConfig, previous *Swapchain) (*Swapchain, error) {
	if config.FramesInFlight == 0 {
		err := fmt.Errorf("frames in flight must be at least 1")
		core.LogError(err.Error())
		return nil, err
	}
	s := &Swapchain{
		id:           uuid.New(),
		device:       device,
		config:       config,
		state:        SwapchainBuilding,
		windowExtent: windowExtent,
	}
	if err := s.init(previous); err != nil {
		s.release()
		s.state = SwapchainDestroyed
		return nil, err
	}
	s.state = SwapchainReady
	core.LogInfo("swapchain %s ready: %dx%d, %d images, format %d, present mode %s, %d frames in flight",
		s.id, s.extent.Width, s.extent.Height, len(s.images), s.imageFormat.Format, s.presentMode, config.FramesInFlight)
	return s, nil
}

func (s *Swapchain) init(previous *Swapchain) error {
	if err := s.createSwapchain(previous); err != nil {
		return err
	}
	if err := s.createImageViews(); err != nil {
		return err
	}
	if err := s.createRenderPass(); err != nil {
		return err
	}
	if err := s.createColorResources(); err != nil {
		return err
	}
	if err := s.createDepthResources(); err != nil {
		return err
	}
	if err := s.createFramebuffers(); err != nil {
		return err
	}
	return s.createSyncObjects()
}

func creationError(what string, err error) error {
	err = fmt.Errorf("failed to create %s: %w: %w", what, core.ErrDeviceObjectCreation, err)
	core.LogError(err.Error())
	return err
}

func (s *Swapchain) createSwapchain(previous *Swapchain) error {
	caps, err := s.device.SurfaceCapabilities()
	if err != nil {
		return fmt.Errorf("failed to query surface capabilities: %w", err)
	}
	if previous != nil && len(previous.formats) > 0 && len(previous.presentModes) > 0 {
		s.formats = previous.formats
		s.presentModes = previous.presentModes
	} else {
		if s.formats, err = s.device.SurfaceFormats(); err != nil {
			return fmt.Errorf("failed to query surface formats: %w", err)
		}
		if s.presentModes, err = s.device.SurfacePresentModes(); err != nil {
			return fmt.Errorf("failed to query surface present modes: %w", err)
		}
	}

	if s.imageFormat, err = chooseSurfaceFormat(s.formats, s.config.SurfaceFormats); err != nil {
		core.LogError(err.Error())
		return err
	}
	s.presentMode = choosePresentMode(s.presentModes, s.config.PresentModes)
	s.extent = chooseExtent(caps, s.windowExtent)
	if s.depthFormat, err = findDepthFormat(s.device); err != nil {
		core.LogError(err.Error())
		return err
	}
	limits := s.device.Limits()
	s.samples = metadata.SAMPLE_COUNT_1
	if s.config.Samples > 1 {
		s.samples = metadata.MaxSampleCount(limits.FramebufferColorSampleCounts&limits.FramebufferDepthSampleCounts, s.config.Samples)
	}

	info := metadata.SwapchainCreateInfo{
		MinImageCount:   imageCount(caps),
		ImageFormat:     s.imageFormat.Format,
		ImageColorSpace: s.imageFormat.ColorSpace,
		ImageExtent:     s.extent,
		ImageUsage:      metadata.IMAGE_USAGE_COLOR_ATTACHMENT,
		SharingMode:     metadata.SHARING_MODE_EXCLUSIVE,
		PreTransform:    caps.CurrentTransform,
		PresentMode:     s.presentMode,
		Clipped:         true,
	}
	families := s.device.QueueFamilies()
	if families.Graphics != families.Present {
		info.SharingMode = metadata.SHARING_MODE_CONCURRENT
		info.QueueFamilies = []uint32{families.Graphics, families.Present}
	}
	if previous != nil {
		info.OldSwapchain = previous.handle
	}

	if s.handle, err = s.device.CreateSwapchain(info); err != nil {
		return creationError("swapchain", err)
	}
	images, err := s.device.GetSwapchainImages(s.handle)
	if err != nil {
		return fmt.Errorf("failed to get swapchain images: %w", err)
	}
	s.images = make([]*presentableImage, len(images))
	for i, img := range images {
		s.images[i] = &presentableImage{image: img}
	}
	s.imagesInFlight = make([]*Fence, len(images))
	return nil
}

func (s *Swapchain) createImageViews() error {
	for i, img := range s.images {
		view, err := s.device.CreateImageView(metadata.ImageViewCreateInfo{
			Image:  img.image,
			Format: s.imageFormat.Format,
			Aspect: metadata.IMAGE_ASPECT_COLOR,
		})
		if err != nil {
			return creationError(fmt.Sprintf("image view %d", i), err)
		}
		img.view = view
	}
	return nil
}

func (s *Swapchain) hasMSAA() bool {
	return s.samples > metadata.SAMPLE_COUNT_1
}

func (s *Swapchain) createRenderPass() error {
	depthAttachment := metadata.AttachmentDescription{
		Format:         s.depthFormat,
		Samples:        s.samples,
		LoadOp:         metadata.ATTACHMENT_LOAD_OP_CLEAR,
		StoreOp:        metadata.ATTACHMENT_STORE_OP_DONT_CARE,
		StencilLoadOp:  metadata.ATTACHMENT_LOAD_OP_DONT_CARE,
		StencilStoreOp: metadata.ATTACHMENT_STORE_OP_DONT_CARE,
		InitialLayout:  metadata.IMAGE_LAYOUT_UNDEFINED,
		FinalLayout:    metadata.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL,
	}
	colorAttachment := metadata.AttachmentDescription{
		Format:         s.imageFormat.Format,
		Samples:        s.samples,
		LoadOp:         metadata.ATTACHMENT_LOAD_OP_CLEAR,
		StoreOp:        metadata.ATTACHMENT_STORE_OP_STORE,
		StencilLoadOp:  metadata.ATTACHMENT_LOAD_OP_DONT_CARE,
		StencilStoreOp: metadata.ATTACHMENT_STORE_OP_DONT_CARE,
		InitialLayout:  metadata.IMAGE_LAYOUT_UNDEFINED,
		FinalLayout:    metadata.IMAGE_LAYOUT_PRESENT_SRC,
	}
	subpass := metadata.SubpassDescription{
		ColorAttachments: []metadata.AttachmentReference{
			{Attachment: 0, Layout: metadata.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL},
		},
		DepthStencilAttachment: &metadata.AttachmentReference{
			Attachment: 1,
			Layout:     metadata.IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL,
		},
	}
	attachments := []metadata.AttachmentDescription{colorAttachment, depthAttachment}

	if s.hasMSAA() {
		// the multisampled target stays in attachment layout and is resolved
		// into the swapchain image
		attachments[0].FinalLayout = metadata.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
		resolve := metadata.AttachmentDescription{
			Format:         s.imageFormat.Format,
			Samples:        metadata.SAMPLE_COUNT_1,
			LoadOp:         metadata.ATTACHMENT_LOAD_OP_DONT_CARE,
			StoreOp:        metadata.ATTACHMENT_STORE_OP_STORE,
			StencilLoadOp:  metadata.ATTACHMENT_LOAD_OP_DONT_CARE,
			StencilStoreOp: metadata.ATTACHMENT_STORE_OP_DONT_CARE,
			InitialLayout:  metadata.IMAGE_LAYOUT_UNDEFINED,
			FinalLayout:    metadata.IMAGE_LAYOUT_PRESENT_SRC,
		}
		attachments = append(attachments, resolve)
		subpass.ResolveAttachments = []metadata.AttachmentReference{
			{Attachment: 2, Layout: metadata.IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL},
		}
	}

	dependency := metadata.SubpassDependency{
		SrcSubpass:    metadata.SUBPASS_EXTERNAL,
		DstSubpass:    0,
		SrcStageMask:  metadata.PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT | metadata.PIPELINE_STAGE_EARLY_FRAGMENT_TESTS,
		DstStageMask:  metadata.PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT | metadata.PIPELINE_STAGE_EARLY_FRAGMENT_TESTS,
		DstAccessMask: metadata.ACCESS_COLOR_ATTACHMENT_WRITE | metadata.ACCESS_DEPTH_STENCIL_ATTACHMENT_WRITE,
	}

	rp, err := s.device.CreateRenderPass(metadata.RenderPassCreateInfo{
		Attachments:  attachments,
		Subpasses:    []metadata.SubpassDescription{subpass},
		Dependencies: []metadata.SubpassDependency{dependency},
	})
	if err != nil {
		return creationError("render pass", err)
	}
	s.renderPass = rp
	return nil
}

func (s *Swapchain) createColorResources() error {
	if !s.hasMSAA() {
		return nil
	}
	for i, img := range s.images {
		image, memory, err := s.device.CreateImage(metadata.ImageCreateInfo{
			Format:     s.imageFormat.Format,
			Extent:     s.extent,
			Samples:    s.samples,
			Usage:      metadata.IMAGE_USAGE_TRANSIENT_ATTACHMENT | metadata.IMAGE_USAGE_COLOR_ATTACHMENT,
			Properties: metadata.MEMORY_PROPERTY_DEVICE_LOCAL,
		})
		if err != nil {
			return creationError(fmt.Sprintf("color image %d", i), err)
		}
		img.colorImage, img.colorMemory = image, memory
		view, err := s.device.CreateImageView(metadata.ImageViewCreateInfo{
			Image:  image,
			Format: s.imageFormat.Format,
			Aspect: metadata.IMAGE_ASPECT_COLOR,
		})
		if err != nil {
			return creationError(fmt.Sprintf("color image view %d", i), err)
		}
		img.colorView = view
	}
	return nil
}

func (s *Swapchain) createDepthResources() error {
	for i, img := range s.images {
		image, memory, err := s.device.CreateImage(metadata.ImageCreateInfo{
			Format:     s.depthFormat,
			Extent:     s.extent,
			Samples:    s.samples,
			Usage:      metadata.IMAGE_USAGE_DEPTH_STENCIL_ATTACHMENT,
			Properties: metadata.MEMORY_PROPERTY_DEVICE_LOCAL,
		})
		if err != nil {
			return creationError(fmt.Sprintf("depth image %d", i), err)
		}
		img.depthImage, img.depthMemory = image, memory
		view, err := s.device.CreateImageView(metadata.ImageViewCreateInfo{
			Image:  image,
			Format: s.depthFormat,
			Aspect: metadata.IMAGE_ASPECT_DEPTH,
		})
		if err != nil {
			return creationError(fmt.Sprintf("depth image view %d", i), err)
		}
		img.depthView = view
	}
	return nil
}

func (s *Swapchain) createFramebuffers() error {
	for i, img := range s.images {
		attachments := []metadata.ImageView{img.view, img.depthView}
		if s.hasMSAA() {
			attachments = []metadata.ImageView{img.colorView, img.depthView, img.view}
		}
		fb, err := s.device.CreateFramebuffer(metadata.FramebufferCreateInfo{
			RenderPass:  s.renderPass,
			Attachments: attachments,
			Width:       s.extent.Width,
			Height:      s.extent.Height,
		})
		if err != nil {
			return creationError(fmt.Sprintf("framebuffer %d", i), err)
		}
		img.framebuffer = fb
	}
	return nil
}

func (s *Swapchain) createSyncObjects() error {
	s.frames = make([]*frameSync, 0, s.config.FramesInFlight)
	for i := uint32(0); i < s.config.FramesInFlight; i++ {
		frame := &frameSync{}
		// append first so release sees partially built slots
		s.frames = append(s.frames, frame)

		var err error
		if frame.imageAvailable, err = s.device.CreateSemaphore(); err != nil {
			return creationError(fmt.Sprintf("image available semaphore %d", i), err)
		}
		if frame.renderFinished, err = s.device.CreateSemaphore(); err != nil {
			return creationError(fmt.Sprintf("render finished semaphore %d", i), err)
		}
		if frame.inFlight, err = NewFence(s.device, true); err != nil {
			return creationError(fmt.Sprintf("in flight fence %d", i), err)
		}
	}
	return nil
}

// release destroys whatever has been created so far.
func (s *Swapchain) release() {
	for _, img := range s.images {
		if !img.framebuffer.IsNull() {
			s.device.DestroyFramebuffer(img.framebuffer)
		}
		if !img.view.IsNull() {
			s.device.DestroyImageView(img.view)
		}
		if !img.depthView.IsNull() {
			s.device.DestroyImageView(img.depthView)
		}
		if !img.depthImage.IsNull() {
			s.device.DestroyImage(img.depthImage, img.depthMemory)
		}
		if !img.colorView.IsNull() {
			s.device.DestroyImageView(img.colorView)
		}
		if !img.colorImage.IsNull() {
			s.device.DestroyImage(img.colorImage, img.colorMemory)
		}
	}
	s.images = nil
	s.imagesInFlight = nil

	if !s.renderPass.IsNull() {
		s.device.DestroyRenderPass(s.renderPass)
		s.renderPass = metadata.NullHandle
	}
	if !s.handle.IsNull() {
		s.device.DestroySwapchain(s.handle)
		s.handle = metadata.NullHandle
	}

	for _, frame := range s.frames {
		if !frame.imageAvailable.IsNull() {
			s.device.DestroySemaphore(frame.imageAvailable)
		}
		if !frame.renderFinished.IsNull() {
			s.device.DestroySemaphore(frame.renderFinished)
		}
		if frame.inFlight != nil {
			frame.inFlight.Destroy()
		}
	}
	s.frames = nil
}

// Destroy waits for the device to go idle and releases every resource.
// It is safe to call more than once.
func (s *Swapchain) Destroy() {
	if s.state == SwapchainDestroyed {
		return
	}
	if err := s.device.WaitIdle(); err != nil {
		core.LogError("wait idle before destroying swapchain %s: %s", s.id, err)
	}
	s.release()
	s.state = SwapchainDestroyed
	core.LogDebug("swapchain %s destroyed", s.id)
}

// MarkStale flags the swapchain for rebuild, for example after a window resize.
func (s *Swapchain) MarkStale() {
	if s.state == SwapchainReady {
		s.state = SwapchainStale
	}
}

func (s *Swapchain) mapResult(res metadata.Result, op string) (Status, error) {
	switch res {
	case metadata.RESULT_SUCCESS:
		return StatusSuccess, nil
	case metadata.RESULT_SUBOPTIMAL:
		return StatusSuboptimal, nil
	case metadata.RESULT_ERROR_OUT_OF_DATE:
		s.MarkStale()
		return StatusOutOfDate, nil
	}
	err := fmt.Errorf("failed to %s on swapchain %s: %w", op, s.id, res)
	core.LogError(err.Error())
	return StatusError, err
}

// AcquireNextImage waits for the current frame slot to retire and acquires
// the next presentable image. On StatusOutOfDate nothing may be rendered.
func (s *Swapchain) AcquireNextImage() (uint32, Status, error) {
	core.Assert(s.state != SwapchainDestroyed, "acquire on destroyed swapchain %s", s.id)
	if s.state == SwapchainStale {
		return 0, StatusOutOfDate, nil
	}
	frame := s.frames[s.currentFrame]
	if err := frame.inFlight.Wait(metadata.TIMEOUT_INFINITE); err != nil {
		return 0, StatusError, err
	}
	index, res := s.device.AcquireNextImage(s.handle, metadata.TIMEOUT_INFINITE, frame.imageAvailable, metadata.NullHandle)
	status, err := s.mapResult(res, "acquire next image")
	return index, status, err
}

// SubmitCommandBuffers submits cmd for imageIndex and presents it, then
// advances to the next frame slot.
func (s *Swapchain) SubmitCommandBuffers(cmd metadata.CommandBuffer, imageIndex uint32) (Status, error) {
	core.Assert(s.state == SwapchainReady || s.state == SwapchainStale, "submit on %s swapchain %s", s.state, s.id)
	core.Assert(int(imageIndex) < len(s.images), "image index %d out of range", imageIndex)

	frame := s.frames[s.currentFrame]
	if f := s.imagesInFlight[imageIndex]; f != nil {
		if err := f.Wait(metadata.TIMEOUT_INFINITE); err != nil {
			return StatusError, err
		}
	}
	if err := frame.inFlight.Reset(); err != nil {
		return StatusError, err
	}
	submit := metadata.SubmitInfo{
		WaitSemaphores:   []metadata.Semaphore{frame.imageAvailable},
		WaitStages:       []metadata.PipelineStageFlags{metadata.PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT},
		CommandBuffers:   []metadata.CommandBuffer{cmd},
		SignalSemaphores: []metadata.Semaphore{frame.renderFinished},
	}
	if res := s.device.QueueSubmit([]metadata.SubmitInfo{submit}, frame.inFlight.Handle); !res.IsSuccess() {
		// the fence was reset and nothing will signal it now
		frame.inFlight.clearSubmitted()
		err := fmt.Errorf("failed to submit draw command buffer: %w", res)
		core.LogError(err.Error())
		return StatusError, err
	}
	frame.inFlight.MarkSubmitted()
	s.imagesInFlight[imageIndex] = frame.inFlight

	res := s.device.QueuePresent(metadata.PresentInfo{
		WaitSemaphores: []metadata.Semaphore{frame.renderFinished},
		Swapchain:      s.handle,
		ImageIndex:     imageIndex,
	})
	s.currentFrame = (s.currentFrame + 1) % s.config.FramesInFlight
	return s.mapResult(res, "present")
}

// CompareSwapFormats reports whether both swapchains use the same colour and depth formats.
func (s *Swapchain) CompareSwapFormats(other *Swapchain) bool {
	return s.depthFormat == other.depthFormat && s.imageFormat.Format == other.imageFormat.Format
}

func (s *Swapchain) ID() uuid.UUID                      { return s.id }
func (s *Swapchain) State() SwapchainState              { return s.state }
func (s *Swapchain) Handle() metadata.Swapchain         { return s.handle }
func (s *Swapchain) RenderPass() metadata.RenderPass    { return s.renderPass }
func (s *Swapchain) ImageCount() int                    { return len(s.images) }
func (s *Swapchain) Extent() metadata.Extent2D          { return s.extent }
func (s *Swapchain) Width() uint32                      { return s.extent.Width }
func (s *Swapchain) Height() uint32                     { return s.extent.Height }
func (s *Swapchain) ImageFormat() metadata.Format       { return s.imageFormat.Format }
func (s *Swapchain) DepthFormat() metadata.Format       { return s.depthFormat }
func (s *Swapchain) PresentMode() metadata.PresentMode  { return s.presentMode }
func (s *Swapchain) Samples() metadata.SampleCountFlags { return s.samples }
func (s *Swapchain) CurrentFrame() uint32               { return s.currentFrame }
func (s *Swapchain) FramesInFlight() uint32             { return s.config.FramesInFlight }
func (s *Swapchain) Framebuffer(i int) metadata.Framebuffer {
	return s.images[i].framebuffer
}
func (s *Swapchain) ImageView(i int) metadata.ImageView {
	return s.images[i].view
}

// FrameFence returns the in flight fence of frame slot i.
func (s *Swapchain) FrameFence(i int) metadata.Fence {
	return s.frames[i].inFlight.Handle
}

func (s *Swapchain) ExtentAspectRatio() float32 {
	if s.extent.Height == 0 {
		return 1
	}
	return float32(s.extent.Width) / float32(s.extent.Height)
}

func chooseSurfaceFormat(available, preferred []metadata.SurfaceFormat) (metadata.SurfaceFormat, error) {
	if len(available) == 0 {
		return metadata.SurfaceFormat{}, fmt.Errorf("surface reports no formats: %w", core.ErrNoSuitableFormat)
	}
	for _, want := range preferred {
		for _, f := range available {
			if f == want {
				return f, nil
			}
		}
	}
	return available[0], nil
}

func choosePresentMode(available, preferred []metadata.PresentMode) metadata.PresentMode {
	for _, want := range preferred {
		for _, m := range available {
			if m == want {
				return m
			}
		}
	}
	return metadata.PRESENT_MODE_FIFO
}

func chooseExtent(caps metadata.SurfaceCapabilities, window metadata.Extent2D) metadata.Extent2D {
	if caps.CurrentExtent.Width != ^uint32(0) {
		return caps.CurrentExtent
	}
	return metadata.Extent2D{
		Width:  math.Clamp(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: math.Clamp(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func imageCount(caps metadata.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func findDepthFormat(device SurfaceDevice) (metadata.Format, error) {
	for _, f := range metadata.DepthFormatCandidates {
		if device.SupportsDepthAttachment(f) {
			return f, nil
		}
	}
	return metadata.FORMAT_UNDEFINED, fmt.Errorf("no supported depth format: %w", core.ErrNoSuitableFormat)
}
