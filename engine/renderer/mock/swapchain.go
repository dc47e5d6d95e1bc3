package mock

import (
	"github.com/vstokstad/vulkan-eng/engine/containers"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

const KindSwapchainImage Kind = "swapchain image"

// swapchain models the presentation engine as a FIFO of images available
// for acquisition. Presenting an image puts it back at the end.
type swapchain struct {
	images   []metadata.Image
	queue    *containers.RingQueue[uint32]
	acquired map[uint32]bool
	retired  bool
}

func (d *Device) SurfaceCapabilities() (metadata.SurfaceCapabilities, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("SurfaceCapabilities") {
		return metadata.SurfaceCapabilities{}, metadata.RESULT_ERROR_SURFACE_LOST
	}
	return d.Capabilities, nil
}

func (d *Device) SurfaceFormats() ([]metadata.SurfaceFormat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("SurfaceFormats") {
		return nil, metadata.RESULT_ERROR_SURFACE_LOST
	}
	return append([]metadata.SurfaceFormat(nil), d.Formats...), nil
}

func (d *Device) SurfacePresentModes() ([]metadata.PresentMode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("SurfacePresentModes") {
		return nil, metadata.RESULT_ERROR_SURFACE_LOST
	}
	return append([]metadata.PresentMode(nil), d.PresentModes...), nil
}

func (d *Device) QueueFamilies() metadata.QueueFamilies {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Families
}

func (d *Device) SupportsDepthAttachment(format metadata.Format) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.DepthFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (d *Device) CreateSwapchain(info metadata.SwapchainCreateInfo) (metadata.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateSwapchain") {
		return metadata.NullHandle, metadata.RESULT_ERROR_NATIVE_WINDOW_IN_USE
	}
	caps := d.Capabilities
	if info.ImageExtent.IsZero() {
		d.violate("swapchain with zero extent")
	}
	if info.ImageExtent.Width < caps.MinImageExtent.Width || info.ImageExtent.Width > caps.MaxImageExtent.Width ||
		info.ImageExtent.Height < caps.MinImageExtent.Height || info.ImageExtent.Height > caps.MaxImageExtent.Height {
		d.violate("swapchain extent %dx%d outside surface limits", info.ImageExtent.Width, info.ImageExtent.Height)
	}
	if info.MinImageCount < caps.MinImageCount || (caps.MaxImageCount > 0 && info.MinImageCount > caps.MaxImageCount) {
		d.violate("swapchain image count %d outside surface limits", info.MinImageCount)
	}
	if !info.OldSwapchain.IsNull() {
		old, ok := d.swapchains[info.OldSwapchain]
		if !ok {
			d.violate("old swapchain %d is dead", info.OldSwapchain)
		} else {
			old.retired = true
		}
	}
	d.swapInfos = append(d.swapInfos, info)

	sc := &swapchain{
		images:   make([]metadata.Image, info.MinImageCount),
		queue:    containers.NewRingQueue[uint32](int(info.MinImageCount)),
		acquired: make(map[uint32]bool),
	}
	for i := range sc.images {
		sc.images[i] = d.alloc(KindSwapchainImage)
		_ = sc.queue.Enqueue(uint32(i))
	}
	h := d.alloc(KindSwapchain)
	d.swapchains[h] = sc
	return h, nil
}

func (d *Device) DestroySwapchain(h metadata.Swapchain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapchains[h]
	if !d.release(h, KindSwapchain) || !ok {
		return
	}
	for _, img := range sc.images {
		d.release(img, KindSwapchainImage)
	}
	delete(d.swapchains, h)
}

func (d *Device) GetSwapchainImages(h metadata.Swapchain) ([]metadata.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sc, ok := d.swapchains[h]
	if !ok {
		d.violate("images of dead swapchain %d", h)
		return nil, metadata.RESULT_ERROR_UNKNOWN
	}
	return append([]metadata.Image(nil), sc.images...), nil
}

func nextScripted(script *[]metadata.Result) (metadata.Result, bool) {
	if len(*script) == 0 {
		return metadata.RESULT_SUCCESS, false
	}
	r := (*script)[0]
	*script = (*script)[1:]
	return r, true
}

// AcquireNextImage hands out the oldest available image. Results queued in
// AcquireScript are returned first, an error result acquiring nothing.
func (d *Device) AcquireNextImage(h metadata.Swapchain, timeout uint64, sem metadata.Semaphore, f metadata.Fence) (uint32, metadata.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("AcquireNextImage") {
		return 0, metadata.RESULT_ERROR_DEVICE_LOST
	}
	sc, ok := d.swapchains[h]
	if !ok {
		d.violate("acquire on dead swapchain %d", h)
		return 0, metadata.RESULT_ERROR_UNKNOWN
	}
	if sc.retired {
		return 0, metadata.RESULT_ERROR_OUT_OF_DATE
	}
	result, _ := nextScripted(&d.AcquireScript)
	if !result.IsSuccess() {
		return 0, result
	}
	index, err := sc.queue.Dequeue()
	if err != nil {
		d.violate("acquire on swapchain %d with every image already acquired", h)
		return 0, metadata.RESULT_TIMEOUT
	}
	sc.acquired[index] = true
	if !sem.IsNull() {
		s, ok := d.semaphores[sem]
		switch {
		case !ok:
			d.violate("acquire signals dead semaphore %d", sem)
		case s.signaled:
			d.violate("acquire signals already signaled semaphore %d", sem)
		default:
			s.signaled = true
		}
	}
	if fe, ok := d.fences[f]; ok {
		fe.signaled = true
	}
	d.acquired = append(d.acquired, index)
	return index, result
}

func (d *Device) waitSemaphores(sems []metadata.Semaphore, op string) {
	for _, h := range sems {
		s, ok := d.semaphores[h]
		switch {
		case !ok:
			d.violate("%s waits on dead semaphore %d", op, h)
		case !s.signaled:
			d.violate("%s waits on unsignaled semaphore %d", op, h)
		default:
			s.signaled = false
		}
	}
}

// QueueSubmit executes immediately. The fence stays pending until it is
// waited on or the device goes idle.
func (d *Device) QueueSubmit(submits []metadata.SubmitInfo, f metadata.Fence) metadata.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("QueueSubmit") {
		return metadata.RESULT_ERROR_DEVICE_LOST
	}
	for _, s := range submits {
		if len(s.WaitStages) != len(s.WaitSemaphores) {
			d.violate("submit with %d wait semaphores and %d wait stages", len(s.WaitSemaphores), len(s.WaitStages))
		}
		d.waitSemaphores(s.WaitSemaphores, "submit")
		for _, cb := range s.CommandBuffers {
			c, ok := d.commands[cb]
			if !ok {
				d.violate("submit of dead command buffer %d", cb)
				continue
			}
			if c.recording {
				d.violate("submit of command buffer %d still recording", cb)
			}
			c.fence = f
		}
		for _, h := range s.SignalSemaphores {
			sem, ok := d.semaphores[h]
			switch {
			case !ok:
				d.violate("submit signals dead semaphore %d", h)
			case sem.signaled:
				d.violate("submit signals already signaled semaphore %d", h)
			default:
				sem.signaled = true
			}
		}
	}
	if !f.IsNull() {
		fe, ok := d.fences[f]
		if !ok {
			d.violate("submit with dead fence %d", f)
		} else {
			if fe.signaled || fe.pending {
				d.violate("submit with fence %d not reset", f)
			}
			fe.signaled = false
			fe.pending = true
			fe.submitted = true
		}
	}
	d.submits++
	return metadata.RESULT_SUCCESS
}

// QueuePresent returns the image to the presentation engine. Results queued
// in PresentScript are returned first.
func (d *Device) QueuePresent(info metadata.PresentInfo) metadata.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("QueuePresent") {
		return metadata.RESULT_ERROR_DEVICE_LOST
	}
	d.waitSemaphores(info.WaitSemaphores, "present")
	sc, ok := d.swapchains[info.Swapchain]
	if !ok {
		d.violate("present to dead swapchain %d", info.Swapchain)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	if !sc.acquired[info.ImageIndex] {
		d.violate("present of image %d that was not acquired", info.ImageIndex)
	} else {
		delete(sc.acquired, info.ImageIndex)
		_ = sc.queue.Enqueue(info.ImageIndex)
	}
	d.presents++
	result, _ := nextScripted(&d.PresentScript)
	return result
}

// Acquired returns the image indices handed out, in order.
func (d *Device) Acquired() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint32(nil), d.acquired...)
}

func (d *Device) Submits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submits
}

func (d *Device) Presents() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

// SwapchainInfos returns every swapchain create info received.
func (d *Device) SwapchainInfos() []metadata.SwapchainCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]metadata.SwapchainCreateInfo(nil), d.swapInfos...)
}

func (d *Device) CreateImage(info metadata.ImageCreateInfo) (metadata.Image, metadata.DeviceMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateImage") {
		return metadata.NullHandle, metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_DEVICE_MEMORY
	}
	if info.Extent.IsZero() {
		d.violate("image with zero extent")
	}
	d.imageInfos = append(d.imageInfos, info)
	return d.alloc(KindImage), d.alloc(KindMemory), nil
}

func (d *Device) DestroyImage(image metadata.Image, mem metadata.DeviceMemory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release(image, KindImage)
	d.release(mem, KindMemory)
}

// ImageInfos returns every image create info received.
func (d *Device) ImageInfos() []metadata.ImageCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]metadata.ImageCreateInfo(nil), d.imageInfos...)
}

func (d *Device) CreateImageView(info metadata.ImageViewCreateInfo) (metadata.ImageView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateImageView") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	if !d.isLive(info.Image, KindImage) && !d.isLive(info.Image, KindSwapchainImage) {
		d.violate("view of dead image %d", info.Image)
	}
	return d.alloc(KindImageView), nil
}

func (d *Device) DestroyImageView(view metadata.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release(view, KindImageView)
}

func (d *Device) CreateRenderPass(info metadata.RenderPassCreateInfo) (metadata.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateRenderPass") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	for _, sp := range info.Subpasses {
		refs := append(append([]metadata.AttachmentReference(nil), sp.ColorAttachments...), sp.ResolveAttachments...)
		if sp.DepthStencilAttachment != nil {
			refs = append(refs, *sp.DepthStencilAttachment)
		}
		for _, r := range refs {
			if int(r.Attachment) >= len(info.Attachments) {
				d.violate("subpass references attachment %d of %d", r.Attachment, len(info.Attachments))
			}
		}
	}
	d.passInfos = append(d.passInfos, info)
	return d.alloc(KindRenderPass), nil
}

func (d *Device) DestroyRenderPass(rp metadata.RenderPass) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release(rp, KindRenderPass)
}

// RenderPassInfos returns every render pass create info received.
func (d *Device) RenderPassInfos() []metadata.RenderPassCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]metadata.RenderPassCreateInfo(nil), d.passInfos...)
}

func (d *Device) CreateFramebuffer(info metadata.FramebufferCreateInfo) (metadata.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateFramebuffer") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	if !d.isLive(info.RenderPass, KindRenderPass) {
		d.violate("framebuffer for dead render pass %d", info.RenderPass)
	}
	for _, v := range info.Attachments {
		if !d.isLive(v, KindImageView) {
			d.violate("framebuffer attachment %d is not a live view", v)
		}
	}
	d.fbInfos = append(d.fbInfos, info)
	return d.alloc(KindFramebuffer), nil
}

func (d *Device) DestroyFramebuffer(fb metadata.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release(fb, KindFramebuffer)
}

// FramebufferInfos returns every framebuffer create info received.
func (d *Device) FramebufferInfos() []metadata.FramebufferCreateInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]metadata.FramebufferCreateInfo(nil), d.fbInfos...)
}
