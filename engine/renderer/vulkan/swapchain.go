package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type swapchainEntry struct {
	handle vk.Swapchain
	// handles of the presentable images, owned by the swapchain
	images []metadata.Image
}

func (c *Context) SurfaceCapabilities() (metadata.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(c.Device.PhysicalDevice, c.Surface, &caps); res != vk.Success {
		return metadata.SurfaceCapabilities{}, toResult(res)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return metadata.SurfaceCapabilities{
		MinImageCount:    caps.MinImageCount,
		MaxImageCount:    caps.MaxImageCount,
		CurrentExtent:    metadata.Extent2D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height},
		MinImageExtent:   metadata.Extent2D{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		MaxImageExtent:   metadata.Extent2D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
		CurrentTransform: uint32(caps.CurrentTransform),
	}, nil
}

func (c *Context) SurfaceFormats() ([]metadata.SurfaceFormat, error) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(c.Device.PhysicalDevice, c.Surface, &count, nil); res != vk.Success {
		return nil, toResult(res)
	}
	formats := make([]vk.SurfaceFormat, count)
	if res := vk.GetPhysicalDeviceSurfaceFormats(c.Device.PhysicalDevice, c.Surface, &count, formats); res != vk.Success {
		return nil, toResult(res)
	}
	out := make([]metadata.SurfaceFormat, count)
	for i := range formats {
		formats[i].Deref()
		out[i] = metadata.SurfaceFormat{
			Format:     metadata.Format(formats[i].Format),
			ColorSpace: metadata.ColorSpace(formats[i].ColorSpace),
		}
	}
	return out, nil
}

func (c *Context) SurfacePresentModes() ([]metadata.PresentMode, error) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(c.Device.PhysicalDevice, c.Surface, &count, nil); res != vk.Success {
		return nil, toResult(res)
	}
	modes := make([]vk.PresentMode, count)
	if res := vk.GetPhysicalDeviceSurfacePresentModes(c.Device.PhysicalDevice, c.Surface, &count, modes); res != vk.Success {
		return nil, toResult(res)
	}
	out := make([]metadata.PresentMode, count)
	for i, m := range modes {
		out[i] = metadata.PresentMode(m)
	}
	return out, nil
}

func (c *Context) CreateSwapchain(info metadata.SwapchainCreateInfo) (metadata.Swapchain, error) {
	createInfo := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         c.Surface,
		MinImageCount:   info.MinImageCount,
		ImageFormat:     vk.Format(info.ImageFormat),
		ImageColorSpace: vk.ColorSpace(info.ImageColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  info.ImageExtent.Width,
			Height: info.ImageExtent.Height,
		},
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(info.ImageUsage),
		ImageSharingMode:      vk.SharingMode(info.SharingMode),
		QueueFamilyIndexCount: uint32(len(info.QueueFamilies)),
		PQueueFamilyIndices:   info.QueueFamilies,
		PreTransform:          vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           vk.PresentMode(info.PresentMode),
		Clipped:               vk.False,
		OldSwapchain:          vk.NullSwapchain,
	}
	if info.Clipped {
		createInfo.Clipped = vk.True
	}
	if old, ok := c.swapchains.lookup(info.OldSwapchain); ok {
		createInfo.OldSwapchain = old.handle
	}

	var swapchain vk.Swapchain
	err := c.locks.SafeCall(SwapchainManagement, func() error {
		return toResult(vk.CreateSwapchain(c.logical(), &createInfo, c.Allocator, &swapchain)).Err()
	})
	if err != nil {
		return metadata.NullHandle, err
	}
	h := c.newHandle()
	c.swapchains.put(h, &swapchainEntry{handle: swapchain})
	return h, nil
}

func (c *Context) DestroySwapchain(swapchain metadata.Swapchain) {
	entry, ok := c.swapchains.take(swapchain)
	if !ok {
		return
	}
	for _, img := range entry.images {
		c.images.take(img)
	}
	_ = c.locks.SafeCall(SwapchainManagement, func() error {
		vk.DestroySwapchain(c.logical(), entry.handle, c.Allocator)
		return nil
	})
}

func (c *Context) GetSwapchainImages(swapchain metadata.Swapchain) ([]metadata.Image, error) {
	entry, ok := c.swapchains.lookup(swapchain)
	if !ok {
		return nil, metadata.RESULT_ERROR_UNKNOWN
	}
	if entry.images != nil {
		return entry.images, nil
	}
	var count uint32
	if res := vk.GetSwapchainImages(c.logical(), entry.handle, &count, nil); res != vk.Success {
		return nil, toResult(res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(c.logical(), entry.handle, &count, images); res != vk.Success {
		return nil, toResult(res)
	}
	entry.images = make([]metadata.Image, count)
	for i, img := range images {
		entry.images[i] = c.newHandle()
		c.images.put(entry.images[i], img)
	}
	return entry.images, nil
}

func (c *Context) AcquireNextImage(swapchain metadata.Swapchain, timeout uint64, semaphore metadata.Semaphore, fence metadata.Fence) (uint32, metadata.Result) {
	entry, ok := c.swapchains.lookup(swapchain)
	if !ok {
		return 0, metadata.RESULT_ERROR_OUT_OF_DATE
	}
	var index uint32
	res := vk.AcquireNextImage(c.logical(), entry.handle, timeout, c.semaphores.get(semaphore), c.fences.get(fence), &index)
	return index, toResult(res)
}

func (c *Context) QueueSubmit(submits []metadata.SubmitInfo, fence metadata.Fence) metadata.Result {
	infos := make([]vk.SubmitInfo, len(submits))
	for i, s := range submits {
		stages := make([]vk.PipelineStageFlags, len(s.WaitStages))
		for j, st := range s.WaitStages {
			stages[j] = vk.PipelineStageFlags(st)
		}
		infos[i] = vk.SubmitInfo{
			SType:                vk.StructureTypeSubmitInfo,
			WaitSemaphoreCount:   uint32(len(s.WaitSemaphores)),
			PWaitSemaphores:      c.semaphores.getAll(s.WaitSemaphores),
			PWaitDstStageMask:    stages,
			CommandBufferCount:   uint32(len(s.CommandBuffers)),
			PCommandBuffers:      c.commandBuffers.getAll(s.CommandBuffers),
			SignalSemaphoreCount: uint32(len(s.SignalSemaphores)),
			PSignalSemaphores:    c.semaphores.getAll(s.SignalSemaphores),
		}
	}
	result := metadata.RESULT_SUCCESS
	_ = c.locks.SafeQueueCall(uint32(c.Device.GraphicsQueueIndex), func() error {
		result = toResult(vk.QueueSubmit(c.Device.GraphicsQueue, uint32(len(infos)), infos, c.fences.get(fence)))
		return nil
	})
	return result
}

func (c *Context) QueuePresent(info metadata.PresentInfo) metadata.Result {
	entry, ok := c.swapchains.lookup(info.Swapchain)
	if !ok {
		return metadata.RESULT_ERROR_OUT_OF_DATE
	}
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(info.WaitSemaphores)),
		PWaitSemaphores:    c.semaphores.getAll(info.WaitSemaphores),
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{entry.handle},
		PImageIndices:      []uint32{info.ImageIndex},
	}
	result := metadata.RESULT_SUCCESS
	_ = c.locks.SafeQueueCall(uint32(c.Device.PresentQueueIndex), func() error {
		result = toResult(vk.QueuePresent(c.Device.PresentQueue, &presentInfo))
		return nil
	})
	return result
}
