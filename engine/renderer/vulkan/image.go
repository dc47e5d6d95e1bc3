package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

func (c *Context) CreateImage(info metadata.ImageCreateInfo) (metadata.Image, metadata.DeviceMemory, error) {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.Format(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCountFlagBits(info.Samples),
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var image vk.Image
	if res := vk.CreateImage(c.logical(), &imageInfo, c.Allocator, &image); res != vk.Success {
		return metadata.NullHandle, metadata.NullHandle, toResult(res)
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(c.logical(), image, &requirements)
	requirements.Deref()

	memory, err := c.allocateMemory(requirements, info.Properties)
	if err != nil {
		vk.DestroyImage(c.logical(), image, c.Allocator)
		return metadata.NullHandle, metadata.NullHandle, err
	}
	if res := vk.BindImageMemory(c.logical(), image, memory, 0); res != vk.Success {
		vk.FreeMemory(c.logical(), memory, c.Allocator)
		vk.DestroyImage(c.logical(), image, c.Allocator)
		return metadata.NullHandle, metadata.NullHandle, toResult(res)
	}

	ih, mh := c.newHandle(), c.newHandle()
	c.images.put(ih, image)
	c.memories.put(mh, &memoryAllocation{memory: memory, size: uint64(requirements.Size)})
	return ih, mh, nil
}

func (c *Context) DestroyImage(image metadata.Image, memory metadata.DeviceMemory) {
	if img, ok := c.images.take(image); ok {
		vk.DestroyImage(c.logical(), img, c.Allocator)
	}
	if m, ok := c.memories.take(memory); ok {
		vk.FreeMemory(c.logical(), m.memory, c.Allocator)
	}
}

func (c *Context) CreateImageView(info metadata.ImageViewCreateInfo) (metadata.ImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    c.images.get(info.Image),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(info.Aspect),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(c.logical(), &viewInfo, c.Allocator, &view); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.imageViews.put(h, view)
	return h, nil
}

func (c *Context) DestroyImageView(view metadata.ImageView) {
	if v, ok := c.imageViews.take(view); ok {
		vk.DestroyImageView(c.logical(), v, c.Allocator)
	}
}

// SupportsDepthAttachment checks the optimal tiling features of format.
func (c *Context) SupportsDepthAttachment(format metadata.Format) bool {
	var properties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(c.Device.PhysicalDevice, vk.Format(format), &properties)
	properties.Deref()
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	return properties.OptimalTilingFeatures&flags == flags
}
