package renderer

import "github.com/vstokstad/vulkan-eng/engine/renderer/metadata"

// The device is split by concern so that each component asks only for what
// it uses. Device composes them and is what a backend implements.

type BufferDevice interface {
	Limits() metadata.DeviceLimits
	CreateBuffer(size uint64, usage metadata.BufferUsageFlags, properties metadata.MemoryPropertyFlags) (metadata.Buffer, metadata.DeviceMemory, error)
	DestroyBuffer(buffer metadata.Buffer, memory metadata.DeviceMemory)
	// MapMemory returns a host view of size bytes starting at offset.
	// WHOLE_SIZE maps to the end of the allocation.
	MapMemory(memory metadata.DeviceMemory, offset, size uint64) ([]byte, error)
	UnmapMemory(memory metadata.DeviceMemory)
	FlushMappedMemory(memory metadata.DeviceMemory, offset, size uint64) error
	InvalidateMappedMemory(memory metadata.DeviceMemory, offset, size uint64) error
	// CopyBuffer records and submits a single use transfer and waits for it.
	CopyBuffer(src, dst metadata.Buffer, size uint64) error
}

type DescriptorDevice interface {
	CreateDescriptorSetLayout(bindings []metadata.DescriptorSetLayoutBinding) (metadata.DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(layout metadata.DescriptorSetLayout)
	CreateDescriptorPool(info metadata.DescriptorPoolCreateInfo) (metadata.DescriptorPool, error)
	DestroyDescriptorPool(pool metadata.DescriptorPool)
	AllocateDescriptorSets(pool metadata.DescriptorPool, layouts []metadata.DescriptorSetLayout) ([]metadata.DescriptorSet, error)
	FreeDescriptorSets(pool metadata.DescriptorPool, sets []metadata.DescriptorSet) error
	ResetDescriptorPool(pool metadata.DescriptorPool) error
	UpdateDescriptorSets(writes []metadata.WriteDescriptorSet)
}

type SurfaceDevice interface {
	Limits() metadata.DeviceLimits
	SurfaceCapabilities() (metadata.SurfaceCapabilities, error)
	SurfaceFormats() ([]metadata.SurfaceFormat, error)
	SurfacePresentModes() ([]metadata.PresentMode, error)
	QueueFamilies() metadata.QueueFamilies
	// SupportsDepthAttachment reports whether format can back an optimally
	// tiled depth/stencil attachment.
	SupportsDepthAttachment(format metadata.Format) bool
}

type ImageDevice interface {
	CreateImage(info metadata.ImageCreateInfo) (metadata.Image, metadata.DeviceMemory, error)
	DestroyImage(image metadata.Image, memory metadata.DeviceMemory)
	CreateImageView(info metadata.ImageViewCreateInfo) (metadata.ImageView, error)
	DestroyImageView(view metadata.ImageView)
}

type SyncDevice interface {
	CreateSemaphore() (metadata.Semaphore, error)
	DestroySemaphore(semaphore metadata.Semaphore)
	CreateFence(signaled bool) (metadata.Fence, error)
	DestroyFence(fence metadata.Fence)
	WaitForFences(fences []metadata.Fence, waitAll bool, timeout uint64) metadata.Result
	ResetFences(fences []metadata.Fence) metadata.Result
	WaitIdle() error
}

type SwapchainDevice interface {
	SurfaceDevice
	ImageDevice
	SyncDevice

	CreateSwapchain(info metadata.SwapchainCreateInfo) (metadata.Swapchain, error)
	DestroySwapchain(swapchain metadata.Swapchain)
	GetSwapchainImages(swapchain metadata.Swapchain) ([]metadata.Image, error)
	AcquireNextImage(swapchain metadata.Swapchain, timeout uint64, semaphore metadata.Semaphore, fence metadata.Fence) (uint32, metadata.Result)
	QueueSubmit(submits []metadata.SubmitInfo, fence metadata.Fence) metadata.Result
	QueuePresent(info metadata.PresentInfo) metadata.Result

	CreateRenderPass(info metadata.RenderPassCreateInfo) (metadata.RenderPass, error)
	DestroyRenderPass(renderPass metadata.RenderPass)
	CreateFramebuffer(info metadata.FramebufferCreateInfo) (metadata.Framebuffer, error)
	DestroyFramebuffer(framebuffer metadata.Framebuffer)
}

type CommandDevice interface {
	AllocateCommandBuffers(count uint32) ([]metadata.CommandBuffer, error)
	FreeCommandBuffers(commandBuffers []metadata.CommandBuffer)
	BeginCommandBuffer(commandBuffer metadata.CommandBuffer) error
	EndCommandBuffer(commandBuffer metadata.CommandBuffer) error

	CmdBeginRenderPass(commandBuffer metadata.CommandBuffer, info metadata.RenderPassBeginInfo)
	CmdEndRenderPass(commandBuffer metadata.CommandBuffer)
	CmdSetViewport(commandBuffer metadata.CommandBuffer, viewport metadata.Viewport)
	CmdSetScissor(commandBuffer metadata.CommandBuffer, scissor metadata.Rect2D)
	CmdBindPipeline(commandBuffer metadata.CommandBuffer, pipeline metadata.Pipeline)
	CmdBindDescriptorSets(commandBuffer metadata.CommandBuffer, layout metadata.PipelineLayout, firstSet uint32, sets []metadata.DescriptorSet)
	CmdPushConstants(commandBuffer metadata.CommandBuffer, layout metadata.PipelineLayout, stages metadata.ShaderStageFlags, offset uint32, data []byte)
	CmdDraw(commandBuffer metadata.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

type PipelineDevice interface {
	CreatePipelineLayout(info metadata.PipelineLayoutCreateInfo) (metadata.PipelineLayout, error)
	DestroyPipelineLayout(layout metadata.PipelineLayout)
}

// Device is everything the renderer needs from a graphics backend.
type Device interface {
	BufferDevice
	DescriptorDevice
	SwapchainDevice
	CommandDevice
	PipelineDevice
}

// Window is the presentation surface owner.
type Window interface {
	// Extent returns the current drawable size in pixels.
	Extent() metadata.Extent2D
	// WaitEvents blocks until the window system delivers an event.
	WaitEvents()
	// OnResize registers fn to be called whenever the drawable size changes.
	OnResize(fn func(width, height uint32))
}
