package vulkan

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

var _ renderer.Device = (*Context)(nil)

// Surface is the window side of the context: it names the instance
// extensions it needs and creates the presentation surface.
type Surface interface {
	RequiredInstanceExtensions() []string
	InstanceProcAddr() unsafe.Pointer
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

type ContextConfig struct {
	ApplicationName string
	// Validation enables the Khronos validation layer and the debug report callback.
	Validation bool
	// SamplerAnisotropy is requested when the device supports it.
	SamplerAnisotropy bool
	DiscreteGPU       bool
}

// Context owns the instance, the logical device and every object created
// through it. Objects are handed out as opaque metadata handles.
type Context struct {
	config ContextConfig

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugCallback vk.DebugReportCallback

	Device *VulkanDevice

	locks *VulkanLockPool

	nextHandle atomic.Uint64

	buffers        *handleTable[vk.Buffer]
	memories       *handleTable[*memoryAllocation]
	images         *handleTable[vk.Image]
	imageViews     *handleTable[vk.ImageView]
	swapchains     *handleTable[*swapchainEntry]
	semaphores     *handleTable[vk.Semaphore]
	fences         *handleTable[vk.Fence]
	renderPasses   *handleTable[vk.RenderPass]
	framebuffers   *handleTable[vk.Framebuffer]
	commandBuffers *handleTable[vk.CommandBuffer]
	setLayouts     *handleTable[vk.DescriptorSetLayout]
	pools          *handleTable[*descriptorPoolEntry]
	sets           *handleTable[vk.DescriptorSet]
	layouts        *handleTable[vk.PipelineLayout]
	pipelines      *handleTable[vk.Pipeline]
}

// NewContext brings up the instance, the debug callback, the surface and
// the logical device. On failure everything created so far is destroyed.
func NewContext(surface Surface, config ContextConfig) (*Context, error) {
	c := &Context{
		config:         config,
		Allocator:      nil,
		locks:          NewVulkanLockPool(),
		buffers:        newHandleTable[vk.Buffer](),
		memories:       newHandleTable[*memoryAllocation](),
		images:         newHandleTable[vk.Image](),
		imageViews:     newHandleTable[vk.ImageView](),
		swapchains:     newHandleTable[*swapchainEntry](),
		semaphores:     newHandleTable[vk.Semaphore](),
		fences:         newHandleTable[vk.Fence](),
		renderPasses:   newHandleTable[vk.RenderPass](),
		framebuffers:   newHandleTable[vk.Framebuffer](),
		commandBuffers: newHandleTable[vk.CommandBuffer](),
		setLayouts:     newHandleTable[vk.DescriptorSetLayout](),
		pools:          newHandleTable[*descriptorPoolEntry](),
		sets:           newHandleTable[vk.DescriptorSet](),
		layouts:        newHandleTable[vk.PipelineLayout](),
		pipelines:      newHandleTable[vk.Pipeline](),
	}

	if err := c.createInstance(surface); err != nil {
		c.Destroy()
		return nil, err
	}
	if c.config.Validation {
		if err := c.createDebugCallback(); err != nil {
			c.Destroy()
			return nil, err
		}
	}

	core.LogDebug("Creating Vulkan surface...")
	s, err := surface.CreateSurface(c.Instance)
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("failed to create the window surface: %w", err)
	}
	c.Surface = s
	core.LogDebug("Vulkan surface created.")

	if err := c.createDevice(); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// Destroy releases the device, the surface and the instance. Objects created
// through the context must have been destroyed by their owners first.
func (c *Context) Destroy() {
	if c.Device != nil && c.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(c.Device.LogicalDevice)
		for kind, n := range c.leaks() {
			core.LogWarn("%d %s still alive at shutdown", n, kind)
		}
		c.Device.destroy(c)
	}
	if c.Surface != vk.NullSurface {
		vk.DestroySurface(c.Instance, c.Surface, c.Allocator)
		c.Surface = vk.NullSurface
	}
	if c.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(c.Instance, c.debugCallback, c.Allocator)
		c.debugCallback = vk.NullDebugReportCallback
	}
	if c.Instance != nil {
		vk.DestroyInstance(c.Instance, c.Allocator)
		c.Instance = nil
	}
	core.LogInfo("Vulkan context destroyed.")
}

func (c *Context) leaks() map[string]int {
	counts := map[string]int{
		"buffers":                c.buffers.len(),
		"memory allocations":     c.memories.len(),
		"image views":            c.imageViews.len(),
		"swapchains":             c.swapchains.len(),
		"semaphores":             c.semaphores.len(),
		"fences":                 c.fences.len(),
		"render passes":          c.renderPasses.len(),
		"framebuffers":           c.framebuffers.len(),
		"descriptor set layouts": c.setLayouts.len(),
		"descriptor pools":       c.pools.len(),
		"pipeline layouts":       c.layouts.len(),
	}
	for k, n := range counts {
		if n == 0 {
			delete(counts, k)
		}
	}
	return counts
}

func (c *Context) newHandle() metadata.Handle {
	return metadata.Handle(c.nextHandle.Add(1))
}

func (c *Context) logical() vk.Device {
	return c.Device.LogicalDevice
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has all of propertyFlags, or -1.
func (c *Context) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	memoryProperties := c.Device.Memory
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

// RegisterPipeline hands out a handle for a pipeline built outside the
// context. The context destroys it on UnregisterPipeline.
func (c *Context) RegisterPipeline(pipeline vk.Pipeline) metadata.Pipeline {
	h := c.newHandle()
	c.pipelines.put(h, pipeline)
	return h
}

func (c *Context) UnregisterPipeline(handle metadata.Pipeline) {
	if p, ok := c.pipelines.take(handle); ok {
		vk.DestroyPipeline(c.logical(), p, c.Allocator)
	}
}

func (c *Context) Limits() metadata.DeviceLimits {
	limits := c.Device.Properties.Limits
	return metadata.DeviceLimits{
		MinUniformBufferOffsetAlignment: uint64(limits.MinUniformBufferOffsetAlignment),
		MinStorageBufferOffsetAlignment: uint64(limits.MinStorageBufferOffsetAlignment),
		NonCoherentAtomSize:             uint64(limits.NonCoherentAtomSize),
		MaxPushConstantsSize:            limits.MaxPushConstantsSize,
		FramebufferColorSampleCounts:    metadata.SampleCountFlags(limits.FramebufferColorSampleCounts),
		FramebufferDepthSampleCounts:    metadata.SampleCountFlags(limits.FramebufferDepthSampleCounts),
	}
}

func (c *Context) QueueFamilies() metadata.QueueFamilies {
	return metadata.QueueFamilies{
		Graphics: uint32(c.Device.GraphicsQueueIndex),
		Present:  uint32(c.Device.PresentQueueIndex),
	}
}

func (c *Context) WaitIdle() error {
	return c.locks.SafeCall(DeviceManagement, func() error {
		return toResult(vk.DeviceWaitIdle(c.logical())).Err()
	})
}
