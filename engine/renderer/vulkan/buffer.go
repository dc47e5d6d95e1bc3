package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type memoryAllocation struct {
	memory vk.DeviceMemory
	size   uint64
}

func (c *Context) allocateMemory(requirements vk.MemoryRequirements, properties metadata.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	index := c.FindMemoryIndex(requirements.MemoryTypeBits, uint32(properties))
	if index < 0 {
		return vk.NullDeviceMemory, fmt.Errorf("no memory type with properties %#x", uint32(properties))
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(index),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(c.logical(), &allocInfo, c.Allocator, &memory); res != vk.Success {
		return vk.NullDeviceMemory, toResult(res)
	}
	return memory, nil
}

func (c *Context) CreateBuffer(size uint64, usage metadata.BufferUsageFlags, properties metadata.MemoryPropertyFlags) (metadata.Buffer, metadata.DeviceMemory, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(c.logical(), &bufferInfo, c.Allocator, &buffer); res != vk.Success {
		return metadata.NullHandle, metadata.NullHandle, toResult(res)
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(c.logical(), buffer, &requirements)
	requirements.Deref()

	memory, err := c.allocateMemory(requirements, properties)
	if err != nil {
		vk.DestroyBuffer(c.logical(), buffer, c.Allocator)
		return metadata.NullHandle, metadata.NullHandle, err
	}
	if res := vk.BindBufferMemory(c.logical(), buffer, memory, 0); res != vk.Success {
		vk.FreeMemory(c.logical(), memory, c.Allocator)
		vk.DestroyBuffer(c.logical(), buffer, c.Allocator)
		return metadata.NullHandle, metadata.NullHandle, toResult(res)
	}

	bh, mh := c.newHandle(), c.newHandle()
	c.buffers.put(bh, buffer)
	c.memories.put(mh, &memoryAllocation{memory: memory, size: uint64(requirements.Size)})
	return bh, mh, nil
}

func (c *Context) DestroyBuffer(buffer metadata.Buffer, memory metadata.DeviceMemory) {
	if b, ok := c.buffers.take(buffer); ok {
		vk.DestroyBuffer(c.logical(), b, c.Allocator)
	}
	if m, ok := c.memories.take(memory); ok {
		vk.FreeMemory(c.logical(), m.memory, c.Allocator)
	}
}

func (c *Context) MapMemory(memory metadata.DeviceMemory, offset, size uint64) ([]byte, error) {
	m, ok := c.memories.lookup(memory)
	if !ok {
		return nil, fmt.Errorf("map of unknown memory %d", memory)
	}
	if size == metadata.WHOLE_SIZE {
		size = m.size - offset
	}
	var data unsafe.Pointer
	err := c.locks.SafeCall(MemoryManagement, func() error {
		return toResult(vk.MapMemory(c.logical(), m.memory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &data)).Err()
	})
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(data), size), nil
}

func (c *Context) UnmapMemory(memory metadata.DeviceMemory) {
	if m, ok := c.memories.lookup(memory); ok {
		_ = c.locks.SafeCall(MemoryManagement, func() error {
			vk.UnmapMemory(c.logical(), m.memory)
			return nil
		})
	}
}

func (c *Context) mappedRange(memory metadata.DeviceMemory, offset, size uint64) ([]vk.MappedMemoryRange, error) {
	m, ok := c.memories.lookup(memory)
	if !ok {
		return nil, fmt.Errorf("flush of unknown memory %d", memory)
	}
	return []vk.MappedMemoryRange{{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: m.memory,
		Offset: vk.DeviceSize(offset),
		Size:   vk.DeviceSize(size),
	}}, nil
}

func (c *Context) FlushMappedMemory(memory metadata.DeviceMemory, offset, size uint64) error {
	ranges, err := c.mappedRange(memory, offset, size)
	if err != nil {
		return err
	}
	return toResult(vk.FlushMappedMemoryRanges(c.logical(), 1, ranges)).Err()
}

func (c *Context) InvalidateMappedMemory(memory metadata.DeviceMemory, offset, size uint64) error {
	ranges, err := c.mappedRange(memory, offset, size)
	if err != nil {
		return err
	}
	return toResult(vk.InvalidateMappedMemoryRanges(c.logical(), 1, ranges)).Err()
}

// CopyBuffer records a one time transfer on the graphics queue and waits
// for the queue to drain.
func (c *Context) CopyBuffer(src, dst metadata.Buffer, size uint64) error {
	cbs, err := c.AllocateCommandBuffers(1)
	if err != nil {
		return err
	}
	defer c.FreeCommandBuffers(cbs)
	cb := c.commandBuffers.get(cbs[0])

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cb, &beginInfo); res != vk.Success {
		return toResult(res)
	}
	vk.CmdCopyBuffer(cb, c.buffers.get(src), c.buffers.get(dst), 1, []vk.BufferCopy{{Size: vk.DeviceSize(size)}})
	if res := vk.EndCommandBuffer(cb); res != vk.Success {
		return toResult(res)
	}

	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb},
	}
	err = c.locks.SafeQueueCall(uint32(c.Device.GraphicsQueueIndex), func() error {
		if res := vk.QueueSubmit(c.Device.GraphicsQueue, 1, []vk.SubmitInfo{submit}, vk.NullFence); res != vk.Success {
			return toResult(res)
		}
		return toResult(vk.QueueWaitIdle(c.Device.GraphicsQueue)).Err()
	})
	if err != nil {
		core.LogError("buffer copy failed: %s", err)
	}
	return err
}
