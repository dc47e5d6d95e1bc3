package renderer

import (
	"fmt"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// Buffer is a single device buffer holding instanceCount instances, each
// starting on a multiple of alignmentSize.
type Buffer struct {
	device BufferDevice

	handle metadata.Buffer
	memory metadata.DeviceMemory
	mapped []byte
	// offset of mapped within the allocation
	mappedOffset uint64

	bufferSize          uint64
	instanceCount       uint32
	instanceSize        uint64
	alignmentSize       uint64
	usageFlags          metadata.BufferUsageFlags
	memoryPropertyFlags metadata.MemoryPropertyFlags
	atomSize            uint64
}

// Alignment returns the smallest multiple of minOffsetAlignment that can hold
// instanceSize bytes. A zero alignment leaves instanceSize unchanged.
func Alignment(instanceSize, minOffsetAlignment uint64) uint64 {
	if minOffsetAlignment > 0 {
		return math.AlignUp(instanceSize, minOffsetAlignment)
	}
	return instanceSize
}

func NewBuffer(device BufferDevice, instanceSize uint64, instanceCount uint32, usageFlags metadata.BufferUsageFlags, memoryPropertyFlags metadata.MemoryPropertyFlags, minOffsetAlignment uint64) (*Buffer, error) {
	if instanceSize == 0 || instanceCount == 0 {
		err := fmt.Errorf("invalid buffer size: %d instances of %d bytes", instanceCount, instanceSize)
		core.LogError(err.Error())
		return nil, err
	}

	b := &Buffer{
		device:              device,
		instanceSize:        instanceSize,
		instanceCount:       instanceCount,
		usageFlags:          usageFlags,
		memoryPropertyFlags: memoryPropertyFlags,
		alignmentSize:       Alignment(instanceSize, minOffsetAlignment),
		atomSize:            device.Limits().NonCoherentAtomSize,
	}
	b.bufferSize = b.alignmentSize * uint64(instanceCount)

	handle, memory, err := device.CreateBuffer(b.bufferSize, usageFlags, memoryPropertyFlags)
	if err != nil {
		err = fmt.Errorf("failed to create buffer of %d bytes: %w", b.bufferSize, err)
		core.LogError(err.Error())
		return nil, err
	}
	b.handle = handle
	b.memory = memory
	return b, nil
}

// Map maps size bytes starting at offset. WHOLE_SIZE maps the complete buffer.
func (b *Buffer) Map(size, offset uint64) error {
	core.Assert(!b.handle.IsNull() && !b.memory.IsNull(), "called map on buffer before create")
	if b.mapped != nil {
		b.Unmap()
	}
	mapped, err := b.device.MapMemory(b.memory, offset, size)
	if err != nil {
		err = fmt.Errorf("failed to map buffer memory: %w", err)
		core.LogError(err.Error())
		return err
	}
	b.mapped = mapped
	b.mappedOffset = offset
	return nil
}

// Unmap releases the host mapping. It is safe to call on an unmapped buffer.
func (b *Buffer) Unmap() {
	if b.mapped != nil {
		b.device.UnmapMemory(b.memory)
		b.mapped = nil
		b.mappedOffset = 0
	}
}

// WriteToBuffer copies data into the mapping. With WHOLE_SIZE the data is
// written at the start of the mapping, otherwise size bytes go to offset.
func (b *Buffer) WriteToBuffer(data []byte, size, offset uint64) error {
	if b.mapped == nil {
		return fmt.Errorf("cannot write to buffer: %w", core.ErrBufferNotMapped)
	}
	if size == metadata.WHOLE_SIZE {
		if uint64(len(data)) > uint64(len(b.mapped)) {
			return fmt.Errorf("%d bytes into a %d byte mapping: %w", len(data), len(b.mapped), core.ErrOutOfRange)
		}
		copy(b.mapped, data)
		return nil
	}
	if size > uint64(len(data)) {
		return fmt.Errorf("write of %d bytes from %d byte source: %w", size, len(data), core.ErrOutOfRange)
	}
	if offset < b.mappedOffset || offset-b.mappedOffset+size > uint64(len(b.mapped)) {
		return fmt.Errorf("write of %d bytes at %d: %w", size, offset, core.ErrOutOfRange)
	}
	start := offset - b.mappedOffset
	copy(b.mapped[start:start+size], data[:size])
	return nil
}

func (b *Buffer) isCoherent() bool {
	return b.memoryPropertyFlags&metadata.MEMORY_PROPERTY_HOST_COHERENT != 0
}

// atomRange widens a range to the non coherent atom size the device requires
// for flush and invalidate.
func (b *Buffer) atomRange(size, offset uint64) (uint64, uint64) {
	if size == metadata.WHOLE_SIZE || b.atomSize <= 1 {
		return size, offset
	}
	start := offset / b.atomSize * b.atomSize
	end := math.AlignUp(offset+size, b.atomSize)
	if end >= b.bufferSize {
		return metadata.WHOLE_SIZE, start
	}
	return end - start, start
}

// Flush makes host writes in the range visible to the device. Host coherent
// memory needs no flush.
func (b *Buffer) Flush(size, offset uint64) error {
	if b.isCoherent() {
		return nil
	}
	size, offset = b.atomRange(size, offset)
	if err := b.device.FlushMappedMemory(b.memory, offset, size); err != nil {
		err = fmt.Errorf("failed to flush buffer memory: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Invalidate makes device writes in the range visible to the host. Host
// coherent memory needs no invalidation.
func (b *Buffer) Invalidate(size, offset uint64) error {
	if b.isCoherent() {
		return nil
	}
	size, offset = b.atomRange(size, offset)
	if err := b.device.InvalidateMappedMemory(b.memory, offset, size); err != nil {
		err = fmt.Errorf("failed to invalidate buffer memory: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (b *Buffer) DescriptorInfo(size, offset uint64) metadata.DescriptorBufferInfo {
	return metadata.DescriptorBufferInfo{
		Buffer: b.handle,
		Offset: offset,
		Range:  size,
	}
}

func (b *Buffer) indexOffset(index uint32) uint64 {
	core.Assert(index < b.instanceCount, "buffer index %d out of range [0, %d)", index, b.instanceCount)
	return uint64(index) * b.alignmentSize
}

// WriteToIndex copies one instance worth of data to instance index.
func (b *Buffer) WriteToIndex(data []byte, index uint32) error {
	return b.WriteToBuffer(data, b.instanceSize, b.indexOffset(index))
}

func (b *Buffer) FlushIndex(index uint32) error {
	return b.Flush(b.alignmentSize, b.indexOffset(index))
}

func (b *Buffer) InvalidateIndex(index uint32) error {
	return b.Invalidate(b.alignmentSize, b.indexOffset(index))
}

func (b *Buffer) DescriptorInfoForIndex(index uint32) metadata.DescriptorBufferInfo {
	return b.DescriptorInfo(b.alignmentSize, b.indexOffset(index))
}

// ReadAtIndex returns a copy of instance index as seen through the mapping.
func (b *Buffer) ReadAtIndex(index uint32) ([]byte, error) {
	if b.mapped == nil {
		return nil, fmt.Errorf("cannot read buffer: %w", core.ErrBufferNotMapped)
	}
	offset := b.indexOffset(index)
	if offset < b.mappedOffset || offset-b.mappedOffset+b.instanceSize > uint64(len(b.mapped)) {
		return nil, fmt.Errorf("read of index %d: %w", index, core.ErrOutOfRange)
	}
	start := offset - b.mappedOffset
	out := make([]byte, b.instanceSize)
	copy(out, b.mapped[start:start+b.instanceSize])
	return out, nil
}

// CopyFrom copies size bytes from src on the device, typically from a staging buffer.
func (b *Buffer) CopyFrom(src *Buffer, size uint64) error {
	if size == metadata.WHOLE_SIZE {
		size = src.bufferSize
	}
	if size > b.bufferSize || size > src.bufferSize {
		return fmt.Errorf("copy of %d bytes: %w", size, core.ErrOutOfRange)
	}
	if err := b.device.CopyBuffer(src.handle, b.handle, size); err != nil {
		err = fmt.Errorf("failed to copy buffer: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Destroy unmaps and frees the buffer. Descriptors that reference it become invalid.
func (b *Buffer) Destroy() {
	b.Unmap()
	if !b.handle.IsNull() {
		b.device.DestroyBuffer(b.handle, b.memory)
		b.handle = metadata.NullHandle
		b.memory = metadata.NullHandle
	}
}

func (b *Buffer) Handle() metadata.Buffer                           { return b.handle }
func (b *Buffer) Memory() metadata.DeviceMemory                     { return b.memory }
func (b *Buffer) MappedMemory() []byte                              { return b.mapped }
func (b *Buffer) InstanceCount() uint32                             { return b.instanceCount }
func (b *Buffer) InstanceSize() uint64                              { return b.instanceSize }
func (b *Buffer) AlignmentSize() uint64                             { return b.alignmentSize }
func (b *Buffer) UsageFlags() metadata.BufferUsageFlags             { return b.usageFlags }
func (b *Buffer) MemoryPropertyFlags() metadata.MemoryPropertyFlags { return b.memoryPropertyFlags }
func (b *Buffer) BufferSize() uint64                                { return b.bufferSize }
