package mock

import (
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// memory keeps the host and device views of an allocation apart unless it
// is host coherent, so a missing flush shows up as stale device data.
type memory struct {
	props  metadata.MemoryPropertyFlags
	host   []byte
	device []byte
	mapped bool
}

func (m *memory) coherent() bool {
	return m.props&metadata.MEMORY_PROPERTY_HOST_COHERENT != 0
}

func (d *Device) CreateBuffer(size uint64, usage metadata.BufferUsageFlags, properties metadata.MemoryPropertyFlags) (metadata.Buffer, metadata.DeviceMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateBuffer") {
		return metadata.NullHandle, metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_DEVICE_MEMORY
	}
	if size == 0 {
		d.violate("buffer of size 0")
	}
	m := &memory{props: properties, device: make([]byte, size)}
	if m.coherent() {
		m.host = m.device
	} else {
		m.host = make([]byte, size)
	}
	buf := d.alloc(KindBuffer)
	mem := d.alloc(KindMemory)
	d.memories[mem] = m
	d.buffers[buf] = mem
	return buf, mem, nil
}

func (d *Device) DestroyBuffer(buffer metadata.Buffer, mem metadata.DeviceMemory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.memories[mem]; ok && m.mapped {
		d.violate("memory %d freed while mapped", mem)
	}
	if d.release(buffer, KindBuffer) {
		delete(d.buffers, buffer)
	}
	if d.release(mem, KindMemory) {
		delete(d.memories, mem)
	}
}

func clampRange(length, offset, size uint64) (uint64, uint64, bool) {
	if size == metadata.WHOLE_SIZE {
		if offset > length {
			return 0, 0, false
		}
		return offset, length, true
	}
	if offset+size > length {
		return 0, 0, false
	}
	return offset, offset + size, true
}

func (d *Device) MapMemory(mem metadata.DeviceMemory, offset, size uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("MapMemory") {
		return nil, metadata.RESULT_ERROR_MEMORY_MAP_FAILED
	}
	m, ok := d.memories[mem]
	if !ok {
		d.violate("map of dead memory %d", mem)
		return nil, metadata.RESULT_ERROR_MEMORY_MAP_FAILED
	}
	if m.props&metadata.MEMORY_PROPERTY_HOST_VISIBLE == 0 {
		return nil, metadata.RESULT_ERROR_MEMORY_MAP_FAILED
	}
	if m.mapped {
		d.violate("memory %d mapped twice", mem)
	}
	start, end, ok := clampRange(uint64(len(m.host)), offset, size)
	if !ok {
		return nil, metadata.RESULT_ERROR_MEMORY_MAP_FAILED
	}
	m.mapped = true
	return m.host[start:end:end], nil
}

func (d *Device) UnmapMemory(mem metadata.DeviceMemory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.memories[mem]
	if !ok || !m.mapped {
		d.violate("unmap of unmapped memory %d", mem)
		return
	}
	m.mapped = false
}

func (d *Device) checkAtoms(m *memory, mem metadata.DeviceMemory, offset, size uint64, op string) (uint64, uint64, bool) {
	if !m.mapped {
		d.violate("%s of unmapped memory %d", op, mem)
	}
	atom := d.DeviceLimits.NonCoherentAtomSize
	if atom > 1 {
		if offset%atom != 0 {
			d.violate("%s offset %d not a multiple of atom size %d", op, offset, atom)
		}
		if size != metadata.WHOLE_SIZE && size%atom != 0 && offset+size != uint64(len(m.host)) {
			d.violate("%s size %d not a multiple of atom size %d", op, size, atom)
		}
	}
	start, end, ok := clampRange(uint64(len(m.host)), offset, size)
	if !ok {
		d.violate("%s range [%d, +%d) outside allocation of %d bytes", op, offset, size, len(m.host))
	}
	return start, end, ok
}

// FlushMappedMemory copies the host view of the range to the device view.
func (d *Device) FlushMappedMemory(mem metadata.DeviceMemory, offset, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("FlushMappedMemory") {
		return metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	m, ok := d.memories[mem]
	if !ok {
		d.violate("flush of dead memory %d", mem)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	start, end, ok := d.checkAtoms(m, mem, offset, size, "flush")
	if ok && !m.coherent() {
		copy(m.device[start:end], m.host[start:end])
	}
	return nil
}

// InvalidateMappedMemory copies the device view of the range to the host view.
func (d *Device) InvalidateMappedMemory(mem metadata.DeviceMemory, offset, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("InvalidateMappedMemory") {
		return metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	m, ok := d.memories[mem]
	if !ok {
		d.violate("invalidate of dead memory %d", mem)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	start, end, ok := d.checkAtoms(m, mem, offset, size, "invalidate")
	if ok && !m.coherent() {
		copy(m.host[start:end], m.device[start:end])
	}
	return nil
}

func (d *Device) CopyBuffer(src, dst metadata.Buffer, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CopyBuffer") {
		return metadata.RESULT_ERROR_DEVICE_LOST
	}
	srcMem, ok1 := d.buffers[src]
	dstMem, ok2 := d.buffers[dst]
	if !ok1 || !ok2 {
		d.violate("copy between dead buffers %d and %d", src, dst)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	from, to := d.memories[srcMem], d.memories[dstMem]
	if size > uint64(len(from.device)) || size > uint64(len(to.device)) {
		d.violate("copy of %d bytes overruns a buffer", size)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	copy(to.device[:size], from.device[:size])
	return nil
}

// ReadDevice returns a copy of the device view of mem.
func (d *Device) ReadDevice(mem metadata.DeviceMemory, offset, size uint64) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.memories[mem]
	if !ok {
		return nil
	}
	start, end, ok := clampRange(uint64(len(m.device)), offset, size)
	if !ok {
		return nil
	}
	return append([]byte(nil), m.device[start:end]...)
}

// WriteDevice overwrites the device view of mem, as a shader or transfer would.
func (d *Device) WriteDevice(mem metadata.DeviceMemory, offset uint64, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.memories[mem]; ok {
		copy(m.device[offset:], data)
	}
}
