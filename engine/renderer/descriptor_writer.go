package renderer

import (
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// DescriptorWriter accumulates buffer and image writes against a layout.
// Each write consumes one array element of its binding.
type DescriptorWriter struct {
	layout *DescriptorSetLayout
	pool   *DescriptorPool
	writes []metadata.WriteDescriptorSet
	used   map[uint32]uint32
}

func NewDescriptorWriter(layout *DescriptorSetLayout, pool *DescriptorPool) *DescriptorWriter {
	return &DescriptorWriter{
		layout: layout,
		pool:   pool,
		used:   make(map[uint32]uint32),
	}
}

func (w *DescriptorWriter) nextElement(binding uint32) metadata.DescriptorSetLayoutBinding {
	desc, ok := w.layout.Binding(binding)
	core.Assert(ok, "layout does not contain specified binding %d", binding)
	core.Assert(w.used[binding] < desc.DescriptorCount,
		"binding %d expects %d descriptors, got more", binding, desc.DescriptorCount)
	return desc
}

func (w *DescriptorWriter) WriteBuffer(binding uint32, bufferInfo *metadata.DescriptorBufferInfo) *DescriptorWriter {
	desc := w.nextElement(binding)
	core.Assert(!desc.DescriptorType.IsImage(), "binding %d does not take a buffer", binding)
	w.writes = append(w.writes, metadata.WriteDescriptorSet{
		DstBinding:      binding,
		DstArrayElement: w.used[binding],
		DescriptorType:  desc.DescriptorType,
		BufferInfo:      []metadata.DescriptorBufferInfo{*bufferInfo},
	})
	w.used[binding]++
	return w
}

func (w *DescriptorWriter) WriteImage(binding uint32, imageInfo *metadata.DescriptorImageInfo) *DescriptorWriter {
	desc := w.nextElement(binding)
	core.Assert(desc.DescriptorType.IsImage(), "binding %d does not take an image", binding)
	w.writes = append(w.writes, metadata.WriteDescriptorSet{
		DstBinding:      binding,
		DstArrayElement: w.used[binding],
		DescriptorType:  desc.DescriptorType,
		ImageInfo:       []metadata.DescriptorImageInfo{*imageInfo},
	})
	w.used[binding]++
	return w
}

// Build allocates a new set from the pool and writes every accumulated descriptor into it.
func (w *DescriptorWriter) Build() (metadata.DescriptorSet, error) {
	set, err := w.pool.AllocateDescriptor(w.layout)
	if err != nil {
		return metadata.NullHandle, err
	}
	w.Overwrite(set)
	return set, nil
}

// Overwrite rewrites the bindings of an existing set without allocating.
func (w *DescriptorWriter) Overwrite(set metadata.DescriptorSet) {
	writes := make([]metadata.WriteDescriptorSet, len(w.writes))
	for i, write := range w.writes {
		write.DstSet = set
		writes[i] = write
	}
	w.pool.device.UpdateDescriptorSets(writes)
}
