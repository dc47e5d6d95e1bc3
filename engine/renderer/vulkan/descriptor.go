package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type descriptorPoolEntry struct {
	handle vk.DescriptorPool
	sets   map[metadata.DescriptorSet]struct{}
}

func (c *Context) CreateDescriptorSetLayout(bindings []metadata.DescriptorSetLayoutBinding) (metadata.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.DescriptorType),
			DescriptorCount: b.DescriptorCount,
			StageFlags:      vk.ShaderStageFlags(b.StageFlags),
		}
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(c.logical(), &layoutInfo, c.Allocator, &layout); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.setLayouts.put(h, layout)
	return h, nil
}

func (c *Context) DestroyDescriptorSetLayout(layout metadata.DescriptorSetLayout) {
	if l, ok := c.setLayouts.take(layout); ok {
		vk.DestroyDescriptorSetLayout(c.logical(), l, c.Allocator)
	}
}

func (c *Context) CreateDescriptorPool(info metadata.DescriptorPoolCreateInfo) (metadata.DescriptorPool, error) {
	sizes := make([]vk.DescriptorPoolSize, len(info.PoolSizes))
	for i, s := range info.PoolSizes {
		sizes[i] = vk.DescriptorPoolSize{
			Type:            vk.DescriptorType(s.Type),
			DescriptorCount: s.DescriptorCount,
		}
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(info.Flags),
		MaxSets:       info.MaxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(c.logical(), &poolInfo, c.Allocator, &pool); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.pools.put(h, &descriptorPoolEntry{handle: pool, sets: make(map[metadata.DescriptorSet]struct{})})
	return h, nil
}

func (c *Context) forgetSets(entry *descriptorPoolEntry) {
	for s := range entry.sets {
		c.sets.take(s)
	}
	entry.sets = make(map[metadata.DescriptorSet]struct{})
}

func (c *Context) DestroyDescriptorPool(pool metadata.DescriptorPool) {
	entry, ok := c.pools.take(pool)
	if !ok {
		return
	}
	_ = c.locks.SafeCall(DescriptorManagement, func() error {
		c.forgetSets(entry)
		vk.DestroyDescriptorPool(c.logical(), entry.handle, c.Allocator)
		return nil
	})
}

func (c *Context) AllocateDescriptorSets(pool metadata.DescriptorPool, layouts []metadata.DescriptorSetLayout) ([]metadata.DescriptorSet, error) {
	entry, ok := c.pools.lookup(pool)
	if !ok || len(layouts) == 0 {
		return nil, metadata.RESULT_ERROR_UNKNOWN
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     entry.handle,
		DescriptorSetCount: uint32(len(layouts)),
		PSetLayouts:        c.setLayouts.getAll(layouts),
	}
	sets := make([]vk.DescriptorSet, len(layouts))
	var out []metadata.DescriptorSet
	err := c.locks.SafeCall(DescriptorManagement, func() error {
		if res := vk.AllocateDescriptorSets(c.logical(), &allocInfo, &sets[0]); res != vk.Success {
			return toResult(res)
		}
		out = make([]metadata.DescriptorSet, len(sets))
		for i, s := range sets {
			out[i] = c.newHandle()
			c.sets.put(out[i], s)
			entry.sets[out[i]] = struct{}{}
		}
		return nil
	})
	return out, err
}

// owned returns the sets in sets that were allocated from this pool, with
// the device objects behind them. The table is left untouched.
func (e *descriptorPoolEntry) owned(table *handleTable[vk.DescriptorSet], sets []metadata.DescriptorSet) ([]metadata.DescriptorSet, []vk.DescriptorSet) {
	ids := make([]metadata.DescriptorSet, 0, len(sets))
	handles := make([]vk.DescriptorSet, 0, len(sets))
	for _, s := range sets {
		if _, ok := e.sets[s]; !ok {
			continue
		}
		if vs, ok := table.lookup(s); ok {
			ids = append(ids, s)
			handles = append(handles, vs)
		}
	}
	return ids, handles
}

// forget drops sets once the device has released them.
func (e *descriptorPoolEntry) forget(table *handleTable[vk.DescriptorSet], sets []metadata.DescriptorSet) {
	for _, s := range sets {
		table.take(s)
		delete(e.sets, s)
	}
}

func (c *Context) FreeDescriptorSets(pool metadata.DescriptorPool, sets []metadata.DescriptorSet) error {
	entry, ok := c.pools.lookup(pool)
	if !ok {
		return metadata.RESULT_ERROR_UNKNOWN
	}
	return c.locks.SafeCall(DescriptorManagement, func() error {
		ids, handles := entry.owned(c.sets, sets)
		if len(handles) == 0 {
			return nil
		}
		if err := toResult(vk.FreeDescriptorSets(c.logical(), entry.handle, uint32(len(handles)), &handles[0])).Err(); err != nil {
			return err
		}
		entry.forget(c.sets, ids)
		return nil
	})
}

func (c *Context) ResetDescriptorPool(pool metadata.DescriptorPool) error {
	entry, ok := c.pools.lookup(pool)
	if !ok {
		return metadata.RESULT_ERROR_UNKNOWN
	}
	return c.locks.SafeCall(DescriptorManagement, func() error {
		c.forgetSets(entry)
		return toResult(vk.ResetDescriptorPool(c.logical(), entry.handle, 0)).Err()
	})
}

func (c *Context) UpdateDescriptorSets(writes []metadata.WriteDescriptorSet) {
	if len(writes) == 0 {
		return
	}
	vkWrites := make([]vk.WriteDescriptorSet, len(writes))
	for i, w := range writes {
		vkWrites[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          c.sets.get(w.DstSet),
			DstBinding:      w.DstBinding,
			DstArrayElement: w.DstArrayElement,
			DescriptorType:  vk.DescriptorType(w.DescriptorType),
		}
		if len(w.BufferInfo) > 0 {
			infos := make([]vk.DescriptorBufferInfo, len(w.BufferInfo))
			for j, b := range w.BufferInfo {
				infos[j] = vk.DescriptorBufferInfo{
					Buffer: c.buffers.get(b.Buffer),
					Offset: vk.DeviceSize(b.Offset),
					Range:  vk.DeviceSize(b.Range),
				}
			}
			vkWrites[i].DescriptorCount = uint32(len(infos))
			vkWrites[i].PBufferInfo = infos
		} else {
			infos := make([]vk.DescriptorImageInfo, len(w.ImageInfo))
			for j, img := range w.ImageInfo {
				infos[j] = vk.DescriptorImageInfo{
					ImageView:   c.imageViews.get(img.ImageView),
					ImageLayout: vk.ImageLayout(img.ImageLayout),
				}
			}
			vkWrites[i].DescriptorCount = uint32(len(infos))
			vkWrites[i].PImageInfo = infos
		}
	}
	_ = c.locks.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(c.logical(), uint32(len(vkWrites)), vkWrites, 0, nil)
		return nil
	})
}
