package mock

import (
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type pool struct {
	info      metadata.DescriptorPoolCreateInfo
	sets      map[metadata.Handle]bool
	usedTypes map[metadata.DescriptorType]uint32
}

type set struct {
	pool   metadata.DescriptorPool
	layout metadata.DescriptorSetLayout
}

func (p *pool) capacity(t metadata.DescriptorType) uint32 {
	var n uint32
	for _, s := range p.info.PoolSizes {
		if s.Type == t {
			n += s.DescriptorCount
		}
	}
	return n
}

func (d *Device) CreateDescriptorSetLayout(bindings []metadata.DescriptorSetLayoutBinding) (metadata.DescriptorSetLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateDescriptorSetLayout") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	seen := make(map[uint32]bool)
	for _, b := range bindings {
		if seen[b.Binding] {
			d.violate("duplicate binding %d in set layout", b.Binding)
		}
		seen[b.Binding] = true
	}
	h := d.alloc(KindDescriptorSetLayout)
	d.layouts[h] = append([]metadata.DescriptorSetLayoutBinding(nil), bindings...)
	return h, nil
}

func (d *Device) DestroyDescriptorSetLayout(layout metadata.DescriptorSetLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.release(layout, KindDescriptorSetLayout) {
		delete(d.layouts, layout)
	}
}

func (d *Device) CreateDescriptorPool(info metadata.DescriptorPoolCreateInfo) (metadata.DescriptorPool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("CreateDescriptorPool") {
		return metadata.NullHandle, metadata.RESULT_ERROR_OUT_OF_DEVICE_MEMORY
	}
	if info.MaxSets == 0 {
		d.violate("descriptor pool with max sets 0")
	}
	h := d.alloc(KindDescriptorPool)
	d.pools[h] = &pool{
		info:      info,
		sets:      make(map[metadata.Handle]bool),
		usedTypes: make(map[metadata.DescriptorType]uint32),
	}
	return h, nil
}

// DestroyDescriptorPool frees the pool together with every set allocated from it.
func (d *Device) DestroyDescriptorPool(h metadata.DescriptorPool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[h]
	if !d.release(h, KindDescriptorPool) || !ok {
		return
	}
	d.freeAll(p)
	delete(d.pools, h)
}

func (d *Device) freeAll(p *pool) {
	for s := range p.sets {
		delete(d.live, s)
		delete(d.sets, s)
	}
	p.sets = make(map[metadata.Handle]bool)
	p.usedTypes = make(map[metadata.DescriptorType]uint32)
}

// AllocateDescriptorSets fails with RESULT_ERROR_OUT_OF_POOL_MEMORY when the
// pool lacks sets or descriptors of a required type.
func (d *Device) AllocateDescriptorSets(h metadata.DescriptorPool, layouts []metadata.DescriptorSetLayout) ([]metadata.DescriptorSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("AllocateDescriptorSets") {
		return nil, metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	p, ok := d.pools[h]
	if !ok {
		d.violate("allocate from dead pool %d", h)
		return nil, metadata.RESULT_ERROR_UNKNOWN
	}
	if uint32(len(p.sets)+len(layouts)) > p.info.MaxSets {
		return nil, metadata.RESULT_ERROR_OUT_OF_POOL_MEMORY
	}
	need := make(map[metadata.DescriptorType]uint32)
	for _, l := range layouts {
		bindings, ok := d.layouts[l]
		if !ok {
			d.violate("allocate with dead set layout %d", l)
			return nil, metadata.RESULT_ERROR_UNKNOWN
		}
		for _, b := range bindings {
			need[b.DescriptorType] += b.DescriptorCount
		}
	}
	for t, n := range need {
		if p.usedTypes[t]+n > p.capacity(t) {
			return nil, metadata.RESULT_ERROR_OUT_OF_POOL_MEMORY
		}
	}
	for t, n := range need {
		p.usedTypes[t] += n
	}
	out := make([]metadata.DescriptorSet, len(layouts))
	for i, l := range layouts {
		s := d.alloc(KindDescriptorSet)
		d.sets[s] = &set{pool: h, layout: l}
		p.sets[s] = true
		out[i] = s
	}
	return out, nil
}

func (d *Device) FreeDescriptorSets(h metadata.DescriptorPool, sets []metadata.DescriptorSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pools[h]
	if !ok {
		d.violate("free into dead pool %d", h)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	if p.info.Flags&metadata.DESCRIPTOR_POOL_CREATE_FREE_DESCRIPTOR_SET == 0 {
		d.violate("free from pool %d without the free descriptor set flag", h)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	for _, s := range sets {
		st, ok := d.sets[s]
		if !ok || st.pool != h {
			d.violate("free of set %d not owned by pool %d", s, h)
			continue
		}
		for _, b := range d.layouts[st.layout] {
			p.usedTypes[b.DescriptorType] -= b.DescriptorCount
		}
		delete(p.sets, s)
		delete(d.sets, s)
		d.release(s, KindDescriptorSet)
	}
	return nil
}

func (d *Device) ResetDescriptorPool(h metadata.DescriptorPool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("ResetDescriptorPool") {
		return metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	p, ok := d.pools[h]
	if !ok {
		d.violate("reset of dead pool %d", h)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	d.freeAll(p)
	return nil
}

func (d *Device) UpdateDescriptorSets(writes []metadata.WriteDescriptorSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range writes {
		st, ok := d.sets[w.DstSet]
		if !ok {
			d.violate("write to dead descriptor set %d", w.DstSet)
			continue
		}
		found := false
		for _, b := range d.layouts[st.layout] {
			if b.Binding == w.DstBinding {
				found = true
				if b.DescriptorType != w.DescriptorType {
					d.violate("write of type %d to binding %d of type %d", w.DescriptorType, w.DstBinding, b.DescriptorType)
				}
			}
		}
		if !found {
			d.violate("write to undeclared binding %d", w.DstBinding)
		}
		for _, bi := range w.BufferInfo {
			if !d.isLive(bi.Buffer, KindBuffer) {
				d.violate("write references dead buffer %d", bi.Buffer)
			}
		}
		d.writes = append(d.writes, w)
	}
}

// Writes returns every descriptor write received.
func (d *Device) Writes() []metadata.WriteDescriptorSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]metadata.WriteDescriptorSet(nil), d.writes...)
}
