package renderer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

const defaultMaxSets uint32 = 1000

type DescriptorPoolBuilder struct {
	device    DescriptorDevice
	poolSizes []metadata.DescriptorPoolSize
	maxSets   uint32
	poolFlags metadata.DescriptorPoolCreateFlags
}

func NewDescriptorPoolBuilder(device DescriptorDevice) *DescriptorPoolBuilder {
	return &DescriptorPoolBuilder{
		device:  device,
		maxSets: defaultMaxSets,
	}
}

func (b *DescriptorPoolBuilder) AddPoolSize(descriptorType metadata.DescriptorType, count uint32) *DescriptorPoolBuilder {
	b.poolSizes = append(b.poolSizes, metadata.DescriptorPoolSize{Type: descriptorType, DescriptorCount: count})
	return b
}

func (b *DescriptorPoolBuilder) SetPoolFlags(flags metadata.DescriptorPoolCreateFlags) *DescriptorPoolBuilder {
	b.poolFlags = flags
	return b
}

func (b *DescriptorPoolBuilder) SetMaxSets(count uint32) *DescriptorPoolBuilder {
	b.maxSets = count
	return b
}

func (b *DescriptorPoolBuilder) Build() (*DescriptorPool, error) {
	return NewDescriptorPool(b.device, b.maxSets, b.poolFlags, b.poolSizes)
}

// DescriptorPool is a fixed capacity source of descriptor sets.
type DescriptorPool struct {
	id      uuid.UUID
	device  DescriptorDevice
	handle  metadata.DescriptorPool
	maxSets uint32
	flags   metadata.DescriptorPoolCreateFlags
}

func NewDescriptorPool(device DescriptorDevice, maxSets uint32, flags metadata.DescriptorPoolCreateFlags, poolSizes []metadata.DescriptorPoolSize) (*DescriptorPool, error) {
	sizes := make([]metadata.DescriptorPoolSize, len(poolSizes))
	copy(sizes, poolSizes)

	handle, err := device.CreateDescriptorPool(metadata.DescriptorPoolCreateInfo{
		Flags:     flags,
		MaxSets:   maxSets,
		PoolSizes: sizes,
	})
	if err != nil {
		err = fmt.Errorf("failed to create descriptor pool: %w: %w", core.ErrDeviceObjectCreation, err)
		core.LogError(err.Error())
		return nil, err
	}
	p := &DescriptorPool{
		id:      uuid.New(),
		device:  device,
		handle:  handle,
		maxSets: maxSets,
		flags:   flags,
	}
	core.LogDebug("descriptor pool %s created: max sets %d, %d pool sizes", p.id, maxSets, len(sizes))
	return p, nil
}

// AllocateDescriptor allocates one set for layout. Running out of pool
// storage is reported as core.ErrPoolExhausted.
func (p *DescriptorPool) AllocateDescriptor(layout *DescriptorSetLayout) (metadata.DescriptorSet, error) {
	sets, err := p.device.AllocateDescriptorSets(p.handle, []metadata.DescriptorSetLayout{layout.Handle()})
	if err != nil {
		if errors.Is(err, metadata.RESULT_ERROR_OUT_OF_POOL_MEMORY) || errors.Is(err, metadata.RESULT_ERROR_FRAGMENTED_POOL) {
			return metadata.NullHandle, fmt.Errorf("descriptor pool %s: %w: %w", p.id, core.ErrPoolExhausted, err)
		}
		err = fmt.Errorf("failed to allocate descriptor set from pool %s: %w", p.id, err)
		core.LogError(err.Error())
		return metadata.NullHandle, err
	}
	return sets[0], nil
}

// FreeDescriptors returns sets to the pool. The pool must have been built
// with DESCRIPTOR_POOL_CREATE_FREE_DESCRIPTOR_SET.
func (p *DescriptorPool) FreeDescriptors(sets ...metadata.DescriptorSet) error {
	if p.flags&metadata.DESCRIPTOR_POOL_CREATE_FREE_DESCRIPTOR_SET == 0 {
		return fmt.Errorf("descriptor pool %s: %w", p.id, core.ErrPoolNotFreeable)
	}
	if len(sets) == 0 {
		return nil
	}
	if err := p.device.FreeDescriptorSets(p.handle, sets); err != nil {
		err = fmt.Errorf("failed to free descriptor sets: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// ResetPool returns every set allocated from the pool at once.
func (p *DescriptorPool) ResetPool() error {
	if err := p.device.ResetDescriptorPool(p.handle); err != nil {
		err = fmt.Errorf("failed to reset descriptor pool %s: %w", p.id, err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (p *DescriptorPool) Destroy() {
	if !p.handle.IsNull() {
		p.device.DestroyDescriptorPool(p.handle)
		p.handle = metadata.NullHandle
	}
}

func (p *DescriptorPool) ID() uuid.UUID                             { return p.id }
func (p *DescriptorPool) Handle() metadata.DescriptorPool           { return p.handle }
func (p *DescriptorPool) MaxSets() uint32                           { return p.maxSets }
func (p *DescriptorPool) Flags() metadata.DescriptorPoolCreateFlags { return p.flags }
