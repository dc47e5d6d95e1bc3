package renderer

import (
	"fmt"
	"sort"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type DescriptorSetLayoutBuilder struct {
	device   DescriptorDevice
	bindings map[uint32]metadata.DescriptorSetLayoutBinding
}

func NewDescriptorSetLayoutBuilder(device DescriptorDevice) *DescriptorSetLayoutBuilder {
	return &DescriptorSetLayoutBuilder{
		device:   device,
		bindings: make(map[uint32]metadata.DescriptorSetLayoutBinding),
	}
}

// AddBinding declares binding. Declaring the same binding twice panics.
func (b *DescriptorSetLayoutBuilder) AddBinding(binding uint32, descriptorType metadata.DescriptorType, stageFlags metadata.ShaderStageFlags, count uint32) *DescriptorSetLayoutBuilder {
	_, exists := b.bindings[binding]
	core.Assert(!exists, "binding %d already in use", binding)
	if count == 0 {
		count = 1
	}
	b.bindings[binding] = metadata.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  descriptorType,
		DescriptorCount: count,
		StageFlags:      stageFlags,
	}
	return b
}

func (b *DescriptorSetLayoutBuilder) Build() (*DescriptorSetLayout, error) {
	bindings := make(map[uint32]metadata.DescriptorSetLayoutBinding, len(b.bindings))
	for k, v := range b.bindings {
		bindings[k] = v
	}
	return NewDescriptorSetLayout(b.device, bindings)
}

// DescriptorSetLayout is an immutable binding table shared by every set
// allocated against it.
type DescriptorSetLayout struct {
	device   DescriptorDevice
	handle   metadata.DescriptorSetLayout
	bindings map[uint32]metadata.DescriptorSetLayoutBinding
}

func NewDescriptorSetLayout(device DescriptorDevice, bindings map[uint32]metadata.DescriptorSetLayoutBinding) (*DescriptorSetLayout, error) {
	l := &DescriptorSetLayout{
		device:   device,
		bindings: bindings,
	}
	handle, err := device.CreateDescriptorSetLayout(l.Bindings())
	if err != nil {
		err = fmt.Errorf("failed to create descriptor set layout: %w: %w", core.ErrDeviceObjectCreation, err)
		core.LogError(err.Error())
		return nil, err
	}
	l.handle = handle
	return l, nil
}

func (l *DescriptorSetLayout) Handle() metadata.DescriptorSetLayout {
	return l.handle
}

func (l *DescriptorSetLayout) Binding(binding uint32) (metadata.DescriptorSetLayoutBinding, bool) {
	b, ok := l.bindings[binding]
	return b, ok
}

// Bindings returns the declared bindings ordered by binding index.
func (l *DescriptorSetLayout) Bindings() []metadata.DescriptorSetLayoutBinding {
	out := make([]metadata.DescriptorSetLayoutBinding, 0, len(l.bindings))
	for _, b := range l.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Binding < out[j].Binding })
	return out
}

func (l *DescriptorSetLayout) Destroy() {
	if !l.handle.IsNull() {
		l.device.DestroyDescriptorSetLayout(l.handle)
		l.handle = metadata.NullHandle
	}
}
