package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

func (c *Context) CreatePipelineLayout(info metadata.PipelineLayoutCreateInfo) (metadata.PipelineLayout, error) {
	ranges := make([]vk.PushConstantRange, len(info.PushConstantRanges))
	for i, r := range info.PushConstantRanges {
		ranges[i] = vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(r.StageFlags),
			Offset:     r.Offset,
			Size:       r.Size,
		}
	}
	setLayouts := c.setLayouts.getAll(info.SetLayouts)
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(c.logical(), &layoutInfo, c.Allocator, &layout); res != vk.Success {
		return metadata.NullHandle, toResult(res)
	}
	h := c.newHandle()
	c.layouts.put(h, layout)
	return h, nil
}

func (c *Context) DestroyPipelineLayout(layout metadata.PipelineLayout) {
	if l, ok := c.layouts.take(layout); ok {
		vk.DestroyPipelineLayout(c.logical(), l, c.Allocator)
	}
}

// PipelineLayoutHandle exposes the device object behind layout for code
// that builds pipelines against it.
func (c *Context) PipelineLayoutHandle(layout metadata.PipelineLayout) vk.PipelineLayout {
	return c.layouts.get(layout)
}

func (c *Context) RenderPassHandle(renderPass metadata.RenderPass) vk.RenderPass {
	return c.renderPasses.get(renderPass)
}
