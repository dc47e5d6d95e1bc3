package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

func (c *Context) AllocateCommandBuffers(count uint32) ([]metadata.CommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.Device.GraphicsCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	buffers := make([]vk.CommandBuffer, count)
	err := c.locks.SafeCall(CommandBufferManagement, func() error {
		return toResult(vk.AllocateCommandBuffers(c.logical(), &allocateInfo, buffers)).Err()
	})
	if err != nil {
		return nil, err
	}
	out := make([]metadata.CommandBuffer, count)
	for i, b := range buffers {
		out[i] = c.newHandle()
		c.commandBuffers.put(out[i], b)
	}
	return out, nil
}

func (c *Context) FreeCommandBuffers(commandBuffers []metadata.CommandBuffer) {
	buffers := make([]vk.CommandBuffer, 0, len(commandBuffers))
	for _, h := range commandBuffers {
		if b, ok := c.commandBuffers.take(h); ok {
			buffers = append(buffers, b)
		}
	}
	if len(buffers) == 0 {
		return
	}
	_ = c.locks.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(c.logical(), c.Device.GraphicsCommandPool, uint32(len(buffers)), buffers)
		return nil
	})
}

// BeginCommandBuffer implicitly resets the buffer; the pool carries the
// reset bit.
func (c *Context) BeginCommandBuffer(commandBuffer metadata.CommandBuffer) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	return toResult(vk.BeginCommandBuffer(c.commandBuffers.get(commandBuffer), &beginInfo)).Err()
}

func (c *Context) EndCommandBuffer(commandBuffer metadata.CommandBuffer) error {
	return toResult(vk.EndCommandBuffer(c.commandBuffers.get(commandBuffer))).Err()
}

func clearValues(values []metadata.ClearValue) []vk.ClearValue {
	out := make([]vk.ClearValue, len(values))
	for i, v := range values {
		if v.IsDepthStencil() {
			out[i] = vk.NewClearDepthStencil(v.Depth, v.Stencil)
		} else {
			out[i] = vk.NewClearValue(v.Color[:])
		}
	}
	return out
}

func (c *Context) CmdBeginRenderPass(commandBuffer metadata.CommandBuffer, info metadata.RenderPassBeginInfo) {
	clears := clearValues(info.ClearValues)
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  c.renderPasses.get(info.RenderPass),
		Framebuffer: c.framebuffers.get(info.Framebuffer),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: info.RenderArea.Offset.X, Y: info.RenderArea.Offset.Y},
			Extent: vk.Extent2D{Width: info.RenderArea.Extent.Width, Height: info.RenderArea.Extent.Height},
		},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}
	vk.CmdBeginRenderPass(c.commandBuffers.get(commandBuffer), &beginInfo, vk.SubpassContentsInline)
}

func (c *Context) CmdEndRenderPass(commandBuffer metadata.CommandBuffer) {
	vk.CmdEndRenderPass(c.commandBuffers.get(commandBuffer))
}

func (c *Context) CmdSetViewport(commandBuffer metadata.CommandBuffer, viewport metadata.Viewport) {
	vk.CmdSetViewport(c.commandBuffers.get(commandBuffer), 0, 1, []vk.Viewport{{
		X:        viewport.X,
		Y:        viewport.Y,
		Width:    viewport.Width,
		Height:   viewport.Height,
		MinDepth: viewport.MinDepth,
		MaxDepth: viewport.MaxDepth,
	}})
}

func (c *Context) CmdSetScissor(commandBuffer metadata.CommandBuffer, scissor metadata.Rect2D) {
	vk.CmdSetScissor(c.commandBuffers.get(commandBuffer), 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: scissor.Offset.X, Y: scissor.Offset.Y},
		Extent: vk.Extent2D{Width: scissor.Extent.Width, Height: scissor.Extent.Height},
	}})
}

func (c *Context) CmdBindPipeline(commandBuffer metadata.CommandBuffer, pipeline metadata.Pipeline) {
	vk.CmdBindPipeline(c.commandBuffers.get(commandBuffer), vk.PipelineBindPointGraphics, c.pipelines.get(pipeline))
}

func (c *Context) CmdBindDescriptorSets(commandBuffer metadata.CommandBuffer, layout metadata.PipelineLayout, firstSet uint32, sets []metadata.DescriptorSet) {
	vk.CmdBindDescriptorSets(c.commandBuffers.get(commandBuffer), vk.PipelineBindPointGraphics,
		c.layouts.get(layout), firstSet, uint32(len(sets)), c.sets.getAll(sets), 0, nil)
}

func (c *Context) CmdPushConstants(commandBuffer metadata.CommandBuffer, layout metadata.PipelineLayout, stages metadata.ShaderStageFlags, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(c.commandBuffers.get(commandBuffer), c.layouts.get(layout),
		vk.ShaderStageFlags(stages), offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (c *Context) CmdDraw(commandBuffer metadata.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(c.commandBuffers.get(commandBuffer), vertexCount, instanceCount, firstVertex, firstInstance)
}
