package mock

import (
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type commandBuffer struct {
	recording bool
	// fence of the last submission that used the buffer
	fence metadata.Fence
}

// Command is one recorded Cmd* call. Args holds the call's info struct or
// arguments.
type Command struct {
	Name          string
	CommandBuffer metadata.CommandBuffer
	Args          interface{}
}

type BindDescriptorSets struct {
	Layout   metadata.PipelineLayout
	FirstSet uint32
	Sets     []metadata.DescriptorSet
}

type PushConstants struct {
	Layout metadata.PipelineLayout
	Stages metadata.ShaderStageFlags
	Offset uint32
	Data   []byte
}

type Draw struct {
	VertexCount, InstanceCount, FirstVertex, FirstInstance uint32
}

func (d *Device) AllocateCommandBuffers(count uint32) ([]metadata.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("AllocateCommandBuffers") {
		return nil, metadata.RESULT_ERROR_OUT_OF_DEVICE_MEMORY
	}
	out := make([]metadata.CommandBuffer, count)
	for i := range out {
		out[i] = d.alloc(KindCommandBuffer)
		d.commands[out[i]] = &commandBuffer{}
	}
	return out, nil
}

func (d *Device) FreeCommandBuffers(cbs []metadata.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cb := range cbs {
		if c, ok := d.commands[cb]; ok && d.pending(c) {
			d.violate("command buffer %d freed while in flight", cb)
		}
		if d.release(cb, KindCommandBuffer) {
			delete(d.commands, cb)
		}
	}
}

func (d *Device) pending(c *commandBuffer) bool {
	f, ok := d.fences[c.fence]
	return ok && f.pending
}

// BeginCommandBuffer resets and begins cb. Beginning a buffer whose last
// submission has not retired is a violation.
func (d *Device) BeginCommandBuffer(cb metadata.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("BeginCommandBuffer") {
		return metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	c, ok := d.commands[cb]
	if !ok {
		d.violate("begin of dead command buffer %d", cb)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	if d.pending(c) {
		d.violate("begin of command buffer %d still in flight", cb)
	}
	if c.recording {
		d.violate("begin of command buffer %d already recording", cb)
	}
	c.recording = true
	return nil
}

func (d *Device) EndCommandBuffer(cb metadata.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.call("EndCommandBuffer") {
		return metadata.RESULT_ERROR_OUT_OF_HOST_MEMORY
	}
	c, ok := d.commands[cb]
	if !ok || !c.recording {
		d.violate("end of command buffer %d not recording", cb)
		return metadata.RESULT_ERROR_UNKNOWN
	}
	c.recording = false
	return nil
}

func (d *Device) record(cb metadata.CommandBuffer, name string, args interface{}) {
	c, ok := d.commands[cb]
	if !ok || !c.recording {
		d.violate("%s on command buffer %d not recording", name, cb)
	}
	d.recorded = append(d.recorded, Command{Name: name, CommandBuffer: cb, Args: args})
}

func (d *Device) CmdBeginRenderPass(cb metadata.CommandBuffer, info metadata.RenderPassBeginInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(cb, "BeginRenderPass", info)
}

func (d *Device) CmdEndRenderPass(cb metadata.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(cb, "EndRenderPass", nil)
}

func (d *Device) CmdSetViewport(cb metadata.CommandBuffer, viewport metadata.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(cb, "SetViewport", viewport)
}

func (d *Device) CmdSetScissor(cb metadata.CommandBuffer, scissor metadata.Rect2D) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(cb, "SetScissor", scissor)
}

func (d *Device) CmdBindPipeline(cb metadata.CommandBuffer, pipeline metadata.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(cb, "BindPipeline", pipeline)
}

func (d *Device) CmdBindDescriptorSets(cb metadata.CommandBuffer, layout metadata.PipelineLayout, firstSet uint32, sets []metadata.DescriptorSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range sets {
		if _, ok := d.sets[s]; !ok {
			d.violate("bind of dead descriptor set %d", s)
		}
	}
	d.record(cb, "BindDescriptorSets", BindDescriptorSets{
		Layout:   layout,
		FirstSet: firstSet,
		Sets:     append([]metadata.DescriptorSet(nil), sets...),
	})
}

func (d *Device) CmdPushConstants(cb metadata.CommandBuffer, layout metadata.PipelineLayout, stages metadata.ShaderStageFlags, offset uint32, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if offset+uint32(len(data)) > d.DeviceLimits.MaxPushConstantsSize {
		d.violate("push constants of %d bytes at %d exceed %d", len(data), offset, d.DeviceLimits.MaxPushConstantsSize)
	}
	d.record(cb, "PushConstants", PushConstants{
		Layout: layout,
		Stages: stages,
		Offset: offset,
		Data:   append([]byte(nil), data...),
	})
}

func (d *Device) CmdDraw(cb metadata.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(cb, "Draw", Draw{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

// Commands returns every recorded command, optionally filtered by name.
func (d *Device) Commands(names ...string) []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(names) == 0 {
		return append([]Command(nil), d.recorded...)
	}
	var out []Command
	for _, c := range d.recorded {
		for _, n := range names {
			if c.Name == n {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
