package systems

import (
	"fmt"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

// Drawable is anything the simple render system can place and draw.
type Drawable interface {
	Transform() *math.Transform
	Draw(device renderer.CommandDevice, cmd metadata.CommandBuffer)
}

// Procedural is a Drawable whose vertices are generated in the vertex
// shader from the vertex index.
type Procedural struct {
	transform   *math.Transform
	VertexCount uint32
}

func NewProcedural(transform *math.Transform, vertexCount uint32) *Procedural {
	if transform == nil {
		transform = math.TransformCreate()
	}
	return &Procedural{transform: transform, VertexCount: vertexCount}
}

func (p *Procedural) Transform() *math.Transform {
	return p.transform
}

func (p *Procedural) Draw(device renderer.CommandDevice, cmd metadata.CommandBuffer) {
	device.CmdDraw(cmd, p.VertexCount, 1, 0, 0)
}

// model matrix followed by normal matrix
const simplePushSize = uint32(2 * 64)

type SimpleRenderSystem struct {
	device         Device
	pipelineLayout metadata.PipelineLayout
	pipeline       metadata.Pipeline
	drawables      []Drawable
}

func NewSimpleRenderSystem(device Device, globalSetLayout metadata.DescriptorSetLayout, pipeline metadata.Pipeline) (*SimpleRenderSystem, error) {
	layout, err := newPipelineLayout(device, globalSetLayout,
		metadata.SHADER_STAGE_VERTEX|metadata.SHADER_STAGE_FRAGMENT, simplePushSize)
	if err != nil {
		err = fmt.Errorf("failed to create simple pipeline layout: %w: %w", core.ErrDeviceObjectCreation, err)
		core.LogError(err.Error())
		return nil, err
	}
	return &SimpleRenderSystem{
		device:         device,
		pipelineLayout: layout,
		pipeline:       pipeline,
	}, nil
}

func (s *SimpleRenderSystem) Add(d Drawable) {
	s.drawables = append(s.drawables, d)
}

func (s *SimpleRenderSystem) PipelineLayout() metadata.PipelineLayout {
	return s.pipelineLayout
}

func (s *SimpleRenderSystem) Update(frame *FrameInfo) {}

func (s *SimpleRenderSystem) Render(frame *FrameInfo) {
	if s.pipeline.IsNull() || len(s.drawables) == 0 {
		return
	}
	s.device.CmdBindPipeline(frame.CommandBuffer, s.pipeline)
	s.device.CmdBindDescriptorSets(frame.CommandBuffer, s.pipelineLayout, 0, []metadata.DescriptorSet{frame.GlobalDescriptorSet})

	push := make([]byte, 0, simplePushSize)
	for _, d := range s.drawables {
		model := d.Transform().GetWorld()
		normal := d.Transform().NormalMatrix()
		push = append(push[:0], mat4Bytes(&model)...)
		push = append(push, mat4Bytes(&normal)...)
		s.device.CmdPushConstants(frame.CommandBuffer, s.pipelineLayout,
			metadata.SHADER_STAGE_VERTEX|metadata.SHADER_STAGE_FRAGMENT, 0, push)
		d.Draw(s.device, frame.CommandBuffer)
	}
}

func (s *SimpleRenderSystem) Destroy() {
	if !s.pipelineLayout.IsNull() {
		s.device.DestroyPipelineLayout(s.pipelineLayout)
		s.pipelineLayout = metadata.NullHandle
	}
}
