package systems

import (
	"fmt"
	"unsafe"

	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

type Light struct {
	Position  math.Vec3
	Color     math.Vec3
	Intensity float32
	Radius    float32
}

type pointLightPushConstants struct {
	Position math.Vec4
	Color    math.Vec4
	Radius   float32
}

const pointLightPushSize = uint32(unsafe.Sizeof(pointLightPushConstants{}))

// lights orbit this axis
var lightOrbitAxis = math.NewVec3(0.1, -1.0, 0.1)

// PointLightSystem animates up to MaxLights lights, feeds them to the
// uniform buffer and draws each one as a billboard.
type PointLightSystem struct {
	device         Device
	pipelineLayout metadata.PipelineLayout
	pipeline       metadata.Pipeline
	lights         []Light
}

// NewPointLightSystem creates the system's pipeline layout against the
// global set layout. With a null pipeline the lights are animated but not drawn.
func NewPointLightSystem(device Device, globalSetLayout metadata.DescriptorSetLayout, pipeline metadata.Pipeline) (*PointLightSystem, error) {
	layout, err := newPipelineLayout(device, globalSetLayout,
		metadata.SHADER_STAGE_VERTEX|metadata.SHADER_STAGE_FRAGMENT, pointLightPushSize)
	if err != nil {
		err = fmt.Errorf("failed to create point light pipeline layout: %w: %w", core.ErrDeviceObjectCreation, err)
		core.LogError(err.Error())
		return nil, err
	}
	return &PointLightSystem{
		device:         device,
		pipelineLayout: layout,
		pipeline:       pipeline,
	}, nil
}

func (s *PointLightSystem) AddLight(light Light) error {
	if len(s.lights) >= MaxLights {
		return fmt.Errorf("point light limit of %d reached", MaxLights)
	}
	s.lights = append(s.lights, light)
	return nil
}

func (s *PointLightSystem) Lights() []Light {
	return s.lights
}

func (s *PointLightSystem) PipelineLayout() metadata.PipelineLayout {
	return s.pipelineLayout
}

func (s *PointLightSystem) Update(frame *FrameInfo) {
	rotation := math.NewQuatFromAxisAngle(lightOrbitAxis, frame.FrameTime*math.K_HALF_PI, true)
	for i := range s.lights {
		s.lights[i].Position = rotation.Rotate(s.lights[i].Position)
		frame.UBO.PointLights[i] = PointLight{
			Position: s.lights[i].Position.ToVec4(1.0),
			Color:    s.lights[i].Color.ToVec4(s.lights[i].Intensity),
		}
	}
	frame.UBO.NumLights = int32(len(s.lights))
}

func (s *PointLightSystem) Render(frame *FrameInfo) {
	if s.pipeline.IsNull() || len(s.lights) == 0 {
		return
	}
	s.device.CmdBindPipeline(frame.CommandBuffer, s.pipeline)
	s.device.CmdBindDescriptorSets(frame.CommandBuffer, s.pipelineLayout, 0, []metadata.DescriptorSet{frame.GlobalDescriptorSet})

	for _, l := range s.lights {
		push := pointLightPushConstants{
			Position: l.Position.ToVec4(1.0),
			Color:    l.Color.ToVec4(l.Intensity),
			Radius:   l.Radius,
		}
		data := unsafe.Slice((*byte)(unsafe.Pointer(&push)), pointLightPushSize)
		s.device.CmdPushConstants(frame.CommandBuffer, s.pipelineLayout,
			metadata.SHADER_STAGE_VERTEX|metadata.SHADER_STAGE_FRAGMENT, 0, data)
		s.device.CmdDraw(frame.CommandBuffer, 6, 1, 0, 0)
	}
}

func (s *PointLightSystem) Destroy() {
	if !s.pipelineLayout.IsNull() {
		s.device.DestroyPipelineLayout(s.pipelineLayout)
		s.pipelineLayout = metadata.NullHandle
	}
}
