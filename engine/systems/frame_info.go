package systems

import (
	"unsafe"

	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer"
	"github.com/vstokstad/vulkan-eng/engine/renderer/components"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
)

const MaxLights = 10

// PointLight mirrors the shader side layout: w of Color is the intensity.
type PointLight struct {
	Position math.Vec4
	Color    math.Vec4
}

// GlobalUBO is the per frame uniform block. Its field order and padding
// match the std140 layout of the shaders' global block.
type GlobalUBO struct {
	Projection        math.Mat4
	View              math.Mat4
	InverseView       math.Mat4
	AmbientLightColor math.Vec4
	PointLights       [MaxLights]PointLight
	NumLights         int32
	_                 [3]int32
}

// GlobalUBOSize is the size of GlobalUBO in bytes.
const GlobalUBOSize = uint64(unsafe.Sizeof(GlobalUBO{}))

func NewGlobalUBO() *GlobalUBO {
	return &GlobalUBO{
		Projection:        math.NewMat4Identity(),
		View:              math.NewMat4Identity(),
		InverseView:       math.NewMat4Identity(),
		AmbientLightColor: math.NewVec4(1.0, 1.0, 1.0, 0.02),
	}
}

// Bytes returns a view of u without copying.
func (u *GlobalUBO) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), unsafe.Sizeof(*u))
}

// SetCamera copies the camera matrices into the block.
func (u *GlobalUBO) SetCamera(camera *components.Camera) {
	u.Projection = camera.Projection
	u.View = camera.GetView()
	u.InverseView = camera.InverseView()
}

// FrameInfo is what every render system sees for the frame being recorded.
type FrameInfo struct {
	FrameIndex          uint32
	FrameTime           float32
	AspectRatio         float32
	CommandBuffer       metadata.CommandBuffer
	GlobalDescriptorSet metadata.DescriptorSet
	UBO                 *GlobalUBO
	Camera              *components.Camera
}

// RenderSystem contributes to a frame in two phases: Update runs before the
// uniform buffer is written, Render inside the swapchain render pass.
type RenderSystem interface {
	Update(frame *FrameInfo)
	Render(frame *FrameInfo)
	Destroy()
}

// Device is what render systems record into.
type Device interface {
	renderer.CommandDevice
	renderer.PipelineDevice
}

// RenderSystems runs each system in insertion order.
type RenderSystems []RenderSystem

func (rs RenderSystems) Update(frame *FrameInfo) {
	for _, s := range rs {
		s.Update(frame)
	}
}

func (rs RenderSystems) Render(frame *FrameInfo) {
	for _, s := range rs {
		s.Render(frame)
	}
}

// Destroy releases the systems in reverse order.
func (rs RenderSystems) Destroy() {
	for i := len(rs) - 1; i >= 0; i-- {
		rs[i].Destroy()
	}
}

func mat4Bytes(m *math.Mat4) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Data[0])), len(m.Data)*4)
}

func newPipelineLayout(device Device, globalSetLayout metadata.DescriptorSetLayout, stages metadata.ShaderStageFlags, pushSize uint32) (metadata.PipelineLayout, error) {
	return device.CreatePipelineLayout(metadata.PipelineLayoutCreateInfo{
		SetLayouts: []metadata.DescriptorSetLayout{globalSetLayout},
		PushConstantRanges: []metadata.PushConstantRange{
			{StageFlags: stages, Offset: 0, Size: pushSize},
		},
	})
}
