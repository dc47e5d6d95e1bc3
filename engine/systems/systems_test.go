package systems

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer"
	"github.com/vstokstad/vulkan-eng/engine/renderer/components"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
	"github.com/vstokstad/vulkan-eng/engine/renderer/mock"
)

var _ Device = (*mock.Device)(nil)

const testPipeline = metadata.Handle(0xfeed)

type frameFixture struct {
	dev    *mock.Device
	layout *renderer.DescriptorSetLayout
	frame  *FrameInfo
}

func newFrameFixture(t *testing.T) *frameFixture {
	t.Helper()
	dev := mock.NewDevice()
	layout, err := renderer.NewDescriptorSetLayoutBuilder(dev).
		AddBinding(0, metadata.DESCRIPTOR_TYPE_UNIFORM_BUFFER, metadata.SHADER_STAGE_ALL_GRAPHICS, 1).
		Build()
	require.NoError(t, err)
	pool, err := renderer.NewDescriptorPoolBuilder(dev).
		SetMaxSets(1).
		AddPoolSize(metadata.DESCRIPTOR_TYPE_UNIFORM_BUFFER, 1).
		Build()
	require.NoError(t, err)
	set, err := pool.AllocateDescriptor(layout)
	require.NoError(t, err)
	cbs, err := dev.AllocateCommandBuffers(1)
	require.NoError(t, err)
	require.NoError(t, dev.BeginCommandBuffer(cbs[0]))

	t.Cleanup(func() {
		dev.FreeCommandBuffers(cbs)
		pool.Destroy()
		layout.Destroy()
	})
	return &frameFixture{
		dev:    dev,
		layout: layout,
		frame: &FrameInfo{
			FrameTime:           1.0,
			CommandBuffer:       cbs[0],
			GlobalDescriptorSet: set,
			UBO:                 NewGlobalUBO(),
			Camera:              components.NewCamera(),
		},
	}
}

func TestGlobalUBOLayout(t *testing.T) {
	// 3 matrices, ambient, 10 lights, count padded to 16
	assert.Equal(t, uint64(544), GlobalUBOSize)
	assert.Len(t, NewGlobalUBO().Bytes(), 544)
}

func TestGlobalUBOBytesAliasTheBlock(t *testing.T) {
	ubo := NewGlobalUBO()
	ubo.NumLights = 7
	data := ubo.Bytes()
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(data[528:]))
	// ambient intensity sits after the three matrices
	assert.Equal(t, float32(0.02), stdmath.Float32frombits(binary.LittleEndian.Uint32(data[204:])))
}

func TestGlobalUBOSetCamera(t *testing.T) {
	cam := components.NewCamera()
	cam.SetPerspective(math.DegToRad(60), 1.5, 0.1, 10)
	cam.SetPosition(math.NewVec3(1, 2, 3))
	ubo := NewGlobalUBO()
	ubo.SetCamera(cam)
	assert.Equal(t, cam.Projection, ubo.Projection)
	assert.Equal(t, cam.GetView(), ubo.View)
	eye := math.NewVec3Zero().Transform(ubo.InverseView)
	assert.True(t, eye.Compare(cam.Position, 1e-4), "got %v", eye)
}

type recordingSystem struct {
	name string
	log  *[]string
}

func (s recordingSystem) Update(*FrameInfo) { *s.log = append(*s.log, "update "+s.name) }
func (s recordingSystem) Render(*FrameInfo) { *s.log = append(*s.log, "render "+s.name) }
func (s recordingSystem) Destroy()          { *s.log = append(*s.log, "destroy "+s.name) }

func TestRenderSystemsOrder(t *testing.T) {
	var log []string
	systems := RenderSystems{recordingSystem{"a", &log}, recordingSystem{"b", &log}}
	frame := &FrameInfo{}
	systems.Update(frame)
	systems.Render(frame)
	systems.Destroy()
	assert.Equal(t, []string{
		"update a", "update b",
		"render a", "render b",
		"destroy b", "destroy a",
	}, log)
}

func TestPointLightLimit(t *testing.T) {
	f := newFrameFixture(t)
	s, err := NewPointLightSystem(f.dev, f.layout.Handle(), testPipeline)
	require.NoError(t, err)
	defer s.Destroy()

	for i := 0; i < MaxLights; i++ {
		require.NoError(t, s.AddLight(Light{Intensity: 1}))
	}
	assert.Error(t, s.AddLight(Light{}))
	assert.Len(t, s.Lights(), MaxLights)
}

func TestPointLightUpdateOrbitsAndFillsUBO(t *testing.T) {
	f := newFrameFixture(t)
	s, err := NewPointLightSystem(f.dev, f.layout.Handle(), metadata.NullHandle)
	require.NoError(t, err)
	defer s.Destroy()

	onAxis := lightOrbitAxis.Normalize().MulScalar(2)
	offAxis := math.NewVec3(1, 0, -1)
	require.NoError(t, s.AddLight(Light{Position: onAxis, Color: math.NewVec3(1, 0, 0), Intensity: 0.5}))
	require.NoError(t, s.AddLight(Light{Position: offAxis, Color: math.NewVec3(0, 1, 0), Intensity: 0.2}))

	s.Update(f.frame)

	assert.Equal(t, int32(2), f.frame.UBO.NumLights)
	assert.True(t, s.Lights()[0].Position.Compare(onAxis, 1e-5))
	moved := s.Lights()[1].Position
	assert.False(t, moved.Compare(offAxis, 1e-3))
	assert.InDelta(t, offAxis.Length(), moved.Length(), 1e-5)

	ubo := f.frame.UBO.PointLights[1]
	assert.Equal(t, moved.ToVec4(1), ubo.Position)
	assert.Equal(t, math.NewVec4(0, 1, 0, 0.2), ubo.Color)
	// nothing recorded without a pipeline
	s.Render(f.frame)
	assert.Empty(t, f.dev.Commands())
}

func TestPointLightRenderRecordsOneDrawPerLight(t *testing.T) {
	f := newFrameFixture(t)
	s, err := NewPointLightSystem(f.dev, f.layout.Handle(), testPipeline)
	require.NoError(t, err)
	defer s.Destroy()
	require.NoError(t, s.AddLight(Light{Position: math.NewVec3(1, 2, 3), Color: math.NewVec3One(), Intensity: 1, Radius: 0.25}))
	require.NoError(t, s.AddLight(Light{Radius: 0.5}))

	s.Render(f.frame)

	cmds := f.dev.Commands()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"BindPipeline", "BindDescriptorSets", "PushConstants", "Draw", "PushConstants", "Draw"}, names)

	bind := cmds[1].Args.(mock.BindDescriptorSets)
	assert.Equal(t, s.PipelineLayout(), bind.Layout)
	assert.Equal(t, []metadata.DescriptorSet{f.frame.GlobalDescriptorSet}, bind.Sets)

	push := cmds[2].Args.(mock.PushConstants)
	require.Len(t, push.Data, 36)
	assert.Equal(t, float32(2), stdmath.Float32frombits(binary.LittleEndian.Uint32(push.Data[4:])))
	assert.Equal(t, float32(0.25), stdmath.Float32frombits(binary.LittleEndian.Uint32(push.Data[32:])))
	assert.Equal(t, mock.Draw{VertexCount: 6, InstanceCount: 1}, cmds[3].Args)
	assert.Empty(t, f.dev.Violations())
}

func TestSimpleRenderPushesModelAndNormal(t *testing.T) {
	f := newFrameFixture(t)
	s, err := NewSimpleRenderSystem(f.dev, f.layout.Handle(), testPipeline)
	require.NoError(t, err)
	defer s.Destroy()

	d := NewProcedural(math.TransformFromPosition(math.NewVec3(4, 5, 6)), 36)
	s.Add(d)
	s.Update(f.frame)
	s.Render(f.frame)

	pushes := f.dev.Commands("PushConstants")
	require.Len(t, pushes, 1)
	data := pushes[0].Args.(mock.PushConstants).Data
	require.Len(t, data, 128)
	// translation lives in elements 12..14 of the model matrix
	assert.Equal(t, float32(4), stdmath.Float32frombits(binary.LittleEndian.Uint32(data[48:])))
	assert.Equal(t, float32(6), stdmath.Float32frombits(binary.LittleEndian.Uint32(data[56:])))

	draws := f.dev.Commands("Draw")
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(36), draws[0].Args.(mock.Draw).VertexCount)
	assert.Empty(t, f.dev.Violations())
}

func TestSystemDestroyReleasesLayout(t *testing.T) {
	f := newFrameFixture(t)
	s, err := NewSimpleRenderSystem(f.dev, f.layout.Handle(), testPipeline)
	require.NoError(t, err)
	p, err := NewPointLightSystem(f.dev, f.layout.Handle(), testPipeline)
	require.NoError(t, err)
	assert.Equal(t, 2, f.dev.Live(mock.KindPipelineLayout))

	RenderSystems{s, p}.Destroy()
	assert.Equal(t, 0, f.dev.Live(mock.KindPipelineLayout))
	p.Destroy()
	assert.Equal(t, 0, f.dev.Live(mock.KindPipelineLayout))
}

func TestSystemLayoutFailure(t *testing.T) {
	f := newFrameFixture(t)
	f.dev.FailOn("CreatePipelineLayout", 1)
	_, err := NewPointLightSystem(f.dev, f.layout.Handle(), testPipeline)
	assert.ErrorIs(t, err, core.ErrDeviceObjectCreation)
}

func TestCameraSystemRequiresCapacity(t *testing.T) {
	_, err := NewCameraSystem(0)
	assert.Error(t, err)
}

func TestCameraSystemAcquireRelease(t *testing.T) {
	cs, err := NewCameraSystem(2)
	require.NoError(t, err)

	def, err := cs.Acquire(components.DEFAULT_CAMERA_NAME)
	require.NoError(t, err)
	assert.Same(t, cs.GetDefault(), def)
	assert.Equal(t, 0, cs.Count())

	a, err := cs.Acquire("a")
	require.NoError(t, err)
	again, err := cs.Acquire("a")
	require.NoError(t, err)
	assert.Same(t, a, again)
	_, err = cs.Acquire("b")
	require.NoError(t, err)
	assert.Equal(t, 2, cs.Count())

	_, err = cs.Acquire("c")
	assert.Error(t, err)

	a.SetPosition(math.NewVec3(1, 2, 3))
	cs.Release("a")
	assert.Equal(t, 2, cs.Count())
	cs.Release("a")
	assert.Equal(t, 1, cs.Count())
	assert.True(t, a.GetPosition().Compare(math.NewVec3Zero(), 1e-6))

	// releasing the default or an unknown camera is a no-op
	cs.Release(components.DEFAULT_CAMERA_NAME)
	cs.Release("missing")
	assert.Equal(t, 1, cs.Count())
}

func TestCameraSystemSetAspect(t *testing.T) {
	cs, err := NewCameraSystem(4)
	require.NoError(t, err)
	cam, err := cs.Acquire("side")
	require.NoError(t, err)

	cs.SetAspect(2)
	want := math.NewMat4Perspective(math.DegToRad(50), 2, 0.1, 100)
	assert.Equal(t, want, cs.GetDefault().Projection)
	assert.Equal(t, want, cam.Projection)
}
