package testbed

import (
	"github.com/vstokstad/vulkan-eng/engine"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer/components"
	"github.com/vstokstad/vulkan-eng/engine/renderer/metadata"
	"github.com/vstokstad/vulkan-eng/engine/systems"
)

const (
	moveSpeed = 3.0
	lookSpeed = 1.5
)

var lightColors = []math.Vec3{
	{X: 1.0, Y: 0.1, Z: 0.1},
	{X: 0.1, Y: 0.1, Z: 1.0},
	{X: 0.1, Y: 1.0, Z: 0.1},
	{X: 1.0, Y: 1.0, Z: 0.1},
	{X: 0.1, Y: 1.0, Z: 1.0},
	{X: 1.0, Y: 1.0, Z: 1.0},
}

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine *engine.Engine
	camera *components.Camera
	keys   map[core.Key]bool

	lights *systems.PointLightSystem
	meshes *systems.SimpleRenderSystem
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				keys: make(map[core.Key]bool),
			},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

// spinningLights places the lights evenly on a circle around -y.
func spinningLights() []systems.Light {
	lights := make([]systems.Light, len(lightColors))
	for i, color := range lightColors {
		angle := float32(i) * math.K_PI_2 / float32(len(lightColors))
		rotation := math.NewQuatFromAxisAngle(math.NewVec3(0, -1, 0), angle, true)
		lights[i] = systems.Light{
			Position:  rotation.Rotate(math.NewVec3(-1, -1, -1)),
			Color:     color,
			Intensity: 0.1,
			Radius:    0.1,
		}
	}
	return lights
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.state()
	state.engine = e

	state.camera = e.Cameras().GetDefault()
	state.camera.SetPerspective(math.DegToRad(60), e.Renderer().AspectRatio(), 0.01, 1000.0)
	state.camera.SetPosition(math.NewVec3(0, -0.5, 8))
	state.camera.LookAt(math.NewVec3Zero())

	// pipelines are built outside the engine; without one the systems only
	// keep their uniform data current
	lights, err := systems.NewPointLightSystem(e.Device(), e.GlobalSetLayout(), metadata.NullHandle)
	if err != nil {
		return err
	}
	for _, l := range spinningLights() {
		if err := lights.AddLight(l); err != nil {
			lights.Destroy()
			return err
		}
	}
	state.lights = lights

	meshes, err := systems.NewSimpleRenderSystem(e.Device(), e.GlobalSetLayout(), metadata.NullHandle)
	if err != nil {
		lights.Destroy()
		return err
	}
	floor := math.TransformFromPosition(math.NewVec3(0, 0.5, 0))
	floor.SetScale(math.NewVec3(3, 1, 3))
	meshes.Add(systems.NewProcedural(floor, 6))
	state.meshes = meshes

	e.AddRenderSystem(meshes)
	e.AddRenderSystem(lights)

	e.Events().Register(core.EVENT_CODE_KEY_PRESSED, g, g.onKey)
	e.Events().Register(core.EVENT_CODE_KEY_RELEASED, g, g.onKey)
	return nil
}

func (g *TestGame) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	key := core.Key(data.Data.U16[0])
	g.state().keys[key] = code == core.EVENT_CODE_KEY_PRESSED
	return false
}

// Update moves the camera from the held keys.
func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	if state.camera == nil {
		return nil
	}
	moveCamera(state.camera, state.keys, float32(deltaTime))
	return nil
}

func moveCamera(camera *components.Camera, keys map[core.Key]bool, dt float32) {
	step := moveSpeed * dt
	turn := lookSpeed * dt
	if keys[core.KEY_LEFT] {
		camera.Yaw(-turn)
	}
	if keys[core.KEY_RIGHT] {
		camera.Yaw(turn)
	}
	if keys[core.KEY_UP] {
		camera.Pitch(turn)
	}
	if keys[core.KEY_DOWN] {
		camera.Pitch(-turn)
	}
	if keys[core.KEY_W] {
		camera.MoveForward(step)
	}
	if keys[core.KEY_S] {
		camera.MoveBackward(step)
	}
	if keys[core.KEY_D] {
		camera.MoveRight(step)
	}
	if keys[core.KEY_A] {
		camera.MoveLeft(step)
	}
	if keys[core.KEY_E] {
		camera.MoveUp(step)
	}
	if keys[core.KEY_Q] {
		camera.MoveDown(step)
	}
}

func (g *TestGame) Render(frame *systems.FrameInfo) error {
	if frame.FrameIndex == 0 {
		pos := frame.Camera.GetPosition()
		rot := frame.Camera.GetEulerRotation()
		core.LogDebug("Camera Pos: [%.3f, %.3f, %.3f] Rot: [%.3f, %.3f, %.3f]",
			pos.X, pos.Y, pos.Z, math.RadToDeg(rot.X), math.RadToDeg(rot.Y), math.RadToDeg(rot.Z))
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	core.LogDebug("testbed resized to %dx%d", width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	if state.engine != nil {
		state.engine.Events().Unregister(core.EVENT_CODE_KEY_PRESSED, g)
		state.engine.Events().Unregister(core.EVENT_CODE_KEY_RELEASED, g)
	}
	core.LogInfo("testbed shut down")
	return nil
}
