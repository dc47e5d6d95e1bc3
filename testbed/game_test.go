package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vstokstad/vulkan-eng/engine/core"
	"github.com/vstokstad/vulkan-eng/engine/math"
	"github.com/vstokstad/vulkan-eng/engine/renderer/components"
	"github.com/vstokstad/vulkan-eng/engine/systems"
)

func TestSpinningLightsAreEvenlySpread(t *testing.T) {
	lights := spinningLights()
	assert.Len(t, lights, len(lightColors))
	assert.LessOrEqual(t, len(lights), systems.MaxLights)

	first := lights[0].Position
	assert.True(t, first.Compare(math.NewVec3(-1, -1, -1), 1e-5))
	for i, l := range lights {
		// rotation about y keeps height and distance from the axis
		assert.InDelta(t, -1.0, l.Position.Y, 1e-5, "light %d", i)
		r := l.Position.X*l.Position.X + l.Position.Z*l.Position.Z
		assert.InDelta(t, 2.0, r, 1e-4, "light %d", i)
		assert.Equal(t, lightColors[i], l.Color)
	}
	// opposite side of the circle after half the lights
	opposite := lights[len(lights)/2].Position
	assert.True(t, opposite.Compare(math.NewVec3(1, -1, 1), 1e-4))
}

func TestMoveCameraFollowsHeldKeys(t *testing.T) {
	cam := components.NewCamera()
	keys := map[core.Key]bool{core.KEY_W: true}
	moveCamera(cam, keys, 1.0)
	assert.InDelta(t, -moveSpeed, cam.GetPosition().Z, 1e-5)

	keys[core.KEY_W] = false
	keys[core.KEY_E] = true
	moveCamera(cam, keys, 0.5)
	assert.InDelta(t, moveSpeed*0.5, cam.GetPosition().Y, 1e-5)

	keys = map[core.Key]bool{core.KEY_RIGHT: true}
	moveCamera(cam, keys, 1.0)
	assert.InDelta(t, lookSpeed, cam.GetEulerRotation().Y, 1e-5)
}

func TestKeyEventsTrackHeldState(t *testing.T) {
	g := NewTestGame(nil)
	ctx := core.EventContext{}
	ctx.Data.U16[0] = uint16(core.KEY_W)

	assert.False(t, g.onKey(core.EVENT_CODE_KEY_PRESSED, nil, g, ctx))
	assert.True(t, g.state().keys[core.KEY_W])
	g.onKey(core.EVENT_CODE_KEY_RELEASED, nil, g, ctx)
	assert.False(t, g.state().keys[core.KEY_W])
}
