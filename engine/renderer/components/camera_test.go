package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vstokstad/vulkan-eng/engine/math"
)

func TestCameraViewMovesEyeToOrigin(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(1, 2, 3))
	p := c.GetPosition().Transform(c.GetView())
	assert.True(t, p.Compare(math.NewVec3Zero(), 1e-5), "got %v", p)

	// a point ahead of the camera ends up down -z
	ahead := c.GetPosition().Add(c.Forward()).Transform(c.GetView())
	assert.InDelta(t, -1.0, ahead.Z, 1e-5)
}

func TestCameraLookAt(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(0, 0, 5))
	c.LookAt(math.NewVec3(5, 0, 5))
	assert.True(t, c.Forward().Compare(math.NewVec3(1, 0, 0), 1e-5), "got %v", c.Forward())
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera()
	c.Pitch(10)
	assert.Equal(t, pitchLimit, c.EulerRotation.X)
	c.Pitch(-20)
	assert.Equal(t, -pitchLimit, c.EulerRotation.X)
}

func TestCameraMovement(t *testing.T) {
	c := NewCamera()
	c.MoveForward(2)
	assert.True(t, c.Position.Compare(math.NewVec3(0, 0, -2), 1e-5))
	c.MoveRight(1)
	assert.True(t, c.Position.Compare(math.NewVec3(1, 0, -2), 1e-5))
	c.MoveUp(3)
	assert.True(t, c.Position.Compare(math.NewVec3(1, 3, -2), 1e-5))
	assert.True(t, c.IsDirty)
}

func TestCameraInverseView(t *testing.T) {
	c := NewCamera()
	c.SetPosition(math.NewVec3(4, -1, 2))
	c.Yaw(0.3)
	origin := math.NewVec3Zero().Transform(c.InverseView())
	assert.True(t, origin.Compare(c.GetPosition(), 1e-4), "got %v", origin)
}
