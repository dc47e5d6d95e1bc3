package components

import (
	stdmath "math"

	"github.com/vstokstad/vulkan-eng/engine/math"
)

// pitch limit, 89 degrees
const pitchLimit float32 = 1.55334306

/**
 * @brief Represents a camera that produces the projection and view
 * matrices uploaded with the global uniform buffer.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/**
	 * @brief The rotation of this camera in radians (pitch, yaw, roll).
	 * Roll is ignored.
	 */
	EulerRotation math.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: Do not get this directly, use GetView() instead.
	 */
	ViewMatrix math.Mat4

	Projection math.Mat4

	fov, near, far float32
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{
		fov:  math.DegToRad(50),
		near: 0.1,
		far:  100.0,
	}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = math.NewVec3Zero()
	c.Position = math.NewVec3Zero()
	c.IsDirty = true
	c.ViewMatrix = math.NewMat4Identity()
	c.Projection = math.NewMat4Identity()
}

// SetPerspective sets a right handed perspective projection with a [0, 1] depth range.
func (c *Camera) SetPerspective(fovRadians, aspect, near, far float32) {
	c.fov, c.near, c.far = fovRadians, near, far
	c.Projection = math.NewMat4Perspective(fovRadians, aspect, near, far)
}

// SetAspect keeps the field of view and clip planes and rebuilds the projection.
func (c *Camera) SetAspect(aspect float32) {
	c.Projection = math.NewMat4Perspective(c.fov, aspect, c.near, c.far)
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetEulerRotation() math.Vec3 {
	return c.EulerRotation
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.EulerRotation = rotation
	c.IsDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	c.EulerRotation.X = float32(stdmath.Asin(float64(math.Clamp(dir.Y, -1, 1))))
	c.EulerRotation.Y = float32(stdmath.Atan2(float64(dir.X), float64(-dir.Z)))
	c.IsDirty = true
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		c.ViewMatrix = math.NewMat4LookAt(c.Position, c.Position.Add(c.Forward()), math.NewVec3Up())
		c.IsDirty = false
	}
	return c.ViewMatrix
}

// InverseView returns the camera to world transform.
func (c *Camera) InverseView() math.Mat4 {
	return c.GetView().Inverse()
}

// Forward points down -z at zero rotation.
func (c *Camera) Forward() math.Vec3 {
	pitch, yaw := float64(c.EulerRotation.X), float64(c.EulerRotation.Y)
	return math.NewVec3(
		float32(stdmath.Sin(yaw)*stdmath.Cos(pitch)),
		float32(stdmath.Sin(pitch)),
		float32(-stdmath.Cos(yaw)*stdmath.Cos(pitch)),
	)
}

func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(math.NewVec3Up()).Normalize()
}

func (c *Camera) MoveForward(amount float32) {
	c.Position = c.Position.Add(c.Forward().MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.Position = c.Position.Add(c.Right().MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.Position = c.Position.Add(math.NewVec3Up().MulScalar(amount))
	c.IsDirty = true
}

func (c *Camera) MoveDown(amount float32) {
	c.MoveUp(-amount)
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation.Y += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation.X += amount
	// Clamp to avoid Gimbal lock.
	c.EulerRotation.X = math.Clamp(c.EulerRotation.X, -pitchLimit, pitchLimit)
	c.IsDirty = true
}
