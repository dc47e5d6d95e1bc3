package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(256), AlignUp(uint64(68), 256))
	assert.Equal(t, uint64(256), AlignUp(uint64(256), 256))
	assert.Equal(t, uint64(512), AlignUp(uint64(257), 256))
	assert.Equal(t, uint64(68), AlignUp(uint64(68), 0))
	assert.Equal(t, uint32(64), AlignUp(uint32(1), 64))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(10), Clamp(uint32(5), 10, 20))
	assert.Equal(t, uint32(20), Clamp(uint32(50), 10, 20))
	assert.Equal(t, float32(0.25), Clamp(float32(0.25), 0, 1))
}

func TestQuaternionRotateMatchesMatrix(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, true)
	v := NewVec3(1, 0, 0)

	rotated := q.Rotate(v)
	assert.True(t, rotated.Compare(NewVec3(0, 0, -1), 1e-5), "got %v", rotated)

	viaMatrix := v.Transform(q.ToMat4())
	assert.True(t, viaMatrix.Compare(rotated, 1e-5), "got %v", viaMatrix)
}

func TestMat4InverseOfTranslation(t *testing.T) {
	tr := NewMat4Translation(NewVec3(1, 2, 3))
	inv := tr.Inverse()
	p := NewVec3(5, 5, 5).Transform(tr).Transform(inv)
	assert.True(t, p.Compare(NewVec3(5, 5, 5), 1e-5), "got %v", p)

	id := tr.Mul(inv)
	for i, want := range NewMat4Identity().Data {
		assert.InDelta(t, want, id.Data[i], 1e-5)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := NewVec3(0, 2, 5)
	view := NewMat4LookAt(eye, NewVec3Zero(), NewVec3Up())
	p := eye.Transform(view)
	assert.True(t, p.Compare(NewVec3Zero(), 1e-5), "got %v", p)

	// the target lies in front of the camera, down -z
	target := NewVec3Zero().Transform(view)
	assert.Less(t, target.Z, float32(0))
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := NewMat4Perspective(DegToRad(45), 16.0/9.0, 0.1, 100)
	depth := func(z float32) float32 {
		d := proj.Data
		zc := z*d[10] + d[14]
		wc := z * d[11]
		return zc / wc
	}
	assert.InDelta(t, 0.0, depth(-0.1), 1e-5)
	assert.InDelta(t, 1.0, depth(-100), 1e-4)
}

func TestTransformLocal(t *testing.T) {
	tr := TransformFromPosition(NewVec3(1, 0, 0))
	tr.SetScale(NewVec3(2, 2, 2))
	p := NewVec3(1, 0, 0).Transform(tr.GetLocal())
	assert.True(t, p.Compare(NewVec3(3, 0, 0), 1e-5), "got %v", p)
	assert.False(t, tr.IsDirty)
}
