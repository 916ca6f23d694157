package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTranslationHelpers(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 3, 4))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, Translation(m))
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, AxisScale(m))

	moved := WithTranslation(m, mgl32.Vec3{-1, 0, 5})
	assert.Equal(t, mgl32.Vec3{-1, 0, 5}, Translation(moved))
	assert.Equal(t, m.Col(0), moved.Col(0))
}

func TestLookRotation(t *testing.T) {
	r, ok := LookRotation(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	assert.True(t, ok)
	forward := r.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	assert.True(t, forward.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5))
	up := r.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3()
	assert.True(t, up.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5))

	r, ok = LookRotation(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0})
	assert.True(t, ok)
	assert.InDelta(t, 1, r.Mat3().Det(), 1e-5)

	_, ok = LookRotation(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.False(t, ok)
}

func TestScalarHelpers(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, Lerp(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 2, 2}, 0.5))
	assert.Equal(t, float32(0), Smoothstep(-1))
	assert.Equal(t, float32(0.5), Smoothstep(0.5))
	assert.Equal(t, float32(1), Smoothstep(2))
	assert.InDelta(t, -mgl32.DegToRad(90), WrapAngle(mgl32.DegToRad(270)), 1e-5)
	assert.InDelta(t, 0.5, WrapAngle(0.5), 1e-6)
	assert.Equal(t, "b", Coalesce("", "b", "c"))
}
