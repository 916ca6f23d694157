package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Translation returns the translation column of a column-major transform.
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// WithTranslation returns m with its translation column replaced by p.
//
// Parameters:
//   - m: source transform
//   - p: new translation
//
// Returns:
//   - mgl32.Mat4: the modified transform
func WithTranslation(m mgl32.Mat4, p mgl32.Vec3) mgl32.Mat4 {
	m[12], m[13], m[14] = p[0], p[1], p[2]
	return m
}

// AxisScale returns the length of each basis column of m.
func AxisScale(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}

// LookRotation builds a rotation whose -Z axis points along forward.
// The up hint is replaced by +Z when forward is nearly parallel to it.
//
// Parameters:
//   - forward: view direction, need not be normalized
//   - up: up hint
//
// Returns:
//   - mgl32.Mat4: rotation matrix
//   - bool: false when forward has zero length
func LookRotation(forward, up mgl32.Vec3) (mgl32.Mat4, bool) {
	if forward.Len() < 1e-6 {
		return mgl32.Ident4(), false
	}
	f := forward.Normalize()
	if math32.Abs(f.Dot(up.Normalize())) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	r := f.Cross(up).Normalize()
	u := r.Cross(f)
	return mgl32.Mat4{
		r[0], r[1], r[2], 0,
		u[0], u[1], u[2], 0,
		-f[0], -f[1], -f[2], 0,
		0, 0, 0, 1,
	}, true
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Smoothstep eases t in [0, 1] with zero slope at both ends.
func Smoothstep(t float32) float32 {
	t = mgl32.Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// WrapAngle wraps an angle in radians to [-pi, pi).
func WrapAngle(a float32) float32 {
	a = math32.Mod(a+math32.Pi, 2*math32.Pi)
	if a < 0 {
		a += 2 * math32.Pi
	}
	return a - math32.Pi
}
