package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// projection builds the clip matrix for the stored parameters. Standard
// projections target a [-1, 1] depth range with near at -1; reversed
// projections map near to 1 and far to 0.
func projection(up, down, right, left, near, far float32, flags Flags) mgl32.Mat4 {
	if flags.Has(FlagOrthographic) {
		return orthographic(up, down, right, left, near, far, flags.Has(FlagReversed))
	}
	return perspective(up*near, down*near, right*near, left*near, near, far, flags)
}

func orthographic(t, b, r, l, n, f float32, reversed bool) mgl32.Mat4 {
	var m mgl32.Mat4
	m[0] = 2 / (r - l)
	m[5] = 2 / (t - b)
	m[12] = -(r + l) / (r - l)
	m[13] = -(t + b) / (t - b)
	m[15] = 1
	if reversed {
		m[10] = 1 / (f - n)
		m[14] = f / (f - n)
	} else {
		m[10] = -2 / (f - n)
		m[14] = -(f + n) / (f - n)
	}
	return m
}

func perspective(t, b, r, l, n, f float32, flags Flags) mgl32.Mat4 {
	var m mgl32.Mat4
	m[0] = 2 * n / (r - l)
	m[5] = 2 * n / (t - b)
	m[8] = (r + l) / (r - l)
	m[9] = (t + b) / (t - b)
	m[11] = -1

	infinite := flags.Has(FlagInfinite)
	reversed := flags.Has(FlagReversed)
	if reversed && !infinite && math32.Abs(f-n) < symmetryEpsilon {
		infinite = true
	}
	switch {
	case infinite && reversed:
		m[10] = 0
		m[14] = n
	case infinite:
		m[10] = -1
		m[14] = -2 * n
	case reversed:
		m[10] = n / (f - n)
		m[14] = f * n / (f - n)
	default:
		m[10] = (n + f) / (n - f)
		m[14] = 2 * n * f / (n - f)
	}
	return m
}

// rigidInverse inverts a rotation + translation matrix: the rotation is
// transposed and the translation becomes -(R^T * t).
func rigidInverse(w mgl32.Mat4) mgl32.Mat4 {
	rt := w.Mat3().Transpose()
	t := rt.Mul3x1(w.Col(3).Vec3()).Mul(-1)
	return mgl32.Mat4{
		rt[0], rt[1], rt[2], 0,
		rt[3], rt[4], rt[5], 0,
		rt[6], rt[7], rt[8], 0,
		t[0], t[1], t[2], 1,
	}
}
