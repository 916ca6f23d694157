package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Spline is a uniform Catmull-Rom curve passing through Points.
// A looped spline joins the last point back to the first.
type Spline struct {
	Points []mgl32.Vec3
	Loop   bool
}

// Segments returns the number of curve segments.
func (s Spline) Segments() int {
	n := len(s.Points)
	if n < 2 {
		return 0
	}
	if s.Loop {
		return n
	}
	return n - 1
}

func (s Spline) point(i int) mgl32.Vec3 {
	n := len(s.Points)
	if s.Loop {
		return s.Points[((i%n)+n)%n]
	}
	switch {
	case i < 0:
		i = 0
	case i > n-1:
		i = n - 1
	}
	return s.Points[i]
}

// locate maps u in [0, 1] to a segment index and a local parameter.
func (s Spline) locate(u float32) (int, float32) {
	segs := s.Segments()
	u = mgl32.Clamp(u, 0, 1) * float32(segs)
	i := int(math32.Floor(u))
	if i >= segs {
		i = segs - 1
	}
	return i, u - float32(i)
}

// Evaluate returns the position at u in [0, 1] along the whole curve.
func (s Spline) Evaluate(u float32) mgl32.Vec3 {
	switch len(s.Points) {
	case 0:
		return mgl32.Vec3{}
	case 1:
		return s.Points[0]
	}
	i, t := s.locate(u)
	p0, p1, p2, p3 := s.point(i-1), s.point(i), s.point(i+1), s.point(i+2)
	t2 := t * t
	t3 := t2 * t
	return p1.Mul(2).
		Add(p2.Sub(p0).Mul(t)).
		Add(p0.Mul(2).Sub(p1.Mul(5)).Add(p2.Mul(4)).Sub(p3).Mul(t2)).
		Add(p1.Mul(3).Sub(p0).Sub(p2.Mul(3)).Add(p3).Mul(t3)).
		Mul(0.5)
}

// Tangent returns the unnormalized derivative at u in [0, 1].
func (s Spline) Tangent(u float32) mgl32.Vec3 {
	if len(s.Points) < 2 {
		return mgl32.Vec3{}
	}
	i, t := s.locate(u)
	p0, p1, p2, p3 := s.point(i-1), s.point(i), s.point(i+1), s.point(i+2)
	t2 := t * t
	return p2.Sub(p0).
		Add(p0.Mul(2).Sub(p1.Mul(5)).Add(p2.Mul(4)).Sub(p3).Mul(2 * t)).
		Add(p1.Mul(3).Sub(p0).Sub(p2.Mul(3)).Add(p3).Mul(3 * t2)).
		Mul(0.5)
}

// Transform returns s with every control point mapped by m.
func (s Spline) Transform(m mgl32.Mat4) Spline {
	out := Spline{Points: make([]mgl32.Vec3, len(s.Points)), Loop: s.Loop}
	for i, p := range s.Points {
		out.Points[i] = mgl32.TransformCoordinate(p, m)
	}
	return out
}
