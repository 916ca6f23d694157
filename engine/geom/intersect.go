package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// IntersectRayPlane returns the parameter along r where it crosses pl.
// Rays parallel to the plane or pointing away from it do not intersect.
//
// Parameters:
//   - r: the ray
//   - pl: the plane
//
// Returns:
//   - t: distance along the ray to the hit
//   - ok: whether the ray hits the plane
func IntersectRayPlane(r Ray, pl Plane) (t float32, ok bool) {
	denom := pl.Normal.Dot(r.Direction)
	if math32.Abs(denom) < Epsilon {
		return 0, false
	}
	t = (pl.Offset - pl.Normal.Dot(r.Origin)) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectsRayPlane reports whether r hits pl.
func IntersectsRayPlane(r Ray, pl Plane) bool {
	_, ok := IntersectRayPlane(r, pl)
	return ok
}

// IntersectSegmentPlane returns the parameter in [0, 1] along s where it crosses pl.
func IntersectSegmentPlane(s LineSegment, pl Plane) (t float32, ok bool) {
	d := s.End.Sub(s.Start)
	denom := pl.Normal.Dot(d)
	if math32.Abs(denom) < Epsilon {
		return 0, false
	}
	t = (pl.Offset - pl.Normal.Dot(s.Start)) / denom
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

// IntersectsSegmentPlane reports whether s crosses pl.
func IntersectsSegmentPlane(s LineSegment, pl Plane) bool {
	_, ok := IntersectSegmentPlane(s, pl)
	return ok
}

// sphereRoots solves |o + t*d - c|^2 = r^2 for a unit direction d.
func sphereRoots(o, d, c mgl32.Vec3, radius float32) (t0, t1 float32, ok bool) {
	w := o.Sub(c)
	b := w.Dot(d)
	cc := w.Dot(w) - radius*radius
	disc := b*b - cc
	if disc < 0 {
		return 0, 0, false
	}
	sq := math32.Sqrt(disc)
	return -b - sq, -b + sq, true
}

// IntersectLineSphere returns the two parameters along l where it crosses the
// surface of s. t0 <= t1; both may be negative.
func IntersectLineSphere(l Line, s Sphere) (t0, t1 float32, ok bool) {
	return sphereRoots(l.Origin, l.Direction, s.Origin, s.Radius)
}

// IntersectsLineSphere reports whether l touches s.
func IntersectsLineSphere(l Line, s Sphere) bool {
	_, _, ok := IntersectLineSphere(l, s)
	return ok
}

// IntersectRaySphere returns the entry and exit distances of r through s.
// When the ray starts inside the sphere t0 is 0.
//
// Parameters:
//   - r: the ray
//   - s: the sphere
//
// Returns:
//   - t0: entry distance
//   - t1: exit distance
//   - ok: whether the ray hits the sphere
func IntersectRaySphere(r Ray, s Sphere) (t0, t1 float32, ok bool) {
	t0, t1, ok = sphereRoots(r.Origin, r.Direction, s.Origin, s.Radius)
	if !ok || t1 < 0 {
		return 0, 0, false
	}
	return math32.Max(t0, 0), t1, true
}

// IntersectsRaySphere reports whether r hits s.
func IntersectsRaySphere(r Ray, s Sphere) bool {
	w := r.Origin.Sub(s.Origin)
	c := w.Dot(w) - s.Radius*s.Radius
	if c <= 0 {
		return true
	}
	b := w.Dot(r.Direction)
	if b > 0 {
		return false
	}
	return b*b-c >= 0
}

// IntersectRayBox returns the entry and exit distances of r through b using
// the slab test. When the ray starts inside the box t0 is 0.
//
// Parameters:
//   - r: the ray
//   - b: the box
//
// Returns:
//   - t0: entry distance
//   - t1: exit distance
//   - ok: whether the ray hits the box
func IntersectRayBox(r Ray, b AlignedBox) (t0, t1 float32, ok bool) {
	tmin := float32(0)
	tmax := math32.Inf(1)
	for i := 0; i < 3; i++ {
		o, d := r.Origin[i], r.Direction[i]
		if math32.Abs(d) < Epsilon {
			if o < b.Min[i] || o > b.Max[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d
		ta := (b.Min[i] - o) * inv
		tb := (b.Max[i] - o) * inv
		if ta > tb {
			ta, tb = tb, ta
		}
		tmin = math32.Max(tmin, ta)
		tmax = math32.Min(tmax, tb)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}

// IntersectsRayBox reports whether r hits b.
func IntersectsRayBox(r Ray, b AlignedBox) bool {
	_, _, ok := IntersectRayBox(r, b)
	return ok
}

// lateral holds the ray and the cylinder axis in a form shared by the
// cylinder and capsule tests.
type lateral struct {
	u      mgl32.Vec3 // unit axis
	h      float32    // axis length
	w      mgl32.Vec3 // ray origin relative to the axis start
	dPerp  mgl32.Vec3
	wPerp  mgl32.Vec3
	radius float32
}

func newLateral(r Ray, start, end mgl32.Vec3, radius float32) (lateral, bool) {
	axis := end.Sub(start)
	h := axis.Len()
	if h < Epsilon {
		return lateral{}, false
	}
	u := axis.Mul(1 / h)
	w := r.Origin.Sub(start)
	return lateral{
		u:      u,
		h:      h,
		w:      w,
		dPerp:  r.Direction.Sub(u.Mul(r.Direction.Dot(u))),
		wPerp:  w.Sub(u.Mul(w.Dot(u))),
		radius: radius,
	}, true
}

// hits appends the parameters where the ray crosses the infinite cylinder
// surface with an axial coordinate inside [0, h].
func (l lateral) hits(r Ray, out []float32) []float32 {
	a := l.dPerp.Dot(l.dPerp)
	if a < Epsilon {
		return out
	}
	b := l.dPerp.Dot(l.wPerp)
	c := l.wPerp.Dot(l.wPerp) - l.radius*l.radius
	disc := b*b - a*c
	if disc < 0 {
		return out
	}
	sq := math32.Sqrt(disc)
	for _, t := range [2]float32{(-b - sq) / a, (-b + sq) / a} {
		s := l.w.Dot(l.u) + t*r.Direction.Dot(l.u)
		if s >= 0 && s <= l.h {
			out = append(out, t)
		}
	}
	return out
}

// span reduces surface hits of a convex shape to entry/exit parameters.
func span(hits []float32, inside bool) (t0, t1 float32, ok bool) {
	if len(hits) == 0 {
		return 0, 0, false
	}
	t0, t1 = hits[0], hits[0]
	for _, t := range hits[1:] {
		t0 = math32.Min(t0, t)
		t1 = math32.Max(t1, t)
	}
	if t1 < 0 {
		return 0, 0, false
	}
	if inside || t0 < 0 {
		t0 = 0
	}
	return t0, t1, true
}

// IntersectRayCylinder returns the entry and exit distances of r through the
// capped cylinder c. When the ray starts inside the cylinder t0 is 0.
// Degenerate cylinders (zero length axis) never intersect.
//
// Parameters:
//   - r: the ray
//   - c: the cylinder
//
// Returns:
//   - t0: entry distance
//   - t1: exit distance
//   - ok: whether the ray hits the cylinder
func IntersectRayCylinder(r Ray, c Cylinder) (t0, t1 float32, ok bool) {
	l, ok := newLateral(r, c.Start, c.End, c.Radius)
	if !ok {
		return 0, 0, false
	}
	hits := l.hits(r, make([]float32, 0, 4))

	du := r.Direction.Dot(l.u)
	if math32.Abs(du) > Epsilon {
		wu := l.w.Dot(l.u)
		for _, capAt := range [2]float32{0, l.h} {
			t := (capAt - wu) / du
			p := l.wPerp.Add(l.dPerp.Mul(t))
			if p.Dot(p) <= c.Radius*c.Radius {
				hits = append(hits, t)
			}
		}
	}

	axial := l.w.Dot(l.u)
	inside := axial >= 0 && axial <= l.h && l.wPerp.Dot(l.wPerp) <= c.Radius*c.Radius
	return span(hits, inside)
}

// IntersectsRayCylinder reports whether r hits c.
func IntersectsRayCylinder(r Ray, c Cylinder) bool {
	_, _, ok := IntersectRayCylinder(r, c)
	return ok
}

// IntersectRayCapsule returns the entry and exit distances of r through c.
// When the ray starts inside the capsule t0 is 0.
//
// Parameters:
//   - r: the ray
//   - c: the capsule
//
// Returns:
//   - t0: entry distance
//   - t1: exit distance
//   - ok: whether the ray hits the capsule
func IntersectRayCapsule(r Ray, c Capsule) (t0, t1 float32, ok bool) {
	hits := make([]float32, 0, 6)
	if l, ok := newLateral(r, c.Start, c.End, c.Radius); ok {
		hits = l.hits(r, hits)
	}
	for _, centre := range [2]mgl32.Vec3{c.Start, c.End} {
		if a, b, ok := sphereRoots(r.Origin, r.Direction, centre, c.Radius); ok {
			hits = append(hits, a, b)
		}
	}
	inside := Distance2PointSegment(r.Origin, LineSegment{Start: c.Start, End: c.End}) <= c.Radius*c.Radius
	return span(hits, inside)
}

// IntersectsRayCapsule reports whether r hits c.
func IntersectsRayCapsule(r Ray, c Capsule) bool {
	_, _, ok := IntersectRayCapsule(r, c)
	return ok
}

// IntersectsSphereSphere reports whether a and b overlap.
func IntersectsSphereSphere(a, b Sphere) bool {
	d := a.Origin.Sub(b.Origin)
	rs := a.Radius + b.Radius
	return d.Dot(d) <= rs*rs
}

// IntersectsSpherePlane reports whether s touches pl.
func IntersectsSpherePlane(s Sphere, pl Plane) bool {
	return math32.Abs(pl.Distance(s.Origin)) <= s.Radius
}

// IntersectsSphereBox reports whether s overlaps b.
func IntersectsSphereBox(s Sphere, b AlignedBox) bool {
	return Distance2PointBox(s.Origin, b) <= s.Radius*s.Radius
}

// IntersectsBoxBox reports whether a and b overlap.
func IntersectsBoxBox(a, b AlignedBox) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] < b.Min[i] || b.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}
