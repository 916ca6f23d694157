package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NearestLinePoint returns the parameter along l of the point closest to p.
func NearestLinePoint(l Line, p mgl32.Vec3) float32 {
	return p.Sub(l.Origin).Dot(l.Direction)
}

// NearestRayPoint returns the parameter along r of the point closest to p.
func NearestRayPoint(r Ray, p mgl32.Vec3) float32 {
	return math32.Max(0, p.Sub(r.Origin).Dot(r.Direction))
}

// NearestSegmentPoint returns the parameter in [0, 1] along s of the point closest to p.
func NearestSegmentPoint(s LineSegment, p mgl32.Vec3) float32 {
	d := s.End.Sub(s.Start)
	len2 := d.Dot(d)
	if len2 < Epsilon {
		return 0
	}
	return mgl32.Clamp(p.Sub(s.Start).Dot(d)/len2, 0, 1)
}

// closestParams returns the unclamped parameters of the closest points on the
// lines p0 + s*d0 and p1 + t*d1. Parallel lines pin s to 0.
func closestParams(p0, d0, p1, d1 mgl32.Vec3) (s, t float32) {
	w := p0.Sub(p1)
	a := d0.Dot(d0)
	b := d0.Dot(d1)
	c := d1.Dot(d1)
	d := d0.Dot(w)
	e := d1.Dot(w)
	denom := a*c - b*b
	if math32.Abs(denom) < Epsilon {
		if c < Epsilon {
			return 0, 0
		}
		return 0, e / c
	}
	s = (b*e - c*d) / denom
	t = (a*e - b*d) / denom
	return s, t
}

// NearestLineLine returns the parameters along l0 and l1 of their mutually closest points.
//
// Parameters:
//   - l0, l1: the two lines
//
// Returns:
//   - t0: parameter along l0
//   - t1: parameter along l1
func NearestLineLine(l0, l1 Line) (t0, t1 float32) {
	return closestParams(l0.Origin, l0.Direction, l1.Origin, l1.Direction)
}

// NearestRayLine returns the parameters along r and l of their mutually closest points.
func NearestRayLine(r Ray, l Line) (tr, tl float32) {
	tr, tl = closestParams(r.Origin, r.Direction, l.Origin, l.Direction)
	if tr < 0 {
		tr = 0
		tl = NearestLinePoint(l, r.Origin)
	}
	return tr, tl
}

// NearestSegmentLine returns the parameter in [0, 1] along s and the parameter
// along l of their mutually closest points.
func NearestSegmentLine(s LineSegment, l Line) (ts, tl float32) {
	d := s.End.Sub(s.Start)
	ts, tl = closestParams(s.Start, d, l.Origin, l.Direction)
	if ts < 0 || ts > 1 {
		ts = mgl32.Clamp(ts, 0, 1)
		tl = NearestLinePoint(l, s.Point(ts))
	}
	return ts, tl
}

// NearestSegmentSegment returns the parameters in [0, 1] along s0 and s1 of
// their mutually closest points.
func NearestSegmentSegment(s0, s1 LineSegment) (t0, t1 float32) {
	d0 := s0.End.Sub(s0.Start)
	d1 := s1.End.Sub(s1.Start)
	r := s0.Start.Sub(s1.Start)
	a := d0.Dot(d0)
	e := d1.Dot(d1)
	f := d1.Dot(r)

	if a < Epsilon && e < Epsilon {
		return 0, 0
	}
	if a < Epsilon {
		return 0, mgl32.Clamp(f/e, 0, 1)
	}
	c := d0.Dot(r)
	if e < Epsilon {
		return mgl32.Clamp(-c/a, 0, 1), 0
	}

	b := d0.Dot(d1)
	denom := a*e - b*b
	if denom > Epsilon {
		t0 = mgl32.Clamp((b*f-c*e)/denom, 0, 1)
	}
	t1 = (b*t0 + f) / e
	switch {
	case t1 < 0:
		t1 = 0
		t0 = mgl32.Clamp(-c/a, 0, 1)
	case t1 > 1:
		t1 = 1
		t0 = mgl32.Clamp((b-c)/a, 0, 1)
	}
	return t0, t1
}

// Distance2SegmentLine returns the squared distance between s and l.
func Distance2SegmentLine(s LineSegment, l Line) float32 {
	ts, tl := NearestSegmentLine(s, l)
	d := s.Point(ts).Sub(l.Point(tl))
	return d.Dot(d)
}

// DistanceSegmentLine returns the distance between s and l.
func DistanceSegmentLine(s LineSegment, l Line) float32 {
	return math32.Sqrt(Distance2SegmentLine(s, l))
}

// Distance2SegmentSegment returns the squared distance between s0 and s1.
func Distance2SegmentSegment(s0, s1 LineSegment) float32 {
	t0, t1 := NearestSegmentSegment(s0, s1)
	d := s0.Point(t0).Sub(s1.Point(t1))
	return d.Dot(d)
}

// Distance2PointSegment returns the squared distance from p to s.
func Distance2PointSegment(p mgl32.Vec3, s LineSegment) float32 {
	d := p.Sub(s.Point(NearestSegmentPoint(s, p)))
	return d.Dot(d)
}

// DistancePointSegment returns the distance from p to s.
func DistancePointSegment(p mgl32.Vec3, s LineSegment) float32 {
	return math32.Sqrt(Distance2PointSegment(p, s))
}

// Distance2PointLine returns the squared distance from p to l.
func Distance2PointLine(p mgl32.Vec3, l Line) float32 {
	d := p.Sub(l.Point(NearestLinePoint(l, p)))
	return d.Dot(d)
}

// DistancePointLine returns the distance from p to l.
func DistancePointLine(p mgl32.Vec3, l Line) float32 {
	return math32.Sqrt(Distance2PointLine(p, l))
}

// DistancePointPlane returns the signed distance from p to pl.
func DistancePointPlane(p mgl32.Vec3, pl Plane) float32 {
	return pl.Distance(p)
}

// Distance2PointBox returns the squared distance from p to b, zero when p is inside.
func Distance2PointBox(p mgl32.Vec3, b AlignedBox) float32 {
	var d2 float32
	for i := 0; i < 3; i++ {
		switch {
		case p[i] < b.Min[i]:
			d := b.Min[i] - p[i]
			d2 += d * d
		case p[i] > b.Max[i]:
			d := p[i] - b.Max[i]
			d2 += d * d
		}
	}
	return d2
}

// DistancePointBox returns the distance from p to b, zero when p is inside.
func DistancePointBox(p mgl32.Vec3, b AlignedBox) float32 {
	return math32.Sqrt(Distance2PointBox(p, b))
}

// DistancePointSphere returns the signed distance from p to the surface of s.
func DistancePointSphere(p mgl32.Vec3, s Sphere) float32 {
	return p.Sub(s.Origin).Len() - s.Radius
}
