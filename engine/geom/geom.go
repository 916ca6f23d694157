// Package geom implements the 3D primitives used by the camera and the scene
// graph together with their nearest-point, distance and intersection queries.
//
// All primitives are small value types built on mgl32 vectors. Transform maps a
// primitive into another coordinate frame; the input is never modified.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance used for parallel and degenerate checks.
const Epsilon float32 = 1e-6

// Line is an infinite line through Origin along the unit vector Direction.
type Line struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewLine creates a Line, normalizing direction.
func NewLine(origin, direction mgl32.Vec3) Line {
	return Line{Origin: origin, Direction: direction.Normalize()}
}

// Point returns the point at parameter t along the line.
func (l Line) Point(t float32) mgl32.Vec3 {
	return l.Origin.Add(l.Direction.Mul(t))
}

// Transform returns l mapped by m.
func (l Line) Transform(m mgl32.Mat4) Line {
	return NewLine(mgl32.TransformCoordinate(l.Origin, m), mgl32.TransformNormal(l.Direction, m))
}

// Ray is a half-line starting at Origin along the unit vector Direction.
// Parametric distances along a ray are in world units.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay creates a Ray, normalizing direction.
func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// Point returns the point at parameter t along the ray.
func (r Ray) Point(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform returns r mapped by m.
func (r Ray) Transform(m mgl32.Mat4) Ray {
	return NewRay(mgl32.TransformCoordinate(r.Origin, m), mgl32.TransformNormal(r.Direction, m))
}

// LineSegment is the finite segment between Start and End.
type LineSegment struct {
	Start mgl32.Vec3
	End   mgl32.Vec3
}

// Point returns the point at parameter t in [0, 1] along the segment.
func (s LineSegment) Point(t float32) mgl32.Vec3 {
	return s.Start.Add(s.End.Sub(s.Start).Mul(t))
}

// Length returns the distance between the segment end points.
func (s LineSegment) Length() float32 {
	return s.End.Sub(s.Start).Len()
}

// Transform returns s mapped by m.
func (s LineSegment) Transform(m mgl32.Mat4) LineSegment {
	return LineSegment{
		Start: mgl32.TransformCoordinate(s.Start, m),
		End:   mgl32.TransformCoordinate(s.End, m),
	}
}

// Sphere is a ball centred on Origin.
type Sphere struct {
	Origin mgl32.Vec3
	Radius float32
}

// Transform returns s mapped by m. The radius is scaled by the largest axis
// scale of m so the result always encloses the transformed ball.
func (s Sphere) Transform(m mgl32.Mat4) Sphere {
	return Sphere{
		Origin: mgl32.TransformCoordinate(s.Origin, m),
		Radius: s.Radius * maxScale(m),
	}
}

// AlignedBox is an axis-aligned box spanning Min to Max.
type AlignedBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAlignedBox returns the smallest box containing all points.
func NewAlignedBox(points ...mgl32.Vec3) AlignedBox {
	if len(points) == 0 {
		return AlignedBox{}
	}
	b := AlignedBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.Include(p)
	}
	return b
}

// Include returns b grown to contain p.
func (b AlignedBox) Include(p mgl32.Vec3) AlignedBox {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Origin returns the box centre.
func (b AlignedBox) Origin() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the box half-size along each axis.
func (b AlignedBox) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Contains reports whether p lies inside or on b.
func (b AlignedBox) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Corners returns the eight box corners.
func (b AlignedBox) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Transform returns the axis-aligned box enclosing b mapped by m.
func (b AlignedBox) Transform(m mgl32.Mat4) AlignedBox {
	corners := b.Corners()
	out := AlignedBox{}
	for i, c := range corners {
		p := mgl32.TransformCoordinate(c, m)
		if i == 0 {
			out = AlignedBox{Min: p, Max: p}
			continue
		}
		out = out.Include(p)
	}
	return out
}

// Cylinder is a capped cylinder around the axis from Start to End.
type Cylinder struct {
	Start  mgl32.Vec3
	End    mgl32.Vec3
	Radius float32
}

// Transform returns c mapped by m.
func (c Cylinder) Transform(m mgl32.Mat4) Cylinder {
	return Cylinder{
		Start:  mgl32.TransformCoordinate(c.Start, m),
		End:    mgl32.TransformCoordinate(c.End, m),
		Radius: c.Radius * maxScale(m),
	}
}

// Capsule is the set of points within Radius of the segment Start to End.
type Capsule struct {
	Start  mgl32.Vec3
	End    mgl32.Vec3
	Radius float32
}

// Transform returns c mapped by m.
func (c Capsule) Transform(m mgl32.Mat4) Capsule {
	return Capsule{
		Start:  mgl32.TransformCoordinate(c.Start, m),
		End:    mgl32.TransformCoordinate(c.End, m),
		Radius: c.Radius * maxScale(m),
	}
}

func maxScale(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return math32.Max(sx, math32.Max(sy, sz))
}
