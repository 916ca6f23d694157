package geom

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane holds a unit Normal and an Offset such that a point p lies on the
// plane iff dot(Normal, p) == Offset. Points with a positive signed distance
// are on the side the normal points toward.
type Plane struct {
	Normal mgl32.Vec3
	Offset float32
}

// NewPlane creates the plane with the given normal passing through point.
//
// Parameters:
//   - normal: plane normal, normalized by the constructor
//   - point: any point on the plane
//
// Returns:
//   - Plane: the plane
func NewPlane(normal, point mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Offset: n.Dot(point)}
}

// PlaneFromPoints creates a plane through three points. The points must be
// ordered clockwise when viewed from the side the normal points toward:
// normal = normalize(cross(p1-p0, p2-p0)), offset = dot(normal, centroid).
//
// Parameters:
//   - p0, p1, p2: the three points in winding order
//
// Returns:
//   - Plane: the plane through the points
func PlaneFromPoints(p0, p1, p2 mgl32.Vec3) Plane {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	centroid := p0.Add(p1).Add(p2).Mul(1.0 / 3.0)
	return Plane{Normal: n, Offset: n.Dot(centroid)}
}

// Origin returns the point on the plane closest to the coordinate origin.
func (p Plane) Origin() mgl32.Vec3 {
	return p.Normal.Mul(p.Offset)
}

// Distance returns the signed distance from point to the plane.
func (p Plane) Distance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) - p.Offset
}

// Transform returns p mapped by m. m is expected to be affine.
func (p Plane) Transform(m mgl32.Mat4) Plane {
	origin := mgl32.TransformCoordinate(p.Origin(), m)
	normal := mgl32.TransformNormal(p.Normal, m.Inv().Transpose())
	return NewPlane(normal, origin)
}
