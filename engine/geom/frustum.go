package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Frustum plane indices.
const (
	PlaneNear = iota
	PlaneFar
	PlaneTop
	PlaneRight
	PlaneBottom
	PlaneLeft
)

// Frustum vertex indices. Near vertices come first, far vertices repeat the same order.
const (
	NearTopLeft = iota
	NearTopRight
	NearBottomRight
	NearBottomLeft
	FarTopLeft
	FarTopRight
	FarBottomRight
	FarBottomLeft
)

// Frustum is a view volume described by its 8 corners and the 6 planes
// through them. Plane normals point out of the volume.
type Frustum struct {
	Vertices [8]mgl32.Vec3
	Planes   [6]Plane
}

// NewFrustum builds a view-space frustum looking down -Z from camera
// projection parameters.
//
// For a perspective frustum up, down, right and left are slopes (tangents of
// the half angles, down and left negative for a symmetric frustum) and the
// corners are placed at z = -near and z = -far. For an orthographic frustum
// they are view-space offsets applied unchanged on both planes.
//
// Parameters:
//   - up, down, right, left: slopes or offsets of the four side planes
//   - near, far: clip distances, both positive
//   - ortho: whether the parameters describe an orthographic volume
//
// Returns:
//   - Frustum: the frustum with vertices and planes filled in
func NewFrustum(up, down, right, left, near, far float32, ortho bool) Frustum {
	var f Frustum
	nu, nd, nr, nl := up, down, right, left
	fu, fd, fr, fl := up, down, right, left
	if !ortho {
		nu, nd, nr, nl = up*near, down*near, right*near, left*near
		fu, fd, fr, fl = up*far, down*far, right*far, left*far
	}
	f.Vertices[NearTopLeft] = mgl32.Vec3{nl, nu, -near}
	f.Vertices[NearTopRight] = mgl32.Vec3{nr, nu, -near}
	f.Vertices[NearBottomRight] = mgl32.Vec3{nr, nd, -near}
	f.Vertices[NearBottomLeft] = mgl32.Vec3{nl, nd, -near}
	f.Vertices[FarTopLeft] = mgl32.Vec3{fl, fu, -far}
	f.Vertices[FarTopRight] = mgl32.Vec3{fr, fu, -far}
	f.Vertices[FarBottomRight] = mgl32.Vec3{fr, fd, -far}
	f.Vertices[FarBottomLeft] = mgl32.Vec3{fl, fd, -far}
	f.updatePlanes()
	return f
}

// FrustumFromInverse builds a frustum by unprojecting the corners of the NDC
// cube through inv, the inverse of a projection (or view-projection) matrix.
// The NDC z range is assumed to be [-1, 1]; matrices targeting a [0, 1] depth
// range yield a frustum whose near plane sits halfway to the far plane.
//
// Parameters:
//   - inv: inverse projection matrix
//
// Returns:
//   - Frustum: the unprojected frustum
func FrustumFromInverse(inv mgl32.Mat4) Frustum {
	ndc := [8]mgl32.Vec3{
		{-1, 1, -1}, {1, 1, -1}, {1, -1, -1}, {-1, -1, -1},
		{-1, 1, 1}, {1, 1, 1}, {1, -1, 1}, {-1, -1, 1},
	}
	var f Frustum
	for i, c := range ndc {
		v := inv.Mul4x1(c.Vec4(1))
		f.Vertices[i] = v.Vec3().Mul(1 / v[3])
	}
	f.updatePlanes()
	return f
}

// SetVertices replaces the corners and recomputes the planes.
func (f *Frustum) SetVertices(vertices [8]mgl32.Vec3) {
	f.Vertices = vertices
	f.updatePlanes()
}

// Transform returns f mapped by m.
func (f Frustum) Transform(m mgl32.Mat4) Frustum {
	var out Frustum
	for i, v := range f.Vertices {
		out.Vertices[i] = mgl32.TransformCoordinate(v, m)
	}
	out.updatePlanes()
	return out
}

// Contains reports whether p lies inside or on the frustum.
func (f Frustum) Contains(p mgl32.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) > 0 {
			return false
		}
	}
	return true
}

// InsideSphere reports whether s is at least partially inside the frustum.
// The test is conservative: spheres near a frustum corner may be reported
// inside while lying just outside.
func (f Frustum) InsideSphere(s Sphere) bool {
	for _, pl := range f.Planes {
		if pl.Distance(s.Origin) > s.Radius {
			return false
		}
	}
	return true
}

// InsideBox reports whether b is at least partially inside the frustum using
// the per-plane nearest-vertex test.
func (f Frustum) InsideBox(b AlignedBox) bool {
	for _, pl := range f.Planes {
		var v mgl32.Vec3
		for i := 0; i < 3; i++ {
			if pl.Normal[i] > 0 {
				v[i] = b.Min[i]
			} else {
				v[i] = b.Max[i]
			}
		}
		if pl.Distance(v) > 0 {
			return false
		}
	}
	return true
}

// updatePlanes derives the six planes from the corners. Each vertex triple is
// wound so the plane normal points out of the volume.
func (f *Frustum) updatePlanes() {
	v := &f.Vertices
	f.Planes[PlaneNear] = PlaneFromPoints(v[NearTopLeft], v[NearBottomRight], v[NearTopRight])
	f.Planes[PlaneFar] = PlaneFromPoints(v[FarTopLeft], v[FarTopRight], v[FarBottomRight])
	f.Planes[PlaneTop] = PlaneFromPoints(v[NearTopLeft], v[NearTopRight], v[FarTopLeft])
	f.Planes[PlaneRight] = PlaneFromPoints(v[NearTopRight], v[NearBottomRight], v[FarTopRight])
	f.Planes[PlaneBottom] = PlaneFromPoints(v[NearBottomRight], v[NearBottomLeft], v[FarBottomRight])
	f.Planes[PlaneLeft] = PlaneFromPoints(v[NearBottomLeft], v[NearTopLeft], v[FarBottomLeft])
}

// Bounds returns the axis-aligned box enclosing the frustum's vertices.
func (f Frustum) Bounds() AlignedBox {
	return NewAlignedBox(f.Vertices[:]...)
}

// DropFar replaces the far plane with the near plane so the volume is
// unbounded in depth. Vertices are left untouched.
func (f *Frustum) DropFar() {
	f.Planes[PlaneFar] = f.Planes[PlaneNear]
}

// Degenerate reports whether any plane of the frustum has a zero normal.
func (f Frustum) Degenerate() bool {
	for _, pl := range f.Planes {
		if math32.IsNaN(pl.Normal[0]) || pl.Normal.Len() < 0.5 {
			return true
		}
	}
	return false
}
