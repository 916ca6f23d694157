package camera

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupported is returned for projection flag combinations that have no defined matrix.
var ErrUnsupported = errors.New("camera: unsupported projection")

// Flags selects the projection form a camera derives from its parameters.
type Flags uint8

const (
	// FlagOrthographic treats Up/Down/Right/Left as view-space offsets instead of slopes.
	FlagOrthographic Flags = 1 << iota
	// FlagAsymmetrical is set automatically when the frustum is off-center.
	FlagAsymmetrical
	// FlagInfinite pushes the far clip plane of the projection to infinity.
	FlagInfinite
	// FlagReversed maps near to depth 1 and far to depth 0.
	FlagReversed
)

// Has reports whether every bit of flag is set in f.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// Parent supplies the world matrix of whatever a camera is attached to.
type Parent interface {
	World() mgl32.Mat4
}

// symmetryEpsilon is the tolerance for classifying a frustum as symmetric.
const symmetryEpsilon float32 = 1e-6

type cameraImpl struct {
	mu *sync.Mutex

	up, down, right, left float32
	near, far             float32
	flags                 Flags

	parent Parent

	world    mgl32.Mat4
	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4

	localFrustum geom.Frustum
	worldFrustum geom.Frustum

	projDirty bool
}

// Camera owns projection parameters and derives view/projection matrices and
// frustums from them.
//
// Up, Down, Right and Left are stored as slopes (tangents of the half angles)
// for perspective cameras and as view-space offsets for orthographic cameras.
// Down and Left are negative for a frustum centred on the view axis.
// Projection changes only mark the camera dirty; Update rebuilds the
// projection and the local frustum when dirty and the view and world frustum
// every call.
type Camera interface {
	// Up returns the top slope or offset.
	Up() float32
	// Down returns the bottom slope or offset.
	Down() float32
	// Right returns the right slope or offset.
	Right() float32
	// Left returns the left slope or offset.
	Left() float32
	// Near returns the near clip distance.
	Near() float32
	// Far returns the far clip distance. Infinite cameras still keep a finite
	// far distance for their frustum vertices.
	Far() float32
	// Flags returns the projection flags.
	Flags() Flags

	// Aspect returns the width / height ratio of the view volume.
	Aspect() float32

	// FovVertical returns the vertical field of view in radians, or 0 for an orthographic camera.
	FovVertical() float32

	// FovHorizontal returns the horizontal field of view in radians, or 0 for an orthographic camera.
	FovHorizontal() float32

	// World returns the camera-to-world matrix.
	World() mgl32.Mat4
	// View returns the world-to-camera matrix computed by the last Update.
	View() mgl32.Mat4
	// Proj returns the projection matrix computed by the last Update.
	Proj() mgl32.Mat4
	// ViewProj returns Proj * View.
	ViewProj() mgl32.Mat4

	// LocalFrustum returns the view-space frustum.
	LocalFrustum() geom.Frustum
	// WorldFrustum returns the local frustum transformed by the world matrix.
	WorldFrustum() geom.Frustum

	// ProjDirty reports whether projection parameters changed since the last Update.
	ProjDirty() bool

	// Position returns the world-space camera position.
	Position() mgl32.Vec3
	// Forward returns the world-space view direction (-Z of the world matrix).
	Forward() mgl32.Vec3

	// Parent returns the attached parent, or nil.
	Parent() Parent

	// SetProj sets the projection parameters.
	// Perspective cameras take angles in radians and store their tangents;
	// orthographic cameras store the values unchanged. FlagAsymmetrical is
	// recomputed from the parameters and any caller-supplied bit is ignored.
	//
	// Parameters:
	//   - up, down, right, left: half angles (radians) or offsets
	//   - near, far: clip distances
	//   - flags: projection flags
	//
	// Returns:
	//   - error: ErrUnsupported for an infinite orthographic projection; the camera is unchanged
	SetProj(up, down, right, left, near, far float32, flags Flags) error

	// SetProjMatrix recovers the projection parameters from an existing
	// projection matrix by unprojecting its frustum. The recovery is best
	// effort: infinite and reversed matrices do not invert reliably.
	//
	// Parameters:
	//   - proj: projection matrix with a [-1, 1] depth range
	//   - flags: projection flags describing proj
	//
	// Returns:
	//   - error: ErrUnsupported for an infinite orthographic projection
	SetProjMatrix(proj mgl32.Mat4, flags Flags) error

	// SetPerspective configures a symmetric perspective projection.
	// Panics if flags contains FlagOrthographic.
	//
	// Parameters:
	//   - fovVertical: vertical field of view in radians
	//   - aspect: width / height
	//   - near, far: clip distances
	//   - flags: projection flags
	SetPerspective(fovVertical, aspect, near, far float32, flags Flags)

	// SetAspect makes the frustum symmetric and recomputes Right/Left for the
	// given aspect ratio, keeping the vertical extent fixed.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetNear sets the near clip distance.
	SetNear(near float32)
	// SetFar sets the far clip distance.
	SetFar(far float32)

	// SetFlags replaces the projection flags. FlagAsymmetrical is recomputed.
	//
	// Returns:
	//   - error: ErrUnsupported for FlagOrthographic combined with FlagInfinite
	SetFlags(flags Flags) error

	// SetFlag sets or clears individual flags.
	//
	// Returns:
	//   - error: ErrUnsupported for FlagOrthographic combined with FlagInfinite
	SetFlag(flag Flags, on bool) error

	// SetWorld sets the camera-to-world matrix. While a parent is attached the
	// parent's world matrix replaces it on every Update.
	SetWorld(world mgl32.Mat4)

	// SetParent attaches the camera to p, or detaches it when p is nil.
	SetParent(p Parent)

	// Update refreshes the derived matrices and frustums.
	Update()

	// RayAt returns the world-space ray through a point given in normalized
	// device coordinates, ndcX and ndcY in [-1, 1].
	//
	// Parameters:
	//   - ndcX, ndcY: normalized device coordinates
	//
	// Returns:
	//   - geom.Ray: the pick ray
	RayAt(ndcX, ndcY float32) geom.Ray

	// Clone returns a detached copy with the same parameters and world matrix.
	Clone() Camera

	// Serialize reads or writes the camera's parameters, world matrix and
	// flags as fields of the current object. Reading marks the projection dirty.
	//
	// Parameters:
	//   - s: the serializer
	//
	// Returns:
	//   - error: serial.ErrMissingField when a field is absent on read
	Serialize(s serial.Serializer) error
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a symmetric infinite perspective projection,
// a 60 degree vertical field of view, aspect 1, near 0.1 and far 1000, then
// applies options.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		world:    mgl32.Ident4(),
		view:     mgl32.Ident4(),
		proj:     mgl32.Ident4(),
		viewProj: mgl32.Ident4(),
	}
	c.setPerspective(mgl32.DegToRad(60), 1, 0.1, 1000, FlagInfinite)
	for _, option := range options {
		option(c)
	}
	c.update()
	return c
}

func (c *cameraImpl) Up() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Down() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.down
}

func (c *cameraImpl) Right() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) Left() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Flags() Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.right - c.left) / (c.up - c.down)
}

func (c *cameraImpl) FovVertical() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flags.Has(FlagOrthographic) {
		return 0
	}
	return math32.Atan(c.up) - math32.Atan(c.down)
}

func (c *cameraImpl) FovHorizontal() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flags.Has(FlagOrthographic) {
		return 0
	}
	return math32.Atan(c.right) - math32.Atan(c.left)
}

func (c *cameraImpl) World() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Proj() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *cameraImpl) ViewProj() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) LocalFrustum() geom.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localFrustum
}

func (c *cameraImpl) WorldFrustum() geom.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldFrustum
}

func (c *cameraImpl) ProjDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projDirty
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.Col(3).Vec3()
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.world.Col(2).Vec3().Mul(-1).Normalize()
}

func (c *cameraImpl) Parent() Parent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parent
}

func (c *cameraImpl) SetProj(up, down, right, left, near, far float32, flags Flags) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setProj(up, down, right, left, near, far, flags)
}

func (c *cameraImpl) SetProjMatrix(proj mgl32.Mat4, flags Flags) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if flags.Has(FlagOrthographic | FlagInfinite) {
		return ErrUnsupported
	}
	f := geom.FrustumFromInverse(proj.Inv())
	v := f.Vertices
	near := -v[geom.NearTopLeft].Z()
	far := -v[geom.FarTopLeft].Z()
	if math32.IsInf(far, 0) || math32.IsNaN(far) || far <= near {
		far = c.far
	}
	up := v[geom.NearTopLeft].Y()
	down := v[geom.NearBottomLeft].Y()
	right := v[geom.NearTopRight].X()
	left := v[geom.NearTopLeft].X()
	if !flags.Has(FlagOrthographic) {
		up, down, right, left = up/near, down/near, right/near, left/near
	}
	c.setRaw(up, down, right, left, near, far, flags)
	return nil
}

func (c *cameraImpl) SetPerspective(fovVertical, aspect, near, far float32, flags Flags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPerspective(fovVertical, aspect, near, far, flags)
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vertical := math32.Abs(c.up) + math32.Abs(c.down)
	c.up = vertical / 2
	c.down = -c.up
	c.right = aspect * vertical / 2
	c.left = -c.right
	c.flags &^= FlagAsymmetrical
	c.projDirty = true
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.projDirty = true
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.projDirty = true
}

func (c *cameraImpl) SetFlags(flags Flags) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if flags.Has(FlagOrthographic | FlagInfinite) {
		return ErrUnsupported
	}
	c.setRaw(c.up, c.down, c.right, c.left, c.near, c.far, flags)
	return nil
}

func (c *cameraImpl) SetFlag(flag Flags, on bool) error {
	c.mu.Lock()
	flags := c.flags
	c.mu.Unlock()
	if on {
		flags |= flag
	} else {
		flags &^= flag
	}
	return c.SetFlags(flags)
}

func (c *cameraImpl) SetWorld(world mgl32.Mat4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.world = world
}

func (c *cameraImpl) SetParent(p Parent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parent = p
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.update()
}

func (c *cameraImpl) RayAt(ndcX, ndcY float32) geom.Ray {
	c.mu.Lock()
	defer c.mu.Unlock()
	x := c.left + (ndcX+1)/2*(c.right-c.left)
	y := c.down + (ndcY+1)/2*(c.up-c.down)
	if c.flags.Has(FlagOrthographic) {
		origin := mgl32.TransformCoordinate(mgl32.Vec3{x, y, -c.near}, c.world)
		dir := mgl32.TransformNormal(mgl32.Vec3{0, 0, -1}, c.world)
		return geom.NewRay(origin, dir)
	}
	dir := mgl32.TransformNormal(mgl32.Vec3{x, y, -1}, c.world)
	return geom.NewRay(c.world.Col(3).Vec3(), dir)
}

func (c *cameraImpl) Clone() Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := &cameraImpl{
		mu:           &sync.Mutex{},
		up:           c.up,
		down:         c.down,
		right:        c.right,
		left:         c.left,
		near:         c.near,
		far:          c.far,
		flags:        c.flags,
		world:        c.world,
		view:         c.view,
		proj:         c.proj,
		viewProj:     c.viewProj,
		localFrustum: c.localFrustum,
		worldFrustum: c.worldFrustum,
		projDirty:    c.projDirty,
	}
	return clone
}

// setPerspective stores the slopes of a symmetric frustum directly so that
// Aspect returns aspect exactly. Caller must hold the mutex.
func (c *cameraImpl) setPerspective(fovVertical, aspect, near, far float32, flags Flags) {
	if flags.Has(FlagOrthographic) {
		panic("camera: SetPerspective called with FlagOrthographic")
	}
	up := math32.Tan(fovVertical / 2)
	right := up * aspect
	c.setRaw(up, -up, right, -right, near, far, flags)
}

// setProj validates flags and stores slopes or offsets. Caller must hold the mutex.
func (c *cameraImpl) setProj(up, down, right, left, near, far float32, flags Flags) error {
	if flags.Has(FlagOrthographic | FlagInfinite) {
		return ErrUnsupported
	}
	if !flags.Has(FlagOrthographic) {
		up, down = math32.Tan(up), math32.Tan(down)
		right, left = math32.Tan(right), math32.Tan(left)
	}
	c.setRaw(up, down, right, left, near, far, flags)
	return nil
}

// setRaw stores already converted parameters, recomputes FlagAsymmetrical and
// marks the projection dirty. Caller must hold the mutex.
func (c *cameraImpl) setRaw(up, down, right, left, near, far float32, flags Flags) {
	c.up, c.down, c.right, c.left = up, down, right, left
	c.near, c.far = near, far
	flags &^= FlagAsymmetrical
	if math32.Abs(math32.Abs(up)-math32.Abs(down)) > symmetryEpsilon ||
		math32.Abs(math32.Abs(right)-math32.Abs(left)) > symmetryEpsilon {
		flags |= FlagAsymmetrical
	}
	c.flags = flags
	c.projDirty = true
}

// update refreshes derived state. Caller must hold the mutex.
func (c *cameraImpl) update() {
	if c.parent != nil {
		c.world = c.parent.World()
	}
	if c.projDirty {
		c.proj = projection(c.up, c.down, c.right, c.left, c.near, c.far, c.flags)
		c.localFrustum = geom.NewFrustum(c.up, c.down, c.right, c.left, c.near, c.far, c.flags.Has(FlagOrthographic))
		if c.flags.Has(FlagInfinite) {
			c.localFrustum.DropFar()
		}
		c.projDirty = false
	}
	c.view = rigidInverse(c.world)
	c.viewProj = c.proj.Mul4(c.view)
	c.worldFrustum = c.localFrustum.Transform(c.world)
	if c.flags.Has(FlagInfinite) {
		c.worldFrustum.DropFar()
	}
}
