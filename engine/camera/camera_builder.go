package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithPerspective configures a symmetric perspective projection.
// Panics if flags contains FlagOrthographic.
//
// Parameters:
//   - fovVertical: vertical field of view in radians
//   - aspect: width / height
//   - near, far: clip distances
//   - flags: projection flags
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithPerspective(fovVertical, aspect, near, far float32, flags Flags) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.setPerspective(fovVertical, aspect, near, far, flags)
	}
}

// WithProj configures the projection from explicit parameters, see Camera.SetProj.
// Panics on an unsupported flag combination.
//
// Parameters:
//   - up, down, right, left: half angles (radians) or offsets
//   - near, far: clip distances
//   - flags: projection flags
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithProj(up, down, right, left, near, far float32, flags Flags) CameraBuilderOption {
	return func(c *cameraImpl) {
		if err := c.setProj(up, down, right, left, near, far, flags); err != nil {
			panic(err.Error())
		}
	}
}

// WithWorld sets the initial camera-to-world matrix.
//
// Parameters:
//   - world: the world matrix
//
// Returns:
//   - CameraBuilderOption: a function that sets the world matrix
func WithWorld(world mgl32.Mat4) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.world = world
	}
}

// WithParent attaches the camera to a parent whose world matrix it mirrors.
//
// Parameters:
//   - p: the parent
//
// Returns:
//   - CameraBuilderOption: a function that sets the parent
func WithParent(p Parent) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.parent = p
	}
}
