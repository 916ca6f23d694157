package xform

import "github.com/go-gl/mathgl/mgl32"

// OrbitOption is a functional option for configuring an Orbit.
type OrbitOption func(*Orbit)

// WithOrbitTarget centers the orbit on a node plus an offset.
//
// Parameters:
//   - id: target node id, 0 to orbit offset alone
//   - offset: added to the target position
//
// Returns:
//   - OrbitOption: option function to apply
func WithOrbitTarget(id uint64, offset mgl32.Vec3) OrbitOption {
	return func(x *Orbit) {
		x.TargetID = id
		x.Offset = offset
	}
}

// WithRadius sets the distance from the center.
func WithRadius(radius float32) OrbitOption {
	return func(x *Orbit) {
		x.Radius = radius
	}
}

// WithRadiusBounds sets the zoom limits.
func WithRadiusBounds(minRadius, maxRadius float32) OrbitOption {
	return func(x *Orbit) {
		x.MinRadius = minRadius
		x.MaxRadius = maxRadius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
func WithAngles(azimuth, elevation float32) OrbitOption {
	return func(x *Orbit) {
		x.Azimuth = azimuth
		x.Elevation = elevation
	}
}

// WithElevationBounds sets the vertical angle limits in radians.
func WithElevationBounds(minElevation, maxElevation float32) OrbitOption {
	return func(x *Orbit) {
		x.MinElevation = minElevation
		x.MaxElevation = maxElevation
	}
}

// WithZoomSpeed sets the radius change per scroll unit.
func WithZoomSpeed(speed float32) OrbitOption {
	return func(x *Orbit) {
		x.ZoomSpeed = speed
	}
}

// WithMouseSensitivity sets the orbit angle per pixel of middle mouse drag.
func WithMouseSensitivity(s float32) OrbitOption {
	return func(x *Orbit) {
		x.MouseSensitivity = s
	}
}
