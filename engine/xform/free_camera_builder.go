package xform

import (
	"github.com/go-gl/mathgl/mgl32"
)

type FreeCameraOption func(*FreeCamera)

// WithPose sets the starting position and orientation instead of capturing
// them from the node on the first update.
//
// Parameters:
//   - position: world position
//   - pitch: rotation about the local X axis in radians
//   - yaw: rotation about the world Y axis in radians
//
// Returns:
//   - FreeCameraOption: a function that sets the pose
func WithPose(position mgl32.Vec3, pitch, yaw float32) FreeCameraOption {
	return func(x *FreeCamera) {
		x.Position = position
		x.Pitch = pitch
		x.Yaw = yaw
		x.initialized = true
	}
}

// WithSpeed sets the movement speed in units per second.
//
// Parameters:
//   - speed: movement speed
//
// Returns:
//   - FreeCameraOption: a function that sets the speed
func WithSpeed(speed float32) FreeCameraOption {
	return func(x *FreeCamera) {
		x.Speed = speed
	}
}

// WithBoostMultiplier sets the speed factor applied while boosting.
//
// Parameters:
//   - m: the multiplier
//
// Returns:
//   - FreeCameraOption: a function that sets the multiplier
func WithBoostMultiplier(m float32) FreeCameraOption {
	return func(x *FreeCamera) {
		x.BoostMultiplier = m
	}
}

// WithRotationSensitivity sets the mouse look rate in radians per pixel.
//
// Parameters:
//   - s: radians per pixel
//
// Returns:
//   - FreeCameraOption: a function that sets the sensitivity
func WithRotationSensitivity(s float32) FreeCameraOption {
	return func(x *FreeCamera) {
		x.RotationSensitivity = s
	}
}

// WithDamping sets the velocity smoothing rate. Zero disables smoothing.
//
// Parameters:
//   - d: smoothing rate per second
//
// Returns:
//   - FreeCameraOption: a function that sets the damping
func WithDamping(d float32) FreeCameraOption {
	return func(x *FreeCamera) {
		x.Damping = d
	}
}
