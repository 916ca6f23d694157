package xform

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassFreeCamera = "FreeCamera"

// maxPitch keeps the view direction away from the poles.
const maxPitch = math32.Pi/2 - 0.01

// FreeCamera is a fly controller. WASD moves in the view plane, Q/E move
// down/up, holding the right mouse button and dragging turns, and shift
// boosts speed. A gamepad's left stick moves, right stick turns and triggers
// move down/up.
//
// Input is read only while the owning node is selected, so only the selected
// camera responds. The pose is written every frame regardless, replacing the
// node's world matrix.
type FreeCamera struct {
	Base

	Position mgl32.Vec3
	Pitch    float32
	Yaw      float32

	Speed               float32
	BoostMultiplier     float32
	RotationSensitivity float32
	GamepadLookRate     float32
	Damping             float32

	velocity    mgl32.Vec3
	initialized bool
}

var _ XForm = &FreeCamera{}

// NewFreeCamera creates a FreeCamera with default speeds. Unless a pose is
// supplied with WithPose, the pose is taken from the node's world matrix on
// the first Apply.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - *FreeCamera: the new controller
func NewFreeCamera(options ...FreeCameraOption) *FreeCamera {
	x := &FreeCamera{
		Speed:               5,
		BoostMultiplier:     4,
		RotationSensitivity: 0.005,
		GamepadLookRate:     2,
		Damping:             12,
	}
	for _, option := range options {
		option(x)
	}
	return x
}

// Velocity returns the current smoothed world-space velocity.
func (x *FreeCamera) Velocity() mgl32.Vec3 {
	return x.velocity
}

// Rotation returns the yaw * pitch rotation matrix.
func (x *FreeCamera) Rotation() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(x.Yaw).Mul4(mgl32.HomogRotate3DX(x.Pitch))
}

func (x *FreeCamera) Class() string {
	return ClassFreeCamera
}

func (x *FreeCamera) Apply(ctx *frame.Context, n Node) {
	if !x.initialized {
		x.capturePose(n.World())
	}

	var move mgl32.Vec3
	speed := x.Speed
	if n.Selected() && ctx.Input != nil {
		move, speed = x.readInput(ctx.Input, ctx.DT)
	}
	x.Pitch = mgl32.Clamp(x.Pitch, -maxPitch, maxPitch)
	x.Yaw = common.WrapAngle(x.Yaw)

	rot := x.Rotation()
	if move.Len() > 1 {
		move = move.Normalize()
	}
	target := rot.Mul4x1(move.Mul(speed).Vec4(0)).Vec3()
	if x.Damping > 0 {
		k := 1 - math32.Exp(-x.Damping*ctx.DT)
		x.velocity = common.Lerp(x.velocity, target, k)
	} else {
		x.velocity = target
	}
	x.Position = x.Position.Add(x.velocity.Mul(ctx.DT))

	n.SetWorld(mgl32.Translate3D(x.Position[0], x.Position[1], x.Position[2]).Mul4(rot))
}

// readInput turns the input snapshot into a local-space move direction and
// applies look input to pitch and yaw.
func (x *FreeCamera) readInput(in *input.State, dt float32) (mgl32.Vec3, float32) {
	var move mgl32.Vec3
	axis := func(neg, pos input.Key) float32 {
		var v float32
		if in.IsDown(neg) {
			v--
		}
		if in.IsDown(pos) {
			v++
		}
		return v
	}
	move[0] = axis(input.KeyA, input.KeyD)
	move[1] = axis(input.KeyQ, input.KeyE)
	move[2] = axis(input.KeyW, input.KeyS)

	if in.MouseDown(input.MouseRight) {
		d := in.MouseDelta()
		x.Yaw -= d.X() * x.RotationSensitivity
		x.Pitch -= d.Y() * x.RotationSensitivity
	}

	speed := x.Speed
	if in.IsDown(input.KeyLeftShift) || in.IsDown(input.KeyRightShift) {
		speed *= x.BoostMultiplier
	}

	if in.GamepadConnected() {
		move[0] += in.Axis(input.GamepadLeftX)
		move[2] += in.Axis(input.GamepadLeftY)
		move[1] += (in.Axis(input.GamepadRightTrigger) - in.Axis(input.GamepadLeftTrigger)) / 2
		x.Yaw -= in.Axis(input.GamepadRightX) * x.GamepadLookRate * dt
		x.Pitch -= in.Axis(input.GamepadRightY) * x.GamepadLookRate * dt
		if in.GamepadDown(input.GamepadLeftThumb) {
			speed = x.Speed * x.BoostMultiplier
		}
	}
	return move, speed
}

// capturePose derives position, yaw and pitch from a world matrix.
func (x *FreeCamera) capturePose(world mgl32.Mat4) {
	x.Position = common.Translation(world)
	f := world.Col(2).Vec3().Mul(-1)
	if f.Len() > 1e-6 {
		f = f.Normalize()
		x.Pitch = math32.Asin(mgl32.Clamp(f[1], -1, 1))
		x.Yaw = math32.Atan2(-f[0], -f[2])
	}
	x.initialized = true
}

func (x *FreeCamera) Serialize(s serial.Serializer, _ *Registry) error {
	f := newFields(x.Class(), s)
	f.check("Position", s.Vec3("Position", &x.Position))
	f.check("Pitch", s.Float32("Pitch", &x.Pitch))
	f.check("Yaw", s.Float32("Yaw", &x.Yaw))
	f.check("Speed", s.Float32("Speed", &x.Speed))
	f.check("BoostMultiplier", s.Float32("BoostMultiplier", &x.BoostMultiplier))
	f.check("RotationSensitivity", s.Float32("RotationSensitivity", &x.RotationSensitivity))
	f.check("GamepadLookRate", s.Float32("GamepadLookRate", &x.GamepadLookRate))
	f.check("Damping", s.Float32("Damping", &x.Damping))
	if s.Mode() == serial.ModeRead {
		x.initialized = true
		x.velocity = mgl32.Vec3{}
	}
	return f.err()
}
