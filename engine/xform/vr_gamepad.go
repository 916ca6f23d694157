package xform

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassVRGamepad = "VRGamepad"

// Snap turn stick thresholds. A snap fires when the stick passes
// snapEngage and re-arms once it returns inside snapRelease.
const (
	snapEngage  float32 = 0.7
	snapRelease float32 = 0.3
)

// VRGamepad is gamepad locomotion for a tracked head or rig node. The left
// stick moves on the horizontal plane relative to Heading and the right stick
// turns, either in SnapAngle steps or smoothly at TurnRate. The locomotion
// transform is pre-multiplied onto the node's tracked pose.
type VRGamepad struct {
	Base

	Position  mgl32.Vec3
	Heading   float32
	MoveSpeed float32
	TurnRate  float32
	SnapTurn  bool
	SnapAngle float32

	snapLatched bool
}

var _ XForm = &VRGamepad{}

// NewVRGamepad creates a VRGamepad with snap turning.
func NewVRGamepad() *VRGamepad {
	return &VRGamepad{
		MoveSpeed: 2,
		TurnRate:  1.5,
		SnapTurn:  true,
		SnapAngle: math32.Pi / 4,
	}
}

func (x *VRGamepad) Class() string {
	return ClassVRGamepad
}

func (x *VRGamepad) Apply(ctx *frame.Context, n Node) {
	if n.Selected() && ctx.Input != nil && ctx.Input.GamepadConnected() {
		in := ctx.Input
		sx, sy := in.Axis(input.GamepadLeftX), in.Axis(input.GamepadLeftY)
		sin, cos := math32.Sin(x.Heading), math32.Cos(x.Heading)
		forward := mgl32.Vec3{-sin, 0, -cos}
		right := mgl32.Vec3{cos, 0, -sin}
		step := right.Mul(sx).Add(forward.Mul(-sy)).Mul(x.MoveSpeed * ctx.DT)
		x.Position = x.Position.Add(step)

		turn := in.Axis(input.GamepadRightX)
		if x.SnapTurn {
			mag := math32.Abs(turn)
			switch {
			case mag >= snapEngage && !x.snapLatched:
				if turn > 0 {
					x.Heading -= x.SnapAngle
				} else {
					x.Heading += x.SnapAngle
				}
				x.snapLatched = true
			case mag <= snapRelease:
				x.snapLatched = false
			}
		} else {
			x.Heading -= turn * x.TurnRate * ctx.DT
		}
		x.Heading = common.WrapAngle(x.Heading)
	}
	rig := mgl32.Translate3D(x.Position[0], x.Position[1], x.Position[2]).Mul4(mgl32.HomogRotate3DY(x.Heading))
	n.SetWorld(rig.Mul4(n.World()))
}

func (x *VRGamepad) Serialize(s serial.Serializer, _ *Registry) error {
	f := newFields(x.Class(), s)
	f.check("Position", s.Vec3("Position", &x.Position))
	f.check("Heading", s.Float32("Heading", &x.Heading))
	f.check("MoveSpeed", s.Float32("MoveSpeed", &x.MoveSpeed))
	f.check("TurnRate", s.Float32("TurnRate", &x.TurnRate))
	f.check("SnapTurn", s.Bool("SnapTurn", &x.SnapTurn))
	f.check("SnapAngle", s.Float32("SnapAngle", &x.SnapAngle))
	return f.err()
}
