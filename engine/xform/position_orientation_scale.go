package xform

import (
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassPositionOrientationScale = "PositionOrientationScale"

// PositionOrientationScale post-multiplies the node's world matrix by a
// translation * rotation * scale transform.
type PositionOrientationScale struct {
	Base

	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3
}

var _ XForm = &PositionOrientationScale{}

// NewPositionOrientationScale creates an identity transform.
func NewPositionOrientationScale() *PositionOrientationScale {
	return &PositionOrientationScale{
		Orientation: mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns T * R * S.
func (x *PositionOrientationScale) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(x.Position[0], x.Position[1], x.Position[2]).
		Mul4(x.Orientation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(x.Scale[0], x.Scale[1], x.Scale[2]))
}

func (x *PositionOrientationScale) Class() string {
	return ClassPositionOrientationScale
}

func (x *PositionOrientationScale) Apply(_ *frame.Context, n Node) {
	n.SetWorld(n.World().Mul4(x.Matrix()))
}

func (x *PositionOrientationScale) Serialize(s serial.Serializer, _ *Registry) error {
	f := newFields(x.Class(), s)
	f.check("Position", s.Vec3("Position", &x.Position))
	f.check("Orientation", s.Quat("Orientation", &x.Orientation))
	f.check("Scale", s.Vec3("Scale", &x.Scale))
	return f.err()
}
