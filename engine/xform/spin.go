package xform

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassSpin = "Spin"

// Spin rotates the node about Axis at Rate radians per second.
type Spin struct {
	Base

	Axis mgl32.Vec3
	Rate float32

	angle float32
}

var _ XForm = &Spin{}

// NewSpin creates a Spin about axis at rate radians per second.
func NewSpin(axis mgl32.Vec3, rate float32) *Spin {
	return &Spin{Axis: axis, Rate: rate}
}

// Angle returns the accumulated rotation in [-pi, pi).
func (x *Spin) Angle() float32 {
	return x.angle
}

func (x *Spin) Class() string {
	return ClassSpin
}

func (x *Spin) Apply(ctx *frame.Context, n Node) {
	if x.Axis.Len() < 1e-6 {
		return
	}
	x.angle = common.WrapAngle(x.angle + x.Rate*ctx.DT)
	n.SetWorld(n.World().Mul4(mgl32.HomogRotate3D(x.angle, x.Axis.Normalize())))
}

func (x *Spin) Serialize(s serial.Serializer, _ *Registry) error {
	f := newFields(x.Class(), s)
	f.check("Axis", s.Vec3("Axis", &x.Axis))
	f.check("Rate", s.Float32("Rate", &x.Rate))
	return f.err()
}
