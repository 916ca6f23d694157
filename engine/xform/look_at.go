package xform

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassLookAt = "LookAt"

// LookAt turns the node so its -Z axis faces a target point: the target
// node's world position plus Offset, or Offset alone when no target is set.
// Position and per-axis scale are kept.
//
// The target's world matrix is read as it stands when this node updates. A
// target that updates later in the same pass is seen with last frame's matrix.
type LookAt struct {
	Base

	TargetID uint64
	Offset   mgl32.Vec3
	Up       mgl32.Vec3
}

var _ XForm = &LookAt{}

// NewLookAt creates a LookAt tracking the node with id target (0 for none).
func NewLookAt(target uint64, offset mgl32.Vec3) *LookAt {
	return &LookAt{TargetID: target, Offset: offset, Up: mgl32.Vec3{0, 1, 0}}
}

func (x *LookAt) Class() string {
	return ClassLookAt
}

func (x *LookAt) Apply(ctx *frame.Context, n Node) {
	target := x.Offset
	if x.TargetID != 0 && ctx.Nodes != nil {
		if w, ok := ctx.Nodes.NodeWorld(x.TargetID); ok {
			target = common.Translation(w).Add(x.Offset)
		}
	}
	world := n.World()
	pos := common.Translation(world)
	rot, ok := common.LookRotation(target.Sub(pos), x.Up)
	if !ok {
		return
	}
	scale := common.AxisScale(world)
	m := rot.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	n.SetWorld(common.WithTranslation(m, pos))
}

func (x *LookAt) Serialize(s serial.Serializer, _ *Registry) error {
	f := newFields(x.Class(), s)
	f.check("TargetId", s.Uint64("TargetId", &x.TargetID))
	f.check("Offset", s.Vec3("Offset", &x.Offset))
	f.check("Up", s.Vec3("Up", &x.Up))
	return f.err()
}
