package xform

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassPositionTarget = "PositionTarget"

// PositionTarget moves the node's world position from Start to End over a
// fixed duration, optionally eased, then fires its OnComplete callback once.
type PositionTarget struct {
	Base
	completion

	Start  mgl32.Vec3
	End    mgl32.Vec3
	Smooth bool

	current mgl32.Vec3
}

var _ Timed = &PositionTarget{}

// NewPositionTarget creates a move from start to end lasting duration seconds.
func NewPositionTarget(start, end mgl32.Vec3, duration float32) *PositionTarget {
	return &PositionTarget{
		completion: completion{duration: duration},
		Start:      start,
		End:        end,
		current:    start,
	}
}

// Current returns the position written by the last Apply.
func (x *PositionTarget) Current() mgl32.Vec3 {
	return x.current
}

func (x *PositionTarget) Class() string {
	return ClassPositionTarget
}

func (x *PositionTarget) Apply(ctx *frame.Context, n Node) {
	reached := x.advance(ctx.DT)
	t := x.progress()
	if x.Smooth {
		t = common.Smoothstep(t)
	}
	x.current = common.Lerp(x.Start, x.End, t)
	n.SetWorld(common.WithTranslation(n.World(), x.current))
	if reached {
		x.fire(x, n)
	}
}

func (x *PositionTarget) Reset() {
	x.rewind()
}

func (x *PositionTarget) RelativeReset(n Node) {
	delta := x.End.Sub(x.Start)
	x.Start = common.Translation(n.World())
	x.End = x.Start.Add(delta)
	x.rewind()
}

func (x *PositionTarget) Reverse() {
	x.Start, x.End = x.End, x.Start
	x.mirror()
}

func (x *PositionTarget) Serialize(s serial.Serializer, r *Registry) error {
	f := newFields(x.Class(), s)
	f.check("Start", s.Vec3("Start", &x.Start))
	f.check("End", s.Vec3("End", &x.End))
	f.check("Smooth", s.Bool("Smooth", &x.Smooth))
	if err := x.completion.serialize(s, r, f); err != nil {
		return err
	}
	return f.err()
}
