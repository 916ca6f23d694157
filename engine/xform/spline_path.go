package xform

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassSplinePath = "SplinePath"

// SplinePath moves the node along a spline over a fixed duration, optionally
// turning it to face along the curve, then fires its OnComplete callback once.
type SplinePath struct {
	Base
	completion

	Spline geom.Spline
	Orient bool
	Up     mgl32.Vec3
}

var _ Timed = &SplinePath{}

// NewSplinePath creates a traversal of points lasting duration seconds.
func NewSplinePath(points []mgl32.Vec3, loop bool, duration float32) *SplinePath {
	return &SplinePath{
		completion: completion{duration: duration},
		Spline:     geom.Spline{Points: points, Loop: loop},
		Up:         mgl32.Vec3{0, 1, 0},
	}
}

func (x *SplinePath) Class() string {
	return ClassSplinePath
}

func (x *SplinePath) Apply(ctx *frame.Context, n Node) {
	reached := x.advance(ctx.DT)
	if len(x.Spline.Points) == 0 {
		return
	}
	t := x.progress()
	world := n.World()
	if x.Orient {
		if rot, ok := common.LookRotation(x.Spline.Tangent(t), x.Up); ok {
			scale := common.AxisScale(world)
			world = rot.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
		}
	}
	n.SetWorld(common.WithTranslation(world, x.Spline.Evaluate(t)))
	if reached {
		x.fire(x, n)
	}
}

func (x *SplinePath) Reset() {
	x.rewind()
}

// RelativeReset translates the whole curve so it starts at the node's current position.
func (x *SplinePath) RelativeReset(n Node) {
	if len(x.Spline.Points) > 0 {
		delta := common.Translation(n.World()).Sub(x.Spline.Evaluate(0))
		x.Spline = x.Spline.Transform(mgl32.Translate3D(delta[0], delta[1], delta[2]))
	}
	x.rewind()
}

// Reverse runs the curve backwards. A looped curve keeps its first point so
// the reversed loop covers the same closed path.
func (x *SplinePath) Reverse() {
	pts := slices.Clone(x.Spline.Points)
	if x.Spline.Loop && len(pts) > 1 {
		slices.Reverse(pts[1:])
	} else {
		slices.Reverse(pts)
	}
	x.Spline.Points = pts
	x.mirror()
}

func (x *SplinePath) Serialize(s serial.Serializer, r *Registry) error {
	f := newFields(x.Class(), s)
	count := len(x.Spline.Points)
	if s.BeginArray("Points", &count) {
		if s.Mode() == serial.ModeRead {
			x.Spline.Points = make([]mgl32.Vec3, count)
		}
		for i := range x.Spline.Points {
			f.check("Points", s.Vec3("", &x.Spline.Points[i]))
		}
		s.EndArray()
	} else {
		f.check("Points", false)
	}
	f.check("Loop", s.Bool("Loop", &x.Spline.Loop))
	f.check("Orient", s.Bool("Orient", &x.Orient))
	f.check("Up", s.Vec3("Up", &x.Up))
	if err := x.completion.serialize(s, r, f); err != nil {
		return err
	}
	return f.err()
}
