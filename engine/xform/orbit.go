package xform

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const ClassOrbit = "Orbit"

// Orbit places the node on a sphere around a center point and faces it
// toward the center. The center is the target node's world position plus
// Offset, or Offset alone when no target is set.
//
// While the node is selected, arrow keys orbit, a middle mouse drag orbits
// and the scroll wheel zooms.
type Orbit struct {
	Base

	TargetID uint64
	Offset   mgl32.Vec3

	// Spherical coordinates of the node relative to the center.
	Radius    float32
	Azimuth   float32 // Horizontal angle around Y
	Elevation float32 // Vertical angle from the horizontal plane

	MinRadius    float32
	MaxRadius    float32
	MinElevation float32
	MaxElevation float32

	// OrbitSpeed is the arrow key orbit rate in radians per second.
	OrbitSpeed       float32
	MouseSensitivity float32
	ZoomSpeed        float32
}

var _ XForm = &Orbit{}

// NewOrbit creates an Orbit with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the orbit
//
// Returns:
//   - *Orbit: the new orbit
func NewOrbit(options ...OrbitOption) *Orbit {
	x := &Orbit{
		Radius:    10,
		Elevation: math32.Pi / 6,

		MinRadius:    0.5,
		MaxRadius:    2000,
		MinElevation: 0.05,
		MaxElevation: math32.Pi/2 - 0.1,

		OrbitSpeed:       1.5,
		MouseSensitivity: 0.005,
		ZoomSpeed:        1,
	}
	for _, option := range options {
		option(x)
	}
	x.clamp()
	return x
}

func (x *Orbit) Class() string {
	return ClassOrbit
}

// Center returns the point the orbit revolves around this frame.
func (x *Orbit) Center(ctx *frame.Context) mgl32.Vec3 {
	if x.TargetID != 0 && ctx.Nodes != nil {
		if w, ok := ctx.Nodes.NodeWorld(x.TargetID); ok {
			return common.Translation(w).Add(x.Offset)
		}
	}
	return x.Offset
}

// OffsetFromCenter returns the node position relative to the center.
func (x *Orbit) OffsetFromCenter() mgl32.Vec3 {
	sinE, cosE := math32.Sin(x.Elevation), math32.Cos(x.Elevation)
	sinA, cosA := math32.Sin(x.Azimuth), math32.Cos(x.Azimuth)
	return mgl32.Vec3{
		x.Radius * cosE * sinA,
		x.Radius * sinE,
		x.Radius * cosE * cosA,
	}
}

func (x *Orbit) Apply(ctx *frame.Context, n Node) {
	if n.Selected() && ctx.Input != nil {
		x.readInput(ctx.Input, ctx.DT)
	}
	x.clamp()

	center := x.Center(ctx)
	pos := center.Add(x.OffsetFromCenter())
	rot, ok := common.LookRotation(center.Sub(pos), mgl32.Vec3{0, 1, 0})
	if !ok {
		n.SetWorld(common.WithTranslation(n.World(), pos))
		return
	}
	n.SetWorld(common.WithTranslation(rot, pos))
}

func (x *Orbit) readInput(in *input.State, dt float32) {
	step := x.OrbitSpeed * dt
	if in.IsDown(input.KeyLeft) {
		x.Azimuth -= step
	}
	if in.IsDown(input.KeyRight) {
		x.Azimuth += step
	}
	if in.IsDown(input.KeyUp) {
		x.Elevation += step
	}
	if in.IsDown(input.KeyDown) {
		x.Elevation -= step
	}
	if in.MouseDown(input.MouseMiddle) {
		d := in.MouseDelta()
		x.Azimuth -= d.X() * x.MouseSensitivity
		x.Elevation += d.Y() * x.MouseSensitivity
	}
	x.Radius -= in.Scroll().Y() * x.ZoomSpeed
}

// clamp keeps radius and elevation inside their bounds and wraps azimuth.
func (x *Orbit) clamp() {
	x.Radius = mgl32.Clamp(x.Radius, x.MinRadius, x.MaxRadius)
	x.Elevation = mgl32.Clamp(x.Elevation, x.MinElevation, x.MaxElevation)
	x.Azimuth = common.WrapAngle(x.Azimuth)
}

func (x *Orbit) Serialize(s serial.Serializer, _ *Registry) error {
	f := newFields(x.Class(), s)
	f.check("TargetId", s.Uint64("TargetId", &x.TargetID))
	f.check("Offset", s.Vec3("Offset", &x.Offset))
	f.check("Radius", s.Float32("Radius", &x.Radius))
	f.check("Azimuth", s.Float32("Azimuth", &x.Azimuth))
	f.check("Elevation", s.Float32("Elevation", &x.Elevation))
	f.check("MinRadius", s.Float32("MinRadius", &x.MinRadius))
	f.check("MaxRadius", s.Float32("MaxRadius", &x.MaxRadius))
	f.check("MinElevation", s.Float32("MinElevation", &x.MinElevation))
	f.check("MaxElevation", s.Float32("MaxElevation", &x.MaxElevation))
	f.check("OrbitSpeed", s.Float32("OrbitSpeed", &x.OrbitSpeed))
	f.check("MouseSensitivity", s.Float32("MouseSensitivity", &x.MouseSensitivity))
	f.check("ZoomSpeed", s.Float32("ZoomSpeed", &x.ZoomSpeed))
	return f.err()
}
