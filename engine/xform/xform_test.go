package xform

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	id       uint64
	world    mgl32.Mat4
	selected bool
}

func newTestNode(id uint64) *testNode {
	return &testNode{id: id, world: mgl32.Ident4()}
}

func (n *testNode) ID() uint64                { return n.id }
func (n *testNode) Name() string              { return "test" }
func (n *testNode) World() mgl32.Mat4         { return n.world }
func (n *testNode) SetWorld(world mgl32.Mat4) { n.world = world }
func (n *testNode) Selected() bool            { return n.selected }

type worlds map[uint64]mgl32.Mat4

func (w worlds) NodeWorld(id uint64) (mgl32.Mat4, bool) {
	m, ok := w[id]
	return m, ok
}

func step(ctx *frame.Context, dt float32, x XForm, n *testNode) {
	ctx.Advance(dt)
	x.Apply(ctx, n)
}

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want %v, got %v", want, got)
}

func roundTrip(t *testing.T, r *Registry, x XForm) XForm {
	t.Helper()
	w := serial.NewWriter()
	w.BeginObject("")
	require.NoError(t, Write(w, x, r))
	w.EndObject()

	rd := serial.NewReader(w.Document())
	require.True(t, rd.BeginObject(""))
	got, err := Read(rd, r)
	require.NoError(t, err)
	rd.EndObject()
	return got
}

func TestPositionTarget_CompletesOnce(t *testing.T) {
	r := NewRegistry()
	fired := 0
	r.RegisterCallback("Count", func(Timed, Node) { fired++ })

	x := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{10, 0, 0}, 1)
	require.NoError(t, x.SetOnComplete("Count", r))
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 0.4, x, n)
	assertVec3(t, mgl32.Vec3{4, 0, 0}, common.Translation(n.World()))
	assert.False(t, x.Complete())
	step(ctx, 0.4, x, n)
	assert.Equal(t, 0, fired)
	step(ctx, 0.4, x, n)

	assert.True(t, x.Complete())
	assert.Equal(t, 1, fired)
	assert.Equal(t, float32(1), x.Time())
	assertVec3(t, mgl32.Vec3{10, 0, 0}, common.Translation(n.World()))

	step(ctx, 0.4, x, n)
	assert.Equal(t, 1, fired)
}

func TestPositionTarget_Smooth(t *testing.T) {
	x := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{0, 8, 0}, 2)
	x.Smooth = true
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 0.5, x, n)
	assert.Less(t, x.Current().Y(), float32(2))
	step(ctx, 0.5, x, n)
	assert.InDelta(t, 4, x.Current().Y(), 1e-4)
}

func TestPositionTarget_ResetCallback(t *testing.T) {
	r := NewRegistry()
	x := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 1)
	require.NoError(t, x.SetOnComplete(CallbackReset, r))
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 1, x, n)
	assert.False(t, x.Complete())
	assert.Equal(t, float32(0), x.Time())
	assertVec3(t, mgl32.Vec3{1, 0, 0}, common.Translation(n.World()))

	step(ctx, 0.5, x, n)
	assertVec3(t, mgl32.Vec3{0.5, 0, 0}, common.Translation(n.World()))
}

func TestPositionTarget_ReverseCallback(t *testing.T) {
	r := NewRegistry()
	x := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{2, 0, 0}, 1)
	require.NoError(t, x.SetOnComplete(CallbackReverse, r))
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 1, x, n)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, x.Start)
	assert.Equal(t, mgl32.Vec3{}, x.End)
	assert.Equal(t, float32(0), x.Time())

	step(ctx, 0.25, x, n)
	assertVec3(t, mgl32.Vec3{1.5, 0, 0}, common.Translation(n.World()))
}

func TestPositionTarget_ReverseMirrorsTime(t *testing.T) {
	x := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{4, 0, 0}, 2)
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 0.5, x, n)
	x.Reverse()
	assert.Equal(t, float32(1.5), x.Time())
	step(ctx, 0, x, n)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, x.Current())
}

func TestPositionTarget_RelativeResetCallback(t *testing.T) {
	r := NewRegistry()
	x := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{10, 0, 0}, 1)
	require.NoError(t, x.SetOnComplete(CallbackRelativeReset, r))
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 1, x, n)
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, x.Start)
	assert.Equal(t, mgl32.Vec3{20, 0, 0}, x.End)

	step(ctx, 0.5, x, n)
	assertVec3(t, mgl32.Vec3{15, 0, 0}, common.Translation(n.World()))
}

func TestSetOnComplete_Unknown(t *testing.T) {
	x := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{}, 1)
	err := x.SetOnComplete("Nope", NewRegistry())
	assert.ErrorIs(t, err, ErrUnknownCallback)
	assert.Equal(t, "", x.OnCompleteName())
}

func TestBase_BindTwicePanics(t *testing.T) {
	x := NewSpin(mgl32.Vec3{0, 1, 0}, 1)
	x.Bind(3)
	owner, ok := x.Owner()
	assert.True(t, ok)
	assert.Equal(t, uint64(3), owner)
	assert.Panics(t, func() { x.Bind(4) })

	x.Unbind()
	assert.NotPanics(t, func() { x.Bind(4) })
}

func TestSpin(t *testing.T) {
	x := NewSpin(mgl32.Vec3{0, 2, 0}, math32.Pi/2)
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 1, x, n)
	got := n.World().Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
	assertVec3(t, mgl32.Vec3{0, 0, -1}, got)
	assert.InDelta(t, math32.Pi/2, x.Angle(), 1e-5)
}

func TestSpin_ZeroAxisIsNoop(t *testing.T) {
	x := NewSpin(mgl32.Vec3{}, 1)
	n := newTestNode(1)
	step(frame.NewContext(nil), 1, x, n)
	assert.Equal(t, mgl32.Ident4(), n.World())
}

func TestPositionOrientationScale(t *testing.T) {
	x := NewPositionOrientationScale()
	x.Position = mgl32.Vec3{1, 2, 3}
	x.Scale = mgl32.Vec3{2, 2, 2}
	n := newTestNode(1)
	n.world = mgl32.Translate3D(10, 0, 0)

	step(frame.NewContext(nil), 0, x, n)
	assertVec3(t, mgl32.Vec3{11, 2, 3}, common.Translation(n.World()))
	assertVec3(t, mgl32.Vec3{2, 2, 2}, common.AxisScale(n.World()))
}

func TestLookAt_TargetNode(t *testing.T) {
	x := NewLookAt(7, mgl32.Vec3{})
	n := newTestNode(1)
	n.world = mgl32.Translate3D(0, 0, 0).Mul4(mgl32.Scale3D(3, 3, 3))
	ctx := frame.NewContext(nil)
	ctx.Nodes = worlds{7: mgl32.Translate3D(5, 0, 0)}

	step(ctx, 0, x, n)
	forward := n.World().Col(2).Vec3().Mul(-1).Normalize()
	assertVec3(t, mgl32.Vec3{1, 0, 0}, forward)
	assertVec3(t, mgl32.Vec3{3, 3, 3}, common.AxisScale(n.World()))
}

func TestLookAt_MissingTargetUsesOffset(t *testing.T) {
	x := NewLookAt(99, mgl32.Vec3{0, 0, 5})
	n := newTestNode(1)
	ctx := frame.NewContext(nil)
	ctx.Nodes = worlds{}

	step(ctx, 0, x, n)
	forward := n.World().Col(2).Vec3().Mul(-1)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, forward)
}

func TestSplinePath(t *testing.T) {
	x := NewSplinePath([]mgl32.Vec3{{0, 0, 0}, {10, 0, 0}}, false, 1)
	x.Orient = true
	n := newTestNode(1)
	ctx := frame.NewContext(nil)

	step(ctx, 0.5, x, n)
	assertVec3(t, mgl32.Vec3{5, 0, 0}, common.Translation(n.World()))
	forward := n.World().Col(2).Vec3().Mul(-1)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, forward)

	step(ctx, 0.5, x, n)
	assert.True(t, x.Complete())
	assertVec3(t, mgl32.Vec3{10, 0, 0}, common.Translation(n.World()))

	x.Reverse()
	assert.Equal(t, []mgl32.Vec3{{10, 0, 0}, {0, 0, 0}}, x.Spline.Points)
	assert.False(t, x.Complete())
}

func TestSplinePath_LoopReverseKeepsStart(t *testing.T) {
	pts := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	x := NewSplinePath(pts, true, 4)
	x.Reverse()
	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}, x.Spline.Points)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, pts[1])
}

func TestSplinePath_RelativeReset(t *testing.T) {
	x := NewSplinePath([]mgl32.Vec3{{0, 0, 0}, {10, 0, 0}}, false, 1)
	n := newTestNode(1)
	n.world = mgl32.Translate3D(0, 5, 0)
	x.RelativeReset(n)
	assertVec3(t, mgl32.Vec3{0, 5, 0}, x.Spline.Points[0])
	assertVec3(t, mgl32.Vec3{10, 5, 0}, x.Spline.Points[1])
}

func TestFreeCamera_CapturesPose(t *testing.T) {
	x := NewFreeCamera(WithDamping(0))
	n := newTestNode(1)
	n.world = mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(math32.Pi / 2))

	step(frame.NewContext(nil), 0.1, x, n)
	assertVec3(t, mgl32.Vec3{1, 2, 3}, x.Position)
	assert.InDelta(t, math32.Pi/2, x.Yaw, 1e-4)
	assert.InDelta(t, 0, x.Pitch, 1e-4)
	assert.True(t, n.World().ApproxEqualThreshold(mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(math32.Pi/2)), 1e-4))
}

func TestFreeCamera_SelectedMoves(t *testing.T) {
	in := input.NewState()
	in.SetKey(input.KeyW, true)
	ctx := frame.NewContext(in)

	x := NewFreeCamera(WithPose(mgl32.Vec3{}, 0, 0), WithSpeed(5), WithDamping(0))
	n := newTestNode(1)
	step(ctx, 1, x, n)
	assertVec3(t, mgl32.Vec3{}, x.Position)

	n.selected = true
	step(ctx, 1, x, n)
	assertVec3(t, mgl32.Vec3{0, 0, -5}, x.Position)

	in.SetKey(input.KeyLeftShift, true)
	x.BoostMultiplier = 2
	step(ctx, 1, x, n)
	assertVec3(t, mgl32.Vec3{0, 0, -15}, x.Position)
}

func TestFreeCamera_MouseLookClampsPitch(t *testing.T) {
	in := input.NewState()
	in.SetMouseButton(input.MouseRight, true)
	in.MoveMouse(0, 0)
	in.MoveMouse(0, -10000)
	ctx := frame.NewContext(in)

	x := NewFreeCamera(WithPose(mgl32.Vec3{}, 0, 0), WithRotationSensitivity(0.01))
	n := newTestNode(1)
	n.selected = true
	step(ctx, 0.016, x, n)
	assert.InDelta(t, maxPitch, x.Pitch, 1e-5)
}

func TestFreeCamera_DampingApproachesTarget(t *testing.T) {
	in := input.NewState()
	in.SetKey(input.KeyD, true)
	ctx := frame.NewContext(in)

	x := NewFreeCamera(WithPose(mgl32.Vec3{}, 0, 0), WithSpeed(1), WithDamping(10))
	n := newTestNode(1)
	n.selected = true
	step(ctx, 0.05, x, n)
	first := x.Velocity().X()
	assert.Greater(t, first, float32(0))
	assert.Less(t, first, float32(1))
	for range 50 {
		step(ctx, 0.05, x, n)
	}
	assert.InDelta(t, 1, x.Velocity().X(), 1e-3)
}

func TestVRGamepad_SnapTurnLatches(t *testing.T) {
	in := input.NewState()
	in.SetGamepadConnected(true)
	ctx := frame.NewContext(in)
	x := NewVRGamepad()
	n := newTestNode(1)
	n.selected = true

	in.SetAxis(input.GamepadRightX, 1)
	step(ctx, 0.1, x, n)
	assert.InDelta(t, -math32.Pi/4, x.Heading, 1e-5)
	n.world = mgl32.Ident4()
	step(ctx, 0.1, x, n)
	assert.InDelta(t, -math32.Pi/4, x.Heading, 1e-5)

	in.SetAxis(input.GamepadRightX, 0)
	n.world = mgl32.Ident4()
	step(ctx, 0.1, x, n)
	in.SetAxis(input.GamepadRightX, -1)
	n.world = mgl32.Ident4()
	step(ctx, 0.1, x, n)
	assert.InDelta(t, 0, x.Heading, 1e-5)
}

func TestVRGamepad_MovesAlongHeading(t *testing.T) {
	in := input.NewState()
	in.SetGamepadConnected(true)
	in.SetAxis(input.GamepadLeftY, -1)
	ctx := frame.NewContext(in)
	x := NewVRGamepad()
	x.Heading = math32.Pi / 2
	n := newTestNode(1)
	n.selected = true

	step(ctx, 1, x, n)
	assertVec3(t, mgl32.Vec3{-2, 0, 0}, x.Position)
	assertVec3(t, mgl32.Vec3{-2, 0, 0}, common.Translation(n.World()))
}

func TestVRGamepad_IgnoresInputWhenUnselected(t *testing.T) {
	in := input.NewState()
	in.SetGamepadConnected(true)
	in.SetAxis(input.GamepadLeftY, -1)
	x := NewVRGamepad()
	n := newTestNode(1)
	step(frame.NewContext(in), 1, x, n)
	assertVec3(t, mgl32.Vec3{}, x.Position)
}

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{
		ClassFreeCamera, ClassLookAt, ClassOrbit, ClassPositionOrientationScale,
		ClassPositionTarget, ClassSpin, ClassSplinePath, ClassVRGamepad,
	}, r.Classes())
	assert.Same(t, DefaultRegistry(), DefaultRegistry())

	_, err := r.New("Missing")
	assert.ErrorIs(t, err, ErrUnknownClass)
}

func TestRoundTrip_Classes(t *testing.T) {
	r := NewRegistry()

	pos := NewPositionOrientationScale()
	pos.Position = mgl32.Vec3{1, 2, 3}
	pos.Orientation = mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})
	pos.Scale = mgl32.Vec3{1, 2, 1}
	got := roundTrip(t, r, pos).(*PositionOrientationScale)
	assert.Equal(t, pos.Position, got.Position)
	assert.Equal(t, pos.Orientation, got.Orientation)
	assert.Equal(t, pos.Scale, got.Scale)

	spin := NewSpin(mgl32.Vec3{1, 0, 0}, 0.25)
	gotSpin := roundTrip(t, r, spin).(*Spin)
	assert.Equal(t, spin.Axis, gotSpin.Axis)
	assert.Equal(t, spin.Rate, gotSpin.Rate)

	look := NewLookAt(^uint64(0)-1, mgl32.Vec3{0, 1, 0})
	gotLook := roundTrip(t, r, look).(*LookAt)
	assert.Equal(t, look.TargetID, gotLook.TargetID)
	assert.Equal(t, look.Offset, gotLook.Offset)
	assert.Equal(t, look.Up, gotLook.Up)

	fc := NewFreeCamera(WithPose(mgl32.Vec3{4, 5, 6}, 0.1, -0.2), WithSpeed(9))
	gotFC := roundTrip(t, r, fc).(*FreeCamera)
	assert.Equal(t, fc.Position, gotFC.Position)
	assert.Equal(t, fc.Pitch, gotFC.Pitch)
	assert.Equal(t, fc.Yaw, gotFC.Yaw)
	assert.Equal(t, fc.Speed, gotFC.Speed)

	vr := NewVRGamepad()
	vr.SnapTurn = false
	vr.Heading = 1
	gotVR := roundTrip(t, r, vr).(*VRGamepad)
	assert.False(t, gotVR.SnapTurn)
	assert.Equal(t, vr.Heading, gotVR.Heading)

	orbit := NewOrbit(WithOrbitTarget(7, mgl32.Vec3{0, 1, 0}), WithRadius(25), WithAngles(1, 0.5))
	gotOrbit := roundTrip(t, r, orbit).(*Orbit)
	assert.Equal(t, orbit, gotOrbit)
}

func TestRoundTrip_TimedKeepsProgressAndCallback(t *testing.T) {
	r := NewRegistry()
	pt := NewPositionTarget(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 0, 0}, 3)
	pt.Smooth = true
	require.NoError(t, pt.SetOnComplete(CallbackReverse, r))
	step(frame.NewContext(nil), 1.5, pt, newTestNode(1))

	got := roundTrip(t, r, pt).(*PositionTarget)
	assert.Equal(t, pt.Start, got.Start)
	assert.Equal(t, pt.End, got.End)
	assert.True(t, got.Smooth)
	assert.Equal(t, float32(1.5), got.Time())
	assert.Equal(t, float32(3), got.Duration())
	assert.Equal(t, CallbackReverse, got.OnCompleteName())
	assert.False(t, got.Complete())

	sp := NewSplinePath([]mgl32.Vec3{{0, 0, 0}, {1, 2, 3}, {4, 5, 6}}, true, 2)
	sp.Orient = true
	step(frame.NewContext(nil), 5, sp, newTestNode(1))
	gotSP := roundTrip(t, r, sp).(*SplinePath)
	assert.Equal(t, sp.Spline.Points, gotSP.Spline.Points)
	assert.True(t, gotSP.Spline.Loop)
	assert.True(t, gotSP.Orient)
	assert.True(t, gotSP.Complete())
	assert.Equal(t, "", gotSP.OnCompleteName())
}

func TestRead_Errors(t *testing.T) {
	r := NewRegistry()

	doc := serial.NewObject()
	rd := serial.NewReader(doc)
	require.True(t, rd.BeginObject(""))
	_, err := Read(rd, r)
	assert.ErrorIs(t, err, serial.ErrMissingField)

	w := serial.NewWriter()
	w.BeginObject("")
	class := "Teleport"
	w.String("Class", &class)
	w.EndObject()
	rd = serial.NewReader(w.Document())
	require.True(t, rd.BeginObject(""))
	_, err = Read(rd, r)
	assert.ErrorIs(t, err, ErrUnknownClass)

	w = serial.NewWriter()
	w.BeginObject("")
	pt := NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{}, 1)
	require.NoError(t, Write(w, pt, r))
	cb := "Explode"
	w.String("OnComplete", &cb)
	w.EndObject()
	rd = serial.NewReader(w.Document())
	require.True(t, rd.BeginObject(""))
	_, err = Read(rd, r)
	assert.ErrorIs(t, err, ErrUnknownCallback)

	w = serial.NewWriter()
	w.BeginObject("")
	class = ClassSpin
	w.String("Class", &class)
	w.EndObject()
	rd = serial.NewReader(w.Document())
	require.True(t, rd.BeginObject(""))
	_, err = Read(rd, r)
	assert.ErrorIs(t, err, serial.ErrMissingField)
}

func TestOrbit_FollowsTarget(t *testing.T) {
	ctx := frame.NewContext(nil)
	ctx.Nodes = worlds{2: mgl32.Translate3D(1, 2, 3)}

	x := NewOrbit(WithOrbitTarget(2, mgl32.Vec3{}), WithElevationBounds(-1, 1), WithAngles(0, 0))
	n := newTestNode(1)
	step(ctx, 0.1, x, n)
	assert.True(t, n.World().ApproxEqualThreshold(mgl32.Translate3D(1, 2, 13), 1e-4), "got %v", n.World())

	x.TargetID = 99
	step(ctx, 0.1, x, n)
	assertVec3(t, mgl32.Vec3{0, 0, 10}, common.Translation(n.World()))
}

func TestOrbit_InputOnlyWhenSelected(t *testing.T) {
	in := input.NewState()
	in.AddScroll(0, 2)
	in.SetMouseButton(input.MouseMiddle, true)
	in.MoveMouse(0, 0)
	in.MoveMouse(100, 0)
	ctx := frame.NewContext(in)

	x := NewOrbit(WithAngles(0, 0.3))
	n := newTestNode(1)
	step(ctx, 0.1, x, n)
	assert.InDelta(t, 10, x.Radius, 1e-6)
	assert.InDelta(t, 0, x.Azimuth, 1e-6)

	n.selected = true
	step(ctx, 0.1, x, n)
	assert.InDelta(t, 8, x.Radius, 1e-5)
	assert.InDelta(t, -0.5, x.Azimuth, 1e-5)
	assertVec3(t, x.OffsetFromCenter(), common.Translation(n.World()))
}

func TestOrbit_Clamps(t *testing.T) {
	x := NewOrbit(WithRadius(5000), WithAngles(7, 3))
	assert.Equal(t, x.MaxRadius, x.Radius)
	assert.Equal(t, x.MaxElevation, x.Elevation)
	assert.InDelta(t, 7-2*math32.Pi, x.Azimuth, 1e-5)

	x = NewOrbit(WithRadiusBounds(2, 4), WithRadius(1))
	assert.Equal(t, float32(2), x.Radius)
}
