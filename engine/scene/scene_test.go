package scene

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []Node) []uint64 {
	out := make([]uint64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func newHeldKey(t *testing.T) *input.State {
	t.Helper()
	in := input.NewState()
	in.SetKey(input.KeyW, true)
	return in
}

func translation(x, y, z float32) mgl32.Mat4 {
	return mgl32.Translate3D(x, y, z)
}

func TestNewScene(t *testing.T) {
	s := NewScene()
	defer s.Close()

	root := s.Root()
	require.NotNil(t, root)
	assert.Equal(t, TypeRoot, root.Type())
	assert.Regexp(t, `^Root_\d{3}$`, root.Name())
	assert.Nil(t, root.Parent())
	assert.Equal(t, 1, s.NodeCount())
	assert.Empty(t, s.Cameras())
	assert.Nil(t, s.DrawCamera())
	assert.Nil(t, s.CullCamera())
	assert.Equal(t, defaultState, root.State())
}

func TestCreateNode_NamesAndIDs(t *testing.T) {
	s := NewScene()
	defer s.Close()

	a := s.CreateNode(TypeObject, nil)
	b := s.CreateNode(TypeObject, a)
	l := s.CreateNode(TypeLight, nil)

	re := regexp.MustCompile(`^Object_(\d{3,})$`)
	ma, mb := re.FindStringSubmatch(a.Name()), re.FindStringSubmatch(b.Name())
	require.Len(t, ma, 2)
	require.Len(t, mb, 2)
	na, _ := strconv.Atoi(ma[1])
	nb, _ := strconv.Atoi(mb[1])
	assert.Equal(t, na+1, nb)
	assert.Regexp(t, `^Light_\d{3}$`, l.Name())

	assert.Less(t, a.ID(), b.ID())
	assert.Less(t, b.ID(), l.ID())
	assert.Equal(t, s.Root().ID(), a.Parent().ID())
	assert.Equal(t, a.ID(), b.Parent().ID())
	assert.Equal(t, []uint64{a.ID(), l.ID()}, ids(s.Root().Children()))
	assert.Equal(t, 4, s.NodeCount())
	assert.Equal(t, mgl32.Ident4(), b.Local())
}

func TestCreateNode_InvalidTypePanics(t *testing.T) {
	s := NewScene()
	defer s.Close()
	assert.Panics(t, func() { s.CreateNode(Type(42), nil) })
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{TypeRoot, TypeCamera, TypeObject, TypeLight} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseType("object")
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestCameraBinding(t *testing.T) {
	s := NewScene()
	defer s.Close()

	first := s.CreateNode(TypeCamera, nil)
	require.NotNil(t, first.Camera())
	assert.Same(t, first.Camera(), s.DrawCamera())
	assert.Same(t, first.Camera(), s.CullCamera())

	template := camera.NewCamera()
	template.SetPerspective(mgl32.DegToRad(40), 2, 1, 10, 0)
	second := s.CreateCamera(template, first)
	require.NotNil(t, second.Camera())
	assert.NotSame(t, template, second.Camera())
	assert.InDelta(t, 2, second.Camera().Aspect(), 1e-5)
	assert.Equal(t, TypeCamera, second.Type())
	assert.Equal(t, first.ID(), second.Parent().ID())
	assert.Same(t, first.Camera(), s.DrawCamera())
	assert.Len(t, s.Cameras(), 2)
	assert.Equal(t, second.ID(), s.CameraNode(second.Camera()).ID())

	s.SetDrawCamera(second.Camera())
	assert.Same(t, second.Camera(), s.DrawCamera())
	assert.Panics(t, func() { s.SetCullCamera(camera.NewCamera()) })

	s.DestroyCamera(second.Camera())
	assert.Nil(t, s.DrawCamera())
	assert.Same(t, first.Camera(), s.CullCamera())
	assert.Len(t, s.Cameras(), 1)
	assert.Nil(t, s.FindNode(second.ID(), TypeCamera))

	s.DestroyNode(first)
	assert.Nil(t, s.CullCamera())
	assert.Empty(t, s.Cameras())
}

func TestDestroyNode_ReparentsChildren(t *testing.T) {
	s := NewScene()
	defer s.Close()

	other := s.CreateNode(TypeObject, nil)
	a := s.CreateNode(TypeObject, nil)
	b := s.CreateNode(TypeObject, a)
	c := s.CreateNode(TypeLight, a)
	d := s.CreateNode(TypeObject, b)
	spin := xform.NewSpin(mgl32.Vec3{0, 1, 0}, 1)
	a.AddXForm(spin)

	s.DestroyNode(a)

	assert.Equal(t, []uint64{other.ID(), b.ID(), c.ID()}, ids(s.Root().Children()))
	assert.Equal(t, s.Root().ID(), b.Parent().ID())
	assert.Equal(t, b.ID(), d.Parent().ID())
	assert.Equal(t, 5, s.NodeCount())
	assert.Nil(t, s.FindNode(a.ID(), TypeAny))
	_, owned := spin.Owner()
	assert.False(t, owned)

	assert.Panics(t, func() { s.DestroyNode(a) })
	assert.Panics(t, func() { s.DestroyNode(s.Root()) })
}

func TestDestroyNode_StaleHandleNotAliased(t *testing.T) {
	s := NewScene()
	defer s.Close()

	a := s.CreateNode(TypeObject, nil)
	s.DestroyNode(a)
	b := s.CreateNode(TypeObject, nil)

	assert.Equal(t, a.Handle().Index, b.Handle().Index)
	assert.NotEqual(t, a.Handle().Gen, b.Handle().Gen)
	assert.Panics(t, func() { s.SetParent(a, nil) })
	assert.NotPanics(t, func() { s.SetParent(b, nil) })
}

func TestSetParent(t *testing.T) {
	s := NewScene()
	defer s.Close()

	a := s.CreateNode(TypeObject, nil)
	b := s.CreateNode(TypeObject, a)
	c := s.CreateNode(TypeObject, nil)

	s.SetParent(c, b)
	assert.Equal(t, b.ID(), c.Parent().ID())
	assert.Equal(t, []uint64{a.ID()}, ids(s.Root().Children()))

	assert.Panics(t, func() { s.SetParent(a, c) })
	assert.Panics(t, func() { s.SetParent(a, a) })
	assert.Panics(t, func() { s.SetParent(s.Root(), a) })

	s.SetParent(c, nil)
	assert.Equal(t, []uint64{a.ID(), c.ID()}, ids(s.Root().Children()))

	other := NewScene()
	defer other.Close()
	assert.Panics(t, func() { s.SetParent(c, other.Root()) })
}

func TestFindNode(t *testing.T) {
	s := NewScene()
	defer s.Close()

	obj := s.CreateNode(TypeObject, nil)
	obj.SetName("lamp")
	light := s.CreateNode(TypeLight, nil)
	light.SetName("lamp")

	assert.Equal(t, obj.ID(), s.FindNode(obj.ID(), TypeAny).ID())
	assert.Equal(t, light.ID(), s.FindNode(light.ID(), TypeObject).ID())
	assert.Nil(t, s.FindNode(9999, TypeAny))

	assert.Equal(t, obj.ID(), s.FindNodeByName("lamp", TypeAny).ID())
	assert.Equal(t, light.ID(), s.FindNodeByName("lamp", TypeLight).ID())
	assert.Nil(t, s.FindNodeByName("missing", TypeObject))

	assert.Equal(t, []uint64{light.ID()}, ids(s.Nodes(TypeLight)))
	assert.Len(t, s.Nodes(TypeAny), 3)
}

func TestUpdate_WorldComposition(t *testing.T) {
	s := NewScene()
	defer s.Close()

	parent := s.CreateNode(TypeObject, nil)
	parent.SetLocal(translation(1, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90))))
	child := s.CreateNode(TypeObject, parent)
	child.SetLocal(translation(0, 0, -2))
	leaf := s.CreateNode(TypeObject, child)
	leaf.SetLocal(mgl32.Scale3D(2, 2, 2))

	s.Update(frame.NewContext(nil), StateAny)

	assert.True(t, child.World().ApproxEqualThreshold(parent.Local().Mul4(child.Local()), 1e-5))
	want := s.Root().Local().Mul4(parent.Local()).Mul4(child.Local()).Mul4(leaf.Local())
	assert.True(t, leaf.World().ApproxEqualThreshold(want, 1e-5))
	assert.True(t, common.Translation(child.World()).ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5))
}

func TestUpdate_MaskInheritance(t *testing.T) {
	s := NewScene()
	defer s.Close()

	a := s.CreateNode(TypeObject, nil)
	b := s.CreateNode(TypeObject, a)
	c := s.CreateNode(TypeObject, b)
	a.SetState(StateActive)
	b.SetState(StateDynamic)
	c.SetState(StateActive)
	a.SetLocal(translation(1, 0, 0))
	c.SetLocal(translation(0, 5, 0))

	s.Update(frame.NewContext(nil), StateActive)

	assert.True(t, a.World().ApproxEqualThreshold(translation(1, 0, 0), 1e-6))
	assert.Equal(t, mgl32.Ident4(), b.World())
	assert.Equal(t, mgl32.Ident4(), c.World())

	var visited []uint64
	s.Traverse(nil, StateActive, func(n Node) bool {
		visited = append(visited, n.ID())
		return true
	})
	assert.Equal(t, []uint64{s.Root().ID(), a.ID()}, visited)

	s.Update(frame.NewContext(nil), StateActive|StateDynamic)
	assert.True(t, c.World().ApproxEqualThreshold(translation(1, 5, 0), 1e-6))
}

func TestTraverse_AbortStopsEverything(t *testing.T) {
	s := NewScene()
	defer s.Close()

	a := s.CreateNode(TypeObject, nil)
	s.CreateNode(TypeObject, a)
	s.CreateNode(TypeObject, nil)

	count := 0
	completed := s.Traverse(nil, StateAny, func(Node) bool {
		count++
		return count < 2
	})
	assert.False(t, completed)
	assert.Equal(t, 2, count)

	var order []uint64
	assert.True(t, s.Traverse(a, StateAny, func(n Node) bool {
		order = append(order, n.ID())
		return true
	}))
	assert.Len(t, order, 2)
	assert.Equal(t, a.ID(), order[0])
}

func TestUpdate_XFormsComposeInOrder(t *testing.T) {
	s := NewScene()
	defer s.Close()

	move := xform.NewPositionOrientationScale()
	move.Position = mgl32.Vec3{1, 0, 0}
	grow := xform.NewPositionOrientationScale()
	grow.Scale = mgl32.Vec3{2, 2, 2}

	first := s.CreateNode(TypeObject, nil)
	first.AddXForm(move)
	first.AddXForm(grow)

	move2 := xform.NewPositionOrientationScale()
	move2.Position = mgl32.Vec3{1, 0, 0}
	grow2 := xform.NewPositionOrientationScale()
	grow2.Scale = mgl32.Vec3{2, 2, 2}
	second := s.CreateNode(TypeObject, nil)
	second.AddXForm(grow2)
	second.AddXForm(move2)

	s.Update(frame.NewContext(nil), StateAny)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, common.Translation(first.World()))
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, common.Translation(second.World()))

	assert.Panics(t, func() { second.AddXForm(move) })
	assert.True(t, first.RemoveXForm(move))
	assert.False(t, first.RemoveXForm(move))
	assert.NotPanics(t, func() { second.AddXForm(move) })
	assert.Len(t, second.XForms(), 3)
}

func TestUpdate_LookAtResolvesThroughScene(t *testing.T) {
	s := NewScene()
	defer s.Close()

	target := s.CreateNode(TypeObject, nil)
	target.SetLocal(translation(10, 0, 0))
	watcher := s.CreateNode(TypeObject, nil)
	watcher.AddXForm(xform.NewLookAt(target.ID(), mgl32.Vec3{}))

	ctx := frame.NewContext(nil)
	s.Update(ctx, StateAny)
	assert.Nil(t, ctx.Nodes)

	forward := watcher.World().Col(2).Vec3().Mul(-1)
	assert.True(t, forward.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5))

	w, ok := s.NodeWorld(target.ID())
	require.True(t, ok)
	assert.Equal(t, target.World(), w)
	_, ok = s.NodeWorld(12345)
	assert.False(t, ok)
}

func TestUpdate_CameraFollowsNode(t *testing.T) {
	s := NewScene()
	defer s.Close()

	rig := s.CreateNode(TypeObject, nil)
	rig.SetLocal(translation(0, 3, 0))
	camNode := s.CreateNode(TypeCamera, rig)
	camNode.SetLocal(translation(0, 0, 5))

	s.Update(frame.NewContext(nil), StateAny)
	cam := camNode.Camera()
	assert.True(t, cam.Position().ApproxEqualThreshold(mgl32.Vec3{0, 3, 5}, 1e-5))
	assert.True(t, cam.View().Mul4(cam.World()).ApproxEqualThreshold(mgl32.Ident4(), 1e-5))
	assert.False(t, cam.ProjDirty())
}

func TestUpdate_HiddenNodesStillUpdate(t *testing.T) {
	s := NewScene()
	defer s.Close()

	h := s.CreateNode(TypeObject, nil)
	h.SetName("#gizmo")
	h.SetLocal(translation(0, 1, 0))
	s.Update(frame.NewContext(nil), StateAny)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, common.Translation(h.World()))
}

func TestUpdate_FreeCameraOnlySelected(t *testing.T) {
	s := NewScene()
	defer s.Close()

	ctx := frame.NewContext(nil)
	camA := s.CreateNode(TypeCamera, nil)
	camB := s.CreateNode(TypeCamera, nil)
	flyA := xform.NewFreeCamera(xform.WithPose(mgl32.Vec3{}, 0, 0), xform.WithDamping(0))
	flyB := xform.NewFreeCamera(xform.WithPose(mgl32.Vec3{}, 0, 0), xform.WithDamping(0))
	camA.AddXForm(flyA)
	camB.AddXForm(flyB)
	camB.SetSelected(true)

	in := newHeldKey(t)
	ctx.Input = in
	ctx.Advance(1)
	s.Update(ctx, StateAny)

	assert.Equal(t, mgl32.Vec3{}, flyA.Position)
	assert.NotEqual(t, mgl32.Vec3{}, flyB.Position)
}

func TestCull(t *testing.T) {
	s := NewScene(WithCullWorkers(3))
	defer s.Close()

	s.CreateNode(TypeCamera, nil)
	var front []uint64
	for i := range 100 {
		n := s.CreateNode(TypeObject, nil)
		n.SetLocal(translation(0, 0, -float32(5+i)))
		n.SetBounds(geom.Sphere{Radius: 0.5})
		front = append(front, n.ID())

		back := s.CreateNode(TypeLight, nil)
		back.SetLocal(translation(0, 0, float32(5+i)))
		back.SetBounds(geom.Sphere{Radius: 0.5})
	}
	off := s.CreateNode(TypeObject, nil)
	off.SetLocal(translation(100, 0, -10))
	off.SetBounds(geom.Sphere{Radius: 1})
	inactive := s.CreateNode(TypeObject, nil)
	inactive.SetLocal(translation(0, 0, -10))
	inactive.SetBounds(geom.Sphere{Radius: 1})
	inactive.SetState(StateDynamic)
	s.CreateNode(TypeObject, nil).SetLocal(translation(0, 0, -10))

	s.Update(frame.NewContext(nil), StateAny)
	assert.Equal(t, front, ids(s.Cull(nil)))
}

func TestCull_NoCamera(t *testing.T) {
	s := NewScene()
	defer s.Close()
	s.CreateNode(TypeObject, nil).SetBounds(geom.Sphere{Radius: 1})
	assert.Nil(t, s.Cull(nil))
}

func TestCull_DegenerateFrustum(t *testing.T) {
	s := NewScene()
	defer s.Close()
	s.CreateNode(TypeObject, nil).SetBounds(geom.Sphere{Origin: mgl32.Vec3{0, 0, -5}, Radius: 1})
	s.Update(frame.NewContext(nil), StateAny)

	cam := camera.NewCamera()
	require.NoError(t, cam.SetProj(0, 0, 0, 0, 1, 10, 0))
	cam.Update()
	assert.True(t, cam.WorldFrustum().Degenerate())
	assert.Nil(t, s.Cull(cam))
}

func TestCull_FarPlane(t *testing.T) {
	s := NewScene()
	defer s.Close()
	inside := s.CreateNode(TypeObject, nil)
	inside.SetBounds(geom.Sphere{Origin: mgl32.Vec3{0, 0, -5}, Radius: 1})
	beyond := s.CreateNode(TypeObject, nil)
	beyond.SetBounds(geom.Sphere{Origin: mgl32.Vec3{0, 0, -50}, Radius: 1})
	s.Update(frame.NewContext(nil), StateAny)

	finite := camera.NewCamera()
	finite.SetPerspective(mgl32.DegToRad(60), 1, 0.1, 20, 0)
	finite.Update()
	assert.Equal(t, []uint64{inside.ID()}, ids(s.Cull(finite)))

	infinite := camera.NewCamera()
	infinite.SetPerspective(mgl32.DegToRad(60), 1, 0.1, 20, camera.FlagInfinite)
	infinite.Update()
	assert.Equal(t, []uint64{inside.ID(), beyond.ID()}, ids(s.Cull(infinite)))
}

func TestPick(t *testing.T) {
	s := NewScene()
	defer s.Close()

	far := s.CreateNode(TypeObject, nil)
	far.SetLocal(translation(0, 0, -10))
	far.SetBounds(geom.Sphere{Radius: 1})
	near := s.CreateNode(TypeLight, nil)
	near.SetLocal(translation(0, 0, -5))
	near.SetBounds(geom.Sphere{Radius: 1})
	s.CreateNode(TypeObject, nil).SetBounds(geom.Sphere{Origin: mgl32.Vec3{0, 10, 0}, Radius: 1})
	s.Update(frame.NewContext(nil), StateAny)

	hit, dist, ok := s.Pick(geom.NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}))
	require.True(t, ok)
	assert.Equal(t, near.ID(), hit.ID())
	assert.InDelta(t, 4, dist, 1e-5)

	_, _, ok = s.Pick(geom.NewRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))
	assert.False(t, ok)
}

func TestClose(t *testing.T) {
	s := NewScene()
	a := s.CreateNode(TypeObject, nil)
	s.Close()
	assert.Equal(t, 0, s.NodeCount())
	assert.Nil(t, s.Root())
	assert.Nil(t, a.Parent())
}
