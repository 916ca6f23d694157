package scene

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cameraSnap struct {
	Up, Down, Right, Left, Near, Far float32
	Flags                            camera.Flags
}

type nodeSnap struct {
	Name     string
	Type     Type
	State    State
	UserData uint64
	Local    mgl32.Mat4
	Parent   uint64
	Children []uint64
	XForms   []*serial.Value
	Camera   *cameraSnap
	Bounds   *geom.Sphere
}

type sceneSnap struct {
	Root  uint64
	Nodes map[uint64]nodeSnap
	Draw  uint64
	Cull  uint64
}

func camID(s Scene, cam camera.Camera) uint64 {
	if cam == nil {
		return InvalidID
	}
	return s.CameraNode(cam).ID()
}

func snapshot(t *testing.T, s Scene) sceneSnap {
	t.Helper()
	snap := sceneSnap{
		Root:  s.Root().ID(),
		Nodes: make(map[uint64]nodeSnap),
		Draw:  camID(s, s.DrawCamera()),
		Cull:  camID(s, s.CullCamera()),
	}
	for _, n := range s.Nodes(TypeAny) {
		ns := nodeSnap{
			Name:     n.Name(),
			Type:     n.Type(),
			State:    n.State(),
			UserData: n.UserData(),
			Local:    n.Local(),
			Children: ids(n.Children()),
		}
		if p := n.Parent(); p != nil {
			ns.Parent = p.ID()
		}
		for _, x := range n.XForms() {
			w := serial.NewWriter()
			w.BeginObject("")
			require.NoError(t, xform.Write(w, x, xform.DefaultRegistry()))
			w.EndObject()
			ns.XForms = append(ns.XForms, w.Document())
		}
		if c := n.Camera(); c != nil {
			ns.Camera = &cameraSnap{c.Up(), c.Down(), c.Right(), c.Left(), c.Near(), c.Far(), c.Flags()}
		}
		if b, ok := n.Bounds(); ok {
			ns.Bounds = &b
		}
		snap.Nodes[n.ID()] = ns
	}
	return snap
}

func randomMatrix(rng *rand.Rand) mgl32.Mat4 {
	axis := mgl32.Vec3{rng.Float32() - 0.5, rng.Float32() + 0.1, rng.Float32() - 0.5}.Normalize()
	m := mgl32.Translate3D(rng.Float32()*20-10, rng.Float32()*20-10, rng.Float32()*20-10).
		Mul4(mgl32.HomogRotate3D(rng.Float32()*6, axis)).
		Mul4(mgl32.Scale3D(rng.Float32()+0.5, rng.Float32()+0.5, rng.Float32()+0.5))
	return m
}

func randomVec(rng *rand.Rand) mgl32.Vec3 {
	return mgl32.Vec3{rng.Float32()*4 - 2, rng.Float32()*4 - 2, rng.Float32()*4 - 2}
}

func randomScene(t *testing.T, rng *rand.Rand) Scene {
	t.Helper()
	s := NewScene()
	nodes := []Node{s.Root()}
	types := []Type{TypeObject, TypeLight, TypeCamera}
	for i := range 40 {
		typ := types[i%len(types)]
		if i >= len(types) {
			typ = types[rng.IntN(len(types))]
		}
		n := s.CreateNode(typ, nodes[rng.IntN(len(nodes))])
		n.SetLocal(randomMatrix(rng))
		n.SetState(State(rng.IntN(16)))
		n.SetUserData(rng.Uint64())
		if rng.IntN(2) == 0 {
			n.SetName(n.Name() + "_renamed")
		}
		if rng.IntN(3) == 0 {
			n.SetBounds(geom.Sphere{Origin: randomVec(rng), Radius: rng.Float32() * 3})
		}
		if c := n.Camera(); c != nil && rng.IntN(2) == 0 {
			c.SetPerspective(rng.Float32()+0.5, rng.Float32()+1, rng.Float32()+0.01, 500, camera.FlagReversed)
		}
		if rng.IntN(2) == 0 {
			n.AddXForm(xform.NewSpin(randomVec(rng), rng.Float32()))
		}
		if rng.IntN(3) == 0 {
			pt := xform.NewPositionTarget(randomVec(rng), randomVec(rng), rng.Float32()*5+0.1)
			pt.Smooth = rng.IntN(2) == 0
			require.NoError(t, pt.SetOnComplete(xform.CallbackReverse, xform.DefaultRegistry()))
			n.AddXForm(pt)
		}
		if rng.IntN(4) == 0 {
			n.AddXForm(xform.NewLookAt(nodes[rng.IntN(len(nodes))].ID(), randomVec(rng)))
		}
		nodes = append(nodes, n)
	}
	cams := s.Cameras()
	require.NotEmpty(t, cams)
	s.SetCullCamera(cams[len(cams)-1])
	return s
}

func saveDoc(t *testing.T, s Scene) *serial.Value {
	t.Helper()
	w := serial.NewWriter()
	require.NoError(t, s.Serialize(w))
	return w.Document()
}

func TestSerialize_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, format := range []serial.Format{serial.FormatJSON, serial.FormatYAML} {
		for trial := range 5 {
			src := randomScene(t, rng)
			data, err := serial.Marshal(saveDoc(t, src), format)
			require.NoError(t, err)

			doc, err := serial.Unmarshal(data, format)
			require.NoError(t, err)
			dst := NewScene()
			require.NoError(t, dst.Load(serial.NewReader(doc)), "%s trial %d", format, trial)

			assert.Equal(t, snapshot(t, src), snapshot(t, dst), "%s trial %d", format, trial)
			src.Close()
			dst.Close()
		}
	}
}

func TestSerialize_DocumentShape(t *testing.T) {
	s := NewScene()
	defer s.Close()
	cam := s.CreateNode(TypeCamera, nil)
	obj := s.CreateNode(TypeObject, nil)
	obj.AddXForm(xform.NewSpin(mgl32.Vec3{0, 0, 1}, 2))
	s.CreateNode(TypeLight, obj)

	doc := saveDoc(t, s)
	root := doc.Get("Root")
	require.NotNil(t, root)
	for _, field := range []string{"Id", "Name", "State", "UserData", "LocalMatrix", "Type", "Children"} {
		assert.NotNil(t, root.Get(field), field)
	}
	assert.Nil(t, root.Get("XForms"))
	assert.Len(t, root.Get("LocalMatrix").Items, 16)

	children := root.Get("Children").Items
	require.Len(t, children, 2)
	assert.Equal(t, "Camera", children[0].Get("Type").Str)
	for _, field := range []string{"Up", "Down", "Right", "Left", "Near", "Far", "WorldMatrix", "Orthographic", "Asymmetrical", "Infinite", "Reversed"} {
		assert.NotNil(t, children[0].Get(field), field)
	}
	assert.Nil(t, children[0].Get("Children"))

	xforms := children[1].Get("XForms")
	require.NotNil(t, xforms)
	require.Len(t, xforms.Items, 1)
	assert.Equal(t, "Spin", xforms.Items[0].Get("Class").Str)
	assert.Len(t, xforms.Items[0].Get("Axis").Items, 3)

	id, ok := doc.Get("DrawCameraId").Uint64()
	require.True(t, ok)
	assert.Equal(t, cam.ID(), id)
}

func TestSerialize_InvalidCameraIDs(t *testing.T) {
	s := NewScene()
	defer s.Close()
	doc := saveDoc(t, s)
	id, ok := doc.Get("CullCameraId").Uint64()
	require.True(t, ok)
	assert.Equal(t, InvalidID, id)

	dst := NewScene()
	defer dst.Close()
	require.NoError(t, dst.Load(serial.NewReader(doc)))
	assert.Nil(t, dst.DrawCamera())
}

func TestSerialize_SkipsHiddenNodes(t *testing.T) {
	s := NewScene()
	defer s.Close()
	visible := s.CreateNode(TypeObject, nil)
	gizmo := s.CreateNode(TypeObject, nil)
	gizmo.SetName("#gizmo")
	s.CreateNode(TypeObject, gizmo)

	dst := NewScene()
	defer dst.Close()
	require.NoError(t, dst.Load(serial.NewReader(saveDoc(t, s))))
	assert.Equal(t, 2, dst.NodeCount())
	assert.NotNil(t, dst.FindNode(visible.ID(), TypeObject))
	assert.Nil(t, dst.FindNode(gizmo.ID(), TypeObject))
}

func TestSerialize_HiddenCameraWritesInvalidID(t *testing.T) {
	s := NewScene()
	defer s.Close()
	shown := s.CreateNode(TypeCamera, nil)
	gizmo := s.CreateNode(TypeObject, nil)
	gizmo.SetName("#gizmo")
	editor := s.CreateNode(TypeCamera, gizmo)
	s.SetDrawCamera(editor.Camera())
	s.SetCullCamera(shown.Camera())

	doc := saveDoc(t, s)
	draw, ok := doc.Get("DrawCameraId").Uint64()
	require.True(t, ok)
	assert.Equal(t, InvalidID, draw)
	cull, ok := doc.Get("CullCameraId").Uint64()
	require.True(t, ok)
	assert.Equal(t, shown.ID(), cull)

	var logs bytes.Buffer
	dst := NewScene(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	defer dst.Close()
	require.NoError(t, dst.Load(serial.NewReader(doc)))
	assert.Nil(t, dst.DrawCamera())
	require.NotNil(t, dst.CullCamera())
	assert.NotContains(t, logs.String(), "camera reference")
}

func TestLoad_AdvancesNextID(t *testing.T) {
	src := NewScene()
	defer src.Close()
	var last Node
	for range 10 {
		last = src.CreateNode(TypeObject, nil)
	}

	dst := NewScene()
	defer dst.Close()
	require.NoError(t, dst.Load(serial.NewReader(saveDoc(t, src))))
	assert.Equal(t, last.ID(), dst.FindNode(last.ID(), TypeAny).ID())
	assert.Greater(t, dst.CreateNode(TypeObject, nil).ID(), last.ID())
}

func TestLoad_UnknownTypeLeavesSceneUnchanged(t *testing.T) {
	src := NewScene()
	defer src.Close()
	bad := src.CreateNode(TypeObject, nil)
	doc := saveDoc(t, src)
	for _, c := range doc.Get("Root").Get("Children").Items {
		if id, _ := c.Get("Id").Uint64(); id == bad.ID() {
			c.Get("Type").Str = "Spaceship"
		}
	}

	dst := NewScene()
	defer dst.Close()
	keep := dst.CreateNode(TypeLight, nil)
	before := snapshot(t, dst)

	err := dst.Load(serial.NewReader(doc))
	assert.ErrorIs(t, err, ErrUnknownNodeType)
	assert.Equal(t, before, snapshot(t, dst))
	assert.NotPanics(t, func() { dst.DestroyNode(keep) })
}

func TestLoad_MissingFieldFails(t *testing.T) {
	src := NewScene()
	defer src.Close()
	doc := saveDoc(t, src)
	root := doc.Get("Root")
	root.Members = root.Members[1:]

	dst := NewScene()
	defer dst.Close()
	assert.ErrorIs(t, dst.Load(serial.NewReader(doc)), serial.ErrMissingField)
}

func TestLoad_SkipsBadXForms(t *testing.T) {
	src := NewScene()
	defer src.Close()
	n := src.CreateNode(TypeObject, nil)
	n.AddXForm(xform.NewSpin(mgl32.Vec3{1, 0, 0}, 1))
	pt := xform.NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 1)
	require.NoError(t, pt.SetOnComplete(xform.CallbackReset, xform.DefaultRegistry()))
	n.AddXForm(pt)
	n.AddXForm(xform.NewSpin(mgl32.Vec3{0, 1, 0}, 2))
	child := src.CreateNode(TypeLight, n)

	doc := saveDoc(t, src)
	xfs := doc.Get("Root").Get("Children").Items[0].Get("XForms").Items
	xfs[0].Get("Class").Str = "Teleport"
	xfs[1].Get("OnComplete").Str = "Explode"

	var logs bytes.Buffer
	dst := NewScene(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	defer dst.Close()
	require.NoError(t, dst.Load(serial.NewReader(doc)))

	loaded := dst.FindNode(n.ID(), TypeObject)
	require.NotNil(t, loaded)
	require.Len(t, loaded.XForms(), 1)
	spin := loaded.XForms()[0].(*xform.Spin)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, spin.Axis)
	owner, ok := spin.Owner()
	assert.True(t, ok)
	assert.Equal(t, n.ID(), owner)
	assert.NotNil(t, dst.FindNode(child.ID(), TypeLight))
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping XForm"))
}

func TestLoad_OldNodesBecomeStale(t *testing.T) {
	s := NewScene()
	defer s.Close()
	old := s.CreateNode(TypeObject, nil)

	other := NewScene()
	defer other.Close()
	other.CreateNode(TypeObject, nil)
	require.NoError(t, s.Load(serial.NewReader(saveDoc(t, other))))

	assert.Panics(t, func() { s.DestroyNode(old) })
	assert.Nil(t, old.Parent())
}

func TestSerialize_ReadModeLoads(t *testing.T) {
	src := NewScene()
	defer src.Close()
	obj := src.CreateNode(TypeObject, nil)

	dst := NewScene()
	defer dst.Close()
	require.NoError(t, dst.Serialize(serial.NewReader(saveDoc(t, src))))
	assert.NotNil(t, dst.FindNode(obj.ID(), TypeObject))
}

func TestSaveLoadFile(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	src := randomScene(t, rng)
	defer src.Close()

	for _, name := range []string{"scene.json", "scene.yaml"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, src.SaveFile(path))
		dst := NewScene()
		require.NoError(t, dst.LoadFile(path))
		assert.Equal(t, snapshot(t, src), snapshot(t, dst), name)
		dst.Close()
	}

	assert.ErrorIs(t, src.SaveFile(filepath.Join(t.TempDir(), "scene.ini")), serial.ErrUnknownFormat)
}

func TestSaveFile_InfiniteFarFailsForJSON(t *testing.T) {
	s := NewScene()
	defer s.Close()
	s.CreateNode(TypeCamera, nil).Camera().SetFar(float32(math.Inf(1)))

	path := filepath.Join(t.TempDir(), "scene.json")
	assert.ErrorIs(t, s.SaveFile(path), serial.ErrNonFinite)
	assert.NoFileExists(t, path)
}
