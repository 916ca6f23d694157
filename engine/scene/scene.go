// Package scene implements the node hierarchy: pooled nodes with stable ids,
// ordered XForm behaviours, camera binding and the per-frame update pass.
package scene

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/pool"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
	"github.com/go-gl/mathgl/mgl32"
)

// InvalidID is written in place of a camera node id when no camera is set.
const InvalidID = ^uint64(0)

// Scene owns a tree of nodes and the cameras bound to camera nodes, tracks
// the draw and cull cameras, and runs the update pass.
//
// Scene methods are safe for concurrent use. Update holds the scene lock for
// the whole pass, so XForms must not call back into the Scene.
type Scene interface {
	// Root returns the root node.
	Root() Node

	// CreateNode creates a node of type t under parent, or under the root
	// when parent is nil. Camera nodes are created with a default camera.
	//
	// Parameters:
	//   - t: node type, TypeRoot through TypeLight
	//   - parent: the parent node or nil
	//
	// Returns:
	//   - Node: the new node
	CreateNode(t Type, parent Node) Node

	// DestroyNode removes n. Its children move to n's parent, keeping their
	// order, and a camera bound to n is destroyed with it.
	// Panics if n is the root or is not a live node of this scene.
	DestroyNode(n Node)

	// SetParent moves n under parent, or under the root when parent is nil.
	// Panics if the move would create a cycle.
	SetParent(n, parent Node)

	// FindNode returns the node with the given id.
	//
	// Parameters:
	//   - id: node id
	//   - hint: the type expected, or TypeAny
	//
	// Returns:
	//   - Node: the node or nil
	FindNode(id uint64, hint Type) Node

	// FindNodeByName returns the first node called name. The hinted type is
	// searched first, then every type in order.
	//
	// Parameters:
	//   - name: node name
	//   - hint: the type to search first, or TypeAny
	//
	// Returns:
	//   - Node: the node or nil
	FindNodeByName(name string, hint Type) Node

	// Nodes returns the nodes of type t in creation order, or every node for TypeAny.
	Nodes(t Type) []Node

	// NodeCount returns the number of live nodes including the root.
	NodeCount() int

	// Update runs one update pass from the root. A node that shares no bit
	// with mask is skipped together with its subtree. For each visited node
	// world is reset to local, the node's XForms are applied in order, the
	// parent world is pre-multiplied and an attached camera is updated.
	//
	// Parameters:
	//   - ctx: the frame context; ctx.Nodes is pointed at this scene during the pass
	//   - mask: state mask
	Update(ctx *frame.Context, mask State)

	// Traverse visits nodes in pre-order from root (the scene root when nil)
	// with the same mask cutoff as Update. fn returning false stops the whole
	// traversal. The visit list is taken before fn is first called.
	//
	// Returns:
	//   - bool: false if fn stopped the traversal
	Traverse(root Node, mask State, fn func(Node) bool) bool

	// CreateCamera creates a camera copied from template (defaults when nil).
	// A camera-type parent with no camera is bound directly; otherwise a new
	// camera node is created under parent. The first camera of the scene
	// becomes both the draw and the cull camera.
	//
	// Returns:
	//   - Node: the camera node, its camera available through Node.Camera
	CreateCamera(template camera.Camera, parent Node) Node

	// DestroyCamera destroys cam together with its node.
	DestroyCamera(cam camera.Camera)

	// Cameras returns the bound cameras in creation order.
	Cameras() []camera.Camera

	// CameraNode returns the node cam is bound to, or nil.
	CameraNode(cam camera.Camera) Node

	// DrawCamera returns the camera used for drawing, or nil.
	DrawCamera() camera.Camera

	// SetDrawCamera selects the draw camera. nil clears it.
	SetDrawCamera(cam camera.Camera)

	// CullCamera returns the camera used for culling, or nil.
	CullCamera() camera.Camera

	// SetCullCamera selects the cull camera. nil clears it.
	SetCullCamera(cam camera.Camera)

	// NodeWorld resolves a node id to its current world matrix.
	NodeWorld(id uint64) (mgl32.Mat4, bool)

	// Cull returns the active Object and Light nodes whose world bounds
	// intersect cam's world frustum, in creation order. cam nil uses the cull
	// camera.
	Cull(cam camera.Camera) []Node

	// Pick returns the active node whose world bounds the ray enters first.
	//
	// Returns:
	//   - Node: the nearest hit or nil
	//   - float32: distance along the ray
	//   - bool: whether anything was hit
	Pick(ray geom.Ray) (Node, float32, bool)

	// Serialize writes the scene as a document rooted at the serializer's
	// root object. s must be in write mode; use Load to read.
	Serialize(s serial.Serializer) error

	// Load reads a scene document into a fresh scene and replaces this
	// scene's contents with it on success. On error the scene is unchanged.
	Load(s serial.Serializer) error

	// SaveFile writes the scene to path, JSON or YAML by extension.
	SaveFile(path string) error

	// LoadFile loads the scene from path, JSON or YAML by extension.
	LoadFile(path string) error

	// Close destroys every node and drops the cull worker pool.
	Close()
}

type scene struct {
	mu       *sync.RWMutex
	logger   *slog.Logger
	registry *xform.Registry

	nodes   *pool.Pool[*node]
	cameras *pool.Pool[camera.Camera]
	bins    [typeCount][]pool.Handle
	byID    map[uint64]pool.Handle
	camList []pool.Handle

	root     pool.Handle
	drawNode pool.Handle
	cullNode pool.Handle
	nextID   uint64

	cullWorkers int
	cullPool    worker.DynamicWorkerPool
}

var _ Scene = &scene{}

// NewScene creates a scene holding only a root node.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := newScene(slog.Default(), xform.DefaultRegistry())
	s.cullWorkers = max(runtime.NumCPU()-1, 1)
	for _, option := range options {
		option(s)
	}
	s.cullPool = worker.NewDynamicWorkerPool(s.cullWorkers, 256, 1*time.Second)
	root := s.newNode(TypeRoot, nil, s.nextID, autoName(TypeRoot))
	s.root = root.handle
	return s
}

// newScene creates an empty scene with no root and no worker pool.
func newScene(logger *slog.Logger, registry *xform.Registry) *scene {
	return &scene{
		mu:       &sync.RWMutex{},
		logger:   logger,
		registry: registry,
		nodes:    pool.New[*node](64),
		cameras:  pool.New[camera.Camera](8),
		byID:     make(map[uint64]pool.Handle),
		nextID:   1,
	}
}

func (s *scene) Root() Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if root := s.get(s.root); root != nil {
		return root
	}
	return nil
}

func (s *scene) CreateNode(t Type, parent Node) Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.valid() {
		panic(fmt.Sprintf("scene: CreateNode with invalid type %v", t))
	}
	p := s.parentOrRoot(parent)
	if t == TypeCamera {
		return s.createCamera(nil, p)
	}
	return s.newNode(t, p, s.nextID, autoName(t))
}

func (s *scene) DestroyNode(n Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyNode(s.mustNode(n))
}

func (s *scene) SetParent(n, parent Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	child := s.mustNode(n)
	p := s.parentOrRoot(parent)
	for a := p; a != nil; a = a.parentNode() {
		if a == child {
			panic(fmt.Sprintf("scene: SetParent would make node %d its own ancestor", child.id))
		}
	}
	s.unlink(child)
	s.link(child, p)
}

func (s *scene) FindNode(id uint64, _ Type) Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.byIDNode(id); n != nil {
		return n
	}
	return nil
}

func (s *scene) FindNodeByName(name string, hint Type) Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	find := func(t Type) *node {
		for _, h := range s.bins[t] {
			if n := s.get(h); n != nil && n.name == name {
				return n
			}
		}
		return nil
	}
	if hint.valid() {
		if n := find(hint); n != nil {
			return n
		}
	}
	for t := range typeCount {
		if t == hint {
			continue
		}
		if n := find(t); n != nil {
			return n
		}
	}
	return nil
}

func (s *scene) Nodes(t Type) []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Node
	collect := func(t Type) {
		for _, h := range s.bins[t] {
			if n := s.get(h); n != nil {
				out = append(out, n)
			}
		}
	}
	if t.valid() {
		collect(t)
		return out
	}
	for t := range typeCount {
		collect(t)
	}
	return out
}

func (s *scene) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes.Len()
}

func (s *scene) CreateCamera(template camera.Camera, parent Node) Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCamera(template, s.parentOrRoot(parent))
}

func (s *scene) DestroyCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.cameraNode(cam)
	if n == nil {
		panic("scene: DestroyCamera with a camera not bound in this scene")
	}
	s.destroyNode(n)
}

func (s *scene) Cameras() []camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]camera.Camera, 0, len(s.camList))
	for _, h := range s.camList {
		if n := s.get(h); n != nil && n.cam != nil {
			out = append(out, n.cam)
		}
	}
	return out
}

func (s *scene) CameraNode(cam camera.Camera) Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.cameraNode(cam); n != nil {
		return n
	}
	return nil
}

func (s *scene) DrawCamera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camAt(s.drawNode)
}

func (s *scene) SetDrawCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawNode = s.cameraHandle(cam)
}

func (s *scene) CullCamera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camAt(s.cullNode)
}

func (s *scene) SetCullCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullNode = s.cameraHandle(cam)
}

func (s *scene) NodeWorld(id uint64) (mgl32.Mat4, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return resolver{s}.NodeWorld(id)
}

func (s *scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes.Each(func(_ pool.Handle, n **node) bool {
		(*n).detachXForms()
		(*n).scene = nil
		return true
	})
	s.nodes = pool.New[*node](0)
	s.cameras = pool.New[camera.Camera](0)
	s.bins = [typeCount][]pool.Handle{}
	s.byID = make(map[uint64]pool.Handle)
	s.camList = nil
	s.root, s.drawNode, s.cullNode = pool.Handle{}, pool.Handle{}, pool.Handle{}
	s.cullPool = nil
}

// resolver resolves node ids without taking the scene lock. It is handed to
// XForms through the frame context while Update holds the lock.
type resolver struct {
	s *scene
}

func (r resolver) NodeWorld(id uint64) (mgl32.Mat4, bool) {
	n := r.s.byIDNode(id)
	if n == nil {
		return mgl32.Mat4{}, false
	}
	return n.world, true
}

// get resolves a node handle. Caller must hold the lock.
func (s *scene) get(h pool.Handle) *node {
	p, ok := s.nodes.Get(h)
	if !ok {
		return nil
	}
	return *p
}

func (s *scene) byIDNode(id uint64) *node {
	h, ok := s.byID[id]
	if !ok {
		return nil
	}
	return s.get(h)
}

// mustNode checks that n is a live node of this scene. Caller must hold the lock.
func (s *scene) mustNode(n Node) *node {
	nn, ok := n.(*node)
	if !ok || nn == nil || nn.scene != s || !s.nodes.Live(nn.handle) {
		panic("scene: node is stale or belongs to another scene")
	}
	return nn
}

func (s *scene) parentOrRoot(parent Node) *node {
	if parent == nil {
		root := s.get(s.root)
		if root == nil {
			panic("scene: scene has no root")
		}
		return root
	}
	return s.mustNode(parent)
}

// newNode allocates and links a node. Caller must hold the lock.
func (s *scene) newNode(t Type, parent *node, id uint64, name string) *node {
	h, slot := s.nodes.Alloc()
	n := &node{
		scene:  s,
		handle: h,
		id:     id,
		name:   name,
		typ:    t,
		state:  defaultState,
		local:  mgl32.Ident4(),
		world:  mgl32.Ident4(),
	}
	*slot = n
	s.byID[id] = h
	if id >= s.nextID {
		s.nextID = id + 1
	}
	s.bins[t] = append(s.bins[t], h)
	if parent != nil {
		s.link(n, parent)
	}
	return n
}

func (s *scene) link(n, parent *node) {
	n.parent = parent.handle
	parent.children = append(parent.children, n.handle)
}

func (s *scene) unlink(n *node) {
	if p := n.parentNode(); p != nil {
		if i := slices.Index(p.children, n.handle); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	n.parent = pool.Handle{}
}

// destroyNode removes n and reparents its children. Caller must hold the lock.
func (s *scene) destroyNode(n *node) {
	if n.handle == s.root {
		panic("scene: cannot destroy the root node")
	}
	if n.cam != nil {
		s.cameras.Free(n.camHandle)
		n.cam.SetParent(nil)
		n.cam, n.camHandle = nil, pool.Handle{}
		if i := slices.Index(s.camList, n.handle); i >= 0 {
			s.camList = slices.Delete(s.camList, i, i+1)
		}
	}
	if s.drawNode == n.handle {
		s.drawNode = pool.Handle{}
	}
	if s.cullNode == n.handle {
		s.cullNode = pool.Handle{}
	}

	parent := n.parentNode()
	if parent == nil {
		parent = s.get(s.root)
	}
	for _, h := range slices.Clone(n.children) {
		if c := s.get(h); c != nil {
			s.link(c, parent)
		}
	}
	n.children = nil
	s.unlink(n)

	if i := slices.Index(s.bins[n.typ], n.handle); i >= 0 {
		s.bins[n.typ] = slices.Delete(s.bins[n.typ], i, i+1)
	}
	delete(s.byID, n.id)
	n.detachXForms()
	s.nodes.Free(n.handle)
}

// createCamera binds a copy of template to parent when parent is an unbound
// camera node, otherwise to a new camera node under parent. Caller must hold
// the lock.
func (s *scene) createCamera(template camera.Camera, parent *node) *node {
	var cam camera.Camera
	if template != nil {
		cam = template.Clone()
	} else {
		cam = camera.NewCamera()
	}

	n := parent
	if n.typ != TypeCamera || n.cam != nil {
		n = s.newNode(TypeCamera, parent, s.nextID, autoName(TypeCamera))
	}
	s.bindCamera(n, cam)
	return n
}

func (s *scene) bindCamera(n *node, cam camera.Camera) {
	h, slot := s.cameras.Alloc()
	*slot = cam
	n.cam, n.camHandle = cam, h
	cam.SetParent(n)
	s.camList = append(s.camList, n.handle)
	if len(s.camList) == 1 {
		s.drawNode, s.cullNode = n.handle, n.handle
	}
}

func (s *scene) cameraNode(cam camera.Camera) *node {
	if cam == nil {
		return nil
	}
	for _, h := range s.camList {
		if n := s.get(h); n != nil && n.cam == cam {
			return n
		}
	}
	return nil
}

func (s *scene) cameraHandle(cam camera.Camera) pool.Handle {
	if cam == nil {
		return pool.Handle{}
	}
	n := s.cameraNode(cam)
	if n == nil {
		panic("scene: camera is not bound in this scene")
	}
	return n.handle
}

func (s *scene) camAt(h pool.Handle) camera.Camera {
	if n := s.get(h); n != nil {
		return n.cam
	}
	return nil
}
