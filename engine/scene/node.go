package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/pool"
	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownNodeType is returned when a node type name cannot be parsed.
var ErrUnknownNodeType = errors.New("scene: unknown node type")

// Type tags what a node represents.
type Type int

const (
	TypeRoot Type = iota
	TypeCamera
	TypeObject
	TypeLight

	typeCount

	// TypeAny is a search hint meaning no preferred type.
	TypeAny Type = -1
)

var typeNames = [typeCount]string{"Root", "Camera", "Object", "Light"}

// nameCounters hold the next auto-name suffix per type for the whole process.
var nameCounters [typeCount]atomic.Uint64

func (t Type) String() string {
	if t < 0 || t >= typeCount {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

func (t Type) valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType converts a type name as written by Type.String back to a Type.
//
// Parameters:
//   - name: the type name, case sensitive
//
// Returns:
//   - Type: the parsed type
//   - error: ErrUnknownNodeType when name does not match any type
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return TypeAny, fmt.Errorf("%w: %q", ErrUnknownNodeType, name)
}

// State is a node state bitmask. Update and Traverse skip a node together
// with its whole subtree when the node shares no bit with the mask.
type State uint8

const (
	StateActive   State = 1
	StateDynamic  State = 2
	StateSelected State = 8

	// StateAny matches every node with at least one state bit set.
	StateAny State = 0xff

	defaultState = StateActive | StateDynamic
)

// autoName returns the next "<Type>_NNN" name for t.
func autoName(t Type) string {
	return fmt.Sprintf("%s_%03d", t, nameCounters[t].Add(1)-1)
}

// hidden reports whether a node name marks the node as internal. Hidden nodes
// update normally but are left out when a scene is written.
func hidden(name string) bool {
	return strings.HasPrefix(name, "#")
}

// Node is an element of the scene hierarchy.
//
// Node attributes (name, state, matrices, XForms, bounds) are not synchronized
// and belong to the goroutine driving Scene.Update. Structural changes go
// through the Scene.
type Node interface {
	xform.Node

	// SetName renames the node. Names need not be unique.
	SetName(name string)

	// Type returns the node type.
	Type() Type

	// State returns the state bitmask.
	State() State

	// SetState replaces the state bitmask.
	SetState(state State)

	// SetStateFlag sets or clears the given bits.
	SetStateFlag(flag State, on bool)

	// SetSelected sets or clears StateSelected.
	SetSelected(selected bool)

	// UserData returns the opaque user value.
	UserData() uint64

	// SetUserData stores an opaque user value.
	SetUserData(data uint64)

	// Local returns the transform relative to the parent.
	Local() mgl32.Mat4

	// SetLocal replaces the transform relative to the parent.
	SetLocal(local mgl32.Mat4)

	// XForms returns the owned XForms in application order.
	XForms() []xform.XForm

	// AddXForm appends x and binds it to this node.
	// Panics if x is already owned by a node.
	AddXForm(x xform.XForm)

	// RemoveXForm detaches x from this node.
	//
	// Returns:
	//   - bool: false if x is not owned by this node
	RemoveXForm(x xform.XForm) bool

	// Parent returns the parent node, or nil for the root or a destroyed node.
	Parent() Node

	// Children returns the child nodes in insertion order.
	Children() []Node

	// Camera returns the attached camera for camera nodes, otherwise nil.
	Camera() camera.Camera

	// Bounds returns the local bounding sphere used by culling and picking.
	Bounds() (geom.Sphere, bool)

	// SetBounds sets the local bounding sphere.
	SetBounds(bounds geom.Sphere)

	// ClearBounds removes the bounding sphere.
	ClearBounds()

	// WorldBounds returns the bounding sphere transformed by the world matrix.
	WorldBounds() (geom.Sphere, bool)

	// Handle returns the pool handle of the node.
	Handle() pool.Handle
}

type node struct {
	scene  *scene
	handle pool.Handle

	id       uint64
	name     string
	typ      Type
	state    State
	userData uint64

	local mgl32.Mat4
	world mgl32.Mat4

	xforms []xform.XForm

	parent   pool.Handle
	children []pool.Handle

	cam       camera.Camera
	camHandle pool.Handle

	bounds    geom.Sphere
	hasBounds bool
}

var _ Node = &node{}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) Name() string {
	return n.name
}

func (n *node) SetName(name string) {
	n.name = name
}

func (n *node) Type() Type {
	return n.typ
}

func (n *node) State() State {
	return n.state
}

func (n *node) SetState(state State) {
	n.state = state
}

func (n *node) SetStateFlag(flag State, on bool) {
	if on {
		n.state |= flag
	} else {
		n.state &^= flag
	}
}

func (n *node) Selected() bool {
	return n.state&StateSelected != 0
}

func (n *node) SetSelected(selected bool) {
	n.SetStateFlag(StateSelected, selected)
}

func (n *node) UserData() uint64 {
	return n.userData
}

func (n *node) SetUserData(data uint64) {
	n.userData = data
}

func (n *node) Local() mgl32.Mat4 {
	return n.local
}

func (n *node) SetLocal(local mgl32.Mat4) {
	n.local = local
}

func (n *node) World() mgl32.Mat4 {
	return n.world
}

func (n *node) SetWorld(world mgl32.Mat4) {
	n.world = world
}

func (n *node) XForms() []xform.XForm {
	return slices.Clone(n.xforms)
}

func (n *node) AddXForm(x xform.XForm) {
	if owner, ok := x.Owner(); ok {
		panic(fmt.Sprintf("scene: %s XForm already owned by node %d", x.Class(), owner))
	}
	x.Bind(n.id)
	n.xforms = append(n.xforms, x)
}

func (n *node) RemoveXForm(x xform.XForm) bool {
	i := slices.Index(n.xforms, x)
	if i < 0 {
		return false
	}
	n.xforms = slices.Delete(n.xforms, i, i+1)
	x.Unbind()
	return true
}

func (n *node) Parent() Node {
	if p := n.parentNode(); p != nil {
		return p
	}
	return nil
}

func (n *node) Children() []Node {
	if n.scene == nil {
		return nil
	}
	out := make([]Node, 0, len(n.children))
	for _, h := range n.children {
		if c := n.scene.get(h); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) Camera() camera.Camera {
	return n.cam
}

func (n *node) Bounds() (geom.Sphere, bool) {
	return n.bounds, n.hasBounds
}

func (n *node) SetBounds(bounds geom.Sphere) {
	n.bounds = bounds
	n.hasBounds = true
}

func (n *node) ClearBounds() {
	n.bounds = geom.Sphere{}
	n.hasBounds = false
}

func (n *node) WorldBounds() (geom.Sphere, bool) {
	if !n.hasBounds {
		return geom.Sphere{}, false
	}
	return n.bounds.Transform(n.world), true
}

func (n *node) Handle() pool.Handle {
	return n.handle
}

func (n *node) parentNode() *node {
	if n.scene == nil || !n.parent.Valid() {
		return nil
	}
	return n.scene.get(n.parent)
}

// detachXForms unbinds every owned XForm.
func (n *node) detachXForms() {
	for _, x := range n.xforms {
		x.Unbind()
	}
	n.xforms = nil
}
