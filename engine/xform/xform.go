// Package xform implements node behaviours ("XForms"): small stateful objects
// attached to a scene node that rewrite the node's world matrix each update.
//
// XForms on one node compose by sequential application: each Apply reads the
// world matrix left by the previous XForm (seeded with the node's local
// matrix) and writes the result back.
package xform

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownClass is returned when a serialized XForm names an unregistered class.
	ErrUnknownClass = errors.New("xform: unknown class")
	// ErrUnknownCallback is returned when a serialized OnComplete names an unregistered callback.
	ErrUnknownCallback = errors.New("xform: unknown callback")
)

// Node is the view of a scene node that XForms operate on.
type Node interface {
	ID() uint64
	Name() string
	World() mgl32.Mat4
	SetWorld(world mgl32.Mat4)
	Selected() bool
}

// XForm is a behaviour owned by exactly one node.
type XForm interface {
	// Class returns the registered class name.
	Class() string

	// Apply updates n's world matrix for one frame.
	//
	// Parameters:
	//   - ctx: the frame context
	//   - n: the owning node
	Apply(ctx *frame.Context, n Node)

	// Serialize reads or writes the class-specific fields as members of the
	// current object. The Class field itself is handled by Write and Read.
	//
	// Parameters:
	//   - s: the serializer
	//   - r: registry used to resolve callback names
	//
	// Returns:
	//   - error: a missing field or unknown callback on read
	Serialize(s serial.Serializer, r *Registry) error

	// Owner returns the owning node id and whether the XForm is owned.
	Owner() (uint64, bool)

	// Bind records owner as the owning node. Panics if already owned.
	Bind(owner uint64)

	// Unbind releases ownership.
	Unbind()
}

// Timed is implemented by XForms that run for a fixed duration and then fire
// an OnComplete callback once.
type Timed interface {
	XForm

	// Reset rewinds to the start.
	Reset()
	// RelativeReset moves the motion so it starts at the node's current
	// position, then rewinds. Repeating motion continues without a snap.
	RelativeReset(n Node)
	// Reverse swaps the start and end and mirrors the current time.
	Reverse()

	// Time returns the elapsed time, clamped to [0, Duration].
	Time() float32
	// Duration returns the total run time.
	Duration() float32
	// Complete reports whether the end has been reached.
	Complete() bool
}

// Base carries the ownership state shared by every XForm.
type Base struct {
	owner uint64
	bound bool
}

func (b *Base) Owner() (uint64, bool) {
	return b.owner, b.bound
}

func (b *Base) Bind(owner uint64) {
	if b.bound {
		panic(fmt.Sprintf("xform: already owned by node %d", b.owner))
	}
	b.owner = owner
	b.bound = true
}

func (b *Base) Unbind() {
	b.owner = 0
	b.bound = false
}

// Write serializes x including its Class field.
//
// Parameters:
//   - s: a serializer in ModeWrite positioned inside the XForm's object
//   - x: the XForm to write
//   - r: registry used to name callbacks
//
// Returns:
//   - error: any error from x.Serialize
func Write(s serial.Serializer, x XForm, r *Registry) error {
	class := x.Class()
	s.String("Class", &class)
	return x.Serialize(s, r)
}

// Read constructs an XForm from the current object.
//
// Parameters:
//   - s: a serializer in ModeRead positioned inside the XForm's object
//   - r: registry used to construct the class and resolve callbacks
//
// Returns:
//   - XForm: the decoded XForm
//   - error: ErrUnknownClass, ErrUnknownCallback or a missing field
func Read(s serial.Serializer, r *Registry) (XForm, error) {
	var class string
	if !s.String("Class", &class) {
		return nil, fmt.Errorf("xform: %w: Class", serial.ErrMissingField)
	}
	x, err := r.New(class)
	if err != nil {
		return nil, err
	}
	if err := x.Serialize(s, r); err != nil {
		return nil, err
	}
	return x, nil
}

// fields collects missing field names while a Serialize method runs.
type fields struct {
	class   string
	mode    serial.Mode
	missing []string
}

func newFields(class string, s serial.Serializer) *fields {
	return &fields{class: class, mode: s.Mode()}
}

func (f *fields) check(name string, ok bool) {
	if !ok && f.mode == serial.ModeRead {
		f.missing = append(f.missing, name)
	}
}

func (f *fields) err() error {
	if len(f.missing) == 0 {
		return nil
	}
	return fmt.Errorf("xform %s: %w: %v", f.class, serial.ErrMissingField, f.missing)
}
