// Package frame defines the per-frame context handed to scene updates and
// node behaviours in place of process-wide globals.
package frame

import (
	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

// Resolver looks up the current world matrix of another node by id.
type Resolver interface {
	NodeWorld(id uint64) (mgl32.Mat4, bool)
}

// Context bundles everything an update pass may read: elapsed time, the
// input snapshot and a way to resolve other nodes.
type Context struct {
	// DT is the elapsed time of this frame in seconds.
	DT float32
	// Time is the total elapsed time in seconds.
	Time float64
	// Frame counts calls to Advance.
	Frame uint64
	// Input is the input snapshot for this frame. May be nil for headless updates.
	Input *input.State
	// Nodes resolves node ids to world matrices. Set by the scene during an update.
	Nodes Resolver
}

// NewContext creates a Context reading from in.
//
// Parameters:
//   - in: the input snapshot, may be nil
//
// Returns:
//   - *Context: the new context
func NewContext(in *input.State) *Context {
	return &Context{Input: in}
}

// Advance starts a new frame of length dt seconds.
func (c *Context) Advance(dt float32) {
	c.DT = dt
	c.Time += float64(dt)
	c.Frame++
}

// KeyDown reports whether k is held, false when no input is attached.
func (c *Context) KeyDown(k input.Key) bool {
	return c.Input != nil && c.Input.IsDown(k)
}
