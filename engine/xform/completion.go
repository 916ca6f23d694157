package xform

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
)

// completion tracks the two-state run of a timed XForm and its named callback.
type completion struct {
	duration    float32
	currentTime float32
	complete    bool

	callbackName string
	callback     OnComplete
}

// SetOnComplete selects the callback fired when the run completes. An empty
// name clears it.
//
// Parameters:
//   - name: registered callback name
//   - r: registry to resolve the name in
//
// Returns:
//   - error: ErrUnknownCallback when name is not registered
func (c *completion) SetOnComplete(name string, r *Registry) error {
	if name == "" {
		c.callbackName, c.callback = "", nil
		return nil
	}
	fn, ok := r.Callback(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCallback, name)
	}
	c.callbackName, c.callback = name, fn
	return nil
}

// OnCompleteName returns the selected callback name, or "".
func (c *completion) OnCompleteName() string {
	return c.callbackName
}

func (c *completion) Time() float32 {
	return c.currentTime
}

func (c *completion) Duration() float32 {
	return c.duration
}

// SetDuration changes the run length. The current time is clamped to it.
func (c *completion) SetDuration(d float32) {
	c.duration = d
	if c.currentTime > d {
		c.currentTime = d
	}
}

func (c *completion) Complete() bool {
	return c.complete
}

// advance adds dt to the clock and reports whether this call reached the end.
func (c *completion) advance(dt float32) bool {
	c.currentTime += dt
	if c.currentTime < 0 {
		c.currentTime = 0
	}
	if c.currentTime >= c.duration {
		c.currentTime = c.duration
		if !c.complete {
			c.complete = true
			return true
		}
	}
	return false
}

// progress returns the normalized run time.
func (c *completion) progress() float32 {
	if c.duration <= 0 {
		return 1
	}
	return c.currentTime / c.duration
}

func (c *completion) fire(x Timed, n Node) {
	if c.callback != nil {
		c.callback(x, n)
	}
}

func (c *completion) rewind() {
	c.currentTime = 0
	c.complete = false
}

func (c *completion) mirror() {
	c.currentTime = c.duration - c.currentTime
	c.complete = false
}

func (c *completion) serialize(s serial.Serializer, r *Registry, f *fields) error {
	f.check("Duration", s.Float32("Duration", &c.duration))
	f.check("CurrentTime", s.Float32("CurrentTime", &c.currentTime))
	name := c.callbackName
	hasName := s.String("OnComplete", &name)
	if s.Mode() == serial.ModeWrite {
		return nil
	}
	c.complete = c.currentTime >= c.duration
	if !hasName {
		name = ""
	}
	return c.SetOnComplete(name, r)
}
