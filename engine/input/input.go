// Package input holds the per-frame snapshot of keyboard, mouse and gamepad
// state that behaviours read during a scene update.
//
// A State is written by a poller (the window, or a test) and read by XForms.
// BeginFrame must be called once per frame before polling so that edge
// queries such as WasPressed compare against the previous frame.
package input

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultDeadZone is the stick magnitude below which axes read as zero.
const DefaultDeadZone float32 = 0.15

type buttons struct {
	keys    [KeyLast + 1]bool
	mouse   [mouseButtonCount]bool
	gamepad [gamepadButtonCount]bool
}

// State is a snapshot of input devices for the current and previous frame.
type State struct {
	mu *sync.RWMutex

	cur  buttons
	prev buttons

	cursor     mgl32.Vec2
	prevCursor mgl32.Vec2
	hasCursor  bool
	scroll     mgl32.Vec2

	axes      [gamepadAxisCount]float32
	connected bool
	deadZone  float32
}

// NewState creates an empty State.
//
// Returns:
//   - *State: the new input state
func NewState() *State {
	return &State{
		mu:       &sync.RWMutex{},
		deadZone: DefaultDeadZone,
	}
}

// BeginFrame rolls the current snapshot into the previous one and clears
// per-frame accumulators such as scroll.
func (s *State) BeginFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prev = s.cur
	s.prevCursor = s.cursor
	s.scroll = mgl32.Vec2{}
}

// SetDeadZone changes the radial dead zone applied to stick axes.
func (s *State) SetDeadZone(dz float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadZone = dz
}

// SetKey records whether k is held.
func (s *State) SetKey(k Key, down bool) {
	if k < 0 || k > KeyLast {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.keys[k] = down
}

// SetMouseButton records whether b is held.
func (s *State) SetMouseButton(b MouseButton, down bool) {
	if b < 0 || b >= mouseButtonCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.mouse[b] = down
}

// MoveMouse records the absolute cursor position. The first reported
// position produces no delta.
func (s *State) MoveMouse(x, y float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = mgl32.Vec2{x, y}
	if !s.hasCursor {
		s.prevCursor = s.cursor
		s.hasCursor = true
	}
}

// AddScroll accumulates scroll offsets for the current frame.
func (s *State) AddScroll(dx, dy float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll = s.scroll.Add(mgl32.Vec2{dx, dy})
}

// SetGamepadConnected records whether a gamepad is present.
func (s *State) SetGamepadConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	if !connected {
		s.cur.gamepad = [gamepadButtonCount]bool{}
		s.axes = [gamepadAxisCount]float32{}
	}
}

// SetGamepadButton records whether b is held.
func (s *State) SetGamepadButton(b GamepadButton, down bool) {
	if b < 0 || b >= gamepadButtonCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur.gamepad[b] = down
}

// SetAxis records the raw value of a gamepad axis, clamped to [-1, 1].
func (s *State) SetAxis(a GamepadAxis, v float32) {
	if a < 0 || a >= gamepadAxisCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.axes[a] = mgl32.Clamp(v, -1, 1)
}

// IsDown reports whether k is held this frame.
func (s *State) IsDown(k Key) bool {
	if k < 0 || k > KeyLast {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.keys[k]
}

// WasPressed reports whether k went down since the previous frame.
func (s *State) WasPressed(k Key) bool {
	if k < 0 || k > KeyLast {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.keys[k] && !s.prev.keys[k]
}

// WasReleased reports whether k went up since the previous frame.
func (s *State) WasReleased(k Key) bool {
	if k < 0 || k > KeyLast {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.cur.keys[k] && s.prev.keys[k]
}

// MouseDown reports whether b is held this frame.
func (s *State) MouseDown(b MouseButton) bool {
	if b < 0 || b >= mouseButtonCount {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.mouse[b]
}

// MousePressed reports whether b went down since the previous frame.
func (s *State) MousePressed(b MouseButton) bool {
	if b < 0 || b >= mouseButtonCount {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.mouse[b] && !s.prev.mouse[b]
}

// Cursor returns the cursor position in window pixels.
func (s *State) Cursor() mgl32.Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// MouseDelta returns the cursor movement since the previous frame.
func (s *State) MouseDelta() mgl32.Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Sub(s.prevCursor)
}

// Scroll returns the scroll offset accumulated this frame.
func (s *State) Scroll() mgl32.Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scroll
}

// GamepadConnected reports whether a gamepad is present.
func (s *State) GamepadConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// GamepadDown reports whether b is held this frame.
func (s *State) GamepadDown(b GamepadButton) bool {
	if b < 0 || b >= gamepadButtonCount {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.gamepad[b]
}

// GamepadPressed reports whether b went down since the previous frame.
func (s *State) GamepadPressed(b GamepadButton) bool {
	if b < 0 || b >= gamepadButtonCount {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.gamepad[b] && !s.prev.gamepad[b]
}

// Axis returns a gamepad axis in [-1, 1]. Stick axes inside the dead zone
// read as zero and the remaining range is rescaled to start at zero.
func (s *State) Axis(a GamepadAxis) float32 {
	if a < 0 || a >= gamepadAxisCount {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.axes[a]
	if a == GamepadLeftTrigger || a == GamepadRightTrigger {
		return v
	}
	mag := math32.Abs(v)
	if mag <= s.deadZone {
		return 0
	}
	scaled := (mag - s.deadZone) / (1 - s.deadZone)
	if v < 0 {
		return -scaled
	}
	return scaled
}
