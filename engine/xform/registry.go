package xform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Factory creates a zero-configured XForm of one class.
type Factory func() XForm

// OnComplete is invoked once when a Timed XForm reaches its duration.
type OnComplete func(x Timed, n Node)

// Registry maps class names to factories and callback names to callbacks so
// saved scenes can reference behaviour by name.
type Registry struct {
	mu        *sync.RWMutex
	classes   map[string]Factory
	callbacks map[string]OnComplete
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// NewRegistry creates a registry holding the builtin classes and callbacks.
//
// Returns:
//   - *Registry: the populated registry
func NewRegistry() *Registry {
	r := &Registry{
		mu:        &sync.RWMutex{},
		classes:   make(map[string]Factory),
		callbacks: make(map[string]OnComplete),
	}
	RegisterBuiltins(r)
	return r
}

// DefaultRegistry returns the process-wide registry, built on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// RegisterBuiltins adds every XForm class and callback defined in this package to r.
func RegisterBuiltins(r *Registry) {
	r.RegisterClass(ClassPositionOrientationScale, func() XForm { return NewPositionOrientationScale() })
	r.RegisterClass(ClassFreeCamera, func() XForm { return NewFreeCamera() })
	r.RegisterClass(ClassLookAt, func() XForm { return NewLookAt(0, mgl32.Vec3{}) })
	r.RegisterClass(ClassOrbit, func() XForm { return NewOrbit() })
	r.RegisterClass(ClassSpin, func() XForm { return NewSpin(mgl32.Vec3{0, 1, 0}, 0) })
	r.RegisterClass(ClassPositionTarget, func() XForm { return NewPositionTarget(mgl32.Vec3{}, mgl32.Vec3{}, 1) })
	r.RegisterClass(ClassSplinePath, func() XForm { return NewSplinePath(nil, false, 1) })
	r.RegisterClass(ClassVRGamepad, func() XForm { return NewVRGamepad() })

	r.RegisterCallback(CallbackReset, func(x Timed, _ Node) { x.Reset() })
	r.RegisterCallback(CallbackRelativeReset, func(x Timed, n Node) { x.RelativeReset(n) })
	r.RegisterCallback(CallbackReverse, func(x Timed, _ Node) { x.Reverse() })
}

// Builtin callback names.
const (
	CallbackReset         = "Reset"
	CallbackRelativeReset = "RelativeReset"
	CallbackReverse       = "Reverse"
)

// RegisterClass adds or replaces a class factory.
func (r *Registry) RegisterClass(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[name] = f
}

// RegisterCallback adds or replaces a named callback.
func (r *Registry) RegisterCallback(name string, fn OnComplete) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[name] = fn
}

// New constructs an XForm of the named class.
//
// Parameters:
//   - class: registered class name
//
// Returns:
//   - XForm: the new XForm
//   - error: ErrUnknownClass if the class is not registered
func (r *Registry) New(class string) (XForm, error) {
	r.mu.RLock()
	f, ok := r.classes[class]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return f(), nil
}

// Callback resolves a callback name.
func (r *Registry) Callback(name string) (OnComplete, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.callbacks[name]
	return fn, ok
}

// Classes returns the registered class names in sorted order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
