// Package engine drives a scene graph frame by frame: it polls input, advances
// the frame clock, updates the scene and hands the draw camera to a render
// callback. It runs against a window or headless.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
	"github.com/Carmen-Shannon/oxy-graph/engine/gpu"
	"github.com/Carmen-Shannon/oxy-graph/engine/input"
	"github.com/Carmen-Shannon/oxy-graph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-graph/engine/scene"
	"github.com/Carmen-Shannon/oxy-graph/engine/window"
)

// engine implements the Engine interface.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	runMu   *sync.Mutex

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	logger *slog.Logger
	window window.Window
	scene  scene.Scene
	input  *input.State
	ctx    *frame.Context

	profiler         *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	updateMask  scene.State
	cullWorkers int

	engineTickRate time.Duration
	tickCallback   func(ctx *frame.Context)
	renderCallback func(cam gpu.CameraUniform, deltaTime float32)
}

// Engine is the main entry point for the engine.
// It owns the scene, the input snapshot and the frame context, and steps
// them once per frame.
type Engine interface {
	// Window returns the underlying window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene the engine updates.
	Scene() scene.Scene

	// Input returns the input snapshot polled each frame.
	Input() *input.State

	// Context returns the frame context handed to scene updates.
	Context() *frame.Context

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the frame rate Run aims for.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetUpdateMask sets the state mask passed to each scene update.
	//
	// Parameters:
	//   - mask: nodes whose state shares no bit with mask are skipped with their subtrees
	SetUpdateMask(mask scene.State)

	// SetTickCallback registers the function called after each scene update.
	// Use this for game logic that reads updated world matrices.
	//
	// Parameters:
	//   - callback: function receiving the frame context
	SetTickCallback(callback func(ctx *frame.Context))

	// SetRenderCallback registers the function called at the end of each frame
	// with the draw camera's GPU uniform. Frames without a draw camera skip it.
	//
	// Parameters:
	//   - callback: function receiving the camera uniform and the delta time in seconds
	SetRenderCallback(callback func(cam gpu.CameraUniform, deltaTime float32))

	// Step runs one frame of dt seconds.
	//
	// Parameters:
	//   - dt: frame length in seconds
	Step(dt float32)

	// RunFrames runs n frames of dt seconds each without waiting between them.
	//
	// Parameters:
	//   - n: number of frames
	//   - dt: frame length in seconds
	RunFrames(n int, dt float32)

	// Run steps the engine at the tick rate until the window closes or Quit
	// is called. Must be called from the main thread when a window is attached.
	Run()

	// Quit stops Run. Safe to call multiple times and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// A scene is created when none is supplied.
//
// Parameters:
//   - options: functional options for engine configuration (window, scene, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		runMu:           &sync.Mutex{},
		logger:          slog.Default(),
		input:           input.NewState(),
		profileInterval: time.Second,
		updateMask:      scene.StateAny,
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.scene == nil {
		sceneOpts := []scene.SceneBuilderOption{scene.WithLogger(e.logger)}
		if e.cullWorkers > 0 {
			sceneOpts = append(sceneOpts, scene.WithCullWorkers(e.cullWorkers))
		}
		e.scene = scene.NewScene(sceneOpts...)
	}
	e.ctx = frame.NewContext(e.input)
	e.profiler = profiler.NewProfiler(
		profiler.WithLogger(e.logger),
		profiler.WithInterval(e.profileInterval),
	)

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.resize(width, height)
		})
		e.resize(e.window.Width(), e.window.Height())
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Input() *input.State {
	return e.input
}

func (e *engine) Context() *frame.Context {
	return e.ctx
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Step(dt float32) {
	e.input.BeginFrame()
	if e.window != nil {
		e.window.PollInput(e.input)
	}
	e.ctx.Advance(dt)

	if e.profilingEnabled {
		e.profiler.Begin()
	}
	e.scene.Update(e.ctx, e.updateMask)
	if e.profilingEnabled {
		e.profiler.End()
		e.profiler.Tick(e.scene.NodeCount())
	}

	if e.tickCallback != nil {
		e.tickCallback(e.ctx)
	}
	if e.renderCallback != nil {
		if cam := e.scene.DrawCamera(); cam != nil {
			e.renderCallback(gpu.CameraUniformFrom(cam), dt)
		}
	}
}

func (e *engine) RunFrames(n int, dt float32) {
	for range n {
		e.Step(dt)
	}
}

func (e *engine) Run() {
	e.runMu.Lock()
	if e.running {
		e.runMu.Unlock()
		return
	}
	e.running = true
	e.runMu.Unlock()
	defer func() {
		e.runMu.Lock()
		e.running = false
		e.runMu.Unlock()
	}()

	if e.window == nil {
		e.runHeadless()
		return
	}

	lastTick := time.Now()
	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			if err := e.window.Close(); err != nil {
				e.logger.Error("engine: close window", "err", err)
			}
			return
		case newRate := <-e.tickRateChannel:
			e.engineTickRate = newRate
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastTick).Seconds())
		lastTick = now
		e.Step(dt)

		// Frame rate limiting
		if remaining := e.engineTickRate - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	})
	e.window.ProcessMessages()
	e.window.SetUpdateCallback(nil)
}

// runHeadless steps the engine on a ticker until Quit is called.
func (e *engine) runHeadless() {
	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case now := <-ticker.C:
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// Quit signals Run to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// resize keeps the draw camera's aspect ratio in step with the surface.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if cam := e.scene.DrawCamera(); cam != nil {
		cam.SetAspect(float32(width) / float32(height))
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the frame rate Run aims for.
// If the engine is running, the change takes effect on the next frame.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickPeriod(fps)

	e.runMu.Lock()
	running := e.running
	e.runMu.Unlock()
	if !running {
		e.engineTickRate = newRate
		return
	}

	// Non-blocking send - if channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetUpdateMask(mask scene.State) {
	e.updateMask = mask
}

func (e *engine) SetTickCallback(callback func(ctx *frame.Context)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(cam gpu.CameraUniform, deltaTime float32)) {
	e.renderCallback = callback
}

// tickPeriod converts a frame rate to a frame period, treating fps <= 0 as 60.
func tickPeriod(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
