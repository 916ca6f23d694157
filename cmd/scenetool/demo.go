package main

import (
	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/config"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/scene"
	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
	"github.com/go-gl/mathgl/mgl32"
)

// buildDemo fills s with a small animated scene: a spinning hub with a
// satellite, an object following a looping path, a light and a camera that
// tracks the path follower.
func buildDemo(s scene.Scene, cfg config.Config) {
	aspect := float32(cfg.Window.Width) / float32(max(cfg.Window.Height, 1))

	hub := s.CreateNode(scene.TypeObject, nil)
	hub.SetName("hub")
	hub.SetBounds(geom.Sphere{Radius: 1})
	hub.AddXForm(xform.NewSpin(mgl32.Vec3{0, 1, 0}, 0.5))

	satellite := s.CreateNode(scene.TypeObject, hub)
	satellite.SetName("satellite")
	satellite.SetLocal(mgl32.Translate3D(4, 0, 0))
	satellite.SetBounds(geom.Sphere{Radius: 0.5})

	follower := s.CreateNode(scene.TypeObject, nil)
	follower.SetName("follower")
	follower.SetBounds(geom.Sphere{Radius: 0.75})
	follower.AddXForm(xform.NewSplinePath([]mgl32.Vec3{
		{-6, 0, -6}, {6, 0, -6}, {6, 0, 6}, {-6, 0, 6},
	}, true, 8))

	light := s.CreateNode(scene.TypeLight, nil)
	light.SetName("sun")
	light.SetLocal(mgl32.Translate3D(0, 10, 0))
	light.SetBounds(geom.Sphere{Radius: 20})

	cam := camera.NewCamera(cfg.Camera.Options(aspect)...)
	camNode := s.CreateCamera(cam, nil)
	camNode.SetName("eye")
	camNode.SetLocal(mgl32.Translate3D(0, 8, 20))
	camNode.AddXForm(xform.NewLookAt(follower.ID(), mgl32.Vec3{}))
}
