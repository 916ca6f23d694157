package scene

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/pool"
)

// cullBatch is the number of bounds tested per worker task.
const cullBatch = 64

func (s *scene) Cull(cam camera.Camera) []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cam == nil {
		cam = s.camAt(s.cullNode)
		if cam == nil {
			return nil
		}
	}
	frustum := cam.WorldFrustum()
	if frustum.Degenerate() {
		return nil
	}
	// Infinite frustums keep finite far vertices, so their box is not a bound.
	bounded := !cam.Flags().Has(camera.FlagInfinite)
	box := frustum.Bounds()

	var candidates []*node
	var spheres []geom.Sphere
	for _, t := range []Type{TypeObject, TypeLight} {
		for _, h := range s.bins[t] {
			n := s.get(h)
			if n == nil || n.state&StateActive == 0 {
				continue
			}
			if b, ok := n.WorldBounds(); ok {
				if bounded && !geom.IntersectsSphereBox(b, box) {
					continue
				}
				candidates = append(candidates, n)
				spheres = append(spheres, b)
			}
		}
	}

	visible := make([]bool, len(candidates))
	test := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			visible[i] = frustum.InsideSphere(spheres[i])
		}
	}
	if s.cullPool == nil || len(candidates) <= cullBatch {
		test(0, len(candidates))
	} else {
		var wg sync.WaitGroup
		for lo, id := 0, 0; lo < len(candidates); lo, id = lo+cullBatch, id+1 {
			hi := min(lo+cullBatch, len(candidates))
			wg.Add(1)
			s.cullPool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					test(lo, hi)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	var out []Node
	for i, n := range candidates {
		if visible[i] {
			out = append(out, n)
		}
	}
	return out
}

func (s *scene) Pick(ray geom.Ray) (Node, float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *node
	var bestT float32
	s.nodes.Each(func(_ pool.Handle, p **node) bool {
		n := *p
		if n.state&StateActive == 0 {
			return true
		}
		b, ok := n.WorldBounds()
		if !ok {
			return true
		}
		if t, _, hit := geom.IntersectRaySphere(ray, b); hit && (best == nil || t < bestT) {
			best, bestT = n, t
		}
		return true
	})
	if best == nil {
		return nil, 0, false
	}
	return best, bestT, true
}
