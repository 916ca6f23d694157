package scene

import (
	"github.com/Carmen-Shannon/oxy-graph/engine/frame"
)

func (s *scene) Update(ctx *frame.Context, mask State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := ctx.Nodes
	ctx.Nodes = resolver{s}
	defer func() { ctx.Nodes = prev }()

	if root := s.get(s.root); root != nil {
		s.update(ctx, root, nil, mask)
	}
}

// update runs the pass for n and its subtree. Caller must hold the lock.
func (s *scene) update(ctx *frame.Context, n, parent *node, mask State) {
	if n.state&mask == 0 {
		return
	}
	n.world = n.local
	for _, x := range n.xforms {
		x.Apply(ctx, n)
	}
	if parent != nil {
		n.world = parent.world.Mul4(n.world)
	}
	if n.cam != nil {
		n.cam.Update()
	}
	for _, h := range n.children {
		if c := s.get(h); c != nil {
			s.update(ctx, c, n, mask)
		}
	}
}

func (s *scene) Traverse(root Node, mask State, fn func(Node) bool) bool {
	for _, n := range s.preorder(root, mask) {
		if !fn(n) {
			return false
		}
	}
	return true
}

// preorder lists the nodes Traverse visits.
func (s *scene) preorder(root Node, mask State) []*node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var start *node
	if root == nil {
		start = s.get(s.root)
	} else {
		start = s.mustNode(root)
	}
	var visit []*node
	var walk func(n *node)
	walk = func(n *node) {
		if n.state&mask == 0 {
			return
		}
		visit = append(visit, n)
		for _, h := range n.children {
			if c := s.get(h); c != nil {
				walk(c)
			}
		}
	}
	if start != nil {
		walk(start)
	}
	return visit
}
