package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/geom"
	"github.com/Carmen-Shannon/oxy-graph/engine/pool"
	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
	"github.com/go-gl/mathgl/mgl32"
)

func (s *scene) Serialize(ser serial.Serializer) error {
	if ser.Mode() == serial.ModeRead {
		return s.Load(ser)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.get(s.root)
	if root == nil {
		return fmt.Errorf("scene: serialize: scene has no root")
	}
	ser.BeginObject("")
	ser.BeginObject("Root")
	if err := s.writeNode(ser, root); err != nil {
		return fmt.Errorf("scene: serialize: %w", err)
	}
	ser.EndObject()
	draw, cull := s.writtenID(s.drawNode), s.writtenID(s.cullNode)
	ser.Uint64("DrawCameraId", &draw)
	ser.Uint64("CullCameraId", &cull)
	ser.EndObject()
	return nil
}

// writtenID returns the id of the node at h, or InvalidID when the node is
// missing or it or an ancestor below the root is hidden and so never written.
func (s *scene) writtenID(h pool.Handle) uint64 {
	n := s.get(h)
	if n == nil {
		return InvalidID
	}
	for c := n; c != nil && c.handle != s.root; c = s.get(c.parent) {
		if hidden(c.name) {
			return InvalidID
		}
	}
	return n.id
}

// writeNode writes the fields of n into the current object. Caller must hold the lock.
func (s *scene) writeNode(ser serial.Serializer, n *node) error {
	id, name, state, userData, local := n.id, n.name, uint8(n.state), n.userData, n.local
	typeName := n.typ.String()
	ser.Uint64("Id", &id)
	ser.String("Name", &name)
	ser.Uint8("State", &state)
	ser.Uint64("UserData", &userData)
	ser.Mat4("LocalMatrix", &local)
	ser.String("Type", &typeName)
	if n.cam != nil {
		if err := n.cam.Serialize(ser); err != nil {
			return err
		}
	}
	if n.hasBounds {
		b := n.bounds
		ser.BeginObject("Bounds")
		ser.Vec3("Origin", &b.Origin)
		ser.Float32("Radius", &b.Radius)
		ser.EndObject()
	}

	var children []*node
	for _, h := range n.children {
		if c := s.get(h); c != nil && !hidden(c.name) {
			children = append(children, c)
		}
	}
	if count := len(children); count > 0 {
		ser.BeginArray("Children", &count)
		for _, c := range children {
			ser.BeginObject("")
			if err := s.writeNode(ser, c); err != nil {
				return err
			}
			ser.EndObject()
		}
		ser.EndArray()
	}

	if count := len(n.xforms); count > 0 {
		ser.BeginArray("XForms", &count)
		for _, x := range n.xforms {
			ser.BeginObject("")
			if err := xform.Write(ser, x, s.registry); err != nil {
				return fmt.Errorf("node %d: %w", n.id, err)
			}
			ser.EndObject()
		}
		ser.EndArray()
	}
	return nil
}

func (s *scene) Load(ser serial.Serializer) error {
	if ser.Mode() != serial.ModeRead {
		return s.Serialize(ser)
	}
	s.mu.RLock()
	tmp := newScene(s.logger, s.registry)
	s.mu.RUnlock()

	if !ser.BeginObject("") {
		return fmt.Errorf("scene: load: %w: document root", serial.ErrMissingField)
	}
	if !ser.BeginObject("Root") {
		return fmt.Errorf("scene: load: %w: Root", serial.ErrMissingField)
	}
	root, err := tmp.readNode(ser, nil)
	if err != nil {
		return fmt.Errorf("scene: load: %w", err)
	}
	ser.EndObject()
	tmp.root = root.handle

	var draw, cull uint64
	if ser.Uint64("DrawCameraId", &draw) {
		tmp.drawNode = tmp.cameraNodeByID(draw)
	}
	if ser.Uint64("CullCameraId", &cull) {
		tmp.cullNode = tmp.cameraNodeByID(cull)
	}
	ser.EndObject()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes.Each(func(_ pool.Handle, n **node) bool {
		(*n).scene = nil
		return true
	})
	tmp.nodes.Each(func(_ pool.Handle, n **node) bool {
		(*n).scene = s
		return true
	})
	s.nodes, s.cameras = tmp.nodes, tmp.cameras
	s.bins, s.byID, s.camList = tmp.bins, tmp.byID, tmp.camList
	s.root, s.drawNode, s.cullNode = tmp.root, tmp.drawNode, tmp.cullNode
	s.nextID = max(s.nextID, tmp.nextID)
	return nil
}

func (s *scene) cameraNodeByID(id uint64) pool.Handle {
	if id == InvalidID {
		return pool.Handle{}
	}
	n := s.byIDNode(id)
	if n == nil || n.cam == nil {
		s.logger.Warn("scene: camera reference does not name a camera node", "node", id)
		return pool.Handle{}
	}
	return n.handle
}

// readNode reads one node object and its subtree into s. An unknown node
// type or a missing node field fails the whole read; a bad XForm is logged
// and skipped.
func (s *scene) readNode(ser serial.Serializer, parent *node) (*node, error) {
	var (
		id, userData   uint64
		name, typeName string
		state          uint8
		local          mgl32.Mat4
		missing        []string
	)
	need := func(field string, ok bool) {
		if !ok {
			missing = append(missing, field)
		}
	}
	need("Id", ser.Uint64("Id", &id))
	need("Name", ser.String("Name", &name))
	need("State", ser.Uint8("State", &state))
	need("UserData", ser.Uint64("UserData", &userData))
	need("LocalMatrix", ser.Mat4("LocalMatrix", &local))
	need("Type", ser.String("Type", &typeName))
	if len(missing) > 0 {
		return nil, fmt.Errorf("node %q: %w: %v", name, serial.ErrMissingField, missing)
	}
	t, err := ParseType(typeName)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", id, err)
	}
	if _, dup := s.byID[id]; dup || id == InvalidID {
		return nil, fmt.Errorf("node %d: duplicate or reserved id", id)
	}

	n := s.newNode(t, parent, id, name)
	n.state = State(state)
	n.userData = userData
	n.local, n.world = local, local

	if t == TypeCamera {
		cam := camera.NewCamera()
		if err := cam.Serialize(ser); err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		s.bindCamera(n, cam)
	}

	if ser.BeginObject("Bounds") {
		var b geom.Sphere
		ok := ser.Vec3("Origin", &b.Origin)
		ok = ser.Float32("Radius", &b.Radius) && ok
		ser.EndObject()
		if ok {
			n.SetBounds(b)
		}
	}

	var count int
	if ser.BeginArray("Children", &count) {
		for i := range count {
			if !ser.BeginObject("") {
				return nil, fmt.Errorf("node %d: %w: Children[%d]", id, serial.ErrTypeMismatch, i)
			}
			if _, err := s.readNode(ser, n); err != nil {
				return nil, err
			}
			ser.EndObject()
		}
		ser.EndArray()
	}

	if ser.BeginArray("XForms", &count) {
		for i := range count {
			if !ser.BeginObject("") {
				s.logger.Warn("scene: skipping XForm that is not an object", "node", id, "index", i)
				continue
			}
			x, err := xform.Read(ser, s.registry)
			ser.EndObject()
			if err != nil {
				s.logger.Warn("scene: skipping XForm", "node", id, "index", i, "err", err)
				continue
			}
			n.AddXForm(x)
		}
		ser.EndArray()
	}
	return n, nil
}

func (s *scene) SaveFile(path string) error {
	w := serial.NewWriter()
	if err := s.Serialize(w); err != nil {
		return err
	}
	return serial.WriteFile(path, w.Document())
}

func (s *scene) LoadFile(path string) error {
	doc, err := serial.ReadFile(path)
	if err != nil {
		return err
	}
	return s.Load(serial.NewReader(doc))
}
