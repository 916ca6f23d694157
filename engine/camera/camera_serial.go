package camera

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/engine/serial"
)

func (c *cameraImpl) Serialize(s serial.Serializer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	up, down, right, left := c.up, c.down, c.right, c.left
	near, far := c.near, c.far
	world := c.world
	ortho := c.flags.Has(FlagOrthographic)
	asym := c.flags.Has(FlagAsymmetrical)
	infinite := c.flags.Has(FlagInfinite)
	reversed := c.flags.Has(FlagReversed)

	fields := []struct {
		name string
		ok   bool
	}{
		{"Up", s.Float32("Up", &up)},
		{"Down", s.Float32("Down", &down)},
		{"Right", s.Float32("Right", &right)},
		{"Left", s.Float32("Left", &left)},
		{"Near", s.Float32("Near", &near)},
		{"Far", s.Float32("Far", &far)},
		{"WorldMatrix", s.Mat4("WorldMatrix", &world)},
		{"Orthographic", s.Bool("Orthographic", &ortho)},
		{"Asymmetrical", s.Bool("Asymmetrical", &asym)},
		{"Infinite", s.Bool("Infinite", &infinite)},
		{"Reversed", s.Bool("Reversed", &reversed)},
	}
	if s.Mode() == serial.ModeWrite {
		return nil
	}
	for _, f := range fields {
		if !f.ok {
			return fmt.Errorf("camera: %w: %s", serial.ErrMissingField, f.name)
		}
	}

	var flags Flags
	if ortho {
		flags |= FlagOrthographic
	}
	if infinite {
		flags |= FlagInfinite
	}
	if reversed {
		flags |= FlagReversed
	}
	if flags.Has(FlagOrthographic | FlagInfinite) {
		return fmt.Errorf("camera: %w", ErrUnsupported)
	}
	c.world = world
	c.setRaw(up, down, right, left, near, far, flags)
	return nil
}
