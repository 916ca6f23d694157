package serial

import (
	"github.com/go-gl/mathgl/mgl32"
)

type frame struct {
	value *Value
	next  int
}

// Reader reads values back out of a document.
type Reader struct {
	root  *Value
	stack []frame
}

var _ Serializer = &Reader{}

// NewReader creates a Reader over doc.
func NewReader(doc *Value) *Reader {
	return &Reader{root: doc}
}

func (r *Reader) Mode() Mode {
	return ModeRead
}

// child resolves the value addressed by name in the current container.
func (r *Reader) child(name string) *Value {
	if len(r.stack) == 0 {
		return nil
	}
	top := &r.stack[len(r.stack)-1]
	switch top.value.Kind {
	case KindArray:
		if top.next >= len(top.value.Items) {
			return nil
		}
		v := top.value.Items[top.next]
		top.next++
		return v
	case KindObject:
		return top.value.Get(name)
	}
	return nil
}

func (r *Reader) BeginObject(name string) bool {
	var v *Value
	if len(r.stack) == 0 {
		v = r.root
	} else {
		v = r.child(name)
	}
	if v == nil || v.Kind != KindObject {
		return false
	}
	r.stack = append(r.stack, frame{value: v})
	return true
}

func (r *Reader) EndObject() {
	r.pop(KindObject)
}

func (r *Reader) BeginArray(name string, length *int) bool {
	v := r.child(name)
	if v == nil || v.Kind != KindArray {
		return false
	}
	if length != nil {
		*length = len(v.Items)
	}
	r.stack = append(r.stack, frame{value: v})
	return true
}

func (r *Reader) EndArray() {
	r.pop(KindArray)
}

func (r *Reader) pop(kind Kind) {
	n := len(r.stack)
	if n == 0 || r.stack[n-1].value.Kind != kind {
		panic(ErrUnbalanced.Error())
	}
	r.stack = r.stack[:n-1]
}

func (r *Reader) Bool(name string, v *bool) bool {
	c := r.child(name)
	if c == nil || c.Kind != KindBool {
		return false
	}
	*v = c.Bool
	return true
}

func (r *Reader) Uint8(name string, v *uint8) bool {
	n, ok := r.child(name).Uint64()
	if !ok || n > 0xff {
		return false
	}
	*v = uint8(n)
	return true
}

func (r *Reader) Uint64(name string, v *uint64) bool {
	n, ok := r.child(name).Uint64()
	if !ok {
		return false
	}
	*v = n
	return true
}

func (r *Reader) Float32(name string, v *float32) bool {
	f, ok := r.child(name).Float32()
	if !ok {
		return false
	}
	*v = f
	return true
}

func (r *Reader) String(name string, v *string) bool {
	c := r.child(name)
	if c == nil || c.Kind != KindString {
		return false
	}
	*v = c.Str
	return true
}

// floats reads an array of exactly n numbers; n < 0 accepts any length.
func (r *Reader) floats(name string, n int) ([]float32, bool) {
	c := r.child(name)
	if c == nil || c.Kind != KindArray || (n >= 0 && len(c.Items) != n) {
		return nil, false
	}
	out := make([]float32, len(c.Items))
	for i, item := range c.Items {
		f, ok := item.Float32()
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func (r *Reader) Vec3(name string, v *mgl32.Vec3) bool {
	fs, ok := r.floats(name, 3)
	if !ok {
		return false
	}
	copy(v[:], fs)
	return true
}

func (r *Reader) Quat(name string, v *mgl32.Quat) bool {
	fs, ok := r.floats(name, 4)
	if !ok {
		return false
	}
	*v = mgl32.Quat{W: fs[3], V: mgl32.Vec3{fs[0], fs[1], fs[2]}}
	return true
}

func (r *Reader) Mat4(name string, v *mgl32.Mat4) bool {
	fs, ok := r.floats(name, 16)
	if !ok {
		return false
	}
	copy(v[:], fs)
	return true
}

func (r *Reader) Float32s(name string, v *[]float32) bool {
	fs, ok := r.floats(name, -1)
	if !ok {
		return false
	}
	*v = fs
	return true
}
