package serial

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Writer records values into a new document.
type Writer struct {
	root  *Value
	stack []*Value
}

var _ Serializer = &Writer{}

// NewWriter creates a Writer with an empty document.
func NewWriter() *Writer {
	return &Writer{}
}

// Document returns the recorded document root, or nil if nothing was written.
func (w *Writer) Document() *Value {
	return w.root
}

func (w *Writer) Mode() Mode {
	return ModeWrite
}

func (w *Writer) put(name string, v *Value) {
	if len(w.stack) == 0 {
		if w.root == nil {
			w.root = NewObject()
			w.stack = append(w.stack, w.root)
		} else {
			panic("serial: value written outside the document root")
		}
	}
	top := w.stack[len(w.stack)-1]
	if top.Kind == KindArray {
		top.Append(v)
		return
	}
	top.Set(name, v)
}

func (w *Writer) BeginObject(name string) bool {
	if len(w.stack) == 0 && w.root == nil {
		w.root = NewObject()
		w.stack = append(w.stack, w.root)
		return true
	}
	obj := NewObject()
	w.put(name, obj)
	w.stack = append(w.stack, obj)
	return true
}

func (w *Writer) EndObject() {
	w.pop(KindObject)
}

func (w *Writer) BeginArray(name string, _ *int) bool {
	arr := NewArray()
	w.put(name, arr)
	w.stack = append(w.stack, arr)
	return true
}

func (w *Writer) EndArray() {
	w.pop(KindArray)
}

func (w *Writer) pop(kind Kind) {
	n := len(w.stack)
	if n == 0 || w.stack[n-1].Kind != kind {
		panic(ErrUnbalanced.Error())
	}
	w.stack = w.stack[:n-1]
}

func (w *Writer) Bool(name string, v *bool) bool {
	w.put(name, &Value{Kind: KindBool, Bool: *v})
	return true
}

func (w *Writer) Uint8(name string, v *uint8) bool {
	w.put(name, uintValue(uint64(*v)))
	return true
}

func (w *Writer) Uint64(name string, v *uint64) bool {
	w.put(name, uintValue(*v))
	return true
}

func (w *Writer) Float32(name string, v *float32) bool {
	w.put(name, floatValue(*v))
	return true
}

func (w *Writer) String(name string, v *string) bool {
	w.put(name, &Value{Kind: KindString, Str: *v})
	return true
}

func (w *Writer) floats(name string, fs []float32) {
	arr := NewArray()
	for _, f := range fs {
		arr.Append(floatValue(f))
	}
	w.put(name, arr)
}

func (w *Writer) Vec3(name string, v *mgl32.Vec3) bool {
	w.floats(name, v[:])
	return true
}

// Quat writes q as [x, y, z, w].
func (w *Writer) Quat(name string, v *mgl32.Quat) bool {
	w.floats(name, []float32{v.V[0], v.V[1], v.V[2], v.W})
	return true
}

// Mat4 writes the 16 matrix elements in column-major order.
func (w *Writer) Mat4(name string, v *mgl32.Mat4) bool {
	w.floats(name, v[:])
	return true
}

func (w *Writer) Float32s(name string, v *[]float32) bool {
	w.floats(name, *v)
	return true
}
