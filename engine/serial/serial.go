// Package serial provides a symmetric, name-addressed serializer used to save
// and load scenes.
//
// The same Serialize method drives both directions: in ModeWrite every value
// method records the value it is handed, in ModeRead it overwrites the value
// from the document and reports whether the field was present and well-typed.
// Documents are ordered trees (see Value) that the JSON and YAML codecs turn
// into text.
package serial

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// Mode is the direction a Serializer operates in.
type Mode int

const (
	ModeWrite Mode = iota
	ModeRead
)

func (m Mode) String() string {
	if m == ModeRead {
		return "read"
	}
	return "write"
}

var (
	// ErrMissingField is reported when a required field is absent from a document.
	ErrMissingField = errors.New("serial: missing field")
	// ErrTypeMismatch is reported when a field holds a value of the wrong kind.
	ErrTypeMismatch = errors.New("serial: type mismatch")
	// ErrUnknownFormat is returned for file extensions without a codec.
	ErrUnknownFormat = errors.New("serial: unknown format")
	// ErrUnbalanced is returned when Begin/End calls do not pair up.
	ErrUnbalanced = errors.New("serial: unbalanced begin/end")
	// ErrNonFinite is returned when a NaN or infinite number is encoded as JSON.
	ErrNonFinite = errors.New("serial: non-finite number")
)

// Serializer is the persistence surface handed to Serialize methods.
//
// Named fields address members of the current object. Inside an array names
// are ignored and elements are visited in order. Every method returns false
// in ModeRead when the addressed field is missing or has the wrong type; in
// ModeWrite they always return true.
type Serializer interface {
	// Mode reports whether the serializer is reading or writing.
	Mode() Mode

	// BeginObject enters the named object member (or the next array element).
	// The first BeginObject on an empty serializer addresses the document root.
	BeginObject(name string) bool

	// EndObject leaves the current object.
	EndObject()

	// BeginArray enters the named array member. In ModeRead length receives the
	// element count; in ModeWrite it is ignored and may be nil.
	BeginArray(name string, length *int) bool

	// EndArray leaves the current array.
	EndArray()

	Bool(name string, v *bool) bool
	Uint8(name string, v *uint8) bool
	Uint64(name string, v *uint64) bool
	Float32(name string, v *float32) bool
	String(name string, v *string) bool
	Vec3(name string, v *mgl32.Vec3) bool
	Quat(name string, v *mgl32.Quat) bool
	Mat4(name string, v *mgl32.Mat4) bool
	Float32s(name string, v *[]float32) bool
}
