package serial

import (
	"strconv"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one named entry of an object Value.
type Member struct {
	Name  string
	Value *Value
}

// Value is a node of an ordered document tree.
// Numbers are kept as their decimal text so uint64 ids survive unchanged.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  string
	Str     string
	Items   []*Value
	Members []Member
}

// NewObject returns an empty object value.
func NewObject() *Value {
	return &Value{Kind: KindObject}
}

// NewArray returns an empty array value.
func NewArray() *Value {
	return &Value{Kind: KindArray}
}

func newNumber(text string) *Value {
	return &Value{Kind: KindNumber, Number: text}
}

func uintValue(v uint64) *Value {
	return newNumber(strconv.FormatUint(v, 10))
}

func floatValue(v float32) *Value {
	return newNumber(strconv.FormatFloat(float64(v), 'g', -1, 32))
}

// Get returns the member called name, or nil when v is not an object or has no such member.
func (v *Value) Get(name string) *Value {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	for _, m := range v.Members {
		if m.Name == name {
			return m.Value
		}
	}
	return nil
}

// Set adds or replaces the member called name.
func (v *Value) Set(name string, child *Value) {
	for i, m := range v.Members {
		if m.Name == name {
			v.Members[i].Value = child
			return
		}
	}
	v.Members = append(v.Members, Member{Name: name, Value: child})
}

// Append adds child to the end of an array value.
func (v *Value) Append(child *Value) {
	v.Items = append(v.Items, child)
}

// Uint64 parses a number value as an unsigned integer.
func (v *Value) Uint64() (uint64, bool) {
	if v == nil || v.Kind != KindNumber {
		return 0, false
	}
	n, err := strconv.ParseUint(v.Number, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float32 parses a number value as a float.
func (v *Value) Float32() (float32, bool) {
	if v == nil || v.Kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.Number, 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

// scalar reports whether v is neither an array nor an object.
func (v *Value) scalar() bool {
	return v.Kind != KindArray && v.Kind != KindObject
}
