package serial

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// EncodeJSON writes doc as indented JSON, keeping member order. JSON has no
// NaN or infinity, so such numbers fail with ErrNonFinite.
//
// Parameters:
//   - w: destination
//   - doc: document root
//
// Returns:
//   - error: write or encoding error
func EncodeJSON(w io.Writer, doc *Value) error {
	bw := bufio.NewWriter(w)
	if err := writeJSON(bw, doc, 0); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if err := bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return bw.Flush()
}

func writeJSON(w *bufio.Writer, v *Value, depth int) error {
	if v == nil {
		_, err := w.WriteString("null")
		return err
	}
	indent := func(d int) {
		w.WriteByte('\n')
		w.WriteString(strings.Repeat("  ", d))
	}
	switch v.Kind {
	case KindNull:
		w.WriteString("null")
	case KindBool:
		if v.Bool {
			w.WriteString("true")
		} else {
			w.WriteString("false")
		}
	case KindNumber:
		if f, err := strconv.ParseFloat(v.Number, 64); err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return fmt.Errorf("%w: %s", ErrNonFinite, v.Number)
		}
		w.WriteString(v.Number)
	case KindString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		w.Write(b)
	case KindArray:
		if len(v.Items) == 0 {
			w.WriteString("[]")
			break
		}
		flat := true
		for _, item := range v.Items {
			if !item.scalar() {
				flat = false
				break
			}
		}
		w.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				w.WriteByte(',')
				if flat {
					w.WriteByte(' ')
				}
			}
			if !flat {
				indent(depth + 1)
			}
			if err := writeJSON(w, item, depth+1); err != nil {
				return err
			}
		}
		if !flat {
			indent(depth)
		}
		w.WriteByte(']')
	case KindObject:
		if len(v.Members) == 0 {
			w.WriteString("{}")
			break
		}
		w.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				w.WriteByte(',')
			}
			indent(depth + 1)
			key, err := json.Marshal(m.Name)
			if err != nil {
				return err
			}
			w.Write(key)
			w.WriteString(": ")
			if err := writeJSON(w, m.Value, depth+1); err != nil {
				return err
			}
		}
		indent(depth)
		w.WriteByte('}')
	}
	return nil
}

// DecodeJSON parses a JSON document into an ordered value tree.
//
// Parameters:
//   - r: source
//
// Returns:
//   - *Value: document root
//   - error: syntax error or empty input
func DecodeJSON(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := readJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return &Value{Kind: KindNull}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return newNumber(t.String()), nil
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	case json.Delim:
		switch t {
		case '[':
			arr := NewArray()
			for dec.More() {
				item, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				arr.Append(item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.New("object key is not a string")
				}
				item, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
