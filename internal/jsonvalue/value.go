// Package jsonvalue provides an order-preserving JSON value tree.
// Objects keep their members in document order and numbers keep their
// literal text, so a value decoded and re-encoded reads the same as the input.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mohae/deepcopy"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	// ErrInvalidJSON is returned when input is not a single valid JSON document
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrNotFound is returned when a pointer does not resolve to a value
	ErrNotFound = errors.New("value not found")
)

// Member is a single key/value pair of an object
type Member struct {
	Key   string
	Value Value
}

// Value is a JSON value. The zero Value is null.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind    Kind
	Bool    bool
	Num     json.Number
	Str     string
	Items   []Value
	Members []Member
}

// NullValue returns the JSON null
func NullValue() Value {
	return Value{Kind: Null}
}

// BoolValue returns a JSON boolean
func BoolValue(b bool) Value {
	return Value{Kind: Bool, Bool: b}
}

// NumberValue returns a JSON number holding the literal text lit.
// The literal is not checked; use Parse for untrusted input.
func NumberValue(lit string) Value {
	return Value{Kind: Number, Num: json.Number(lit)}
}

// StringValue returns a JSON string
func StringValue(s string) Value {
	return Value{Kind: String, Str: s}
}

// ArrayValue returns a JSON array of the given items
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: Array, Items: items}
}

// ObjectValue returns a JSON object with members in the given order.
// Later members replace earlier ones with the same key, keeping the
// position of the first occurrence.
func ObjectValue(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{Kind: Object, Members: out}
}

// Get returns the member value for key when v is an object
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != Object {
		return Value{}, false
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of items or members, and 0 for scalars
func (v Value) Len() int {
	switch v.Kind {
	case Array:
		return len(v.Items)
	case Object:
		return len(v.Members)
	default:
		return 0
	}
}

// Equal reports whether a and b are structurally identical.
// Object member order is significant and numbers compare by literal text,
// so 3.0 and 3 are different values.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case Bool:
		return a.Bool == b.Bool
	case Number:
		return a.Num == b.Num
	case String:
		return a.Str == b.Str
	case Array:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if a.Members[i].Key != b.Members[i].Key {
				return false
			}
			if !Equal(a.Members[i].Value, b.Members[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of v sharing no slices with it
func (v Value) Clone() Value {
	return deepcopy.Copy(v).(Value)
}

// Interface converts v into a plain Go tree of map[string]any, []any,
// json.Number, string, bool and nil. Member order is lost.
func (v Value) Interface() any {
	switch v.Kind {
	case Bool:
		return v.Bool
	case Number:
		return v.Num
	case String:
		return v.Str
	case Array:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.Members))
		for _, m := range v.Members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes v, keeping member order and number literals
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes data into v
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String returns the compact JSON text of v
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid %s: %v>", v.Kind, err)
	}
	return string(b)
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		if v.Num == "" {
			return fmt.Errorf("empty number literal")
		}
		buf.WriteString(string(v.Num))
	case String:
		return encodeString(buf, v.Str)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return fmt.Errorf("member %q: %w", m.Key, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown kind %d", int(v.Kind))
	}
	return nil
}

// encodeString writes s as a JSON string without HTML escaping
func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}
