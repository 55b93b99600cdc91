package jsonvalue

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Parse decodes a single JSON document.
// Member order and number literals are kept exactly as written.
func Parse(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data))
}

// MustParse is like Parse but panics on invalid input. Intended for tests
// and literals known at compile time.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("jsonvalue: MustParse(%q): %v", s, err))
	}
	return v
}

func fromResult(r gjson.Result) (Value, error) {
	switch r.Type {
	case gjson.Null:
		return NullValue(), nil
	case gjson.True:
		return BoolValue(true), nil
	case gjson.False:
		return BoolValue(false), nil
	case gjson.Number:
		return Value{Kind: Number, Num: json.Number(r.Raw)}, nil
	case gjson.String:
		return StringValue(r.Str), nil
	case gjson.JSON:
		if r.IsArray() {
			return arrayFromResult(r)
		}
		if r.IsObject() {
			return objectFromResult(r)
		}
	}
	return Value{}, fmt.Errorf("%w: unexpected token %q", ErrInvalidJSON, r.Raw)
}

func arrayFromResult(r gjson.Result) (Value, error) {
	items := []Value{}
	var err error
	r.ForEach(func(_, item gjson.Result) bool {
		var v Value
		v, err = fromResult(item)
		if err != nil {
			return false
		}
		items = append(items, v)
		return true
	})
	if err != nil {
		return Value{}, err
	}
	return ArrayValue(items...), nil
}

func objectFromResult(r gjson.Result) (Value, error) {
	var members []Member
	var err error
	r.ForEach(func(key, item gjson.Result) bool {
		var v Value
		v, err = fromResult(item)
		if err != nil {
			err = fmt.Errorf("member %q: %w", key.Str, err)
			return false
		}
		members = append(members, Member{Key: key.Str, Value: v})
		return true
	})
	if err != nil {
		return Value{}, err
	}
	return ObjectValue(members...), nil
}
