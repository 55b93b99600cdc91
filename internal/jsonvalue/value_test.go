package jsonvalue

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParse_RoundTripsCompactDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null", `null`},
		{"true", `true`},
		{"false", `false`},
		{"integer", `42`},
		{"negative float", `-0.5`},
		{"float with trailing zero", `3.0`},
		{"exponent", `1e+21`},
		{"string", `"hello"`},
		{"empty object", `{}`},
		{"empty array", `[]`},
		{"mixed array", `[1,"two",{"three":3.0}]`},
		{"object keeps order", `{"z":1,"a":2,"m":{"y":[],"b":null}}`},
		{"unicode", `{"greeting":"kia ora ✓"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}

			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}

			if string(out) != tt.input {
				t.Errorf("expected %s, got %s", tt.input, out)
			}
		})
	}
}

func TestParse_IgnoresInsignificantWhitespace(t *testing.T) {
	v, err := Parse([]byte("  { \"a\" : [ 1 , 2 ] ,\n \"b\" : 3.50 }  "))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if got := v.String(); got != `{"a":[1,2],"b":3.50}` {
		t.Errorf("unexpected encoding: %s", got)
	}
}

func TestParse_RejectsInvalidJSON(t *testing.T) {
	inputs := []string{``, `{`, `[1,]`, `{"a":}`, `nul`, `{"a":1} {"b":2}`, `'single'`}

	for _, input := range inputs {
		_, err := Parse([]byte(input))
		if !errors.Is(err, ErrInvalidJSON) {
			t.Errorf("Parse(%q): expected ErrInvalidJSON, got %v", input, err)
		}
	}
}

func TestParse_DuplicateKeysLastWins(t *testing.T) {
	v := MustParse(`{"a":1,"b":2,"a":3}`)

	if v.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", v.Len())
	}
	if v.Members[0].Key != "a" || v.Members[0].Value.Num != "3" {
		t.Errorf("expected first member a=3, got %s=%s", v.Members[0].Key, v.Members[0].Value)
	}
}

func TestParse_UnescapesStringsAndKeys(t *testing.T) {
	v := MustParse(`{"line\nbreak":"tab\there é"}`)

	got, ok := v.Get("line\nbreak")
	if !ok {
		t.Fatal("expected escaped key to be decoded")
	}
	if got.Str != "tab\there é" {
		t.Errorf("unexpected string value %q", got.Str)
	}
}

func TestUnmarshalJSON_IntoNestedStruct(t *testing.T) {
	var envelope struct {
		Payload Value `json:"payload"`
	}

	if err := json.Unmarshal([]byte(`{"payload":{"b":1.10,"a":[true]}}`), &envelope); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if got := envelope.Payload.String(); got != `{"b":1.10,"a":[true]}` {
		t.Errorf("unexpected payload: %s", got)
	}
}

func TestZeroValueIsNull(t *testing.T) {
	var v Value

	if v.Kind != Null {
		t.Errorf("expected zero value kind null, got %s", v.Kind)
	}
	if v.String() != "null" {
		t.Errorf("expected zero value to encode as null, got %s", v.String())
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same scalars", `"x"`, `"x"`, true},
		{"different kinds", `1`, `"1"`, false},
		{"float literal differs from integer", `3.0`, `3`, false},
		{"same nested", `{"a":[1,{"b":null}]}`, `{"a":[1,{"b":null}]}`, true},
		{"member order matters", `{"a":1,"b":2}`, `{"b":2,"a":1}`, false},
		{"array length differs", `[1,2]`, `[1,2,3]`, false},
		{"null equals null", `null`, `null`, true},
		{"bools differ", `true`, `false`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(MustParse(tt.a), MustParse(tt.b)); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	original := MustParse(`{"list":[1,2],"obj":{"k":"v"}}`)
	clone := original.Clone()

	if !Equal(original, clone) {
		t.Fatalf("clone differs: %s vs %s", original, clone)
	}

	clone.Members[0].Value.Items[0] = StringValue("changed")
	clone.Members[1].Value.Members[0].Key = "renamed"

	if original.String() != `{"list":[1,2],"obj":{"k":"v"}}` {
		t.Errorf("mutating clone changed original: %s", original)
	}
}

func TestInterface(t *testing.T) {
	v := MustParse(`{"n":1.5,"s":"x","b":false,"z":null,"l":[1]}`)

	want := map[string]any{
		"n": json.Number("1.5"),
		"s": "x",
		"b": false,
		"z": nil,
		"l": []any{json.Number("1")},
	}

	if got := v.Interface(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %#v, got %#v", want, got)
	}
}

func TestObjectValue_KeepsFirstPosition(t *testing.T) {
	v := ObjectValue(
		Member{Key: "a", Value: NumberValue("1")},
		Member{Key: "b", Value: NumberValue("2")},
		Member{Key: "a", Value: NumberValue("9")},
	)

	if got := v.String(); got != `{"a":9,"b":2}` {
		t.Errorf("unexpected object: %s", got)
	}
}

func TestMarshalJSON_RejectsEmptyNumber(t *testing.T) {
	_, err := json.Marshal(ArrayValue(Value{Kind: Number}))
	if err == nil {
		t.Fatal("expected error for empty number literal")
	}
}

func TestKindString(t *testing.T) {
	if Object.String() != "object" {
		t.Errorf("expected 'object', got %q", Object.String())
	}
	if Kind(99).String() != "Kind(99)" {
		t.Errorf("unexpected unknown kind string %q", Kind(99).String())
	}
}

func TestMarshalJSON_DoesNotEscapeHTML(t *testing.T) {
	input := `{"link":"<a href=\"/x?a=1&b=2\">x</a>"}`

	out, err := MustParse(input).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	if string(out) != input {
		t.Errorf("expected %s, got %s", input, out)
	}
}
