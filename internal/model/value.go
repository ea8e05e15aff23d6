// Package model defines the data structures shared across the oracle server:
// feed schemas, the canonical oracle value union, and the signed envelope
// handed to the attestation layer.
package model

import (
	"encoding/json"
	"fmt"
)

// ReturnType is the schema-declared contract a script's output must coerce into.
type ReturnType string

const (
	ReturnString  ReturnType = "STRING"
	ReturnBoolean ReturnType = "BOOLEAN"
	ReturnNumber  ReturnType = "NUMBER"
	ReturnVector  ReturnType = "VECTOR"
)

// ParseReturnType validates a wire-level return type string.
func ParseReturnType(s string) (ReturnType, error) {
	switch ReturnType(s) {
	case ReturnString, ReturnBoolean, ReturnNumber, ReturnVector:
		return ReturnType(s), nil
	}
	return "", fmt.Errorf("unknown return type %q", s)
}

// Language identifies which script engine variant evaluates a feed's script.
type Language string

const (
	LanguageJS  Language = "js"
	LanguageLua Language = "lua"
)

// ParseLanguage validates a wire-level language string.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageJS, LanguageLua:
		return Language(s), nil
	}
	return "", fmt.Errorf("unknown script language %q", s)
}

// OracleValue is a tagged union over the four canonical oracle value shapes.
// Exactly one variant is populated. NUMBER is unsigned by construction and
// VECTOR holds raw bytes, so out-of-contract values cannot be represented.
//
// The JSON form is externally tagged to stay ABI-stable with on-chain
// consumers: {"STRING":"x"}, {"BOOLEAN":true}, {"NUMBER":42},
// {"VECTOR":[1,2,3]}. Note VECTOR serializes as an integer array, not the
// Go-default base64 string.
type OracleValue struct {
	kind    ReturnType
	str     string
	boolean bool
	number  uint64
	vector  []byte
}

// StringValue returns a STRING oracle value.
func StringValue(s string) OracleValue {
	return OracleValue{kind: ReturnString, str: s}
}

// BoolValue returns a BOOLEAN oracle value.
func BoolValue(b bool) OracleValue {
	return OracleValue{kind: ReturnBoolean, boolean: b}
}

// NumberValue returns a NUMBER oracle value.
func NumberValue(n uint64) OracleValue {
	return OracleValue{kind: ReturnNumber, number: n}
}

// VectorValue returns a VECTOR oracle value holding a copy of b.
func VectorValue(b []byte) OracleValue {
	v := make([]byte, len(b))
	copy(v, b)
	return OracleValue{kind: ReturnVector, vector: v}
}

// Kind reports which variant is populated. The zero OracleValue has kind "".
func (v OracleValue) Kind() ReturnType { return v.kind }

// AsString returns the STRING payload, if that variant is populated.
func (v OracleValue) AsString() (string, bool) { return v.str, v.kind == ReturnString }

// AsBool returns the BOOLEAN payload, if that variant is populated.
func (v OracleValue) AsBool() (bool, bool) { return v.boolean, v.kind == ReturnBoolean }

// AsNumber returns the NUMBER payload, if that variant is populated.
func (v OracleValue) AsNumber() (uint64, bool) { return v.number, v.kind == ReturnNumber }

// AsVector returns a copy of the VECTOR payload, if that variant is populated.
func (v OracleValue) AsVector() ([]byte, bool) {
	if v.kind != ReturnVector {
		return nil, false
	}
	b := make([]byte, len(v.vector))
	copy(b, v.vector)
	return b, true
}

// String renders the value for logs. Not the coercion textual form.
func (v OracleValue) String() string {
	switch v.kind {
	case ReturnString:
		return fmt.Sprintf("STRING(%q)", v.str)
	case ReturnBoolean:
		return fmt.Sprintf("BOOLEAN(%t)", v.boolean)
	case ReturnNumber:
		return fmt.Sprintf("NUMBER(%d)", v.number)
	case ReturnVector:
		return fmt.Sprintf("VECTOR(%v)", v.vector)
	}
	return "EMPTY"
}

// MarshalJSON implements the externally tagged union encoding.
func (v OracleValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ReturnString:
		return json.Marshal(map[string]string{string(ReturnString): v.str})
	case ReturnBoolean:
		return json.Marshal(map[string]bool{string(ReturnBoolean): v.boolean})
	case ReturnNumber:
		return json.Marshal(map[string]uint64{string(ReturnNumber): v.number})
	case ReturnVector:
		// Integer array, matching the ABI of the original feed consumers.
		ints := make([]uint16, len(v.vector))
		for i, b := range v.vector {
			ints[i] = uint16(b)
		}
		return json.Marshal(map[string][]uint16{string(ReturnVector): ints})
	}
	return nil, fmt.Errorf("cannot marshal empty oracle value")
}

// UnmarshalJSON decodes the externally tagged union encoding.
func (v *OracleValue) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("oracle value must have exactly one variant, got %d", len(tagged))
	}
	for tag, raw := range tagged {
		switch ReturnType(tag) {
		case ReturnString:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			*v = StringValue(s)
		case ReturnBoolean:
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			*v = BoolValue(b)
		case ReturnNumber:
			var n uint64
			if err := json.Unmarshal(raw, &n); err != nil {
				return err
			}
			*v = NumberValue(n)
		case ReturnVector:
			var ints []int
			if err := json.Unmarshal(raw, &ints); err != nil {
				return err
			}
			b := make([]byte, len(ints))
			for i, n := range ints {
				if n < 0 || n > 255 {
					return fmt.Errorf("vector element %d out of byte range", n)
				}
				b[i] = byte(n)
			}
			*v = OracleValue{kind: ReturnVector, vector: b}
		default:
			return fmt.Errorf("unknown oracle value variant %q", tag)
		}
	}
	return nil
}
