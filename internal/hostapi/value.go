package hostapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// The dynamic value shape shared by both script engines and the isolation
// boundary: nil, bool, int64, float64, string, []any, map[string]any.
// Everything that crosses into or out of a sandbox is normalized to it.

// DecodeJSON decodes a JSON document into the dynamic value shape. Integral
// numbers decode as int64, everything else as float64.
func DecodeJSON(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return Normalize(v), nil
}

// Normalize rewrites a decoded JSON value (or an engine export) into the
// dynamic value shape. json.Number becomes int64 when integral, float64
// otherwise; containers are normalized recursively.
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case float64:
		// NaN and the infinities have no JSON form and so no transit form;
		// they normalize to nil. Checked before the integral conversion,
		// which is not defined for non-finite inputs.
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		// Engines report all numbers as floats in places; keep integral
		// values as int64 so NUMBER coercion sees them directly.
		if t == float64(int64(t)) {
			return int64(t)
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

// Text is the canonical textual representation of a dynamic value. It is the
// single definition used by the result helpers and by value coercion, so the
// two never disagree about what a value "looks like" as a string.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
