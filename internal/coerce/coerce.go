// Package coerce converts a script's dynamically typed result into one of
// the four canonical oracle value kinds, enforcing the feed's declared
// return type. Coercion is a pure function: no side effects, no mutation of
// the inputs, and a specific error for every out-of-contract value.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sakif/oracle-enclave/internal/hostapi"
	"github.com/sakif/oracle-enclave/internal/model"
)

var (
	// ErrNegativeNumber: NUMBER is unsigned; negatives never wrap silently.
	ErrNegativeNumber = errors.New("Negative number not supported")
	// ErrNotANumber: the value matched no numeric extraction path.
	ErrNotANumber = errors.New("not a valid number")
	// ErrNotABoolean: the value is neither a boolean nor a recognized literal.
	ErrNotABoolean = errors.New("cannot convert to BOOLEAN")
	// ErrByteOutOfRange: a sequence element is an integer outside [0,255].
	ErrByteOutOfRange = errors.New("out of u8 range")
	// ErrUnsupportedElement: a sequence element is neither integer nor text.
	ErrUnsupportedElement = errors.New("unsupported sequence element type")
	// ErrScriptReported: the value carries the script's own error sentinel.
	ErrScriptReported = errors.New("script reported an error")
)

// Coerce maps a dynamic value onto the declared return type.
func Coerce(v any, rt model.ReturnType) (model.OracleValue, error) {
	switch rt {
	case model.ReturnString:
		return coerceString(v), nil
	case model.ReturnNumber:
		return coerceNumber(v)
	case model.ReturnBoolean:
		return coerceBoolean(v)
	case model.ReturnVector:
		return coerceVector(v)
	}
	return model.OracleValue{}, fmt.Errorf("unknown return type %q", rt)
}

// coerceString always succeeds: the textual representation, trimmed.
func coerceString(v any) model.OracleValue {
	return model.StringValue(strings.TrimSpace(hostapi.Text(v)))
}

// coerceNumber tries integer extraction, then float extraction with
// truncation toward zero, then parsing the textual representation as an
// unsigned integer. Negative values fail at every stage; a script-reported
// error sentinel takes precedence over a parse failure.
func coerceNumber(v any) (model.OracleValue, error) {
	switch n := v.(type) {
	case int64:
		if n < 0 {
			return model.OracleValue{}, fmt.Errorf("%w: %d", ErrNegativeNumber, n)
		}
		return model.NumberValue(uint64(n)), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return model.OracleValue{}, fmt.Errorf("%w: %v", ErrNotANumber, n)
		}
		if n < 0 {
			return model.OracleValue{}, fmt.Errorf("%w: %v", ErrNegativeNumber, n)
		}
		// Conversion from a float at or above 2^64 is not defined; reject
		// rather than wrap.
		if n >= 1<<64 {
			return model.OracleValue{}, fmt.Errorf("%w: %v exceeds the unsigned 64-bit range", ErrNotANumber, n)
		}
		// Truncate toward zero; rounding would change observable values.
		return model.NumberValue(uint64(n)), nil
	}

	s := strings.TrimSpace(hostapi.Text(v))
	if strings.HasPrefix(s, hostapi.ErrMarker) {
		return model.OracleValue{}, fmt.Errorf("%w: %s", ErrScriptReported, s)
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return model.NumberValue(u), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && i < 0 {
		return model.OracleValue{}, fmt.Errorf("%w: %d", ErrNegativeNumber, i)
	}
	return model.OracleValue{}, fmt.Errorf("%w: cannot convert %q to NUMBER", ErrNotANumber, s)
}

// coerceBoolean accepts native booleans, then exactly "true"/"1" and
// "false"/"0" from the lower-cased trimmed textual representation.
func coerceBoolean(v any) (model.OracleValue, error) {
	if b, ok := v.(bool); ok {
		return model.BoolValue(b), nil
	}

	switch strings.ToLower(strings.TrimSpace(hostapi.Text(v))) {
	case "true", "1":
		return model.BoolValue(true), nil
	case "false", "0":
		return model.BoolValue(false), nil
	}
	return model.OracleValue{}, ErrNotABoolean
}

// coerceVector encodes a sequence element-wise: integers in [0,255] become
// single bytes, text elements append their raw byte encoding, anything else
// is rejected. A non-sequence value falls back to the byte encoding of its
// full textual representation.
func coerceVector(v any) (model.OracleValue, error) {
	seq, ok := v.([]any)
	if !ok {
		return model.VectorValue([]byte(hostapi.Text(v))), nil
	}

	buf := make([]byte, 0, len(seq))
	for _, el := range seq {
		switch t := el.(type) {
		case int64:
			if t < 0 || t > 255 {
				return model.OracleValue{}, fmt.Errorf("value %d %w", t, ErrByteOutOfRange)
			}
			buf = append(buf, byte(t))
		case string:
			buf = append(buf, t...)
		default:
			return model.OracleValue{}, fmt.Errorf("%w: %T", ErrUnsupportedElement, el)
		}
	}
	return model.VectorValue(buf), nil
}
