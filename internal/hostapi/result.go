package hostapi

import (
	"fmt"
	"strings"
)

// Fallible host operations are surfaced to scripts as plain values carrying a
// string-prefix sentinel, because neither sandboxed language exposes a native
// two-outcome type across the host boundary. This file is the only place that
// encodes or decodes the convention; host functions and the coercion engine
// go through it rather than re-implementing prefix checks.
//
// Convention: a value whose string form starts with "Error:" (or the legacy
// "Err(...)" wrapping) is a failure; "Ok(...)" wraps a success and is
// stripped to its inner text, removing one layer of quoting if present.

// ErrMarker is the reserved prefix marking a script-visible error value.
const ErrMarker = "Error:"

// Errf formats a script-visible error value.
func Errf(format string, args ...any) string {
	return ErrMarker + " " + fmt.Sprintf(format, args...)
}

// IsErrText reports whether a string form denotes a failed operation.
func IsErrText(s string) bool {
	return strings.HasPrefix(s, "Err(") || strings.HasPrefix(s, ErrMarker)
}

// IsErr reports whether a dynamic value denotes a failed operation.
func IsErr(v any) bool { return IsErrText(Text(v)) }

// IsOk reports whether a dynamic value denotes a successful operation.
func IsOk(v any) bool { return !IsErr(v) }

// Unwrap strips one layer of success/error wrapping from a dynamic value.
// Errors normalize to the ErrMarker form; plain values pass through.
func Unwrap(v any) any {
	s := Text(v)
	switch {
	case strings.HasPrefix(s, "Err("):
		return Errf("%s", innerOf(s, "Err("))
	case strings.HasPrefix(s, "Ok("):
		return innerOf(s, "Ok(")
	default:
		return v
	}
}

// UnwrapText unwraps to the inner text, stripping one layer of quoting from
// a success wrapping. Errors normalize to the ErrMarker form.
func UnwrapText(v any) string {
	s := Text(v)
	switch {
	case strings.HasPrefix(s, "Err("):
		return Errf("%s", innerOf(s, "Err("))
	case strings.HasPrefix(s, ErrMarker):
		return s
	case strings.HasPrefix(s, "Ok("):
		return strings.Trim(innerOf(s, "Ok("), `"`)
	default:
		return s
	}
}

// ErrOf extracts the error text of a failed value, or nil for a success.
func ErrOf(v any) any {
	s := Text(v)
	switch {
	case strings.HasPrefix(s, "Err("):
		return innerOf(s, "Err(")
	case strings.HasPrefix(s, ErrMarker):
		return strings.TrimSpace(strings.TrimPrefix(s, ErrMarker))
	default:
		return nil
	}
}

func innerOf(s, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, prefix), ")")
}
