package rpc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// NewStruct is structpb.NewStruct after Normalize.
func NewStruct(m map[string]any) (*structpb.Struct, error) {
	norm, _ := Normalize(m).(map[string]any)
	s, err := structpb.NewStruct(norm)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return s, nil
}

// Normalize rewrites v into the shapes structpb accepts: pointers are
// dereferenced (nil pointers become nil) and typed slices become []any.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *bool:
		if x == nil {
			return nil
		}
		return *x
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out
	case []float32:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = Normalize(m)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}
		return out
	default:
		return v
	}
}

// String returns v as a string; ok is false for nil and non-strings.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// StringPtr returns a pointer to v's string value, or nil.
func StringPtr(v any) *string {
	s, ok := String(v)
	if !ok {
		return nil
	}
	return &s
}

// Int64 coerces numbers arriving as float64, int, int64, json.Number or a
// decimal string. Fractional floats are rejected.
func Int64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Int64Ptr is Int64 returning nil when v cannot be coerced.
func Int64Ptr(v any) *int64 {
	n, ok := Int64(v)
	if !ok {
		return nil
	}
	return &n
}

// Float64 coerces any numeric representation to float64.
func Float64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool accepts booleans and the strings "true"/"false"; nil is false.
func Bool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	default:
		return false
	}
}

// Floats converts a decoded list of numbers to []float64. Entries that are
// not numbers make the whole conversion fail.
func Floats(v any) ([]float64, bool) {
	list, ok := v.([]any)
	if !ok {
		if fs, ok := v.([]float64); ok {
			return fs, true
		}
		return nil, false
	}
	out := make([]float64, len(list))
	for i, e := range list {
		f, ok := Float64(e)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Map returns v as a map, or nil.
func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
