package registry

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Inputs is the loosely typed mapping a plugin is invoked with. Values come
// from JSON, the CLI or Go callers, so accessors accept several encodings.
type Inputs map[string]any

// String returns the value for key as a string, or def.
func (in Inputs) String(key, def string) string {
	switch v := in[key].(type) {
	case string:
		return v
	case nil:
		return def
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return def
}

// Bool returns the value for key as a bool, or def.
func (in Inputs) Bool(key string, def bool) bool {
	switch v := in[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Int returns the value for key as an int, or def.
func (in Inputs) Int(key string, def int) int {
	switch v := in[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Float returns the value for key as a float64.
func (in Inputs) Float(key string) (float64, bool) {
	switch v := in[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Has reports whether key is present with a non-empty value.
func (in Inputs) Has(key string) bool {
	v, ok := in[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Mode returns the "mode" input, lower-cased, or def.
func (in Inputs) Mode(def string) string {
	if m := strings.ToLower(strings.TrimSpace(in.String("mode", ""))); m != "" {
		return m
	}
	return def
}
