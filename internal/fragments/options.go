package fragments

import (
	"strconv"
	"strings"
)

// ParseOptions reads the extraction options from plugin inputs, starting
// from defaults.
//
//	strict:        bool, or "strict" / "smooth"
//	embedded:      bool or "true" / "false"
//	allowed_chars: string
func ParseOptions(inputs map[string]any, defaults Options) Options {
	opts := defaults

	switch v := inputs["strict"].(type) {
	case bool:
		opts.Strict = v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "strict":
			opts.Strict = true
		case "smooth":
			opts.Strict = false
		default:
			if b, err := strconv.ParseBool(v); err == nil {
				opts.Strict = b
			}
		}
	}

	switch v := inputs["embedded"].(type) {
	case bool:
		opts.Embedded = v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			opts.Embedded = b
		}
	}

	if v, ok := inputs["allowed_chars"].(string); ok && v != "" {
		opts.AllowedChars = v
	}

	return opts
}
