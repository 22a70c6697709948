// Package patterns provides the grok-style pattern compiler used by the
// coordinate detectors.
// This file contains the pattern compiler.

package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Format represents a textual convention with named capture groups.
type Format struct {
	Name     string         // Format name for identification
	Pattern  string         // Pattern with {PLACEHOLDER} syntax
	Compiled *regexp.Regexp // Compiled regex (populated by Compile)
	Fields   []string       // Field names in capture order (for documentation)
}

// Compiler manages pattern compilation and matching for a set of formats.
type Compiler struct {
	replacer *strings.Replacer
	formats  []Format
}

// NewCompiler creates a new pattern compiler with the given formats.
// It merges the provided base patterns with the global BasePatterns,
// allowing local patterns to override global ones.
func NewCompiler(formats []Format, localPatterns map[string]string) *Compiler {
	merged := make(map[string]string, len(BasePatterns)+len(localPatterns))
	for k, v := range BasePatterns {
		merged[k] = v
	}
	for k, v := range localPatterns {
		merged[k] = v
	}

	// Sorted so the expansion is identical between runs.
	names := make([]string, 0, len(merged))
	for k := range merged {
		names = append(names, k)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", merged[name])
	}

	c := &Compiler{
		replacer: strings.NewReplacer(pairs...),
		formats:  make([]Format, len(formats)),
	}
	copy(c.formats, formats)
	return c
}

// Compile expands all {PLACEHOLDER} references and compiles regexes.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		re, err := regexp.Compile(c.Expand(c.formats[i].Pattern))
		if err != nil {
			return fmt.Errorf("format %s: %w", c.formats[i].Name, err)
		}
		c.formats[i].Compiled = re
	}
	return nil
}

// MustCompile builds and compiles a Compiler, panicking on a bad pattern.
// Intended for package-level detector tables.
func MustCompile(formats []Format, localPatterns map[string]string) *Compiler {
	c := NewCompiler(formats, localPatterns)
	if err := c.Compile(); err != nil {
		panic(err)
	}
	return c
}

// Expand replaces {PLACEHOLDER} with actual regex patterns.
func (c *Compiler) Expand(pattern string) string {
	return c.replacer.Replace(pattern)
}

// Match represents a successful pattern match with extracted fields.
type Match struct {
	FormatName string            // Name of the matched format
	Captures   map[string]string // Named capture group values
}

func captures(re *regexp.Regexp, m []string) map[string]string {
	out := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		out[name] = m[i]
	}
	return out
}

// Parse attempts to match text against all compiled formats in order.
// Returns the first successful match, or nil if no format matches.
func (c *Compiler) Parse(text string) *Match {
	upperText := strings.ToUpper(text)

	for _, format := range c.formats {
		if format.Compiled == nil {
			continue
		}

		m := format.Compiled.FindStringSubmatch(upperText)
		if m == nil {
			continue
		}

		return &Match{
			FormatName: format.Name,
			Captures:   captures(format.Compiled, m),
		}
	}

	return nil
}

// GetCapture is a helper to safely get a capture value with a default.
func (m *Match) GetCapture(name string, defaultVal string) string {
	if m == nil {
		return defaultVal
	}
	if val, ok := m.Captures[name]; ok && val != "" {
		return val
	}
	return defaultVal
}

// FormatTrace contains debug information about a format match attempt.
type FormatTrace struct {
	Name     string            `json:"name"`               // Format name
	Matched  bool              `json:"matched"`            // Whether the pattern matched
	Pattern  string            `json:"pattern"`            // The expanded regex pattern
	Captures map[string]string `json:"captures,omitempty"` // Captured groups (if matched)
}

// ParseWithTrace attempts to match text and records every format attempt.
// This is useful for debugging why patterns don't match.
func (c *Compiler) ParseWithTrace(text string) (*Match, []FormatTrace) {
	upperText := strings.ToUpper(text)
	traces := make([]FormatTrace, 0, len(c.formats))
	var first *Match

	for _, format := range c.formats {
		ft := FormatTrace{
			Name:    format.Name,
			Pattern: c.Expand(format.Pattern),
		}

		if format.Compiled != nil {
			if m := format.Compiled.FindStringSubmatch(upperText); m != nil {
				ft.Matched = true
				ft.Captures = captures(format.Compiled, m)
				if first == nil {
					first = &Match{FormatName: format.Name, Captures: ft.Captures}
				}
			}
		}

		traces = append(traces, ft)
	}

	return first, traces
}
