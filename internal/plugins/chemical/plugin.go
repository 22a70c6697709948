// Package chemical converts chemical element symbols to atomic numbers and back.
package chemical

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"geopuzzle/internal/fragments"
	"geopuzzle/internal/plugins/pluginkit"
	"geopuzzle/internal/registry"
)

// Extractor locates runs of element symbols. In strict mode a whole run must
// split into symbols; in smooth mode the longest symbol sequences inside a
// run are taken.
var Extractor = &fragments.Extractor{
	Name:     "chemical",
	IsMember: isASCIILetter,
	Validate: func(v string) bool {
		_, ok := segmentWords(v)
		return ok
	},
	Smooth: smooth,
}

var numberRe = regexp.MustCompile(`\d+`)

// Plugin is the chemical element codec.
type Plugin struct {
	codec *pluginkit.Codec
}

func init() {
	registry.Register(New())
}

// New builds the plugin.
func New() *Plugin {
	return &Plugin{codec: &pluginkit.Codec{
		Name:           "chemical",
		Extractor:      Extractor,
		Defaults:       fragments.Options{Strict: true, Embedded: false},
		DecodeFragment: decodeFragment,
		Encode:         encode,
	}}
}

func (p *Plugin) Name() string        { return "chemical" }
func (p *Plugin) Description() string { return "Chemical element symbols to atomic numbers and back" }
func (p *Plugin) Priority() int       { return 30 }

func (p *Plugin) Check(text string, opts fragments.Options) fragments.CheckResult {
	return p.codec.Check(text, opts)
}

func (p *Plugin) Execute(req *registry.Request) *registry.Response {
	return p.codec.Run(req)
}

// Segment splits s into element symbols and returns their atomic numbers.
// Symbols are case sensitive: an upper-case letter optionally followed by a
// lower-case one.
func Segment(s string) ([]int, bool) {
	var out []int
	for i := 0; i < len(s); {
		n, size := symbolAt(s, i)
		if size == 0 {
			return nil, false
		}
		out = append(out, n)
		i += size
	}
	return out, len(out) > 0
}

// symbolAt matches the symbol starting at byte i, preferring two letters.
func symbolAt(s string, i int) (int, int) {
	if i >= len(s) || !isUpper(s[i]) {
		return 0, 0
	}
	if i+1 < len(s) && isLower(s[i+1]) {
		if n, ok := AtomicNumber(s[i : i+2]); ok {
			return n, 2
		}
	}
	if n, ok := AtomicNumber(s[i : i+1]); ok {
		return n, 1
	}
	return 0, 0
}

func smooth(text string, run fragments.Fragment) []fragments.Fragment {
	var out []fragments.Fragment
	s := run.Value
	start := -1
	for i := 0; i < len(s); {
		if _, size := symbolAt(s, i); size > 0 {
			if start < 0 {
				start = i
			}
			i += size
			continue
		}
		if start >= 0 {
			out = append(out, fragments.Fragment{Value: s[start:i], Start: run.Start + start, End: run.Start + i})
			start = -1
		}
		i++
	}
	if start >= 0 {
		out = append(out, fragments.Fragment{Value: s[start:], Start: run.Start + start, End: run.End})
	}
	return out
}

// segmentWords segments every letter group of v. Whole-text candidates may
// still hold separators between symbols.
func segmentWords(v string) ([]int, bool) {
	words := strings.FieldsFunc(v, func(r rune) bool { return !isASCIILetter(r) })
	if len(words) == 0 {
		return nil, false
	}
	var out []int
	for _, w := range words {
		nums, ok := Segment(w)
		if !ok {
			return nil, false
		}
		out = append(out, nums...)
	}
	return out, true
}

func decodeFragment(f fragments.Fragment) (string, bool) {
	nums, ok := segmentWords(f.Value)
	if !ok {
		return "", false
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " "), true
}

// encode replaces atomic numbers with their symbols.
func encode(text string) (string, error) {
	found := false
	out := numberRe.ReplaceAllStringFunc(text, func(s string) string {
		n, err := strconv.Atoi(s)
		if err != nil {
			return s
		}
		sym, ok := Symbol(n)
		if !ok {
			return s
		}
		found = true
		return sym
	})
	if !found {
		return "", fmt.Errorf("no atomic number between 1 and %d in text", len(symbols))
	}
	return out, nil
}

func isASCIILetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
