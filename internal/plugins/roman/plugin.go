// Package roman converts Roman numerals found in text to integers and back.
package roman

import (
	"fmt"
	"regexp"
	"strconv"

	"geopuzzle/internal/detect"
	"geopuzzle/internal/fragments"
	"geopuzzle/internal/plugins/pluginkit"
	"geopuzzle/internal/registry"
)

// Extractor locates upper-case Roman numerals.
var Extractor = &fragments.Extractor{
	Name: "roman",
	IsMember: func(r rune) bool {
		return r >= 'A' && r <= 'Z' && detect.IsRomanSymbol(r)
	},
	Validate: func(v string) bool {
		_, ok := detect.RomanToInt(v)
		return ok
	},
}

var numberRe = regexp.MustCompile(`\d+`)

// Plugin is the Roman numeral codec.
type Plugin struct {
	codec *pluginkit.Codec
}

func init() {
	registry.Register(New())
}

// New builds the plugin. Numerals are usually embedded in prose such as
// "NORD XLVIII ...", so embedded extraction is the default.
func New() *Plugin {
	return &Plugin{codec: &pluginkit.Codec{
		Name:           "roman",
		Extractor:      Extractor,
		Defaults:       fragments.Options{Strict: true, Embedded: true},
		DecodeFragment: decodeFragment,
		Encode:         encode,
	}}
}

func (p *Plugin) Name() string        { return "roman" }
func (p *Plugin) Description() string { return "Roman numerals to integers and back" }
func (p *Plugin) Priority() int       { return 20 }

func (p *Plugin) Check(text string, opts fragments.Options) fragments.CheckResult {
	return p.codec.Check(text, opts)
}

func (p *Plugin) Execute(req *registry.Request) *registry.Response {
	return p.codec.Run(req)
}

func decodeFragment(f fragments.Fragment) (string, bool) {
	n, ok := detect.RomanToInt(f.Value)
	if !ok {
		return "", false
	}
	return strconv.Itoa(n), true
}

// encode replaces every integer in 1..3999 with its numeral.
func encode(text string) (string, error) {
	found := false
	out := numberRe.ReplaceAllStringFunc(text, func(s string) string {
		n, err := strconv.Atoi(s)
		if err != nil {
			return s
		}
		r, ok := detect.IntToRoman(n)
		if !ok {
			return s
		}
		found = true
		return r
	})
	if !found {
		return "", fmt.Errorf("no number between 1 and 3999 in text")
	}
	return out, nil
}
