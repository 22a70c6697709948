// Package hex decodes hexadecimal byte strings to text and back.
package hex

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"geopuzzle/internal/fragments"
	"geopuzzle/internal/plugins/pluginkit"
	"geopuzzle/internal/registry"
)

// Extractor locates hex digit runs. A candidate must hold an even number of digits.
var Extractor = &fragments.Extractor{
	Name:           "hex",
	IsMember:       isHexDigit,
	DefaultAllowed: " \t\r\n,;:-",
	Validate: func(v string) bool {
		return len(digits(v))%2 == 0
	},
}

// Plugin is the hex codec.
type Plugin struct {
	codec *pluginkit.Codec
}

func init() {
	registry.Register(New())
}

// New builds the plugin.
func New() *Plugin {
	return &Plugin{codec: &pluginkit.Codec{
		Name:           "hex",
		Extractor:      Extractor,
		Defaults:       fragments.Options{Strict: true, Embedded: false},
		DecodeFragment: decodeFragment,
		Encode:         encode,
	}}
}

func (p *Plugin) Name() string        { return "hex" }
func (p *Plugin) Description() string { return "Hexadecimal bytes to text and back" }
func (p *Plugin) Priority() int       { return 10 }

func (p *Plugin) Check(text string, opts fragments.Options) fragments.CheckResult {
	return p.codec.Check(text, opts)
}

func (p *Plugin) Execute(req *registry.Request) *registry.Response {
	return p.codec.Run(req)
}

func decodeFragment(f fragments.Fragment) (string, bool) {
	b, err := hex.DecodeString(digits(f.Value))
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func encode(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("empty text")
	}
	parts := make([]string, 0, len(text))
	for i := 0; i < len(text); i++ {
		parts = append(parts, fmt.Sprintf("%02X", text[i]))
	}
	return strings.Join(parts, " "), nil
}

func digits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if isHexDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
