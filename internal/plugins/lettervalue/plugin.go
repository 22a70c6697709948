// Package lettervalue maps letters to their alphabet position (A=1 … Z=26)
// and back. Encoding also reports the letter sums puzzle setters use as
// coordinate digits.
package lettervalue

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"geopuzzle/internal/fragments"
	"geopuzzle/internal/plugins/pluginkit"
	"geopuzzle/internal/registry"
)

// Extractor locates runs of numbers between 1 and 26.
var Extractor = &fragments.Extractor{
	Name:           "letter_value",
	IsMember:       func(r rune) bool { return r >= '0' && r <= '9' },
	DefaultAllowed: " \t\r\n,;-/|",
	Validate: func(v string) bool {
		_, ok := numbers(v)
		return ok
	},
}

// Plugin is the letter value codec.
type Plugin struct {
	codec *pluginkit.Codec
}

func init() {
	registry.Register(New())
}

// New builds the plugin.
func New() *Plugin {
	return &Plugin{codec: &pluginkit.Codec{
		Name:           "letter_value",
		Extractor:      Extractor,
		Defaults:       fragments.Options{Strict: true, Embedded: false},
		DecodeFragment: decodeFragment,
	}}
}

func (p *Plugin) Name() string        { return "letter_value" }
func (p *Plugin) Description() string { return "Letter positions (A=1 to Z=26), sums and digital roots" }
func (p *Plugin) Priority() int       { return 40 }

func (p *Plugin) Check(text string, opts fragments.Options) fragments.CheckResult {
	return p.codec.Check(text, opts)
}

// Execute handles encode itself so the letter sums land in the metadata;
// the other modes go through the codec.
func (p *Plugin) Execute(req *registry.Request) *registry.Response {
	if req.Inputs.Mode("decode") != "encode" {
		return p.codec.Run(req)
	}

	resp := registry.NewResponse(p.Name(), req.Inputs)
	text := req.Inputs.String("text", "")
	enc := Encode(text)
	if enc.Total == 0 {
		return resp.Fail("no letters in text")
	}

	meta := map[string]any{
		"word_sums":     enc.WordSums,
		"total":         enc.Total,
		"digital_root":  DigitalRoot(enc.Total),
		"folded_text":   enc.Folded,
		"letter_values": enc.Values,
	}
	resp.AddResult(enc.Text, 1, map[string]any{"mode": "encode"}, meta)
	return resp.Finish()
}

// Encoding is the result of Encode.
type Encoding struct {
	Folded   string  // upper-cased text with accents removed
	Text     string  // word values, space separated, words joined by " - "
	Values   [][]int // letter values per word
	WordSums []int
	Total    int
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold removes diacritics and upper-cases s, so "é" counts as E.
func Fold(s string) string {
	out, _, err := transform.String(folder, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// Encode converts every A-Z letter of text to its position. Non-letters
// split words.
func Encode(text string) Encoding {
	enc := Encoding{Folded: Fold(text)}
	words := strings.FieldsFunc(enc.Folded, func(r rune) bool { return r < 'A' || r > 'Z' })

	parts := make([]string, 0, len(words))
	for _, w := range words {
		vals := make([]int, 0, len(w))
		strs := make([]string, 0, len(w))
		sum := 0
		for _, r := range w {
			v := int(r-'A') + 1
			vals = append(vals, v)
			strs = append(strs, strconv.Itoa(v))
			sum += v
		}
		enc.Values = append(enc.Values, vals)
		enc.WordSums = append(enc.WordSums, sum)
		enc.Total += sum
		parts = append(parts, strings.Join(strs, " "))
	}
	enc.Text = strings.Join(parts, " - ")
	return enc
}

// DigitalRoot repeatedly sums the decimal digits of n until one digit remains.
func DigitalRoot(n int) int {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return 0
	}
	return 1 + (n-1)%9
}

// Letter returns the letter at position n.
func Letter(n int) (string, bool) {
	if n < 1 || n > 26 {
		return "", false
	}
	return string(rune('A' + n - 1)), true
}

func numbers(v string) ([]int, bool) {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r < '0' || r > '9' })
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > 26 {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func decodeFragment(f fragments.Fragment) (string, bool) {
	nums, ok := numbers(f.Value)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for _, n := range nums {
		l, _ := Letter(n)
		b.WriteString(l)
	}
	return b.String(), true
}
