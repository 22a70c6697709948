// Package baseconvert converts numbers between bases 2, 8, 10, 16 and 36,
// and to ASCII. With from/to left on "auto" every plausible pair is tried
// and the candidates are ranked by the brute-force scorer.
package baseconvert

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"geopuzzle/internal/fragments"
	"geopuzzle/internal/plugins/pluginkit"
	"geopuzzle/internal/registry"
	"geopuzzle/internal/scoring"
)

// ASCII is the pseudo target base that renders each number as a character.
const ASCII = 0

// Supported bases.
var Bases = []int{2, 8, 10, 16, 36}

var (
	autoSources = []int{2, 8, 10, 16}
	autoTargets = []int{ASCII, 10, 16, 2, 8}
)

// Extractor locates alphanumeric runs that read as numbers in one of the
// brute-forced source bases.
var Extractor = &fragments.Extractor{
	Name: "base_convert",
	IsMember: func(r rune) bool {
		return r < unicode.MaxASCII && (unicode.IsDigit(r) || unicode.IsLetter(r))
	},
	Validate: func(v string) bool {
		tokens := Tokens(v)
		for _, b := range autoSources {
			if _, err := ParseAll(tokens, b); err == nil {
				return true
			}
		}
		return false
	},
}

// Plugin is the base conversion plugin.
type Plugin struct{}

func init() {
	registry.Register(New())
}

// New builds the plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string        { return "base_convert" }
func (p *Plugin) Description() string { return "Numbers between bases 2/8/10/16/36 and ASCII" }
func (p *Plugin) Priority() int       { return 50 }

func (p *Plugin) Check(text string, opts fragments.Options) fragments.CheckResult {
	return Extractor.Check(text, opts)
}

// Execute reads "text", "from" (auto or a base) and "to" (auto, a base or
// "ascii").
func (p *Plugin) Execute(req *registry.Request) *registry.Response {
	resp := registry.NewResponse(p.Name(), req.Inputs)
	tokens := Tokens(req.Inputs.String("text", ""))
	if len(tokens) == 0 {
		return resp.Fail("text is required")
	}

	from, err := parseBase(req.Inputs.String("from", "auto"), false)
	if err != nil {
		return resp.Fail("from: %v", err)
	}
	to, err := parseBase(req.Inputs.String("to", "auto"), true)
	if err != nil {
		return resp.Fail("to: %v", err)
	}

	sources := autoSources
	if from != auto {
		sources = []int{from}
	}
	targets := autoTargets
	if to != auto {
		targets = []int{to}
	}
	bruteforce := from == auto || to == auto

	var candidates []scoring.Candidate
	for _, src := range sources {
		values, err := ParseAll(tokens, src)
		if err != nil {
			if !bruteforce {
				return resp.Fail("%v", err)
			}
			continue
		}
		for _, dst := range targets {
			if dst == src {
				continue
			}
			out, err := Format(values, dst)
			if err != nil {
				pluginkit.Logger(req).Debug("conversion skipped",
					zap.Int("from", src), zap.String("to", baseName(dst)), zap.Error(err))
				if !bruteforce {
					return resp.Fail("%v", err)
				}
				continue
			}
			candidates = append(candidates, scoring.Candidate{
				Text:       out,
				Score:      1,
				Parameters: map[string]any{"from": baseName(src), "to": baseName(dst)},
			})
		}
	}

	if bruteforce {
		candidates = req.Scorer.Rank(candidates)
	}
	if len(candidates) == 0 {
		resp.Summary.Message = "no plausible conversion"
		return resp.Finish()
	}

	for _, c := range candidates {
		meta := map[string]any{}
		pluginkit.Enrich(meta, c.Text, req.Inputs)
		resp.AddResult(c.Text, c.Score, c.Parameters, meta)
	}
	return resp.Finish()
}

const auto = -1

func parseBase(s string, allowASCII bool) (int, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "", "auto":
		return auto, nil
	case "ascii":
		if allowASCII {
			return ASCII, nil
		}
		return 0, fmt.Errorf("ascii is only a target")
	}
	b, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid base %q", s)
	}
	for _, v := range Bases {
		if v == b {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unsupported base %d", b)
}

func baseName(b int) string {
	if b == ASCII {
		return "ascii"
	}
	return strconv.Itoa(b)
}

// Tokens splits text on the usual separators.
func Tokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(fragments.DefaultAllowed, r)
	})
}

// ParseAll parses every token in base.
func ParseAll(tokens []string, base int) ([]uint64, error) {
	out := make([]uint64, len(tokens))
	for i, t := range tokens {
		v, err := strconv.ParseUint(t, base, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a base %d number", t, base)
		}
		out[i] = v
	}
	return out, nil
}

// Format renders values in base. ASCII output joins the characters without
// separators and rejects anything outside the printable range.
func Format(values []uint64, base int) (string, error) {
	if base == ASCII {
		var b strings.Builder
		for _, v := range values {
			if v < 0x20 || v > 0x7e {
				if v != '\n' && v != '\t' {
					return "", fmt.Errorf("%d is not a printable ASCII code", v)
				}
			}
			b.WriteByte(byte(v))
		}
		return b.String(), nil
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strings.ToUpper(strconv.FormatUint(v, base))
	}
	return strings.Join(parts, " "), nil
}
