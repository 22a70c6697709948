// Package fragments locates substrings of a code alphabet inside free text.
// Every codec plugin describes its alphabet with an Extractor and gets the
// strict, embedded and smooth behaviours from Check.
package fragments

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultAllowed is the separator set used when an extractor does not define one.
const DefaultAllowed = " \t\r\n,;:.-_/|"

// Fragment is a located substring. Start and End are byte offsets into the
// original text, so text[Start:End] == Value.
type Fragment struct {
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// CheckResult is the outcome of Check. A non-match always carries an empty
// fragment list and a zero score.
type CheckResult struct {
	IsMatch   bool       `json:"is_match"`
	Fragments []Fragment `json:"fragments"`
	Score     float64    `json:"score"`
}

// NoMatch returns the canonical negative result.
func NoMatch() CheckResult {
	return CheckResult{Fragments: []Fragment{}}
}

// Options select the extraction behaviour.
type Options struct {
	Strict       bool   // Non-alphabet characters outside AllowedChars reject a candidate.
	Embedded     bool   // Alphabet content may sit among other text.
	AllowedChars string // Separators; the extractor default when empty.
}

// Extractor describes one code alphabet.
type Extractor struct {
	Name string

	// IsMember reports whether r belongs to the alphabet.
	IsMember func(r rune) bool

	// DefaultAllowed overrides the package separator set.
	DefaultAllowed string

	// Validate applies extra rules to a candidate value, e.g. an even number of hex digits.
	Validate func(value string) bool

	// Smooth finds fragments inside one separator-delimited run in smooth
	// mode. When nil, maximal runs of member characters are used.
	Smooth func(text string, run Fragment) []Fragment
}

// Check extracts fragments from text according to opts.
func (e *Extractor) Check(text string, opts Options) CheckResult {
	allowed := opts.AllowedChars
	if allowed == "" {
		allowed = e.DefaultAllowed
	}
	if allowed == "" {
		allowed = DefaultAllowed
	}
	isSep := func(r rune) bool { return strings.ContainsRune(allowed, r) }

	var frags []Fragment
	switch {
	case opts.Strict && !opts.Embedded:
		frags = e.whole(text, isSep)
	case opts.Strict:
		for _, run := range Runs(text, isSep) {
			if e.allMembers(run.Value) && e.valid(run.Value) {
				frags = append(frags, run)
			}
		}
	default:
		for _, run := range Runs(text, isSep) {
			frags = append(frags, e.smooth(text, run)...)
		}
	}

	frags = spanChecked(text, frags)
	if len(frags) == 0 {
		return NoMatch()
	}
	return CheckResult{
		IsMatch:   true,
		Fragments: frags,
		Score:     coverage(text, frags, isSep),
	}
}

// whole accepts the entire input when every character is a member or a
// separator, returning the alphabet content with separators trimmed from
// both ends.
func (e *Extractor) whole(text string, isSep func(rune) bool) []Fragment {
	members := 0
	for _, r := range text {
		switch {
		case e.IsMember(r):
			members++
		case isSep(r):
		default:
			return nil
		}
	}
	if members == 0 {
		return nil
	}

	start := strings.IndexFunc(text, func(r rune) bool { return !isSep(r) })
	end := strings.LastIndexFunc(text, func(r rune) bool { return !isSep(r) })
	_, size := utf8.DecodeRuneInString(text[end:])
	end += size

	value := text[start:end]
	if !e.valid(value) {
		return nil
	}
	return []Fragment{{Value: value, Start: start, End: end}}
}

func (e *Extractor) smooth(text string, run Fragment) []Fragment {
	if e.Smooth != nil {
		return e.Smooth(text, run)
	}
	var out []Fragment
	for _, f := range MemberRuns(text, run, e.IsMember) {
		if e.valid(f.Value) {
			out = append(out, f)
		}
	}
	return out
}

func (e *Extractor) allMembers(s string) bool {
	for _, r := range s {
		if !e.IsMember(r) {
			return false
		}
	}
	return s != ""
}

func (e *Extractor) valid(s string) bool {
	return e.Validate == nil || e.Validate(s)
}

// Runs splits text into maximal runs of non-separator characters.
func Runs(text string, isSep func(rune) bool) []Fragment {
	var out []Fragment
	start := -1
	for i, r := range text {
		if isSep(r) {
			if start >= 0 {
				out = append(out, Fragment{Value: text[start:i], Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, Fragment{Value: text[start:], Start: start, End: len(text)})
	}
	return out
}

// MemberRuns returns the maximal member sub-runs of run, with offsets into text.
func MemberRuns(text string, run Fragment, isMember func(rune) bool) []Fragment {
	var out []Fragment
	start := -1
	for i, r := range run.Value {
		abs := run.Start + i
		if !isMember(r) {
			if start >= 0 {
				out = append(out, Fragment{Value: text[start:abs], Start: start, End: abs})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = abs
		}
	}
	if start >= 0 {
		out = append(out, Fragment{Value: text[start:run.End], Start: start, End: run.End})
	}
	return out
}

// spanChecked drops fragments whose offsets do not reproduce their value.
func spanChecked(text string, frags []Fragment) []Fragment {
	out := frags[:0]
	for _, f := range frags {
		if f.Start < 0 || f.End > len(text) || f.Start >= f.End {
			continue
		}
		if text[f.Start:f.End] != f.Value {
			continue
		}
		out = append(out, f)
	}
	return out
}

// coverage is the share of non-separator characters covered by fragments.
func coverage(text string, frags []Fragment, isSep func(rune) bool) float64 {
	total := 0
	for _, r := range text {
		if !isSep(r) {
			total++
		}
	}
	if total == 0 {
		return 0
	}

	covered := 0
	for _, f := range frags {
		for _, r := range f.Value {
			if !isSep(r) {
				covered++
			}
		}
	}
	score := float64(covered) / float64(total)
	if score > 1 {
		score = 1
	}
	return score
}

// Decode replaces every fragment span with fn's output, leaving the rest of
// text untouched. Fragments are applied from the highest start offset down
// so earlier offsets stay valid. Fragments for which fn reports false, and
// fragments overlapping an already replaced span, are left as they are.
func Decode(text string, frags []Fragment, fn func(Fragment) (string, bool)) string {
	ordered := make([]Fragment, len(frags))
	copy(ordered, frags)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})

	out := text
	limit := len(text)
	for _, f := range ordered {
		if f.Start < 0 || f.End > limit || f.Start >= f.End {
			continue
		}
		repl, ok := fn(f)
		if !ok {
			continue
		}
		out = out[:f.Start] + repl + out[f.End:]
		limit = f.Start
	}
	return out
}
