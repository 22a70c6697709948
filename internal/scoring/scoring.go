// Package scoring ranks brute-force decoding candidates by how much they look
// like readable text or a coordinate.
package scoring

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"geopuzzle/internal/detect"
)

// Weights of the three quality signals.
type Weights struct {
	Printable float64 `toml:"printable" json:"printable"`
	Words     float64 `toml:"words" json:"words"`
	GPS       float64 `toml:"gps" json:"gps"`
}

// Scorer computes candidate quality. Candidates scoring below Floor are dropped by Rank.
type Scorer struct {
	Weights Weights
	Floor   float64
}

// Default returns the stock weights (0.5 / 0.3 / 0.2) and a 0.1 floor.
func Default() Scorer {
	return Scorer{
		Weights: Weights{Printable: 0.5, Words: 0.3, GPS: 0.2},
		Floor:   0.1,
	}
}

// wordRe matches letter runs of three or more with at least one vowel.
var wordRe = regexp.MustCompile(`(?i)\p{L}*[aeiouyàâäéèêëîïôöùûü]\p{L}*`)

// Score returns a value in [0, 1].
func (s Scorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	score := s.Weights.Printable*PrintableRatio(text) +
		s.Weights.Words*WordRatio(text)
	if detect.Detect(text).Exist {
		score += s.Weights.GPS
	}

	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

// PrintableRatio is the share of printable runes, counting tabs and newlines as printable.
func PrintableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || r == '\n' || r == '\t' || r == '\r' {
			printable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(printable) / float64(total)
}

// WordRatio is the share of non-space runes that sit in word-like letter runs.
func WordRatio(text string) float64 {
	total := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			total++
		}
	}
	if total == 0 {
		return 0
	}

	inWords := 0
	for _, w := range wordRe.FindAllString(text, -1) {
		if n := len([]rune(w)); n >= 3 {
			inWords += n
		}
	}
	return float64(inWords) / float64(total)
}

// Candidate is one brute-force interpretation.
type Candidate struct {
	Text       string
	Score      float64
	Parameters map[string]any
}

// Rank scores every candidate, drops those under the floor and sorts the
// rest by descending score. Ties keep their input order.
func (s Scorer) Rank(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.Score = s.Score(c.Text)
		if c.Score < s.Floor {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
