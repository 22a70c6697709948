package detect

import (
	"strings"

	"geopuzzle/internal/patterns"
)

// Detectors returns the detectors in trial order. The returned slice is a copy.
func Detectors() []Detector {
	out := make([]Detector, len(builtin))
	copy(out, builtin)
	return out
}

// Detect tries every detector in order and returns the first positive result.
// When nothing matches the result has Exist set to false.
func Detect(text string) Result {
	upper := strings.ToUpper(text)
	for _, d := range builtin {
		if !d.QuickCheck(upper) {
			continue
		}
		if r := safeDetect(d, text); r != nil {
			return *r
		}
	}
	return Result{}
}

// safeDetect turns a detector panic into a no-match for that detector only.
func safeDetect(d Detector, text string) (r *Result) {
	defer func() {
		if recover() != nil {
			r = nil
		}
	}()
	return d.Detect(text)
}

// Attempt records one detector's outcome.
type Attempt struct {
	Detector   string                 `json:"detector"`
	QuickCheck bool                   `json:"quick_check"`
	Formats    []patterns.FormatTrace `json:"formats,omitempty"`
	Matched    bool                   `json:"matched"`
	Result     *Result                `json:"result,omitempty"`
}

// Trace shows every detector's view of a text. Winner names the detector
// whose result Detect returns.
type Trace struct {
	Text     string    `json:"text"`
	Attempts []Attempt `json:"attempts"`
	Winner   string    `json:"winner,omitempty"`
	Result   Result    `json:"result"`
}

// DetectWithTrace runs every detector, including those after the winner, so
// overlapping conventions can be inspected.
func DetectWithTrace(text string) *Trace {
	upper := strings.ToUpper(text)
	trace := &Trace{Text: text}

	for _, d := range Detectors() {
		a := Attempt{
			Detector:   d.Name(),
			QuickCheck: d.QuickCheck(upper),
		}
		if a.QuickCheck {
			if t, ok := d.(Traceable); ok {
				a.Formats = t.Trace(text)
			}
			if r := safeDetect(d, text); r != nil {
				a.Matched = true
				a.Result = r
				if trace.Winner == "" {
					trace.Winner = d.Name()
					trace.Result = *r
				}
			}
		}
		trace.Attempts = append(trace.Attempts, a)
	}

	return trace
}
