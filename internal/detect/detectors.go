package detect

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"geopuzzle/internal/coords"
	"geopuzzle/internal/patterns"
)

// Detector recognises one textual coordinate convention.
type Detector interface {
	// Name returns the detector's unique identifier.
	Name() string

	// QuickCheck performs a cheap string test on upper-cased text.
	// Returns false when the text definitely cannot match.
	QuickCheck(upper string) bool

	// Detect returns a fully populated result, or nil when the text does not match.
	Detect(text string) *Result
}

// Traceable is implemented by detectors built on the pattern compiler.
type Traceable interface {
	Trace(text string) []patterns.FormatTrace
}

// grokDetector runs one compiled format table and turns the first match into
// a result.
type grokDetector struct {
	name     string
	compiler *patterns.Compiler
	quick    func(upper string) bool
	build    func(m *patterns.Match) *Result
}

// newGrok compiles formats at package init; a malformed table panics.
func newGrok(name string, formats []patterns.Format, quick func(string) bool, build func(*patterns.Match) *Result) *grokDetector {
	return &grokDetector{
		name:     name,
		compiler: patterns.MustCompile(formats, nil),
		quick:    quick,
		build:    build,
	}
}

func (d *grokDetector) Name() string { return d.name }

func (d *grokDetector) QuickCheck(upper string) bool {
	if d.quick == nil {
		return true
	}
	return d.quick(upper)
}

func (d *grokDetector) Detect(text string) *Result {
	match := d.compiler.Parse(text)
	if match == nil {
		return nil
	}
	return d.build(match)
}

func (d *grokDetector) Trace(text string) []patterns.FormatTrace {
	_, traces := d.compiler.ParseWithTrace(text)
	return traces
}

// Quick checks.

func hasNordEst(upper string) bool {
	return strings.Contains(upper, "NORD") && strings.Contains(upper, "EST")
}

func hasHemispheres(upper string) bool {
	return strings.ContainsAny(upper, "NS") && strings.ContainsAny(upper, "EW")
}

func hasDegreeSign(upper string) bool {
	return hasHemispheres(upper) && strings.Contains(upper, "°")
}

// Builders.

// buildRoman converts the six Roman tokens. Degrees are rendered without
// padding, as the numerals carry no digit width.
func buildRoman(m *patterns.Match) *Result {
	var v [6]int
	for i, key := range []string{"lat_deg", "lat_min", "lat_dec", "lon_deg", "lon_min", "lon_dec"} {
		n, ok := RomanToInt(m.GetCapture(key, ""))
		if !ok {
			return nil
		}
		v[i] = n
	}

	if v[0] > 90 || v[1] >= 60 || v[2] > 999 {
		return nil
	}
	if v[3] > 180 || v[4] >= 60 || v[5] > 999 {
		return nil
	}

	lat := fmt.Sprintf("N %d° %d.%03d'", v[0], v[1], v[2])
	lon := fmt.Sprintf("E %d° %d.%03d'", v[3], v[4], v[5])
	return found(lat, lon)
}

// buildSplitMinutes handles formats captured as degrees, integer minutes and
// decimal-of-minutes digits.
func buildSplitMinutes(m *patterns.Match) *Result {
	lat, ok := splitDDM(m.GetCapture("lat_dir", "N"), m.GetCapture("lat_deg", ""),
		m.GetCapture("lat_min", ""), m.GetCapture("lat_dec", ""))
	if !ok {
		return nil
	}
	lon, ok := splitDDM(m.GetCapture("lon_dir", "E"), m.GetCapture("lon_deg", ""),
		m.GetCapture("lon_min", ""), m.GetCapture("lon_dec", ""))
	if !ok {
		return nil
	}
	return fromDDM(lat, lon)
}

// buildSeconds handles formats where minutes may carry their own decimals and
// seconds are optional. Seconds are folded into minutes.
func buildSeconds(m *patterns.Match) *Result {
	lat, ok := secondsDDM(m.GetCapture("lat_dir", ""), m.GetCapture("lat_deg", ""),
		m.GetCapture("lat_min", ""), m.GetCapture("lat_sec", ""))
	if !ok {
		return nil
	}
	lon, ok := secondsDDM(m.GetCapture("lon_dir", ""), m.GetCapture("lon_deg", ""),
		m.GetCapture("lon_min", ""), m.GetCapture("lon_sec", ""))
	if !ok {
		return nil
	}
	return fromDDM(lat, lon)
}

func buildFixedBlock(m *patterns.Match) *Result {
	lat, err := coords.ParseDigitBlock(m.GetCapture("lat", ""), 2, "N")
	if err != nil {
		return nil
	}
	lonBlock := m.GetCapture("lon", "")
	if n := len(lonBlock); n < 8 {
		lonBlock = strings.Repeat("0", 8-n) + lonBlock
	}
	lon, err := coords.ParseDigitBlock(lonBlock, 3, "E")
	if err != nil {
		return nil
	}
	return fromDDM(lat, lon)
}

func splitDDM(dir, deg, mins, dec string) (coords.DDM, bool) {
	d, err := strconv.Atoi(deg)
	if err != nil {
		return coords.DDM{}, false
	}
	mi, err := strconv.Atoi(mins)
	if err != nil {
		return coords.DDM{}, false
	}
	minutes, err := coords.MinutesFromParts(mi, dec)
	if err != nil {
		return coords.DDM{}, false
	}
	return coords.DDM{Direction: dir, Degrees: d, Minutes: minutes}, true
}

func secondsDDM(dir, deg, mins, sec string) (coords.DDM, bool) {
	d, err := strconv.Atoi(deg)
	if err != nil {
		return coords.DDM{}, false
	}
	minutes, err := strconv.ParseFloat(strings.Replace(mins, ",", ".", 1), 64)
	if err != nil {
		return coords.DDM{}, false
	}
	if sec != "" {
		s, err := strconv.ParseFloat(strings.Replace(sec, ",", ".", 1), 64)
		if err != nil || s >= 60 {
			return coords.DDM{}, false
		}
		minutes += s / 60
	}
	minutes = math.Round(minutes*1000) / 1000
	return coords.DDM{Direction: dir, Degrees: d, Minutes: minutes}, true
}

// twoLineDetector reads an N line followed by an E line and takes the first
// three integer runs of each as degrees, minutes and decimal-of-minutes.
type twoLineDetector struct{}

var digitRunRe = regexp.MustCompile(`\d+`)

func (twoLineDetector) Name() string { return "two_line" }

func (twoLineDetector) QuickCheck(upper string) bool {
	return strings.Contains(upper, "\n") && hasHemispheres(upper)
}

func (twoLineDetector) Detect(text string) *Result {
	lines := strings.Split(strings.ToUpper(text), "\n")
	for i := 0; i+1 < len(lines); i++ {
		latLine := strings.TrimSpace(lines[i])
		lonLine := strings.TrimSpace(lines[i+1])
		if !strings.HasPrefix(latLine, "N") && !strings.HasPrefix(latLine, "S") {
			continue
		}
		if !strings.HasPrefix(lonLine, "E") && !strings.HasPrefix(lonLine, "W") {
			continue
		}

		lat, ok := lineDDM(latLine)
		if !ok {
			continue
		}
		lon, ok := lineDDM(lonLine)
		if !ok {
			continue
		}
		if r := fromDDM(lat, lon); r != nil {
			return r
		}
	}
	return nil
}

func lineDDM(line string) (coords.DDM, bool) {
	runs := digitRunRe.FindAllString(line[1:], 3)
	if len(runs) < 3 {
		return coords.DDM{}, false
	}
	return splitDDM(line[:1], runs[0], runs[1], runs[2])
}

// builtin is the fixed trial order. Most specific conventions come first so
// that loosely matching detectors cannot shadow them.
var builtin = []Detector{
	newGrok("roman", romanFormats, hasNordEst, buildRoman),
	newGrok("dms", dmsFormats, hasDegreeSign, buildSeconds),
	newGrok("nord_est_loose", nordEstLooseFormats, hasNordEst, buildSplitMinutes),
	newGrok("nord_est_spaced", nordEstSpacedFormats, hasNordEst, buildSplitMinutes),
	newGrok("flexible", flexibleFormats, hasHemispheres, buildSeconds),
	twoLineDetector{},
	newGrok("tab_specific", tabSpecificFormats, hasHemispheres, buildSplitMinutes),
	newGrok("standard", standardFormats, hasDegreeSign, buildSplitMinutes),
	newGrok("tab_dmm", tabDMMFormats, hasHemispheres, buildSplitMinutes),
	newGrok("fixed_block", fixedBlockFormats, hasNordEst, buildFixedBlock),
}
