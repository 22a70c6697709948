// Package coords converts geocaching coordinates between degrees-decimal-minutes
// (DDM) text and signed decimal degrees.
package coords

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DDM is a single coordinate half in degrees and decimal minutes.
// Degrees and minutes are never negative; the hemisphere is carried by Direction.
type DDM struct {
	Direction string  // N, S, E or W.
	Degrees   int     // Whole degrees.
	Minutes   float64 // Minutes including the decimal part.
}

// IsLatitude reports whether the direction is N or S.
func (d DDM) IsLatitude() bool {
	return d.Direction == "N" || d.Direction == "S"
}

// Decimal returns the signed decimal-degree value.
func (d DDM) Decimal() float64 {
	v := float64(d.Degrees) + d.Minutes/60.0
	if d.Direction == "S" || d.Direction == "W" {
		return -v
	}
	return v
}

// Valid checks the degree and minute ranges for the axis.
func (d DDM) Valid() bool {
	if d.Degrees < 0 || d.Minutes < 0 || d.Minutes >= 60 {
		return false
	}
	switch d.Direction {
	case "N", "S":
		return d.Decimal() >= -90 && d.Decimal() <= 90
	case "E", "W":
		return d.Decimal() >= -180 && d.Decimal() <= 180
	}
	return false
}

// String renders the canonical form, e.g. "N 48° 33.787'" or "E 006° 38.803'".
func (d DDM) String() string {
	width := 3
	if d.IsLatitude() {
		width = 2
	}
	return fmt.Sprintf("%s %0*d° %06.3f'", d.Direction, width, d.Degrees, d.Minutes)
}

// Decimal holds the result of a DDM to decimal conversion.
// A nil half means that half could not be parsed.
type Decimal struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Complete reports whether both halves were converted.
func (d Decimal) Complete() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// ddmHalfRe matches a direction letter, degrees and minutes. Degrees and minutes
// must be separated by a degree sign or whitespace.
var ddmHalfRe = regexp.MustCompile(`(?i)([NSEW])\s*(\d{1,3})(?:\s*°\s*|\s+)(\d{1,2}(?:[.,]\d+)?)`)

// ParseDDM parses a single DDM half such as "N48° 40.123" or "E 006° 38.803'".
func ParseDDM(s string) (DDM, bool) {
	m := ddmHalfRe.FindStringSubmatch(s)
	if m == nil {
		return DDM{}, false
	}

	deg, err := strconv.Atoi(m[2])
	if err != nil {
		return DDM{}, false
	}
	mins, err := strconv.ParseFloat(strings.Replace(m[3], ",", ".", 1), 64)
	if err != nil {
		return DDM{}, false
	}

	d := DDM{Direction: strings.ToUpper(m[1]), Degrees: deg, Minutes: mins}
	if !d.Valid() {
		return DDM{}, false
	}
	return d, true
}

// ToDecimal converts a DDM latitude and longitude to decimal degrees.
// Each half is parsed independently; an unparseable half is left nil.
func ToDecimal(ddmLat, ddmLon string) Decimal {
	var out Decimal
	if d, ok := ParseDDM(ddmLat); ok {
		v := d.Decimal()
		out.Latitude = &v
	}
	if d, ok := ParseDDM(ddmLon); ok {
		v := d.Decimal()
		out.Longitude = &v
	}
	return out
}

// FromDecimal converts signed decimal degrees back to DDM, rounding minutes to
// three decimals. isLat selects the N/S or E/W hemisphere letters.
func FromDecimal(v float64, isLat bool) DDM {
	dir := "E"
	if isLat {
		dir = "N"
	}
	if v < 0 {
		v = -v
		if isLat {
			dir = "S"
		} else {
			dir = "W"
		}
	}

	deg := int(v)
	mins := math.Round((v-float64(deg))*60*1000) / 1000
	if mins >= 60 {
		deg++
		mins -= 60
	}
	return DDM{Direction: dir, Degrees: deg, Minutes: mins}
}

// FormatLatitude renders a decimal latitude as DDM text.
func FormatLatitude(v float64) string {
	return FromDecimal(v, true).String()
}

// FormatLongitude renders a decimal longitude as DDM text.
func FormatLongitude(v float64) string {
	return FromDecimal(v, false).String()
}

// ParseDigitBlock decomposes a fixed-width digit block into degrees and minutes.
// Supported forms:
//   - DDMMmmm / DDDMMmmm (e.g., 4833787 = 48°33.787')
//   - DDMM.mmm / DDDMM.mmm (e.g., 4833.787)
//
// degDigits specifies how many digits are degrees (2 for lat, 3 for lon).
// Any digits after the two minute digits are the decimal part of the minutes.
func ParseDigitBlock(block string, degDigits int, dir string) (DDM, error) {
	whole, frac := block, ""
	if i := strings.IndexAny(block, ".,"); i >= 0 {
		whole, frac = block[:i], block[i+1:]
	} else if len(block) > degDigits+2 {
		whole, frac = block[:degDigits+2], block[degDigits+2:]
	}

	if len(whole) != degDigits+2 {
		return DDM{}, fmt.Errorf("digit block %q: want %d whole digits, got %d", block, degDigits+2, len(whole))
	}

	deg, err := strconv.Atoi(whole[:degDigits])
	if err != nil {
		return DDM{}, fmt.Errorf("digit block %q degrees: %w", block, err)
	}

	minStr := whole[degDigits:]
	if frac != "" {
		minStr += "." + frac
	}
	mins, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return DDM{}, fmt.Errorf("digit block %q minutes: %w", block, err)
	}

	d := DDM{Direction: dir, Degrees: deg, Minutes: mins}
	if !d.Valid() {
		return DDM{}, fmt.Errorf("digit block %q out of range", block)
	}
	return d, nil
}

// MinutesFromParts joins integer minutes and a decimal digit string, so that
// (33, "787") gives 33.787 and (33, "78") gives 33.78.
func MinutesFromParts(whole int, decimals string) (float64, error) {
	if decimals == "" {
		return float64(whole), nil
	}
	return strconv.ParseFloat(strconv.Itoa(whole)+"."+decimals, 64)
}
