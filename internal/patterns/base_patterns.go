// Package patterns provides the grok-style pattern compiler used by the
// coordinate detectors.
// This file contains the base patterns for use with the Compiler.

package patterns

// BasePatterns defines reusable regex components for grok-style pattern composition.
// These are referenced in format patterns using {PATTERN_NAME} syntax.
// Text is upper-cased before matching, so letters here are upper case.
var BasePatterns = map[string]string{
	// Hemisphere letters.
	"LAT_DIR": `[NS]`,
	"LON_DIR": `[EW]`,

	// Degrees. Latitude is written with 1-2 digits, longitude with 1-3.
	"LAT_DEG": `\d{1,2}`,
	"LON_DEG": `\d{1,3}`,

	// Minutes and their decimal part.
	"MIN":    `\d{1,2}`,
	"DEC":    `\d{1,3}`,
	"DECSEP": `[.,]`,

	// Seconds, optionally fractional (e.g., 47 or 12.5).
	"SEC": `\d{1,2}(?:[.,]\d+)?`,

	// Unit markers. Both ASCII and typographic primes are accepted.
	"DEG_SIGN": `°`,
	"MIN_MARK": `['′’]`,
	"SEC_MARK": `["″”]|''`,
	"DEG_WORD": `(?:°|DEGREES?|DEG)`,

	// French-style hemisphere words used in many mystery listings.
	"NORD": `NORD`,
	"EST":  `EST`,

	// Roman numeral token.
	"ROMAN": `[IVXLCDM]+`,

	// Fixed-width digit blocks (DDMMmmm / DDDMMmmm).
	"LAT_BLOCK": `\d{7}`,
	"LON_BLOCK": `\d{6,8}`,

	// Horizontal whitespace only (no line breaks).
	"HS": `[\t ]`,
}
