package formula

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"geopuzzle/internal/coords"
)

// ErrMalformedFormula is returned when no latitude/longitude clause pair can
// be found in the formula.
var ErrMalformedFormula = errors.New("malformed formula")

// clauseRe splits a compacted formula into two clauses of the form
// <dir><degrees>°<space><minutes>.<decimals>.
var clauseRe = regexp.MustCompile(`^\s*([NSns])\s*([^\s°]+)\s*°(\s*)([^\s.]+)\s*\.\s*(\S+)` +
	`\s+([EWew])\s*([^\s°]+)\s*°(\s*)([^\s.]+)\s*\.\s*(\S+)\s*$`)

var operatorSpaceRe = regexp.MustCompile(`\s*([+\-*/])\s*`)

// Part is one resolved component of a coordinate.
type Part struct {
	Raw    string `json:"raw"`
	Value  Value  `json:"value"`
	Status Status `json:"status"`
}

// Coordinate is one resolved clause.
type Coordinate struct {
	Direction string `json:"direction"`
	Degrees   Part   `json:"degrees"`
	Minutes   Part   `json:"minutes"`
	Decimals  Part   `json:"decimals"`
	Status    Status `json:"status"`
	Text      string `json:"text"`
}

// Result is the outcome of resolving a formula.
type Result struct {
	Formula     string                 `json:"formula"`
	Latitude    Coordinate             `json:"latitude"`
	Longitude   Coordinate             `json:"longitude"`
	Status      Status                 `json:"status"`
	Coordinates string                 `json:"coordinates"`
	Missing     []string               `json:"missing,omitempty"`
	Decimal     *coords.Decimal        `json:"decimal,omitempty"`
	Distance    *coords.DistanceResult `json:"distance,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
}

type options struct {
	originLat, originLon string
}

// Option configures Resolve.
type Option func(*options)

// WithOrigin requests a distance from the given DDM origin when the formula
// resolves completely.
func WithOrigin(lat, lon string) Option {
	return func(o *options) {
		o.originLat, o.originLon = lat, lon
	}
}

// Resolve substitutes vars into formula and evaluates every part it can.
// Evaluation problems never fail the call; they surface as part statuses.
func Resolve(formula string, vars map[string]int, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m := clauseRe.FindStringSubmatch(compact(formula))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFormula, formula)
	}

	r := &resolver{vars: normaliseVars(vars), missing: map[string]bool{}}
	lat := r.coordinate(strings.ToUpper(m[1]), m[2], m[3], m[4], m[5], 2)
	lon := r.coordinate(strings.ToUpper(m[6]), m[7], m[8], m[9], m[10], 3)

	res := &Result{
		Formula:     formula,
		Latitude:    lat,
		Longitude:   lon,
		Status:      Worst(lat.Status, lon.Status),
		Coordinates: lat.Text + " " + lon.Text,
		Missing:     r.missingLetters(),
	}

	if res.Status == StatusComplete {
		res.enrich(o)
	}
	return res, nil
}

// Numeric reports whether every part of the coordinate evaluated to a number.
func (c Coordinate) Numeric() bool {
	return c.Degrees.Value.IsResolved() && c.Minutes.Value.IsResolved() && c.Decimals.Value.IsResolved()
}

// enrich attaches decimal degrees and the optional distance. Both are best effort.
func (res *Result) enrich(o options) {
	if !res.Latitude.Numeric() || !res.Longitude.Numeric() {
		res.Warnings = append(res.Warnings, "decimal conversion skipped: unevaluated expression in "+res.Coordinates)
		return
	}
	d := coords.ToDecimal(res.Latitude.Text, res.Longitude.Text)
	if !d.Complete() {
		res.Warnings = append(res.Warnings, "decimal conversion failed for "+res.Coordinates)
		return
	}
	res.Decimal = &d

	if o.originLat == "" && o.originLon == "" {
		return
	}
	dist, err := coords.Distance(o.originLat, o.originLon, res.Latitude.Text, res.Longitude.Text)
	if err != nil {
		res.Warnings = append(res.Warnings, "distance: "+err.Error())
		return
	}
	res.Distance = &dist
}

// Letters lists the distinct variables used by formula, sorted.
func Letters(formula string) ([]string, error) {
	m := clauseRe.FindStringSubmatch(compact(formula))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFormula, formula)
	}
	seen := map[string]bool{}
	for _, i := range []int{2, 4, 5, 7, 9, 10} {
		for _, c := range m[i] {
			if isVariable(c) {
				seen[string(c)] = true
			}
		}
	}
	return sortedKeys(seen), nil
}

type resolver struct {
	vars    map[string]int
	missing map[string]bool
}

func (r *resolver) coordinate(dir, deg, sep, mins, dec string, degWidth int) Coordinate {
	if isDigits(deg) {
		degWidth = len(deg)
	}

	c := Coordinate{
		Direction: dir,
		Degrees:   r.part(deg),
		Minutes:   r.part(mins),
		Decimals:  r.part(dec),
	}
	c.Status = Worst(c.Degrees.Status, c.Minutes.Status, c.Decimals.Status)
	c.Text = dir + pad(c.Degrees.Value, degWidth) + "°" + sep +
		pad(c.Minutes.Value, 2) + "." + pad(c.Decimals.Value, 3)
	return c
}

func (r *resolver) part(raw string) Part {
	v := r.resolve(raw)
	return Part{Raw: raw, Value: v, Status: v.Status()}
}

func (r *resolver) resolve(raw string) Value {
	switch {
	case isDigits(raw):
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Symbolic(raw)
		}
		return Resolved(n)

	case strings.ContainsAny(raw, "()"):
		segments, ok := splitGroups(raw)
		if !ok {
			// Operators outside the parentheses: treat the whole part as one expression.
			return r.group("(" + raw + ")")
		}
		if len(segments) == 1 {
			return r.segment(segments[0])
		}
		return r.concat(segments)

	default:
		return r.bare(raw)
	}
}

func (r *resolver) segment(s string) Value {
	if strings.HasPrefix(s, "(") {
		return r.group(s)
	}
	if isDigits(s) {
		return r.resolve(s)
	}
	return r.bare(s)
}

// concat resolves groups written side by side, e.g. (8/4)(27/9)(2x2x2) = 238.
func (r *resolver) concat(segments []string) Value {
	var b strings.Builder
	resolved := true
	for _, s := range segments {
		v := r.segment(s)
		n, ok := v.Int()
		switch {
		case ok && n < 0:
			return v
		case ok && isDigits(s):
			b.WriteString(s)
		case ok:
			b.WriteString(strconv.Itoa(n))
		default:
			resolved = false
			b.WriteString(v.String())
		}
	}

	if !resolved {
		return Symbolic(b.String())
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return Symbolic(b.String())
	}
	return Resolved(n)
}

// bare resolves a part with letters but no parentheses. When none of its
// letters is known the part is returned unchanged. Lowercase x is only a
// multiplication sign inside parentheses; here it is neither an operator nor
// a variable, so "2x3" stays symbolic and its part is partial.
func (r *resolver) bare(raw string) Value {
	sub, substituted, unresolved := r.substitute(raw)
	if unresolved {
		if !substituted {
			return Symbolic(raw)
		}
		return Symbolic(sub)
	}
	n, err := EvalInt(sub)
	if err != nil {
		return Symbolic(sub)
	}
	return Resolved(n)
}

// group resolves one parenthesised expression. x is multiplication.
func (r *resolver) group(g string) Value {
	inner := strings.TrimSuffix(strings.TrimPrefix(g, "("), ")")
	expr := strings.ReplaceAll(inner, "x", "*")

	sub, _, unresolved := r.substitute(expr)
	if unresolved {
		return Symbolic("(" + sub + ")")
	}
	n, err := EvalInt(sub)
	if err != nil {
		return Symbolic("(" + sub + ")")
	}
	return Resolved(n)
}

func (r *resolver) substitute(s string) (out string, substituted, unresolved bool) {
	var b strings.Builder
	for _, c := range s {
		if !isVariable(c) {
			b.WriteRune(c)
			continue
		}
		if v, ok := r.vars[string(c)]; ok {
			b.WriteString(strconv.Itoa(v))
			substituted = true
			continue
		}
		b.WriteRune(c)
		unresolved = true
		r.missing[string(c)] = true
	}
	return b.String(), substituted, unresolved
}

func (r *resolver) missingLetters() []string {
	if len(r.missing) == 0 {
		return nil
	}
	return sortedKeys(r.missing)
}

// splitGroups cuts a part into top-level parenthesised groups and runs of
// letters or digits. It fails on unbalanced parentheses or on any character
// outside a group that is not a letter or digit.
func splitGroups(s string) ([]string, bool) {
	var out []string
	depth, start := 0, -1
	runStart := -1

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '(':
			if depth == 0 {
				if runStart >= 0 {
					out = append(out, s[runStart:i])
					runStart = -1
				}
				start = i
			}
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, false
			}
			if depth == 0 {
				out = append(out, s[start:i+1])
			}
		case depth > 0:
		case isDigit(c) || isVariable(rune(c)):
			if runStart < 0 {
				runStart = i
			}
		default:
			return nil, false
		}
	}
	if depth != 0 {
		return nil, false
	}
	if runStart >= 0 {
		out = append(out, s[runStart:])
	}
	return out, true
}

// compact removes whitespace inside parentheses and around operators, so
// that the clause pattern only sees significant spaces.
func compact(formula string) string {
	s := operatorSpaceRe.ReplaceAllString(formula, "$1")

	var b strings.Builder
	depth := 0
	for _, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ' ', '\t':
			if depth > 0 {
				continue
			}
		}
		b.WriteRune(c)
	}
	return b.String()
}

func pad(v Value, width int) string {
	if n, ok := v.Int(); ok {
		return fmt.Sprintf("%0*d", width, n)
	}
	return v.String()
}

func normaliseVars(vars map[string]int) map[string]int {
	out := make(map[string]int, len(vars))
	for k, v := range vars {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
