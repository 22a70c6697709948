package formula

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var assignSpaceRe = regexp.MustCompile(`\s*=\s*`)

// ParseVariables reads assignments written as "A=1, B=2" (commas, semicolons
// or whitespace between pairs). Names are upper-cased.
func ParseVariables(s string) (map[string]int, error) {
	vars := map[string]int{}
	pairs := strings.FieldsFunc(assignSpaceRe.ReplaceAllString(s, "="), func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("variable %q: missing '='", p)
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if len(name) != 1 || !isVariable(rune(name[0])) {
			return nil, fmt.Errorf("variable %q: name must be one letter", p)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		vars[name] = n
	}
	return vars, nil
}
