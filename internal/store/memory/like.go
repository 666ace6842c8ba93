package memory

import (
	"regexp"
	"strings"
)

// like reports whether s matches a SQL LIKE pattern: % matches any run of characters,
// _ matches a single character and a backslash escapes the next character.
// Matching is case sensitive, as in PostgreSQL.
func like(pattern, s string) bool {
	var expr strings.Builder
	expr.WriteString(`(?s)^`)

	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			expr.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			expr.WriteString(`.*`)
		case r == '_':
			expr.WriteString(`.`)
		default:
			expr.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	expr.WriteString(`$`)

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
