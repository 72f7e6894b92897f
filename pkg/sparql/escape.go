package sparql

import (
	"strings"
	"time"
)

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeString renders s as a quoted SPARQL string literal.
func EscapeString(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

// EscapeURI renders uri inside angle brackets. Characters that would break
// out of the IRI ref are stripped rather than escaped, matching the
// conservative behavior of the stores we target.
func EscapeURI(uri string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
			return -1
		}
		if r <= 0x20 {
			return -1
		}
		return r
	}, uri)
	return "<" + cleaned + ">"
}

// EscapeDateTime renders t as an xsd:dateTime typed literal in UTC.
func EscapeDateTime(t time.Time) string {
	return `"` + t.UTC().Format(time.RFC3339) + `"^^xsd:dateTime`
}
