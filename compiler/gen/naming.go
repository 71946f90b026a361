package gen

import (
	"go/token"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules = ruleset()
	title = cases.Title(language.English, cases.NoLower)
)

func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	for _, w := range []string{"ID", "URL", "UUID", "API", "HTTP", "SQL", "JSON"} {
		r.AddAcronym(w)
	}
	return r
}

// Plural returns the plural form of a class or field name.
func Plural(s string) string { return rules.Pluralize(s) }

// Singular returns the singular form of a name.
func Singular(s string) string { return rules.Singularize(s) }

// Snake converts a name to snake_case: "OrderLine" becomes "order_line"
// and "HTTPServer" becomes "http_server".
func Snake(s string) string {
	var (
		b     strings.Builder
		runes = []rune(s)
	)
	for i, r := range runes {
		if r == '-' || r == ' ' || r == '.' {
			r = '_'
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			next := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && next) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Pascal converts a snake_case or camelCase name to PascalCase.
func Pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' || r == '.' })
	for i, w := range words {
		if upper := strings.ToUpper(w); isAcronym(upper) {
			words[i] = upper
			continue
		}
		words[i] = title.String(w)
	}
	return strings.Join(words, "")
}

// Camel converts a name to camelCase: "OrderLine" becomes "orderLine" and
// "URL" becomes "url".
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return p
	}
	runes := []rune(p)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == len(runes):
		return strings.ToLower(p)
	case n > 1:
		// "HTTPServer" -> "httpServer"
		n--
	}
	return strings.ToLower(string(runes[:n])) + string(runes[n:])
}

func isAcronym(s string) bool {
	switch s {
	case "ID", "URL", "UUID", "API", "HTTP", "SQL", "JSON":
		return true
	}
	return false
}

// receiver returns a short identifier for a name that is safe to use as a
// Go or Java variable.
func receiver(s string) string {
	r := Camel(s)
	if token.Lookup(r).IsKeyword() || javaKeywords[r] {
		return "_" + r
	}
	return r
}

var javaKeywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true, "byte": true, "case": true,
	"catch": true, "char": true, "class": true, "const": true, "continue": true, "default": true,
	"do": true, "double": true, "else": true, "enum": true, "extends": true, "final": true,
	"finally": true, "float": true, "for": true, "goto": true, "if": true, "implements": true,
	"import": true, "instanceof": true, "int": true, "interface": true, "long": true, "native": true,
	"new": true, "package": true, "private": true, "protected": true, "public": true, "return": true,
	"short": true, "static": true, "super": true, "switch": true, "synchronized": true, "this": true,
	"throw": true, "throws": true, "transient": true, "try": true, "void": true, "volatile": true,
	"while": true,
}
