package pumlgen

import (
	"fmt"
	"strings"
)

// Code identifies the kind of a non-fatal diagnostic.
type Code string

// Quality warnings. They never stop parsing.
const (
	UntypedAttribute      Code = "untyped-attribute"
	UnrecognizedStatement Code = "unrecognized-statement"
	DuplicateAttribute    Code = "duplicate-attribute"
	MultipleInheritance   Code = "multiple-inheritance"
)

// Diagnostic is a single quality warning collected while parsing.
type Diagnostic struct {
	Line    int    `json:"line"`
	Text    string `json:"text,omitempty"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// String formats the diagnostic as "line N: [code] message".
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", d.Line)
	}
	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)
	return b.String()
}

// Diagnostics is the ordered list of warnings returned alongside a model.
type Diagnostics []Diagnostic

// Add appends a diagnostic.
func (ds *Diagnostics) Add(line int, text string, code Code, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Line:    line,
		Text:    strings.TrimSpace(text),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasCode reports whether any diagnostic has the given code.
func (ds Diagnostics) HasCode(code Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

// String returns one diagnostic per line.
func (ds Diagnostics) String() string {
	if len(ds) == 0 {
		return "no warnings"
	}
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
