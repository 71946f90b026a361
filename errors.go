package pumlgen

import (
	"errors"
	"fmt"
	"strings"
)

// Structural errors. Each one aborts the whole parse and is reported
// wrapped in a *ParseError carrying the offending line.
var (
	// ErrUnmatchedClose is returned for a "}" with no open class block.
	ErrUnmatchedClose = errors.New("pumlgen: unmatched class close")

	// ErrNestedClass is returned when a class is opened while another is still open.
	ErrNestedClass = errors.New("pumlgen: nested class declaration")

	// ErrUnclosedClass is returned when the input ends where a class close was expected.
	ErrUnclosedClass = errors.New("pumlgen: class block not closed")

	// ErrDuplicateClass is returned when a class name is declared twice.
	ErrDuplicateClass = errors.New("pumlgen: duplicate class")

	// ErrDuplicateAttribute is returned for a repeated attribute name in strict mode.
	ErrDuplicateAttribute = errors.New("pumlgen: duplicate attribute")

	// ErrUnknownArrow is returned for a relationship arrow outside the supported table.
	ErrUnknownArrow = errors.New("pumlgen: unrecognized arrow")

	// ErrUnknownMultiplicity is returned for a multiplicity token outside the supported grammar.
	ErrUnknownMultiplicity = errors.New("pumlgen: unrecognized multiplicity")

	// ErrDanglingReference is returned when a relationship names an undeclared class.
	ErrDanglingReference = errors.New("pumlgen: dangling reference")

	// ErrInheritanceCycle is returned when parent references form a cycle.
	ErrInheritanceCycle = errors.New("pumlgen: inheritance cycle")
)

// ParseError is a fatal diagnostic tied to a line of the diagram.
type ParseError struct {
	Line    int    // 1-based line number, 0 if unknown.
	Text    string // Raw statement text.
	Err     error  // One of the structural sentinel errors.
	Message string // Additional detail, e.g. the offending token.
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("pumlgen: parse error")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Text)
	}
	return b.String()
}

// Unwrap returns the structural sentinel error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(line int, text string, err error, format string, args ...any) *ParseError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &ParseError{
		Line:    line,
		Text:    strings.TrimSpace(text),
		Err:     err,
		Message: msg,
	}
}

// IsParseError reports whether the error is a ParseError.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var e *ParseError
	return errors.As(err, &e)
}

// LineOf returns the line number carried by a ParseError in the chain, or 0.
func LineOf(err error) int {
	var e *ParseError
	if errors.As(err, &e) {
		return e.Line
	}
	return 0
}
