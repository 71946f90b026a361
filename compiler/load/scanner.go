package load

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"regexp"
	"strings"

	"github.com/syssam/pumlgen"
)

// StatementKind classifies one logical diagram statement.
type StatementKind uint8

// Statement kinds.
const (
	KindIgnorable StatementKind = iota
	KindClassOpen
	KindAttribute
	KindClassClose
	KindRelationship
	KindUnrecognized
)

var kindNames = [...]string{
	KindIgnorable:    "ignorable",
	KindClassOpen:    "class-open",
	KindAttribute:    "attribute",
	KindClassClose:   "class-close",
	KindRelationship: "relationship",
	KindUnrecognized: "unrecognized",
}

func (k StatementKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("StatementKind(%d)", k)
}

// Statement is one classified logical statement of a diagram.
type Statement struct {
	Kind StatementKind
	// Line is the 1-based physical line the statement starts on.
	Line int
	// Text is the trimmed statement text.
	Text string
	// Class is the declared class of a class-open statement, or the
	// enclosing class of attribute and class-close statements.
	Class      string
	Abstract   bool
	Stereotype string
	// Block is set on class-open statements followed by a "{" body.
	Block bool
}

// maxLine bounds the length of a single physical line.
const maxLine = 1 << 20

const namePattern = `[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*`

var (
	headerRe  = regexp.MustCompile(`^(abstract\s+class|abstract|class|entity)\s+(` + namePattern + `)\s*(?:<<\s*([^>]*?)\s*>>)?\s*`)
	extendsRe = regexp.MustCompile(`^extends\s+(` + namePattern + `)\s*`)
	// separators between member groups: "--", "..", "==", "__", "-- title --".
	separatorRe = regexp.MustCompile(`^(?:[-.=_]{2,})(?:.*[-.=_]{2,})?$`)
)

// Scan splits diagram text into classified statements. Statements are
// produced lazily; the sequence stops after the first error.
//
// A physical line may carry several statements: a class body opened with
// "{" and closed with "}" on the same line yields a class-open, one
// attribute statement and a class-close.
func Scan(r io.Reader) iter.Seq2[Statement, error] {
	return func(yield func(Statement, error) bool) {
		s := &scanner{}
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)
		n := 0
		for sc.Scan() {
			n++
			stmts, err := s.line(n, sc.Text())
			for _, st := range stmts {
				if !yield(st, nil) {
					return
				}
			}
			if err != nil {
				yield(Statement{}, err)
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(Statement{}, fmt.Errorf("load: reading diagram: %w", err))
			return
		}
		if s.open != "" {
			yield(Statement{}, pumlgen.NewParseError(s.openLine, s.openText, pumlgen.ErrUnclosedClass, "class %q is never closed", s.open))
		}
	}
}

// scanner holds the state of one Scan invocation.
type scanner struct {
	// open is the class whose block is currently open.
	open      string
	openLine  int
	openText  string
	inComment bool
}

func (s *scanner) line(n int, raw string) ([]Statement, error) {
	text := strings.TrimSpace(s.stripComments(raw))
	if text == "" || isLineComment(text) || isDirective(text) {
		return []Statement{{Kind: KindIgnorable, Line: n, Text: strings.TrimSpace(raw)}}, nil
	}
	var out []Statement
	for text != "" {
		var (
			stmts []Statement
			rest  string
			err   error
		)
		if s.open != "" {
			stmts, rest, err = s.inBlock(n, text)
		} else {
			stmts, rest, err = s.topLevel(n, text)
		}
		out = append(out, stmts...)
		if err != nil {
			return out, err
		}
		text = strings.TrimSpace(rest)
	}
	return out, nil
}

// stripComments removes /' ... '/ block comments, which may span lines.
func (s *scanner) stripComments(raw string) string {
	var b strings.Builder
	for raw != "" {
		if s.inComment {
			i := strings.Index(raw, "'/")
			if i < 0 {
				return b.String()
			}
			raw = raw[i+2:]
			s.inComment = false
			continue
		}
		i := strings.Index(raw, "/'")
		if i < 0 {
			b.WriteString(raw)
			break
		}
		b.WriteString(raw[:i])
		b.WriteByte(' ')
		raw = raw[i+2:]
		s.inComment = true
	}
	return b.String()
}

func (s *scanner) inBlock(n int, text string) ([]Statement, string, error) {
	if text[0] == '}' {
		st := Statement{Kind: KindClassClose, Line: n, Text: "}", Class: s.open}
		s.open = ""
		return []Statement{st}, text[1:], nil
	}
	if m := headerRe.FindStringSubmatch(text); m != nil && m[1] != "abstract" {
		return nil, "", pumlgen.NewParseError(n, text, pumlgen.ErrNestedClass, "class %q opened inside class %q", m[2], s.open)
	}
	stmt, rest := text, ""
	if i := closingBrace(text); i >= 0 {
		stmt, rest = strings.TrimSpace(text[:i]), text[i:]
	}
	if isLineComment(stmt) || separatorRe.MatchString(stmt) {
		return []Statement{{Kind: KindIgnorable, Line: n, Text: stmt, Class: s.open}}, rest, nil
	}
	return []Statement{{Kind: KindAttribute, Line: n, Text: stmt, Class: s.open}}, rest, nil
}

func (s *scanner) topLevel(n int, text string) ([]Statement, string, error) {
	if text[0] == '}' {
		return nil, "", pumlgen.NewParseError(n, text, pumlgen.ErrUnmatchedClose, "no class is open")
	}
	m := headerRe.FindStringSubmatchIndex(text)
	if m == nil {
		kind := KindUnrecognized
		if isRelationship(text) {
			kind = KindRelationship
		}
		return []Statement{{Kind: kind, Line: n, Text: text}}, "", nil
	}
	var (
		keyword = text[m[2]:m[3]]
		name    = text[m[4]:m[5]]
		rest    = text[m[1]:]
		open    = Statement{
			Kind:     KindClassOpen,
			Line:     n,
			Text:     strings.TrimSpace(text[:m[1]]),
			Class:    name,
			Abstract: strings.HasPrefix(keyword, "abstract"),
		}
	)
	if m[6] >= 0 {
		open.Stereotype = text[m[6]:m[7]]
	}
	stmts := []Statement{open}
	if e := extendsRe.FindStringSubmatch(rest); e != nil {
		stmts = append(stmts, Statement{Kind: KindRelationship, Line: n, Text: name + " --|> " + e[1]})
		rest = rest[len(e[0]):]
	}
	switch {
	case rest == "":
	case rest[0] == '{':
		stmts[0].Block = true
		stmts[0].Text += " {"
		s.open, s.openLine, s.openText = name, n, text
		return stmts, rest[1:], nil
	case isRelationship(name + " " + rest):
		stmts = append(stmts, Statement{Kind: KindRelationship, Line: n, Text: name + " " + rest})
	default:
		stmts = append(stmts, Statement{Kind: KindUnrecognized, Line: n, Text: rest})
	}
	return stmts, "", nil
}

// closingBrace returns the index of the first "}" that is not balanced by
// a "{" earlier in text, ignoring quoted sections. It returns -1 if none.
func closingBrace(text string) int {
	depth, quoted := 0, false
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == '}':
			return i
		}
	}
	return -1
}

func isLineComment(text string) bool {
	return strings.HasPrefix(text, "'") || strings.HasPrefix(text, "//")
}

func isDirective(text string) bool {
	return strings.HasPrefix(text, "@startuml") || strings.HasPrefix(text, "@enduml")
}
