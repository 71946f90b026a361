package load

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/syssam/pumlgen"
	"github.com/syssam/pumlgen/schema/edge"
)

// Relation is a relationship statement as written in the diagram, before
// cardinality resolution.
type Relation struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Kind   edge.Kind `json:"kind"`
	// Arrow is the canonical arrow token.
	Arrow string `json:"arrow"`
	// SourceMult and TargetMult are nil when the diagram omits them.
	SourceMult *edge.Multiplicity `json:"source_mult,omitempty"`
	TargetMult *edge.Multiplicity `json:"target_mult,omitempty"`
	// Whole is the whole endpoint of an aggregation or composition.
	Whole edge.Side `json:"whole,omitempty"`
	Label string    `json:"label,omitempty"`
	Line  int       `json:"line"`
	Text  string    `json:"-"`
}

// relationRe matches: Source ["mult"] ARROW ["mult"] Target [: label].
var relationRe = regexp.MustCompile(`^(` + namePattern + `)\s*(?:"([^"]*)")?\s*([^\s"]+?)\s*(?:"([^"]*)")?\s*(` + namePattern + `)\s*(?::\s*(.*))?$`)

// isRelationship reports whether text has the shape of a relationship
// statement. The arrow token itself is validated by ParseRelation. A token
// glued to the words around it ("title Class-Diagram") only counts when it
// looks like an arrow at both ends.
func isRelationship(text string) bool {
	m := relationRe.FindStringSubmatchIndex(text)
	if m == nil {
		return false
	}
	start, end := m[6], m[7]
	token := text[start:end]
	if !strings.ContainsAny(token, "-.=") {
		return false
	}
	bounded := isBoundary(text[start-1]) && end < len(text) && isBoundary(text[end])
	return bounded || arrowShaped(token)
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '"'
}

// arrowShaped reports whether both ends of token are arrow heads, tails or
// line characters.
func arrowShaped(token string) bool {
	return strings.IndexByte("<|o*}-.", token[0]) >= 0 &&
		strings.IndexByte(">|o*{-.", token[len(token)-1]) >= 0
}

// ParseRelation parses a relationship statement. Inheritance is normalized
// so that Source is the child and Target the parent, whatever the visual
// direction of the arrow.
func ParseRelation(st Statement, opts ...Option) (*Relation, error) {
	cfg := newConfig(opts)
	idx := relationRe.FindStringSubmatchIndex(st.Text)
	if idx == nil {
		return nil, pumlgen.NewParseError(st.Line, st.Text, pumlgen.ErrUnknownArrow, "no relationship arrow found")
	}
	group := func(i int) (string, bool) {
		if idx[2*i] < 0 {
			return "", false
		}
		return st.Text[idx[2*i]:idx[2*i+1]], true
	}
	var (
		src, _       = group(1)
		token, _     = group(3)
		dst, _       = group(5)
		label, _     = group(6)
		feetL, feetR *edge.Multiplicity
	)
	arrow, ok := edge.LookupArrow(token)
	if !ok && cfg.crowsFoot {
		if l, r, found := edge.CrowsFoot(token); found {
			arrow, ok = edge.Arrow{Token: edge.Normalize(token), Kind: edge.Association}, true
			feetL, feetR = &l, &r
		}
	}
	if !ok {
		return nil, pumlgen.NewParseError(st.Line, st.Text, pumlgen.ErrUnknownArrow, "arrow %q", token)
	}
	rel := &Relation{
		Source: src,
		Target: dst,
		Kind:   arrow.Kind,
		Arrow:  arrow.Token,
		Whole:  arrow.Whole,
		Label:  cleanLabel(label),
		Line:   st.Line,
		Text:   st.Text,
	}
	var err error
	if rel.SourceMult, err = multiplicity(st, group, 2, feetL); err != nil {
		return nil, err
	}
	if rel.TargetMult, err = multiplicity(st, group, 4, feetR); err != nil {
		return nil, err
	}
	if arrow.Reversed {
		rel.Source, rel.Target = rel.Target, rel.Source
		rel.SourceMult, rel.TargetMult = rel.TargetMult, rel.SourceMult
		rel.Arrow = "--|>"
	}
	return rel, nil
}

// multiplicity parses an optional quoted token, falling back to the
// multiplicity implied by a crow's-foot end marker.
func multiplicity(st Statement, group func(int) (string, bool), i int, fallback *edge.Multiplicity) (*edge.Multiplicity, error) {
	token, ok := group(i)
	if !ok {
		return fallback, nil
	}
	mult, err := edge.ParseMultiplicity(token)
	if err != nil {
		return nil, pumlgen.NewParseError(st.Line, st.Text, pumlgen.ErrUnknownMultiplicity, "token %q", token)
	}
	return &mult, nil
}

// cleanLabel drops the direction markers PlantUML allows around labels.
func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "<"))
	s = strings.TrimSpace(strings.TrimSuffix(s, ">"))
	return strings.Trim(s, `"`)
}

func (r *Relation) String() string {
	var b strings.Builder
	b.WriteString(r.Source)
	if r.SourceMult != nil {
		fmt.Fprintf(&b, " %q", r.SourceMult.String())
	}
	b.WriteString(" " + r.Arrow)
	if r.TargetMult != nil {
		fmt.Fprintf(&b, " %q", r.TargetMult.String())
	}
	b.WriteString(" " + r.Target)
	if r.Label != "" {
		b.WriteString(" : " + r.Label)
	}
	return b.String()
}
