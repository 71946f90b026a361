package edge

import (
	"regexp"
	"strings"
)

// Arrow describes one supported relationship arrow token.
type Arrow struct {
	// Token is the canonical arrow text, e.g. "--|>".
	Token string
	// Kind of the relationship the arrow declares.
	Kind Kind
	// Reversed is set for inheritance arrows that point from right to left
	// ("<|--"). The parser swaps the endpoints so the source is the child.
	Reversed bool
	// Whole is the endpoint playing the whole role for aggregation and
	// composition. The other endpoint is the part (child).
	Whole Side
}

// arrows holds the supported arrow table keyed by canonical token.
var arrows = map[string]Arrow{
	"--":   {Token: "--", Kind: Association},
	"-->":  {Token: "-->", Kind: Association},
	"<--":  {Token: "<--", Kind: Association},
	"o--":  {Token: "o--", Kind: Aggregation, Whole: SourceSide},
	"--o":  {Token: "--o", Kind: Aggregation, Whole: TargetSide},
	"*--":  {Token: "*--", Kind: Composition, Whole: SourceSide},
	"--*":  {Token: "--*", Kind: Composition, Whole: TargetSide},
	"<|--": {Token: "<|--", Kind: Inheritance, Reversed: true},
	"--|>": {Token: "--|>", Kind: Inheritance},
	"..>":  {Token: "..>", Kind: Dependency},
	"<..":  {Token: "<..", Kind: Dependency},
}

var (
	// direction hints and inline styles: "-left->", "-[#red]->", "-up[bold]-".
	hintRe   = regexp.MustCompile(`([-.])(?:\[[^\]]*\]|left|right|up|down|le|ri|do|l|r|u|d)+(?:\[[^\]]*\])*([-.])`)
	dashesRe = regexp.MustCompile(`-+`)
	dotsRe   = regexp.MustCompile(`\.+`)
)

// Normalize returns the canonical spelling of an arrow token. Direction
// hints are dropped and runs of dashes or dots collapse to two.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	for {
		next := hintRe.ReplaceAllString(token, "$1$2")
		if next == token {
			break
		}
		token = next
	}
	token = dashesRe.ReplaceAllString(token, "--")
	return dotsRe.ReplaceAllString(token, "..")
}

// LookupArrow returns the arrow for the given token. The token is
// normalized first.
func LookupArrow(token string) (Arrow, bool) {
	a, ok := arrows[Normalize(token)]
	return a, ok
}

// Arrows returns the canonical tokens of all supported arrows.
func Arrows() []string {
	tokens := make([]string, 0, len(arrows))
	for t := range arrows {
		tokens = append(tokens, t)
	}
	return tokens
}

// crow's-foot end markers, read from the outside of the line inwards.
var (
	leftFeet = map[string]Multiplicity{
		"||": ExactlyOne(),
		"|o": ZeroOrOne(),
		"o|": ZeroOrOne(),
		"}|": Range(1, Unbounded),
		"}o": Many(),
	}
	rightFeet = map[string]Multiplicity{
		"||": ExactlyOne(),
		"o|": ZeroOrOne(),
		"|o": ZeroOrOne(),
		"|{": Range(1, Unbounded),
		"o{": Many(),
	}
)

// CrowsFoot parses an entity-relationship arrow such as "||--o{" and
// returns the multiplicities its end markers declare.
func CrowsFoot(token string) (left, right Multiplicity, ok bool) {
	token = Normalize(token)
	var mid string
	switch {
	case strings.Contains(token, "--"):
		mid = "--"
	case strings.Contains(token, ".."):
		mid = ".."
	default:
		return Multiplicity{}, Multiplicity{}, false
	}
	l, r, found := strings.Cut(token, mid)
	if !found {
		return Multiplicity{}, Multiplicity{}, false
	}
	if left, ok = leftFeet[l]; !ok {
		return Multiplicity{}, Multiplicity{}, false
	}
	if right, ok = rightFeet[r]; !ok {
		return Multiplicity{}, Multiplicity{}, false
	}
	return left, right, true
}
