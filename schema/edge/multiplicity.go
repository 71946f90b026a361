package edge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/pumlgen"
)

// Unbounded is the upper bound of a "many" multiplicity.
const Unbounded = -1

// MultKind classifies a normalized multiplicity.
type MultKind uint8

// Multiplicity kinds.
const (
	MultExactlyOne MultKind = iota + 1
	MultZeroOrOne
	MultMany
	MultExact
	MultRange
)

// Multiplicity is a normalized cardinality on one end of a relationship.
type Multiplicity struct {
	Kind MultKind `json:"kind" msgpack:"kind"`
	Lo   int      `json:"lo" msgpack:"lo"`
	Hi   int      `json:"hi" msgpack:"hi"` // Unbounded for "many".
}

// ExactlyOne returns the "1" multiplicity.
func ExactlyOne() Multiplicity { return Multiplicity{Kind: MultExactlyOne, Lo: 1, Hi: 1} }

// ZeroOrOne returns the "0..1" multiplicity.
func ZeroOrOne() Multiplicity { return Multiplicity{Kind: MultZeroOrOne, Lo: 0, Hi: 1} }

// Many returns the "*" multiplicity.
func Many() Multiplicity { return Multiplicity{Kind: MultMany, Lo: 0, Hi: Unbounded} }

// Exact returns an exact-count multiplicity. Exact(1) is ExactlyOne.
func Exact(n int) Multiplicity {
	if n == 1 {
		return ExactlyOne()
	}
	return Multiplicity{Kind: MultExact, Lo: n, Hi: n}
}

// Range returns a lo..hi multiplicity, normalized to the named kinds
// where one applies. hi may be Unbounded.
func Range(lo, hi int) Multiplicity {
	switch {
	case lo == hi:
		return Exact(lo)
	case lo == 0 && hi == 1:
		return ZeroOrOne()
	case lo == 0 && hi == Unbounded:
		return Many()
	default:
		return Multiplicity{Kind: MultRange, Lo: lo, Hi: hi}
	}
}

// IsMany reports whether more than one counterpart instance is allowed.
func (m Multiplicity) IsMany() bool {
	return m.Hi == Unbounded || m.Hi > 1
}

// IsSingular reports whether at most one counterpart instance is allowed.
func (m Multiplicity) IsSingular() bool { return !m.IsMany() }

// IsZero reports whether the multiplicity was never set.
func (m Multiplicity) IsZero() bool { return m.Kind == 0 }

// Optional reports whether zero counterpart instances are allowed.
func (m Multiplicity) Optional() bool { return m.Lo == 0 }

// String returns the canonical PlantUML spelling.
func (m Multiplicity) String() string {
	switch m.Kind {
	case MultExactlyOne:
		return "1"
	case MultZeroOrOne:
		return "0..1"
	case MultMany:
		return "*"
	case MultExact:
		return strconv.Itoa(m.Lo)
	case MultRange:
		if m.Hi == Unbounded {
			return strconv.Itoa(m.Lo) + "..*"
		}
		return strconv.Itoa(m.Lo) + ".." + strconv.Itoa(m.Hi)
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Multiplicity) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Multiplicity) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = Multiplicity{}
		return nil
	}
	v, err := ParseMultiplicity(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMultiplicity parses a multiplicity token such as "1", "0..1", "*",
// "1..*", "n" or "many". Surrounding quotes are ignored. Unrecognized
// tokens return an error wrapping pumlgen.ErrUnknownMultiplicity.
func ParseMultiplicity(s string) (Multiplicity, error) {
	tok := strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
	if tok == "" {
		return Multiplicity{}, fmt.Errorf("%w: empty token", pumlgen.ErrUnknownMultiplicity)
	}
	if isManyWord(tok) {
		return Many(), nil
	}
	if lo, hi, ok := strings.Cut(tok, ".."); ok {
		l, err := bound(lo, false)
		if err != nil {
			return Multiplicity{}, fmt.Errorf("%w: %q", pumlgen.ErrUnknownMultiplicity, s)
		}
		h, err := bound(hi, true)
		if err != nil {
			return Multiplicity{}, fmt.Errorf("%w: %q", pumlgen.ErrUnknownMultiplicity, s)
		}
		if h != Unbounded && l > h {
			return Multiplicity{}, fmt.Errorf("%w: %q has lower bound above upper bound", pumlgen.ErrUnknownMultiplicity, s)
		}
		return Range(l, h), nil
	}
	n, err := bound(tok, false)
	if err != nil {
		return Multiplicity{}, fmt.Errorf("%w: %q", pumlgen.ErrUnknownMultiplicity, s)
	}
	return Exact(n), nil
}

func isManyWord(s string) bool {
	switch strings.ToLower(s) {
	case "*", "n", "m", "many":
		return true
	}
	return false
}

// bound parses one side of a range. Only an upper bound may be unbounded.
func bound(s string, upper bool) (int, error) {
	s = strings.TrimSpace(s)
	if upper && isManyWord(s) {
		return Unbounded, nil
	}
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, fmt.Errorf("invalid bound %q", s)
	}
	return strconv.Atoi(s)
}
