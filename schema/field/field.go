package field

import (
	"fmt"
	"strings"
)

// TypeUnspecified is the declared type recorded for attributes written
// without a type separator.
const TypeUnspecified = "unspecified"

// Visibility is the informational access marker of an attribute.
type Visibility uint8

// Visibility markers.
const (
	Unspecified Visibility = iota
	Public
	Private
	Protected
	Package
)

var visibilityNames = [...]string{
	Unspecified: "",
	Public:      "public",
	Private:     "private",
	Protected:   "protected",
	Package:     "package",
}

// String returns the visibility name, empty when unspecified.
func (v Visibility) String() string {
	if int(v) < len(visibilityNames) {
		return visibilityNames[v]
	}
	return fmt.Sprintf("Visibility(%d)", v)
}

// Symbol returns the PlantUML marker of the visibility.
func (v Visibility) Symbol() string {
	switch v {
	case Public:
		return "+"
	case Private:
		return "-"
	case Protected:
		return "#"
	case Package:
		return "~"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Visibility) UnmarshalText(b []byte) error {
	for i, name := range visibilityNames {
		if name == string(b) {
			*v = Visibility(i)
			return nil
		}
	}
	return fmt.Errorf("field: unknown visibility %q", b)
}

// VisibilityOf maps a leading marker byte to a Visibility.
func VisibilityOf(marker byte) (Visibility, bool) {
	switch marker {
	case '+':
		return Public, true
	case '-':
		return Private, true
	case '#':
		return Protected, true
	case '~':
		return Package, true
	}
	return Unspecified, false
}

// collection wrappers recognized around an element type.
var wrappers = []string{"List", "Set", "Collection", "Array", "Iterable", "Seq", "Vector"}

// Collection reports whether a declared type denotes a multi-valued
// attribute and returns its element type. Recognized forms are "T[]",
// "T[*]", "T[n]" and wrapping keywords such as "List<T>" or "Set<T>".
func Collection(typ string) (elem string, ok bool) {
	typ = strings.TrimSpace(typ)
	if i := strings.LastIndexByte(typ, '['); i > 0 && strings.HasSuffix(typ, "]") {
		return strings.TrimSpace(typ[:i]), true
	}
	open := strings.IndexByte(typ, '<')
	if open <= 0 || !strings.HasSuffix(typ, ">") {
		return "", false
	}
	wrapper := strings.TrimSpace(typ[:open])
	for _, w := range wrappers {
		if strings.EqualFold(wrapper, w) {
			return strings.TrimSpace(typ[open+1 : len(typ)-1]), true
		}
	}
	return "", false
}
