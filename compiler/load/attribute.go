package load

import (
	"errors"
	"regexp"
	"strings"

	"github.com/syssam/pumlgen"
	"github.com/syssam/pumlgen/schema/field"
)

// ErrNotAttribute is returned by ParseAttribute for lines inside a class
// body that do not declare an attribute, such as method signatures.
var ErrNotAttribute = errors.New("load: not an attribute")

// Attribute is an attribute line of a class body.
type Attribute struct {
	Name string `json:"name"`
	// Type is the declared type, raw as written, or field.TypeUnspecified.
	Type       string           `json:"type"`
	Visibility field.Visibility `json:"visibility,omitempty"`
	// Collection is set for multi-valued types such as "String[]" or
	// "List<Tag>"; Elem then holds the element type.
	Collection bool   `json:"collection,omitempty"`
	Elem       string `json:"elem,omitempty"`
	Static     bool   `json:"static,omitempty"`
	Line       int    `json:"line"`
}

var (
	identRe    = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	typeRe     = regexp.MustCompile(`^[A-Za-z_$][\w$.]*(?:<[^<>]*(?:<[^<>]*>[^<>]*)*>)?(?:\[[^\]]*\])*\??$`)
	modifierRe = regexp.MustCompile(`\{(static|classifier|abstract|field|method)\}`)
)

// ParseAttribute parses one attribute line of class. Attributes written
// without a type separator get field.TypeUnspecified and a warning.
func ParseAttribute(line, class string) (*Attribute, *pumlgen.Diagnostic, error) {
	text := strings.TrimSpace(line)
	a := &Attribute{}
	for _, m := range modifierRe.FindAllStringSubmatch(text, -1) {
		switch m[1] {
		case "method":
			return nil, nil, ErrNotAttribute
		case "static", "classifier":
			a.Static = true
		}
	}
	text = strings.TrimSpace(modifierRe.ReplaceAllString(text, ""))
	if strings.ContainsAny(text, "()") {
		return nil, nil, ErrNotAttribute
	}
	if text != "" {
		if v, ok := field.VisibilityOf(text[0]); ok {
			a.Visibility = v
			text = strings.TrimSpace(text[1:])
		}
	}
	var diag *pumlgen.Diagnostic
	switch name, typ, ok := strings.Cut(text, ":"); {
	case ok:
		// drop an initial value: "count : int = 0".
		typ, _, _ = strings.Cut(typ, "=")
		a.Name, a.Type = strings.TrimSpace(name), strings.TrimSpace(typ)
		if a.Type == "" {
			return nil, nil, ErrNotAttribute
		}
	case strings.ContainsAny(text, " \t"):
		// Java style "Type name".
		fields := strings.Fields(text)
		if len(fields) != 2 || !typeRe.MatchString(fields[0]) {
			return nil, nil, ErrNotAttribute
		}
		a.Type, a.Name = fields[0], fields[1]
	default:
		a.Name, a.Type = text, field.TypeUnspecified
		diag = &pumlgen.Diagnostic{
			Text:    strings.TrimSpace(line),
			Code:    pumlgen.UntypedAttribute,
			Message: "attribute " + class + "." + a.Name + " has no type",
		}
	}
	if !identRe.MatchString(a.Name) {
		return nil, nil, ErrNotAttribute
	}
	a.Elem, a.Collection = field.Collection(a.Type)
	return a, diag, nil
}
