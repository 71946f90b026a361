package load

import (
	"errors"
	"io"
	"strings"

	"github.com/syssam/pumlgen"
)

type (
	// Diagram is the raw result of parsing one diagram: classes in
	// declaration order, relationships in textual order and the warnings
	// collected along the way.
	Diagram struct {
		Classes     []*Class            `json:"classes"`
		Relations   []*Relation         `json:"relations"`
		Diagnostics pumlgen.Diagnostics `json:"diagnostics,omitempty"`
	}

	// Class is a class declaration with its attributes in encounter order.
	Class struct {
		Name       string       `json:"name"`
		Abstract   bool         `json:"abstract,omitempty"`
		Stereotype string       `json:"stereotype,omitempty"`
		Attributes []*Attribute `json:"attributes,omitempty"`
		Line       int          `json:"line"`
	}

	// Option configures Parse and ParseRelation.
	Option func(*config)

	config struct {
		strict    bool
		crowsFoot bool
	}
)

// WithStrictAttributes makes a duplicate attribute name within one class a
// fatal error. By default the later definition replaces the earlier one
// and a warning is recorded.
func WithStrictAttributes() Option {
	return func(c *config) { c.strict = true }
}

// WithCrowsFoot accepts entity-relationship arrows such as "||--o{" as
// associations whose end markers supply the multiplicities.
func WithCrowsFoot() Option {
	return func(c *config) { c.crowsFoot = true }
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Class returns the class with the given name, or nil.
func (d *Diagram) Class(name string) *Class {
	for _, c := range d.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Attribute returns the attribute with the given name, or nil.
func (c *Class) Attribute(name string) *Attribute {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Parse reads a diagram and returns its classes and relationships. The
// first structural error aborts the parse and no diagram is returned.
// Relationship endpoints are not checked here; forward references are
// resolved when the graph is assembled.
func Parse(r io.Reader, opts ...Option) (*Diagram, error) {
	p := &parser{
		config:  newConfig(opts),
		opts:    opts,
		diagram: &Diagram{},
		classes: make(map[string]*Class),
	}
	for st, err := range Scan(r) {
		if err != nil {
			return nil, err
		}
		if err := p.statement(st); err != nil {
			return nil, err
		}
	}
	return p.diagram, nil
}

// ParseString is like Parse for in-memory diagram text.
func ParseString(text string, opts ...Option) (*Diagram, error) {
	return Parse(strings.NewReader(text), opts...)
}

type parser struct {
	*config
	opts    []Option
	diagram *Diagram
	classes map[string]*Class
}

func (p *parser) statement(st Statement) error {
	switch st.Kind {
	case KindClassOpen:
		if prev, ok := p.classes[st.Class]; ok {
			return pumlgen.NewParseError(st.Line, st.Text, pumlgen.ErrDuplicateClass, "class %q already declared at line %d", st.Class, prev.Line)
		}
		c := &Class{Name: st.Class, Abstract: st.Abstract, Stereotype: st.Stereotype, Line: st.Line}
		p.classes[c.Name] = c
		p.diagram.Classes = append(p.diagram.Classes, c)
	case KindAttribute:
		return p.attribute(st)
	case KindRelationship:
		rel, err := ParseRelation(st, p.opts...)
		if err != nil {
			return err
		}
		p.diagram.Relations = append(p.diagram.Relations, rel)
	case KindUnrecognized:
		p.diagram.Diagnostics.Add(st.Line, st.Text, pumlgen.UnrecognizedStatement, "statement ignored")
	}
	return nil
}

func (p *parser) attribute(st Statement) error {
	c := p.classes[st.Class]
	a, diag, err := ParseAttribute(st.Text, st.Class)
	switch {
	case errors.Is(err, ErrNotAttribute):
		p.diagram.Diagnostics.Add(st.Line, st.Text, pumlgen.UnrecognizedStatement, "not an attribute of class %q", st.Class)
		return nil
	case err != nil:
		return err
	}
	if diag != nil {
		p.diagram.Diagnostics.Add(st.Line, diag.Text, diag.Code, "%s", diag.Message)
	}
	a.Line = st.Line
	for i, prev := range c.Attributes {
		if prev.Name != a.Name {
			continue
		}
		if p.strict {
			return pumlgen.NewParseError(st.Line, st.Text, pumlgen.ErrDuplicateAttribute, "attribute %q of class %q already declared at line %d", a.Name, c.Name, prev.Line)
		}
		p.diagram.Diagnostics.Add(st.Line, st.Text, pumlgen.DuplicateAttribute, "attribute %q of class %q redeclared, line %d definition replaced", a.Name, c.Name, prev.Line)
		c.Attributes[i] = a
		return nil
	}
	c.Attributes = append(c.Attributes, a)
	return nil
}
