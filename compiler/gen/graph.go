package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/pumlgen"
	"github.com/syssam/pumlgen/compiler/load"
	"github.com/syssam/pumlgen/schema/edge"
	"github.com/syssam/pumlgen/schema/field"
)

// The following types and their exported methods are used by the
// generators to render the model.
type (
	// Graph is the resolved entity-relationship model of one diagram.
	// It is immutable once NewGraph returns.
	Graph struct {
		*Config
		// Nodes are the types in declaration order.
		Nodes []*Type
		// Relations are the resolved relationships in textual order.
		Relations []*Relation
		// Diagnostics are the warnings collected while parsing and
		// assembling the model.
		Diagnostics pumlgen.Diagnostics
		types       map[string]*Type
	}

	// Type represents one class of the diagram.
	Type struct {
		*Config
		// Name holds the class name.
		Name       string
		Abstract   bool
		Stereotype string
		// Fields holds the attributes in declaration order.
		Fields []*Field
		// Parent is the superclass, nil for roots.
		Parent *Type
		// Children are the direct subclasses in relationship order.
		Children []*Type
		// Edges holds the association, aggregation and composition edges
		// of this type, one per relationship endpoint.
		Edges []*Edge
		// Dependencies are the types this type depends on.
		Dependencies []*Type
		// Line is the line of the class declaration.
		Line int
	}

	// Field is a class attribute.
	Field struct {
		typ *Type
		// Name of the attribute.
		Name string
		// Type is the declared type, raw as written.
		Type       string
		Visibility field.Visibility
		// Collection is set for multi-valued declared types; Elem then
		// holds the element type.
		Collection bool
		Elem       string
		Static     bool
	}

	// Relation is a resolved relationship between two classes.
	Relation struct {
		Source string    `json:"source"`
		Target string    `json:"target"`
		Kind   edge.Kind `json:"kind"`
		Arrow  string    `json:"arrow"`
		Label  string    `json:"label,omitempty"`
		// SourceMult and TargetMult are the declared multiplicities.
		SourceMult *edge.Multiplicity `json:"source_mult,omitempty"`
		TargetMult *edge.Multiplicity `json:"target_mult,omitempty"`
		// Whole is the whole endpoint of aggregation and composition.
		Whole edge.Side `json:"whole,omitempty"`
		Line  int       `json:"line"`
		Resolution
	}

	// Edge is one endpoint of a structural relationship, seen from the
	// type that holds it.
	Edge struct {
		// Name is the field name of the edge in the owner type.
		Name string
		// Type is the type the edge points to.
		Type *Type
		// Owner is the type holding the edge.
		Owner *Type
		// Unique is set when at most one Type instance is referenced.
		Unique bool
		// Optional is set when zero Type instances are allowed.
		Optional bool
		// Inverse is set on the edge held by the relationship target.
		Inverse bool
		// Ref is the edge on the other endpoint.
		Ref *Edge
		// Rel is the relation type from the owner perspective.
		Rel Rel
		// Relation the edge was derived from.
		Relation *Relation
	}
)

// NewGraph assembles and validates the model of a parsed diagram. It fails
// on the first relationship naming an undeclared class and on inheritance
// cycles; no partial graph is returned.
func NewGraph(c *Config, d *load.Diagram) (*Graph, error) {
	if c == nil {
		c = Default()
	}
	g := &Graph{
		Config:      c,
		Diagnostics: append(pumlgen.Diagnostics(nil), d.Diagnostics...),
		types:       make(map[string]*Type, len(d.Classes)),
	}
	for _, cls := range d.Classes {
		t := &Type{
			Config:     c,
			Name:       cls.Name,
			Abstract:   cls.Abstract,
			Stereotype: cls.Stereotype,
			Line:       cls.Line,
		}
		for _, a := range cls.Attributes {
			t.Fields = append(t.Fields, &Field{
				typ:        t,
				Name:       a.Name,
				Type:       a.Type,
				Visibility: a.Visibility,
				Collection: a.Collection,
				Elem:       a.Elem,
				Static:     a.Static,
			})
		}
		g.Nodes = append(g.Nodes, t)
		g.types[t.Name] = t
	}
	for _, lr := range d.Relations {
		if err := g.addRelation(lr); err != nil {
			return nil, err
		}
	}
	if err := g.checkCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) addRelation(lr *load.Relation) error {
	for _, name := range []string{lr.Source, lr.Target} {
		if _, ok := g.types[name]; !ok {
			return pumlgen.NewParseError(lr.Line, lr.Text, pumlgen.ErrDanglingReference, "class %q is not declared", name)
		}
	}
	res, err := Resolve(lr.Kind, lr.SourceMult, lr.TargetMult)
	if err != nil {
		return pumlgen.NewParseError(lr.Line, lr.Text, pumlgen.ErrUnknownArrow, "%v", err)
	}
	r := &Relation{
		Source:     lr.Source,
		Target:     lr.Target,
		Kind:       lr.Kind,
		Arrow:      lr.Arrow,
		Label:      lr.Label,
		SourceMult: lr.SourceMult,
		TargetMult: lr.TargetMult,
		Whole:      lr.Whole,
		Line:       lr.Line,
		Resolution: res,
	}
	g.Relations = append(g.Relations, r)
	src, dst := g.types[r.Source], g.types[r.Target]
	switch r.Kind {
	case edge.Inheritance:
		switch {
		case src.Parent == nil:
			src.Parent = dst
			dst.Children = append(dst.Children, src)
		case src.Parent != dst:
			g.Diagnostics.Add(r.Line, lr.Text, pumlgen.MultipleInheritance,
				"class %q already extends %q, parent %q ignored", src.Name, src.Parent.Name, dst.Name)
		}
	case edge.Dependency:
		src.Dependencies = append(src.Dependencies, dst)
	default:
		g.addEdges(r, src, dst)
	}
	return nil
}

// addEdges attaches the two perspective edges of a structural relationship.
func (g *Graph) addEdges(r *Relation, src, dst *Type) {
	assoc := &Edge{
		Type:     dst,
		Owner:    src,
		Unique:   r.EffectiveTarget.IsSingular(),
		Optional: r.EffectiveTarget.Optional(),
		Rel:      r.Rel,
		Relation: r,
	}
	assoc.Name = src.edgeName(dst.Name, !assoc.Unique)
	src.Edges = append(src.Edges, assoc)
	inverse := &Edge{
		Type:     src,
		Owner:    dst,
		Unique:   r.EffectiveSource.IsSingular(),
		Optional: r.EffectiveSource.Optional(),
		Inverse:  true,
		Rel:      r.Rel.Inverse(),
		Relation: r,
	}
	inverse.Name = dst.edgeName(src.Name, !inverse.Unique)
	dst.Edges = append(dst.Edges, inverse)
	assoc.Ref, inverse.Ref = inverse, assoc
}

// edgeName derives a field name for an edge to the named class that does
// not clash with the attributes and edges of t.
func (t *Type) edgeName(class string, many bool) string {
	base := Camel(class)
	if many {
		base = Camel(Plural(class))
	}
	name := base
	for i := 2; t.hasMember(name); i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	return name
}

func (t *Type) hasMember(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	for _, e := range t.Edges {
		if e.Name == name {
			return true
		}
	}
	return false
}

// checkCycles walks the inheritance name graph, including parents that
// were ignored as multiple inheritance, and fails on the first relationship
// that closes a cycle.
func (g *Graph) checkCycles() error {
	parents := make(map[string][]*Relation)
	for _, r := range g.Relations {
		if r.Kind == edge.Inheritance {
			parents[r.Source] = append(parents[r.Source], r)
		}
	}
	const (
		visiting = iota + 1
		done
	)
	var (
		state = make(map[string]int, len(g.Nodes))
		path  []string
		visit func(string) error
	)
	visit = func(name string) error {
		state[name] = visiting
		path = append(path, name)
		for _, r := range parents[name] {
			switch state[r.Target] {
			case visiting:
				i := slices.Index(path, r.Target)
				cycle := append(slices.Clone(path[i:]), r.Target)
				return pumlgen.NewParseError(r.Line, r.String(), pumlgen.ErrInheritanceCycle, "%s", strings.Join(cycle, " -> "))
			case 0:
				if err := visit(r.Target); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}
	for _, t := range g.Nodes {
		if state[t.Name] == 0 {
			if err := visit(t.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Type returns the type with the given name, or nil.
func (g *Graph) Type(name string) *Type { return g.types[name] }

// Roots returns the types without a parent, in declaration order.
func (g *Graph) Roots() []*Type {
	var roots []*Type
	for _, t := range g.Nodes {
		if t.Parent == nil {
			roots = append(roots, t)
		}
	}
	return roots
}

// Equal reports whether two graphs describe the same model: the same
// classes, attributes in the same order, and the same relationships with
// the same resolution.
func (g *Graph) Equal(other *Graph) bool {
	if g == nil || other == nil {
		return g == other
	}
	a, err := Snapshot(g)
	if err != nil {
		return false
	}
	b, err := Snapshot(other)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// Label returns the snake_case name of the type.
func (t *Type) Label() string { return Snake(t.Name) }

// Table returns the table name of the type.
func (t *Type) Table() string { return Snake(Plural(t.Name)) }

// Field returns the field with the given name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// IDField returns the attribute named "id", matched case-insensitively.
func (t *Type) IDField() *Field {
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, "id") {
			return f
		}
	}
	return nil
}

// HasParent reports whether the type extends another type.
func (t *Type) HasParent() bool { return t.Parent != nil }

// IsRoot reports whether the type heads an inheritance hierarchy.
func (t *Type) IsRoot() bool { return t.Parent == nil && len(t.Children) > 0 }

// Root returns the top of the inheritance chain of t.
func (t *Type) Root() *Type {
	for t.Parent != nil {
		t = t.Parent
	}
	return t
}

// Ancestors returns the parent chain of t, nearest first.
func (t *Type) Ancestors() []*Type {
	var ts []*Type
	for p := t.Parent; p != nil; p = p.Parent {
		ts = append(ts, p)
	}
	return ts
}

// Owner returns the type declaring the field.
func (f *Field) Owner() *Type { return f.typ }

// BaseType returns the element type of collections and the declared type
// otherwise.
func (f *Field) BaseType() string {
	if f.Collection {
		return f.Elem
	}
	return f.Type
}

// Kind classifies the base type of the field.
func (f *Field) Kind() field.Type { return field.Classify(f.BaseType()) }

// IsID reports whether the field is the identifier attribute.
func (f *Field) IsID() bool { return strings.EqualFold(f.Name, "id") }

// Column returns the column name of the field.
func (f *Field) Column() string { return Snake(f.Name) }

// OwnFK reports whether the foreign key of the edge resides in the table
// of the owner type.
func (e *Edge) OwnFK() bool {
	switch e.Rel {
	case M2O:
		return true
	case O2O:
		return e.Inverse == (e.Relation.Owner == edge.OwnerTarget)
	}
	return false
}

// JoinOwner reports whether the edge owns the join association of a
// many-to-many relationship.
func (e *Edge) JoinOwner() bool { return e.Rel == M2M && !e.Inverse }

// IsWhole reports whether the owner type is the whole of a composition or
// aggregation.
func (e *Edge) IsWhole() bool {
	if e.Inverse {
		return e.Relation.Whole == edge.TargetSide
	}
	return e.Relation.Whole == edge.SourceSide
}

// Cascade reports whether deleting the owner deletes the referenced
// instances.
func (e *Edge) Cascade() bool { return e.Relation.Cascade && e.IsWhole() }

// Column returns the foreign-key column of an edge owning it.
func (e *Edge) Column() string { return Snake(e.Name) + "_id" }

// Part returns the name of the part endpoint of a composition or
// aggregation, empty for other kinds.
func (r *Relation) Part() string {
	switch r.Whole {
	case edge.SourceSide:
		return r.Target
	case edge.TargetSide:
		return r.Source
	}
	return ""
}

// JoinTable returns the table backing a many-to-many relationship.
func (r *Relation) JoinTable() string {
	return Snake(r.Source) + "_" + Snake(Plural(r.Target))
}

// JoinColumns returns the two columns of the join table, source first.
func (r *Relation) JoinColumns() (string, string) {
	src, dst := Snake(r.Source)+"_id", Snake(r.Target)+"_id"
	if src == dst {
		dst = "related_" + dst
	}
	return src, dst
}

// String formats the relationship the way it would be written in a
// diagram, with the effective multiplicities.
func (r *Relation) String() string {
	var b strings.Builder
	b.WriteString(r.Source)
	if !r.EffectiveSource.IsZero() {
		fmt.Fprintf(&b, " %q", r.EffectiveSource.String())
	}
	b.WriteString(" " + r.Arrow)
	if !r.EffectiveTarget.IsZero() {
		fmt.Fprintf(&b, " %q", r.EffectiveTarget.String())
	}
	b.WriteString(" " + r.Target)
	if r.Label != "" {
		b.WriteString(" : " + r.Label)
	}
	return b.String()
}
