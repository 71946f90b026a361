package graphql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/schema/field"
)

// GraphQL field and scalar names.
const (
	// GQLFieldID is the GraphQL ID field name.
	GQLFieldID = "id"
	// ScalarTime is the custom scalar emitted for date and time attributes.
	ScalarTime = "Time"
)

// Schema builds the SDL document of g. Abstract classes become
// interfaces, every other class an object type. Inherited attributes and
// edges are repeated on each subtype, and object types implement all of
// their abstract ancestors. A Query type lists every concrete class.
func Schema(g *gen.Graph) *ast.SchemaDocument {
	b := &builder{graph: g}
	doc := &ast.SchemaDocument{}
	for _, t := range g.Nodes {
		doc.Definitions = append(doc.Definitions, b.definition(t))
	}
	if b.usesTime {
		doc.Definitions = append(doc.Definitions, &ast.Definition{
			Kind:        ast.Scalar,
			Name:        ScalarTime,
			Description: "RFC 3339 date and time.",
		})
	}
	if q := b.query(); len(q.Fields) > 0 {
		doc.Definitions = append(doc.Definitions, q)
	}
	return doc
}

// SDL renders the schema of g and checks it with the GraphQL validator.
func SDL(g *gen.Graph) (string, error) {
	var sb strings.Builder
	formatter.NewFormatter(&sb).FormatSchemaDocument(Schema(g))
	sdl := sb.String()
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl}); err != nil {
		return "", fmt.Errorf("graphql: invalid schema: %w", err)
	}
	return sdl, nil
}

type builder struct {
	graph    *gen.Graph
	usesTime bool
}

func (b *builder) definition(t *gen.Type) *ast.Definition {
	def := &ast.Definition{
		Kind: ast.Object,
		Name: t.Name,
	}
	if t.Abstract {
		def.Kind = ast.Interface
	}
	if t.Stereotype != "" {
		def.Description = "<<" + t.Stereotype + ">>"
	}
	for _, a := range t.Ancestors() {
		if a.Abstract {
			def.Interfaces = append(def.Interfaces, a.Name)
		}
	}
	sort.Strings(def.Interfaces)
	def.Fields = append(def.Fields, &ast.FieldDefinition{
		Name: GQLFieldID,
		Type: ast.NonNullNamedType("ID", nil),
	})
	seen := map[string]bool{GQLFieldID: true}
	// Ancestor members first, so subtypes list fields in the interface order.
	for _, owner := range lineage(t) {
		for _, f := range owner.Fields {
			name := gen.Camel(f.Name)
			if f.Static || f.IsID() || seen[name] {
				continue
			}
			seen[name] = true
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name: name,
				Type: b.fieldType(f),
			})
		}
		for _, e := range owner.Edges {
			name := gen.Camel(e.Name)
			if seen[name] {
				continue
			}
			seen[name] = true
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name:        name,
				Type:        edgeType(e),
				Description: e.Relation.String(),
			})
		}
	}
	return def
}

// lineage returns the root ancestor first and t last.
func lineage(t *gen.Type) []*gen.Type {
	anc := t.Ancestors()
	out := make([]*gen.Type, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		out = append(out, anc[i])
	}
	return append(out, t)
}

func (b *builder) fieldType(f *gen.Field) *ast.Type {
	name := b.scalar(f.BaseType())
	if f.Collection {
		return ast.ListType(ast.NonNullNamedType(name, nil), nil)
	}
	return ast.NamedType(name, nil)
}

func (b *builder) scalar(typ string) string {
	if t := b.graph.Type(typ); t != nil {
		return t.Name
	}
	switch field.Classify(typ) {
	case field.TypeInt, field.TypeInt64:
		return "Int"
	case field.TypeFloat64:
		return "Float"
	case field.TypeBool:
		return "Boolean"
	case field.TypeUUID:
		return "ID"
	case field.TypeTime:
		b.usesTime = true
		return ScalarTime
	default:
		return "String"
	}
}

func edgeType(e *gen.Edge) *ast.Type {
	if e.Unique {
		if e.Optional {
			return ast.NamedType(e.Type.Name, nil)
		}
		return ast.NonNullNamedType(e.Type.Name, nil)
	}
	return ast.NonNullListType(ast.NonNullNamedType(e.Type.Name, nil), nil)
}

func (b *builder) query() *ast.Definition {
	q := &ast.Definition{Kind: ast.Object, Name: "Query"}
	for _, t := range b.graph.Nodes {
		if t.Abstract {
			continue
		}
		one, all := gen.Camel(t.Name), gen.Camel(gen.Plural(t.Name))
		if all == one {
			all += "List"
		}
		q.Fields = append(q.Fields,
			&ast.FieldDefinition{
				Name: one,
				Arguments: ast.ArgumentDefinitionList{
					{Name: GQLFieldID, Type: ast.NonNullNamedType("ID", nil)},
				},
				Type: ast.NamedType(t.Name, nil),
			},
			&ast.FieldDefinition{
				Name: all,
				Type: ast.NonNullListType(ast.NonNullNamedType(t.Name, nil), nil),
			},
		)
	}
	return q
}
