package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pumlgen"
	"github.com/syssam/pumlgen/compiler/load"
	"github.com/syssam/pumlgen/schema/edge"
)

func parseGraph(t *testing.T, src string, opts ...Option) (*Graph, error) {
	t.Helper()
	c, err := NewConfig(opts...)
	require.NoError(t, err)
	d, err := load.ParseString(src, c.LoadOptions()...)
	require.NoError(t, err)
	return NewGraph(c, d)
}

func mustGraph(t *testing.T, src string, opts ...Option) *Graph {
	t.Helper()
	g, err := parseGraph(t, src, opts...)
	require.NoError(t, err)
	return g
}

func TestNewGraph_FlowerPot(t *testing.T) {
	g := mustGraph(t, `class Flower { - name : String } class Pot { - size : int } Flower "many" --> "1" Pot`)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Relations, 1)

	r := g.Relations[0]
	assert.Equal(t, edge.Association, r.Kind)
	assert.Equal(t, edge.OwnerSource, r.Owner)
	assert.Equal(t, edge.Many(), r.EffectiveSource)
	assert.Equal(t, edge.ExactlyOne(), r.EffectiveTarget)
	assert.Equal(t, M2O, r.Rel)
	assert.False(t, r.Cascade)

	flower, pot := g.Type("Flower"), g.Type("Pot")
	require.NotNil(t, flower)
	require.NotNil(t, pot)
	require.Len(t, flower.Edges, 1)
	require.Len(t, pot.Edges, 1)

	e := flower.Edges[0]
	assert.Equal(t, "pot", e.Name)
	assert.Equal(t, pot, e.Type)
	assert.True(t, e.Unique)
	assert.True(t, e.OwnFK())
	assert.Equal(t, "pot_id", e.Column())

	inv := pot.Edges[0]
	assert.Equal(t, "flowers", inv.Name)
	assert.True(t, inv.Inverse)
	assert.False(t, inv.Unique)
	assert.Equal(t, O2M, inv.Rel)
	assert.False(t, inv.OwnFK())
	assert.Same(t, e, inv.Ref)
	assert.Same(t, inv, e.Ref)
}

func TestNewGraph_OwningSide(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		owner edge.OwningSide
		rel   Rel
	}{
		{
			name:  "many on the target",
			src:   `class Order {} class Line {} Order "1" --> "*" Line`,
			owner: edge.OwnerTarget,
			rel:   O2M,
		},
		{
			name:  "many on the source",
			src:   `class Order {} class Line {} Line "0..*" --> "1" Order`,
			owner: edge.OwnerSource,
			rel:   M2O,
		},
		{
			name:  "many to many owned by the source",
			src:   `class Student {} class Course {} Student "*" -- "1..*" Course`,
			owner: edge.OwnerJoin,
			rel:   M2M,
		},
		{
			name:  "defaults to one to one",
			src:   `class User {} class Profile {} User -- Profile`,
			owner: edge.OwnerSource,
			rel:   O2O,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, tt.src)
			require.Len(t, g.Relations, 1)
			assert.Equal(t, tt.owner, g.Relations[0].Owner)
			assert.Equal(t, tt.rel, g.Relations[0].Rel)
		})
	}
}

func TestNewGraph_Cascade(t *testing.T) {
	g := mustGraph(t, `
class Order {}
class Line {}
class Team {}
class Player {}
Order "1" *-- "*" Line
Team "1" o-- "*" Player
`)
	require.Len(t, g.Relations, 2)
	assert.True(t, g.Relations[0].Cascade)
	assert.False(t, g.Relations[1].Cascade)

	order, line := g.Type("Order"), g.Type("Line")
	lines := order.Edges[0]
	assert.Equal(t, "lines", lines.Name)
	assert.True(t, lines.IsWhole())
	assert.True(t, lines.Cascade())
	assert.Equal(t, "Line", g.Relations[0].Part())

	back := line.Edges[0]
	assert.Equal(t, "order", back.Name)
	assert.True(t, back.OwnFK())
	assert.False(t, back.IsWhole())
	assert.False(t, back.Cascade())

	players := g.Type("Team").Edges[0]
	assert.True(t, players.IsWhole())
	assert.False(t, players.Cascade())
}

func TestNewGraph_ManyToMany(t *testing.T) {
	g := mustGraph(t, `class Student {} class Course {} Student "*" -- "*" Course`)
	r := g.Relations[0]
	assert.Equal(t, "student_courses", r.JoinTable())
	src, dst := r.JoinColumns()
	assert.Equal(t, "student_id", src)
	assert.Equal(t, "course_id", dst)

	courses := g.Type("Student").Edges[0]
	assert.Equal(t, "courses", courses.Name)
	assert.True(t, courses.JoinOwner())
	assert.False(t, courses.Ref.JoinOwner())
	assert.False(t, courses.OwnFK())
}

func TestNewGraph_SelfManyToMany(t *testing.T) {
	g := mustGraph(t, `class Node {} Node "*" -- "*" Node`)
	src, dst := g.Relations[0].JoinColumns()
	assert.Equal(t, "node_id", src)
	assert.Equal(t, "related_node_id", dst)

	n := g.Type("Node")
	require.Len(t, n.Edges, 2)
	assert.NotEqual(t, n.Edges[0].Name, n.Edges[1].Name)
}

func TestNewGraph_EdgeNames(t *testing.T) {
	g := mustGraph(t, `
class Person {
  + address : String
}
class Address {}
Person --> "1" Address : home
`)
	p := g.Type("Person")
	require.Len(t, p.Edges, 1)
	assert.Equal(t, "address2", p.Edges[0].Name)
}

func TestNewGraph_Inheritance(t *testing.T) {
	g := mustGraph(t, `
abstract class Animal {
  + id : Long
}
class Cat
class Dog
Cat --|> Animal
Animal <|-- Dog
`)
	animal, cat, dog := g.Type("Animal"), g.Type("Cat"), g.Type("Dog")
	assert.Equal(t, animal, cat.Parent)
	assert.Equal(t, animal, dog.Parent)
	assert.Equal(t, []*Type{cat, dog}, animal.Children)
	assert.True(t, animal.IsRoot())
	assert.False(t, cat.IsRoot())
	assert.Equal(t, animal, cat.Root())
	assert.Equal(t, []*Type{animal}, g.Roots())
	assert.Equal(t, []*Type{animal}, dog.Ancestors())
	assert.Equal(t, edge.OwnerNone, g.Relations[0].Owner)
	assert.True(t, animal.IDField().IsID())
	assert.Empty(t, cat.Edges)
}

func TestNewGraph_MultipleInheritance(t *testing.T) {
	g := mustGraph(t, `
class A
class B
class C
A --|> B
A --|> C
`)
	assert.Equal(t, g.Type("B"), g.Type("A").Parent)
	assert.True(t, g.Diagnostics.HasCode(pumlgen.MultipleInheritance))
}

func TestNewGraph_Dependency(t *testing.T) {
	g := mustGraph(t, `class Service {} class Repo {} Service ..> Repo`)
	s := g.Type("Service")
	assert.Equal(t, []*Type{g.Type("Repo")}, s.Dependencies)
	assert.Empty(t, s.Edges)
	assert.Equal(t, edge.OwnerNone, g.Relations[0].Owner)
}

func TestNewGraph_Dangling(t *testing.T) {
	_, err := parseGraph(t, `class Cat --|> Animal`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pumlgen.ErrDanglingReference))
	assert.Contains(t, err.Error(), `"Animal"`)
	assert.Equal(t, 1, pumlgen.LineOf(err))

	_, err = parseGraph(t, "class Pot {}\nFlower --> Pot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Flower"`)
	assert.Equal(t, 2, pumlgen.LineOf(err))
}

func TestNewGraph_InheritanceCycle(t *testing.T) {
	_, err := parseGraph(t, "class A\nclass B\nA --|> B\nB --|> A\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pumlgen.ErrInheritanceCycle))
	assert.Contains(t, err.Error(), "A -> B -> A")

	_, err = parseGraph(t, "class A\nA --|> A\n")
	assert.True(t, errors.Is(err, pumlgen.ErrInheritanceCycle))

	// The second parent of A is ignored as a parent but still closes a cycle.
	_, err = parseGraph(t, "class A\nclass B\nclass C\nA --|> B\nA --|> C\nC --|> A\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pumlgen.ErrInheritanceCycle))
	assert.Contains(t, err.Error(), "A -> C -> A")
	assert.Equal(t, 6, pumlgen.LineOf(err))
}

func TestNewGraph_NoDanglingReferences(t *testing.T) {
	g := mustGraph(t, `
class Customer {}
class Order {}
class Line {}
class Product {}
Customer "1" -- "*" Order
Order "1" *-- "1..*" Line
Line "*" --> "1" Product
Product "*" -- "*" Product
`)
	for _, r := range g.Relations {
		assert.NotNil(t, g.Type(r.Source), r.String())
		assert.NotNil(t, g.Type(r.Target), r.String())
	}
}

func TestGraph_Equal(t *testing.T) {
	const src = `
class Flower {
  - name : String
}
class Pot {
  - size : int
}
Flower "many" --> "1" Pot
`
	a := mustGraph(t, src)
	b := mustGraph(t, src)
	assert.True(t, a.Equal(b))

	// Positions do not matter.
	c := mustGraph(t, "\n\n' comment\n"+src)
	assert.True(t, a.Equal(c))

	d := mustGraph(t, `class Flower { - name : String } class Pot { - size : int } Flower "1" --> "1" Pot`)
	assert.False(t, a.Equal(d))

	e := mustGraph(t, `class Flower { - name : String } class Pot { - size : long } Flower "many" --> "1" Pot`)
	assert.False(t, a.Equal(e))

	assert.False(t, a.Equal(nil))
}

func TestType_Naming(t *testing.T) {
	g := mustGraph(t, `class OrderLine { + unitPrice : double }`)
	ol := g.Type("OrderLine")
	assert.Equal(t, "order_line", ol.Label())
	assert.Equal(t, "order_lines", ol.Table())
	assert.Equal(t, "unit_price", ol.Field("unitPrice").Column())
	assert.Nil(t, ol.Field("missing"))
	assert.Nil(t, ol.IDField())
}

func TestRelation_String(t *testing.T) {
	g := mustGraph(t, `class Flower {} class Pot {} Flower "many" --> "1" Pot : sits in`)
	assert.Equal(t, `Flower "*" --> "1" Pot : sits in`, g.Relations[0].String())
}
