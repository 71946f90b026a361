package graphql

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/compiler/load"
)

const shop = `
abstract class Party {
  + name : String
}
class Customer {
  + since : Date
}
class Order {
  + total : double
  + notes : List<String>
}
class Sheep
Customer --|> Party
Customer "1" -- "*" Order
Order "*" --> "0..1" Sheep
`

func graph(t *testing.T, src string, opts ...gen.Option) *gen.Graph {
	t.Helper()
	d, err := load.ParseString(src)
	require.NoError(t, err)
	g, err := gen.NewGraph(gen.MustNewConfig(opts...), d)
	require.NoError(t, err)
	return g
}

func TestSDL(t *testing.T) {
	sdl, err := SDL(graph(t, shop))
	require.NoError(t, err)

	s, err := gqlparser.LoadSchema(&ast.Source{Input: sdl})
	require.NoError(t, err)

	party := s.Types["Party"]
	require.NotNil(t, party)
	assert.Equal(t, ast.Interface, party.Kind)

	customer := s.Types["Customer"]
	require.NotNil(t, customer)
	assert.Equal(t, []string{"Party"}, customer.Interfaces)
	require.NotNil(t, customer.Fields.ForName("name"), "inherited attribute")
	assert.Equal(t, "Time", customer.Fields.ForName("since").Type.Name())
	assert.Equal(t, "[Order!]!", customer.Fields.ForName("orders").Type.String())

	order := s.Types["Order"]
	require.NotNil(t, order)
	assert.Equal(t, "ID!", order.Fields.ForName("id").Type.String())
	assert.Equal(t, "Float", order.Fields.ForName("total").Type.String())
	assert.Equal(t, "[String!]", order.Fields.ForName("notes").Type.String())
	assert.Equal(t, "Customer!", order.Fields.ForName("customer").Type.String())
	assert.Equal(t, "Sheep", order.Fields.ForName("sheep").Type.String())

	require.NotNil(t, s.Query)
	assert.NotNil(t, s.Query.Fields.ForName("orders"))
	assert.NotNil(t, s.Query.Fields.ForName("sheepList"))
	assert.Nil(t, s.Query.Fields.ForName("party"), "interfaces are not queryable")
	require.NotNil(t, s.Types["Time"])
	assert.Equal(t, ast.Scalar, s.Types["Time"].Kind)
}

func TestSDL_NoTime(t *testing.T) {
	sdl, err := SDL(graph(t, "class A {\n + n : int\n}\n"))
	require.NoError(t, err)
	assert.NotContains(t, sdl, "scalar Time")
	assert.Contains(t, sdl, "type A")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	g := graph(t, shop, gen.WithTarget(dir), gen.WithHeader("Code generated by pumlgen. DO NOT EDIT."))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gqlgen.yml"), []byte("autobind:\n  - github.com/acme/shared\n"), 0o644))

	var hooked bool
	ex, err := NewExtension(
		WithConfigPath("gqlgen.yml"),
		WithModelPackage("github.com/acme/shop/model"),
		WithSchemaHook(func(_ *gen.Graph, s string) (string, error) {
			hooked = true
			return s, nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, ex.Generate(context.Background(), g))
	assert.True(t, hooked)

	b, err := os.ReadFile(filepath.Join(dir, DefaultSchemaPath))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "# Code generated by pumlgen. DO NOT EDIT.\n\n"))

	cfg, err := LoadGQLGenConfig(filepath.Join(dir, "gqlgen.yml"))
	require.NoError(t, err)
	assert.Equal(t, StringList{DefaultSchemaPath}, cfg.SchemaFilename)
	assert.Equal(t, []string{"github.com/acme/shared", "github.com/acme/shop/model"}, cfg.Autobind)
	assert.Equal(t, StringList{"github.com/acme/shop/model.Order"}, cfg.Models["Order"].Model)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := NewExtension(WithSchemaPath(""))
	require.Error(t, err)

	g := graph(t, shop)
	g.Target = ""
	err = Generator.Generate(context.Background(), g)
	assert.True(t, gen.IsConfigError(err))
}
