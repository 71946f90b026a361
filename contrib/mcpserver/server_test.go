package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const garden = `
class Pot {
  - size : int
}
class Flower {
  - name : String
}
Flower "*" --> "1" Pot : sits in
`

func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := NewServer(NewService())
	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		session.Close()
	})
	return session
}

func structured[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.NotNil(t, res.StructuredContent)
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListTools(t *testing.T) {
	session := setupServerClient(t)
	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"parse_diagram", "diagram_ddl"}, names)
}

func TestParseDiagram(t *testing.T) {
	session := setupServerClient(t)
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "parse_diagram",
		Arguments: ParseDiagramInput{Diagram: garden},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	out := structured[ParseDiagramOutput](t, result)
	assert.True(t, out.Valid)
	require.Len(t, out.Classes, 2)
	assert.Equal(t, "pots", out.Classes[0].Table)
	assert.Equal(t, []string{"- name : String"}, out.Classes[1].Attributes)
	require.Len(t, out.Relations, 1)
	assert.Equal(t, `Flower "*" --> "1" Pot : sits in`, out.Relations[0].Relation)
	assert.Equal(t, "M2O", out.Relations[0].Type)
	assert.Equal(t, "source", out.Relations[0].Owner)
}

func TestParseDiagram_Invalid(t *testing.T) {
	_, out, err := NewService().ParseDiagram(context.Background(), nil, ParseDiagramInput{Diagram: "class A\nA --> B\n"})
	require.NoError(t, err)
	assert.False(t, out.Valid)
	assert.Equal(t, 2, out.Line)
	assert.Contains(t, out.Error, `"B"`)
}

func TestDiagramDDL(t *testing.T) {
	session := setupServerClient(t)
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "diagram_ddl",
		Arguments: DiagramDDLInput{Diagram: garden, Dialect: "mysql"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	out := structured[DiagramDDLOutput](t, result)
	assert.Equal(t, "mysql", out.Dialect)
	assert.Contains(t, out.DDL, "CREATE TABLE `flowers`")

	_, _, err = NewService().DiagramDDL(context.Background(), nil, DiagramDDLInput{Diagram: garden, Dialect: "oracle"})
	assert.Error(t, err)
}
