// Package mcpserver exposes the diagram parser as Model Context Protocol
// tools: parse_diagram summarizes a diagram and diagram_ddl renders its
// SQL schema.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/syssam/pumlgen"
	"github.com/syssam/pumlgen/compiler"
	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/dialect"
	"github.com/syssam/pumlgen/dialect/sql/schema"
)

// Version is reported to MCP clients.
var Version = "dev"

// ParseDiagramInput is the input of the parse_diagram tool.
type ParseDiagramInput struct {
	Diagram string `json:"diagram" jsonschema:"PlantUML class diagram text"`
}

// ParseDiagramOutput is the result of the parse_diagram tool.
type ParseDiagramOutput struct {
	Valid       bool           `json:"valid"`
	Error       string         `json:"error,omitempty"`
	Line        int            `json:"line,omitempty"`
	Classes     []ClassOutput  `json:"classes,omitempty"`
	Relations   []RelationInfo `json:"relations,omitempty"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
}

// ClassOutput summarizes one class.
type ClassOutput struct {
	Name       string   `json:"name"`
	Abstract   bool     `json:"abstract,omitempty"`
	Parent     string   `json:"parent,omitempty"`
	Table      string   `json:"table"`
	Attributes []string `json:"attributes,omitempty"`
}

// RelationInfo summarizes one resolved relationship.
type RelationInfo struct {
	Relation string `json:"relation"`
	Kind     string `json:"kind"`
	Type     string `json:"type,omitempty"`
	Owner    string `json:"owner"`
	Cascade  bool   `json:"cascade,omitempty"`
}

// DiagramDDLInput is the input of the diagram_ddl tool.
type DiagramDDLInput struct {
	Diagram string `json:"diagram" jsonschema:"PlantUML class diagram text"`
	Dialect string `json:"dialect,omitempty" jsonschema:"SQL dialect: postgres (default), mysql or sqlite"`
}

// DiagramDDLOutput is the result of the diagram_ddl tool.
type DiagramDDLOutput struct {
	Dialect string `json:"dialect"`
	DDL     string `json:"ddl"`
}

// Service handles the MCP tool calls.
type Service struct {
	opts []gen.Option
}

// NewService returns a Service parsing with the given options.
func NewService(opts ...gen.Option) *Service {
	return &Service{opts: opts}
}

// NewServer creates an MCP server with the diagram tools registered.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pumlgen",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_diagram",
		Description: "Parse a PlantUML class diagram and return its classes, resolved relationships and warnings.",
	}, svc.ParseDiagram)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "diagram_ddl",
		Description: "Render the SQL schema (CREATE TABLE statements) of a PlantUML class diagram.",
	}, svc.DiagramDDL)

	return server
}

// RunStdio runs the server on stdio, blocking until stdin is closed or
// ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// ParseDiagram parses a diagram. Structural diagram errors are part of
// the output rather than tool failures.
func (s *Service) ParseDiagram(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseDiagramInput,
) (*mcp.CallToolResult, ParseDiagramOutput, error) {
	g, err := compiler.Parse(strings.NewReader(input.Diagram), s.opts...)
	switch {
	case pumlgen.IsParseError(err):
		return nil, ParseDiagramOutput{Error: err.Error(), Line: pumlgen.LineOf(err)}, nil
	case err != nil:
		return nil, ParseDiagramOutput{}, err
	}
	out := ParseDiagramOutput{Valid: true}
	for _, t := range g.Nodes {
		c := ClassOutput{Name: t.Name, Abstract: t.Abstract, Table: t.Table()}
		if t.Parent != nil {
			c.Parent = t.Parent.Name
		}
		for _, f := range t.Fields {
			c.Attributes = append(c.Attributes, strings.TrimSpace(fmt.Sprintf("%s %s : %s", f.Visibility.Symbol(), f.Name, f.Type)))
		}
		out.Classes = append(out.Classes, c)
	}
	for _, r := range g.Relations {
		info := RelationInfo{
			Relation: r.String(),
			Kind:     r.Kind.String(),
			Owner:    r.Owner.String(),
			Cascade:  r.Cascade,
		}
		if r.Kind.Structural() {
			info.Type = r.Rel.String()
		}
		out.Relations = append(out.Relations, info)
	}
	for _, d := range g.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, d.String())
	}
	return nil, out, nil
}

// DiagramDDL renders the DDL of a diagram.
func (s *Service) DiagramDDL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DiagramDDLInput,
) (*mcp.CallToolResult, DiagramDDLOutput, error) {
	name := input.Dialect
	if name == "" {
		name = dialect.Postgres
	}
	if err := dialect.Validate(name); err != nil {
		return nil, DiagramDDLOutput{}, err
	}
	g, err := compiler.Parse(strings.NewReader(input.Diagram), s.opts...)
	if err != nil {
		return nil, DiagramDDLOutput{}, err
	}
	ddl, err := schema.DDL(ctx, g, name)
	if err != nil {
		return nil, DiagramDDLOutput{}, err
	}
	return nil, DiagramDDLOutput{Dialect: name, DDL: ddl}, nil
}
