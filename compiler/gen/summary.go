package gen

import (
	"encoding/json"

	"github.com/syssam/pumlgen"
	"github.com/syssam/pumlgen/schema/field"
)

type (
	// Summary is the serializable view of a graph, as returned by the
	// HTTP and MCP surfaces.
	Summary struct {
		Classes     []*ClassSummary     `json:"classes"`
		Relations   []*Relation         `json:"relations"`
		Diagnostics pumlgen.Diagnostics `json:"diagnostics"`
	}

	// ClassSummary describes one type.
	ClassSummary struct {
		Name       string              `json:"name"`
		Abstract   bool                `json:"abstract,omitempty"`
		Stereotype string              `json:"stereotype,omitempty"`
		Parent     string              `json:"parent,omitempty"`
		Table      string              `json:"table"`
		Line       int                 `json:"line"`
		Attributes []*AttributeSummary `json:"attributes"`
		Edges      []*EdgeSummary      `json:"edges,omitempty"`
	}

	// AttributeSummary describes one attribute.
	AttributeSummary struct {
		Name       string           `json:"name"`
		Type       string           `json:"type"`
		Visibility field.Visibility `json:"visibility"`
		Collection bool             `json:"collection,omitempty"`
		Static     bool             `json:"static,omitempty"`
	}

	// EdgeSummary describes one edge.
	EdgeSummary struct {
		Name     string `json:"name"`
		Type     string `json:"type"`
		Rel      Rel    `json:"rel"`
		Unique   bool   `json:"unique,omitempty"`
		Optional bool   `json:"optional,omitempty"`
		Inverse  bool   `json:"inverse,omitempty"`
	}
)

// Summary returns the serializable view of g.
func (g *Graph) Summary() *Summary {
	s := &Summary{
		Classes:     make([]*ClassSummary, 0, len(g.Nodes)),
		Relations:   append([]*Relation{}, g.Relations...),
		Diagnostics: append(pumlgen.Diagnostics{}, g.Diagnostics...),
	}
	for _, t := range g.Nodes {
		c := &ClassSummary{
			Name:       t.Name,
			Abstract:   t.Abstract,
			Stereotype: t.Stereotype,
			Table:      t.Table(),
			Line:       t.Line,
			Attributes: make([]*AttributeSummary, 0, len(t.Fields)),
		}
		if t.Parent != nil {
			c.Parent = t.Parent.Name
		}
		for _, f := range t.Fields {
			c.Attributes = append(c.Attributes, &AttributeSummary{
				Name:       f.Name,
				Type:       f.Type,
				Visibility: f.Visibility,
				Collection: f.Collection,
				Static:     f.Static,
			})
		}
		for _, e := range t.Edges {
			c.Edges = append(c.Edges, &EdgeSummary{
				Name:     e.Name,
				Type:     e.Type.Name,
				Rel:      e.Rel,
				Unique:   e.Unique,
				Optional: e.Optional,
				Inverse:  e.Inverse,
			})
		}
		s.Classes = append(s.Classes, c)
	}
	return s
}

// MarshalJSON encodes the summary of g.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Summary())
}
