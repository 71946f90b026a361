package gen

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/pumlgen/compiler/load"
	"github.com/syssam/pumlgen/schema/edge"
	"github.com/syssam/pumlgen/schema/field"
)

const snapshotVersion = 1

type (
	// snapshot is the serialized, position-free form of a Graph.
	snapshot struct {
		Version   int                `msgpack:"version"`
		Types     []snapshotType     `msgpack:"types"`
		Relations []snapshotRelation `msgpack:"relations"`
	}

	snapshotType struct {
		Name       string          `msgpack:"name"`
		Abstract   bool            `msgpack:"abstract,omitempty"`
		Stereotype string          `msgpack:"stereotype,omitempty"`
		Fields     []snapshotField `msgpack:"fields"`
	}

	snapshotField struct {
		Name       string           `msgpack:"name"`
		Type       string           `msgpack:"type"`
		Visibility field.Visibility `msgpack:"visibility"`
		Static     bool             `msgpack:"static,omitempty"`
	}

	snapshotRelation struct {
		Source     string             `msgpack:"source"`
		Target     string             `msgpack:"target"`
		Kind       edge.Kind          `msgpack:"kind"`
		Arrow      string             `msgpack:"arrow"`
		Label      string             `msgpack:"label,omitempty"`
		SourceMult *edge.Multiplicity `msgpack:"source_mult"`
		TargetMult *edge.Multiplicity `msgpack:"target_mult"`
		Whole      edge.Side          `msgpack:"whole"`
		Resolution Resolution         `msgpack:"resolution"`
	}
)

// Snapshot encodes the structure of g: types, attributes in order, and
// relationships with their resolution. Source positions and diagnostics
// are left out, so two diagrams describing the same model produce the
// same bytes.
func Snapshot(g *Graph) ([]byte, error) {
	s := snapshot{Version: snapshotVersion}
	for _, t := range g.Nodes {
		st := snapshotType{Name: t.Name, Abstract: t.Abstract, Stereotype: t.Stereotype}
		for _, f := range t.Fields {
			st.Fields = append(st.Fields, snapshotField{Name: f.Name, Type: f.Type, Visibility: f.Visibility, Static: f.Static})
		}
		s.Types = append(s.Types, st)
	}
	for _, r := range g.Relations {
		s.Relations = append(s.Relations, snapshotRelation{
			Source:     r.Source,
			Target:     r.Target,
			Kind:       r.Kind,
			Arrow:      r.Arrow,
			Label:      r.Label,
			SourceMult: r.SourceMult,
			TargetMult: r.TargetMult,
			Whole:      r.Whole,
			Resolution: r.Resolution,
		})
	}
	b, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("gen: encode snapshot: %w", err)
	}
	return b, nil
}

// LoadSnapshot decodes a snapshot and rebuilds its graph.
func LoadSnapshot(c *Config, data []byte) (*Graph, error) {
	var s snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("gen: decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("gen: unsupported snapshot version %d", s.Version)
	}
	d := &load.Diagram{}
	for _, st := range s.Types {
		cls := &load.Class{Name: st.Name, Abstract: st.Abstract, Stereotype: st.Stereotype}
		for _, sf := range st.Fields {
			a := &load.Attribute{Name: sf.Name, Type: sf.Type, Visibility: sf.Visibility, Static: sf.Static}
			a.Elem, a.Collection = field.Collection(a.Type)
			cls.Attributes = append(cls.Attributes, a)
		}
		d.Classes = append(d.Classes, cls)
	}
	for _, sr := range s.Relations {
		d.Relations = append(d.Relations, &load.Relation{
			Source:     sr.Source,
			Target:     sr.Target,
			Kind:       sr.Kind,
			Arrow:      sr.Arrow,
			Label:      sr.Label,
			SourceMult: sr.SourceMult,
			TargetMult: sr.TargetMult,
			Whole:      sr.Whole,
		})
	}
	return NewGraph(c, d)
}

// SnapshotChanged reports whether the snapshot stored at path differs from
// the one of g. A missing file counts as a change.
func SnapshotChanged(g *Graph, path string) (bool, error) {
	cur, err := Snapshot(g)
	if err != nil {
		return false, err
	}
	prev, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("gen: read snapshot: %w", err)
	}
	return !bytes.Equal(prev, cur), nil
}

// WriteSnapshot stores the snapshot of g at path.
func WriteSnapshot(g *Graph, path string) error {
	b, err := Snapshot(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("gen: write snapshot: %w", err)
	}
	return nil
}
