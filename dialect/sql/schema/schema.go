// Package schema converts a model graph into atlas tables and plans,
// validates and applies the DDL of the supported dialects.
package schema

import (
	"fmt"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/dialect"
	"github.com/syssam/pumlgen/schema/field"
)

// DefaultStringSize is the varchar size of string columns in MySQL.
const DefaultStringSize = 255

// NewSchema builds the atlas schema of g for the given dialect:
//
//   - one table per class, named after the plural snake_case class name,
//     with an auto-incremented "id" primary key;
//   - one column per attribute; collections are stored as JSON;
//   - a "<edge>_id" column on the table owning a one-to-one or
//     many-to-one relationship, cascading deletes of composition parts;
//   - a join table "<source>_<targets>" per many-to-many relationship;
//   - subclass tables share the primary key of their parent table.
//
// Class-typed attributes hold a reference by id.
func NewSchema(g *gen.Graph, name string) (*schema.Schema, error) {
	if err := dialect.Validate(name); err != nil {
		return nil, err
	}
	b := &builder{graph: g, dialect: name, tables: make(map[*gen.Type]*schema.Table, len(g.Nodes))}
	s := schema.New(schemaName(name))
	for _, t := range g.Nodes {
		tb := schema.NewTable(t.Table())
		tb.SetSchema(s)
		b.tables[t] = tb
		s.AddTables(tb)
	}
	for _, t := range g.Nodes {
		if err := b.columns(t); err != nil {
			return nil, err
		}
	}
	for _, t := range g.Nodes {
		b.foreignKeys(t)
	}
	for _, r := range g.Relations {
		if r.Rel == gen.M2M {
			s.AddTables(b.joinTable(s, g, r))
		}
	}
	return s, nil
}

func schemaName(dialectName string) string {
	switch dialectName {
	case dialect.Postgres:
		return "public"
	case dialect.SQLite:
		return "main"
	}
	return ""
}

type builder struct {
	graph   *gen.Graph
	dialect string
	tables  map[*gen.Type]*schema.Table
}

func (b *builder) columns(t *gen.Type) error {
	tb := b.tables[t]
	tb.AddColumns(b.idColumn(t.Parent == nil))
	tb.SetPrimaryKey(schema.NewPrimaryKey(tb.Columns[0]))
	for _, f := range t.Fields {
		if f.IsID() || f.Static {
			continue
		}
		c := schema.NewColumn(f.Column()).SetType(b.columnType(f)).SetNull(true)
		if err := b.addColumn(tb, c); err != nil {
			return err
		}
	}
	for _, e := range t.Edges {
		if !e.OwnFK() {
			continue
		}
		c := schema.NewColumn(e.Column()).SetType(b.intType()).SetNull(e.Optional)
		if err := b.addColumn(tb, c); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addColumn(tb *schema.Table, c *schema.Column) error {
	if _, ok := tb.Column(c.Name); ok {
		return fmt.Errorf("schema: table %q: duplicate column %q", tb.Name, c.Name)
	}
	tb.AddColumns(c)
	return nil
}

func (b *builder) foreignKeys(t *gen.Type) {
	tb := b.tables[t]
	if t.Parent != nil {
		parent := b.tables[t.Parent]
		tb.AddForeignKeys(schema.NewForeignKey(tb.Name+"_"+parent.Name+"_parent").
			AddColumns(tb.Columns[0]).
			SetRefTable(parent).
			AddRefColumns(parent.Columns[0]).
			SetOnDelete(schema.Cascade))
	}
	for _, e := range t.Edges {
		if !e.OwnFK() {
			continue
		}
		c, _ := tb.Column(e.Column())
		ref := b.tables[e.Type]
		fk := schema.NewForeignKey(tb.Name+"_"+e.Column()).
			AddColumns(c).
			SetRefTable(ref).
			AddRefColumns(ref.Columns[0])
		switch {
		case e.Relation.Cascade && !e.IsWhole():
			// The row is a composition part.
			fk.SetOnDelete(schema.Cascade)
		case e.Optional:
			fk.SetOnDelete(schema.SetNull)
		default:
			fk.SetOnDelete(schema.NoAction)
		}
		tb.AddForeignKeys(fk)
	}
}

func (b *builder) joinTable(s *schema.Schema, g *gen.Graph, r *gen.Relation) *schema.Table {
	src, dst := b.tables[g.Type(r.Source)], b.tables[g.Type(r.Target)]
	srcCol, dstCol := r.JoinColumns()
	tb := schema.NewTable(r.JoinTable())
	tb.SetSchema(s)
	sc := schema.NewColumn(srcCol).SetType(b.intType())
	dc := schema.NewColumn(dstCol).SetType(b.intType())
	tb.AddColumns(sc, dc)
	tb.SetPrimaryKey(schema.NewPrimaryKey(sc, dc))
	tb.AddForeignKeys(
		schema.NewForeignKey(tb.Name+"_"+srcCol).AddColumns(sc).SetRefTable(src).AddRefColumns(src.Columns[0]).SetOnDelete(schema.Cascade),
		schema.NewForeignKey(tb.Name+"_"+dstCol).AddColumns(dc).SetRefTable(dst).AddRefColumns(dst.Columns[0]).SetOnDelete(schema.Cascade),
	)
	return tb
}

// idColumn returns the primary key column. Only root tables increment it;
// subclass rows reuse the id of their parent row.
func (b *builder) idColumn(increment bool) *schema.Column {
	c := schema.NewColumn("id")
	switch {
	case !increment:
		c.SetType(b.intType())
	case b.dialect == dialect.Postgres:
		c.SetType(&postgres.SerialType{T: "bigserial"})
	case b.dialect == dialect.MySQL:
		c.SetType(b.intType()).AddAttrs(&mysql.AutoIncrement{})
	default:
		c.SetType(&schema.IntegerType{T: "integer"}).AddAttrs(&sqlite.AutoIncrement{})
	}
	return c
}

func (b *builder) intType() schema.Type {
	if b.dialect == dialect.SQLite {
		return &schema.IntegerType{T: "integer"}
	}
	return &schema.IntegerType{T: "bigint"}
}

// columnType maps the declared type of an attribute to a column type.
func (b *builder) columnType(f *gen.Field) schema.Type {
	switch {
	case f.Collection:
		return b.jsonType()
	case b.graph.Type(f.Type) != nil:
		return b.intType()
	}
	switch f.Kind() {
	case field.TypeInt:
		return &schema.IntegerType{T: "integer"}
	case field.TypeInt64:
		return b.intType()
	case field.TypeFloat64:
		switch b.dialect {
		case dialect.Postgres:
			return &schema.FloatType{T: "double precision"}
		case dialect.MySQL:
			return &schema.FloatType{T: "double"}
		}
		return &schema.FloatType{T: "real"}
	case field.TypeBool:
		if b.dialect == dialect.MySQL {
			return &schema.BoolType{T: "bool"}
		}
		return &schema.BoolType{T: "boolean"}
	case field.TypeTime:
		if b.dialect == dialect.MySQL {
			return &schema.TimeType{T: "datetime"}
		}
		return &schema.TimeType{T: "timestamp"}
	case field.TypeUUID:
		if b.dialect == dialect.Postgres {
			return &schema.UUIDType{T: "uuid"}
		}
		return &schema.StringType{T: "char", Size: 36}
	case field.TypeBytes:
		if b.dialect == dialect.Postgres {
			return &schema.BinaryType{T: "bytea"}
		}
		return &schema.BinaryType{T: "blob"}
	}
	return b.stringType()
}

func (b *builder) stringType() schema.Type {
	switch b.dialect {
	case dialect.MySQL:
		return &schema.StringType{T: "varchar", Size: DefaultStringSize}
	case dialect.Postgres:
		return &schema.StringType{T: "character varying"}
	}
	return &schema.StringType{T: "text"}
}

func (b *builder) jsonType() schema.Type {
	if b.dialect == dialect.Postgres {
		return &schema.JSONType{T: "jsonb"}
	}
	return &schema.JSONType{T: "json"}
}

// Tables returns the tables of s in dependency order: a table comes after
// every table it references, except within reference cycles.
func Tables(s *schema.Schema) []*schema.Table {
	var (
		sorted  []*schema.Table
		visited = make(map[*schema.Table]bool, len(s.Tables))
		visit   func(*schema.Table)
	)
	visit = func(t *schema.Table) {
		if visited[t] {
			return
		}
		visited[t] = true
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != t {
				visit(fk.RefTable)
			}
		}
		sorted = append(sorted, t)
	}
	for _, t := range s.Tables {
		visit(t)
	}
	return sorted
}
