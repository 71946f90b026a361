// Package golang renders the model as plain Go structs with jennifer.
package golang

import (
	"bytes"
	"context"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/schema/field"
)

// Generator writes one file per class into <target>/<pkg>, where pkg is
// the last element of the configured package.
var Generator gen.Generator = gen.GenerateFunc(generate)

func generate(ctx context.Context, g *gen.Graph) error {
	if g.Config == nil || g.Target == "" {
		return gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	pkg := PackageName(g.Package)
	eg, ctx := errgroup.WithContext(ctx)
	if g.Workers > 0 {
		eg.SetLimit(g.Workers)
	}
	for _, t := range g.Nodes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return write(g, pkg, t.Label()+".go", File(g, pkg, t))
		})
	}
	eg.Go(func() error {
		return write(g, pkg, "doc.go", docFile(g, pkg))
	})
	return eg.Wait()
}

func write(g *gen.Graph, pkg, name string, f *jen.File) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return gen.NewGenerationError(gen.TargetGo, name, "render", err)
	}
	return g.WriteFile(gen.TargetGo, pkg+"/"+name, buf.Bytes())
}

// PackageName returns the Go package name for a dotted base package:
// its last element, lower-cased, with non-identifier characters dropped.
func PackageName(base string) string {
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}
		return -1
	}, base)
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return "model"
	}
	return name
}

func newFile(g *gen.Graph, pkg string) *jen.File {
	f := jen.NewFile(pkg)
	if g.Header != "" {
		f.HeaderComment(g.Header)
	}
	return f
}

func docFile(g *gen.Graph, pkg string) *jen.File {
	f := newFile(g, pkg)
	f.PackageComment("Package " + pkg + " holds the entity types of the diagram.")
	return f
}

// File returns the source file of one type.
func File(g *gen.Graph, pkg string, t *gen.Type) *jen.File {
	f := newFile(g, pkg)
	if t.Abstract {
		f.Commentf("%s is an abstract entity. It is embedded by its subtypes.", t.Name)
	} else {
		f.Commentf("%s is the model entity for the %s class.", t.Name, t.Name)
	}
	f.Type().Id(t.Name).StructFunc(func(group *jen.Group) {
		if t.Parent != nil {
			group.Id(t.Parent.Name)
		} else {
			group.Id("ID").Int64().Tag(map[string]string{"json": "id"})
		}
		for _, fd := range t.Fields {
			if fd.IsID() || fd.Static {
				continue
			}
			group.Id(gen.Pascal(fd.Name)).Add(goType(g, fd)).Tag(map[string]string{"json": jsonName(fd.Name, false)})
		}
		for _, e := range t.Edges {
			if e.OwnFK() {
				fk := jen.Int64()
				if e.Optional {
					fk = jen.Op("*").Int64()
				}
				group.Id(gen.Pascal(e.Name) + "ID").Add(fk).Tag(map[string]string{"json": jsonName(e.Column(), true)})
			}
		}
		for _, e := range t.Edges {
			var typ jen.Code = jen.Op("*").Id(e.Type.Name)
			if !e.Unique {
				typ = jen.Index().Op("*").Id(e.Type.Name)
			}
			group.Id(gen.Pascal(e.Name)).Add(typ).Tag(map[string]string{"json": jsonName(e.Name, true)})
		}
	})
	for _, fd := range t.Fields {
		if fd.Static {
			f.Commentf("%s%s is the class-level %s attribute of %s.", t.Name, gen.Pascal(fd.Name), fd.Name, t.Name)
			f.Var().Id(t.Name + gen.Pascal(fd.Name)).Add(goType(g, fd))
		}
	}
	if len(t.Dependencies) > 0 {
		names := make([]string, len(t.Dependencies))
		for i, d := range t.Dependencies {
			names[i] = d.Name
		}
		f.Commentf("%s depends on %s.", t.Name, strings.Join(names, ", "))
	}
	return f
}

func goType(g *gen.Graph, fd *gen.Field) jen.Code {
	c := baseType(g, fd.BaseType())
	if fd.Collection {
		return jen.Index().Add(c)
	}
	return c
}

func baseType(g *gen.Graph, raw string) *jen.Statement {
	switch field.Classify(raw) {
	case field.TypeString, field.TypeUnknown, field.TypeUUID:
		return jen.String()
	case field.TypeInt:
		return jen.Int()
	case field.TypeInt64:
		return jen.Int64()
	case field.TypeFloat64:
		return jen.Float64()
	case field.TypeBool:
		return jen.Bool()
	case field.TypeTime:
		return jen.Qual("time", "Time")
	case field.TypeBytes:
		return jen.Index().Byte()
	}
	if t := g.Type(raw); t != nil {
		return jen.Op("*").Id(t.Name)
	}
	return jen.Any()
}

func jsonName(name string, omitempty bool) string {
	tag := gen.Camel(name)
	if omitempty {
		tag += ",omitempty"
	}
	return tag
}
