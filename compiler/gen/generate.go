package gen

import (
	"context"
	"os"
	"path/filepath"
)

// Generator renders a graph into files under the configured target
// directory.
type Generator interface {
	Generate(context.Context, *Graph) error
}

// The GenerateFunc type is an adapter to allow the use of ordinary
// functions as Generator.
type GenerateFunc func(context.Context, *Graph) error

// Generate calls f(ctx, g).
func (f GenerateFunc) Generate(ctx context.Context, g *Graph) error {
	return f(ctx, g)
}

// Quarkus generates a Quarkus JPA project: an entity, a repository and a
// REST resource per class, plus pom.xml, application.properties and a
// README.
var Quarkus Generator = GenerateFunc(generateQuarkus)

func generateQuarkus(ctx context.Context, g *Graph) error {
	if g.Config == nil || g.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	tmpl, err := QuarkusTemplates(g.Templates)
	if err != nil {
		return NewGenerationError(TargetQuarkus, "", "load templates", err)
	}
	w := NewTemplateWriter(g, tmpl, g.Target).WithWorkers(g.Workers)
	if err := w.GenerateAll(ctx); err != nil {
		return err
	}
	m := w.Metrics()
	g.Log().Info("quarkus project generated", "dir", g.Target, "files", m.FilesGenerated, "bytes", m.TotalBytes)
	return nil
}

// WriteFile writes a generated file below the target directory of g.
func (g *Graph) WriteFile(target, name string, data []byte) error {
	path := filepath.Join(g.Target, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewGenerationError(target, name, "create directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewGenerationError(target, name, "write file", err)
	}
	g.Log().Debug("generated file", "target", target, "file", name, "bytes", len(data))
	return nil
}
