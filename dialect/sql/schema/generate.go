package schema

import (
	"context"
	"strings"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/dialect"
)

// Generator writes the DDL of the configured dialect to schema.sql.
var Generator gen.Generator = gen.GenerateFunc(func(ctx context.Context, g *gen.Graph) error {
	if g.Config == nil || g.Target == "" {
		return gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	name := g.Dialect
	if name == "" {
		name = dialect.Postgres
	}
	ddl, err := DDL(ctx, g, name)
	if err != nil {
		return gen.NewGenerationError(gen.TargetSQL, "schema.sql", "render ddl", err)
	}
	return g.WriteFile(gen.TargetSQL, "schema.sql", []byte(header(g.Header)+ddl))
})

func header(h string) string {
	if h == "" {
		return ""
	}
	var b strings.Builder
	for _, l := range strings.Split(strings.TrimRight(h, "\n"), "\n") {
		b.WriteString(strings.TrimRight("-- "+l, " ") + "\n")
	}
	return b.String()
}
