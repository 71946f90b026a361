package graphql

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/syssam/pumlgen/compiler/gen"
)

// DefaultSchemaPath is the schema file written below the target directory.
const DefaultSchemaPath = "schema.graphql"

// SchemaHook is a function that is called after GraphQL schema generation.
// It receives the graph and the generated schema content, and can modify
// or perform additional processing on the schema.
type SchemaHook func(g *gen.Graph, schema string) (string, error)

// Extension renders the GraphQL schema of a graph and, optionally, keeps
// a gqlgen.yml in sync with it.
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithConfigPath("gqlgen.yml"),
//	    graphql.WithModelPackage("github.com/acme/shop/model"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = ex.Generate(ctx, g)
type Extension struct {
	schemaPath   string
	configPath   string
	modelPackage string
	schemaHooks  []SchemaHook
}

// ExtensionOption is a function that configures the Extension.
type ExtensionOption func(*Extension) error

// Generator is the graphql target with the default settings.
var Generator gen.Generator = &Extension{schemaPath: DefaultSchemaPath}

// NewExtension creates a new GraphQL extension with the given options.
func NewExtension(opts ...ExtensionOption) (*Extension, error) {
	ex := &Extension{schemaPath: DefaultSchemaPath}
	for _, opt := range opts {
		if err := opt(ex); err != nil {
			return nil, err
		}
	}
	return ex, nil
}

// WithSchemaPath sets the schema file, relative to the target directory.
func WithSchemaPath(path string) ExtensionOption {
	return func(ex *Extension) error {
		if path == "" {
			return errors.New("graphql: schema path must not be empty")
		}
		ex.schemaPath = filepath.ToSlash(path)
		return nil
	}
}

// WithConfigPath enables updating the gqlgen.yml at path, relative to the
// target directory.
func WithConfigPath(path string) ExtensionOption {
	return func(ex *Extension) error {
		ex.configPath = path
		return nil
	}
}

// WithModelPackage sets the Go import path of the structs rendered by the
// go target. gqlgen.yml binds every class to its struct in that package.
func WithModelPackage(pkg string) ExtensionOption {
	return func(ex *Extension) error {
		ex.modelPackage = pkg
		return nil
	}
}

// WithSchemaHook adds hooks that run on the rendered schema, in order.
func WithSchemaHook(hooks ...SchemaHook) ExtensionOption {
	return func(ex *Extension) error {
		ex.schemaHooks = append(ex.schemaHooks, hooks...)
		return nil
	}
}

// Generate writes the schema, and gqlgen.yml when configured.
func (e *Extension) Generate(_ context.Context, g *gen.Graph) error {
	if g.Config == nil || g.Target == "" {
		return gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	sdl, err := SDL(g)
	if err != nil {
		return gen.NewGenerationError(gen.TargetGraphQL, e.schemaPath, "render schema", err)
	}
	for _, h := range e.schemaHooks {
		if sdl, err = h(g, sdl); err != nil {
			return gen.NewGenerationError(gen.TargetGraphQL, e.schemaPath, "schema hook", err)
		}
	}
	if err := g.WriteFile(gen.TargetGraphQL, e.schemaPath, []byte(header(g.Header)+sdl)); err != nil {
		return err
	}
	if e.configPath == "" {
		return nil
	}
	path := filepath.Join(g.Target, e.configPath)
	cfg, err := LoadGQLGenConfig(path)
	if err != nil {
		return gen.NewGenerationError(gen.TargetGraphQL, e.configPath, "load gqlgen config", err)
	}
	types := make([]string, 0, len(g.Nodes))
	for _, t := range g.Nodes {
		types = append(types, t.Name)
	}
	cfg.Bind(e.modelPackage, e.schemaPath, types)
	if err := SaveGQLGenConfig(path, cfg); err != nil {
		return gen.NewGenerationError(gen.TargetGraphQL, e.configPath, "save gqlgen config", err)
	}
	g.Log().Info("gqlgen config updated", "path", path)
	return nil
}

// header turns the configured header into a comment block.
func header(h string) string {
	if h == "" {
		return ""
	}
	var b strings.Builder
	for _, l := range strings.Split(strings.TrimRight(h, "\n"), "\n") {
		b.WriteString(strings.TrimRight("# "+l, " ") + "\n")
	}
	return b.String() + "\n"
}
