// Package compiler is the entry point of pumlgen: it parses diagrams into
// graphs and runs the configured generators on them.
//
//	g, err := compiler.ParseFile("shop.puml", gen.WithTarget("out"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range g.Diagnostics {
//	    log.Println(d)
//	}
//	if err := compiler.Generate(ctx, g); err != nil {
//	    log.Fatal(err)
//	}
package compiler

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/compiler/gen/golang"
	"github.com/syssam/pumlgen/compiler/load"
	"github.com/syssam/pumlgen/contrib/graphql"
	"github.com/syssam/pumlgen/dialect/sql/schema"
)

// Generators maps target names to their generator.
var Generators = map[string]gen.Generator{
	gen.TargetQuarkus: gen.Quarkus,
	gen.TargetGo:      golang.Generator,
	gen.TargetSQL:     schema.Generator,
	gen.TargetGraphQL: graphql.Generator,
}

// Parse reads one diagram from r and assembles its graph.
func Parse(r io.Reader, opts ...gen.Option) (*gen.Graph, error) {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return parse(r, cfg)
}

func parse(r io.Reader, cfg *gen.Config) (*gen.Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, err := load.Parse(r, cfg.LoadOptions()...)
	if err != nil {
		return nil, err
	}
	return gen.NewGraph(cfg, d)
}

// ParseFile parses the diagram stored at path.
func ParseFile(path string, opts ...gen.Option) (*gen.Graph, error) {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return ParseFileConfig(path, cfg)
}

// ParseFileConfig parses the diagram stored at path with a prepared
// configuration.
func ParseFileConfig(path string, cfg *gen.Config) (*gen.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: open diagram: %w", err)
	}
	defer f.Close()
	g, err := parse(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Result is the outcome of parsing one file of a batch.
type Result struct {
	Path  string
	Graph *gen.Graph
	Err   error
}

// ParseFiles parses independent diagrams in parallel. Every file gets its
// own result, in the order of paths; a failing file does not stop the
// others. The returned error is only set when ctx is done.
func ParseFiles(ctx context.Context, paths []string, opts ...gen.Option) ([]*Result, error) {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return ParseFilesConfig(ctx, paths, cfg)
}

// ParseFilesConfig is like ParseFiles with a prepared configuration. Each
// file is parsed with its own copy of cfg.
func ParseFilesConfig(ctx context.Context, paths []string, cfg *gen.Config) ([]*Result, error) {
	results := make([]*Result, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(cfg.Workers, 1))
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := *cfg
			g, err := ParseFileConfig(path, &c)
			results[i] = &Result{Path: path, Graph: g, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Generate runs the generators of every configured target on g. When a
// snapshot path is configured and the stored snapshot matches g, nothing
// is generated; otherwise the snapshot is refreshed after a successful run.
func Generate(ctx context.Context, g *gen.Graph) error {
	if g.Config == nil {
		return gen.NewConfigError("Config", nil, "graph has no configuration")
	}
	if err := g.Validate(); err != nil {
		return err
	}
	log := g.Log()
	if g.Snapshot != "" {
		changed, err := gen.SnapshotChanged(g, g.Snapshot)
		if err != nil {
			return err
		}
		if !changed {
			log.Info("model unchanged, skipping generation", "snapshot", g.Snapshot)
			return nil
		}
	}
	for _, target := range g.Targets {
		generator, ok := Generators[target]
		if !ok {
			return gen.NewConfigError("Targets", target, "no generator registered")
		}
		if err := generator.Generate(ctx, g); err != nil {
			return err
		}
		log.Debug("target generated", "target", target)
	}
	if g.Snapshot != "" {
		return gen.WriteSnapshot(g, g.Snapshot)
	}
	return nil
}
