package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/pumlgen/compiler"
	"github.com/syssam/pumlgen/compiler/gen"
)

// genFlags maps the generation flags to their config keys.
var genFlags = map[string]string{
	"output":    "target",
	"package":   "package",
	"target":    "targets",
	"templates": "templates",
	"header":    "header",
	"workers":   "workers",
	"snapshot":  "snapshot",
}

func addGenFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Output directory (default: out)")
	flags.StringP("package", "p", "", "Base package of generated sources (default: com.example.app)")
	flags.StringSlice("target", nil, "Generators to run: "+strings.Join([]string{gen.TargetQuarkus, gen.TargetGo, gen.TargetSQL, gen.TargetGraphQL}, ", "))
	flags.String("templates", "", "Directory of templates overriding the built-in ones")
	flags.String("header", "", "Header written at the top of generated files")
	flags.Int("workers", 0, "Files rendered in parallel (default: GOMAXPROCS)")
	flags.String("snapshot", "", "Model snapshot path; generation is skipped when the model is unchanged")
}

// bindGenFlags binds the generation flags of the running command. Several
// commands declare them, so binding happens when one of them runs.
func (c *cli) bindGenFlags(cmd *cobra.Command) error {
	for name, key := range genFlags {
		if err := c.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <input.puml> [output_dir] [base.package]",
		Short: "Generate sources from a diagram",
		Long:  "Parse a diagram and run the configured generators. The output directory and base package may be given as flags or positionally.",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.bindGenFlags(cmd); err != nil {
				return err
			}
			var extra []gen.Option
			if len(args) > 1 {
				extra = append(extra, gen.WithTarget(args[1]))
			}
			if len(args) > 2 {
				extra = append(extra, gen.WithPackage(args[2]))
			}
			cfg, err := c.config(extra...)
			if err != nil {
				return err
			}
			return c.generate(cmd.Context(), args[0], cfg)
		},
	}
	addGenFlags(cmd)
	return cmd
}

func (c *cli) generate(ctx context.Context, path string, cfg *gen.Config) error {
	g, err := compiler.ParseFileConfig(path, cfg)
	if err != nil {
		return err
	}
	c.report(g, path)
	if err := compiler.Generate(ctx, g); err != nil {
		return fmt.Errorf("generate %s: %w", path, err)
	}
	c.log.Info("generated", "input", path, "output", g.Target, "targets", strings.Join(g.Targets, ","), "classes", len(g.Nodes))
	return nil
}
