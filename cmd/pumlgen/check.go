package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/pumlgen/compiler"
)

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <input.puml>...",
		Short: "Parse diagrams and report errors and warnings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			results, err := compiler.ParseFilesConfig(cmd.Context(), args, cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "%s: error: %v\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(out, "%s: ok (%d classes, %d relationships, %d warnings)\n",
					r.Path, len(r.Graph.Nodes), len(r.Graph.Relations), len(r.Graph.Diagnostics))
				for _, d := range r.Graph.Diagnostics {
					fmt.Fprintf(out, "%s: warning: %s\n", r.Path, d)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d diagrams failed", failed, len(results))
			}
			return nil
		},
	}
}
