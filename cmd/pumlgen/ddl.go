package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/pumlgen/compiler"
	"github.com/syssam/pumlgen/dialect"
	"github.com/syssam/pumlgen/dialect/sql"
	"github.com/syssam/pumlgen/dialect/sql/schema"
)

func (c *cli) ddlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl <input.puml>",
		Short: "Print the SQL schema of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			g, err := compiler.ParseFileConfig(args[0], cfg)
			if err != nil {
				return err
			}
			c.report(g, args[0])
			ddl, err := schema.DDL(cmd.Context(), g, dialectOf(cfg.Dialect))
			if err != nil {
				return err
			}
			if out, _ := cmd.Flags().GetString("output"); out != "" {
				return os.WriteFile(out, []byte(ddl), 0o644)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), ddl)
			return err
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the DDL to a file instead of stdout")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <input.puml>",
		Short: "Bring a database schema in line with a diagram",
		Long:  "Inspect the database at --dsn (or PUMLGEN_DSN, also read from .env), diff it against the diagram and apply the missing tables and columns. Tables that are not in the diagram are left alone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.v.BindPFlag("dsn", cmd.Flags().Lookup("dsn")); err != nil {
				return err
			}
			dsn := c.v.GetString("dsn")
			if dsn == "" {
				return fmt.Errorf("missing --dsn or PUMLGEN_DSN")
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			g, err := compiler.ParseFileConfig(args[0], cfg)
			if err != nil {
				return err
			}
			c.report(g, args[0])
			name := dialectOf(cfg.Dialect)
			desired, err := schema.NewSchema(g, name)
			if err != nil {
				return err
			}
			if res := schema.Validate(desired, name); res.HasErrors() {
				return fmt.Errorf("invalid schema:\n%s", res)
			}
			drv, err := sql.Open(name, dsn)
			if err != nil {
				return err
			}
			defer drv.Close()

			opts := []schema.MigrateOption{schema.WithExecLogger(c.log)}
			if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
				opts = append(opts, schema.WithDryRun())
			}
			if drop, _ := cmd.Flags().GetBool("allow-drop-column"); drop {
				opts = append(opts, schema.WithValidateOptions(schema.AllowDropColumn()))
			}
			stmts, err := schema.Migrate(cmd.Context(), drv, desired, opts...)
			if err != nil {
				return err
			}
			for _, s := range stmts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", s)
			}
			c.log.Info("migration planned", "statements", len(stmts), "dialect", name)
			return nil
		},
	}
	cmd.Flags().String("dsn", "", "Database connection string")
	cmd.Flags().Bool("dry-run", false, "Print the statements without executing them")
	cmd.Flags().Bool("allow-drop-column", false, "Allow dropping columns that are no longer in the diagram")
	return cmd
}

func dialectOf(name string) string {
	if name == "" {
		return dialect.Postgres
	}
	return name
}
