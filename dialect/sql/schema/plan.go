package schema

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/dialect"
	"github.com/syssam/pumlgen/dialect/sql"
)

// planner returns the offline atlas planner of a dialect.
func planner(name string) (migrate.PlanApplier, error) {
	switch name {
	case dialect.Postgres:
		return postgres.DefaultPlan, nil
	case dialect.MySQL:
		return mysql.DefaultPlan, nil
	case dialect.SQLite:
		return sqlite.DefaultPlan, nil
	}
	return nil, dialect.Validate(name)
}

// Plan returns the statements creating every table of s, referenced tables
// first. Table names are not schema qualified.
func Plan(ctx context.Context, s *schema.Schema, name string) ([]string, error) {
	pa, err := planner(name)
	if err != nil {
		return nil, err
	}
	tables := Tables(s)
	changes := make([]schema.Change, len(tables))
	for i, t := range tables {
		changes[i] = &schema.AddTable{T: t}
	}
	return planChanges(ctx, pa, name, changes)
}

func planChanges(ctx context.Context, pa migrate.PlanApplier, name string, changes []schema.Change) ([]string, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	noQualifier := func(o *migrate.PlanOptions) {
		q := ""
		o.SchemaQualifier = &q
	}
	plan, err := pa.PlanChanges(ctx, "pumlgen", changes, noQualifier)
	if err != nil {
		return nil, fmt.Errorf("schema: plan %s changes: %w", name, err)
	}
	stmts := make([]string, len(plan.Changes))
	for i, c := range plan.Changes {
		stmts[i] = c.Cmd
	}
	return stmts, nil
}

// DDL renders the complete DDL script of g for the given dialect.
func DDL(ctx context.Context, g *gen.Graph, name string) (string, error) {
	s, err := NewSchema(g, name)
	if err != nil {
		return "", err
	}
	if res := Validate(s, name); res.HasErrors() {
		return "", fmt.Errorf("schema: invalid %s schema:\n%s", name, res)
	}
	stmts, err := Plan(ctx, s, name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, stmt := range stmts {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	return b.String(), nil
}

// Apply executes stmts in one transaction.
func Apply(ctx context.Context, drv dialect.Driver, stmts []string) error {
	return sql.ExecAll(ctx, drv, stmts)
}

// MigrateOption configures Migrate.
type MigrateOption func(*migrateConfig)

type migrateConfig struct {
	dryRun   bool
	validate []ValidateOption
	log      *slog.Logger
}

// WithDryRun plans the migration without executing it.
func WithDryRun() MigrateOption {
	return func(c *migrateConfig) {
		c.dryRun = true
	}
}

// WithExecLogger logs every executed statement, slow statements and the
// final query statistics to l.
func WithExecLogger(l *slog.Logger) MigrateOption {
	return func(c *migrateConfig) {
		c.log = l
	}
}

// WithValidateOptions relaxes the checks applied to the planned changes.
func WithValidateOptions(opts ...ValidateOption) MigrateOption {
	return func(c *migrateConfig) {
		c.validate = append(c.validate, opts...)
	}
}

// Migrate brings the database of drv in line with desired. It inspects the
// live schema, diffs it against desired and applies the changes in one
// transaction. Tables that exist only in the database are left alone.
// Breaking changes, such as dropped columns, fail unless allowed with
// WithValidateOptions. It returns the planned statements.
func Migrate(ctx context.Context, drv *sql.Driver, desired *schema.Schema, opts ...MigrateOption) ([]string, error) {
	cfg := &migrateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	ad, err := open(drv.Dialect(), drv.DB())
	if err != nil {
		return nil, err
	}
	current, err := ad.InspectSchema(ctx, "", nil)
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: %w", err)
	}
	target := *desired
	target.Name, target.Realm = current.Name, current.Realm
	changes, err := ad.SchemaDiff(current, &target)
	if err != nil {
		return nil, fmt.Errorf("schema: diff: %w", err)
	}
	changes = keepTables(changes)
	if res := ValidateDiff(current.Tables, target.Tables, cfg.validate...); res.HasErrors() {
		return nil, fmt.Errorf("schema: refusing to migrate:\n%s", res)
	}
	stmts, err := planChanges(ctx, ad, drv.Dialect(), changes)
	if err != nil || cfg.dryRun || len(stmts) == 0 {
		return stmts, err
	}
	if cfg.log == nil {
		return stmts, Apply(ctx, drv, stmts)
	}
	sd := sql.NewStatsDriver(drv, sql.WithLogger(cfg.log))
	err = Apply(ctx, sd, stmts)
	cfg.log.Info("migration applied", "stats", sd.QueryStats().Stats().String())
	return stmts, err
}

// keepTables drops the DropTable changes of tables unknown to the diagram.
func keepTables(changes []schema.Change) []schema.Change {
	kept := changes[:0]
	for _, c := range changes {
		if _, ok := c.(*schema.DropTable); !ok {
			kept = append(kept, c)
		}
	}
	return kept
}

func open(name string, db *stdsql.DB) (migrate.Driver, error) {
	switch name {
	case dialect.Postgres:
		return postgres.Open(db)
	case dialect.MySQL:
		return mysql.Open(db)
	case dialect.SQLite:
		return sqlite.Open(db)
	}
	return nil, dialect.Validate(name)
}
