package schema

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/compiler/load"
	"github.com/syssam/pumlgen/dialect"
	"github.com/syssam/pumlgen/dialect/sql"
)

const shop = `
abstract class Party {
  + name : String
}
class Customer
class Order {
  + total : double
  + placed : datetime
}
class Line {
  + qty : int
}
class Product {
  + name : String
  + tags : List<String>
}
Customer --|> Party
Customer "1" -- "*" Order
Order "1" *-- "*" Line
Line "*" --> "1" Product
Product "*" -- "*" Product
`

func graph(t *testing.T, src string, opts ...gen.Option) *gen.Graph {
	t.Helper()
	d, err := load.ParseString(src)
	require.NoError(t, err)
	g, err := gen.NewGraph(gen.MustNewConfig(opts...), d)
	require.NoError(t, err)
	return g
}

func table(t *testing.T, s *schema.Schema, name string) *schema.Table {
	t.Helper()
	tb, ok := s.Table(name)
	require.True(t, ok, "table %q", name)
	return tb
}

func TestNewSchema(t *testing.T) {
	s, err := NewSchema(graph(t, shop), dialect.SQLite)
	require.NoError(t, err)

	var names []string
	for _, tb := range s.Tables {
		names = append(names, tb.Name)
	}
	assert.Equal(t, []string{"parties", "customers", "orders", "lines", "products", "product_products"}, names)

	customers := table(t, s, "customers")
	require.Len(t, customers.ForeignKeys, 1)
	assert.Equal(t, "parties", customers.ForeignKeys[0].RefTable.Name)
	assert.Equal(t, schema.Cascade, customers.ForeignKeys[0].OnDelete)

	orders := table(t, s, "orders")
	c, ok := orders.Column("customer_id")
	require.True(t, ok)
	assert.False(t, c.Type.Null)
	_, ok = orders.Column("placed")
	assert.True(t, ok)

	lines := table(t, s, "lines")
	require.Len(t, lines.ForeignKeys, 2)
	for _, fk := range lines.ForeignKeys {
		switch fk.RefTable.Name {
		case "orders":
			assert.Equal(t, schema.Cascade, fk.OnDelete, "composition part")
		case "products":
			assert.Equal(t, schema.NoAction, fk.OnDelete)
		default:
			t.Fatalf("unexpected reference to %q", fk.RefTable.Name)
		}
	}

	products := table(t, s, "products")
	tags, ok := products.Column("tags")
	require.True(t, ok)
	assert.IsType(t, &schema.JSONType{}, tags.Type.Type)

	join := table(t, s, "product_products")
	require.NotNil(t, join.PrimaryKey)
	assert.Len(t, join.PrimaryKey.Parts, 2)
	_, ok = join.Column("related_product_id")
	assert.True(t, ok)

	_, err = NewSchema(graph(t, shop), "oracle")
	assert.Error(t, err)
}

func TestNewSchema_DuplicateColumn(t *testing.T) {
	g := graph(t, `
class Flower {
  + potId : Long
}
class Pot
Flower "*" --> "1" Pot
`)
	_, err := NewSchema(g, dialect.Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "pot_id"`)
}

func TestTables(t *testing.T) {
	s, err := NewSchema(graph(t, `
class A
class B
A "*" --> "1" B
B "*" --> "1" A
`), dialect.Postgres)
	require.NoError(t, err)
	assert.Len(t, Tables(s), 2, "cycles are emitted once")
}

func TestPlan(t *testing.T) {
	g := graph(t, shop)
	tests := []struct {
		dialect string
		want    []string
	}{
		{dialect.Postgres, []string{`CREATE TABLE "parties"`, "bigserial", `"tags" jsonb`, "ON DELETE CASCADE"}},
		{dialect.MySQL, []string{"CREATE TABLE `parties`", "AUTO_INCREMENT", "varchar(255)"}},
		{dialect.SQLite, []string{"CREATE TABLE `parties`", "AUTOINCREMENT"}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			s, err := NewSchema(g, tt.dialect)
			require.NoError(t, err)
			stmts, err := Plan(context.Background(), s, tt.dialect)
			require.NoError(t, err)
			require.NotEmpty(t, stmts)
			all := strings.Join(stmts, "\n")
			for _, w := range tt.want {
				assert.Contains(t, all, w)
			}
			assert.NotContains(t, all, `"public".`)
		})
	}
}

func openSQLite(t *testing.T, name string) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, "file:"+name+"?mode=memory&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	return drv
}

func TestDDL_SQLite(t *testing.T) {
	ctx := context.Background()
	ddl, err := DDL(ctx, graph(t, shop), dialect.SQLite)
	require.NoError(t, err)

	drv := openSQLite(t, "ddl")
	db := drv.DB()
	for _, stmt := range strings.Split(strings.TrimSpace(ddl), ";\n") {
		_, err := db.ExecContext(ctx, strings.TrimSuffix(stmt, ";"))
		require.NoError(t, err, stmt)
	}
	for _, stmt := range []string{
		"INSERT INTO parties (id, name) VALUES (1, 'ada')",
		"INSERT INTO customers (id) VALUES (1)",
		"INSERT INTO orders (id, total, customer_id) VALUES (1, 9.5, 1)",
		"INSERT INTO products (id, name, tags) VALUES (1, 'rose', '[\"red\"]')",
		"INSERT INTO lines (id, qty, order_id, product_id) VALUES (1, 2, 1, 1)",
		"DELETE FROM orders WHERE id = 1",
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT count(*) FROM lines").Scan(&n))
	assert.Zero(t, n, "composition parts are deleted with their whole")

	_, err = db.ExecContext(ctx, "INSERT INTO orders (id, total, customer_id) VALUES (2, 1, 42)")
	assert.Error(t, err, "foreign keys are enforced")
}

func TestDDL_Invalid(t *testing.T) {
	_, err := DDL(context.Background(), graph(t, "class Order\nclass Orders\n"), dialect.Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate table name")
}

func TestApply(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB(dialect.Postgres, db)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE "pots"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "flowers"`).WillReturnError(errors.New(`relation "flowers" already exists`))
	mock.ExpectRollback()

	err = Apply(context.Background(), drv, []string{
		`CREATE TABLE "pots" ("id" bigserial NOT NULL, PRIMARY KEY ("id"))`,
		`CREATE TABLE "flowers" ("id" bigserial NOT NULL, PRIMARY KEY ("id"))`,
	})
	require.ErrorContains(t, err, "already exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	drv := openSQLite(t, "migrate")
	_, err := drv.DB().ExecContext(ctx, "CREATE TABLE audit (id integer PRIMARY KEY)")
	require.NoError(t, err)

	v1, err := NewSchema(graph(t, "class Pot {\n + size : int\n}\nclass Flower\nFlower \"*\" --> \"0..1\" Pot\n"), dialect.SQLite)
	require.NoError(t, err)
	stmts, err := Migrate(ctx, drv, v1)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(stmts, "\n"), "CREATE TABLE `flowers`")

	v2, err := NewSchema(graph(t, "class Pot {\n + size : int\n}\nclass Flower\nclass Vase\nFlower \"*\" --> \"0..1\" Pot\n"), dialect.SQLite)
	require.NoError(t, err)

	planned, err := Migrate(ctx, drv, v2, WithDryRun())
	require.NoError(t, err)
	assert.Contains(t, strings.Join(planned, "\n"), "CREATE TABLE `vases`")
	var n int
	require.NoError(t, drv.DB().QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE name = 'vases'").Scan(&n))
	assert.Zero(t, n, "dry run applies nothing")

	var logs bytes.Buffer
	_, err = Migrate(ctx, drv, v2, WithExecLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "migration applied")
	require.NoError(t, drv.DB().QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master WHERE name IN ('vases', 'audit')").Scan(&n))
	assert.Equal(t, 2, n, "tables outside the diagram are kept")

	v3, err := NewSchema(graph(t, "class Pot\nclass Flower\nclass Vase\nFlower \"*\" --> \"0..1\" Pot\n"), dialect.SQLite)
	require.NoError(t, err)
	_, err = Migrate(ctx, drv, v3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pots.size: column will be dropped")
}

func TestValidate(t *testing.T) {
	long := strings.Repeat("Very", 20)
	s, err := NewSchema(graph(t, "class "+long+"\n"), dialect.Postgres)
	require.NoError(t, err)
	res := Validate(s, dialect.Postgres)
	assert.True(t, res.HasErrors())
	assert.Contains(t, res.String(), "longer than 63 characters")
	assert.False(t, Validate(s, dialect.SQLite).HasErrors())
}

func TestValidateDiff(t *testing.T) {
	cur := schema.NewTable("pots").AddColumns(
		schema.NewIntColumn("id", "bigint"),
		schema.NewNullIntColumn("size", "integer"),
		schema.NewIntColumn("color", "integer"),
	)
	want := schema.NewTable("pots").AddColumns(
		schema.NewIntColumn("id", "bigint"),
		schema.NewIntColumn("size", "integer"),
		schema.NewIntColumn("height", "integer"),
	)
	other := schema.NewTable("audit").AddColumns(schema.NewIntColumn("id", "bigint"))

	res := ValidateDiff([]*schema.Table{cur, other}, []*schema.Table{want})
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "pots.color: column will be dropped", res.Errors[0].Error())
	assert.Contains(t, res.Errors[1].Error(), "NULL to NOT NULL")
	assert.Len(t, res.Warnings, 2)

	res = ValidateDiff([]*schema.Table{cur}, []*schema.Table{want}, AllowDropColumn(), AllowNullToNotNull())
	assert.False(t, res.HasErrors())
	assert.True(t, res.HasWarnings())
	assert.Contains(t, res.String(), "[BREAKING]")
}

func TestGenerator(t *testing.T) {
	dir := t.TempDir()
	g := graph(t, shop, gen.WithTarget(dir), gen.WithDialect(dialect.MySQL), gen.WithHeader("generated"))
	require.NoError(t, Generator.Generate(context.Background(), g))
	b, err := os.ReadFile(filepath.Join(dir, "schema.sql"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "-- generated\n"))
	assert.Contains(t, string(b), "CREATE TABLE `orders`")
}
