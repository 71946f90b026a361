// Package sql opens database connections for the supported dialects and
// executes generated DDL on them.
//
// Importing the package registers the lib/pq, go-sql-driver/mysql and
// modernc.org/sqlite drivers, so each dialect name doubles as the
// database/sql driver name:
//
//	drv, err := sql.Open(dialect.SQLite, "file:garden.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//	err = sql.ExecAll(ctx, sql.NewStatsDriver(drv, sql.WithLogger(logger)), stmts)
package sql
