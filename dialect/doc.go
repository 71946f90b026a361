// Package dialect names the SQL dialects the DDL generator targets and
// defines the small driver interface used to apply generated statements.
//
// # Supported Dialects
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Sub-packages
//
//   - dialect/sql: database/sql backed Driver with the pq, mysql and sqlite drivers registered
//   - dialect/sql/schema: atlas tables, DDL planning, migration and validation
package dialect
