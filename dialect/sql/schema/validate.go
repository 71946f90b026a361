package schema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/pumlgen/dialect"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title + ":\n")
		for _, e := range errs {
			sb.WriteString("  - " + e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) add(fatal bool, e *ValidationError) {
	if fatal {
		r.Errors = append(r.Errors, e)
	} else {
		r.Warnings = append(r.Warnings, e)
	}
}

// identifier length limits per dialect.
var maxIdent = map[string]int{
	dialect.Postgres: 63,
	dialect.MySQL:    64,
}

// Validate checks a generated schema before it is planned: two classes
// mapping to one table, identifiers over the dialect limit and foreign
// keys to tables outside the schema are errors.
func Validate(s *schema.Schema, name string) *ValidationResult {
	result := &ValidationResult{}
	limit := maxIdent[name]
	long := func(ident string) bool { return limit > 0 && len(ident) > limit }
	tables := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if tables[t.Name] {
			result.add(true, &ValidationError{Table: t.Name, Message: "duplicate table name"})
		}
		tables[t.Name] = true
		if long(t.Name) {
			result.add(true, &ValidationError{Table: t.Name, Message: fmt.Sprintf("table name longer than %d characters", limit)})
		}
		if t.PrimaryKey == nil {
			result.add(false, &ValidationError{Table: t.Name, Message: "table has no primary key"})
		}
		for _, c := range t.Columns {
			if long(c.Name) {
				result.add(true, &ValidationError{Table: t.Name, Column: c.Name, Message: fmt.Sprintf("column name longer than %d characters", limit)})
			}
		}
		for _, fk := range t.ForeignKeys {
			if long(fk.Symbol) {
				result.add(true, &ValidationError{Table: t.Name, Message: fmt.Sprintf("foreign key %q longer than %d characters", fk.Symbol, limit)})
			}
		}
	}
	for _, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if !tables[fk.RefTable.Name] {
				result.add(true, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent table %q", fk.RefTable.Name),
				})
			}
		}
	}
	return result
}

// ValidateOption configures diff validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowNullToNotNull bool
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

// ValidateDiff validates the difference between the current and the
// desired tables. Breaking changes are errors unless allowed by opts;
// potentially failing ones are warnings. Tables missing from desired are
// never dropped and only reported as warnings.
func ValidateDiff(current, desired []*schema.Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	desiredMap := make(map[string]*schema.Table, len(desired))
	for _, t := range desired {
		desiredMap[t.Name] = t
	}
	for _, cur := range current {
		want, ok := desiredMap[cur.Name]
		if !ok {
			result.add(false, &ValidationError{Table: cur.Name, Message: "table is not in the diagram and is left unchanged"})
			continue
		}
		validateTableDiff(cur, want, cfg, result)
	}
	return result
}

func validateTableDiff(current, desired *schema.Table, cfg *validateConfig, result *ValidationResult) {
	for _, c := range current.Columns {
		if _, ok := desired.Column(c.Name); !ok {
			result.add(!cfg.allowDropColumn, &ValidationError{
				Table:    current.Name,
				Column:   c.Name,
				Message:  "column will be dropped",
				Breaking: true,
			})
		}
	}
	for _, want := range desired.Columns {
		cur, ok := current.Column(want.Name)
		if !ok {
			if !want.Type.Null && want.Default == nil {
				result.add(false, &ValidationError{
					Table:   current.Name,
					Column:  want.Name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
			continue
		}
		if cur.Type.Null && !want.Type.Null {
			result.add(!cfg.allowNullToNotNull, &ValidationError{
				Table:    current.Name,
				Column:   want.Name,
				Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
				Breaking: true,
			})
		}
	}
}
