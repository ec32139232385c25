package db

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Template tokens substituted into catalog statements.
// Values must be validated identifiers; they are interpolated, not bound.
const (
	TableToken      = "__TABLE__"
	ConstraintToken = "__CONSTRAINT__"
)

// Queries provides access to named SQL statements loaded from embedded .sql files.
// Uses dotsql for named query management; every statement is rendered for
// one table and one dialect.
type Queries struct {
	dot     *dotsql.DotSql
	dialect Dialect
	table   string
}

// LoadQueries loads all .sql files from the embedded filesystem.
// table must already have passed identifier validation.
func LoadQueries(dialect Dialect, table string) (*Queries, error) {
	var combinedSQL string

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}

		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		combinedSQL += string(content) + "\n"
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combinedSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	return &Queries{dot: dot, dialect: dialect, table: table}, nil
}

// Statement returns a named statement with the table substituted and
// placeholders converted to the dialect's style.
func (q *Queries) Statement(name string) (string, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	query = strings.ReplaceAll(query, TableToken, q.table)
	query = strings.ReplaceAll(query, ConstraintToken, ConstraintName(q.table))
	return q.dialect.Rebind(strings.TrimSpace(query)), nil
}

// ConstraintName returns the uniqueness constraint name for a table.
// Dots (schema-qualified names) are not valid in constraint names.
func ConstraintName(table string) string {
	return "unique_key_sqlx_adapter_" + strings.ReplaceAll(table, ".", "_")
}
