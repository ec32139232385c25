package db

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/policystore/internal/types"
)

// PlaceholderStyle selects how bound parameters are written in SQL text.
type PlaceholderStyle int

const (
	// PlaceholderDollar writes $1, $2, ... (PostgreSQL).
	PlaceholderDollar PlaceholderStyle = iota
	// PlaceholderNumbered writes ?1, ?2, ... (SQLite).
	PlaceholderNumbered
	// PlaceholderQuestion writes ? for every parameter (MySQL).
	PlaceholderQuestion
)

// Dialect describes the SQL differences between supported backends.
// Resolved once per store from the driver name; statements are written
// with ? and converted through Rebind.
type Dialect struct {
	Name        string
	Driver      string
	Placeholder PlaceholderStyle
	// SchemaQuery names the CREATE TABLE statement in the query catalog.
	SchemaQuery string
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "postgres", Placeholder: PlaceholderDollar, SchemaQuery: "create-table-postgres"}
	MySQL    = Dialect{Name: "mysql", Driver: "mysql", Placeholder: PlaceholderQuestion, SchemaQuery: "create-table-mysql"}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite3", Placeholder: PlaceholderNumbered, SchemaQuery: "create-table-sqlite"}
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case Postgres.Driver:
		return Postgres, nil
	case MySQL.Driver:
		return MySQL, nil
	case SQLite.Driver:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %s", types.ErrUnsupportedDriver, driverName)
	}
}

// Param returns the placeholder for the n-th (1-based) bound parameter.
func (d Dialect) Param(n int) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(n)
	case PlaceholderNumbered:
		return "?" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Rebind converts ? placeholders to the dialect's style.
// sqlx has no bind type for numbered ?N, so SQLite is rewritten here.
func (d Dialect) Rebind(query string) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return sqlx.Rebind(sqlx.DOLLAR, query)
	case PlaceholderNumbered:
		var sb strings.Builder
		sb.Grow(len(query) + 10)
		n := 0
		for _, c := range query {
			if c != '?' {
				sb.WriteRune(c)
				continue
			}
			n++
			sb.WriteString(d.Param(n))
		}
		return sb.String()
	default:
		return query
	}
}
