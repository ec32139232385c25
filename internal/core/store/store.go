// Package store persists casbin-style policy rules in a relational table.
//
// One Store serves one table on one *sqlx.DB. SQL text is rendered once per
// store for its dialect (PostgreSQL, MySQL or SQLite); values are always
// bound, only the validated table name is interpolated.
//
// Concurrency: a Store is safe for concurrent use. Batch operations run in a
// single transaction and rely on the database's isolation level when batches
// from several processes target the same table; no application lock is held.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/policystore/internal/core/db"
	"github.com/solatis/policystore/internal/core/metrics"
	"github.com/solatis/policystore/internal/types"
	"go.uber.org/zap"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "casbin_rule"

// Operation names used for metrics and logs.
const (
	opEnsureTable    = "ensure_table"
	opInsertOne      = "insert_one"
	opInsertMany     = "insert_many"
	opDeleteOne      = "delete_one"
	opDeleteMany     = "delete_many"
	opDeleteFiltered = "delete_filtered"
	opFindFiltered   = "find_filtered"
	opClear          = "clear"
	opReplaceAll     = "replace_all"
	opLoadAll        = "load_all"
	opLoadFiltered   = "load_filtered"
)

const selectColumns = "SELECT id, ptype, v0, v1, v2, v3, v4, v5 FROM "

// Store is the policy rule persistence engine for one table.
type Store struct {
	db       *sqlx.DB
	dialect  db.Dialect
	table    string
	stmts    statements
	filtered atomic.Bool
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// statements holds the catalog statements rendered for this store.
type statements struct {
	schema         string
	insert         string
	delete         string
	clear          string
	selectAll      string
	selectFiltered string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink. Defaults to none.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a store for table on database.
// The table name is validated before any SQL is rendered; the dialect is
// resolved from the sqlx driver name.
func New(database *sqlx.DB, table string, opts ...Option) (*Store, error) {
	if database == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}

	dialect, err := db.DialectFor(database.DriverName())
	if err != nil {
		return nil, err
	}

	queries, err := db.LoadQueries(dialect, table)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:      database,
		dialect: dialect,
		table:   table,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("table", table), zap.String("dialect", dialect.Name))

	names := []struct {
		name string
		dest *string
	}{
		{dialect.SchemaQuery, &s.stmts.schema},
		{"insert-rule", &s.stmts.insert},
		{"delete-rule", &s.stmts.delete},
		{"clear-rules", &s.stmts.clear},
		{"select-rules", &s.stmts.selectAll},
		{"select-filtered-rules", &s.stmts.selectFiltered},
	}
	for _, n := range names {
		stmt, err := queries.Statement(n.name)
		if err != nil {
			return nil, err
		}
		*n.dest = stmt
	}

	return s, nil
}

// Table returns the validated table name.
func (s *Store) Table() string {
	return s.table
}

// Dialect returns the SQL dialect resolved for the database.
func (s *Store) Dialect() db.Dialect {
	return s.dialect
}

// IsFiltered reports whether a filtered load has succeeded on this store.
// A full save after a filtered load would delete rules that were never loaded.
func (s *Store) IsFiltered() bool {
	return s.filtered.Load()
}

// observe records metrics for op; errp is read when the deferred call runs.
func (s *Store) observe(op string, start time.Time, errp *error) {
	s.metrics.ObserveStore(op, start, *errp)
}

// withTx runs fn in one transaction, rolling back on any error.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	logger := s.logger.With(zap.String("op", op), zap.String("batch_id", string(types.NewBatchID())))

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return db.ClassifyError(fmt.Errorf("failed to begin transaction: %w", err))
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		logger.Warn("batch rolled back", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return db.ClassifyError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	logger.Debug("batch committed")
	return nil
}

// execExactlyOne runs a statement that must affect exactly one row.
// Any other count is reported as ErrRowNotFound.
func execExactlyOne(ctx context.Context, ex sqlx.ExecerContext, query string, args ...any) error {
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return db.ClassifyError(err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%w: %d rows affected", types.ErrRowNotFound, n)
	}
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.ClassifyError(err)
	}
	return n, nil
}
