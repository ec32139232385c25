package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/policystore/internal/core/db"
	"github.com/solatis/policystore/internal/types"
	"go.uber.org/zap"
)

func insertArgs(row types.InsertableRow) []any {
	v := row.Values
	return []any{row.PType, v[0], v[1], v[2], v[3], v[4], v[5]}
}

func deleteArgs(ptype string, v [types.FieldCount]string) []any {
	return []any{ptype, v[0], v[1], v[2], v[3], v[4], v[5]}
}

// InsertOne inserts one row. Returns true iff exactly one row was affected.
// A duplicate tuple fails with ErrConstraintViolation.
func (s *Store) InsertOne(ctx context.Context, row types.InsertableRow) (ok bool, err error) {
	defer s.observe(opInsertOne, time.Now(), &err)

	res, err := s.db.ExecContext(ctx, s.stmts.insert, insertArgs(row)...)
	if err != nil {
		return false, db.ClassifyError(err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InsertMany inserts rows in input order inside one transaction.
// Either every row is committed or none is.
func (s *Store) InsertMany(ctx context.Context, rows []types.InsertableRow) (ok bool, err error) {
	defer s.observe(opInsertMany, time.Now(), &err)

	err = s.withTx(ctx, opInsertMany, func(tx *sqlx.Tx) error {
		return s.insertAll(ctx, tx, rows)
	})
	if err != nil {
		return false, err
	}
	s.logger.Debug("rules inserted", zap.Int("count", len(rows)))
	return true, nil
}

func (s *Store) insertAll(ctx context.Context, tx *sqlx.Tx, rows []types.InsertableRow) error {
	for i, row := range rows {
		if err := execExactlyOne(ctx, tx, s.stmts.insert, insertArgs(row)...); err != nil {
			return fmt.Errorf("insert rule %d: %w", i, err)
		}
	}
	return nil
}

// DeleteOne removes the row matching ptype and every normalized field exactly.
// Returns true iff exactly one row was removed.
func (s *Store) DeleteOne(ctx context.Context, ptype string, rule []string) (ok bool, err error) {
	defer s.observe(opDeleteOne, time.Now(), &err)

	if err := checkArity(len(rule), types.FieldCount); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, s.stmts.delete, deleteArgs(ptype, ToFixedWidth(rule))...)
	if err != nil {
		return false, db.ClassifyError(err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteMany removes every rule exactly inside one transaction.
// A rule that matches no row fails with ErrRowNotFound and rolls back the batch.
func (s *Store) DeleteMany(ctx context.Context, ptype string, rules [][]string) (ok bool, err error) {
	defer s.observe(opDeleteMany, time.Now(), &err)

	for i, rule := range rules {
		if err := checkArity(len(rule), types.FieldCount); err != nil {
			return false, fmt.Errorf("rule %d: %w", i, err)
		}
	}

	err = s.withTx(ctx, opDeleteMany, func(tx *sqlx.Tx) error {
		for i, rule := range rules {
			if err := execExactlyOne(ctx, tx, s.stmts.delete, deleteArgs(ptype, ToFixedWidth(rule))...); err != nil {
				return fmt.Errorf("delete rule %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	s.logger.Debug("rules deleted", zap.String("ptype", ptype), zap.Int("count", len(rules)))
	return true, nil
}

// Clear removes every row from the table.
func (s *Store) Clear(ctx context.Context) (err error) {
	defer s.observe(opClear, time.Now(), &err)

	if _, err := s.db.ExecContext(ctx, s.stmts.clear); err != nil {
		return db.ClassifyError(err)
	}
	s.logger.Info("policy table cleared")
	return nil
}

// ReplaceAll is the full-save cycle: clear the table and insert rows, all
// in one transaction. Concurrent full saves from other processes are only
// serialized by the database's isolation level.
func (s *Store) ReplaceAll(ctx context.Context, rows []types.InsertableRow) (err error) {
	defer s.observe(opReplaceAll, time.Now(), &err)

	err = s.withTx(ctx, opReplaceAll, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, s.stmts.clear); err != nil {
			return db.ClassifyError(err)
		}
		return s.insertAll(ctx, tx, rows)
	})
	if err != nil {
		return err
	}
	s.logger.Info("policy saved", zap.Int("count", len(rows)))
	return nil
}
