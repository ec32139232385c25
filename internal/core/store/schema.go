package store

import (
	"context"
	"time"

	"github.com/solatis/policystore/internal/core/db"
	"go.uber.org/zap"
)

// EnsureTable creates the policy table if it does not exist, including the
// uniqueness constraint over (ptype, v0..v5). Safe to call on every start.
func (s *Store) EnsureTable(ctx context.Context) (err error) {
	defer s.observe(opEnsureTable, time.Now(), &err)

	if _, err := s.db.ExecContext(ctx, s.stmts.schema); err != nil {
		return db.ClassifyError(err)
	}
	s.logger.Debug("policy table ready", zap.String("constraint", db.ConstraintName(s.table)))
	return nil
}
