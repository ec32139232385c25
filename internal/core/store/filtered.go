package store

import (
	"context"
	"time"

	"github.com/solatis/policystore/internal/core/db"
	"github.com/solatis/policystore/internal/types"
	"go.uber.org/zap"
)

// DeleteFiltered removes rows of ptype whose fields from fieldIndex onward
// match values; empty or missing values leave the position unconstrained.
// Returns true iff at least one row was removed.
func (s *Store) DeleteFiltered(ctx context.Context, ptype string, fieldIndex int, values ...string) (ok bool, err error) {
	defer s.observe(opDeleteFiltered, time.Now(), &err)

	st, err := filteredStatement(s.dialect, "DELETE FROM "+s.table, ptype, fieldIndex, values)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, st.String(), st.args...)
	if err != nil {
		return false, db.ClassifyError(err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	s.logger.Debug("filtered delete", zap.String("ptype", ptype), zap.Int("field_index", fieldIndex), zap.Int64("rows", n))
	return n >= 1, nil
}

// FindFiltered returns the rows DeleteFiltered would remove.
func (s *Store) FindFiltered(ctx context.Context, ptype string, fieldIndex int, values ...string) (rows []types.StoredRow, err error) {
	defer s.observe(opFindFiltered, time.Now(), &err)

	st, err := filteredStatement(s.dialect, selectColumns+s.table, ptype, fieldIndex, values)
	if err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &rows, st.String(), st.args...); err != nil {
		return nil, db.ClassifyError(err)
	}
	return rows, nil
}
