package store

import (
	"context"
	"strings"
	"time"

	"github.com/solatis/policystore/internal/core/db"
	"github.com/solatis/policystore/internal/types"
	"go.uber.org/zap"
)

// matchAny is the LIKE pattern substituted for empty filter positions.
const matchAny = "%"

// LoadAll returns every stored row.
func (s *Store) LoadAll(ctx context.Context) (rows []types.StoredRow, err error) {
	defer s.observe(opLoadAll, time.Now(), &err)

	if err := s.db.SelectContext(ctx, &rows, s.stmts.selectAll); err != nil {
		return nil, db.ClassifyError(err)
	}
	s.recordLoaded(rows)
	return rows, nil
}

// LoadFiltered returns grouping rows matching f.G and policy rows matching
// f.P, each position compared with LIKE. Patterns are bound as given, so
// % and _ inside a value keep their wildcard meaning.
// On success the store is marked filtered.
func (s *Store) LoadFiltered(ctx context.Context, f types.Filter) (rows []types.StoredRow, err error) {
	defer s.observe(opLoadFiltered, time.Now(), &err)

	g, err := filterPatterns(f.G)
	if err != nil {
		return nil, err
	}
	p, err := filterPatterns(f.P)
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, 2*types.FieldCount)
	for _, v := range g {
		args = append(args, v)
	}
	for _, v := range p {
		args = append(args, v)
	}

	if err := s.db.SelectContext(ctx, &rows, s.stmts.selectFiltered, args...); err != nil {
		return nil, db.ClassifyError(err)
	}

	s.filtered.Store(true)
	s.recordLoaded(rows)
	s.logger.Debug("filtered load", zap.Strings("g", f.G), zap.Strings("p", f.P), zap.Int("rows", len(rows)))
	return rows, nil
}

// filterPatterns pads patterns to FieldCount, turning "" into matchAny.
func filterPatterns(patterns []string) ([types.FieldCount]string, error) {
	out := [types.FieldCount]string{matchAny, matchAny, matchAny, matchAny, matchAny, matchAny}
	if err := checkArity(len(patterns), types.FieldCount); err != nil {
		return out, err
	}
	for i, v := range patterns {
		if v != "" {
			out[i] = v
		}
	}
	return out, nil
}

func (s *Store) recordLoaded(rows []types.StoredRow) {
	var grouping, policy int
	for _, r := range rows {
		switch {
		case strings.HasPrefix(r.PType, types.GroupingPrefix):
			grouping++
		case strings.HasPrefix(r.PType, types.PolicyPrefix):
			policy++
		}
	}
	s.metrics.AddLoaded(types.GroupingPrefix, grouping)
	s.metrics.AddLoaded(types.PolicyPrefix, policy)
}
