// Package adapter connects the policy store to the casbin evaluation engine
// as a persist adapter.
package adapter

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	"github.com/solatis/policystore/internal/core/store"
	"github.com/solatis/policystore/internal/types"
	"go.uber.org/zap"
)

var (
	_ persist.Adapter         = (*Adapter)(nil)
	_ persist.BatchAdapter    = (*Adapter)(nil)
	_ persist.FilteredAdapter = (*Adapter)(nil)
)

// Adapter implements casbin's persist interfaces over a Store.
// The plain methods use context.Background(); the *Ctx variants take the
// caller's context.
type Adapter struct {
	store  *store.Store
	logger *zap.Logger
}

// NewAdapter provisions the policy table and returns an adapter for it.
func NewAdapter(ctx context.Context, st *store.Store, logger *zap.Logger) (*Adapter, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := st.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to provision policy table: %w", err)
	}
	return &Adapter{store: st, logger: logger.With(zap.String("component", "adapter"))}, nil
}

// LoadPolicy loads every stored rule into m.
func (a *Adapter) LoadPolicy(m model.Model) error {
	return a.LoadPolicyCtx(context.Background(), m)
}

// LoadPolicyCtx loads every stored rule into the model.
func (a *Adapter) LoadPolicyCtx(ctx context.Context, m model.Model) error {
	rows, err := a.store.LoadAll(ctx)
	if err != nil {
		return err
	}
	return loadRows(rows, m)
}

// LoadFilteredPolicy loads the rules selected by filter, a types.Filter or
// *types.Filter. After it succeeds, SavePolicy is refused.
func (a *Adapter) LoadFilteredPolicy(m model.Model, filter interface{}) error {
	return a.LoadFilteredPolicyCtx(context.Background(), m, filter)
}

// LoadFilteredPolicyCtx loads only the rules matching filter into the model.
func (a *Adapter) LoadFilteredPolicyCtx(ctx context.Context, m model.Model, filter interface{}) error {
	var f types.Filter
	switch v := filter.(type) {
	case types.Filter:
		f = v
	case *types.Filter:
		if v == nil {
			return fmt.Errorf("%w: nil", types.ErrInvalidFilter)
		}
		f = *v
	default:
		return fmt.Errorf("%w: %T", types.ErrInvalidFilter, filter)
	}

	rows, err := a.store.LoadFiltered(ctx, f)
	if err != nil {
		return err
	}
	return loadRows(rows, m)
}

// IsFiltered reports whether the last successful load was filtered.
func (a *Adapter) IsFiltered() bool {
	return a.store.IsFiltered()
}

// SavePolicy replaces the stored rules with every policy and grouping rule in m.
func (a *Adapter) SavePolicy(m model.Model) error {
	return a.SavePolicyCtx(context.Background(), m)
}

// SavePolicyCtx replaces the stored rules with the rules in the model.
func (a *Adapter) SavePolicyCtx(ctx context.Context, m model.Model) error {
	if a.store.IsFiltered() {
		return types.ErrFilteredSave
	}

	var rows []types.InsertableRow
	for _, sec := range []string{types.PolicyPrefix, types.GroupingPrefix} {
		for ptype, ast := range m[sec] {
			for _, rule := range ast.Policy {
				row, err := store.NewInsertableRow(ptype, rule)
				if err != nil {
					return fmt.Errorf("%s rule %v: %w", ptype, rule, err)
				}
				rows = append(rows, row)
			}
		}
	}

	return a.store.ReplaceAll(ctx, rows)
}

// AddPolicy stores one rule. The section is implied by ptype.
func (a *Adapter) AddPolicy(sec string, ptype string, rule []string) error {
	return a.AddPolicyCtx(context.Background(), sec, ptype, rule)
}

// AddPolicyCtx stores one rule.
func (a *Adapter) AddPolicyCtx(ctx context.Context, sec string, ptype string, rule []string) error {
	row, err := store.NewInsertableRow(ptype, rule)
	if err != nil {
		return err
	}
	_, err = a.store.InsertOne(ctx, row)
	return err
}

// AddPolicies stores rules in one transaction.
func (a *Adapter) AddPolicies(sec string, ptype string, rules [][]string) error {
	return a.AddPoliciesCtx(context.Background(), sec, ptype, rules)
}

// AddPoliciesCtx stores rules in a single transaction.
func (a *Adapter) AddPoliciesCtx(ctx context.Context, sec string, ptype string, rules [][]string) error {
	rows := make([]types.InsertableRow, 0, len(rules))
	for _, rule := range rules {
		row, err := store.NewInsertableRow(ptype, rule)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	_, err := a.store.InsertMany(ctx, rows)
	return err
}

// RemovePolicy removes one rule. A rule that is not stored is not an error.
func (a *Adapter) RemovePolicy(sec string, ptype string, rule []string) error {
	return a.RemovePolicyCtx(context.Background(), sec, ptype, rule)
}

// RemovePolicyCtx deletes one rule.
func (a *Adapter) RemovePolicyCtx(ctx context.Context, sec string, ptype string, rule []string) error {
	ok, err := a.store.DeleteOne(ctx, ptype, rule)
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Debug("rule not stored", zap.String("ptype", ptype), zap.Strings("rule", rule))
	}
	return nil
}

// RemovePolicies removes rules in one transaction; every rule must exist.
func (a *Adapter) RemovePolicies(sec string, ptype string, rules [][]string) error {
	return a.RemovePoliciesCtx(context.Background(), sec, ptype, rules)
}

// RemovePoliciesCtx deletes rules in a single transaction.
func (a *Adapter) RemovePoliciesCtx(ctx context.Context, sec string, ptype string, rules [][]string) error {
	_, err := a.store.DeleteMany(ctx, ptype, rules)
	return err
}

// RemoveFilteredPolicy removes the rules matching fieldValues from fieldIndex on.
func (a *Adapter) RemoveFilteredPolicy(sec string, ptype string, fieldIndex int, fieldValues ...string) error {
	return a.RemoveFilteredPolicyCtx(context.Background(), sec, ptype, fieldIndex, fieldValues...)
}

// RemoveFilteredPolicyCtx deletes rules whose fields from fieldIndex match fieldValues.
func (a *Adapter) RemoveFilteredPolicyCtx(ctx context.Context, sec string, ptype string, fieldIndex int, fieldValues ...string) error {
	_, err := a.store.DeleteFiltered(ctx, ptype, fieldIndex, fieldValues...)
	return err
}

func loadRows(rows []types.StoredRow, m model.Model) error {
	for _, rule := range store.ToRules(rows) {
		line := make([]string, 0, len(rule.Fields)+1)
		line = append(line, rule.PType)
		line = append(line, rule.Fields...)
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return fmt.Errorf("failed to load rule %q: %w", rule.Line(), err)
		}
	}
	return nil
}
