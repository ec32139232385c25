// Package api provides the gRPC policy service over the policy store.
//
// Messages are google.protobuf.Struct values so the service needs no
// generated code; the wire shape of each method is documented on its handler.
package api

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/solatis/policystore/internal/core/store"
	"github.com/solatis/policystore/internal/types"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

// PolicyService implements PolicyServiceServer.
// Thin orchestration layer delegating to the store.
type PolicyService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewPolicyService creates service instance with dependencies.
func NewPolicyService(st *store.Store, logger *zap.Logger) (*PolicyService, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyService{store: st, logger: logger.With(zap.String("component", "api"))}, nil
}

// LoadPolicy returns stored rules, optionally filtered.
//
//	request:  {filter?: {p?: [string], g?: [string]}}
//	response: {rules: [{ptype, fields}], etag, filtered}
func (s *PolicyService) LoadPolicy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter, err := decodeFilter(req)
	if err != nil {
		return nil, toStatus(err)
	}

	var rows []types.StoredRow
	if filter != nil {
		rows, err = s.store.LoadFiltered(ctx, *filter)
	} else {
		rows, err = s.store.LoadAll(ctx)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	rules := store.ToRules(rows)
	return newStruct(map[string]any{
		"rules":    encodeRules(rules),
		"etag":     computeETAG(rules),
		"filtered": filter != nil,
	})
}

// AddPolicies inserts every rule in one transaction.
//
//	request:  {rules: [{ptype, fields}]}
//	response: {ok}
func (s *PolicyService) AddPolicies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rules, err := decodeRules(req)
	if err != nil {
		return nil, toStatus(err)
	}

	rows := make([]types.InsertableRow, 0, len(rules))
	for _, r := range rules {
		row, err := store.NewInsertableRow(r.PType, r.Fields)
		if err != nil {
			return nil, toStatus(err)
		}
		rows = append(rows, row)
	}

	ok, err := s.store.InsertMany(ctx, rows)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info("policies added", zap.Int("count", len(rows)))
	return newStruct(map[string]any{"ok": ok})
}

// RemovePolicies removes every rule of one ptype in one transaction.
//
//	request:  {ptype, rules: [[string]]}
//	response: {ok}
func (s *PolicyService) RemovePolicies(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ptype, err := requiredString(req, "ptype")
	if err != nil {
		return nil, toStatus(err)
	}
	rules, err := stringLists(req, "rules")
	if err != nil {
		return nil, toStatus(err)
	}

	ok, err := s.store.DeleteMany(ctx, ptype, rules)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info("policies removed", zap.String("ptype", ptype), zap.Int("count", len(rules)))
	return newStruct(map[string]any{"ok": ok})
}

// RemoveFilteredPolicy removes rules matching field_values from field_index.
//
//	request:  {ptype, field_index, field_values?: [string]}
//	response: {ok}
func (s *PolicyService) RemoveFilteredPolicy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ptype, err := requiredString(req, "ptype")
	if err != nil {
		return nil, toStatus(err)
	}
	fieldIndex, err := requiredInt(req, "field_index")
	if err != nil {
		return nil, toStatus(err)
	}
	values, err := optionalStrings(req, "field_values")
	if err != nil {
		return nil, toStatus(err)
	}

	ok, err := s.store.DeleteFiltered(ctx, ptype, fieldIndex, values...)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info("filtered policies removed", zap.String("ptype", ptype), zap.Int("field_index", fieldIndex), zap.Bool("ok", ok))
	return newStruct(map[string]any{"ok": ok})
}

// computeETAG generates content-addressable hash of a rule set.
// Same rules in any order produce the same ETAG.
func computeETAG(rules []types.Rule) string {
	keys := make([]string, 0, len(rules))
	for _, r := range rules {
		keys = append(keys, etagKey(r))
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, key := range keys {
		writeLengthPrefixed(h, key)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// etagKey encodes a rule with every part length prefixed, so field values
// containing separators cannot collide with other rules.
func etagKey(r types.Rule) string {
	var b strings.Builder
	writeLengthPrefixed(&b, r.PType)
	for _, f := range r.Fields {
		writeLengthPrefixed(&b, f)
	}
	return b.String()
}

func writeLengthPrefixed(w io.Writer, s string) {
	io.WriteString(w, strconv.Itoa(len(s)))
	io.WriteString(w, ":")
	io.WriteString(w, s)
}
