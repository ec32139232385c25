// Package types provides domain models shared across policystore components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library so the adapter and the gRPC service can share them without pulling
// in driver packages. ID utilities in ids.go import uuid but are isolated.
package types

import "strings"

// FieldCount is the number of value columns (v0..v5) in a stored row.
// Rules with more fields than this cannot be persisted.
const FieldCount = 6

// Category prefixes distinguishing grouping rules from policy rules.
// Sub-variants (g2, p2, ...) share the prefix of their category.
const (
	GroupingPrefix = "g"
	PolicyPrefix   = "p"
)

// Rule is the abstract policy rule: a type tag plus 0..FieldCount values.
// Produced and consumed by the evaluation engine.
type Rule struct {
	PType  string
	Fields []string
}

// Line renders the rule in casbin policy file form: "p, alice, data1, read".
func (r Rule) Line() string {
	parts := make([]string, 0, len(r.Fields)+1)
	parts = append(parts, r.PType)
	parts = append(parts, r.Fields...)
	return strings.Join(parts, ", ")
}

// StoredRow is the persisted form of a rule.
// All value columns are non-null; short rules are padded with "".
type StoredRow struct {
	ID    int64  `db:"id"`
	PType string `db:"ptype"`
	V0    string `db:"v0"`
	V1    string `db:"v1"`
	V2    string `db:"v2"`
	V3    string `db:"v3"`
	V4    string `db:"v4"`
	V5    string `db:"v5"`
}

// Values returns v0..v5 in column order.
func (r StoredRow) Values() [FieldCount]string {
	return [FieldCount]string{r.V0, r.V1, r.V2, r.V3, r.V4, r.V5}
}

// InsertableRow is the write payload of a StoredRow without its identifier.
// Only valid for the duration of the call it is passed to.
type InsertableRow struct {
	PType  string
	Values [FieldCount]string
}

// Filter selects a subset of rules during a filtered load.
// P applies to policy rules, G to grouping rules. An empty or missing
// pattern at a position matches any value.
type Filter struct {
	P []string
	G []string
}
