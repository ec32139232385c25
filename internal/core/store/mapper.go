package store

import "github.com/solatis/policystore/internal/types"

// ToRule maps a stored row back to an abstract rule.
// Trailing empty fields are padding and are dropped; an empty field
// followed by a non-empty one is kept.
func ToRule(row types.StoredRow) types.Rule {
	values := row.Values()
	n := len(values)
	for n > 0 && values[n-1] == "" {
		n--
	}
	fields := make([]string, n)
	copy(fields, values[:n])
	return types.Rule{PType: row.PType, Fields: fields}
}

// ToRules maps rows in order.
func ToRules(rows []types.StoredRow) []types.Rule {
	rules := make([]types.Rule, len(rows))
	for i, row := range rows {
		rules[i] = ToRule(row)
	}
	return rules
}
