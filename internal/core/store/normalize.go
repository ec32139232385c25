package store

import (
	"database/sql"
	"fmt"

	"github.com/solatis/policystore/internal/types"
)

// ToFixedWidth copies rule into a FieldCount array, right-padding with "".
// Panics when rule has more than FieldCount fields; public entry points
// check arity first and return ErrTooManyFields instead.
func ToFixedWidth(rule []string) [types.FieldCount]string {
	if len(rule) > types.FieldCount {
		panic(fmt.Sprintf("store: rule has %d fields, maximum is %d", len(rule), types.FieldCount))
	}
	var out [types.FieldCount]string
	copy(out[:], rule)
	return out
}

// ToOptionalFixedWidth pads like ToFixedWidth but maps "" to an absent value.
// Absent values bind as NULL, which the filtered predicates treat as
// unconstrained. An explicit "" therefore also matches anything.
func ToOptionalFixedWidth(rule []string) [types.FieldCount]sql.NullString {
	if len(rule) > types.FieldCount {
		panic(fmt.Sprintf("store: rule has %d fields, maximum is %d", len(rule), types.FieldCount))
	}
	var out [types.FieldCount]sql.NullString
	for i, v := range rule {
		if v != "" {
			out[i] = sql.NullString{String: v, Valid: true}
		}
	}
	return out
}

// NewInsertableRow normalizes a rule into a write payload.
func NewInsertableRow(ptype string, rule []string) (types.InsertableRow, error) {
	if err := checkArity(len(rule), types.FieldCount); err != nil {
		return types.InsertableRow{}, err
	}
	return types.InsertableRow{PType: ptype, Values: ToFixedWidth(rule)}, nil
}

func checkArity(n, limit int) error {
	if n > limit {
		return fmt.Errorf("%w: got %d, maximum is %d", types.ErrTooManyFields, n, limit)
	}
	return nil
}
