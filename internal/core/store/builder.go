package store

import (
	"fmt"
	"strings"

	"github.com/solatis/policystore/internal/core/db"
	"github.com/solatis/policystore/internal/types"
)

// statement accumulates SQL text and bound values in lockstep so the
// placeholder numbering always matches the argument order.
type statement struct {
	dialect db.Dialect
	text    strings.Builder
	args    []any
}

func newStatement(dialect db.Dialect, head string) *statement {
	st := &statement{dialect: dialect}
	st.text.WriteString(head)
	return st
}

// bind records v and returns its placeholder.
func (st *statement) bind(v any) string {
	st.args = append(st.args, v)
	return st.dialect.Param(len(st.args))
}

func (st *statement) String() string {
	return st.text.String()
}

// filteredStatement builds head followed by the partial-match predicate:
// ptype exact, then for every column from fieldIndex through v5
// "(v_i is NULL OR v_i = COALESCE(<value>,v_i))". values[0] constrains
// v_fieldIndex; missing or empty values bind NULL and match anything.
func filteredStatement(dialect db.Dialect, head, ptype string, fieldIndex int, values []string) (*statement, error) {
	if fieldIndex < 0 || fieldIndex >= types.FieldCount {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidFieldIndex, fieldIndex)
	}
	if err := checkArity(len(values), types.FieldCount-fieldIndex); err != nil {
		return nil, err
	}

	optional := ToOptionalFixedWidth(values)

	st := newStatement(dialect, head)
	st.text.WriteString(" WHERE ptype = ")
	st.text.WriteString(st.bind(ptype))
	for i := fieldIndex; i < types.FieldCount; i++ {
		col := fmt.Sprintf("v%d", i)
		p := st.bind(optional[i-fieldIndex])
		fmt.Fprintf(&st.text, " AND (%s is NULL OR %s = COALESCE(%s,%s))", col, col, p, col)
	}
	return st, nil
}
