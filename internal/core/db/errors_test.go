package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/solatis/policystore/internal/types"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "postgres unique", err: &pq.Error{Code: "23505"}, want: types.ErrConstraintViolation},
		{name: "postgres syntax", err: &pq.Error{Code: "42601"}, want: types.ErrStore},
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062}, want: types.ErrConstraintViolation},
		{name: "mysql gone away", err: &mysql.MySQLError{Number: 2006}, want: types.ErrStore},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: types.ErrConstraintViolation},
		{name: "sqlite busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: types.ErrStore},
		{name: "wrapped unique", err: fmt.Errorf("exec: %w", &pq.Error{Code: "23505"}), want: types.ErrConstraintViolation},
		{name: "context canceled", err: context.Canceled, want: types.ErrStore},
		{name: "row not found passes through", err: types.ErrRowNotFound, want: types.ErrRowNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("ClassifyError() = %v, want %v", got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("ClassifyError() dropped the driver error from the chain: %v", got)
			}
		})
	}

	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should be nil")
	}
}
