package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/solatis/policystore/internal/types"
)

func TestInsertOne(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	ok, err := st.InsertOne(ctx, row(t, "p", "alice", "data1", "read"))
	if err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}
	if !ok {
		t.Error("InsertOne() = false, want true")
	}

	t.Run("duplicate rejected", func(t *testing.T) {
		_, err := st.InsertOne(ctx, row(t, "p", "alice", "data1", "read"))
		if !errors.Is(err, types.ErrConstraintViolation) {
			t.Fatalf("InsertOne() duplicate error = %v, want ErrConstraintViolation", err)
		}
	})

	t.Run("same prefix different arity is distinct", func(t *testing.T) {
		if _, err := st.InsertOne(ctx, row(t, "p", "alice", "data1")); err != nil {
			t.Fatalf("InsertOne() error = %v", err)
		}
	})

	want := []string{"p, alice, data1", "p, alice, data1, read"}
	if diff := cmp.Diff(want, loadLines(t, st)); diff != "" {
		t.Errorf("stored rules mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertMany(t *testing.T) {
	ctx := context.Background()

	t.Run("commits every row", func(t *testing.T) {
		st := newTestStore(t)
		ok, err := st.InsertMany(ctx, []types.InsertableRow{
			row(t, "p", "alice", "data1", "read"),
			row(t, "p", "bob", "data2", "write"),
			row(t, "g", "alice", "admin"),
		})
		if err != nil || !ok {
			t.Fatalf("InsertMany() = %v, %v, want true, nil", ok, err)
		}
		if got := len(loadLines(t, st)); got != 3 {
			t.Errorf("stored %d rules, want 3", got)
		}
	})

	t.Run("duplicate inside batch persists nothing", func(t *testing.T) {
		st := newTestStore(t)
		_, err := st.InsertMany(ctx, []types.InsertableRow{
			row(t, "p", "alice", "data1", "read"),
			row(t, "p", "bob", "data2", "write"),
			row(t, "p", "alice", "data1", "read"),
			row(t, "p", "carol", "data3", "read"),
		})
		if !errors.Is(err, types.ErrConstraintViolation) {
			t.Fatalf("InsertMany() error = %v, want ErrConstraintViolation", err)
		}
		if got := loadLines(t, st); len(got) != 0 {
			t.Errorf("stored rules after rollback = %q, want none", got)
		}
	})

	t.Run("conflict with existing row keeps prior state", func(t *testing.T) {
		st := newTestStore(t)
		mustInsert(t, st, row(t, "p", "alice", "data1", "read"))

		_, err := st.InsertMany(ctx, []types.InsertableRow{
			row(t, "p", "bob", "data2", "write"),
			row(t, "p", "alice", "data1", "read"),
		})
		if !errors.Is(err, types.ErrConstraintViolation) {
			t.Fatalf("InsertMany() error = %v, want ErrConstraintViolation", err)
		}
		if diff := cmp.Diff([]string{"p, alice, data1, read"}, loadLines(t, st)); diff != "" {
			t.Errorf("stored rules mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		st := newTestStore(t)
		ok, err := st.InsertMany(ctx, nil)
		if err != nil || !ok {
			t.Fatalf("InsertMany(nil) = %v, %v, want true, nil", ok, err)
		}
	})
}

func TestDeleteOne(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mustInsert(t, st,
		row(t, "p", "alice", "data1", "read"),
		row(t, "p", "bob", "data2", "write"),
	)

	tests := []struct {
		name  string
		ptype string
		rule  []string
		want  bool
	}{
		{name: "prefix does not match padded row", ptype: "p", rule: []string{"alice", "data1"}, want: false},
		{name: "wrong ptype", ptype: "p2", rule: []string{"alice", "data1", "read"}, want: false},
		{name: "exact match", ptype: "p", rule: []string{"alice", "data1", "read"}, want: true},
		{name: "already removed", ptype: "p", rule: []string{"alice", "data1", "read"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.DeleteOne(ctx, tt.ptype, tt.rule)
			if err != nil {
				t.Fatalf("DeleteOne() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DeleteOne() = %v, want %v", got, tt.want)
			}
		})
	}

	if diff := cmp.Diff([]string{"p, bob, data2, write"}, loadLines(t, st)); diff != "" {
		t.Errorf("stored rules mismatch (-want +got):\n%s", diff)
	}

	_, err := st.DeleteOne(ctx, "p", []string{"1", "2", "3", "4", "5", "6", "7"})
	if !errors.Is(err, types.ErrTooManyFields) {
		t.Errorf("DeleteOne() with 7 fields error = %v, want ErrTooManyFields", err)
	}
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()

	t.Run("removes every rule", func(t *testing.T) {
		st := newTestStore(t)
		mustInsert(t, st,
			row(t, "p", "alice", "data1", "read"),
			row(t, "p", "bob", "data2", "write"),
			row(t, "p", "carol", "data3", "read"),
		)

		ok, err := st.DeleteMany(ctx, "p", [][]string{{"alice", "data1", "read"}, {"bob", "data2", "write"}})
		if err != nil || !ok {
			t.Fatalf("DeleteMany() = %v, %v, want true, nil", ok, err)
		}
		if diff := cmp.Diff([]string{"p, carol, data3, read"}, loadLines(t, st)); diff != "" {
			t.Errorf("stored rules mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing rule rolls back the batch", func(t *testing.T) {
		st := newTestStore(t)
		mustInsert(t, st,
			row(t, "p", "alice", "data1", "read"),
			row(t, "p", "bob", "data2", "write"),
		)

		_, err := st.DeleteMany(ctx, "p", [][]string{{"alice", "data1", "read"}, {"nobody", "data9", "read"}})
		if !errors.Is(err, types.ErrRowNotFound) {
			t.Fatalf("DeleteMany() error = %v, want ErrRowNotFound", err)
		}
		if got := len(loadLines(t, st)); got != 2 {
			t.Errorf("stored %d rules after rollback, want 2", got)
		}
	})

	t.Run("arity checked before any delete", func(t *testing.T) {
		st := newTestStore(t)
		mustInsert(t, st, row(t, "p", "alice", "data1", "read"))

		_, err := st.DeleteMany(ctx, "p", [][]string{{"alice", "data1", "read"}, {"1", "2", "3", "4", "5", "6", "7"}})
		if !errors.Is(err, types.ErrTooManyFields) {
			t.Fatalf("DeleteMany() error = %v, want ErrTooManyFields", err)
		}
		if got := len(loadLines(t, st)); got != 1 {
			t.Errorf("stored %d rules, want 1", got)
		}
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mustInsert(t, st, row(t, "p", "alice", "data1", "read"), row(t, "g", "alice", "admin"))

	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := loadLines(t, st); len(got) != 0 {
		t.Errorf("rules after Clear() = %q, want none", got)
	}

	// Clearing an empty table is not an error.
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
}

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	mustInsert(t, st, row(t, "p", "old", "data0", "read"))

	err := st.ReplaceAll(ctx, []types.InsertableRow{
		row(t, "p", "alice", "data1", "read"),
		row(t, "g", "alice", "admin"),
	})
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	want := []string{"g, alice, admin", "p, alice, data1, read"}
	if diff := cmp.Diff(want, loadLines(t, st)); diff != "" {
		t.Errorf("stored rules mismatch (-want +got):\n%s", diff)
	}

	t.Run("failed save keeps prior rules", func(t *testing.T) {
		err := st.ReplaceAll(ctx, []types.InsertableRow{
			row(t, "p", "bob", "data2", "write"),
			row(t, "p", "bob", "data2", "write"),
		})
		if !errors.Is(err, types.ErrConstraintViolation) {
			t.Fatalf("ReplaceAll() error = %v, want ErrConstraintViolation", err)
		}
		if diff := cmp.Diff(want, loadLines(t, st)); diff != "" {
			t.Errorf("stored rules mismatch (-want +got):\n%s", diff)
		}
	})
}
