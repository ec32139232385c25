package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/solatis/policystore/internal/types"
)

func TestLoadFiltered(t *testing.T) {
	tests := []struct {
		name   string
		filter types.Filter
		want   []string
	}{
		{
			name:   "grouping subject only",
			filter: types.Filter{G: []string{"alice"}},
			want:   []string{"g, alice, admin", "p, alice, data1, read", "p, alice, data2, write", "p, bob, data1, read", "p, bob, data2, write"},
		},
		{
			name:   "policy object",
			filter: types.Filter{P: []string{"", "data1"}, G: []string{"nobody"}},
			want:   []string{"p, alice, data1, read", "p, bob, data1, read"},
		},
		{
			name:   "both categories",
			filter: types.Filter{P: []string{"bob"}, G: []string{"", "admin"}},
			want:   []string{"g, alice, admin", "p, bob, data1, read", "p, bob, data2, write"},
		},
		{
			name:   "wildcards pass through",
			filter: types.Filter{P: []string{"al%"}, G: []string{"zzz"}},
			want:   []string{"p, alice, data1, read", "p, alice, data2, write"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := seedFiltered(t)
			rows, err := st.LoadFiltered(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("LoadFiltered() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, lines(rows)); diff != "" {
				t.Errorf("LoadFiltered() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFiltered_SetsFiltered(t *testing.T) {
	ctx := context.Background()
	st := seedFiltered(t)

	if st.IsFiltered() {
		t.Fatal("IsFiltered() = true on a new store")
	}

	if _, err := st.LoadFiltered(ctx, types.Filter{P: []string{"1", "2", "3", "4", "5", "6", "7"}}); !errors.Is(err, types.ErrTooManyFields) {
		t.Fatalf("LoadFiltered() error = %v, want ErrTooManyFields", err)
	}
	if st.IsFiltered() {
		t.Error("IsFiltered() = true after a failed filtered load")
	}

	if _, err := st.LoadFiltered(ctx, types.Filter{G: []string{"alice"}}); err != nil {
		t.Fatalf("LoadFiltered() error = %v", err)
	}
	if !st.IsFiltered() {
		t.Error("IsFiltered() = false after a filtered load")
	}

	// A full load does not reset the flag.
	if _, err := st.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if !st.IsFiltered() {
		t.Error("IsFiltered() = false after LoadAll")
	}
}

func TestFilterPatterns(t *testing.T) {
	got, err := filterPatterns([]string{"", "data1"})
	if err != nil {
		t.Fatalf("filterPatterns() error = %v", err)
	}
	want := [types.FieldCount]string{"%", "data1", "%", "%", "%", "%"}
	if got != want {
		t.Errorf("filterPatterns() = %q, want %q", got, want)
	}
}
