package db

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/solatis/policystore/internal/types"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    Dialect
		wantErr error
	}{
		{driver: "postgres", want: Postgres},
		{driver: "mysql", want: MySQL},
		{driver: "sqlite3", want: SQLite},
		{driver: "oracle", wantErr: types.ErrUnsupportedDriver},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := DialectFor(tt.driver)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DialectFor(%q) error = %v, want %v", tt.driver, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DialectFor(%q) = %+v, want %+v", tt.driver, got, tt.want)
			}
		})
	}
}

func TestDialect_Param(t *testing.T) {
	if got := Postgres.Param(3); got != "$3" {
		t.Errorf("Postgres.Param(3) = %q, want $3", got)
	}
	if got := SQLite.Param(3); got != "?3" {
		t.Errorf("SQLite.Param(3) = %q, want ?3", got)
	}
	if got := MySQL.Param(3); got != "?" {
		t.Errorf("MySQL.Param(3) = %q, want ?", got)
	}
}

func TestDialect_Rebind(t *testing.T) {
	query := "DELETE FROM t WHERE ptype = ? AND v0 = ?"

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Postgres, "DELETE FROM t WHERE ptype = $1 AND v0 = $2"},
		{SQLite, "DELETE FROM t WHERE ptype = ?1 AND v0 = ?2"},
		{MySQL, "DELETE FROM t WHERE ptype = ? AND v0 = ?"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			if got := tt.dialect.Rebind(query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantDriver string
		wantSource string
		wantErr    bool
	}{
		{name: "sqlite relative", url: "sqlite://policy.db", wantDriver: "sqlite3", wantSource: "policy.db"},
		{name: "sqlite absolute", url: "sqlite:///var/lib/policy.db", wantDriver: "sqlite3", wantSource: "/var/lib/policy.db"},
		{name: "sqlite with params", url: "sqlite:///tmp/p.db?_busy_timeout=5000", wantDriver: "sqlite3", wantSource: "/tmp/p.db?_busy_timeout=5000"},
		{name: "postgres", url: "postgres://u:p@db:5432/casbin?sslmode=disable", wantDriver: "postgres", wantSource: "postgres://u:p@db:5432/casbin?sslmode=disable"},
		{name: "unknown scheme", url: "oracle://db", wantErr: true},
		{name: "sqlite without path", url: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, source, err := ParseURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseURL(%q) expected error", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURL(%q) error = %v", tt.url, err)
			}
			if driver != tt.wantDriver {
				t.Errorf("driver = %q, want %q", driver, tt.wantDriver)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestParseURL_MySQL(t *testing.T) {
	driver, source, err := ParseURL("mysql://casbin:secret@db:3306/policies?sql_mode=ANSI")
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	if driver != "mysql" {
		t.Errorf("driver = %q, want mysql", driver)
	}

	cfg, err := mysql.ParseDSN(source)
	if err != nil {
		t.Fatalf("ParseDSN(%q) error = %v", source, err)
	}
	if cfg.User != "casbin" || cfg.Passwd != "secret" {
		t.Errorf("credentials = %q/%q", cfg.User, cfg.Passwd)
	}
	if cfg.Net != "tcp" || cfg.Addr != "db:3306" {
		t.Errorf("address = %s(%s)", cfg.Net, cfg.Addr)
	}
	if cfg.DBName != "policies" {
		t.Errorf("DBName = %q, want policies", cfg.DBName)
	}
	if cfg.Params["sql_mode"] != "ANSI" {
		t.Errorf("sql_mode param = %q, want ANSI", cfg.Params["sql_mode"])
	}
}
