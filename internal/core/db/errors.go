package db

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/solatis/policystore/internal/types"
)

// Driver error codes for uniqueness violations.
const (
	pqUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
)

// ClassifyError wraps a driver error with the matching sentinel.
// Uniqueness violations map to ErrConstraintViolation, everything else to
// ErrStore. The driver error stays reachable through errors.As.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrConstraintViolation) || errors.Is(err, types.ErrStore) || errors.Is(err, types.ErrRowNotFound) {
		return err
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", types.ErrConstraintViolation, err)
	}
	return fmt.Errorf("%w: %w", types.ErrStore, err)
}

// IsUniqueViolation reports whether err is a uniqueness violation from any supported driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}
