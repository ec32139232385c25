package types

import "errors"

// Sentinel errors for policystore operations.
var (
	// ErrInvalidIdentifier indicates a table name outside [A-Za-z0-9_.].
	// Raised before any SQL text is built.
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")

	// ErrConstraintViolation indicates the (ptype, v0..v5) tuple already exists.
	ErrConstraintViolation = errors.New("rule already exists")

	// ErrRowNotFound indicates a statement did not affect exactly one row.
	// Inside a batch it triggers the rollback of the whole transaction.
	ErrRowNotFound = errors.New("rule not found")

	// ErrStore indicates the backing store failed (connection, syntax, driver, timeout).
	ErrStore = errors.New("store error")

	// ErrTooManyFields indicates a rule or filter with more than FieldCount values.
	ErrTooManyFields = errors.New("too many rule fields")

	// ErrInvalidFieldIndex indicates a filtered delete starting outside v0..v5.
	ErrInvalidFieldIndex = errors.New("field index out of range")

	// ErrFilteredSave indicates a full save after a filtered load.
	// Saving would discard every rule the filtered load never saw.
	ErrFilteredSave = errors.New("cannot save a filtered policy")

	// ErrInvalidFilter indicates a filtered load called with something other than a Filter.
	ErrInvalidFilter = errors.New("invalid policy filter")

	// ErrUnsupportedDriver indicates a database driver with no known SQL dialect.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
