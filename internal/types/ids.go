package types

import "github.com/google/uuid"

// BatchID identifies one transactional batch in logs.
type BatchID string

// NewBatchID generates a UUIDv7 batch identifier.
// Time-ordered IDs keep log lines of consecutive batches sortable.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewBatchID() BatchID {
	return BatchID(uuid.Must(uuid.NewV7()).String())
}
