package ingest

import "github.com/google/uuid"

// NewBatchID returns the random token scoping one upload's object keys.
// Uniqueness needs no coordination: concurrent uploads of the same filename
// land under distinct prefixes as long as these never collide, which UUIDv4
// guarantees to any practical probability.
func NewBatchID() string {
	return uuid.NewString()
}
