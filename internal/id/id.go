package id

import (
	"time"

	"github.com/google/uuid"
)

// New returns a fresh entity id.
func New() string {
	return uuid.NewString()
}

// Valid reports whether s parses as an entity id.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ProvenanceKey builds the lookup key for the generated-transaction index:
// source id plus due date at day precision.
func ProvenanceKey(sourceID string, due time.Time) string {
	return sourceID + "|" + due.Format("2006-01-02")
}
