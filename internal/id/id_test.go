package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		v := New()
		assert.True(t, Valid(v))
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("4f5a0a46-13a5-4d3e-9c35-1af0a1f0f2bd"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("not-a-uuid"))
}

func TestProvenanceKey_DayPrecision(t *testing.T) {
	morning := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 1, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, "src-1|2025-03-01", ProvenanceKey("src-1", morning))
	assert.Equal(t, ProvenanceKey("src-1", morning), ProvenanceKey("src-1", evening))
	assert.NotEqual(t, ProvenanceKey("src-1", morning), ProvenanceKey("src-2", morning))
}
