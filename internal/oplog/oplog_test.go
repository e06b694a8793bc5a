package oplog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(op string, affected, errs int) Entry {
	return Entry{
		Timestamp: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		Operation: op,
		Details:   "details for " + op,
		Affected:  affected,
		Errors:    errs,
	}
}

func TestMarshalUnmarshal_Entry(t *testing.T) {
	e := entry("generate", 3, 1)

	got, err := UnmarshalEntry(MarshalEntry(e))
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	t.Run("wrong field count", func(t *testing.T) {
		_, err := UnmarshalEntry([]string{"a", "b"})
		assert.ErrorContains(t, err, "expected 5 fields")
	})
	t.Run("bad timestamp", func(t *testing.T) {
		row := MarshalEntry(entry("generate", 1, 0))
		row[0] = "yesterday"
		_, err := UnmarshalEntry(row)
		assert.ErrorContains(t, err, "parsing timestamp")
	})
	t.Run("bad affected count", func(t *testing.T) {
		row := MarshalEntry(entry("generate", 1, 0))
		row[3] = "many"
		_, err := UnmarshalEntry(row)
		assert.ErrorContains(t, err, "parsing affected")
	})
}

func TestAppendRead_RoundTrip(t *testing.T) {
	root := t.TempDir()

	first := []Entry{entry("recalculate", 4, 0)}
	require.NoError(t, Append(root, first))

	second := []Entry{entry("generate", 2, 1), entry("backup", 1, 0)}
	require.NoError(t, Append(root, second))

	got, err := Read(root)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, first[0], got[0])
	assert.Equal(t, second[0], got[1])
	assert.Equal(t, second[1], got[2])

	// Header is written exactly once.
	data, err := os.ReadFile(filepath.Join(root, "logs", "oplog.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestRead_NoFile(t *testing.T) {
	got, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAppend_CreatesLogsDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Append(root, []Entry{entry("cleanup", 0, 0)}))

	info, err := os.Stat(filepath.Join(root, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
