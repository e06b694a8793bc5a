// Package oplog records engine operations (recalculation, generation,
// cleanup, restore) in an append-only CSV under the project's logs dir.
package oplog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the operation log.
type Entry struct {
	Timestamp time.Time
	Operation string // recalculate, generate, cleanup, restore, backup
	Details   string
	Affected  int // records touched by the operation
	Errors    int // per-item failures collected during the operation
}

// Header is the CSV header for oplog.csv.
const Header = "timestamp,operation,details,affected,errors"

const (
	numFields    = 5
	logFile      = "logs/oplog.csv"
	colTimestamp = 0
	colOperation = 1
	colDetails   = 2
	colAffected  = 3
	colErrors    = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colOperation] = e.Operation
	row[colDetails] = e.Details
	row[colAffected] = strconv.Itoa(e.Affected)
	row[colErrors] = strconv.Itoa(e.Errors)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	affected, err := strconv.Atoi(record[colAffected])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing affected %q: %w", record[colAffected], err)
	}
	errCount, err := strconv.Atoi(record[colErrors])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing errors %q: %w", record[colErrors], err)
	}
	return Entry{
		Timestamp: ts,
		Operation: record[colOperation],
		Details:   record[colDetails],
		Affected:  affected,
		Errors:    errCount,
	}, nil
}

// Append writes entries to <root>/logs/oplog.csv, creating the file and
// header if needed.
func Append(root string, entries []Entry) error {
	path := filepath.Join(root, logFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening oplog: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return cw.Error()
}

// Read returns all entries from <root>/logs/oplog.csv, or nil if the file
// does not exist yet.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening oplog: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading oplog CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
