// Package table keeps CSV files that behave as a mapping from a key column to
// a row. Load, Upsert in memory, and Save of the whole file is the only way a
// store changes.
package table

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Row is one record, column name to value
type Row map[string]string

// Table is the in-memory form of a store, key to row
type Table map[string]Row

type Store struct {
	Path     string
	KeyField string
	// Columns lists preferred header order; unknown columns follow, sorted
	Columns []string
}

func NewStore(path, keyField string, columns ...string) *Store {
	return &Store{
		Path:     path,
		KeyField: keyField,
		Columns:  columns,
	}
}

// Load reads the store; a missing file is an empty table
func (s *Store) Load() (Table, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	_, rows, err := DecodeCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.Path, err)
	}

	t := make(Table, len(rows))
	for _, row := range rows {
		s.Upsert(t, row)
	}
	return t, nil
}

// Upsert stores row under its key, replacing any existing row. Rows without
// a key are ignored.
func (s *Store) Upsert(t Table, row Row) {
	key := row[s.KeyField]
	if key == "" {
		return
	}
	t[key] = row
}

// Save rewrites the whole file from t
func (s *Store) Save(t Table) error {
	keys := make([]string, 0, len(t))
	for key, row := range t {
		if row[s.KeyField] == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]Row, len(keys))
	for i, key := range keys {
		rows[i] = t[key]
	}

	return WriteFile(s.Path, Header(s.KeyField, s.Columns, rows), rows)
}

// Header returns key, then preferred columns, then any other columns found
// in rows in sorted order
func Header(keyField string, preferred []string, rows []Row) []string {
	seen := map[string]bool{keyField: true}
	header := []string{keyField}
	for _, column := range preferred {
		if !seen[column] {
			seen[column] = true
			header = append(header, column)
		}
	}

	var extra []string
	for _, row := range rows {
		for column := range row {
			if !seen[column] {
				seen[column] = true
				extra = append(extra, column)
			}
		}
	}
	sort.Strings(extra)

	return append(header, extra...)
}

// WriteFile encodes rows to path, creating parent directories
func WriteFile(path string, header []string, rows []Row) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, header, rows); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DeleteWhere removes every row whose column equals value and reports how
// many were removed
func (t Table) DeleteWhere(column, value string) int {
	removed := 0
	for key, row := range t {
		if row[column] == value {
			delete(t, key)
			removed++
		}
	}
	return removed
}
