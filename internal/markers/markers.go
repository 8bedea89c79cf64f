// Package markers persists per-download "in progress" flags so that a
// download interrupted by a crash is detected on the next run.
//
// A key is true only between Begin and End. A key still true when the file
// is opened means the previous process died mid-transfer, and the next fetch
// for that key must bypass the response cache.
package markers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/JustJay7/court-records-ingest/pkg/logger"
)

// File names of the two marker stores inside the output directory
const (
	CaseFile       = "case_downloads.json"
	AttachmentFile = "attachment_downloads.json"
)

type Store struct {
	path   string
	logger *logger.Logger

	mu    sync.Mutex
	flags map[string]bool
	// set when the file on disk could not be decoded
	stale bool
}

// Open loads the marker file at path; a missing file yields an empty store
func Open(path string, log *logger.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: log,
		flags:  make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read marker file: %w", err)
	}

	if err := json.Unmarshal(data, &s.flags); err != nil {
		log.Warn("Marker file unreadable, forcing refresh for every key", "path", path, "error", err)
		s.flags = make(map[string]bool)
		s.stale = true
	}

	return s, nil
}

// Begin marks key as in progress and persists the change
func (s *Store) Begin(key string) error {
	return s.set(key, true)
}

// End marks key as complete and persists the change
func (s *Store) End(key string) error {
	return s.set(key, false)
}

// ShouldForceRefresh reports whether the last download of key never completed
func (s *Store) ShouldForceRefresh(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	inProgress, known := s.flags[key]
	if s.stale && !known {
		return true
	}
	return inProgress
}

// Pending lists keys still marked in progress, sorted
func (s *Store) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key, inProgress := range s.flags {
		if inProgress {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Reset clears every marker, including the stale state of an unreadable file
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.flags {
		s.flags[key] = false
	}
	s.stale = false
	return s.save()
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) set(key string, inProgress bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flags[key] = inProgress
	if err := s.save(); err != nil {
		return fmt.Errorf("failed to persist marker %s: %w", key, err)
	}
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.flags, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
