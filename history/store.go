// Package history keeps a durable record of every conversion that reached a
// terminal state. The live registry is memory-only and bounded; this store
// is what's left to answer "what happened to job X" after a restart or a
// sweep.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// Record is one finished conversion, success or failure.
type Record struct {
	JobID     string    `json:"job_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"` // "done" or "error"
	Filename  string    `json:"filename,omitempty"`
	Encoder   string    `json:"encoder,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Store wraps a pebble DB keyed by job id.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores a terminal outcome, overwriting any earlier record for the
// same job id.
func (s *Store) Record(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}
	return s.db.Set([]byte(rec.JobID), data, pebble.Sync)
}

// Get retrieves a record by job id. A missing id returns (nil, nil).
func (s *Store) Get(jobID string) (*Record, error) {
	data, closer, err := s.db.Get([]byte(jobID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history record: %w", err)
	}
	return &rec, nil
}

// List returns all records (for admin purposes).
func (s *Store) List() ([]Record, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // Skip invalid records
		}
		records = append(records, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}
	return records, nil
}

// CleanupOldRecords deletes records older than maxAge.
func (s *Store) CleanupOldRecords(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}

	var doomed [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue
		}
		if rec.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			doomed = append(doomed, key)
		}
	}
	if err := iter.Close(); err != nil {
		return fmt.Errorf("iteration error: %w", err)
	}

	for _, key := range doomed {
		if err := s.db.Delete(key, pebble.Sync); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", key, err)
		}
	}
	return nil
}
