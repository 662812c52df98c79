// Package registry holds the in-memory job table. One record per accepted
// submission, keyed by the job's short random identifier. The registry is
// the only state shared between the request surface, the conversion
// goroutines and the retention sweeper.
package registry

import "sync"

// Job statuses. StatusUnknown is synthesized for lookups that miss and is
// never stored.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
	StatusUnknown = "unknown"
)

// Job is one conversion attempt's visible state. The JSON shape is the
// /status response body, so fields are omitted when empty.
type Job struct {
	Status   string `json:"status"`
	Step     string `json:"step,omitempty"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Size     string `json:"size,omitempty"`
	Width    string `json:"width,omitempty"`
	Height   string `json:"height,omitempty"`
	Frames   string `json:"frames,omitempty"`
	FPS      int    `json:"fps,omitempty"`
	Encoder  string `json:"encoder,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j Job) Terminal() bool {
	return j.Status == StatusDone || j.Status == StatusError
}

// Store is a bounded, insertion-ordered job table. All methods are safe for
// concurrent use; every mutation holds the lock for a single
// read-modify-write and never spans external work.
//
// When the table is full, Create drops the oldest evictBatch entries before
// inserting, including entries for jobs still running. That is a deliberate
// accepted loss under sustained overload: an evicted job's goroutine will
// re-insert its terminal state through Update when it finishes.
type Store struct {
	mu         sync.RWMutex
	jobs       map[string]Job
	order      []string
	maxEntries int
	evictBatch int
}

// NewStore returns a Store holding at most maxEntries jobs.
func NewStore(maxEntries, evictBatch int) *Store {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if evictBatch < 1 {
		evictBatch = 1
	}
	return &Store{
		jobs:       make(map[string]Job),
		maxEntries: maxEntries,
		evictBatch: evictBatch,
	}
}

// Create inserts a new job record, evicting the oldest entries first if the
// table is at capacity.
func (s *Store) Create(id string, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.jobs) >= s.maxEntries {
		n := s.evictBatch
		if n > len(s.order) {
			n = len(s.order)
		}
		for _, old := range s.order[:n] {
			delete(s.jobs, old)
		}
		s.order = append(s.order[:0], s.order[n:]...)
	}

	if _, exists := s.jobs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.jobs[id] = job
}

// Update replaces the job record wholesale. An id the registry no longer
// tracks (evicted mid-flight) is re-inserted, preserving the overload race
// the design accepts.
func (s *Store) Update(id string, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.jobs[id] = job
}

// Get returns the job for id. A miss yields a synthetic unknown-status job.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{Status: StatusUnknown}, false
	}
	return job, true
}

// Len returns the number of tracked jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// PruneTerminal deletes finished jobs, keeping the keepLast most recently
// inserted ones. Running and queued jobs are never touched. Returns the
// number of records removed.
func (s *Store) PruneTerminal(keepLast int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var terminal []string
	for _, id := range s.order {
		if job, ok := s.jobs[id]; ok && job.Terminal() {
			terminal = append(terminal, id)
		}
	}
	if keepLast < 0 {
		keepLast = 0
	}
	if len(terminal) <= keepLast {
		return 0
	}

	doomed := make(map[string]struct{}, len(terminal)-keepLast)
	for _, id := range terminal[:len(terminal)-keepLast] {
		doomed[id] = struct{}{}
		delete(s.jobs, id)
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, gone := doomed[id]; !gone {
			kept = append(kept, id)
		}
	}
	s.order = kept
	return len(doomed)
}
