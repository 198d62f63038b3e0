package table

import "sync"

// Source is a reactive handle to a record collection. Writers replace or
// update the whole collection; readers take immutable snapshots tagged with
// a generation number that increases on every write.
type Source[R any] struct {
	mu      sync.RWMutex
	records []R
	gen     uint64

	listenerMu sync.Mutex
	listeners  map[int]func(uint64)
	nextID     int
}

// NewSource returns a source holding a copy of records.
func NewSource[R any](records []R) *Source[R] {
	return &Source[R]{
		records:   cloneRecords(records),
		gen:       1,
		listeners: make(map[int]func(uint64)),
	}
}

// Snapshot returns the current records and their generation.
// The returned slice must not be modified.
func (s *Source[R]) Snapshot() ([]R, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.gen
}

// Generation returns the current generation.
func (s *Source[R]) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Len returns the number of records.
func (s *Source[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Set replaces the records with a copy of records.
func (s *Source[R]) Set(records []R) {
	next := cloneRecords(records)

	s.mu.Lock()
	s.records = next
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.notify(gen)
}

// Update applies fn to a copy of the current records and stores the result.
// fn runs while the write lock is held and must not call methods of s.
func (s *Source[R]) Update(fn func([]R) []R) {
	s.mu.Lock()
	next := fn(cloneRecords(s.records))
	s.records = next
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.notify(gen)
}

// Subscribe registers fn to run after every write, with the new generation.
// fn runs on the writer's goroutine after the write is visible.
func (s *Source[R]) Subscribe(fn func(gen uint64)) (unsubscribe func()) {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *Source[R]) notify(gen uint64) {
	s.listenerMu.Lock()
	fns := make([]func(uint64), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(gen)
	}
}

func cloneRecords[R any](records []R) []R {
	out := make([]R, len(records))
	copy(out, records)
	return out
}
