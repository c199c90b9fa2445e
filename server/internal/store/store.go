package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/o2calc/o2calc/pkg/oxygen"
)

// Entry is an estimate together with the time it was recorded.
type Entry struct {
	ID         string
	Result     oxygen.Result
	RecordedAt time.Time
}

// Store is a thread-safe in-memory history of estimates.
// A background goroutine (Run) periodically evicts entries older than the TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Entry
	ttl  time.Duration
	max  int
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL and maximum size. A max of 0 means
// unbounded; a ttl of 0 means entries never expire.
func New(ttl time.Duration, max int) *Store {
	return &Store{
		data: make(map[string]*Entry),
		ttl:  ttl,
		max:  max,
		now:  time.Now,
	}
}

// Put records res and returns the new entry. When the store is full the
// oldest entry is dropped.
func (s *Store) Put(res oxygen.Result) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &Entry{
		ID:         uuid.NewString(),
		Result:     res,
		RecordedAt: s.now(),
	}
	if s.max > 0 && len(s.data) >= s.max {
		s.dropOldestLocked(len(s.data) - s.max + 1)
	}
	s.data[e.ID] = e
	return e
}

// Get returns the entry with the given ID. The entry may be stale if the TTL
// has elapsed but eviction has not run yet.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	return e, ok
}

// List returns live entries, newest first. Stale entries that have not yet
// been evicted are excluded.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		if s.liveLocked(e, s.now()) {
			out = append(out, e)
		}
	}
	sortNewestFirst(out)
	return out
}

// Count returns the total number of entries held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// TTL returns the configured entry lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Evict removes entries recorded before now minus TTL and returns how many
// were removed.
func (s *Store) Evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.data {
		if !s.liveLocked(e, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background eviction loop. It ticks at half the TTL
// (minimum 1 second) and blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	if s.ttl <= 0 {
		<-ctx.Done()
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted stale estimates", "count", n)
			}
		}
	}
}

func (s *Store) liveLocked(e *Entry, now time.Time) bool {
	if s.ttl <= 0 {
		return true
	}
	return e.RecordedAt.After(now.Add(-s.ttl))
}

func (s *Store) dropOldestLocked(n int) {
	all := make([]*Entry, 0, len(s.data))
	for _, e := range s.data {
		all = append(all, e)
	}
	sortNewestFirst(all)
	for i := 0; i < n && i < len(all); i++ {
		delete(s.data, all[len(all)-1-i].ID)
	}
}

func sortNewestFirst(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RecordedAt.After(entries[j].RecordedAt)
	})
}
