package history

import (
	"sync"

	"github.com/rs/zerolog"
)

// Store is a bounded, ordered record of URLs already emitted in prior runs.
// Insertion order is preserved; when capacity is exceeded the oldest entry is
// evicted first. Membership tests and insertions are O(1) amortized. The
// store is safe for concurrent use, though in practice the aggregator is the
// only writer.
type Store struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	members  map[string]struct{}
	db       *DB
	logger   zerolog.Logger
}

// NewStore creates an in-memory history store with the given capacity.
func NewStore(capacity int, logger zerolog.Logger) *Store {
	return &Store{
		capacity: capacity,
		members:  make(map[string]struct{}, capacity),
		logger:   logger.With().Str("module", "HistoryStore").Logger(),
	}
}

// WithPersistence attaches a sqlite backing to the store and seeds the
// in-memory state with the most recently persisted URLs, oldest first.
func (s *Store) WithPersistence(db *DB) error {
	urls, err := db.LoadRecent(s.capacity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.db = db
	for _, url := range urls {
		s.insertLocked(url)
	}
	s.mu.Unlock()

	s.logger.Info().Int("restored", len(urls)).Msg("History restored from persistence")
	return nil
}

// Contains reports whether url has already been emitted.
func (s *Store) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[url]
	return ok
}

// Commit records the given URLs as emitted, evicting the oldest entries when
// the capacity bound is exceeded. When persistence is attached the URLs are
// written to sqlite first; a persistence failure leaves the in-memory state
// untouched so the run can be treated as failed without a partial commit.
func (s *Store) Commit(urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Record(urls, s.capacity); err != nil {
			return err
		}
	}
	for _, url := range urls {
		s.insertLocked(url)
	}
	return nil
}

// insertLocked adds one URL, evicting the oldest entry at capacity. Caller
// must hold the write lock.
func (s *Store) insertLocked(url string) {
	if _, ok := s.members[url]; ok {
		return
	}
	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.members, oldest)
	}
	s.order = append(s.order, url)
	s.members[url] = struct{}{}
}

// Len returns the number of URLs currently recorded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Oldest returns the least recently inserted URL, or "" when empty.
func (s *Store) Oldest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

// Clear empties the store (and the persistent backing, when attached), so
// subsequent runs re-emit previously seen URLs.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Clear(); err != nil {
			return err
		}
	}
	s.order = nil
	s.members = make(map[string]struct{}, s.capacity)
	s.logger.Info().Msg("History cleared")
	return nil
}
