// Package session manages the persisted search history and bookmarks. State
// is held in memory and written through to the store after every mutation;
// persistence failures are logged and never surface to the caller, so losing
// the store degrades to a memory-only session.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/filter"
	"github.com/chemlab-cloud/chemsearch/internal/domain/session"
	"github.com/chemlab-cloud/chemsearch/internal/metrics"
)

// Service owns the session state. Safe for concurrent use.
type Service struct {
	mu        sync.Mutex
	history   []session.HistoryItem
	bookmarks []session.Bookmark

	historyStore  HistoryStore
	bookmarkStore BookmarkStore
	maxHistory    int
	maxBookmarks  int
	logger        *zap.Logger
	now           func() time.Time
	newID         func() string
}

// Option configures the session service.
type Option func(*Service)

// WithMaxHistory overrides the history capacity.
func WithMaxHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// WithMaxBookmarks overrides the bookmark capacity.
func WithMaxBookmarks(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBookmarks = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a session service, loading prior state from the stores. A
// load failure starts the session empty rather than failing startup.
func New(hs HistoryStore, bs BookmarkStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		historyStore:  hs,
		bookmarkStore: bs,
		maxHistory:    session.DefaultMaxHistory,
		maxBookmarks:  session.DefaultMaxBookmarks,
		logger:        logger,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if hs != nil {
		items, err := hs.LoadHistory()
		if err != nil {
			logger.Warn("loading history failed, starting empty", zap.Error(err))
		} else {
			if len(items) > s.maxHistory {
				items = items[len(items)-s.maxHistory:]
			}
			s.history = items
		}
	}
	if bs != nil {
		bms, err := bs.LoadBookmarks()
		if err != nil {
			logger.Warn("loading bookmarks failed, starting empty", zap.Error(err))
		} else {
			s.bookmarks = bms
		}
	}
	return s
}

// Append adds an executed search to the history, evicting the oldest item
// beyond capacity. Implements the search service's history hook.
func (s *Service) Append(query string, filters filter.Filters, resultCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, session.HistoryItem{
		ID:          s.newID(),
		Query:       query,
		Filters:     filters.Snapshot(),
		Timestamp:   s.now().UTC(),
		ResultCount: resultCount,
	})
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	s.persistHistory()
}

// History returns the history, newest first.
func (s *Service) History() []session.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]session.HistoryItem, len(s.history))
	for i, item := range s.history {
		out[len(s.history)-1-i] = item
	}
	return out
}

// RecentQueries returns up to limit distinct recent query strings, newest
// first. Implements the suggestion service's history source.
func (s *Service) RecentQueries(limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	seen := make(map[string]struct{})
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		q := strings.TrimSpace(s.history[i].Query)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

// ClearHistory drops all history items.
func (s *Service) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.persistHistory()
}

// AddBookmark saves a search under a name. Returns domain.ErrBookmarkLimit
// when the capacity is reached; bookmarks are never evicted.
func (s *Service) AddBookmark(name, query string, filters filter.Filters) (session.Bookmark, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return session.Bookmark{}, fmt.Errorf("%w: bookmark name is required", domain.ErrInvalidRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.bookmarks) >= s.maxBookmarks {
		return session.Bookmark{}, domain.ErrBookmarkLimit
	}
	bm := session.Bookmark{
		ID:        s.newID(),
		Name:      name,
		Query:     query,
		Filters:   filters.Snapshot(),
		CreatedAt: s.now().UTC(),
	}
	s.bookmarks = append(s.bookmarks, bm)
	s.persistBookmarks()
	return bm, nil
}

// Bookmarks returns the saved bookmarks, newest first.
func (s *Service) Bookmarks() []session.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]session.Bookmark, len(s.bookmarks))
	for i, bm := range s.bookmarks {
		out[len(s.bookmarks)-1-i] = bm
	}
	return out
}

// Bookmark looks up a bookmark by ID.
func (s *Service) Bookmark(id string) (session.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bm := range s.bookmarks {
		if bm.ID == id {
			return bm, nil
		}
	}
	return session.Bookmark{}, fmt.Errorf("%w: bookmark %q", domain.ErrNotFound, id)
}

// RemoveBookmark deletes a bookmark. Removing an unknown ID is a no-op, so
// repeated deletes are safe.
func (s *Service) RemoveBookmark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, bm := range s.bookmarks {
		if bm.ID == id {
			s.bookmarks = append(s.bookmarks[:i], s.bookmarks[i+1:]...)
			s.persistBookmarks()
			return
		}
	}
}

func (s *Service) persistHistory() {
	if s.historyStore == nil {
		return
	}
	if err := s.historyStore.SaveHistory(s.history); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues("history").Inc()
		s.logger.Warn("persisting history failed", zap.Error(err))
	}
}

func (s *Service) persistBookmarks() {
	if s.bookmarkStore == nil {
		return
	}
	if err := s.bookmarkStore.SaveBookmarks(s.bookmarks); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues("bookmarks").Inc()
		s.logger.Warn("persisting bookmarks failed", zap.Error(err))
	}
}
