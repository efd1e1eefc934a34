// Package session defines the persisted session artifacts: search history
// items and bookmarks.
package session

import (
	"time"

	"github.com/chemlab-cloud/chemsearch/internal/domain/search/filter"
)

// Session capacity defaults.
const (
	DefaultMaxHistory   = 50
	DefaultMaxBookmarks = 100
)

// HistoryItem records one executed search. History is append-only and bounded
// FIFO: the oldest item is evicted first.
type HistoryItem struct {
	ID          string          `json:"id"`
	Query       string          `json:"query"`
	Filters     filter.Snapshot `json:"filters,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	ResultCount int             `json:"result_count"`
}

// Bookmark is a user-saved search. Bookmarks persist until explicitly deleted
// and creation beyond the cap is rejected, not evicted.
type Bookmark struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Query     string          `json:"query"`
	Filters   filter.Snapshot `json:"filters,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
