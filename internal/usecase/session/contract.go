package session

import "github.com/chemlab-cloud/chemsearch/internal/domain/session"

// HistoryStore persists the search history list.
type HistoryStore interface {
	LoadHistory() ([]session.HistoryItem, error)
	SaveHistory(items []session.HistoryItem) error
}

// BookmarkStore persists the bookmark list.
type BookmarkStore interface {
	LoadBookmarks() ([]session.Bookmark, error)
	SaveBookmarks(bookmarks []session.Bookmark) error
}
