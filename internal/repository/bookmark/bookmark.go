// Package bookmark persists the session's saved searches.
package bookmark

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/domain/session"
	"github.com/chemlab-cloud/chemsearch/internal/repository/store"
)

const key = "session:bookmarks"

// Repository stores the bookmark list as a single JSON document.
type Repository struct {
	store  *store.Store
	logger *zap.Logger
}

// New creates a bookmark repository.
func New(st *store.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: st, logger: logger}
}

// LoadBookmarks reads the stored bookmarks. A missing or unreadable document
// yields an empty list.
func (r *Repository) LoadBookmarks() ([]session.Bookmark, error) {
	var bookmarks []session.Bookmark
	err := r.store.GetJSON(key, &bookmarks)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("discarding unreadable bookmarks", zap.Error(err))
		}
		return nil, nil
	}
	return bookmarks, nil
}

// SaveBookmarks replaces the stored bookmarks.
func (r *Repository) SaveBookmarks(bookmarks []session.Bookmark) error {
	return r.store.SetJSON(key, bookmarks)
}
