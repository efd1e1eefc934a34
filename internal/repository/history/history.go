// Package history persists the session's search history list.
package history

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/domain/session"
	"github.com/chemlab-cloud/chemsearch/internal/repository/store"
)

const key = "session:history"

// Repository stores the history list as a single JSON document.
type Repository struct {
	store  *store.Store
	logger *zap.Logger
}

// New creates a history repository.
func New(st *store.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: st, logger: logger}
}

// LoadHistory reads the stored history. A missing or unreadable document
// yields an empty history, so a corrupt store never blocks startup.
func (r *Repository) LoadHistory() ([]session.HistoryItem, error) {
	var items []session.HistoryItem
	err := r.store.GetJSON(key, &items)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("discarding unreadable history", zap.Error(err))
		}
		return nil, nil
	}
	return items, nil
}

// SaveHistory replaces the stored history.
func (r *Repository) SaveHistory(items []session.HistoryItem) error {
	return r.store.SetJSON(key, items)
}
