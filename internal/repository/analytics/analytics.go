// Package analytics persists the aggregated usage counters.
package analytics

import (
	"errors"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/repository/store"
	"github.com/chemlab-cloud/chemsearch/internal/usecase/analytics"
)

const key = "analytics:state"

// Repository stores the analytics aggregate as a single JSON document.
type Repository struct {
	store  *store.Store
	logger *zap.Logger
}

// New creates an analytics repository.
func New(st *store.Store, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{store: st, logger: logger}
}

// LoadAnalytics reads the stored aggregate. A missing or unreadable document
// yields a zero aggregate.
func (r *Repository) LoadAnalytics() (analytics.State, error) {
	var state analytics.State
	err := r.store.GetJSON(key, &state)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("discarding unreadable analytics state", zap.Error(err))
		}
		return analytics.State{}, nil
	}
	return state, nil
}

// SaveAnalytics replaces the stored aggregate.
func (r *Repository) SaveAnalytics(state analytics.State) error {
	return r.store.SetJSON(key, state)
}
