// Package analytics aggregates usage counters: searches, filter usage,
// no-result queries, and result clicks. Aggregation is in-memory with
// write-through persistence; a failing store never disturbs the search path.
package analytics

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
	"github.com/chemlab-cloud/chemsearch/internal/metrics"
)

// DefaultTopQueries is the length of the popular and no-result query lists
// in a snapshot.
const DefaultTopQueries = 10

// QueryCount pairs a normalized query string with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// State is the serializable aggregate. The Top* lists are derived from the
// count maps when a snapshot is taken.
type State struct {
	TotalSearches          int64            `json:"total_searches"`
	TopQueries             []QueryCount     `json:"top_queries,omitempty"`
	TopNoResultQueries     []QueryCount     `json:"top_no_result_queries,omitempty"`
	QueryCounts            map[string]int64 `json:"query_counts,omitempty"`
	NoResultCounts         map[string]int64 `json:"no_result_counts,omitempty"`
	FilterUsage            map[string]int64 `json:"filter_usage,omitempty"`
	SearchTypeDistribution map[string]int64 `json:"search_type_distribution,omitempty"`
	ResultClicks           map[string]int64 `json:"result_clicks,omitempty"`
}

// Service aggregates analytics events. Safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	state State

	store  Store
	topN   int
	logger *zap.Logger
}

// New creates an analytics service, restoring prior state from the store. A
// load failure starts the aggregate at zero rather than failing startup.
func New(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, topN: DefaultTopQueries, logger: logger}
	s.state = emptyState()

	if store != nil {
		loaded, err := store.LoadAnalytics()
		if err != nil {
			logger.Warn("loading analytics failed, starting empty", zap.Error(err))
		} else {
			s.state = normalizeState(loaded)
		}
	}
	return s
}

func emptyState() State {
	return State{
		QueryCounts:            make(map[string]int64),
		NoResultCounts:         make(map[string]int64),
		FilterUsage:            make(map[string]int64),
		SearchTypeDistribution: make(map[string]int64),
		ResultClicks:           make(map[string]int64),
	}
}

// normalizeState fills nil maps on a state loaded from storage.
func normalizeState(st State) State {
	empty := emptyState()
	if st.QueryCounts == nil {
		st.QueryCounts = empty.QueryCounts
	}
	if st.NoResultCounts == nil {
		st.NoResultCounts = empty.NoResultCounts
	}
	if st.FilterUsage == nil {
		st.FilterUsage = empty.FilterUsage
	}
	if st.SearchTypeDistribution == nil {
		st.SearchTypeDistribution = empty.SearchTypeDistribution
	}
	if st.ResultClicks == nil {
		st.ResultClicks = empty.ResultClicks
	}
	return st
}

// RecordSearch counts one executed search. Implements the search service's
// analytics hook.
func (s *Service) RecordSearch(query string, types []record.EntityType, resultCount int) {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.TotalSearches++
	if q != "" {
		s.state.QueryCounts[q]++
		if resultCount == 0 {
			s.state.NoResultCounts[q]++
		}
	}
	if len(types) == 0 {
		s.state.SearchTypeDistribution["all"]++
	}
	for _, t := range types {
		s.state.SearchTypeDistribution[string(t)]++
	}
	s.persist()
}

// RecordFilterUsage counts one use of a filter dimension.
func (s *Service) RecordFilterUsage(key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.FilterUsage[key]++
	s.persist()
}

// RecordResultClick counts a click-through on a search result.
func (s *Service) RecordResultClick(recordID string) {
	if recordID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ResultClicks[recordID]++
	s.persist()
}

// ResultClicks returns the click count for one record. Implements the
// popularity sort's click source.
func (s *Service) ResultClicks(recordID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ResultClicks[recordID]
}

// PopularQueries returns up to limit query strings by descending count.
// Implements the suggestion service's popular source.
func (s *Service) PopularQueries(limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	top := topCounts(s.state.QueryCounts, limit)
	out := make([]string, len(top))
	for i, qc := range top {
		out[i] = qc.Query
	}
	return out
}

// Snapshot returns a deep copy of the aggregate with the Top* lists filled
// in, safe to serialize or mutate.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() State {
	st := State{
		TotalSearches:          s.state.TotalSearches,
		TopQueries:             topCounts(s.state.QueryCounts, s.topN),
		TopNoResultQueries:     topCounts(s.state.NoResultCounts, s.topN),
		QueryCounts:            copyCounts(s.state.QueryCounts),
		NoResultCounts:         copyCounts(s.state.NoResultCounts),
		FilterUsage:            copyCounts(s.state.FilterUsage),
		SearchTypeDistribution: copyCounts(s.state.SearchTypeDistribution),
		ResultClicks:           copyCounts(s.state.ResultClicks),
	}
	return st
}

// Reset clears all counters.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = emptyState()
	s.persist()
}

func (s *Service) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveAnalytics(s.snapshotLocked()); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues("analytics").Inc()
		s.logger.Warn("persisting analytics failed", zap.Error(err))
	}
}

// topCounts extracts the limit highest counts, ties broken alphabetically
// for a deterministic report.
func topCounts(counts map[string]int64, limit int) []QueryCount {
	if len(counts) == 0 || limit <= 0 {
		return nil
	}
	list := make([]QueryCount, 0, len(counts))
	for q, n := range counts {
		list = append(list, QueryCount{Query: q, Count: n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Query < list[j].Query
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
