// Package search orchestrates the query pipeline: parse, filter, score,
// rank, paginate. The pipeline never fails for any query string or filter
// combination; it always returns a (possibly empty) result set.
package search

import (
	"context"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain/query"
	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/request"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/result"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/weights"
	"github.com/chemlab-cloud/chemsearch/internal/index"
	"github.com/chemlab-cloud/chemsearch/internal/metrics"
)

// Response is the outcome of one search execution.
type Response struct {
	Results    []result.Result
	TotalCount int
	// Superseded marks a response that was overtaken by a newer search while
	// it was being computed. The caller must discard it.
	Superseded bool
}

// Service executes searches over the current index.
type Service struct {
	mu  sync.RWMutex
	idx *index.Index

	cfg        weights.Config
	analytics  Recorder
	history    HistoryAppender
	popularity PopularityReader
	logger     *zap.Logger

	// seq orders search submissions; only the highest-sequence response is
	// considered current.
	seq atomic.Uint64
}

// New creates a search service over the given index.
func New(ix *index.Index, cfg weights.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{idx: ix, cfg: cfg, logger: logger}
}

// WithAnalytics attaches the analytics recorder.
func (s *Service) WithAnalytics(r Recorder) *Service {
	s.analytics = r
	return s
}

// WithHistory attaches the session history appender.
func (s *Service) WithHistory(h HistoryAppender) *Service {
	s.history = h
	return s
}

// WithPopularity attaches the click-count reader for the popularity sort.
func (s *Service) WithPopularity(p PopularityReader) *Service {
	s.popularity = p
	return s
}

// Reindex swaps in a freshly built index. The old index is never mutated, so
// in-flight queries keep reading a consistent snapshot.
func (s *Service) Reindex(ix *index.Index) {
	s.mu.Lock()
	s.idx = ix
	s.mu.Unlock()
}

func (s *Service) currentIndex() *index.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Search runs the full pipeline for one request. A response computed for a
// request that has since been superseded is flagged and not recorded in
// history or analytics.
func (s *Service) Search(ctx context.Context, req *request.Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	seq := s.seq.Add(1)
	ix := s.currentIndex()
	p := req.Parsed()

	var scored []result.Result
	for _, doc := range ix.Documents() {
		rec := doc.Record()
		if !req.Filters().Matches(rec) {
			continue
		}
		if !matchesParsedConstraints(rec, p) {
			continue
		}
		score, matched, ok := scoreDocument(doc, p, s.cfg)
		if !ok {
			continue
		}
		scored = append(scored, result.New(rec, score, matched))
	}

	rankResults(scored, req.SortBy(), req.SortOrder(), s.popularity)
	total := len(scored)
	page := paginate(scored, req.Limit(), req.Offset())

	superseded := s.seq.Load() != seq
	if !superseded {
		s.record(req, total)
	}

	outcome := "hit"
	if total == 0 {
		outcome = "empty"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	return &Response{Results: page, TotalCount: total, Superseded: superseded}, nil
}

// record emits history and analytics events. Both are fire-and-forget:
// failures there must never surface on the search path.
func (s *Service) record(req *request.Request, total int) {
	if s.history != nil {
		s.history.Append(req.Raw(), req.Filters(), total)
	}
	if s.analytics == nil {
		return
	}
	s.analytics.RecordSearch(req.Raw(), req.Filters().Types(), total)
	for _, key := range req.Filters().UsageKeys() {
		s.analytics.RecordFilterUsage(key)
	}
	for _, ff := range req.Parsed().FieldFilters {
		s.analytics.RecordFilterUsage("query:" + ff.Field)
	}
	for _, rg := range req.Parsed().Ranges {
		s.analytics.RecordFilterUsage("query:" + rg.Field)
	}
}

// matchesParsedConstraints applies the field filters and ranges lifted out of
// the query text. They are ANDed with the structural filters, never ORed.
func matchesParsedConstraints(rec *record.Record, p query.Parsed) bool {
	for _, ff := range p.FieldFilters {
		if ff.Field == "type" {
			if rec.Type != record.EntityType(ff.Value) {
				return false
			}
			continue
		}
		def, ok := record.FieldByName(ff.Field)
		if !ok {
			return false
		}
		if def.Kind == record.NumericKind {
			want, err := strconv.ParseFloat(ff.Value, 64)
			if err != nil {
				return false
			}
			v, present := rec.Numeric(ff.Field)
			if !present || math.Abs(v-want) > 1e-9 {
				return false
			}
			continue
		}
		if !containsFold(rec.Values(ff.Field), ff.Value) {
			return false
		}
	}

	for _, rg := range p.Ranges {
		v, present := rec.Numeric(rg.Field)
		if !present {
			return false
		}
		if rg.Min != nil && v < *rg.Min {
			return false
		}
		if rg.Max != nil && v > *rg.Max {
			return false
		}
	}
	return true
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if index.FoldLower(v) == index.FoldLower(want) {
			return true
		}
	}
	return false
}
