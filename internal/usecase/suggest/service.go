// Package suggest produces query completions while the user types, merging
// the session's own history, platform-wide popular queries, and the indexed
// vocabulary.
package suggest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/fuzzy"
	"github.com/chemlab-cloud/chemsearch/internal/index"
	"github.com/chemlab-cloud/chemsearch/internal/metrics"
)

// DefaultMaxSuggestions caps one suggestion response.
const DefaultMaxSuggestions = 10

// fuzzyFloor is the minimum similarity for a vocabulary term to be offered
// as a typo correction.
const fuzzyFloor = 0.75

// Suggestion sources, in merge priority order.
const (
	SourceHistory    = "history"
	SourcePopular    = "popular"
	SourceVocabulary = "vocabulary"
)

// Suggestion is one completion candidate.
type Suggestion struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Service computes suggestions against the current index vocabulary.
type Service struct {
	mu  sync.RWMutex
	idx *index.Index

	history  HistoryReader
	popular  PopularReader
	max      int
	debounce *Debouncer
	logger   *zap.Logger
}

// New creates a suggestion service. A non-positive max falls back to
// DefaultMaxSuggestions.
func New(ix *index.Index, max int, logger *zap.Logger) *Service {
	if max <= 0 {
		max = DefaultMaxSuggestions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{idx: ix, max: max, debounce: NewDebouncer(DefaultDelay), logger: logger}
}

// WithHistory attaches the session history source.
func (s *Service) WithHistory(h HistoryReader) *Service {
	s.history = h
	return s
}

// WithPopular attaches the popular-query source.
func (s *Service) WithPopular(p PopularReader) *Service {
	s.popular = p
	return s
}

// WithDebounce overrides the typeahead debounce window.
func (s *Service) WithDebounce(delay time.Duration) *Service {
	s.debounce = NewDebouncer(delay)
	return s
}

// SuggestLater computes suggestions for input once the debounce window has
// passed and delivers them to fn. Rapid successive calls coalesce so only the
// latest input is computed; fn runs on a timer goroutine.
func (s *Service) SuggestLater(input string, fn func([]Suggestion)) {
	s.debounce.Trigger(func() {
		sugs, err := s.Suggest(context.Background(), input)
		if err != nil {
			return
		}
		fn(sugs)
	})
}

// Reindex swaps in a freshly built index.
func (s *Service) Reindex(ix *index.Index) {
	s.mu.Lock()
	s.idx = ix
	s.mu.Unlock()
}

func (s *Service) vocabulary() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Vocabulary()
}

// Suggest returns up to max completions for the partial input. History
// entries come first, then popular queries, then vocabulary terms; duplicates
// are folded away case-insensitively. An empty input yields recent and
// popular queries only.
func (s *Service) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.SuggestionRequestsTotal.Inc()

	full := index.FoldLower(strings.TrimSpace(input))

	var out []Suggestion
	seen := make(map[string]struct{})
	add := func(text, source string) bool {
		key := index.FoldLower(text)
		if key == "" {
			return len(out) < s.max
		}
		if _, dup := seen[key]; dup {
			return len(out) < s.max
		}
		seen[key] = struct{}{}
		out = append(out, Suggestion{Text: text, Source: source})
		return len(out) < s.max
	}

	if s.history != nil {
		for _, q := range s.history.RecentQueries(s.max) {
			if full != "" && !strings.HasPrefix(index.FoldLower(q), full) {
				continue
			}
			if !add(q, SourceHistory) {
				return out, nil
			}
		}
	}
	if s.popular != nil {
		for _, q := range s.popular.PopularQueries(s.max) {
			if full != "" && !strings.HasPrefix(index.FoldLower(q), full) {
				continue
			}
			if !add(q, SourcePopular) {
				return out, nil
			}
		}
	}
	if full == "" {
		return out, nil
	}

	// Vocabulary completion acts on the word being typed, keeping the
	// already-typed words as a shared stem.
	stem, term := splitStem(full)
	if term == "" {
		return out, nil
	}

	vocab := s.vocabulary()
	for _, tok := range vocab {
		if !strings.HasPrefix(tok, term) || tok == term {
			continue
		}
		if !add(stem+tok, SourceVocabulary) {
			return out, nil
		}
	}

	// Typo corrections fill the remaining slots, best match first.
	type scored struct {
		tok string
		sim float64
	}
	var corrections []scored
	for _, tok := range vocab {
		if strings.HasPrefix(tok, term) {
			continue
		}
		if sim := fuzzy.Similarity(tok, term); sim >= fuzzyFloor {
			corrections = append(corrections, scored{tok: tok, sim: sim})
		}
	}
	sort.Slice(corrections, func(i, j int) bool {
		if corrections[i].sim != corrections[j].sim {
			return corrections[i].sim > corrections[j].sim
		}
		return corrections[i].tok < corrections[j].tok
	})
	for _, c := range corrections {
		if !add(stem+c.tok, SourceVocabulary) {
			break
		}
	}
	return out, nil
}

// splitStem separates the words already typed from the word in progress.
func splitStem(input string) (stem, term string) {
	if i := strings.LastIndexByte(input, ' '); i >= 0 {
		return input[:i+1], strings.TrimSpace(input[i+1:])
	}
	return "", input
}
