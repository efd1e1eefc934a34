// Package result defines the search hit value object.
package result

import "github.com/chemlab-cloud/chemsearch/internal/domain/record"

// Result is a single search hit: a record reference, its relevance score in
// [0,1], and the fields that contributed to the match.
type Result struct {
	rec           *record.Record
	score         float64
	matchedFields []string
}

// New creates a search result.
func New(rec *record.Record, score float64, matchedFields []string) Result {
	return Result{rec: rec, score: score, matchedFields: matchedFields}
}

// Record returns the matched record.
func (r *Result) Record() *record.Record { return r.rec }

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// MatchedFields returns the fields that contributed to the match, sorted.
func (r *Result) MatchedFields() []string { return r.matchedFields }
