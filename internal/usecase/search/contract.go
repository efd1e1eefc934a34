package search

import (
	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/filter"
)

// Recorder receives fire-and-forget search analytics events.
type Recorder interface {
	RecordSearch(query string, types []record.EntityType, resultCount int)
	RecordFilterUsage(key string)
}

// HistoryAppender appends executed searches to the session history.
type HistoryAppender interface {
	Append(query string, filters filter.Filters, resultCount int)
}

// PopularityReader exposes the click-count signal used by the popularity sort.
type PopularityReader interface {
	ResultClicks(recordID string) int64
}
