package chi

import (
	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/filter"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/result"
	"github.com/chemlab-cloud/chemsearch/internal/domain/session"
	searchuc "github.com/chemlab-cloud/chemsearch/internal/usecase/search"
	suggestuc "github.com/chemlab-cloud/chemsearch/internal/usecase/suggest"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeBookmarkLimit    = "bookmark_limit_reached"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// searchRequest is the POST /search body. Filters use the same wire form as
// persisted history and bookmarks.
type searchRequest struct {
	Query   string           `json:"query"`
	Filters *filter.Snapshot `json:"filters,omitempty"`
	Sort    string           `json:"sort,omitempty"`
	Order   string           `json:"order,omitempty"`
	Limit   int              `json:"limit,omitempty"`
	Offset  int              `json:"offset,omitempty"`
}

type searchResultItem struct {
	Record        record.Record `json:"record"`
	Score         float64       `json:"score"`
	MatchedFields []string      `json:"matched_fields,omitempty"`
}

type searchResponse struct {
	Items      []searchResultItem `json:"items"`
	TotalCount int                `json:"total_count"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	Superseded bool               `json:"superseded,omitempty"`
}

func searchResponseFrom(resp *searchuc.Response, limit, offset int) searchResponse {
	items := make([]searchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = searchResultItemFrom(&resp.Results[i])
	}
	return searchResponse{
		Items:      items,
		TotalCount: resp.TotalCount,
		Limit:      limit,
		Offset:     offset,
		Superseded: resp.Superseded,
	}
}

func searchResultItemFrom(r *result.Result) searchResultItem {
	return searchResultItem{
		Record:        *r.Record(),
		Score:         r.Score(),
		MatchedFields: r.MatchedFields(),
	}
}

type suggestionsResponse struct {
	Items []suggestuc.Suggestion `json:"items"`
}

type historyResponse struct {
	Items []session.HistoryItem `json:"items"`
}

type bookmarksResponse struct {
	Items []session.Bookmark `json:"items"`
}

// createBookmarkRequest is the POST /bookmarks body.
type createBookmarkRequest struct {
	Name    string           `json:"name"`
	Query   string           `json:"query"`
	Filters *filter.Snapshot `json:"filters,omitempty"`
}

// clickEventRequest is the POST /events/click body.
type clickEventRequest struct {
	RecordID string `json:"record_id"`
}

func filtersFrom(snap *filter.Snapshot) (filter.Filters, error) {
	if snap == nil {
		return filter.Filters{}, nil
	}
	return filter.FromSnapshot(*snap)
}
