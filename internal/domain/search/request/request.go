// Package request defines the validated search request value object.
package request

import (
	"fmt"

	"github.com/chemlab-cloud/chemsearch/internal/domain/query"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1024
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Sort is the result ordering key.
type Sort string

// Supported sort keys.
const (
	SortRelevance     Sort = "relevance"
	SortName          Sort = "name"
	SortDate          Sort = "date"
	SortPopularity    Sort = "popularity"
	SortMolecularMass Sort = "molecular_mass"
	SortAtomicNumber  Sort = "atomic_number"
)

// IsValid checks if the sort key is one of the supported values.
func (s Sort) IsValid() bool {
	switch s {
	case SortRelevance, SortName, SortDate, SortPopularity, SortMolecularMass, SortAtomicNumber:
		return true
	}
	return false
}

// Order is the sort direction.
type Order string

// Sort order constants.
const (
	Desc Order = "desc"
	Asc  Order = "asc"
)

// IsValid checks if the order is one of the supported values.
func (o Order) IsValid() bool { return o == Asc || o == Desc }

// Request is a validated search request. The raw query is parsed eagerly;
// parsing never fails, so an unparseable query still yields a valid request.
type Request struct {
	raw     string
	parsed  query.Parsed
	filters filter.Filters
	sortBy  Sort
	order   Order
	limit   int
	offset  int
}

// New validates and normalizes search parameters.
// Defaults: sort=relevance desc, limit=20 (capped at 100), offset=0.
// An empty query is valid and means "no text constraint".
func New(
	raw string,
	filters filter.Filters,
	sortBy Sort,
	order Order,
	limit, offset int,
) (Request, error) {
	if len(raw) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if sortBy == "" {
		sortBy = SortRelevance
	}
	if !sortBy.IsValid() {
		return Request{}, fmt.Errorf("invalid sort key: %q", sortBy)
	}
	if order == "" {
		if sortBy == SortRelevance || sortBy == SortPopularity || sortBy == SortDate {
			order = Desc
		} else {
			order = Asc
		}
	}
	if !order.IsValid() {
		return Request{}, fmt.Errorf("invalid sort order: %q", order)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	return Request{
		raw:     raw,
		parsed:  query.Parse(raw),
		filters: filters,
		sortBy:  sortBy,
		order:   order,
		limit:   limit,
		offset:  offset,
	}, nil
}

// Raw returns the original query text.
func (r *Request) Raw() string { return r.raw }

// Parsed returns the structured query.
func (r *Request) Parsed() query.Parsed { return r.parsed }

// Filters returns the structural filters.
func (r *Request) Filters() filter.Filters { return r.filters }

// SortBy returns the sort key.
func (r *Request) SortBy() Sort { return r.sortBy }

// SortOrder returns the sort direction.
func (r *Request) SortOrder() Order { return r.order }

// Limit returns the maximum results per page.
func (r *Request) Limit() int { return r.limit }

// Offset returns the pagination offset.
func (r *Request) Offset() int { return r.offset }
