package search

import (
	"sort"
	"strings"

	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/request"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/result"
)

// sortKey is the extracted ordering key for one result. Results missing the
// key sort last regardless of direction.
type sortKey struct {
	num     float64
	str     string
	isStr   bool
	present bool
}

// rankResults orders results by the requested key with a stable, deterministic
// tie-break on record ID ascending.
func rankResults(
	results []result.Result,
	sortBy request.Sort,
	order request.Order,
	popularity PopularityReader,
) {
	key := func(r *result.Result) sortKey {
		switch sortBy {
		case request.SortName:
			return sortKey{str: strings.ToLower(r.Record().Title), isStr: true, present: true}
		case request.SortDate:
			ts := r.Record().UpdatedAt
			return sortKey{num: float64(ts.UnixNano()), present: !ts.IsZero()}
		case request.SortPopularity:
			var clicks int64
			if popularity != nil {
				clicks = popularity.ResultClicks(r.Record().ID)
			}
			return sortKey{num: float64(clicks), present: true}
		case request.SortMolecularMass:
			v, ok := r.Record().Numeric(record.FieldMolecularMass)
			return sortKey{num: v, present: ok}
		case request.SortAtomicNumber:
			v, ok := r.Record().Numeric(record.FieldAtomicNumber)
			return sortKey{num: v, present: ok}
		default:
			return sortKey{num: r.Score(), present: true}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		ki, kj := key(&results[i]), key(&results[j])
		if ki.present != kj.present {
			return ki.present // missing key sorts last regardless of order
		}
		var c int
		if ki.isStr {
			c = strings.Compare(ki.str, kj.str)
		} else {
			switch {
			case ki.num < kj.num:
				c = -1
			case ki.num > kj.num:
				c = 1
			}
		}
		if c == 0 {
			return results[i].Record().ID < results[j].Record().ID
		}
		if order == request.Asc {
			return c < 0
		}
		return c > 0
	})
}

// paginate slices one page out of the ranked results. An offset beyond the
// result count yields an empty page, not an error.
func paginate(results []result.Result, limit, offset int) []result.Result {
	if offset >= len(results) {
		return nil
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}
