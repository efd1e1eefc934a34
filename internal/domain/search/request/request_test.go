package request

import (
	"strings"
	"testing"

	"github.com/chemlab-cloud/chemsearch/internal/domain/search/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("sodium", filter.Filters{}, "", "", 0, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.SortBy() != SortRelevance || r.SortOrder() != Desc {
		t.Errorf("default sort = %s %s", r.SortBy(), r.SortOrder())
	}
	if r.Limit() != DefaultLimit || r.Offset() != 0 {
		t.Errorf("limit/offset = %d/%d", r.Limit(), r.Offset())
	}
	if len(r.Parsed().MustInclude) != 1 {
		t.Errorf("parsed = %+v", r.Parsed())
	}
}

func TestNew_DefaultOrderPerKey(t *testing.T) {
	tests := []struct {
		sort Sort
		want Order
	}{
		{SortRelevance, Desc},
		{SortPopularity, Desc},
		{SortDate, Desc},
		{SortName, Asc},
		{SortAtomicNumber, Asc},
		{SortMolecularMass, Asc},
	}
	for _, tt := range tests {
		r, err := New("q", filter.Filters{}, tt.sort, "", 10, 0)
		if err != nil {
			t.Fatalf("New(%s): %v", tt.sort, err)
		}
		if r.SortOrder() != tt.want {
			t.Errorf("default order for %s = %s, want %s", tt.sort, r.SortOrder(), tt.want)
		}
	}
}

func TestNew_EmptyQueryValid(t *testing.T) {
	r, err := New("", filter.Filters{}, "", "", 0, 0)
	if err != nil {
		t.Fatalf("empty query must be valid: %v", err)
	}
	if !r.Parsed().IsEmpty() {
		t.Errorf("parsed = %+v", r.Parsed())
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("q", filter.Filters{}, "magic", "", 0, 0); err == nil {
		t.Error("invalid sort key must be rejected")
	}
	if _, err := New("q", filter.Filters{}, SortName, "sideways", 0, 0); err == nil {
		t.Error("invalid order must be rejected")
	}
	if _, err := New(strings.Repeat("x", MaxQueryLength+1), filter.Filters{}, "", "", 0, 0); err == nil {
		t.Error("oversized query must be rejected")
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, _ := New("q", filter.Filters{}, "", "", 10_000, 0)
	if r.Limit() != MaxLimit {
		t.Errorf("limit = %d, want %d", r.Limit(), MaxLimit)
	}
}
