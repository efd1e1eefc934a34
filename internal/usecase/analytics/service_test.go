package analytics

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
)

type storeMock struct {
	state   State
	loadErr error
	saveErr error
	saves   int
}

func (m *storeMock) LoadAnalytics() (State, error) { return m.state, m.loadErr }

func (m *storeMock) SaveAnalytics(st State) error {
	m.saves++
	m.state = st
	return m.saveErr
}

func TestRecordSearchAggregates(t *testing.T) {
	svc := New(nil, zap.NewNop())

	svc.RecordSearch("Sodium", []record.EntityType{record.Compound}, 5)
	svc.RecordSearch("sodium ", []record.EntityType{record.Compound, record.Element}, 2)
	svc.RecordSearch("unobtainium", nil, 0)

	st := svc.Snapshot()
	if st.TotalSearches != 3 {
		t.Fatalf("total searches = %d, want 3", st.TotalSearches)
	}
	if st.QueryCounts["sodium"] != 2 {
		t.Fatalf("query normalization failed: %v", st.QueryCounts)
	}
	if st.NoResultCounts["unobtainium"] != 1 {
		t.Fatalf("no-result query not tracked: %v", st.NoResultCounts)
	}
	if st.SearchTypeDistribution["compound"] != 2 ||
		st.SearchTypeDistribution["element"] != 1 ||
		st.SearchTypeDistribution["all"] != 1 {
		t.Fatalf("unexpected type distribution: %v", st.SearchTypeDistribution)
	}
}

func TestTopQueriesOrdering(t *testing.T) {
	svc := New(nil, zap.NewNop())
	for i := 0; i < 3; i++ {
		svc.RecordSearch("glucose", nil, 1)
	}
	svc.RecordSearch("acid", nil, 1)
	svc.RecordSearch("base", nil, 1)

	st := svc.Snapshot()
	if len(st.TopQueries) != 3 || st.TopQueries[0].Query != "glucose" {
		t.Fatalf("unexpected top queries: %+v", st.TopQueries)
	}
	// Equal counts order alphabetically.
	if st.TopQueries[1].Query != "acid" || st.TopQueries[2].Query != "base" {
		t.Fatalf("tie-break not alphabetical: %+v", st.TopQueries)
	}

	if got := svc.PopularQueries(2); len(got) != 2 || got[0] != "glucose" {
		t.Fatalf("unexpected popular queries: %v", got)
	}
}

func TestFilterUsageAndClicks(t *testing.T) {
	svc := New(nil, zap.NewNop())

	svc.RecordFilterUsage("type")
	svc.RecordFilterUsage("type")
	svc.RecordFilterUsage("range:molecular_mass")
	svc.RecordFilterUsage("")
	svc.RecordResultClick("nacl")
	svc.RecordResultClick("nacl")

	st := svc.Snapshot()
	if st.FilterUsage["type"] != 2 || st.FilterUsage["range:molecular_mass"] != 1 {
		t.Fatalf("unexpected filter usage: %v", st.FilterUsage)
	}
	if len(st.FilterUsage) != 2 {
		t.Fatalf("empty key should be ignored: %v", st.FilterUsage)
	}
	if svc.ResultClicks("nacl") != 2 || svc.ResultClicks("unknown") != 0 {
		t.Fatal("click counts wrong")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	svc := New(nil, zap.NewNop())
	svc.RecordSearch("glucose", nil, 1)

	st := svc.Snapshot()
	st.QueryCounts["glucose"] = 99
	st.TotalSearches = 99

	if svc.Snapshot().QueryCounts["glucose"] != 1 {
		t.Fatal("snapshot shares state with the service")
	}
}

func TestReset(t *testing.T) {
	store := &storeMock{}
	svc := New(store, zap.NewNop())
	svc.RecordSearch("glucose", nil, 1)
	svc.RecordResultClick("nacl")

	svc.Reset()

	st := svc.Snapshot()
	if st.TotalSearches != 0 || len(st.QueryCounts) != 0 || svc.ResultClicks("nacl") != 0 {
		t.Fatalf("reset incomplete: %+v", st)
	}
	if store.state.TotalSearches != 0 {
		t.Fatal("reset not persisted")
	}
}

func TestNewRestoresState(t *testing.T) {
	store := &storeMock{state: State{
		TotalSearches: 7,
		QueryCounts:   map[string]int64{"acid": 4},
		ResultClicks:  map[string]int64{"nacl": 2},
	}}
	svc := New(store, zap.NewNop())

	st := svc.Snapshot()
	if st.TotalSearches != 7 || st.QueryCounts["acid"] != 4 {
		t.Fatalf("state not restored: %+v", st)
	}
	// Maps absent from the stored form must still be usable.
	svc.RecordFilterUsage("type")
	if svc.Snapshot().FilterUsage["type"] != 1 {
		t.Fatal("nil map not normalized on load")
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	store := &storeMock{loadErr: errors.New("corrupt")}
	svc := New(store, zap.NewNop())
	if svc.Snapshot().TotalSearches != 0 {
		t.Fatal("expected empty state after load failure")
	}
}

func TestSaveFailureDoesNotSurface(t *testing.T) {
	store := &storeMock{saveErr: errors.New("disk full")}
	svc := New(store, zap.NewNop())
	svc.RecordSearch("glucose", nil, 1)

	if svc.Snapshot().TotalSearches != 1 {
		t.Fatal("aggregate lost on save failure")
	}
}
