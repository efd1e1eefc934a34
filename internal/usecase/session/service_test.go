package session

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
	"github.com/chemlab-cloud/chemsearch/internal/domain/search/filter"
	"github.com/chemlab-cloud/chemsearch/internal/domain/session"
)

type storeMock struct {
	history     []session.HistoryItem
	bookmarks   []session.Bookmark
	loadErr     error
	saveErr     error
	savedCount  int
	loadedCount int
}

func (m *storeMock) LoadHistory() ([]session.HistoryItem, error) {
	m.loadedCount++
	return m.history, m.loadErr
}

func (m *storeMock) SaveHistory(items []session.HistoryItem) error {
	m.savedCount++
	m.history = append([]session.HistoryItem(nil), items...)
	return m.saveErr
}

func (m *storeMock) LoadBookmarks() ([]session.Bookmark, error) {
	m.loadedCount++
	return m.bookmarks, m.loadErr
}

func (m *storeMock) SaveBookmarks(bms []session.Bookmark) error {
	m.savedCount++
	m.bookmarks = append([]session.Bookmark(nil), bms...)
	return m.saveErr
}

func TestAppendHistoryNewestFirst(t *testing.T) {
	store := &storeMock{}
	svc := New(store, store, zap.NewNop())

	svc.Append("first", filter.Filters{}, 3)
	svc.Append("second", filter.Filters{}, 0)

	got := svc.History()
	if len(got) != 2 || got[0].Query != "second" || got[1].Query != "first" {
		t.Fatalf("unexpected history order: %+v", got)
	}
	if got[0].ResultCount != 0 || got[1].ResultCount != 3 {
		t.Fatal("result counts not preserved")
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatal("history items need distinct IDs")
	}
	if store.savedCount != 2 {
		t.Fatalf("expected a save per append, got %d", store.savedCount)
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	svc := New(nil, nil, zap.NewNop(), WithMaxHistory(3))
	for i := 0; i < 5; i++ {
		svc.Append(fmt.Sprintf("q%d", i), filter.Filters{}, 0)
	}

	got := svc.History()
	if len(got) != 3 {
		t.Fatalf("expected capacity 3, got %d", len(got))
	}
	if got[0].Query != "q4" || got[2].Query != "q2" {
		t.Fatalf("oldest items should be evicted: %+v", got)
	}
}

func TestRecentQueriesDeduplicates(t *testing.T) {
	svc := New(nil, nil, zap.NewNop())
	svc.Append("glucose", filter.Filters{}, 1)
	svc.Append("Sodium", filter.Filters{}, 1)
	svc.Append("glucose", filter.Filters{}, 1)

	got := svc.RecentQueries(10)
	if len(got) != 2 || got[0] != "glucose" || got[1] != "Sodium" {
		t.Fatalf("unexpected recent queries: %v", got)
	}
}

func TestClearHistory(t *testing.T) {
	store := &storeMock{}
	svc := New(store, store, zap.NewNop())
	svc.Append("glucose", filter.Filters{}, 1)

	svc.ClearHistory()
	if len(svc.History()) != 0 {
		t.Fatal("history not cleared")
	}
	if len(store.history) != 0 {
		t.Fatal("cleared history not persisted")
	}
}

func TestBookmarkLifecycle(t *testing.T) {
	store := &storeMock{}
	svc := New(store, store, zap.NewNop())

	bm, err := svc.AddBookmark("salts", "chloride", filter.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if bm.ID == "" || bm.Name != "salts" {
		t.Fatalf("unexpected bookmark: %+v", bm)
	}

	got, err := svc.Bookmark(bm.ID)
	if err != nil || got.Query != "chloride" {
		t.Fatalf("lookup failed: %+v, %v", got, err)
	}

	svc.RemoveBookmark(bm.ID)
	if _, err := svc.Bookmark(bm.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}

	// Removing again is a no-op.
	svc.RemoveBookmark(bm.ID)
	if len(store.bookmarks) != 0 {
		t.Fatal("persisted bookmarks not empty after removal")
	}
}

func TestBookmarkLimit(t *testing.T) {
	svc := New(nil, nil, zap.NewNop(), WithMaxBookmarks(2))
	for i := 0; i < 2; i++ {
		if _, err := svc.AddBookmark(fmt.Sprintf("b%d", i), "q", filter.Filters{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.AddBookmark("overflow", "q", filter.Filters{}); !errors.Is(err, domain.ErrBookmarkLimit) {
		t.Fatalf("expected ErrBookmarkLimit, got %v", err)
	}
	if len(svc.Bookmarks()) != 2 {
		t.Fatal("cap breached")
	}
}

func TestBookmarkNameRequired(t *testing.T) {
	svc := New(nil, nil, zap.NewNop())
	if _, err := svc.AddBookmark("   ", "q", filter.Filters{}); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestNewLoadsPriorState(t *testing.T) {
	store := &storeMock{
		history:   []session.HistoryItem{{ID: "h1", Query: "old"}},
		bookmarks: []session.Bookmark{{ID: "b1", Name: "saved", Query: "acid"}},
	}
	svc := New(store, store, zap.NewNop())

	if got := svc.History(); len(got) != 1 || got[0].Query != "old" {
		t.Fatalf("history not loaded: %+v", got)
	}
	if got := svc.Bookmarks(); len(got) != 1 || got[0].Name != "saved" {
		t.Fatalf("bookmarks not loaded: %+v", got)
	}
}

func TestNewSurvivesLoadFailure(t *testing.T) {
	store := &storeMock{loadErr: errors.New("corrupt")}
	svc := New(store, store, zap.NewNop())

	if len(svc.History()) != 0 || len(svc.Bookmarks()) != 0 {
		t.Fatal("expected empty session after load failure")
	}
	// The session still works memory-only.
	svc.Append("glucose", filter.Filters{}, 1)
	if len(svc.History()) != 1 {
		t.Fatal("session unusable after load failure")
	}
}

func TestSaveFailureDoesNotSurface(t *testing.T) {
	store := &storeMock{saveErr: errors.New("disk full")}
	svc := New(store, store, zap.NewNop())

	svc.Append("glucose", filter.Filters{}, 1)
	if _, err := svc.AddBookmark("b", "q", filter.Filters{}); err != nil {
		t.Fatalf("save failure leaked to caller: %v", err)
	}
}
