package suggest

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain/record"
	"github.com/chemlab-cloud/chemsearch/internal/index"
)

type historyStub []string

func (h historyStub) RecentQueries(limit int) []string {
	if len(h) > limit {
		return h[:limit]
	}
	return h
}

type popularStub []string

func (p popularStub) PopularQueries(limit int) []string {
	if len(p) > limit {
		return p[:limit]
	}
	return p
}

func testIndex(t *testing.T) *index.Index {
	t.Helper()
	records := []record.Record{
		{
			ID: "nacl", Type: record.Compound, Title: "Sodium Chloride", URL: "/c/nacl",
			Compound: &record.CompoundAttrs{Formula: "NaCl"},
		},
		{
			ID: "naoh", Type: record.Compound, Title: "Sodium Hydroxide", URL: "/c/naoh",
			Compound: &record.CompoundAttrs{Formula: "NaOH"},
		},
		{
			ID: "na", Type: record.Element, Title: "Sodium", URL: "/e/na",
			Element: &record.ElementAttrs{AtomicNumber: 11},
		},
	}
	return index.Build(records, zap.NewNop())
}

func texts(sugs []Suggestion) []string {
	out := make([]string, len(sugs))
	for i, s := range sugs {
		out[i] = s.Text
	}
	return out
}

func contains(sugs []Suggestion, text string) bool {
	for _, s := range sugs {
		if s.Text == text {
			return true
		}
	}
	return false
}

func TestSuggestVocabularyPrefix(t *testing.T) {
	svc := New(testIndex(t), 10, zap.NewNop())
	got, err := svc.Suggest(context.Background(), "sod")
	if err != nil {
		t.Fatal(err)
	}
	if !contains(got, "sodium") {
		t.Fatalf("expected sodium completion, got %v", texts(got))
	}
	for _, s := range got {
		if s.Source != SourceVocabulary {
			t.Fatalf("unexpected source %q without history/popular wired", s.Source)
		}
	}
}

func TestSuggestCompletesLastWord(t *testing.T) {
	svc := New(testIndex(t), 10, zap.NewNop())
	got, err := svc.Suggest(context.Background(), "sodium chl")
	if err != nil {
		t.Fatal(err)
	}
	if !contains(got, "sodium chloride") {
		t.Fatalf("expected stem to be kept, got %v", texts(got))
	}
}

func TestSuggestTypoCorrection(t *testing.T) {
	svc := New(testIndex(t), 10, zap.NewNop())
	got, err := svc.Suggest(context.Background(), "sodum")
	if err != nil {
		t.Fatal(err)
	}
	if !contains(got, "sodium") {
		t.Fatalf("expected typo correction to sodium, got %v", texts(got))
	}
}

func TestSuggestMergeOrderAndDedup(t *testing.T) {
	svc := New(testIndex(t), 10, zap.NewNop()).
		WithHistory(historyStub{"sodium chloride", "sulfuric acid"}).
		WithPopular(popularStub{"Sodium Chloride", "sodium hydroxide"})

	got, err := svc.Suggest(context.Background(), "sod")
	if err != nil {
		t.Fatal(err)
	}

	txt := texts(got)
	if len(txt) < 3 || txt[0] != "sodium chloride" || txt[1] != "sodium hydroxide" {
		t.Fatalf("unexpected merge order: %v", txt)
	}
	if got[0].Source != SourceHistory || got[1].Source != SourcePopular {
		t.Fatalf("unexpected sources: %+v", got)
	}
	// The popular "Sodium Chloride" duplicates the history entry case-insensitively.
	seen := make(map[string]int)
	for _, s := range got {
		seen[index.FoldLower(s.Text)]++
	}
	if seen["sodium chloride"] != 1 {
		t.Fatalf("duplicate not folded away: %v", txt)
	}
}

func TestSuggestEmptyInput(t *testing.T) {
	svc := New(testIndex(t), 10, zap.NewNop()).
		WithHistory(historyStub{"glucose"}).
		WithPopular(popularStub{"molar mass"})

	got, err := svc.Suggest(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	txt := texts(got)
	if len(txt) != 2 || txt[0] != "glucose" || txt[1] != "molar mass" {
		t.Fatalf("empty input should yield history then popular, got %v", txt)
	}
}

func TestSuggestCap(t *testing.T) {
	svc := New(testIndex(t), 2, zap.NewNop()).
		WithHistory(historyStub{"sodium a", "sodium b", "sodium c"})

	got, err := svc.Suggest(context.Background(), "sodium")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected cap of 2, got %d: %v", len(got), texts(got))
	}
}

func TestSuggestLaterCoalesces(t *testing.T) {
	svc := New(testIndex(t), 10, zap.NewNop()).WithDebounce(20 * time.Millisecond)

	var mu sync.Mutex
	var deliveries [][]Suggestion
	deliver := func(sugs []Suggestion) {
		mu.Lock()
		deliveries = append(deliveries, sugs)
		mu.Unlock()
	}

	svc.SuggestLater("s", deliver)
	svc.SuggestLater("so", deliver)
	svc.SuggestLater("sod", deliver)

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(deliveries) != 1 {
		t.Fatalf("expected one delivery for three rapid inputs, got %d", len(deliveries))
	}
	if !contains(deliveries[0], "sodium") {
		t.Fatalf("expected completion for the latest input, got %v", texts(deliveries[0]))
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var fired []int
	mark := func(n int) func() {
		return func() {
			mu.Lock()
			fired = append(fired, n)
			mu.Unlock()
		}
	}

	d.Trigger(mark(1))
	d.Trigger(mark(2))
	d.Trigger(mark(3))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != 3 {
		t.Fatalf("expected only the last trigger to fire, got %v", fired)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var count int
	d.Trigger(func() {
		mu.Lock()
		count++
		mu.Unlock()
	})
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Fatal("stopped debouncer still fired")
	}
}
