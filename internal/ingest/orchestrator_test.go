package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/seenimoa/biasfeed/internal/provider"
	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
)

// fakeAdapter returns canned raw records in the polygon shape.
type fakeAdapter struct {
	name    string
	records []json.RawMessage
	err     error
}

func (f *fakeAdapter) Name() string        { return f.name }
func (f *fakeAdapter) Kind() provider.Kind { return provider.KindPolygon }
func (f *fakeAdapter) Fetch(_ context.Context, _ string, _ int, _ time.Time) ([]json.RawMessage, error) {
	return f.records, f.err
}

func polygonRecord(title, articleURL string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"title":%q,"article_url":%q,"published_utc":"2026-08-25T10:00:00Z","publisher":{"name":"Reuters","homepage_url":"https://reuters.com"}}`,
		title, articleURL))
}

func testOrchestrator(t *testing.T, adapters ...provider.Adapter) (*Orchestrator, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	n := NewNormalizer(testResolver, nil)
	o := NewOrchestrator(adapters, n, nil, s, nil, 10, 7, 0)
	return o, s
}

func TestRunMergesAndStores(t *testing.T) {
	a := &fakeAdapter{name: "one", records: []json.RawMessage{
		polygonRecord("first", "https://example.com/1"),
		polygonRecord("shared", "https://example.com/shared"),
	}}
	b := &fakeAdapter{name: "two", records: []json.RawMessage{
		polygonRecord("shared again", "https://example.com/shared"),
		polygonRecord("second", "https://example.com/2"),
	}}
	o, s := testOrchestrator(t, a, b)

	saved, err := o.Run(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("saved %d articles, want 3 after URL dedup", len(saved))
	}

	// The earlier adapter's version of a shared URL wins.
	var shared *models.Article
	for i := range saved {
		if saved[i].URL == "https://example.com/shared" {
			shared = &saved[i]
		}
	}
	if shared == nil {
		t.Fatal("shared article missing")
	}
	if shared.Headline != "shared" {
		t.Errorf("shared headline = %q, want the first adapter's version", shared.Headline)
	}

	n, err := s.CountArticles(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("stored %d, want 3", n)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	a := &fakeAdapter{name: "one", records: []json.RawMessage{
		polygonRecord("x", "https://example.com/x"),
	}}
	o, s := testOrchestrator(t, a)
	ctx := context.Background()

	if _, err := o.Run(ctx, "AAPL"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	saved, err := o.Run(ctx, "AAPL")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(saved) != 0 {
		t.Fatalf("second run saved %d, want 0", len(saved))
	}

	n, _ := s.CountArticles(ctx)
	if n != 1 {
		t.Fatalf("stored %d, want 1", n)
	}
}

func TestRunSurvivesAdapterFailure(t *testing.T) {
	bad := &fakeAdapter{name: "broken", err: errors.New("boom")}
	good := &fakeAdapter{name: "good", records: []json.RawMessage{
		polygonRecord("ok", "https://example.com/ok"),
	}}
	o, _ := testOrchestrator(t, bad, good)

	saved, err := o.Run(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved %d, want 1 from the healthy adapter", len(saved))
	}
}

func TestRunRejectsEmptyTicker(t *testing.T) {
	o, _ := testOrchestrator(t)
	if _, err := o.Run(context.Background(), "  "); err == nil {
		t.Error("want error for empty ticker")
	}
}

func TestRunForTickers(t *testing.T) {
	a := &fakeAdapter{name: "one", records: []json.RawMessage{
		polygonRecord("x", "https://example.com/x"),
	}}
	o, _ := testOrchestrator(t, a)

	// Duplicate URLs across tickers: the second ticker stores nothing.
	total, err := o.RunForTickers(context.Background(), []string{"AAPL", "MSFT"})
	if err != nil {
		t.Fatalf("RunForTickers: %v", err)
	}
	if total != 1 {
		t.Fatalf("total new = %d, want 1", total)
	}
}

func TestMergeFirstSeenWins(t *testing.T) {
	a1 := models.Article{URL: "u1", Headline: "from A"}
	a2 := models.Article{URL: "u2", Headline: "only A"}
	b1 := models.Article{URL: "u1", Headline: "from B"}
	b2 := models.Article{URL: "u3", Headline: "only B"}

	merged := Merge([]models.Article{a1, a2}, []models.Article{b1, b2})
	if len(merged) != 3 {
		t.Fatalf("merged %d, want 3", len(merged))
	}
	if merged[0].Headline != "from A" || merged[0].URL != "u1" {
		t.Errorf("first-seen did not win: %+v", merged[0])
	}
	if merged[1].URL != "u2" || merged[2].URL != "u3" {
		t.Errorf("merge order not preserved: %+v", merged)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil, []models.Article{}); len(got) != 0 {
		t.Errorf("Merge of empty batches = %v", got)
	}
}
