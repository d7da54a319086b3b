package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPolygonFetch(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"status":"OK","results":[{"title":"a"},{"title":"b"}]}`))
	}))
	defer srv.Close()

	p := NewPolygon("test-key", nil)
	p.baseURL = srv.URL

	after := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	records, err := p.Fetch(context.Background(), "aapl", 10, after)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	for _, want := range []string{"ticker=AAPL", "limit=10", "published_utc.gte=2026-08-20", "order=published_utc.desc"} {
		if !containsParam(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestPolygonFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ERROR","error":"quota exceeded"}`))
	}))
	defer srv.Close()

	p := NewPolygon("test-key", nil)
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), "AAPL", 10, time.Now().Add(-time.Hour))
	if err == nil {
		t.Fatal("want error for non-OK status")
	}
}

func TestPolygonFetchNoKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network call made without API key")
	}))
	defer srv.Close()

	p := NewPolygon("", nil)
	p.baseURL = srv.URL

	records, err := p.Fetch(context.Background(), "AAPL", 10, time.Now())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records without key, want 0", len(records))
	}
}

func TestFinnhubFetchTruncatesToLimit(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"id":1},{"id":2},{"id":3}]`))
	}))
	defer srv.Close()

	f := NewFinnhub("fh-key", nil)
	f.baseURL = srv.URL
	f.now = func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }

	after := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	records, err := f.Fetch(context.Background(), "TSLA", 2, after)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want limit of 2", len(records))
	}
	for _, want := range []string{"symbol=TSLA", "from=2026-08-20", "to=2026-08-27", "token=fh-key"} {
		if !containsParam(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestFinancialDatasetsFetch(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":[{"title":"x"}]}`))
	}))
	defer srv.Close()

	f := NewFinancialDatasets("fd-key", nil)
	f.baseURL = srv.URL

	after := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	records, err := f.Fetch(context.Background(), "MSFT", 5, after)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if gotAuth != "Bearer fd-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !containsParam(gotQuery, "from_date=2026-08-20T09%3A30%3A00Z") {
		t.Errorf("query %q missing RFC3339 from_date", gotQuery)
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewPolygon("key", nil)
	p.baseURL = srv.URL
	if _, err := p.Fetch(context.Background(), "AAPL", 10, time.Now()); err == nil {
		t.Error("polygon: want error on 429")
	}

	f := NewFinnhub("key", nil)
	f.baseURL = srv.URL
	if _, err := f.Fetch(context.Background(), "AAPL", 10, time.Now()); err == nil {
		t.Error("finnhub: want error on 429")
	}
}

func TestRSSFetch(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Yahoo Finance AAPL</title>
<item><title>Apple climbs</title><link>https://example.com/1</link>
<description>&lt;p&gt;Shares &lt;b&gt;rose&lt;/b&gt; today.&lt;/p&gt;</description>
<pubDate>Wed, 26 Aug 2026 10:00:00 GMT</pubDate></item>
<item><title>Stale item</title><link>https://example.com/2</link>
<pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>No date</title><link>https://example.com/3</link></item>
</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	r := NewRSS(nil)
	r.feedURL = srv.URL + "?s=%s"

	after := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	records, err := r.Fetch(context.Background(), "AAPL", 10, after)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (stale and undated items dropped)", len(records))
	}
	got := string(records[0])
	if !strings.Contains(got, `"title":"Apple climbs"`) {
		t.Errorf("record missing title: %s", got)
	}
	if !strings.Contains(got, "Shares rose today.") {
		t.Errorf("summary HTML not stripped: %s", got)
	}
}

func TestCleanHTML(t *testing.T) {
	if got := cleanHTML("<p>Hello <b>world</b></p>"); got != "Hello world" {
		t.Errorf("cleanHTML = %q", got)
	}
	if got := cleanHTML(""); got != "" {
		t.Errorf("cleanHTML empty = %q", got)
	}
}

func containsParam(query, param string) bool {
	return strings.Contains("&"+query+"&", "&"+param+"&")
}
