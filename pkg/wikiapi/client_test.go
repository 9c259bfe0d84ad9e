package wikiapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fastRate keeps test requests from sleeping.
var fastRate = RateConfig{
	Initial:  time.Millisecond,
	Min:      time.Millisecond,
	Max:      2 * time.Millisecond,
	Backoff:  2.0,
	Recovery: 0.95,
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIBaseURL:       server.URL,
		PageviewsBaseURL: server.URL,
		Rate:             fastRate,
		MaxRetries:       2,
		HTTPClient:       server.Client(),
	}, Credentials{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Config{}, Credentials{}); err == nil {
		t.Error("expected error without credentials or injected HTTP client")
	}
	if _, err := NewClient(Config{HTTPClient: http.DefaultClient}, Credentials{}); err != nil {
		t.Errorf("injected client should not require credentials: %v", err)
	}
}

func TestListEmbeddedFollowsContinuation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list") != "embeddedin" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("eicontinue") == "" {
			fmt.Fprint(w, `{
				"continue": {"eicontinue": "10|Next", "continue": "-||"},
				"query": {"embeddedin": [
					{"title": "Roe v. Wade"},
					{"title": "Baker v. Carr"}
				]}
			}`)
			return
		}
		fmt.Fprint(w, `{
			"query": {"embeddedin": [
				{"title": "Miranda v. Arizona"},
				{"title": "Baker v. Carr"}
			]}
		}`)
	}))

	titles, err := client.ListEmbedded(context.Background(), "Template:Infobox US Supreme Court case")
	if err != nil {
		t.Fatalf("ListEmbedded: %v", err)
	}

	expected := []string{"Baker v. Carr", "Miranda v. Arizona", "Roe v. Wade"}
	if len(titles) != len(expected) {
		t.Fatalf("titles = %v, want %v", titles, expected)
	}
	for titleIndex, title := range expected {
		if titles[titleIndex] != title {
			t.Errorf("titles[%d] = %q, want %q", titleIndex, titles[titleIndex], title)
		}
	}
}

func TestWikitextBatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("prop") != "revisions" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{
			"query": {"pages": [
				{"title": "Baker v. Carr", "revisions": [
					{"slots": {"main": {"content": "{{Infobox SCOTUS case}}"}}}
				]},
				{"title": "Legacy Page", "revisions": [
					{"content": "inline content"}
				]},
				{"title": "Missing Page"}
			]}
		}`)
	}))

	wikitext, err := client.WikitextBatch(context.Background(), []string{"Baker v. Carr", "Legacy Page", "Missing Page"})
	if err != nil {
		t.Fatalf("WikitextBatch: %v", err)
	}

	if got := wikitext["Baker v. Carr"]; got != "{{Infobox SCOTUS case}}" {
		t.Errorf("slot content = %q", got)
	}
	if got := wikitext["Legacy Page"]; got != "inline content" {
		t.Errorf("inline content = %q", got)
	}
	if got := wikitext["Missing Page"]; got != "" {
		t.Errorf("missing page content = %q, want empty", got)
	}
}

func TestWikitextBatchEmptyTitles(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty batch")
	}))

	wikitext, err := client.WikitextBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("WikitextBatch: %v", err)
	}
	if len(wikitext) != 0 {
		t.Errorf("got %d entries, want 0", len(wikitext))
	}
}

func TestGetRetriesOnThrottle(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"query": {"embeddedin": []}}`)
	}))

	before := client.limiter.Delay()
	titles, err := client.ListEmbedded(context.Background(), "Template:X")
	if err != nil {
		t.Fatalf("ListEmbedded after throttle: %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("titles = %v, want none", titles)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if after := client.limiter.Delay(); after < before {
		t.Errorf("delay shrank across a throttle: %v -> %v", before, after)
	}
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	if _, err := client.ListEmbedded(context.Background(), "Template:X"); err == nil {
		t.Error("expected error after exhausting retries")
	}
}

func TestGetFailsFastOnClientError(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))

	if _, err := client.ListEmbedded(context.Background(), "Template:X"); err == nil {
		t.Error("expected error on 404")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}

func TestPageviews(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Title spaces become underscores in the article path segment.
		if got := r.URL.Path; got != "/Baker_v._Carr/monthly/20080101/"+time.Now().Format("20060102") {
			t.Errorf("path = %q", got)
		}
		fmt.Fprint(w, `{"items": [
			{"views": 100}, {"views": 200}, {"views": 300}
		]}`)
	}))

	counts, err := client.Pageviews(context.Background(), "Baker v. Carr")
	if err != nil {
		t.Fatalf("Pageviews: %v", err)
	}
	if counts.AllTime != 600 || counts.Last1 != 300 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestAggregateViews(t *testing.T) {
	cases := []struct {
		name     string
		monthly  []int64
		expected ViewCounts
	}{
		{
			name:     "empty",
			monthly:  nil,
			expected: ViewCounts{},
		},
		{
			name:     "short_series",
			monthly:  []int64{10, 20},
			expected: ViewCounts{AllTime: 30, Last12: 30, Last6: 30, Last1: 20},
		},
		{
			name: "long_series",
			monthly: []int64{
				1, 1, 1, 1, 1, 1, 1, 1, // older than a year
				2, 2, 2, 2, 2, 2, // months 7-12 back
				3, 3, 3, 3, 3, 3, // latest 6 months
			},
			expected: ViewCounts{AllTime: 38, Last12: 30, Last6: 18, Last1: 3},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := aggregateViews(tc.monthly); got != tc.expected {
				t.Errorf("aggregateViews = %+v, want %+v", got, tc.expected)
			}
		})
	}
}
