package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/decoder"
	"github.com/DeBrosOfficial/smart-gateway/pkg/metrics"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"github.com/DeBrosOfficial/smart-gateway/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

var testCID = config.DefaultCID

type reply struct {
	status      int
	body        string
	contentType string
	err         error
}

type stubTransport struct {
	mu      sync.Mutex
	replies map[string]reply
	urls    []string
}

func (s *stubTransport) Do(_ context.Context, req *transport.Request) (*transport.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, req.URL)

	r, ok := s.replies[req.URL]
	if !ok {
		return nil, errors.New("no such host")
	}
	if r.err != nil {
		return nil, r.err
	}
	header := http.Header{}
	if r.contentType != "" {
		header.Set("Content-Type", r.contentType)
	}
	return &transport.Response{
		StatusCode: r.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

type stubRanker struct {
	sorted ranking.RankedList
	picked string
}

func (s *stubRanker) Sorted() ranking.RankedList    { return s.sorted }
func (s *stubRanker) Picked(context.Context) string { return s.picked }

type staticGateways []string

func (g staticGateways) AllGateways() []string { return g }

func ranked(urls ...string) ranking.RankedList {
	list := make(ranking.RankedList, len(urls))
	for i, u := range urls {
		list[i] = ranking.ProbeResult{URL: u, Status: ranking.StatusAvailable}
	}
	return list
}

func content(gw string) string {
	return gw + "/ipfs/" + testCID
}

func newTestFetcher(t *testing.T, cfg Config, r *stubRanker, all []string, tr *stubTransport) *Fetcher {
	t.Helper()
	f, err := New(cfg, r, staticGateways(all), tr, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// keep untested gateways in registry order
	f.shuffle = func(int, func(i, j int)) {}
	return f
}

func TestFetchWithFallbackSkipsFailedGateway(t *testing.T) {
	tr := &stubTransport{replies: map[string]reply{
		content("https://g1.example"): {status: http.StatusInternalServerError},
		content("https://g2.example"): {status: http.StatusOK, body: "x"},
	}}
	r := &stubRanker{sorted: ranked("https://g1.example", "https://g2.example")}
	f := newTestFetcher(t, Config{}, r, []string{"https://g1.example", "https://g2.example"}, tr)

	v, ok := f.FetchWithFallback(context.Background(), testCID, decoder.FormatText)
	if !ok {
		t.Fatal("Expected fetch to succeed")
	}
	if v != "x" {
		t.Errorf("Expected \"x\", got %#v", v)
	}
	if len(tr.urls) != 2 {
		t.Errorf("Expected 2 requests, got %v", tr.urls)
	}
}

func TestFetchWithFallbackStopsAtFirstSuccess(t *testing.T) {
	tr := &stubTransport{replies: map[string]reply{
		content("https://g1.example"): {status: http.StatusOK, body: "first"},
		content("https://g2.example"): {status: http.StatusOK, body: "second"},
	}}
	r := &stubRanker{sorted: ranked("https://g1.example", "https://g2.example")}
	f := newTestFetcher(t, Config{}, r, nil, tr)

	v, ok := f.FetchWithFallback(context.Background(), testCID, decoder.FormatText)
	if !ok || v != "first" {
		t.Errorf("Expected (first, true), got (%v, %v)", v, ok)
	}
	if len(tr.urls) != 1 {
		t.Errorf("Expected a single request, got %v", tr.urls)
	}
}

func TestFetchWithFallbackDecodeFailureContinues(t *testing.T) {
	tr := &stubTransport{replies: map[string]reply{
		content("https://g1.example"): {status: http.StatusOK, body: "{not json"},
		content("https://g2.example"): {status: http.StatusOK, body: `{"a":1}`},
	}}
	r := &stubRanker{sorted: ranked("https://g1.example", "https://g2.example")}
	f := newTestFetcher(t, Config{}, r, nil, tr)

	v, ok := f.FetchWithFallback(context.Background(), testCID, decoder.FormatJSON)
	if !ok {
		t.Fatal("Expected fetch to succeed on the second gateway")
	}
	m, isMap := v.(map[string]any)
	if !isMap || m["a"] == nil {
		t.Errorf("unexpected decoded value %#v", v)
	}
}

func TestFetchWithFallbackAllFail(t *testing.T) {
	tr := &stubTransport{replies: map[string]reply{
		content("https://g1.example"): {status: http.StatusNotFound},
		content("https://g2.example"): {err: errors.New("connection reset")},
	}}
	r := &stubRanker{sorted: ranked("https://g1.example")}
	f := newTestFetcher(t, Config{}, r, []string{"https://g1.example", "https://g2.example", "https://g3.example"}, tr)

	v, ok := f.FetchWithFallback(context.Background(), testCID, decoder.FormatText)
	if ok || v != nil {
		t.Errorf("Expected (nil, false), got (%v, %v)", v, ok)
	}
	if len(tr.urls) != 3 {
		t.Errorf("Expected every gateway tried once, got %v", tr.urls)
	}
}

func TestCandidatesOrder(t *testing.T) {
	r := &stubRanker{sorted: ranked("https://b.example", "https://a.example")}
	all := []string{"https://a.example", "https://b.example", "https://c.example", "https://d.example", "https://e.example"}
	f, err := New(Config{}, r, staticGateways(all), &stubTransport{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var shuffled int
	f.shuffle = func(n int, swap func(i, j int)) {
		shuffled = n
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}

	want := []string{"https://b.example", "https://a.example", "https://e.example", "https://d.example", "https://c.example"}
	if got := f.Candidates(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if shuffled != 3 {
		t.Errorf("Expected only the 3 untested gateways shuffled, got %d", shuffled)
	}
}

func TestCandidatesRandomizedCoverage(t *testing.T) {
	all := []string{"https://a.example", "https://b.example", "https://c.example"}
	f, err := New(Config{}, &stubRanker{}, staticGateways(all), &stubTransport{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		got := f.Candidates()
		if len(got) != len(all) {
			t.Fatalf("Expected %d candidates, got %v", len(all), got)
		}
		for _, g := range all {
			found := false
			for _, c := range got {
				if c == g {
					found = true
				}
			}
			if !found {
				t.Errorf("candidate %s missing from %v", g, got)
			}
		}
	}
}

func TestFetchInvalidCID(t *testing.T) {
	tr := &stubTransport{}
	r := &stubRanker{sorted: ranked("https://g1.example"), picked: "https://g1.example"}
	f := newTestFetcher(t, Config{}, r, nil, tr)

	if _, ok := f.FetchWithFallback(context.Background(), "not-a-cid", decoder.FormatText); ok {
		t.Error("Expected invalid CID to fail")
	}
	if _, ok := f.FetchFromPicked(context.Background(), "not-a-cid", decoder.FormatText); ok {
		t.Error("Expected invalid CID to fail")
	}
	if len(tr.urls) != 0 {
		t.Errorf("Expected no requests, got %v", tr.urls)
	}
}

func TestFetchSubPath(t *testing.T) {
	path := testCID + "/readme.txt"
	tr := &stubTransport{replies: map[string]reply{
		"https://g1.example/ipfs/" + path: {status: http.StatusOK, body: "hello"},
	}}
	f := newTestFetcher(t, Config{}, &stubRanker{sorted: ranked("https://g1.example")}, nil, tr)

	if v, ok := f.FetchWithFallback(context.Background(), "/"+path, decoder.FormatText); !ok || v != "hello" {
		t.Errorf("Expected (hello, true), got (%v, %v)", v, ok)
	}
}

func TestFetchFromPicked(t *testing.T) {
	tests := []struct {
		name    string
		picked  string
		replies map[string]reply
		want    any
		wantOK  bool
		wantReq int
	}{
		{
			name:    "no picked gateway",
			wantReq: 0,
		},
		{
			name:    "picked succeeds",
			picked:  "https://g1.example",
			replies: map[string]reply{content("https://g1.example"): {status: http.StatusOK, body: "x"}},
			want:    "x",
			wantOK:  true,
			wantReq: 1,
		},
		{
			name:   "picked fails without fallback",
			picked: "https://g1.example",
			replies: map[string]reply{
				content("https://g1.example"): {status: http.StatusBadGateway},
				content("https://g2.example"): {status: http.StatusOK, body: "x"},
			},
			wantReq: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &stubTransport{replies: tt.replies}
			r := &stubRanker{sorted: ranked("https://g2.example"), picked: tt.picked}
			f := newTestFetcher(t, Config{}, r, []string{"https://g2.example"}, tr)

			v, ok := f.FetchFromPicked(context.Background(), testCID, decoder.FormatText)
			if ok != tt.wantOK || v != tt.want {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.want, tt.wantOK, v, ok)
			}
			if len(tr.urls) != tt.wantReq {
				t.Errorf("Expected %d requests, got %v", tt.wantReq, tr.urls)
			}
		})
	}
}

func TestFetchBlobKeepsContentType(t *testing.T) {
	tr := &stubTransport{replies: map[string]reply{
		content("https://g1.example"): {status: http.StatusOK, body: "\x89PNG", contentType: "image/png"},
	}}
	f := newTestFetcher(t, Config{}, &stubRanker{sorted: ranked("https://g1.example")}, nil, tr)

	v, ok := f.FetchWithFallback(context.Background(), testCID, decoder.FormatBlob)
	if !ok {
		t.Fatal("Expected fetch to succeed")
	}
	blob, isBlob := v.(decoder.Blob)
	if !isBlob || blob.ContentType != "image/png" || string(blob.Data) != "\x89PNG" {
		t.Errorf("unexpected blob %#v", v)
	}
}

func TestFetchCache(t *testing.T) {
	tr := &stubTransport{replies: map[string]reply{
		content("https://g1.example"): {status: http.StatusOK, body: `{"v":2}`, contentType: "application/json"},
	}}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("metrics.New failed: %v", err)
	}
	f, err := New(Config{CacheSize: 4}, &stubRanker{sorted: ranked("https://g1.example")}, staticGateways(nil), tr, nil, m, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	if _, ok := f.FetchWithFallback(ctx, testCID, decoder.FormatJSON); !ok {
		t.Fatal("first fetch failed")
	}
	v, ok := f.FetchWithFallback(ctx, "/"+testCID, decoder.FormatText)
	if !ok || v != `{"v":2}` {
		t.Errorf("Expected cached body decoded as text, got (%v, %v)", v, ok)
	}
	if len(tr.urls) != 1 {
		t.Errorf("Expected one network request, got %v", tr.urls)
	}
	expected := `
# HELP smartgw_fetcher_cache_hits_total Fetches served from the content cache.
# TYPE smartgw_fetcher_cache_hits_total counter
smartgw_fetcher_cache_hits_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "smartgw_fetcher_cache_hits_total"); err != nil {
		t.Errorf("unexpected cache hit metric: %v", err)
	}
}
