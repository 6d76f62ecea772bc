package prober

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/transport"
	"go.uber.org/zap"
)

type stubTransport struct {
	status int
	delay  time.Duration
	err    error
	got    *transport.Request
}

func (s *stubTransport) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	s.got = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &transport.Response{
		StatusCode: s.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("x")),
	}, nil
}

func TestMeasureSuccess(t *testing.T) {
	stub := &stubTransport{status: http.StatusPartialContent, delay: 20 * time.Millisecond}
	p := New(stub, nil, zap.NewNop())

	elapsed, ok := p.Measure(context.Background(), "https://a.example", "QmTest", time.Second)
	if !ok {
		t.Fatal("Expected probe to succeed")
	}
	if elapsed < 20*time.Millisecond {
		t.Errorf("Expected elapsed >= 20ms, got %s", elapsed)
	}
	if stub.got.URL != "https://a.example/ipfs/QmTest" {
		t.Errorf("unexpected probe URL %q", stub.got.URL)
	}
	if stub.got.Range == nil || stub.got.Range.Header() != "bytes=0-0" {
		t.Errorf("Expected first-byte range, got %+v", stub.got.Range)
	}
}

func TestMeasureFailures(t *testing.T) {
	tests := []struct {
		name string
		stub *stubTransport
	}{
		{"server error", &stubTransport{status: http.StatusInternalServerError}},
		{"not found", &stubTransport{status: http.StatusNotFound}},
		{"network error", &stubTransport{err: errors.New("connection refused")}},
		{"timeout", &stubTransport{status: http.StatusOK, delay: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.stub, nil, nil)
			start := time.Now()
			elapsed, ok := p.Measure(context.Background(), "https://a.example", "QmTest", 50*time.Millisecond)
			if ok || elapsed != 0 {
				t.Errorf("Expected (0, false), got (%s, %v)", elapsed, ok)
			}
			if time.Since(start) > 500*time.Millisecond {
				t.Error("probe should be cut off by its timeout")
			}
		})
	}
}

func TestMeasureAgainstHTTPServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/QmTest" || r.Header.Get("Range") != "bytes=0-0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("x"))
	}))
	defer server.Close()

	p := New(transport.NewHTTPTransport(transport.Config{}, nil), nil, nil)
	if _, ok := p.Measure(context.Background(), server.URL, "QmTest", time.Second); !ok {
		t.Fatal("Expected probe against live server to succeed")
	}
}
